// Package labels traduce los enums del comprobante a textos de pantalla y formatea montos.
// Funciones puras, sin estado; solo las usa la capa de presentación.
package labels

import (
	"strings"

	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Status etiqueta del estado.
func Status(s entity.VoucherStatus) string {
	switch s {
	case entity.StatusDraft:
		return "Borrador"
	case entity.StatusPending:
		return "Pendiente"
	case entity.StatusApproved:
		return "Aprobado"
	case entity.StatusPaid:
		return "Pagado"
	case entity.StatusRejected:
		return "Rechazado"
	case entity.StatusCancelled:
		return "Anulado"
	}
	return string(s)
}

// Category etiqueta de la categoría contable.
func Category(c entity.Category) string {
	switch c {
	case entity.CategorySalaries:
		return "Salarios"
	case entity.CategoryUtilities:
		return "Servicios públicos"
	case entity.CategoryMaintenance:
		return "Mantenimiento"
	case entity.CategorySupplies:
		return "Suministros"
	case entity.CategoryFood:
		return "Alimentos y bebidas"
	case entity.CategoryCleaning:
		return "Limpieza"
	case entity.CategoryMarketing:
		return "Mercadeo"
	case entity.CategoryOther:
		return "Otros"
	}
	return string(c)
}

func PaymentMethod(m entity.PaymentMethod) string {
	switch m {
	case entity.PaymentCash:
		return "Efectivo"
	case entity.PaymentBankTransfer:
		return "Transferencia bancaria"
	case entity.PaymentCheck:
		return "Cheque"
	case entity.PaymentCreditCard:
		return "Tarjeta de crédito"
	}
	return string(m)
}

func BeneficiaryType(b entity.BeneficiaryType) string {
	switch b {
	case entity.BeneficiaryEmployee:
		return "Empleado"
	case entity.BeneficiarySupplier:
		return "Proveedor"
	case entity.BeneficiaryVendor:
		return "Contratista"
	case entity.BeneficiaryIndividual:
		return "Persona natural"
	}
	return string(b)
}

const (
	thousandsSep = "."
	decimalSep   = ","
	defaultScale = 2
)

// FormatAmount formatea con la escala ISO de la moneda, miles con punto, decimales con coma
// y el código al final: 1150 SAR -> "1.150,00 SAR".
func FormatAmount(value decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	scale := defaultScale
	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
	}

	fixed := value.Abs().StringFixed(int32(scale))
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if value.Round(int32(scale)).IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(thousandsSep)
		}
		b.WriteRune(r)
	}
	if fracPart != "" {
		b.WriteString(decimalSep)
		b.WriteString(fracPart)
	}
	if code != "" {
		b.WriteByte(' ')
		b.WriteString(code)
	}
	return b.String()
}
