package voucher

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Vouchers-api/internal/domain"
	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var hundred = decimal.NewFromInt(100)

// ComputeTax calcula impuesto y total sin redondeo: tax = amount*pct/100, total = amount+tax.
func ComputeTax(amount, taxPercentage decimal.Decimal) (tax, total decimal.Decimal) {
	tax = amount.Mul(taxPercentage).Div(hundred)
	return tax, amount.Add(tax)
}

// Draft datos de entrada para crear un comprobante.
type Draft struct {
	Title            string
	Description      string
	Category         entity.Category
	Amount           decimal.Decimal
	TaxPercentage    decimal.Decimal
	Currency         string
	PaymentMethod    entity.PaymentMethod
	BeneficiaryName  string
	BeneficiaryType  entity.BeneficiaryType
	BeneficiaryPhone string
	VoucherDate      time.Time
	RequestedBy      entity.Actor
	Notes            string
}

// New construye un comprobante nuevo en estado status (pending o draft) con montos congelados.
// ID, número y versión los asigna el almacén.
func New(d Draft, creator entity.Actor, status entity.VoucherStatus, now time.Time) (*entity.Voucher, error) {
	if strings.TrimSpace(creator.ID) == "" {
		return nil, domain.Invalid("actor_id", "el actor es obligatorio")
	}
	if status != entity.StatusPending && status != entity.StatusDraft {
		return nil, domain.Invalid("status", fmt.Sprintf("estado inicial no permitido: %s", status))
	}
	requester := d.RequestedBy
	if requester.ID == "" {
		requester = creator
	}
	tax, total := ComputeTax(d.Amount, d.TaxPercentage)
	v := &entity.Voucher{
		Title:            strings.TrimSpace(d.Title),
		Description:      d.Description,
		Category:         d.Category,
		Amount:           d.Amount,
		TaxPercentage:    d.TaxPercentage,
		TaxAmount:        tax,
		TotalAmount:      total,
		Currency:         strings.ToUpper(strings.TrimSpace(d.Currency)),
		PaymentMethod:    d.PaymentMethod,
		BeneficiaryName:  strings.TrimSpace(d.BeneficiaryName),
		BeneficiaryType:  d.BeneficiaryType,
		BeneficiaryPhone: d.BeneficiaryPhone,
		VoucherDate:      d.VoucherDate,
		Status:           status,
		CreatedBy:        creator.ID,
		CreatedByName:    creator.Name,
		RequestedBy:      requester.ID,
		RequestedByName:  requester.Name,
		Notes:            d.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if v.VoucherDate.IsZero() {
		v.VoucherDate = now
	}
	if err := Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate comprueba las reglas que todo comprobante debe cumplir para persistirse.
func Validate(v *entity.Voucher) error {
	if strings.TrimSpace(v.BeneficiaryName) == "" {
		return domain.Invalid("beneficiary_name", "el beneficiario es obligatorio")
	}
	if !v.Amount.IsPositive() {
		return domain.Invalid("amount", "el monto debe ser mayor que cero")
	}
	unit, err := currency.ParseISO(v.Currency)
	if err != nil {
		return domain.Invalid("currency", fmt.Sprintf("moneda desconocida: %q", v.Currency))
	}
	// La escala ISO de la moneda manda: SAR 2, KWD/BHD/OMR 3, JPY 0.
	if scale, _ := currency.Standard.Rounding(unit); !v.Amount.Equal(v.Amount.Truncate(int32(scale))) {
		return domain.Invalid("amount", fmt.Sprintf("el monto admite como máximo %d decimales en %s", scale, v.Currency))
	}
	if v.TaxPercentage.IsNegative() || v.TaxPercentage.GreaterThan(hundred) {
		return domain.Invalid("tax_percentage", "el porcentaje de impuesto debe estar entre 0 y 100")
	}
	if !v.TaxPercentage.Equal(v.TaxPercentage.Truncate(2)) {
		return domain.Invalid("tax_percentage", "el porcentaje admite como máximo dos decimales")
	}
	tax, total := ComputeTax(v.Amount, v.TaxPercentage)
	if !v.TaxAmount.Equal(tax) || !v.TotalAmount.Equal(total) {
		return domain.Invalid("total_amount", "el total no corresponde a monto más impuesto")
	}
	if !v.Category.IsValid() {
		return domain.Invalid("category", fmt.Sprintf("categoría inválida: %q", v.Category))
	}
	if !v.PaymentMethod.IsValid() {
		return domain.Invalid("payment_method", fmt.Sprintf("medio de pago inválido: %q", v.PaymentMethod))
	}
	if !v.BeneficiaryType.IsValid() {
		return domain.Invalid("beneficiary_type", fmt.Sprintf("tipo de beneficiario inválido: %q", v.BeneficiaryType))
	}
	if !v.Status.IsValid() {
		return domain.Invalid("status", fmt.Sprintf("estado inválido: %q", v.Status))
	}
	return nil
}

// FormatNumber arma el número visible VCH-YYYYMM-NNNNNN a partir de la secuencia del almacén.
func FormatNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("VCH-%s-%06d", at.Format("200601"), seq)
}
