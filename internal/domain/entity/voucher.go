package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherStatus estado del comprobante de egreso.
type VoucherStatus string

// Estados del ciclo de vida. paid, rejected y cancelled son terminales.
const (
	StatusDraft     VoucherStatus = "draft"
	StatusPending   VoucherStatus = "pending"
	StatusApproved  VoucherStatus = "approved"
	StatusPaid      VoucherStatus = "paid"
	StatusRejected  VoucherStatus = "rejected"
	StatusCancelled VoucherStatus = "cancelled"
)

// VoucherStatuses todos los estados en orden de ciclo de vida.
var VoucherStatuses = []VoucherStatus{
	StatusDraft, StatusPending, StatusApproved, StatusPaid, StatusRejected, StatusCancelled,
}

func (s VoucherStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusPaid, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal indica que no existe ninguna transición de salida.
func (s VoucherStatus) IsTerminal() bool {
	return s == StatusPaid || s == StatusRejected || s == StatusCancelled
}

// Category categoría contable del egreso.
type Category string

const (
	CategorySalaries    Category = "salaries"
	CategoryUtilities   Category = "utilities"
	CategoryMaintenance Category = "maintenance"
	CategorySupplies    Category = "supplies"
	CategoryFood        Category = "food"
	CategoryCleaning    Category = "cleaning"
	CategoryMarketing   Category = "marketing"
	CategoryOther       Category = "other"
)

var Categories = []Category{
	CategorySalaries, CategoryUtilities, CategoryMaintenance, CategorySupplies,
	CategoryFood, CategoryCleaning, CategoryMarketing, CategoryOther,
}

func (c Category) IsValid() bool {
	switch c {
	case CategorySalaries, CategoryUtilities, CategoryMaintenance, CategorySupplies,
		CategoryFood, CategoryCleaning, CategoryMarketing, CategoryOther:
		return true
	}
	return false
}

// PaymentMethod medio de pago del desembolso.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheck        PaymentMethod = "check"
	PaymentCreditCard   PaymentMethod = "credit_card"
)

var PaymentMethods = []PaymentMethod{PaymentCash, PaymentBankTransfer, PaymentCheck, PaymentCreditCard}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentBankTransfer, PaymentCheck, PaymentCreditCard:
		return true
	}
	return false
}

// BeneficiaryType tipo de beneficiario del pago.
type BeneficiaryType string

const (
	BeneficiaryEmployee   BeneficiaryType = "employee"
	BeneficiarySupplier   BeneficiaryType = "supplier"
	BeneficiaryVendor     BeneficiaryType = "vendor"
	BeneficiaryIndividual BeneficiaryType = "individual"
)

var BeneficiaryTypes = []BeneficiaryType{
	BeneficiaryEmployee, BeneficiarySupplier, BeneficiaryVendor, BeneficiaryIndividual,
}

func (b BeneficiaryType) IsValid() bool {
	switch b {
	case BeneficiaryEmployee, BeneficiarySupplier, BeneficiaryVendor, BeneficiaryIndividual:
		return true
	}
	return false
}

// Actor usuario que ejecuta una operación (lo identifica la capa que llama).
type Actor struct {
	ID   string
	Name string
}

// Voucher representa un comprobante de egreso (solicitud de desembolso).
// TaxAmount y TotalAmount se calculan al crear y no vuelven a escribirse.
type Voucher struct {
	ID               string
	VoucherNumber    string
	Title            string
	Description      string
	Category         Category
	Amount           decimal.Decimal // base antes de impuestos
	TaxPercentage    decimal.Decimal // porcentaje, ej. 15
	TaxAmount        decimal.Decimal
	TotalAmount      decimal.Decimal
	Currency         string // ISO 4217
	PaymentMethod    PaymentMethod
	BeneficiaryName  string
	BeneficiaryType  BeneficiaryType
	BeneficiaryPhone string
	VoucherDate      time.Time // fecha contable del gasto
	Status           VoucherStatus
	CreatedBy        string
	CreatedByName    string
	RequestedBy      string
	RequestedByName  string
	Closing          ClosingEvent // nil mientras no haya evento de cierre
	Notes            string
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Approval devuelve los datos de aprobación, también cuando el comprobante ya fue pagado
// o anulado después de aprobarse.
func (v *Voucher) Approval() (Approval, bool) {
	switch ev := v.Closing.(type) {
	case Approval:
		return ev, true
	case Payment:
		return ev.Approval, true
	case Cancellation:
		if ev.Approval != nil {
			return *ev.Approval, true
		}
	}
	return Approval{}, false
}

func (v *Voucher) Rejection() (Rejection, bool) {
	ev, ok := v.Closing.(Rejection)
	return ev, ok
}

func (v *Voucher) Payment() (Payment, bool) {
	ev, ok := v.Closing.(Payment)
	return ev, ok
}

func (v *Voucher) Cancellation() (Cancellation, bool) {
	ev, ok := v.Closing.(Cancellation)
	return ev, ok
}
