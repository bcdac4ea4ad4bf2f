package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/jhoicas/Vouchers-api/pkg/labels"
)

// DateLayout formato de voucher_date y de los filtros from/to.
const DateLayout = "2006-01-02"

// SubmitVoucherRequest body para POST /api/vouchers y POST /api/vouchers/drafts.
// TaxPercentage y Currency vacíos toman los valores por defecto de la política.
type SubmitVoucherRequest struct {
	Title            string           `json:"title" validate:"max=255"`
	Description      string           `json:"description"`
	Category         string           `json:"category" validate:"required,oneof=salaries utilities maintenance supplies food cleaning marketing other"`
	Amount           decimal.Decimal  `json:"amount" swaggertype:"string"`
	TaxPercentage    *decimal.Decimal `json:"tax_percentage,omitempty" swaggertype:"string"`
	Currency         string           `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	PaymentMethod    string           `json:"payment_method" validate:"required,oneof=cash bank_transfer check credit_card"`
	BeneficiaryName  string           `json:"beneficiary_name" validate:"required,max=255"`
	BeneficiaryType  string           `json:"beneficiary_type" validate:"required,oneof=employee supplier vendor individual"`
	BeneficiaryPhone string           `json:"beneficiary_phone,omitempty" validate:"max=64"`
	VoucherDate      string           `json:"voucher_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	RequestedBy      string           `json:"requested_by,omitempty"`
	RequestedByName  string           `json:"requested_by_name,omitempty"`
	Notes            string           `json:"notes,omitempty"`
}

// ApproveRequest body para POST /api/vouchers/:id/approve.
type ApproveRequest struct {
	Notes string `json:"notes,omitempty"`
}

// RejectRequest body para POST /api/vouchers/:id/reject.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// PayRequest body para POST /api/vouchers/:id/pay.
type PayRequest struct {
	Reference string `json:"reference,omitempty" validate:"max=128"`
	Notes     string `json:"notes,omitempty"`
}

// CancelRequest body para POST /api/vouchers/:id/cancel.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ListVouchersQuery filtros de GET /api/vouchers y GET /api/vouchers/stats.
type ListVouchersQuery struct {
	Status   string `query:"status" validate:"omitempty,oneof=draft pending approved paid rejected cancelled"`
	Category string `query:"category" validate:"omitempty,oneof=salaries utilities maintenance supplies food cleaning marketing other"`
	From     string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset   int    `query:"offset" validate:"omitempty,min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (q *ListVouchersQuery) DefaultPage() {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

// ActorResponse usuario que ejecutó un evento.
type ActorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ClosingResponse evento de cierre. Kind: approved, rejected, paid o cancelled.
type ClosingResponse struct {
	Kind      string        `json:"kind"`
	By        ActorResponse `json:"by"`
	At        time.Time     `json:"at"`
	Notes     string        `json:"notes,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Reference string        `json:"reference,omitempty"`
}

// ApprovalResponse aprobación vigente (también en pagados o anulados tras aprobarse).
type ApprovalResponse struct {
	By    ActorResponse `json:"by"`
	At    time.Time     `json:"at"`
	Notes string        `json:"notes,omitempty"`
}

// VoucherResponse comprobante en respuestas, con etiquetas de presentación.
type VoucherResponse struct {
	ID                   string            `json:"id"`
	VoucherNumber        string            `json:"voucher_number"`
	Title                string            `json:"title"`
	Description          string            `json:"description,omitempty"`
	Category             string            `json:"category"`
	CategoryLabel        string            `json:"category_label"`
	Amount               decimal.Decimal   `json:"amount" swaggertype:"string"`
	TaxPercentage        decimal.Decimal   `json:"tax_percentage" swaggertype:"string"`
	TaxAmount            decimal.Decimal   `json:"tax_amount" swaggertype:"string"`
	TotalAmount          decimal.Decimal   `json:"total_amount" swaggertype:"string"`
	TotalAmountFormatted string            `json:"total_amount_formatted"`
	Currency             string            `json:"currency"`
	PaymentMethod        string            `json:"payment_method"`
	PaymentMethodLabel   string            `json:"payment_method_label"`
	BeneficiaryName      string            `json:"beneficiary_name"`
	BeneficiaryType      string            `json:"beneficiary_type"`
	BeneficiaryTypeLabel string            `json:"beneficiary_type_label"`
	BeneficiaryPhone     string            `json:"beneficiary_phone,omitempty"`
	VoucherDate          string            `json:"voucher_date"`
	Status               string            `json:"status"`
	StatusLabel          string            `json:"status_label"`
	CreatedBy            ActorResponse     `json:"created_by"`
	RequestedBy          ActorResponse     `json:"requested_by"`
	Approval             *ApprovalResponse `json:"approval,omitempty"`
	Closing              *ClosingResponse  `json:"closing,omitempty"`
	Notes                string            `json:"notes,omitempty"`
	Version              int               `json:"version"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// VoucherListResponse página de comprobantes.
type VoucherListResponse struct {
	Items []VoucherResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// VoucherStatsResponse estadísticas calculadas al vuelo.
type VoucherStatsResponse struct {
	Total            int             `json:"total"`
	TotalAmount      decimal.Decimal `json:"total_amount" swaggertype:"string"`
	PendingAmount    decimal.Decimal `json:"pending_amount" swaggertype:"string"`
	ApprovedAmount   decimal.Decimal `json:"approved_amount" swaggertype:"string"`
	PaidAmount       decimal.Decimal `json:"paid_amount" swaggertype:"string"`
	AvgVoucherAmount decimal.Decimal `json:"avg_voucher_amount" swaggertype:"string"`
	CountByStatus    map[string]int  `json:"count_by_status"`
}

// NewVoucherResponse mapea la entidad a la respuesta HTTP.
func NewVoucherResponse(v *entity.Voucher) VoucherResponse {
	r := VoucherResponse{
		ID:                   v.ID,
		VoucherNumber:        v.VoucherNumber,
		Title:                v.Title,
		Description:          v.Description,
		Category:             string(v.Category),
		CategoryLabel:        labels.Category(v.Category),
		Amount:               v.Amount,
		TaxPercentage:        v.TaxPercentage,
		TaxAmount:            v.TaxAmount,
		TotalAmount:          v.TotalAmount,
		TotalAmountFormatted: labels.FormatAmount(v.TotalAmount, v.Currency),
		Currency:             v.Currency,
		PaymentMethod:        string(v.PaymentMethod),
		PaymentMethodLabel:   labels.PaymentMethod(v.PaymentMethod),
		BeneficiaryName:      v.BeneficiaryName,
		BeneficiaryType:      string(v.BeneficiaryType),
		BeneficiaryTypeLabel: labels.BeneficiaryType(v.BeneficiaryType),
		BeneficiaryPhone:     v.BeneficiaryPhone,
		VoucherDate:          v.VoucherDate.Format(DateLayout),
		Status:               string(v.Status),
		StatusLabel:          labels.Status(v.Status),
		CreatedBy:            ActorResponse{ID: v.CreatedBy, Name: v.CreatedByName},
		RequestedBy:          ActorResponse{ID: v.RequestedBy, Name: v.RequestedByName},
		Notes:                v.Notes,
		Version:              v.Version,
		CreatedAt:            v.CreatedAt,
		UpdatedAt:            v.UpdatedAt,
	}
	if a, ok := v.Approval(); ok {
		r.Approval = &ApprovalResponse{By: ActorResponse{ID: a.By, Name: a.ByName}, At: a.At, Notes: a.Notes}
	}

	switch ev := v.Closing.(type) {
	case entity.Approval:
		r.Closing = &ClosingResponse{Kind: string(ev.Status()), By: ActorResponse{ID: ev.By, Name: ev.ByName}, At: ev.At, Notes: ev.Notes}
	case entity.Rejection:
		r.Closing = &ClosingResponse{Kind: string(ev.Status()), By: ActorResponse{ID: ev.By, Name: ev.ByName}, At: ev.At, Reason: ev.Reason}
	case entity.Payment:
		r.Closing = &ClosingResponse{Kind: string(ev.Status()), By: ActorResponse{ID: ev.By, Name: ev.ByName}, At: ev.At, Notes: ev.Notes, Reference: ev.Reference}
	case entity.Cancellation:
		r.Closing = &ClosingResponse{Kind: string(ev.Status()), By: ActorResponse{ID: ev.By, Name: ev.ByName}, At: ev.At, Reason: ev.Reason}
	}
	return r
}
