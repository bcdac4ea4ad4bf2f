package mongo

import (
	"fmt"
	"time"

	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// voucherDocument forma persistida del comprobante. Los montos van como Decimal128.
type voucherDocument struct {
	ID               string               `bson:"_id"`
	VoucherNumber    string               `bson:"voucher_number"`
	Title            string               `bson:"title"`
	Description      string               `bson:"description"`
	Category         string               `bson:"category"`
	Amount           primitive.Decimal128 `bson:"amount"`
	TaxPercentage    primitive.Decimal128 `bson:"tax_percentage"`
	TaxAmount        primitive.Decimal128 `bson:"tax_amount"`
	TotalAmount      primitive.Decimal128 `bson:"total_amount"`
	Currency         string               `bson:"currency"`
	PaymentMethod    string               `bson:"payment_method"`
	BeneficiaryName  string               `bson:"beneficiary_name"`
	BeneficiaryType  string               `bson:"beneficiary_type"`
	BeneficiaryPhone string               `bson:"beneficiary_phone"`
	VoucherDate      time.Time            `bson:"voucher_date"`
	Status           string               `bson:"status"`
	CreatedBy        string               `bson:"created_by"`
	CreatedByName    string               `bson:"created_by_name"`
	RequestedBy      string               `bson:"requested_by"`
	RequestedByName  string               `bson:"requested_by_name"`
	Closing          closingDocument      `bson:",inline"`
	Notes            string               `bson:"notes"`
	Version          int                  `bson:"version"`
	CreatedAt        time.Time            `bson:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at"`
}

// closingDocument mismos campos que entity.ClosingRecord, con nombres bson.
type closingDocument struct {
	ApprovedBy         *string    `bson:"approved_by"`
	ApprovedByName     *string    `bson:"approved_by_name"`
	ApprovedAt         *time.Time `bson:"approved_at"`
	ApprovalNotes      *string    `bson:"approval_notes"`
	RejectedBy         *string    `bson:"rejected_by"`
	RejectedByName     *string    `bson:"rejected_by_name"`
	RejectedAt         *time.Time `bson:"rejected_at"`
	RejectionReason    *string    `bson:"rejection_reason"`
	PaidBy             *string    `bson:"paid_by"`
	PaidByName         *string    `bson:"paid_by_name"`
	PaidAt             *time.Time `bson:"paid_at"`
	PaymentReference   *string    `bson:"payment_reference"`
	PaymentNotes       *string    `bson:"payment_notes"`
	CancelledBy        *string    `bson:"cancelled_by"`
	CancelledByName    *string    `bson:"cancelled_by_name"`
	CancelledAt        *time.Time `bson:"cancelled_at"`
	CancellationReason *string    `bson:"cancellation_reason"`
}

func toDocument(v *entity.Voucher) (voucherDocument, error) {
	amounts := make([]primitive.Decimal128, 4)
	for i, d := range []decimal.Decimal{v.Amount, v.TaxPercentage, v.TaxAmount, v.TotalAmount} {
		d128, err := primitive.ParseDecimal128(d.String())
		if err != nil {
			return voucherDocument{}, fmt.Errorf("decimal128 %s: %w", d, err)
		}
		amounts[i] = d128
	}
	return voucherDocument{
		ID:               v.ID,
		VoucherNumber:    v.VoucherNumber,
		Title:            v.Title,
		Description:      v.Description,
		Category:         string(v.Category),
		Amount:           amounts[0],
		TaxPercentage:    amounts[1],
		TaxAmount:        amounts[2],
		TotalAmount:      amounts[3],
		Currency:         v.Currency,
		PaymentMethod:    string(v.PaymentMethod),
		BeneficiaryName:  v.BeneficiaryName,
		BeneficiaryType:  string(v.BeneficiaryType),
		BeneficiaryPhone: v.BeneficiaryPhone,
		VoucherDate:      v.VoucherDate.UTC(),
		Status:           string(v.Status),
		CreatedBy:        v.CreatedBy,
		CreatedByName:    v.CreatedByName,
		RequestedBy:      v.RequestedBy,
		RequestedByName:  v.RequestedByName,
		Closing:          closingDocument(entity.FlattenClosing(v.Closing)),
		Notes:            v.Notes,
		Version:          v.Version,
		CreatedAt:        v.CreatedAt.UTC(),
		UpdatedAt:        v.UpdatedAt.UTC(),
	}, nil
}

func (d voucherDocument) toEntity() (*entity.Voucher, error) {
	var amounts [4]decimal.Decimal
	for i, d128 := range []primitive.Decimal128{d.Amount, d.TaxPercentage, d.TaxAmount, d.TotalAmount} {
		dec, err := decimal.NewFromString(d128.String())
		if err != nil {
			return nil, fmt.Errorf("decimal %s: %w", d128, err)
		}
		amounts[i] = dec
	}
	status := entity.VoucherStatus(d.Status)
	return &entity.Voucher{
		ID:               d.ID,
		VoucherNumber:    d.VoucherNumber,
		Title:            d.Title,
		Description:      d.Description,
		Category:         entity.Category(d.Category),
		Amount:           amounts[0],
		TaxPercentage:    amounts[1],
		TaxAmount:        amounts[2],
		TotalAmount:      amounts[3],
		Currency:         d.Currency,
		PaymentMethod:    entity.PaymentMethod(d.PaymentMethod),
		BeneficiaryName:  d.BeneficiaryName,
		BeneficiaryType:  entity.BeneficiaryType(d.BeneficiaryType),
		BeneficiaryPhone: d.BeneficiaryPhone,
		VoucherDate:      d.VoucherDate,
		Status:           status,
		CreatedBy:        d.CreatedBy,
		CreatedByName:    d.CreatedByName,
		RequestedBy:      d.RequestedBy,
		RequestedByName:  d.RequestedByName,
		Closing:          entity.ClosingRecord(d.Closing).Event(status),
		Notes:            d.Notes,
		Version:          d.Version,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}, nil
}
