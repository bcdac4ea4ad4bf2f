package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/jhoicas/Vouchers-api/internal/infrastructure/pdf"
)

func sampleVoucher() *entity.Voucher {
	at := time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC)
	return &entity.Voucher{
		ID:              "7d1c3c1e-8a51-4c39-9d43-3d4f7c8f2a10",
		VoucherNumber:   "VCH-202603-000042",
		VoucherDate:     at,
		Title:           "Reparación aire acondicionado",
		Description:     "Habitación 304",
		Category:        entity.CategoryMaintenance,
		BeneficiaryName: "Técnicos del Golfo",
		BeneficiaryType: entity.BeneficiarySupplier,
		Amount:          decimal.RequireFromString("1000.00"),
		TaxPercentage:   decimal.RequireFromString("15"),
		TaxAmount:       decimal.RequireFromString("150.00"),
		TotalAmount:     decimal.RequireFromString("1150.00"),
		Currency:        "SAR",
		PaymentMethod:   entity.PaymentBankTransfer,
		Status:          entity.StatusPending,
		RequestedBy:     "u-1",
		RequestedByName: "Recepción",
		CreatedBy:       "u-1",
		CreatedAt:       at,
		UpdatedAt:       at,
	}
}

func TestGenerateVoucherPDF_Pendiente(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator("Hotel Al Noor")

	b, err := g.GenerateVoucherPDF(sampleVoucher())
	require.NoError(t, err)
	require.NotEmpty(t, b)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestGenerateVoucherPDF_CadaEventoDeCierre(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	approval := entity.Approval{By: "m-1", ByName: "Gerencia", At: at, Notes: "ok"}

	cases := map[entity.VoucherStatus]entity.ClosingEvent{
		entity.StatusApproved:  approval,
		entity.StatusRejected:  entity.Rejection{By: "m-1", At: at, Reason: "sin soporte"},
		entity.StatusPaid:      entity.Payment{Approval: approval, By: "t-1", At: at, Reference: "TRX-1"},
		entity.StatusCancelled: entity.Cancellation{Approval: &approval, By: "m-1", At: at, Reason: "duplicado"},
	}

	g := pdf.NewMarotoPDFGenerator("")
	for status, ev := range cases {
		t.Run(string(status), func(t *testing.T) {
			v := sampleVoucher()
			v.Status = status
			v.Closing = ev

			b, err := g.GenerateVoucherPDF(v)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
		})
	}
}
