package voucher

import (
	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// avgScale decimales del promedio; coincide con la escala de total_amount.
const avgScale = 6

// Stats estadísticas del conjunto de comprobantes. Todas las sumas son sobre TotalAmount.
type Stats struct {
	Total            int
	TotalAmount      decimal.Decimal
	PendingAmount    decimal.Decimal
	ApprovedAmount   decimal.Decimal
	PaidAmount       decimal.Decimal
	AvgVoucherAmount decimal.Decimal
	CountByStatus    map[entity.VoucherStatus]int
}

// ComputeStats recorre una foto del almacén; no guarda contadores.
func ComputeStats(vouchers []*entity.Voucher) Stats {
	s := Stats{
		TotalAmount:      decimal.Zero,
		PendingAmount:    decimal.Zero,
		ApprovedAmount:   decimal.Zero,
		PaidAmount:       decimal.Zero,
		AvgVoucherAmount: decimal.Zero,
		CountByStatus:    make(map[entity.VoucherStatus]int, len(entity.VoucherStatuses)),
	}
	for _, st := range entity.VoucherStatuses {
		s.CountByStatus[st] = 0
	}

	for _, v := range vouchers {
		if v == nil {
			continue
		}
		s.Total++
		s.TotalAmount = s.TotalAmount.Add(v.TotalAmount)
		s.CountByStatus[v.Status]++
		switch v.Status {
		case entity.StatusPending:
			s.PendingAmount = s.PendingAmount.Add(v.TotalAmount)
		case entity.StatusApproved:
			s.ApprovedAmount = s.ApprovedAmount.Add(v.TotalAmount)
		case entity.StatusPaid:
			s.PaidAmount = s.PaidAmount.Add(v.TotalAmount)
		}
	}

	if s.Total > 0 {
		s.AvgVoucherAmount = s.TotalAmount.DivRound(decimal.NewFromInt(int64(s.Total)), avgScale)
	}
	return s
}
