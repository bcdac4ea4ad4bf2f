package vouchers

import (
	"context"
	"time"

	"github.com/jhoicas/Vouchers-api/internal/application/dto"
	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/jhoicas/Vouchers-api/internal/domain/repository"
	"github.com/jhoicas/Vouchers-api/internal/domain/voucher"
)

// StatsUseCase estadísticas recalculadas en cada llamada sobre una foto del almacén.
type StatsUseCase struct {
	repo    repository.VoucherRepository
	timeout time.Duration
}

func NewStatsUseCase(repo repository.VoucherRepository, timeout time.Duration) *StatsUseCase {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &StatsUseCase{repo: repo, timeout: timeout}
}

// Stats aplica los filtros de status/category/from/to; la paginación se ignora.
func (uc *StatsUseCase) Stats(ctx context.Context, q dto.ListVouchersQuery) (dto.VoucherStatsResponse, error) {
	q.Limit, q.Offset = 0, 0
	filter, err := FilterFromQuery(q)
	if err != nil {
		return dto.VoucherStatsResponse{}, err
	}
	list, err := listWithTimeout(ctx, uc.repo, uc.timeout, filter)
	if err != nil {
		return dto.VoucherStatsResponse{}, err
	}
	return toStatsResponse(voucher.ComputeStats(list)), nil
}

func toStatsResponse(s voucher.Stats) dto.VoucherStatsResponse {
	counts := make(map[string]int, len(s.CountByStatus))
	for _, st := range entity.VoucherStatuses {
		counts[string(st)] = s.CountByStatus[st]
	}
	return dto.VoucherStatsResponse{
		Total:            s.Total,
		TotalAmount:      s.TotalAmount,
		PendingAmount:    s.PendingAmount,
		ApprovedAmount:   s.ApprovedAmount,
		PaidAmount:       s.PaidAmount,
		AvgVoucherAmount: s.AvgVoucherAmount,
		CountByStatus:    counts,
	}
}
