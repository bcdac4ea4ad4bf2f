// Package memory implementa el almacén de comprobantes en memoria (desarrollo y pruebas).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Vouchers-api/internal/domain"
	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/jhoicas/Vouchers-api/internal/domain/repository"
	"github.com/jhoicas/Vouchers-api/internal/domain/voucher"
)

var _ repository.VoucherRepository = (*VoucherRepo)(nil)

// VoucherRepo guarda copias de los comprobantes; nunca expone punteros internos.
type VoucherRepo struct {
	mu       sync.RWMutex
	vouchers map[string]entity.Voucher
	seq      int64
	now      func() time.Time
}

// NewVoucherRepository construye el almacén vacío.
func NewVoucherRepository() *VoucherRepo {
	return &VoucherRepo{
		vouchers: make(map[string]entity.Voucher),
		now:      time.Now,
	}
}

func (r *VoucherRepo) Create(ctx context.Context, v *entity.Voucher) error {
	if err := ctx.Err(); err != nil {
		return domain.Unavailable("create voucher", err)
	}
	if err := voucher.Validate(v); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	r.seq++
	v.ID = uuid.New().String()
	v.VoucherNumber = voucher.FormatNumber(v.CreatedAt, r.seq)
	v.Version = 1
	v.UpdatedAt = v.CreatedAt
	r.vouchers[v.ID] = *v
	return nil
}

func (r *VoucherRepo) GetByID(ctx context.Context, id string) (*entity.Voucher, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Unavailable("get voucher", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.vouchers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (r *VoucherRepo) List(ctx context.Context, f repository.VoucherFilter) ([]*entity.Voucher, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Unavailable("list vouchers", err)
	}
	r.mu.RLock()
	out := make([]*entity.Voucher, 0, len(r.vouchers))
	for _, v := range r.vouchers {
		if !matches(v, f) {
			continue
		}
		c := v
		out = append(out, &c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].VoucherNumber > out[j].VoucherNumber
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*entity.Voucher{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

// UpdateStatus compara estado y versión y escribe bajo el mismo lock.
func (r *VoucherRepo) UpdateStatus(ctx context.Context, u repository.StatusUpdate) error {
	if err := ctx.Err(); err != nil {
		return domain.Unavailable("update voucher status", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.vouchers[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if v.Status != u.From || v.Version != u.ExpectedVersion {
		return domain.ErrConflict
	}
	v.Status = u.To
	v.Closing = u.Closing
	v.Version++
	v.UpdatedAt = u.UpdatedAt
	r.vouchers[u.ID] = v
	return nil
}

func matches(v entity.Voucher, f repository.VoucherFilter) bool {
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	if f.Category != "" && v.Category != f.Category {
		return false
	}
	if f.From != nil && v.VoucherDate.Before(*f.From) {
		return false
	}
	if f.To != nil && v.VoucherDate.After(*f.To) {
		return false
	}
	return true
}
