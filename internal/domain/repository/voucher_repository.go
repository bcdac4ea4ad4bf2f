package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
)

// VoucherFilter filtros opcionales del listado. Campos vacíos no filtran.
type VoucherFilter struct {
	Status   entity.VoucherStatus
	Category entity.Category
	From     *time.Time // voucher_date >= From
	To       *time.Time // voucher_date <= To
	Limit    int
	Offset   int
}

// StatusUpdate escritura condicional: se aplica solo si el registro sigue en From con ExpectedVersion.
type StatusUpdate struct {
	ID              string
	From            entity.VoucherStatus
	ExpectedVersion int
	To              entity.VoucherStatus
	Closing         entity.ClosingEvent
	UpdatedAt       time.Time
}

// VoucherRepository define el puerto de persistencia para comprobantes de egreso (DIP).
// No existe actualización libre de campos: la única mutación es UpdateStatus.
type VoucherRepository interface {
	// Create valida, asigna ID, número, versión 1 y persiste.
	Create(ctx context.Context, v *entity.Voucher) error
	// GetByID devuelve domain.ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*entity.Voucher, error)
	// List devuelve los comprobantes del más reciente al más antiguo.
	List(ctx context.Context, filter VoucherFilter) ([]*entity.Voucher, error)
	// UpdateStatus devuelve domain.ErrConflict si el estado o la versión cambiaron
	// y domain.ErrNotFound si el registro no existe.
	UpdateStatus(ctx context.Context, u StatusUpdate) error
}
