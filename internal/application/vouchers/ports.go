package vouchers

import (
	"context"
	"time"

	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
)

// IdempotencyStore reserva claves Idempotency-Key para POST /vouchers.
// Reserve devuelve reserved=true si la clave era nueva; si no, existingID trae el comprobante
// ya creado o queda vacío si la primera solicitud sigue en curso.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (existingID string, reserved bool, err error)
	Complete(ctx context.Context, key, voucherID string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// PDFGenerator renderiza un comprobante en PDF.
type PDFGenerator interface {
	GenerateVoucherPDF(v *entity.Voucher) ([]byte, error)
}
