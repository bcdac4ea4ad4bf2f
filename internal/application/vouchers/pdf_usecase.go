package vouchers

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/jhoicas/Vouchers-api/internal/domain/repository"
)

// PDFUseCase genera la representación imprimible de un comprobante.
type PDFUseCase struct {
	repo      repository.VoucherRepository
	generator PDFGenerator
	timeout   time.Duration
}

func NewPDFUseCase(repo repository.VoucherRepository, generator PDFGenerator, timeout time.Duration) *PDFUseCase {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PDFUseCase{repo: repo, generator: generator, timeout: timeout}
}

// Render devuelve el PDF y el nombre de archivo (número del comprobante).
//
// Retorna domain.ErrNotFound si el comprobante no existe.
func (uc *PDFUseCase) Render(ctx context.Context, id string) (pdfBytes []byte, filename string, err error) {
	var v *entity.Voucher
	err = callWithTimeout(ctx, uc.timeout, "get voucher", func(ctx context.Context) error {
		var gerr error
		v, gerr = uc.repo.GetByID(ctx, id)
		return gerr
	})
	if err != nil {
		return nil, "", err
	}

	pdfBytes, err = uc.generator.GenerateVoucherPDF(v)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar comprobante %s: %w", v.VoucherNumber, err)
	}
	return pdfBytes, v.VoucherNumber + ".pdf", nil
}
