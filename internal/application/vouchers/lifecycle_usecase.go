// Package vouchers casos de uso del ciclo de vida de comprobantes de egreso.
package vouchers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Vouchers-api/internal/application/dto"
	"github.com/jhoicas/Vouchers-api/internal/domain"
	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/jhoicas/Vouchers-api/internal/domain/repository"
	"github.com/jhoicas/Vouchers-api/internal/domain/voucher"
	"github.com/jhoicas/Vouchers-api/pkg/logger"
)

// LifecycleConfig políticas del ciclo de vida.
type LifecycleConfig struct {
	MaxAttempts          int           // intentos ante carrera de versión (mínimo 1)
	StoreTimeout         time.Duration // límite de cada llamada al almacén
	DefaultTaxPercentage decimal.Decimal
	DefaultCurrency      string
	IdempotencyTTL       time.Duration
}

// LifecycleUseCase crea comprobantes y ejecuta sus transiciones con escritura condicional.
type LifecycleUseCase struct {
	repo repository.VoucherRepository
	idem IdempotencyStore
	cfg  LifecycleConfig
	log  *logger.Logger
	now  func() time.Time
}

// NewLifecycleUseCase construye el caso de uso. idem puede ser nil (sin Idempotency-Key).
func NewLifecycleUseCase(repo repository.VoucherRepository, idem IdempotencyStore, cfg LifecycleConfig, log *logger.Logger) *LifecycleUseCase {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "SAR"
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LifecycleUseCase{repo: repo, idem: idem, cfg: cfg, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (pruebas y seed).
func (uc *LifecycleUseCase) WithClock(now func() time.Time) *LifecycleUseCase {
	uc.now = now
	return uc
}

// Submit crea el comprobante en estado pending con impuesto y total congelados.
func (uc *LifecycleUseCase) Submit(ctx context.Context, actor entity.Actor, in dto.SubmitVoucherRequest) (*entity.Voucher, error) {
	return uc.create(ctx, actor, in, entity.StatusPending)
}

// SubmitDraft crea el comprobante en borrador; sale de ahí con SendForApproval o Cancel.
func (uc *LifecycleUseCase) SubmitDraft(ctx context.Context, actor entity.Actor, in dto.SubmitVoucherRequest) (*entity.Voucher, error) {
	return uc.create(ctx, actor, in, entity.StatusDraft)
}

// SubmitIdempotent como Submit, pero una misma key del mismo actor crea un solo comprobante.
// replayed=true cuando se devuelve el comprobante creado por una solicitud anterior.
func (uc *LifecycleUseCase) SubmitIdempotent(ctx context.Context, key string, actor entity.Actor, in dto.SubmitVoucherRequest) (v *entity.Voucher, replayed bool, err error) {
	key = strings.TrimSpace(key)
	if key == "" || uc.idem == nil {
		v, err = uc.Submit(ctx, actor, in)
		return v, false, err
	}
	scoped := actor.ID + ":" + key

	existingID, reserved, err := uc.idem.Reserve(ctx, scoped, uc.cfg.IdempotencyTTL)
	if err != nil {
		return nil, false, domain.Unavailable("idempotency reserve", err)
	}
	if !reserved {
		if existingID == "" {
			return nil, false, domain.ErrRequestInProgress
		}
		v, err = uc.Get(ctx, existingID)
		return v, err == nil, err
	}

	v, err = uc.Submit(ctx, actor, in)
	if err != nil {
		if rerr := uc.idem.Release(context.WithoutCancel(ctx), scoped); rerr != nil {
			uc.log.Warn().Err(rerr).Str("idempotency_key", key).Msg("No se pudo liberar la clave de idempotencia")
		}
		return nil, false, err
	}
	if cerr := uc.idem.Complete(context.WithoutCancel(ctx), scoped, v.ID, uc.cfg.IdempotencyTTL); cerr != nil {
		uc.log.Warn().Err(cerr).Str("idempotency_key", key).Str("voucher_id", v.ID).Msg("No se pudo completar la clave de idempotencia")
	}
	return v, false, nil
}

// SendForApproval draft -> pending.
func (uc *LifecycleUseCase) SendForApproval(ctx context.Context, id string, actor entity.Actor) (*entity.Voucher, error) {
	return uc.transition(ctx, id, voucher.Command{Action: voucher.ActionSubmit, Actor: actor})
}

// Approve pending -> approved.
func (uc *LifecycleUseCase) Approve(ctx context.Context, id string, actor entity.Actor, notes string) (*entity.Voucher, error) {
	return uc.transition(ctx, id, voucher.Command{Action: voucher.ActionApprove, Actor: actor, Notes: notes})
}

// Reject pending -> rejected. reason es obligatorio.
func (uc *LifecycleUseCase) Reject(ctx context.Context, id string, actor entity.Actor, reason string) (*entity.Voucher, error) {
	return uc.transition(ctx, id, voucher.Command{Action: voucher.ActionReject, Actor: actor, Reason: reason})
}

// MarkPaid approved -> paid.
func (uc *LifecycleUseCase) MarkPaid(ctx context.Context, id string, actor entity.Actor, reference, notes string) (*entity.Voucher, error) {
	return uc.transition(ctx, id, voucher.Command{Action: voucher.ActionPay, Actor: actor, Reference: reference, Notes: notes})
}

// Cancel draft|pending|approved -> cancelled. Nunca desde paid.
func (uc *LifecycleUseCase) Cancel(ctx context.Context, id string, actor entity.Actor, reason string) (*entity.Voucher, error) {
	return uc.transition(ctx, id, voucher.Command{Action: voucher.ActionCancel, Actor: actor, Reason: reason})
}

// Get lectura puntual.
func (uc *LifecycleUseCase) Get(ctx context.Context, id string) (*entity.Voucher, error) {
	var v *entity.Voucher
	err := uc.withTimeout(ctx, "get voucher", func(ctx context.Context) error {
		var err error
		v, err = uc.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// List comprobantes filtrados, del más reciente al más antiguo.
func (uc *LifecycleUseCase) List(ctx context.Context, q dto.ListVouchersQuery) ([]*entity.Voucher, error) {
	filter, err := FilterFromQuery(q)
	if err != nil {
		return nil, err
	}
	return listWithTimeout(ctx, uc.repo, uc.cfg.StoreTimeout, filter)
}

func (uc *LifecycleUseCase) create(ctx context.Context, actor entity.Actor, in dto.SubmitVoucherRequest, status entity.VoucherStatus) (*entity.Voucher, error) {
	d, err := uc.toDraft(in)
	if err != nil {
		return nil, err
	}
	v, err := voucher.New(d, actor, status, uc.clock())
	if err != nil {
		return nil, err
	}
	if err := uc.withTimeout(ctx, "create voucher", func(ctx context.Context) error {
		return uc.repo.Create(ctx, v)
	}); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("voucher_id", v.ID).
		Str("voucher_number", v.VoucherNumber).
		Str("status", string(v.Status)).
		Str("total", v.TotalAmount.String()).
		Str("actor", actor.ID).
		Msg("Comprobante creado")
	return v, nil
}

// transition lee, planifica y escribe condicionalmente. Si la escritura choca y el estado
// cambió, otro actor ganó: Conflict inmediato. Si solo cambió la versión, reintenta.
func (uc *LifecycleUseCase) transition(ctx context.Context, id string, cmd voucher.Command) (*entity.Voucher, error) {
	v, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		cmd.At = uc.clock()
		to, closing, err := voucher.Plan(v, cmd)
		if err != nil {
			return nil, err
		}

		u := repository.StatusUpdate{
			ID:              v.ID,
			From:            v.Status,
			ExpectedVersion: v.Version,
			To:              to,
			Closing:         closing,
			UpdatedAt:       cmd.At,
		}
		err = uc.withTimeout(ctx, "update voucher status", func(ctx context.Context) error {
			return uc.repo.UpdateStatus(ctx, u)
		})
		if err == nil {
			uc.log.Info().
				Str("voucher_id", v.ID).
				Str("action", string(cmd.Action)).
				Str("from", string(u.From)).
				Str("to", string(to)).
				Str("actor", cmd.Actor.ID).
				Msg("Transición de comprobante")
			updated := *v
			updated.Status = to
			updated.Closing = closing
			updated.Version = v.Version + 1
			updated.UpdatedAt = cmd.At
			return &updated, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}

		current, rerr := uc.Get(ctx, id)
		if rerr != nil {
			return nil, rerr
		}
		if current.Status != v.Status {
			uc.log.Warn().
				Str("voucher_id", id).
				Str("action", string(cmd.Action)).
				Str("expected", string(v.Status)).
				Str("found", string(current.Status)).
				Msg("Transición concurrente detectada")
			return nil, fmt.Errorf("%w: el comprobante pasó a %s", domain.ErrConflict, current.Status)
		}
		if attempt >= uc.cfg.MaxAttempts {
			uc.log.Warn().Str("voucher_id", id).Int("attempts", attempt).Msg("Reintentos agotados")
			return nil, domain.ErrConflict
		}
		v = current
	}
}

// clock hora UTC a milisegundos, la precisión común de Postgres y Mongo.
func (uc *LifecycleUseCase) clock() time.Time {
	return uc.now().UTC().Truncate(time.Millisecond)
}

// withTimeout ejecuta fn con el límite configurado; un timeout o cancelación sale como StoreUnavailable.
func (uc *LifecycleUseCase) withTimeout(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return callWithTimeout(ctx, uc.cfg.StoreTimeout, op, fn)
}

func callWithTimeout(ctx context.Context, timeout time.Duration, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return err
		}
		return &domain.StoreError{Op: op, Err: err}
	}
	return domain.Unavailable(op, err)
}

func listWithTimeout(ctx context.Context, repo repository.VoucherRepository, timeout time.Duration, f repository.VoucherFilter) ([]*entity.Voucher, error) {
	var list []*entity.Voucher
	err := callWithTimeout(ctx, timeout, "list vouchers", func(ctx context.Context) error {
		var err error
		list, err = repo.List(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (uc *LifecycleUseCase) toDraft(in dto.SubmitVoucherRequest) (voucher.Draft, error) {
	tax := uc.cfg.DefaultTaxPercentage
	if in.TaxPercentage != nil {
		tax = *in.TaxPercentage
	}
	currency := in.Currency
	if strings.TrimSpace(currency) == "" {
		currency = uc.cfg.DefaultCurrency
	}

	var date time.Time
	if in.VoucherDate != "" {
		d, err := time.Parse(dto.DateLayout, in.VoucherDate)
		if err != nil {
			return voucher.Draft{}, domain.Invalid("voucher_date", "formato esperado AAAA-MM-DD")
		}
		date = d
	}

	return voucher.Draft{
		Title:            in.Title,
		Description:      in.Description,
		Category:         entity.Category(in.Category),
		Amount:           in.Amount,
		TaxPercentage:    tax,
		Currency:         currency,
		PaymentMethod:    entity.PaymentMethod(in.PaymentMethod),
		BeneficiaryName:  in.BeneficiaryName,
		BeneficiaryType:  entity.BeneficiaryType(in.BeneficiaryType),
		BeneficiaryPhone: in.BeneficiaryPhone,
		VoucherDate:      date,
		RequestedBy:      entity.Actor{ID: in.RequestedBy, Name: in.RequestedByName},
		Notes:            in.Notes,
	}, nil
}

// FilterFromQuery convierte los filtros HTTP. to es inclusivo (hasta el final del día).
func FilterFromQuery(q dto.ListVouchersQuery) (repository.VoucherFilter, error) {
	f := repository.VoucherFilter{
		Status:   entity.VoucherStatus(q.Status),
		Category: entity.Category(q.Category),
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if f.Status != "" && !f.Status.IsValid() {
		return f, domain.Invalid("status", fmt.Sprintf("estado inválido: %q", q.Status))
	}
	if f.Category != "" && !f.Category.IsValid() {
		return f, domain.Invalid("category", fmt.Sprintf("categoría inválida: %q", q.Category))
	}
	if q.From != "" {
		from, err := time.Parse(dto.DateLayout, q.From)
		if err != nil {
			return f, domain.Invalid("from", "formato esperado AAAA-MM-DD")
		}
		f.From = &from
	}
	if q.To != "" {
		to, err := time.Parse(dto.DateLayout, q.To)
		if err != nil {
			return f, domain.Invalid("to", "formato esperado AAAA-MM-DD")
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, domain.Invalid("from", "from no puede ser posterior a to")
	}
	return f, nil
}
