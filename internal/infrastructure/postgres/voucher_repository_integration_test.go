//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Vouchers-api/internal/domain"
	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/jhoicas/Vouchers-api/internal/domain/repository"
	"github.com/jhoicas/Vouchers-api/internal/domain/voucher"
	"github.com/jhoicas/Vouchers-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Vouchers-api/pkg/config"
	"github.com/jhoicas/Vouchers-api/pkg/logger"
)

// setupRepo levanta un PostgreSQL desechable, aplica las migraciones embebidas
// y devuelve el repositorio sobre un pool real.
func setupRepo(t *testing.T) *postgres.VoucherRepo {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("vouchers_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, postgres.Migrate(dsn, logger.Nop()))
	require.NoError(t, postgres.Migrate(dsn, logger.Nop()), "reaplicar no falla")

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 8})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return postgres.NewVoucherRepository(pool)
}

func newVoucher(t *testing.T, amount string, cat entity.Category, at time.Time) *entity.Voucher {
	t.Helper()
	v, err := voucher.New(voucher.Draft{
		Title:           "Compra de insumos",
		Category:        cat,
		Amount:          decimal.RequireFromString(amount),
		TaxPercentage:   decimal.RequireFromString("15.5"),
		Currency:        "sar",
		PaymentMethod:   entity.PaymentCheck,
		BeneficiaryName: "Proveedor Uno",
		BeneficiaryType: entity.BeneficiarySupplier,
		VoucherDate:     at,
	}, entity.Actor{ID: "req-1", Name: "Recepción"}, entity.StatusPending, at)
	require.NoError(t, err)
	return v
}

func TestIntegration_VoucherRepo(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 6, 10, 8, 0, 0, 0, time.UTC)

	t.Run("crear y leer conserva decimales", func(t *testing.T) {
		v := newVoucher(t, "26.88", entity.CategorySupplies, base)
		require.NoError(t, repo.Create(ctx, v))
		assert.Regexp(t, `^VCH-202606-\d{6}$`, v.VoucherNumber)
		assert.Equal(t, 1, v.Version)

		got, err := repo.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.True(t, got.TaxAmount.Equal(decimal.RequireFromString("4.1664")), got.TaxAmount.String())
		assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("31.0464")), got.TotalAmount.String())
		assert.Equal(t, "SAR", got.Currency)
		assert.Equal(t, entity.StatusPending, got.Status)
		assert.Nil(t, got.Closing)
		assert.WithinDuration(t, v.CreatedAt, got.CreatedAt, time.Millisecond)
	})

	t.Run("id inexistente o malformado", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "no-es-uuid")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = repo.GetByID(ctx, "7d1c3c1e-8a51-4c39-9d43-3d4f7c8f2a10")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("escritura condicional y cierre", func(t *testing.T) {
		v := newVoucher(t, "100", entity.CategoryFood, base)
		require.NoError(t, repo.Create(ctx, v))

		approval := entity.Approval{By: "m-1", ByName: "Gerencia", At: base.Add(time.Hour), Notes: "ok"}
		require.NoError(t, repo.UpdateStatus(ctx, repository.StatusUpdate{
			ID: v.ID, From: entity.StatusPending, ExpectedVersion: 1,
			To: entity.StatusApproved, Closing: approval, UpdatedAt: approval.At,
		}))

		err := repo.UpdateStatus(ctx, repository.StatusUpdate{
			ID: v.ID, From: entity.StatusPending, ExpectedVersion: 1,
			To: entity.StatusRejected, Closing: entity.Rejection{By: "m-2", At: base, Reason: "x"}, UpdatedAt: base,
		})
		assert.ErrorIs(t, err, domain.ErrConflict)

		payment := entity.Payment{Approval: approval, By: "t-1", At: base.Add(2 * time.Hour), Reference: "TRX-1"}
		require.NoError(t, repo.UpdateStatus(ctx, repository.StatusUpdate{
			ID: v.ID, From: entity.StatusApproved, ExpectedVersion: 2,
			To: entity.StatusPaid, Closing: payment, UpdatedAt: payment.At,
		}))

		got, err := repo.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusPaid, got.Status)
		assert.Equal(t, 3, got.Version)
		p, ok := got.Payment()
		require.True(t, ok)
		assert.Equal(t, "TRX-1", p.Reference)
		assert.Equal(t, "Gerencia", p.Approval.ByName)
		assert.True(t, p.At.Equal(payment.At))

		err = repo.UpdateStatus(ctx, repository.StatusUpdate{
			ID: "7d1c3c1e-8a51-4c39-9d43-3d4f7c8f2a10", From: entity.StatusPending, ExpectedVersion: 1,
			To: entity.StatusCancelled, Closing: entity.Cancellation{By: "x", At: base}, UpdatedAt: base,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("transiciones concurrentes: un solo ganador", func(t *testing.T) {
		v := newVoucher(t, "50", entity.CategoryCleaning, base)
		require.NoError(t, repo.Create(ctx, v))

		var wins, conflicts int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.UpdateStatus(ctx, repository.StatusUpdate{
					ID: v.ID, From: entity.StatusPending, ExpectedVersion: 1,
					To: entity.StatusApproved, Closing: entity.Approval{By: "m", At: base}, UpdatedAt: base,
				})
				switch {
				case err == nil:
					atomic.AddInt32(&wins, 1)
				case assert.ErrorIs(t, err, domain.ErrConflict):
					atomic.AddInt32(&conflicts, 1)
				}
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 1, wins)
		assert.EqualValues(t, 9, conflicts)
	})

	t.Run("listado filtra y ordena", func(t *testing.T) {
		july := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
		a := newVoucher(t, "10", entity.CategoryMarketing, july)
		b := newVoucher(t, "20", entity.CategoryMarketing, july.Add(time.Minute))
		require.NoError(t, repo.Create(ctx, a))
		require.NoError(t, repo.Create(ctx, b))

		from := july
		list, err := repo.List(ctx, repository.VoucherFilter{Category: entity.CategoryMarketing, From: &from})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, b.ID, list[0].ID, "más reciente primero")

		page, err := repo.List(ctx, repository.VoucherFilter{Category: entity.CategoryMarketing, Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, a.ID, page[0].ID)
	})
}
