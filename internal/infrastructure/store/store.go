// Package store abre el almacén de comprobantes y el de idempotencia según la configuración.
package store

import (
	"context"
	"fmt"

	"github.com/jhoicas/Vouchers-api/internal/application/vouchers"
	"github.com/jhoicas/Vouchers-api/internal/domain/repository"
	"github.com/jhoicas/Vouchers-api/internal/infrastructure/cache"
	"github.com/jhoicas/Vouchers-api/internal/infrastructure/memory"
	mongostore "github.com/jhoicas/Vouchers-api/internal/infrastructure/mongo"
	"github.com/jhoicas/Vouchers-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Vouchers-api/pkg/config"
	"github.com/jhoicas/Vouchers-api/pkg/logger"
)

// OpenVouchers abre el almacén elegido por STORE_DRIVER. closeFn libera conexiones.
func OpenVouchers(ctx context.Context, cfg *config.Config, log *logger.Logger) (repo repository.VoucherRepository, closeFn func(), err error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		if cfg.DB.Migrate {
			if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
				return nil, nil, fmt.Errorf("migraciones: %w", err)
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		return postgres.NewVoucherRepository(pool), pool.Close, nil

	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("índices mongo: %w", err)
		}
		return mongostore.NewVoucherRepository(db), func() { _ = client.Disconnect(context.Background()) }, nil

	case config.DriverMemory:
		log.Warn().Msg("almacén en memoria: los comprobantes se pierden al reiniciar")
		return memory.NewVoucherRepository(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("STORE_DRIVER no soportado: %q", cfg.Store.Driver)
}

// OpenIdempotency Redis si REDIS_URL está definido; si no, mapa en memoria del proceso.
func OpenIdempotency(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (vouchers.IdempotencyStore, func(), error) {
	if cfg.URL == "" {
		log.Info().Msg("REDIS_URL vacío: idempotencia en memoria")
		return cache.NewInMemoryIdempotencyStore(), func() {}, nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedisIdempotencyStore(client, ""), func() { _ = client.Close() }, nil
}
