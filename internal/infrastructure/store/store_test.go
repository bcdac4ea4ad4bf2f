package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Vouchers-api/internal/infrastructure/memory"
	"github.com/jhoicas/Vouchers-api/internal/infrastructure/store"
	"github.com/jhoicas/Vouchers-api/pkg/config"
	"github.com/jhoicas/Vouchers-api/pkg/logger"
)

func TestOpenVouchers_Memoria(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.DriverMemory, Timeout: time.Second}}

	repo, closeFn, err := store.OpenVouchers(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &memory.VoucherRepo{}, repo)
}

func TestOpenVouchers_DriverDesconocido(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}
	_, _, err := store.OpenVouchers(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)
}

func TestOpenIdempotency_RedisYMemoria(t *testing.T) {
	ctx := context.Background()

	idem, closeFn, err := store.OpenIdempotency(ctx, config.RedisConfig{}, logger.Nop())
	require.NoError(t, err)
	closeFn()
	assert.NotNil(t, idem)

	mr := miniredis.RunT(t)
	idem, closeFn, err = store.OpenIdempotency(ctx, config.RedisConfig{URL: "redis://" + mr.Addr()}, logger.Nop())
	require.NoError(t, err)
	defer closeFn()

	_, reserved, err := idem.Reserve(ctx, "u-1:k", time.Minute)
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.True(t, mr.Exists("voucher:idempotency:u-1:k"), "prefijo por defecto del paquete cache")
}
