// Package cache guarda claves de idempotencia de creación de comprobantes.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Vouchers-api/internal/application/vouchers"
)

const (
	defaultKeyPrefix = "voucher:idempotency:"
	// pendingMarker valor mientras la primera solicitud no termina.
	pendingMarker = "__pending__"
)

var _ vouchers.IdempotencyStore = (*RedisIdempotencyStore)(nil)

// NewRedisClient crea el cliente desde REDIS_URL y valida conectividad.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// RedisIdempotencyStore implementación compartida entre instancias.
type RedisIdempotencyStore struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisIdempotencyStore usa keyPrefix o el prefijo por defecto si está vacío.
func NewRedisIdempotencyStore(client redis.Cmdable, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// Reserve usa SETNX con TTL; la reserva es atómica entre instancias.
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	k := s.keyPrefix + key
	ok, err := s.client.SetNX(ctx, k, pendingMarker, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("reservar clave de idempotencia: %w", err)
	}
	if ok {
		return "", true, nil
	}

	val, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expiró entre SETNX y GET
		return s.Reserve(ctx, key, ttl)
	}
	if err != nil {
		return "", false, fmt.Errorf("leer clave de idempotencia: %w", err)
	}
	if val == pendingMarker {
		return "", false, nil
	}
	return val, false, nil
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, key, voucherID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, voucherID, ttl).Err(); err != nil {
		return fmt.Errorf("completar clave de idempotencia: %w", err)
	}
	return nil
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("liberar clave de idempotencia: %w", err)
	}
	return nil
}
