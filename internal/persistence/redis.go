package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/config"
)

// ErrCacheUnavailable reports an unconfigured or unreachable client.
var ErrCacheUnavailable = errors.New("redis client not configured")

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return ErrCacheUnavailable
	}
	return r.Client.Ping(ctx).Err()
}

// GetBytes reads a cached value. redis.Nil propagates on a miss.
func (r *Redis) GetBytes(ctx context.Context, key string) ([]byte, error) {
	if r == nil || r.Client == nil {
		return nil, ErrCacheUnavailable
	}
	return r.Client.Get(ctx, key).Bytes()
}

// SetBytes writes a cached value with a TTL.
func (r *Redis) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r == nil || r.Client == nil {
		return ErrCacheUnavailable
	}
	return r.Client.Set(ctx, key, value, ttl).Err()
}

// Delete drops cached keys.
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if r == nil || r.Client == nil {
		return ErrCacheUnavailable
	}
	return r.Client.Del(ctx, keys...).Err()
}
