package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OpenRedis connects the idempotency store. Short timeouts keep a slow redis
// from stalling request handling.
func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     20,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Ping(r)(ctx); err != nil {
		_ = r.Close()
		return nil, err
	}
	zap.L().Info("redis: connected", zap.String("addr", addr), zap.Int("db", db))
	return r, nil
}

// Ping adapts r to a readiness check.
func Ping(r redis.Cmdable) func(ctx context.Context) error {
	return func(ctx context.Context) error { return r.Ping(ctx).Err() }
}
