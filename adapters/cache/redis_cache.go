package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/career-compass/internal/application/service"
	"github.com/khoahotran/career-compass/pkg/logger"
)

// RedisCache stores JSON values in Redis. A nil client turns every call into
// a miss so the API keeps serving straight from Postgres.
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
	logger     logger.Logger

	warnedUnavailable atomic.Bool
}

var _ service.Cache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client, defaultTTL time.Duration, log logger.Logger) *RedisCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	if client == nil {
		log.Warn("Redis unavailable, bypassing cache")
	}
	return &RedisCache{client: client, defaultTTL: defaultTTL, logger: log}
}

func (r *RedisCache) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *RedisCache) warnUnavailableOnce(err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("Redis unavailable, bypassing cache", zap.Error(err))
	}
}

func (r *RedisCache) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.isUnavailable() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}
