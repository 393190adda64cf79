package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finplanner/internal/model"
)

const redisKeyPrefix = "finplanner:"

// RedisOptions configures a Redis-backed cache.
type RedisOptions struct {
	Addr string
	DB   int
	TTL  time.Duration // 0 = no expiry
}

// Redis shares cached plans across server replicas.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects lazily; the first command dials.
func NewRedis(opts RedisOptions) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		DB:          opts.DB,
		DialTimeout: 2 * time.Second,
		ReadTimeout: time.Second,
	})
	return &Redis{client: rdb, ttl: opts.TTL}
}

// Get treats every failure as a miss. Errors other than a missing key are
// logged.
func (r *Redis) Get(ctx context.Context, key string) (*model.PlanResult, bool) {
	b, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("cache: redis get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var p model.PlanResult
	if err := json.Unmarshal(b, &p); err != nil {
		zap.L().Warn("cache: redis decode failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &p, true
}

func (r *Redis) Set(ctx context.Context, key string, plan *model.PlanResult) error {
	b, err := json.Marshal(plan)
	if err != nil {
		return eris.Wrap(err, "cache: marshal plan")
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, b, r.ttl).Err(); err != nil {
		return eris.Wrapf(err, "cache: redis set %s", key)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
