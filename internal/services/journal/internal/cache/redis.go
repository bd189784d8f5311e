package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/redis/go-redis/v9"
)

const redisPrefix = "lucid:summary:"

// RedisSummary shares cached summaries between instances.
type RedisSummary struct {
	rdb *redis.Client
	ttl time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedisSummary(cfg RedisConfig) *RedisSummary {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisSummary{
		rdb: rdb,
		ttl: cfg.TTL,
	}
}

// Load serves a cached summary or computes and stores it. Redis failures
// degrade to computing the summary directly.
func (r *RedisSummary) Load(ctx context.Context, uid string, from, to model.Date, compute ComputeFunc) ([]model.MonthlyMoodCount, error) {
	gen, err := r.generation(ctx, uid)
	if err != nil {
		slog.WarnContext(ctx, "summary cache unavailable", "uid", uid, "error", err)
		return compute(ctx)
	}

	key := redisPrefix + summaryKey(uid, gen, from, to)
	raw, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v []model.MonthlyMoodCount
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		slog.WarnContext(ctx, "discarding corrupt summary cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "summary cache unavailable", "uid", uid, "error", err)
		return compute(ctx)
	}

	v, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	raw, err = json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	if err := r.rdb.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "store summary in cache", "key", key, "error", err)
	}
	return v, nil
}

func (r *RedisSummary) Invalidate(ctx context.Context, uid string) error {
	if err := r.seedGeneration(ctx, uid); err != nil {
		return fmt.Errorf("seed summary generation: %w", err)
	}
	if err := r.rdb.Incr(ctx, genKey(uid)).Err(); err != nil {
		return fmt.Errorf("bump summary generation: %w", err)
	}
	return nil
}

// generation returns the user's current generation. A missing key, whether
// never written or evicted, starts over at a random value so summaries cached
// under earlier generations are not reused.
func (r *RedisSummary) generation(ctx context.Context, uid string) (int64, error) {
	gen, err := r.rdb.Get(ctx, genKey(uid)).Int64()
	if !errors.Is(err, redis.Nil) {
		return gen, err
	}
	if err := r.seedGeneration(ctx, uid); err != nil {
		return 0, err
	}
	return r.rdb.Get(ctx, genKey(uid)).Int64()
}

// seedGeneration sets a random generation if the user has none. Seeds stay
// below half the int64 range so INCR never overflows.
func (r *RedisSummary) seedGeneration(ctx context.Context, uid string) error {
	return r.rdb.SetNX(ctx, genKey(uid), rand.Int64N(math.MaxInt64/2), 0).Err()
}

func (r *RedisSummary) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisSummary) Close() error {
	return r.rdb.Close()
}

func genKey(uid string) string {
	return redisPrefix + "gen:" + uid
}
