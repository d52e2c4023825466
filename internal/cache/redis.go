package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/institute-cms/internal/config"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis is a Store backed by a Redis server. Every key is namespaced with the
// configured prefix.
type Redis struct {
	rdb    *goredis.Client
	prefix string
	log    zerolog.Logger
}

// Verify interface compliance
var _ Store = (*Redis)(nil)

// NewRedis connects and pings the server.
func NewRedis(cfg *config.RedisConfig, log zerolog.Logger) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	r := &Redis{
		rdb:    rdb,
		prefix: cfg.KeyPrefix,
		log:    log.With().Str("component", "cache").Logger(),
	}
	r.log.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("Redis cache connected")
	return r, nil
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.rdb.Del(ctx, full...).Err()
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

// New returns a Redis store when an address is configured and an in-memory
// store otherwise.
func New(cfg *config.RedisConfig, log zerolog.Logger) (Store, error) {
	if cfg.Addr == "" {
		log.Info().Msg("REDIS_ADDR not set, using in-memory cache")
		return NewMemory(), nil
	}
	return NewRedis(cfg, log)
}
