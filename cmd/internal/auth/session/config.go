package session

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Backend names accepted by ACCOUNTD_SESSION_BACKEND.
const (
	BackendAuto     = "auto"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
)

// Config selects and configures the Tracker backend.
type Config struct {
	// Backend is one of auto, postgres, memory, redis.
	// auto picks postgres when a database pool is available, memory otherwise.
	Backend string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Key is the Redis key holding the current login.
	Key string
}

// DefaultConfig returns the auto backend with the default Redis key.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendAuto,
		RedisAddr: "127.0.0.1:6379",
		Key:       DefaultRedisKey,
	}
}

// LoadConfigFromEnv loads tracker configuration from environment variables.
//
// Optional:
//   - ACCOUNTD_SESSION_BACKEND (auto|postgres|memory|redis)
//   - ACCOUNTD_REDIS_ADDR
//   - ACCOUNTD_REDIS_PASSWORD
//   - ACCOUNTD_REDIS_DB
//   - ACCOUNTD_SESSION_KEY
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("ACCOUNTD_SESSION_BACKEND")); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("ACCOUNTD_REDIS_ADDR")); v != "" {
		cfg.RedisAddr = v
	}
	cfg.RedisPassword = os.Getenv("ACCOUNTD_REDIS_PASSWORD")

	if v := strings.TrimSpace(os.Getenv("ACCOUNTD_REDIS_DB")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, ErrConfig
		}
		cfg.RedisDB = n
	}
	if v := strings.TrimSpace(os.Getenv("ACCOUNTD_SESSION_KEY")); v != "" {
		cfg.Key = v
	}

	switch cfg.Backend {
	case BackendAuto, BackendPostgres, BackendMemory, BackendRedis:
	default:
		return Config{}, ErrConfig
	}
	return cfg, nil
}

// Open builds the configured Tracker. pool may be nil when no database is configured.
//
// The returned close func releases backend resources owned by the tracker
// (the Redis client); it is never nil.
func Open(ctx context.Context, cfg Config, pool *pgxpool.Pool, opts ...PostgresOption) (Tracker, string, func() error, error) {
	noop := func() error { return nil }

	backend := cfg.Backend
	if backend == "" || backend == BackendAuto {
		backend = BackendMemory
		if pool != nil {
			backend = BackendPostgres
		}
	}

	switch backend {
	case BackendMemory:
		return NewMemoryTracker(), backend, noop, nil

	case BackendPostgres:
		if pool == nil {
			return nil, "", noop, fmt.Errorf("%w: postgres session backend requires ACCOUNTD_DATABASE_URL", ErrConfig)
		}
		t, err := NewPostgresTracker(pool, opts...)
		if err != nil {
			return nil, "", noop, err
		}
		return t, backend, noop, nil

	case BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, "", noop, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		t, err := NewRedisTracker(rdb, cfg.Key)
		if err != nil {
			_ = rdb.Close()
			return nil, "", noop, err
		}
		return t, backend, rdb.Close, nil

	default:
		return nil, "", noop, fmt.Errorf("%w: unknown session backend %q", ErrConfig, cfg.Backend)
	}
}
