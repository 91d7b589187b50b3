package session

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("ACCOUNTD_SESSION_BACKEND", "")
	t.Setenv("ACCOUNTD_REDIS_ADDR", "")
	t.Setenv("ACCOUNTD_REDIS_DB", "")
	t.Setenv("ACCOUNTD_SESSION_KEY", "")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != BackendAuto || cfg.Key != DefaultRedisKey || cfg.RedisDB != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigFromEnv_UnknownBackend(t *testing.T) {
	t.Setenv("ACCOUNTD_SESSION_BACKEND", "etcd")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for unknown backend, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidRedisDB(t *testing.T) {
	t.Setenv("ACCOUNTD_SESSION_BACKEND", "redis")
	t.Setenv("ACCOUNTD_REDIS_DB", "-1")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for negative db, got %v", err)
	}
}

func TestLoadConfigFromEnv_Valid(t *testing.T) {
	t.Setenv("ACCOUNTD_SESSION_BACKEND", "Redis")
	t.Setenv("ACCOUNTD_REDIS_ADDR", "redis:6380")
	t.Setenv("ACCOUNTD_REDIS_PASSWORD", "s3cret")
	t.Setenv("ACCOUNTD_REDIS_DB", "2")
	t.Setenv("ACCOUNTD_SESSION_KEY", "test:current")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != BackendRedis || cfg.RedisAddr != "redis:6380" || cfg.RedisPassword != "s3cret" ||
		cfg.RedisDB != 2 || cfg.Key != "test:current" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestOpen_AutoWithoutPoolIsMemory(t *testing.T) {
	tr, backend, closeFn, err := Open(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()

	if backend != BackendMemory {
		t.Fatalf("expected memory backend, got %q", backend)
	}
	if _, ok := tr.(*MemoryTracker); !ok {
		t.Fatalf("expected *MemoryTracker, got %T", tr)
	}
}

func TestOpen_PostgresWithoutPool(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendPostgres

	_, _, _, err := Open(context.Background(), cfg, nil)
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.Backend = BackendRedis
	cfg.RedisAddr = mr.Addr()

	tr, backend, closeFn, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()

	if backend != BackendRedis {
		t.Fatalf("expected redis backend, got %q", backend)
	}
	if err := tr.SetCurrent(context.Background(), "alice"); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}
	if got, _ := mr.Get(DefaultRedisKey); got != "alice" {
		t.Fatalf("expected key to hold alice, got %q", got)
	}
}

func TestOpen_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := DefaultConfig()
	cfg.Backend = BackendRedis
	cfg.RedisAddr = addr

	_, _, _, err := Open(context.Background(), cfg, nil)
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}
