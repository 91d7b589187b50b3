package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key holding the current login.
const DefaultRedisKey = "accountd:current_session"

// RedisTracker keeps the current login under a single Redis key with no TTL.
type RedisTracker struct {
	rdb *redis.Client
	key string
}

// NewRedisTracker wraps an existing client. An empty key selects DefaultRedisKey.
// The client is owned by the caller.
func NewRedisTracker(rdb *redis.Client, key string) (*RedisTracker, error) {
	if rdb == nil {
		return nil, fmt.Errorf("%w: nil redis client", ErrConfig)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisTracker{rdb: rdb, key: key}, nil
}

func (t *RedisTracker) SetCurrent(ctx context.Context, login string) error {
	if err := t.rdb.Set(ctx, t.key, login, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

func (t *RedisTracker) Current(ctx context.Context) (string, bool, error) {
	login, err := t.rdb.Get(ctx, t.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return login, true, nil
}
