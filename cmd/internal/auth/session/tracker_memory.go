package session

import (
	"context"
	"sync"
)

// MemoryTracker keeps the current login in a process-wide variable.
// The mutex only keeps reads and writes race-free; it adds no scoping.
type MemoryTracker struct {
	mu    sync.RWMutex
	login string
	set   bool
}

// NewMemoryTracker returns an empty tracker.
func NewMemoryTracker() *MemoryTracker { return &MemoryTracker{} }

func (t *MemoryTracker) SetCurrent(ctx context.Context, login string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	t.login = login
	t.set = true
	t.mu.Unlock()
	return nil
}

func (t *MemoryTracker) Current(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.login, t.set, nil
}
