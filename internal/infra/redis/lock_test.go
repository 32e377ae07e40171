//go:build !integration

package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memLockBackend struct {
	mu   sync.Mutex
	vals map[string]string
}

func (m *memLockBackend) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vals[key]; ok {
		return false, nil
	}
	m.vals[key] = value.(string)
	return true, nil
}

func (m *memLockBackend) DeleteIfEquals(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vals[key] == value {
		delete(m.vals, key)
	}
	return nil
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	backend := &memLockBackend{vals: map[string]string{}}
	l := NewLocker(backend)

	tok, err := l.TryLock(ctx, "lock:sweep", time.Minute)
	if err != nil || tok == "" {
		t.Fatalf("TryLock() = %q, %v", tok, err)
	}
	if _, err := l.TryLock(ctx, "lock:sweep", time.Minute); !errors.Is(err, ErrLockHeld) {
		t.Errorf("expected ErrLockHeld, got %v", err)
	}

	// a stale token must not release someone else's lock
	_ = l.Unlock(ctx, "lock:sweep", "stale")
	if _, err := l.TryLock(ctx, "lock:sweep", time.Minute); !errors.Is(err, ErrLockHeld) {
		t.Errorf("expected the lock to survive a foreign unlock, got %v", err)
	}

	if err := l.Unlock(ctx, "lock:sweep", tok); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if _, err := l.TryLock(ctx, "lock:sweep", time.Minute); err != nil {
		t.Errorf("expected the lock to be free, got %v", err)
	}
}
