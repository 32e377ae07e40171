package worker

import (
	"context"
	"time"

	"celebrity-subscription/internal/domain/ports/adapter"
)

var _ adapter.AdminNotifier = (*AsyncNotifier)(nil)

// AsyncNotifier hands admin alerts to the pool so request handlers never wait on
// the chat transport. NotifyAdmins only fails when the alert could not be queued.
type AsyncNotifier struct {
	pool    *Pool
	next    adapter.AdminNotifier
	timeout time.Duration
}

func NewAsyncNotifier(pool *Pool, next adapter.AdminNotifier, timeout time.Duration) *AsyncNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AsyncNotifier{pool: pool, next: next, timeout: timeout}
}

func (a *AsyncNotifier) NotifyAdmins(_ context.Context, text string) error {
	return a.pool.Submit(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		return a.next.NotifyAdmins(ctx, text)
	})
}
