//go:build !integration

package postgres

import (
	"context"
	"time"

	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/repository"
	red "celebrity-subscription/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerPricingRepo mocks the database repository that the pricing decorator wraps.
type mockInnerPricingRepo struct {
	GetActiveFunc  func(ctx context.Context, tx repository.Tx, tier model.Tier, duration model.DurationType) (*model.PriceEntry, error)
	ListActiveFunc func(ctx context.Context, tx repository.Tx) ([]*model.PriceEntry, error)
	UpsertFunc     func(ctx context.Context, tx repository.Tx, e *model.PriceEntry) error
}

func (m *mockInnerPricingRepo) GetActive(ctx context.Context, tx repository.Tx, tier model.Tier, duration model.DurationType) (*model.PriceEntry, error) {
	return m.GetActiveFunc(ctx, tx, tier, duration)
}
func (m *mockInnerPricingRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.PriceEntry, error) {
	return m.ListActiveFunc(ctx, tx)
}
func (m *mockInnerPricingRepo) Upsert(ctx context.Context, tx repository.Tx, e *model.PriceEntry) error {
	return m.UpsertFunc(ctx, tx, e)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc == nil {
		return "", red.Nil
	}
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error { return nil }
