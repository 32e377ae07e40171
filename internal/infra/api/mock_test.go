//go:build !integration

package api_test

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"celebrity-subscription/internal/domain"
	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/repository"
	"celebrity-subscription/internal/usecase"
)

type mockPaymentUC struct {
	SubmitFunc func(ctx context.Context, in usecase.SubmitPaymentInput) (*usecase.SubmitPaymentResult, error)
	VerifyFunc func(ctx context.Context, paymentID string, admin *model.AdminIdentity) (*usecase.VerifyPaymentResult, error)
	ListFunc   func(ctx context.Context, verified bool, limit int) ([]*model.PaymentRecord, error)
}

func (m *mockPaymentUC) Submit(ctx context.Context, in usecase.SubmitPaymentInput) (*usecase.SubmitPaymentResult, error) {
	return m.SubmitFunc(ctx, in)
}
func (m *mockPaymentUC) Verify(ctx context.Context, id string, admin *model.AdminIdentity) (*usecase.VerifyPaymentResult, error) {
	return m.VerifyFunc(ctx, id, admin)
}
func (m *mockPaymentUC) List(ctx context.Context, verified bool, limit int) ([]*model.PaymentRecord, error) {
	return m.ListFunc(ctx, verified, limit)
}

type mockPromotionUC struct {
	ActivateFunc func(ctx context.Context, celebrityID string, offer *decimal.Decimal, admin *model.AdminIdentity) (*usecase.PromotionResult, error)
}

func (m *mockPromotionUC) Activate(ctx context.Context, celebrityID string, offer *decimal.Decimal, admin *model.AdminIdentity) (*usecase.PromotionResult, error) {
	return m.ActivateFunc(ctx, celebrityID, offer, admin)
}

type mockExpiryUC struct {
	ForceExpireFunc func(ctx context.Context, ids []string, admin *model.AdminIdentity) (*usecase.ForceExpireResult, error)
}

func (m *mockExpiryUC) ForceExpire(ctx context.Context, ids []string, admin *model.AdminIdentity) (*usecase.ForceExpireResult, error) {
	return m.ForceExpireFunc(ctx, ids, admin)
}

type mockSubscriptionUC struct {
	StatusFunc func(ctx context.Context, celebrityID string) (*usecase.SubscriptionStatus, error)
}

func (m *mockSubscriptionUC) Status(ctx context.Context, celebrityID string) (*usecase.SubscriptionStatus, error) {
	return m.StatusFunc(ctx, celebrityID)
}
func (m *mockSubscriptionUC) SweepLapsed(ctx context.Context) ([]string, error) { return nil, nil }

type mockPricingUC struct {
	ListFunc func(ctx context.Context) ([]*model.PriceEntry, error)
	SetFunc  func(ctx context.Context, tier, duration string, price decimal.Decimal) (*model.PriceEntry, error)
}

func (m *mockPricingUC) PriceFor(ctx context.Context, tier model.Tier, duration model.DurationType) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, nil
}
func (m *mockPricingUC) List(ctx context.Context) ([]*model.PriceEntry, error) { return m.ListFunc(ctx) }
func (m *mockPricingUC) Set(ctx context.Context, tier, duration string, price decimal.Decimal) (*model.PriceEntry, error) {
	return m.SetFunc(ctx, tier, duration, price)
}

type mockStatsUC struct {
	TotalsFunc func(ctx context.Context) (*usecase.Totals, error)
}

func (m *mockStatsUC) Totals(ctx context.Context) (*usecase.Totals, error) { return m.TotalsFunc(ctx) }

// memAdminRepo backs the real AdminUseCase in router tests.
type memAdminRepo struct {
	byEmail map[string]*model.AdminIdentity
}

func (m *memAdminRepo) FindActiveByEmail(ctx context.Context, tx repository.Tx, email string) (*model.AdminIdentity, error) {
	a, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}
func (m *memAdminRepo) Save(ctx context.Context, tx repository.Tx, a *model.AdminIdentity) error {
	m.byEmail[strings.ToLower(a.Email)] = a
	return nil
}

type mockLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return m.AllowFunc(ctx, key, limit, window)
}
