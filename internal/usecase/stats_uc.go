package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/repository"
)

var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase reports admin dashboard figures.
type StatsUseCase interface {
	Totals(ctx context.Context) (*Totals, error)
}

// Revenue is the sum of verified payment amounts over trailing windows.
type Revenue struct {
	Week  decimal.Decimal `json:"week"`
	Month decimal.Decimal `json:"month"`
	Year  decimal.Decimal `json:"year"`
}

type Totals struct {
	ActiveByTier     map[model.Tier]int `json:"active_by_tier"`
	PendingPayments  int                `json:"pending_payments"`
	VerifiedPayments int                `json:"verified_payments"`
	Revenue          Revenue            `json:"revenue"`
	GeneratedAt      time.Time          `json:"generated_at"`
}

type statsUC struct {
	subs     repository.SubscriptionRepository
	payments repository.PaymentRepository
	clock    Clock

	log *zerolog.Logger
}

func NewStatsUseCase(subs repository.SubscriptionRepository, payments repository.PaymentRepository, clock Clock, logger *zerolog.Logger) StatsUseCase {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &statsUC{subs: subs, payments: payments, clock: clock, log: logger}
}

func (s *statsUC) Totals(ctx context.Context) (*Totals, error) {
	now := s.clock.now()
	active, err := s.subs.CountActiveByTier(ctx, repository.NoTX, now)
	if err != nil {
		return nil, err
	}
	pending, verified, err := s.payments.CountByVerification(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	rev, err := s.revenue(ctx, now)
	if err != nil {
		return nil, err
	}
	return &Totals{
		ActiveByTier:     active,
		PendingPayments:  pending,
		VerifiedPayments: verified,
		Revenue:          rev,
		GeneratedAt:      now,
	}, nil
}

func (s *statsUC) revenue(ctx context.Context, now time.Time) (Revenue, error) {
	var r Revenue
	windows := []struct {
		since time.Time
		dst   *decimal.Decimal
	}{
		{now.AddDate(0, 0, -7), &r.Week},
		{now.AddDate(0, -1, 0), &r.Month},
		{now.AddDate(-1, 0, 0), &r.Year},
	}
	for _, w := range windows {
		sum, err := s.payments.SumVerifiedSince(ctx, repository.NoTX, w.since)
		if err != nil {
			return Revenue{}, err
		}
		*w.dst = sum
	}
	return r, nil
}
