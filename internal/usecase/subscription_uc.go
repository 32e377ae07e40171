// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"celebrity-subscription/internal/domain"
	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/repository"
)

// SubscriptionUseCase answers status questions and keeps stored flags in line
// with end dates.
type SubscriptionUseCase interface {
	Status(ctx context.Context, celebrityID string) (*SubscriptionStatus, error)
	// SweepLapsed deactivates subscriptions whose end has passed and unlists
	// their celebrities in one transaction. It returns the affected ids.
	SweepLapsed(ctx context.Context) ([]string, error)
}

type SubscriptionStatus struct {
	Subscription *model.SubscriptionRecord `json:"subscription"`
	Active       bool                      `json:"effectively_active"`
	CheckedAt    time.Time                 `json:"checked_at"`
}

var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type subscriptionUC struct {
	subs   repository.SubscriptionRepository
	celebs repository.CelebrityRepository
	tm     repository.TransactionManager
	clock  Clock
	log    *zerolog.Logger
}

func NewSubscriptionUseCase(
	subs repository.SubscriptionRepository,
	celebs repository.CelebrityRepository,
	tm repository.TransactionManager,
	clock Clock,
	logger *zerolog.Logger,
) SubscriptionUseCase {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &subscriptionUC{subs: subs, celebs: celebs, tm: tm, clock: clock, log: logger}
}

func (u *subscriptionUC) Status(ctx context.Context, celebrityID string) (*SubscriptionStatus, error) {
	celebrityID = strings.TrimSpace(celebrityID)
	if celebrityID == "" {
		return nil, domain.NewValidationError("celebrityId", "is required")
	}
	now := u.clock.now()
	s, err := u.subs.FindByCelebrity(ctx, repository.NoTX, celebrityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &SubscriptionStatus{CheckedAt: now}, nil
		}
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	return &SubscriptionStatus{Subscription: s, Active: s.IsEffectivelyActive(now), CheckedAt: now}, nil
}

func (u *subscriptionUC) SweepLapsed(ctx context.Context) ([]string, error) {
	now := u.clock.now()
	var ids []string
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		lapsed, err := u.subs.DeactivateLapsed(ctx, tx, now)
		if err != nil {
			return fmt.Errorf("deactivate lapsed: %w", err)
		}
		if len(lapsed) == 0 {
			return nil
		}
		if _, err := u.celebs.SetFlagsBulk(ctx, tx, lapsed, model.FlagsUnlisted); err != nil {
			return fmt.Errorf("unlist lapsed: %w", err)
		}
		ids = lapsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		u.log.Info().Int("count", len(ids)).Msg("lapsed subscriptions deactivated")
	}
	return ids, nil
}
