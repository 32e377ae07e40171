package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"celebrity-subscription/internal/domain"
	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/repository"
)

const (
	StepSubscriptionsExpire = "subscriptions_expire"
	StepProfilesUnlist      = "profiles_unlist"
)

// ForceExpireBackdate is how far in the past a forced expiry sets the end date.
const ForceExpireBackdate = time.Hour

// ExpiryUseCase is the administrative bulk expiry.
type ExpiryUseCase interface {
	ForceExpire(ctx context.Context, celebrityIDs []string, admin *model.AdminIdentity) (*ForceExpireResult, error)
}

type ForceExpireResult struct {
	Requested            int
	SubscriptionsExpired int64
	ProfilesUnlisted     int64
	Message              string
	Steps                []StepResult
}

var _ ExpiryUseCase = (*expiryUC)(nil)

type expiryUC struct {
	subs   repository.SubscriptionRepository
	celebs repository.CelebrityRepository
	clock  Clock
	log    *zerolog.Logger
}

func NewExpiryUseCase(subs repository.SubscriptionRepository, celebs repository.CelebrityRepository, clock Clock, logger *zerolog.Logger) ExpiryUseCase {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &expiryUC{subs: subs, celebs: celebs, clock: clock, log: logger}
}

func (u *expiryUC) ForceExpire(ctx context.Context, celebrityIDs []string, admin *model.AdminIdentity) (*ForceExpireResult, error) {
	if admin == nil {
		return nil, domain.ErrUnauthorized
	}
	ids := dedupeIDs(celebrityIDs)
	if len(ids) == 0 {
		return nil, domain.NewValidationError("celebrityIds", "must be a non-empty list")
	}

	end := u.clock.now().Add(-ForceExpireBackdate)
	res := &ForceExpireResult{Requested: len(ids)}
	steps, err := NewSaga("force_expire", u.log).
		Then(StepSubscriptionsExpire, func(ctx context.Context) error {
			n, err := u.subs.ExpireByCelebrities(ctx, repository.NoTX, ids, end)
			res.SubscriptionsExpired = n
			return err
		}).
		Then(StepProfilesUnlist, func(ctx context.Context) error {
			n, err := u.celebs.SetFlagsBulk(ctx, repository.NoTX, ids, model.FlagsUnlisted)
			res.ProfilesUnlisted = n
			return err
		}).
		Run(ctx)
	res.Steps = steps
	if err != nil {
		res.Message = "Forced expiry failed"
		return res, err
	}

	res.Message = "Subscriptions expired and profiles unlisted"
	u.log.Info().
		Str("admin_id", admin.ID).
		Int("requested", res.Requested).
		Int64("subscriptions_expired", res.SubscriptionsExpired).
		Int64("profiles_unlisted", res.ProfilesUnlisted).
		Msg("forced expiry processed")
	return res, nil
}

func dedupeIDs(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
