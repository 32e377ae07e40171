package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"celebrity-subscription/internal/domain"
	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/repository"
)

const (
	StepCelebrityLookup    = "celebrity_lookup"
	StepSubscriptionInsert = "subscription_insert"
)

// PromotionUseCase grants the free top-tier week outside the payment flow.
type PromotionUseCase interface {
	// Activate creates a verified promotional payment and an active 1-week
	// subscription, then lists the celebrity. On a failed step the partial
	// result is returned together with a *StepError.
	Activate(ctx context.Context, celebrityID string, offerAmount *decimal.Decimal, admin *model.AdminIdentity) (*PromotionResult, error)
}

type PromotionResult struct {
	Payment      *model.PaymentRecord
	Subscription *model.SubscriptionRecord
	Message      string
	Steps        []StepResult
}

var _ PromotionUseCase = (*promotionUC)(nil)

type promotionUC struct {
	payments repository.PaymentRepository
	subs     repository.SubscriptionRepository
	celebs   repository.CelebrityRepository
	clock    Clock
	log      *zerolog.Logger
}

func NewPromotionUseCase(
	payments repository.PaymentRepository,
	subs repository.SubscriptionRepository,
	celebs repository.CelebrityRepository,
	clock Clock,
	logger *zerolog.Logger,
) PromotionUseCase {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &promotionUC{payments: payments, subs: subs, celebs: celebs, clock: clock, log: logger}
}

func (u *promotionUC) Activate(ctx context.Context, celebrityID string, offerAmount *decimal.Decimal, admin *model.AdminIdentity) (*PromotionResult, error) {
	if admin == nil {
		return nil, domain.ErrUnauthorized
	}
	celebrityID = strings.TrimSpace(celebrityID)
	switch {
	case celebrityID == "":
		return nil, domain.NewValidationError("celebrityId", "is required")
	case offerAmount == nil:
		return nil, domain.NewValidationError("offerAmount", "is required")
	}
	if err := model.CheckAmount("offerAmount", *offerAmount); err != nil {
		return nil, err
	}

	now := u.clock.now()
	tier, duration := model.TopTier, model.DurationOneWeek
	p := &model.PaymentRecord{
		ID:            uuid.NewString(),
		CelebrityID:   celebrityID,
		PhoneNumber:   "promotional",
		ReferenceCode: PromoReference(celebrityID, now),
		Tier:          &tier,
		Duration:      &duration,
		PaymentDate:   now,
		PaymentType:   model.PaymentTypePromotionalOffer,
	}
	p.SetAmounts(*offerAmount, *offerAmount)
	p.MarkVerified(admin.ID, now)
	sub := model.NewActiveSubscription(p, now)

	res := &PromotionResult{}
	steps, err := NewSaga("promotional_activation", u.log).
		Then(StepCelebrityLookup, func(ctx context.Context) error {
			_, err := u.celebs.FindByID(ctx, repository.NoTX, celebrityID)
			return err
		}).
		Then(StepPaymentInsert, func(ctx context.Context) error {
			if err := u.payments.Create(ctx, repository.NoTX, p); err != nil {
				return err
			}
			res.Payment = p
			return nil
		}).
		Then(StepSubscriptionInsert, func(ctx context.Context) error {
			if err := u.subs.Create(ctx, repository.NoTX, sub); err != nil {
				return err
			}
			res.Subscription = sub
			return nil
		}).
		ThenBestEffort(StepProfileFlags, func(ctx context.Context) error {
			return u.celebs.SetFlags(ctx, repository.NoTX, celebrityID, model.FlagsListed)
		}).
		Run(ctx)
	res.Steps = steps
	if err != nil {
		res.Message = "Promotional activation failed"
		return res, err
	}

	res.Message = fmt.Sprintf("Promotional %s subscription active until %s", tier, sub.End.Format("2006-01-02 15:04 MST"))
	u.log.Info().
		Str("celebrity_id", celebrityID).
		Str("payment_id", p.ID).
		Str("admin_id", admin.ID).
		Time("subscription_end", sub.End).
		Msg("promotional offer activated")
	return res, nil
}

// PromoReference derives a unique reference code from the celebrity id and
// the activation time. The ULID carries the millisecond timestamp plus entropy,
// so no sequence is needed.
func PromoReference(celebrityID string, at time.Time) string {
	prefix := strings.ToUpper(strings.ReplaceAll(celebrityID, "-", ""))
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	id := ulid.MustNew(ulid.Timestamp(at), rand.Reader)
	return "PROMO-" + prefix + "-" + id.String()
}
