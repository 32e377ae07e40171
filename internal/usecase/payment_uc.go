// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"celebrity-subscription/internal/domain"
	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/adapter"
	"celebrity-subscription/internal/domain/ports/repository"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// Step names reported back to callers.
const (
	StepPaymentInsert       = "payment_insert"
	StepSubscriptionUpsert  = "subscription_upsert"
	StepPaymentMarkVerified = "payment_mark_verified"
	StepSubscriptionActive  = "subscription_activate"
	StepProfileFlags        = "profile_flags"
)

type PaymentUseCase interface {
	// Submit records a payment claim and parks an inactive subscription for its tier.
	Submit(ctx context.Context, in SubmitPaymentInput) (*SubmitPaymentResult, error)
	// Verify marks a payment verified and, unless underpaid, activates the subscription.
	// On a failed step the partial result is returned together with a *StepError.
	Verify(ctx context.Context, paymentID string, admin *model.AdminIdentity) (*VerifyPaymentResult, error)
	// List returns payments in the given verification state.
	List(ctx context.Context, verified bool, limit int) ([]*model.PaymentRecord, error)
}

type SubmitPaymentInput struct {
	CelebrityID    string
	PhoneNumber    string
	ReferenceCode  string
	Amount         *decimal.Decimal
	Tier           string
	Duration       string
	ExpectedAmount *decimal.Decimal
}

type SubmitPaymentResult struct {
	Payment *model.PaymentRecord
	Warning string
	Steps   []StepResult
}

type VerifyPaymentResult struct {
	Payment         *model.PaymentRecord
	Subscription    *model.SubscriptionRecord
	AlreadyVerified bool
	IsUnderpaid     bool
	Activated       bool
	Message         string
	Steps           []StepResult
}

type paymentUC struct {
	payments repository.PaymentRepository
	subs     repository.SubscriptionRepository
	celebs   repository.CelebrityRepository
	pricing  PricingUseCase
	notifier adapter.AdminNotifier
	clock    Clock
	log      *zerolog.Logger
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	subs repository.SubscriptionRepository,
	celebs repository.CelebrityRepository,
	pricing PricingUseCase,
	notifier adapter.AdminNotifier,
	clock Clock,
	logger *zerolog.Logger,
) PaymentUseCase {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &paymentUC{
		payments: payments,
		subs:     subs,
		celebs:   celebs,
		pricing:  pricing,
		notifier: notifier,
		clock:    clock,
		log:      logger,
	}
}

func (u *paymentUC) Submit(ctx context.Context, in SubmitPaymentInput) (*SubmitPaymentResult, error) {
	p, err := u.newPaymentRecord(ctx, in)
	if err != nil {
		return nil, err
	}
	now := p.PaymentDate

	saga := NewSaga("payment_submission", u.log).
		Then(StepPaymentInsert, func(ctx context.Context) error {
			return u.payments.Create(ctx, repository.NoTX, p)
		})
	if p.Tier != nil {
		saga.ThenBestEffort(StepSubscriptionUpsert, func(ctx context.Context) error {
			return u.subs.Upsert(ctx, repository.NoTX, model.NewPendingSubscription(p, now))
		})
	}
	steps, err := saga.Run(ctx)
	if err != nil {
		return nil, err
	}

	u.log.Info().
		Str("payment_id", p.ID).
		Str("celebrity_id", p.CelebrityID).
		Str("payment_status", string(p.Status)).
		Msg("payment submitted")
	u.notifyAdmins(ctx, submissionAlert(p))

	return &SubmitPaymentResult{Payment: p, Warning: SubmissionWarning(p), Steps: steps}, nil
}

func (u *paymentUC) newPaymentRecord(ctx context.Context, in SubmitPaymentInput) (*model.PaymentRecord, error) {
	celebrityID := strings.TrimSpace(in.CelebrityID)
	phone := strings.TrimSpace(in.PhoneNumber)
	ref := model.NormalizeReference(in.ReferenceCode)
	switch {
	case celebrityID == "":
		return nil, domain.NewValidationError("celebrityId", "is required")
	case phone == "":
		return nil, domain.NewValidationError("phoneNumber", "is required")
	case ref == "":
		return nil, domain.NewValidationError("mpesaCode", "is required")
	case in.Amount == nil:
		return nil, domain.NewValidationError("amount", "is required")
	}
	if err := model.CheckAmount("amount", *in.Amount); err != nil {
		return nil, err
	}
	if in.ExpectedAmount != nil {
		if err := model.CheckAmount("expectedAmount", *in.ExpectedAmount); err != nil {
			return nil, err
		}
	}

	var tier *model.Tier
	if strings.TrimSpace(in.Tier) != "" {
		t, err := model.ParseTier(in.Tier)
		if err != nil {
			return nil, err
		}
		tier = &t
	}
	var duration *model.DurationType
	if strings.TrimSpace(in.Duration) != "" {
		d, err := model.ParseDuration(in.Duration)
		if err != nil {
			return nil, err
		}
		duration = &d
	}

	expected := decimal.Zero
	switch {
	case in.ExpectedAmount != nil:
		expected = *in.ExpectedAmount
	case tier != nil && duration != nil:
		price, _, err := u.pricing.PriceFor(ctx, *tier, *duration)
		if err != nil {
			return nil, err
		}
		expected = price
	}

	p := &model.PaymentRecord{
		ID:            uuid.NewString(),
		CelebrityID:   celebrityID,
		PhoneNumber:   phone,
		ReferenceCode: ref,
		Tier:          tier,
		Duration:      duration,
		PaymentDate:   u.clock.now(),
		PaymentType:   model.PaymentTypeStandard,
	}
	p.SetAmounts(*in.Amount, expected)
	return p, nil
}

func (u *paymentUC) Verify(ctx context.Context, paymentID string, admin *model.AdminIdentity) (*VerifyPaymentResult, error) {
	if admin == nil {
		return nil, domain.ErrUnauthorized
	}
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, domain.NewValidationError("paymentId", "is required")
	}

	p, err := u.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if p.IsVerified {
		return &VerifyPaymentResult{Payment: p, AlreadyVerified: true, IsUnderpaid: p.IsUnderpaid(), Message: "Payment was already verified"}, nil
	}

	now := u.clock.now()
	res := &VerifyPaymentResult{Payment: p, IsUnderpaid: p.IsUnderpaid()}
	activate := !res.IsUnderpaid && p.HasPlan()

	saga := NewSaga("payment_verification", u.log).
		Then(StepPaymentMarkVerified, func(ctx context.Context) error {
			won, err := u.payments.MarkVerified(ctx, repository.NoTX, p.ID, admin.ID, now)
			if err != nil {
				return err
			}
			if !won {
				res.AlreadyVerified = true
				return ErrHaltSaga
			}
			p.MarkVerified(admin.ID, now)
			return nil
		})
	if activate {
		sub := model.NewActiveSubscription(p, now)
		saga.Then(StepSubscriptionActive, func(ctx context.Context) error {
			if err := u.subs.Upsert(ctx, repository.NoTX, sub); err != nil {
				return err
			}
			res.Subscription = sub
			res.Activated = true
			return nil
		}).ThenBestEffort(StepProfileFlags, func(ctx context.Context) error {
			return u.celebs.SetFlags(ctx, repository.NoTX, p.CelebrityID, model.FlagsListed)
		})
	}

	res.Steps, err = saga.Run(ctx)
	res.Message = verificationMessage(res)
	if err != nil {
		return res, err
	}
	u.log.Info().
		Str("payment_id", p.ID).
		Str("admin_id", admin.ID).
		Bool("already_verified", res.AlreadyVerified).
		Bool("underpaid", res.IsUnderpaid).
		Bool("activated", res.Activated).
		Msg("payment verification processed")
	return res, nil
}

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// ListLimit is the page size List applies for a requested limit.
func ListLimit(requested int) int {
	if requested <= 0 || requested > maxListLimit {
		return defaultListLimit
	}
	return requested
}

func (u *paymentUC) List(ctx context.Context, verified bool, limit int) ([]*model.PaymentRecord, error) {
	return u.payments.ListByVerification(ctx, repository.NoTX, verified, ListLimit(limit))
}

func (u *paymentUC) notifyAdmins(ctx context.Context, text string) {
	if u.notifier == nil {
		return
	}
	if err := u.notifier.NotifyAdmins(ctx, text); err != nil {
		u.log.Warn().Err(fmt.Errorf("%w: %v", domain.ErrExternalService, err)).Msg("admin notification failed")
	}
}

// SubmissionWarning is the human readable note shown to the payer.
func SubmissionWarning(p *model.PaymentRecord) string {
	switch p.Status {
	case model.PaymentStatusUnderpaid:
		short := p.ExpectedAmount.Sub(p.Amount)
		return fmt.Sprintf("Payment is %s short of the expected %s. The subscription stays disabled until the full amount is paid.",
			short.String(), p.ExpectedAmount.String())
	case model.PaymentStatusOverpaid:
		return fmt.Sprintf("Payment exceeds the expected amount. %s has been credited to your balance.", p.CreditBalance.String())
	default:
		return ""
	}
}

func verificationMessage(r *VerifyPaymentResult) string {
	switch {
	case r.AlreadyVerified:
		return "Payment was already verified"
	case !r.Payment.IsVerified:
		return "Payment verification failed"
	case r.IsUnderpaid:
		return "Payment verified but underpaid; subscription was not activated"
	case r.Activated:
		return "Payment verified and subscription activated until " + r.Subscription.End.Format("2006-01-02 15:04 MST")
	case r.Subscription == nil && r.Payment.HasPlan():
		return "Payment verified; subscription activation failed"
	default:
		return "Payment verified; no subscription plan attached"
	}
}

func submissionAlert(p *model.PaymentRecord) string {
	tier := "none"
	if p.Tier != nil {
		tier = string(*p.Tier)
	}
	return fmt.Sprintf("New payment %s\ncelebrity: %s\ncode: %s\namount: %s (expected %s, %s)\ntier: %s",
		p.ID, p.CelebrityID, p.ReferenceCode, p.Amount.String(), p.ExpectedAmount.String(), p.Status, tier)
}
