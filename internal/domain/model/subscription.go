package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionRecord is the single subscription a celebrity holds.
// There is at most one per celebrity; writers upsert on CelebrityID.
type SubscriptionRecord struct {
	CelebrityID   string          `json:"celebrity_id"`
	Tier          *Tier           `json:"subscription_tier,omitempty"`
	Duration      *DurationType   `json:"duration_type,omitempty"`
	Start         time.Time       `json:"subscription_start"`
	End           time.Time       `json:"subscription_end"`
	IsActive      bool            `json:"is_active"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	LastPaymentID *string         `json:"last_payment_id,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsEffectivelyActive is the derived predicate every reader must use:
// the stored flag alone is not enough once the end date has passed.
func (s *SubscriptionRecord) IsEffectivelyActive(now time.Time) bool {
	return s != nil && s.IsActive && s.End.After(now)
}

// NewPendingSubscription builds the inactive record written on payment submission.
func NewPendingSubscription(p *PaymentRecord, now time.Time) *SubscriptionRecord {
	id := p.ID
	return &SubscriptionRecord{
		CelebrityID:   p.CelebrityID,
		Tier:          p.Tier,
		Duration:      p.Duration,
		Start:         now,
		End:           EndFor(p.Duration, now),
		IsActive:      false,
		AmountPaid:    p.Amount,
		LastPaymentID: &id,
		UpdatedAt:     now,
	}
}

// NewActiveSubscription builds an active record running from now for the
// payment's duration.
func NewActiveSubscription(p *PaymentRecord, now time.Time) *SubscriptionRecord {
	s := NewPendingSubscription(p, now)
	s.IsActive = true
	return s
}
