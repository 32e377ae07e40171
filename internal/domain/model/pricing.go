package model

import (
	"time"

	"github.com/shopspring/decimal"

	"celebrity-subscription/internal/domain"
)

// Tier is the subscription service level of a celebrity listing.
type Tier string

const (
	TierStarter   Tier = "starter"
	TierBasicPro  Tier = "basic_pro"
	TierPrimePlus Tier = "prime_plus"
	TierVIPElite  Tier = "vip_elite"
)

// TopTier is granted by promotional offers.
const TopTier = TierVIPElite

var tiers = map[Tier]struct{}{
	TierStarter:   {},
	TierBasicPro:  {},
	TierPrimePlus: {},
	TierVIPElite:  {},
}

// ParseTier validates a tier name. Surrounding whitespace is ignored.
func ParseTier(s string) (Tier, error) {
	t := Tier(trimLower(s))
	if _, ok := tiers[t]; !ok {
		return "", domain.NewValidationError("tier", "unknown tier "+s)
	}
	return t, nil
}

// DurationType is the billing period of a subscription.
type DurationType string

const (
	DurationOneWeek  DurationType = "1_week"
	DurationTwoWeeks DurationType = "2_weeks"
	DurationOneMonth DurationType = "1_month"
)

// ParseDuration validates a duration type name.
func ParseDuration(s string) (DurationType, error) {
	d := DurationType(trimLower(s))
	switch d {
	case DurationOneWeek, DurationTwoWeeks, DurationOneMonth:
		return d, nil
	}
	return "", domain.NewValidationError("duration", "unknown duration "+s)
}

// Days maps a duration to its day count. Anything unrecognised, including
// the zero value, bills as a month.
func (d DurationType) Days() int {
	switch d {
	case DurationOneWeek:
		return 7
	case DurationTwoWeeks:
		return 14
	default:
		return 30
	}
}

// EndFrom returns start + the duration's day count.
func (d DurationType) EndFrom(start time.Time) time.Time {
	return start.Add(time.Duration(d.Days()) * 24 * time.Hour)
}

// EndFor is EndFrom for an optional duration; nil bills as a month.
func EndFor(d *DurationType, start time.Time) time.Time {
	if d == nil {
		return DurationType("").EndFrom(start)
	}
	return d.EndFrom(start)
}

// PriceEntry is one row of the pricing catalog.
type PriceEntry struct {
	Tier      Tier            `json:"tier"`
	Duration  DurationType    `json:"duration"`
	Price     decimal.Decimal `json:"price"`
	IsActive  bool            `json:"is_active"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewPriceEntry validates and constructs an active catalog row.
func NewPriceEntry(tier Tier, duration DurationType, price decimal.Decimal) (*PriceEntry, error) {
	if _, ok := tiers[tier]; !ok {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := ParseDuration(string(duration)); err != nil {
		return nil, domain.ErrInvalidArgument
	}
	if price.IsNegative() {
		return nil, domain.ErrInvalidArgument
	}
	return &PriceEntry{
		Tier:      tier,
		Duration:  duration,
		Price:     price,
		IsActive:  true,
		UpdatedAt: time.Now(),
	}, nil
}
