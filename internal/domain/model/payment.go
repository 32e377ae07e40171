package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"celebrity-subscription/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusUnderpaid PaymentStatus = "underpaid"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusOverpaid  PaymentStatus = "overpaid"
)

type PaymentType string

const (
	PaymentTypeStandard         PaymentType = "standard"
	PaymentTypePromotionalOffer PaymentType = "promotional_offer"
)

// PaymentRecord is a single submitted payment claim and its verification state.
// Status and CreditBalance are derived from Amount and ExpectedAmount by Settle
// and must never be assigned on their own.
type PaymentRecord struct {
	ID             string          `json:"id"`
	CelebrityID    string          `json:"celebrity_id"`
	PhoneNumber    string          `json:"phone_number"`
	ReferenceCode  string          `json:"mpesa_code"`
	Amount         decimal.Decimal `json:"amount"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	Tier           *Tier           `json:"subscription_tier,omitempty"`
	Duration       *DurationType   `json:"duration_type,omitempty"`
	Status         PaymentStatus   `json:"payment_status"`
	CreditBalance  decimal.Decimal `json:"credit_balance"`
	IsVerified     bool            `json:"is_verified"`
	VerifiedAt     *time.Time      `json:"verified_at,omitempty"`
	VerifiedBy     *string         `json:"verified_by,omitempty"`
	PaymentDate    time.Time       `json:"payment_date"`
	PaymentType    PaymentType     `json:"payment_type"`
}

// Money columns are NUMERIC(14,2).
const moneyScale = 2

// MaxAmount is the largest value a money column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// CheckAmount rejects a money value the store would round or refuse, so the
// settlement computed in memory is the one that gets persisted.
func CheckAmount(field string, v decimal.Decimal) error {
	switch {
	case v.IsNegative():
		return domain.NewValidationError(field, "must not be negative")
	case !v.Equal(v.Round(moneyScale)):
		return domain.NewValidationError(field, "must have at most 2 decimal places")
	case v.GreaterThan(MaxAmount):
		return domain.NewValidationError(field, "must not exceed "+MaxAmount.StringFixed(moneyScale))
	}
	return nil
}

// Settle compares a claimed amount with the expected price.
// The credit balance is the surplus of an overpayment and zero otherwise.
func Settle(amount, expected decimal.Decimal) (PaymentStatus, decimal.Decimal) {
	switch amount.Cmp(expected) {
	case -1:
		return PaymentStatusUnderpaid, decimal.Zero
	case 1:
		return PaymentStatusOverpaid, amount.Sub(expected)
	default:
		return PaymentStatusPaid, decimal.Zero
	}
}

// SetAmounts assigns both amounts and recomputes the settlement.
func (p *PaymentRecord) SetAmounts(amount, expected decimal.Decimal) {
	p.Amount = amount
	p.ExpectedAmount = expected
	p.Status, p.CreditBalance = Settle(amount, expected)
}

// IsUnderpaid reports whether verification must withhold activation:
// an expected price is set and the claim falls short of it.
func (p *PaymentRecord) IsUnderpaid() bool {
	return p.ExpectedAmount.IsPositive() && p.Amount.LessThan(p.ExpectedAmount)
}

// HasPlan reports whether the record names both a tier and a duration.
func (p *PaymentRecord) HasPlan() bool { return p.Tier != nil && p.Duration != nil }

// MarkVerified flips the record to verified. It is a no-op on a verified record.
func (p *PaymentRecord) MarkVerified(by string, at time.Time) {
	if p.IsVerified {
		return
	}
	p.IsVerified = true
	p.VerifiedAt = &at
	p.VerifiedBy = &by
}

// NormalizeReference trims a payer supplied reference code and upper-cases it.
func NormalizeReference(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func trimLower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
