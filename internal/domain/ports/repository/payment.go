package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"celebrity-subscription/internal/domain/model"
)

// PaymentRepository is the port for payment records.
type PaymentRepository interface {
	// Create inserts a new record. A reused reference code yields domain.ErrAlreadyExists.
	Create(ctx context.Context, tx Tx, p *model.PaymentRecord) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PaymentRecord, error)
	// MarkVerified sets is_verified only when it is still false and reports
	// whether this call performed the transition.
	MarkVerified(ctx context.Context, tx Tx, id, verifiedBy string, at time.Time) (bool, error)
	// ListByVerification returns records with the given verification state, newest first.
	ListByVerification(ctx context.Context, tx Tx, verified bool, limit int) ([]*model.PaymentRecord, error)
	CountByVerification(ctx context.Context, tx Tx) (pending, verified int, err error)
	// SumVerifiedSince totals the amounts of payments verified at or after since.
	SumVerifiedSince(ctx context.Context, tx Tx, since time.Time) (decimal.Decimal, error)
}
