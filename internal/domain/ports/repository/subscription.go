package repository

import (
	"context"
	"time"

	"celebrity-subscription/internal/domain/model"
)

// SubscriptionRepository is the port for the per-celebrity subscription record.
type SubscriptionRepository interface {
	// Upsert writes s, replacing any record held by the same celebrity.
	Upsert(ctx context.Context, tx Tx, s *model.SubscriptionRecord) error
	// Create inserts s and fails with domain.ErrAlreadyExists if the celebrity already has a record.
	Create(ctx context.Context, tx Tx, s *model.SubscriptionRecord) error
	FindByCelebrity(ctx context.Context, tx Tx, celebrityID string) (*model.SubscriptionRecord, error)
	// ExpireByCelebrities deactivates the listed celebrities' records and back-dates their end.
	ExpireByCelebrities(ctx context.Context, tx Tx, celebrityIDs []string, end time.Time) (int64, error)
	// DeactivateLapsed flips is_active off for records whose end is not after now
	// and returns the affected celebrity ids.
	DeactivateLapsed(ctx context.Context, tx Tx, now time.Time) ([]string, error)
	// CountActiveByTier counts effectively active records per tier. Records
	// without a tier are counted under the empty key.
	CountActiveByTier(ctx context.Context, tx Tx, now time.Time) (map[model.Tier]int, error)
}
