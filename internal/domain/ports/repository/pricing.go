package repository

import (
	"context"

	"celebrity-subscription/internal/domain/model"
)

// PricingRepository is the port for the (tier, duration) price catalog.
type PricingRepository interface {
	// GetActive returns the active row for the pair or domain.ErrNotFound.
	GetActive(ctx context.Context, tx Tx, tier model.Tier, duration model.DurationType) (*model.PriceEntry, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.PriceEntry, error)
	Upsert(ctx context.Context, tx Tx, e *model.PriceEntry) error
}
