package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/repository"
)

var _ repository.PricingRepository = (*pricingRepo)(nil)

type pricingRepo struct {
	pool *pgxpool.Pool
}

func NewPricingRepo(pool *pgxpool.Pool) *pricingRepo {
	return &pricingRepo{pool: pool}
}

func (r *pricingRepo) GetActive(ctx context.Context, tx repository.Tx, tier model.Tier, duration model.DurationType) (*model.PriceEntry, error) {
	const q = `
SELECT subscription_tier, duration_type, price, is_active, updated_at
  FROM subscription_pricing
 WHERE subscription_tier=$1 AND duration_type=$2 AND is_active=TRUE;`
	row, err := pickRow(ctx, r.pool, tx, q, string(tier), string(duration))
	if err != nil {
		return nil, err
	}
	var e model.PriceEntry
	var t, d string
	if err := row.Scan(&t, &d, &e.Price, &e.IsActive, &e.UpdatedAt); err != nil {
		return nil, scanErr(err)
	}
	e.Tier, e.Duration = model.Tier(t), model.DurationType(d)
	return &e, nil
}

func (r *pricingRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.PriceEntry, error) {
	const q = `
SELECT subscription_tier, duration_type, price, is_active, updated_at
  FROM subscription_pricing
 WHERE is_active=TRUE
 ORDER BY subscription_tier, duration_type;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.PriceEntry
	for rows.Next() {
		e := new(model.PriceEntry)
		var t, d string
		if err := rows.Scan(&t, &d, &e.Price, &e.IsActive, &e.UpdatedAt); err != nil {
			return nil, scanErr(err)
		}
		e.Tier, e.Duration = model.Tier(t), model.DurationType(d)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *pricingRepo) Upsert(ctx context.Context, tx repository.Tx, e *model.PriceEntry) error {
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now()
	}
	const q = `
INSERT INTO subscription_pricing (subscription_tier, duration_type, price, is_active, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (subscription_tier, duration_type) DO UPDATE SET
  price = EXCLUDED.price,
  is_active = EXCLUDED.is_active,
  updated_at = EXCLUDED.updated_at;`
	_, err := execSQL(ctx, r.pool, tx, q, string(e.Tier), string(e.Duration), e.Price, e.IsActive, e.UpdatedAt)
	return err
}
