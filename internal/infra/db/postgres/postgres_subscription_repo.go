package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/repository"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `celebrity_id, subscription_tier, duration_type, subscription_start, subscription_end,
  is_active, amount_paid, last_payment_id, updated_at`

func (r *subscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.SubscriptionRecord) error {
	const q = `
INSERT INTO celebrity_subscriptions (` + subscriptionColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (celebrity_id) DO UPDATE SET
  subscription_tier = EXCLUDED.subscription_tier,
  duration_type = EXCLUDED.duration_type,
  subscription_start = EXCLUDED.subscription_start,
  subscription_end = EXCLUDED.subscription_end,
  is_active = EXCLUDED.is_active,
  amount_paid = EXCLUDED.amount_paid,
  last_payment_id = EXCLUDED.last_payment_id,
  updated_at = EXCLUDED.updated_at;`
	_, err := execSQL(ctx, r.pool, tx, q, r.args(s)...)
	return err
}

func (r *subscriptionRepo) Create(ctx context.Context, tx repository.Tx, s *model.SubscriptionRecord) error {
	const q = `
INSERT INTO celebrity_subscriptions (` + subscriptionColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`
	_, err := execSQL(ctx, r.pool, tx, q, r.args(s)...)
	return err
}

func (r *subscriptionRepo) FindByCelebrity(ctx context.Context, tx repository.Tx, celebrityID string) (*model.SubscriptionRecord, error) {
	q := `SELECT ` + subscriptionColumns + ` FROM celebrity_subscriptions WHERE celebrity_id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q, celebrityID)
	if err != nil {
		return nil, err
	}
	s := new(model.SubscriptionRecord)
	var tier, duration *string
	if err := row.Scan(&s.CelebrityID, &tier, &duration, &s.Start, &s.End, &s.IsActive, &s.AmountPaid,
		&s.LastPaymentID, &s.UpdatedAt); err != nil {
		return nil, scanErr(err)
	}
	s.Tier, s.Duration = tierFrom(tier), durationFrom(duration)
	return s, nil
}

func (r *subscriptionRepo) ExpireByCelebrities(ctx context.Context, tx repository.Tx, celebrityIDs []string, end time.Time) (int64, error) {
	if len(celebrityIDs) == 0 {
		return 0, nil
	}
	const q = `
UPDATE celebrity_subscriptions
   SET is_active = FALSE,
       subscription_end = $2,
       updated_at = NOW()
 WHERE celebrity_id = ANY($1);`
	tag, err := execSQL(ctx, r.pool, tx, q, celebrityIDs, end)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *subscriptionRepo) DeactivateLapsed(ctx context.Context, tx repository.Tx, now time.Time) ([]string, error) {
	const q = `
UPDATE celebrity_subscriptions
   SET is_active = FALSE,
       updated_at = NOW()
 WHERE is_active = TRUE
   AND subscription_end <= $1
RETURNING celebrity_id;`
	rows, err := queryRows(ctx, r.pool, tx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, scanErr(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return ids, nil
}

func (r *subscriptionRepo) CountActiveByTier(ctx context.Context, tx repository.Tx, now time.Time) (map[model.Tier]int, error) {
	const q = `
SELECT COALESCE(subscription_tier, ''), COUNT(*)
  FROM celebrity_subscriptions
 WHERE is_active AND subscription_end > $1
 GROUP BY 1;`
	rows, err := queryRows(ctx, r.pool, tx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.Tier]int)
	for rows.Next() {
		var tier string
		var n int
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, scanErr(err)
		}
		out[model.Tier(tier)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *subscriptionRepo) args(s *model.SubscriptionRecord) []interface{} {
	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	return []interface{}{
		s.CelebrityID, tierArg(s.Tier), durationArg(s.Duration), s.Start, s.End,
		s.IsActive, s.AmountPaid, s.LastPaymentID, updated,
	}
}
