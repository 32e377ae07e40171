package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"celebrity-subscription/internal/domain"
	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

// FieldSealer encrypts a column value at rest. A nil sealer stores plaintext.
type FieldSealer interface {
	Seal(plaintext string) (string, error)
	Open(value string) (string, error)
}

type paymentRepo struct {
	pool   *pgxpool.Pool
	sealer FieldSealer
}

func NewPaymentRepo(pool *pgxpool.Pool, sealer FieldSealer) *paymentRepo {
	return &paymentRepo{pool: pool, sealer: sealer}
}

const paymentColumns = `id, celebrity_id, phone_number, mpesa_code, amount, expected_amount, subscription_tier, duration_type,
  payment_status, credit_balance, is_verified, verified_at, verified_by, payment_date, payment_type`

func (r *paymentRepo) Create(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) error {
	phone, err := r.seal(p.PhoneNumber)
	if err != nil {
		return err
	}
	// status and credit are always recomputed from the amounts
	status, credit := model.Settle(p.Amount, p.ExpectedAmount)
	const q = `
INSERT INTO payment_records (` + paymentColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15);`
	_, err = execSQL(ctx, r.pool, tx, q,
		p.ID, p.CelebrityID, phone, p.ReferenceCode, p.Amount, p.ExpectedAmount,
		tierArg(p.Tier), durationArg(p.Duration), string(status), credit,
		p.IsVerified, p.VerifiedAt, p.VerifiedBy, p.PaymentDate, string(p.PaymentType))
	return err
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentRecord, error) {
	q := `SELECT ` + paymentColumns + ` FROM payment_records WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return r.scan(row)
}

func (r *paymentRepo) MarkVerified(ctx context.Context, tx repository.Tx, id, verifiedBy string, at time.Time) (bool, error) {
	const q = `
UPDATE payment_records
   SET is_verified = TRUE,
       verified_at = $2,
       verified_by = $3
 WHERE id = $1
   AND is_verified = FALSE;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, at, verifiedBy)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *paymentRepo) ListByVerification(ctx context.Context, tx repository.Tx, verified bool, limit int) ([]*model.PaymentRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentColumns + ` FROM payment_records WHERE is_verified=$1 ORDER BY payment_date DESC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, verified, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.PaymentRecord
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *paymentRepo) CountByVerification(ctx context.Context, tx repository.Tx) (int, int, error) {
	const q = `
SELECT COUNT(*) FILTER (WHERE NOT is_verified),
       COUNT(*) FILTER (WHERE is_verified)
  FROM payment_records;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, 0, err
	}
	var pending, verified int
	if err := row.Scan(&pending, &verified); err != nil {
		return 0, 0, scanErr(err)
	}
	return pending, verified, nil
}

func (r *paymentRepo) SumVerifiedSince(ctx context.Context, tx repository.Tx, since time.Time) (decimal.Decimal, error) {
	const q = `SELECT COALESCE(SUM(amount), 0) FROM payment_records WHERE is_verified AND verified_at >= $1;`
	row, err := pickRow(ctx, r.pool, tx, q, since)
	if err != nil {
		return decimal.Zero, err
	}
	var sum decimal.Decimal
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, scanErr(err)
	}
	return sum, nil
}

func (r *paymentRepo) scan(row pgx.Row) (*model.PaymentRecord, error) {
	p := new(model.PaymentRecord)
	var tier, duration *string
	var status, ptype string
	if err := row.Scan(&p.ID, &p.CelebrityID, &p.PhoneNumber, &p.ReferenceCode, &p.Amount, &p.ExpectedAmount,
		&tier, &duration, &status, &p.CreditBalance, &p.IsVerified, &p.VerifiedAt, &p.VerifiedBy,
		&p.PaymentDate, &ptype); err != nil {
		return nil, scanErr(err)
	}
	p.Tier, p.Duration = tierFrom(tier), durationFrom(duration)
	p.Status, p.PaymentType = model.PaymentStatus(status), model.PaymentType(ptype)

	phone, err := r.open(p.PhoneNumber)
	if err != nil {
		return nil, err
	}
	p.PhoneNumber = phone
	return p, nil
}

func (r *paymentRepo) seal(v string) (string, error) {
	if r.sealer == nil {
		return v, nil
	}
	out, err := r.sealer.Seal(v)
	if err != nil {
		return "", fmt.Errorf("%w: seal phone: %v", domain.ErrOperationFailed, err)
	}
	return out, nil
}

func (r *paymentRepo) open(v string) (string, error) {
	if r.sealer == nil {
		return v, nil
	}
	out, err := r.sealer.Open(v)
	if err != nil {
		return "", fmt.Errorf("%w: open phone: %v", domain.ErrReadDatabaseRow, err)
	}
	return out, nil
}

func tierArg(t *model.Tier) interface{} {
	if t == nil {
		return nil
	}
	return string(*t)
}

func durationArg(d *model.DurationType) interface{} {
	if d == nil {
		return nil
	}
	return string(*d)
}

func tierFrom(s *string) *model.Tier {
	if s == nil {
		return nil
	}
	t := model.Tier(*s)
	return &t
}

func durationFrom(s *string) *model.DurationType {
	if s == nil {
		return nil
	}
	d := model.DurationType(*s)
	return &d
}
