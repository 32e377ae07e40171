package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"celebrity-subscription/internal/domain"
	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/repository"
)

var (
	_ repository.CelebrityRepository = (*celebrityRepo)(nil)
	_ repository.AdminRepository     = (*adminRepo)(nil)
)

type celebrityRepo struct {
	pool *pgxpool.Pool
}

func NewCelebrityRepo(pool *pgxpool.Pool) *celebrityRepo {
	return &celebrityRepo{pool: pool}
}

func (r *celebrityRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Celebrity, error) {
	const q = `SELECT id, display_name, is_verified, is_available, updated_at FROM celebrity_profiles WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	c := new(model.Celebrity)
	if err := row.Scan(&c.ID, &c.DisplayName, &c.IsVerified, &c.IsAvailable, &c.UpdatedAt); err != nil {
		return nil, scanErr(err)
	}
	return c, nil
}

// Save creates or renames a profile. Used by seeding and tests.
func (r *celebrityRepo) Save(ctx context.Context, tx repository.Tx, c *model.Celebrity) error {
	const q = `
INSERT INTO celebrity_profiles (id, display_name, is_verified, is_available, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, updated_at = NOW();`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.DisplayName, c.IsVerified, c.IsAvailable)
	return err
}

func (r *celebrityRepo) SetFlags(ctx context.Context, tx repository.Tx, id string, flags model.ProfileFlags) error {
	const q = `UPDATE celebrity_profiles SET is_verified=$2, is_available=$3, updated_at=NOW() WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, flags.IsVerified, flags.IsAvailable)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *celebrityRepo) SetFlagsBulk(ctx context.Context, tx repository.Tx, ids []string, flags model.ProfileFlags) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const q = `UPDATE celebrity_profiles SET is_verified=$2, is_available=$3, updated_at=NOW() WHERE id = ANY($1);`
	tag, err := execSQL(ctx, r.pool, tx, q, ids, flags.IsVerified, flags.IsAvailable)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type adminRepo struct {
	pool *pgxpool.Pool
}

func NewAdminRepo(pool *pgxpool.Pool) *adminRepo {
	return &adminRepo{pool: pool}
}

func (r *adminRepo) FindActiveByEmail(ctx context.Context, tx repository.Tx, email string) (*model.AdminIdentity, error) {
	const q = `SELECT id, email FROM admins WHERE lower(email)=lower($1) AND is_active=TRUE;`
	row, err := pickRow(ctx, r.pool, tx, q, email)
	if err != nil {
		return nil, err
	}
	a := new(model.AdminIdentity)
	if err := row.Scan(&a.ID, &a.Email); err != nil {
		return nil, scanErr(err)
	}
	return a, nil
}

func (r *adminRepo) Save(ctx context.Context, tx repository.Tx, a *model.AdminIdentity) error {
	const q = `
INSERT INTO admins (id, email, is_active) VALUES ($1, lower($2), TRUE)
ON CONFLICT (email) DO UPDATE SET is_active = TRUE;`
	_, err := execSQL(ctx, r.pool, tx, q, a.ID, a.Email)
	return err
}
