package repository

import (
	"context"

	"celebrity-subscription/internal/domain/model"
)

// CelebrityRepository reads celebrity profiles and writes their listing flags.
type CelebrityRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Celebrity, error)
	SetFlags(ctx context.Context, tx Tx, id string, flags model.ProfileFlags) error
	SetFlagsBulk(ctx context.Context, tx Tx, ids []string, flags model.ProfileFlags) (int64, error)
}

// AdminRepository is the set of identities allowed to run admin operations.
type AdminRepository interface {
	FindActiveByEmail(ctx context.Context, tx Tx, email string) (*model.AdminIdentity, error)
	Save(ctx context.Context, tx Tx, a *model.AdminIdentity) error
}
