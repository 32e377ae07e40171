package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"celebrity-subscription/internal/domain"
	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/adapter"
	"celebrity-subscription/internal/domain/ports/repository"
)

// AdminUseCase is the admin capability check shared by every admin operation.
type AdminUseCase interface {
	// ResolveCaller returns the admin behind credential.
	// domain.ErrUnauthorized: no usable credential.
	// domain.ErrForbidden: a valid identity that is not an active admin.
	ResolveCaller(ctx context.Context, credential string) (*model.AdminIdentity, error)
}

var _ AdminUseCase = (*adminUC)(nil)

type adminUC struct {
	verifier adapter.CredentialVerifier
	admins   repository.AdminRepository
}

func NewAdminUseCase(verifier adapter.CredentialVerifier, admins repository.AdminRepository) AdminUseCase {
	return &adminUC{verifier: verifier, admins: admins}
}

func (a *adminUC) ResolveCaller(ctx context.Context, credential string) (*model.AdminIdentity, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, domain.ErrUnauthorized
	}
	email, err := a.verifier.VerifyCredential(ctx, credential)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, domain.ErrUnauthorized
	}

	admin, err := a.admins.FindActiveByEmail(ctx, repository.NoTX, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("admin lookup: %w", err)
	}
	return admin, nil
}
