package adapter

import "context"

// CredentialVerifier maps a bearer credential to the caller's email.
// An absent, malformed or expired credential yields domain.ErrUnauthorized.
type CredentialVerifier interface {
	VerifyCredential(ctx context.Context, credential string) (email string, err error)
}
