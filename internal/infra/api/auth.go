package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"celebrity-subscription/internal/config"
	"celebrity-subscription/internal/domain"
	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/adapter"
	"celebrity-subscription/internal/infra/logging"
	"celebrity-subscription/internal/infra/metrics"
	"celebrity-subscription/internal/usecase"
)

var _ adapter.CredentialVerifier = (*JWTAuth)(nil)

// JWTAuth mints and verifies HS256 bearer tokens that carry the caller's email.
type JWTAuth struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type CallerClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewJWTAuth(cfg config.AuthConfig) *JWTAuth {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTAuth{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, ttl: ttl, now: time.Now}
}

func (a *JWTAuth) Mint(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.New("email is required")
	}
	now := a.now()
	claims := CallerClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *JWTAuth) VerifyCredential(_ context.Context, credential string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	claims := &CallerClaims{}
	tkn, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !tkn.Valid {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.Email == "" {
		return "", domain.ErrUnauthorized
	}
	return claims.Email, nil
}

type ctxKey string

const ctxAdmin ctxKey = "admin"

func bearerToken(r *http.Request) string {
	hdr := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(hdr) > 7 && strings.EqualFold(hdr[:7], "bearer ") {
		return strings.TrimSpace(hdr[7:])
	}
	return ""
}

// RequireAdmin resolves the bearer credential to an active admin or answers 401/403.
func RequireAdmin(admins usecase.AdminUseCase) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, err := admins.ResolveCaller(r.Context(), bearerToken(r))
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrForbidden):
					metrics.IncAdminAuth("forbidden")
				case errors.Is(err, domain.ErrUnauthorized):
					metrics.IncAdminAuth("unauthorized")
				default:
					metrics.IncAdminAuth("error")
				}
				writeError(w, err)
				return
			}
			metrics.IncAdminAuth("ok")
			ctx := context.WithValue(r.Context(), ctxAdmin, admin)
			ctx = logging.WithAdminID(ctx, admin.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminFrom(ctx context.Context) *model.AdminIdentity {
	a, _ := ctx.Value(ctxAdmin).(*model.AdminIdentity)
	return a
}
