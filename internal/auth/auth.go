// Package auth issues and verifies the bearer tokens the trip-storage API
// accepts. Tokens are HS256 JWTs whose subject is the owning user's UUID.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kendala/planner/internal/domain"
)

// Claims are the JWT claims carried by a session token.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID parses the subject claim as the owner's UUID.
func (c Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user id", domain.ErrUnauthenticated)
	}
	return id, nil
}

// Verifier signs and checks session tokens with a shared secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier returns a Verifier for secret. An empty secret is rejected.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("auth.NewVerifier: secret is required")
	}
	return &Verifier{secret: []byte(secret), now: time.Now}, nil
}

// Issue returns a signed token for userID valid for ttl.
func (v *Verifier) Issue(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Verifier.Issue: %w", err)
	}
	return signed, nil
}

// Verify parses and validates token. Any failure, including a bad signature,
// expiry, or a non-HS256 algorithm, is reported as domain.ErrUnauthenticated.
func (v *Verifier) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("auth.Verifier.Verify: %w: %w", domain.ErrUnauthenticated, err)
	}
	if !parsed.Valid {
		return Claims{}, fmt.Errorf("auth.Verifier.Verify: %w", domain.ErrUnauthenticated)
	}
	if _, err := claims.UserID(); err != nil {
		return Claims{}, fmt.Errorf("auth.Verifier.Verify: %w", err)
	}
	return claims, nil
}

type ctxKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated owner id.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// UserIDFromContext returns the owner id stored by WithUserID.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
