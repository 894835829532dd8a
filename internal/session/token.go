package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failures. Expired is distinct from Invalid so callers
// can prompt re-authentication instead of rejecting outright.
var (
	ErrExpired = errors.New("session: token expired")
	ErrInvalid = errors.New("session: token invalid")
)

// Claims is the verified content of a session token.
type Claims struct {
	UserID    string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
}

// Issuer mints and verifies stateless session tokens. The same issuer
// serves credential logins and provider logins, so every session looks
// identical downstream. Stateless by design: the route guard can
// authorize a request without a store round trip.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer constructs an issuer. secret must be non-empty; that is
// enforced at startup, not here.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithNow overrides the clock. Test hook.
func (i *Issuer) WithNow(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue signs a session token for the user.
func (i *Issuer) Issue(userID string) (token string, claims Claims, err error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	tokenID := uuid.NewString()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("session: sign token: %w", err)
	}

	return signed, Claims{
		UserID:    userID,
		TokenID:   tokenID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks signature and expiry. It fails closed: any token that
// is malformed, tampered with, or signed under a rotated secret comes
// back ErrInvalid. Only a well-formed, correctly signed token past its
// expiry comes back ErrExpired.
func (i *Issuer) Verify(token string) (*Claims, error) {
	var parsed tokenClaims

	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	if parsed.Subject == "" {
		return nil, ErrInvalid
	}

	claims := Claims{
		UserID:  parsed.Subject,
		TokenID: parsed.ID,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}

	return &claims, nil
}
