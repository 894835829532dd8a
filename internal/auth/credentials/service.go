package credentials

import (
	"context"
	"errors"

	"github.com/stz7750/next-chat-app/internal/user"
)

// Failure taxonomy. Handlers must collapse all of these into one
// generic invalid-credentials response so the wire never reveals
// which check failed.
var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrPasswordMismatch   = errors.New("password mismatch")
	ErrAlreadyRegistered  = errors.New("account already exists")
)

// IsAuthFailure reports whether err belongs to the authentication
// failure taxonomy, as opposed to a store/transport error.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrMissingCredentials) ||
		errors.Is(err, ErrInvalidAccount) ||
		errors.Is(err, ErrPasswordMismatch)
}

type Service struct {
	store user.Store
}

func NewService(store user.Store) *Service {
	return &Service{store: store}
}

// Register creates a credential-backed account. Registration is not
// authentication; the caller decides whether to sign the user in after.
func (s *Service) Register(
	ctx context.Context,
	name string,
	email string,
	password string,
) (*user.User, error) {

	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	existing, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	return s.store.Create(ctx, email, name, &hash)
}

// Authenticate decides whether email and password denote a valid
// credential-backed account.
func (s *Service) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (*user.User, error) {

	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// A user without a stored hash was created through an external
	// provider; the credential path must reject it outright.
	if u == nil || !u.HasPassword() {
		return nil, ErrInvalidAccount
	}

	if err := VerifyPassword(*u.HashedPassword, password); err != nil {
		return nil, ErrPasswordMismatch
	}

	return u, nil
}
