package user

import (
	"context"
	"time"
)

// User is the durable record identifying a person, independent of how
// they authenticated.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time

	// HashedPassword is nil for accounts created purely through an
	// external provider. Such accounts must never authenticate via
	// the credential path.
	HashedPassword *string
}

// HasPassword reports whether the credential login path may even
// consider this user.
func (u *User) HasPassword() bool {
	return u != nil && u.HashedPassword != nil && *u.HashedPassword != ""
}

// Store is the narrow contract the auth core needs from user
// persistence. Implementations own consistency; callers own decisions.
type Store interface {
	// FindByEmail returns nil, nil when no user exists for the email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create inserts a user. hashedPassword may be nil for
	// provider-created accounts.
	Create(ctx context.Context, email, name string, hashedPassword *string) (*User, error)

	// FindByAccount returns the user linked to an external identity,
	// or nil, nil when no link exists.
	FindByAccount(ctx context.Context, provider, providerUserID string) (*User, error)

	// LinkAccount records that an external identity maps to the user.
	LinkAccount(ctx context.Context, userID, provider, providerUserID string) error
}
