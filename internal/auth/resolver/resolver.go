package resolver

import (
	"context"

	"github.com/stz7750/next-chat-app/internal/auth"
	"github.com/stz7750/next-chat-app/internal/user"
)

// Resolver determines which internal user an external identity belongs
// to. It is the ONLY place where identity-to-user mapping logic lives.
type Resolver interface {
	Resolve(
		ctx context.Context,
		identity *auth.Identity,
	) (*user.User, error)
}
