package resolver

import (
	"context"
	"errors"

	"github.com/stz7750/next-chat-app/internal/auth"
	"github.com/stz7750/next-chat-app/internal/user"
)

// StoreResolver resolves identities against the user store:
// existing link first, then email-based linking, then account creation.
type StoreResolver struct {
	store user.Store
}

func NewStoreResolver(store user.Store) *StoreResolver {
	return &StoreResolver{store: store}
}

func (r *StoreResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (*user.User, error) {

	if identity == nil {
		return nil, errors.New("identity is nil")
	}

	// 1. Try existing link (provider + provider_user_id)
	u, err := r.store.FindByAccount(ctx, identity.Provider, identity.ProviderUserID)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	// 2. Try email-based linking (existing user, new provider)
	u, err = r.store.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		if err := r.store.LinkAccount(ctx, u.ID, identity.Provider, identity.ProviderUserID); err != nil {
			return nil, err
		}
		return u, nil
	}

	// 3. Create new user with no credential, then link
	u, err = r.store.Create(ctx, identity.Email, identity.Name, nil)
	if err != nil {
		return nil, err
	}

	if err := r.store.LinkAccount(ctx, u.ID, identity.Provider, identity.ProviderUserID); err != nil {
		return nil, err
	}

	return u, nil
}
