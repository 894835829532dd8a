package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker tracks signed-out tokens until their natural expiry. It is
// the one concession the stateless strategy makes: without it, an
// explicit sign-out could not destroy a session before it expires.
type Revoker struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRevoker(client *redis.Client) *Revoker {
	return &Revoker{
		client: client,
		prefix: "revoked:",
		now:    time.Now,
	}
}

func (r *Revoker) key(tokenID string) string {
	return r.prefix + tokenID
}

// Revoke marks the token as destroyed. The entry lives only until the
// token would have expired anyway.
func (r *Revoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil // already expired, nothing to revoke
	}
	return r.client.Set(ctx, r.key(tokenID), "1", ttl).Err()
}

// IsRevoked reports whether the token has been signed out.
func (r *Revoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := r.client.Get(ctx, r.key(tokenID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
