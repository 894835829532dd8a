package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stz7750/next-chat-app/internal/auth"
	"github.com/stz7750/next-chat-app/internal/user"
)

type memStore struct {
	users    map[string]*user.User
	accounts map[string]string // provider/provider_user_id → email
	links    int
	creates  int
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*user.User),
		accounts: make(map[string]string),
	}
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	return s.users[email], nil
}

func (s *memStore) Create(_ context.Context, email, name string, hashedPassword *string) (*user.User, error) {
	s.creates++
	u := &user.User{ID: "u-" + email, Email: email, Name: name, HashedPassword: hashedPassword}
	s.users[email] = u
	return u, nil
}

func (s *memStore) FindByAccount(_ context.Context, provider, providerUserID string) (*user.User, error) {
	email, ok := s.accounts[provider+"/"+providerUserID]
	if !ok {
		return nil, nil
	}
	return s.users[email], nil
}

func (s *memStore) LinkAccount(_ context.Context, userID, provider, providerUserID string) error {
	s.links++
	for email, u := range s.users {
		if u.ID == userID {
			s.accounts[provider+"/"+providerUserID] = email
		}
	}
	return nil
}

var githubIdentity = &auth.Identity{
	Provider:       "github",
	ProviderUserID: "4242",
	Email:          "a@b.com",
	EmailVerified:  true,
	Name:           "tester",
}

func TestResolveExistingLink(t *testing.T) {
	store := newMemStore()
	_, err := store.Create(context.Background(), "a@b.com", "tester", nil)
	require.NoError(t, err)
	require.NoError(t, store.LinkAccount(context.Background(), "u-a@b.com", "github", "4242"))
	store.links = 0
	store.creates = 0

	r := NewStoreResolver(store)

	u, err := r.Resolve(context.Background(), githubIdentity)
	require.NoError(t, err)
	assert.Equal(t, "u-a@b.com", u.ID)
	assert.Zero(t, store.links, "existing link must not relink")
	assert.Zero(t, store.creates)
}

func TestResolveLinksByEmail(t *testing.T) {
	store := newMemStore()

	// Credential account registered earlier with the same email.
	hash := "$2a$10$stored"
	_, err := store.Create(context.Background(), "a@b.com", "tester", &hash)
	require.NoError(t, err)
	store.creates = 0

	r := NewStoreResolver(store)

	u, err := r.Resolve(context.Background(), githubIdentity)
	require.NoError(t, err)
	assert.Equal(t, "u-a@b.com", u.ID)
	assert.Equal(t, 1, store.links)
	assert.Zero(t, store.creates, "email match must link, not duplicate")

	// The linked user keeps its credential.
	assert.True(t, u.HasPassword())
}

func TestResolveCreatesUser(t *testing.T) {
	store := newMemStore()
	r := NewStoreResolver(store)

	u, err := r.Resolve(context.Background(), githubIdentity)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)
	assert.Equal(t, "tester", u.Name)
	assert.False(t, u.HasPassword(), "provider-created users carry no credential")
	assert.Equal(t, 1, store.links)
	assert.Equal(t, 1, store.creates)
}

func TestResolveNilIdentity(t *testing.T) {
	r := NewStoreResolver(newMemStore())

	_, err := r.Resolve(context.Background(), nil)
	assert.Error(t, err)
}
