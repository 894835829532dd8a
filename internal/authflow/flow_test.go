package authflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu sync.Mutex

	registerErr   error
	signInResult  Result
	authenticated bool

	registerCalls int
	signInCalls   int
	lastProvider  string
	lastCreds     *FormData

	// release, when set, blocks SignIn until closed.
	release chan struct{}
}

func (a *fakeAPI) Register(_ context.Context, _ FormData) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.registerCalls++
	return a.registerErr
}

func (a *fakeAPI) SignIn(_ context.Context, provider string, creds *FormData) Result {
	a.mu.Lock()
	a.signInCalls++
	a.lastProvider = provider
	a.lastCreds = creds
	release := a.release
	result := a.signInResult
	a.mu.Unlock()

	if release != nil {
		<-release
	}
	return result
}

func (a *fakeAPI) SessionAuthenticated(context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authenticated, nil
}

func (a *fakeAPI) counts() (register, signIn int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.registerCalls, a.signInCalls
}

type recordingNav struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNav) NavigateTo(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNav) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func waitSettled(t *testing.T, f *Flow) {
	t.Helper()
	require.Eventually(t, func() bool { return !f.Submitting() },
		time.Second, time.Millisecond, "submitting flag never cleared")
}

func TestToggleVariant(t *testing.T) {
	api := &fakeAPI{}
	f := New(api, &recordingNav{}, &recordingNotifier{})

	f.SetForm(FormData{Email: "a@b.com", Password: "secret123"})

	assert.Equal(t, VariantLogin, f.Variant())
	f.ToggleVariant()
	assert.Equal(t, VariantRegister, f.Variant())
	f.ToggleVariant()
	assert.Equal(t, VariantLogin, f.Variant())

	// Toggling keeps what the user typed and touches the network
	// not at all.
	assert.Equal(t, FormData{Email: "a@b.com", Password: "secret123"}, f.Form())
	register, signIn := api.counts()
	assert.Zero(t, register)
	assert.Zero(t, signIn)
}

func TestSubmitLoginSuccess(t *testing.T) {
	api := &fakeAPI{signInResult: Result{OK: true}}
	nav := &recordingNav{}
	notify := &recordingNotifier{}
	f := New(api, nav, notify)

	f.SetForm(FormData{Email: "a@b.com", Password: "secret123"})
	f.Submit(context.Background())
	waitSettled(t, f)

	assert.Equal(t, LandingPath, nav.last())
	assert.Empty(t, notify.all())

	register, signIn := api.counts()
	assert.Zero(t, register, "LOGIN must not hit the registration endpoint")
	assert.Equal(t, 1, signIn)
	assert.Equal(t, "credentials", api.lastProvider)
	require.NotNil(t, api.lastCreds)
	assert.Equal(t, "a@b.com", api.lastCreds.Email)
}

func TestSubmitLoginFailure(t *testing.T) {
	api := &fakeAPI{signInResult: Result{Err: errors.New("invalid credentials")}}
	nav := &recordingNav{}
	notify := &recordingNotifier{}
	f := New(api, nav, notify)

	f.SetForm(FormData{Email: "a@b.com", Password: "wrong"})
	f.Submit(context.Background())
	waitSettled(t, f)

	assert.Empty(t, nav.last(), "failed login must not navigate")
	assert.Equal(t, []string{"Invalid credentials!"}, notify.all())
	assert.False(t, f.Submitting(), "submitting must clear on failure")
}

func TestSubmitRegisterFlow(t *testing.T) {
	t.Run("registers then signs in", func(t *testing.T) {
		api := &fakeAPI{signInResult: Result{OK: true}}
		nav := &recordingNav{}
		f := New(api, nav, &recordingNotifier{})

		f.ToggleVariant()
		f.SetForm(FormData{Name: "tester", Email: "a@b.com", Password: "secret123"})
		f.Submit(context.Background())
		waitSettled(t, f)

		register, signIn := api.counts()
		assert.Equal(t, 1, register)
		assert.Equal(t, 1, signIn)
		assert.Equal(t, LandingPath, nav.last())
	})

	t.Run("registration failure never attempts sign-in", func(t *testing.T) {
		api := &fakeAPI{registerErr: errors.New("boom")}
		nav := &recordingNav{}
		notify := &recordingNotifier{}
		f := New(api, nav, notify)

		f.ToggleVariant()
		f.Submit(context.Background())
		waitSettled(t, f)

		register, signIn := api.counts()
		assert.Equal(t, 1, register)
		assert.Zero(t, signIn)
		assert.Empty(t, nav.last())
		assert.Equal(t, []string{"Something went wrong!"}, notify.all())
	})
}

func TestSocialSignIn(t *testing.T) {
	api := &fakeAPI{signInResult: Result{OK: true}}
	nav := &recordingNav{}
	f := New(api, nav, &recordingNotifier{})

	f.SocialSignIn(context.Background(), "github")
	waitSettled(t, f)

	register, signIn := api.counts()
	assert.Zero(t, register)
	assert.Equal(t, 1, signIn)
	assert.Equal(t, "github", api.lastProvider)
	assert.Nil(t, api.lastCreds, "social sign-in submits no form data")
	assert.Equal(t, LandingPath, nav.last())
}

func TestSubmitWhileInFlightIgnored(t *testing.T) {
	api := &fakeAPI{signInResult: Result{OK: true}, release: make(chan struct{})}
	f := New(api, &recordingNav{}, &recordingNotifier{})

	f.Submit(context.Background())
	require.Eventually(t, func() bool {
		_, signIn := api.counts()
		return signIn == 1
	}, time.Second, time.Millisecond)

	f.Submit(context.Background())
	f.SocialSignIn(context.Background(), "google")

	close(api.release)
	waitSettled(t, f)

	_, signIn := api.counts()
	assert.Equal(t, 1, signIn, "in-flight submit must block further attempts")
}

func TestStaleResultAfterCloseDropped(t *testing.T) {
	api := &fakeAPI{signInResult: Result{OK: true}, release: make(chan struct{})}
	nav := &recordingNav{}
	notify := &recordingNotifier{}
	f := New(api, nav, notify)

	f.Submit(context.Background())
	require.Eventually(t, func() bool {
		_, signIn := api.counts()
		return signIn == 1
	}, time.Second, time.Millisecond)

	// User navigates away while the attempt is still in flight.
	f.Close()
	close(api.release)
	waitSettled(t, f)

	assert.Empty(t, nav.last(), "stale result must not navigate")
	assert.Empty(t, notify.all())
}

func TestCheckSession(t *testing.T) {
	t.Run("authenticated caller is bounced away", func(t *testing.T) {
		api := &fakeAPI{authenticated: true}
		nav := &recordingNav{}
		f := New(api, nav, &recordingNotifier{})

		f.CheckSession(context.Background())
		assert.Equal(t, LandingPath, nav.last())
	})

	t.Run("unauthenticated caller stays", func(t *testing.T) {
		api := &fakeAPI{}
		nav := &recordingNav{}
		f := New(api, nav, &recordingNotifier{})

		f.CheckSession(context.Background())
		assert.Empty(t, nav.last())
	})
}
