// Package authflow drives the sign-in surface: the LOGIN/REGISTER
// variant machine, credential submission, social sign-in, and the
// post-success navigation. It owns the variant state exclusively;
// nothing here is ever persisted server-side.
package authflow

import (
	"context"
	"sync"
)

// Variant selects which mode the auth form is in.
type Variant string

const (
	VariantLogin    Variant = "LOGIN"
	VariantRegister Variant = "REGISTER"
)

// FormData holds the entered field values. Toggling the variant
// deliberately preserves them.
type FormData struct {
	Name     string
	Email    string
	Password string
}

// Result is the outcome of one sign-in attempt, credential or social.
// It is consumed once and discarded.
type Result struct {
	OK  bool
	Err error
}

// API is the slice of the auth backend the flow talks to.
type API interface {
	// Register creates the account. It must succeed before a
	// REGISTER submit ever attempts sign-in.
	Register(ctx context.Context, data FormData) error

	// SignIn authenticates via the named provider. creds is nil for
	// social sign-in. It returns the result inline; redirects are
	// the caller's business.
	SignIn(ctx context.Context, provider string, creds *FormData) Result

	// SessionAuthenticated reports whether a live session exists.
	SessionAuthenticated(ctx context.Context) (bool, error)
}

// Navigator performs the post-success navigation.
type Navigator interface {
	NavigateTo(path string)
}

// Notifier surfaces user-facing notices. Messages are always generic;
// the failure kind is never displayed.
type Notifier interface {
	Notify(message string)
}

// LandingPath is where a successful authentication navigates to.
const LandingPath = "/conversations"

const (
	noticeInvalidCredentials = "Invalid credentials!"
	noticeGenericFailure     = "Something went wrong!"
)

// Flow is the auth orchestrator. Submissions run asynchronously; the
// submitting flag is the only thing blocking user input while a call
// is in flight, and it is always cleared when the attempt settles.
type Flow struct {
	api    API
	nav    Navigator
	notify Notifier

	mu         sync.Mutex
	variant    Variant
	submitting bool
	form       FormData
	closed     bool
}

func New(api API, nav Navigator, notify Notifier) *Flow {
	return &Flow{
		api:     api,
		nav:     nav,
		notify:  notify,
		variant: VariantLogin,
	}
}

// Variant returns the current mode.
func (f *Flow) Variant() Variant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.variant
}

// Submitting reports whether an attempt is in flight.
func (f *Flow) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Form returns the entered field values.
func (f *Flow) Form() FormData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// SetForm records the entered field values.
func (f *Flow) SetForm(data FormData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.form = data
}

// ToggleVariant flips LOGIN and REGISTER. No network effect, and the
// entered values survive the flip.
func (f *Flow) ToggleVariant() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.variant == VariantLogin {
		f.variant = VariantRegister
	} else {
		f.variant = VariantLogin
	}
}

// Close marks the surface unmounted. Results of attempts still in
// flight are dropped on arrival.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// CheckSession navigates away if the caller is already authenticated.
// The host calls this on mount and on focus; the auth surface must
// never be shown to an authenticated caller.
func (f *Flow) CheckSession(ctx context.Context) {
	authenticated, err := f.api.SessionAuthenticated(ctx)
	if err != nil || !authenticated {
		return
	}
	if f.alive() {
		f.nav.NavigateTo(LandingPath)
	}
}

// Submit runs the credential flow for the current variant. It returns
// immediately; the attempt settles on its own goroutine. A second
// submit while one is in flight is ignored.
func (f *Flow) Submit(ctx context.Context) {
	f.mu.Lock()
	if f.submitting || f.closed {
		f.mu.Unlock()
		return
	}
	f.submitting = true
	variant := f.variant
	data := f.form
	f.mu.Unlock()

	go f.runSubmit(ctx, variant, data)
}

func (f *Flow) runSubmit(ctx context.Context, variant Variant, data FormData) {
	// The submitting flag clears no matter how the attempt ends:
	// success, credential failure, or transport failure. The UI must
	// never stay stuck disabled.
	defer f.clearSubmitting()

	if variant == VariantRegister {
		if err := f.api.Register(ctx, data); err != nil {
			f.deliver(Result{Err: err}, noticeGenericFailure)
			return
		}
	}

	result := f.api.SignIn(ctx, "credentials", &data)
	f.deliver(result, noticeInvalidCredentials)
}

// SocialSignIn starts a third-party sign-in without submitting the
// form. Success and error handling match the credential path.
func (f *Flow) SocialSignIn(ctx context.Context, providerName string) {
	f.mu.Lock()
	if f.submitting || f.closed {
		f.mu.Unlock()
		return
	}
	f.submitting = true
	f.mu.Unlock()

	go func() {
		defer f.clearSubmitting()
		result := f.api.SignIn(ctx, providerName, nil)
		f.deliver(result, noticeInvalidCredentials)
	}()
}

// deliver consumes a result: navigate on success, generic notice on
// failure. Results landing after Close are dropped; the surface they
// would have updated no longer exists.
func (f *Flow) deliver(result Result, failureNotice string) {
	if !f.alive() {
		return
	}

	if result.Err != nil || !result.OK {
		f.notify.Notify(failureNotice)
		return
	}

	f.nav.NavigateTo(LandingPath)
}

func (f *Flow) clearSubmitting() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
}

func (f *Flow) alive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}
