package inviteflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"clientdesk/internal/domain"
)

// MessageKind classifies the banner shown alongside the flow state.
type MessageKind string

const (
	MessageNone    MessageKind = ""
	MessageSuccess MessageKind = "success"
	MessageWarning MessageKind = "warning"
	MessageError   MessageKind = "error"
)

// Routes the flow navigates to.
const (
	RouteRoot            = "/"
	RouteLogin           = "/login"
	RouteCompleteProfile = "/complete-profile"
)

const (
	// rejectRedirectDelay gives the invitee time to read the confirmation
	// before landing on the site root.
	rejectRedirectDelay = 2 * time.Second
	// provisionRedirectDelay lets the success message render before the
	// profile-completion page takes over.
	provisionRedirectDelay = 100 * time.Millisecond
)

// minPasswordLen matches the backend's sign-up rule.
const minPasswordLen = 6

// Navigator moves the user to another route when a step completes.
type Navigator interface {
	NavigateTo(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) NavigateTo(path string) { f(path) }

// ValidateCredentials checks the account form, short-circuiting on the first
// failure. It returns an empty string when the credentials are valid.
func ValidateCredentials(email, password, confirmPassword string) string {
	switch {
	case email == "":
		return "Email is required"
	case password == "":
		return "Password is required"
	case len(password) < minPasswordLen:
		return "Password must be at least 6 characters"
	case password != confirmPassword:
		return "Passwords do not match"
	}
	return ""
}

// Flow is the invitation landing controller. It owns the transient page
// state: the resolved invitee identity, a single loading gate shared by all
// actions, and the current banner message. All collaborators are injected so
// the flow can run against fakes.
type Flow struct {
	api      InvitationAPI
	accounts AccountProvider
	profiles ProfileStore
	nav      Navigator
	logger   *slog.Logger
	sleep    func(time.Duration)

	mu              sync.Mutex
	token           string
	identity        *domain.InviteeIdentity
	loading         bool
	verifyFailed    bool
	showAccountForm bool
	message         string
	messageKind     MessageKind
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithSleep replaces the delay function. Tests use it to observe redirect
// delays without waiting them out.
func WithSleep(sleep func(time.Duration)) FlowOption {
	return func(f *Flow) { f.sleep = sleep }
}

// NewFlow wires a Flow from its collaborators.
func NewFlow(api InvitationAPI, accounts AccountProvider, profiles ProfileStore, nav Navigator, logger *slog.Logger, opts ...FlowOption) *Flow {
	f := &Flow{
		api:      api,
		accounts: accounts,
		profiles: profiles,
		nav:      nav,
		logger:   logger,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start extracts the canonical token from the raw URL value and verifies it.
// Called once per page load; a verification failure gates the accept and
// reject actions until the user leaves for the login page.
func (f *Flow) Start(ctx context.Context, rawToken string) error {
	token := ExtractToken(rawToken)

	f.mu.Lock()
	f.token = token
	f.mu.Unlock()

	if token == "" {
		err := errors.New("invitation link is missing a token")
		f.setFailure("Invitation link is missing a token.", true)
		return err
	}

	identity, err := f.api.VerifyToken(ctx, token)
	if err != nil {
		f.setFailure(err.Error(), true)
		return err
	}

	f.mu.Lock()
	f.identity = identity
	f.message = ""
	f.messageKind = MessageNone
	f.mu.Unlock()
	return nil
}

// Accept records the invitee's acceptance and moves on to the account form.
// Recording failures are soft: onboarding continues either way, only the
// banner differs.
func (f *Flow) Accept(ctx context.Context) error {
	email, ok := f.beginDecision()
	if !ok {
		return nil
	}

	err := f.api.UpdateStatus(ctx, email, domain.InvitationStatusAccepted)

	f.mu.Lock()
	f.loading = false
	f.showAccountForm = true
	if err != nil {
		f.logger.Warn("accept not recorded", "err", err)
		f.message = "We could not record your response, but you can still create your account below."
		f.messageKind = MessageWarning
	} else {
		f.message = "Invitation accepted. Create your account to continue."
		f.messageKind = MessageSuccess
	}
	f.mu.Unlock()
	return nil
}

// Reject records the invitee's rejection and, after a short pause, sends
// them to the site root. On failure the dialog stays open so the user can
// retry.
func (f *Flow) Reject(ctx context.Context) error {
	email, ok := f.beginDecision()
	if !ok {
		return nil
	}

	if err := f.api.UpdateStatus(ctx, email, domain.InvitationStatusRejected); err != nil {
		f.mu.Lock()
		f.loading = false
		f.message = err.Error()
		f.messageKind = MessageError
		f.mu.Unlock()
		return err
	}

	f.mu.Lock()
	f.loading = false
	f.message = "Invitation declined."
	f.messageKind = MessageSuccess
	f.mu.Unlock()

	f.sleep(rejectRedirectDelay)
	f.nav.NavigateTo(RouteRoot)
	return nil
}

// CreateAccount validates the credentials, creates the authentication
// identity, and creates the profile record. Validation failures never reach
// the network. A missing profile record is recoverable: the backend creates
// one lazily the first time the profile is read, so a profile-store failure
// does not abort onboarding.
func (f *Flow) CreateAccount(ctx context.Context, password, confirmPassword string) error {
	f.mu.Lock()
	email, firstName, lastName := "", "", ""
	if f.identity != nil {
		email = f.identity.Email
		firstName = f.identity.FirstName
		lastName = f.identity.LastName
	}
	f.mu.Unlock()

	if msg := ValidateCredentials(email, password, confirmPassword); msg != "" {
		f.setFailure(msg, false)
		return errors.New(msg)
	}

	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return nil
	}
	f.loading = true
	f.mu.Unlock()

	session, err := f.accounts.SignUp(ctx, email, password, firstName, lastName)
	if err != nil {
		msg := "Could not create your account. Please try again."
		if errors.Is(err, ErrEmailAlreadyInUse) {
			msg = "Email is already in use. Please log in instead."
		} else if err.Error() != "" {
			msg = err.Error()
		}
		f.mu.Lock()
		f.loading = false
		f.message = msg
		f.messageKind = MessageError
		f.mu.Unlock()
		return err
	}

	if err := f.profiles.CreateProfile(ctx, session, firstName, lastName); err != nil {
		f.logger.Warn("profile record not created, will be recovered on first read", "email", email, "err", err)
	}

	f.mu.Lock()
	f.loading = false
	f.message = "Account created successfully."
	f.messageKind = MessageSuccess
	f.mu.Unlock()

	f.sleep(provisionRedirectDelay)
	f.nav.NavigateTo(RouteCompleteProfile)
	return nil
}

// beginDecision flips the shared loading gate. It refuses when a submission
// is already in flight, when verification failed, or when no identity has
// resolved yet, so accept and reject stay mutually exclusive.
func (f *Flow) beginDecision() (email string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loading || f.verifyFailed || f.identity == nil {
		return "", false
	}
	f.loading = true
	return f.identity.Email, true
}

func (f *Flow) setFailure(msg string, verifyFailed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = msg
	f.messageKind = MessageError
	if verifyFailed {
		f.verifyFailed = true
	}
}

// Identity returns the resolved invitee identity, or nil before verification
// succeeds.
func (f *Flow) Identity() *domain.InviteeIdentity {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.identity == nil {
		return nil
	}
	identity := *f.identity
	return &identity
}

// Loading reports whether a submission is in flight.
func (f *Flow) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// CanDecide reports whether the accept and reject actions are enabled.
func (f *Flow) CanDecide() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identity != nil && !f.verifyFailed && !f.loading
}

// AccountFormVisible reports whether the flow has advanced to the
// account-creation form.
func (f *Flow) AccountFormVisible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.showAccountForm
}

// Message returns the current banner text and kind.
func (f *Flow) Message() (string, MessageKind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message, f.messageKind
}

// Token returns the canonical token resolved by Start.
func (f *Flow) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}
