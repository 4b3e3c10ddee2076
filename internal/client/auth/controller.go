// Package auth drives the register/login flow: tab selection, structural
// validation, submission, inline errors and the one-time reveal of the API
// key issued at registration.
//
// States:
//
//	Closed -> Idle(tab) -> Submitting -> ShowingSecret   (register with a key)
//	                                  -> Closed          (login, register without key; listeners notified)
//	                                  -> Idle(tab, err)  (any failure)
//	ShowingSecret -> Closed on Acknowledge                (listeners notified)
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/beaux-riel/openengram-site/internal/client/client"
	"github.com/beaux-riel/openengram-site/internal/client/models"
	"github.com/beaux-riel/openengram-site/internal/client/session"
	"github.com/beaux-riel/openengram-site/internal/client/transient"
	"github.com/beaux-riel/openengram-site/internal/logging"
)

const MinPasswordLength = 8

const (
	toastRegistered = "Account created!"
	toastLoggedIn   = "Logged in!"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	// ErrBusy is returned while a submission is in flight; the submit control
	// is disabled because the backend has no idempotency key.
	ErrBusy = errors.New("a request is already in progress")
	// ErrNotOpen is returned by actions that need the flow to be open.
	ErrNotOpen = errors.New("authentication flow is not open")
	// ErrNoSecret is returned by CopySecret outside the reveal screen.
	ErrNoSecret = errors.New("no secret to copy")
)

type Tab string

const (
	TabRegister Tab = "register"
	TabLogin    Tab = "login"
)

type Phase int

const (
	PhaseClosed Phase = iota
	PhaseIdle
	PhaseSubmitting
	PhaseShowingSecret
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseShowingSecret:
		return "showing-secret"
	default:
		return "closed"
	}
}

// State is a snapshot for rendering.
type State struct {
	Phase Phase
	Tab   Tab
	Email string
	Error string
	// Secret is the API key on the one-time reveal screen.
	Secret string
	Copied bool
	Toast  string
}

// Gateway is the subset of client.Client used here.
type Gateway interface {
	Register(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
}

// SessionWriter persists a successful authentication.
type SessionWriter interface {
	Save(ctx context.Context, s session.Session) error
}

type Clipboard interface {
	WriteAll(text string) error
}

// Controller is safe for concurrent use; notifications run on the caller's
// goroutine after the state change is visible.
type Controller struct {
	gw      Gateway
	session SessionWriter
	clip    Clipboard
	toast   *transient.Flash
	copied  *transient.Flash
	logger  logging.Logger

	mu    sync.Mutex
	state State
	// one-shot listeners, dropped together after either fires
	onAuthenticated []func(ctx context.Context)
	onAbandoned     []func()
}

// NewController wires a controller. toast and copied are the timed
// indicators for the acknowledgment toast and the copy confirmation.
func NewController(gw Gateway, sw SessionWriter, clip Clipboard, toast, copied *transient.Flash, logger logging.Logger) *Controller {
	return &Controller{
		gw:      gw,
		session: sw,
		clip:    clip,
		toast:   toast,
		copied:  copied,
		logger:  logger,
		state:   State{Tab: TabRegister},
	}
}

// State returns a snapshot including the live toast and copy indicators.
func (c *Controller) State() State {
	c.mu.Lock()
	st := c.state
	c.mu.Unlock()

	st.Toast = c.toast.Value()
	st.Copied = st.Secret != "" && c.copied.Is(st.Secret)
	return st
}

// Open shows the flow on tab, resetting error, revealed secret and copy
// confirmation whatever happened before. It returns ErrBusy while a
// submission is in flight.
func (c *Controller) Open(tab Tab) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == PhaseSubmitting {
		return ErrBusy
	}
	c.state = State{Phase: PhaseIdle, Tab: normalizeTab(tab), Email: c.state.Email}
	c.copied.Clear()
	return nil
}

// SetTab switches tabs and clears a displayed error. The entered email is kept.
func (c *Controller) SetTab(tab Tab) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Phase {
	case PhaseIdle:
		c.state.Tab = normalizeTab(tab)
		c.state.Error = ""
		return nil
	case PhaseSubmitting:
		return ErrBusy
	default:
		return ErrNotOpen
	}
}

// OnceAuthenticated registers fn to run once, right after the next
// successful authentication completes. Abandoning the flow drops it.
func (c *Controller) OnceAuthenticated(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAuthenticated = append(c.onAuthenticated, fn)
}

// OnceAbandoned registers fn to run once if the flow is closed without
// authenticating. Authenticating drops it.
func (c *Controller) OnceAbandoned(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAbandoned = append(c.onAbandoned, fn)
}

// Submit validates and sends the credentials for the current tab.
//
// Validation failures and backend failures are both reflected in
// State().Error and returned; either way the flow stays on its tab and the
// session store is untouched.
func (c *Controller) Submit(ctx context.Context, email, password string) error {
	c.mu.Lock()
	switch c.state.Phase {
	case PhaseSubmitting:
		c.mu.Unlock()
		return ErrBusy
	case PhaseIdle:
	default:
		c.mu.Unlock()
		return ErrNotOpen
	}

	email = strings.TrimSpace(email)
	c.state.Email = email
	if err := validate(email, password); err != nil {
		c.state.Error = err.Error()
		c.mu.Unlock()
		return err
	}

	tab := c.state.Tab
	c.state.Error = ""
	c.state.Phase = PhaseSubmitting
	c.mu.Unlock()

	res, err := c.send(ctx, tab, models.Credentials{Email: email, Password: password})
	if err == nil {
		err = c.session.Save(ctx, session.Session{Token: res.Token, APIKey: res.APIKey})
	}
	if err != nil {
		c.fail(ctx, err)
		return err
	}

	if tab == TabRegister && res.APIKey != "" {
		c.mu.Lock()
		c.state.Phase = PhaseShowingSecret
		c.state.Secret = res.APIKey
		c.mu.Unlock()
		c.toast.Show(toastRegistered)
		c.logger.Info(ctx, "account registered")
		return nil
	}

	c.toast.Show(toastLoggedIn)
	c.logger.Info(ctx, "authenticated", "tab", string(tab))
	c.complete(ctx)
	return nil
}

// Acknowledge leaves the one-time reveal screen. The key is no longer shown
// and authentication listeners run.
func (c *Controller) Acknowledge(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Phase != PhaseShowingSecret {
		c.mu.Unlock()
		return ErrNotOpen
	}
	c.mu.Unlock()

	c.complete(ctx)
	return nil
}

// CopySecret copies the revealed key and raises the copy confirmation.
func (c *Controller) CopySecret() error {
	c.mu.Lock()
	secret := c.state.Secret
	c.mu.Unlock()

	if secret == "" {
		return ErrNoSecret
	}
	if err := c.clip.WriteAll(secret); err != nil {
		return err
	}
	c.copied.Show(secret)
	return nil
}

// Close abandons the flow. On the reveal screen the user already holds a
// session, so closing there counts as Acknowledge. While a submission is in
// flight Close returns ErrBusy.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	switch c.state.Phase {
	case PhaseClosed:
		c.mu.Unlock()
		return nil
	case PhaseSubmitting:
		c.mu.Unlock()
		return ErrBusy
	case PhaseShowingSecret:
		c.mu.Unlock()
		c.complete(ctx)
		return nil
	}

	c.state = State{Phase: PhaseClosed, Tab: c.state.Tab, Email: c.state.Email}
	abandoned := c.onAbandoned
	c.onAbandoned, c.onAuthenticated = nil, nil
	c.mu.Unlock()

	c.copied.Clear()
	for _, fn := range abandoned {
		fn()
	}
	return nil
}

func (c *Controller) send(ctx context.Context, tab Tab, creds models.Credentials) (*models.AuthResult, error) {
	if tab == TabLogin {
		return c.gw.Login(ctx, creds)
	}
	return c.gw.Register(ctx, creds)
}

func (c *Controller) fail(ctx context.Context, err error) {
	c.mu.Lock()
	c.state.Phase = PhaseIdle
	c.state.Error = client.Display(err)
	c.mu.Unlock()
	c.logger.Debug(ctx, "authentication failed", "error", err)
}

// complete closes the flow and fires the authentication listeners once.
func (c *Controller) complete(ctx context.Context) {
	c.mu.Lock()
	c.state = State{Phase: PhaseClosed, Tab: c.state.Tab}
	listeners := c.onAuthenticated
	c.onAuthenticated, c.onAbandoned = nil, nil
	c.mu.Unlock()

	c.copied.Clear()
	for _, fn := range listeners {
		fn(ctx)
	}
}

func validate(email, password string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func normalizeTab(t Tab) Tab {
	if t == TabLogin {
		return TabLogin
	}
	return TabRegister
}
