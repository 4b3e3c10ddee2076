// Package checkout resumes a subscription purchase across authentication.
//
// An upgrade requested without a session is parked as the single pending
// plan selection; the auth flow is opened and, once it reports success, the
// pending plan is consumed exactly once and the checkout redirect runs.
package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/beaux-riel/openengram-site/internal/client/auth"
	"github.com/beaux-riel/openengram-site/internal/client/billing"
	"github.com/beaux-riel/openengram-site/internal/logging"
)

var (
	ErrUnknownPlan = errors.New("unknown plan")
	// ErrBusy is returned while a checkout or portal request is in flight.
	ErrBusy = errors.New("a billing request is already in progress")
)

// Outcome says what a billing request ended up doing.
type Outcome int

const (
	// NoURL means the backend answered without a URL; nothing happens.
	NoURL Outcome = iota
	Redirected
	// Deferred means the plan is pending until authentication completes.
	Deferred
)

func (o Outcome) String() string {
	switch o {
	case Redirected:
		return "redirected"
	case Deferred:
		return "deferred"
	default:
		return "no-url"
	}
}

type Gateway interface {
	CreateCheckout(ctx context.Context, plan string) (string, error)
	BillingPortal(ctx context.Context) (string, error)
}

// Authenticator is the part of the auth flow the orchestrator drives.
type Authenticator interface {
	Open(tab auth.Tab) error
	OnceAuthenticated(fn func(ctx context.Context))
	OnceAbandoned(fn func())
}

type SessionReader interface {
	Token() (string, bool)
}

type Navigator interface {
	Open(ctx context.Context, url string) error
}

// ResumeFunc observes the checkout that runs after authentication.
type ResumeFunc func(ctx context.Context, plan string, o Outcome, err error)

type Option func(*Orchestrator)

func WithResumeFunc(fn ResumeFunc) Option {
	return func(o *Orchestrator) { o.onResume = fn }
}

type Orchestrator struct {
	gw       Gateway
	authn    Authenticator
	session  SessionReader
	nav      Navigator
	logger   logging.Logger
	onResume ResumeFunc

	mu       sync.Mutex
	pending  string
	awaiting bool
	inFlight bool
}

func NewOrchestrator(gw Gateway, authn Authenticator, session SessionReader, nav Navigator, logger logging.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gw:      gw,
		authn:   authn,
		session: session,
		nav:     nav,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RequestUpgrade starts checkout for plan. With a session it redirects right
// away. Without one it records plan as the pending selection, replacing any
// earlier one, and opens the auth flow on the register tab.
func (o *Orchestrator) RequestUpgrade(ctx context.Context, plan string) (Outcome, error) {
	if billing.TierIndex(plan) < 0 {
		return NoURL, ErrUnknownPlan
	}

	if _, ok := o.session.Token(); ok {
		return o.checkout(ctx, plan)
	}

	o.mu.Lock()
	o.pending = plan
	subscribe := !o.awaiting
	o.awaiting = true
	o.mu.Unlock()

	if subscribe {
		o.authn.OnceAuthenticated(o.resume)
		o.authn.OnceAbandoned(o.abandon)
	}
	o.logger.Debug(ctx, "upgrade deferred until authenticated", "plan", plan)

	if err := o.authn.Open(auth.TabRegister); err != nil && !errors.Is(err, auth.ErrBusy) {
		return Deferred, err
	}
	return Deferred, nil
}

// Pending returns the parked plan, if any.
func (o *Orchestrator) Pending() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending, o.pending != ""
}

// Cancel drops the pending selection.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = ""
}

// OpenPortal sends the user to the payment provider's billing portal.
func (o *Orchestrator) OpenPortal(ctx context.Context) (Outcome, error) {
	if !o.begin() {
		return NoURL, ErrBusy
	}
	defer o.end()

	url, err := o.gw.BillingPortal(ctx)
	if err != nil {
		return NoURL, err
	}
	return o.redirect(ctx, "billing portal", url)
}

// resume runs once per auth success. The pending slot is emptied before the
// checkout starts, so a failure is never retried.
func (o *Orchestrator) resume(ctx context.Context) {
	o.mu.Lock()
	plan := o.pending
	o.pending = ""
	o.awaiting = false
	o.mu.Unlock()

	if plan == "" {
		return
	}

	out, err := o.checkout(ctx, plan)
	if err != nil {
		o.logger.Warn(ctx, "resumed checkout failed", "plan", plan, "error", err)
	}
	if o.onResume != nil {
		o.onResume(ctx, plan, out, err)
	}
}

func (o *Orchestrator) abandon() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = ""
	o.awaiting = false
}

func (o *Orchestrator) checkout(ctx context.Context, plan string) (Outcome, error) {
	if !o.begin() {
		return NoURL, ErrBusy
	}
	defer o.end()

	url, err := o.gw.CreateCheckout(ctx, plan)
	if err != nil {
		return NoURL, err
	}
	return o.redirect(ctx, "checkout", url)
}

func (o *Orchestrator) redirect(ctx context.Context, what, url string) (Outcome, error) {
	if url == "" {
		o.logger.Warn(ctx, what+" returned no url")
		return NoURL, nil
	}
	if err := o.nav.Open(ctx, url); err != nil {
		return NoURL, err
	}
	return Redirected, nil
}

func (o *Orchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight {
		return false
	}
	o.inFlight = true
	return true
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	o.inFlight = false
	o.mu.Unlock()
}
