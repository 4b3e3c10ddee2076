package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/beaux-riel/openengram-site/internal/client/auth"
	"github.com/beaux-riel/openengram-site/internal/client/checkout"
	"github.com/beaux-riel/openengram-site/internal/client/client"
	"github.com/beaux-riel/openengram-site/internal/client/clipboard"
	"github.com/beaux-riel/openengram-site/internal/client/config"
	"github.com/beaux-riel/openengram-site/internal/client/keys"
	"github.com/beaux-riel/openengram-site/internal/client/models"
	"github.com/beaux-riel/openengram-site/internal/client/navigator"
	"github.com/beaux-riel/openengram-site/internal/client/session"
	"github.com/beaux-riel/openengram-site/internal/client/transient"
	"github.com/beaux-riel/openengram-site/internal/filex"
	"github.com/beaux-riel/openengram-site/internal/logging"
)

type View string

const (
	ViewHome      View = "home"
	ViewDashboard View = "dashboard"
	ViewKeys      View = "keys"
	ViewBilling   View = "billing"
)

type authFlow interface {
	State() auth.State
	Open(tab auth.Tab) error
	SetTab(tab auth.Tab) error
	Submit(ctx context.Context, email, password string) error
	Acknowledge(ctx context.Context) error
	CopySecret() error
	Close(ctx context.Context) error
}

type billingFlow interface {
	RequestUpgrade(ctx context.Context, plan string) (checkout.Outcome, error)
	OpenPortal(ctx context.Context) (checkout.Outcome, error)
	Pending() (string, bool)
}

type keyManager interface {
	Load(ctx context.Context) error
	Views() []keys.View
	ToggleReveal(id string) (bool, error)
	Copy(id string) error
	Regenerate(ctx context.Context) (keys.RegenState, error)
	Disarm()
	Reset()
	RegenState() keys.RegenState
}

type accountSource interface {
	Account(ctx context.Context) (*models.Account, error)
}

type sessionStore interface {
	Token() (string, bool)
	APIKey() (string, bool)
	Clear(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	session sessionStore
	account accountSource
	auth    authFlow
	billing billingFlow
	keys    keyManager
	reader  *bufio.Reader
	out     io.Writer
	closer  io.Closer

	View View
	// plan from the last successful account fetch
	plan string
}

// NewApp opens the session database and builds the controllers.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if _, err := filex.EnsureParentDir(c.SessionDBPath); err != nil {
		return nil, err
	}

	db, err := session.OpenDatabase(ctx, c.SessionDBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.SessionDBPath, "error", err)
		return nil, err
	}

	store, err := session.NewStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	nav := navigator.NewBrowser(os.Stdout, logger)
	gw := client.NewHTTPClient(c.APIBaseURL, store, nav,
		client.WithHTTPClient(&http.Client{Timeout: c.RequestTimeout}),
		client.WithLogger(logger.With("component", "gateway")),
	)

	clip, ok := clipboard.Default()
	if !ok {
		logger.Warn(ctx, "system clipboard unavailable, copies stay in memory")
	}

	authCtl := auth.NewController(gw, store, clip,
		transient.New(c.ToastDuration), transient.New(c.CopyFeedbackDuration),
		logger.With("component", "auth"))

	a := &App{
		config:  c,
		logger:  logger,
		session: store,
		account: gw,
		auth:    authCtl,
		keys:    keys.NewController(gw, clip, transient.New(c.CopyFeedbackDuration), logger.With("component", "keys")),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		closer:  db,
		View:    ViewHome,
	}
	a.billing = checkout.NewOrchestrator(gw, authCtl, store, nav, logger.With("component", "checkout"),
		checkout.WithResumeFunc(a.reportResume))
	nav.OnHome(a.onHome)

	return a, nil
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn(titleStyle.Render("OpenEngram") + " (type 'help' for commands)")
	printlnFn(mutedStyle.Render("Docs: " + docsURL(a.config.SiteURL)))
	if a.isLoggedIn() {
		_ = a.Dashboard(ctx)
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *App) isLoggedIn() bool {
	_, ok := a.session.Token()
	return ok
}

func (a *App) getStatus() string {
	s := string(a.View)
	if p, ok := a.billing.Pending(); ok {
		s += " pending:" + p
	}
	if a.isLoggedIn() && a.plan != "" {
		s += " " + a.plan
	}
	return s
}

// onHome runs whenever the gateway drops a rejected session.
func (a *App) onHome(ctx context.Context) {
	a.View = ViewHome
	a.resetAccount()
	printlnFn(errorStyle.Render("Your session has ended. Please log in again."))
}

// resetAccount drops everything fetched for the previous session.
func (a *App) resetAccount() {
	a.plan = ""
	a.keys.Reset()
}

func (a *App) reportResume(_ context.Context, plan string, o checkout.Outcome, err error) {
	switch {
	case err != nil:
		printlnFn(errorStyle.Render(fmt.Sprintf("Checkout for %s failed: %s", plan, client.Display(err))))
	case o == checkout.NoURL:
		printlnFn(mutedStyle.Render("Checkout is not available right now."))
	}
}
