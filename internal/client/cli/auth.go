package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/beaux-riel/openengram-site/internal/client/auth"
	"github.com/beaux-riel/openengram-site/internal/client/clipboard"
	"github.com/beaux-riel/openengram-site/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

const (
	switchToLogin    = ":login"
	switchToRegister = ":register"
)

// Register opens the auth prompt on the register tab.
func (a *App) Register(ctx context.Context) error {
	return a.authenticate(ctx, auth.TabRegister)
}

// Login opens the auth prompt on the login tab.
func (a *App) Login(ctx context.Context) error {
	return a.authenticate(ctx, auth.TabLogin)
}

// Logout forgets the token and the API key together.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Clear(ctx); err != nil {
		return err
	}
	a.View = ViewHome
	a.resetAccount()
	printlnFn("Logged out.")
	return nil
}

func (a *App) authenticate(ctx context.Context, tab auth.Tab) error {
	if err := a.auth.Open(tab); err != nil {
		return err
	}
	if err := a.promptSession(ctx); err != nil {
		return err
	}
	if !a.isLoggedIn() {
		return nil
	}
	// the plan must come from the server for whoever is logged in now
	a.plan = ""
	return a.Dashboard(ctx)
}

// promptSession runs the auth prompt and drops per-account state when it
// ends with a different token than it started with.
func (a *App) promptSession(ctx context.Context) error {
	before, _ := a.session.Token()
	err := a.promptAuth(ctx)
	if after, _ := a.session.Token(); after != before {
		a.resetAccount()
	}
	return err
}

// promptAuth drives an open auth flow until it closes. An empty email
// abandons the flow.
func (a *App) promptAuth(ctx context.Context) error {
	for {
		st := a.auth.State()
		switch st.Phase {
		case auth.PhaseClosed:
			return nil
		case auth.PhaseShowingSecret:
			return a.showSecret(ctx)
		}

		printlnFn(renderAuthHeader(st))
		email, err := getSimpleText(a.reader, "Email (empty to cancel, "+otherTabHint(st.Tab)+")", a.out)
		if err != nil {
			return errors.Join(err, a.auth.Close(ctx))
		}

		switch strings.ToLower(email) {
		case "":
			printlnFn(mutedStyle.Render("Cancelled."))
			return a.auth.Close(ctx)
		case switchToLogin:
			_ = a.auth.SetTab(auth.TabLogin)
			continue
		case switchToRegister:
			_ = a.auth.SetTab(auth.TabRegister)
			continue
		}

		password, err := getPassword(a.out)
		if err != nil {
			return errors.Join(err, a.auth.Close(ctx))
		}
		err = a.auth.Submit(ctx, email, string(password))
		common.WipeByteArray(password)
		if err != nil {
			// shown from State().Error on the next pass
			continue
		}

		if toast := a.auth.State().Toast; toast != "" {
			printlnFn(toastStyle.Render(toast))
		}
	}
}

// showSecret is the one-time reveal of a freshly issued API key.
func (a *App) showSecret(ctx context.Context) error {
	printlnFn(accentStyle.Render("Your API key"))
	printlnFn(secretStyle.Render(a.auth.State().Secret))
	printlnFn(mutedStyle.Render("This is the only time the full key is shown here. Copy it now."))

	for {
		choice, err := getSimpleText(a.reader, "[c]opy, or Enter to continue", a.out)
		if err != nil {
			return errors.Join(err, a.auth.Acknowledge(ctx))
		}

		switch strings.ToLower(choice) {
		case "":
			return a.auth.Acknowledge(ctx)
		case "c", "copy":
			if err := a.auth.CopySecret(); err != nil {
				if errors.Is(err, clipboard.ErrUnsupported) {
					printlnFn(errorStyle.Render("Clipboard unavailable, copy the key by hand."))
					continue
				}
				return err
			}
			if a.auth.State().Copied {
				printlnFn(toastStyle.Render("Copied!"))
			}
		}
	}
}

func renderAuthHeader(st auth.State) string {
	title := "Create account"
	if st.Tab == auth.TabLogin {
		title = "Log in"
	}
	s := titleStyle.Render(title)
	if st.Error != "" {
		s += "\n" + errorStyle.Render(st.Error)
	}
	return s
}

func otherTabHint(tab auth.Tab) string {
	if tab == auth.TabLogin {
		return fmt.Sprintf("%s to create an account", switchToRegister)
	}
	return fmt.Sprintf("%s if you have one", switchToLogin)
}
