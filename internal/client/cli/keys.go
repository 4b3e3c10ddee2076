package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/beaux-riel/openengram-site/internal/client/keys"
)

// Keys re-fetches and prints the key list. When the fetch fails the last
// list is printed.
func (a *App) Keys(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	err := a.keys.Load(ctx)
	a.View = ViewKeys
	printlnFn(renderKeys(a.keys.Views(), a.keys.RegenState()))
	return err
}

func (a *App) Reveal(_ context.Context, id string) error {
	if !a.requireLogin() {
		return nil
	}
	if _, err := a.keys.ToggleReveal(id); err != nil {
		return err
	}
	printlnFn(renderKeys(a.keys.Views(), a.keys.RegenState()))
	return nil
}

func (a *App) Copy(_ context.Context, id string) error {
	if !a.requireLogin() {
		return nil
	}
	if err := a.keys.Copy(id); err != nil {
		return err
	}
	printlnFn(toastStyle.Render("Copied!"))
	return nil
}

// Regenerate is the two-step control: the first call arms it, the second
// consecutive call replaces the key.
func (a *App) Regenerate(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	st, err := a.keys.Regenerate(ctx)
	if err != nil {
		return err
	}
	if st == keys.RegenArmed {
		printlnFn(dangerStyle.Render("Confirm regenerate?") + " " +
			mutedStyle.Render("The current key stops working. Type 'regen' again to confirm."))
		return nil
	}
	printlnFn(toastStyle.Render("API key regenerated"))
	printlnFn(renderKeys(a.keys.Views(), st))
	return nil
}

func (a *App) Disarm() {
	a.keys.Disarm()
}

func (a *App) requireLogin() bool {
	if a.isLoggedIn() {
		return true
	}
	a.View = ViewHome
	printlnFn("Log in first.")
	return false
}

func renderKeys(views []keys.View, regen keys.RegenState) string {
	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render("API keys"))

	if len(views) == 0 {
		fmt.Fprintln(&b, mutedStyle.Render("No keys yet."))
	}
	for _, v := range views {
		created := ""
		if t, ok := v.Record.Created(); ok {
			created = "created " + t.Format("2006-01-02")
		}
		if t, ok := v.Record.LastUsed(); ok {
			created = strings.TrimSpace(created + " · last used " + t.Format("2006-01-02"))
		}
		line := fmt.Sprintf("%-12s %s  %s", v.Record.ID, v.Display, mutedStyle.Render(created))
		if v.Copied {
			line += " " + toastStyle.Render("copied")
		}
		fmt.Fprintln(&b, line)
	}

	if regen == keys.RegenArmed {
		b.WriteString(dangerStyle.Render("regen: confirm?"))
	} else {
		b.WriteString(mutedStyle.Render("regen: regenerate key"))
	}
	return b.String()
}
