package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/beaux-riel/openengram-site/internal/client/billing"
	"github.com/beaux-riel/openengram-site/internal/client/client"
	"github.com/beaux-riel/openengram-site/internal/client/models"
)

// Dashboard fetches the account and prints plan, usage and a quick-start
// request. Without a session, or when the fetch fails, the view falls back
// to home.
func (a *App) Dashboard(ctx context.Context) error {
	if !a.isLoggedIn() {
		a.View = ViewHome
		printlnFn("Log in to see your dashboard.")
		return nil
	}

	acct, err := a.account.Account(ctx)
	if err != nil {
		// a rejected token already went through onHome
		if !errors.Is(err, client.ErrUnauthorized) {
			a.View = ViewHome
		}
		return err
	}

	view := acct.WithDefaults()
	if view.APIKey == "" {
		// last key issued to this client, e.g. at registration
		view.APIKey, _ = a.session.APIKey()
	}
	a.plan = view.Plan
	a.View = ViewDashboard
	printlnFn(renderDashboard(view, a.config.APIBaseURL, a.config.SiteURL))
	return nil
}

func renderDashboard(acct models.Account, apiBaseURL, siteURL string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", titleStyle.Render("Dashboard"), accentStyle.Render(strings.ToUpper(acct.Plan)))
	if acct.Email != "" {
		fmt.Fprintln(&b, mutedStyle.Render(acct.Email))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, usageLine("Memories", acct.Usage.Memories, acct.Limits.Memories))
	fmt.Fprintln(&b, usageLine("API calls today", acct.Usage.APICallsToday, acct.Limits.APICallsDaily))

	if acct.Plan == billing.PlanFree {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Need more? Type "+accentStyle.Render("upgrade "+billing.PlanStarter))
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, titleStyle.Render("Quick start"))
	fmt.Fprintln(&b, codeStyle.Render(quickStart(apiBaseURL, acct.QuickStartKey())))
	b.WriteString(mutedStyle.Render("Docs: " + docsURL(siteURL)))
	return b.String()
}

func docsURL(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + "/docs"
}

func usageLine(label string, value, limit int64) string {
	return fmt.Sprintf("%-16s %s %d / %d", label, progressBar(models.Percent(value, limit)), value, limit)
}

func quickStart(apiBaseURL, key string) string {
	return fmt.Sprintf(`curl -X POST %s/v1/memories \
  -H "Authorization: Bearer %s" \
  -H "Content-Type: application/json" \
  -d '{"content": "User prefers dark mode"}'`, strings.TrimRight(apiBaseURL, "/"), key)
}
