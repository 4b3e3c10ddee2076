package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/beaux-riel/openengram-site/internal/client/billing"
	"github.com/beaux-riel/openengram-site/internal/client/checkout"
)

// Billing prints the tier catalogue relative to the current plan. Logged-out
// users see every tier as available.
func (a *App) Billing(ctx context.Context) error {
	current := ""
	if a.isLoggedIn() {
		if a.plan == "" {
			if acct, err := a.account.Account(ctx); err == nil {
				a.plan = acct.WithDefaults().Plan
			} else {
				a.logger.Debug(ctx, "billing view without account", "error", err)
			}
		}
		current = a.plan
	}

	a.View = ViewBilling
	printlnFn(renderTiers(billing.Rows(current), current))
	return nil
}

// Upgrade starts checkout for plan, deferring it behind the auth prompt
// when logged out.
func (a *App) Upgrade(ctx context.Context, plan string) error {
	plan = strings.ToLower(plan)
	if known := billing.TierIndex(plan) >= 0; known && a.isLoggedIn() && a.plan != "" && !billing.IsUpgrade(a.plan, plan) {
		printlnFn(mutedStyle.Render(fmt.Sprintf("%s is not an upgrade from %s.", plan, a.plan)))
		return nil
	}

	out, err := a.billing.RequestUpgrade(ctx, plan)
	if err != nil {
		return err
	}

	switch out {
	case checkout.Deferred:
		printlnFn(mutedStyle.Render(fmt.Sprintf("Log in or create an account to continue to %s.", plan)))
		return a.promptSession(ctx)
	case checkout.NoURL:
		printlnFn(mutedStyle.Render("Checkout is not available right now."))
	}
	return nil
}

// Portal opens subscription management. Free accounts have none.
func (a *App) Portal(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	if a.plan != "" && !billing.PortalAvailable(a.plan) {
		printlnFn(mutedStyle.Render("The free plan has no subscription to manage."))
		return nil
	}

	out, err := a.billing.OpenPortal(ctx)
	if err != nil {
		return err
	}
	if out == checkout.NoURL {
		printlnFn(mutedStyle.Render("Billing portal is not available right now."))
	}
	return nil
}

func renderTiers(rows []billing.Row, current string) string {
	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render("Plans"))

	for _, r := range rows {
		name := fmt.Sprintf("%-8s %-8s", r.Tier.DisplayName, r.Tier.Price)
		var action string
		switch r.Affordance {
		case billing.AffordanceCurrent:
			name = accentStyle.Render(name)
			action = accentStyle.Render("current")
		case billing.AffordanceUpgrade:
			action = "upgrade " + r.Tier.ID
		}
		fmt.Fprintf(&b, "%s  %-20s %s\n", name, action, mutedStyle.Render(strings.Join(r.Tier.Features, ", ")))
	}

	if billing.PortalAvailable(current) {
		b.WriteString(mutedStyle.Render("Type 'portal' to manage your subscription."))
	}
	return strings.TrimRight(b.String(), "\n")
}
