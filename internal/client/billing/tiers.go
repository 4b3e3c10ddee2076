// Package billing describes the subscription tiers and which affordance each
// tier gets relative to the account's current plan.
//
// The catalogue is static and must follow the backend's own tier order.
package billing

import "slices"

const (
	PlanFree    = "free"
	PlanStarter = "starter"
	PlanPro     = "pro"
	PlanScale   = "scale"
)

// Tier is one entry of the catalogue.
type Tier struct {
	ID          string
	DisplayName string
	Price       string
	Features    []string
}

// catalogue is ordered lowest to highest.
var catalogue = []Tier{
	{ID: PlanFree, DisplayName: "Free", Price: "$0/mo", Features: []string{"1,000 memories", "100 API calls/day", "Community support"}},
	{ID: PlanStarter, DisplayName: "Starter", Price: "$29/mo", Features: []string{"10,000 memories", "1,000 API calls/day", "Email support"}},
	{ID: PlanPro, DisplayName: "Pro", Price: "$99/mo", Features: []string{"100,000 memories", "10,000 API calls/day", "Priority support"}},
	{ID: PlanScale, DisplayName: "Scale", Price: "$499/mo", Features: []string{"Unlimited memories", "Unlimited API calls", "Dedicated support"}},
}

// Tiers returns a copy of the catalogue in tier order.
func Tiers() []Tier {
	out := make([]Tier, len(catalogue))
	for i, t := range catalogue {
		t.Features = slices.Clone(t.Features)
		out[i] = t
	}
	return out
}

// Lookup finds a tier by id.
func Lookup(planID string) (Tier, bool) {
	i := TierIndex(planID)
	if i < 0 {
		return Tier{}, false
	}
	return Tiers()[i], true
}

// TierIndex returns the ordinal of planID, or -1 when it is not in the catalogue.
func TierIndex(planID string) int {
	return slices.IndexFunc(catalogue, func(t Tier) bool { return t.ID == planID })
}

// IsUpgrade reports whether candidate sits strictly above current.
// An unknown candidate is never an upgrade; every known tier is an upgrade
// from an unknown current plan.
func IsUpgrade(current, candidate string) bool {
	c := TierIndex(candidate)
	return c >= 0 && c > TierIndex(current)
}

// Affordance is what the billing view offers for a tier.
type Affordance int

const (
	// AffordanceNone is shown for lower tiers; downgrades are not offered here.
	AffordanceNone Affordance = iota
	AffordanceCurrent
	AffordanceUpgrade
)

func (a Affordance) String() string {
	switch a {
	case AffordanceCurrent:
		return "current"
	case AffordanceUpgrade:
		return "upgrade"
	default:
		return "none"
	}
}

// AffordanceFor decides the affordance of tier for an account on plan current.
func AffordanceFor(current string, tier Tier) Affordance {
	switch {
	case tier.ID == current:
		return AffordanceCurrent
	case IsUpgrade(current, tier.ID):
		return AffordanceUpgrade
	default:
		return AffordanceNone
	}
}

// Row pairs a tier with its affordance.
type Row struct {
	Tier       Tier
	Affordance Affordance
}

// Rows lays out the whole catalogue for an account on plan current.
func Rows(current string) []Row {
	tiers := Tiers()
	rows := make([]Row, len(tiers))
	for i, t := range tiers {
		rows[i] = Row{Tier: t, Affordance: AffordanceFor(current, t)}
	}
	return rows
}

// PortalAvailable reports whether the subscription-management portal is
// offered. Free accounts have nothing to manage.
func PortalAvailable(plan string) bool {
	return plan != "" && plan != PlanFree
}
