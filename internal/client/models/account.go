// Package models holds the data shapes exchanged with the OpenEngram backend.
package models

import "time"

const (
	DefaultPlan           = "free"
	DefaultMemoryLimit    = 1000
	DefaultDailyCallLimit = 100
	// PlaceholderAPIKey is shown in the quick-start snippet when the account
	// carries no key.
	PlaceholderAPIKey = "eng_xxxxxxxxxxxxxxxx"
)

// Account is read-only on the client and always re-fetched, never patched.
type Account struct {
	Email  string `json:"email"`
	Plan   string `json:"plan"`
	Usage  Usage  `json:"usage"`
	Limits Limits `json:"limits"`
	APIKey string `json:"api_key"`
}

type Usage struct {
	Memories      int64 `json:"memories"`
	APICallsToday int64 `json:"api_calls_today"`
}

type Limits struct {
	Memories      int64 `json:"memories"`
	APICallsDaily int64 `json:"api_calls_daily"`
}

// WithDefaults fills the fields the dashboard cannot render without.
func (a Account) WithDefaults() Account {
	if a.Plan == "" {
		a.Plan = DefaultPlan
	}
	if a.Limits.Memories == 0 {
		a.Limits.Memories = DefaultMemoryLimit
	}
	if a.Limits.APICallsDaily == 0 {
		a.Limits.APICallsDaily = DefaultDailyCallLimit
	}
	return a
}

// QuickStartKey is the key to embed in example requests.
func (a Account) QuickStartKey() string {
	if a.APIKey == "" {
		return PlaceholderAPIKey
	}
	return a.APIKey
}

// Percent returns value/max as a percentage capped at 100. A non-positive
// max yields 0.
func Percent(value, max int64) float64 {
	if max <= 0 {
		return 0
	}
	p := float64(value) / float64(max) * 100
	if p > 100 {
		return 100
	}
	return p
}

// APIKeyRecord is one entry of the account's key list. Key is the raw secret.
type APIKeyRecord struct {
	ID         string `json:"id"`
	Key        string `json:"key"`
	CreatedAt  string `json:"created_at,omitempty"`
	LastUsedAt string `json:"last_used,omitempty"`
}

// Created parses CreatedAt as RFC 3339. ok is false when it is empty or malformed.
func (r APIKeyRecord) Created() (t time.Time, ok bool) {
	return parseTimestamp(r.CreatedAt)
}

func (r APIKeyRecord) LastUsed() (t time.Time, ok bool) {
	return parseTimestamp(r.LastUsedAt)
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
