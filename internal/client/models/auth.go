package models

// Credentials is the body of both auth endpoints.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by register and login. APIKey is only issued on
// registration.
type AuthResult struct {
	Token  string `json:"token"`
	APIKey string `json:"apiKey,omitempty"`
}

// PendingPlanSelection is a purchase intent captured before authentication.
// It lives in memory only.
type PendingPlanSelection struct {
	Plan string
}

// CheckoutRequest is the body of POST /v1/billing/checkout.
type CheckoutRequest struct {
	Plan string `json:"plan"`
}

// RedirectResponse carries a payment-provider URL. URL may be empty.
type RedirectResponse struct {
	URL string `json:"url"`
}
