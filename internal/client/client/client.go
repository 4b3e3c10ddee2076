package client

import (
	"context"

	"github.com/beaux-riel/openengram-site/internal/client/models"
)

// Client is the backend contract the controllers depend on.
type Client interface {
	Register(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Account(ctx context.Context) (*models.Account, error)
	APIKeys(ctx context.Context) ([]models.APIKeyRecord, error)
	RegenerateAPIKey(ctx context.Context) ([]models.APIKeyRecord, error)
	CreateCheckout(ctx context.Context, plan string) (string, error)
	BillingPortal(ctx context.Context) (string, error)
}

// SessionSource is the gateway's view of the session store: it reads the
// token and may invalidate it, nothing else.
type SessionSource interface {
	Token() (string, bool)
	Invalidate(ctx context.Context, stale string) (bool, error)
}

// HomeNavigator returns the user to the application root.
type HomeNavigator interface {
	Home(ctx context.Context)
}
