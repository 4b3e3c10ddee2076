package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beaux-riel/openengram-site/internal/client/models"
	"github.com/beaux-riel/openengram-site/internal/common"
	"github.com/beaux-riel/openengram-site/internal/logging"
	"github.com/google/uuid"
)

const (
	pathRegister = "/v1/auth/register"
	pathLogin    = "/v1/auth/login"
	pathAccount  = "/v1/account"
	pathAPIKeys  = "/v1/account/api-keys"
	pathCheckout = "/v1/billing/checkout"
	pathPortal   = "/v1/billing/portal"

	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
)

type HTTPClient struct {
	baseURL   string
	http      *http.Client
	session   SessionSource
	nav       HomeNavigator
	logger    logging.Logger
	requestID func() string
}

type Option func(*HTTPClient)

func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// WithRequestIDFunc replaces the X-Request-Id generator.
func WithRequestIDFunc(f func() string) Option {
	return func(c *HTTPClient) { c.requestID = f }
}

func NewHTTPClient(baseURL string, session SessionSource, nav HomeNavigator, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 10 * time.Second},
		session:   session,
		nav:       nav,
		logger:    logging.Nop(),
		requestID: uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Call performs an authenticated request and decodes a successful JSON body
// into out (which may be nil).
func (c *HTTPClient) Call(ctx context.Context, method, path string, body, out any) error {
	token, ok := c.session.Token()
	if !ok {
		return ErrUnauthenticated
	}

	resp, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.reject(ctx, token, path)
		return ErrUnauthorized
	}
	return decode(resp, out)
}

// callPublic is Call for endpoints that need no session. A 401 here is a
// plain request failure (e.g. wrong password) and leaves the session alone.
func (c *HTTPClient) callPublic(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.do(ctx, method, path, "", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

// reject clears the session the rejected token belonged to and sends the
// user home. It runs whichever UI issued the call.
func (c *HTTPClient) reject(ctx context.Context, token, path string) {
	cleared, err := c.session.Invalidate(ctx, token)
	if err != nil {
		c.logger.Error(ctx, "session invalidation failed", "path", path, "error", err)
	}
	if !cleared {
		c.logger.Info(ctx, "stale token rejected, newer session kept", "path", path)
		return
	}
	c.logger.Warn(ctx, "session rejected by backend", "path", path)
	if c.nav != nil {
		c.nav.Home(ctx)
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := c.requestID()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		c.logger.Warn(ctx, "api request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.logger.Debug(ctx, "api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
	)
	return resp, nil
}

func decode(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &RequestError{Status: resp.StatusCode, Message: serverMessage(b)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// serverMessage extracts "error", then "message", from a JSON error body.
func serverMessage(b []byte) string {
	var body struct {
		Error   any `json:"error"`
		Message any `json:"message"`
	}
	if json.Unmarshal(b, &body) != nil {
		return ""
	}
	for _, v := range []any{body.Error, body.Message} {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func (c *HTTPClient) Register(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.callPublic(ctx, http.MethodPost, pathRegister, creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.callPublic(ctx, http.MethodPost, pathLogin, creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Account(ctx context.Context) (*models.Account, error) {
	var acc models.Account
	if err := c.Call(ctx, http.MethodGet, pathAccount, nil, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (c *HTTPClient) APIKeys(ctx context.Context) ([]models.APIKeyRecord, error) {
	var raw json.RawMessage
	if err := c.Call(ctx, http.MethodGet, pathAPIKeys, nil, &raw); err != nil {
		return nil, err
	}
	return decodeKeyList(raw)
}

// RegenerateAPIKey invalidates the current key and returns whatever the
// backend issued in its place.
func (c *HTTPClient) RegenerateAPIKey(ctx context.Context) ([]models.APIKeyRecord, error) {
	var raw json.RawMessage
	if err := c.Call(ctx, http.MethodPost, pathAPIKeys, nil, &raw); err != nil {
		return nil, err
	}
	return decodeKeyList(raw)
}

// CreateCheckout exchanges a plan id for a payment-provider URL. The URL is
// "" when the backend supplied none.
func (c *HTTPClient) CreateCheckout(ctx context.Context, plan string) (string, error) {
	var res models.RedirectResponse
	if err := c.Call(ctx, http.MethodPost, pathCheckout, models.CheckoutRequest{Plan: plan}, &res); err != nil {
		return "", err
	}
	return res.URL, nil
}

func (c *HTTPClient) BillingPortal(ctx context.Context) (string, error) {
	var res models.RedirectResponse
	if err := c.Call(ctx, http.MethodGet, pathPortal, nil, &res); err != nil {
		return "", err
	}
	return res.URL, nil
}
