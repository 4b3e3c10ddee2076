package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/beaux-riel/openengram-site/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession mimics session.Store for the gateway.
type fakeSession struct {
	mu          sync.Mutex
	token       string
	invalidated []string
	invalidErr  error
}

func (f *fakeSession) Token() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *fakeSession) Invalidate(_ context.Context, stale string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, stale)
	if f.token != stale {
		return false, nil
	}
	f.token = ""
	return true, f.invalidErr
}

type fakeNav struct{ homes int }

func (f *fakeNav) Home(context.Context) { f.homes++ }

type recorded struct {
	method string
	path   string
	auth   string
	reqID  string
	body   string
}

type backend struct {
	mu       sync.Mutex
	requests []recorded
	srv      *httptest.Server
}

func newBackend(t *testing.T, h func(w http.ResponseWriter, r *http.Request)) *backend {
	t.Helper()
	b := &backend{}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.requests = append(b.requests, recorded{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
			reqID:  r.Header.Get("X-Request-Id"),
			body:   string(body),
		})
		b.mu.Unlock()
		h(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) calls() []recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recorded(nil), b.requests...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(b *backend, s *fakeSession, n *fakeNav) *HTTPClient {
	return NewHTTPClient(b.srv.URL+"/", s, n, WithRequestIDFunc(func() string { return "req-1" }))
}

func TestCall_NoToken_FailsWithoutRequest(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) { writeJSON(w, 200, map[string]any{}) })
	c := newTestClient(b, &fakeSession{}, &fakeNav{})

	_, err := c.Account(context.Background())
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, b.calls())
}

func TestCall_AttachesBearerAndRequestID(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{
			"email": "a@b.c", "plan": "starter",
			"usage":   map[string]any{"memories": 3, "api_calls_today": 4},
			"limits":  map[string]any{"memories": 10000, "api_calls_daily": 1000},
			"api_key": "eng_1",
		})
	})
	c := newTestClient(b, &fakeSession{token: "t1"}, &fakeNav{})

	acc, err := c.Account(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "starter", acc.Plan)
	assert.EqualValues(t, 4, acc.Usage.APICallsToday)

	calls := b.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "GET", calls[0].method)
	assert.Equal(t, "/v1/account", calls[0].path)
	assert.Equal(t, "Bearer t1", calls[0].auth)
	assert.Equal(t, "req-1", calls[0].reqID)
}

func TestCall_Unauthorized_ClearsSessionAndGoesHome(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "expired"})
	})
	sess := &fakeSession{token: "stale"}
	nav := &fakeNav{}
	c := newTestClient(b, sess, nav)

	_, err := c.APIKeys(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, []string{"stale"}, sess.invalidated)
	assert.Equal(t, 1, nav.homes)

	// No further call goes out with the stale token.
	_, err = c.CreateCheckout(context.Background(), "pro")
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Len(t, b.calls(), 1)
}

func TestCall_Unauthorized_FromEveryGatedEndpoint(t *testing.T) {
	calls := map[string]func(c *HTTPClient) error{
		"account":    func(c *HTTPClient) error { _, err := c.Account(context.Background()); return err },
		"keys":       func(c *HTTPClient) error { _, err := c.APIKeys(context.Background()); return err },
		"regenerate": func(c *HTTPClient) error { _, err := c.RegenerateAPIKey(context.Background()); return err },
		"checkout":   func(c *HTTPClient) error { _, err := c.CreateCheckout(context.Background(), "pro"); return err },
		"portal":     func(c *HTTPClient) error { _, err := c.BillingPortal(context.Background()); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) })
			sess := &fakeSession{token: "t"}
			nav := &fakeNav{}

			err := call(newTestClient(b, sess, nav))
			require.ErrorIs(t, err, ErrUnauthorized)
			_, ok := sess.Token()
			assert.False(t, ok)
			assert.Equal(t, 1, nav.homes)
		})
	}
}

func TestCall_UnauthorizedAfterRelogin_KeepsNewSession(t *testing.T) {
	sess := &fakeSession{token: "old"}
	nav := &fakeNav{}
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		// The user logged in again while this request was in flight.
		sess.mu.Lock()
		sess.token = "new"
		sess.mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := newTestClient(b, sess, nav)

	_, err := c.Account(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	tok, ok := sess.Token()
	assert.True(t, ok)
	assert.Equal(t, "new", tok)
	assert.Equal(t, 0, nav.homes)
}

func TestCall_OtherFailure_CarriesStatusAndMessage(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"message": "slow down"})
	})
	sess := &fakeSession{token: "t"}
	c := newTestClient(b, sess, &fakeNav{})

	_, err := c.Account(context.Background())
	require.ErrorIs(t, err, ErrRequestFailed)

	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusTooManyRequests, re.Status)
	assert.Equal(t, "slow down", re.Message)
	assert.Equal(t, "t", sess.token)
}

func TestCall_FailureWithoutMessage(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	c := newTestClient(b, &fakeSession{token: "t"}, &fakeNav{})

	_, err := c.BillingPortal(context.Background())
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "", re.Message)
	assert.Equal(t, "API error 502", err.Error())
	assert.Equal(t, FallbackMessage, Display(err))
}

func TestCall_Unavailable(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	url := b.srv.URL
	b.srv.Close()

	c := NewHTTPClient(url, &fakeSession{token: "t"}, &fakeNav{})
	_, err := c.Account(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestLogin_RejectedCredentials_DoesNotTouchSession(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
	})
	sess := &fakeSession{}
	nav := &fakeNav{}
	c := newTestClient(b, sess, nav)

	_, err := c.Login(context.Background(), models.Credentials{Email: "a@b.c", Password: "123456789"})
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, "invalid credentials", Display(err))
	assert.Empty(t, sess.invalidated)
	assert.Equal(t, 0, nav.homes)

	calls := b.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/v1/auth/login", calls[0].path)
	assert.Equal(t, "", calls[0].auth)
	assert.JSONEq(t, `{"email":"a@b.c","password":"123456789"}`, calls[0].body)
}

func TestRegister_ReturnsTokenAndKey(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"token": "t1", "apiKey": "ek_abc123...xyz9"})
	})
	c := newTestClient(b, &fakeSession{}, &fakeNav{})

	res, err := c.Register(context.Background(), models.Credentials{Email: "a@b.c", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, &models.AuthResult{Token: "t1", APIKey: "ek_abc123...xyz9"}, res)
	assert.Equal(t, "/v1/auth/register", b.calls()[0].path)
}

func TestAPIKeys_NormalisesShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []models.APIKeyRecord
	}{
		{"wrapped", `{"keys":[{"id":"1","key":"eng_a","created_at":"2026-01-01T00:00:00Z"}]}`,
			[]models.APIKeyRecord{{ID: "1", Key: "eng_a", CreatedAt: "2026-01-01T00:00:00Z"}}},
		{"bare array", `[{"id":"1","key":"eng_a"},{"id":"2","key":"eng_b","last_used":"2026-02-01T00:00:00Z"}]`,
			[]models.APIKeyRecord{{ID: "1", Key: "eng_a"}, {ID: "2", Key: "eng_b", LastUsedAt: "2026-02-01T00:00:00Z"}}},
		{"wrapped null", `{"keys":null}`, []models.APIKeyRecord{}},
		{"empty array", `[]`, []models.APIKeyRecord{}},
		{"single record", `{"id":"9","key":"eng_new"}`, []models.APIKeyRecord{{ID: "9", Key: "eng_new"}}},
		{"empty object", `{}`, []models.APIKeyRecord{}},
		{"empty body", ``, []models.APIKeyRecord{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(200)
				_, _ = w.Write([]byte(tt.body))
			})
			c := newTestClient(b, &fakeSession{token: "t"}, &fakeNav{})

			got, err := c.APIKeys(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAPIKeys_Malformed(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"nope"`))
	})
	c := newTestClient(b, &fakeSession{token: "t"}, &fakeNav{})

	_, err := c.APIKeys(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRequestFailed))
}

func TestRegenerateAPIKey_Posts(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"id": "2", "key": "eng_next"})
	})
	c := newTestClient(b, &fakeSession{token: "t"}, &fakeNav{})

	got, err := c.RegenerateAPIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.APIKeyRecord{{ID: "2", Key: "eng_next"}}, got)
	assert.Equal(t, "POST", b.calls()[0].method)
	assert.Equal(t, "/v1/account/api-keys", b.calls()[0].path)
}

func TestCreateCheckout_SendsPlanAndReturnsURL(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"url": "https://pay/xyz"})
	})
	c := newTestClient(b, &fakeSession{token: "t"}, &fakeNav{})

	url, err := c.CreateCheckout(context.Background(), "pro")
	require.NoError(t, err)
	assert.Equal(t, "https://pay/xyz", url)
	assert.JSONEq(t, `{"plan":"pro"}`, b.calls()[0].body)
}

func TestCreateCheckout_NoURL(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{})
	})
	c := newTestClient(b, &fakeSession{token: "t"}, &fakeNav{})

	url, err := c.CreateCheckout(context.Background(), "pro")
	require.NoError(t, err)
	assert.Equal(t, "", url)
}

func TestBillingPortal(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"url": "https://portal/abc"})
	})
	c := newTestClient(b, &fakeSession{token: "t"}, &fakeNav{})

	url, err := c.BillingPortal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://portal/abc", url)
	assert.Equal(t, "GET", b.calls()[0].method)
	assert.Equal(t, "/v1/billing/portal", b.calls()[0].path)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "boom", Display(&RequestError{Status: 500, Message: "boom"}))
	assert.Equal(t, FallbackMessage, Display(&RequestError{Status: 500}))
	assert.Equal(t, "server unavailable", Display(ErrUnavailable))
}
