package navigator

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/beaux-riel/openengram-site/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubOpen(t *testing.T, err error) *[]string {
	t.Helper()
	var opened []string
	orig := openURL
	openURL = func(u string) error {
		opened = append(opened, u)
		return err
	}
	t.Cleanup(func() { openURL = orig })
	return &opened
}

func TestBrowser_OpenValidURL(t *testing.T) {
	opened := stubOpen(t, nil)
	var out bytes.Buffer
	b := NewBrowser(&out, logging.Nop())

	require.NoError(t, b.Open(context.Background(), "https://pay/xyz"))
	assert.Equal(t, []string{"https://pay/xyz"}, *opened)
	assert.Contains(t, out.String(), "https://pay/xyz")
}

func TestBrowser_OpenLauncherFailureIsNotFatal(t *testing.T) {
	stubOpen(t, errors.New("no display"))
	b := NewBrowser(&bytes.Buffer{}, logging.Nop())

	require.NoError(t, b.Open(context.Background(), "https://portal.example/session"))
}

func TestBrowser_OpenRejectsBadURLs(t *testing.T) {
	opened := stubOpen(t, nil)
	b := NewBrowser(&bytes.Buffer{}, logging.Nop())

	for _, u := range []string{"", "javascript:alert(1)", "file:///etc/passwd", "https://", "::"} {
		require.ErrorIs(t, b.Open(context.Background(), u), ErrInvalidURL, u)
	}
	assert.Empty(t, *opened)
}

func TestBrowser_HomeRunsHandlers(t *testing.T) {
	b := NewBrowser(&bytes.Buffer{}, logging.Nop())
	var calls int
	b.OnHome(func(context.Context) { calls++ })
	b.OnHome(func(context.Context) { calls += 10 })

	b.Home(context.Background())
	b.Home(context.Background())

	assert.Equal(t, 22, calls)
}
