// Package navigator moves the user between places: external pages such as a
// checkout are opened in the system browser, and Home returns the terminal
// dashboard to its logged-out root view.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/beaux-riel/openengram-site/internal/logging"
	"github.com/pkg/browser"
)

var ErrInvalidURL = errors.New("invalid redirect url")

// openURL is a seam for tests.
var openURL = browser.OpenURL

// Navigator is the full navigation contract.
type Navigator interface {
	Open(ctx context.Context, rawURL string) error
	Home(ctx context.Context)
}

// Browser implements Navigator for the terminal client.
type Browser struct {
	out    io.Writer
	logger logging.Logger

	mu     sync.Mutex
	onHome []func(ctx context.Context)
}

func NewBrowser(out io.Writer, logger logging.Logger) *Browser {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &Browser{out: out, logger: logger}
}

// OnHome registers fn to run every time Home is called.
func (b *Browser) OnHome(fn func(ctx context.Context)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onHome = append(b.onHome, fn)
}

// Open validates rawURL and opens it in the system browser. The URL is also
// printed so it can be followed by hand when no browser is available.
func (b *Browser) Open(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	fmt.Fprintf(b.out, "Opening %s\n", u.String())
	if err := openURL(u.String()); err != nil {
		b.logger.Warn(ctx, "could not launch browser", "error", err)
	}
	return nil
}

// Home runs the registered root handlers.
func (b *Browser) Home(ctx context.Context) {
	b.mu.Lock()
	handlers := append([]func(context.Context){}, b.onHome...)
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(ctx)
	}
}
