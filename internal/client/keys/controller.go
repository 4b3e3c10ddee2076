// Package keys drives the API-key view: per-key reveal toggles, clipboard
// copy with a transient confirmation, and a two-step regenerate.
package keys

import (
	"context"
	"errors"
	"sync"

	"github.com/beaux-riel/openengram-site/internal/client/models"
	"github.com/beaux-riel/openengram-site/internal/client/transient"
	"github.com/beaux-riel/openengram-site/internal/logging"
)

var (
	ErrUnknownKey = errors.New("unknown api key")
	// ErrBusy is returned while a regenerate call is in flight.
	ErrBusy = errors.New("regeneration already in progress")
)

// RegenState is the regenerate control's state. Idle is always the safe
// default: only an Armed control followed by a confirming action regenerates.
type RegenState int

const (
	RegenIdle RegenState = iota
	RegenArmed
	RegenInFlight
)

func (s RegenState) String() string {
	switch s {
	case RegenArmed:
		return "armed"
	case RegenInFlight:
		return "in-flight"
	default:
		return "idle"
	}
}

type Gateway interface {
	APIKeys(ctx context.Context) ([]models.APIKeyRecord, error)
	RegenerateAPIKey(ctx context.Context) ([]models.APIKeyRecord, error)
}

type Clipboard interface {
	WriteAll(text string) error
}

// View is one rendered row.
type View struct {
	Record   models.APIKeyRecord
	Display  string
	Revealed bool
	Copied   bool
}

type Controller struct {
	gw     Gateway
	clip   Clipboard
	copied *transient.Flash
	logger logging.Logger

	mu       sync.Mutex
	keys     []models.APIKeyRecord
	revealed map[string]bool
	regen    RegenState
}

// NewController wires a controller. copied holds the id of the key whose
// "copied" indicator is showing.
func NewController(gw Gateway, clip Clipboard, copied *transient.Flash, logger logging.Logger) *Controller {
	return &Controller{
		gw:       gw,
		clip:     clip,
		copied:   copied,
		logger:   logger,
		revealed: make(map[string]bool),
	}
}

// Load re-fetches the key list. On failure the previous list stays.
func (c *Controller) Load(ctx context.Context) error {
	c.Disarm()
	return c.load(ctx)
}

func (c *Controller) load(ctx context.Context) error {
	list, err := c.gw.APIKeys(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.keys = list
	c.mu.Unlock()
	return nil
}

// Views renders the current list. Secrets are masked unless revealed.
func (c *Controller) Views() []View {
	c.mu.Lock()
	defer c.mu.Unlock()

	copiedID := c.copied.Value()
	out := make([]View, 0, len(c.keys))
	for _, k := range c.keys {
		v := View{Record: k, Revealed: c.revealed[k.ID], Copied: k.ID != "" && copiedID == k.ID}
		if v.Revealed {
			v.Display = k.Key
		} else {
			v.Display = Mask(k.Key)
		}
		out = append(out, v)
	}
	return out
}

// ToggleReveal flips the reveal flag of one key and returns the new value.
// Flags are independent per key and never reset on their own.
func (c *Controller) ToggleReveal(id string) (bool, error) {
	c.Disarm()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.find(id); !ok {
		return false, ErrUnknownKey
	}
	c.revealed[id] = !c.revealed[id]
	return c.revealed[id], nil
}

// Copy puts the raw secret on the clipboard whether or not it is revealed,
// and shows the copied indicator for that key.
func (c *Controller) Copy(id string) error {
	c.Disarm()

	c.mu.Lock()
	rec, ok := c.find(id)
	c.mu.Unlock()
	if !ok {
		return ErrUnknownKey
	}

	if err := c.clip.WriteAll(rec.Key); err != nil {
		return err
	}
	c.copied.Show(id)
	return nil
}

// Regenerate is the regenerate control. The first action arms it and
// touches nothing; the second consecutive one invalidates the current key
// and re-fetches the list. It is never retried: on failure the old list
// stays on screen and the control returns to idle.
func (c *Controller) Regenerate(ctx context.Context) (RegenState, error) {
	c.mu.Lock()
	switch c.regen {
	case RegenInFlight:
		c.mu.Unlock()
		return RegenInFlight, ErrBusy
	case RegenIdle:
		c.regen = RegenArmed
		c.mu.Unlock()
		return RegenArmed, nil
	}
	c.regen = RegenInFlight
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.regen = RegenIdle
		c.mu.Unlock()
	}()

	if _, err := c.gw.RegenerateAPIKey(ctx); err != nil {
		c.logger.Warn(ctx, "api key regeneration failed", "error", err)
		return RegenIdle, err
	}
	c.logger.Info(ctx, "api key regenerated")

	if err := c.load(ctx); err != nil {
		return RegenIdle, err
	}
	return RegenIdle, nil
}

// Disarm returns an armed control to idle. Any action other than the
// confirming one must call it.
func (c *Controller) Disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.regen == RegenArmed {
		c.regen = RegenIdle
	}
}

// Reset forgets everything tied to the current account: the list, reveal
// flags and copied indicator. An armed control returns to idle; an in-flight
// regenerate still finishes but its re-fetch lands on an empty controller.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.keys = nil
	c.revealed = make(map[string]bool)
	if c.regen == RegenArmed {
		c.regen = RegenIdle
	}
	c.mu.Unlock()

	c.copied.Clear()
}

func (c *Controller) RegenState() RegenState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regen
}

// find must be called with mu held.
func (c *Controller) find(id string) (models.APIKeyRecord, bool) {
	for _, k := range c.keys {
		if k.ID == id {
			return k, true
		}
	}
	return models.APIKeyRecord{}, false
}
