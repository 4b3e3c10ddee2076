// Package transient implements values that clear themselves after a delay,
// such as toasts and "copied" indicators.
package transient

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer a Flash needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. It is a seam for tests.
type AfterFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Flash holds one value for a fixed duration. Showing a new value replaces
// the current one and restarts the countdown. Safe for concurrent use.
type Flash struct {
	mu        sync.Mutex
	ttl       time.Duration
	afterFunc AfterFunc
	value     string
	timer     Timer
	gen       uint64
}

// New returns a Flash whose values expire after ttl.
func New(ttl time.Duration) *Flash {
	return NewWithAfterFunc(ttl, systemAfterFunc)
}

// NewWithAfterFunc is New with an injectable scheduler.
func NewWithAfterFunc(ttl time.Duration, af AfterFunc) *Flash {
	return &Flash{ttl: ttl, afterFunc: af}
}

// Show sets v and (re)starts the expiry timer.
func (f *Flash) Show(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
	}
	f.gen++
	gen := f.gen
	f.value = v
	f.timer = f.afterFunc(f.ttl, func() { f.expire(gen) })
}

// expire clears the value unless it was replaced after the timer was armed.
func (f *Flash) expire(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		return
	}
	f.value = ""
	f.timer = nil
}

// Value returns the current value, "" once expired.
func (f *Flash) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Is reports whether v is the value currently shown.
func (f *Flash) Is(v string) bool {
	return v != "" && f.Value() == v
}

// Clear drops the value and stops any pending timer.
func (f *Flash) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.gen++
	f.value = ""
	f.timer = nil
}
