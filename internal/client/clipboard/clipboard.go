// Package clipboard puts secrets on the system clipboard.
package clipboard

import (
	"errors"
	"sync"

	"github.com/atotto/clipboard"
)

var ErrUnsupported = errors.New("clipboard not available on this system")

// Writer is what the controllers need.
type Writer interface {
	WriteAll(text string) error
}

// System writes to the OS clipboard.
type System struct{}

func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// Memory keeps the last written text. It stands in for the OS clipboard on
// headless machines.
type Memory struct {
	mu   sync.Mutex
	text string
}

func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Default returns System when the platform has a clipboard and a Memory
// otherwise. ok reports which one was chosen.
func Default() (w Writer, ok bool) {
	if clipboard.Unsupported {
		return &Memory{}, false
	}
	return System{}, true
}
