package pty

import (
	"sync"
	"time"

	"github.com/pleimann/tapboard/internal/action"
)

// Writer paces writes to a Manager so that consecutive writes are at least
// keyDelay apart. It implements action.KeyWriter.
type Writer struct {
	manager  *Manager
	keyDelay time.Duration

	mu    sync.Mutex
	last  time.Time
	now   func() time.Time
	sleep func(time.Duration)
}

// NewWriter creates a writer. A zero keyDelay writes immediately.
func NewWriter(manager *Manager, keyDelay time.Duration) *Writer {
	return &Writer{
		manager:  manager,
		keyDelay: keyDelay,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// WriteKey writes a single key press to the PTY
func (w *Writer) WriteKey(key action.KeyPress) error {
	return w.paced(func() error { return w.manager.WriteKey(key) })
}

// WriteString writes literal text to the PTY
func (w *Writer) WriteString(s string) error {
	return w.paced(func() error { return w.manager.WriteString(s) })
}

func (w *Writer) paced(write func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.keyDelay > 0 && !w.last.IsZero() {
		if wait := w.keyDelay - w.now().Sub(w.last); wait > 0 {
			w.sleep(wait)
		}
	}
	err := write()
	w.last = w.now()
	return err
}
