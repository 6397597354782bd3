package action

import (
	"fmt"
)

// KeyWriter writes parsed keys and literal text to the TUI.
type KeyWriter interface {
	WriteKey(key KeyPress) error
	WriteString(s string) error
}

// Executor runs actions against a KeyWriter.
type Executor struct {
	writer KeyWriter
}

// NewExecutor creates a new action executor
func NewExecutor(writer KeyWriter) *Executor {
	return &Executor{writer: writer}
}

// Run writes an action: its literal text, then its keys.
func (e *Executor) Run(a Action) error {
	if a.Text != "" {
		if err := e.writer.WriteString(a.Text); err != nil {
			return fmt.Errorf("failed to write text %q: %w", a.Text, err)
		}
	}
	return e.Execute(a.Keys)
}

// Execute executes a sequence of key strings
func (e *Executor) Execute(keys []string) error {
	for _, keyStr := range keys {
		key, err := ParseKey(keyStr)
		if err != nil {
			return fmt.Errorf("invalid key %q: %w", keyStr, err)
		}
		if err := e.writer.WriteKey(key); err != nil {
			return fmt.Errorf("failed to write key %q: %w", keyStr, err)
		}
	}
	return nil
}
