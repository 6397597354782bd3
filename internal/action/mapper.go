package action

import (
	"sync"
	"unicode"

	"github.com/pleimann/tapboard/internal/config"
	"github.com/pleimann/tapboard/internal/layout"
)

// Action is what a committed key produces on the terminal.
type Action struct {
	Text string   // literal text, written first
	Keys []string // key names understood by ParseKey
}

// Empty reports whether the action writes nothing.
func (a Action) Empty() bool {
	return a.Text == "" && len(a.Keys) == 0
}

// Mapper maps committed key codes to terminal actions based on configuration
type Mapper struct {
	mu      sync.RWMutex
	actions map[int][]string // code -> keys
}

// builtin holds the keys sent for the standard action codes.
var builtin = map[int][]string{
	layout.CodeEnter:  {"enter"},
	layout.CodeDelete: {"backspace"},
	layout.CodeSpace:  {"space"},
}

// NewMapper creates a new action mapper from configuration
func NewMapper(cfg *config.Config) *Mapper {
	m := &Mapper{}
	m.Reload(cfg)
	return m
}

// Map returns the action for a committed code. Configured actions win over
// the built-in ones; printable codes type themselves, upper-cased when
// shifted. It reports false for codes the terminal has no use for, such as
// shift and mode change.
func (m *Mapper) Map(code int, shifted bool) (Action, bool) {
	m.mu.RLock()
	keys, ok := m.actions[code]
	m.mu.RUnlock()
	if ok {
		return Action{Keys: keys}, true
	}

	if keys, ok := builtin[code]; ok {
		return Action{Keys: keys}, true
	}

	if code > layout.CodeSpace && unicode.IsPrint(rune(code)) {
		r := rune(code)
		if shifted {
			r = unicode.ToUpper(r)
		}
		return Action{Text: string(r)}, true
	}

	return Action{}, false
}

// Text returns the action for a text key.
func (m *Mapper) Text(text string) Action {
	return Action{Text: text}
}

// Cursor returns the action for one cursor step.
func (m *Mapper) Cursor(right bool) Action {
	if right {
		return Action{Keys: []string{"right"}}
	}
	return Action{Keys: []string{"left"}}
}

// Reload updates the mapper with new configuration
func (m *Mapper) Reload(cfg *config.Config) {
	actions := make(map[int][]string, len(cfg.Actions))
	for _, a := range cfg.Actions {
		actions[a.Code] = a.Keys
	}

	m.mu.Lock()
	m.actions = actions
	m.mu.Unlock()
}
