package ui

import (
	"strings"

	"github.com/pleimann/tapboard/internal/action"
)

// Editor is a one-line text buffer that stands in for the TUI in the
// simulator. It implements host.Output.
type Editor struct {
	text   []rune
	cursor int
	sent   []string // keys with no editing meaning, most recent last
}

// NewEditor returns an empty editor.
func NewEditor() *Editor {
	return &Editor{}
}

// Run applies an action as a terminal line editor would.
func (e *Editor) Run(a action.Action) error {
	for _, r := range a.Text {
		e.insert(r)
	}
	for _, k := range a.Keys {
		key, err := action.ParseKey(k)
		if err != nil {
			return err
		}
		e.key(key)
	}
	return nil
}

func (e *Editor) insert(r rune) {
	e.text = append(e.text[:e.cursor], append([]rune{r}, e.text[e.cursor:]...)...)
	e.cursor++
}

func (e *Editor) key(k action.KeyPress) {
	if k.Ctrl || k.Alt || k.Meta {
		e.sent = append(e.sent, k.String())
		return
	}
	switch k.Key {
	case "backspace":
		if e.cursor > 0 {
			e.text = append(e.text[:e.cursor-1], e.text[e.cursor:]...)
			e.cursor--
		}
	case "space":
		e.insert(' ')
	case "enter", "return":
		e.insert('\n')
	case "left":
		e.cursor = max(0, e.cursor-1)
	case "right":
		e.cursor = min(len(e.text), e.cursor+1)
	case "home":
		e.cursor = 0
	case "end":
		e.cursor = len(e.text)
	default:
		e.sent = append(e.sent, k.String())
	}
}

// Text returns the buffer contents.
func (e *Editor) Text() string {
	return string(e.text)
}

// Cursor returns the cursor position in runes.
func (e *Editor) Cursor() int {
	return e.cursor
}

// Sent returns the keys that were passed through without editing.
func (e *Editor) Sent() []string {
	return e.sent
}

// Line renders the buffer with a cursor mark and visible newlines.
func (e *Editor) Line() string {
	var b strings.Builder
	for i, r := range e.text {
		if i == e.cursor {
			b.WriteRune('▏')
		}
		if r == '\n' {
			b.WriteRune('⏎')
			continue
		}
		b.WriteRune(r)
	}
	if e.cursor == len(e.text) {
		b.WriteRune('▏')
	}
	return b.String()
}
