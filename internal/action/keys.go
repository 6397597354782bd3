package action

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrNoKey           = errors.New("no key specified")
	ErrUnknownKey      = errors.New("invalid key")
	ErrUnknownModifier = errors.New("unknown modifier")
)

// KeyPress is a named key or a single character with modifiers.
type KeyPress struct {
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool
	Key   string // "c", "é", "enter", "f1"
}

const esc = 0x1b

// sequences holds the bytes a VT-style terminal expects for each named key.
var sequences = map[string][]byte{
	"enter":     {'\r'},
	"return":    {'\r'},
	"tab":       {'\t'},
	"esc":       {esc},
	"escape":    {esc},
	"space":     {' '},
	"backspace": {0x7f},
	"delete":    {esc, '[', '3', '~'},
	"del":       {esc, '[', '3', '~'},
	"insert":    {esc, '[', '2', '~'},
	"ins":       {esc, '[', '2', '~'},
	"home":      {esc, '[', 'H'},
	"end":       {esc, '[', 'F'},
	"pageup":    {esc, '[', '5', '~'},
	"pgup":      {esc, '[', '5', '~'},
	"pagedown":  {esc, '[', '6', '~'},
	"pgdn":      {esc, '[', '6', '~'},
	"up":        {esc, '[', 'A'},
	"down":      {esc, '[', 'B'},
	"right":     {esc, '[', 'C'},
	"left":      {esc, '[', 'D'},
	"f1":        {esc, 'O', 'P'},
	"f2":        {esc, 'O', 'Q'},
	"f3":        {esc, 'O', 'R'},
	"f4":        {esc, 'O', 'S'},
	"f5":        {esc, '[', '1', '5', '~'},
	"f6":        {esc, '[', '1', '7', '~'},
	"f7":        {esc, '[', '1', '8', '~'},
	"f8":        {esc, '[', '1', '9', '~'},
	"f9":        {esc, '[', '2', '0', '~'},
	"f10":       {esc, '[', '2', '1', '~'},
	"f11":       {esc, '[', '2', '3', '~'},
	"f12":       {esc, '[', '2', '4', '~'},
}

// ctrlPunct are the control codes of ctrl with a punctuation key.
var ctrlPunct = map[byte]byte{
	'[':  esc,
	'\\': 0x1c,
	']':  0x1d,
	'^':  0x1e,
	'_':  0x1f,
	'?':  0x7f,
}

var modifiers = map[string]func(*KeyPress){
	"ctrl":    func(kp *KeyPress) { kp.Ctrl = true },
	"control": func(kp *KeyPress) { kp.Ctrl = true },
	"alt":     func(kp *KeyPress) { kp.Alt = true },
	"option":  func(kp *KeyPress) { kp.Alt = true },
	"shift":   func(kp *KeyPress) { kp.Shift = true },
	"meta":    func(kp *KeyPress) { kp.Meta = true },
	"cmd":     func(kp *KeyPress) { kp.Meta = true },
	"command": func(kp *KeyPress) { kp.Meta = true },
	"win":     func(kp *KeyPress) { kp.Meta = true },
	"super":   func(kp *KeyPress) { kp.Meta = true },
}

// String formats the key the way ParseKey reads it.
func (kp KeyPress) String() string {
	var parts []string
	if kp.Ctrl {
		parts = append(parts, "ctrl")
	}
	if kp.Alt {
		parts = append(parts, "alt")
	}
	if kp.Shift {
		parts = append(parts, "shift")
	}
	if kp.Meta {
		parts = append(parts, "meta")
	}
	return strings.Join(append(parts, kp.Key), "+")
}

// ParseKey parses a key string like "ctrl+shift+c". Names are case
// insensitive; the last part is the key and the rest are modifiers.
func ParseKey(s string) (KeyPress, error) {
	var kp KeyPress

	parts := strings.Split(strings.ToLower(s), "+")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i == len(parts)-1 {
			kp.Key = part
			break
		}
		set, ok := modifiers[part]
		if !ok {
			return KeyPress{}, fmt.Errorf("%w: %s", ErrUnknownModifier, part)
		}
		set(&kp)
	}

	if kp.Key == "" {
		return KeyPress{}, ErrNoKey
	}
	if !isValidKey(kp.Key) {
		return KeyPress{}, fmt.Errorf("%w: %s", ErrUnknownKey, kp.Key)
	}
	return kp, nil
}

// isValidKey reports whether key is a named key or a single character.
func isValidKey(key string) bool {
	if utf8.RuneCountInString(key) == 1 {
		return true
	}
	_, ok := sequences[key]
	return ok
}

// ToBytes converts a KeyPress to the bytes to write to a PTY. It returns nil
// for keys a terminal cannot express.
func (kp KeyPress) ToBytes() []byte {
	r, size := utf8.DecodeRuneInString(kp.Key)
	single := size > 0 && size == len(kp.Key)

	if kp.Ctrl && !kp.Alt && !kp.Meta && single && r < utf8.RuneSelf {
		c := byte(unicode.ToLower(r))
		if c >= 'a' && c <= 'z' {
			return []byte{c - 'a' + 1}
		}
		if b, ok := ctrlPunct[c]; ok {
			return []byte{b}
		}
	}

	if seq, ok := sequences[kp.Key]; ok {
		return append([]byte(nil), seq...)
	}

	if !single || r == utf8.RuneError {
		return nil
	}
	if kp.Shift {
		r = unicode.ToUpper(r)
	}
	out := utf8.AppendRune(nil, r)
	if kp.Alt {
		return append([]byte{esc}, out...)
	}
	return out
}
