package layout

import "fmt"

// Key codes for action keys. Character keys use their Unicode code point.
const (
	CodeShift      = -1
	CodeModeChange = -2
	CodeEnter      = -4
	CodeDelete     = -5
	CodeEmoji      = -6
	CodeSpace      = 32
)

// NotAKey is the key index reported when no key is at a point.
const NotAKey = -1

// Key is a single key region of a Layout.
type Key struct {
	X      int
	Y      int
	Width  int
	Height int
	Gap    int

	// Codes are the candidate codes for the key, primary first. Keys with more
	// than one code cycle through them on repeated taps.
	Codes []int

	Label      string
	Text       string // committed verbatim instead of a code when set
	Icon       string
	SmallLabel string
	Repeatable bool

	// Popup holds the alternate characters shown on long press.
	Popup string

	// Transient visual state, mutated during interaction.
	Pressed bool
	Focused bool
}

// PrimaryCode returns the first code of the key, or 0 when it has none.
func (k *Key) PrimaryCode() int {
	if len(k.Codes) == 0 {
		return 0
	}
	return k.Codes[0]
}

// IsInside reports whether the point lies within the key bounds.
func (k *Key) IsInside(x, y int) bool {
	return x >= k.X && x < k.X+k.Width && y >= k.Y && y < k.Y+k.Height
}

// SquaredDistanceFrom returns the squared distance from the point to the key center.
func (k *Key) SquaredDistanceFrom(x, y int) int {
	dx := k.X + k.Width/2 - x
	dy := k.Y + k.Height/2 - y
	return dx*dx + dy*dy
}

// IsPrintable reports whether the primary code is a character rather than an action.
func (k *Key) IsPrintable() bool {
	return k.PrimaryCode() > CodeSpace
}

// HasPopup reports whether a long press opens a secondary panel.
func (k *Key) HasPopup() bool {
	return k.Popup != ""
}

// IsMultiTap reports whether repeated taps cycle through several codes.
func (k *Key) IsMultiTap() bool {
	return len(k.Codes) > 1
}

// Press marks the key pressed.
func (k *Key) Press() { k.Pressed = true }

// Release clears the pressed state.
func (k *Key) Release() { k.Pressed = false }

func (k *Key) String() string {
	name := k.Label
	if name == "" {
		name = fmt.Sprintf("code=%d", k.PrimaryCode())
	}
	return fmt.Sprintf("%s@(%d,%d %dx%d)", name, k.X, k.Y, k.Width, k.Height)
}
