package layout

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// proximityFactor scales the average key pitch into the proximity radius.
const proximityFactor = 1.4

// ShiftState is the shift mode of a layout.
type ShiftState int

const (
	ShiftOff ShiftState = iota
	ShiftOn             // one-shot capitals
	ShiftLocked
)

func (s ShiftState) String() string {
	switch s {
	case ShiftOff:
		return "off"
	case ShiftOn:
		return "on"
	case ShiftLocked:
		return "locked"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Layout is an immutable set of keys plus the metrics derived from them.
// Only the shift state and the keys' transient flags change after New.
type Layout struct {
	Name string

	keys      []*Key
	minWidth  int
	height    int
	radius    int
	threshold int
	shift     ShiftState
	index     *GeometryIndex
}

// New builds a layout from keys and computes its proximity threshold and
// geometry index.
func New(name string, keys []*Key) *Layout {
	l := &Layout{
		Name: name,
		keys: keys,
	}

	for _, k := range keys {
		if right := k.X + k.Width; right > l.minWidth {
			l.minWidth = right
		}
		if bottom := k.Y + k.Height; bottom > l.height {
			l.height = bottom
		}
	}

	l.radius, l.threshold = proximity(keys)
	l.index = newGeometryIndex(keys, l.minWidth, l.height, l.radius)

	return l
}

// proximity returns the average key pitch scaled by proximityFactor and its square.
func proximity(keys []*Key) (radius, threshold int) {
	if len(keys) == 0 {
		return 0, 0
	}

	sum := 0
	for _, k := range keys {
		sum += min(k.Width, k.Height) + k.Gap
	}
	if sum < 0 {
		return 0, 0
	}

	radius = int(float64(sum) * proximityFactor / float64(len(keys)))
	return radius, radius * radius
}

// Keys returns the keys in layout order.
func (l *Layout) Keys() []*Key {
	return l.keys
}

// Len returns the number of keys.
func (l *Layout) Len() int {
	return len(l.keys)
}

// Key returns the key at index, or false when the index is out of range.
func (l *Layout) Key(index int) (*Key, bool) {
	if index < 0 || index >= len(l.keys) {
		return nil, false
	}
	return l.keys[index], true
}

// MinWidth returns the right edge of the right-most key.
func (l *Layout) MinWidth() int { return l.minWidth }

// Height returns the bottom edge of the lowest key.
func (l *Layout) Height() int { return l.height }

// ProximityThreshold returns the squared distance beyond which a touch is not
// attributed to any key.
func (l *Layout) ProximityThreshold() int { return l.threshold }

// Index returns the geometry index of the layout.
func (l *Layout) Index() *GeometryIndex { return l.index }

// Shift returns the current shift state.
func (l *Layout) Shift() ShiftState { return l.shift }

// IsShifted reports whether any shift mode is active.
func (l *Layout) IsShifted() bool { return l.shift > ShiftOff }

// SetShifted sets the shift state and reports whether it changed.
func (l *Layout) SetShifted(state ShiftState) bool {
	if l.shift == state {
		return false
	}
	l.shift = state
	return true
}

// AdjustCase upper-cases short lower-case labels while shifted.
func (l *Layout) AdjustCase(label string) string {
	if label == "" || !l.IsShifted() || utf8.RuneCountInString(label) >= 3 {
		return label
	}
	r, _ := utf8.DecodeRuneInString(label)
	if !unicode.IsLower(r) {
		return label
	}
	return strings.ToUpper(label)
}

// ClearFocus resets the focused flag on every key.
func (l *Layout) ClearFocus() {
	for _, k := range l.keys {
		k.Focused = false
	}
}

// Focus marks the key at index focused and every other key unfocused.
func (l *Layout) Focus(index int) {
	for i, k := range l.keys {
		k.Focused = i == index
	}
}

// Focused returns the index of the first focused key, or NotAKey.
func (l *Layout) Focused() int {
	for i, k := range l.keys {
		if k.Focused {
			return i
		}
	}
	return NotAKey
}
