package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func charKey(r rune, x, y, w, h int) *Key {
	return &Key{X: x, Y: y, Width: w, Height: h, Codes: []int{int(r)}, Label: string(r)}
}

func TestNewMetrics(t *testing.T) {
	l := New("ab", []*Key{
		charKey('a', 0, 0, 40, 40),
		charKey('b', 40, 0, 40, 40),
		charKey('c', 0, 40, 60, 50),
	})

	assert.Equal(t, 80, l.MinWidth())
	assert.Equal(t, 90, l.Height())
	assert.Equal(t, 3, l.Len())
}

func TestProximityThreshold(t *testing.T) {
	tests := []struct {
		name string
		keys []*Key
		want int
	}{
		{
			name: "two square keys",
			keys: []*Key{charKey('a', 0, 0, 40, 40), charKey('b', 40, 0, 40, 40)},
			want: 56 * 56,
		},
		{
			name: "min of width and height plus gap",
			keys: []*Key{
				{X: 0, Width: 30, Height: 50, Gap: 10, Codes: []int{'a'}},
				{X: 40, Width: 30, Height: 50, Gap: 10, Codes: []int{'b'}},
			},
			want: 56 * 56,
		},
		{
			name: "no keys",
			keys: nil,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New("t", tt.keys).ProximityThreshold())
		})
	}
}

func TestKeyOutOfRange(t *testing.T) {
	l := New("a", []*Key{charKey('a', 0, 0, 40, 40)})

	_, ok := l.Key(-1)
	assert.False(t, ok)
	_, ok = l.Key(1)
	assert.False(t, ok)

	k, ok := l.Key(0)
	require.True(t, ok)
	assert.Equal(t, 'a', rune(k.PrimaryCode()))
}

func TestSetShifted(t *testing.T) {
	l := New("a", []*Key{charKey('a', 0, 0, 40, 40)})

	assert.False(t, l.IsShifted())
	assert.True(t, l.SetShifted(ShiftOn))
	assert.False(t, l.SetShifted(ShiftOn), "setting the same state reports no change")
	assert.True(t, l.IsShifted())
	assert.True(t, l.SetShifted(ShiftLocked))
	assert.Equal(t, "locked", l.Shift().String())
}

func TestAdjustCase(t *testing.T) {
	l := New("a", []*Key{charKey('a', 0, 0, 40, 40)})

	assert.Equal(t, "q", l.AdjustCase("q"))

	l.SetShifted(ShiftOn)
	tests := []struct {
		in   string
		want string
	}{
		{"q", "Q"},
		{"ab", "AB"},
		{"abc", "abc"},
		{"Q", "Q"},
		{"1", "1"},
		{"", ""},
		{"é", "É"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.AdjustCase(tt.in), "AdjustCase(%q)", tt.in)
	}
}

func TestFocus(t *testing.T) {
	l := New("abc", []*Key{
		charKey('a', 0, 0, 40, 40),
		charKey('b', 40, 0, 40, 40),
		charKey('c', 80, 0, 40, 40),
	})

	assert.Equal(t, NotAKey, l.Focused())
	l.Focus(1)
	assert.Equal(t, 1, l.Focused())
	assert.False(t, l.Keys()[0].Focused)
	l.Focus(2)
	assert.Equal(t, 2, l.Focused())
	l.ClearFocus()
	assert.Equal(t, NotAKey, l.Focused())
}

func TestKeyPredicates(t *testing.T) {
	space := &Key{Width: 100, Height: 40, Codes: []int{CodeSpace}}
	del := &Key{Width: 40, Height: 40, Codes: []int{CodeDelete}}
	multi := &Key{Width: 40, Height: 40, Codes: []int{'a', 'b', 'c'}, Popup: "áà"}

	assert.False(t, space.IsPrintable())
	assert.False(t, del.IsPrintable())
	assert.True(t, multi.IsPrintable())
	assert.True(t, multi.IsMultiTap())
	assert.True(t, multi.HasPopup())
	assert.False(t, space.HasPopup())
	assert.Equal(t, 0, (&Key{}).PrimaryCode())

	assert.True(t, del.IsInside(0, 0))
	assert.True(t, del.IsInside(39, 39))
	assert.False(t, del.IsInside(40, 0))
	assert.Equal(t, 400, del.SquaredDistanceFrom(0, 20))
}
