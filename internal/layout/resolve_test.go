package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoKeyLayout() *Layout {
	return New("ab", []*Key{
		charKey('a', 0, 0, 40, 40),
		charKey('b', 40, 0, 40, 40),
	})
}

func TestResolveTwoKeyScenario(t *testing.T) {
	l := twoKeyLayout()
	require.Equal(t, 56*56, l.ProximityThreshold())

	assert.Equal(t, 0, l.Resolve(39, 20, false).Index)
	assert.Equal(t, 1, l.Resolve(41, 20, false).Index)
	assert.Equal(t, NotAKey, l.Resolve(80, 20, false).Index)
	assert.False(t, l.Resolve(80, 20, false).Found())
}

func TestResolveContainmentWins(t *testing.T) {
	// A wide action key next to a narrow character key: a point inside the
	// action key resolves to it even though the character key's center is closer.
	l := New("mixed", []*Key{
		{X: 0, Y: 0, Width: 200, Height: 40, Codes: []int{CodeSpace}},
		charKey('x', 200, 0, 20, 40),
	})

	assert.Equal(t, 0, l.Resolve(195, 20, false).Index)
	assert.Equal(t, 1, l.Resolve(205, 20, false).Index)
}

func TestResolveEveryInteriorPoint(t *testing.T) {
	l := New("row", []*Key{
		charKey('q', 0, 0, 30, 40),
		charKey('w', 30, 0, 30, 40),
		charKey('e', 60, 0, 30, 40),
		{X: 0, Y: 40, Width: 90, Height: 40, Codes: []int{CodeSpace}},
	})

	for i, k := range l.Keys() {
		for x := k.X; x < k.X+k.Width; x += 3 {
			for y := k.Y; y < k.Y+k.Height; y += 3 {
				require.Equal(t, i, l.Resolve(x, y, false).Index, "point (%d,%d)", x, y)
			}
		}
	}
}

func TestResolveProximityInGap(t *testing.T) {
	// Keys separated by a gap; points in the gap go to the nearest printable key
	// within the threshold, points too far away to nothing.
	l := New("gap", []*Key{
		charKey('a', 0, 0, 40, 40),
		charKey('b', 200, 0, 40, 40),
	})
	require.Equal(t, 56*56, l.ProximityThreshold())

	assert.Equal(t, 0, l.Resolve(50, 20, false).Index, "10px right of a")
	assert.Equal(t, 1, l.Resolve(190, 20, false).Index, "10px left of b")
	assert.Equal(t, NotAKey, l.Resolve(120, 20, false).Index, "midway is beyond both thresholds")
}

func TestResolveActionKeysNotProximityTargets(t *testing.T) {
	l := New("actions", []*Key{
		{X: 0, Y: 0, Width: 40, Height: 40, Codes: []int{CodeDelete}},
		{X: 100, Y: 0, Width: 40, Height: 40, Codes: []int{CodeEnter}},
	})

	assert.Equal(t, 0, l.Resolve(10, 10, false).Index)
	assert.Equal(t, NotAKey, l.Resolve(60, 20, false).Index)
}

func TestResolveNearbyCodes(t *testing.T) {
	l := New("row", []*Key{
		charKey('a', 0, 0, 40, 40),
		charKey('s', 40, 0, 40, 40),
		{X: 80, Y: 0, Width: 40, Height: 40, Codes: []int{'d', 'e', 'f'}},
		{X: 120, Y: 0, Width: 40, Height: 40, Codes: []int{CodeDelete}},
	})

	hit := l.Resolve(45, 20, true)
	require.Equal(t, 1, hit.Index)
	require.Len(t, hit.Nearby, MaxNearbyCodes)

	// s is closest, then a, then the three codes of d.
	assert.Equal(t, []int{'s', 'a', 'd', 'e', 'f'}, hit.Nearby[:5])
	for _, c := range hit.Nearby[5:] {
		assert.Equal(t, NotAKey, c)
	}
	assert.NotContains(t, hit.Nearby, CodeDelete)

	assert.Nil(t, l.Resolve(45, 20, false).Nearby)
}

func TestResolveNearbyEvictsFarthest(t *testing.T) {
	var keys []*Key
	for i := 0; i < 8; i++ {
		codes := make([]int, 5)
		for c := range codes {
			codes[c] = 100*i + c + 1
		}
		keys = append(keys, &Key{X: i * 20, Y: 0, Width: 20, Height: 40, Codes: codes})
	}
	l := New("dense", keys)

	hit := l.Resolve(70, 20, true)
	require.Equal(t, 3, hit.Index)

	// Keys 1..5 are candidates with five codes each; closer keys push the
	// farther ones out of the twelve slots.
	want := []int{301, 302, 303, 304, 305, 201, 202, 203, 204, 205, 401, 402}
	assert.Equal(t, want, hit.Nearby)
}

func TestResolveNoReuseAcrossCalls(t *testing.T) {
	l := twoKeyLayout()

	first := l.Resolve(10, 20, true)
	second := l.Resolve(70, 20, true)

	assert.Equal(t, 'a', rune(first.Nearby[0]))
	assert.Equal(t, 'b', rune(second.Nearby[0]))
}

func TestGeometryIndex(t *testing.T) {
	l := twoKeyLayout()

	near := l.Index().NearestKeys(39, 20)
	assert.Equal(t, []int{0, 1}, near, "both keys are plausible near the boundary")

	assert.Nil(t, l.Index().NearestKeys(-1, 20))
	assert.Nil(t, l.Index().NearestKeys(80, 20))
	assert.Nil(t, l.Index().NearestKeys(10, 40))
}

func TestGeometryIndexSparse(t *testing.T) {
	keys := []*Key{
		charKey('a', 0, 0, 40, 40),
		charKey('z', 960, 460, 40, 40),
	}
	l := New("corners", keys)

	assert.Equal(t, []int{0}, l.Index().NearestKeys(5, 5))
	assert.Equal(t, []int{1}, l.Index().NearestKeys(995, 495))
	assert.Empty(t, l.Index().NearestKeys(500, 250))
}

func TestGeometryIndexEmptyLayout(t *testing.T) {
	l := New("empty", nil)
	assert.Nil(t, l.Index().NearestKeys(0, 0))
	assert.Equal(t, NotAKey, l.Resolve(0, 0, true).Index)
}
