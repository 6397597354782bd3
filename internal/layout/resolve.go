package layout

import "math"

// MaxNearbyCodes is the capacity of the ranked alternates list.
const MaxNearbyCodes = 12

// Hit is the outcome of resolving a point against a layout.
type Hit struct {
	// Index of the chosen key, or NotAKey.
	Index int
	// Nearby holds the codes of printable keys near the point, closest first,
	// padded with NotAKey. Nil unless requested.
	Nearby []int
}

// Found reports whether a key was chosen.
func (h Hit) Found() bool {
	return h.Index != NotAKey
}

// Resolve picks the key for a touch at (x, y). A key containing the point always
// wins; otherwise the closest printable key within the proximity threshold is
// chosen. With wantNearby, codes of every printable candidate are ranked by
// distance into a fixed-size list for the text layer.
func (l *Layout) Resolve(x, y int, wantNearby bool) Hit {
	var (
		nearby    [MaxNearbyCodes]int
		distances [MaxNearbyCodes]int
	)
	if wantNearby {
		for i := range nearby {
			nearby[i] = NotAKey
			distances[i] = math.MaxInt
		}
	}

	primary := NotAKey
	closest := NotAKey
	closestDist := l.threshold + 1

	for _, idx := range l.index.NearestKeys(x, y) {
		key := l.keys[idx]
		if key.IsInside(x, y) {
			primary = idx
		}
		if !key.IsPrintable() {
			continue
		}

		dist := key.SquaredDistanceFrom(x, y)
		if dist < closestDist {
			closestDist = dist
			closest = idx
		}

		if wantNearby {
			insertRanked(nearby[:], distances[:], key.Codes, dist)
		}
	}

	if primary == NotAKey {
		primary = closest
	}

	hit := Hit{Index: primary}
	if wantNearby {
		hit.Nearby = nearby[:]
	}
	return hit
}

// insertRanked inserts codes at the first slot whose distance exceeds dist,
// shifting later entries right and dropping whatever falls off the end.
func insertRanked(codes, distances []int, keyCodes []int, dist int) {
	n := len(keyCodes)
	for j := range distances {
		if distances[j] <= dist {
			continue
		}
		if j+n < len(distances) {
			copy(distances[j+n:], distances[j:len(distances)-n])
			copy(codes[j+n:], codes[j:len(codes)-n])
		}
		for c := 0; c < n && j+c < len(codes); c++ {
			codes[j+c] = keyCodes[c]
			distances[j+c] = dist
		}
		return
	}
}
