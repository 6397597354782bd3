package gesture

import (
	"time"

	"github.com/pleimann/tapboard/internal/layout"
)

// tapUndetermined marks a multi-tap sequence whose first commit has not happened.
const tapUndetermined = -1

// MultiTap tracks repeated taps on a key with several codes so that each tap
// within the interval replaces the previous character with the next code.
type MultiTap struct {
	interval time.Duration

	lastSent int
	lastTap  time.Duration
	hasTap   bool
	count    int
	active   bool
}

// NewMultiTap creates a tracker with the given tap interval.
func NewMultiTap(interval time.Duration) *MultiTap {
	m := &MultiTap{interval: interval}
	m.Reset()
	return m
}

// Reset returns the tracker to idle.
func (m *MultiTap) Reset() {
	m.lastSent = layout.NotAKey
	m.lastTap = 0
	m.hasTap = false
	m.count = 0
	m.active = false
}

// SetInterval changes the tap interval.
func (m *MultiTap) SetInterval(d time.Duration) {
	m.interval = d
}

// Active reports whether the current key is being multi-tapped.
func (m *MultiTap) Active() bool { return m.active }

// Count returns the tap count, or -1 before the first commit of a sequence.
func (m *MultiTap) Count() int { return m.count }

// LastSent returns the index of the last committed key.
func (m *MultiTap) LastSent() int { return m.lastSent }

func (m *MultiTap) withinInterval(keyIndex int, at time.Duration) bool {
	return m.hasTap && keyIndex == m.lastSent && at < m.lastTap+m.interval
}

// Land records a touch landing on keyIndex, which has codeCount codes.
func (m *MultiTap) Land(keyIndex, codeCount int, at time.Duration) {
	if keyIndex == layout.NotAKey {
		return
	}

	if codeCount > 1 {
		m.active = true
		if m.withinInterval(keyIndex, at) {
			m.count = (m.count + 1) % codeCount
		} else {
			m.count = tapUndetermined
		}
		return
	}

	if !m.withinInterval(keyIndex, at) {
		m.Reset()
	}
}

// Commit picks the code to send for keyIndex and records the commit. replace
// is true when the previous character must be deleted first.
func (m *MultiTap) Commit(keyIndex int, codes []int, at time.Duration) (code int, replace bool) {
	if len(codes) > 0 {
		code = codes[0]
	}
	if m.active && len(codes) > 0 {
		if m.count != tapUndetermined {
			replace = true
		} else {
			m.count = 0
		}
		code = codes[m.count%len(codes)]
	}

	m.lastSent = keyIndex
	m.lastTap = at
	m.hasTap = true
	return code, replace
}

// Record notes a commit of keyIndex that did not go through Commit.
func (m *MultiTap) Record(keyIndex int, at time.Duration) {
	m.lastSent = keyIndex
	m.lastTap = at
	m.hasTap = true
}

// PreviewCode returns the code the next commit of codes would send.
func (m *MultiTap) PreviewCode(codes []int) int {
	if len(codes) == 0 {
		return 0
	}
	if !m.active || m.count < 0 {
		return codes[0]
	}
	return codes[m.count%len(codes)]
}
