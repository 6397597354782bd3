package gesture

// DefaultCursorMoveThreshold is the horizontal travel, in pixels, per cursor step
// while the space bar is held.
const DefaultCursorMoveThreshold = 20

// cursorMode turns horizontal drags on a held space bar into cursor steps.
type cursorMode struct {
	threshold int
	active    bool
	anchor    int
}

func (c *cursorMode) activate(x int) {
	c.active = true
	c.anchor = x
}

func (c *cursorMode) reset() {
	c.active = false
	c.anchor = 0
}

// move returns the signed number of steps for a drag to x. Negative steps move
// left. The anchor advances only when at least one step is taken.
func (c *cursorMode) move(x int) int {
	if !c.active || c.threshold <= 0 {
		return 0
	}
	diff := x - c.anchor
	if diff <= c.threshold && diff >= -c.threshold {
		return 0
	}
	c.anchor = x
	return diff / c.threshold
}
