package gesture

// pointerTracker collapses concurrent pointers into one tracked gesture. A new
// pointer landing while another is down ends the old gesture at its last
// position and starts a new one.
type pointerTracker struct {
	tracking bool
	tracked  int
	last     Point
	down     map[int]struct{}
}

func newPointerTracker() *pointerTracker {
	return &pointerTracker{down: make(map[int]struct{})}
}

// collapse maps a raw event onto the events the session should see. ok is
// false when the event refers to no pointer the tracker knows about.
func (p *pointerTracker) collapse(ev PointerEvent) (events []PointerEvent, ok bool) {
	switch ev.Phase {
	case PhaseDown:
		if p.tracking && p.tracked != ev.Pointer {
			events = append(events, PointerEvent{
				Phase:   PhaseUp,
				X:       p.last.X,
				Y:       p.last.Y,
				Pointer: p.tracked,
				At:      ev.At,
			})
		}
		p.down[ev.Pointer] = struct{}{}
		p.tracking = true
		p.tracked = ev.Pointer
		p.last = Point{X: ev.X, Y: ev.Y}
		return append(events, ev), true

	case PhaseMove:
		if !p.tracking || ev.Pointer != p.tracked {
			_, known := p.down[ev.Pointer]
			return nil, known
		}
		p.last = Point{X: ev.X, Y: ev.Y}
		return []PointerEvent{ev}, true

	case PhaseUp:
		_, known := p.down[ev.Pointer]
		delete(p.down, ev.Pointer)
		if !p.tracking || ev.Pointer != p.tracked {
			return nil, known
		}
		p.tracking = false
		return []PointerEvent{ev}, true

	case PhaseCancel:
		clear(p.down)
		p.tracking = false
		return []PointerEvent{ev}, true
	}

	return nil, false
}

func (p *pointerTracker) reset() {
	clear(p.down)
	p.tracking = false
}
