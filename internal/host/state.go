package host

import (
	"sync"

	"github.com/pleimann/tapboard/internal/gesture"
	"github.com/pleimann/tapboard/internal/render"
)

// State keeps the transient overlay a surface has asked for, so a display can
// be redrawn from it at any time.
type State struct {
	mu      sync.Mutex
	preview *gesture.Preview
	panel   *gesture.Panel
	status  string
	dirty   bool
}

// NewState returns a state that needs a first draw.
func NewState() *State {
	return &State{dirty: true}
}

// Apply records the visual effect of ev and reports whether a redraw is due.
func (s *State) Apply(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case KindShowPreview:
		p := ev.Preview
		s.preview = &p
	case KindHidePreview:
		s.preview = nil
	case KindOpenPanel:
		p := ev.Panel
		s.panel = &p
	case KindPanelSelection:
		if s.panel != nil {
			s.panel.Selected = ev.Index
		}
	case KindClosePanel:
		s.panel = nil
	case KindInvalidateKey, KindInvalidateAll:
	default:
		return false
	}
	s.dirty = true
	return true
}

// SetStatus sets the status line.
func (s *State) SetStatus(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != text {
		s.status = text
		s.dirty = true
	}
}

// TakeDirty reports whether anything changed since the last call.
func (s *State) TakeDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.dirty
	s.dirty = false
	return d
}

// MarkDirty forces the next TakeDirty to report a change.
func (s *State) MarkDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// Preview returns the preview being shown, if any.
func (s *State) Preview() (gesture.Preview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview == nil {
		return gesture.Preview{}, false
	}
	return *s.preview, true
}

// Decorate adds the overlay to sc. Call it while the surface is locked, since
// the panel layout belongs to the surface.
func (s *State) Decorate(sc *render.Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.preview != nil {
		p := *s.preview
		sc.Preview = &p
	}
	if s.panel != nil {
		sc.WithPanel(*s.panel)
	}
	sc.Status = s.status
}
