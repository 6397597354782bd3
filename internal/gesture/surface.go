package gesture

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pleimann/tapboard/internal/layout"
)

// DefaultPopupMaxMoveDistance is how far, in pixels, a pointer may leave an
// open panel horizontally before the panel is dismissed.
const DefaultPopupMaxMoveDistance = 120

// InputSurface is a keyboard area that turns pointer events into key events.
// The main keyboard and its secondary panels both implement it.
type InputSurface interface {
	HandlePointer(ev PointerEvent)
	SetLayout(l *layout.Layout)
	Layout() *layout.Layout
	// SetOrigin sets the screen position of the surface's top-left corner.
	SetOrigin(p Point)
	// Select focuses the key at index and reports whether focus changed.
	Select(index int) bool
	// CommitSelected commits the focused key and reports whether one was focused.
	CommitSelected(at time.Duration) bool
	Close()
}

// Surface runs the pointer session state machine over a layout.
type Surface struct {
	mu sync.Mutex

	listener  Listener
	presenter Presenter
	clock     Clock
	logger    *zap.Logger
	timing    Timing

	verticalCorrection int
	popupMaxMove       int
	maxPerRow          int
	previewHeight      int
	origin             Point

	sched    *scheduler
	multiTap *MultiTap
	pointers *pointerTracker
	cursor   cursorMode
	layout   *layout.Layout
	closed   bool

	session session

	previewKey     int
	previewShowing bool

	panel      *panelState
	panelCache map[int]InputSurface
}

// session is the per-gesture state of the tracked pointer.
type session struct {
	currentKey     int
	currentKeyTime time.Duration
	lastKey        int
	lastKeyTime    time.Duration
	lastCode       Point
	last           Point
	downTime       time.Duration
	lastMoveTime   time.Duration
	repeatKey      int
	longPressAt    Point
	abort          bool
}

func (s *session) reset() {
	*s = session{
		currentKey: layout.NotAKey,
		lastKey:    layout.NotAKey,
		repeatKey:  layout.NotAKey,
	}
}

// Option configures a Surface.
type Option func(*Surface)

// WithClock sets the time source. Defaults to a RealClock.
func WithClock(c Clock) Option {
	return func(s *Surface) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Surface) { s.logger = l }
}

// WithPresenter sets the receiver of preview and panel directives.
func WithPresenter(p Presenter) Option {
	return func(s *Surface) { s.presenter = p }
}

// WithTiming sets the scheduler delays.
func WithTiming(t Timing) Option {
	return func(s *Surface) { s.timing = t }
}

// WithVerticalCorrection shifts touches down by px pixels before hit-testing.
func WithVerticalCorrection(px int) Option {
	return func(s *Surface) { s.verticalCorrection = px }
}

// WithCursorMoveThreshold sets the drag distance per cursor step on the space bar.
func WithCursorMoveThreshold(px int) Option {
	return func(s *Surface) { s.cursor.threshold = px }
}

// WithPopupMaxMoveDistance sets how far the pointer may stray from an open panel.
func WithPopupMaxMoveDistance(px int) Option {
	return func(s *Surface) { s.popupMaxMove = px }
}

// WithMaxKeysPerPanelRow bounds the width of secondary panels.
func WithMaxKeysPerPanelRow(n int) Option {
	return func(s *Surface) { s.maxPerRow = n }
}

// WithPreviewHeight sets the preview bubble height. Zero uses the key height.
func WithPreviewHeight(px int) Option {
	return func(s *Surface) { s.previewHeight = px }
}

// WithOrigin sets the screen position of the surface.
func WithOrigin(p Point) Option {
	return func(s *Surface) { s.origin = p }
}

// NewSurface creates a surface that reports key events to listener. A layout
// must be set with SetLayout before pointer events are handled.
func NewSurface(listener Listener, opts ...Option) *Surface {
	s := &Surface{
		listener:     listener,
		presenter:    NopPresenter{},
		logger:       zap.NewNop(),
		timing:       DefaultTiming(),
		popupMaxMove: DefaultPopupMaxMoveDistance,
		maxPerRow:    layout.DefaultMaxKeysPerPanelRow,
		cursor:       cursorMode{threshold: DefaultCursorMoveThreshold},
		previewKey:   layout.NotAKey,
		panelCache:   make(map[int]InputSurface),
		pointers:     newPointerTracker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.listener == nil {
		s.listener = nopListener{}
	}
	if s.clock == nil {
		s.clock = NewRealClock()
	}

	s.sched = newScheduler(s.clock, &s.mu, s.logger)
	s.multiTap = NewMultiTap(s.timing.MultiTap)
	s.session.reset()
	s.session.abort = true

	return s
}

// SetLayout replaces the layout. Any gesture in progress is aborted, pending
// timers are cancelled and cached panels are discarded.
func (s *Surface) SetLayout(l *layout.Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l == nil {
		s.logger.DPanic("nil layout")
		return
	}

	if s.layout != nil {
		s.showPreview(layout.NotAKey)
	}
	s.sched.cancelGesture()
	s.dismissPanel()
	s.clearPanelCache()
	s.cursor.reset()
	s.multiTap.Reset()

	s.layout = l
	s.session.reset()
	s.session.abort = true

	s.logger.Debug("layout set",
		zap.String("name", l.Name),
		zap.Int("keys", l.Len()),
		zap.Int("proximity_threshold", l.ProximityThreshold()))
	s.presenter.InvalidateAll()
}

// Layout returns the current layout.
func (s *Surface) Layout() *layout.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// SetTiming replaces the scheduler delays. Timers already armed keep their delay.
func (s *Surface) SetTiming(t Timing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timing = t
	s.multiTap.SetInterval(t.MultiTap)
}

// SetOrigin sets the screen position of the surface's top-left corner.
func (s *Surface) SetOrigin(p Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.origin = p
}

// SetShifted changes the shift state of the layout and reports whether it changed.
func (s *Surface) SetShifted(state layout.ShiftState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.layout == nil || !s.layout.SetShifted(state) {
		return false
	}
	s.presenter.InvalidateAll()
	return true
}

// HandlePointer feeds one raw pointer event through the state machine.
func (s *Surface) HandlePointer(ev PointerEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.layout == nil {
		s.logger.DPanic("pointer event before layout was set", zap.Stringer("event", ev))
		return
	}

	events, ok := s.pointers.collapse(ev)
	if !ok {
		s.logger.Debug("ignoring event for untracked pointer", zap.Stringer("event", ev))
		return
	}
	for _, e := range events {
		s.handle(e)
	}
}

// Close cancels all timers and closes any open panel. Later events are ignored.
func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.sched.cancelAll()
	s.dismissPanel()
	s.clearPanelCache()
	if s.previewShowing {
		s.presenter.HidePreview()
		s.previewShowing = false
	}
	s.pointers.reset()
}

// View calls fn with the surface locked so the layout's key state can be read
// consistently. fn must not call back into the surface.
func (s *Surface) View(fn func(l *layout.Layout, origin Point)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.layout == nil {
		return
	}
	fn(s.layout, s.origin)
}

// PanelOpen reports whether a secondary panel is showing.
func (s *Surface) PanelOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel != nil
}

// Select focuses the key at index and reports whether focus changed.
func (s *Surface) Select(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.layout == nil {
		return false
	}
	prev := s.layout.Focused()
	s.layout.Focus(index)
	if prev == index {
		return false
	}
	s.presenter.InvalidateAll()
	return true
}

// CommitSelected commits the focused key with all of its codes as alternates.
func (s *Surface) CommitSelected(at time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.layout == nil {
		return false
	}
	idx := s.layout.Focused()
	key, ok := s.layout.Key(idx)
	if !ok {
		return false
	}
	s.layout.ClearFocus()
	s.multiTap.Record(idx, at)
	if key.Text != "" {
		s.listener.OnText(key.Text)
		return true
	}
	s.listener.OnKey(key.PrimaryCode(), append([]int(nil), key.Codes...))
	return true
}

func (s *Surface) handle(ev PointerEvent) {
	touch := Point{X: ev.X, Y: ev.Y}
	if touch.Y >= -s.verticalCorrection {
		touch.Y += s.verticalCorrection
	}
	keyIndex := s.layout.Resolve(touch.X, touch.Y, false).Index

	switch ev.Phase {
	case PhaseDown:
		s.onDown(ev, touch, keyIndex)
	case PhaseMove:
		if s.panel != nil {
			s.movePanel(touch.X)
			break
		}
		if s.session.abort {
			break
		}
		s.onMove(ev, touch, keyIndex)
	case PhaseUp:
		if s.panel != nil {
			s.commitPanel(ev.At)
		}
		s.onUp(ev, touch, keyIndex)
	case PhaseCancel:
		if s.panel != nil {
			s.commitPanel(ev.At)
		}
		s.onCancel()
	}

	s.session.last = touch
}

func (s *Surface) clearPanelCache() {
	for idx, child := range s.panelCache {
		child.Close()
		delete(s.panelCache, idx)
	}
}

type nopListener struct{}

func (nopListener) OnPress(int)      {}
func (nopListener) OnKey(int, []int) {}
func (nopListener) OnText(string)    {}
func (nopListener) OnActionUp()      {}
func (nopListener) OnCursorLeft()    {}
func (nopListener) OnCursorRight()   {}
