package gesture

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type timerKind int

const (
	timerRepeat timerKind = iota
	timerLongPress
	timerShowPreview
	timerHidePreview
	numTimerKinds
)

func (k timerKind) String() string {
	switch k {
	case timerRepeat:
		return "repeat"
	case timerLongPress:
		return "long_press"
	case timerShowPreview:
		return "show_preview"
	case timerHidePreview:
		return "hide_preview"
	default:
		return "unknown"
	}
}

// handle is one armed timer. A firing is honored only while the handle is
// still the one stored for its kind and, for gesture timers, its generation
// is current.
type handle struct {
	kind  timerKind
	gen   uint64
	timer Timer
}

// scheduler owns the delayed callbacks of a Surface. Callbacks run with lock
// held, which serializes them with pointer events.
type scheduler struct {
	clock  Clock
	lock   sync.Locker
	logger *zap.Logger

	gen     uint64
	pending [numTimerKinds]*handle
}

func newScheduler(clock Clock, lock sync.Locker, logger *zap.Logger) *scheduler {
	return &scheduler{
		clock:  clock,
		lock:   lock,
		logger: logger,
	}
}

// arm schedules fn after d, replacing any pending timer of the same kind.
// The caller must hold the lock.
func (s *scheduler) arm(kind timerKind, d time.Duration, fn func()) {
	s.cancel(kind)

	h := &handle{kind: kind, gen: s.gen}
	s.pending[kind] = h
	h.timer = s.clock.AfterFunc(d, func() {
		s.lock.Lock()
		defer s.lock.Unlock()

		if s.pending[kind] != h || (kind != timerHidePreview && h.gen != s.gen) {
			s.logger.Debug("dropping stale timer",
				zap.Stringer("kind", kind),
				zap.Uint64("generation", h.gen),
				zap.Uint64("current", s.gen))
			return
		}
		s.pending[kind] = nil
		fn()
	})
}

// cancel stops the pending timer of a kind. Cancelling an idle kind is a no-op.
func (s *scheduler) cancel(kind timerKind) {
	h := s.pending[kind]
	if h == nil {
		return
	}
	s.pending[kind] = nil
	if h.timer != nil {
		h.timer.Stop()
	}
}

// cancelGesture stops every timer tied to the current gesture and starts a
// new generation. The preview hide timer outlives the gesture that armed it.
func (s *scheduler) cancelGesture() {
	s.cancel(timerRepeat)
	s.cancel(timerLongPress)
	s.cancel(timerShowPreview)
	s.gen++
}

// cancelAll stops every timer, including the preview hide timer.
func (s *scheduler) cancelAll() {
	s.cancelGesture()
	s.cancel(timerHidePreview)
}

func (s *scheduler) isPending(kind timerKind) bool {
	return s.pending[kind] != nil
}

func (s *scheduler) generation() uint64 {
	return s.gen
}
