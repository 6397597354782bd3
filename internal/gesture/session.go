package gesture

import (
	"time"

	"go.uber.org/zap"

	"github.com/pleimann/tapboard/internal/layout"
)

func (s *Surface) onDown(ev PointerEvent, touch Point, keyIndex int) {
	s.sched.cancelGesture()
	s.cursor.reset()

	s.session.reset()
	s.session.currentKey = keyIndex
	s.session.lastCode = touch
	s.session.downTime = ev.At
	s.session.lastMoveTime = ev.At

	key, ok := s.layout.Key(keyIndex)
	press := 0
	if ok {
		press = key.PrimaryCode()
		s.multiTap.Land(keyIndex, len(key.Codes), ev.At)
	}
	s.listener.OnPress(press)

	if ok && key.Repeatable {
		s.session.repeatKey = keyIndex
		s.sched.arm(timerRepeat, s.timing.RepeatStart, s.startRepeat)
		if key.PrimaryCode() != layout.CodeSpace {
			s.repeatCommit()
		}
	}
	if ok && key.HasPopup() {
		s.armLongPress(touch)
	}
	s.showPreview(keyIndex)
}

func (s *Surface) onMove(ev PointerEvent, touch Point, keyIndex int) {
	ss := &s.session
	continuing := false

	if keyIndex != layout.NotAKey {
		switch {
		case ss.currentKey == layout.NotAKey:
			ss.currentKey = keyIndex
			ss.currentKeyTime = ev.At - ss.downTime
		case keyIndex == ss.currentKey:
			ss.currentKeyTime += ev.At - ss.lastMoveTime
			continuing = true
		case ss.repeatKey == layout.NotAKey:
			s.switchKey(keyIndex, ev)
		}
	}

	switch {
	case s.cursor.active:
		s.moveCursor(touch.X)
	case !continuing:
		s.sched.cancel(timerLongPress)
		if key, ok := s.layout.Key(keyIndex); ok && key.HasPopup() {
			s.armLongPress(touch)
		}
		s.showPreview(ss.currentKey)
	}

	ss.lastMoveTime = ev.At
}

// switchKey moves the session from the current key to keyIndex, remembering
// the old key and its dwell for debouncing at release.
func (s *Surface) switchKey(keyIndex int, ev PointerEvent) {
	ss := &s.session
	s.multiTap.Reset()
	ss.lastKey = ss.currentKey
	ss.lastCode = ss.last
	ss.lastKeyTime = ss.currentKeyTime + ev.At - ss.lastMoveTime
	ss.currentKey = keyIndex
	ss.currentKeyTime = 0
}

func (s *Surface) onUp(ev PointerEvent, touch Point, keyIndex int) {
	ss := &s.session
	s.sched.cancelGesture()
	cursorUsed := s.cursor.active
	s.cursor.reset()

	if ss.abort {
		s.showPreview(layout.NotAKey)
		ss.repeatKey = layout.NotAKey
		s.listener.OnActionUp()
		return
	}

	if keyIndex == ss.currentKey {
		ss.currentKeyTime += ev.At - ss.lastMoveTime
	} else {
		s.switchKey(keyIndex, ev)
	}

	commitAt := touch
	if ss.currentKeyTime < ss.lastKeyTime && ss.currentKeyTime < s.timing.Debounce &&
		ss.lastKey != layout.NotAKey {
		s.logger.Debug("debounced release",
			zap.Int("key", ss.lastKey),
			zap.Duration("dwell", ss.currentKeyTime),
			zap.Duration("previous_dwell", ss.lastKeyTime))
		ss.currentKey = ss.lastKey
		commitAt = ss.lastCode
	}

	s.showPreview(layout.NotAKey)

	switch {
	case ss.repeatKey == layout.NotAKey:
		s.detectAndSend(ss.currentKey, commitAt, ev.At)
	case ss.repeatKey == ss.currentKey && !cursorUsed && s.isSpace(ss.repeatKey):
		s.detectAndSend(ss.currentKey, commitAt, ev.At)
	}

	s.invalidateKey(keyIndex)
	ss.repeatKey = layout.NotAKey
	s.listener.OnActionUp()
}

func (s *Surface) onCancel() {
	s.sched.cancelGesture()
	s.cursor.reset()
	s.dismissPanel()
	s.session.abort = true
	s.showPreview(layout.NotAKey)
	s.invalidateKey(s.session.currentKey)
	s.session.repeatKey = layout.NotAKey
}

// detectAndSend commits the key at keyIndex. Nearby codes are resolved at the
// given point.
func (s *Surface) detectAndSend(keyIndex int, at Point, when time.Duration) {
	key, ok := s.layout.Key(keyIndex)
	if !ok {
		return
	}

	if key.Text != "" {
		s.listener.OnText(key.Text)
		s.multiTap.Record(keyIndex, when)
		return
	}

	hit := s.layout.Resolve(at.X, at.Y, true)
	code, replace := s.multiTap.Commit(keyIndex, key.Codes, when)
	if replace {
		s.listener.OnKey(layout.CodeDelete, []int{layout.CodeDelete})
	}
	s.listener.OnKey(code, hit.Nearby)
}

func (s *Surface) isSpace(keyIndex int) bool {
	key, ok := s.layout.Key(keyIndex)
	return ok && key.PrimaryCode() == layout.CodeSpace
}

// startRepeat runs when a repeatable key has been held for RepeatStart. Space
// switches to cursor movement; other keys begin repeating.
func (s *Surface) startRepeat() {
	if s.session.repeatKey == layout.NotAKey {
		return
	}
	if s.isSpace(s.session.repeatKey) {
		s.logger.Debug("space held, moving cursor")
		s.cursor.activate(s.session.last.X)
		s.showPreview(layout.NotAKey)
		return
	}
	s.sched.arm(timerRepeat, s.timing.RepeatInterval, s.repeatTick)
}

func (s *Surface) repeatTick() {
	if s.session.repeatKey == layout.NotAKey {
		return
	}
	s.repeatCommit()
	s.sched.arm(timerRepeat, s.timing.RepeatInterval, s.repeatTick)
}

func (s *Surface) repeatCommit() {
	key, ok := s.layout.Key(s.session.repeatKey)
	if !ok {
		return
	}
	s.detectAndSend(s.session.repeatKey, Point{X: key.X, Y: key.Y}, s.clock.Now())
}

func (s *Surface) moveCursor(x int) {
	steps := s.cursor.move(x)
	for ; steps < 0; steps++ {
		s.listener.OnCursorLeft()
	}
	for ; steps > 0; steps-- {
		s.listener.OnCursorRight()
	}
}

func (s *Surface) armLongPress(touch Point) {
	s.session.longPressAt = touch
	s.sched.arm(timerLongPress, s.timing.LongPress, s.longPress)
}

// longPress opens the secondary panel of the current key. The rest of the
// gesture is then routed to the panel.
func (s *Surface) longPress() {
	ss := &s.session
	key, ok := s.layout.Key(ss.currentKey)
	if !ok || !key.HasPopup() {
		return
	}
	if !s.openPanel(ss.currentKey, key, ss.longPressAt) {
		return
	}

	s.logger.Debug("long press opened panel", zap.Int("key", ss.currentKey))
	ss.abort = true
	s.sched.cancel(timerRepeat)
	ss.repeatKey = layout.NotAKey
	s.cursor.reset()
	s.showPreview(layout.NotAKey)
}
