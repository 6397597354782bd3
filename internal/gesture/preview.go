package gesture

import (
	"unicode/utf8"

	"github.com/pleimann/tapboard/internal/layout"
)

// invalidateKey asks the presenter to redraw keyIndex if it is a key.
func (s *Surface) invalidateKey(keyIndex int) {
	if _, ok := s.layout.Key(keyIndex); ok {
		s.presenter.InvalidateKey(keyIndex)
	}
}

// showPreview moves the preview to keyIndex, or schedules it to hide when
// keyIndex is NotAKey.
func (s *Surface) showPreview(keyIndex int) {
	old := s.previewKey
	s.previewKey = keyIndex
	if old == keyIndex {
		return
	}

	if key, ok := s.layout.Key(old); ok {
		key.Release()
		s.presenter.InvalidateKey(old)
	}
	if key, ok := s.layout.Key(keyIndex); ok {
		if pressesVisibly(key.PrimaryCode()) {
			key.Press()
		}
		s.presenter.InvalidateKey(keyIndex)
	}

	s.sched.cancel(timerShowPreview)
	if keyIndex == layout.NotAKey {
		if s.previewShowing {
			s.sched.arm(timerHidePreview, s.timing.PreviewHide, s.hidePreview)
		}
		return
	}

	if s.previewShowing || s.timing.PreviewShow <= 0 {
		s.showKey(keyIndex)
		return
	}
	s.sched.arm(timerShowPreview, s.timing.PreviewShow, func() {
		s.showKey(keyIndex)
	})
}

func (s *Surface) showKey(keyIndex int) {
	key, ok := s.layout.Key(keyIndex)
	if !ok {
		return
	}
	s.sched.cancel(timerHidePreview)

	code := key.PrimaryCode()
	if (key.Label == "" && key.Icon == "") || code == layout.CodeShift || code == layout.CodeModeChange {
		if s.previewShowing {
			s.presenter.HidePreview()
			s.previewShowing = false
		}
		return
	}

	p := Preview{
		KeyIndex:      keyIndex,
		Icon:          key.Icon,
		Width:         key.Width,
		Height:        s.previewHeight,
		LongPressable: key.HasPopup(),
	}
	if p.Height <= 0 {
		p.Height = key.Height
	}
	if key.Icon == "" {
		p.Text = s.previewText(key)
		p.LargeText = utf8.RuneCountInString(key.Label) <= 1 || key.IsMultiTap()
	}

	x := key.X + s.origin.X
	y := key.Y - p.Height + s.origin.Y
	if y < 0 {
		// No room above the key: show it beside instead.
		if key.X+key.Width <= s.layout.MinWidth()/2 {
			x += key.Width * 5 / 2
		} else {
			x -= key.Width * 5 / 2
		}
		y += p.Height
	}
	p.Anchor = Point{X: x, Y: y}

	s.presenter.ShowPreview(p)
	s.previewShowing = true
}

func (s *Surface) hidePreview() {
	if !s.previewShowing {
		return
	}
	s.presenter.HidePreview()
	s.previewShowing = false
}

func (s *Surface) previewText(key *layout.Key) string {
	if s.multiTap.Active() && key.IsMultiTap() {
		return s.layout.AdjustCase(string(rune(s.multiTap.PreviewCode(key.Codes))))
	}
	return s.layout.AdjustCase(key.Label)
}

// pressesVisibly reports whether a key with code is drawn pressed while held.
func pressesVisibly(code int) bool {
	switch code {
	case layout.CodeShift, layout.CodeModeChange, layout.CodeDelete, layout.CodeEnter, layout.CodeSpace:
		return true
	}
	return false
}
