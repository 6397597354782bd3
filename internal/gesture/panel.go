package gesture

import (
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pleimann/tapboard/internal/layout"
)

// panelState is the secondary panel currently open over a surface.
type panelState struct {
	trigger  int
	child    InputSurface
	anchor   Point
	width    int
	count    int
	keyWidth int
	selected int
}

// openPanel shows the secondary panel of the key at trigger, with the key
// under touch pre-selected. It reports false when the key has no alternates.
func (s *Surface) openPanel(trigger int, key *layout.Key, touch Point) bool {
	child, ok := s.panelCache[trigger]
	if !ok {
		child = s.newPanelSurface(layout.NewPopup(key.Popup, key.Width, key.Height, s.maxPerRow))
		s.panelCache[trigger] = child
	}

	pl := child.Layout()
	if pl.Len() == 0 {
		return false
	}
	panelShift := layout.ShiftOff
	if s.layout.IsShifted() {
		panelShift = layout.ShiftLocked
	}
	pl.SetShifted(panelShift)

	width, height := pl.MinWidth(), pl.Height()
	half := utf8.RuneCountInString(key.Popup) / 2

	x := key.X + key.Width - (width - half*key.Width) + s.origin.X
	y := key.Y - height + s.origin.Y
	if y < 0 {
		y = key.Y + s.origin.Y
		if key.X+key.Width <= s.layout.MinWidth()/2 {
			x = key.X + key.Width + s.origin.X
		} else {
			x = key.X - width + s.origin.X
		}
	}
	if right := s.origin.X + s.layout.MinWidth(); x+width > right {
		x = right - width
	}
	x = max(0, x)

	count := pl.Len()
	sel := floorDiv(touch.X+s.origin.X-x, key.Width)
	if count > s.maxPerRow {
		sel += s.maxPerRow
	}
	sel = clamp(sel, 0, count-1)

	anchor := Point{X: x, Y: y}
	child.SetOrigin(anchor)
	child.Select(sel)

	s.panel = &panelState{
		trigger:  trigger,
		child:    child,
		anchor:   anchor,
		width:    width,
		count:    count,
		keyWidth: key.Width,
		selected: sel,
	}
	s.presenter.OpenPanel(Panel{
		TriggerIndex: trigger,
		Layout:       pl,
		Anchor:       anchor,
		Selected:     sel,
	})
	s.presenter.InvalidateAll()
	return true
}

// movePanel tracks the pointer across an open panel, dismissing it when the
// pointer strays too far sideways.
func (s *Surface) movePanel(touchX int) {
	p := s.panel
	x := touchX + s.origin.X

	perRow := min(p.count, s.maxPerRow)
	keyWidth := p.width / perRow
	if keyWidth <= 0 {
		keyWidth = p.keyWidth
	}

	sel := floorDiv(x-p.anchor.X, keyWidth)
	if p.count > s.maxPerRow {
		sel = max(0, sel) + s.maxPerRow
	}
	sel = clamp(sel, 0, p.count-1)

	if sel != p.selected {
		p.selected = sel
		p.child.Select(sel)
		s.presenter.UpdatePanelSelection(sel)
	}

	if p.anchor.X-x > s.popupMaxMove || x-(p.anchor.X+p.width) > s.popupMaxMove {
		s.logger.Debug("pointer left panel", zap.Int("trigger", p.trigger), zap.Int("x", x))
		s.dismissPanel()
	}
}

// commitPanel commits the selected panel key and closes the panel.
func (s *Surface) commitPanel(at time.Duration) {
	p := s.panel
	if p == nil {
		return
	}
	p.child.CommitSelected(at)
	s.dismissPanel()
}

func (s *Surface) dismissPanel() {
	if s.panel == nil {
		return
	}
	s.panel = nil
	s.presenter.ClosePanel()
	s.presenter.InvalidateAll()
}

func (s *Surface) newPanelSurface(pl *layout.Layout) InputSurface {
	child := NewSurface(panelRelay{parent: s},
		WithClock(s.clock),
		WithLogger(s.logger.Named("panel")),
		WithTiming(s.timing),
		WithMaxKeysPerPanelRow(s.maxPerRow),
	)
	child.SetLayout(pl)
	return child
}

// panelRelay forwards a panel's key events to the surface that opened it and
// closes the panel after a commit. A panel commit also ends any multi-tap run
// on the trigger key. It runs with the parent already locked.
type panelRelay struct {
	parent *Surface
}

func (r panelRelay) OnPress(code int) { r.parent.listener.OnPress(code) }

func (r panelRelay) OnKey(code int, nearby []int) {
	r.parent.listener.OnKey(code, nearby)
	r.parent.multiTap.Reset()
	r.parent.dismissPanel()
}

func (r panelRelay) OnText(text string) {
	r.parent.listener.OnText(text)
	r.parent.multiTap.Reset()
	r.parent.dismissPanel()
}

func (r panelRelay) OnActionUp()    { r.parent.listener.OnActionUp() }
func (r panelRelay) OnCursorLeft()  { r.parent.listener.OnCursorLeft() }
func (r panelRelay) OnCursorRight() { r.parent.listener.OnCursorRight() }

func floorDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
