package render

import (
	"github.com/pleimann/tapboard/internal/gesture"
	"github.com/pleimann/tapboard/internal/layout"
)

// KeyView is the drawable state of one key, in screen pixels.
type KeyView struct {
	X       int
	Y       int
	Width   int
	Height  int
	Label   string
	Pressed bool
	Focused bool
}

// PanelView is an open secondary panel.
type PanelView struct {
	Keys     []KeyView
	Selected int
}

// Scene is a consistent copy of everything drawn for one frame. Build it
// while the surface is locked, then draw it without holding any lock.
type Scene struct {
	Width   int
	Height  int
	Keys    []KeyView
	Preview *gesture.Preview
	Panel   *PanelView
	Status  string
}

// NewScene copies the keys of l, offset by origin.
func NewScene(l *layout.Layout, origin gesture.Point) Scene {
	return Scene{
		Width:  l.MinWidth() + origin.X,
		Height: l.Height() + origin.Y,
		Keys:   KeysOf(l, origin),
	}
}

// KeysOf copies the keys of l, offset by origin. Labels follow the layout's
// shift state; icon keys without a label show their icon name.
func KeysOf(l *layout.Layout, origin gesture.Point) []KeyView {
	keys := l.Keys()
	views := make([]KeyView, len(keys))
	for i, k := range keys {
		label := l.AdjustCase(k.Label)
		if label == "" {
			label = k.Icon
		}
		views[i] = KeyView{
			X:       k.X + origin.X,
			Y:       k.Y + origin.Y,
			Width:   k.Width,
			Height:  k.Height,
			Label:   label,
			Pressed: k.Pressed,
			Focused: k.Focused,
		}
	}
	return views
}

// WithPanel adds an open panel over the scene.
func (s *Scene) WithPanel(p gesture.Panel) {
	s.Panel = &PanelView{
		Keys:     KeysOf(p.Layout, p.Anchor),
		Selected: p.Selected,
	}
}
