package gesture

import (
	"fmt"
	"time"

	"github.com/pleimann/tapboard/internal/layout"
)

// Phase is the stage of a pointer gesture an event belongs to.
type Phase int

const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
	PhaseCancel
)

func (p Phase) String() string {
	switch p {
	case PhaseDown:
		return "down"
	case PhaseMove:
		return "move"
	case PhaseUp:
		return "up"
	case PhaseCancel:
		return "cancel"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// PointerEvent is a raw touch event in surface coordinates.
type PointerEvent struct {
	Phase   Phase
	X       int
	Y       int
	Pointer int
	At      time.Duration // event time, same epoch as the surface clock
}

func (e PointerEvent) String() string {
	return fmt.Sprintf("%s(id=%d, %d,%d @%s)", e.Phase, e.Pointer, e.X, e.Y, e.At)
}

// Point is a screen position.
type Point struct {
	X int
	Y int
}

// Timing holds the delays that drive the scheduler.
type Timing struct {
	LongPress      time.Duration
	RepeatStart    time.Duration
	RepeatInterval time.Duration
	Debounce       time.Duration
	MultiTap       time.Duration
	PreviewShow    time.Duration
	PreviewHide    time.Duration
}

// DefaultTiming returns the standard delays.
func DefaultTiming() Timing {
	return Timing{
		LongPress:      500 * time.Millisecond,
		RepeatStart:    400 * time.Millisecond,
		RepeatInterval: 50 * time.Millisecond,
		Debounce:       70 * time.Millisecond,
		MultiTap:       800 * time.Millisecond,
		PreviewShow:    0,
		PreviewHide:    70 * time.Millisecond,
	}
}

// Listener receives the key events produced by a Surface. Methods are called
// with the surface locked and must not call back into it.
type Listener interface {
	// OnPress reports the primary code of the key under a new touch, or 0.
	OnPress(code int)
	// OnKey commits a code. nearby lists alternates for correction, closest
	// first, padded with layout.NotAKey.
	OnKey(code int, nearby []int)
	// OnText commits the literal text of a text key.
	OnText(text string)
	OnActionUp()
	OnCursorLeft()
	OnCursorRight()
}

// Preview describes the key bubble shown above a pressed key.
type Preview struct {
	KeyIndex      int
	Text          string
	Icon          string
	Anchor        Point
	Width         int
	Height        int
	LargeText     bool
	LongPressable bool
}

// Panel describes an open secondary key panel.
type Panel struct {
	TriggerIndex int
	Layout       *layout.Layout
	Anchor       Point
	Selected     int
}

// Presenter renders the transient UI a Surface asks for. Methods are called
// with the surface locked and must not call back into it.
type Presenter interface {
	ShowPreview(p Preview)
	HidePreview()
	OpenPanel(p Panel)
	UpdatePanelSelection(index int)
	ClosePanel()
	InvalidateKey(index int)
	InvalidateAll()
}

// NopPresenter ignores every directive. Embed it to implement part of Presenter.
type NopPresenter struct{}

func (NopPresenter) ShowPreview(Preview)      {}
func (NopPresenter) HidePreview()             {}
func (NopPresenter) OpenPanel(Panel)          {}
func (NopPresenter) UpdatePanelSelection(int) {}
func (NopPresenter) ClosePanel()              {}
func (NopPresenter) InvalidateKey(int)        {}
func (NopPresenter) InvalidateAll()           {}
