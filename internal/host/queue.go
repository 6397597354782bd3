// Package host adapts surface callbacks for the application around it.
package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/pleimann/tapboard/internal/gesture"
)

// Kind identifies a surface notification.
type Kind int

const (
	KindPress Kind = iota
	KindKey
	KindText
	KindActionUp
	KindCursorLeft
	KindCursorRight
	KindShowPreview
	KindHidePreview
	KindOpenPanel
	KindPanelSelection
	KindClosePanel
	KindInvalidateKey
	KindInvalidateAll
)

var kindNames = [...]string{
	KindPress:          "press",
	KindKey:            "key",
	KindText:           "text",
	KindActionUp:       "action_up",
	KindCursorLeft:     "cursor_left",
	KindCursorRight:    "cursor_right",
	KindShowPreview:    "show_preview",
	KindHidePreview:    "hide_preview",
	KindOpenPanel:      "open_panel",
	KindPanelSelection: "panel_selection",
	KindClosePanel:     "close_panel",
	KindInvalidateKey:  "invalidate_key",
	KindInvalidateAll:  "invalidate_all",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// Event is one Listener or Presenter call, captured for later delivery.
type Event struct {
	Kind    Kind
	Code    int   // press, key
	Nearby  []int // key
	Text    string
	Index   int // panel selection, invalidated key
	Preview gesture.Preview
	Panel   gesture.Panel
}

// IsCommit reports whether the event changes the text being typed.
func (e Event) IsCommit() bool {
	switch e.Kind {
	case KindKey, KindText, KindCursorLeft, KindCursorRight:
		return true
	}
	return false
}

// Queue records surface notifications and delivers them in order on the
// goroutine running Run. It implements gesture.Listener and gesture.Presenter,
// so the surface never blocks on the application.
type Queue struct {
	mu      sync.Mutex
	pending []Event
	closed  bool
	signal  chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{signal: make(chan struct{}, 1)}
}

func (q *Queue) push(ev Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, ev)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Run delivers queued events to handle until ctx is done or the queue is
// closed and drained.
func (q *Queue) Run(ctx context.Context, handle func(Event)) error {
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		closed := q.closed
		q.mu.Unlock()

		for _, ev := range batch {
			handle(ev)
		}
		if closed && len(batch) == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.signal:
		}
	}
}

// Close stops accepting events. Run returns once the backlog is delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Len returns the number of undelivered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) OnPress(code int) { q.push(Event{Kind: KindPress, Code: code}) }

func (q *Queue) OnKey(code int, nearby []int) {
	q.push(Event{Kind: KindKey, Code: code, Nearby: append([]int(nil), nearby...)})
}

func (q *Queue) OnText(text string) { q.push(Event{Kind: KindText, Text: text}) }
func (q *Queue) OnActionUp()        { q.push(Event{Kind: KindActionUp}) }
func (q *Queue) OnCursorLeft()      { q.push(Event{Kind: KindCursorLeft}) }
func (q *Queue) OnCursorRight()     { q.push(Event{Kind: KindCursorRight}) }

func (q *Queue) ShowPreview(p gesture.Preview) { q.push(Event{Kind: KindShowPreview, Preview: p}) }
func (q *Queue) HidePreview()                  { q.push(Event{Kind: KindHidePreview}) }
func (q *Queue) OpenPanel(p gesture.Panel)     { q.push(Event{Kind: KindOpenPanel, Panel: p}) }

func (q *Queue) UpdatePanelSelection(index int) {
	q.push(Event{Kind: KindPanelSelection, Index: index})
}

func (q *Queue) ClosePanel()             { q.push(Event{Kind: KindClosePanel}) }
func (q *Queue) InvalidateKey(index int) { q.push(Event{Kind: KindInvalidateKey, Index: index}) }
func (q *Queue) InvalidateAll()          { q.push(Event{Kind: KindInvalidateAll}) }
