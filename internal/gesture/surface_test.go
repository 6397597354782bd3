package gesture

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pleimann/tapboard/internal/layout"
)

// recorder captures listener events as short strings and presenter directives
// as values.
type recorder struct {
	mu sync.Mutex

	log        []string
	nearby     [][]int
	previews   []Preview
	hides      int
	panels     []Panel
	selections []int
	closes     int
	redrawn    []int
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, fmt.Sprintf(format, args...))
}

func (r *recorder) OnPress(code int) { r.add("press:%d", code) }

func (r *recorder) OnKey(code int, nearby []int) {
	r.add("key:%d", code)
	r.mu.Lock()
	r.nearby = append(r.nearby, nearby)
	r.mu.Unlock()
}

func (r *recorder) OnText(text string) { r.add("text:%s", text) }
func (r *recorder) OnActionUp()        { r.add("up") }
func (r *recorder) OnCursorLeft()      { r.add("left") }
func (r *recorder) OnCursorRight()     { r.add("right") }

func (r *recorder) ShowPreview(p Preview) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.previews = append(r.previews, p)
}

func (r *recorder) HidePreview() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hides++
}

func (r *recorder) OpenPanel(p Panel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panels = append(r.panels, p)
}

func (r *recorder) UpdatePanelSelection(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selections = append(r.selections, index)
}

func (r *recorder) ClosePanel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++
}

func (r *recorder) InvalidateKey(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redrawn = append(r.redrawn, index)
}

func (r *recorder) InvalidateAll() {}

func (r *recorder) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}

const (
	keyA = iota
	keyB
	keyABC
	keyDelete
	keySpace
	keyShift
	keyDotCom
)

// testLayout is two rows of 40px keys. The first row starts at y=60 so that
// previews and panels fit above it.
//
//	y=60  | a | b | abc | del | .com |
//	y=100 |    space    |shift|
func testLayout() *layout.Layout {
	row := func(x int, k layout.Key) *layout.Key {
		k.X, k.Y, k.Width, k.Height = x, 60, 40, 40
		return &k
	}
	keys := []*layout.Key{
		row(0, layout.Key{Codes: []int{'a'}, Label: "a", Popup: "àáâäæ"}),
		row(40, layout.Key{Codes: []int{'b'}, Label: "b"}),
		row(80, layout.Key{Codes: []int{'a', 'b', 'c'}, Label: "abc"}),
		row(120, layout.Key{Codes: []int{layout.CodeDelete}, Label: "del", Repeatable: true}),
		{X: 0, Y: 100, Width: 120, Height: 40, Codes: []int{layout.CodeSpace}, Label: "space", Repeatable: true},
		{X: 120, Y: 100, Width: 40, Height: 40, Codes: []int{layout.CodeShift}, Label: "shift"},
		row(160, layout.Key{Codes: []int{'.'}, Label: ".com", Text: ".com"}),
	}
	return layout.New("test", keys)
}

type fixture struct {
	t     *testing.T
	s     *Surface
	rec   *recorder
	clock *ManualClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{t: t, rec: &recorder{}, clock: NewManualClock()}
	opts = append([]Option{
		WithClock(f.clock),
		WithLogger(zaptest.NewLogger(t)),
		WithPresenter(f.rec),
	}, opts...)
	f.s = NewSurface(f.rec, opts...)
	f.s.SetLayout(testLayout())
	t.Cleanup(f.s.Close)
	return f
}

func (f *fixture) event(phase Phase, pointer, x, y int) {
	f.s.HandlePointer(PointerEvent{Phase: phase, X: x, Y: y, Pointer: pointer, At: f.clock.Now()})
}

func (f *fixture) down(x, y int) { f.event(PhaseDown, 0, x, y) }
func (f *fixture) move(x, y int) { f.event(PhaseMove, 0, x, y) }
func (f *fixture) up(x, y int)   { f.event(PhaseUp, 0, x, y) }

func (f *fixture) tap(x, y int) {
	f.down(x, y)
	f.clock.Advance(20 * time.Millisecond)
	f.up(x, y)
}

func (f *fixture) wait(d time.Duration) { f.clock.Advance(d) }

func (f *fixture) expect(want ...string) {
	f.t.Helper()
	if diff := cmp.Diff(want, f.rec.events()); diff != "" {
		f.t.Errorf("listener events mismatch (-want +got):\n%s", diff)
	}
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTapCommitsKey(t *testing.T) {
	f := newFixture(t)

	f.tap(20, 80)

	f.expect("press:97", "key:97", "up")
	require.Len(t, f.rec.nearby, 1)
	assert.Len(t, f.rec.nearby[0], layout.MaxNearbyCodes)
	assert.Equal(t, 'a', rune(f.rec.nearby[0][0]))
}

func TestTapOffKeyboard(t *testing.T) {
	f := newFixture(t)

	f.tap(500, 500)

	f.expect("press:0", "up")
	assert.Empty(t, f.rec.previews)
}

func TestTextKeyCommitsText(t *testing.T) {
	f := newFixture(t)

	f.tap(180, 80)

	f.expect("press:46", "text:.com", "up")
}

func TestMultiTapCyclesCodes(t *testing.T) {
	f := newFixture(t)

	for range 4 {
		f.tap(100, 80)
		f.wait(100 * time.Millisecond)
	}

	f.expect(
		"press:97", "key:97", "up",
		"press:97", "key:-5", "key:98", "up",
		"press:97", "key:-5", "key:99", "up",
		"press:97", "key:-5", "key:97", "up",
	)
}

func TestMultiTapResetsAfterInterval(t *testing.T) {
	f := newFixture(t)

	f.tap(100, 80)
	f.wait(time.Second)
	f.tap(100, 80)

	f.expect("press:97", "key:97", "up", "press:97", "key:97", "up")
}

func TestMultiTapResetsOnOtherKey(t *testing.T) {
	f := newFixture(t)

	f.tap(100, 80)
	f.tap(60, 80)
	f.tap(100, 80)

	f.expect(
		"press:97", "key:97", "up",
		"press:98", "key:98", "up",
		"press:97", "key:97", "up",
	)
}

func TestMultiTapPreviewShowsNextCode(t *testing.T) {
	f := newFixture(t)

	f.tap(100, 80)
	f.down(100, 80)

	require.Len(t, f.rec.previews, 2)
	assert.Equal(t, "a", f.rec.previews[0].Text)
	assert.Equal(t, "b", f.rec.previews[1].Text)
	assert.True(t, f.rec.previews[1].LargeText)
}

func TestDebounceFavorsPreviousKey(t *testing.T) {
	f := newFixture(t)

	f.down(20, 80)
	f.wait(30 * time.Millisecond)
	f.move(60, 80)
	f.wait(20 * time.Millisecond)
	f.up(60, 80)

	f.expect("press:97", "key:97", "up")
	require.Len(t, f.rec.nearby, 1)
	assert.Equal(t, 'a', rune(f.rec.nearby[0][0]))
}

func TestDebounceKeepsLongerDwell(t *testing.T) {
	f := newFixture(t)

	f.down(20, 80)
	f.wait(20 * time.Millisecond)
	f.move(60, 80)
	f.wait(30 * time.Millisecond)
	f.up(60, 80)

	f.expect("press:97", "key:98", "up")
}

func TestDebounceIgnoresDwellPastWindow(t *testing.T) {
	f := newFixture(t)

	f.down(20, 80)
	f.wait(200 * time.Millisecond)
	f.move(60, 80)
	f.wait(100 * time.Millisecond)
	f.up(60, 80)

	f.expect("press:97", "key:98", "up")
}

func TestRepeatWhileHeld(t *testing.T) {
	f := newFixture(t)

	f.down(140, 80)
	f.wait(time.Second)
	f.up(140, 80)

	events := f.rec.events()
	require.Len(t, events, 15)
	assert.Equal(t, "press:-5", events[0])
	for i, e := range events[1:14] {
		assert.Equal(t, "key:-5", e, "event %d", i+1)
	}
	assert.Equal(t, "up", events[14])

	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	assert.False(t, f.s.sched.isPending(timerRepeat))
}

func TestRepeatKeyTapCommitsOnce(t *testing.T) {
	f := newFixture(t)

	f.tap(140, 80)

	f.expect("press:-5", "key:-5", "up")
}

func TestRepeatKeepsKeyWhenSliding(t *testing.T) {
	f := newFixture(t)

	f.down(140, 80)
	f.wait(100 * time.Millisecond)
	f.move(60, 80)
	f.wait(100 * time.Millisecond)
	f.up(60, 80)

	f.expect("press:-5", "key:-5", "up")
}

func TestSpaceTapCommitsOnRelease(t *testing.T) {
	f := newFixture(t)

	f.down(60, 120)
	f.expect("press:32")

	f.wait(100 * time.Millisecond)
	f.up(60, 120)

	f.expect("press:32", "key:32", "up")
}

func TestSpaceHoldMovesCursor(t *testing.T) {
	f := newFixture(t)

	f.down(60, 120)
	f.wait(400 * time.Millisecond)
	f.move(85, 120)
	f.move(90, 120)
	f.move(40, 120)
	f.up(40, 120)

	f.expect("press:32", "right", "left", "left", "up")
}

func TestVerticalCorrection(t *testing.T) {
	f := newFixture(t, WithVerticalCorrection(40))

	f.tap(20, 70)

	f.expect("press:32", "key:32", "up")
}

func TestLongPressOpensPanel(t *testing.T) {
	f := newFixture(t)

	f.down(20, 80)
	f.wait(499 * time.Millisecond)
	require.Empty(t, f.rec.panels)

	f.wait(time.Millisecond)
	require.Len(t, f.rec.panels, 1)
	p := f.rec.panels[0]
	assert.Equal(t, keyA, p.TriggerIndex)
	assert.Equal(t, Point{X: 0, Y: 20}, p.Anchor)
	assert.Equal(t, 0, p.Selected)
	assert.Equal(t, 5, p.Layout.Len())
	assert.True(t, f.s.PanelOpen())

	f.move(130, 80)
	f.move(135, 80)
	f.move(190, 80)
	f.up(190, 80)

	f.expect("press:97", "key:230", "up")
	assert.Equal(t, []int{3, 4}, f.rec.selections)
	assert.Equal(t, []int{'æ'}, f.rec.nearby[0])
	assert.Equal(t, 1, f.rec.closes)
	assert.False(t, f.s.PanelOpen())
}

func TestPanelSelectionIsClamped(t *testing.T) {
	f := newFixture(t)

	f.down(20, 80)
	f.wait(500 * time.Millisecond)

	f.move(310, 80)
	f.move(-30, 80)
	f.move(90, 80)
	f.up(90, 80)

	assert.Equal(t, []int{4, 0, 2}, f.rec.selections)
	f.expect("press:97", "key:226", "up")
}

func TestPanelDismissedWhenPointerStrays(t *testing.T) {
	f := newFixture(t)

	f.down(20, 80)
	f.wait(500 * time.Millisecond)
	f.move(400, 80)
	assert.False(t, f.s.PanelOpen())

	f.move(20, 80)
	f.up(20, 80)

	f.expect("press:97", "up")
	assert.Equal(t, 1, f.rec.closes)
}

func TestCancelCommitsPanelSelection(t *testing.T) {
	f := newFixture(t)

	f.down(20, 80)
	f.wait(500 * time.Millisecond)
	f.event(PhaseCancel, 0, 20, 80)

	f.expect("press:97", "key:224")
	assert.False(t, f.s.PanelOpen())
}

func TestPanelCommitEndsMultiTap(t *testing.T) {
	f := newFixture(t)
	f.s.SetLayout(layout.New("abc", []*layout.Key{
		{X: 0, Y: 60, Width: 40, Height: 40, Codes: []int{'a', 'b', 'c'}, Label: "abc", Popup: "xyz"},
	}))

	f.tap(20, 80)
	f.wait(50 * time.Millisecond)

	f.down(20, 80)
	f.wait(500 * time.Millisecond)
	require.Len(t, f.rec.panels, 1)
	f.up(20, 80)
	f.wait(50 * time.Millisecond)

	f.tap(20, 80)

	f.expect(
		"press:97", "key:97", "up",
		"press:97", "key:120", "up",
		"press:97", "key:97", "up",
	)
}

func TestShiftedPanelIsLocked(t *testing.T) {
	f := newFixture(t)

	f.s.SetShifted(layout.ShiftOn)
	f.down(20, 80)
	f.wait(500 * time.Millisecond)
	require.Len(t, f.rec.panels, 1)
	assert.Equal(t, layout.ShiftLocked, f.rec.panels[0].Layout.Shift())
	f.up(20, 80)

	f.s.SetShifted(layout.ShiftOff)
	f.down(20, 80)
	f.wait(500 * time.Millisecond)
	require.Len(t, f.rec.panels, 2)
	assert.Equal(t, layout.ShiftOff, f.rec.panels[1].Layout.Shift())
	f.up(20, 80)
}

func TestOffKeyboardRedrawsOnlyKeys(t *testing.T) {
	f := newFixture(t)

	f.tap(500, 500)
	f.down(500, 500)
	f.event(PhaseCancel, 0, 500, 500)

	f.tap(20, 80)

	assert.NotContains(t, f.rec.redrawn, layout.NotAKey)
	assert.Contains(t, f.rec.redrawn, keyA)
}

func TestPanelIsCachedPerKey(t *testing.T) {
	f := newFixture(t)

	for range 2 {
		f.down(20, 80)
		f.wait(500 * time.Millisecond)
		f.up(20, 80)
	}

	require.Len(t, f.rec.panels, 2)
	assert.Same(t, f.rec.panels[0].Layout, f.rec.panels[1].Layout)

	f.s.SetLayout(testLayout())
	f.down(20, 80)
	f.wait(500 * time.Millisecond)
	require.Len(t, f.rec.panels, 3)
	assert.NotSame(t, f.rec.panels[0].Layout, f.rec.panels[2].Layout)
}

func TestLongPressNeedsDwellOnOneKey(t *testing.T) {
	f := newFixture(t)

	f.down(20, 80)
	f.wait(300 * time.Millisecond)
	f.move(60, 80)
	f.wait(400 * time.Millisecond)
	assert.Empty(t, f.rec.panels)

	f.move(20, 80)
	f.wait(499 * time.Millisecond)
	assert.Empty(t, f.rec.panels)

	f.move(25, 80)
	f.wait(time.Millisecond)
	assert.Len(t, f.rec.panels, 1)
}

func TestCancelAbortsGesture(t *testing.T) {
	f := newFixture(t)

	f.down(20, 80)
	f.event(PhaseCancel, 0, 20, 80)
	f.wait(time.Second)
	f.up(20, 80)

	f.expect("press:97")
	assert.Empty(t, f.rec.panels)
}

func TestSetLayoutAbortsGesture(t *testing.T) {
	f := newFixture(t)

	f.down(20, 80)
	f.s.SetLayout(testLayout())
	f.wait(time.Second)
	f.up(20, 80)

	f.expect("press:97", "up")
	assert.Empty(t, f.rec.panels)
	assert.Equal(t, 1, f.rec.hides)
}

func TestSecondPointerEndsFirstGesture(t *testing.T) {
	f := newFixture(t)

	f.event(PhaseDown, 0, 20, 80)
	f.wait(10 * time.Millisecond)
	f.event(PhaseDown, 1, 60, 80)
	f.wait(10 * time.Millisecond)
	f.event(PhaseMove, 0, 20, 80)
	f.event(PhaseUp, 0, 20, 80)
	f.wait(10 * time.Millisecond)
	f.event(PhaseUp, 1, 60, 80)

	f.expect("press:97", "key:97", "up", "press:98", "key:98", "up")
}

func TestStrayEventsIgnored(t *testing.T) {
	f := newFixture(t)

	f.move(20, 80)
	f.up(20, 80)

	f.expect()
}

func TestStaleTimerFiringIsDropped(t *testing.T) {
	clock := leakyClock{NewManualClock()}
	rec := &recorder{}
	s := NewSurface(rec, WithClock(clock), WithPresenter(rec), WithLogger(zaptest.NewLogger(t)))
	s.SetLayout(testLayout())
	defer s.Close()

	s.HandlePointer(PointerEvent{Phase: PhaseDown, X: 20, Y: 80})
	s.HandlePointer(PointerEvent{Phase: PhaseUp, X: 20, Y: 80, At: 100 * time.Millisecond})
	clock.Advance(time.Second)

	assert.Empty(t, rec.panels)
	assert.Equal(t, []string{"press:97", "key:97", "up"}, rec.events())
}

func TestPreviewFollowsKey(t *testing.T) {
	f := newFixture(t)

	f.down(20, 80)
	require.Len(t, f.rec.previews, 1)
	want := Preview{
		KeyIndex:      keyA,
		Text:          "a",
		Anchor:        Point{X: 0, Y: 20},
		Width:         40,
		Height:        40,
		LargeText:     true,
		LongPressable: true,
	}
	if diff := cmp.Diff(want, f.rec.previews[0]); diff != "" {
		t.Errorf("preview mismatch (-want +got):\n%s", diff)
	}

	f.move(60, 80)
	require.Len(t, f.rec.previews, 2)
	assert.Equal(t, "b", f.rec.previews[1].Text)

	f.up(60, 80)
	f.wait(69 * time.Millisecond)
	assert.Equal(t, 0, f.rec.hides)
	f.wait(time.Millisecond)
	assert.Equal(t, 1, f.rec.hides)
}

func TestPreviewUsesShiftState(t *testing.T) {
	f := newFixture(t)

	assert.True(t, f.s.SetShifted(layout.ShiftOn))
	assert.False(t, f.s.SetShifted(layout.ShiftOn))
	f.down(20, 80)

	require.Len(t, f.rec.previews, 1)
	assert.Equal(t, "A", f.rec.previews[0].Text)
}

func TestPreviewSkipsModifierKeys(t *testing.T) {
	f := newFixture(t)

	f.down(140, 120)
	assert.Empty(t, f.rec.previews)

	shift, _ := f.s.Layout().Key(keyShift)
	assert.True(t, shift.Pressed)

	f.up(140, 120)
	assert.False(t, shift.Pressed)
}

func TestPreviewBesideTopRowKey(t *testing.T) {
	rec := &recorder{}
	clock := NewManualClock()
	s := NewSurface(rec, WithClock(clock), WithPresenter(rec))
	s.SetLayout(layout.New("top", []*layout.Key{
		{X: 0, Y: 0, Width: 40, Height: 40, Codes: []int{'q'}, Label: "q"},
		{X: 40, Y: 0, Width: 40, Height: 40, Codes: []int{'w'}, Label: "w"},
	}))
	defer s.Close()

	s.HandlePointer(PointerEvent{Phase: PhaseDown, X: 10, Y: 10})

	require.Len(t, rec.previews, 1)
	assert.Equal(t, Point{X: 100, Y: 0}, rec.previews[0].Anchor)
}

func TestPointerBeforeLayout(t *testing.T) {
	t.Run("development panics", func(t *testing.T) {
		core, _ := observer.New(zapcore.DebugLevel)
		s := NewSurface(nil, WithClock(NewManualClock()), WithLogger(zap.New(core, zap.Development())))
		assert.Panics(t, func() {
			s.HandlePointer(PointerEvent{Phase: PhaseDown})
		})
	})

	t.Run("production logs", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		s := NewSurface(nil, WithClock(NewManualClock()), WithLogger(zap.New(core)))
		assert.NotPanics(t, func() {
			s.HandlePointer(PointerEvent{Phase: PhaseDown})
		})
		assert.Equal(t, 1, logs.FilterLevelExact(zapcore.DPanicLevel).Len())
	})
}

func TestNilLayout(t *testing.T) {
	t.Run("development panics", func(t *testing.T) {
		core, _ := observer.New(zapcore.DebugLevel)
		s := NewSurface(nil, WithClock(NewManualClock()), WithLogger(zap.New(core, zap.Development())))
		assert.Panics(t, func() { s.SetLayout(nil) })
	})

	t.Run("production keeps the current layout", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		rec := &recorder{}
		s := NewSurface(rec, WithClock(NewManualClock()), WithLogger(zap.New(core)))
		s.SetLayout(testLayout())

		assert.NotPanics(t, func() { s.SetLayout(nil) })
		assert.Equal(t, 1, logs.FilterLevelExact(zapcore.DPanicLevel).Len())
		require.NotNil(t, s.Layout())

		s.HandlePointer(PointerEvent{Phase: PhaseDown, X: 60, Y: 80})
		s.HandlePointer(PointerEvent{Phase: PhaseUp, X: 60, Y: 80, At: 20 * time.Millisecond})
		assert.Equal(t, []string{"press:98", "key:98", "up"}, rec.events())
		s.Close()
	})
}

func TestClosedSurfaceIgnoresEvents(t *testing.T) {
	f := newFixture(t)

	f.down(140, 80)
	f.s.Close()
	f.wait(time.Second)
	f.up(140, 80)

	f.expect("press:-5", "key:-5")
	assert.Zero(t, f.clock.Pending())
}

func TestRealClockRepeat(t *testing.T) {
	rec := &recorder{}
	timing := DefaultTiming()
	timing.RepeatStart = 5 * time.Millisecond
	timing.RepeatInterval = 5 * time.Millisecond

	s := NewSurface(rec, WithTiming(timing))
	s.SetLayout(testLayout())

	s.HandlePointer(PointerEvent{Phase: PhaseDown, X: 140, Y: 80})
	assert.Eventually(t, func() bool {
		return len(rec.events()) >= 4
	}, time.Second, time.Millisecond)
	s.HandlePointer(PointerEvent{Phase: PhaseUp, X: 140, Y: 80})
	s.Close()

	events := rec.events()
	assert.Equal(t, "up", events[len(events)-1])
}

// leakyClock is a ManualClock whose timers cannot be stopped, so a cancelled
// callback still runs.
type leakyClock struct {
	*ManualClock
}

func (c leakyClock) AfterFunc(d time.Duration, f func()) Timer {
	c.ManualClock.AfterFunc(d, f)
	return leakyTimer{}
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }
