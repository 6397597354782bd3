package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualClockFiresInDeadlineOrder(t *testing.T) {
	c := NewManualClock()
	var fired []string

	c.AfterFunc(30*time.Millisecond, func() { fired = append(fired, "c") })
	c.AfterFunc(10*time.Millisecond, func() { fired = append(fired, "a") })
	c.AfterFunc(10*time.Millisecond, func() { fired = append(fired, "b") })
	require.Equal(t, 3, c.Pending())

	c.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, 20*time.Millisecond, c.Now())

	c.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, fired)
	assert.Zero(t, c.Pending())
}

func TestManualClockNowDuringCallback(t *testing.T) {
	c := NewManualClock()
	var at time.Duration

	c.AfterFunc(15*time.Millisecond, func() { at = c.Now() })
	c.Advance(time.Second)

	assert.Equal(t, 15*time.Millisecond, at)
	assert.Equal(t, time.Second, c.Now())
}

func TestManualClockChainedTimers(t *testing.T) {
	c := NewManualClock()
	ticks := 0

	var tick func()
	tick = func() {
		ticks++
		c.AfterFunc(10*time.Millisecond, tick)
	}
	c.AfterFunc(10*time.Millisecond, tick)

	c.Advance(100 * time.Millisecond)
	assert.Equal(t, 10, ticks)
	assert.Equal(t, 1, c.Pending())
}

func TestManualClockStop(t *testing.T) {
	c := NewManualClock()
	fired := false

	timer := c.AfterFunc(10*time.Millisecond, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	c.Advance(time.Second)
	assert.False(t, fired)

	done := c.AfterFunc(0, func() {})
	c.Advance(0)
	assert.False(t, done.Stop())
}

func TestManualClockAdvanceTo(t *testing.T) {
	c := NewManualClock()
	c.AdvanceTo(50 * time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, c.Now())

	c.AdvanceTo(10 * time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, c.Now())
}

func TestRealClock(t *testing.T) {
	c := NewRealClock()
	done := make(chan struct{})

	c.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	assert.Positive(t, c.Now())
}
