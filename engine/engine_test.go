package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/clock"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopWindow runs the update callback until closed or out of iterations.
type loopWindow struct {
	iterations int
	closed     bool
	update     func()
	resize     func(width, height int)
	clock      clock.ManualClock
}

func (w *loopWindow) SetUpdateCallback(callback func())                 { w.update = callback }
func (w *loopWindow) SetResizeCallback(callback func(width, height int)) { w.resize = callback }
func (w *loopWindow) Close() error                                      { w.closed = true; return nil }
func (w *loopWindow) Clock() clock.FrameClock                           { return w.clock }

func (w *loopWindow) ProcessMessages() {
	for i := 0; i < w.iterations && !w.closed; i++ {
		w.clock.Advance(16 * time.Millisecond)
		w.update()
	}
}

func TestRequestFrameRunsOnce(t *testing.T) {
	b := headless.NewBackend()
	c := clock.NewManualClock()
	e := NewEngine(b, WithClock(c))

	var got []time.Duration
	e.RequestFrame(func(now time.Duration) { got = append(got, now) })
	e.RequestFrame(nil)
	assert.Equal(t, 1, e.Pending())

	c.Set(time.Second)
	assert.True(t, e.RunFrame())
	assert.False(t, e.RunFrame(), "nothing pending, nothing drawn")
	assert.Equal(t, []time.Duration{time.Second}, got)
	assert.Equal(t, 1, e.Frames())
	assert.Equal(t, 1, b.Frames())
}

func TestRunFramesReschedules(t *testing.T) {
	b := headless.NewBackend()
	e := NewEngine(b, WithClock(clock.NewManualClock()), WithProfiling(true))

	var times []time.Duration
	var tick func(now time.Duration)
	tick = func(now time.Duration) {
		times = append(times, now)
		e.RequestFrame(tick)
	}
	e.RequestFrame(tick)

	drawn := e.RunFrames(5, 100*time.Millisecond)
	assert.Equal(t, 5, drawn)
	require.Len(t, times, 5)
	assert.Equal(t, 100*time.Millisecond, times[0])
	assert.Equal(t, 500*time.Millisecond, times[4])
	assert.Equal(t, 1, e.Pending())
}

func TestRunFramesStopsWhenIdle(t *testing.T) {
	e := NewEngine(headless.NewBackend(), WithClock(clock.NewManualClock()))
	e.RequestFrame(func(time.Duration) {})
	assert.Equal(t, 1, e.RunFrames(10, time.Millisecond))
	assert.Equal(t, 0, e.RunFrames(10, time.Millisecond))
}

func TestFrameUsesRenderState(t *testing.T) {
	b := headless.NewBackend()
	state := backend.RenderState{ClearColor: common.Color{0, 0, 0, 1}, DepthTest: true, CullMode: backend.CullBack}
	e := NewEngine(b, WithClock(clock.NewManualClock()))
	e.SetRenderState(state)

	e.RequestFrame(func(time.Duration) {})
	require.True(t, e.RunFrame())

	// A second BeginFrame without EndFrame fails; the engine keeps the callback queued.
	require.NoError(t, b.BeginFrame(state))
	called := false
	e.RequestFrame(func(time.Duration) { called = true })
	assert.False(t, e.RunFrame())
	assert.False(t, called)
	assert.Equal(t, 1, e.Pending())
	b.EndFrame()
	assert.True(t, e.RunFrame())
	assert.True(t, called)
}

func TestRunDrivesWindowLoop(t *testing.T) {
	b := headless.NewBackend()
	w := &loopWindow{iterations: 10, clock: clock.NewManualClock()}
	e := NewEngine(b, WithWindow(w), WithRenderFrameLimit(0))
	assert.Equal(t, w.clock, e.Clock())

	frames := 0
	var tick func(time.Duration)
	tick = func(time.Duration) {
		frames++
		if frames == 3 {
			e.Quit()
			e.Quit()
			return
		}
		e.RequestFrame(tick)
	}
	e.RequestFrame(tick)
	e.Run()

	assert.Equal(t, 3, frames)
	assert.True(t, w.closed)

	w.resize(800, 600)
	assert.Equal(t, common.Size{Width: 800, Height: 600}, b.Size())
}

func TestRunWithoutWindow(t *testing.T) {
	e := NewEngine(headless.NewBackend())
	assert.NotPanics(t, e.Run)
	assert.Nil(t, e.Window())
}

func TestRenderFrameLimit(t *testing.T) {
	e := NewEngine(headless.NewBackend(), WithRenderFrameLimit(50)).(*engine)
	assert.Equal(t, 20*time.Millisecond, e.renderFrameLimit)

	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
	e.SetRenderFrameLimit(-1)
	assert.Zero(t, e.renderFrameLimit)

	// A capped loop sleeps out the rest of each frame.
	w := &loopWindow{iterations: 3, clock: clock.NewManualClock()}
	capped := NewEngine(headless.NewBackend(), WithWindow(w), WithRenderFrameLimit(100))
	var tick func(time.Duration)
	tick = func(time.Duration) { capped.RequestFrame(tick) }
	capped.RequestFrame(tick)

	start := time.Now()
	capped.Run()
	assert.Equal(t, 3, capped.Frames())
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}
