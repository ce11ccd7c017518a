// Package clock provides the monotonic time sources frame callbacks are driven by.
package clock

import (
	"sync"
	"time"
)

// FrameClock supplies the elapsed time since the clock started. Now never decreases.
type FrameClock interface {
	Now() time.Duration
}

// systemClock reads the monotonic reading of the standard library clock.
type systemClock struct {
	start time.Time
}

var _ FrameClock = &systemClock{}

// NewSystemClock creates a clock starting at zero now.
//
// Returns:
//   - FrameClock: the system clock
func NewSystemClock() FrameClock {
	return &systemClock{start: time.Now()}
}

func (c *systemClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock is a FrameClock advanced explicitly. It drives batch runs and tests at a fixed step.
type ManualClock interface {
	FrameClock

	// Advance moves the clock forward. Negative steps are ignored.
	Advance(step time.Duration)

	// Set moves the clock to an absolute time. Times before the current reading are ignored.
	Set(now time.Duration)
}

type manualClock struct {
	mu  *sync.Mutex
	now time.Duration
}

var _ ManualClock = &manualClock{}

// NewManualClock creates a manual clock at zero.
//
// Returns:
//   - ManualClock: the manual clock
func NewManualClock() ManualClock {
	return &manualClock{mu: &sync.Mutex{}}
}

func (c *manualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(step time.Duration) {
	if step <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += step
}

func (c *manualClock) Set(now time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = max(c.now, now)
}

// Func adapts a seconds-returning timer, such as glfw.GetTime, into a FrameClock.
// Wrap it with Monotonic when the timer can be reset.
type Func func() float64

// Now implements FrameClock.
func (f Func) Now() time.Duration {
	return time.Duration(f() * float64(time.Second))
}

// monotonic wraps a FrameClock so readings never go backwards.
type monotonic struct {
	mu   *sync.Mutex
	src  FrameClock
	last time.Duration
}

// Monotonic guards a clock whose source may jump backwards, such as a reset host timer.
//
// Parameters:
//   - src: the source clock
//
// Returns:
//   - FrameClock: a clock returning max(last, src.Now())
func Monotonic(src FrameClock) FrameClock {
	return &monotonic{mu: &sync.Mutex{}, src: src}
}

func (m *monotonic) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = max(m.last, m.src.Now())
	return m.last
}
