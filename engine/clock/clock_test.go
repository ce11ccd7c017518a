package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock(t *testing.T) {
	c := NewManualClock()
	assert.Zero(t, c.Now())

	c.Advance(16 * time.Millisecond)
	c.Advance(-time.Second)
	assert.Equal(t, 16*time.Millisecond, c.Now())

	c.Set(2 * time.Second)
	c.Set(time.Second)
	assert.Equal(t, 2*time.Second, c.Now())
}

func TestSystemClockIsMonotonic(t *testing.T) {
	c := NewSystemClock()
	first := c.Now()
	second := c.Now()
	assert.GreaterOrEqual(t, second, first)
	assert.GreaterOrEqual(t, first, time.Duration(0))
}

func TestFuncAndMonotonic(t *testing.T) {
	readings := []float64{1.5, 0.25, 3}
	i := 0
	src := Func(func() float64 {
		r := readings[i]
		i++
		return r
	})
	c := Monotonic(src)

	assert.Equal(t, 1500*time.Millisecond, c.Now())
	assert.Equal(t, 1500*time.Millisecond, c.Now(), "a timer reset does not move the clock back")
	assert.Equal(t, 3*time.Second, c.Now())
}
