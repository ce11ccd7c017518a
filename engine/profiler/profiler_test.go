package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickReportsPerInterval(t *testing.T) {
	start := time.Unix(0, 0)
	now := start
	p := NewProfiler("cube")
	p.now = func() time.Time { return now }
	p.lastTime = start
	p.SetInterval(time.Second)
	p.SetInterval(0)

	for i := 0; i < 59; i++ {
		now = now.Add(10 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	now = start.Add(2 * time.Second)
	assert.True(t, p.Tick())

	s := p.Last()
	assert.Equal(t, 60, s.Frames)
	assert.InDelta(t, 30, s.FPS, 1e-9)
	assert.Greater(t, s.SysMB, 0.0)

	now = now.Add(10 * time.Millisecond)
	assert.False(t, p.Tick(), "the frame count restarts after a report")
}
