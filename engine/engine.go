package engine

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/clock"
	"github.com/Carmen-Shannon/oxy-demos/engine/profiler"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
)

// Window is the part of window.Window the engine loop drives.
type Window interface {
	SetUpdateCallback(callback func())
	SetResizeCallback(callback func(width, height int))
	ProcessMessages()
	Close() error
	Clock() clock.FrameClock
}

// engine implements the Engine interface.
// Owns the frame callback queue and runs frames on the thread that owns the GPU context.
type engine struct {
	mu *sync.Mutex

	backend backend.Backend
	window  Window
	clock   clock.FrameClock
	state   backend.RenderState

	// pending holds the callbacks requested for the next frame.
	pending []func(now time.Duration)
	frames  int

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the host loop of one demo.
// It implements the request-a-callback-every-frame model: callbacks registered with
// RequestFrame run once, inside the next frame, and must re-request to keep animating.
type Engine interface {
	// Window returns the window the engine presents to, nil for headless engines.
	//
	// Returns:
	//   - Window: the window instance
	Window() Window

	// Backend returns the rendering backend frames are recorded on.
	Backend() backend.Backend

	// Clock returns the clock frame times are read from.
	Clock() clock.FrameClock

	// SetRenderState sets the fixed-function state every frame begins with.
	//
	// Parameters:
	//   - state: the render state passed to BeginFrame
	SetRenderState(state backend.RenderState)

	// RequestFrame registers a callback for the next frame. Safe for concurrent use.
	//
	// Parameters:
	//   - callback: function receiving the frame time
	RequestFrame(callback func(now time.Duration))

	// Pending returns the number of callbacks waiting for the next frame.
	Pending() int

	// Frames returns the number of frames drawn.
	Frames() int

	// RunFrame drains the pending callbacks into one frame. Nothing is drawn, cleared or
	// presented when no callback is pending, so a single-frame demo keeps its image.
	//
	// Returns:
	//   - bool: true if a frame was drawn
	RunFrame() bool

	// RunFrames runs up to n frames without a window, advancing a manual clock by step
	// before each one. It stops early once no callback is pending.
	//
	// Parameters:
	//   - n: the maximum number of frames
	//   - step: the time between frames, used only when the clock is a clock.ManualClock
	//
	// Returns:
	//   - int: the number of frames drawn
	RunFrames(n int, step time.Duration) int

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run runs frames from the window message loop until the window closes or Quit is called.
	Run()

	// Quit stops Run after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine for a backend with the provided options.
// Without WithClock the engine reads the window's GLFW timer, or the system clock when headless.
//
// Parameters:
//   - b: the backend frames are recorded on
//   - options: functional options for engine configuration (window, clock, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(b backend.Backend, options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:          &sync.Mutex{},
		backend:     b,
		state:       backend.RenderState{ClearColor: common.DefaultClearColor},
		quitChannel: make(chan struct{}),
		profiler:    profiler.NewProfiler(b.Type().String()),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.clock == nil {
		if e.window != nil {
			e.clock = e.window.Clock()
		} else {
			e.clock = clock.NewSystemClock()
		}
	}
	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			e.backend.Resize(width, height)
		})
	}

	return e
}

func (e *engine) Window() Window {
	return e.window
}

func (e *engine) Backend() backend.Backend {
	return e.backend
}

func (e *engine) Clock() clock.FrameClock {
	return e.clock
}

func (e *engine) SetRenderState(state backend.RenderState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state
}

func (e *engine) RequestFrame(callback func(now time.Duration)) {
	if callback == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = append(e.pending, callback)
}

func (e *engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

func (e *engine) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

func (e *engine) RunFrame() bool {
	e.mu.Lock()
	callbacks := e.pending
	e.pending = nil
	state := e.state
	e.mu.Unlock()

	if len(callbacks) == 0 {
		return false
	}

	now := e.clock.Now()
	if err := e.backend.BeginFrame(state); err != nil {
		common.Logger().Error("frame skipped", "frame", e.Frames(), "error", err)
		// The callbacks keep their place in line for the next frame.
		e.mu.Lock()
		e.pending = append(callbacks, e.pending...)
		e.mu.Unlock()
		return false
	}
	for _, cb := range callbacks {
		cb(now)
	}
	e.backend.EndFrame()

	e.mu.Lock()
	e.frames++
	e.mu.Unlock()

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
	return true
}

func (e *engine) RunFrames(n int, step time.Duration) int {
	manual, _ := e.clock.(clock.ManualClock)
	drawn := 0
	for i := 0; i < n && !e.quitting(); i++ {
		if e.Pending() == 0 {
			break
		}
		if manual != nil {
			manual.Advance(step)
		}
		if e.RunFrame() {
			drawn++
		}
	}
	return drawn
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Run() {
	if e.window == nil {
		common.Logger().Error("engine has no window, use RunFrames")
		return
	}
	e.window.SetUpdateCallback(func() {
		if e.quitting() {
			_ = e.window.Close()
			return
		}
		start := time.Now()
		e.RunFrame()

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	})
	e.window.ProcessMessages()
}

// Quit signals Run to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) quitting() bool {
	select {
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}
