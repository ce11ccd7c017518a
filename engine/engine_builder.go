package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-demos/engine/clock"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets the window the engine runs its message loop on and watches for resizes.
//
// Parameters:
//   - w: a pre-configured window, usually a window.Window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithClock sets the clock frame times are read from.
//
// Parameters:
//   - c: the frame clock
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(c clock.FrameClock) EngineBuilderOption {
	return func(e *engine) {
		e.clock = c
	}
}

// WithRenderState sets the fixed-function state every frame begins with.
//
// Parameters:
//   - state: the render state
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderState(state backend.RenderState) EngineBuilderOption {
	return func(e *engine) {
		e.state = state
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
