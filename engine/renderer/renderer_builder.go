package renderer

import "github.com/Carmen-Shannon/oxy-demos/common"

// RendererBuilderOption is a functional option applied during backend construction via NewBackend.
type RendererBuilderOption func(*renderer)

// WithVSync sets whether presentation waits for vertical blank. Only the WebGPU backend
// reads this; the OpenGL swap interval is set on the window.
//
// Parameters:
//   - enabled: true to wait for vertical blank (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option
func WithVSync(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.vsync = enabled
	}
}

// WithMSAA sets the multisample count for the WebGPU backend. 1 disables MSAA (default).
//
// Parameters:
//   - samples: 1 or 4
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option
func WithMSAA(samples uint32) RendererBuilderOption {
	return func(r *renderer) {
		r.msaa = samples
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the option
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithSurfaceSize overrides the surface size taken from the window.
//
// Parameters:
//   - size: the surface size in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the option
func WithSurfaceSize(size common.Size) RendererBuilderOption {
	return func(r *renderer) {
		r.size = size
	}
}
