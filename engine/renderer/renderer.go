// Package renderer selects and constructs the rendering backend for a window.
package renderer

import (
	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend/headless"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend/opengl"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend/webgpu"
	"github.com/Carmen-Shannon/oxy-demos/engine/window"
)

// renderer holds the construction settings collected from builder options.
type renderer struct {
	vsync                bool
	msaa                 uint32
	forceFallbackAdapter bool
	size                 common.Size
}

// WindowOptions returns the window options a backend type needs: an OpenGL 4.1 context
// for BackendTypeOpenGL and a context-free window otherwise.
//
// Parameters:
//   - backendType: the backend the window will be used with
//
// Returns:
//   - []window.WindowBuilderOption: options to pass to window.NewWindow
func WindowOptions(backendType backend.BackendType) []window.WindowBuilderOption {
	if backendType == backend.BackendTypeOpenGL {
		return []window.WindowBuilderOption{window.WithOpenGLContext(4, 1)}
	}
	return nil
}

// NewBackend creates the backend of the given type presenting to win.
// The headless backend ignores win, which may then be nil.
// The GPU backends panic when their device or context cannot be created.
//
// Parameters:
//   - backendType: the backend implementation to create
//   - win: the window to present to, created with WindowOptions(backendType)
//   - options: variadic list of RendererBuilderOption functions
//
// Returns:
//   - backend.Backend: the backend
func NewBackend(backendType backend.BackendType, win window.Window, options ...RendererBuilderOption) backend.Backend {
	r := &renderer{
		vsync: true,
		msaa:  1,
	}
	if win != nil {
		r.size = win.Size()
	}
	for _, opt := range options {
		opt(r)
	}
	size := common.Coalesce(r.size, common.DefaultSurfaceSize)

	var b backend.Backend
	switch backendType {
	case backend.BackendTypeHeadless:
		b = headless.NewBackend(headless.WithSurfaceSize(size))
	case backend.BackendTypeOpenGL:
		b = opengl.NewBackend(win, size)
	case backend.BackendTypeWGPU:
		fallthrough
	default:
		b = webgpu.NewBackend(win.SurfaceDescriptor(), size,
			webgpu.WithVSync(r.vsync),
			webgpu.WithMSAA(r.msaa),
			webgpu.WithForceSoftwareRenderer(r.forceFallbackAdapter),
		)
	}
	common.Logger().Debug("backend created", "backend", b.Type(), "width", size.Width, "height", size.Height)
	return b
}
