package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/clock"
	"github.com/cogentcore/webgpu/wgpu"
)

// ClientAPI selects the graphics context the window is created with.
type ClientAPI int

const (
	// ClientAPINone creates no context. WebGPU attaches through SurfaceDescriptor.
	ClientAPINone ClientAPI = iota

	// ClientAPIOpenGL creates an OpenGL core profile context.
	ClientAPIOpenGL
)

// Window provides the rendering surface and the host message loop.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// ClientAPI returns the context type the window was created with.
	ClientAPI() ClientAPI

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// MakeContextCurrent binds the window's OpenGL context to the calling thread.
	// No-op for ClientAPINone windows.
	MakeContextCurrent()

	// SwapBuffers presents the OpenGL back buffer. No-op for ClientAPINone windows.
	SwapBuffers()

	// Clock returns a FrameClock reading the GLFW timer.
	//
	// Returns:
	//   - clock.FrameClock: seconds since GLFW was initialized
	Clock() clock.FrameClock

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls OnUpdate callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int

	// Size returns the current framebuffer size.
	Size() common.Size
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// api is the graphics context type requested at creation.
	api ClientAPI

	// glMajor and glMinor are the requested OpenGL context version.
	glMajor, glMinor int

	// vsync sets the OpenGL swap interval to 1.
	vsync bool

	// resizable allows the user to resize the window.
	resizable bool

	// maxWidth and maxHeight bound the window size during resize, 0 for no bound.
	maxWidth, maxHeight int

	// minWidth and minHeight bound the window size during resize, 0 for no bound.
	minWidth, minHeight int

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// onUpdate is called each iteration of the message loop (if set).
	onUpdate func()

	// onResize is called when the framebuffer is resized.
	onResize func(width, height int)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
// Panics if the platform window cannot be created.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:   "oxy-demos",
		api:     ClientAPINone,
		glMajor: 4,
		glMinor: 1,
		vsync:   true,
		width:   common.DefaultSurfaceSize.Width,
		height:  common.DefaultSurfaceSize.Height,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	common.Logger().Info("window created", "title", w.title, "width", w.width, "height", w.height, "opengl", w.api == ClientAPIOpenGL)
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) ClientAPI() ClientAPI {
	return w.api
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) MakeContextCurrent() {
	if w.api == ClientAPIOpenGL {
		platformMakeContextCurrent(w)
	}
}

func (w *engineWindow) SwapBuffers() {
	if w.api == ClientAPIOpenGL {
		platformSwapBuffers(w)
	}
}

func (w *engineWindow) Clock() clock.FrameClock {
	return clock.Monotonic(clock.Func(platformTime))
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) Size() common.Size {
	return common.Size{Width: w.width, Height: w.height}
}
