package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithOpenGLContext creates the window with an OpenGL core profile context of the given version.
//
// Parameters:
//   - major: the context major version
//   - minor: the context minor version
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithOpenGLContext(major, minor int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.api = ClientAPIOpenGL
		w.glMajor = major
		w.glMinor = minor
	}
}

// WithVSync sets whether OpenGL buffer swaps wait for the vertical blank. Enabled by default.
//
// Parameters:
//   - enabled: true for a swap interval of 1
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithVSync(enabled bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.vsync = enabled
	}
}

// WithResizable lets the user resize the window within the configured limits.
//
// Parameters:
//   - resizable: whether the window can be resized
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.resizable = resizable
	}
}

// WithMaxSize sets the maximum allowed window size of a resizable window.
//
// Parameters:
//   - maxWidth: maximum width in pixels, 0 for unbounded
//   - maxHeight: maximum height in pixels, 0 for unbounded
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxSize(maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.maxWidth = maxWidth
		w.maxHeight = maxHeight
	}
}

// WithMinSize sets the minimum allowed window size of a resizable window.
//
// Parameters:
//   - minWidth: minimum width in pixels, 0 for unbounded
//   - minHeight: minimum height in pixels, 0 for unbounded
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(minWidth, minHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = minWidth
		w.minHeight = minHeight
	}
}

// WithWidth sets the initial window width.
//
// Parameters:
//   - width: initial width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight sets the initial window height.
//
// Parameters:
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}
