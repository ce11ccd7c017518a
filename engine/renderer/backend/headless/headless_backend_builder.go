package headless

import "github.com/Carmen-Shannon/oxy-demos/common"

// HeadlessBackendBuilderOption is a functional option for configuring the headless backend.
type HeadlessBackendBuilderOption func(b *headlessBackend)

// WithSurfaceSize sets the simulated surface size.
//
// Parameters:
//   - size: the surface size in pixels
//
// Returns:
//   - HeadlessBackendBuilderOption: option function to apply
func WithSurfaceSize(size common.Size) HeadlessBackendBuilderOption {
	return func(b *headlessBackend) {
		b.size = size
	}
}

// WithMaxVertexAttributes sets the vertex attribute limit checked by ValidateProgram.
//
// Parameters:
//   - n: the highest number of vertex inputs (and the exclusive location bound)
//
// Returns:
//   - HeadlessBackendBuilderOption: option function to apply
func WithMaxVertexAttributes(n int) HeadlessBackendBuilderOption {
	return func(b *headlessBackend) {
		b.maxVertexAttributes = n
	}
}

// WithMaxUniformBindings sets the uniform binding limit checked by ValidateProgram.
//
// Parameters:
//   - n: the highest number of distinct uniforms per program
//
// Returns:
//   - HeadlessBackendBuilderOption: option function to apply
func WithMaxUniformBindings(n int) HeadlessBackendBuilderOption {
	return func(b *headlessBackend) {
		b.maxUniformBindings = n
	}
}
