// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Color is a linear RGBA color with components in [0, 1].
type Color [4]float32

// DefaultClearColor is the dark blue every demo clears its surface to.
var DefaultClearColor = Color{0.11, 0.11, 0.22, 1.0}

// Size is a surface size in pixels.
type Size struct {
	// Width is the horizontal extent in pixels.
	Width int

	// Height is the vertical extent in pixels.
	Height int
}

// Aspect returns Width/Height, or 1 when Height is zero.
func (s Size) Aspect() float32 {
	if s.Height == 0 {
		return 1
	}
	return float32(s.Width) / float32(s.Height)
}

// DefaultSurfaceSize is the 500x500 surface every demo targets.
var DefaultSurfaceSize = Size{Width: 500, Height: 500}
