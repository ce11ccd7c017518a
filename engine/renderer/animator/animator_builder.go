package animator

import (
	"time"

	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
)

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithLabel sets the name the animator logs under. Defaults to the pipeline key.
//
// Parameters:
//   - label: the animator label
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the label
func WithLabel(label string) AnimatorBuilderOption {
	return func(a *animator) {
		a.label = label
	}
}

// WithBackend sets the per-tick strategy. Defaults to the static strategy.
//
// Parameters:
//   - b: the strategy
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the strategy
func WithBackend(b AnimatorBackend) AnimatorBuilderOption {
	return func(a *animator) {
		a.backend = b
	}
}

// WithUniform adds a uniform written once during Setup, such as a view matrix or a color.
//
// Parameters:
//   - name: the uniform name
//   - kind: the value shape
//   - values: kind.Components() floats, column-major for matrices
//
// Returns:
//   - AnimatorBuilderOption: a function that adds the static uniform
func WithUniform(name string, kind backend.UniformKind, values ...float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.static = append(a.static, UniformValue{Name: name, Kind: kind, Values: values})
	}
}

// WithSingleFrame makes the animator draw on its first tick only and request no further ticks.
//
// Returns:
//   - AnimatorBuilderOption: a function that enables single frame mode
func WithSingleFrame() AnimatorBuilderOption {
	return func(a *animator) {
		a.singleFrame = true
	}
}

// RotationBuilderOption is a functional option for configuring the rotation strategy.
type RotationBuilderOption func(*rotationAnimatorBackend)

// WithPeriod sets the duration of one full turn about X.
//
// Parameters:
//   - period: the rotation period
//
// Returns:
//   - RotationBuilderOption: a function that applies the period
func WithPeriod(period time.Duration) RotationBuilderOption {
	return func(r *rotationAnimatorBackend) {
		r.period = period
	}
}

// WithWorldUniform sets the matrix uniform the rotation is written to.
//
// Parameters:
//   - name: the uniform name, DefaultWorldUniform by default
//
// Returns:
//   - RotationBuilderOption: a function that applies the uniform name
func WithWorldUniform(name string) RotationBuilderOption {
	return func(r *rotationAnimatorBackend) {
		r.uniform = name
	}
}
