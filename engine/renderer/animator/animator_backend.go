package animator

import "github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"

// AnimatorBackendType identifies the per-tick strategy used by an Animator.
type AnimatorBackendType int

const (
	// BackendTypeStatic writes nothing per tick. Static uniforms are written once at setup.
	BackendTypeStatic AnimatorBackendType = iota

	// BackendTypeTime writes the elapsed time in seconds every tick.
	BackendTypeTime

	// BackendTypeRotation writes a world matrix rotating about X and Y every tick.
	BackendTypeRotation
)

func (t AnimatorBackendType) String() string {
	switch t {
	case BackendTypeStatic:
		return "static"
	case BackendTypeTime:
		return "time"
	case BackendTypeRotation:
		return "rotation"
	}
	return "unknown"
}

// UniformWriter writes one uniform by name through the driver's cached locations.
type UniformWriter func(name string, kind backend.UniformKind, values []float32)

// AnimatorBackend recomputes the time-varying uniforms of one demo.
// Update must be a pure function of seconds so skipped ticks never desynchronize it.
type AnimatorBackend interface {
	// Type returns the strategy type.
	Type() AnimatorBackendType

	// Uniforms returns the uniform names written by Update, resolved once at setup.
	Uniforms() []string

	// Update writes the uniforms for the elapsed time.
	//
	// Parameters:
	//   - seconds: the elapsed time read from the frame clock
	//   - write: the writer for the bound program
	Update(seconds float64, write UniformWriter)
}
