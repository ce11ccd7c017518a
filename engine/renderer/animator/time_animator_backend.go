package animator

import "github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"

// DefaultTimeUniform is the uniform the time strategy writes unless configured otherwise.
const DefaultTimeUniform = "u_time"

// timeAnimatorBackend writes the elapsed seconds to a float uniform.
type timeAnimatorBackend struct {
	uniform string
	last    float32
}

// TimeAnimatorBackend is the time strategy. It exposes the last value it wrote.
type TimeAnimatorBackend interface {
	AnimatorBackend

	// Seconds returns the value written by the last Update.
	Seconds() float32
}

var _ TimeAnimatorBackend = &timeAnimatorBackend{}

// NewTimeAnimatorBackend creates a strategy writing elapsed seconds each tick.
//
// Parameters:
//   - uniform: the float uniform to write, DefaultTimeUniform when empty
//
// Returns:
//   - TimeAnimatorBackend: the time strategy
func NewTimeAnimatorBackend(uniform string) TimeAnimatorBackend {
	if uniform == "" {
		uniform = DefaultTimeUniform
	}
	return &timeAnimatorBackend{uniform: uniform}
}

func (s *timeAnimatorBackend) Type() AnimatorBackendType {
	return BackendTypeTime
}

func (s *timeAnimatorBackend) Uniforms() []string {
	return []string{s.uniform}
}

func (s *timeAnimatorBackend) Update(seconds float64, write UniformWriter) {
	s.last = float32(seconds)
	write(s.uniform, backend.UniformFloat, []float32{s.last})
}

func (s *timeAnimatorBackend) Seconds() float32 {
	return s.last
}
