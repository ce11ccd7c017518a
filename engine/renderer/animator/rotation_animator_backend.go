package animator

import (
	"time"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultRotationPeriod is the time of one full turn about the X axis.
	DefaultRotationPeriod = 6 * time.Second

	// DefaultWorldUniform is the matrix uniform the rotation strategy writes.
	DefaultWorldUniform = "mWorld"
)

// RotationAngle returns the X axis angle in radians after seconds of elapsed time.
//
// Parameters:
//   - seconds: elapsed time
//   - period: the duration of one full turn; non-positive periods yield 0
//
// Returns:
//   - float32: angle = seconds / period * 2π
func RotationAngle(seconds float64, period time.Duration) float32 {
	if period <= 0 {
		return 0
	}
	return common.TurnsToRadians(seconds / period.Seconds())
}

// RotationWorld returns the world matrix rotationX(angle) × rotationY(angle/2) for an
// elapsed time. It depends on nothing but its arguments.
//
// Parameters:
//   - seconds: elapsed time
//   - period: the duration of one full turn about X
//
// Returns:
//   - mgl32.Mat4: the column-major world matrix
func RotationWorld(seconds float64, period time.Duration) mgl32.Mat4 {
	angle := RotationAngle(seconds, period)
	return common.RotationXY(angle, angle/2)
}

// rotationAnimatorBackend writes the rotating world matrix each tick.
type rotationAnimatorBackend struct {
	period  time.Duration
	uniform string

	angle float32
	world mgl32.Mat4
}

// RotationAnimatorBackend is the rotation strategy. Its per-tick state can be inspected.
type RotationAnimatorBackend interface {
	AnimatorBackend

	// Period returns the duration of one full turn about X.
	Period() time.Duration

	// Angle returns the X axis angle computed by the last Update.
	Angle() float32

	// World returns the world matrix written by the last Update, identity before the first.
	World() mgl32.Mat4
}

var _ RotationAnimatorBackend = &rotationAnimatorBackend{}

// NewRotationAnimatorBackend creates the rotation strategy.
//
// Parameters:
//   - options: functional options for period and uniform name
//
// Returns:
//   - RotationAnimatorBackend: the rotation strategy
func NewRotationAnimatorBackend(options ...RotationBuilderOption) RotationAnimatorBackend {
	r := &rotationAnimatorBackend{
		period:  DefaultRotationPeriod,
		uniform: DefaultWorldUniform,
		world:   mgl32.Ident4(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *rotationAnimatorBackend) Type() AnimatorBackendType {
	return BackendTypeRotation
}

func (r *rotationAnimatorBackend) Uniforms() []string {
	return []string{r.uniform}
}

func (r *rotationAnimatorBackend) Update(seconds float64, write UniformWriter) {
	r.angle = RotationAngle(seconds, r.period)
	r.world = common.RotationXY(r.angle, r.angle/2)
	write(r.uniform, backend.UniformMat4, r.world[:])
}

func (r *rotationAnimatorBackend) Period() time.Duration {
	return r.period
}

func (r *rotationAnimatorBackend) Angle() float32 {
	return r.angle
}

func (r *rotationAnimatorBackend) World() mgl32.Mat4 {
	return r.world
}
