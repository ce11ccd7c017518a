package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	assert.Equal(t, mgl32.Vec3{0, 0, -6}, c.Position())
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, c.Target())
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, c.Up())
	assert.InDelta(t, math.Pi/4, c.Fov(), 1e-6)
	assert.Equal(t, float32(1), c.Aspect())
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(1000), c.Far())

	view := mgl32.Mat4(c.ViewMatrix())
	assert.True(t, view.ApproxEqual(mgl32.LookAtV(mgl32.Vec3{0, 0, -6}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})))

	// The origin sits 6 units in front of the eye.
	eyeSpace := view.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -6, eyeSpace.Z(), 1e-5)
}

func TestCameraProjection(t *testing.T) {
	size := common.Size{Width: 800, Height: 400}
	gl := NewCamera(WithAspect(size.Aspect()))
	wgpu := NewCamera(WithAspect(size.Aspect()), WithZeroToOneDepth(true))

	glProj := mgl32.Mat4(gl.ProjectionMatrix())
	assert.True(t, glProj.ApproxEqual(mgl32.Perspective(mgl32.DegToRad(45), 2, 0.1, 1000)))

	// A point on the near plane lands at depth -1 for OpenGL and 0 for WebGPU.
	near := mgl32.Vec4{0, 0, -0.1, 1}
	glClip := glProj.Mul4x1(near)
	wgpuClip := mgl32.Mat4(wgpu.ProjectionMatrix()).Mul4x1(near)
	assert.InDelta(t, -1, glClip.Z()/glClip.W(), 1e-4)
	assert.InDelta(t, 0, wgpuClip.Z()/wgpuClip.W(), 1e-4)
}

func TestCameraViewProjection(t *testing.T) {
	c := NewCamera(WithPosition(0, 2, 5), WithTarget(0, 0, 0), WithFov(mgl32.DegToRad(60)), WithNear(1), WithFar(50))
	vp := mgl32.Mat4(c.ViewProjectionMatrix())
	expected := mgl32.Mat4(c.ProjectionMatrix()).Mul4(mgl32.Mat4(c.ViewMatrix()))
	assert.Equal(t, expected, vp)
}
