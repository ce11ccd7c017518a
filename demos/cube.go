package demos

import (
	"github.com/Carmen-Shannon/oxy-demos/engine/camera"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/layout"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/pipeline"
)

// CubeName is the name of the rotating cube demo.
const CubeName = "cube"

// cubeVertices holds four vertices per face: position (x, y, z) then color (r, g, b).
var cubeVertices = []float32{
	// top
	-1.0, 1.0, -1.0, 0.5, 0.5, 0.5,
	-1.0, 1.0, 1.0, 0.5, 0.5, 0.5,
	1.0, 1.0, 1.0, 0.5, 0.5, 0.5,
	1.0, 1.0, -1.0, 0.5, 0.5, 0.5,

	// left
	-1.0, 1.0, 1.0, 0.75, 0.25, 0.5,
	-1.0, -1.0, 1.0, 0.75, 0.25, 0.5,
	-1.0, -1.0, -1.0, 0.75, 0.25, 0.5,
	-1.0, 1.0, -1.0, 0.75, 0.25, 0.5,

	// right
	1.0, 1.0, 1.0, 0.25, 0.25, 0.75,
	1.0, -1.0, 1.0, 0.25, 0.25, 0.75,
	1.0, -1.0, -1.0, 0.25, 0.25, 0.75,
	1.0, 1.0, -1.0, 0.25, 0.25, 0.75,

	// front
	1.0, 1.0, 1.0, 1.0, 0.0, 0.15,
	1.0, -1.0, 1.0, 1.0, 0.0, 0.15,
	-1.0, -1.0, 1.0, 1.0, 0.0, 0.15,
	-1.0, 1.0, 1.0, 1.0, 0.0, 0.15,

	// back
	1.0, 1.0, -1.0, 0.0, 1.0, 0.15,
	1.0, -1.0, -1.0, 0.0, 1.0, 0.15,
	-1.0, -1.0, -1.0, 0.0, 1.0, 0.15,
	-1.0, 1.0, -1.0, 0.0, 1.0, 0.15,

	// bottom
	-1.0, -1.0, -1.0, 0.5, 0.5, 1.0,
	-1.0, -1.0, 1.0, 0.5, 0.5, 1.0,
	1.0, -1.0, 1.0, 0.5, 0.5, 1.0,
	1.0, -1.0, -1.0, 0.5, 0.5, 1.0,
}

var cubeIndices = []uint16{
	0, 1, 2, 0, 2, 3, // top
	5, 4, 6, 6, 4, 7, // left
	8, 9, 10, 8, 10, 11, // right
	13, 12, 14, 15, 14, 12, // front
	16, 17, 18, 16, 18, 19, // back
	21, 20, 22, 22, 20, 23, // bottom
}

func init() {
	register(CubeName, "a depth-tested cube spinning about X and, at half speed, Y", buildCube)
}

// cubeCamera returns the fixed camera the cube is viewed through.
// WebGPU clips depth to [0, 1]; the other backends use the OpenGL [-1, 1] range.
func cubeCamera(b backend.Backend, opts Options) camera.Camera {
	return camera.NewCamera(
		camera.WithAspect(opts.size().Aspect()),
		camera.WithZeroToOneDepth(b.Type() == backend.BackendTypeWGPU),
	)
}

func buildCube(b backend.Backend, opts Options) (animator.Animator, error) {
	prog, err := compileAndLink(b, opts, CubeName, "cube", "cube")
	if err != nil {
		return nil, err
	}
	p := pipeline.NewPipeline(CubeName, prog,
		pipeline.WithDepthTestEnabled(true),
		pipeline.WithCullMode(backend.CullBack),
		pipeline.WithFrontFace(backend.FrontFaceCCW),
	)
	geometry := animator.Geometry{
		Vertices: cubeVertices,
		Indices:  cubeIndices,
		Layout: layout.NewVertexLayout(
			layout.WithAttribute("vertPosition", 3),
			layout.WithAttribute("vertColor", 3),
		),
	}
	cam := cubeCamera(b, opts)
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()
	return animator.NewAnimator(p, geometry,
		animator.WithBackend(animator.NewRotationAnimatorBackend(
			animator.WithPeriod(opts.period()),
			animator.WithWorldUniform(animator.DefaultWorldUniform),
		)),
		animator.WithUniform("mView", backend.UniformMat4, view[:]...),
		animator.WithUniform("mProj", backend.UniformMat4, proj[:]...),
	), nil
}
