package demos

import (
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/layout"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/pipeline"
)

// HelloName is the name of the solid green triangle demo.
const HelloName = "hello"

// helloColor is the fill color of the hello triangle.
var helloColor = []float32{0, 1, 0, 1}

var helloVertices = []float32{
	-0.5, -0.5,
	0.5, -0.5,
	0.0, 0.5,
}

func init() {
	register(HelloName, "a single green triangle drawn once", buildHello)
}

func buildHello(b backend.Backend, opts Options) (animator.Animator, error) {
	prog, err := compileAndLink(b, opts, HelloName, "hello", "hello")
	if err != nil {
		return nil, err
	}
	p := pipeline.NewPipeline(HelloName, prog)
	geometry := animator.Geometry{
		Vertices: helloVertices,
		Layout:   layout.NewVertexLayout(layout.WithAttribute("position", 2)),
	}
	return animator.NewAnimator(p, geometry,
		animator.WithUniform("color", backend.UniformVec4, helloColor...),
		animator.WithSingleFrame(),
	), nil
}
