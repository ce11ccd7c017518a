package demos

import (
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/layout"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/pipeline"
)

// ColoredTriangleName is the name of the per-vertex color triangle demo.
const ColoredTriangleName = "colored-triangle"

// coloredTriangleVertices interleaves position (x, y) and color (r, g, b).
var coloredTriangleVertices = []float32{
	0.0, 0.5, 1.0, 1.0, 0.0,
	-0.5, -0.5, 0.7, 0.0, 1.0,
	0.5, -0.5, 0.1, 1.0, 0.6,
}

func init() {
	register(ColoredTriangleName, "a triangle interpolating one color per vertex, drawn once", buildColoredTriangle)
}

func buildColoredTriangle(b backend.Backend, opts Options) (animator.Animator, error) {
	prog, err := compileAndLink(b, opts, ColoredTriangleName, "colored_triangle", "colored_triangle")
	if err != nil {
		return nil, err
	}
	p := pipeline.NewPipeline(ColoredTriangleName, prog)
	geometry := animator.Geometry{
		Vertices: coloredTriangleVertices,
		Layout: layout.NewVertexLayout(
			layout.WithAttribute("vertPosition", 2),
			layout.WithAttribute("vertColor", 3),
		),
	}
	return animator.NewAnimator(p, geometry, animator.WithSingleFrame()), nil
}
