package demos

import (
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/layout"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/pipeline"
)

const (
	// RandomMatrixName is the name of the flickering noise grid demo.
	RandomMatrixName = "random-matrix"

	// RandomDotsName is the name of the pulsing dot grid demo.
	RandomDotsName = "random-dots"
)

// quadVertices is a full-surface quad in clip space.
var quadVertices = []float32{
	-1.0, 1.0,
	1.0, 1.0,
	1.0, -1.0,
	-1.0, -1.0,
}

var quadIndices = []uint16{0, 1, 2, 0, 2, 3}

func init() {
	register(RandomMatrixName, "a 20x20 grid of gray cells re-randomized twice a second", func(b backend.Backend, opts Options) (animator.Animator, error) {
		return buildFullscreen(b, opts, RandomMatrixName, "random_matrix", "u_canvas_size")
	})
	register(RandomDotsName, "a grid of colored dots whose radius pulses over time", func(b backend.Backend, opts Options) (animator.Animator, error) {
		return buildFullscreen(b, opts, RandomDotsName, "random_dots", "u_resolution")
	})
}

// buildFullscreen builds a demo drawing a fragment shader over the full-surface quad.
// The fragment shader reads the surface size from sizeUniform and seconds from u_time.
func buildFullscreen(b backend.Backend, opts Options, name, fragment, sizeUniform string) (animator.Animator, error) {
	prog, err := compileAndLink(b, opts, name, "quad", fragment)
	if err != nil {
		return nil, err
	}
	p := pipeline.NewPipeline(name, prog)
	geometry := animator.Geometry{
		Vertices: quadVertices,
		Indices:  quadIndices,
		Layout:   layout.NewVertexLayout(layout.WithAttribute("vertex", 2)),
	}
	size := opts.size()
	return animator.NewAnimator(p, geometry,
		animator.WithBackend(animator.NewTimeAnimatorBackend(animator.DefaultTimeUniform)),
		animator.WithUniform(sizeUniform, backend.UniformVec2, float32(size.Width), float32(size.Height)),
	), nil
}
