package demos

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine"
	"github.com/Carmen-Shannon/oxy-demos/engine/camera"
	"github.com/Carmen-Shannon/oxy-demos/engine/clock"
	"github.com/Carmen-Shannon/oxy-demos/engine/diagnostic"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend/headless"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// launch starts a demo on a fresh headless backend driven by a manual clock.
func launch(t *testing.T, name string, opts Options) (headless.Backend, engine.Engine, animator.Animator) {
	t.Helper()
	d, ok := Lookup(name)
	require.True(t, ok, name)

	b := headless.NewBackend(headless.WithSurfaceSize(opts.size()))
	e := engine.NewEngine(b, engine.WithClock(clock.NewManualClock()))
	a, err := Launch(d, e, opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		release(a)
		b.Release()
	})
	return b, e, a
}

func uniformValue(t *testing.T, b headless.Backend, a animator.Animator, name string) []float32 {
	t.Helper()
	loc := a.UniformLocation(name)
	require.True(t, loc.Valid(), name)
	v, ok := b.UniformValue(a.Pipeline().Program().Handle(), loc)
	require.True(t, ok, name)
	return v
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{ColoredTriangleName, CubeName, HelloName, RandomDotsName, RandomMatrixName}, Names())

	all := All()
	require.Len(t, all, 5)
	for i, d := range all {
		assert.Equal(t, Names()[i], d.Name())
		assert.NotEmpty(t, d.Description())
	}

	_, ok := Lookup("teapot")
	assert.False(t, ok)
}

func TestSingleFrameDemosDrawOnce(t *testing.T) {
	for _, name := range []string{HelloName, ColoredTriangleName} {
		t.Run(name, func(t *testing.T) {
			b, e, a := launch(t, name, Options{Validate: true})

			assert.Equal(t, 1, e.RunFrames(10, 16*time.Millisecond))
			assert.Equal(t, 0, e.Pending())
			assert.Equal(t, 1, a.Frames())
			assert.Equal(t, animator.StateRunning, a.State())

			draws := b.Draws()
			require.Len(t, draws, 1)
			assert.False(t, draws[0].Command.Indexed())
			assert.Equal(t, 3, draws[0].Command.Count)
			assert.Equal(t, common.DefaultClearColor, draws[0].State.ClearColor)
			assert.False(t, draws[0].State.DepthTest)
			assert.Equal(t, program.StatusSuccess, a.Pipeline().Program().ValidateStatus())
		})
	}
}

func TestHelloWritesColor(t *testing.T) {
	b, e, a := launch(t, HelloName, Options{})
	e.RunFrames(1, 0)

	assert.Equal(t, helloColor, uniformValue(t, b, a, "color"))
	assert.Equal(t, program.StatusSkipped, a.Pipeline().Program().ValidateStatus())
}

func TestColoredTriangleAttributes(t *testing.T) {
	b, _, a := launch(t, ColoredTriangleName, Options{})
	prog := a.Pipeline().Program()

	color, ok := b.FetchAttribute(prog.Handle(), prog.AttributeLocation("vertColor"), 1)
	require.True(t, ok)
	assert.Equal(t, []float32{0.7, 0.0, 1.0}, color)

	position, ok := b.FetchAttribute(prog.Handle(), prog.AttributeLocation("vertPosition"), 2)
	require.True(t, ok)
	assert.Equal(t, []float32{0.5, -0.5}, position)
}

func TestFullscreenDemosAnimateTime(t *testing.T) {
	size := common.Size{Width: 800, Height: 600}
	tests := []struct {
		name        string
		sizeUniform string
	}{
		{RandomMatrixName, "u_canvas_size"},
		{RandomDotsName, "u_resolution"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, e, a := launch(t, tt.name, Options{Size: size})

			assert.Equal(t, 4, e.RunFrames(4, 250*time.Millisecond))
			assert.Equal(t, 1, e.Pending())

			draws := b.Draws()
			require.Len(t, draws, 4)
			for i, d := range draws {
				assert.Equal(t, i, d.Frame)
				assert.True(t, d.Command.Indexed())
				assert.Equal(t, 6, d.Command.Count)
			}
			assert.InDeltaSlice(t, []float32{1.0}, uniformValue(t, b, a, animator.DefaultTimeUniform), 1e-6)
			assert.Equal(t, []float32{800, 600}, uniformValue(t, b, a, tt.sizeUniform))
			assert.InDelta(t, 1.0, a.LastTime(), 1e-9)
		})
	}
}

func TestCubeRotates(t *testing.T) {
	period := 4 * time.Second
	b, e, a := launch(t, CubeName, Options{Period: period})

	assert.Equal(t, 3, e.RunFrames(3, 100*time.Millisecond))
	draws := b.Draws()
	require.Len(t, draws, 3)
	last := draws[2]
	assert.Equal(t, 36, last.Command.Count)
	assert.True(t, last.State.DepthTest)
	assert.Equal(t, backend.CullBack, last.State.CullMode)
	assert.Equal(t, backend.FrontFaceCCW, last.State.FrontFace)

	world := animator.RotationWorld(0.3, period)
	assert.InDeltaSlice(t, world[:], uniformValue(t, b, a, "mWorld"), 1e-5)

	rotation, ok := a.Backend().(animator.RotationAnimatorBackend)
	require.True(t, ok)
	assert.Equal(t, period, rotation.Period())
	assert.InDelta(t, animator.RotationAngle(0.3, period), rotation.Angle(), 1e-6)
}

func TestCubeStaticMatrices(t *testing.T) {
	b, _, a := launch(t, CubeName, Options{})

	cam := camera.NewCamera()
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()
	assert.Equal(t, view[:], uniformValue(t, b, a, "mView"))
	assert.Equal(t, proj[:], uniformValue(t, b, a, "mProj"))

	rotation := a.Backend().(animator.RotationAnimatorBackend)
	assert.Equal(t, animator.DefaultRotationPeriod, rotation.Period())
}

func TestCubeGeometry(t *testing.T) {
	require.Len(t, cubeVertices, 24*6)
	require.Len(t, cubeIndices, 36)
	for _, i := range cubeIndices {
		assert.Less(t, int(i), 24)
	}

	b, _, a := launch(t, CubeName, Options{})
	prog := a.Pipeline().Program()
	color, ok := b.FetchAttribute(prog.Handle(), prog.AttributeLocation("vertColor"), 12)
	require.True(t, ok)
	assert.Equal(t, []float32{1.0, 0.0, 0.15}, color)
}

func TestLaunchSharesReporter(t *testing.T) {
	r := diagnostic.NewReporter()
	for _, name := range Names() {
		_, _, _ = launch(t, name, Options{Validate: true, Reporter: r})
	}
	assert.Empty(t, r.Reports())
}

func TestStopKeepsLastImage(t *testing.T) {
	b, e, a := launch(t, RandomMatrixName, Options{})
	require.Equal(t, 2, e.RunFrames(2, 16*time.Millisecond))

	a.Stop()
	// The tick requested before Stop still drains, without drawing or re-requesting.
	assert.Equal(t, 1, e.RunFrames(5, 16*time.Millisecond))
	assert.Equal(t, 0, e.Pending())
	assert.Len(t, b.Draws(), 2)
	assert.Equal(t, 2, a.Frames())
	assert.Equal(t, animator.StateReady, a.State())
}

func TestRunBatch(t *testing.T) {
	results := RunBatch(All(), BatchConfig{
		Options: Options{Validate: true},
		Frames:  10,
		Workers: 2,
	})
	require.Len(t, results, 5)

	byName := make(map[string]BatchResult, len(results))
	for i, res := range results {
		assert.Equal(t, Names()[i], res.Name)
		assert.NoError(t, res.Err)
		assert.Empty(t, res.Diagnostics)
		byName[res.Name] = res
	}
	assert.Equal(t, 1, byName[HelloName].Frames)
	assert.Equal(t, 1, byName[ColoredTriangleName].Draws)
	assert.Equal(t, 10, byName[CubeName].Frames)
	assert.Equal(t, 10, byName[RandomMatrixName].Draws)
	assert.Equal(t, 10, byName[RandomDotsName].Draws)
}

func TestRunBatchEmpty(t *testing.T) {
	assert.Empty(t, RunBatch(nil, BatchConfig{Frames: 1}))
}
