package program

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-demos/engine/diagnostic"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend/headless"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexWGSL = `
@group(0) @binding(0) var<uniform> u_time: f32;

@vertex
fn vs_main(@location(0) position: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position * u_time, 0.0, 1.0);
}
`

const fragmentWGSL = `
@group(0) @binding(1) var<uniform> color: vec4<f32>;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return color;
}
`

func compile(b backend.Backend, stage backend.Stage, src string, r diagnostic.Reporter) shader.ShaderUnit {
	return shader.Compile(b, shader.ShaderSource{Stage: stage, Text: src}, shader.WithReporter(r))
}

func TestLinkAndValidate(t *testing.T) {
	b := headless.NewBackend()
	r := diagnostic.NewReporter()
	p, err := Link(b,
		compile(b, backend.StageVertex, vertexWGSL, r),
		compile(b, backend.StageFragment, fragmentWGSL, r),
		WithLabel("hello"), WithReporter(r))
	require.NoError(t, err)

	assert.Equal(t, "hello", p.Label())
	assert.Equal(t, StatusSuccess, p.LinkStatus())
	assert.Equal(t, StatusSuccess, p.ValidateStatus())
	assert.True(t, p.Linked())
	assert.Empty(t, r.Reports())
}

func TestValidationIsSeparateFromLinking(t *testing.T) {
	b := headless.NewBackend(headless.WithMaxUniformBindings(1))
	r := diagnostic.NewReporter()
	p, err := Link(b,
		compile(b, backend.StageVertex, vertexWGSL, r),
		compile(b, backend.StageFragment, fragmentWGSL, r),
		WithReporter(r))
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, p.LinkStatus())
	assert.Equal(t, StatusFailed, p.ValidateStatus())
	assert.NotEmpty(t, p.ValidateLog())
	assert.Equal(t, 1, r.Count(diagnostic.KindProgramValidate))

	skipped, err := Link(b,
		compile(b, backend.StageVertex, vertexWGSL, r),
		compile(b, backend.StageFragment, fragmentWGSL, r),
		WithValidation(false), WithReporter(r))
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, skipped.ValidateStatus())
}

func TestLinkProceedsAfterCompileFailure(t *testing.T) {
	b := headless.NewBackend()
	r := diagnostic.NewReporter()
	vs := compile(b, backend.StageVertex, "fn main( {", r)
	require.Equal(t, shader.CompileStatusFailed, vs.Status())
	require.NotEmpty(t, vs.Log())

	var p Program
	var err error
	require.NotPanics(t, func() {
		p, err = Link(b, vs, compile(b, backend.StageFragment, fragmentWGSL, r), WithReporter(r))
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, p.LinkStatus())
	assert.NotEmpty(t, p.LinkLog())
	assert.False(t, p.Linked())
	assert.Equal(t, backend.NoUniform, p.UniformLocation("color"))
	assert.Equal(t, 1, r.Count(diagnostic.KindShaderCompile))
	assert.Equal(t, 1, r.Count(diagnostic.KindProgramLink))
}

func TestLinkEscalation(t *testing.T) {
	b := headless.NewBackend()
	r := diagnostic.NewReporter(diagnostic.WithEscalate(diagnostic.KindProgramLink))
	p, err := Link(b,
		compile(b, backend.StageVertex, "fn main( {", r),
		compile(b, backend.StageFragment, fragmentWGSL, r),
		WithReporter(r))
	assert.ErrorIs(t, err, diagnostic.ErrProgramLink)
	assert.NotNil(t, p)

	r = diagnostic.NewReporter(diagnostic.WithEscalate(diagnostic.KindShaderCompile))
	_, err = Link(b,
		compile(b, backend.StageVertex, "fn main( {", r),
		compile(b, backend.StageFragment, fragmentWGSL, r),
		WithReporter(r))
	assert.ErrorIs(t, err, diagnostic.ErrShaderCompile)
}

func TestLocationsAreCached(t *testing.T) {
	b := headless.NewBackend()
	r := diagnostic.NewReporter()
	p, err := Link(b,
		compile(b, backend.StageVertex, vertexWGSL, r),
		compile(b, backend.StageFragment, fragmentWGSL, r),
		WithReporter(r))
	require.NoError(t, err)

	assert.Equal(t, backend.AttributeLocation(0), p.AttributeLocation("position"))
	assert.True(t, p.UniformLocation("color").Valid())
	assert.Equal(t, backend.NoAttribute, p.AttributeLocation("vertColor"))
	assert.Equal(t, backend.NoAttribute, p.AttributeLocation("vertColor"))
	assert.Equal(t, 1, r.Count(diagnostic.KindUnresolvedBinding), "unresolved names are reported once")
}

func TestUnresolvedWritesAreNoOps(t *testing.T) {
	b := headless.NewBackend()
	p, err := Link(b,
		compile(b, backend.StageVertex, vertexWGSL, nil),
		compile(b, backend.StageFragment, fragmentWGSL, nil))
	require.NoError(t, err)

	loc := p.UniformLocation("mWorld")
	require.Equal(t, backend.NoUniform, loc)
	assert.NotPanics(t, func() {
		p.SetUniform(loc, backend.UniformMat4, make([]float32, 16))
	})

	color := p.UniformLocation("color")
	p.SetUniform(color, backend.UniformVec4, []float32{0, 1, 0, 1})
	got, ok := b.UniformValue(p.Handle(), color)
	require.True(t, ok)
	assert.Equal(t, []float32{0, 1, 0, 1}, got)
	_, ok = b.UniformValue(p.Handle(), loc)
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	b := headless.NewBackend()
	r := diagnostic.NewReporter(diagnostic.WithEscalate(diagnostic.KindUnresolvedBinding))
	p, err := Link(b,
		compile(b, backend.StageVertex, vertexWGSL, r),
		compile(b, backend.StageFragment, fragmentWGSL, r),
		WithReporter(r))
	require.NoError(t, err)

	assert.NoError(t, p.Resolve([]string{"position"}, []string{"u_time", "color"}))
	err = p.Resolve([]string{"vertColor"}, []string{"mView"})
	assert.ErrorIs(t, err, diagnostic.ErrUnresolvedBinding)
}

func TestRelease(t *testing.T) {
	b := headless.NewBackend()
	p, err := Link(b,
		compile(b, backend.StageVertex, vertexWGSL, nil),
		compile(b, backend.StageFragment, fragmentWGSL, nil))
	require.NoError(t, err)
	require.True(t, p.UniformLocation("color").Valid())

	p.Release()
	assert.False(t, p.Linked())
	assert.Zero(t, p.Handle())
	assert.Equal(t, backend.NoUniform, p.UniformLocation("color"))
	assert.Zero(t, p.Vertex().Handle())
	assert.Zero(t, p.Fragment().Handle())
}
