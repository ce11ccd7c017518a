package headless

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexWGSL = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
}

@group(0) @binding(0) var<uniform> mWorld: mat4x4<f32>;

@vertex
fn vs_main(@location(0) vertPosition: vec2<f32>, @location(1) vertColor: vec3<f32>) -> VertexOutput {
    var output: VertexOutput;
    output.position = mWorld * vec4<f32>(vertPosition, 0.0, 1.0);
    output.color = vertColor;
    return output;
}
`

const fragmentWGSL = `
@fragment
fn fs_main(@location(0) color: vec3<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(color, 1.0);
}
`

const mismatchedFragmentWGSL = `
@fragment
fn fs_main(@location(3) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(uv, 0.0, 1.0);
}
`

func linked(t *testing.T, b Backend) backend.ProgramHandle {
	t.Helper()
	vs, st := b.CompileShader(backend.StageVertex, vertexWGSL)
	require.True(t, st.OK, st.Log)
	fs, st := b.CompileShader(backend.StageFragment, fragmentWGSL)
	require.True(t, st.OK, st.Log)
	p, st := b.LinkProgram(vs, fs)
	require.True(t, st.OK, st.Log)
	return p
}

func TestCompileShader(t *testing.T) {
	tests := []struct {
		name   string
		stage  backend.Stage
		source string
		ok     bool
	}{
		{name: "vertex", stage: backend.StageVertex, source: vertexWGSL, ok: true},
		{name: "fragment", stage: backend.StageFragment, source: fragmentWGSL, ok: true},
		{name: "syntax error", stage: backend.StageVertex, source: "fn main( {"},
		{name: "wrong stage", stage: backend.StageVertex, source: fragmentWGSL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBackend()
			h, st := b.CompileShader(tt.stage, tt.source)
			assert.NotZero(t, h)
			assert.Equal(t, tt.ok, st.OK)
			if !tt.ok {
				assert.NotEmpty(t, st.Log)
			}
		})
	}
}

func TestLinkProgramFailures(t *testing.T) {
	b := NewBackend()
	vs, _ := b.CompileShader(backend.StageVertex, vertexWGSL)
	bad, _ := b.CompileShader(backend.StageFragment, "fn main( {")
	mismatched, _ := b.CompileShader(backend.StageFragment, mismatchedFragmentWGSL)

	p, st := b.LinkProgram(vs, bad)
	assert.NotZero(t, p)
	assert.False(t, st.OK)
	assert.Contains(t, st.Log, "fragment shader is not compiled")
	assert.Equal(t, backend.NoAttribute, b.AttributeLocation(p, "vertPosition"))

	_, st = b.LinkProgram(vs, mismatched)
	assert.False(t, st.OK)
	assert.Contains(t, st.Log, "location 3")

	_, st = b.LinkProgram(vs, vs)
	assert.False(t, st.OK)
	assert.Contains(t, st.Log, "no fragment shader attached")

	assert.False(t, b.ValidateProgram(p).OK)
}

func TestValidateProgramLimits(t *testing.T) {
	b := NewBackend()
	p := linked(t, b)
	assert.True(t, b.ValidateProgram(p).OK)

	strict := NewBackend(WithMaxVertexAttributes(1))
	p = linked(t, strict)
	st := strict.ValidateProgram(p)
	assert.False(t, st.OK)
	assert.Contains(t, st.Log, "vertColor")
}

func TestLocations(t *testing.T) {
	b := NewBackend()
	p := linked(t, b)

	assert.Equal(t, backend.AttributeLocation(0), b.AttributeLocation(p, "vertPosition"))
	assert.Equal(t, backend.AttributeLocation(1), b.AttributeLocation(p, "vertColor"))
	assert.Equal(t, backend.NoAttribute, b.AttributeLocation(p, "vertNormal"))
	assert.Equal(t, backend.UniformLocation(0), b.UniformLocation(p, "mWorld"))
	assert.Equal(t, backend.NoUniform, b.UniformLocation(p, "mView"))
}

func TestUniformWrites(t *testing.T) {
	b := NewBackend()
	p := linked(t, b)
	loc := b.UniformLocation(p, "mWorld")

	ident := make([]float32, 16)
	ident[0], ident[5], ident[10], ident[15] = 1, 1, 1, 1
	b.SetUniform(p, loc, backend.UniformMat4, ident)
	got, ok := b.UniformValue(p, loc)
	require.True(t, ok)
	assert.Equal(t, ident, got)

	// Wrong kind and short writes leave the stored value untouched.
	b.SetUniform(p, loc, backend.UniformVec4, []float32{9, 9, 9, 9})
	b.SetUniform(p, loc, backend.UniformMat4, []float32{1})
	got, _ = b.UniformValue(p, loc)
	assert.Equal(t, ident, got)

	assert.NotPanics(t, func() {
		b.SetUniform(p, backend.NoUniform, backend.UniformMat4, ident)
	})
	_, ok = b.UniformValue(p, backend.NoUniform)
	assert.False(t, ok)
}

func TestFetchAttribute(t *testing.T) {
	b := NewBackend()
	p := linked(t, b)
	data := []float32{
		0.0, 0.5, 1.0, 1.0, 0.0,
		-0.5, -0.5, 0.7, 0.0, 1.0,
		0.5, -0.5, 0.1, 1.0, 0.6,
	}
	buf, err := b.CreateBuffer(backend.BufferKindVertex, common.SliceToBytes(data))
	require.NoError(t, err)

	pos := b.AttributeLocation(p, "vertPosition")
	col := b.AttributeLocation(p, "vertColor")
	b.BindAttribute(p, pos, buf, backend.VertexAttribute{Components: 2, StrideBytes: 20, OffsetBytes: 0})
	b.BindAttribute(p, col, buf, backend.VertexAttribute{Components: 3, StrideBytes: 20, OffsetBytes: 8})

	v, ok := b.FetchAttribute(p, col, 2)
	require.True(t, ok)
	assert.Equal(t, []float32{0.1, 1.0, 0.6}, v)

	_, ok = b.FetchAttribute(p, pos, 3)
	assert.False(t, ok)
	_, ok = b.FetchAttribute(p, backend.NoAttribute, 0)
	assert.False(t, ok)
}

func TestCreateBufferCopiesPayload(t *testing.T) {
	b := NewBackend()
	payload := []byte{1, 2, 3, 4}
	h, err := b.CreateBuffer(backend.BufferKindIndex, payload)
	require.NoError(t, err)
	payload[0] = 9

	got, ok := b.ReadBuffer(h)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)

	_, err = b.CreateBuffer(backend.BufferKindVertex, nil)
	assert.Error(t, err)

	b.DeleteBuffer(h)
	_, ok = b.ReadBuffer(h)
	assert.False(t, ok)
}

func TestFrameLifecycle(t *testing.T) {
	b := NewBackend()
	p := linked(t, b)
	data := common.SliceToBytes([]float32{0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 0, 0, 1, 1, 1})
	buf, err := b.CreateBuffer(backend.BufferKindVertex, data)
	require.NoError(t, err)
	b.BindAttribute(p, 0, buf, backend.VertexAttribute{Components: 2, StrideBytes: 20})
	idx, err := b.CreateBuffer(backend.BufferKindIndex, common.SliceToBytes([]uint16{0, 1, 2}))
	require.NoError(t, err)

	b.Draw(p, backend.DrawCommand{Count: 3})
	assert.Empty(t, b.Draws(), "draws outside a frame are dropped")

	state := backend.RenderState{ClearColor: common.DefaultClearColor, DepthTest: true}
	require.NoError(t, b.BeginFrame(state))
	assert.ErrorIs(t, b.BeginFrame(state), ErrFrameInProgress)
	b.Draw(p, backend.DrawCommand{Count: 3})
	b.Draw(p, backend.DrawCommand{Count: 3, IndexType: backend.IndexUint16, IndexBuffer: idx})
	b.Draw(p, backend.DrawCommand{Count: 4})
	b.Draw(p, backend.DrawCommand{Count: 6, IndexType: backend.IndexUint16, IndexBuffer: idx})
	b.EndFrame()

	draws := b.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, 0, draws[0].Frame)
	assert.Equal(t, state, draws[0].State)
	assert.True(t, draws[1].Command.Indexed())
	assert.Equal(t, 1, b.Frames())
}

func TestResizeAndRelease(t *testing.T) {
	b := NewBackend(WithSurfaceSize(common.Size{Width: 640, Height: 480}))
	assert.Equal(t, common.Size{Width: 640, Height: 480}, b.Size())
	b.Resize(800, 600)
	assert.Equal(t, common.Size{Width: 800, Height: 600}, b.Size())

	p := linked(t, b)
	b.Release()
	assert.Equal(t, backend.NoUniform, b.UniformLocation(p, "mWorld"))
}
