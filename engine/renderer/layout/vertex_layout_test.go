package layout

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-demos/engine/diagnostic"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend/headless"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexWGSL = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
};

@vertex
fn vs_main(@location(0) vertPosition: vec2<f32>, @location(1) vertColor: vec3<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(vertPosition, 0.0, 1.0);
    out.color = vertColor;
    return out;
}
`

const fragmentWGSL = `
@fragment
fn fs_main(@location(0) color: vec3<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(color, 1.0);
}
`

func link(t *testing.T, b backend.Backend) program.Program {
	t.Helper()
	r := diagnostic.NewReporter()
	p, err := program.Link(b,
		shader.Compile(b, shader.ShaderSource{Stage: backend.StageVertex, Text: vertexWGSL}, shader.WithReporter(r)),
		shader.Compile(b, shader.ShaderSource{Stage: backend.StageFragment, Text: fragmentWGSL}, shader.WithReporter(r)),
		program.WithReporter(r))
	require.NoError(t, err)
	require.True(t, p.Linked())
	return p
}

func TestNewVertexLayout(t *testing.T) {
	l := NewVertexLayout(WithAttribute("vertPosition", 2), WithAttribute("vertColor", 3))

	assert.Equal(t, 20, l.Stride())
	assert.Equal(t, 5, l.Components())
	assert.Equal(t, []Entry{
		{Name: "vertPosition", Components: 2, StrideBytes: 20, OffsetBytes: 0},
		{Name: "vertColor", Components: 3, StrideBytes: 20, OffsetBytes: 8},
	}, l.Entries())
	assert.NoError(t, l.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    error
	}{
		{
			name:    "empty",
			entries: nil,
			want:    ErrEmptyLayout,
		},
		{
			name: "stride mismatch",
			entries: []Entry{
				{Name: "a", Components: 2, StrideBytes: 20},
				{Name: "b", Components: 3, StrideBytes: 24, OffsetBytes: 8},
			},
			want: ErrStrideMismatch,
		},
		{
			name:    "too many components",
			entries: []Entry{{Name: "a", Components: 5, StrideBytes: 20}},
			want:    ErrComponentCount,
		},
		{
			name:    "no components",
			entries: []Entry{{Name: "a", Components: 0, StrideBytes: 20}},
			want:    ErrComponentCount,
		},
		{
			name: "past the record",
			entries: []Entry{
				{Name: "a", Components: 2, StrideBytes: 20},
				{Name: "b", Components: 4, StrideBytes: 20, OffsetBytes: 8},
			},
			want: ErrRecordOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromEntries(tt.entries...).Validate()
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var lerr *LayoutError
	require.ErrorAs(t, FromEntries(Entry{Name: "vertColor", Components: 7, StrideBytes: 28}).Validate(), &lerr)
	assert.Equal(t, "vertColor", lerr.Entry)
}

func TestInterleave(t *testing.T) {
	l := NewVertexLayout(WithAttribute("vertPosition", 2), WithAttribute("vertColor", 3))

	got, err := l.Interleave(
		[]float32{0, 0.5, -0.5, -0.5},
		[]float32{1, 1, 0, 0.7, 0, 1},
	)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0.5, 1, 1, 0, -0.5, -0.5, 0.7, 0, 1}, got)

	_, err = l.Interleave([]float32{0, 0.5}, []float32{1, 1, 0, 0.7, 0, 1})
	assert.Error(t, err)
	_, err = l.Interleave([]float32{0, 0.5})
	assert.Error(t, err)
}

func TestDeclareLayoutRoundTrip(t *testing.T) {
	b := headless.NewBackend()
	p := link(t, b)

	records := [][2][]float32{
		{{0.0, 0.5}, {1.0, 1.0, 0.0}},
		{{-0.5, -0.5}, {0.7, 0.0, 1.0}},
		{{0.5, -0.5}, {0.1, 1.0, 0.6}},
	}
	var data []float32
	for _, r := range records {
		data = append(data, r[0]...)
		data = append(data, r[1]...)
	}
	buf, err := buffer.UploadVertices(b, data)
	require.NoError(t, err)

	l := FromEntries(
		Entry{Name: "vertPosition", Components: 2, StrideBytes: 5 * 4, OffsetBytes: 0},
		Entry{Name: "vertColor", Components: 3, StrideBytes: 5 * 4, OffsetBytes: 2 * 4},
	)
	require.NoError(t, DeclareLayout(l, buf, p))

	for i, e := range l.Entries() {
		loc := p.AttributeLocation(e.Name)
		require.True(t, loc.Valid())
		for r, rec := range records {
			got, ok := b.FetchAttribute(p.Handle(), loc, r)
			require.True(t, ok)
			assert.Equal(t, rec[i], got, "record %d attribute %s", r, e.Name)
		}
	}
}

func TestDeclareLayoutInertEntries(t *testing.T) {
	b := headless.NewBackend()
	p := link(t, b)
	buf, err := buffer.UploadVertices(b, []float32{0, 0.5, 0, 0, -0.5, -0.5, 0, 0, 0.5, -0.5, 0, 0})
	require.NoError(t, err)

	l := NewVertexLayout(WithAttribute("vertPosition", 2), WithAttribute("vertNormal", 2))
	require.NoError(t, DeclareLayout(l, buf, p))

	got, ok := b.FetchAttribute(p.Handle(), p.AttributeLocation("vertPosition"), 1)
	require.True(t, ok)
	assert.Equal(t, []float32{-0.5, -0.5}, got)
	_, ok = b.FetchAttribute(p.Handle(), backend.NoAttribute, 0)
	assert.False(t, ok)
}

func TestDeclareLayoutRejects(t *testing.T) {
	b := headless.NewBackend()
	p := link(t, b)

	indices, err := buffer.UploadIndices(b, []uint16{0, 1, 2})
	require.NoError(t, err)
	err = DeclareLayout(NewVertexLayout(WithAttribute("vertPosition", 2)), indices, p)
	assert.ErrorIs(t, err, ErrBufferKind)

	vertices, err := buffer.UploadVertices(b, []float32{0, 0.5, -0.5, -0.5, 0.5, -0.5})
	require.NoError(t, err)
	mixed := FromEntries(
		Entry{Name: "vertPosition", Components: 2, StrideBytes: 20},
		Entry{Name: "vertColor", Components: 3, StrideBytes: 24, OffsetBytes: 8},
	)
	assert.ErrorIs(t, DeclareLayout(mixed, vertices, p), ErrStrideMismatch)
}
