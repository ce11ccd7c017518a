package shader

import (
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-demos/engine/diagnostic"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fragmentWGSL = `
@group(0) @binding(0) var<uniform> color: vec4<f32>;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return color;
}
`

func TestCompileSuccess(t *testing.T) {
	b := headless.NewBackend()
	u := Compile(b, ShaderSource{Stage: backend.StageFragment, Text: fragmentWGSL}, WithKey("hello.fragment"))

	assert.Equal(t, CompileStatusSuccess, u.Status())
	assert.Equal(t, "hello.fragment", u.Key())
	assert.Equal(t, backend.StageFragment, u.Stage())
	assert.NotZero(t, u.Handle())
	assert.NoError(t, u.Err())
}

func TestCompileFailureIsPermissive(t *testing.T) {
	b := headless.NewBackend()
	r := diagnostic.NewReporter()

	var u ShaderUnit
	require.NotPanics(t, func() {
		u = Compile(b, ShaderSource{Stage: backend.StageVertex, Text: "fn main( {"}, WithReporter(r))
	})
	assert.Equal(t, CompileStatusFailed, u.Status())
	assert.NotEmpty(t, u.Log())
	assert.NotZero(t, u.Handle(), "failed units keep their handle so linking can proceed")
	assert.NoError(t, u.Err())
	assert.Equal(t, 1, r.Count(diagnostic.KindShaderCompile))
}

func TestCompileFailureEscalated(t *testing.T) {
	b := headless.NewBackend()
	r := diagnostic.NewReporter(diagnostic.WithEscalate(diagnostic.KindShaderCompile))

	u := Compile(b, ShaderSource{Stage: backend.StageVertex, Text: fragmentWGSL}, WithReporter(r))
	assert.Equal(t, CompileStatusFailed, u.Status())
	assert.ErrorIs(t, u.Err(), diagnostic.ErrShaderCompile)
}

func TestCompileEmptySource(t *testing.T) {
	u := Compile(headless.NewBackend(), ShaderSource{Stage: backend.StageVertex, Text: "  \n"})
	assert.Equal(t, CompileStatusFailed, u.Status())
	assert.Equal(t, ErrEmptySource.Error(), u.Log())
	assert.Zero(t, u.Handle())
}

func TestRelease(t *testing.T) {
	u := Compile(headless.NewBackend(), ShaderSource{Stage: backend.StageFragment, Text: fragmentWGSL})
	u.Release()
	assert.Zero(t, u.Handle())
	assert.Equal(t, CompileStatusPending, u.Status())
	assert.NotPanics(t, u.Release)
}

func TestLoadSource(t *testing.T) {
	fsys := fstest.MapFS{"shaders/hello.frag.wgsl": {Data: []byte(fragmentWGSL)}}

	src, err := LoadSource(fsys, backend.StageFragment, "shaders/hello.frag.wgsl")
	require.NoError(t, err)
	assert.Equal(t, ShaderSource{Stage: backend.StageFragment, Text: fragmentWGSL}, src)

	_, err = LoadSource(fsys, backend.StageVertex, "shaders/missing.wgsl")
	assert.Error(t, err)
}

func TestCompileStatusString(t *testing.T) {
	assert.Equal(t, "pending", CompileStatusPending.String())
	assert.Equal(t, "success", CompileStatusSuccess.String())
	assert.Equal(t, "failed", CompileStatusFailed.String())
}
