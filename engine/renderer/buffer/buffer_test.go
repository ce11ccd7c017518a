package buffer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadVertices(t *testing.T) {
	b := headless.NewBackend()
	data := []float32{-1, 1, 1, 1, 1, -1, -1, -1}

	buf, err := UploadVertices(b, data)
	require.NoError(t, err)
	assert.Equal(t, backend.BufferKindVertex, buf.Kind())
	assert.Equal(t, 32, buf.ByteLength())
	assert.Equal(t, 8, buf.ElementCount())

	raw, ok := b.ReadBuffer(buf.Handle())
	require.True(t, ok)
	assert.Equal(t, data, common.BytesToSlice[float32](raw))
}

func TestUploadIndices(t *testing.T) {
	b := headless.NewBackend()
	buf, err := UploadIndices(b, []uint16{0, 1, 2, 0, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, backend.BufferKindIndex, buf.Kind())
	assert.Equal(t, 12, buf.ByteLength())
	assert.Equal(t, 6, buf.ElementCount())

	cmd := IndexedDraw(buf)
	assert.Equal(t, backend.DrawCommand{
		Primitive:   backend.PrimitiveTriangles,
		Count:       6,
		IndexType:   backend.IndexUint16,
		IndexBuffer: buf.Handle(),
	}, cmd)
}

func TestUploadEmpty(t *testing.T) {
	_, err := UploadVertices(headless.NewBackend(), nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestUploadsAreIndependent(t *testing.T) {
	b := headless.NewBackend()
	data := []float32{0, 0.5, -0.5, -0.5, 0.5, -0.5}
	first, err := UploadVertices(b, data)
	require.NoError(t, err)
	second, err := UploadVertices(b, data)
	require.NoError(t, err)
	assert.NotEqual(t, first.Handle(), second.Handle())

	first.Release()
	assert.Zero(t, first.Handle())
	_, ok := b.ReadBuffer(second.Handle())
	assert.True(t, ok)
}

func TestArrayDraw(t *testing.T) {
	cmd := ArrayDraw(3)
	assert.False(t, cmd.Indexed())
	assert.Equal(t, 3, cmd.Count)
}
