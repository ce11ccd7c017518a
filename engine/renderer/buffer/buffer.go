// Package buffer wraps write-once backend buffers holding vertex records or element indices.
package buffer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
)

// ErrEmptyPayload is returned when an upload has no data.
var ErrEmptyPayload = errors.New("buffer payload is empty")

// gpuBuffer is the implementation of the GpuBuffer interface.
type gpuBuffer struct {
	b            backend.Backend
	handle       backend.BufferHandle
	kind         backend.BufferKind
	byteLength   int
	elementCount int
}

// GpuBuffer is an uploaded, immutable payload. It owns its backend buffer object.
type GpuBuffer interface {
	// Handle returns the backend buffer object. Zero after Release.
	Handle() backend.BufferHandle

	// Kind returns whether the buffer holds vertices or indices.
	Kind() backend.BufferKind

	// ByteLength returns the uploaded payload size in bytes.
	ByteLength() int

	// ElementCount returns the number of float32 values (vertex) or uint16 indices (index).
	ElementCount() int

	// Release deletes the backend buffer.
	Release()
}

var _ GpuBuffer = &gpuBuffer{}

// Upload allocates a backend buffer and writes data into it once.
//
// Parameters:
//   - b: the backend to allocate on
//   - kind: vertex or index
//   - data: the raw payload
//
// Returns:
//   - GpuBuffer: the uploaded buffer
//   - error: ErrEmptyPayload, or the wrapped backend error
func Upload(b backend.Backend, kind backend.BufferKind, data []byte) (GpuBuffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("upload %s buffer: %w", kind, ErrEmptyPayload)
	}
	handle, err := b.CreateBuffer(kind, data)
	if err != nil {
		return nil, fmt.Errorf("upload %s buffer: %w", kind, err)
	}
	elem := 4
	if kind == backend.BufferKindIndex {
		elem = 2
	}
	common.Logger().Debug("buffer uploaded", "kind", kind, "bytes", len(data), "handle", handle)
	return &gpuBuffer{
		b:            b,
		handle:       handle,
		kind:         kind,
		byteLength:   len(data),
		elementCount: len(data) / elem,
	}, nil
}

// UploadVertices uploads interleaved float32 vertex records.
//
// Parameters:
//   - b: the backend to allocate on
//   - vertices: the flat vertex data
//
// Returns:
//   - GpuBuffer: the uploaded vertex buffer
//   - error: an error if the upload failed
func UploadVertices(b backend.Backend, vertices []float32) (GpuBuffer, error) {
	return Upload(b, backend.BufferKindVertex, common.SliceToBytes(vertices))
}

// UploadIndices uploads uint16 element indices.
//
// Parameters:
//   - b: the backend to allocate on
//   - indices: the element indices
//
// Returns:
//   - GpuBuffer: the uploaded index buffer
//   - error: an error if the upload failed
func UploadIndices(b backend.Backend, indices []uint16) (GpuBuffer, error) {
	return Upload(b, backend.BufferKindIndex, common.SliceToBytes(indices))
}

func (g *gpuBuffer) Handle() backend.BufferHandle {
	return g.handle
}

func (g *gpuBuffer) Kind() backend.BufferKind {
	return g.kind
}

func (g *gpuBuffer) ByteLength() int {
	return g.byteLength
}

func (g *gpuBuffer) ElementCount() int {
	return g.elementCount
}

func (g *gpuBuffer) Release() {
	if g.handle != 0 {
		g.b.DeleteBuffer(g.handle)
	}
	g.handle = 0
}

// IndexedDraw builds a triangle draw command reading every index in an index buffer.
//
// Parameters:
//   - indices: an index buffer
//
// Returns:
//   - backend.DrawCommand: the indexed draw
func IndexedDraw(indices GpuBuffer) backend.DrawCommand {
	return backend.DrawCommand{
		Primitive:   backend.PrimitiveTriangles,
		Count:       indices.ElementCount(),
		IndexType:   backend.IndexUint16,
		IndexBuffer: indices.Handle(),
	}
}

// ArrayDraw builds a non-indexed triangle draw command.
//
// Parameters:
//   - vertexCount: the number of vertices to draw
//
// Returns:
//   - backend.DrawCommand: the non-indexed draw
func ArrayDraw(vertexCount int) backend.DrawCommand {
	return backend.DrawCommand{Primitive: backend.PrimitiveTriangles, Count: vertexCount}
}
