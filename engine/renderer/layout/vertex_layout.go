// Package layout describes how an interleaved float32 vertex buffer maps onto named
// program attributes, and declares that mapping against a backend.
package layout

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/program"
)

// floatSize is the byte size of the only vertex component type.
const floatSize = 4

var (
	// ErrStrideMismatch is returned when entries sharing a buffer disagree on stride.
	ErrStrideMismatch = errors.New("entries sharing a buffer must agree on stride")

	// ErrComponentCount is returned for an entry with fewer than 1 or more than 4 components.
	ErrComponentCount = errors.New("component count must be between 1 and 4")

	// ErrRecordOverflow is returned when an entry reads past the end of its record.
	ErrRecordOverflow = errors.New("attribute extends past the record stride")

	// ErrBufferKind is returned when a layout is declared against an index buffer.
	ErrBufferKind = errors.New("layouts bind vertex buffers only")

	// ErrEmptyLayout is returned when a layout has no entries.
	ErrEmptyLayout = errors.New("layout has no entries")
)

// Entry maps one named attribute onto an interleaved record.
type Entry struct {
	// Name is the attribute name as declared in the vertex stage.
	Name string

	// Components is the number of float32 values read per vertex (1 to 4).
	Components int

	// StrideBytes is the byte distance between consecutive records.
	StrideBytes int

	// OffsetBytes is the byte offset of the attribute inside a record.
	OffsetBytes int
}

// Attribute converts the entry into the backend's attribute description.
func (e Entry) Attribute() backend.VertexAttribute {
	return backend.VertexAttribute{
		Components:  e.Components,
		StrideBytes: e.StrideBytes,
		OffsetBytes: e.OffsetBytes,
	}
}

// LayoutError reports which entry of a layout is invalid.
type LayoutError struct {
	Entry string
	Err   error
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("vertex layout entry %q: %v", e.Entry, e.Err)
}

func (e *LayoutError) Unwrap() error {
	return e.Err
}

// vertexLayout is the implementation of the VertexLayout interface.
type vertexLayout struct {
	entries []Entry
}

// VertexLayout is an ordered sequence of entries sharing one vertex buffer.
type VertexLayout interface {
	// Entries returns a copy of the layout entries in declaration order.
	Entries() []Entry

	// Stride returns the record stride in bytes, 0 for an empty layout.
	Stride() int

	// Components returns the number of float32 values in one record.
	Components() int

	// Validate checks component counts, the shared stride and that every entry fits its record.
	//
	// Returns:
	//   - error: a *LayoutError wrapping the failed check, or nil
	Validate() error

	// Interleave packs one flat stream per entry into a single interleaved slice.
	// Only layouts whose entries are packed back to back can be interleaved.
	//
	// Parameters:
	//   - streams: one slice per entry, in entry order, each holding Components values per vertex
	//
	// Returns:
	//   - []float32: the interleaved records
	//   - error: an error if the streams disagree on vertex count or the layout is not packed
	Interleave(streams ...[]float32) ([]float32, error)
}

var _ VertexLayout = &vertexLayout{}

// NewVertexLayout builds a packed interleaved layout, computing each entry's offset and
// the shared stride from the attribute component counts.
//
// Parameters:
//   - options: WithAttribute options in record order
//
// Returns:
//   - VertexLayout: the packed layout
func NewVertexLayout(options ...VertexLayoutBuilderOption) VertexLayout {
	l := &vertexLayout{}
	for _, opt := range options {
		opt(l)
	}

	offset := 0
	for i := range l.entries {
		l.entries[i].OffsetBytes = offset
		offset += l.entries[i].Components * floatSize
	}
	for i := range l.entries {
		l.entries[i].StrideBytes = offset
	}
	return l
}

// FromEntries builds a layout from explicit entries, as written in a layout descriptor.
//
// Parameters:
//   - entries: the entries in order
//
// Returns:
//   - VertexLayout: the layout, unvalidated
func FromEntries(entries ...Entry) VertexLayout {
	return &vertexLayout{entries: append([]Entry(nil), entries...)}
}

func (l *vertexLayout) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

func (l *vertexLayout) Stride() int {
	if len(l.entries) == 0 {
		return 0
	}
	return l.entries[0].StrideBytes
}

func (l *vertexLayout) Components() int {
	n := 0
	for _, e := range l.entries {
		n += e.Components
	}
	return n
}

func (l *vertexLayout) Validate() error {
	if len(l.entries) == 0 {
		return ErrEmptyLayout
	}
	stride := l.entries[0].StrideBytes
	for _, e := range l.entries {
		switch {
		case e.Components < 1 || e.Components > 4:
			return &LayoutError{Entry: e.Name, Err: ErrComponentCount}
		case e.StrideBytes != stride:
			return &LayoutError{Entry: e.Name, Err: fmt.Errorf("%w: %d != %d", ErrStrideMismatch, e.StrideBytes, stride)}
		case e.OffsetBytes < 0 || e.OffsetBytes+e.Components*floatSize > e.StrideBytes:
			return &LayoutError{Entry: e.Name, Err: ErrRecordOverflow}
		}
	}
	return nil
}

func (l *vertexLayout) Interleave(streams ...[]float32) ([]float32, error) {
	if len(streams) != len(l.entries) {
		return nil, fmt.Errorf("interleave: %d streams for %d entries", len(streams), len(l.entries))
	}
	if l.Stride() != l.Components()*floatSize {
		return nil, errors.New("interleave: layout is not packed")
	}

	vertices := -1
	for i, e := range l.entries {
		if len(streams[i])%e.Components != 0 {
			return nil, fmt.Errorf("interleave: stream %q is not a multiple of %d", e.Name, e.Components)
		}
		n := len(streams[i]) / e.Components
		if vertices >= 0 && n != vertices {
			return nil, fmt.Errorf("interleave: stream %q holds %d vertices, expected %d", e.Name, n, vertices)
		}
		vertices = n
	}

	out := make([]float32, 0, vertices*l.Components())
	for v := 0; v < vertices; v++ {
		for i, e := range l.entries {
			out = append(out, streams[i][v*e.Components:(v+1)*e.Components]...)
		}
	}
	return out, nil
}

// DeclareLayout binds every resolvable entry of a layout to a vertex buffer for a program.
// Entries whose attribute the program does not expose are inert.
//
// Parameters:
//   - l: the layout to declare
//   - buf: the vertex buffer every entry reads
//   - prog: the program whose attribute locations receive the bindings
//
// Returns:
//   - error: a validation error, ErrBufferKind, or nil
func DeclareLayout(l VertexLayout, buf buffer.GpuBuffer, prog program.Program) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if buf.Kind() != backend.BufferKindVertex {
		return fmt.Errorf("declare layout: %w", ErrBufferKind)
	}

	b := prog.Backend()
	for _, e := range l.Entries() {
		loc := prog.AttributeLocation(e.Name)
		if !loc.Valid() {
			common.Logger().Debug("layout entry inert", "program", prog.Label(), "attribute", e.Name)
			continue
		}
		b.BindAttribute(prog.Handle(), loc, buf.Handle(), e.Attribute())
	}
	return nil
}
