// Package backend defines the device interface every rendering backend implements.
// All operations take their target objects as explicit parameters; there is no ambient
// "currently bound" program or buffer visible to callers.
package backend

import "github.com/Carmen-Shannon/oxy-demos/common"

// BackendType identifies a Backend implementation.
type BackendType int

const (
	// BackendTypeHeadless selects the pure Go, readback-capable backend.
	BackendTypeHeadless BackendType = iota

	// BackendTypeOpenGL selects the OpenGL 4.1 core backend (GLSL sources).
	BackendTypeOpenGL

	// BackendTypeWGPU selects the WebGPU backend (WGSL sources).
	BackendTypeWGPU
)

func (t BackendType) String() string {
	switch t {
	case BackendTypeHeadless:
		return "headless"
	case BackendTypeOpenGL:
		return "opengl"
	case BackendTypeWGPU:
		return "wgpu"
	}
	return "unknown"
}

// ShaderLanguage is the source language a Backend compiles.
type ShaderLanguage int

const (
	// LanguageWGSL is the WebGPU shading language.
	LanguageWGSL ShaderLanguage = iota

	// LanguageGLSL is the OpenGL shading language.
	LanguageGLSL
)

// Stage is one phase of a shader pipeline.
type Stage int

const (
	// StageVertex is the per-vertex stage.
	StageVertex Stage = iota

	// StageFragment is the per-fragment stage.
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	}
	return "unknown"
}

// ShaderHandle, ProgramHandle and BufferHandle are opaque backend object tokens.
// The zero value never names a live object.
type (
	ShaderHandle  uint32
	ProgramHandle uint32
	BufferHandle  uint32
)

// AttributeLocation is a resolved vertex attribute slot.
type AttributeLocation int32

// NoAttribute is returned for attribute names the program does not expose.
const NoAttribute AttributeLocation = -1

// Valid reports whether the location names a real attribute slot.
func (l AttributeLocation) Valid() bool { return l >= 0 }

// UniformLocation is a resolved uniform slot.
type UniformLocation int32

// NoUniform is returned for uniform names the program does not expose.
const NoUniform UniformLocation = -1

// Valid reports whether the location names a real uniform.
func (l UniformLocation) Valid() bool { return l >= 0 }

// BufferKind is the role of an uploaded buffer.
type BufferKind int

const (
	// BufferKindVertex holds interleaved float32 vertex records.
	BufferKindVertex BufferKind = iota

	// BufferKindIndex holds uint16 element indices.
	BufferKindIndex
)

func (k BufferKind) String() string {
	if k == BufferKindIndex {
		return "index"
	}
	return "vertex"
}

// UniformKind is the float shape of a uniform value.
type UniformKind int

const (
	UniformFloat UniformKind = iota
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat4
)

// Components returns the number of float32 values the kind occupies.
func (k UniformKind) Components() int {
	switch k {
	case UniformFloat:
		return 1
	case UniformVec2:
		return 2
	case UniformVec3:
		return 3
	case UniformVec4:
		return 4
	case UniformMat4:
		return 16
	}
	return 0
}

// VertexAttribute describes how one attribute reads an interleaved float32 buffer.
type VertexAttribute struct {
	// Components is the number of float32 values per vertex (1 to 4).
	Components int

	// StrideBytes is the byte distance between consecutive records.
	StrideBytes int

	// OffsetBytes is the byte offset of the attribute inside a record.
	OffsetBytes int
}

// Primitive is the assembly mode of a draw call.
type Primitive int

const (
	// PrimitiveTriangles draws independent triangles.
	PrimitiveTriangles Primitive = iota
)

// IndexType is the element type of an index buffer.
type IndexType int

const (
	// IndexNone marks a non-indexed draw.
	IndexNone IndexType = iota

	// IndexUint16 marks an indexed draw reading 2-byte unsigned indices.
	IndexUint16
)

// DrawCommand is a single draw invocation.
type DrawCommand struct {
	Primitive Primitive

	// Count is the vertex count for non-indexed draws or the element count for indexed draws.
	Count int

	// IndexType selects indexed drawing. IndexNone ignores IndexBuffer.
	IndexType IndexType

	// IndexBuffer is the index buffer for indexed draws.
	IndexBuffer BufferHandle
}

// Indexed reports whether the command reads an index buffer.
func (c DrawCommand) Indexed() bool { return c.IndexType != IndexNone }

// CullMode selects which faces are discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// FrontFace is the winding order of front-facing triangles.
type FrontFace int

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

// RenderState is the fixed-function state a frame is drawn with.
type RenderState struct {
	ClearColor common.Color
	DepthTest  bool
	CullMode   CullMode
	FrontFace  FrontFace
}

// Status is the outcome of a compile, link or validate step.
type Status struct {
	// OK is true when the step succeeded.
	OK bool

	// Log is the backend's diagnostic output. It may be non-empty even on success.
	Log string
}

// Backend is the explicit-parameter device interface.
// Operations that cannot fault by contract (writes to sentinel locations, deletes of
// unknown handles) are silent no-ops.
type Backend interface {
	// Type returns the backend implementation identifier.
	Type() BackendType

	// Language returns the shading language CompileShader accepts.
	Language() ShaderLanguage

	// CompileShader allocates a stage-typed shader object, attaches source and compiles it.
	// A handle is returned even when compilation fails so it can still be linked.
	//
	// Parameters:
	//   - stage: the pipeline stage of the source
	//   - source: the shader source text
	//
	// Returns:
	//   - ShaderHandle: the shader object
	//   - Status: compile status and compiler log
	CompileShader(stage Stage, source string) (ShaderHandle, Status)

	// DeleteShader releases a shader object.
	DeleteShader(shader ShaderHandle)

	// LinkProgram attaches a vertex and fragment shader and links them into a program.
	// A handle is returned even when linking fails.
	//
	// Parameters:
	//   - vertex: a vertex stage shader
	//   - fragment: a fragment stage shader
	//
	// Returns:
	//   - ProgramHandle: the program object
	//   - Status: link status and linker log
	LinkProgram(vertex, fragment ShaderHandle) (ProgramHandle, Status)

	// ValidateProgram checks a linked program against the backend's current configuration.
	//
	// Parameters:
	//   - program: the program to validate
	//
	// Returns:
	//   - Status: validate status and log
	ValidateProgram(program ProgramHandle) Status

	// DeleteProgram releases a program object.
	DeleteProgram(program ProgramHandle)

	// AttributeLocation resolves a vertex attribute by name.
	//
	// Returns:
	//   - AttributeLocation: the slot, or NoAttribute when absent or the program is not linked
	AttributeLocation(program ProgramHandle, name string) AttributeLocation

	// UniformLocation resolves a uniform by name.
	//
	// Returns:
	//   - UniformLocation: the slot, or NoUniform when absent or the program is not linked
	UniformLocation(program ProgramHandle, name string) UniformLocation

	// CreateBuffer allocates a buffer and uploads data into it once.
	//
	// Parameters:
	//   - kind: vertex or index
	//   - data: the payload
	//
	// Returns:
	//   - BufferHandle: the buffer object
	//   - error: an error if the allocation failed
	CreateBuffer(kind BufferKind, data []byte) (BufferHandle, error)

	// DeleteBuffer releases a buffer object.
	DeleteBuffer(buffer BufferHandle)

	// BindAttribute enables per-vertex reading of an attribute slot from buffer.
	// NoAttribute is ignored.
	BindAttribute(program ProgramHandle, location AttributeLocation, buffer BufferHandle, attribute VertexAttribute)

	// SetUniform writes a uniform value. NoUniform is ignored.
	//
	// Parameters:
	//   - program: the program owning the uniform
	//   - location: the resolved uniform slot
	//   - kind: the value shape
	//   - values: kind.Components() float32 values, column-major for matrices
	SetUniform(program ProgramHandle, location UniformLocation, kind UniformKind, values []float32)

	// BeginFrame acquires the next surface image and clears it.
	//
	// Returns:
	//   - error: an error if no surface image could be acquired
	BeginFrame(state RenderState) error

	// Draw issues one draw call with program inside the current frame.
	Draw(program ProgramHandle, cmd DrawCommand)

	// EndFrame submits the frame and presents it.
	EndFrame()

	// Resize informs the backend that the surface changed size.
	Resize(width, height int)

	// Release frees every object the backend still owns.
	Release()
}

// Readback is implemented by backends that can return the data they were given.
// It is the inspection surface tests use in place of a GPU.
type Readback interface {
	// ReadBuffer returns a copy of a buffer's uploaded payload.
	ReadBuffer(buffer BufferHandle) ([]byte, bool)

	// FetchAttribute decodes one vertex of a bound attribute from its buffer.
	FetchAttribute(program ProgramHandle, location AttributeLocation, vertex int) ([]float32, bool)

	// UniformValue returns the last value written to a uniform.
	UniformValue(program ProgramHandle, location UniformLocation) ([]float32, bool)

	// Draws returns every draw issued since the backend was created.
	Draws() []DrawRecord
}

// DrawRecord is a draw call observed by a Readback backend.
type DrawRecord struct {
	Frame   int
	Program ProgramHandle
	Command DrawCommand
	State   RenderState
}
