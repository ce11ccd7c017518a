// Package opengl implements backend.Backend on the OpenGL 4.1 core profile through go-gl.
// Shaders are GLSL. OpenGL keeps ambient bound state; every call here binds what it needs
// itself so callers never observe or depend on it.
package opengl

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Context is the GL context the backend draws into, usually a window.Window created with
// window.WithOpenGLContext.
type Context interface {
	MakeContextCurrent()
	SwapBuffers()
}

// ErrFrameInProgress is returned by BeginFrame when the previous frame was not ended.
var ErrFrameInProgress = errors.New("previous frame not yet ended")

type programObject struct {
	vao    uint32
	linked bool
}

type openglBackend struct {
	mu *sync.Mutex

	ctx  Context
	size common.Size

	shaders  map[backend.ShaderHandle]backend.Stage
	programs map[backend.ProgramHandle]*programObject
	buffers  map[backend.BufferHandle]backend.BufferKind

	inFrame bool
}

var _ backend.Backend = &openglBackend{}

// NewBackend makes ctx current on the calling thread and loads the GL 4.1 entry points.
// Panics if the GL functions cannot be loaded.
//
// Parameters:
//   - ctx: the GL context to draw into and present from
//   - size: the initial framebuffer size in pixels
//
// Returns:
//   - backend.Backend: the OpenGL backend
func NewBackend(ctx Context, size common.Size) backend.Backend {
	ctx.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		panic(fmt.Sprintf("opengl: failed to load GL functions: %v", err))
	}

	b := &openglBackend{
		mu:       &sync.Mutex{},
		ctx:      ctx,
		size:     common.Coalesce(size, common.DefaultSurfaceSize),
		shaders:  make(map[backend.ShaderHandle]backend.Stage),
		programs: make(map[backend.ProgramHandle]*programObject),
		buffers:  make(map[backend.BufferHandle]backend.BufferKind),
	}
	common.Logger().Info("opengl backend ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
	)
	return b
}

func (b *openglBackend) Type() backend.BackendType {
	return backend.BackendTypeOpenGL
}

func (b *openglBackend) Language() backend.ShaderLanguage {
	return backend.LanguageGLSL
}

func shaderType(stage backend.Stage) uint32 {
	if stage == backend.StageFragment {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

func (b *openglBackend) CompileShader(stage backend.Stage, source string) (backend.ShaderHandle, backend.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	shader := gl.CreateShader(shaderType(stage))
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	log := infoLog(logLength, func(buf *uint8) { gl.GetShaderInfoLog(shader, logLength, nil, buf) })

	h := backend.ShaderHandle(shader)
	b.shaders[h] = stage
	return h, backend.Status{OK: status == gl.TRUE, Log: log}
}

// infoLog reads a GL info log of length n through read.
func infoLog(n int32, read func(buf *uint8)) string {
	if n <= 1 {
		return ""
	}
	log := strings.Repeat("\x00", int(n+1))
	read(gl.Str(log))
	return strings.TrimSpace(strings.TrimRight(log, "\x00"))
}

func (b *openglBackend) DeleteShader(shader backend.ShaderHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.shaders[shader]; !ok {
		return
	}
	gl.DeleteShader(uint32(shader))
	delete(b.shaders, shader)
}

func (b *openglBackend) LinkProgram(vertex, fragment backend.ShaderHandle) (backend.ProgramHandle, backend.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	program := gl.CreateProgram()
	h := backend.ProgramHandle(program)
	obj := &programObject{}
	gl.GenVertexArrays(1, &obj.vao)
	b.programs[h] = obj

	if stage, ok := b.shaders[vertex]; ok && stage == backend.StageVertex {
		gl.AttachShader(program, uint32(vertex))
	}
	if stage, ok := b.shaders[fragment]; ok && stage == backend.StageFragment {
		gl.AttachShader(program, uint32(fragment))
	}
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	log := infoLog(logLength, func(buf *uint8) { gl.GetProgramInfoLog(program, logLength, nil, buf) })

	obj.linked = status == gl.TRUE
	return h, backend.Status{OK: obj.linked, Log: log}
}

func (b *openglBackend) ValidateProgram(program backend.ProgramHandle) backend.Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.programs[program]
	if p == nil {
		return backend.Status{Log: "error: unknown program"}
	}
	// Core profile validation fails without a vertex array bound.
	gl.BindVertexArray(p.vao)
	gl.ValidateProgram(uint32(program))
	gl.BindVertexArray(0)

	var status int32
	gl.GetProgramiv(uint32(program), gl.VALIDATE_STATUS, &status)
	var logLength int32
	gl.GetProgramiv(uint32(program), gl.INFO_LOG_LENGTH, &logLength)
	log := infoLog(logLength, func(buf *uint8) { gl.GetProgramInfoLog(uint32(program), logLength, nil, buf) })
	return backend.Status{OK: status == gl.TRUE, Log: log}
}

func (b *openglBackend) DeleteProgram(program backend.ProgramHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.programs[program]
	if p == nil {
		return
	}
	gl.DeleteVertexArrays(1, &p.vao)
	gl.DeleteProgram(uint32(program))
	delete(b.programs, program)
}

func (b *openglBackend) AttributeLocation(program backend.ProgramHandle, name string) backend.AttributeLocation {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p := b.programs[program]; p == nil || !p.linked {
		return backend.NoAttribute
	}
	loc := gl.GetAttribLocation(uint32(program), gl.Str(name+"\x00"))
	if loc < 0 {
		return backend.NoAttribute
	}
	return backend.AttributeLocation(loc)
}

func (b *openglBackend) UniformLocation(program backend.ProgramHandle, name string) backend.UniformLocation {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p := b.programs[program]; p == nil || !p.linked {
		return backend.NoUniform
	}
	loc := gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00"))
	if loc < 0 {
		return backend.NoUniform
	}
	return backend.UniformLocation(loc)
}

func (b *openglBackend) CreateBuffer(kind backend.BufferKind, data []byte) (backend.BufferHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(data) == 0 {
		return 0, fmt.Errorf("create %s buffer: empty payload", kind)
	}

	var buf uint32
	gl.GenBuffers(1, &buf)
	// COPY_WRITE_BUFFER uploads without touching the element binding of a vertex array.
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, buf)
	gl.BufferData(gl.COPY_WRITE_BUFFER, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	if err := glError(); err != nil {
		gl.DeleteBuffers(1, &buf)
		return 0, fmt.Errorf("create %s buffer: %w", kind, err)
	}

	h := backend.BufferHandle(buf)
	b.buffers[h] = kind
	return h, nil
}

func (b *openglBackend) DeleteBuffer(buffer backend.BufferHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.buffers[buffer]; !ok {
		return
	}
	buf := uint32(buffer)
	gl.DeleteBuffers(1, &buf)
	delete(b.buffers, buffer)
}

func (b *openglBackend) BindAttribute(program backend.ProgramHandle, location backend.AttributeLocation, buffer backend.BufferHandle, attribute backend.VertexAttribute) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !location.Valid() {
		return
	}
	p := b.programs[program]
	kind, ok := b.buffers[buffer]
	if p == nil || !p.linked || !ok || kind != backend.BufferKindVertex {
		common.Logger().Warn("opengl attribute bind ignored", "program", program, "location", location, "buffer", buffer)
		return
	}

	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buffer))
	gl.EnableVertexAttribArray(uint32(location))
	gl.VertexAttribPointer(uint32(location), int32(attribute.Components), gl.FLOAT, false,
		int32(attribute.StrideBytes), gl.PtrOffset(attribute.OffsetBytes))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

func (b *openglBackend) SetUniform(program backend.ProgramHandle, location backend.UniformLocation, kind backend.UniformKind, values []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !location.Valid() {
		return
	}
	if p := b.programs[program]; p == nil || !p.linked {
		return
	}
	if len(values) < kind.Components() {
		common.Logger().Warn("opengl uniform write ignored", "location", location, "kind", kind, "values", len(values))
		return
	}

	gl.UseProgram(uint32(program))
	loc := int32(location)
	switch kind {
	case backend.UniformFloat:
		gl.Uniform1fv(loc, 1, &values[0])
	case backend.UniformVec2:
		gl.Uniform2fv(loc, 1, &values[0])
	case backend.UniformVec3:
		gl.Uniform3fv(loc, 1, &values[0])
	case backend.UniformVec4:
		gl.Uniform4fv(loc, 1, &values[0])
	case backend.UniformMat4:
		gl.UniformMatrix4fv(loc, 1, false, &values[0])
	}
	gl.UseProgram(0)
}

func (b *openglBackend) BeginFrame(state backend.RenderState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.inFrame {
		return ErrFrameInProgress
	}
	b.inFrame = true

	gl.Viewport(0, 0, int32(b.size.Width), int32(b.size.Height))
	if state.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LESS)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	switch state.CullMode {
	case backend.CullBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case backend.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Disable(gl.CULL_FACE)
	}
	if state.FrontFace == backend.FrontFaceCW {
		gl.FrontFace(gl.CW)
	} else {
		gl.FrontFace(gl.CCW)
	}

	c := state.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return nil
}

func (b *openglBackend) Draw(program backend.ProgramHandle, cmd backend.DrawCommand) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inFrame {
		return
	}
	p := b.programs[program]
	if p == nil || !p.linked {
		return
	}

	gl.UseProgram(uint32(program))
	gl.BindVertexArray(p.vao)
	if cmd.Indexed() {
		if kind, ok := b.buffers[cmd.IndexBuffer]; !ok || kind != backend.BufferKindIndex {
			common.Logger().Warn("opengl draw dropped", "program", program, "error", "index buffer is missing")
		} else {
			gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(cmd.IndexBuffer))
			gl.DrawElements(gl.TRIANGLES, int32(cmd.Count), gl.UNSIGNED_SHORT, nil)
		}
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(cmd.Count))
	}
	gl.BindVertexArray(0)
	gl.UseProgram(0)

	if err := glError(); err != nil {
		common.Logger().Warn("opengl draw failed", "program", program, "error", err)
	}
}

func (b *openglBackend) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inFrame {
		return
	}
	b.inFrame = false
	b.ctx.SwapBuffers()
}

func (b *openglBackend) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.size = common.Size{Width: width, Height: height}
}

func (b *openglBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for h, p := range b.programs {
		gl.DeleteVertexArrays(1, &p.vao)
		gl.DeleteProgram(uint32(h))
	}
	for h := range b.shaders {
		gl.DeleteShader(uint32(h))
	}
	for h := range b.buffers {
		buf := uint32(h)
		gl.DeleteBuffers(1, &buf)
	}
	clear(b.programs)
	clear(b.shaders)
	clear(b.buffers)
}

// glError drains the GL error queue and returns the first error, if any.
func glError() error {
	var first uint32
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		if first == 0 {
			first = code
		}
	}
	if first == 0 {
		return nil
	}
	return fmt.Errorf("gl error 0x%04x", first)
}
