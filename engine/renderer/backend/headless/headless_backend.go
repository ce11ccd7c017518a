// Package headless implements backend.Backend in pure Go. Shaders are WGSL, compiled and
// reflected with naga; buffers, bindings, uniform values and draw calls are recorded so
// tests and batch runs can read them back without a GPU.
package headless

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/reflection"
)

// ErrFrameInProgress is returned by BeginFrame when the previous frame was not ended.
var ErrFrameInProgress = errors.New("previous frame not yet ended")

// Backend is the headless backend: a backend.Backend that also implements backend.Readback.
type Backend interface {
	backend.Backend
	backend.Readback

	// Frames returns the number of frames ended so far.
	Frames() int

	// Size returns the simulated surface size.
	Size() common.Size
}

type shaderObject struct {
	stage  backend.Stage
	module *reflection.Module
	entry  reflection.EntryPoint
	ok     bool
}

type attributeBinding struct {
	buffer    backend.BufferHandle
	attribute backend.VertexAttribute
}

type programObject struct {
	vertex   backend.ShaderHandle
	fragment backend.ShaderHandle
	linked   bool
	inputs   []reflection.Slot
	outputs  int
	uniforms []reflection.Uniform
	bindings map[backend.AttributeLocation]attributeBinding
	values   map[backend.UniformLocation][]float32
}

type bufferObject struct {
	kind backend.BufferKind
	data []byte
}

type headlessBackend struct {
	mu *sync.Mutex

	size                common.Size
	maxVertexAttributes int
	maxUniformBindings  int

	next     uint32
	shaders  map[backend.ShaderHandle]*shaderObject
	programs map[backend.ProgramHandle]*programObject
	buffers  map[backend.BufferHandle]*bufferObject

	inFrame bool
	frame   int
	state   backend.RenderState
	draws   []backend.DrawRecord
}

var _ Backend = &headlessBackend{}

// NewBackend creates a headless backend with the provided options.
//
// Parameters:
//   - options: functional options for surface size and device limits
//
// Returns:
//   - Backend: the headless backend
func NewBackend(options ...HeadlessBackendBuilderOption) Backend {
	b := &headlessBackend{
		mu:                  &sync.Mutex{},
		size:                common.DefaultSurfaceSize,
		maxVertexAttributes: 16,
		maxUniformBindings:  12,
		shaders:             make(map[backend.ShaderHandle]*shaderObject),
		programs:            make(map[backend.ProgramHandle]*programObject),
		buffers:             make(map[backend.BufferHandle]*bufferObject),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *headlessBackend) Type() backend.BackendType {
	return backend.BackendTypeHeadless
}

func (b *headlessBackend) Language() backend.ShaderLanguage {
	return backend.LanguageWGSL
}

func (b *headlessBackend) handle() uint32 {
	b.next++
	return b.next
}

func (b *headlessBackend) CompileShader(stage backend.Stage, source string) (backend.ShaderHandle, backend.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := backend.ShaderHandle(b.handle())
	obj := &shaderObject{stage: stage}
	b.shaders[h] = obj

	module, err := reflection.Parse(source)
	if err != nil {
		return h, backend.Status{Log: reflection.Diagnostic(err)}
	}
	entry, err := module.Entry(stage)
	if err != nil {
		return h, backend.Status{Log: fmt.Sprintf("error: %v", err)}
	}

	obj.module = module
	obj.entry = entry
	obj.ok = true
	common.Logger().Debug("headless shader compiled", "stage", stage, "entry", entry.Name, "shader", h)
	return h, backend.Status{OK: true, Log: strings.Join(module.Warnings, "\n")}
}

func (b *headlessBackend) DeleteShader(shader backend.ShaderHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.shaders, shader)
}

func (b *headlessBackend) LinkProgram(vertex, fragment backend.ShaderHandle) (backend.ProgramHandle, backend.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := backend.ProgramHandle(b.handle())
	obj := &programObject{
		vertex:   vertex,
		fragment: fragment,
		bindings: make(map[backend.AttributeLocation]attributeBinding),
		values:   make(map[backend.UniformLocation][]float32),
	}
	b.programs[h] = obj

	var problems []string
	vs, fs := b.shaders[vertex], b.shaders[fragment]
	if vs == nil || vs.stage != backend.StageVertex {
		problems = append(problems, "no vertex shader attached")
	} else if !vs.ok {
		problems = append(problems, "vertex shader is not compiled")
	}
	if fs == nil || fs.stage != backend.StageFragment {
		problems = append(problems, "no fragment shader attached")
	} else if !fs.ok {
		problems = append(problems, "fragment shader is not compiled")
	}
	if len(problems) > 0 {
		return h, backend.Status{Log: linkLog(problems)}
	}

	problems = append(problems, reflection.CheckInterface(vs.entry, fs.entry)...)
	uniforms, conflicts := reflection.MergeUniforms(vs.module.Uniforms, fs.module.Uniforms)
	problems = append(problems, conflicts...)
	if len(problems) > 0 {
		return h, backend.Status{Log: linkLog(problems)}
	}

	obj.linked = true
	obj.inputs = vs.entry.Inputs
	obj.outputs = len(fs.entry.Outputs)
	obj.uniforms = uniforms
	return h, backend.Status{OK: true}
}

func linkLog(problems []string) string {
	lines := make([]string, len(problems))
	for i, p := range problems {
		lines[i] = "error: " + p
	}
	return strings.Join(lines, "\n")
}

func (b *headlessBackend) ValidateProgram(program backend.ProgramHandle) backend.Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.programs[program]
	if p == nil || !p.linked {
		return backend.Status{Log: "error: program is not linked"}
	}

	var problems []string
	if len(p.inputs) > b.maxVertexAttributes {
		problems = append(problems, fmt.Sprintf("%d vertex inputs exceed the limit of %d", len(p.inputs), b.maxVertexAttributes))
	}
	for _, in := range p.inputs {
		if int(in.Location) >= b.maxVertexAttributes {
			problems = append(problems, fmt.Sprintf("vertex input %q uses location %d beyond the limit of %d", in.Name, in.Location, b.maxVertexAttributes))
		}
	}
	if len(p.uniforms) > b.maxUniformBindings {
		problems = append(problems, fmt.Sprintf("%d uniform bindings exceed the limit of %d", len(p.uniforms), b.maxUniformBindings))
	}
	if p.outputs == 0 {
		problems = append(problems, "fragment stage writes no color output")
	}
	if len(problems) > 0 {
		return backend.Status{Log: linkLog(problems)}
	}
	return backend.Status{OK: true}
}

func (b *headlessBackend) DeleteProgram(program backend.ProgramHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.programs, program)
}

func (b *headlessBackend) AttributeLocation(program backend.ProgramHandle, name string) backend.AttributeLocation {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.programs[program]
	if p == nil || !p.linked {
		return backend.NoAttribute
	}
	for _, in := range p.inputs {
		if in.Name == name {
			return backend.AttributeLocation(in.Location)
		}
	}
	return backend.NoAttribute
}

func (b *headlessBackend) UniformLocation(program backend.ProgramHandle, name string) backend.UniformLocation {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.programs[program]
	if p == nil || !p.linked {
		return backend.NoUniform
	}
	for i, u := range p.uniforms {
		if u.Name == name {
			return backend.UniformLocation(i)
		}
	}
	return backend.NoUniform
}

func (b *headlessBackend) CreateBuffer(kind backend.BufferKind, data []byte) (backend.BufferHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(data) == 0 {
		return 0, fmt.Errorf("create %s buffer: empty payload", kind)
	}
	h := backend.BufferHandle(b.handle())
	b.buffers[h] = &bufferObject{kind: kind, data: append([]byte(nil), data...)}
	return h, nil
}

func (b *headlessBackend) DeleteBuffer(buffer backend.BufferHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.buffers, buffer)
}

func (b *headlessBackend) BindAttribute(program backend.ProgramHandle, location backend.AttributeLocation, buffer backend.BufferHandle, attribute backend.VertexAttribute) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !location.Valid() {
		return
	}
	p := b.programs[program]
	buf := b.buffers[buffer]
	if p == nil || !p.linked || buf == nil || buf.kind != backend.BufferKindVertex {
		common.Logger().Warn("headless attribute bind ignored", "program", program, "location", location, "buffer", buffer)
		return
	}
	p.bindings[location] = attributeBinding{buffer: buffer, attribute: attribute}
}

func (b *headlessBackend) SetUniform(program backend.ProgramHandle, location backend.UniformLocation, kind backend.UniformKind, values []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !location.Valid() {
		return
	}
	p := b.programs[program]
	if p == nil || !p.linked || int(location) >= len(p.uniforms) {
		return
	}
	u := p.uniforms[location]
	if (u.Known && u.Kind != kind) || len(values) < kind.Components() {
		common.Logger().Warn("headless uniform write ignored", "uniform", u.Name, "kind", kind, "values", len(values))
		return
	}
	p.values[location] = append([]float32(nil), values[:kind.Components()]...)
}

func (b *headlessBackend) BeginFrame(state backend.RenderState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.inFrame {
		return ErrFrameInProgress
	}
	b.inFrame = true
	b.state = state
	return nil
}

func (b *headlessBackend) Draw(program backend.ProgramHandle, cmd backend.DrawCommand) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inFrame {
		return
	}
	if err := b.checkDraw(program, cmd); err != nil {
		common.Logger().Warn("headless draw dropped", "program", program, "error", err)
		return
	}
	b.draws = append(b.draws, backend.DrawRecord{
		Frame:   b.frame,
		Program: program,
		Command: cmd,
		State:   b.state,
	})
}

// checkDraw verifies every bound attribute and the index buffer cover cmd.Count.
func (b *headlessBackend) checkDraw(program backend.ProgramHandle, cmd backend.DrawCommand) error {
	p := b.programs[program]
	if p == nil || !p.linked {
		return errors.New("program is not linked")
	}
	vertices := cmd.Count
	if cmd.Indexed() {
		ib := b.buffers[cmd.IndexBuffer]
		if ib == nil || ib.kind != backend.BufferKindIndex {
			return errors.New("index buffer is missing")
		}
		indices := common.BytesToSlice[uint16](ib.data)
		if len(indices) < cmd.Count {
			return fmt.Errorf("index buffer holds %d elements, draw needs %d", len(indices), cmd.Count)
		}
		vertices = 0
		for _, i := range indices[:cmd.Count] {
			vertices = max(vertices, int(i)+1)
		}
	}
	for loc, bind := range p.bindings {
		buf := b.buffers[bind.buffer]
		if buf == nil {
			return fmt.Errorf("attribute %d reads a deleted buffer", loc)
		}
		if vertices > 0 && attributeEnd(bind.attribute, vertices-1) > len(buf.data) {
			return fmt.Errorf("attribute %d reads past the end of its buffer", loc)
		}
	}
	return nil
}

func attributeEnd(a backend.VertexAttribute, vertex int) int {
	return vertex*a.StrideBytes + a.OffsetBytes + a.Components*4
}

func (b *headlessBackend) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inFrame {
		return
	}
	b.inFrame = false
	b.frame++
}

func (b *headlessBackend) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.size = common.Size{Width: width, Height: height}
}

func (b *headlessBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.shaders)
	clear(b.programs)
	clear(b.buffers)
}

func (b *headlessBackend) ReadBuffer(buffer backend.BufferHandle) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf := b.buffers[buffer]
	if buf == nil {
		return nil, false
	}
	return append([]byte(nil), buf.data...), true
}

func (b *headlessBackend) FetchAttribute(program backend.ProgramHandle, location backend.AttributeLocation, vertex int) ([]float32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.programs[program]
	if p == nil || vertex < 0 {
		return nil, false
	}
	bind, ok := p.bindings[location]
	if !ok {
		return nil, false
	}
	buf := b.buffers[bind.buffer]
	if buf == nil {
		return nil, false
	}
	start := vertex*bind.attribute.StrideBytes + bind.attribute.OffsetBytes
	end := attributeEnd(bind.attribute, vertex)
	if end > len(buf.data) {
		return nil, false
	}
	return common.BytesToSlice[float32](buf.data[start:end]), true
}

func (b *headlessBackend) UniformValue(program backend.ProgramHandle, location backend.UniformLocation) ([]float32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.programs[program]
	if p == nil {
		return nil, false
	}
	v, ok := p.values[location]
	if !ok {
		return nil, false
	}
	return append([]float32(nil), v...), true
}

func (b *headlessBackend) Draws() []backend.DrawRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]backend.DrawRecord(nil), b.draws...)
}

func (b *headlessBackend) Frames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frame
}

func (b *headlessBackend) Size() common.Size {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}
