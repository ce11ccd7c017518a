// Package webgpu implements backend.Backend on cogentcore/webgpu. Shaders are WGSL; naga
// reflection supplies the interface wgpu needs up front (vertex inputs, uniform bindings),
// and render pipelines are built lazily from the bound attributes and the frame state.
package webgpu

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/reflection"
	"github.com/cogentcore/webgpu/wgpu"
)

type shaderObject struct {
	stage  backend.Stage
	module *wgpu.ShaderModule
	iface  *reflection.Module
	entry  reflection.EntryPoint
	ok     bool
}

type attributeBinding struct {
	buffer    backend.BufferHandle
	attribute backend.VertexAttribute
}

type programObject struct {
	vertex, fragment *shaderObject
	linked           bool

	uniforms       []reflection.Uniform
	uniformBuffers []*wgpu.Buffer
	groupLayouts   []*wgpu.BindGroupLayout
	bindGroups     []*wgpu.BindGroup
	layout         *wgpu.PipelineLayout

	bindings map[backend.AttributeLocation]attributeBinding

	// pipeline is rebuilt when the bindings or the frame state it was built for change.
	pipeline      *wgpu.RenderPipeline
	pipelineState backend.RenderState
	dirty         bool
}

type bufferObject struct {
	kind   backend.BufferKind
	buffer *wgpu.Buffer
}

type webgpuBackend struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface
	limits   wgpu.Limits

	surfaceFormat    wgpu.TextureFormat
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView
	msaaTexture      *wgpu.Texture
	msaaTextureView  *wgpu.TextureView
	size             common.Size

	presentMode          wgpu.PresentMode
	sampleCount          uint32
	forceFallbackAdapter bool

	next     uint32
	shaders  map[backend.ShaderHandle]*shaderObject
	programs map[backend.ProgramHandle]*programObject
	buffers  map[backend.BufferHandle]*bufferObject

	// Frame state between BeginFrame and EndFrame.
	state        backend.RenderState
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ backend.Backend = &webgpuBackend{}

// NewBackend creates a WebGPU backend presenting to the surface described by surfaceDescriptor.
// Adapter and device acquisition failures panic, as they leave nothing to render with.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, usually window.Window.SurfaceDescriptor()
//   - size: the initial surface size in pixels
//   - options: functional options for present mode, MSAA and adapter selection
//
// Returns:
//   - backend.Backend: the WebGPU backend
func NewBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, size common.Size, options ...WebGPUBackendBuilderOption) backend.Backend {
	runtime.LockOSThread()
	b := &webgpuBackend{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: 1,
		shaders:     make(map[backend.ShaderHandle]*shaderObject),
		programs:    make(map[backend.ProgramHandle]*programObject),
		buffers:     make(map[backend.BufferHandle]*bufferObject),
	}
	for _, opt := range options {
		opt(b)
	}

	b.surface = b.instance.CreateSurface(surfaceDescriptor)
	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = a

	b.limits = wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "oxy-demos device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: b.limits,
		},
	})
	if err != nil {
		panic(err)
	}
	b.device = d
	b.queue = d.GetQueue()

	b.configureSurface(common.Coalesce(size, common.DefaultSurfaceSize))
	common.Logger().Info("webgpu backend ready", "format", b.surfaceFormat, "samples", b.sampleCount)
	return b
}

func (b *webgpuBackend) Type() backend.BackendType {
	return backend.BackendTypeWGPU
}

func (b *webgpuBackend) Language() backend.ShaderLanguage {
	return backend.LanguageWGSL
}

func (b *webgpuBackend) handle() uint32 {
	b.next++
	return b.next
}

// configureSurface configures the swapchain and rebuilds the size-dependent attachments.
// Callers hold b.mu or are the constructor.
func (b *webgpuBackend) configureSurface(size common.Size) {
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]
	b.size = size

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(size.Width),
		Height:      uint32(size.Height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseAttachments()
	extent := wgpu.Extent3D{Width: uint32(size.Width), Height: uint32(size.Height), DepthOrArrayLayers: 1}

	if b.sampleCount > 1 {
		// The pass draws into the MSAA texture and resolves into the swapchain view.
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          extent,
			MipLevelCount: 1,
			SampleCount:   b.sampleCount,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTexture = tex
		b.msaaTextureView, err = tex.CreateView(nil)
		if err != nil {
			panic(err)
		}
	}

	// Depth sample count must match the color attachment.
	depth, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   b.sampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTexture = depth
	b.depthTextureView, err = depth.CreateView(nil)
	if err != nil {
		panic(err)
	}
}

func (b *webgpuBackend) releaseAttachments() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *webgpuBackend) CompileShader(stage backend.Stage, source string) (backend.ShaderHandle, backend.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := backend.ShaderHandle(b.handle())
	obj := &shaderObject{stage: stage}
	b.shaders[h] = obj

	// wgpu-native reports WGSL errors through the device error callback, so naga
	// front-runs it to produce a compile log and the reflected interface.
	iface, err := reflection.Parse(source)
	if err != nil {
		return h, backend.Status{Log: reflection.Diagnostic(err)}
	}
	entry, err := iface.Entry(stage)
	if err != nil {
		return h, backend.Status{Log: fmt.Sprintf("error: %v", err)}
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: fmt.Sprintf("%s shader %d", stage, h),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return h, backend.Status{Log: "error: " + err.Error()}
	}

	obj.module = module
	obj.iface = iface
	obj.entry = entry
	obj.ok = true
	return h, backend.Status{OK: true, Log: strings.Join(iface.Warnings, "\n")}
}

func (b *webgpuBackend) DeleteShader(shader backend.ShaderHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s := b.shaders[shader]; s != nil && s.module != nil {
		s.module.Release()
		s.module = nil
	}
	delete(b.shaders, shader)
}

func (b *webgpuBackend) LinkProgram(vertex, fragment backend.ShaderHandle) (backend.ProgramHandle, backend.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := backend.ProgramHandle(b.handle())
	obj := &programObject{bindings: make(map[backend.AttributeLocation]attributeBinding)}
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
		return h, backend.Status{Log: statusLog(problems)}
	}

	problems = append(problems, reflection.CheckInterface(vs.entry, fs.entry)...)
	uniforms, conflicts := reflection.MergeUniforms(vs.iface.Uniforms, fs.iface.Uniforms)
	problems = append(problems, conflicts...)
	if len(problems) > 0 {
		return h, backend.Status{Log: statusLog(problems)}
	}

	obj.vertex, obj.fragment = vs, fs
	obj.uniforms = uniforms
	if err := b.createBindings(h, obj); err != nil {
		b.releaseProgram(obj)
		return h, backend.Status{Log: "error: " + err.Error()}
	}
	obj.linked = true
	obj.dirty = true
	return h, backend.Status{OK: true}
}

// createBindings allocates one uniform buffer per uniform, the bind groups that expose
// them and the pipeline layout over those groups.
func (b *webgpuBackend) createBindings(h backend.ProgramHandle, p *programObject) error {
	groups := 0
	for _, u := range p.uniforms {
		groups = max(groups, int(u.Group)+1)
	}

	entries := make([][]wgpu.BindGroupLayoutEntry, groups)
	bindEntries := make([][]wgpu.BindGroupEntry, groups)
	p.uniformBuffers = make([]*wgpu.Buffer, len(p.uniforms))
	for i, u := range p.uniforms {
		size := uniformBufferSize(u.Size)
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("program %d uniform %s", h, u.Name),
			Size:  size,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create uniform buffer %q: %w", u.Name, err)
		}
		p.uniformBuffers[i] = buf
		entries[u.Group] = append(entries[u.Group], wgpu.BindGroupLayoutEntry{
			Binding:    u.Binding,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: uint64(u.Size),
			},
		})
		bindEntries[u.Group] = append(bindEntries[u.Group], wgpu.BindGroupEntry{
			Binding: u.Binding,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}

	p.groupLayouts = make([]*wgpu.BindGroupLayout, groups)
	p.bindGroups = make([]*wgpu.BindGroup, groups)
	for g := 0; g < groups; g++ {
		layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("program %d group %d", h, g),
			Entries: entries[g],
		})
		if err != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		p.groupLayouts[g] = layout

		group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   fmt.Sprintf("program %d bind group %d", h, g),
			Layout:  layout,
			Entries: bindEntries[g],
		})
		if err != nil {
			return fmt.Errorf("failed to create bind group %d: %w", g, err)
		}
		p.bindGroups[g] = group
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            fmt.Sprintf("program %d layout", h),
		BindGroupLayouts: p.groupLayouts,
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.layout = layout
	return nil
}

// uniformBufferSize rounds a uniform size up to the 16 byte uniform alignment.
func uniformBufferSize(size uint32) uint64 {
	return uint64(max(16, (size+15)&^15))
}

func statusLog(problems []string) string {
	lines := make([]string, len(problems))
	for i, p := range problems {
		lines[i] = "error: " + p
	}
	return strings.Join(lines, "\n")
}

func (b *webgpuBackend) ValidateProgram(program backend.ProgramHandle) backend.Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.programs[program]
	if p == nil || !p.linked {
		return backend.Status{Log: "error: program is not linked"}
	}

	var problems []string
	inputs := p.vertex.entry.Inputs
	if uint32(len(inputs)) > b.limits.MaxVertexAttributes {
		problems = append(problems, fmt.Sprintf("%d vertex inputs exceed the device limit of %d", len(inputs), b.limits.MaxVertexAttributes))
	}
	if uint32(len(p.groupLayouts)) > b.limits.MaxBindGroups {
		problems = append(problems, fmt.Sprintf("%d bind groups exceed the device limit of %d", len(p.groupLayouts), b.limits.MaxBindGroups))
	}
	if uint32(len(p.uniforms)) > b.limits.MaxUniformBuffersPerShaderStage {
		problems = append(problems, fmt.Sprintf("%d uniform buffers exceed the device limit of %d", len(p.uniforms), b.limits.MaxUniformBuffersPerShaderStage))
	}
	if len(p.fragment.entry.Outputs) == 0 {
		problems = append(problems, "fragment stage writes no color output")
	}
	if len(problems) > 0 {
		return backend.Status{Log: statusLog(problems)}
	}
	return backend.Status{OK: true}
}

func (b *webgpuBackend) DeleteProgram(program backend.ProgramHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p := b.programs[program]; p != nil {
		b.releaseProgram(p)
	}
	delete(b.programs, program)
}

func (b *webgpuBackend) releaseProgram(p *programObject) {
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
	for _, g := range p.bindGroups {
		if g != nil {
			g.Release()
		}
	}
	for _, l := range p.groupLayouts {
		if l != nil {
			l.Release()
		}
	}
	for _, buf := range p.uniformBuffers {
		if buf != nil {
			buf.Release()
		}
	}
	p.bindGroups, p.groupLayouts, p.uniformBuffers = nil, nil, nil
	p.linked = false
}

func (b *webgpuBackend) AttributeLocation(program backend.ProgramHandle, name string) backend.AttributeLocation {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.programs[program]
	if p == nil || !p.linked {
		return backend.NoAttribute
	}
	if slot, ok := p.vertex.entry.Input(name); ok {
		return backend.AttributeLocation(slot.Location)
	}
	return backend.NoAttribute
}

func (b *webgpuBackend) UniformLocation(program backend.ProgramHandle, name string) backend.UniformLocation {
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

func (b *webgpuBackend) CreateBuffer(kind backend.BufferKind, data []byte) (backend.BufferHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(data) == 0 {
		return 0, fmt.Errorf("create %s buffer: empty payload", kind)
	}

	usage := wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	if kind == backend.BufferKindIndex {
		usage = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	}
	// Queue writes must be a multiple of 4 bytes; odd uint16 index counts are padded.
	if pad := len(data) % 4; pad != 0 {
		data = append(append([]byte(nil), data...), make([]byte, 4-pad)...)
	}

	h := backend.BufferHandle(b.handle())
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            fmt.Sprintf("%s buffer %d", kind, h),
		Size:             uint64(len(data)),
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return 0, fmt.Errorf("create %s buffer: %w", kind, err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	b.buffers[h] = &bufferObject{kind: kind, buffer: buf}
	return h, nil
}

func (b *webgpuBackend) DeleteBuffer(buffer backend.BufferHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if buf := b.buffers[buffer]; buf != nil {
		buf.buffer.Release()
	}
	delete(b.buffers, buffer)
}

func (b *webgpuBackend) BindAttribute(program backend.ProgramHandle, location backend.AttributeLocation, buffer backend.BufferHandle, attribute backend.VertexAttribute) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !location.Valid() {
		return
	}
	p := b.programs[program]
	buf := b.buffers[buffer]
	if p == nil || !p.linked || buf == nil || buf.kind != backend.BufferKindVertex {
		common.Logger().Warn("webgpu attribute bind ignored", "program", program, "location", location, "buffer", buffer)
		return
	}
	p.bindings[location] = attributeBinding{buffer: buffer, attribute: attribute}
	p.dirty = true
}

func (b *webgpuBackend) SetUniform(program backend.ProgramHandle, location backend.UniformLocation, kind backend.UniformKind, values []float32) {
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
		common.Logger().Warn("webgpu uniform write ignored", "uniform", u.Name, "kind", kind, "values", len(values))
		return
	}
	b.queue.WriteBuffer(p.uniformBuffers[location], 0, common.SliceToBytes(values[:kind.Components()]))
}

func (b *webgpuBackend) BeginFrame(state backend.RenderState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A surface image still held by the previous frame cannot be acquired twice.
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	color := wgpu.RenderPassColorAttachment{
		View:    view,
		LoadOp:  wgpu.LoadOpClear,
		StoreOp: wgpu.StoreOpStore,
		ClearValue: wgpu.Color{
			R: float64(state.ClearColor[0]),
			G: float64(state.ClearColor[1]),
			B: float64(state.ClearColor[2]),
			A: float64(state.ClearColor[3]),
		},
	}
	if b.sampleCount > 1 {
		color.View = b.msaaTextureView
		color.ResolveTarget = view
		color.StoreOp = wgpu.StoreOpDiscard
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})

	b.state = state
	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *webgpuBackend) Draw(program backend.ProgramHandle, cmd backend.DrawCommand) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	p := b.programs[program]
	if p == nil || !p.linked {
		return
	}
	slots, err := b.ensurePipeline(program, p)
	if err != nil {
		common.Logger().Warn("webgpu draw dropped", "program", program, "error", err)
		return
	}

	b.framePass.SetPipeline(p.pipeline)
	for i, g := range p.bindGroups {
		b.framePass.SetBindGroup(uint32(i), g, nil)
	}
	for i, h := range slots {
		b.framePass.SetVertexBuffer(uint32(i), b.buffers[h].buffer, 0, wgpu.WholeSize)
	}

	if cmd.Indexed() {
		ib := b.buffers[cmd.IndexBuffer]
		if ib == nil || ib.kind != backend.BufferKindIndex {
			common.Logger().Warn("webgpu draw dropped", "program", program, "error", "index buffer is missing")
			return
		}
		b.framePass.SetIndexBuffer(ib.buffer, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(uint32(cmd.Count), 1, 0, 0, 0)
		return
	}
	b.framePass.Draw(uint32(cmd.Count), 1, 0, 0)
}

// ensurePipeline builds the program's render pipeline for the current frame state when it
// is missing or stale.
//
// Returns:
//   - []backend.BufferHandle: the buffer bound to each vertex buffer slot, in slot order
//   - error: an error if a bound buffer is gone or pipeline creation failed
func (b *webgpuBackend) ensurePipeline(h backend.ProgramHandle, p *programObject) ([]backend.BufferHandle, error) {
	layouts, slots, err := b.vertexLayouts(p)
	if err != nil {
		return nil, err
	}
	if p.pipeline != nil && !p.dirty && p.pipelineState == b.state {
		return slots, nil
	}
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}

	depthCompare := wgpu.CompareFunctionLess
	if !b.state.DepthTest {
		depthCompare = wgpu.CompareFunctionAlways
	}
	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("program %d render pipeline", h),
		Layout: p.layout,
		Vertex: wgpu.VertexState{
			Module:     p.vertex.module,
			EntryPoint: p.vertex.entry.Name,
			Buffers:    layouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.fragment.module,
			EntryPoint: p.fragment.entry.Name,
			Targets: []wgpu.ColorTargetState{{
				Format:    b.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: frontFace(b.state.FrontFace),
			CullMode:  cullMode(b.state.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: b.sampleCount,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: b.state.DepthTest,
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipeline = created
	p.pipelineState = b.state
	p.dirty = false
	common.Logger().Debug("webgpu pipeline built", "program", h, "buffers", len(layouts), "depth", b.state.DepthTest)
	return slots, nil
}

// vertexLayouts groups the program's bound attributes into one vertex buffer layout per
// source buffer. Slots are ordered by the lowest location each buffer feeds.
func (b *webgpuBackend) vertexLayouts(p *programObject) ([]wgpu.VertexBufferLayout, []backend.BufferHandle, error) {
	locations := make([]backend.AttributeLocation, 0, len(p.bindings))
	for loc := range p.bindings {
		locations = append(locations, loc)
	}
	sort.Slice(locations, func(i, j int) bool { return locations[i] < locations[j] })

	var layouts []wgpu.VertexBufferLayout
	var slots []backend.BufferHandle
	slotOf := make(map[backend.BufferHandle]int)
	for _, loc := range locations {
		bind := p.bindings[loc]
		if b.buffers[bind.buffer] == nil {
			return nil, nil, fmt.Errorf("attribute %d reads a deleted buffer", loc)
		}
		format, ok := vertexFormat(bind.attribute.Components)
		if !ok {
			return nil, nil, fmt.Errorf("attribute %d has %d components", loc, bind.attribute.Components)
		}
		slot, ok := slotOf[bind.buffer]
		if !ok {
			slot = len(layouts)
			slotOf[bind.buffer] = slot
			slots = append(slots, bind.buffer)
			layouts = append(layouts, wgpu.VertexBufferLayout{
				ArrayStride: uint64(bind.attribute.StrideBytes),
				StepMode:    wgpu.VertexStepModeVertex,
			})
		}
		layouts[slot].Attributes = append(layouts[slot].Attributes, wgpu.VertexAttribute{
			Format:         format,
			Offset:         uint64(bind.attribute.OffsetBytes),
			ShaderLocation: uint32(loc),
		})
	}
	return layouts, slots, nil
}

func vertexFormat(components int) (wgpu.VertexFormat, bool) {
	switch components {
	case 1:
		return wgpu.VertexFormatFloat32, true
	case 2:
		return wgpu.VertexFormatFloat32x2, true
	case 3:
		return wgpu.VertexFormatFloat32x3, true
	case 4:
		return wgpu.VertexFormatFloat32x4, true
	}
	return 0, false
}

func cullMode(mode backend.CullMode) wgpu.CullMode {
	switch mode {
	case backend.CullBack:
		return wgpu.CullModeBack
	case backend.CullFront:
		return wgpu.CullModeFront
	}
	return wgpu.CullModeNone
}

func frontFace(face backend.FrontFace) wgpu.FrontFace {
	if face == backend.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func (b *webgpuBackend) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		common.Logger().Error("webgpu frame encode failed", "error", err)
	} else {
		b.queue.Submit(commandBuffer)
		commandBuffer.Release()
		b.surface.Present()
	}

	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.frameView.Release()
	b.frameView = nil
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *webgpuBackend) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	b.configureSurface(common.Size{Width: width, Height: height})
}

func (b *webgpuBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.programs {
		b.releaseProgram(p)
	}
	for _, s := range b.shaders {
		if s.module != nil {
			s.module.Release()
		}
	}
	for _, buf := range b.buffers {
		buf.buffer.Release()
	}
	clear(b.programs)
	clear(b.shaders)
	clear(b.buffers)

	b.releaseAttachments()
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
