// Package animator drives one demo's per-frame update: it owns the demo's static geometry,
// writes time-varying uniforms through an AnimatorBackend strategy and issues one draw per tick.
package animator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/layout"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/pipeline"
)

// State is the lifecycle state of an Animator.
type State int

const (
	// StateUninitialized means Setup has not completed.
	StateUninitialized State = iota

	// StateReady means geometry is uploaded, the layout declared and static uniforms written.
	StateReady

	// StateRunning means ticks are being requested from a Scheduler.
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	}
	return "unknown"
}

var (
	// ErrNotReady is returned by Start when Setup has not completed.
	ErrNotReady = errors.New("animator is not ready")

	// ErrRunning is returned by Setup and Start while ticks are being requested.
	ErrRunning = errors.New("animator is running")

	// ErrNoGeometry is returned by Setup when the geometry has no vertices or layout.
	ErrNoGeometry = errors.New("animator geometry is empty")

	// ErrPartialRecord is returned by Setup when Vertices ends inside a record.
	ErrPartialRecord = errors.New("vertex data ends with a partial record")
)

// floatSize is the byte size of one vertex component.
const floatSize = 4

// Scheduler requests a callback on the next frame. The callback receives the frame time.
type Scheduler interface {
	RequestFrame(callback func(now time.Duration))
}

// Geometry is the static vertex data of a demo.
type Geometry struct {
	// Vertices holds interleaved float32 records described by Layout.
	Vertices []float32

	// Indices holds uint16 element indices. Nil draws the vertices in order.
	Indices []uint16

	// Layout maps Vertices onto the program's attributes.
	Layout layout.VertexLayout
}

// VertexCount returns the number of records in Vertices, measured in layout strides.
// A trailing record that holds every attribute but lacks its end padding is counted.
func (g Geometry) VertexCount() int {
	n, _ := g.records()
	return n
}

func (g Geometry) records() (int, error) {
	if g.Layout == nil || g.Layout.Stride() <= 0 {
		return 0, nil
	}
	stride := g.Layout.Stride()
	size := len(g.Vertices) * floatSize
	n, rest := size/stride, size%stride
	if rest == 0 {
		return n, nil
	}
	end := 0
	for _, e := range g.Layout.Entries() {
		end = max(end, e.OffsetBytes+e.Components*floatSize)
	}
	if rest >= end {
		return n + 1, nil
	}
	return n, fmt.Errorf("%w: %d trailing bytes, a record needs %d", ErrPartialRecord, rest, end)
}

// UniformValue is a uniform written once at setup.
type UniformValue struct {
	Name   string
	Kind   backend.UniformKind
	Values []float32
}

// animator is the implementation of the Animator interface.
type animator struct {
	mu *sync.Mutex

	label       string
	pipeline    pipeline.Pipeline
	geometry    Geometry
	backend     AnimatorBackend
	static      []UniformValue
	singleFrame bool

	state      State
	generation uint64
	scheduler  Scheduler

	// uploaded holds every buffer created by Setup, released together by Release.
	uploaded []buffer.GpuBuffer
	vertices buffer.GpuBuffer
	indices  buffer.GpuBuffer
	command  backend.DrawCommand

	locations map[string]backend.UniformLocation
	frames    int
	lastTime  float64
}

// Animator is the per-frame driver of one demo.
//
// It moves Uninitialized → Ready on Setup and Ready → Running on Start. While running, each
// Tick reads the frame time, lets its AnimatorBackend write the time-varying uniforms, issues
// exactly one draw and requests the next tick. Stop returns it to Ready without touching GPU
// resources.
type Animator interface {
	// Label returns the name the animator logs under.
	Label() string

	// State returns the lifecycle state.
	State() State

	// Pipeline returns the pipeline drawn each tick.
	Pipeline() pipeline.Pipeline

	// Backend returns the per-tick strategy.
	Backend() AnimatorBackend

	// Setup resolves every attribute and uniform location, uploads the geometry, declares the
	// layout and writes the static uniforms. Calling it again on a Ready animator uploads new,
	// independent buffers.
	//
	// Returns:
	//   - error: escalated diagnostics, buffer or layout errors, ErrRunning or ErrNoGeometry
	Setup() error

	// Start schedules the first tick.
	//
	// Parameters:
	//   - s: the scheduler providing frame callbacks
	//
	// Returns:
	//   - error: ErrNotReady before Setup, ErrRunning when already started
	Start(s Scheduler) error

	// Tick performs one frame at the given time. Ignored unless running.
	//
	// Parameters:
	//   - now: the elapsed time read from the frame clock
	Tick(now time.Duration)

	// Stop stops requesting ticks. GPU resources are kept.
	Stop()

	// Frames returns the number of ticks that issued a draw call. A backend may still drop
	// a draw it cannot satisfy, so this can exceed the draws the backend recorded.
	Frames() int

	// LastTime returns the time in seconds of the last tick.
	LastTime() float64

	// Vertices returns the vertex buffer of the latest setup, nil before Setup.
	Vertices() buffer.GpuBuffer

	// Indices returns the index buffer of the latest setup, nil for non-indexed geometry.
	Indices() buffer.GpuBuffer

	// Command returns the draw issued each tick.
	Command() backend.DrawCommand

	// UniformLocation returns the location resolved for a uniform at setup, NoUniform otherwise.
	UniformLocation(name string) backend.UniformLocation

	// Release stops the animator and deletes every buffer it uploaded.
	Release()
}

var _ Animator = &animator{}

// NewAnimator creates an Uninitialized animator for a pipeline and its static geometry.
//
// Parameters:
//   - p: the pipeline drawn each tick
//   - geometry: the vertex data, optional indices and layout
//   - options: functional options for the strategy, static uniforms and labels
//
// Returns:
//   - Animator: the animator
func NewAnimator(p pipeline.Pipeline, geometry Geometry, options ...AnimatorBuilderOption) Animator {
	a := &animator{
		mu:        &sync.Mutex{},
		label:     p.PipelineKey(),
		pipeline:  p,
		geometry:  geometry,
		backend:   NewStaticAnimatorBackend(),
		locations: make(map[string]backend.UniformLocation),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *animator) Label() string {
	return a.label
}

func (a *animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *animator) Pipeline() pipeline.Pipeline {
	return a.pipeline
}

func (a *animator) Backend() AnimatorBackend {
	return a.backend
}

func (a *animator) Setup() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateRunning {
		return ErrRunning
	}
	g := a.geometry
	if g.Layout == nil || len(g.Vertices) == 0 {
		return ErrNoGeometry
	}
	count, err := g.records()
	if err != nil {
		return fmt.Errorf("setup %s: %w", a.label, err)
	}
	prog := a.pipeline.Program()

	attributes := make([]string, 0, len(g.Layout.Entries()))
	for _, e := range g.Layout.Entries() {
		attributes = append(attributes, e.Name)
	}
	uniforms := make([]string, 0, len(a.static)+len(a.backend.Uniforms()))
	for _, u := range a.static {
		uniforms = append(uniforms, u.Name)
	}
	uniforms = append(uniforms, a.backend.Uniforms()...)
	if err := prog.Resolve(attributes, uniforms); err != nil {
		return fmt.Errorf("setup %s: %w", a.label, err)
	}
	locations := make(map[string]backend.UniformLocation, len(uniforms))
	for _, name := range uniforms {
		locations[name] = prog.UniformLocation(name)
	}

	vertices, err := buffer.UploadVertices(prog.Backend(), g.Vertices)
	if err != nil {
		return fmt.Errorf("setup %s: %w", a.label, err)
	}
	a.uploaded = append(a.uploaded, vertices)
	if err := layout.DeclareLayout(g.Layout, vertices, prog); err != nil {
		return fmt.Errorf("setup %s: %w", a.label, err)
	}

	var indices buffer.GpuBuffer
	command := buffer.ArrayDraw(count)
	if len(g.Indices) > 0 {
		indices, err = buffer.UploadIndices(prog.Backend(), g.Indices)
		if err != nil {
			return fmt.Errorf("setup %s: %w", a.label, err)
		}
		a.uploaded = append(a.uploaded, indices)
		command = buffer.IndexedDraw(indices)
	}

	a.vertices = vertices
	a.indices = indices
	a.command = command
	a.locations = locations
	for _, u := range a.static {
		a.write(u.Name, u.Kind, u.Values)
	}
	a.state = StateReady

	common.Logger().Debug("animator ready", "animator", a.label, "strategy", a.backend.Type(), "count", command.Count)
	return nil
}

// write writes through the location resolved at setup. Names never resolved, and names that
// resolved to the sentinel, are dropped.
func (a *animator) write(name string, kind backend.UniformKind, values []float32) {
	loc, ok := a.locations[name]
	if !ok || !loc.Valid() {
		return
	}
	a.pipeline.Program().SetUniform(loc, kind, values)
}

func (a *animator) Start(s Scheduler) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case StateUninitialized:
		return ErrNotReady
	case StateRunning:
		return ErrRunning
	}
	a.state = StateRunning
	a.scheduler = s
	a.generation++
	a.request()
	return nil
}

// request schedules the next tick for the current run. Callbacks of an earlier run are ignored.
func (a *animator) request() {
	generation := a.generation
	a.scheduler.RequestFrame(func(now time.Duration) {
		a.mu.Lock()
		current := a.generation == generation
		a.mu.Unlock()
		if current {
			a.Tick(now)
		}
	})
}

func (a *animator) Tick(now time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateRunning {
		return
	}
	seconds := now.Seconds()
	a.backend.Update(seconds, a.write)
	a.pipeline.Program().Draw(a.command)
	a.frames++
	a.lastTime = seconds

	if a.singleFrame {
		return
	}
	a.request()
}

func (a *animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateRunning {
		return
	}
	a.state = StateReady
	a.generation++
	a.scheduler = nil
}

func (a *animator) Frames() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}

func (a *animator) LastTime() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastTime
}

func (a *animator) Vertices() buffer.GpuBuffer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.vertices
}

func (a *animator) Indices() buffer.GpuBuffer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.indices
}

func (a *animator) Command() backend.DrawCommand {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.command
}

func (a *animator) UniformLocation(name string) backend.UniformLocation {
	a.mu.Lock()
	defer a.mu.Unlock()
	if loc, ok := a.locations[name]; ok {
		return loc
	}
	return backend.NoUniform
}

func (a *animator) Release() {
	a.Stop()

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, b := range a.uploaded {
		b.Release()
	}
	a.uploaded = nil
	a.vertices = nil
	a.indices = nil
	a.state = StateUninitialized
}
