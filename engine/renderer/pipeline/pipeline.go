// Package pipeline pairs a linked program with the fixed-function state it is drawn with.
package pipeline

import (
	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/program"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used in logs
	pipelineKey string

	program program.Program

	// The following properties are toggled with the builder options and passed to BeginFrame.

	clearColor       common.Color
	depthTestEnabled bool
	cullMode         backend.CullMode
	frontFace        backend.FrontFace
}

// Pipeline is a program plus the render state every frame that draws it begins with.
type Pipeline interface {
	// PipelineKey returns the key associated with this pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Program returns the linked program drawn by this pipeline.
	//
	// Returns:
	//   - program.Program: the program
	Program() program.Program

	// ClearColor returns the color the surface is cleared to at the start of a frame.
	ClearColor() common.Color

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	DepthTestEnabled() bool

	// CullMode returns the faces discarded by this pipeline.
	CullMode() backend.CullMode

	// FrontFace returns the winding order of front-facing triangles.
	FrontFace() backend.FrontFace

	// State returns the render state passed to backend.Backend.BeginFrame.
	//
	// Returns:
	//   - backend.RenderState: the full fixed-function state
	State() backend.RenderState

	// Release releases the program.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline for a linked program. Depth testing and culling are off,
// front faces wind counter-clockwise and the clear color is common.DefaultClearColor.
//
// Parameters:
//   - pipelineKey: the key for this pipeline
//   - p: the program drawn by the pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline with the specified configuration
func NewPipeline(pipelineKey string, p program.Program, opts ...PipelineBuilderOption) Pipeline {
	pl := &pipeline{
		pipelineKey: pipelineKey,
		program:     p,
		clearColor:  common.DefaultClearColor,
		cullMode:    backend.CullNone,
		frontFace:   backend.FrontFaceCCW,
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Program() program.Program {
	return p.program
}

func (p *pipeline) ClearColor() common.Color {
	return p.clearColor
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) CullMode() backend.CullMode {
	return p.cullMode
}

func (p *pipeline) FrontFace() backend.FrontFace {
	return p.frontFace
}

func (p *pipeline) State() backend.RenderState {
	return backend.RenderState{
		ClearColor: p.clearColor,
		DepthTest:  p.depthTestEnabled,
		CullMode:   p.cullMode,
		FrontFace:  p.frontFace,
	}
}

func (p *pipeline) Release() {
	if p.program != nil {
		p.program.Release()
	}
}
