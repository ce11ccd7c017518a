package program

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/diagnostic"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/shader"
)

// Status is the outcome of a link or validate step.
type Status int

const (
	// StatusPending means the step has not run.
	StatusPending Status = iota

	// StatusSuccess means the step succeeded.
	StatusSuccess

	// StatusFailed means the step failed. Its log holds the backend output.
	StatusFailed

	// StatusSkipped means validation was disabled for this program.
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	}
	return "pending"
}

func statusOf(ok bool) Status {
	if ok {
		return StatusSuccess
	}
	return StatusFailed
}

// program is the implementation of the Program interface.
type program struct {
	mu *sync.Mutex

	label    string
	validate bool
	reporter diagnostic.Reporter

	b        backend.Backend
	handle   backend.ProgramHandle
	vertex   shader.ShaderUnit
	fragment shader.ShaderUnit

	linkStatus     Status
	linkLog        string
	validateStatus Status
	validateLog    string

	attributes map[string]backend.AttributeLocation
	uniforms   map[string]backend.UniformLocation
}

// Program is a linked vertex and fragment pair. It owns both units and its backend program
// object, and caches every attribute and uniform location it resolves.
type Program interface {
	// Label returns the name the program is reported under.
	Label() string

	// Handle returns the backend program object. Zero after Release.
	Handle() backend.ProgramHandle

	// Backend returns the backend the program lives on.
	Backend() backend.Backend

	// Vertex returns the owned vertex unit.
	Vertex() shader.ShaderUnit

	// Fragment returns the owned fragment unit.
	Fragment() shader.ShaderUnit

	// LinkStatus returns the link outcome.
	LinkStatus() Status

	// LinkLog returns the linker diagnostic log.
	LinkLog() string

	// ValidateStatus returns the validate outcome, StatusSkipped when validation is disabled.
	ValidateStatus() Status

	// ValidateLog returns the validation diagnostic log.
	ValidateLog() string

	// Linked reports whether the program linked and is still live.
	Linked() bool

	// AttributeLocation returns the cached location of a vertex attribute, resolving it on first use.
	// Absent names, and every name before a successful link, yield backend.NoAttribute.
	//
	// Parameters:
	//   - name: the attribute name as declared in the vertex stage
	//
	// Returns:
	//   - backend.AttributeLocation: the location or the sentinel
	AttributeLocation(name string) backend.AttributeLocation

	// UniformLocation returns the cached location of a uniform, resolving it on first use.
	// Absent names, and every name before a successful link, yield backend.NoUniform.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - backend.UniformLocation: the location or the sentinel
	UniformLocation(name string) backend.UniformLocation

	// Resolve resolves and caches a set of names up front.
	//
	// Parameters:
	//   - attributes: attribute names to resolve
	//   - uniforms: uniform names to resolve
	//
	// Returns:
	//   - error: the escalated UnresolvedBinding diagnostics joined, or nil
	Resolve(attributes, uniforms []string) error

	// SetUniform writes a uniform. Sentinel locations and unlinked programs are ignored.
	SetUniform(location backend.UniformLocation, kind backend.UniformKind, values []float32)

	// Draw issues one draw call with this program. Unlinked programs draw nothing.
	Draw(cmd backend.DrawCommand)

	// Release deletes the program and both units. All cached locations become invalid.
	Release()
}

var _ Program = &program{}

// Link attaches both units, links them and then validates the result as a separate step.
// Linking is attempted even when a unit failed to compile; the backend then fails the link.
// Every failure is reported to the diagnostics reporter.
//
// Parameters:
//   - b: the backend the units were compiled on
//   - vertex: the vertex unit, owned by the program from now on
//   - fragment: the fragment unit, owned by the program from now on
//   - options: functional options for label, validation and diagnostics
//
// Returns:
//   - Program: the program, whatever its link and validate status
//   - error: the first escalated diagnostic, nil under a permissive policy
func Link(b backend.Backend, vertex, fragment shader.ShaderUnit, options ...ProgramBuilderOption) (Program, error) {
	p := &program{
		mu:         &sync.Mutex{},
		label:      "program",
		validate:   true,
		b:          b,
		vertex:     vertex,
		fragment:   fragment,
		attributes: make(map[string]backend.AttributeLocation),
		uniforms:   make(map[string]backend.UniformLocation),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.reporter == nil {
		p.reporter = diagnostic.NewReporter()
	}

	var escalated []error
	for _, u := range []shader.ShaderUnit{vertex, fragment} {
		if err := u.Err(); err != nil {
			escalated = append(escalated, err)
		}
	}

	handle, st := b.LinkProgram(vertex.Handle(), fragment.Handle())
	p.handle = handle
	p.linkStatus = statusOf(st.OK)
	p.linkLog = st.Log
	if !st.OK {
		escalated = append(escalated, p.reporter.Report(&diagnostic.Diagnostic{
			Kind:    diagnostic.KindProgramLink,
			Subject: p.label,
			Text:    st.Log,
		}))
	}

	switch {
	case !p.validate:
		p.validateStatus = StatusSkipped
	default:
		vst := b.ValidateProgram(handle)
		p.validateStatus = statusOf(vst.OK)
		p.validateLog = vst.Log
		if !vst.OK {
			escalated = append(escalated, p.reporter.Report(&diagnostic.Diagnostic{
				Kind:    diagnostic.KindProgramValidate,
				Subject: p.label,
				Text:    vst.Log,
			}))
		}
	}

	common.Logger().Debug("program linked", "program", p.label, "link", p.linkStatus, "validate", p.validateStatus)
	return p, firstError(escalated)
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *program) Label() string {
	return p.label
}

func (p *program) Handle() backend.ProgramHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle
}

func (p *program) Backend() backend.Backend {
	return p.b
}

func (p *program) Vertex() shader.ShaderUnit {
	return p.vertex
}

func (p *program) Fragment() shader.ShaderUnit {
	return p.fragment
}

func (p *program) LinkStatus() Status {
	return p.linkStatus
}

func (p *program) LinkLog() string {
	return p.linkLog
}

func (p *program) ValidateStatus() Status {
	return p.validateStatus
}

func (p *program) ValidateLog() string {
	return p.validateLog
}

func (p *program) Linked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.linked()
}

func (p *program) linked() bool {
	return p.handle != 0 && p.linkStatus == StatusSuccess
}

func (p *program) AttributeLocation(name string) backend.AttributeLocation {
	loc, _ := p.attribute(name)
	return loc
}

func (p *program) attribute(name string) (backend.AttributeLocation, error) {
	p.mu.Lock()
	if !p.linked() {
		p.mu.Unlock()
		return backend.NoAttribute, nil
	}
	if loc, ok := p.attributes[name]; ok {
		p.mu.Unlock()
		return loc, nil
	}
	loc := p.b.AttributeLocation(p.handle, name)
	p.attributes[name] = loc
	p.mu.Unlock()

	if !loc.Valid() {
		return loc, p.unresolved("attribute", name)
	}
	return loc, nil
}

func (p *program) UniformLocation(name string) backend.UniformLocation {
	loc, _ := p.uniform(name)
	return loc
}

func (p *program) uniform(name string) (backend.UniformLocation, error) {
	p.mu.Lock()
	if !p.linked() {
		p.mu.Unlock()
		return backend.NoUniform, nil
	}
	if loc, ok := p.uniforms[name]; ok {
		p.mu.Unlock()
		return loc, nil
	}
	loc := p.b.UniformLocation(p.handle, name)
	p.uniforms[name] = loc
	p.mu.Unlock()

	if !loc.Valid() {
		return loc, p.unresolved("uniform", name)
	}
	return loc, nil
}

func (p *program) unresolved(what, name string) error {
	return p.reporter.Report(&diagnostic.Diagnostic{
		Kind:    diagnostic.KindUnresolvedBinding,
		Subject: name,
		Text:    what + " not found in program " + p.label,
	})
}

func (p *program) Resolve(attributes, uniforms []string) error {
	var errs []error
	for _, name := range attributes {
		if _, err := p.attribute(name); err != nil {
			errs = append(errs, err)
		}
	}
	for _, name := range uniforms {
		if _, err := p.uniform(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *program) SetUniform(location backend.UniformLocation, kind backend.UniformKind, values []float32) {
	if !location.Valid() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.linked() {
		return
	}
	p.b.SetUniform(p.handle, location, kind, values)
}

func (p *program) Draw(cmd backend.DrawCommand) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.linked() {
		return
	}
	p.b.Draw(p.handle, cmd)
}

func (p *program) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != 0 {
		p.b.DeleteProgram(p.handle)
	}
	p.handle = 0
	clear(p.attributes)
	clear(p.uniforms)
	p.vertex.Release()
	p.fragment.Release()
}
