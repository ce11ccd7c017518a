// Package reflection parses WGSL with naga and exposes the shader interface a backend
// needs without a GPU: entry points, located inputs and outputs, and uniform bindings.
package reflection

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/wgsl"
)

// Slot is a located stage input or output.
type Slot struct {
	// Name is the argument or struct member name.
	Name string

	// Location is the @location index.
	Location uint32

	// Components is the scalar count of the slot type (1 to 4).
	Components int
}

// EntryPoint is one shader entry function and its located interface.
type EntryPoint struct {
	Name    string
	Stage   backend.Stage
	Inputs  []Slot
	Outputs []Slot
}

// Uniform is a var<uniform> global.
type Uniform struct {
	Name    string
	Group   uint32
	Binding uint32

	// Kind is the value shape when the type maps onto a backend.UniformKind.
	Kind backend.UniformKind

	// Known is false when the type is a struct or otherwise has no UniformKind.
	Known bool

	// Size is the byte size of the uniform type.
	Size uint32
}

// Module is the reflected interface of one WGSL source.
type Module struct {
	EntryPoints []EntryPoint
	Uniforms    []Uniform

	// Warnings are non-fatal lowering messages, formatted for a compiler log.
	Warnings []string
}

// ErrNoEntryPoint is returned when the source has no entry point for the requested stage.
var ErrNoEntryPoint = errors.New("no entry point for stage")

// Parse parses and lowers WGSL source and reflects its interface.
//
// Parameters:
//   - source: WGSL source text
//
// Returns:
//   - *Module: the reflected interface, nil on failure
//   - error: a naga parse or lower error; Diagnostic formats it with source context
func Parse(source string) (*Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, err
	}
	lowered, err := wgsl.LowerWithWarnings(ast, source)
	if err != nil {
		return nil, err
	}
	m := reflect(lowered.Module)
	for _, w := range lowered.Warnings {
		m.Warnings = append(m.Warnings, fmt.Sprintf("warning: %d:%d: %s", w.Span.Start.Line, w.Span.Start.Column, w.Message))
	}
	return m, nil
}

// Diagnostic renders a Parse error as compiler log text.
// Source errors carrying a span are formatted with their source line.
//
// Parameters:
//   - err: an error returned by Parse
//
// Returns:
//   - string: the log text, empty for a nil error
func Diagnostic(err error) string {
	if err == nil {
		return ""
	}
	var list wgsl.SourceErrors
	if errors.As(err, &list) && list.HasErrors() {
		return strings.TrimSpace(list.FormatAll())
	}
	var single *wgsl.SourceError
	if errors.As(err, &single) {
		return strings.TrimSpace(single.FormatWithContext())
	}
	return err.Error()
}

// Entry returns the first entry point for stage.
func (m *Module) Entry(stage backend.Stage) (EntryPoint, error) {
	for _, ep := range m.EntryPoints {
		if ep.Stage == stage {
			return ep, nil
		}
	}
	return EntryPoint{}, fmt.Errorf("%w: %s", ErrNoEntryPoint, stage)
}

// Uniform looks a uniform up by name.
func (m *Module) Uniform(name string) (Uniform, bool) {
	for _, u := range m.Uniforms {
		if u.Name == name {
			return u, true
		}
	}
	return Uniform{}, false
}

// Input looks an entry point input up by name.
func (ep EntryPoint) Input(name string) (Slot, bool) {
	for _, s := range ep.Inputs {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// CheckInterface matches every fragment input against a vertex output at the same
// location with the same component count.
//
// Parameters:
//   - vertex: the vertex entry point
//   - fragment: the fragment entry point
//
// Returns:
//   - []string: one message per mismatch, empty when the stages agree
func CheckInterface(vertex, fragment EntryPoint) []string {
	outputs := make(map[uint32]Slot, len(vertex.Outputs))
	for _, o := range vertex.Outputs {
		outputs[o.Location] = o
	}
	var problems []string
	for _, in := range fragment.Inputs {
		out, ok := outputs[in.Location]
		if !ok {
			problems = append(problems, fmt.Sprintf("fragment input %q at location %d is not written by the vertex stage", in.Name, in.Location))
			continue
		}
		if out.Components != in.Components {
			problems = append(problems, fmt.Sprintf("location %d: vertex output %q has %d components, fragment input %q expects %d",
				in.Location, out.Name, out.Components, in.Name, in.Components))
		}
	}
	return problems
}

// MergeUniforms combines the uniforms of two stages.
// A name declared by both stages must agree on group, binding and size.
//
// Returns:
//   - []Uniform: the union sorted by group then binding
//   - []string: one message per conflicting declaration
func MergeUniforms(a, b []Uniform) ([]Uniform, []string) {
	byName := make(map[string]Uniform, len(a)+len(b))
	bySlot := make(map[[2]uint32]string, len(a)+len(b))
	var problems []string
	for _, u := range append(append([]Uniform{}, a...), b...) {
		slot := [2]uint32{u.Group, u.Binding}
		if prev, ok := byName[u.Name]; ok {
			if prev.Group != u.Group || prev.Binding != u.Binding || prev.Size != u.Size {
				problems = append(problems, fmt.Sprintf("uniform %q declared as @group(%d) @binding(%d) size %d and @group(%d) @binding(%d) size %d",
					u.Name, prev.Group, prev.Binding, prev.Size, u.Group, u.Binding, u.Size))
			}
			continue
		}
		if owner, ok := bySlot[slot]; ok && owner != u.Name {
			problems = append(problems, fmt.Sprintf("uniforms %q and %q share @group(%d) @binding(%d)", owner, u.Name, u.Group, u.Binding))
			continue
		}
		byName[u.Name] = u
		bySlot[slot] = u.Name
	}
	merged := make([]Uniform, 0, len(byName))
	for _, u := range byName {
		merged = append(merged, u)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Group != merged[j].Group {
			return merged[i].Group < merged[j].Group
		}
		return merged[i].Binding < merged[j].Binding
	})
	return merged, problems
}

func reflect(module *ir.Module) *Module {
	out := &Module{}
	for _, ep := range module.EntryPoints {
		var stage backend.Stage
		switch ep.Stage {
		case ir.StageVertex:
			stage = backend.StageVertex
		case ir.StageFragment:
			stage = backend.StageFragment
		default:
			continue
		}
		fn, ok := entryFunction(module, ep)
		if !ok {
			continue
		}
		entry := EntryPoint{Name: ep.Name, Stage: stage}
		for _, arg := range fn.Arguments {
			entry.Inputs = append(entry.Inputs, slots(module, arg.Name, arg.Type, arg.Binding)...)
		}
		if fn.Result != nil {
			entry.Outputs = slots(module, "", fn.Result.Type, fn.Result.Binding)
		}
		out.EntryPoints = append(out.EntryPoints, entry)
	}
	for _, g := range module.GlobalVariables {
		if g.Space != ir.SpaceUniform || g.Binding == nil {
			continue
		}
		u := Uniform{Name: g.Name, Group: g.Binding.Group, Binding: g.Binding.Binding}
		u.Kind, u.Known = uniformKind(module, g.Type)
		u.Size = typeSize(module, g.Type)
		out.Uniforms = append(out.Uniforms, u)
	}
	return out
}

func entryFunction(module *ir.Module, ep ir.EntryPoint) (*ir.Function, bool) {
	if int(ep.Function) < len(module.Functions) {
		if fn := &module.Functions[ep.Function]; fn.Name == ep.Name || fn.Name == "" {
			return fn, true
		}
	}
	for i := range module.Functions {
		if module.Functions[i].Name == ep.Name {
			return &module.Functions[i], true
		}
	}
	return nil, false
}

// slots flattens a located value or a struct of located members. Builtins are skipped.
func slots(module *ir.Module, name string, th ir.TypeHandle, binding *ir.Binding) []Slot {
	if binding != nil {
		if loc, ok := (*binding).(ir.LocationBinding); ok {
			return []Slot{{Name: name, Location: loc.Location, Components: components(module, th)}}
		}
		return nil
	}
	if int(th) >= len(module.Types) {
		return nil
	}
	st, ok := module.Types[th].Inner.(ir.StructType)
	if !ok {
		return nil
	}
	var out []Slot
	for _, m := range st.Members {
		if m.Binding == nil {
			continue
		}
		if loc, ok := (*m.Binding).(ir.LocationBinding); ok {
			out = append(out, Slot{Name: m.Name, Location: loc.Location, Components: components(module, m.Type)})
		}
	}
	return out
}

func components(module *ir.Module, th ir.TypeHandle) int {
	if int(th) >= len(module.Types) {
		return 0
	}
	switch t := module.Types[th].Inner.(type) {
	case ir.ScalarType:
		return 1
	case ir.VectorType:
		return int(t.Size)
	}
	return 0
}

func uniformKind(module *ir.Module, th ir.TypeHandle) (backend.UniformKind, bool) {
	if int(th) >= len(module.Types) {
		return 0, false
	}
	switch t := module.Types[th].Inner.(type) {
	case ir.ScalarType:
		if t.Kind == ir.ScalarFloat {
			return backend.UniformFloat, true
		}
	case ir.VectorType:
		if t.Scalar.Kind != ir.ScalarFloat {
			return 0, false
		}
		switch t.Size {
		case ir.Vec2:
			return backend.UniformVec2, true
		case ir.Vec3:
			return backend.UniformVec3, true
		case ir.Vec4:
			return backend.UniformVec4, true
		}
	case ir.MatrixType:
		if t.Columns == ir.Vec4 && t.Rows == ir.Vec4 {
			return backend.UniformMat4, true
		}
	}
	return 0, false
}

func typeSize(module *ir.Module, th ir.TypeHandle) uint32 {
	if int(th) >= len(module.Types) {
		return 0
	}
	switch t := module.Types[th].Inner.(type) {
	case ir.ScalarType:
		return uint32(t.Width)
	case ir.VectorType:
		return uint32(t.Size) * uint32(t.Scalar.Width)
	case ir.MatrixType:
		// Columns are padded to vec4 alignment except for 2-row matrices.
		rows := uint32(t.Rows)
		if rows == 3 {
			rows = 4
		}
		return uint32(t.Columns) * rows * uint32(t.Scalar.Width)
	case ir.StructType:
		return t.Span
	}
	return 0
}
