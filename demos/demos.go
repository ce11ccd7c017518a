// Package demos holds the runnable demos: their embedded shaders, static geometry and the
// animator wiring that takes each one from source text to a running frame loop.
package demos

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine"
	"github.com/Carmen-Shannon/oxy-demos/engine/diagnostic"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/shader"
)

//go:embed shaders
var shaderFS embed.FS

// Options are the per-run settings every demo is built with.
type Options struct {
	// Size is the surface size in pixels. Zero uses common.DefaultSurfaceSize.
	Size common.Size

	// Period is the cube's rotation period. Zero uses animator.DefaultRotationPeriod.
	Period time.Duration

	// Validate enables the validate step after linking.
	Validate bool

	// Reporter receives every diagnostic. Nil uses a permissive reporter.
	Reporter diagnostic.Reporter
}

func (o Options) size() common.Size {
	return common.Coalesce(o.Size, common.DefaultSurfaceSize)
}

func (o Options) period() time.Duration {
	return common.Coalesce(o.Period, animator.DefaultRotationPeriod)
}

// buildFunc creates the animator of one demo on a backend.
type buildFunc func(b backend.Backend, opts Options) (animator.Animator, error)

type demo struct {
	name        string
	description string
	build       buildFunc
}

// Demo is one runnable demo.
type Demo interface {
	// Name returns the name the demo is selected by.
	Name() string

	// Description returns a one-line summary.
	Description() string

	// Build compiles and links the demo's program on b and returns its Uninitialized animator.
	//
	// Parameters:
	//   - b: the backend to build on; its Language selects the shader sources
	//   - opts: surface size, rotation period and diagnostics settings
	//
	// Returns:
	//   - animator.Animator: the animator, not yet set up
	//   - error: escalated diagnostics or a missing shader source
	Build(b backend.Backend, opts Options) (animator.Animator, error)
}

var _ Demo = &demo{}

func (d *demo) Name() string {
	return d.name
}

func (d *demo) Description() string {
	return d.description
}

func (d *demo) Build(b backend.Backend, opts Options) (animator.Animator, error) {
	a, err := d.build(b, opts)
	if err != nil {
		return nil, fmt.Errorf("demo %s: %w", d.name, err)
	}
	return a, nil
}

var registry = map[string]Demo{}

func register(name, description string, build buildFunc) {
	registry[name] = &demo{name: name, description: description, build: build}
}

// Names returns every demo name in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every demo sorted by name.
func All() []Demo {
	names := Names()
	out := make([]Demo, len(names))
	for i, name := range names {
		out[i] = registry[name]
	}
	return out
}

// Lookup returns the demo registered under name.
//
// Parameters:
//   - name: the demo name
//
// Returns:
//   - Demo: the demo
//   - bool: false when no demo has that name
func Lookup(name string) (Demo, bool) {
	d, ok := registry[name]
	return d, ok
}

// Launch builds a demo, sets it up, hands its render state to the engine and starts it.
//
// Parameters:
//   - d: the demo
//   - e: the engine providing the backend and frame callbacks
//   - opts: the build settings
//
// Returns:
//   - animator.Animator: the running animator
//   - error: any build, setup or start error; the animator is released on failure
func Launch(d Demo, e engine.Engine, opts Options) (animator.Animator, error) {
	a, err := d.Build(e.Backend(), opts)
	if err != nil {
		return nil, err
	}
	if err := a.Setup(); err != nil {
		release(a)
		return nil, err
	}
	e.SetRenderState(a.Pipeline().State())
	if err := a.Start(e); err != nil {
		release(a)
		return nil, err
	}
	common.Logger().Info("demo started", "demo", d.Name(), "backend", e.Backend().Type())
	return a, nil
}

// release frees the animator buffers and its program.
func release(a animator.Animator) {
	a.Release()
	a.Pipeline().Release()
}

// extension returns the file suffix of shader sources written in lang.
func extension(lang backend.ShaderLanguage) string {
	if lang == backend.LanguageGLSL {
		return ".glsl"
	}
	return ".wgsl"
}

// compileAndLink loads shaders/<vertex>.vert.<ext> and shaders/<fragment>.frag.<ext>,
// compiles both and links them.
func compileAndLink(b backend.Backend, opts Options, label, vertex, fragment string) (program.Program, error) {
	ext := extension(b.Language())
	vsrc, err := shader.LoadSource(shaderFS, backend.StageVertex, path.Join("shaders", vertex+".vert"+ext))
	if err != nil {
		return nil, err
	}
	fsrc, err := shader.LoadSource(shaderFS, backend.StageFragment, path.Join("shaders", fragment+".frag"+ext))
	if err != nil {
		return nil, err
	}

	shaderOptions := func(stage backend.Stage) []shader.ShaderUnitBuilderOption {
		options := []shader.ShaderUnitBuilderOption{shader.WithKey(label + "." + stage.String())}
		if opts.Reporter != nil {
			options = append(options, shader.WithReporter(opts.Reporter))
		}
		return options
	}
	vs := shader.Compile(b, vsrc, shaderOptions(backend.StageVertex)...)
	fs := shader.Compile(b, fsrc, shaderOptions(backend.StageFragment)...)

	programOptions := []program.ProgramBuilderOption{
		program.WithLabel(label),
		program.WithValidation(opts.Validate),
	}
	if opts.Reporter != nil {
		programOptions = append(programOptions, program.WithReporter(opts.Reporter))
	}
	p, err := program.Link(b, vs, fs, programOptions...)
	if err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}
