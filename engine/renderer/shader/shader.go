package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/diagnostic"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
)

// CompileStatus is the outcome of compiling a ShaderUnit.
type CompileStatus int

const (
	// CompileStatusPending is the state of a unit that has not been compiled, or was released.
	CompileStatusPending CompileStatus = iota

	// CompileStatusSuccess indicates the backend compiled the source.
	CompileStatusSuccess

	// CompileStatusFailed indicates the backend rejected the source. The unit is still usable for linking.
	CompileStatusFailed
)

func (s CompileStatus) String() string {
	switch s {
	case CompileStatusSuccess:
		return "success"
	case CompileStatusFailed:
		return "failed"
	}
	return "pending"
}

// ErrEmptySource is the diagnostic text recorded for a ShaderSource without text.
var ErrEmptySource = errors.New("shader source is empty")

// ShaderSource is the immutable source text of one stage.
type ShaderSource struct {
	Stage backend.Stage
	Text  string
}

// LoadSource reads a ShaderSource from a file system, typically an embed.FS.
//
// Parameters:
//   - fsys: the file system holding the source
//   - stage: the stage the source implements
//   - path: the file path inside fsys
//
// Returns:
//   - ShaderSource: the loaded source
//   - error: an error if the file could not be read
func LoadSource(fsys fs.FS, stage backend.Stage, path string) (ShaderSource, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return ShaderSource{}, fmt.Errorf("shader: failed to read %s source %q: %w", stage, path, err)
	}
	return ShaderSource{Stage: stage, Text: string(data)}, nil
}

// shaderUnit is the implementation of the ShaderUnit interface.
type shaderUnit struct {
	key      string
	stage    backend.Stage
	handle   backend.ShaderHandle
	status   CompileStatus
	log      string
	err      error
	reporter diagnostic.Reporter
	b        backend.Backend
}

// ShaderUnit is one compiled shader stage. It owns its backend shader object.
type ShaderUnit interface {
	// Key returns the label used in diagnostics.
	Key() string

	// Stage returns the pipeline stage of the unit.
	Stage() backend.Stage

	// Handle returns the backend shader object. Zero after Release.
	Handle() backend.ShaderHandle

	// Status returns the compile status.
	Status() CompileStatus

	// Log returns the compiler diagnostic log. Populated on failure, possibly on success too.
	Log() string

	// Err returns the escalated compile diagnostic, or nil under a permissive policy.
	Err() error

	// Release deletes the backend shader object. The unit reports CompileStatusPending afterwards.
	Release()
}

var _ ShaderUnit = &shaderUnit{}

// Compile allocates a stage-typed backend shader, attaches the source text and compiles it.
// The unit is returned whether or not compilation succeeded. A failure is reported as a
// ShaderCompileError diagnostic.
//
// Parameters:
//   - b: the backend to compile on
//   - src: the stage and source text
//   - options: functional options for the unit label and diagnostics reporter
//
// Returns:
//   - ShaderUnit: the compiled unit with status Success or Failed
func Compile(b backend.Backend, src ShaderSource, options ...ShaderUnitBuilderOption) ShaderUnit {
	u := &shaderUnit{
		key:   src.Stage.String(),
		stage: src.Stage,
		b:     b,
	}
	for _, opt := range options {
		opt(u)
	}
	if u.reporter == nil {
		u.reporter = diagnostic.NewReporter()
	}

	if strings.TrimSpace(src.Text) == "" {
		u.status = CompileStatusFailed
		u.log = ErrEmptySource.Error()
		u.report()
		return u
	}

	handle, st := b.CompileShader(src.Stage, src.Text)
	u.handle = handle
	u.log = st.Log
	if !st.OK {
		u.status = CompileStatusFailed
		if u.log == "" {
			u.log = "compilation failed without a log"
		}
		u.report()
		return u
	}
	u.status = CompileStatusSuccess
	common.Logger().Debug("shader compiled", "shader", u.key, "stage", u.stage, "handle", u.handle)
	return u
}

func (u *shaderUnit) report() {
	u.err = u.reporter.Report(&diagnostic.Diagnostic{
		Kind:    diagnostic.KindShaderCompile,
		Stage:   u.stage.String(),
		Subject: u.key,
		Text:    u.log,
	})
}

func (u *shaderUnit) Key() string {
	return u.key
}

func (u *shaderUnit) Stage() backend.Stage {
	return u.stage
}

func (u *shaderUnit) Handle() backend.ShaderHandle {
	return u.handle
}

func (u *shaderUnit) Status() CompileStatus {
	return u.status
}

func (u *shaderUnit) Log() string {
	return u.log
}

func (u *shaderUnit) Err() error {
	return u.err
}

func (u *shaderUnit) Release() {
	if u.handle != 0 {
		u.b.DeleteShader(u.handle)
	}
	u.handle = 0
	u.status = CompileStatusPending
}
