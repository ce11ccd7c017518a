// Package diagnostic carries the shader pipeline error taxonomy and the policy deciding
// whether a diagnostic is only logged or escalated to a hard stop.
package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a diagnostic.
type Kind int

const (
	// KindShaderCompile is a shader stage that failed to compile.
	KindShaderCompile Kind = iota

	// KindProgramLink is a program that failed to link.
	KindProgramLink

	// KindProgramValidate is a linked program that failed validation.
	KindProgramValidate

	// KindUnresolvedBinding is an attribute or uniform name the program does not expose.
	KindUnresolvedBinding
)

var kindNames = map[Kind]string{
	KindShaderCompile:     "compile",
	KindProgramLink:       "link",
	KindProgramValidate:   "validate",
	KindUnresolvedBinding: "unresolved",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a configuration name ("compile", "link", "validate", "unresolved") to a Kind.
//
// Parameters:
//   - name: the kind name, case-insensitive
//
// Returns:
//   - Kind: the parsed kind
//   - error: an error if the name is unknown
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown diagnostic kind %q", name)
}

// Sentinels for errors.Is against a *Diagnostic of the matching kind.
var (
	ErrShaderCompile     = errors.New("shader compile error")
	ErrProgramLink       = errors.New("program link error")
	ErrProgramValidate   = errors.New("program validate error")
	ErrUnresolvedBinding = errors.New("unresolved binding")
)

var kindSentinels = map[Kind]error{
	KindShaderCompile:     ErrShaderCompile,
	KindProgramLink:       ErrProgramLink,
	KindProgramValidate:   ErrProgramValidate,
	KindUnresolvedBinding: ErrUnresolvedBinding,
}

// Diagnostic is one reported problem with its backend text.
type Diagnostic struct {
	Kind Kind

	// Stage is the shader stage ("vertex", "fragment") for compile diagnostics.
	Stage string

	// Subject names what failed: a program label or a binding name.
	Subject string

	// Text is the backend diagnostic log.
	Text string
}

func (d *Diagnostic) Error() string {
	var sb strings.Builder
	sb.WriteString(kindSentinels[d.Kind].Error())
	if d.Stage != "" {
		fmt.Fprintf(&sb, " (%s)", d.Stage)
	}
	if d.Subject != "" {
		fmt.Fprintf(&sb, " %q", d.Subject)
	}
	if d.Text != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Text)
	}
	return sb.String()
}

// Is matches the kind sentinel of d.
func (d *Diagnostic) Is(target error) bool {
	return kindSentinels[d.Kind] == target
}
