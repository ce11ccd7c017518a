package program

import "github.com/Carmen-Shannon/oxy-demos/engine/diagnostic"

// ProgramBuilderOption is a functional option used to configure a Program during Link.
type ProgramBuilderOption func(*program)

// WithLabel sets the name the program is reported under.
//
// Parameters:
//   - label: a human-readable identifier, e.g. "rotating-cube"
//
// Returns:
//   - ProgramBuilderOption: a function that sets the program label
func WithLabel(label string) ProgramBuilderOption {
	return func(p *program) {
		p.label = label
	}
}

// WithValidation enables or disables the validate step after linking. Enabled by default.
//
// Parameters:
//   - enabled: whether ValidateProgram runs after linking
//
// Returns:
//   - ProgramBuilderOption: a function that sets the validation flag
func WithValidation(enabled bool) ProgramBuilderOption {
	return func(p *program) {
		p.validate = enabled
	}
}

// WithReporter sets the diagnostics sink for link, validate and unresolved binding reports.
//
// Parameters:
//   - r: the reporter
//
// Returns:
//   - ProgramBuilderOption: a function that sets the reporter
func WithReporter(r diagnostic.Reporter) ProgramBuilderOption {
	return func(p *program) {
		p.reporter = r
	}
}
