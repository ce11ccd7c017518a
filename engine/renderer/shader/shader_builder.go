package shader

import "github.com/Carmen-Shannon/oxy-demos/engine/diagnostic"

// ShaderUnitBuilderOption is a functional option for configuring a ShaderUnit during Compile.
type ShaderUnitBuilderOption func(u *shaderUnit)

// WithKey sets the label the unit is reported under.
//
// Parameters:
//   - key: a human-readable identifier, e.g. "cube.vertex"
//
// Returns:
//   - ShaderUnitBuilderOption: option function to apply
func WithKey(key string) ShaderUnitBuilderOption {
	return func(u *shaderUnit) {
		u.key = key
	}
}

// WithReporter sets the diagnostics sink for compile failures.
// Without it a permissive reporter logging to the engine logger is used.
//
// Parameters:
//   - r: the reporter
//
// Returns:
//   - ShaderUnitBuilderOption: option function to apply
func WithReporter(r diagnostic.Reporter) ShaderUnitBuilderOption {
	return func(u *shaderUnit) {
		u.reporter = r
	}
}
