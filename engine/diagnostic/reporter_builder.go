package diagnostic

import "log/slog"

// ReporterBuilderOption is a functional option for configuring a Reporter.
type ReporterBuilderOption func(r *reporter)

// WithEscalate makes the given kinds hard stops.
//
// Parameters:
//   - kinds: the kinds to escalate
//
// Returns:
//   - ReporterBuilderOption: option function to apply
func WithEscalate(kinds ...Kind) ReporterBuilderOption {
	return func(r *reporter) {
		for _, k := range kinds {
			r.escalate[k] = true
		}
	}
}

// WithLogger routes reports to l instead of the shared engine logger.
//
// Parameters:
//   - l: the logger to use
//
// Returns:
//   - ReporterBuilderOption: option function to apply
func WithLogger(l *slog.Logger) ReporterBuilderOption {
	return func(r *reporter) {
		r.logger = l
	}
}
