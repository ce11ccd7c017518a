package diagnostic

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-demos/common"
)

// Reporter is the diagnostics sink. Every report is logged and kept; kinds configured to
// escalate are also returned to the caller as an error.
type Reporter interface {
	// Report records d. Permissive kinds are logged at warn level and nil is returned.
	// Escalated kinds are logged at error level and d is returned.
	//
	// Parameters:
	//   - d: the diagnostic to record
	//
	// Returns:
	//   - error: d when its kind escalates, otherwise nil
	Report(d *Diagnostic) error

	// Escalates reports whether kind is a hard stop under this policy.
	Escalates(kind Kind) bool

	// Reports returns a copy of every diagnostic recorded so far.
	Reports() []*Diagnostic

	// Count returns how many diagnostics of kind were recorded.
	Count(kind Kind) int
}

type reporter struct {
	mu       *sync.Mutex
	escalate map[Kind]bool
	logger   *slog.Logger
	reports  []*Diagnostic
}

var _ Reporter = &reporter{}

// NewReporter creates a Reporter. With no options the policy is permissive: nothing escalates.
//
// Parameters:
//   - options: functional options for escalation and logging
//
// Returns:
//   - Reporter: the configured reporter
func NewReporter(options ...ReporterBuilderOption) Reporter {
	r := &reporter{
		mu:       &sync.Mutex{},
		escalate: make(map[Kind]bool),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *reporter) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return common.Logger()
}

func (r *reporter) Report(d *Diagnostic) error {
	if d == nil {
		return nil
	}
	r.mu.Lock()
	r.reports = append(r.reports, d)
	escalated := r.escalate[d.Kind]
	r.mu.Unlock()

	attrs := []any{"phase", d.Kind.String(), "subject", d.Subject}
	if d.Stage != "" {
		attrs = append(attrs, "stage", d.Stage)
	}
	attrs = append(attrs, "log", d.Text)
	if escalated {
		r.log().Error("shader pipeline diagnostic escalated", attrs...)
		return d
	}
	r.log().Warn("shader pipeline diagnostic", attrs...)
	return nil
}

func (r *reporter) Escalates(kind Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.escalate[kind]
}

func (r *reporter) Reports() []*Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Diagnostic(nil), r.reports...)
}

func (r *reporter) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.reports {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
