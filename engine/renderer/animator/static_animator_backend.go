package animator

// staticAnimatorBackend draws the same image every tick.
type staticAnimatorBackend struct{}

var _ AnimatorBackend = &staticAnimatorBackend{}

// NewStaticAnimatorBackend creates a strategy that writes no uniforms per tick.
//
// Returns:
//   - AnimatorBackend: the static strategy
func NewStaticAnimatorBackend() AnimatorBackend {
	return &staticAnimatorBackend{}
}

func (s *staticAnimatorBackend) Type() AnimatorBackendType {
	return BackendTypeStatic
}

func (s *staticAnimatorBackend) Uniforms() []string {
	return nil
}

func (s *staticAnimatorBackend) Update(float64, UniformWriter) {}
