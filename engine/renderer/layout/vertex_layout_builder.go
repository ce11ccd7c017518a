package layout

// VertexLayoutBuilderOption is a functional option used to append entries to a VertexLayout.
type VertexLayoutBuilderOption func(*vertexLayout)

// WithAttribute appends a float32 attribute to the end of the record.
//
// Parameters:
//   - name: the attribute name as declared in the vertex stage
//   - components: the number of float32 values per vertex
//
// Returns:
//   - VertexLayoutBuilderOption: a function that appends the entry
func WithAttribute(name string, components int) VertexLayoutBuilderOption {
	return func(l *vertexLayout) {
		l.entries = append(l.entries, Entry{Name: name, Components: components})
	}
}
