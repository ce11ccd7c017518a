package diagnostic

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindShaderCompile, KindProgramLink, KindProgramValidate, KindUnresolvedBinding} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseKind(" Link ")
	require.NoError(t, err)
	assert.Equal(t, KindProgramLink, got)

	_, err = ParseKind("panic")
	assert.Error(t, err)
}

func TestDiagnosticError(t *testing.T) {
	d := &Diagnostic{Kind: KindShaderCompile, Stage: "vertex", Subject: "cube", Text: "1:1: unexpected token"}
	assert.Equal(t, `shader compile error (vertex) "cube": 1:1: unexpected token`, d.Error())
	assert.ErrorIs(t, d, ErrShaderCompile)
	assert.NotErrorIs(t, d, ErrProgramLink)

	var wrapped error = errors.Join(errors.New("setup"), d)
	var got *Diagnostic
	require.ErrorAs(t, wrapped, &got)
	assert.Equal(t, KindShaderCompile, got.Kind)
}

func TestReporterPermissiveByDefault(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	for _, k := range []Kind{KindShaderCompile, KindProgramLink, KindProgramValidate, KindUnresolvedBinding} {
		assert.False(t, r.Escalates(k))
		assert.NoError(t, r.Report(&Diagnostic{Kind: k, Subject: "demo"}))
	}
	assert.NoError(t, r.Report(nil))
	assert.Len(t, r.Reports(), 4)
	assert.Equal(t, 1, r.Count(KindProgramLink))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "phase=unresolved")
}

func TestReporterEscalation(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(
		WithEscalate(KindShaderCompile, KindProgramLink),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	d := &Diagnostic{Kind: KindProgramLink, Subject: "cube", Text: "error: fragment shader is not compiled"}
	err := r.Report(d)
	assert.Same(t, d, err)
	assert.ErrorIs(t, err, ErrProgramLink)
	assert.Contains(t, buf.String(), "level=ERROR")

	assert.NoError(t, r.Report(&Diagnostic{Kind: KindUnresolvedBinding, Subject: "mView"}))
	assert.True(t, r.Escalates(KindShaderCompile))
	assert.False(t, r.Escalates(KindProgramValidate))
}
