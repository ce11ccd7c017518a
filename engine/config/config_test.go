package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/diagnostic"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const full = `
[window]
title = "cube"
width = 800
height = 600

[renderer]
backend = "opengl"
validate = false
present_mode = "immediate"
fps_limit = 30.0

[animation]
period_seconds = 3.0

[diagnostics]
escalate = ["compile", "link"]

[log]
level = "debug"
`

func TestDecodeFull(t *testing.T) {
	c, err := Decode(strings.NewReader(full))
	require.NoError(t, err)

	assert.Equal(t, "cube", c.Window.Title)
	assert.Equal(t, common.Size{Width: 800, Height: 600}, c.Size())
	bt, err := c.BackendType()
	require.NoError(t, err)
	assert.Equal(t, backend.BackendTypeOpenGL, bt)
	assert.False(t, c.ValidatePrograms())
	assert.False(t, c.VSync())
	assert.Equal(t, 30.0, c.FrameLimit())
	assert.Equal(t, 3*time.Second, c.Period())

	kinds, err := c.EscalateKinds()
	require.NoError(t, err)
	assert.Equal(t, []diagnostic.Kind{diagnostic.KindShaderCompile, diagnostic.KindProgramLink}, kinds)

	level, err := c.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestDefaults(t *testing.T) {
	c, err := Decode(strings.NewReader("[window]\ntitle = \"dots\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "dots", c.Window.Title)
	assert.Equal(t, common.DefaultSurfaceSize, c.Size())
	assert.Equal(t, "wgpu", c.Renderer.Backend)
	assert.True(t, c.ValidatePrograms())
	assert.True(t, c.VSync())
	assert.Zero(t, c.FrameLimit())
	assert.Equal(t, 6*time.Second, c.Period())
	kinds, err := c.EscalateKinds()
	require.NoError(t, err)
	assert.Empty(t, kinds)

	empty, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), empty)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "[window]\ncolour = \"red\"\n"},
		{"unknown table", "[audio]\nvolume = 1\n"},
		{"bad backend", "[renderer]\nbackend = \"vulkan\"\n"},
		{"bad present mode", "[renderer]\npresent_mode = \"mailbox\"\n"},
		{"bad kind", "[diagnostics]\nescalate = [\"typo\"]\n"},
		{"bad level", "[log]\nlevel = \"loud\"\n"},
		{"negative period", "[animation]\nperiod_seconds = -1.0\n"},
		{"negative fps limit", "[renderer]\nfps_limit = -5.0\n"},
		{"wrong type", "[window]\nwidth = \"wide\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestInvalidValuesWrapErrInvalid(t *testing.T) {
	_, err := Decode(strings.NewReader("[renderer]\nbackend = \"vulkan\"\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseBackend(t *testing.T) {
	for name, want := range map[string]backend.BackendType{
		"wgpu":     backend.BackendTypeWGPU,
		"WebGPU":   backend.BackendTypeWGPU,
		"opengl":   backend.BackendTypeOpenGL,
		"gl":       backend.BackendTypeOpenGL,
		"headless": backend.BackendTypeHeadless,
	} {
		got, err := ParseBackend(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxy.toml")
	require.NoError(t, os.WriteFile(path, []byte(full), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cube", c.Window.Title)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
