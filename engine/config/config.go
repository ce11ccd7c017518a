// Package config loads the demo host configuration from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/diagnostic"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/pelletier/go-toml/v2"
)

// Default values applied to any key the file leaves unset.
const (
	DefaultTitle         = "oxy-demos"
	DefaultBackend       = "wgpu"
	DefaultPresentMode   = "vsync"
	DefaultPeriodSeconds = 6.0
	DefaultLogLevel      = "info"
)

// ErrInvalid is wrapped by every value error returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

// Window is the [window] table.
type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Renderer is the [renderer] table.
type Renderer struct {
	// Backend is one of "wgpu", "opengl" or "headless".
	Backend string `toml:"backend"`

	// Validate runs the program validate step after linking. Nil means true.
	Validate *bool `toml:"validate"`

	// PresentMode is "vsync" or "immediate".
	PresentMode string `toml:"present_mode"`

	// FPSLimit caps the windowed frame rate. 0 leaves it uncapped.
	FPSLimit float64 `toml:"fps_limit"`
}

// Animation is the [animation] table.
type Animation struct {
	PeriodSeconds float64 `toml:"period_seconds"`
}

// Diagnostics is the [diagnostics] table.
type Diagnostics struct {
	// Escalate lists the diagnostic kinds returned as errors instead of logged.
	Escalate []string `toml:"escalate"`
}

// Log is the [log] table.
type Log struct {
	Level string `toml:"level"`
}

// Config is the full host configuration.
type Config struct {
	Window      Window      `toml:"window"`
	Renderer    Renderer    `toml:"renderer"`
	Animation   Animation   `toml:"animation"`
	Diagnostics Diagnostics `toml:"diagnostics"`
	Log         Log         `toml:"log"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	c := Config{}
	c.applyDefaults()
	return c
}

// Load reads and decodes a TOML configuration file.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Config: the decoded configuration with defaults applied
//   - error: an error if the file could not be read, decoded or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	c, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Decode decodes a TOML document. Unknown keys are rejected.
//
// Parameters:
//   - r: the TOML source
//
// Returns:
//   - Config: the decoded configuration with defaults applied
//   - error: an error if decoding or validation failed
func Decode(r io.Reader) (Config, error) {
	var c Config
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("decode: %s", strict.String())
		}
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	c.Window.Title = common.Coalesce(c.Window.Title, DefaultTitle)
	c.Window.Width = common.Coalesce(c.Window.Width, common.DefaultSurfaceSize.Width)
	c.Window.Height = common.Coalesce(c.Window.Height, common.DefaultSurfaceSize.Height)
	c.Renderer.Backend = strings.ToLower(common.Coalesce(c.Renderer.Backend, DefaultBackend))
	c.Renderer.PresentMode = strings.ToLower(common.Coalesce(c.Renderer.PresentMode, DefaultPresentMode))
	if c.Renderer.Validate == nil {
		validate := true
		c.Renderer.Validate = &validate
	}
	c.Animation.PeriodSeconds = common.Coalesce(c.Animation.PeriodSeconds, DefaultPeriodSeconds)
	c.Log.Level = strings.ToLower(common.Coalesce(c.Log.Level, DefaultLogLevel))
}

// Validate checks every value that has a closed set of choices.
//
// Returns:
//   - error: the first invalid value, wrapping ErrInvalid
func (c Config) Validate() error {
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if _, err := c.BackendType(); err != nil {
		return err
	}
	if c.Renderer.PresentMode != "vsync" && c.Renderer.PresentMode != "immediate" {
		return fmt.Errorf("%w: present_mode %q", ErrInvalid, c.Renderer.PresentMode)
	}
	if c.Renderer.FPSLimit < 0 {
		return fmt.Errorf("%w: fps_limit %v", ErrInvalid, c.Renderer.FPSLimit)
	}
	if c.Animation.PeriodSeconds < 0 {
		return fmt.Errorf("%w: period_seconds %v", ErrInvalid, c.Animation.PeriodSeconds)
	}
	if _, err := c.EscalateKinds(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// BackendType parses renderer.backend.
func (c Config) BackendType() (backend.BackendType, error) {
	return ParseBackend(c.Renderer.Backend)
}

// ParseBackend maps a backend name to its backend.BackendType.
//
// Parameters:
//   - name: "wgpu", "opengl" or "headless", case-insensitive
//
// Returns:
//   - backend.BackendType: the backend type
//   - error: an error if the name is unknown
func ParseBackend(name string) (backend.BackendType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "wgpu", "webgpu":
		return backend.BackendTypeWGPU, nil
	case "opengl", "gl":
		return backend.BackendTypeOpenGL, nil
	case "headless":
		return backend.BackendTypeHeadless, nil
	}
	return 0, fmt.Errorf("%w: backend %q", ErrInvalid, name)
}

// ValidatePrograms reports whether linked programs are validated.
func (c Config) ValidatePrograms() bool {
	return c.Renderer.Validate == nil || *c.Renderer.Validate
}

// VSync reports whether presentation waits for vertical blank.
func (c Config) VSync() bool {
	return c.Renderer.PresentMode != "immediate"
}

// FrameLimit returns the frame rate cap in frames per second, 0 when uncapped.
func (c Config) FrameLimit() float64 {
	return c.Renderer.FPSLimit
}

// Size returns the window size.
func (c Config) Size() common.Size {
	return common.Size{Width: c.Window.Width, Height: c.Window.Height}
}

// Period returns the rotation period.
func (c Config) Period() time.Duration {
	return time.Duration(c.Animation.PeriodSeconds * float64(time.Second))
}

// EscalateKinds parses diagnostics.escalate.
//
// Returns:
//   - []diagnostic.Kind: the kinds to escalate, in file order
//   - error: an error naming the first unknown kind
func (c Config) EscalateKinds() ([]diagnostic.Kind, error) {
	kinds := make([]diagnostic.Kind, 0, len(c.Diagnostics.Escalate))
	for _, name := range c.Diagnostics.Escalate {
		k, err := diagnostic.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("%w: diagnostics.escalate: %v", ErrInvalid, err)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// LogLevel parses log.level.
//
// Returns:
//   - slog.Level: the level
//   - error: an error if the level name is unknown
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return level, nil
}
