// Package config loads the burnfade demo configuration from TOML and watches it for edits.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/Carmen-Shannon/burnfade/engine/burnfade"
	"github.com/Carmen-Shannon/burnfade/engine/model"
	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full demo configuration. Each field maps to one TOML table.
type Config struct {
	Window   WindowConfig      `toml:"window"`
	Renderer RendererConfig    `toml:"renderer"`
	Engine   EngineConfig      `toml:"engine"`
	Mesh     MeshConfig        `toml:"mesh"`
	Burn     burnfade.Settings `toml:"burn"`
	Timeline TimelineConfig    `toml:"timeline"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type RendererConfig struct {
	VSync bool `toml:"vsync"`
	// MSAA is the sample count: 1 disables multisampling, 4, 8 and 16 enable it.
	MSAA           int        `toml:"msaa"`
	ForceSoftware  bool       `toml:"force_software"`
	ClearColor     [3]float64 `toml:"clear_color"`
	ComputeWorkers int        `toml:"compute_workers"`
}

type EngineConfig struct {
	TickRate   float64 `toml:"tick_rate"`
	FrameLimit float64 `toml:"frame_limit"`
	Profiling  bool    `toml:"profiling"`
	LogLevel   string  `toml:"log_level"`
}

type MeshConfig struct {
	Radius       float32 `toml:"radius"`
	Subdivisions int     `toml:"subdivisions"`
}

type TimelineConfig struct {
	Mode            string  `toml:"mode"`
	DurationSeconds float64 `toml:"duration_seconds"`
	Autoplay        bool    `toml:"autoplay"`
}

// Duration returns the timeline length as a time.Duration.
func (t TimelineConfig) Duration() time.Duration {
	return time.Duration(t.DurationSeconds * float64(time.Second))
}

// Default returns the configuration used when no file is given. Every field a file
// leaves out keeps its value from here.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "burnfade",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			VSync:          true,
			MSAA:           4,
			ClearColor:     [3]float64{0.1, 0.1, 0.1},
			ComputeWorkers: 4,
		},
		Engine: EngineConfig{
			TickRate:   60,
			FrameLimit: 0,
			LogLevel:   "info",
		},
		Mesh: MeshConfig{
			Radius:       model.DefaultIcosphereRadius,
			Subdivisions: model.DefaultIcosphereSubdivisions,
		},
		Burn: burnfade.DefaultSettings(),
		Timeline: TimelineConfig{
			Mode:            string(burnfade.ModePingPong),
			DurationSeconds: 4,
			Autoplay:        true,
		},
	}
}

// Load reads, decodes and validates the TOML file at path.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Config: the decoded configuration layered over Default
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r over the defaults and validates the result.
// Keys that do not map to a Config field are rejected.
//
// Parameters:
//   - r: the TOML source
//
// Returns:
//   - Config: the decoded configuration
//   - error: a decode error or a validation error wrapping ErrInvalidConfig
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes c as TOML.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - error: any write or encode error
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate reports every out-of-range field, joined into one error.
//
// Returns:
//   - error: nil, or an error wrapping ErrInvalidConfig per problem found
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d", c.Window.Width, c.Window.Height)

	switch c.Renderer.MSAA {
	case 1, 4, 8, 16:
	default:
		check(false, "renderer.msaa %d is not one of 1, 4, 8, 16", c.Renderer.MSAA)
	}
	for i, ch := range c.Renderer.ClearColor {
		check(ch >= 0 && ch <= 1, "renderer.clear_color[%d] %v outside [0, 1]", i, ch)
	}
	check(c.Renderer.ComputeWorkers >= 1, "renderer.compute_workers %d", c.Renderer.ComputeWorkers)

	check(c.Engine.TickRate > 0, "engine.tick_rate %v", c.Engine.TickRate)
	check(c.Engine.FrameLimit >= 0, "engine.frame_limit %v", c.Engine.FrameLimit)
	if _, err := log.ParseLevel(c.Engine.LogLevel); err != nil {
		check(false, "engine.log_level %q", c.Engine.LogLevel)
	}

	check(c.Mesh.Radius > 0, "mesh.radius %v", c.Mesh.Radius)
	check(c.Mesh.Subdivisions >= 0 && c.Mesh.Subdivisions <= model.MaxIcosphereSubdivisions,
		"mesh.subdivisions %d outside [0, %d]", c.Mesh.Subdivisions, model.MaxIcosphereSubdivisions)

	// burn values are passed to the shaders unclamped; only reject what no shader can use
	for _, f := range []struct {
		name string
		v    float32
	}{
		{"burn_amount", c.Burn.BurnAmount},
		{"burn_scale", c.Burn.BurnScale},
		{"hue_rotate", c.Burn.HueRotate},
		{"edge_width", c.Burn.EdgeWidth},
		{"ember_range", c.Burn.EmberRange},
	} {
		v := float64(f.v)
		check(!math.IsNaN(v) && !math.IsInf(v, 0), "burn.%s %v is not finite", f.name, v)
	}
	check(c.Burn.EdgeWidth >= 0, "burn.edge_width %v is negative", c.Burn.EdgeWidth)
	check(c.Burn.EmberRange >= 0, "burn.ember_range %v is negative", c.Burn.EmberRange)

	if _, err := burnfade.ParseMode(c.Timeline.Mode); err != nil {
		check(false, "timeline.mode %q", c.Timeline.Mode)
	}
	check(c.Timeline.DurationSeconds > 0, "timeline.duration_seconds %v", c.Timeline.DurationSeconds)

	return errors.Join(errs...)
}
