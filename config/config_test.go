package config

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/burnfade/engine/burnfade"
	"github.com/Carmen-Shannon/burnfade/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, burnfade.DefaultSettings(), cfg.Burn)
	assert.Equal(t, model.DefaultIcosphereRadius, cfg.Mesh.Radius)
	assert.Equal(t, model.DefaultIcosphereSubdivisions, cfg.Mesh.Subdivisions)
	assert.Equal(t, 4*time.Second, cfg.Timeline.Duration())
}

func TestDecodeLayersOverDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
[burn]
burn_amount = 0.5
hue_rotate = 1.5

[mesh]
subdivisions = 3
`))
	require.NoError(t, err)

	want := Default()
	want.Burn.BurnAmount = 0.5
	want.Burn.HueRotate = 1.5
	want.Mesh.Subdivisions = 3
	assert.Equal(t, want, cfg)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader(`
[burn]
burn_amout = 0.5
`))
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "burn_amout")
}

func TestDecodeRejectsMalformedTOML(t *testing.T) {
	_, err := Decode(strings.NewReader(`[burn`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }, "window size"},
		{"msaa", func(c *Config) { c.Renderer.MSAA = 2 }, "renderer.msaa"},
		{"clear color", func(c *Config) { c.Renderer.ClearColor[1] = 1.5 }, "clear_color[1]"},
		{"workers", func(c *Config) { c.Renderer.ComputeWorkers = 0 }, "compute_workers"},
		{"tick rate", func(c *Config) { c.Engine.TickRate = 0 }, "tick_rate"},
		{"frame limit", func(c *Config) { c.Engine.FrameLimit = -1 }, "frame_limit"},
		{"log level", func(c *Config) { c.Engine.LogLevel = "loud" }, "log_level"},
		{"radius", func(c *Config) { c.Mesh.Radius = 0 }, "mesh.radius"},
		{"subdivisions", func(c *Config) { c.Mesh.Subdivisions = model.MaxIcosphereSubdivisions + 1 }, "mesh.subdivisions"},
		{"nan scale", func(c *Config) { c.Burn.BurnScale = float32(math.NaN()) }, "burn.burn_scale"},
		{"inf hue", func(c *Config) { c.Burn.HueRotate = float32(math.Inf(1)) }, "burn.hue_rotate"},
		{"negative edge", func(c *Config) { c.Burn.EdgeWidth = -0.1 }, "burn.edge_width"},
		{"negative ember", func(c *Config) { c.Burn.EmberRange = -0.1 }, "burn.ember_range"},
		{"mode", func(c *Config) { c.Timeline.Mode = "bounce" }, "timeline.mode"},
		{"duration", func(c *Config) { c.Timeline.DurationSeconds = 0 }, "duration_seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidateAcceptsUnclampedProgress(t *testing.T) {
	cfg := Default()
	cfg.Burn.BurnAmount = 1.75
	assert.NoError(t, cfg.Validate())
	cfg.Burn.BurnAmount = -0.5
	assert.NoError(t, cfg.Validate())
}

func TestValidateJoinsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Window.Height = -1
	cfg.Timeline.Mode = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window size")
	assert.Contains(t, err.Error(), "timeline.mode")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Window.Title = "round trip"
	cfg.Burn.EdgeWidth = 0.05
	cfg.Timeline.Mode = string(burnfade.ModeLoop)

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))
	assert.Contains(t, buf.String(), "[burn]")

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "burnfade.toml")
	require.NoError(t, os.WriteFile(path, []byte("[engine]\ntick_rate = 30.0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.Engine.TickRate)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "burnfade.toml"))
	require.NoError(t, err)
	assert.Equal(t, string(burnfade.ModePingPong), cfg.Timeline.Mode)
	assert.Equal(t, burnfade.DefaultSettings(), cfg.Burn)
}
