package main

import (
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/burnfade/common"
	"github.com/Carmen-Shannon/burnfade/config"
	"github.com/Carmen-Shannon/burnfade/engine/burnfade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestControls(t *testing.T, autoplay bool) (*controls, burnfade.Effect) {
	t.Helper()
	cfg := config.Default()
	cfg.Mesh.Subdivisions = 1
	cfg.Timeline.Autoplay = autoplay
	e, err := buildEffect(cfg)
	require.NoError(t, err)
	return newControls(e), e
}

func TestBuildEffectFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Mesh.Subdivisions = 2
	cfg.Burn.BurnAmount = 0.3
	cfg.Timeline.Mode = string(burnfade.ModeLoop)

	e, err := buildEffect(cfg)
	require.NoError(t, err)
	assert.Equal(t, 162, e.VertexCount())
	assert.Equal(t, cfg.Burn, e.Settings())
	require.NotNil(t, e.Timeline())
	assert.Equal(t, burnfade.ModeLoop, e.Timeline().Mode())
	assert.InDelta(t, 0.3, e.Timeline().Progress(), 1e-6)
	assert.True(t, e.Timeline().Playing())

	cfg.Mesh.Subdivisions = -1
	_, err = buildEffect(cfg)
	assert.Error(t, err)
}

func TestControlsSpaceTogglesTimeline(t *testing.T) {
	c, e := newTestControls(t, false)
	assert.False(t, e.Timeline().Playing())

	c.keyDown(common.KeySpace)
	assert.True(t, e.Timeline().Playing())
	c.keyDown(common.KeySpace)
	assert.False(t, e.Timeline().Playing())
}

func TestControlsResetRewinds(t *testing.T) {
	c, e := newTestControls(t, true)
	e.SetProgress(0.7)

	c.keyDown(common.KeyR)
	assert.Zero(t, e.Progress())
	assert.Zero(t, e.Timeline().Progress())
	assert.True(t, e.Timeline().Playing())
}

func TestControlsNudgeProgress(t *testing.T) {
	c, e := newTestControls(t, true)

	c.keyDown(common.KeyUp)
	c.keyDown(common.KeyUp)
	assert.InDelta(t, 2*progressStep, e.Progress(), 1e-6)
	assert.False(t, e.Timeline().Playing(), "manual nudges pause the timeline")

	c.keyDown(common.KeyDown)
	assert.InDelta(t, progressStep, e.Progress(), 1e-6)

	for range 10 {
		c.keyDown(common.KeyDown)
	}
	assert.Zero(t, e.Progress())

	e.SetProgress(0.99)
	c.keyDown(common.KeyUp)
	assert.Equal(t, float32(1), e.Progress())
}

func TestControlsRotateHue(t *testing.T) {
	c, e := newTestControls(t, false)

	c.keyDown(common.KeyRight)
	assert.InDelta(t, hueStep, e.Settings().HueRotate, 1e-6)
	c.keyDown(common.KeyLeft)
	c.keyDown(common.KeyLeft)
	assert.InDelta(t, -hueStep, e.Settings().HueRotate, 1e-6)

	// wraps instead of growing without bound
	for range 48 {
		c.keyDown(common.KeyRight)
	}
	assert.LessOrEqual(t, math.Abs(float64(e.Settings().HueRotate)), math.Pi+1e-5)
}

func TestControlsIgnoresOtherKeys(t *testing.T) {
	c, e := newTestControls(t, false)
	before := e.Settings()
	c.keyDown(common.KeyW)
	assert.Equal(t, before, e.Settings())
}

func TestControlsApplyConfigWhilePlaying(t *testing.T) {
	c, e := newTestControls(t, true)
	e.SetProgress(0.4)

	cfg := config.Default()
	cfg.Burn.BurnAmount = 0.9
	cfg.Burn.EdgeWidth = 0.02
	cfg.Timeline.Mode = string(burnfade.ModeOnce)
	cfg.Timeline.DurationSeconds = 8
	c.applyConfig(cfg)

	s := e.Settings()
	assert.Equal(t, float32(0.02), s.EdgeWidth)
	assert.InDelta(t, 0.4, s.BurnAmount, 1e-6, "a playing timeline keeps ownership of progress")
	assert.Equal(t, burnfade.ModeOnce, e.Timeline().Mode())
	assert.Equal(t, 8*time.Second, e.Timeline().Duration())
}

func TestControlsApplyConfigWhilePaused(t *testing.T) {
	c, e := newTestControls(t, false)

	cfg := config.Default()
	cfg.Burn.BurnAmount = 0.6
	c.applyConfig(cfg)

	assert.InDelta(t, 0.6, e.Progress(), 1e-6)
	assert.InDelta(t, 0.6, e.Timeline().Progress(), 1e-6)
}

func TestControlsTitle(t *testing.T) {
	c, e := newTestControls(t, true)
	e.SetProgress(0.5)
	assert.Equal(t, "burnfade | burn  50% | hue +0.00 rad | pingpong", c.title("burnfade"))

	e.Timeline().Pause()
	assert.Contains(t, c.title("x"), "paused")
}

func TestOrbitKey(t *testing.T) {
	h, v, ok := orbitKey(common.KeyW)
	assert.True(t, ok)
	assert.Equal(t, [2]int{0, 1}, [2]int{h, v})

	h, v, ok = orbitKey(common.KeyA)
	assert.True(t, ok)
	assert.Equal(t, [2]int{-1, 0}, [2]int{h, v})

	_, _, ok = orbitKey(common.KeySpace)
	assert.False(t, ok)
}
