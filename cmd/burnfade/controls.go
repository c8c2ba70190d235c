package main

import (
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/burnfade/common"
	"github.com/Carmen-Shannon/burnfade/config"
	"github.com/Carmen-Shannon/burnfade/engine/burnfade"
	"github.com/Carmen-Shannon/burnfade/engine/logger"
)

const (
	// progressStep is how far Up/Down move the burn.
	progressStep float32 = 0.02

	// hueStep is how far Left/Right rotate the edge and ember hue, in radians.
	hueStep = float32(math.Pi / 24)
)

// controls maps keyboard input and config reloads onto a burn effect.
// Key events arrive on the window thread and reloads on the watcher goroutine.
type controls struct {
	mu     sync.Mutex
	effect burnfade.Effect
}

func newControls(effect burnfade.Effect) *controls {
	return &controls{effect: effect}
}

// keyDown handles one key press or repeat.
//
// Parameters:
//   - keyCode: the key code (see common.Key*)
func (c *controls) keyDown(keyCode uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tl := c.effect.Timeline()
	switch keyCode {
	case common.KeySpace:
		if tl == nil {
			return
		}
		playing := tl.Toggle()
		logger.Debug("timeline toggled", "playing", playing)
	case common.KeyR:
		if tl != nil {
			tl.Reset()
		}
		c.effect.SetProgress(0)
	case common.KeyUp:
		c.nudgeProgress(progressStep)
	case common.KeyDown:
		c.nudgeProgress(-progressStep)
	case common.KeyRight:
		c.nudgeHue(hueStep)
	case common.KeyLeft:
		c.nudgeHue(-hueStep)
	}
}

// nudgeProgress pauses the timeline so the manual position sticks.
func (c *controls) nudgeProgress(delta float32) {
	if tl := c.effect.Timeline(); tl != nil {
		tl.Pause()
	}
	c.effect.SetProgress(common.Clamp(c.effect.Progress()+delta, 0, 1))
}

func (c *controls) nudgeHue(delta float32) {
	s := c.effect.Settings()
	s.HueRotate = float32(math.Remainder(float64(s.HueRotate+delta), 2*math.Pi))
	c.effect.SetSettings(s)
}

// applyConfig applies the [burn] and [timeline] tables of a reloaded config. While the
// timeline plays it owns the burn amount, so the file's burn_amount is only used when paused.
//
// Parameters:
//   - cfg: the reloaded, validated config
func (c *controls) applyConfig(cfg config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	settings := cfg.Burn
	if tl := c.effect.Timeline(); tl != nil {
		if mode, err := burnfade.ParseMode(cfg.Timeline.Mode); err == nil {
			tl.SetMode(mode)
		}
		if err := tl.SetDuration(cfg.Timeline.Duration()); err != nil {
			logger.Warn("timeline duration not applied", "err", err)
		}
		if tl.Playing() {
			settings.BurnAmount = c.effect.Progress()
		}
	}
	c.effect.SetSettings(settings)
}

// title renders the window title for the current effect state.
func (c *controls) title(base string) string {
	state := "paused"
	if tl := c.effect.Timeline(); tl != nil && tl.Playing() {
		state = string(tl.Mode())
	}
	s := c.effect.Settings()
	return fmt.Sprintf("%s | burn %3.0f%% | hue %+.2f rad | %s", base, s.BurnAmount*100, s.HueRotate, state)
}
