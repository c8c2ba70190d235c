package engine

import (
	"time"

	"github.com/Carmen-Shannon/burnfade/engine/profiler"
	"github.com/Carmen-Shannon/burnfade/engine/scene"
	"github.com/Carmen-Shannon/burnfade/engine/window"
)

// EngineBuilderOption is a functional option applied by NewEngine.
type EngineBuilderOption func(*engine)

// WithProfiling turns the frame statistics log on or off.
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfilerInterval sets how often the profiler logs a sample. It does not enable
// profiling by itself.
//
// Parameters:
//   - d: the reporting interval; non-positive keeps the profiler's default of one second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfilerInterval(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = profiler.NewProfiler(profiler.WithInterval(d))
	}
}

// WithTickRate sets how many times per second the tick callback runs. Timelines and input
// are advanced from the render loop, so this only paces the tick callback.
//
// Parameters:
//   - fps: ticks per second; values <= 0 use 60
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60
		}
		e.engineTickRate = frameDuration(fps)
	}
}

// WithTickCallback registers the tick callback at construction time.
func WithTickCallback(callback func(deltaTime float32)) EngineBuilderOption {
	return func(e *engine) {
		e.tickCallback = callback
	}
}

// WithWindow sets the window whose message loop Run blocks on.
// Without a window the engine runs headless until Quit is called.
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene registers a scene at a z-index during construction. Lower keys render first.
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithRenderFrameLimit caps the render loop.
//
// Parameters:
//   - fps: maximum frames per second; 0 leaves the loop uncapped
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}
