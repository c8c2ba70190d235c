package engine

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/burnfade/engine/logger"
	"github.com/Carmen-Shannon/burnfade/engine/profiler"
	"github.com/Carmen-Shannon/burnfade/engine/scene"
	"github.com/Carmen-Shannon/burnfade/engine/window"
)

// engine runs two loops next to the window's message loop: a ticker that paces the tick
// callback and a render loop that drives the scenes. Both stop when ctx is cancelled.
type engine struct {
	window window.Window

	ctx    context.Context
	cancel context.CancelFunc
	loops  sync.WaitGroup

	running        atomic.Bool
	engineTickRate time.Duration
	// tickRateChannel carries rate changes made while the ticker runs. It holds at most the
	// latest one.
	tickRateChannel chan time.Duration

	tickCallback     func(deltaTime float32)
	renderCallback   func(deltaTime float32)
	renderFrameLimit time.Duration

	profiler         *profiler.Profiler
	profilingEnabled bool

	scenesMu sync.RWMutex
	scenes   map[int]scene.Scene
}

// Engine owns the frame loops and the scenes they render. Scene methods are safe to call
// while Run is active.
type Engine interface {
	// Window is the window Run blocks on, or nil for a headless engine.
	Window() window.Window

	EnableProfiler()
	DisableProfiler()

	// SetTickRate changes how many times per second the tick callback runs. Non-positive
	// rates mean 60. A change made while running applies on the next tick.
	SetTickRate(fps float64)

	// SetTickCallback sets the callback run on the ticker with the seconds since the
	// previous tick.
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback sets the callback run after every rendered frame.
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit caps the render loop at fps frames per second; 0 removes the cap.
	SetRenderFrameLimit(fps float64)

	// AddScene registers s under key, replacing any scene already there. Scenes render in
	// ascending key order.
	AddScene(key int, s scene.Scene)
	RemoveScene(key int)

	// Scene returns the scene under key, or nil.
	Scene(key int) scene.Scene

	// Scenes returns a copy of the registry.
	Scenes() map[int]scene.Scene

	// Run starts the loops and returns once they have stopped. With a window it returns after
	// the window closes; headless it returns after Quit.
	Run()

	// Quit stops the loops. It may be called any number of times from any goroutine.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &engine{
		ctx:             ctx,
		cancel:          cancel,
		tickRateChannel: make(chan time.Duration, 1),
		scenes:          make(map[int]scene.Scene),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.resize)
	}

	return e
}

// resize forwards a framebuffer resize to every scene's renderer and camera.
// Zero-sized framebuffers (minimized windows) are ignored.
func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	for _, s := range e.scenes {
		if r := s.Renderer(); r != nil {
			r.Resize(width, height)
		}
		if c := s.Camera(); c != nil {
			c.Resize(width, height)
		}
	}
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	e.running.Store(true)
	e.loops.Add(2)
	go e.tickLoop()
	go e.renderLoop()

	if e.window != nil {
		e.window.ProcessMessages()
		e.Quit()
	}
	<-e.ctx.Done()
	e.loops.Wait()
	e.running.Store(false)
	logger.Info("engine stopped")
}

func (e *engine) Quit() {
	e.cancel()
}

// tickLoop fires the tick callback on a ticker and applies rate changes sent while running.
func (e *engine) tickLoop() {
	defer e.loops.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-e.ctx.Done():
			return
		case rate := <-e.tickRateChannel:
			e.engineTickRate = rate
			ticker.Reset(rate)
		case now := <-ticker.C:
			dt := float32(now.Sub(last).Seconds())
			last = now
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		}
	}
}

// renderLoop renders frames back to back, or no faster than renderFrameLimit when set.
// A panic in a frame is logged and stops the engine instead of the process.
func (e *engine) renderLoop() {
	defer e.loops.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("render loop panicked", "panic", r)
			e.Quit()
		}
	}()

	last := time.Now()
	for e.ctx.Err() == nil {
		start := time.Now()
		dt := float32(start.Sub(last).Seconds())
		last = start

		e.renderFrame(dt)
		if e.renderCallback != nil {
			e.renderCallback(dt)
		}
		if e.profilingEnabled {
			e.profiler.Tick()
		}

		if wait := e.renderFrameLimit - time.Since(start); e.renderFrameLimit > 0 && wait > 0 {
			select {
			case <-e.ctx.Done():
			case <-time.After(wait):
			}
		}
	}
}

// renderFrame runs one frame over the active scenes in ascending z-index order.
// All compute work is batched into one submission before the render pass, so every draw
// reads vertex colors burned this frame. The first active scene's renderer owns the frame.
//
// Parameters:
//   - dt: seconds since the previous frame
func (e *engine) renderFrame(dt float32) {
	activeScenes := e.activeScenes()
	if len(activeScenes) == 0 {
		return
	}

	frameRenderer := activeScenes[0].Renderer()
	if frameRenderer == nil {
		return
	}

	if err := frameRenderer.BeginComputeFrame(); err != nil {
		logger.Warn("skipping compute frame", "err", err)
	} else {
		for _, s := range activeScenes {
			s.PrepareCompute(dt)
		}
		frameRenderer.EndComputeFrame()
	}

	if err := frameRenderer.BeginFrame(); err != nil {
		logger.Debug("skipping render frame", "err", err)
		return
	}
	for _, s := range activeScenes {
		if err := s.DrawCalls(); err != nil {
			logger.Error("draw calls failed", "scene", s.Name(), "err", err)
		}
	}
	frameRenderer.EndFrame()
	frameRenderer.Present()
}

// activeScenes returns the active scenes sorted by ascending z-index.
func (e *engine) activeScenes() []scene.Scene {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()

	var active []scene.Scene
	for _, k := range slices.Sorted(maps.Keys(e.scenes)) {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}

	// drop a change the ticker has not picked up yet so only the latest is applied
	for {
		select {
		case e.tickRateChannel <- newRate:
			return
		default:
		}
		select {
		case <-e.tickRateChannel:
		default:
		}
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	return maps.Clone(e.scenes)
}

// frameDuration converts a frame rate cap into a minimum frame duration; 0 means uncapped.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
