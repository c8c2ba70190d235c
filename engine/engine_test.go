package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/burnfade/engine/renderer"
	"github.com/Carmen-Shannon/burnfade/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callLog collects frame lifecycle calls from every fake in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// frameRenderer overrides the frame lifecycle of renderer.Renderer; any other method panics.
type frameRenderer struct {
	renderer.Renderer
	log        *callLog
	computeErr error
	beginErr   error
}

func (r *frameRenderer) BeginComputeFrame() error {
	r.log.add("begin_compute")
	return r.computeErr
}

func (r *frameRenderer) EndComputeFrame() { r.log.add("end_compute") }

func (r *frameRenderer) BeginFrame() error {
	r.log.add("begin_frame")
	return r.beginErr
}

func (r *frameRenderer) EndFrame() { r.log.add("end_frame") }

func (r *frameRenderer) Present() { r.log.add("present") }

// stubScene overrides what the render loop touches on scene.Scene.
type stubScene struct {
	scene.Scene
	name    string
	active  bool
	r       renderer.Renderer
	log     *callLog
	drawErr error
}

func (s *stubScene) Name() string                { return s.name }
func (s *stubScene) Active() bool                { return s.active }
func (s *stubScene) Renderer() renderer.Renderer { return s.r }
func (s *stubScene) PrepareCompute(dt float32)   { s.log.add("compute:" + s.name) }
func (s *stubScene) DrawCalls() error {
	s.log.add("draw:" + s.name)
	return s.drawErr
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine().(*engine)
	assert.Equal(t, time.Second/60, e.engineTickRate)
	assert.Zero(t, e.renderFrameLimit)
	assert.False(t, e.profilingEnabled)
	assert.Nil(t, e.Window())
	assert.Empty(t, e.Scenes())
}

func TestEngineOptions(t *testing.T) {
	log := &callLog{}
	s := &stubScene{name: "a", log: log}
	e := NewEngine(
		WithTickRate(120),
		WithRenderFrameLimit(30),
		WithProfiling(true),
		WithScene(3, s),
	).(*engine)

	assert.Equal(t, time.Duration(float64(time.Second)/120), e.engineTickRate)
	assert.Equal(t, time.Duration(float64(time.Second)/30), e.renderFrameLimit)
	assert.True(t, e.profilingEnabled)
	assert.Same(t, s, e.Scene(3))

	e.DisableProfiler()
	assert.False(t, e.profilingEnabled)
	e.EnableProfiler()
	assert.True(t, e.profilingEnabled)
}

func TestEngineProfilerIntervalAndTickCallbackOptions(t *testing.T) {
	var ticked float32
	e := NewEngine(
		WithProfilerInterval(250*time.Millisecond),
		WithTickCallback(func(dt float32) { ticked += dt }),
	).(*engine)

	assert.Equal(t, 250*time.Millisecond, e.profiler.Interval())
	assert.False(t, e.profilingEnabled, "the interval alone does not enable profiling")
	require.NotNil(t, e.tickCallback)
	e.tickCallback(0.5)
	assert.Equal(t, float32(0.5), ticked)

	e = NewEngine(WithProfilerInterval(-time.Second)).(*engine)
	assert.Equal(t, time.Second, e.profiler.Interval())
}

func TestEngineTickRateAndFrameLimit(t *testing.T) {
	e := NewEngine(WithTickRate(-1)).(*engine)
	assert.Equal(t, time.Second/60, e.engineTickRate)

	e.SetTickRate(30)
	assert.Equal(t, time.Duration(float64(time.Second)/30), e.engineTickRate)
	e.SetTickRate(0)
	assert.Equal(t, time.Second/60, e.engineTickRate)

	e.SetRenderFrameLimit(144)
	assert.Equal(t, time.Duration(float64(time.Second)/144), e.renderFrameLimit)
	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}

func TestEngineSetTickRateWhileRunningQueuesLatest(t *testing.T) {
	e := NewEngine().(*engine)
	e.running.Store(true)

	e.SetTickRate(10)
	e.SetTickRate(20)
	require.Len(t, e.tickRateChannel, 1)
	assert.Equal(t, time.Second/20, <-e.tickRateChannel)
}

func TestEngineSceneRegistry(t *testing.T) {
	e := NewEngine()
	a := &stubScene{name: "a"}
	b := &stubScene{name: "b"}

	e.AddScene(1, a)
	e.AddScene(0, b)
	assert.Same(t, a, e.Scene(1))
	assert.Nil(t, e.Scene(7))

	scenes := e.Scenes()
	assert.Len(t, scenes, 2)
	delete(scenes, 0)
	assert.Len(t, e.Scenes(), 2)

	e.RemoveScene(1)
	assert.Nil(t, e.Scene(1))
	assert.Len(t, e.Scenes(), 1)
}

func TestEngineRenderFrameOrdersScenes(t *testing.T) {
	log := &callLog{}
	r := &frameRenderer{log: log}
	e := NewEngine(
		WithScene(5, &stubScene{name: "top", active: true, r: r, log: log}),
		WithScene(-1, &stubScene{name: "bottom", active: true, r: r, log: log}),
		WithScene(2, &stubScene{name: "hidden", active: false, r: r, log: log}),
	).(*engine)

	e.renderFrame(0.016)

	assert.Equal(t, []string{
		"begin_compute", "compute:bottom", "compute:top", "end_compute",
		"begin_frame", "draw:bottom", "draw:top", "end_frame", "present",
	}, log.snapshot())
}

func TestEngineRenderFrameSkipsFailedPhases(t *testing.T) {
	log := &callLog{}
	r := &frameRenderer{log: log, computeErr: errors.New("no encoder"), beginErr: errors.New("surface lost")}
	e := NewEngine(WithScene(0, &stubScene{name: "a", active: true, r: r, log: log})).(*engine)

	e.renderFrame(0.016)

	assert.Equal(t, []string{"begin_compute", "begin_frame"}, log.snapshot())
}

func TestEngineRenderFrameContinuesAfterDrawError(t *testing.T) {
	log := &callLog{}
	r := &frameRenderer{log: log}
	e := NewEngine(
		WithScene(0, &stubScene{name: "a", active: true, r: r, log: log, drawErr: errors.New("missing pipeline")}),
		WithScene(1, &stubScene{name: "b", active: true, r: r, log: log}),
	).(*engine)

	e.renderFrame(0.016)

	assert.Contains(t, log.snapshot(), "draw:b")
	assert.Contains(t, log.snapshot(), "present")
}

func TestEngineRenderFrameWithoutActiveScenes(t *testing.T) {
	log := &callLog{}
	e := NewEngine(WithScene(0, &stubScene{name: "a", r: &frameRenderer{log: log}, log: log})).(*engine)
	e.renderFrame(0.016)
	assert.Empty(t, log.snapshot())
}

func TestEngineRunHeadlessUntilQuit(t *testing.T) {
	var ticks, frames atomic.Int32
	e := NewEngine(WithTickRate(200), WithRenderFrameLimit(200))
	e.SetTickCallback(func(float32) { ticks.Add(1) })
	e.SetRenderCallback(func(float32) { frames.Add(1) })

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	require.Eventually(t, func() bool {
		return ticks.Load() > 2 && frames.Load() > 2
	}, 2*time.Second, 5*time.Millisecond)

	e.Quit()
	e.Quit()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}

func TestEngineRenderPanicSignalsQuit(t *testing.T) {
	e := NewEngine().(*engine)
	e.SetRenderCallback(func(float32) { panic("boom") })

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("render panic did not stop the engine")
	}
}
