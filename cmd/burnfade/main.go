// Command burnfade opens a window with an icosphere that burns away and back again,
// driven by a WebGPU compute pass. Burn settings are read from a TOML file that is
// watched for edits while the demo runs.
package main

import (
	"errors"
	"flag"
	"io/fs"
	"math"

	"github.com/Carmen-Shannon/burnfade/common"
	"github.com/Carmen-Shannon/burnfade/config"
	"github.com/Carmen-Shannon/burnfade/engine"
	"github.com/Carmen-Shannon/burnfade/engine/burnfade"
	"github.com/Carmen-Shannon/burnfade/engine/camera"
	"github.com/Carmen-Shannon/burnfade/engine/logger"
	"github.com/Carmen-Shannon/burnfade/engine/model"
	"github.com/Carmen-Shannon/burnfade/engine/renderer"
	"github.com/Carmen-Shannon/burnfade/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/burnfade/engine/renderer/shader"
	"github.com/Carmen-Shannon/burnfade/engine/scene"
	"github.com/Carmen-Shannon/burnfade/engine/window"
)

// titleInterval is how often, in seconds, the window title is refreshed.
const titleInterval = 0.25

func main() {
	configPath := flag.String("config", "burnfade.toml", "path to the TOML config file")
	flag.Parse()

	cfg, watchable := loadConfig(*configPath)
	if err := logger.SetLevel(cfg.Engine.LogLevel); err != nil {
		logger.Warn("log level not applied", "err", err)
	}

	// ── Engine + Window ─────────────────────────────────────────────────
	win := window.NewWindow(
		window.WithTitle(common.Coalesce(cfg.Window.Title, "burnfade")),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithTickRate(cfg.Engine.TickRate),
		engine.WithRenderFrameLimit(cfg.Engine.FrameLimit),
		engine.WithProfiling(cfg.Engine.Profiling),
	)

	// ── Renderer ────────────────────────────────────────────────────────
	presentMode := renderer.PresentModeVSync
	if !cfg.Renderer.VSync {
		presentMode = renderer.PresentModeUncapped
	}
	cc := cfg.Renderer.ClearColor
	r := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Renderer.MSAA)),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceSoftware),
		renderer.WithClearColor(cc[0], cc[1], cc[2]),
	)

	// ── Camera ──────────────────────────────────────────────────────────
	radius := cfg.Mesh.Radius
	cam := camera.NewCamera(
		camera.WithFov(float32(45.0*math.Pi/180.0)),
		camera.WithAspect(float32(win.Width())/float32(win.Height())),
		camera.WithClipPlanes(radius*0.01, radius*100),
		camera.WithController(camera.NewOrbitController(
			camera.WithRadius(radius*3.5),
			camera.WithRadiusBounds(radius*1.2, radius*40),
			camera.WithZoomSpeed(radius*0.25),
			camera.WithElevation(0.3),
		)),
	)

	// ── Shaders ─────────────────────────────────────────────────────────
	computeShader := mustShader(burnfade.ComputeShaderKey, shader.ShaderTypeCompute, burnfade.ComputeShaderSource)
	vertexShader := mustShader(burnfade.VertexShaderKey, shader.ShaderTypeVertex, burnfade.VertexShaderSource)
	fragmentShader := mustShader(burnfade.FragmentShaderKey, shader.ShaderTypeFragment, burnfade.FragmentShaderSource)

	// ── Scene ───────────────────────────────────────────────────────────
	sc := scene.NewScene("burnfade", cam, r, vertexShader,
		scene.WithActive(true),
		scene.WithComputeWorkers(cfg.Renderer.ComputeWorkers),
	)

	effect, err := buildEffect(cfg)
	if err != nil {
		logger.Fatal("building burn effect", "err", err)
	}
	if _, err := sc.Add(effect, computeShader, vertexShader, fragmentShader,
		pipeline.WithBlendEnabled(true),
	); err != nil {
		logger.Fatal("adding burn effect to scene", "err", err)
	}
	eng.AddScene(0, sc)

	// ── Input + Hot Reload ──────────────────────────────────────────────
	ctl := newControls(effect)
	setupInput(eng, cam, ctl, common.Coalesce(cfg.Window.Title, "burnfade"))

	if watchable {
		w, err := config.NewWatcher(*configPath, ctl.applyConfig)
		if err != nil {
			logger.Warn("config hot reload disabled", "err", err)
		} else {
			defer w.Close()
		}
	}

	logger.Info("burnfade ready",
		"vertices", effect.VertexCount(),
		"subdivisions", cfg.Mesh.Subdivisions,
		"keys", "space=play/pause r=reset up/down=burn left/right=hue scroll=zoom drag=orbit esc=quit",
	)
	eng.Run()
}

// loadConfig reads the config file. A missing file at the path falls back to the defaults;
// any other problem is fatal.
//
// Returns:
//   - config.Config: the config to run with
//   - bool: true if the file exists and should be watched
func loadConfig(path string) (config.Config, bool) {
	cfg, err := config.Load(path)
	switch {
	case err == nil:
		return cfg, true
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("config file not found, using defaults", "path", path)
		return config.Default(), false
	default:
		logger.Fatal("loading config", "err", err)
		return config.Config{}, false
	}
}

func mustShader(key string, t shader.ShaderType, source string) shader.Shader {
	s, err := shader.NewShaderFromSource(key, t, source)
	if err != nil {
		logger.Fatal("compiling shader", "key", key, "err", err)
	}
	return s
}

// buildEffect generates the icosphere and wraps it in a burn effect driven by a timeline.
func buildEffect(cfg config.Config) (burnfade.Effect, error) {
	mesh, err := model.GenerateIcosphere(cfg.Mesh.Radius, cfg.Mesh.Subdivisions)
	if err != nil {
		return nil, err
	}
	mode, err := burnfade.ParseMode(cfg.Timeline.Mode)
	if err != nil {
		return nil, err
	}
	tl, err := burnfade.NewTimeline(mode, cfg.Timeline.Duration())
	if err != nil {
		return nil, err
	}
	tl.Seek(cfg.Burn.BurnAmount)
	if cfg.Timeline.Autoplay {
		tl.Play()
	}

	return burnfade.NewEffect(
		model.NewModel(model.WithName("icosphere"), model.WithMesh(mesh)),
		burnfade.WithSettings(cfg.Burn),
		burnfade.WithTimeline(tl),
	)
}

// orbitKey maps W, A, S and D to camera orbit steps.
func orbitKey(keyCode uint32) (horizontal, vertical int, ok bool) {
	switch keyCode {
	case common.KeyW:
		return 0, 1, true
	case common.KeyS:
		return 0, -1, true
	case common.KeyA:
		return -1, 0, true
	case common.KeyD:
		return 1, 0, true
	}
	return 0, 0, false
}

// setupInput wires keyboard controls, scroll zoom, drag orbit and the title readout.
//
// Parameters:
//   - eng: the engine instance providing window callbacks and tick
//   - cam: the camera to control
//   - ctl: the burn controls
//   - baseTitle: the configured window title
func setupInput(eng engine.Engine, cam camera.Camera, ctl *controls, baseTitle string) {
	win := eng.Window()
	ctrl := cam.Controller()

	win.SetKeyDownCallback(func(keyCode uint32) {
		if h, v, ok := orbitKey(keyCode); ok {
			ctrl.OrbitStep(h, v)
			return
		}
		ctl.keyDown(keyCode)
	})
	win.SetScrollCallback(ctrl.Zoom)
	win.SetDragCallbacks(
		func(_ window.MouseButton, x, y int32) { ctrl.BeginDrag(x, y) },
		ctrl.Drag,
		func(_, _ int32) { ctrl.EndDrag() },
	)

	var sinceTitle float32
	eng.SetTickCallback(func(dt float32) {
		sinceTitle += dt
		if sinceTitle < titleInterval {
			return
		}
		sinceTitle = 0
		win.SetTitle(ctl.title(baseTitle))
	})
}
