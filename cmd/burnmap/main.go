// Command burnmap bakes the burn fade on the CPU and writes an equirectangular map of the
// sphere's surface as a BMP. It needs no GPU and is useful for checking noise scale and
// band widths before running the demo.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/burnfade/config"
	"github.com/Carmen-Shannon/burnfade/engine/burnfade"
	"github.com/Carmen-Shannon/burnfade/engine/logger"
	"github.com/Carmen-Shannon/burnfade/engine/model"
	"golang.org/x/image/bmp"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional TOML config supplying [mesh] and [burn]")
		out        = flag.String("out", "burnmap.bmp", "output BMP path")
		width      = flag.Int("width", 1024, "map width in pixels")
		height     = flag.Int("height", 512, "map height in pixels")
		progress   = flag.Float64("progress", 0.5, "burn progress to bake; not clamped")
		workers    = flag.Int("workers", 0, "worker count; 0 uses all but one CPU")
	)
	flag.Parse()

	if err := run(*configPath, *out, *width, *height, float32(*progress), *workers); err != nil {
		logger.Fatal("burnmap", "err", err)
	}
}

func run(configPath, out string, width, height int, progress float32, workers int) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	settings := cfg.Burn
	settings.BurnAmount = progress
	params := settings.Params()

	mesh, err := model.GenerateIcosphere(cfg.Mesh.Radius, cfg.Mesh.Subdivisions)
	if err != nil {
		return fmt.Errorf("generate icosphere: %w", err)
	}

	burner := burnfade.NewReferenceBurner(workers, 0)
	counts := zoneCounts(mesh.Vertices, params)
	logger.Info("icosphere zones",
		"vertices", mesh.VertexCount(),
		burnfade.ZoneIntact.String(), counts[burnfade.ZoneIntact],
		burnfade.ZoneEmber.String(), counts[burnfade.ZoneEmber],
		burnfade.ZoneEdge.String(), counts[burnfade.ZoneEdge],
		burnfade.ZoneBurned.String(), counts[burnfade.ZoneBurned],
	)

	img, err := bake(burner, width, height, cfg.Mesh.Radius, params)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	w := bufio.NewWriter(f)
	if err := bmp.Encode(w, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", out, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info("burn map written", "path", out, "width", width, "height", height, "progress", progress)
	return nil
}
