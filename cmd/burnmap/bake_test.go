package main

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/burnfade/engine/burnfade"
	"github.com/Carmen-Shannon/burnfade/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func testParams(progress float32) burnfade.GPUBurnFadeParams {
	s := burnfade.DefaultSettings()
	s.BurnAmount = progress
	return s.Params()
}

func TestSphereGridMatchesIcosphereUVMapping(t *testing.T) {
	const radius = 0.1
	grid := sphereGrid(16, 8, radius)
	require.Len(t, grid, 16*8)

	for _, v := range grid {
		p := v.Position
		length := math.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2]))
		assert.InDelta(t, radius, length, 1e-6)

		u := (math.Atan2(float64(p[2]), float64(p[0])) + math.Pi) / (2 * math.Pi)
		vv := (math.Asin(float64(p[1])/radius) + math.Pi/2) / math.Pi
		assert.InDelta(t, u, v.TexCoord[0], 1e-4)
		assert.InDelta(t, vv, v.TexCoord[1], 1e-4)
		assert.Equal(t, [4]float32{0, 0, 0, 1}, v.Color)
	}

	// row 0 is the top of the map
	assert.Greater(t, grid[0].Position[1], float32(0))
	assert.Less(t, grid[len(grid)-1].Position[1], float32(0))
}

func TestShade(t *testing.T) {
	intact := model.GPUVertex{TexCoord: [2]float32{1, 0}, Color: [4]float32{0, 0, 0, 1}}
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 0, A: 255}, shade(intact))

	burned := model.GPUVertex{TexCoord: [2]float32{0.5, 0.5}, Color: [4]float32{0, 0, 0, 0}}
	assert.Equal(t, color.NRGBA{}, shade(burned))

	// edge colors exceed 1 and are clamped
	edge := model.GPUVertex{TexCoord: [2]float32{0, 0}, Color: [4]float32{2, 1.5, 0.2, 0.15}}
	got := shade(edge)
	assert.Equal(t, uint8(255), got.R)
	assert.Equal(t, uint8(255), got.G)
	assert.Equal(t, uint8(255), got.A)
}

func TestBakeProgressExtremes(t *testing.T) {
	burner := burnfade.NewReferenceBurner(2, 64)

	img, err := bake(burner, 32, 16, 0.1, testParams(0))
	require.NoError(t, err)
	for i := 0; i < len(img.Pix); i += 4 {
		require.Equal(t, uint8(255), img.Pix[i+3], "progress 0 leaves every pixel opaque")
	}

	img, err = bake(burner, 32, 16, 0.1, testParams(1))
	require.NoError(t, err)
	for i := 0; i < len(img.Pix); i += 4 {
		require.Equal(t, uint8(0), img.Pix[i+3], "progress 1 burns every pixel")
	}
}

func TestBakeMatchesSerialReference(t *testing.T) {
	params := testParams(0.5)
	img, err := bake(burnfade.NewReferenceBurner(3, 17), 24, 12, 0.1, params)
	require.NoError(t, err)

	grid := sphereGrid(24, 12, 0.1)
	for i, v := range grid {
		assert.Equal(t, shade(burnfade.BurnVertex(v, params)), img.NRGBAAt(i%24, i/24))
	}
}

func TestBakeRejectsInvalidSize(t *testing.T) {
	burner := burnfade.NewReferenceBurner(1, 0)
	_, err := bake(burner, 0, 10, 0.1, testParams(0.5))
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = bake(burner, 10, -1, 0.1, testParams(0.5))
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestZoneCounts(t *testing.T) {
	mesh, err := model.GenerateIcosphere(0.1, 3)
	require.NoError(t, err)

	counts := zoneCounts(mesh.Vertices, testParams(0))
	assert.Equal(t, map[burnfade.Zone]int{burnfade.ZoneIntact: mesh.VertexCount()}, counts)

	counts = zoneCounts(mesh.Vertices, testParams(0.5))
	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, mesh.VertexCount(), total)

	assert.Positive(t, zoneCounts(mesh.Vertices, testParams(0.1))[burnfade.ZoneIntact])
	assert.Positive(t, zoneCounts(mesh.Vertices, testParams(0.9))[burnfade.ZoneBurned])
}

func TestRunWritesBMP(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "map.bmp")
	require.NoError(t, run("", out, 40, 20, 0.4, 2))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := bmp.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
}

func TestRunRejectsBadConfigPath(t *testing.T) {
	err := run(filepath.Join(t.TempDir(), "missing.toml"), filepath.Join(t.TempDir(), "x.bmp"), 8, 4, 0.5, 1)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
