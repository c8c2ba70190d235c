package main

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/Carmen-Shannon/burnfade/common"
	"github.com/Carmen-Shannon/burnfade/engine/burnfade"
	"github.com/Carmen-Shannon/burnfade/engine/model"
)

// ErrInvalidSize is returned for a burn map with a non-positive dimension.
var ErrInvalidSize = errors.New("burn map size must be positive")

// sphereGrid builds one vertex per pixel of a width×height equirectangular map, placed on
// a sphere of the given radius at the position the icosphere's uv mapping assigns to the
// pixel center. Row 0 is the top of the map (v = 1).
//
// Parameters:
//   - width, height: the map size in pixels
//   - radius: the sphere radius
//
// Returns:
//   - []model.GPUVertex: the vertices in row-major order with the icosphere's source color
func sphereGrid(width, height int, radius float32) []model.GPUVertex {
	grid := make([]model.GPUVertex, 0, width*height)
	for py := range height {
		v := 1 - (float64(py)+0.5)/float64(height)
		lat := v*math.Pi - math.Pi/2
		for px := range width {
			u := (float64(px) + 0.5) / float64(width)
			lon := u*2*math.Pi - math.Pi
			n := [3]float32{
				float32(math.Cos(lat) * math.Cos(lon)),
				float32(math.Sin(lat)),
				float32(math.Cos(lat) * math.Sin(lon)),
			}
			grid = append(grid, model.GPUVertex{
				Position: [3]float32{n[0] * radius, n[1] * radius, n[2] * radius},
				Normal:   n,
				TexCoord: [2]float32{float32(u), float32(v)},
				Color:    [4]float32{0, 0, 0, 1},
			})
		}
	}
	return grid
}

// shade resolves a burned vertex to its displayed color the way burn_fade_frag.wgsl does:
// uv tint scaled by alpha plus the burn color, fully transparent when burned away.
//
// Parameters:
//   - v: a burned vertex
//
// Returns:
//   - color.NRGBA: the pixel color
func shade(v model.GPUVertex) color.NRGBA {
	const discardAlpha = 0.02
	a := v.Color[3]
	if a < discardAlpha {
		return color.NRGBA{}
	}
	tint := [3]float32{v.TexCoord[0], v.TexCoord[1], 1 - v.TexCoord[0]}
	var rgb [3]uint8
	for i := range rgb {
		c := common.Clamp(tint[i]*a+v.Color[i], 0, 1)
		rgb[i] = uint8(math.Round(float64(c) * 255))
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
}

// bake renders the equirectangular burn map for a sphere of the given radius.
//
// Parameters:
//   - burner: the CPU reference burner
//   - width, height: the map size in pixels
//   - radius: the sphere radius; noise is sampled in model space so radius changes the pattern
//   - params: the burn parameter block
//
// Returns:
//   - *image.NRGBA: the burn map
//   - error: ErrInvalidSize for a non-positive dimension
func bake(burner *burnfade.ReferenceBurner, width, height int, radius float32, params burnfade.GPUBurnFadeParams) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}
	burned := burner.Burn(sphereGrid(width, height, radius), params)

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, v := range burned {
		img.SetNRGBA(i%width, i/width, shade(v))
	}
	return img, nil
}

// zoneCounts tallies how many vertices fall in each burn zone.
//
// Parameters:
//   - vertices: the source vertices
//   - params: the burn parameter block
//
// Returns:
//   - map[burnfade.Zone]int: the count per zone
func zoneCounts(vertices []model.GPUVertex, params burnfade.GPUBurnFadeParams) map[burnfade.Zone]int {
	counts := make(map[burnfade.Zone]int, 4)
	for _, v := range vertices {
		counts[burnfade.Classify(burnfade.BurnDistance(v.Position, params), params)]++
	}
	return counts
}
