package burnfade

import (
	"github.com/Carmen-Shannon/burnfade/common"
	"github.com/go-gl/mathgl/mgl32"
)

// fbmOctaves and fbmNorm must stay in sync with burn_fade_compute.wgsl.
const (
	fbmOctaves = 3
	fbmNorm    = 0.875 // 0.5 + 0.25 + 0.125
	maxNoise   = 0.99999994
)

// pcgHash is the PCG-RXS-M-XS 32-bit integer hash. uint32 arithmetic wraps the
// same way as WGSL u32 so CPU and GPU produce identical lattice values.
func pcgHash(v uint32) uint32 {
	state := v*747796405 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}

func hash3(x, y, z int32) uint32 {
	return pcgHash(uint32(x) ^ pcgHash(uint32(y)^pcgHash(uint32(z))))
}

// latticeValue maps a lattice point to [0, 1) using the top 24 hash bits,
// which a float32 represents exactly.
func latticeValue(x, y, z int32) float32 {
	return float32(hash3(x, y, z)>>8) / 16777216.0
}

// valueNoise evaluates trilinearly interpolated lattice noise with a smoothstep fade.
func valueNoise(p mgl32.Vec3) float32 {
	fx, fy, fz := common.Floor32(p[0]), common.Floor32(p[1]), common.Floor32(p[2])
	ix, iy, iz := int32(fx), int32(fy), int32(fz)
	ux := common.Smoothstep(p[0] - fx)
	uy := common.Smoothstep(p[1] - fy)
	uz := common.Smoothstep(p[2] - fz)

	c000 := latticeValue(ix, iy, iz)
	c100 := latticeValue(ix+1, iy, iz)
	c010 := latticeValue(ix, iy+1, iz)
	c110 := latticeValue(ix+1, iy+1, iz)
	c001 := latticeValue(ix, iy, iz+1)
	c101 := latticeValue(ix+1, iy, iz+1)
	c011 := latticeValue(ix, iy+1, iz+1)
	c111 := latticeValue(ix+1, iy+1, iz+1)

	x00 := common.Lerp(c000, c100, ux)
	x10 := common.Lerp(c010, c110, ux)
	x01 := common.Lerp(c001, c101, ux)
	x11 := common.Lerp(c011, c111, ux)
	y0 := common.Lerp(x00, x10, uy)
	y1 := common.Lerp(x01, x11, uy)
	return common.Lerp(y0, y1, uz)
}

// fbm sums three octaves of value noise, doubling frequency and halving amplitude
// each octave, normalized into [0, 1). The upper clamp keeps accumulated rounding
// from reaching 1, which would leave a vertex unburned at full progress.
func fbm(p mgl32.Vec3) float32 {
	var sum float32
	amp := float32(0.5)
	freq := float32(1)
	for range fbmOctaves {
		sum += amp * valueNoise(p.Mul(freq))
		freq *= 2
		amp *= 0.5
	}
	return min(sum/fbmNorm, maxNoise)
}
