package burnfade

import (
	"math"

	"github.com/Carmen-Shannon/burnfade/common"
	"github.com/Carmen-Shannon/burnfade/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Band colors shared with burn_fade_compute.wgsl.
var (
	edgeOuterColor = mgl32.Vec3{1.0, 0.35, 0.05}
	edgeInnerColor = mgl32.Vec3{1.0, 0.85, 0.4}
	emberColor     = mgl32.Vec3{0.9, 0.25, 0.02}
)

const (
	edgeAlpha      = 0.15
	emberMinAlpha  = 0.15
	emberIntensity = 0.5
)

// Zone classifies where a vertex sits relative to the advancing burn front.
type Zone int

const (
	// ZoneIntact vertices keep their source color.
	ZoneIntact Zone = iota
	// ZoneEmber vertices are charred and dimly glowing just behind the edge.
	ZoneEmber
	// ZoneEdge vertices are on the bright burning front.
	ZoneEdge
	// ZoneBurned vertices are fully consumed and transparent.
	ZoneBurned
)

func (z Zone) String() string {
	switch z {
	case ZoneIntact:
		return "intact"
	case ZoneEmber:
		return "ember"
	case ZoneEdge:
		return "edge"
	case ZoneBurned:
		return "burned"
	default:
		return "unknown"
	}
}

// BurnDistance returns the signed distance of a position from the burn front in
// progress units. Negative distances are burned, [0, EdgeWidth) is the edge and
// [EdgeWidth, EdgeWidth+EmberRange) is the ember band.
//
// The mapping guarantees that progress 0 yields a distance of at least the full
// band width for every position, and progress 1 yields a negative distance.
//
// Parameters:
//   - position: model-space vertex position
//   - params: the burn parameter block
//
// Returns:
//   - float32: the distance from the burn front
func BurnDistance(position [3]float32, params GPUBurnFadeParams) float32 {
	n := fbm(mgl32.Vec3(position).Mul(params.Scale))
	band := params.EdgeWidth + params.EmberRange
	// n + band - progress*(1+band), grouped so progress 0 and 1 land exactly
	return (n - params.Progress) + band*(1-params.Progress)
}

// Classify reports which zone a burn distance falls into.
//
// Parameters:
//   - d: a distance from BurnDistance
//   - params: the burn parameter block
//
// Returns:
//   - Zone: the zone for d
func Classify(d float32, params GPUBurnFadeParams) Zone {
	switch {
	case d < 0:
		return ZoneBurned
	case d < params.EdgeWidth:
		return ZoneEdge
	case d < params.EdgeWidth+params.EmberRange:
		return ZoneEmber
	default:
		return ZoneIntact
	}
}

// HueRotate rotates an RGB color about the gray axis by angle radians using
// Rodrigues' rotation formula. Gray values are fixed points.
//
// Parameters:
//   - rgb: the color to rotate
//   - angle: rotation in radians
//
// Returns:
//   - mgl32.Vec3: the rotated color
func HueRotate(rgb mgl32.Vec3, angle float32) mgl32.Vec3 {
	if angle == 0 {
		return rgb
	}
	k := mgl32.Vec3{1, 1, 1}.Normalize()
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))
	return rgb.Mul(c).Add(k.Cross(rgb).Mul(s)).Add(k.Mul(k.Dot(rgb) * (1 - c)))
}

// BurnVertex evaluates the burn kernel for a single vertex. Position, normal and
// texture coordinate pass through unchanged; only the color is rewritten.
//
// Parameters:
//   - v: the source vertex
//   - params: the burn parameter block
//
// Returns:
//   - model.GPUVertex: the burned vertex
func BurnVertex(v model.GPUVertex, params GPUBurnFadeParams) model.GPUVertex {
	d := BurnDistance(v.Position, params)
	switch Classify(d, params) {
	case ZoneBurned:
		v.Color = [4]float32{0, 0, 0, 0}
	case ZoneEdge:
		t := 1 - d/params.EdgeWidth
		base := edgeOuterColor.Add(edgeInnerColor.Sub(edgeOuterColor).Mul(t))
		rgb := HueRotate(base, params.HueRotate).Mul(1 + t)
		v.Color = [4]float32{rgb[0], rgb[1], rgb[2], edgeAlpha}
	case ZoneEmber:
		k := 1 - (d-params.EdgeWidth)/params.EmberRange
		rgb := HueRotate(emberColor, params.HueRotate).Mul(emberIntensity * k)
		a := common.Lerp(1, emberMinAlpha, k)
		v.Color = [4]float32{rgb[0], rgb[1], rgb[2], a}
	}
	return v
}

// BurnVertices evaluates the burn kernel for every vertex in src, writing into dst.
// dst must be at least as long as src.
//
// Parameters:
//   - dst: destination slice
//   - src: source vertices
//   - params: the burn parameter block
func BurnVertices(dst, src []model.GPUVertex, params GPUBurnFadeParams) {
	for i := range src {
		dst[i] = BurnVertex(src[i], params)
	}
}
