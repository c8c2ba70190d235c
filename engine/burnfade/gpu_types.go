package burnfade

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/burnfade/engine/model"
)

// GPUBurnFadeParamsSize is the byte size of the BurnFadeParams uniform.
const GPUBurnFadeParamsSize = 20

// GPUBurnFadeParamsSource is the canonical WGSL definition of the BurnFadeParams struct.
// Matches GPUBurnFadeParams layout exactly (20 bytes, five f32).
//
//go:embed assets/burn_fade_params.wgsl
var GPUBurnFadeParamsSource string

// GPUBurnFadeParams is the GPU-aligned parameter block read uniformly by every invocation
// of the burn shaders. Matches the WGSL BurnFadeParams struct layout exactly.
// Size: 20 bytes (5 × float32, no padding).
//
// No field is validated or clamped; the shaders extrapolate for progress outside [0, 1].
type GPUBurnFadeParams struct {
	Progress   float32 // offset  0: how far the burn has advanced, nominally [0, 1]
	Scale      float32 // offset  4: spatial frequency of the noise pattern
	HueRotate  float32 // offset  8: hue rotation of the edge and ember colors in radians
	EdgeWidth  float32 // offset 12: width of the glowing edge band in progress units
	EmberRange float32 // offset 16: width of the ember band behind the edge in progress units
}

// Size returns the size of the GPUBurnFadeParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUBurnFadeParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUBurnFadeParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 20-byte buffer ready for GPU upload.
func (g *GPUBurnFadeParams) Marshal() []byte {
	buf := make([]byte, GPUBurnFadeParamsSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Progress))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Scale))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.HueRotate))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.EdgeWidth))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.EmberRange))
	return buf
}

// Unmarshal decodes a GPUBurnFadeParams from the first 20 bytes of data.
//
// Parameters:
//   - data: little-endian bytes as produced by Marshal
//
// Returns:
//   - error: model.ErrShortBuffer if data holds fewer than 20 bytes
func (g *GPUBurnFadeParams) Unmarshal(data []byte) error {
	if len(data) < GPUBurnFadeParamsSize {
		return fmt.Errorf("burn fade params need %d bytes, got %d: %w", GPUBurnFadeParamsSize, len(data), model.ErrShortBuffer)
	}
	g.Progress = math.Float32frombits(binary.LittleEndian.Uint32(data[0:4]))
	g.Scale = math.Float32frombits(binary.LittleEndian.Uint32(data[4:8]))
	g.HueRotate = math.Float32frombits(binary.LittleEndian.Uint32(data[8:12]))
	g.EdgeWidth = math.Float32frombits(binary.LittleEndian.Uint32(data[12:16]))
	g.EmberRange = math.Float32frombits(binary.LittleEndian.Uint32(data[16:20]))
	return nil
}
