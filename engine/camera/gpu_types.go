package camera

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/burnfade/engine/model"
)

// GPUCameraUniformSource is the WGSL declaration of CameraUniform, included into shaders
// through the camera annotation.
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniformSize is the byte size of CameraUniform under WGSL uniform layout rules.
const GPUCameraUniformSize = 80

// GPUCameraUniform mirrors the WGSL CameraUniform struct: a column-major view-projection
// matrix at offset 0 and the eye position at offset 64, padded to 80 bytes.
type GPUCameraUniform struct {
	ViewProj       [16]float32
	CameraPosition [3]float32
	_pad           float32
}

// Size returns GPUCameraUniformSize.
func (g *GPUCameraUniform) Size() int {
	return GPUCameraUniformSize
}

// Marshal writes the uniform in little-endian order. The padding word is always zero.
//
// Returns:
//   - []byte: 80 bytes ready for upload
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, GPUCameraUniformSize)
	for i, v := range g.ViewProj {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range g.CameraPosition {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
	return buf
}

// Unmarshal reads a uniform written by Marshal. The padding word is ignored.
//
// Parameters:
//   - data: at least 80 bytes
//
// Returns:
//   - error: model.ErrShortBuffer if data is too short
func (g *GPUCameraUniform) Unmarshal(data []byte) error {
	if len(data) < GPUCameraUniformSize {
		return fmt.Errorf("camera uniform needs %d bytes, got %d: %w", GPUCameraUniformSize, len(data), model.ErrShortBuffer)
	}
	for i := range g.ViewProj {
		g.ViewProj[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	for i := range g.CameraPosition {
		g.CameraPosition[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[64+i*4:]))
	}
	return nil
}
