package model

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrShortBuffer is returned when a byte slice is too short to hold the record being decoded.
var ErrShortBuffer = errors.New("buffer too short for record")

// GPUVertexStride is the distance in bytes between consecutive vertices in a vertex buffer.
const GPUVertexStride = 48

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct used by the
// render pipeline's vertex stage. Matches GPUVertex layout exactly (48 bytes, tightly packed).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertexRecordSource is the canonical WGSL definition of the VertexRecord struct used
// for vertex storage buffers in compute passes. It declares twelve scalar f32 members so the
// storage layout keeps the same 48-byte stride as GPUVertex.
//
//go:embed assets/vertex_record.wgsl
var GPUVertexRecordSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput and VertexRecord struct layouts exactly.
// Size: 48 bytes (12 × float32, no padding).
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: surface normal (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
	Color    [4]float32 // offset 32: per-vertex RGBA color (16 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, GPUVertexStride)
	g.put(buf)
	return buf
}

func (g *GPUVertex) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Normal[2]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.TexCoord[1]))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.Color[3]))
}

// Unmarshal decodes a GPUVertex from the first 48 bytes of data.
//
// Parameters:
//   - data: little-endian vertex bytes as produced by Marshal
//
// Returns:
//   - error: ErrShortBuffer if data holds fewer than 48 bytes
func (g *GPUVertex) Unmarshal(data []byte) error {
	if len(data) < GPUVertexStride {
		return fmt.Errorf("vertex needs %d bytes, got %d: %w", GPUVertexStride, len(data), ErrShortBuffer)
	}
	f := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
	}
	g.Position = [3]float32{f(0), f(4), f(8)}
	g.Normal = [3]float32{f(12), f(16), f(20)}
	g.TexCoord = [2]float32{f(24), f(28)}
	g.Color = [4]float32{f(32), f(36), f(40), f(44)}
	return nil
}

// MarshalVertices serializes a vertex slice into one contiguous buffer at a 48-byte stride.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: len(vertices) * 48 bytes, or nil for an empty slice
func MarshalVertices(vertices []GPUVertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	buf := make([]byte, len(vertices)*GPUVertexStride)
	for i := range vertices {
		vertices[i].put(buf[i*GPUVertexStride : (i+1)*GPUVertexStride])
	}
	return buf
}

// UnmarshalVertices decodes a contiguous vertex buffer back into vertices.
//
// Parameters:
//   - data: a buffer whose length is a multiple of 48
//
// Returns:
//   - []GPUVertex: the decoded vertices
//   - error: ErrShortBuffer if the length is not a multiple of the stride
func UnmarshalVertices(data []byte) ([]GPUVertex, error) {
	if len(data)%GPUVertexStride != 0 {
		return nil, fmt.Errorf("vertex buffer length %d is not a multiple of %d: %w", len(data), GPUVertexStride, ErrShortBuffer)
	}
	out := make([]GPUVertex, len(data)/GPUVertexStride)
	for i := range out {
		if err := out[i].Unmarshal(data[i*GPUVertexStride:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// VertexBufferLayout returns the wgpu vertex buffer layout describing GPUVertex.
// Attribute locations match the VertexInput declaration in GPUVertexSource.
//
// Returns:
//   - wgpu.VertexBufferLayout: per-vertex layout with stride 48
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: GPUVertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3},
		},
	}
}

// ComputeBoundingRadius calculates the bounding sphere radius from a slice of
// GPUVertex positions. The radius is the maximum distance from the origin
// across all vertices in the slice.
//
// Parameters:
//   - vertices: the vertex data to compute the bounding radius from
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeBoundingRadius(vertices []GPUVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}
