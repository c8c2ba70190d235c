package model

import (
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is an axis-aligned bounding box in model space.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Extent returns the size of the box along each axis.
func (b Bounds) Extent() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Mesh is an indexed triangle list of GPUVertex records.
// Every three consecutive indices form one triangle.
type Mesh struct {
	Vertices []GPUVertex
	Indices  []uint32
	Bounds   Bounds
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// IndexCount returns the number of indices in the mesh.
func (m *Mesh) IndexCount() int {
	return len(m.Indices)
}

// VertexData returns the mesh vertices serialized at a 48-byte stride.
//
// Returns:
//   - []byte: vertex buffer contents ready for upload
func (m *Mesh) VertexData() []byte {
	return MarshalVertices(m.Vertices)
}

// IndexData returns the mesh indices as little-endian uint32 bytes.
//
// Returns:
//   - []byte: index buffer contents ready for upload
func (m *Mesh) IndexData() []byte {
	if len(m.Indices) == 0 {
		return nil
	}
	buf := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// CloneVertices returns a copy of the vertex slice that shares no memory with the mesh.
func (m *Mesh) CloneVertices() []GPUVertex {
	out := make([]GPUVertex, len(m.Vertices))
	copy(out, m.Vertices)
	return out
}

// ComputeBounds recalculates the axis-aligned bounds from the vertex positions.
// An empty mesh gets zero bounds.
func (m *Mesh) ComputeBounds() Bounds {
	if len(m.Vertices) == 0 {
		return Bounds{}
	}
	lo := mgl32.Vec3(m.Vertices[0].Position)
	hi := lo
	for _, v := range m.Vertices[1:] {
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], v.Position[a])
			hi[a] = max(hi[a], v.Position[a])
		}
	}
	return Bounds{Min: lo, Max: hi}
}
