package model

import (
	"github.com/Carmen-Shannon/burnfade/engine/renderer/bind_group_provider"
	"github.com/google/uuid"
)

// Model pairs a CPU-side mesh with the provider that holds its GPU buffers. The renderer
// uploads the index buffer once; the vertex buffer is borrowed from the burn kernel's output.
type Model interface {
	// ID is generated at construction and never changes.
	ID() uuid.UUID
	Name() string

	// Mesh returns the CPU-side mesh, or nil if none was set.
	Mesh() *Mesh

	// MeshProvider holds the vertex buffer, index buffer and index count used for draws.
	MeshProvider() bind_group_provider.BindGroupProvider

	// VertexData and IndexData serialize the mesh for upload. Both are nil without a mesh.
	VertexData() []byte
	IndexData() []byte

	IndexCount() int
	VertexCount() int

	// BoundingRadius is the largest vertex distance from the origin unless overridden. The
	// camera uses it to frame the model.
	BoundingRadius() float32
}

type model struct {
	id             uuid.UUID
	name           string
	mesh           *Mesh
	meshProvider   bind_group_provider.BindGroupProvider
	boundingRadius float32
}

var _ Model = &model{}

// NewModel creates a Model. Without WithMeshProvider a provider labeled "<name>_mesh" is
// created, and without WithBoundingRadius the radius is measured from the mesh.
//
// Parameters:
//   - options: model options
//
// Returns:
//   - Model: the model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{id: uuid.New()}
	for _, opt := range options {
		opt(m)
	}
	if m.meshProvider == nil {
		m.meshProvider = bind_group_provider.NewBindGroupProvider(m.name + "_mesh")
	}
	if m.boundingRadius == 0 && m.mesh != nil {
		m.boundingRadius = ComputeBoundingRadius(m.mesh.Vertices)
	}
	return m
}

func (m *model) ID() uuid.UUID                                      { return m.id }
func (m *model) Name() string                                       { return m.name }
func (m *model) Mesh() *Mesh                                        { return m.mesh }
func (m *model) MeshProvider() bind_group_provider.BindGroupProvider { return m.meshProvider }
func (m *model) BoundingRadius() float32                            { return m.boundingRadius }

func (m *model) VertexData() []byte { return meshValue(m.mesh, (*Mesh).VertexData) }
func (m *model) IndexData() []byte  { return meshValue(m.mesh, (*Mesh).IndexData) }
func (m *model) IndexCount() int    { return meshValue(m.mesh, (*Mesh).IndexCount) }
func (m *model) VertexCount() int   { return meshValue(m.mesh, (*Mesh).VertexCount) }

// meshValue reads a value from mesh, or returns the zero value when there is no mesh.
func meshValue[T any](mesh *Mesh, get func(*Mesh) T) T {
	if mesh == nil {
		var zero T
		return zero
	}
	return get(mesh)
}
