package model

import (
	"github.com/Carmen-Shannon/burnfade/engine/renderer/bind_group_provider"
)

// ModelBuilderOption configures a Model in NewModel.
type ModelBuilderOption func(*model)

// WithName labels the model. The label also names its mesh provider in GPU debug output.
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMesh sets the CPU-side mesh. A burn effect needs one with vertices and indices.
func WithMesh(mesh *Mesh) ModelBuilderOption {
	return func(m *model) {
		m.mesh = mesh
	}
}

// WithMeshProvider replaces the provider that receives the index buffer and, through the
// burn kernel's output, the vertex buffer.
//
// Parameters:
//   - provider: the provider to draw from
//
// Returns:
//   - ModelBuilderOption: the option
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) ModelBuilderOption {
	return func(m *model) {
		m.meshProvider = provider
	}
}

// WithBoundingRadius overrides the radius computed from the mesh, e.g. to frame a mesh whose
// burned vertices move outward. Negative radii are ignored.
func WithBoundingRadius(radius float32) ModelBuilderOption {
	return func(m *model) {
		if radius >= 0 {
			m.boundingRadius = radius
		}
	}
}
