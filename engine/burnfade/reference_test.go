package burnfade

import (
	"testing"

	"github.com/Carmen-Shannon/burnfade/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceBurnerMatchesSerial(t *testing.T) {
	mesh := testMesh(t)
	s := DefaultSettings()
	s.BurnAmount = 0.45
	s.HueRotate = 0.8
	p := s.Params()

	want := make([]model.GPUVertex, len(mesh.Vertices))
	BurnVertices(want, mesh.Vertices, p)

	// a small chunk size forces the vertex range across many pool tasks
	b := NewReferenceBurner(4, 50)
	got := b.Burn(mesh.Vertices, p)
	assert.Equal(t, want, got)

	// the pool is reused across calls
	s.BurnAmount = 0.7
	BurnVertices(want, mesh.Vertices, s.Params())
	assert.Equal(t, want, b.Burn(mesh.Vertices, s.Params()))
}

func TestReferenceBurnerSingleChunk(t *testing.T) {
	mesh := testMesh(t)
	b := NewReferenceBurner(0, 0)
	s := DefaultSettings()
	s.BurnAmount = 1
	out := b.Burn(mesh.Vertices[:10], s.Params())
	require.Len(t, out, 10)
	for _, v := range out {
		assert.Equal(t, [4]float32{0, 0, 0, 0}, v.Color)
	}
}

func TestReferenceBurnerShortDestination(t *testing.T) {
	mesh := testMesh(t)
	b := NewReferenceBurner(2, 16)
	err := b.BurnInto(make([]model.GPUVertex, 3), mesh.Vertices, DefaultSettings().Params())
	assert.Error(t, err)
}
