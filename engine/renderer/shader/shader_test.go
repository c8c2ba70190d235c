package shader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/burnfade/engine/burnfade"
	"github.com/Carmen-Shannon/burnfade/engine/camera"
	"github.com/Carmen-Shannon/burnfade/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBurnComputeShader(t *testing.T) {
	s, err := NewShaderFromSource(burnfade.ComputeShaderKey, ShaderTypeCompute, burnfade.ComputeShaderSource)
	require.NoError(t, err)

	assert.Equal(t, "burnFadeVertices", s.EntryPoint())
	assert.Equal(t, [3]uint32{burnfade.WorkgroupSize, 1, 1}, s.WorkgroupSize())
	assert.Empty(t, s.VertexBufferLayouts())
	assert.Equal(t, burnfade.ComputeShaderKey, s.Module().Label)
	assert.Equal(t, s.Source(), s.Module().WGSLDescriptor.Code)

	desc := s.BindGroupLayoutDescriptors()
	require.Len(t, desc, 1)
	entries := desc[0].Entries
	require.Len(t, entries, 3)

	assert.Equal(t, uint32(burnfade.DefaultSourceBinding), entries[0].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, entries[0].Buffer.Type)
	assert.Equal(t, uint64(model.GPUVertexStride), entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageCompute, entries[0].Visibility)

	assert.Equal(t, uint32(burnfade.DefaultOutputBinding), entries[1].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeStorage, entries[1].Buffer.Type)
	assert.Equal(t, uint64(model.GPUVertexStride), entries[1].Buffer.MinBindingSize)

	assert.Equal(t, uint32(burnfade.DefaultParamsBinding), entries[2].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entries[2].Buffer.Type)
	assert.Equal(t, uint64(burnfade.GPUBurnFadeParamsSize), entries[2].Buffer.MinBindingSize)

	assert.Equal(t, "source_vertices", s.VarName(0, 0))
	assert.Equal(t, "output_vertices", s.VarName(0, 1))
	assert.Empty(t, s.VarName(3, 0))
	binding, ok := s.Binding(0, "params")
	assert.True(t, ok)
	assert.Equal(t, 2, binding)
	_, ok = s.Binding(1, "params")
	assert.False(t, ok)

	g, b, ok := s.FindBinding(func(name string) bool { return strings.HasSuffix(name, "_vertices") })
	require.True(t, ok)
	assert.Equal(t, [2]int{0, 0}, [2]int{g, b})
	_, _, ok = s.FindBinding(func(string) bool { return false })
	assert.False(t, ok)

	decls := s.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, AnnotationArgStorageTypeRead, decls[0].AddressSpace())
	assert.Equal(t, AnnotationArgStorageTypeReadWrite, decls[1].AddressSpace())
	assert.Equal(t, AnnotationArgBurnFadeParams, decls[2].ElementType())
}

func TestBurnVertexShader(t *testing.T) {
	s, err := NewShaderFromSource(burnfade.VertexShaderKey, ShaderTypeVertex, burnfade.VertexShaderSource)
	require.NoError(t, err)

	assert.Equal(t, "vs_main", s.EntryPoint())

	// only VertexInput qualifies; VertexOutput carries a builtin
	layouts := s.VertexBufferLayouts()
	require.Len(t, layouts, 1)
	assert.Equal(t, model.VertexBufferLayout(), layouts[0])

	desc := s.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, desc.Entries[0].Buffer.Type)
	assert.Equal(t, uint64((&camera.GPUCameraUniform{}).Size()), desc.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageVertex, desc.Entries[0].Visibility)
}

func TestBurnFragmentShader(t *testing.T) {
	s, err := NewShaderFromSource(burnfade.FragmentShaderKey, ShaderTypeFragment, burnfade.FragmentShaderSource)
	require.NoError(t, err)
	assert.Equal(t, "fs_main", s.EntryPoint())
	assert.Empty(t, s.BindGroupLayoutDescriptors())
	assert.Empty(t, s.VertexBufferLayouts())
	assert.Equal(t, [3]uint32{}, s.WorkgroupSize())
}

func TestShaderTypeString(t *testing.T) {
	assert.Equal(t, "compute", ShaderTypeCompute.String())
	assert.Equal(t, "vertex", ShaderTypeVertex.String())
	assert.Equal(t, "fragment", ShaderTypeFragment.String())
	assert.Equal(t, "ShaderType(7)", ShaderType(7).String())
	assert.Equal(t, wgpu.ShaderStageNone, ShaderType(7).visibility())
}

func TestNewShaderFromSourceErrors(t *testing.T) {
	_, err := NewShaderFromSource("broken", ShaderTypeCompute, "//@oxy:include nope\n@compute @workgroup_size(1) fn main() {}")
	assert.Error(t, err)

	_, err = NewShaderFromSource("wrong_stage", ShaderTypeVertex, burnfade.ComputeShaderSource)
	assert.Error(t, err)
}

func TestNewShaderReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frag.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(burnfade.FragmentShaderSource), 0o644))

	s := NewShader("frag", ShaderTypeFragment, path)
	assert.Equal(t, "fs_main", s.EntryPoint())

	assert.Panics(t, func() { NewShader("missing", ShaderTypeFragment, filepath.Join(t.TempDir(), "nope.wgsl")) })
	assert.Panics(t, func() { NewShader("empty", ShaderTypeFragment, "") })
}
