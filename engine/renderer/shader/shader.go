package shader

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType is the pipeline stage a shader's entry point runs in.
type ShaderType int

const (
	ShaderTypeCompute ShaderType = iota
	ShaderTypeVertex
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeCompute:
		return "compute"
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// visibility is the bind group layout stage flag for the shader type.
func (t ShaderType) visibility() wgpu.ShaderStage {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	case ShaderTypeCompute:
		return wgpu.ShaderStageCompute
	default:
		return wgpu.ShaderStageNone
	}
}

// Shader is a pre-processed WGSL module for one stage together with the metadata reflected
// from it: the entry point, bind group layouts, vertex input layouts and workgroup size.
// The renderer builds pipelines from it and the scene uses its declarations to find which
// binding holds which burn resource.
type Shader interface {
	// Key is the shader's unique identifier and GPU label.
	Key() string

	// ShaderType is the stage the entry point was found for.
	ShaderType() ShaderType

	// Source is the WGSL after annotation expansion.
	Source() string

	// EntryPoint is the name of the stage's entry function.
	EntryPoint() string

	// Module returns the descriptor the backend compiles into a shader module.
	Module() *wgpu.ShaderModuleDescriptor

	// BindGroupLayoutDescriptor returns the reflected layout of one group, or an empty
	// descriptor when the shader declares nothing in it.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the group's layout
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every reflected group layout keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// VarName returns the name of the variable declared at group and binding, or "".
	VarName(group, binding int) string

	// Binding looks up the binding index of a named variable in a group.
	//
	// Parameters:
	//   - group: the @group index
	//   - name: the variable name
	//
	// Returns:
	//   - int: the binding index, or -1
	//   - bool: false when the group declares no such variable
	Binding(group int, name string) (int, bool)

	// FindBinding returns the first group and binding, in ascending order, whose variable
	// name satisfies match.
	//
	// Parameters:
	//   - match: reports whether a variable name is the one wanted
	//
	// Returns:
	//   - group: the @group index
	//   - binding: the @binding index
	//   - ok: false when no variable matched
	FindBinding(match func(name string) bool) (group, binding int, ok bool)

	// VertexBufferLayouts returns one layout per vertex input struct in buffer slot order.
	// Only vertex shaders have any.
	VertexBufferLayouts() []wgpu.VertexBufferLayout

	// WorkgroupSize is the compute workgroup size, or zeros for render stages.
	WorkgroupSize() [3]uint32

	// Declarations returns the @oxy group and provider annotations found in the source.
	Declarations() []Annotation
}

type shader struct {
	key        string
	shaderType ShaderType
	source     string
	entryPoint string
	module     *wgpu.ShaderModuleDescriptor

	groups        map[int]wgpu.BindGroupLayoutDescriptor
	varNames      map[int]map[int]string
	vertexLayouts []wgpu.VertexBufferLayout
	workgroupSize [3]uint32
	declarations  []Annotation
}

var _ Shader = &shader{}

// NewShader reads WGSL source from a file and parses it. Failures panic, since shaders are
// loaded once at startup and a broken one leaves nothing to render.
//
// Parameters:
//   - key: unique identifier for the shader
//   - shaderType: the stage to parse for
//   - sourcePath: the WGSL file
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, sourcePath string) Shader {
	if sourcePath == "" {
		panic(fmt.Sprintf("shader: %s must have a valid source path", key))
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read source file %q: %v", sourcePath, err))
	}
	s, err := NewShaderFromSource(key, shaderType, string(data))
	if err != nil {
		panic(fmt.Sprintf("shader: %v", err))
	}
	return s
}

// NewShaderFromSource parses in-memory WGSL, such as a source embedded with go:embed.
// Annotations are expanded first, then the result is reflected for the given stage.
//
// Parameters:
//   - key: unique identifier for the shader
//   - shaderType: the stage to parse for
//   - source: raw WGSL, optionally containing @oxy annotations
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if pre-processing fails or the source has no entry point for the stage
func NewShaderFromSource(key string, shaderType ShaderType, source string) (Shader, error) {
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to pre-process shader source: %w", key, err)
	}

	r := reflectWGSL(processed)
	entry := r.entryPoint(shaderType)
	if entry == "" {
		return nil, fmt.Errorf("%s: no %s entry point found", key, shaderType)
	}

	s := &shader{
		key:          key,
		shaderType:   shaderType,
		source:       processed,
		entryPoint:   entry,
		declarations: pp.Declarations(),
		module: &wgpu.ShaderModuleDescriptor{
			Label:          key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: processed},
		},
	}
	s.groups, s.varNames = r.bindGroupLayouts(shaderType.visibility())

	switch shaderType {
	case ShaderTypeVertex:
		layouts := r.vertexLayouts()
		for slot := range len(layouts) {
			s.vertexLayouts = append(s.vertexLayouts, layouts[slot]...)
		}
	case ShaderTypeCompute:
		s.workgroupSize = r.workgroupSize()
	}
	return s, nil
}

func (s *shader) Key() string                          { return s.key }
func (s *shader) ShaderType() ShaderType               { return s.shaderType }
func (s *shader) Source() string                       { return s.source }
func (s *shader) EntryPoint() string                   { return s.entryPoint }
func (s *shader) Module() *wgpu.ShaderModuleDescriptor { return s.module }
func (s *shader) WorkgroupSize() [3]uint32             { return s.workgroupSize }
func (s *shader) Declarations() []Annotation           { return s.declarations }

func (s *shader) VertexBufferLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.groups[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.groups
}

func (s *shader) VarName(group, binding int) string {
	return s.varNames[group][binding]
}

func (s *shader) Binding(group int, name string) (int, bool) {
	for binding, n := range s.varNames[group] {
		if n == name {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) FindBinding(match func(name string) bool) (int, int, bool) {
	for _, g := range slices.Sorted(maps.Keys(s.varNames)) {
		names := s.varNames[g]
		for _, b := range slices.Sorted(maps.Keys(names)) {
			if match(names[b]) {
				return g, b, true
			}
		}
	}
	return 0, 0, false
}
