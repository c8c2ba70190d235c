package burnfade

import _ "embed"

// Shader keys used when registering the burn shaders and pipelines with a renderer.
const (
	ComputeShaderKey  = "burn_fade_compute"
	VertexShaderKey   = "burn_fade_vert"
	FragmentShaderKey = "burn_fade_frag"
)

// ComputeShaderSource is the WGSL compute kernel that rewrites vertex colors from the
// untouched source vertices into the render vertex buffer. Entry point: burnFadeVertices.
//
//go:embed assets/burn_fade_compute.wgsl
var ComputeShaderSource string

// VertexShaderSource transforms burned vertices by the camera uniform.
//
//go:embed assets/burn_fade_vert.wgsl
var VertexShaderSource string

// FragmentShaderSource shades the sphere from its texture coordinate and burned vertex color.
//
//go:embed assets/burn_fade_frag.wgsl
var FragmentShaderSource string
