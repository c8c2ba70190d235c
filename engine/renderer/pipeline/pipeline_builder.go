package pipeline

import (
	"github.com/Carmen-Shannon/burnfade/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader attaches the vertex stage of a render pipeline.
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return withShader(shader.ShaderTypeVertex, s)
}

// WithFragmentShader attaches the fragment stage of a render pipeline.
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return withShader(shader.ShaderTypeFragment, s)
}

// WithComputeShader attaches the shader of a compute pipeline.
func WithComputeShader(s shader.Shader) PipelineBuilderOption {
	return withShader(shader.ShaderTypeCompute, s)
}

// withShader attaches s for a stage. Validate later checks that s was parsed for that stage.
func withShader(stage shader.ShaderType, s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		if s == nil {
			delete(p.shaders, stage)
			return
		}
		p.shaders[stage] = s
	}
}

// WithRenderState replaces the whole render state. Options after it adjust the replacement.
//
// Parameters:
//   - state: the render state, typically DefaultRenderState with fields changed
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithRenderState(state RenderState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state = state
	}
}

// WithDepthTestEnabled toggles the depth comparison. Enabled by default.
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.DepthTest = enabled
	}
}

// WithDepthWriteEnabled toggles depth writes. Enabled by default.
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.DepthWrite = enabled
	}
}

// WithBlendEnabled toggles color blending with the pipeline's blend state. The burn effect
// enables it so the translucent edge band composites over the clear color.
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.Blend = enabled
	}
}

// WithCullMode sets which triangle faces are culled.
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.CullMode = mode
	}
}

// WithTopology sets the primitive topology. Icosphere meshes are triangle lists, the default.
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.Topology = topology
	}
}

func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.FrontFace = frontFace
	}
}

func WithWriteMask(writeMask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.WriteMask = writeMask
	}
}

// WithBlendState replaces the default straight-alpha blend state. It only takes effect
// when blending is enabled. A nil state keeps the current one.
func WithBlendState(blendState *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		if blendState != nil {
			p.state.BlendState = blendState
		}
	}
}
