package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/burnfade/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies whether a pipeline is a compute pipeline or a render pipeline.
type PipelineType int

const (
	// PipelineTypeCompute runs a single compute shader.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender runs a vertex and a fragment shader.
	PipelineTypeRender
)

func (t PipelineType) String() string {
	switch t {
	case PipelineTypeCompute:
		return "compute"
	case PipelineTypeRender:
		return "render"
	default:
		return fmt.Sprintf("PipelineType(%d)", int(t))
	}
}

// stages lists the shader stages a pipeline of this type must have, or nil for an unknown type.
func (t PipelineType) stages() []shader.ShaderType {
	switch t {
	case PipelineTypeCompute:
		return []shader.ShaderType{shader.ShaderTypeCompute}
	case PipelineTypeRender:
		return []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment}
	default:
		return nil
	}
}

// ErrMissingShader is returned by Validate when a stage required by the pipeline type is not set.
var ErrMissingShader = errors.New("pipeline is missing a required shader")

// RenderState is the fixed-function configuration of a render pipeline. Compute pipelines
// carry the defaults and never read them.
type RenderState struct {
	DepthTest  bool
	DepthWrite bool
	Blend      bool
	CullMode   wgpu.CullMode
	Topology   wgpu.PrimitiveTopology
	FrontFace  wgpu.FrontFace
	WriteMask  wgpu.ColorWriteMask
	// BlendState is applied to the color target only when Blend is set.
	BlendState *wgpu.BlendState
}

// DefaultRenderState returns depth tested, opaque, unculled counter-clockwise triangle lists
// with a straight-alpha blend state ready for when blending is turned on.
func DefaultRenderState() RenderState {
	return RenderState{
		DepthTest:  true,
		DepthWrite: true,
		CullMode:   wgpu.CullModeNone,
		Topology:   wgpu.PrimitiveTopologyTriangleList,
		FrontFace:  wgpu.FrontFaceCCW,
		WriteMask:  wgpu.ColorWriteMaskAll,
		BlendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
}

// Primitive returns the primitive assembly state.
func (s RenderState) Primitive() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  s.Topology,
		FrontFace: s.FrontFace,
		CullMode:  s.CullMode,
	}
}

// ColorTarget returns the color target state for an attachment of the given format.
func (s RenderState) ColorTarget(format wgpu.TextureFormat) wgpu.ColorTargetState {
	target := wgpu.ColorTargetState{
		Format:    format,
		WriteMask: s.WriteMask,
	}
	if s.Blend {
		target.Blend = s.BlendState
	}
	return target
}

// DepthStencil maps the depth flags onto a depth attachment of the given format. A disabled
// depth test still uses the attachment, with an always-pass compare.
//
// Parameters:
//   - format: the depth attachment format
//
// Returns:
//   - *wgpu.DepthStencilState: the depth stencil state
func (s RenderState) DepthStencil(format wgpu.TextureFormat) *wgpu.DepthStencilState {
	compare := wgpu.CompareFunctionLess
	if !s.DepthTest {
		compare = wgpu.CompareFunctionAlways
	}
	return &wgpu.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: s.DepthWrite,
		DepthCompare:      compare,
		StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
	}
}

// Pipeline pairs the shaders of a render or compute pipeline with the GPU pipeline object the
// renderer creates from them. It is keyed by PipelineKey so effects sharing shaders share one
// GPU pipeline.
type Pipeline interface {
	Type() PipelineType

	// PipelineKey is the cache key and GPU label.
	PipelineKey() string

	// Shader returns the shader attached for a stage, or nil.
	//
	// Parameters:
	//   - shaderType: the stage
	//
	// Returns:
	//   - shader.Shader: the attached shader or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// RenderState returns the fixed-function state used when the pipeline is a render pipeline.
	RenderState() RenderState

	// Pipeline returns the *wgpu.RenderPipeline or *wgpu.ComputePipeline once registered,
	// and nil before.
	Pipeline() any

	// Validate checks that every stage the pipeline type needs is attached and that each
	// shader was parsed for the stage it is attached to.
	//
	// Returns:
	//   - error: ErrMissingShader (wrapped) when a stage is absent, or a stage mismatch error
	Validate() error

	// SetRenderPipeline stores the created GPU object. It is ignored on compute pipelines.
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// SetComputePipeline stores the created GPU object. It is ignored on render pipelines.
	SetComputePipeline(p *wgpu.ComputePipeline)
}

type pipeline struct {
	key          string
	pipelineType PipelineType
	shaders      map[shader.ShaderType]shader.Shader
	state        RenderState

	// gpu is nil until the backend registers the pipeline
	gpu any
}

var _ Pipeline = &pipeline{}

// NewPipeline creates an unregistered pipeline.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - pipelineType: render or compute
//   - opts: shader and render state options
//
// Returns:
//   - Pipeline: the pipeline, with DefaultRenderState unless options change it
func NewPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:          pipelineKey,
		pipelineType: pipelineType,
		shaders:      make(map[shader.ShaderType]shader.Shader, 2),
		state:        DefaultRenderState(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType       { return p.pipelineType }
func (p *pipeline) PipelineKey() string      { return p.key }
func (p *pipeline) RenderState() RenderState { return p.state }
func (p *pipeline) Pipeline() any            { return p.gpu }

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	return p.shaders[shaderType]
}

func (p *pipeline) Validate() error {
	required := p.pipelineType.stages()
	if required == nil {
		return fmt.Errorf("pipeline %q has unknown type %s", p.key, p.pipelineType)
	}
	for _, stage := range required {
		s := p.shaders[stage]
		if s == nil {
			return fmt.Errorf("pipeline %q: %s stage: %w", p.key, stage, ErrMissingShader)
		}
		if s.ShaderType() != stage {
			return fmt.Errorf("pipeline %q: shader %q is a %s shader but is attached as %s", p.key, s.Key(), s.ShaderType(), stage)
		}
	}
	return nil
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	if p.pipelineType == PipelineTypeRender {
		p.gpu = rp
	}
}

func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) {
	if p.pipelineType == PipelineTypeCompute {
		p.gpu = cp
	}
}
