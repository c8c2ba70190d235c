package renderer

import (
	"fmt"
	"maps"
	"sync"

	"github.com/Carmen-Shannon/burnfade/engine/logger"
	"github.com/Carmen-Shannon/burnfade/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/burnfade/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/burnfade/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu            sync.RWMutex
	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// collected from options before the backend requests an adapter
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	clearColor           wgpu.Color
}

// Renderer owns the GPU device and a cache of registered pipelines keyed by PipelineKey.
//
// A frame is recorded in two batches: every compute dispatch between BeginComputeFrame and
// EndComputeFrame is submitted first, then every draw between BeginFrame and EndFrame, so
// draws always read vertex buffers the same frame's compute pass wrote.
type Renderer interface {
	// Pipeline returns the registered pipeline with the given key, or nil.
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: registered pipelines keyed by PipelineKey
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the GPU objects for each pipeline and caches it by
	// PipelineKey. Keys already in the cache are skipped, so effects sharing shaders share
	// one GPU pipeline.
	//
	// Parameters:
	//   - pipelines: render or compute pipelines to register
	//
	// Returns:
	//   - error: the first creation error; pipelines before it stay registered
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface and its attachments for a new framebuffer size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// InitMeshBuffers uploads vertex and index data into new GPU buffers on the provider.
	// Empty vertex data leaves the vertex buffer for a compute output to fill in.
	//
	// Parameters:
	//   - provider: receives the buffers and the index count
	//   - vertexData: raw vertex bytes, may be empty
	//   - indexData: raw uint32 index bytes
	//   - indexCount: the number of indices drawn
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the buffers and bind group described by a layout and stores them
	// on the provider. Usage and size overrides are how the compute output buffer also
	// becomes a vertex buffer large enough for the whole mesh.
	//
	// Parameters:
	//   - provider: receives the layout, buffers and bind group
	//   - descriptor: the reflected layout
	//   - bufferUsageOverrides: extra usage flags per binding (nil safe)
	//   - bufferSizeOverrides: buffer sizes per binding in place of MinBindingSize (nil safe)
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues staged writes in order.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginComputeFrame opens the frame's compute batch.
	//
	// Returns:
	//   - error: an error if the command encoder could not be created
	BeginComputeFrame() error

	// EndComputeFrame submits the compute batch.
	EndComputeFrame()

	// DispatchCompute records a dispatch of the cached compute pipeline. An unknown key is
	// logged and skipped.
	//
	// Parameters:
	//   - pipelineKey: the compute pipeline's key
	//   - computeProvider: the provider whose bind group is bound at group 0
	//   - workGroupCount: workgroups in x, y and z
	DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32)

	// BeginFrame acquires the swapchain texture and opens the main render pass.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// DrawCall records an indexed draw with the cached render pipeline.
	//
	// Parameters:
	//   - pipelineKey: the render pipeline's key
	//   - meshProvider: holds the vertex buffer, index buffer and index count
	//   - instanceCount: instances to draw
	//   - bindGroups: bound at groups 0..n-1 in order
	//
	// Returns:
	//   - error: an error if the key is not cached or no frame is open
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame closes and submits the render pass.
	EndFrame()

	// Present shows the frame and releases the swapchain texture.
	Present()

	// SetPresentMode changes the present mode. It takes effect on the next Resize.
	SetPresentMode(mode PresentMode)
}

var _ Renderer = &renderer{}

// NewRenderer creates the GPU device for the window's surface and configures the surface at
// the window's current size. It panics if no adapter or device is available.
//
// Parameters:
//   - backendType: the GPU backend; BackendTypeWGPU is the only one
//   - window: the window providing the surface descriptor and initial size
//   - options: renderer options
//
// Returns:
//   - Renderer: the configured renderer
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := newRenderer(backendType, options...)

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, r.sampleCount(), r.clearColor)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.ConfigureSurface(window.Width(), window.Height())
	return r
}

// newRenderer applies options to a renderer without a backend.
func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		clearColor:    DefaultClearColor,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) sampleCount() MSAASampleCount {
	if r.pendingMSAA != nil {
		return *r.pendingMSAA
	}
	return MSAA4x
}

func (r *renderer) Resize(width, height int)        { r.backend.ConfigureSurface(width, height) }
func (r *renderer) SetPresentMode(mode PresentMode) { r.backend.SetPresentMode(mode) }
func (r *renderer) BeginComputeFrame() error        { return r.backend.BeginComputeFrame() }
func (r *renderer) EndComputeFrame()                { r.backend.EndComputeFrame() }
func (r *renderer) BeginFrame() error               { return r.backend.BeginFrame() }
func (r *renderer) EndFrame()                       { r.backend.EndFrame() }
func (r *renderer) Present()                        { r.backend.Present() }

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.pipelineCache)
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.register(p); err != nil {
			return err
		}
		r.pipelineCache[key] = p
	}
	return nil
}

// register creates the backend object for one pipeline. Caller holds r.mu.
func (r *renderer) register(p pipeline.Pipeline) error {
	switch p.Type() {
	case pipeline.PipelineTypeCompute:
		return r.backend.RegisterComputePipeline(p)
	case pipeline.PipelineTypeRender:
		return r.backend.RegisterRenderPipeline(p)
	}
	return fmt.Errorf("pipeline %q has unknown type %s", p.PipelineKey(), p.Type())
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	if len(writes) == 0 {
		return
	}
	r.backend.WriteBuffers(writes)
}

func (r *renderer) DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) {
	p := r.Pipeline(pipelineKey)
	if p == nil {
		logger.Warn("compute pipeline not found, skipping dispatch", "pipeline", pipelineKey, "provider", computeProvider.Label())
		return
	}
	r.backend.DispatchCompute(p, computeProvider, workGroupCount)
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	p := r.Pipeline(pipelineKey)
	if p == nil {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	return r.backend.DrawCall(p, meshProvider, instanceCount, bindGroups)
}
