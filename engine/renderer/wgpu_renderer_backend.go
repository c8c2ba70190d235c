package renderer

import (
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/burnfade/engine/logger"
	"github.com/Carmen-Shannon/burnfade/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/burnfade/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/burnfade/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const depthFormat = wgpu.TextureFormatDepth24Plus

var (
	errNoFrame        = errors.New("no render frame in progress")
	errFrameInFlight  = errors.New("previous frame surface not yet presented")
	errNotRenderStage = errors.New("pipeline has no render stage")
)

type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount
	clearColor    wgpu.Color

	// size-dependent attachments, rebuilt by ConfigureSurface
	msaaTexture  *wgpu.Texture
	msaaView     *wgpu.TextureView
	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	// render frame state between BeginFrame and Present
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// compute frame state between BeginComputeFrame and EndComputeFrame
	computeEncoder *wgpu.CommandEncoder
	dispatchCount  int
}

type wgpuRendererBackend interface {
	// ConfigureSurface (re)configures the swapchain and rebuilds the depth and MSAA
	// attachments for the given size.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode records the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// BeginComputeFrame opens the command encoder all of a frame's dispatches are recorded into.
	//
	// Returns:
	//   - error: an error if the command encoder could not be created
	BeginComputeFrame() error

	// EndComputeFrame submits the recorded dispatches in one command buffer. A frame with no
	// dispatches is dropped without a submission.
	EndComputeFrame()

	// DispatchCompute records one compute pass with the provider's bind group at group 0.
	// It is a no-op outside a compute frame.
	//
	// Parameters:
	//   - p: a registered compute pipeline
	//   - computeProvider: the provider holding the compute bind group
	//   - workGroupCount: workgroups in x, y and z
	DispatchCompute(p pipeline.Pipeline, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32)

	// RegisterRenderPipeline creates the shader modules, layout and GPU render pipeline for p
	// and stores the result on it.
	//
	// Returns:
	//   - error: an error if p is invalid or any GPU object could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// RegisterComputePipeline creates the shader module, layout and GPU compute pipeline for p
	// and stores the result on it.
	//
	// Returns:
	//   - error: an error if p is invalid or any GPU object could not be created
	RegisterComputePipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads vertex and index data into new buffers on the provider.
	// Empty vertex data leaves the vertex buffer unset so it can be shared with a compute output.
	//
	// Returns:
	//   - error: an error if a buffer could not be created
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates any missing buffers described by the layout and builds the bind
	// group on the provider.
	//
	// Parameters:
	//   - provider: receives the layout, buffers and bind group
	//   - descriptor: the layout entries; every entry must be a buffer binding
	//   - bufferUsageOverrides: extra usage flags per binding
	//   - bufferSizeOverrides: buffer sizes per binding in place of MinBindingSize
	//
	// Returns:
	//   - error: an error for a non-buffer binding or a failed GPU allocation
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues the writes in order. Writes to missing buffers or past a buffer's
	// end are skipped.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next swapchain texture and opens the main render pass.
	//
	// Returns:
	//   - error: an error if the surface texture or encoder could not be acquired
	BeginFrame() error

	// DrawCall records an indexed draw of the mesh provider's buffers.
	//
	// Parameters:
	//   - p: a registered render pipeline
	//   - meshProvider: vertex buffer, index buffer and index count
	//   - instanceCount: instances to draw
	//   - bindGroups: bound at groups 0..n-1 in order
	//
	// Returns:
	//   - error: an error outside a frame or for a pipeline without a render stage
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame closes the render pass and submits it. Present shows the result.
	EndFrame()

	// Present shows the submitted frame and releases the swapchain texture.
	Present()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, clearColor wgpu.Color) wgpuRendererBackend {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: PresentModeUncapped.surfaceMode(),
		sampleCount: sampleCount,
		clearColor:  clearColor,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(fmt.Sprintf("requesting gpu adapter: %v", err))
	}
	b.adapter = adapter

	logger.Info("gpu adapter selected", "fallback", forceFallbackAdapter, "msaa", uint32(sampleCount))

	// one compute group of two storage buffers and a uniform, plus the camera group, fit the
	// default limits
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "Burnfade Device",
		RequiredLimits: &wgpu.RequiredLimits{Limits: wgpu.DefaultLimits()},
	})
	if err != nil {
		panic(fmt.Sprintf("requesting gpu device: %v", err))
	}
	b.device = device
	b.queue = device.GetQueue()

	return b
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseAttachments()

	var err error
	if b.sampleCount > 1 {
		b.msaaTexture, b.msaaView, err = b.createAttachment("MSAA Texture", width, height, b.surfaceFormat)
		if err != nil {
			panic(err)
		}
	}
	// the depth attachment's sample count has to match the color attachment
	b.depthTexture, b.depthView, err = b.createAttachment("Depth Texture", width, height, depthFormat)
	if err != nil {
		panic(err)
	}
	logger.Debug("surface configured", "width", width, "height", height, "msaa", uint32(b.sampleCount))
}

// createAttachment allocates a single-mip render attachment at the backend's sample count.
func (b *wgpuRendererBackendImpl) createAttachment(label string, width, height int, format wgpu.TextureFormat) (*wgpu.Texture, *wgpu.TextureView, error) {
	texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   uint32(b.sampleCount),
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", label, err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, nil, fmt.Errorf("creating %s view: %w", label, err)
	}
	return texture, view, nil
}

func (b *wgpuRendererBackendImpl) releaseAttachments() {
	for _, v := range []*wgpu.TextureView{b.msaaView, b.depthView} {
		if v != nil {
			v.Release()
		}
	}
	for _, t := range []*wgpu.Texture{b.msaaTexture, b.depthTexture} {
		if t != nil {
			t.Release()
		}
	}
	b.msaaTexture, b.msaaView, b.depthTexture, b.depthView = nil, nil, nil, nil
}

// renderPassDescriptor targets the swapchain view, through the MSAA attachment when
// multisampling is on. Depth is cleared each frame and never stored.
func (b *wgpuRendererBackendImpl) renderPassDescriptor(swapchain *wgpu.TextureView) *wgpu.RenderPassDescriptor {
	color := wgpu.RenderPassColorAttachment{
		View:       swapchain,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: b.clearColor,
	}
	if b.msaaView != nil {
		color.View = b.msaaView
		color.ResolveTarget = swapchain
		color.StoreOp = wgpu.StoreOpDiscard
	}
	return &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode.surfaceMode()
}

func (b *wgpuRendererBackendImpl) BeginComputeFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("creating compute encoder: %w", err)
	}
	b.computeEncoder = encoder
	b.dispatchCount = 0
	return nil
}

func (b *wgpuRendererBackendImpl) EndComputeFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	encoder := b.computeEncoder
	if encoder == nil {
		return
	}
	b.computeEncoder = nil
	defer encoder.Release()

	if b.dispatchCount == 0 {
		return
	}
	commands, err := encoder.Finish(nil)
	if err != nil {
		logger.Error("failed to finish compute frame", "dispatches", b.dispatchCount, "err", err)
		return
	}
	b.queue.Submit(commands)
	commands.Release()
}

func (b *wgpuRendererBackendImpl) DispatchCompute(p pipeline.Pipeline, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeEncoder == nil {
		return
	}
	computePipeline, ok := p.Pipeline().(*wgpu.ComputePipeline)
	if !ok || computePipeline == nil {
		logger.Warn("pipeline has no compute stage", "pipeline", p.PipelineKey())
		return
	}
	bindGroup := computeProvider.BindGroup()
	if bindGroup == nil {
		logger.Warn("compute provider has no bind group", "provider", computeProvider.Label())
		return
	}

	pass := b.computeEncoder.BeginComputePass(nil)
	pass.SetPipeline(computePipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(workGroupCount[0], workGroupCount[1], workGroupCount[2])
	pass.End()
	b.dispatchCount++
}

// createShaderModule compiles a shader's preprocessed WGSL source.
func (b *wgpuRendererBackendImpl) createShaderModule(s shader.Shader) (*wgpu.ShaderModule, error) {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          s.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: s.Source()},
	})
	if err != nil {
		return nil, fmt.Errorf("compiling shader %s: %w", s.Key(), err)
	}
	return module, nil
}

// createPipelineLayout builds one bind group layout per group index. Groups missing from
// the map leave a nil slot.
func (b *wgpuRendererBackendImpl) createPipelineLayout(label string, groups map[int]wgpu.BindGroupLayoutDescriptor) (*wgpu.PipelineLayout, int, error) {
	layouts := make([]*wgpu.BindGroupLayout, groupCount(groups))
	for g, desc := range groups {
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return nil, 0, fmt.Errorf("creating bind group layout for group %d: %w", g, err)
		}
		layouts[g] = layout
	}
	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("creating pipeline layout %s: %w", label, err)
	}
	return pipelineLayout, len(layouts), nil
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("failed to create render pipeline: %w", err)
	}

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)

	vs, err := b.createShaderModule(vertexShader)
	if err != nil {
		return err
	}
	fs, err := b.createShaderModule(fragmentShader)
	if err != nil {
		return err
	}

	groups := mergeBindGroupLayouts(vertexShader.BindGroupLayoutDescriptors(), fragmentShader.BindGroupLayoutDescriptors())
	layout, groupTotal, err := b.createPipelineLayout(p.PipelineKey(), groups)
	if err != nil {
		return err
	}

	state := p.RenderState()
	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexShader.VertexBufferLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{state.ColorTarget(b.surfaceFormat)},
		},
		Primitive: state.Primitive(),
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: state.DepthStencil(depthFormat),
	})
	if err != nil {
		return fmt.Errorf("creating render pipeline %s: %w", p.PipelineKey(), err)
	}

	p.SetRenderPipeline(created)
	logger.Debug("render pipeline registered", "pipeline", p.PipelineKey(), "groups", groupTotal, "vertex_layouts", len(vertexShader.VertexBufferLayouts()))
	return nil
}

func (b *wgpuRendererBackendImpl) RegisterComputePipeline(p pipeline.Pipeline) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("failed to create compute pipeline: %w", err)
	}

	computeShader := p.Shader(shader.ShaderTypeCompute)
	module, err := b.createShaderModule(computeShader)
	if err != nil {
		return err
	}
	layout, _, err := b.createPipelineLayout(p.PipelineKey(), computeShader.BindGroupLayoutDescriptors())
	if err != nil {
		return err
	}

	created, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  p.PipelineKey() + " Compute Pipeline",
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: computeShader.EntryPoint(),
		},
	})
	if err != nil {
		return fmt.Errorf("creating compute pipeline %s: %w", p.PipelineKey(), err)
	}

	p.SetComputePipeline(created)
	logger.Debug("compute pipeline registered", "pipeline", p.PipelineKey(), "entry", computeShader.EntryPoint(), "workgroup", computeShader.WorkgroupSize())
	return nil
}

// createInitializedBuffer allocates a buffer and queues its initial contents.
func (b *wgpuRendererBackendImpl) createInitializedBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", label, err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.createInitializedBuffer(provider.Label()+" Vertex Buffer", wgpu.BufferUsageVertex, vertexData)
		if err != nil {
			return err
		}
		provider.SetVertexBuffer(buf)
	}
	if len(indexData) > 0 {
		buf, err := b.createInitializedBuffer(provider.Label()+" Index Buffer", wgpu.BufferUsageIndex, indexData)
		if err != nil {
			return err
		}
		provider.SetIndexBuffer(buf)
	}
	provider.SetIndexCount(indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		if layout, err = b.device.CreateBindGroupLayout(&descriptor); err != nil {
			return fmt.Errorf("creating bind group layout for %s: %w", provider.Label(), err)
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(descriptor.Entries))
	for _, entry := range descriptor.Entries {
		binding := int(entry.Binding)
		usage, err := bufferUsage(entry)
		if err != nil {
			return fmt.Errorf("%s: %w", provider.Label(), err)
		}

		buf := provider.Buffer(binding)
		if buf == nil {
			size := entry.Buffer.MinBindingSize
			if override, ok := bufferSizeOverrides[binding]; ok {
				size = override
			}
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
				Size:  size,
				Usage: usage | bufferUsageOverrides[binding],
			})
			if err != nil {
				return fmt.Errorf("creating buffer %d for %s: %w", binding, provider.Label(), err)
			}
			provider.SetBuffer(binding, buf)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Buffer:  buf,
			Size:    wgpu.WholeSize,
		})
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("creating bind group for %s: %w", provider.Label(), err)
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

// bufferUsage derives the usage a buffer needs for its binding type. Every buffer is also a
// copy destination so staged writes can reach it.
func bufferUsage(entry wgpu.BindGroupLayoutEntry) (wgpu.BufferUsage, error) {
	switch entry.Buffer.Type {
	case wgpu.BufferBindingTypeUniform:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst, nil
	case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
		return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst, nil
	default:
		return 0, fmt.Errorf("binding %d is not a buffer binding", entry.Binding)
	}
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		if !w.Fits(buf.GetSize()) {
			logger.Error("dropping out of bounds buffer write",
				"binding", w.Binding, "end", w.End(), "size", buf.GetSize())
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// wgpu-native rejects acquiring a second surface image before the first is presented
	if b.frameSurface != nil {
		return errFrameInFlight
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor(view))
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errNoFrame
	}
	renderPipeline, ok := p.Pipeline().(*wgpu.RenderPipeline)
	if !ok || renderPipeline == nil {
		return fmt.Errorf("%s: %w", p.PipelineKey(), errNotRenderStage)
	}

	if err := meshProvider.Drawable(); err != nil {
		return err
	}
	for i, bg := range bindGroups {
		if bg.BindGroup() == nil {
			return fmt.Errorf("%s: group %d provider %q has no bind group", p.PipelineKey(), i, bg.Label())
		}
	}

	b.framePass.SetPipeline(renderPipeline)
	for i, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	b.framePass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(meshProvider.IndexCount()), instanceCount, 0, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass = nil

	encoder := b.frameEncoder
	b.frameEncoder = nil
	defer encoder.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		logger.Error("failed to finish render frame", "err", err)
		b.releaseFrameSurface()
		return
	}
	b.queue.Submit(commands)
	commands.Release()
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameSurface()
}

func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

// groupCount returns one past the highest group index, or 0 for no groups.
func groupCount(groups map[int]wgpu.BindGroupLayoutDescriptor) int {
	n := 0
	for g := range groups {
		n = max(n, g+1)
	}
	return n
}

// mergeBindGroupLayouts combines the vertex and fragment stage layouts of a render pipeline.
// Entries sharing a binding in the same group get the union of their visibilities; the rest
// are kept as declared. Merged entries are sorted by binding.
//
// Parameters:
//   - vertexLayouts: layouts reflected from the vertex shader, keyed by group
//   - fragmentLayouts: layouts reflected from the fragment shader, keyed by group
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged layouts keyed by group
func mergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := maps.Clone(vertexLayouts)
	if merged == nil {
		merged = make(map[int]wgpu.BindGroupLayoutDescriptor, len(fragmentLayouts))
	}

	for g, fDesc := range fragmentLayouts {
		vDesc, shared := merged[g]
		if !shared {
			merged[g] = fDesc
			continue
		}

		byBinding := make(map[uint32]wgpu.BindGroupLayoutEntry, len(vDesc.Entries)+len(fDesc.Entries))
		for _, e := range vDesc.Entries {
			byBinding[e.Binding] = e
		}
		for _, e := range fDesc.Entries {
			if existing, ok := byBinding[e.Binding]; ok {
				existing.Visibility |= e.Visibility
				e = existing
			}
			byBinding[e.Binding] = e
		}

		entries := slices.SortedFunc(maps.Values(byBinding), func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		merged[g] = wgpu.BindGroupLayoutDescriptor{Label: vDesc.Label, Entries: entries}
	}
	return merged
}
