package burnfade

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/burnfade/common"
	"github.com/Carmen-Shannon/burnfade/engine/model"
	"github.com/Carmen-Shannon/burnfade/engine/renderer/bind_group_provider"
	"github.com/google/uuid"
)

// ErrNoVertices is returned when an effect is created for a model without vertices.
var ErrNoVertices = errors.New("model has no vertices")

// Default compute bindings of burn_fade_compute.wgsl.
const (
	DefaultSourceBinding = 0
	DefaultOutputBinding = 1
	DefaultParamsBinding = 2
)

// WorkgroupSize is the compute workgroup width declared by burn_fade_compute.wgsl.
const WorkgroupSize = 64

// effect is the implementation of the Effect interface.
type effect struct {
	mu *sync.Mutex

	id    uuid.UUID
	model model.Model

	// computeProvider owns the source, output and params buffers of the compute pass.
	// The output buffer is shared with the model's mesh provider as its vertex buffer.
	computeProvider bind_group_provider.BindGroupProvider

	// original is the untouched copy of the model's vertices. The compute pass reads it
	// every dispatch so burning never accumulates.
	original []model.GPUVertex

	settings Settings
	timeline *Timeline

	sourceBinding, outputBinding, paramsBinding int

	stagedWriteData []bind_group_provider.BufferWrite

	// sourceStaged is set once the originals have been staged for upload.
	sourceStaged bool

	// paramsDirty is set when the settings changed since the last staged params upload.
	paramsDirty bool

	// dispatchPending is set whenever staged data requires the compute pass to run again.
	dispatchPending bool
}

// Effect applies the burn fade to one model. It keeps the model's original vertices, the
// current settings and an optional Timeline, and stages the GPU writes the compute pass
// needs each frame.
//
// Settings and progress may be changed from any goroutine; PrepareFrame and
// StagedWriteData are called from the tick goroutine.
type Effect interface {
	// ID returns the unique identifier of this effect.
	ID() uuid.UUID

	// Model returns the model the effect burns.
	Model() model.Model

	// ComputeBindGroupProvider returns the provider holding the compute pass buffers.
	ComputeBindGroupProvider() bind_group_provider.BindGroupProvider

	// VertexCount returns the number of vertices the compute pass processes.
	VertexCount() int

	// Settings returns a copy of the current settings.
	Settings() Settings

	// SetSettings replaces all settings and marks the params for upload.
	//
	// Parameters:
	//   - settings: the new settings
	SetSettings(settings Settings)

	// SetProgress sets the burn amount without touching the other settings. An attached
	// timeline is moved to the same position.
	//
	// Parameters:
	//   - progress: the new burn amount; not clamped
	SetProgress(progress float32)

	// Progress returns the current burn amount.
	Progress() float32

	// Timeline returns the attached timeline, or nil.
	Timeline() *Timeline

	// SetTimeline attaches a timeline that drives the burn amount while it plays.
	//
	// Parameters:
	//   - timeline: the timeline, or nil to detach
	SetTimeline(timeline *Timeline)

	// Bindings returns the compute binding indices of the source, output and params buffers.
	Bindings() (source, output, params int)

	// SetBindings sets the compute binding indices, normally resolved from the compute
	// shader's annotations. Staged uploads are re-staged against the new bindings.
	//
	// Parameters:
	//   - source: binding of the read-only source vertex buffer
	//   - output: binding of the read-write output vertex buffer
	//   - params: binding of the params uniform
	SetBindings(source, output, params int)

	// PrepareFrame advances the attached timeline and stages the originals upload the
	// first time and the params upload whenever they changed.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the previous frame in seconds
	PrepareFrame(deltaTime float32)

	// StagedWriteData drains and returns the buffer writes staged by PrepareFrame.
	//
	// Returns:
	//   - []bind_group_provider.BufferWrite: the pending writes
	StagedWriteData() []bind_group_provider.BufferWrite

	// WorkgroupCount returns the dispatch size covering every vertex.
	//
	// Parameters:
	//   - workgroupSize: the compute shader workgroup size; a zero x uses WorkgroupSize
	//
	// Returns:
	//   - [3]uint32: the number of workgroups in x, y and z
	WorkgroupCount(workgroupSize [3]uint32) [3]uint32

	// NeedsDispatch reports whether staged data changed since the last MarkDispatched.
	NeedsDispatch() bool

	// MarkDispatched records that the compute pass ran with the latest staged data.
	MarkDispatched()

	// Invalidate forces the originals and params to be staged again, e.g. after the GPU
	// buffers were recreated.
	Invalidate()

	// OriginalVertices returns a copy of the untouched vertices.
	OriginalVertices() []model.GPUVertex

	// BurnedVertices evaluates the current settings on the CPU.
	//
	// Parameters:
	//   - burner: the reference burner; nil evaluates on the calling goroutine
	//
	// Returns:
	//   - []model.GPUVertex: the burned vertices
	BurnedVertices(burner *ReferenceBurner) []model.GPUVertex

	// Release frees the compute buffers. The output buffer is owned here; the model's
	// mesh provider only borrows it.
	Release()
}

var _ Effect = &effect{}

// NewEffect creates an Effect for the given model with default settings, no timeline and
// the default compute bindings.
//
// Parameters:
//   - m: the model to burn
//   - options: functional options applied in order
//
// Returns:
//   - Effect: the effect
//   - error: ErrNoVertices if the model has no mesh or an empty mesh
func NewEffect(m model.Model, options ...EffectBuilderOption) (Effect, error) {
	if m == nil || m.Mesh() == nil || m.Mesh().VertexCount() == 0 {
		return nil, ErrNoVertices
	}
	e := &effect{
		mu:              &sync.Mutex{},
		id:              uuid.New(),
		model:           m,
		original:        m.Mesh().CloneVertices(),
		settings:        DefaultSettings(),
		sourceBinding:   DefaultSourceBinding,
		outputBinding:   DefaultOutputBinding,
		paramsBinding:   DefaultParamsBinding,
		paramsDirty:     true,
		stagedWriteData: make([]bind_group_provider.BufferWrite, 0, 2),
	}
	e.computeProvider = bind_group_provider.NewBindGroupProvider(m.Name() + "_burn_compute")
	for _, opt := range options {
		opt(e)
	}
	return e, nil
}

func (e *effect) ID() uuid.UUID {
	return e.id
}

func (e *effect) Model() model.Model {
	return e.model
}

func (e *effect) ComputeBindGroupProvider() bind_group_provider.BindGroupProvider {
	return e.computeProvider
}

func (e *effect) VertexCount() int {
	return len(e.original)
}

func (e *effect) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

func (e *effect) SetSettings(settings Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.settings == settings {
		return
	}
	e.settings = settings
	e.paramsDirty = true
	if e.timeline != nil {
		e.timeline.Seek(settings.BurnAmount)
	}
}

func (e *effect) SetProgress(progress float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setProgress(progress)
	if e.timeline != nil {
		e.timeline.Seek(progress)
	}
}

func (e *effect) setProgress(progress float32) {
	if e.settings.BurnAmount == progress {
		return
	}
	e.settings.BurnAmount = progress
	e.paramsDirty = true
}

func (e *effect) Progress() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings.BurnAmount
}

func (e *effect) Timeline() *Timeline {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeline
}

func (e *effect) SetTimeline(timeline *Timeline) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeline = timeline
}

func (e *effect) Bindings() (source, output, params int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sourceBinding, e.outputBinding, e.paramsBinding
}

func (e *effect) SetBindings(source, output, params int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sourceBinding, e.outputBinding, e.paramsBinding = source, output, params
	e.invalidate()
}

func (e *effect) PrepareFrame(deltaTime float32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.timeline != nil && e.timeline.Playing() {
		e.setProgress(e.timeline.Advance(deltaTime))
	}

	if !e.sourceStaged {
		e.stagedWriteData = append(e.stagedWriteData, bind_group_provider.BufferWrite{
			Provider: e.computeProvider,
			Binding:  e.sourceBinding,
			Data:     model.MarshalVertices(e.original),
		})
		e.sourceStaged = true
		e.dispatchPending = true
	}

	if e.paramsDirty {
		params := e.settings.Params()
		e.stagedWriteData = append(e.stagedWriteData, bind_group_provider.BufferWrite{
			Provider: e.computeProvider,
			Binding:  e.paramsBinding,
			Data:     params.Marshal(),
		})
		e.paramsDirty = false
		e.dispatchPending = true
	}
}

func (e *effect) StagedWriteData() []bind_group_provider.BufferWrite {
	e.mu.Lock()
	defer e.mu.Unlock()
	w := e.stagedWriteData
	e.stagedWriteData = make([]bind_group_provider.BufferWrite, 0, 2)
	return w
}

func (e *effect) WorkgroupCount(workgroupSize [3]uint32) [3]uint32 {
	size := workgroupSize[0]
	if size == 0 {
		size = WorkgroupSize
	}
	return [3]uint32{common.DivCeil(uint32(len(e.original)), size), 1, 1}
}

func (e *effect) NeedsDispatch() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatchPending
}

func (e *effect) MarkDispatched() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dispatchPending = false
}

func (e *effect) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.invalidate()
}

func (e *effect) invalidate() {
	e.stagedWriteData = e.stagedWriteData[:0]
	e.sourceStaged = false
	e.paramsDirty = true
}

func (e *effect) OriginalVertices() []model.GPUVertex {
	out := make([]model.GPUVertex, len(e.original))
	copy(out, e.original)
	return out
}

func (e *effect) BurnedVertices(burner *ReferenceBurner) []model.GPUVertex {
	params := e.Settings().Params()
	if burner == nil {
		out := make([]model.GPUVertex, len(e.original))
		BurnVertices(out, e.original, params)
		return out
	}
	return burner.Burn(e.original, params)
}

func (e *effect) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stagedWriteData = e.stagedWriteData[:0]
	if e.computeProvider != nil {
		e.computeProvider.Release()
	}
}
