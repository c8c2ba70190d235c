package scene

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/burnfade/engine/burnfade"
	"github.com/Carmen-Shannon/burnfade/engine/camera"
	"github.com/Carmen-Shannon/burnfade/engine/logger"
	"github.com/Carmen-Shannon/burnfade/engine/model"
	"github.com/Carmen-Shannon/burnfade/engine/renderer"
	"github.com/Carmen-Shannon/burnfade/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/burnfade/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/burnfade/engine/renderer/shader"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

var (
	// ErrNilEffect is returned by Add when no effect is given.
	ErrNilEffect = errors.New("scene: effect is nil")

	// ErrMissingShader is returned by Add when one of the three burn shaders is nil.
	ErrMissingShader = errors.New("scene: compute, vertex and fragment shaders are required")

	// ErrDuplicateEffect is returned by Add when the effect ID is already registered.
	ErrDuplicateEffect = errors.New("scene: effect already added")

	// ErrUnresolvedBinding is returned by Add when a shader declares a resource the scene
	// cannot map to a burn buffer or a provider.
	ErrUnresolvedBinding = errors.New("scene: unresolved shader binding")
)

// Scene manages a set of burn effects with a Camera and Renderer for rendering.
// Each effect owns a compute pass that rewrites its model's vertex colors and a render
// pass that draws the result. Scenes can be hot-swapped via the Active flag.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// SetRenderer replaces the scene's renderer.
	//
	// Parameters:
	//   - r: the new renderer
	SetRenderer(r renderer.Renderer)

	// Count returns the number of effects registered in the scene.
	//
	// Returns:
	//   - int: count of registered effects
	Count() int

	// Add registers a burn effect and initializes everything it needs on the GPU:
	//   - the model's index buffer;
	//   - the compute bind group (source vertices, output vertices, params). The output
	//     buffer is created with Storage|Vertex usage and shared as the model's vertex buffer;
	//   - the compute pipeline and the render pipeline.
	//
	// The compute bindings are discovered from the compute shader's @oxy:group annotations
	// and pushed into the effect with SetBindings.
	//
	// Parameters:
	//   - effect: the effect to register
	//   - computeShader: the burn compute shader
	//   - vertexShader: the vertex shader for the render pipeline
	//   - fragmentShader: the fragment shader for the render pipeline
	//   - pipelineOpts: optional pipeline builder options for the render pipeline (e.g., blending)
	//
	// Returns:
	//   - uuid.UUID: the effect ID used as the registry key
	//   - error: an error if a shader is missing, a binding cannot be resolved or GPU setup fails
	Add(effect burnfade.Effect, computeShader, vertexShader, fragmentShader shader.Shader, pipelineOpts ...pipeline.PipelineBuilderOption) (uuid.UUID, error)

	// Get retrieves a registered effect by ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the effect ID
	//
	// Returns:
	//   - burnfade.Effect: the effect or nil
	Get(id uuid.UUID) burnfade.Effect

	// Remove unregisters an effect, detaches the shared vertex buffer from its model and
	// releases the effect's GPU resources. Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the effect ID
	//
	// Returns:
	//   - bool: true if an effect was removed
	Remove(id uuid.UUID) bool

	// Effects returns the registered effects in the order they were added.
	//
	// Returns:
	//   - []burnfade.Effect: a copy of the effect list
	Effects() []burnfade.Effect

	// Clear unregisters all effects. Does not release GPU resources.
	Clear()

	// PrepareCompute updates the camera, advances every effect on the worker pool,
	// uploads staged buffer writes and dispatches the burn kernel for each effect whose
	// inputs changed. Must be called within a BeginComputeFrame/EndComputeFrame block.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	PrepareCompute(deltaTime float32)

	// DrawCalls draws each effect's compute-written vertex buffer with the camera bind group.
	// Must be called within a BeginFrame/EndFrame block on the renderer.
	//
	// Returns:
	//   - error: error if a draw call fails
	DrawCalls() error
}

// groupRole names the provider that fills one render bind group.
type groupRole shader.AnnotationArg

// effectEntry is the per-effect GPU wiring resolved once in Add.
type effectEntry struct {
	effect        burnfade.Effect
	computeKey    string
	renderKey     string
	workgroupSize [3]uint32
	renderGroups  []groupRole
	log           *log.Logger
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	effects map[uuid.UUID]*effectEntry
	order   []uuid.UUID

	cam           camera.Camera
	cameraGroup   int
	cameraBinding int
	r             renderer.Renderer

	// dispatchAlways re-runs the kernel every frame instead of only after input changes.
	dispatchAlways bool

	// Pre-allocated slices reused each frame to avoid per-frame allocations.
	writePool          []bind_group_provider.BufferWrite
	drawBindGroupsPool []bind_group_provider.BindGroupProvider

	// computePool runs the per-effect CPU prep of PrepareCompute. Workers persist
	// across frames.
	computePool    worker.DynamicWorkerPool
	computeWorkers int

	log *log.Logger
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera, renderer, and a vertex shader
// used to discover the camera's bind group layout. All three are required and NewScene
// panics if any of them is nil. The vertex shader's camera declaration (an @oxy:group whose
// type is camera, an @oxy:provider naming camera, or a variable whose name contains
// "camera") selects the group whose layout initializes the camera's BindGroupProvider.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - vertexShader: a vertex shader whose bind groups include the camera uniform layout (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, vertexShader shader.Shader, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}
	if vertexShader == nil {
		panic("scene: NewScene requires a non-nil vertex shader for camera BGP init")
	}

	s := &scene{
		mu:                 &sync.RWMutex{},
		name:               name,
		cam:                cam,
		r:                  r,
		effects:            make(map[uuid.UUID]*effectEntry),
		computeWorkers:     max(runtime.NumCPU()-1, 1),
		drawBindGroupsPool: make([]bind_group_provider.BindGroupProvider, 0, 2),
		log:                logger.With("scene", name),
	}

	for _, option := range options {
		option(s)
	}

	// Queue size of 256 leaves headroom well past any realistic effect count.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)

	s.cameraGroup, s.cameraBinding = findCameraBinding(vertexShader)
	if bgp := cam.BindGroupProvider(); bgp != nil {
		if err := r.InitBindGroup(bgp, vertexShader.BindGroupLayoutDescriptor(s.cameraGroup), nil, nil); err != nil {
			panic(fmt.Sprintf("scene: failed to init camera bind group: %v", err))
		}
	}

	s.log.Debug("scene created", "camera_group", s.cameraGroup, "camera_binding", s.cameraBinding, "workers", s.computeWorkers)
	return s
}

// findCameraBinding locates the camera uniform in a vertex shader.
//
// Parameters:
//   - vs: the vertex shader to scan
//
// Returns:
//   - int: the camera bind group index (0 when not found)
//   - int: the camera binding index within that group (0 when not found)
func findCameraBinding(vs shader.Shader) (group, binding int) {
	for _, decl := range vs.Declarations() {
		if decl.Group == nil || decl.Binding == nil {
			continue
		}
		switch decl.Type {
		case shader.AnnotationTypeBindingGroup:
			if decl.ElementType() == shader.AnnotationArgCamera {
				return *decl.Group, *decl.Binding
			}
		case shader.AnnotationTypeProvider:
			if len(decl.Args) > 0 && decl.Args[0] == shader.AnnotationArgCamera {
				return *decl.Group, *decl.Binding
			}
		}
	}
	group, binding, _ = vs.FindBinding(func(name string) bool {
		return strings.Contains(strings.ToLower(name), "camera")
	})
	return group, binding
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.log = logger.With("scene", name)
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) SetRenderer(r renderer.Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r = r
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *scene) Add(effect burnfade.Effect, computeShader, vertexShader, fragmentShader shader.Shader, pipelineOpts ...pipeline.PipelineBuilderOption) (uuid.UUID, error) {
	if effect == nil {
		return uuid.Nil, ErrNilEffect
	}
	if computeShader == nil || vertexShader == nil || fragmentShader == nil {
		return uuid.Nil, ErrMissingShader
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.r == nil {
		return uuid.Nil, fmt.Errorf("scene %q has no renderer attached", s.name)
	}

	id := effect.ID()
	if _, exists := s.effects[id]; exists {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrDuplicateEffect, id)
	}

	entry, err := s.initEffect(effect, computeShader, vertexShader, fragmentShader, pipelineOpts...)
	if err != nil {
		return uuid.Nil, fmt.Errorf("scene %q: add effect for model %q: %w", s.name, effect.Model().Name(), err)
	}

	s.effects[id] = entry
	s.order = append(s.order, id)
	entry.log.Info("effect added", "vertices", effect.VertexCount(), "compute", entry.computeKey, "render", entry.renderKey)

	return id, nil
}

// initEffect resolves bindings, creates GPU resources and registers pipelines for one effect.
// Caller must hold s.mu write lock.
func (s *scene) initEffect(effect burnfade.Effect, computeShader, vertexShader, fragmentShader shader.Shader, pipelineOpts ...pipeline.PipelineBuilderOption) (*effectEntry, error) {
	mdl := effect.Model()

	computeGroup, source, output, params, err := resolveComputeBindings(computeShader)
	if err != nil {
		return nil, err
	}
	effect.SetBindings(source, output, params)

	renderGroups, err := resolveRenderGroups(vertexShader, fragmentShader)
	if err != nil {
		return nil, err
	}

	// The mesh provider only gets an index buffer; its vertex buffer is the compute output.
	meshBGP := mdl.MeshProvider()
	if meshBGP.IndexBuffer() == nil {
		if err := s.r.InitMeshBuffers(meshBGP, nil, mdl.IndexData(), mdl.IndexCount()); err != nil {
			return nil, fmt.Errorf("init mesh buffers: %w", err)
		}
	}

	vertexBytes := uint64(effect.VertexCount()) * model.GPUVertexStride
	sizeOverrides := map[int]uint64{
		source: vertexBytes,
		output: vertexBytes,
	}
	usageOverrides := map[int]wgpu.BufferUsage{
		output: wgpu.BufferUsageVertex,
	}
	computeBGP := effect.ComputeBindGroupProvider()
	if err := s.r.InitBindGroup(computeBGP, computeShader.BindGroupLayoutDescriptor(computeGroup), usageOverrides, sizeOverrides); err != nil {
		return nil, fmt.Errorf("init compute bind group: %w", err)
	}
	meshBGP.SetSharedVertexBuffer(computeBGP.Buffer(output))

	cp := pipeline.NewPipeline(computeShader.Key(), pipeline.PipelineTypeCompute, pipeline.WithComputeShader(computeShader))
	renderOpts := append([]pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(vertexShader),
		pipeline.WithFragmentShader(fragmentShader),
	}, pipelineOpts...)
	renderKey := vertexShader.Key() + "+" + fragmentShader.Key()
	rp := pipeline.NewPipeline(renderKey, pipeline.PipelineTypeRender, renderOpts...)
	if err := s.r.RegisterPipelines(cp, rp); err != nil {
		return nil, fmt.Errorf("register pipelines: %w", err)
	}

	return &effectEntry{
		effect:        effect,
		computeKey:    cp.PipelineKey(),
		renderKey:     renderKey,
		workgroupSize: computeShader.WorkgroupSize(),
		renderGroups:  renderGroups,
		log:           s.log.With("effect", effect.ID().String()),
	}, nil
}

// resolveComputeBindings maps the compute shader's group annotations onto the burn buffers.
// A read-only vertex_record array is the source, a read-write one is the output and the
// burn_fade_params uniform holds the parameters.
//
// Parameters:
//   - cs: the burn compute shader
//
// Returns:
//   - group: the bind group index holding the burn resources
//   - source, output, params: the binding indices
//   - err: ErrUnresolvedBinding (wrapped) when a resource is missing or declared twice
func resolveComputeBindings(cs shader.Shader) (group, source, output, params int, err error) {
	source, output, params, group = -1, -1, -1, -1
	for _, decl := range cs.Declarations() {
		if decl.Type != shader.AnnotationTypeBindingGroup || decl.Group == nil || decl.Binding == nil {
			continue
		}
		var slot *int
		switch decl.ElementType() {
		case shader.AnnotationArgVertexRecord:
			switch decl.AddressSpace() {
			case shader.AnnotationArgStorageTypeRead:
				slot = &source
			case shader.AnnotationArgStorageTypeReadWrite:
				slot = &output
			}
		case shader.AnnotationArgBurnFadeParams:
			slot = &params
		}
		if slot == nil {
			return 0, 0, 0, 0, fmt.Errorf("%w: compute line %d declares %v", ErrUnresolvedBinding, decl.Line, decl.Args)
		}
		if *slot >= 0 {
			return 0, 0, 0, 0, fmt.Errorf("%w: compute line %d redeclares %s", ErrUnresolvedBinding, decl.Line, decl.ElementType())
		}
		if group >= 0 && *decl.Group != group {
			return 0, 0, 0, 0, fmt.Errorf("%w: burn resources span groups %d and %d", ErrUnresolvedBinding, group, *decl.Group)
		}
		group = *decl.Group
		*slot = *decl.Binding
	}

	switch {
	case source < 0:
		err = fmt.Errorf("%w: no read-only vertex_record source buffer", ErrUnresolvedBinding)
	case output < 0:
		err = fmt.Errorf("%w: no read-write vertex_record output buffer", ErrUnresolvedBinding)
	case params < 0:
		err = fmt.Errorf("%w: no burn_fade_params uniform", ErrUnresolvedBinding)
	}
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return group, source, output, params, nil
}

// resolveRenderGroups lists which provider fills each render bind group, by group index.
// Only the camera can be bound during the draw; any other declaration is rejected.
//
// Parameters:
//   - shaders: the render stage shaders
//
// Returns:
//   - []groupRole: the role of every group from 0 to the highest declared group
//   - error: ErrUnresolvedBinding (wrapped) for unknown resources or gaps between groups
func resolveRenderGroups(shaders ...shader.Shader) ([]groupRole, error) {
	roles := make(map[int]groupRole)
	maxGroup := -1
	for _, sh := range shaders {
		for _, decl := range sh.Declarations() {
			if decl.Group == nil {
				continue
			}
			var role groupRole
			switch decl.Type {
			case shader.AnnotationTypeBindingGroup:
				role = groupRole(decl.ElementType())
			case shader.AnnotationTypeProvider:
				if len(decl.Args) > 0 {
					role = groupRole(decl.Args[0])
				}
			}
			if role != groupRole(shader.AnnotationArgCamera) {
				return nil, fmt.Errorf("%w: %s line %d declares %q, only camera can be bound for drawing", ErrUnresolvedBinding, sh.Key(), decl.Line, role)
			}
			g := *decl.Group
			roles[g] = role
			maxGroup = max(maxGroup, g)
		}
	}

	out := make([]groupRole, maxGroup+1)
	for g := range out {
		role, ok := roles[g]
		if !ok {
			return nil, fmt.Errorf("%w: render group %d has no declaration", ErrUnresolvedBinding, g)
		}
		out[g] = role
	}
	return out, nil
}

func (s *scene) Get(id uuid.UUID) burnfade.Effect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.effects[id]; ok {
		return e.effect
	}
	return nil
}

func (s *scene) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.effects[id]
	if !exists {
		return false
	}

	delete(s.effects, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	if mp := entry.effect.Model().MeshProvider(); mp != nil {
		mp.SetSharedVertexBuffer(nil)
	}
	entry.effect.Release()
	entry.log.Info("effect removed")
	return true
}

func (s *scene) Effects() []burnfade.Effect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]burnfade.Effect, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.effects[id].effect)
	}
	return out
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effects = make(map[uuid.UUID]*effectEntry)
	s.order = nil
}

func (s *scene) PrepareCompute(deltaTime float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.r == nil {
		return
	}

	allWrites := s.writePool[:0]

	if s.cam != nil {
		s.cam.Update()
		if s.cam.BindGroupProvider() != nil {
			allWrites = append(allWrites, s.cam.StageUniform(s.cameraBinding))
		}
	}

	// Phase 1: parallel CPU prep. A WaitGroup is the per-frame barrier since pool.Wait()
	// blocks until workers idle-exit.
	var wg sync.WaitGroup
	for i, id := range s.order {
		entry := s.effects[id]
		wg.Add(1)
		s.computePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				entry.effect.PrepareFrame(deltaTime)
				return nil, nil
			},
		})
	}
	wg.Wait()

	// Phase 2: one coalesced upload for the camera and every effect.
	for _, id := range s.order {
		allWrites = append(allWrites, s.effects[id].effect.StagedWriteData()...)
	}
	s.writePool = allWrites
	if len(allWrites) > 0 {
		s.r.WriteBuffers(allWrites)
	}

	// Phase 3: dispatch only the effects whose inputs changed. The output buffer keeps
	// the previous result otherwise.
	for _, id := range s.order {
		entry := s.effects[id]
		if !s.dispatchAlways && !entry.effect.NeedsDispatch() {
			continue
		}
		s.r.DispatchCompute(entry.computeKey, entry.effect.ComputeBindGroupProvider(), entry.effect.WorkgroupCount(entry.workgroupSize))
		entry.effect.MarkDispatched()
	}
}

func (s *scene) DrawCalls() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.r == nil {
		return fmt.Errorf("scene %q has no renderer attached", s.name)
	}

	for _, id := range s.order {
		entry := s.effects[id]
		meshProvider := entry.effect.Model().MeshProvider()
		if meshProvider == nil || meshProvider.IndexCount() == 0 {
			continue
		}

		bindGroups := s.drawBindGroupsPool[:0]
		for _, role := range entry.renderGroups {
			// resolveRenderGroups only admits the camera role
			if role == groupRole(shader.AnnotationArgCamera) && s.cam != nil {
				bindGroups = append(bindGroups, s.cam.BindGroupProvider())
			}
		}
		s.drawBindGroupsPool = bindGroups
		if len(bindGroups) != len(entry.renderGroups) {
			entry.log.Warn("skipping draw, camera is not attached")
			continue
		}

		if err := s.r.DrawCall(entry.renderKey, meshProvider, 1, bindGroups); err != nil {
			return fmt.Errorf("draw call failed for effect %s in scene %q: %w", id, s.name, err)
		}
	}

	return nil
}
