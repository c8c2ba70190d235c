package camera

import (
	"errors"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/burnfade/engine/logger"
	"github.com/Carmen-Shannon/burnfade/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidProjection is returned when a projection has a non-positive aspect, a field of
// view outside (0, pi) or clip planes that do not satisfy 0 < near < far.
var ErrInvalidProjection = errors.New("invalid camera projection")

// cameraCount numbers cameras for their bind group provider labels.
var cameraCount atomic.Uint64

// glToWebGPUDepth remaps OpenGL clip-space depth [-1, 1] to the WebGPU range [0, 1].
var glToWebGPUDepth = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Projection is a perspective frustum. Fov is the vertical field of view in radians and
// Aspect is width over height.
type Projection struct {
	Fov    float32
	Aspect float32
	Near   float32
	Far    float32
}

// DefaultProjection is a 45 degree square frustum from 0.01 to 100.
func DefaultProjection() Projection {
	return Projection{
		Fov:    45.0 * (math.Pi / 180.0),
		Aspect: 1,
		Near:   0.01,
		Far:    100,
	}
}

// Validate reports ErrInvalidProjection for a frustum that cannot be inverted.
func (p Projection) Validate() error {
	if p.Fov <= 0 || p.Fov >= math.Pi || p.Aspect <= 0 || p.Near <= 0 || p.Far <= p.Near {
		return ErrInvalidProjection
	}
	return nil
}

// Matrix returns the view-to-clip matrix with WebGPU depth.
func (p Projection) Matrix() mgl32.Mat4 {
	return glToWebGPUDepth.Mul4(mgl32.Perspective(p.Fov, p.Aspect, p.Near, p.Far))
}

// Camera is a perspective camera whose eye and target come from a CameraController.
// Matrices are column-major mgl32 values and only change on Update, Resize or
// SetProjection, so one frame always stages a consistent uniform.
type Camera interface {
	Projection() Projection

	// SetProjection replaces the frustum.
	//
	// Parameters:
	//   - p: the new projection
	//
	// Returns:
	//   - error: ErrInvalidProjection, in which case the camera is unchanged
	SetProjection(p Projection) error

	// Resize sets the aspect ratio for a framebuffer size. Zero sizes, such as a minimized
	// window, are ignored.
	Resize(width, height int)

	// ViewProjectionMatrix returns projection * view as of the last recompute.
	ViewProjectionMatrix() mgl32.Mat4

	// Position returns the eye position used by the last recompute.
	Position() mgl32.Vec3

	// Controller returns the controller supplying the eye and target, or nil.
	Controller() CameraController

	// BindGroupProvider owns the camera uniform buffer.
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// Update pulls the eye and target from the controller. Without a controller the
	// matrices stay identity.
	Update()

	// Uniform returns the GPU uniform for the current matrices.
	Uniform() GPUCameraUniform

	// StageUniform returns a buffer write that uploads the current uniform.
	//
	// Parameters:
	//   - binding: the binding of the camera uniform in the camera bind group
	//
	// Returns:
	//   - bind_group_provider.BufferWrite: the write targeting the camera's provider
	StageUniform(binding int) bind_group_provider.BufferWrite
}

type cameraImpl struct {
	mu sync.Mutex

	up         mgl32.Vec3
	projection Projection

	position mgl32.Vec3
	viewProj mgl32.Mat4

	controller CameraController
	provider   bind_group_provider.BindGroupProvider
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera with DefaultProjection. The matrices are computed immediately
// when a controller is supplied. An invalid projection from the options is replaced by
// the default.
//
// Parameters:
//   - options: functional options applied in order
//
// Returns:
//   - Camera: the camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		up:         mgl32.Vec3{0, 1, 0},
		projection: DefaultProjection(),
		viewProj:   mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	if err := c.projection.Validate(); err != nil {
		logger.Warn("using default camera projection", "err", err, "fov", c.projection.Fov, "aspect", c.projection.Aspect, "near", c.projection.Near, "far", c.projection.Far)
		c.projection = DefaultProjection()
	}
	if c.provider == nil {
		c.provider = bind_group_provider.NewBindGroupProvider("camera_" + strconv.FormatUint(cameraCount.Add(1)-1, 10))
	}
	c.recompute()
	return c
}

func (c *cameraImpl) Projection() Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) SetProjection(p Projection) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection = p
	c.recompute()
	return nil
}

func (c *cameraImpl) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection.Aspect = float32(width) / float32(height)
	c.recompute()
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProj
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return c.provider
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recompute()
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		ViewProj:       c.viewProj,
		CameraPosition: c.position,
	}
}

func (c *cameraImpl) StageUniform(binding int) bind_group_provider.BufferWrite {
	u := c.Uniform()
	return bind_group_provider.BufferWrite{
		Provider: c.provider,
		Binding:  binding,
		Data:     u.Marshal(),
	}
}

// recompute rebuilds the view-projection matrix from the controller. Caller holds c.mu.
func (c *cameraImpl) recompute() {
	if c.controller == nil {
		return
	}
	c.position = c.controller.Position()
	view := mgl32.LookAtV(c.position, c.controller.Target(), c.up)
	c.viewProj = c.projection.Matrix().Mul4(view)
}
