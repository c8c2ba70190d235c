package camera

import (
	"github.com/Carmen-Shannon/burnfade/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraBuilderOption is a functional option for configuring a Camera during construction.
type CameraBuilderOption func(*cameraImpl)

// WithUp sets the camera's up vector. Defaults to +Y.
func WithUp(up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithProjection replaces the whole frustum.
func WithProjection(p Projection) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection = p
	}
}

// WithFov sets the vertical field of view in radians.
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection.Fov = fov
	}
}

// WithAspect sets the aspect ratio (width / height).
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection.Aspect = aspect
	}
}

// WithClipPlanes sets the near and far clip distances. Scale them with the model so depth
// precision holds at the framed distance.
//
// Parameters:
//   - near: the near clip distance
//   - far: the far clip distance
//
// Returns:
//   - CameraBuilderOption: a function that sets both clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection.Near = near
		c.projection.Far = far
	}
}

// WithController sets the controller that supplies the eye and target.
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}

// WithBindGroupProvider replaces the default uniform buffer provider.
//
// Parameters:
//   - provider: the provider owning the camera uniform buffer
//
// Returns:
//   - CameraBuilderOption: a function that sets the provider
func WithBindGroupProvider(provider bind_group_provider.BindGroupProvider) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.provider = provider
	}
}
