package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption configures the controller returned by NewOrbitController.
// Placements outside the bounds are clamped after all options run.
type CameraControllerOption func(*orbitController)

// WithRadius sets the starting distance from the target.
func WithRadius(radius float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.place.radius = radius
	}
}

// WithAzimuth sets the starting angle around +Y in radians. Zero places the eye on +Z.
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.place.azimuth = azimuth
	}
}

// WithElevation sets the starting angle above the horizontal plane in radians.
func WithElevation(elevation float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.place.elevation = elevation
	}
}

// WithTarget sets the orbit center.
func WithTarget(target mgl32.Vec3) CameraControllerOption {
	return func(oc *orbitController) {
		oc.target = target
	}
}

// WithRadiusBounds sets the zoom limits.
//
// Parameters:
//   - minRadius: closest allowed distance to the target
//   - maxRadius: farthest allowed distance to the target
//
// Returns:
//   - CameraControllerOption: functional option to set the radius bounds
func WithRadiusBounds(minRadius, maxRadius float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.limits.minRadius = minRadius
		oc.limits.maxRadius = maxRadius
	}
}

// WithElevationBounds sets the vertical angle limits in radians.
func WithElevationBounds(minElevation, maxElevation float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.limits.minElevation = minElevation
		oc.limits.maxElevation = maxElevation
	}
}

// WithOrbitSpeed sets the angle in radians of one OrbitStep step.
func WithOrbitSpeed(speed float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.orbitSpeed = speed
	}
}

// WithMouseSensitivity sets the radians of orbit per pixel of drag.
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the radius change per unit of scroll delta.
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.zoomSpeed = speed
	}
}
