package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController places the camera on a sphere around a target. The eye position is
// derived from the radius, the azimuth around the Y axis and the elevation above the
// horizontal plane.
type CameraController interface {
	// Position returns the world-space eye position.
	Position() mgl32.Vec3

	// Target returns the point the camera looks at.
	Target() mgl32.Vec3

	// SetTarget moves the orbit center.
	SetTarget(target mgl32.Vec3)

	// Zoom moves the eye toward the target by delta * zoom speed, clamped to the radius bounds.
	//
	// Parameters:
	//   - delta: scroll delta, positive zooms in
	Zoom(delta float32)

	// Orbit rotates the eye by the given angles, clamping the elevation.
	//
	// Parameters:
	//   - deltaAzimuth: change of the horizontal angle in radians
	//   - deltaElevation: change of the vertical angle in radians
	Orbit(deltaAzimuth, deltaElevation float32)

	// BeginDrag records the cursor position that starts a drag orbit.
	BeginDrag(x, y int32)

	// Drag orbits by the cursor movement since the previous BeginDrag or Drag call, scaled
	// by the mouse sensitivity. Calls without an active drag are ignored.
	Drag(x, y int32)

	// EndDrag ends the drag started by BeginDrag.
	EndDrag()

	// Dragging reports whether a drag is in progress.
	Dragging() bool

	// OrbitStep rotates by whole orbit speed steps, for key input. Positive horizontal steps
	// swing the eye right and positive vertical steps raise it.
	OrbitStep(horizontal, vertical int)

	Radius() float32
	SetRadius(radius float32)
	Azimuth() float32
	Elevation() float32
}
