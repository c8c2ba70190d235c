package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/burnfade/common"
	"github.com/go-gl/mathgl/mgl32"
)

// spherical is an eye placement relative to a target.
type spherical struct {
	radius float32
	// azimuth is the angle around +Y; zero puts the eye on +Z looking toward -Z
	azimuth float32
	// elevation is the angle above the XZ plane
	elevation float32
}

// offset converts the placement to a cartesian offset from the target.
func (s spherical) offset() mgl32.Vec3 {
	sinAz, cosAz := math.Sincos(float64(s.azimuth))
	sinEl, cosEl := math.Sincos(float64(s.elevation))
	return mgl32.Vec3{
		s.radius * float32(cosEl*sinAz),
		s.radius * float32(sinEl),
		s.radius * float32(cosEl*cosAz),
	}
}

// orbitLimits bound the placement an orbitController can reach.
type orbitLimits struct {
	minRadius, maxRadius       float32
	minElevation, maxElevation float32
}

func (l orbitLimits) apply(s spherical) spherical {
	s.radius = common.Clamp(s.radius, l.minRadius, l.maxRadius)
	s.elevation = common.Clamp(s.elevation, l.minElevation, l.maxElevation)
	s.azimuth = float32(math.Mod(float64(s.azimuth), 2*math.Pi))
	return s
}

// orbitController keeps the eye on a sphere around target. The eye is recomputed on every
// change so Position never does trigonometry.
type orbitController struct {
	mu sync.Mutex

	target mgl32.Vec3
	place  spherical
	limits orbitLimits
	eye    mgl32.Vec3

	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32

	dragging bool
	anchor   [2]int32
}

var _ CameraController = &orbitController{}

// NewOrbitController creates an orbit controller framing a small object at the origin.
//
// Parameters:
//   - options: functional options applied in order
//
// Returns:
//   - CameraController: the controller
func NewOrbitController(options ...CameraControllerOption) CameraController {
	oc := &orbitController{
		place: spherical{radius: 0.4, elevation: math.Pi / 8},
		limits: orbitLimits{
			minRadius:    0.15,
			maxRadius:    5,
			minElevation: -math.Pi/2 + 0.05,
			maxElevation: math.Pi/2 - 0.05,
		},
		orbitSpeed:       0.05,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.02,
	}
	for _, option := range options {
		option(oc)
	}
	oc.move(func(*spherical) {})
	return oc
}

// move edits the placement, then clamps it and recomputes the eye. Caller holds oc.mu once
// the controller is shared.
func (oc *orbitController) move(edit func(s *spherical)) {
	edit(&oc.place)
	oc.place = oc.limits.apply(oc.place)
	oc.eye = oc.target.Add(oc.place.offset())
}

// locked runs fn holding the controller lock.
func (oc *orbitController) locked(fn func()) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	fn()
}

func (oc *orbitController) Position() (eye mgl32.Vec3) {
	oc.locked(func() { eye = oc.eye })
	return eye
}

func (oc *orbitController) Target() (target mgl32.Vec3) {
	oc.locked(func() { target = oc.target })
	return target
}

func (oc *orbitController) Radius() (r float32) {
	oc.locked(func() { r = oc.place.radius })
	return r
}

func (oc *orbitController) Azimuth() (a float32) {
	oc.locked(func() { a = oc.place.azimuth })
	return a
}

func (oc *orbitController) Elevation() (e float32) {
	oc.locked(func() { e = oc.place.elevation })
	return e
}

func (oc *orbitController) Dragging() (d bool) {
	oc.locked(func() { d = oc.dragging })
	return d
}

func (oc *orbitController) SetTarget(target mgl32.Vec3) {
	oc.locked(func() {
		oc.target = target
		oc.move(func(*spherical) {})
	})
}

func (oc *orbitController) SetRadius(radius float32) {
	oc.locked(func() {
		oc.move(func(s *spherical) { s.radius = radius })
	})
}

func (oc *orbitController) Zoom(delta float32) {
	oc.locked(func() {
		oc.move(func(s *spherical) { s.radius -= delta * oc.zoomSpeed })
	})
}

func (oc *orbitController) Orbit(deltaAzimuth, deltaElevation float32) {
	oc.locked(func() { oc.orbit(deltaAzimuth, deltaElevation) })
}

func (oc *orbitController) orbit(deltaAzimuth, deltaElevation float32) {
	oc.move(func(s *spherical) {
		s.azimuth += deltaAzimuth
		s.elevation += deltaElevation
	})
}

func (oc *orbitController) OrbitStep(horizontal, vertical int) {
	oc.Orbit(float32(horizontal)*oc.orbitSpeed, float32(vertical)*oc.orbitSpeed)
}

func (oc *orbitController) BeginDrag(x, y int32) {
	oc.locked(func() {
		oc.dragging = true
		oc.anchor = [2]int32{x, y}
	})
}

func (oc *orbitController) Drag(x, y int32) {
	oc.locked(func() {
		if !oc.dragging {
			return
		}
		dx, dy := float32(x-oc.anchor[0]), float32(y-oc.anchor[1])
		oc.anchor = [2]int32{x, y}
		// dragging right swings the eye left; screen y grows downward
		oc.orbit(-dx*oc.mouseSensitivity, dy*oc.mouseSensitivity)
	})
}

func (oc *orbitController) EndDrag() {
	oc.locked(func() { oc.dragging = false })
}
