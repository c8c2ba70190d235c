package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/burnfade/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUCameraUniformMarshal(t *testing.T) {
	u := GPUCameraUniform{CameraPosition: [3]float32{7, 8, 9}}
	for i := range u.ViewProj {
		u.ViewProj[i] = float32(i)
	}
	buf := u.Marshal()
	require.Len(t, buf, 80)
	for i := 0; i < 16; i++ {
		assert.Equal(t, float32(i), math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
	}
	assert.Equal(t, float32(8), math.Float32frombits(binary.LittleEndian.Uint32(buf[68:])))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[76:]))

	var back GPUCameraUniform
	require.NoError(t, back.Unmarshal(buf))
	assert.Equal(t, u.ViewProj, back.ViewProj)
	assert.Equal(t, u.CameraPosition, back.CameraPosition)

	assert.ErrorIs(t, back.Unmarshal(buf[:79]), model.ErrShortBuffer)
}

func TestCameraWithoutControllerKeepsIdentity(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, mgl32.Ident4(), c.ViewProjectionMatrix())
	assert.Nil(t, c.Controller())
	assert.NotNil(t, c.BindGroupProvider())
}

func TestCameraProjectsTargetToCenter(t *testing.T) {
	ctrl := NewOrbitController(WithRadius(0.5), WithAzimuth(0.3), WithElevation(0.2))
	c := NewCamera(WithController(ctrl), WithAspect(16.0/9.0))

	clip := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	require.Greater(t, clip[3], float32(0))
	assert.InDelta(t, 0, clip[0]/clip[3], 1e-5)
	assert.InDelta(t, 0, clip[1]/clip[3], 1e-5)
	depth := clip[2] / clip[3]
	assert.Greater(t, depth, float32(0))
	assert.Less(t, depth, float32(1))

	assert.InDelta(t, 0.5, c.Position().Len(), 1e-5)
	assert.Equal(t, ctrl.Position(), c.Position())
}

func TestCameraDepthRange(t *testing.T) {
	ctrl := NewOrbitController(WithRadius(1), WithElevation(0), WithRadiusBounds(0.1, 10))
	c := NewCamera(WithController(ctrl), WithClipPlanes(0.5, 4))

	// the eye sits on +Z looking toward the origin
	near := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, 0.5, 1})
	far := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, -3, 1})
	assert.InDelta(t, 0, near[2]/near[3], 1e-5)
	assert.InDelta(t, 1, far[2]/far[3], 1e-5)
}

func TestProjectionValidate(t *testing.T) {
	require.NoError(t, DefaultProjection().Validate())

	for name, p := range map[string]Projection{
		"zero fov":      {Fov: 0, Aspect: 1, Near: 0.1, Far: 10},
		"straight fov":  {Fov: math.Pi, Aspect: 1, Near: 0.1, Far: 10},
		"zero aspect":   {Fov: 1, Aspect: 0, Near: 0.1, Far: 10},
		"zero near":     {Fov: 1, Aspect: 1, Near: 0, Far: 10},
		"far not after": {Fov: 1, Aspect: 1, Near: 1, Far: 1},
	} {
		assert.ErrorIs(t, p.Validate(), ErrInvalidProjection, name)
	}
}

func TestCameraProjectionUpdates(t *testing.T) {
	ctrl := NewOrbitController()
	c := NewCamera(WithController(ctrl), WithClipPlanes(5, 1))
	assert.Equal(t, DefaultProjection(), c.Projection(), "invalid options fall back to the default")

	before := c.ViewProjectionMatrix()
	c.Resize(1600, 900)
	assert.InDelta(t, 16.0/9.0, c.Projection().Aspect, 1e-6)
	assert.NotEqual(t, before, c.ViewProjectionMatrix())

	c.Resize(0, 900)
	assert.InDelta(t, 16.0/9.0, c.Projection().Aspect, 1e-6)

	p := c.Projection()
	p.Fov = 1
	require.NoError(t, c.SetProjection(p))
	assert.Equal(t, float32(1), c.Projection().Fov)

	p.Near = -1
	assert.ErrorIs(t, c.SetProjection(p), ErrInvalidProjection)
	assert.Equal(t, float32(1), c.Projection().Fov)
	assert.Greater(t, c.Projection().Near, float32(0))
}

func TestCamerasGetDistinctProviders(t *testing.T) {
	a, b := NewCamera(), NewCamera()
	assert.NotEqual(t, a.BindGroupProvider().Label(), b.BindGroupProvider().Label())
}

func TestCameraUniformFollowsController(t *testing.T) {
	ctrl := NewOrbitController()
	c := NewCamera(WithController(ctrl))
	before := c.Uniform()

	ctrl.Orbit(0.5, 0)
	assert.Equal(t, before, c.Uniform(), "matrices only change on Update")

	c.Update()
	after := c.Uniform()
	assert.NotEqual(t, before.ViewProj, after.ViewProj)
	assert.Equal(t, [3]float32(ctrl.Position()), after.CameraPosition)

	w := c.StageUniform(0)
	assert.Equal(t, 0, w.Binding)
	assert.Same(t, c.BindGroupProvider(), w.Provider)
	assert.Equal(t, after.Marshal(), w.Data)
}

func TestOrbitControllerClamps(t *testing.T) {
	ctrl := NewOrbitController(WithRadiusBounds(1, 2), WithRadius(1.5), WithZoomSpeed(1), WithElevationBounds(-0.5, 0.5))

	ctrl.Zoom(10)
	assert.Equal(t, float32(1), ctrl.Radius())
	ctrl.Zoom(-10)
	assert.Equal(t, float32(2), ctrl.Radius())
	ctrl.SetRadius(100)
	assert.Equal(t, float32(2), ctrl.Radius())

	ctrl.Orbit(0, 3)
	assert.Equal(t, float32(0.5), ctrl.Elevation())
	ctrl.Orbit(0, -3)
	assert.Equal(t, float32(-0.5), ctrl.Elevation())

	assert.InDelta(t, 2, ctrl.Position().Sub(ctrl.Target()).Len(), 1e-5)
}

func TestOrbitControllerTarget(t *testing.T) {
	ctrl := NewOrbitController(WithRadius(1), WithElevation(0), WithRadiusBounds(0.1, 10))
	assert.InDelta(t, 1, ctrl.Position()[2], 1e-6)

	ctrl.SetTarget(mgl32.Vec3{1, 2, 3})
	p := ctrl.Position()
	assert.InDelta(t, 1, p[0], 1e-6)
	assert.InDelta(t, 2, p[1], 1e-6)
	assert.InDelta(t, 4, p[2], 1e-6)
}

func TestOrbitControllerDrag(t *testing.T) {
	ctrl := NewOrbitController(WithMouseSensitivity(0.01), WithElevation(0))

	ctrl.Drag(100, 100)
	assert.Equal(t, float32(0), ctrl.Azimuth(), "drag without BeginDrag is ignored")

	ctrl.BeginDrag(100, 100)
	assert.True(t, ctrl.Dragging())
	ctrl.Drag(90, 110)
	assert.InDelta(t, 0.1, ctrl.Azimuth(), 1e-6)
	assert.InDelta(t, 0.1, ctrl.Elevation(), 1e-6)

	ctrl.EndDrag()
	assert.False(t, ctrl.Dragging())
	ctrl.Drag(0, 0)
	assert.InDelta(t, 0.1, ctrl.Azimuth(), 1e-6)
}

func TestOrbitControllerKeySteps(t *testing.T) {
	ctrl := NewOrbitController(WithOrbitSpeed(0.25), WithElevation(0))
	ctrl.OrbitStep(2, 0)
	ctrl.OrbitStep(-1, 0)
	assert.InDelta(t, 0.25, ctrl.Azimuth(), 1e-6)
	ctrl.OrbitStep(0, 1)
	assert.InDelta(t, 0.25, ctrl.Elevation(), 1e-6)
	ctrl.OrbitStep(0, -2)
	assert.InDelta(t, -0.25, ctrl.Elevation(), 1e-6)
}
