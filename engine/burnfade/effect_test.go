package burnfade

import (
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/burnfade/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEffect(t *testing.T, options ...EffectBuilderOption) Effect {
	t.Helper()
	m := model.NewModel(model.WithName("sphere"), model.WithMesh(testMesh(t)))
	e, err := NewEffect(m, options...)
	require.NoError(t, err)
	return e
}

func decodeParams(t *testing.T, data []byte) GPUBurnFadeParams {
	t.Helper()
	var p GPUBurnFadeParams
	require.NoError(t, p.Unmarshal(data))
	return p
}

func TestNewEffectRequiresVertices(t *testing.T) {
	_, err := NewEffect(nil)
	assert.ErrorIs(t, err, ErrNoVertices)

	_, err = NewEffect(model.NewModel(model.WithName("empty")))
	assert.ErrorIs(t, err, ErrNoVertices)

	_, err = NewEffect(model.NewModel(model.WithMesh(&model.Mesh{})))
	assert.ErrorIs(t, err, ErrNoVertices)
}

func TestEffectDefaults(t *testing.T) {
	e := newTestEffect(t)
	assert.Equal(t, DefaultSettings(), e.Settings())
	assert.Equal(t, model.IcosphereVertexCount(3), e.VertexCount())
	assert.Nil(t, e.Timeline())
	assert.NotNil(t, e.ComputeBindGroupProvider())
	assert.Equal(t, "sphere_burn_compute", e.ComputeBindGroupProvider().Label())

	source, output, params := e.Bindings()
	assert.Equal(t, DefaultSourceBinding, source)
	assert.Equal(t, DefaultOutputBinding, output)
	assert.Equal(t, DefaultParamsBinding, params)
}

func TestEffectFirstFrameStagesSourceAndParams(t *testing.T) {
	e := newTestEffect(t)
	assert.False(t, e.NeedsDispatch())

	e.PrepareFrame(0.016)
	writes := e.StagedWriteData()
	require.Len(t, writes, 2)

	assert.Equal(t, DefaultSourceBinding, writes[0].Binding)
	assert.Equal(t, e.VertexCount()*model.GPUVertexStride, writes[0].Size())
	decoded, err := model.UnmarshalVertices(writes[0].Data)
	require.NoError(t, err)
	assert.Equal(t, e.OriginalVertices(), decoded)

	assert.Equal(t, DefaultParamsBinding, writes[1].Binding)
	assert.Equal(t, DefaultSettings().Params(), decodeParams(t, writes[1].Data))
	assert.Same(t, e.ComputeBindGroupProvider(), writes[1].Provider)

	assert.True(t, e.NeedsDispatch())
	assert.Empty(t, e.StagedWriteData())
}

func TestEffectStagesParamsOnlyWhenChanged(t *testing.T) {
	e := newTestEffect(t)
	e.PrepareFrame(0.016)
	e.StagedWriteData()
	e.MarkDispatched()

	e.PrepareFrame(0.016)
	assert.Empty(t, e.StagedWriteData())
	assert.False(t, e.NeedsDispatch())

	e.SetProgress(0.5)
	e.SetProgress(0.5)
	e.PrepareFrame(0.016)
	writes := e.StagedWriteData()
	require.Len(t, writes, 1)
	assert.Equal(t, float32(0.5), decodeParams(t, writes[0].Data).Progress)
	assert.True(t, e.NeedsDispatch())

	s := e.Settings()
	s.HueRotate = 1.2
	e.SetSettings(s)
	e.PrepareFrame(0.016)
	writes = e.StagedWriteData()
	require.Len(t, writes, 1)
	assert.Equal(t, s.Params(), decodeParams(t, writes[0].Data))
}

func TestEffectProgressIsNotClamped(t *testing.T) {
	e := newTestEffect(t)
	e.SetProgress(1.5)
	assert.Equal(t, float32(1.5), e.Progress())
	e.PrepareFrame(0)
	writes := e.StagedWriteData()
	require.Len(t, writes, 2)
	assert.Equal(t, float32(1.5), decodeParams(t, writes[1].Data).Progress)
}

func TestEffectTimelineDrivesProgress(t *testing.T) {
	tl, err := NewTimeline(ModeLoop, time.Second)
	require.NoError(t, err)
	e := newTestEffect(t, WithTimeline(tl))
	assert.Same(t, tl, e.Timeline())

	// a paused timeline leaves progress alone
	e.PrepareFrame(0.25)
	assert.Equal(t, float32(0), e.Progress())

	tl.Play()
	e.PrepareFrame(0.25)
	assert.Equal(t, float32(0.25), e.Progress())
	e.PrepareFrame(0.5)
	assert.Equal(t, float32(0.75), e.Progress())

	// manual progress moves the timeline with it
	e.SetProgress(0.1)
	assert.InDelta(t, 0.1, tl.Progress(), 1e-6)

	e.SetTimeline(nil)
	e.PrepareFrame(0.5)
	assert.Equal(t, float32(0.1), e.Progress())
}

func TestEffectWorkgroupCount(t *testing.T) {
	mesh, err := model.GenerateIcosphere(model.DefaultIcosphereRadius, model.DefaultIcosphereSubdivisions)
	require.NoError(t, err)
	e, err := NewEffect(model.NewModel(model.WithMesh(mesh)))
	require.NoError(t, err)

	assert.Equal(t, [3]uint32{161, 1, 1}, e.WorkgroupCount([3]uint32{WorkgroupSize, 1, 1}))
	assert.Equal(t, [3]uint32{161, 1, 1}, e.WorkgroupCount([3]uint32{}))
	assert.Equal(t, [3]uint32{81, 1, 1}, e.WorkgroupCount([3]uint32{128, 1, 1}))
}

func TestEffectSetBindingsRestages(t *testing.T) {
	e := newTestEffect(t, WithBindings(4, 5, 6))
	source, output, params := e.Bindings()
	assert.Equal(t, []int{4, 5, 6}, []int{source, output, params})

	e.PrepareFrame(0)
	e.StagedWriteData()
	e.MarkDispatched()

	e.SetBindings(1, 2, 3)
	e.PrepareFrame(0)
	writes := e.StagedWriteData()
	require.Len(t, writes, 2)
	assert.Equal(t, 1, writes[0].Binding)
	assert.Equal(t, 3, writes[1].Binding)
	assert.True(t, e.NeedsDispatch())
}

func TestEffectInvalidate(t *testing.T) {
	e := newTestEffect(t)
	e.PrepareFrame(0)
	e.StagedWriteData()
	e.MarkDispatched()

	e.Invalidate()
	e.PrepareFrame(0)
	assert.Len(t, e.StagedWriteData(), 2)
}

func TestEffectBurnedVertices(t *testing.T) {
	e := newTestEffect(t, WithSettings(Settings{BurnAmount: 1, BurnScale: 8, EdgeWidth: 0.08, EmberRange: 0.15}))
	for _, v := range e.BurnedVertices(nil) {
		assert.Equal(t, [4]float32{0, 0, 0, 0}, v.Color)
	}

	e.SetProgress(0)
	assert.Equal(t, e.OriginalVertices(), e.BurnedVertices(NewReferenceBurner(2, 64)))
}

func TestEffectConcurrentSettings(t *testing.T) {
	e := newTestEffect(t)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range 100 {
				e.SetProgress(float32(i*100+j) / 800)
				e.PrepareFrame(0.001)
				e.StagedWriteData()
			}
		}(i)
	}
	wg.Wait()
	e.Release()
}
