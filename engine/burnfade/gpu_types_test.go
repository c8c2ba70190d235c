package burnfade

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/Carmen-Shannon/burnfade/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestGPUBurnFadeParamsLayout(t *testing.T) {
	var p GPUBurnFadeParams
	assert.Equal(t, GPUBurnFadeParamsSize, p.Size())
	assert.Equal(t, uintptr(0), unsafe.Offsetof(p.Progress))
	assert.Equal(t, uintptr(4), unsafe.Offsetof(p.Scale))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(p.HueRotate))
	assert.Equal(t, uintptr(12), unsafe.Offsetof(p.EdgeWidth))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(p.EmberRange))
}

func TestGPUBurnFadeParamsMarshalOffsets(t *testing.T) {
	p := GPUBurnFadeParams{Progress: 1, Scale: 2, HueRotate: 3, EdgeWidth: 4, EmberRange: 5}
	buf := p.Marshal()
	require.Len(t, buf, 20)
	for i := 0; i < 5; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		assert.Equal(t, float32(i+1), got, "field %d", i)
	}
}

func TestGPUBurnFadeParamsRoundTripBits(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	f := func() float32 { return math.Float32frombits(r.Uint32()) }
	for i := 0; i < 256; i++ {
		p := GPUBurnFadeParams{Progress: f(), Scale: f(), HueRotate: f(), EdgeWidth: f(), EmberRange: f()}
		var out GPUBurnFadeParams
		require.NoError(t, out.Unmarshal(p.Marshal()))
		assert.Equal(t, p.Marshal(), out.Marshal())
	}
}

func TestGPUBurnFadeParamsPreservesValues(t *testing.T) {
	tests := []struct {
		name string
		in   GPUBurnFadeParams
	}{
		{name: "zero progress", in: GPUBurnFadeParams{Progress: 0, Scale: 8, EdgeWidth: 0.08, EmberRange: 0.15}},
		{name: "full progress", in: GPUBurnFadeParams{Progress: 1, Scale: 8, EdgeWidth: 0.08, EmberRange: 0.15}},
		{name: "out of range", in: GPUBurnFadeParams{Progress: 1.75, Scale: -3, HueRotate: -6.5}},
		{name: "all zero", in: GPUBurnFadeParams{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out GPUBurnFadeParams
			require.NoError(t, out.Unmarshal(tt.in.Marshal()))
			assert.Equal(t, tt.in, out)
		})
	}
}

func TestGPUBurnFadeParamsSpecialValues(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	p := GPUBurnFadeParams{
		Progress:   negZero,
		Scale:      float32(math.Inf(1)),
		HueRotate:  float32(math.Inf(-1)),
		EdgeWidth:  math.Float32frombits(0x7fc0beef),
		EmberRange: -0.5,
	}
	var out GPUBurnFadeParams
	require.NoError(t, out.Unmarshal(p.Marshal()))
	assert.Equal(t, math.Float32bits(negZero), math.Float32bits(out.Progress))
	assert.True(t, math.IsInf(float64(out.Scale), 1))
	assert.True(t, math.IsInf(float64(out.HueRotate), -1))
	assert.Equal(t, uint32(0x7fc0beef), math.Float32bits(out.EdgeWidth))
	assert.Equal(t, float32(-0.5), out.EmberRange)
}

func TestGPUBurnFadeParamsUnmarshalShort(t *testing.T) {
	var p GPUBurnFadeParams
	err := p.Unmarshal(make([]byte, 19))
	assert.ErrorIs(t, err, model.ErrShortBuffer)
}
