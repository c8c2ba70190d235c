package burnfade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, float32(0), s.BurnAmount)
	assert.Equal(t, float32(8), s.BurnScale)
	assert.Equal(t, float32(0), s.HueRotate)
	assert.Equal(t, float32(0.08), s.EdgeWidth)
	assert.Equal(t, float32(0.15), s.EmberRange)
}

func TestSettingsParams(t *testing.T) {
	s := Settings{BurnAmount: 1.5, BurnScale: -2, HueRotate: 7, EdgeWidth: 0, EmberRange: 3}
	assert.Equal(t, GPUBurnFadeParams{
		Progress:   1.5,
		Scale:      -2,
		HueRotate:  7,
		EdgeWidth:  0,
		EmberRange: 3,
	}, s.Params())
}
