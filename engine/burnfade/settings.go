package burnfade

// Settings holds the user-facing burn controls. Each field maps one to one onto a
// GPUBurnFadeParams field.
type Settings struct {
	BurnAmount float32 `toml:"burn_amount"`
	BurnScale  float32 `toml:"burn_scale"`
	HueRotate  float32 `toml:"hue_rotate"`
	EdgeWidth  float32 `toml:"edge_width"`
	EmberRange float32 `toml:"ember_range"`
}

// DefaultSettings returns an unburned effect with the stock noise scale and band widths.
//
// Returns:
//   - Settings: BurnAmount 0, BurnScale 8, HueRotate 0, EdgeWidth 0.08, EmberRange 0.15
func DefaultSettings() Settings {
	return Settings{
		BurnAmount: 0,
		BurnScale:  8,
		HueRotate:  0,
		EdgeWidth:  0.08,
		EmberRange: 0.15,
	}
}

// Params converts the settings to the GPU parameter block without clamping.
//
// Returns:
//   - GPUBurnFadeParams: the parameter block for upload
func (s Settings) Params() GPUBurnFadeParams {
	return GPUBurnFadeParams{
		Progress:   s.BurnAmount,
		Scale:      s.BurnScale,
		HueRotate:  s.HueRotate,
		EdgeWidth:  s.EdgeWidth,
		EmberRange: s.EmberRange,
	}
}
