package burnfade

// EffectBuilderOption is a functional option for configuring an Effect during construction.
type EffectBuilderOption func(*effect)

// WithSettings sets the initial burn settings.
//
// Parameters:
//   - settings: the initial settings
//
// Returns:
//   - EffectBuilderOption: a function that applies the settings to an effect
func WithSettings(settings Settings) EffectBuilderOption {
	return func(e *effect) {
		e.settings = settings
	}
}

// WithTimeline attaches a timeline that drives the burn amount while it plays.
//
// Parameters:
//   - timeline: the timeline
//
// Returns:
//   - EffectBuilderOption: a function that attaches the timeline to an effect
func WithTimeline(timeline *Timeline) EffectBuilderOption {
	return func(e *effect) {
		e.timeline = timeline
	}
}

// WithBindings overrides the compute binding indices of the source, output and params buffers.
//
// Parameters:
//   - source: binding of the read-only source vertex buffer
//   - output: binding of the read-write output vertex buffer
//   - params: binding of the params uniform
//
// Returns:
//   - EffectBuilderOption: a function that applies the bindings to an effect
func WithBindings(source, output, params int) EffectBuilderOption {
	return func(e *effect) {
		e.sourceBinding, e.outputBinding, e.paramsBinding = source, output, params
	}
}
