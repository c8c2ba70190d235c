package scene

// SceneBuilderOption configures a scene in NewScene.
type SceneBuilderOption func(s *scene)

// WithActive controls whether the engine prepares and draws the scene. Scenes start active.
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithComputeWorkers sizes the pool that runs effect CPU prep in PrepareCompute. The default
// leaves one CPU for the render goroutine.
//
// Parameters:
//   - n: pool size; values below 1 use 1
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.computeWorkers = max(n, 1)
	}
}

// WithDispatchAlways makes PrepareCompute dispatch the burn kernel for every effect on
// every frame. By default an effect is only dispatched after its source vertices or
// parameters were uploaded, since the output buffer keeps the last result.
//
// Parameters:
//   - always: true to dispatch every frame
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDispatchAlways(always bool) SceneBuilderOption {
	return func(s *scene) {
		s.dispatchAlways = always
	}
}
