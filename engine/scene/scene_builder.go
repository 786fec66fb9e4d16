package scene

import (
	"github.com/Carmen-Shannon/oxy-mmd/engine/animator"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is ticked by the engine.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithAnimators adds initial animators to the scene. IDs are assigned in argument order
// starting at 1.
//
// Parameters:
//   - animators: the animators to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAnimators(animators ...animator.Animator) SceneBuilderOption {
	return func(s *scene) {
		for _, a := range animators {
			s.addAnimator(a)
		}
	}
}

// WithComputeWorkers sets the number of worker goroutines used to update animators in
// parallel. Defaults to runtime.NumCPU()-1.
// Higher values help scenes with many model instances; lower values reduce scheduling
// overhead for small scenes.
//
// Parameters:
//   - n: the number of compute workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.computeWorkers = n
	}
}
