package animator

import (
	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
)

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithLabel is an option builder that sets the debug label used in logs and staged buffer writes.
// Defaults to the model name.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the label option to an animator
func WithLabel(label string) AnimatorBuilderOption {
	return func(a *animator) {
		a.label = label
	}
}

// WithMotion is an option builder that binds a motion during construction.
//
// Parameters:
//   - motion: the motion to play
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the motion option to an animator
func WithMotion(motion *model.Motion) AnimatorBuilderOption {
	return func(a *animator) {
		a.pendingMotion = motion
	}
}

// WithFrameRate is an option builder that sets how many motion frames elapse per second.
// Defaults to DefaultFrameRate.
//
// Parameters:
//   - fps: the frame rate
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the frame rate option to an animator
func WithFrameRate(fps float32) AnimatorBuilderOption {
	return func(a *animator) {
		if fps > 0 {
			a.frameRate = fps
		}
	}
}

// WithSpeed is an option builder that sets the playback speed multiplier.
//
// Parameters:
//   - speed: the multiplier (1 is real time)
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the speed option to an animator
func WithSpeed(speed float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.speed = speed
	}
}

// WithLoop is an option builder that sets whether playback wraps at the end of the motion.
//
// Parameters:
//   - loop: true to loop
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the loop option to an animator
func WithLoop(loop bool) AnimatorBuilderOption {
	return func(a *animator) {
		a.loop = loop
	}
}

// WithIKEnabled is an option builder that turns the IK pass on or off. Enabled by default.
//
// Parameters:
//   - enabled: true to solve IK chains every frame
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the IK option to an animator
func WithIKEnabled(enabled bool) AnimatorBuilderOption {
	return func(a *animator) {
		a.ikEnabled = enabled
	}
}

// WithIKRightHanded is an option builder that selects right-handed knee projection for the IK solver.
//
// Parameters:
//   - rightHanded: true for right-handed coordinates
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the handedness option to an animator
func WithIKRightHanded(rightHanded bool) AnimatorBuilderOption {
	return func(a *animator) {
		a.rightHanded = rightHanded
	}
}

// WithIKConvergenceTolerance is an option builder that lets IK chains stop early once converged.
//
// Parameters:
//   - tolerance: the effector/target distance that ends a chain, 0 to always run every iteration
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the tolerance option to an animator
func WithIKConvergenceTolerance(tolerance float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.convergenceTolerance = tolerance
	}
}

// WithMorphDeadZone is an option builder that sets the morph weight change threshold.
//
// Parameters:
//   - eps: the dead zone
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the dead zone option to an animator
func WithMorphDeadZone(eps float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.morphDeadZone = eps
	}
}

// WithMorphWeightClamp is an option builder that clamps morph weights to [0, 1].
//
// Parameters:
//   - clamp: true to clamp
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the clamp option to an animator
func WithMorphWeightClamp(clamp bool) AnimatorBuilderOption {
	return func(a *animator) {
		a.morphClamp = clamp
	}
}
