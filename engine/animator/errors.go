package animator

import "errors"

var (
	// ErrEmptySkeleton is returned when a hierarchy is built from zero bones.
	ErrEmptySkeleton = errors.New("skeleton has no bones")

	// ErrParentOutOfRange is returned when a bone's parent index is neither -1 nor a valid bone index.
	ErrParentOutOfRange = errors.New("bone parent index out of range")

	// ErrHierarchyCycle is returned when following parent links from a bone never reaches a root.
	ErrHierarchyCycle = errors.New("bone hierarchy contains a cycle")

	// ErrInvalidIKChain is returned when an IK chain references bones that do not form a chain.
	ErrInvalidIKChain = errors.New("invalid IK chain")

	// ErrMalformedMorph is returned when a morph definition has mismatched or out-of-range vertex data.
	ErrMalformedMorph = errors.New("malformed morph definition")

	// ErrNilModel is returned when an Animator is constructed without a model.
	ErrNilModel = errors.New("animator requires a model")
)
