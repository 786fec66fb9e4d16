package animator

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ikMinSine is the smallest sine of the effector/target angle a link will react to.
	ikMinSine = 1e-3

	// ikMinLength is the distance below which a local direction is treated as degenerate.
	ikMinLength = 1e-6
)

// IKSolver runs cyclic coordinate descent over a model's IK chains.
type IKSolver struct {
	hierarchy   *Hierarchy
	chains      []model.IKChain
	rightHanded bool
	tolerance   float32
}

// IKSolverBuilderOption is a functional option for configuring an IKSolver via NewIKSolver.
type IKSolverBuilderOption func(*IKSolver)

// WithRightHanded is an option builder that selects the coordinate convention used when projecting
// single-axis (knee) links. MMD content is left-handed, which is the default.
//
// Parameters:
//   - rightHanded: true for right-handed coordinates
//
// Returns:
//   - IKSolverBuilderOption: a function that applies the handedness option to a solver
func WithRightHanded(rightHanded bool) IKSolverBuilderOption {
	return func(s *IKSolver) {
		s.rightHanded = rightHanded
	}
}

// WithConvergenceTolerance is an option builder that enables early exit once the target is within
// tolerance of the effector. Zero (the default) always runs every iteration.
//
// Parameters:
//   - tolerance: the effector/target distance that ends a chain early
//
// Returns:
//   - IKSolverBuilderOption: a function that applies the tolerance option to a solver
func WithConvergenceTolerance(tolerance float32) IKSolverBuilderOption {
	return func(s *IKSolver) {
		s.tolerance = tolerance
	}
}

// ValidateIKChains checks that every chain references existing bones and that every link is a
// proper ancestor of the chain's target bone.
//
// Parameters:
//   - h: the hierarchy the chains refer to
//   - chains: the chains to check
//
// Returns:
//   - error: ErrInvalidIKChain wrapped with the failing chain, or nil
func ValidateIKChains(h *Hierarchy, chains []model.IKChain) error {
	n := h.Len()
	inRange := func(b int) bool { return b >= 0 && b < n }
	for i, c := range chains {
		if !inRange(c.Effector) || !inRange(c.Target) {
			return fmt.Errorf("chain %d effector %d target %d: %w", i, c.Effector, c.Target, ErrInvalidIKChain)
		}
		for _, link := range c.Links {
			if !inRange(link) {
				return fmt.Errorf("chain %d link %d out of range: %w", i, link, ErrInvalidIKChain)
			}
			if !h.IsAncestor(link, c.Target) {
				return fmt.Errorf("chain %d link %q is not an ancestor of %q: %w",
					i, h.Name(link), h.Name(c.Target), ErrInvalidIKChain)
			}
		}
	}
	return nil
}

// NewIKSolver creates a solver for the given chains. Chains must already be validated.
//
// Parameters:
//   - h: the hierarchy
//   - chains: the IK chains, solved in order
//   - options: optional IKSolverBuilderOption values
//
// Returns:
//   - *IKSolver: the solver
func NewIKSolver(h *Hierarchy, chains []model.IKChain, options ...IKSolverBuilderOption) *IKSolver {
	s := &IKSolver{hierarchy: h, chains: chains}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// ChainCount returns the number of chains the solver runs.
func (s *IKSolver) ChainCount() int {
	return len(s.chains)
}

// Solve runs every chain in order against p, rewriting link rotations and refreshing the
// affected subtrees. p's cumulative transforms must be current on entry.
//
// Parameters:
//   - p: the pose to modify
func (s *IKSolver) Solve(p *Pose) {
	for i := range s.chains {
		s.solveChain(p, &s.chains[i], nil)
	}
}

// SolveChain runs a single chain and reports the effector/target distance after every iteration.
//
// Parameters:
//   - p: the pose to modify
//   - i: the chain index
//
// Returns:
//   - []float32: one distance per completed iteration
func (s *IKSolver) SolveChain(p *Pose, i int) []float32 {
	distances := make([]float32, 0, s.chains[i].MaxIterations)
	return s.solveChain(p, &s.chains[i], distances)
}

func (s *IKSolver) solveChain(p *Pose, c *model.IKChain, distances []float32) []float32 {
	for it := uint32(0); it < c.MaxIterations; it++ {
		for i, link := range c.Links {
			s.rotateLink(p, c, i, link)
		}

		if distances == nil && s.tolerance <= 0 {
			continue
		}
		dist := p.Cumulative[c.Effector].Translation.Sub(p.Cumulative[c.Target].Translation).Len()
		if distances != nil {
			distances = append(distances, dist)
		}
		if s.tolerance > 0 && dist < s.tolerance {
			break
		}
	}
	return distances
}

// rotateLink turns one link so that the target bone swings toward the effector.
func (s *IKSolver) rotateLink(p *Pose, c *model.IKChain, i, link int) {
	linkFrame := p.Cumulative[link]
	effector := linkFrame.InverseTransformPoint(p.Cumulative[c.Effector].Translation)
	target := linkFrame.InverseTransformPoint(p.Cumulative[c.Target].Translation)

	el, tl := effector.Len(), target.Len()
	if el < ikMinLength || tl < ikMinLength {
		return
	}
	axis := effector.Cross(target)
	sin := axis.Len() / (el * tl)
	if sin < ikMinSine {
		return
	}

	theta := float32(math.Asin(float64(min(sin, 1))))
	if target.Dot(effector) < 0 {
		theta = math.Pi - theta
	}
	maxAngle := float32(i+1) * c.AngleLimit * 4
	if theta > maxAngle {
		theta = maxAngle
	}

	rotNext := mgl32.QuatRotate(-theta, axis.Normalize())
	rotFinish := p.Local[link].Rotation.Mul(rotNext)

	if s.hierarchy.AxisLimit(link) == model.AxisLimitSingleAxisX {
		rotFinish = s.projectKnee(rotFinish)
	}

	p.Local[link].Rotation = rotFinish.Normalize()
	p.UpdateChildPose(s.hierarchy, link)
}

// projectKnee keeps the rotation angle of q but forces its axis onto local X.
// The bend direction is fixed by the handedness convention.
func (s *IKSolver) projectKnee(q mgl32.Quat) mgl32.Quat {
	c := max(-1, min(1, q.W))
	sn := float32(math.Sqrt(float64(1 - c*c)))
	if !s.rightHanded {
		sn = -sn
	}
	return mgl32.Quat{W: c, V: mgl32.Vec3{sn, 0, 0}}
}
