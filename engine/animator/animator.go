package animator

import (
	"fmt"
	"log"
	"math"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-mmd/common"
	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/num/dualquat"
)

// DefaultFrameRate is the MMD keyframe rate in frames per second.
const DefaultFrameRate float32 = 30

// animator is the implementation of the Animator interface.
type animator struct {
	mu *sync.Mutex

	label string
	model model.Model

	hierarchy *Hierarchy
	pose      *Pose
	solver    *IKSolver
	blender   *MorphBlender

	motion      *model.Motion
	boneTracks  []*BoneTrack
	morphTracks []*MorphTrack
	weights     []float32
	skinning    []dualquat.Number
	warned      map[string]struct{}

	frame, maxFrame, frameRate, speed float32
	loop, ikEnabled                   bool

	rightHanded          bool
	convergenceTolerance float32
	morphDeadZone        float32
	morphClamp           bool
	pendingMotion        *model.Motion

	stagedWriteData        []BufferWrite
	stagingSkin, stagingMo []byte
	morphStaged            bool
}

// Animator defines the public interface for playing an MMD motion on one model instance.
//
// Each Animator owns the instance's pose, morph buffers and playback clock while sharing the
// model's immutable hierarchy data. Every Update runs the frame pipeline in a fixed order:
// local pose composition, cumulative composition, IK, skinning export, then morph blending.
// Accessors are safe to call from other goroutines.
type Animator interface {
	// Label returns the debug label of this animator.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Model returns the model this animator plays.
	//
	// Returns:
	//   - model.Model: the model
	Model() model.Model

	// Hierarchy returns the bone hierarchy built from the model's skeleton.
	//
	// Returns:
	//   - *Hierarchy: the shared, read-only hierarchy
	Hierarchy() *Hierarchy

	// SetMotion binds a motion's bone and morph tracks to the model by exact name and rewinds to frame 0.
	// Track names with no matching bone or morph are skipped and logged once per name.
	// Bones and morphs without a track stay at rest and zero weight. A nil motion clears playback.
	//
	// Parameters:
	//   - motion: the motion to play
	SetMotion(motion *model.Motion)

	// Update advances the playback clock by deltaTime seconds and evaluates the new frame.
	// Looping animators wrap past the motion's last frame; others hold the last pose.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last update in seconds
	Update(deltaTime float32)

	// SetFrame jumps to a specific frame and evaluates it.
	//
	// Parameters:
	//   - frame: the frame to evaluate
	SetFrame(frame float32)

	// Frame returns the current playback position in frames.
	//
	// Returns:
	//   - float32: the current frame
	Frame() float32

	// MaxFrame returns the last keyed frame of the bound motion.
	//
	// Returns:
	//   - float32: the last frame, 0 without a motion
	MaxFrame() float32

	// SetSpeed sets the playback speed multiplier.
	//
	// Parameters:
	//   - speed: the multiplier (1 is real time)
	SetSpeed(speed float32)

	// SetLoop sets whether playback wraps at the end of the motion.
	//
	// Parameters:
	//   - loop: true to loop
	SetLoop(loop bool)

	// BoneCount returns the number of bones in the model.
	//
	// Returns:
	//   - int: the bone count
	BoneCount() int

	// SkinningTransforms returns a copy of the per-bone skinning dual quaternions from the last evaluation.
	//
	// Returns:
	//   - []dualquat.Number: one transform per bone
	SkinningTransforms() []dualquat.Number

	// MorphedPositions returns a copy of the morphed vertex positions from the last evaluation.
	//
	// Returns:
	//   - []mgl32.Vec3: one position per vertex
	MorphedPositions() []mgl32.Vec3

	// MorphWeights returns a copy of the morph weights sampled at the current frame.
	//
	// Returns:
	//   - []float32: one weight per morph, index 0 unused
	MorphWeights() []float32

	// CumulativePose returns a copy of the model-space bone transforms from the last evaluation.
	//
	// Returns:
	//   - []common.Transform: one transform per bone
	CumulativePose() []common.Transform

	// StagedWriteData returns and clears the pending GPU buffer writes.
	// The skinning palette is staged on every evaluation, morphed positions on the first evaluation
	// and afterwards only when they changed.
	//
	// Returns:
	//   - []BufferWrite: the pending writes
	StagedWriteData() []BufferWrite
}

var _ Animator = &animator{}

// NewAnimator creates an Animator for m with the specified options applied.
// The model's skeleton is turned into a hierarchy, its IK chains are validated and its morphs
// are checked against the vertex count. The rest pose is evaluated before returning.
//
// Parameters:
//   - m: the model to animate
//   - options: a variadic list of AnimatorBuilderOption functions to configure the Animator
//
// Returns:
//   - Animator: a new Animator
//   - error: an error if the model data is invalid
func NewAnimator(m model.Model, options ...AnimatorBuilderOption) (Animator, error) {
	if m == nil {
		return nil, ErrNilModel
	}
	a := &animator{
		mu:            &sync.Mutex{},
		label:         m.Name(),
		model:         m,
		frameRate:     DefaultFrameRate,
		speed:         1,
		ikEnabled:     true,
		morphDeadZone: DefaultMorphDeadZone,
		warned:        make(map[string]struct{}),
	}
	for _, opt := range options {
		opt(a)
	}

	skel := m.Skeleton()
	h, err := BuildHierarchy(skel.Bones)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", m.Name(), err)
	}
	if err := ValidateIKChains(h, skel.IKChains); err != nil {
		return nil, fmt.Errorf("model %q: %w", m.Name(), err)
	}
	blender, err := NewMorphBlender(m.Morphs(), m.BasePositions(),
		WithDeadZone(a.morphDeadZone),
		WithWeightClamp(a.morphClamp),
	)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", m.Name(), err)
	}

	a.hierarchy = h
	a.pose = NewPose(h)
	a.solver = NewIKSolver(h, skel.IKChains,
		WithRightHanded(a.rightHanded),
		WithConvergenceTolerance(a.convergenceTolerance),
	)
	a.blender = blender
	a.boneTracks = make([]*BoneTrack, h.Len())
	a.morphTracks = make([]*MorphTrack, len(m.Morphs()))
	a.weights = make([]float32, len(m.Morphs()))

	a.SetMotion(a.pendingMotion)
	a.pendingMotion = nil
	return a, nil
}

func (a *animator) Label() string {
	return a.label
}

func (a *animator) Model() model.Model {
	return a.model
}

func (a *animator) Hierarchy() *Hierarchy {
	return a.hierarchy
}

func (a *animator) SetMotion(motion *model.Motion) {
	a.mu.Lock()
	defer a.mu.Unlock()

	clear(a.boneTracks)
	clear(a.morphTracks)
	a.motion = motion
	a.maxFrame = 0
	a.frame = 0

	if motion != nil {
		for _, tr := range motion.BoneTracks {
			b, ok := a.hierarchy.Index(tr.Name)
			if !ok {
				a.warnOnce("bone", tr.Name)
				continue
			}
			a.boneTracks[b] = NewBoneTrack(tr.Keys)
		}
		for _, tr := range motion.MorphTracks {
			i := a.model.MorphIndex(tr.Name)
			if i <= 0 {
				// Index 0 is the base morph, which is never weighted.
				a.warnOnce("morph", tr.Name)
				continue
			}
			a.morphTracks[i] = NewMorphTrack(tr.Keys)
		}
		a.maxFrame = float32(motion.MaxFrame())
	}

	a.evaluate()
}

func (a *animator) Update(deltaTime float32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.frame += deltaTime * a.frameRate * a.speed
	if a.maxFrame > 0 && a.frame > a.maxFrame {
		if a.loop {
			a.frame = float32(math.Mod(float64(a.frame), float64(a.maxFrame)))
		} else {
			a.frame = a.maxFrame
		}
	}
	if a.frame < 0 {
		a.frame = 0
	}
	a.evaluate()
}

func (a *animator) SetFrame(frame float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frame = frame
	a.evaluate()
}

func (a *animator) Frame() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frame
}

func (a *animator) MaxFrame() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.maxFrame
}

func (a *animator) SetSpeed(speed float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.speed = speed
}

func (a *animator) SetLoop(loop bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loop = loop
}

func (a *animator) BoneCount() int {
	return a.hierarchy.Len()
}

func (a *animator) SkinningTransforms() []dualquat.Number {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.skinning)
}

func (a *animator) MorphedPositions() []mgl32.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.blender.Positions())
}

func (a *animator) MorphWeights() []float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.weights)
}

func (a *animator) CumulativePose() []common.Transform {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.pose.Cumulative)
}

func (a *animator) StagedWriteData() []BufferWrite {
	a.mu.Lock()
	defer a.mu.Unlock()
	data := a.stagedWriteData
	a.stagedWriteData = nil
	return data
}

// evaluate runs the frame pipeline at a.frame. Callers must hold a.mu.
func (a *animator) evaluate() {
	a.pose.ComposeLocal(a.hierarchy, a.boneTracks, a.frame)
	a.pose.ComposeCumulative(a.hierarchy)
	if a.ikEnabled {
		a.solver.Solve(a.pose)
	}
	a.skinning = ExportSkinning(a.hierarchy, a.pose, a.skinning)

	for i, tr := range a.morphTracks {
		if tr == nil {
			a.weights[i] = 0
			continue
		}
		a.weights[i] = tr.Interpolate(a.frame)
	}
	positions, changed := a.blender.Blend(a.weights)

	a.stagingSkin = MarshalDualQuats(a.skinning, a.stagingSkin)
	a.stage(SkinningBinding, a.stagingSkin)
	if changed || !a.morphStaged {
		a.stagingMo = MarshalMorphPositions(positions, a.stagingMo)
		a.stage(MorphBinding, a.stagingMo)
		a.morphStaged = true
	}
}

// stage records a pending write, replacing any earlier undrained write to the same binding.
func (a *animator) stage(binding int, data []byte) {
	for i := range a.stagedWriteData {
		if a.stagedWriteData[i].Binding == binding {
			a.stagedWriteData[i].Data = data
			return
		}
	}
	a.stagedWriteData = append(a.stagedWriteData, BufferWrite{
		Label:   a.label,
		Binding: binding,
		Offset:  0,
		Data:    data,
	})
}

func (a *animator) warnOnce(kind, name string) {
	key := kind + ":" + name
	if _, seen := a.warned[key]; seen {
		return
	}
	a.warned[key] = struct{}{}
	log.Printf("[Animator] %s: motion %s track %q has no match in model %q, skipping", a.label, kind, name, a.model.Name())
}
