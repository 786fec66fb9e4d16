package animator

import (
	"github.com/Carmen-Shannon/oxy-mmd/common"
)

// Pose holds the per-instance local and cumulative bone transforms.
// Each model instance owns exactly one Pose; Hierarchy data is shared.
type Pose struct {
	// Local is each bone's transform relative to its parent.
	Local []common.Transform

	// Cumulative is each bone's transform relative to the model root.
	Cumulative []common.Transform

	stack []int
}

// NewPose allocates a pose for h with every bone at rest.
//
// Parameters:
//   - h: the hierarchy the pose belongs to
//
// Returns:
//   - *Pose: the rest pose, with cumulative transforms composed
func NewPose(h *Hierarchy) *Pose {
	p := &Pose{
		Local:      make([]common.Transform, h.Len()),
		Cumulative: make([]common.Transform, h.Len()),
		stack:      make([]int, 0, h.Len()),
	}
	p.Reset(h)
	return p
}

// Reset returns every bone to its rest local transform and recomposes the cumulative transforms.
func (p *Pose) Reset(h *Hierarchy) {
	for b := range p.Local {
		p.Local[b] = common.TranslationTransform(h.RestOffset(b))
	}
	p.ComposeCumulative(h)
}

// ComposeLocal samples the bone tracks at time t into the local transforms.
// tracks is indexed by bone; a nil entry (or a missing tail) leaves that bone at rest.
// Animated bones translate relative to their rest offset.
//
// Parameters:
//   - h: the hierarchy
//   - tracks: one track per bone, nil where the motion has no keys for the bone
//   - t: the sample time in frames
func (p *Pose) ComposeLocal(h *Hierarchy, tracks []*BoneTrack, t float32) {
	for b := range p.Local {
		rest := h.RestOffset(b)
		if b >= len(tracks) || tracks[b] == nil {
			p.Local[b] = common.TranslationTransform(rest)
			continue
		}
		key := tracks[b].Interpolate(t)
		p.Local[b] = common.Transform{
			Rotation:    key.Rotation,
			Translation: rest.Add(key.Translation),
		}
	}
}

// ComposeCumulative recomputes every cumulative transform in parent-before-child order.
//
// Parameters:
//   - h: the hierarchy
func (p *Pose) ComposeCumulative(h *Hierarchy) {
	for _, b := range h.Order() {
		p.composeBone(h, b)
	}
}

// UpdateChildPose recomputes bone b's cumulative transform from its parent and then
// every bone in b's subtree. The result equals a full ComposeCumulative.
//
// Parameters:
//   - h: the hierarchy
//   - b: the root of the subtree to refresh
func (p *Pose) UpdateChildPose(h *Hierarchy, b int) {
	p.stack = append(p.stack[:0], b)
	for len(p.stack) > 0 {
		cur := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		p.composeBone(h, cur)
		p.stack = append(p.stack, h.Children(cur)...)
	}
}

func (p *Pose) composeBone(h *Hierarchy, b int) {
	if parent, ok := h.Parent(b); ok {
		p.Cumulative[b] = p.Cumulative[parent].Mul(p.Local[b])
		return
	}
	p.Cumulative[b] = p.Local[b]
}
