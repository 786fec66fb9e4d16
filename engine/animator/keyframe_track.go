package animator

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-mmd/common"
	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
)

// BoneTrack is an ordered list of bone keyframes for one bone.
type BoneTrack struct {
	keys []model.BoneKeyFrame
}

// NewBoneTrack builds a track from keyframes in any order.
// The keys are copied and stably sorted by frame, so duplicate frames keep their input order.
//
// Parameters:
//   - keys: the keyframes for a single bone
//
// Returns:
//   - *BoneTrack: the sorted track
func NewBoneTrack(keys []model.BoneKeyFrame) *BoneTrack {
	sorted := make([]model.BoneKeyFrame, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })
	return &BoneTrack{keys: sorted}
}

// Len returns the number of keyframes in the track.
func (bt *BoneTrack) Len() int {
	return len(bt.keys)
}

// Keys returns the sorted keyframes. The slice must not be modified.
func (bt *BoneTrack) Keys() []model.BoneKeyFrame {
	return bt.keys
}

// Interpolate samples the track at time t (in frames).
// An empty track yields the identity transform. Times before the first key or at and after
// the last key return that key unchanged. Inside a segment each translation component is eased
// with its own Bezier curve and the rotation is slerped along the shortest arc.
//
// Parameters:
//   - t: the sample time in frames
//
// Returns:
//   - common.Transform: the keyframe translation (relative to rest) and rotation
func (bt *BoneTrack) Interpolate(t float32) common.Transform {
	n := len(bt.keys)
	if n == 0 {
		return common.IdentityTransform()
	}
	i := sort.Search(n, func(i int) bool { return float32(bt.keys[i].Frame) > t })
	if i == 0 {
		return keyTransform(bt.keys[0])
	}
	if i == n {
		return keyTransform(bt.keys[n-1])
	}

	k0, k1 := bt.keys[i-1], bt.keys[i]
	span := float32(k1.Frame - k0.Frame)
	if span <= 0 {
		return keyTransform(k0)
	}
	u := (t - float32(k0.Frame)) / span

	var tr common.Transform
	for c := range 3 {
		tr.Translation[c] = common.Lerp(k0.Translation[c], k1.Translation[c], EvalBezier(k1.Bezier[c], u))
	}
	tr.Rotation = common.SlerpShortest(k0.Rotation, k1.Rotation, EvalBezier(k1.Bezier[model.BezierRotation], u))
	return tr
}

func keyTransform(k model.BoneKeyFrame) common.Transform {
	return common.Transform{Rotation: k.Rotation.Normalize(), Translation: k.Translation}
}

// MorphTrack is an ordered list of weight keyframes for one morph.
type MorphTrack struct {
	keys []model.MorphKeyFrame
}

// NewMorphTrack builds a track from keyframes in any order, stably sorted by frame.
//
// Parameters:
//   - keys: the keyframes for a single morph
//
// Returns:
//   - *MorphTrack: the sorted track
func NewMorphTrack(keys []model.MorphKeyFrame) *MorphTrack {
	sorted := make([]model.MorphKeyFrame, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })
	return &MorphTrack{keys: sorted}
}

// Len returns the number of keyframes in the track.
func (mt *MorphTrack) Len() int {
	return len(mt.keys)
}

// Interpolate samples the morph weight at time t (in frames) with linear interpolation.
// An empty track yields 0; times outside the keyed range clamp to the nearest key.
//
// Parameters:
//   - t: the sample time in frames
//
// Returns:
//   - float32: the morph weight
func (mt *MorphTrack) Interpolate(t float32) float32 {
	n := len(mt.keys)
	if n == 0 {
		return 0
	}
	i := sort.Search(n, func(i int) bool { return float32(mt.keys[i].Frame) > t })
	if i == 0 {
		return mt.keys[0].Weight
	}
	if i == n {
		return mt.keys[n-1].Weight
	}
	k0, k1 := mt.keys[i-1], mt.keys[i]
	span := float32(k1.Frame - k0.Frame)
	if span <= 0 {
		return k0.Weight
	}
	return common.Lerp(k0.Weight, k1.Weight, (t-float32(k0.Frame))/span)
}
