package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SkinningKind identifies how a vertex is bound to its bones.
type SkinningKind int

const (
	// SkinningRigid binds the vertex to a single bone (BDEF1).
	SkinningRigid SkinningKind = iota

	// SkinningLinear2 blends two bones with one weight (BDEF2, and every PMD vertex).
	SkinningLinear2

	// SkinningLinear4 blends four bones with four weights (BDEF4).
	SkinningLinear4

	// SkinningSpherical is SDEF: two bones plus the C/R0/R1 sphere parameters.
	// Dual quaternion skinning already avoids the collapse SDEF corrects, so it resolves as Linear2.
	SkinningSpherical

	// SkinningDualQuat is QDEF: four bones blended as dual quaternions.
	SkinningDualQuat
)

// VertexSkinning is the tagged variant of a vertex's bone binding.
// Only the fields relevant to Kind are meaningful:
//   - Rigid: Bones[0]
//   - Linear2, Spherical: Bones[0..1], Weights[0] (Bones[1] receives 1-Weights[0])
//   - Linear4, DualQuat: Bones[0..3], Weights[0..3]
type VertexSkinning struct {
	Kind    SkinningKind
	Bones   [4]int32
	Weights [4]float32

	SdefC, SdefR0, SdefR1 mgl32.Vec3
}

// Rigid returns a single-bone binding.
func Rigid(bone int32) VertexSkinning {
	return VertexSkinning{Kind: SkinningRigid, Bones: [4]int32{bone, -1, -1, -1}, Weights: [4]float32{1}}
}

// Linear2 returns a two-bone binding where b0 receives weight w and b1 receives 1-w.
func Linear2(b0, b1 int32, w float32) VertexSkinning {
	return VertexSkinning{Kind: SkinningLinear2, Bones: [4]int32{b0, b1, -1, -1}, Weights: [4]float32{w, 1 - w}}
}

// Normalize resolves the variant into the four-bone, four-weight form consumed by the
// skinning stage. Weights sum to 1; unused or invalid slots carry bone 0 with weight 0.
// It is called once per vertex at load time so skinning never branches on Kind.
//
// Returns:
//   - [4]uint32: bone indices
//   - [4]float32: normalized weights
func (s VertexSkinning) Normalize() ([4]uint32, [4]float32) {
	var bones [4]int32
	var weights [4]float32
	switch s.Kind {
	case SkinningRigid:
		bones[0], weights[0] = s.Bones[0], 1
	case SkinningLinear2, SkinningSpherical:
		bones[0], bones[1] = s.Bones[0], s.Bones[1]
		weights[0], weights[1] = s.Weights[0], 1-s.Weights[0]
	default:
		bones = s.Bones
		weights = s.Weights
	}

	var sum float32
	for i := range 4 {
		if bones[i] < 0 || weights[i] <= 0 {
			bones[i], weights[i] = 0, 0
			continue
		}
		sum += weights[i]
	}

	var outBones [4]uint32
	var outWeights [4]float32
	if sum <= 0 {
		// Degenerate binding: pin to the first listed bone.
		if s.Bones[0] > 0 {
			outBones[0] = uint32(s.Bones[0])
		}
		outWeights[0] = 1
		return outBones, outWeights
	}
	for i := range 4 {
		outBones[i] = uint32(bones[i])
		outWeights[i] = weights[i] / sum
	}
	return outBones, outWeights
}
