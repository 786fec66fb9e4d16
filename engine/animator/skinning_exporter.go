package animator

import (
	"github.com/Carmen-Shannon/oxy-mmd/common"
	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// ExportSkinning converts the pose into one skinning dual quaternion per bone.
// Each bone's skin transform is its cumulative transform composed with its rest inverse, so a
// rest pose exports identity for every bone. out is reused when it has enough capacity.
//
// Parameters:
//   - h: the hierarchy
//   - p: the pose with current cumulative transforms
//   - out: an optional destination buffer
//
// Returns:
//   - []dualquat.Number: the skinning transforms indexed like the bones
func ExportSkinning(h *Hierarchy, p *Pose, out []dualquat.Number) []dualquat.Number {
	n := h.Len()
	if cap(out) < n {
		out = make([]dualquat.Number, n)
	}
	out = out[:n]
	for b := range n {
		out[b] = TransformToDualQuat(p.Cumulative[b].Mul(h.ToRootInverse(b)))
	}
	return out
}

// TransformToDualQuat encodes a rigid transform as a unit dual quaternion.
// The real part is the rotation and the dual part is half the translation times the rotation.
//
// Parameters:
//   - t: the transform to encode
//
// Returns:
//   - dualquat.Number: the dual quaternion
func TransformToDualQuat(t common.Transform) dualquat.Number {
	r := t.Rotation.Normalize()
	rq := quat.Number{
		Real: float64(r.W),
		Imag: float64(r.V[0]),
		Jmag: float64(r.V[1]),
		Kmag: float64(r.V[2]),
	}
	return dualquat.Number{
		Real: rq,
		Dual: quat.Scale(0.5, quat.Mul(raise(t.Translation), rq)),
	}
}

// DualQuatTranslation recovers the translation encoded in a unit dual quaternion.
//
// Parameters:
//   - dq: the dual quaternion
//
// Returns:
//   - mgl32.Vec3: the translation
func DualQuatTranslation(dq dualquat.Number) mgl32.Vec3 {
	t := quat.Scale(2, quat.Mul(dq.Dual, quat.Conj(dq.Real)))
	return mgl32.Vec3{float32(t.Imag), float32(t.Jmag), float32(t.Kmag)}
}

// DualQuatRotation returns the rotation part of a dual quaternion as an mgl32 quaternion.
func DualQuatRotation(dq dualquat.Number) mgl32.Quat {
	return mgl32.Quat{
		W: float32(dq.Real.Real),
		V: mgl32.Vec3{float32(dq.Real.Imag), float32(dq.Real.Jmag), float32(dq.Real.Kmag)},
	}
}

// TransformPointDualQuat applies a unit dual quaternion to a point.
//
// Parameters:
//   - dq: the transform
//   - p: the point
//
// Returns:
//   - mgl32.Vec3: the transformed point
func TransformPointDualQuat(dq dualquat.Number, p mgl32.Vec3) mgl32.Vec3 {
	point := dualquat.Number{Real: quat.Number{Real: 1}, Dual: raise(p)}
	pp := dualquat.Mul(dualquat.Mul(dq, point), dualquat.Conj(dq))
	return mgl32.Vec3{float32(pp.Dual.Imag), float32(pp.Dual.Jmag), float32(pp.Dual.Kmag)}
}

// BlendDualQuats performs dual quaternion linear blending of up to four bone transforms.
// Each contribution is flipped into the hemisphere of the first bone before summing and the
// result is normalized by the length of its real part.
//
// Parameters:
//   - dqs: the per-bone skinning transforms
//   - bones: the influencing bone indices
//   - weights: the blend weights, expected to sum to 1
//
// Returns:
//   - dualquat.Number: the blended unit dual quaternion
func BlendDualQuats(dqs []dualquat.Number, bones [4]uint32, weights [4]float32) dualquat.Number {
	var sum dualquat.Number
	var pivot quat.Number
	havePivot := false
	for i := range 4 {
		w := float64(weights[i])
		if w == 0 || int(bones[i]) >= len(dqs) {
			continue
		}
		dq := dqs[bones[i]]
		if !havePivot {
			pivot, havePivot = dq.Real, true
		} else if quatDot(pivot, dq.Real) < 0 {
			w = -w
		}
		sum.Real = quat.Add(sum.Real, quat.Scale(w, dq.Real))
		sum.Dual = quat.Add(sum.Dual, quat.Scale(w, dq.Dual))
	}

	norm := quat.Abs(sum.Real)
	if norm == 0 {
		return dualquat.Number{Real: quat.Number{Real: 1}}
	}
	return dualquat.Number{
		Real: quat.Scale(1/norm, sum.Real),
		Dual: quat.Scale(1/norm, sum.Dual),
	}
}

func raise(v mgl32.Vec3) quat.Number {
	return quat.Number{Imag: float64(v[0]), Jmag: float64(v[1]), Kmag: float64(v[2])}
}

func quatDot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}
