package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a rigid transform (rotation followed by translation, no scale).
// A point p is mapped to Rotation.Rotate(p) + Translation.
type Transform struct {
	// Rotation is the orientation as a unit quaternion.
	Rotation mgl32.Quat

	// Translation is the position offset applied after rotation.
	Translation mgl32.Vec3
}

// IdentityTransform returns the transform that maps every point to itself.
//
// Returns:
//   - Transform: identity rotation with zero translation
func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent()}
}

// TranslationTransform returns a pure translation.
//
// Parameters:
//   - t: the translation
//
// Returns:
//   - Transform: identity rotation with translation t
func TranslationTransform(t mgl32.Vec3) Transform {
	return Transform{Rotation: mgl32.QuatIdent(), Translation: t}
}

// Mul composes two transforms so that the result applies b first and then a.
// Rotations are composed and b's translation is rotated by a before a's translation is added.
//
// Parameters:
//   - b: the transform applied first
//
// Returns:
//   - Transform: a ⊗ b
func (a Transform) Mul(b Transform) Transform {
	return Transform{
		Rotation:    a.Rotation.Mul(b.Rotation),
		Translation: a.Rotation.Rotate(b.Translation).Add(a.Translation),
	}
}

// Inverse returns the transform that undoes a. The rotation is assumed to be unit length.
//
// Returns:
//   - Transform: the inverse transform
func (a Transform) Inverse() Transform {
	inv := a.Rotation.Conjugate()
	return Transform{
		Rotation:    inv,
		Translation: inv.Rotate(a.Translation).Mul(-1),
	}
}

// TransformPoint maps a point through the transform.
//
// Parameters:
//   - p: the point to transform
//
// Returns:
//   - mgl32.Vec3: the transformed point
func (a Transform) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return a.Rotation.Rotate(p).Add(a.Translation)
}

// InverseTransformPoint maps a point from the transform's target space back into its source space.
//
// Parameters:
//   - p: the point to transform
//
// Returns:
//   - mgl32.Vec3: the point expressed in the transform's local space
func (a Transform) InverseTransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return a.Rotation.Conjugate().Rotate(p.Sub(a.Translation))
}

// ApproxEqual reports whether two transforms map points identically within eps.
// Quaternions q and -q describe the same rotation and compare equal.
//
// Parameters:
//   - b: the transform to compare against
//   - eps: the per-component tolerance
//
// Returns:
//   - bool: true if rotations and translations match within eps
func (a Transform) ApproxEqual(b Transform, eps float32) bool {
	return Vec3ApproxEqual(a.Translation, b.Translation, eps) && QuatApproxEqual(a.Rotation, b.Rotation, eps)
}

// QuatApproxEqual compares two rotations component-wise, treating q and -q as equal.
//
// Parameters:
//   - a, b: the quaternions to compare
//   - eps: the per-component tolerance
//
// Returns:
//   - bool: true if a and b describe the same rotation within eps
func QuatApproxEqual(a, b mgl32.Quat, eps float32) bool {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.Abs(a.W-b.W) <= eps && Vec3ApproxEqual(a.V, b.V, eps)
}

// Vec3ApproxEqual reports whether every component of a and b differs by at most eps.
// Unlike mgl32's ApproxEqualThreshold the tolerance is absolute.
//
// Parameters:
//   - a, b: the vectors to compare
//   - eps: the per-component tolerance
//
// Returns:
//   - bool: true if all components match within eps
func Vec3ApproxEqual(a, b mgl32.Vec3, eps float32) bool {
	for i := range a {
		if mgl32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// Vec4ApproxEqual is Vec3ApproxEqual for four components.
func Vec4ApproxEqual(a, b mgl32.Vec4, eps float32) bool {
	for i := range a {
		if mgl32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// Clamp limits v to the closed range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo, hi: the range bounds
//
// Returns:
//   - float32: the clamped value
func Clamp(v, lo, hi float32) float32 {
	return float32(math.Max(float64(lo), math.Min(float64(hi), float64(v))))
}
