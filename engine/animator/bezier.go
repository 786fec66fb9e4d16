package animator

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	bezierIterations = 24
	bezierEpsilon    = 1e-5
)

// EvalBezier remaps a normalized segment time through an MMD easing curve.
// The curve runs from (0,0) to (1,1) with control points (x1,y1) and (x2,y2) packed into curve.
// The curve parameter s with Bx(s) = u is found by bisection and By(s) is returned.
//
// Parameters:
//   - curve: the control points as (x1, y1, x2, y2)
//   - u: the normalized time in [0, 1]; values outside are clamped
//
// Returns:
//   - float32: the eased progress
func EvalBezier(curve mgl32.Vec4, u float32) float32 {
	if u <= 0 {
		return 0
	}
	if u >= 1 {
		return 1
	}
	x1, y1, x2, y2 := curve[0], curve[1], curve[2], curve[3]
	if x1 == y1 && x2 == y2 {
		return u
	}

	lo, hi := float32(0), float32(1)
	s := u
	for range bezierIterations {
		x := bezierAxis(x1, x2, s) - u
		if mgl32.Abs(x) < bezierEpsilon {
			break
		}
		if x > 0 {
			hi = s
		} else {
			lo = s
		}
		s = (lo + hi) * 0.5
	}
	return bezierAxis(y1, y2, s)
}

// bezierAxis evaluates one coordinate of the cubic with endpoints 0 and 1.
func bezierAxis(p1, p2, s float32) float32 {
	inv := 1 - s
	return 3*inv*inv*s*p1 + 3*inv*s*s*p2 + s*s*s
}
