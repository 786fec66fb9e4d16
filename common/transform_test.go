package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testTransform() Transform {
	return Transform{
		Rotation:    mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1}),
		Translation: mgl32.Vec3{1, 2, 3},
	}
}

func TestTransformMulAppliesRightFirst(t *testing.T) {
	a := testTransform()
	b := TranslationTransform(mgl32.Vec3{1, 0, 0})
	p := mgl32.Vec3{0, 1, 0}

	got := a.Mul(b).TransformPoint(p)
	want := a.TransformPoint(b.TransformPoint(p))
	if !Vec3ApproxEqual(got, want, 1e-5) {
		t.Fatalf("(a*b)(p) = %v, want a(b(p)) = %v", got, want)
	}
}

func TestTransformInverse(t *testing.T) {
	a := testTransform()
	if got := a.Mul(a.Inverse()); !got.ApproxEqual(IdentityTransform(), 1e-5) {
		t.Fatalf("a * a^-1 = %+v, want identity", got)
	}
	p := mgl32.Vec3{4, -1, 2}
	if got := a.InverseTransformPoint(a.TransformPoint(p)); !Vec3ApproxEqual(got, p, 1e-5) {
		t.Fatalf("InverseTransformPoint round trip = %v, want %v", got, p)
	}
}

func TestApproxEqualIsAbsolutePerComponent(t *testing.T) {
	tests := []struct {
		name string
		a, b mgl32.Vec3
		eps  float32
		want bool
	}{
		{"rounding near zero", mgl32.Vec3{1.19e-7, 1, 0}, mgl32.Vec3{0, 1, 0}, 1e-5, true},
		{"large magnitude off by one", mgl32.Vec3{1000, 0, 0}, mgl32.Vec3{1001, 0, 0}, 1e-3, false},
		{"large magnitude within eps", mgl32.Vec3{1000, 0, 0}, mgl32.Vec3{1000.0005, 0, 0}, 1e-3, true},
		{"one component outside", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 2e-5}, 1e-5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Vec3ApproxEqual(tt.a, tt.b, tt.eps); got != tt.want {
				t.Errorf("Vec3ApproxEqual(%v, %v, %g) = %v, want %v", tt.a, tt.b, tt.eps, got, tt.want)
			}
			ta, tb := TranslationTransform(tt.a), TranslationTransform(tt.b)
			if got := ta.ApproxEqual(tb, tt.eps); got != tt.want {
				t.Errorf("Transform.ApproxEqual(%v, %v, %g) = %v, want %v", tt.a, tt.b, tt.eps, got, tt.want)
			}
		})
	}

	if Vec4ApproxEqual(mgl32.Vec4{500, 0, 0, 0}, mgl32.Vec4{501, 0, 0, 0}, 1e-3) {
		t.Error("Vec4ApproxEqual accepted a difference of 1 at eps 1e-3")
	}
	tiny := mgl32.Quat{W: 1, V: mgl32.Vec3{1e-7, 0, 0}}
	if !QuatApproxEqual(tiny, mgl32.QuatIdent(), 1e-5) {
		t.Error("QuatApproxEqual rejected a rounding-size difference near zero")
	}
}

func TestQuatApproxEqualIgnoresSign(t *testing.T) {
	q := testTransform().Rotation
	if !QuatApproxEqual(q, q.Scale(-1), 1e-6) {
		t.Fatal("q and -q compared unequal")
	}
	if QuatApproxEqual(q, mgl32.QuatIdent(), 1e-3) {
		t.Fatal("distinct rotations compared equal")
	}
}

func TestSlerpShortest(t *testing.T) {
	a := mgl32.QuatIdent()
	b := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}).Scale(-1)
	got := SlerpShortest(a, b, 0.5)
	want := mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0})
	if !QuatApproxEqual(got, want, 1e-5) {
		t.Fatalf("SlerpShortest() = %v, want %v", got, want)
	}
}

func TestClampAndLerp(t *testing.T) {
	if Clamp(2, 0, 1) != 1 || Clamp(-1, 0, 1) != 0 || Clamp(0.25, 0, 1) != 0.25 {
		t.Fatal("Clamp out of range")
	}
	if Lerp(2, 4, 0.25) != 2.5 {
		t.Fatalf("Lerp(2, 4, 0.25) = %v", Lerp(2, 4, 0.25))
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "b", "c"); got != "b" {
		t.Fatalf("Coalesce() = %q, want b", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Fatalf("Coalesce(zeros) = %d", got)
	}
}

func TestSliceToBytes(t *testing.T) {
	if SliceToBytes([]uint32{}) != nil {
		t.Fatal("SliceToBytes(empty) != nil")
	}
	if got := SliceToBytes([]uint32{1, 2}); len(got) != 8 {
		t.Fatalf("len(SliceToBytes) = %d, want 8", len(got))
	}
}
