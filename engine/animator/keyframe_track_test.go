package animator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-mmd/common"
	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

func boneKey(frame int32, tx float32, rot mgl32.Quat) model.BoneKeyFrame {
	return model.BoneKeyFrame{
		Frame:       frame,
		Translation: mgl32.Vec3{tx, 0, 0},
		Rotation:    rot,
		Bezier:      model.DefaultBezier(),
	}
}

func TestEvalBezier(t *testing.T) {
	linear := model.DefaultBezier()[0]
	for _, u := range []float32{0, 0.1, 0.5, 0.9, 1} {
		if got := EvalBezier(linear, u); !nearlyEqual(got, u, 1e-6) {
			t.Errorf("linear EvalBezier(%v) = %v", u, got)
		}
	}

	easeIn := mgl32.Vec4{1, 0, 1, 0}
	if got := EvalBezier(easeIn, 0.5); got >= 0.1 {
		t.Errorf("ease-in EvalBezier(0.5) = %v, want < 0.1", got)
	}
	if got := EvalBezier(easeIn, -1); got != 0 {
		t.Errorf("EvalBezier(-1) = %v, want 0", got)
	}
	if got := EvalBezier(easeIn, 2); got != 1 {
		t.Errorf("EvalBezier(2) = %v, want 1", got)
	}

	prev := float32(0)
	for i := 1; i <= 20; i++ {
		got := EvalBezier(easeIn, float32(i)/20)
		if got < prev-1e-5 {
			t.Fatalf("EvalBezier not monotonic at %d: %v < %v", i, got, prev)
		}
		prev = got
	}
}

func TestBoneTrackEmpty(t *testing.T) {
	tr := NewBoneTrack(nil)
	assertTransform(t, "Interpolate", tr.Interpolate(12), common.IdentityTransform())
}

func TestBoneTrackClampsOutsideRange(t *testing.T) {
	rot := mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0})
	tr := NewBoneTrack([]model.BoneKeyFrame{
		boneKey(10, 1, mgl32.QuatIdent()),
		boneKey(20, 3, rot),
	})

	before := tr.Interpolate(-5)
	assertTransform(t, "before first key", before, common.Transform{Rotation: mgl32.QuatIdent(), Translation: mgl32.Vec3{1, 0, 0}})

	at := tr.Interpolate(20)
	assertTransform(t, "at last key", at, common.Transform{Rotation: rot, Translation: mgl32.Vec3{3, 0, 0}})

	after := tr.Interpolate(1000)
	assertTransform(t, "after last key", after, common.Transform{Rotation: rot, Translation: mgl32.Vec3{3, 0, 0}})
}

func TestBoneTrackInterpolatesSegment(t *testing.T) {
	tr := NewBoneTrack([]model.BoneKeyFrame{
		boneKey(10, 10, mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})),
		boneKey(0, 0, mgl32.QuatIdent()),
	})
	got := tr.Interpolate(5)
	want := common.Transform{
		Rotation:    mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0}),
		Translation: mgl32.Vec3{5, 0, 0},
	}
	assertTransform(t, "Interpolate(5)", got, want)
}

func TestBoneTrackPerChannelCurves(t *testing.T) {
	k1 := model.BoneKeyFrame{Frame: 10, Translation: mgl32.Vec3{1, 1, 1}, Rotation: mgl32.QuatIdent(), Bezier: model.DefaultBezier()}
	k1.Bezier[model.BezierY] = mgl32.Vec4{1, 0, 1, 0}
	tr := NewBoneTrack([]model.BoneKeyFrame{{Frame: 0, Rotation: mgl32.QuatIdent()}, k1})

	got := tr.Interpolate(5).Translation
	if !nearlyEqual(got.X(), 0.5, testEps) || !nearlyEqual(got.Z(), 0.5, testEps) {
		t.Fatalf("linear channels = %v, want 0.5", got)
	}
	if got.Y() >= 0.1 {
		t.Fatalf("eased Y channel = %v, want < 0.1", got.Y())
	}
}

func TestBoneTrackShortestArc(t *testing.T) {
	q := mgl32.QuatRotate(mgl32.DegToRad(20), mgl32.Vec3{1, 0, 0})
	tr := NewBoneTrack([]model.BoneKeyFrame{
		boneKey(0, 0, mgl32.QuatIdent()),
		boneKey(10, 0, q.Scale(-1)),
	})
	got := tr.Interpolate(5).Rotation
	want := mgl32.QuatRotate(mgl32.DegToRad(10), mgl32.Vec3{1, 0, 0})
	if !common.QuatApproxEqual(got, want, testEps) {
		t.Fatalf("rotation = %v, want %v", got, want)
	}
}

func TestBoneTrackStableSort(t *testing.T) {
	tr := NewBoneTrack([]model.BoneKeyFrame{
		boneKey(5, 1, mgl32.QuatIdent()),
		boneKey(0, 0, mgl32.QuatIdent()),
		boneKey(5, 2, mgl32.QuatIdent()),
	})
	keys := tr.Keys()
	if keys[0].Frame != 0 || keys[1].Translation.X() != 1 || keys[2].Translation.X() != 2 {
		t.Fatalf("keys not stably sorted: %+v", keys)
	}
	if got := tr.Interpolate(5).Translation.X(); got != 2 {
		t.Fatalf("Interpolate at duplicate frame = %v, want last inserted key 2", got)
	}
}

func TestMorphTrackInterpolate(t *testing.T) {
	if got := NewMorphTrack(nil).Interpolate(3); got != 0 {
		t.Fatalf("empty Interpolate = %v, want 0", got)
	}
	tr := NewMorphTrack([]model.MorphKeyFrame{{Frame: 10, Weight: 1}, {Frame: 0, Weight: 0}})
	cases := []struct {
		t, want float32
	}{
		{-1, 0}, {0, 0}, {2.5, 0.25}, {10, 1}, {50, 1},
	}
	for _, c := range cases {
		if got := tr.Interpolate(c.t); !nearlyEqual(got, c.want, 1e-6) {
			t.Errorf("Interpolate(%v) = %v, want %v", c.t, got, c.want)
		}
	}
}
