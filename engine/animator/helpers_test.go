package animator

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-mmd/common"
	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

const testEps = 1e-4

func nearlyEqual(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func finiteQuat(q mgl32.Quat) bool {
	for _, v := range []float32{q.W, q.V[0], q.V[1], q.V[2]} {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return true
}

// legBones is a three-bone straight leg pointing down -Y plus a free-standing goal bone.
func legBones(upper, lower, end string, goal mgl32.Vec3) []model.BoneDescriptor {
	return []model.BoneDescriptor{
		{Name: upper, Position: mgl32.Vec3{0, 0, 0}, Parent: -1},
		{Name: lower, Position: mgl32.Vec3{0, -1, 0}, Parent: 0},
		{Name: end, Position: mgl32.Vec3{0, -2, 0}, Parent: 1},
		{Name: "goal", Position: goal, Parent: -1},
	}
}

func mustHierarchy(t *testing.T, bones []model.BoneDescriptor, options ...HierarchyBuilderOption) *Hierarchy {
	t.Helper()
	h, err := BuildHierarchy(bones, options...)
	if err != nil {
		t.Fatalf("BuildHierarchy() error = %v", err)
	}
	return h
}

func assertTransform(t *testing.T, what string, got, want common.Transform) {
	t.Helper()
	if !got.ApproxEqual(want, testEps) {
		t.Fatalf("%s = %+v, want %+v", what, got, want)
	}
}
