package animator

import (
	"errors"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-mmd/common"
	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

func TestBuildHierarchyForwardParent(t *testing.T) {
	bones := []model.BoneDescriptor{
		{Name: "hand", Position: mgl32.Vec3{2, 1, 0}, Parent: 1},
		{Name: "arm", Position: mgl32.Vec3{1, 1, 0}, Parent: 2},
		{Name: "center", Position: mgl32.Vec3{0, 1, 0}, Parent: -1},
	}
	h := mustHierarchy(t, bones)

	if got := h.Children(2); !slices.Equal(got, []int{1}) {
		t.Fatalf("Children(center) = %v, want [1]", got)
	}
	if got := h.Order(); !slices.Equal(got, []int{2, 1, 0}) {
		t.Fatalf("Order() = %v, want [2 1 0]", got)
	}
	if p, ok := h.Parent(2); ok || p != -1 {
		t.Fatalf("Parent(center) = %d, %v; want -1, false", p, ok)
	}
	if got := h.RestOffset(0); !common.Vec3ApproxEqual(got, mgl32.Vec3{1, 0, 0}, testEps) {
		t.Fatalf("RestOffset(hand) = %v, want [1 0 0]", got)
	}
	if got := h.RestOffset(2); !common.Vec3ApproxEqual(got, mgl32.Vec3{0, 1, 0}, testEps) {
		t.Fatalf("RestOffset(center) = %v, want [0 1 0]", got)
	}
	for b, desc := range bones {
		if got := h.ToRootInverse(b).TransformPoint(desc.Position); !common.Vec3ApproxEqual(got, mgl32.Vec3{}, testEps) {
			t.Errorf("ToRootInverse(%s) maps rest position to %v, want origin", desc.Name, got)
		}
	}
	if !h.IsAncestor(2, 0) || h.IsAncestor(0, 2) || h.IsAncestor(0, 0) {
		t.Fatal("IsAncestor returned wrong result")
	}
	if b, ok := h.Index("arm"); !ok || b != 1 {
		t.Fatalf("Index(arm) = %d, %v", b, ok)
	}
	if _, ok := h.Index("leg"); ok {
		t.Fatal("Index(leg) found a bone")
	}
}

func TestBuildHierarchyErrors(t *testing.T) {
	cases := []struct {
		name  string
		bones []model.BoneDescriptor
		want  error
	}{
		{"empty", nil, ErrEmptySkeleton},
		{"parent past end", []model.BoneDescriptor{{Name: "a", Parent: -1}, {Name: "b", Parent: 5}}, ErrParentOutOfRange},
		{"negative parent", []model.BoneDescriptor{{Name: "a", Parent: -2}}, ErrParentOutOfRange},
		{"self parent", []model.BoneDescriptor{{Name: "a", Parent: 0}}, ErrParentOutOfRange},
		{
			"cycle",
			[]model.BoneDescriptor{{Name: "root", Parent: -1}, {Name: "a", Parent: 2}, {Name: "b", Parent: 1}},
			ErrHierarchyCycle,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := BuildHierarchy(c.bones)
			if !errors.Is(err, c.want) {
				t.Fatalf("BuildHierarchy() error = %v, want %v", err, c.want)
			}
		})
	}
}

func TestBuildHierarchyAxisLimits(t *testing.T) {
	bones := []model.BoneDescriptor{
		{Name: "左足", Parent: -1},
		{Name: "左ひざ", Parent: 0},
		{Name: "custom", Parent: 1, AxisLimit: model.AxisLimitSingleAxisX},
	}
	h := mustHierarchy(t, bones)
	want := []model.AxisLimit{model.AxisLimitNone, model.AxisLimitSingleAxisX, model.AxisLimitSingleAxisX}
	for b, w := range want {
		if got := h.AxisLimit(b); got != w {
			t.Errorf("AxisLimit(%d) = %v, want %v", b, got, w)
		}
	}

	h = mustHierarchy(t, bones, WithNameHeuristics(false))
	if got := h.AxisLimit(1); got != model.AxisLimitNone {
		t.Errorf("AxisLimit(knee) without heuristics = %v, want None", got)
	}
	if got := h.AxisLimit(2); got != model.AxisLimitSingleAxisX {
		t.Errorf("explicit AxisLimit without heuristics = %v, want SingleAxisX", got)
	}
}
