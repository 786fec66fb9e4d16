package animator

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-mmd/common"
	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

func testMorphs() ([]model.MorphDefinition, []mgl32.Vec3) {
	base := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
	defs := []model.MorphDefinition{
		{Name: "base", VertexIndices: []uint32{0}, VertexDeltas: []mgl32.Vec3{{0, 0, 0.5}}},
		{Name: "a", VertexIndices: []uint32{0, 1}, VertexDeltas: []mgl32.Vec3{{0, 1, 0}, {0, 2, 0}}},
		{Name: "b", VertexIndices: []uint32{1, 2}, VertexDeltas: []mgl32.Vec3{{1, 0, 0}, {0, 0, 3}}},
	}
	return defs, base
}

func mustBlender(t *testing.T, options ...MorphBlenderBuilderOption) *MorphBlender {
	t.Helper()
	defs, base := testMorphs()
	m, err := NewMorphBlender(defs, base, options...)
	if err != nil {
		t.Fatalf("NewMorphBlender() error = %v", err)
	}
	return m
}

func assertPositions(t *testing.T, got, want []mgl32.Vec3) {
	t.Helper()
	for i := range want {
		if !common.Vec3ApproxEqual(got[i], want[i], 1e-5) {
			t.Fatalf("positions = %v, want %v", got, want)
		}
	}
}

func TestMorphBlenderInactiveLeavesBase(t *testing.T) {
	m := mustBlender(t)
	_, base := testMorphs()
	got, changed := m.Blend([]float32{1, 0, 0})
	if changed {
		t.Fatal("Blend() with zero weights reported a change")
	}
	assertPositions(t, got, base)
}

func TestMorphBlenderAdditive(t *testing.T) {
	m := mustBlender(t)
	got, changed := m.Blend([]float32{0, 0.5, 2})
	if !changed {
		t.Fatal("Blend() did not recompute")
	}
	// Base morph contributes once; 'a' at 0.5, 'b' at 2 (unclamped).
	want := []mgl32.Vec3{
		{0, 0.5, 0.5},
		{1 + 2, 1, 0},
		{2, 0, 6},
	}
	assertPositions(t, got, want)

	// Combined deltas equal the sum of each morph alone minus the duplicated base contribution.
	onlyA := mustBlender(t)
	onlyA.Blend([]float32{0, 0.5})
	onlyB := mustBlender(t)
	onlyB.Blend([]float32{0, 0, 2})
	baseDelta := mgl32.Vec3{0, 0, 0.5}
	for v := range want {
		sum := onlyA.Deltas()[v].Add(onlyB.Deltas()[v])
		if v == 0 {
			sum = sum.Sub(baseDelta)
		}
		if !common.Vec3ApproxEqual(sum, m.Deltas()[v], 1e-5) {
			t.Fatalf("vertex %d combined delta %v, want %v", v, m.Deltas()[v], sum)
		}
	}
}

func TestMorphBlenderDeadZone(t *testing.T) {
	m := mustBlender(t)
	first, changed := m.Blend([]float32{0, 0.5})
	if !changed {
		t.Fatal("first Blend() did not recompute")
	}
	snapshot := append([]mgl32.Vec3(nil), first...)

	second, changed := m.Blend([]float32{0, 0.5005})
	if changed {
		t.Fatal("Blend() inside the dead zone recomputed")
	}
	if &second[0] != &first[0] {
		t.Fatal("Blend() inside the dead zone returned a different buffer")
	}
	assertPositions(t, second, snapshot)

	// Drift is measured against the last applied weight, not the last requested one.
	if _, changed := m.Blend([]float32{0, 0.5009}); changed {
		t.Fatal("Blend() recomputed on accumulated sub-threshold drift")
	}
	if _, changed := m.Blend([]float32{0, 0.502}); !changed {
		t.Fatal("Blend() outside the dead zone did not recompute")
	}

	// Returning to zero is a change as well.
	got, changed := m.Blend(nil)
	if !changed {
		t.Fatal("Blend() back to rest did not recompute")
	}
	_, base := testMorphs()
	assertPositions(t, got, base)
}

func TestMorphBlenderWeightClamp(t *testing.T) {
	m := mustBlender(t, WithWeightClamp(true))
	got, _ := m.Blend([]float32{0, 0, 2})
	want := []mgl32.Vec3{{0, 0, 0.5}, {2, 0, 0}, {2, 0, 3}}
	assertPositions(t, got, want)
}

func TestNewMorphBlenderMalformed(t *testing.T) {
	base := []mgl32.Vec3{{}, {}}
	cases := []struct {
		name string
		def  model.MorphDefinition
	}{
		{"length mismatch", model.MorphDefinition{Name: "x", VertexIndices: []uint32{0, 1}, VertexDeltas: []mgl32.Vec3{{}}}},
		{"vertex out of range", model.MorphDefinition{Name: "x", VertexIndices: []uint32{2}, VertexDeltas: []mgl32.Vec3{{}}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewMorphBlender([]model.MorphDefinition{{Name: "base"}, c.def}, base)
			if !errors.Is(err, ErrMalformedMorph) {
				t.Fatalf("NewMorphBlender() error = %v, want ErrMalformedMorph", err)
			}
		})
	}
}
