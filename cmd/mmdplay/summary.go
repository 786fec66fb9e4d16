package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/Carmen-Shannon/oxy-mmd/engine/animator"
	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/num/dualquat"
)

// maxListedMorphs caps the morph weight listing.
const maxListedMorphs = 8

// skinnedBounds skins every vertex on the CPU with the same dual-quaternion blend the GPU
// stage runs and returns the axis-aligned bounds of the result.
func skinnedBounds(vertices []model.Vertex, positions []mgl32.Vec3, skin []dualquat.Number) (lo, hi mgl32.Vec3) {
	for i, v := range vertices {
		bones, weights := v.Skinning.Normalize()
		p := animator.TransformPointDualQuat(animator.BlendDualQuats(skin, bones, weights), positions[i])
		if i == 0 {
			lo, hi = p, p
			continue
		}
		for c := range 3 {
			lo[c] = min(lo[c], p[c])
			hi[c] = max(hi[c], p[c])
		}
	}
	return lo, hi
}

func writeSummary(w io.Writer, m model.Model, a animator.Animator) error {
	h := a.Hierarchy()
	pose := a.CumulativePose()

	if _, err := fmt.Fprintf(w, "model %q (radius %.3f) at frame %.2f / %.0f\n", m.Name(), m.BoundingRadius(), a.Frame(), a.MaxFrame()); err != nil {
		return err
	}

	// Roots and IK targets are the bones whose placement tells the most about a pose.
	listed := make(map[int]bool)
	for b := range h.Len() {
		if _, hasParent := h.Parent(b); !hasParent {
			listed[b] = true
		}
	}
	for _, c := range m.Skeleton().IKChains {
		listed[c.Target] = true
	}
	bones := make([]int, 0, len(listed))
	for b := range listed {
		bones = append(bones, b)
	}
	sort.Ints(bones)
	for _, b := range bones {
		t := pose[b]
		if _, err := fmt.Fprintf(w, "  bone %-16q pos (%7.3f %7.3f %7.3f) rot (%6.3f %6.3f %6.3f %6.3f)\n",
			h.Name(b), t.Translation.X(), t.Translation.Y(), t.Translation.Z(),
			t.Rotation.V.X(), t.Rotation.V.Y(), t.Rotation.V.Z(), t.Rotation.W); err != nil {
			return err
		}
	}

	weights := a.MorphWeights()
	morphs := m.Morphs()
	listedMorphs := 0
	for i, wgt := range weights {
		if i == 0 || wgt == 0 || listedMorphs == maxListedMorphs {
			continue
		}
		listedMorphs++
		if _, err := fmt.Fprintf(w, "  morph %-16q weight %.3f\n", morphs[i].Name, wgt); err != nil {
			return err
		}
	}

	if vertices := m.Vertices(); len(vertices) > 0 {
		lo, hi := skinnedBounds(vertices, a.MorphedPositions(), a.SkinningTransforms())
		if _, err := fmt.Fprintf(w, "  skinned bounds (%.3f %.3f %.3f) - (%.3f %.3f %.3f)\n",
			lo.X(), lo.Y(), lo.Z(), hi.X(), hi.Y(), hi.Z()); err != nil {
			return err
		}
	}
	return nil
}
