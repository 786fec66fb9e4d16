package animator

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-mmd/common"
	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMorphDeadZone is the weight change below which a morph is not considered dirty.
const DefaultMorphDeadZone float32 = 0.001

// MorphBlender accumulates weighted vertex morphs on top of the base positions.
// Index 0 of the definitions is the base morph: it carries no weight of its own and is
// added once whenever any other morph is active.
type MorphBlender struct {
	defs     []model.MorphDefinition
	base     []mgl32.Vec3
	deltas   []mgl32.Vec3
	output   []mgl32.Vec3
	applied  []float32
	deadZone float32
	clamp    bool
}

// MorphBlenderBuilderOption is a functional option for configuring a MorphBlender via NewMorphBlender.
type MorphBlenderBuilderOption func(*MorphBlender)

// WithDeadZone is an option builder that sets the weight change threshold for recomputation.
//
// Parameters:
//   - eps: the dead zone (default DefaultMorphDeadZone)
//
// Returns:
//   - MorphBlenderBuilderOption: a function that applies the dead zone option to a blender
func WithDeadZone(eps float32) MorphBlenderBuilderOption {
	return func(m *MorphBlender) {
		m.deadZone = eps
	}
}

// WithWeightClamp is an option builder that clamps weights to [0, 1] before blending.
// Weights are used as authored by default.
//
// Parameters:
//   - clamp: true to clamp weights
//
// Returns:
//   - MorphBlenderBuilderOption: a function that applies the clamp option to a blender
func WithWeightClamp(clamp bool) MorphBlenderBuilderOption {
	return func(m *MorphBlender) {
		m.clamp = clamp
	}
}

// NewMorphBlender validates the morph definitions and allocates the blend buffers.
//
// Parameters:
//   - defs: the morph definitions, base morph first
//   - base: the undeformed vertex positions
//   - options: optional MorphBlenderBuilderOption values
//
// Returns:
//   - *MorphBlender: the blender, with its output initialised to base
//   - error: ErrMalformedMorph wrapped with the failing morph
func NewMorphBlender(defs []model.MorphDefinition, base []mgl32.Vec3, options ...MorphBlenderBuilderOption) (*MorphBlender, error) {
	for i, d := range defs {
		if len(d.VertexIndices) != len(d.VertexDeltas) {
			return nil, fmt.Errorf("morph %d %q has %d indices and %d deltas: %w",
				i, d.Name, len(d.VertexIndices), len(d.VertexDeltas), ErrMalformedMorph)
		}
		for _, v := range d.VertexIndices {
			if int(v) >= len(base) {
				return nil, fmt.Errorf("morph %d %q references vertex %d of %d: %w",
					i, d.Name, v, len(base), ErrMalformedMorph)
			}
		}
	}

	m := &MorphBlender{
		defs:     defs,
		base:     base,
		deltas:   make([]mgl32.Vec3, len(base)),
		output:   make([]mgl32.Vec3, len(base)),
		applied:  make([]float32, len(defs)),
		deadZone: DefaultMorphDeadZone,
	}
	for _, opt := range options {
		opt(m)
	}
	copy(m.output, base)
	return m, nil
}

// MorphCount returns the number of morph definitions, including the base morph.
func (m *MorphBlender) MorphCount() int {
	return len(m.defs)
}

// Blend applies the weights and returns the morphed positions.
// weights[i] is the weight of morph i; weights[0] is ignored and missing entries count as 0.
// When no non-base weight moved by at least the dead zone since the last recomputation the previous
// buffer is returned untouched.
//
// Parameters:
//   - weights: the morph weights indexed like the definitions
//
// Returns:
//   - []mgl32.Vec3: the morphed positions (the same slice across calls)
//   - bool: true if the positions were recomputed
func (m *MorphBlender) Blend(weights []float32) ([]mgl32.Vec3, bool) {
	if !m.dirty(weights) {
		return m.output, false
	}

	clear(m.deltas)
	active := false
	for i := 1; i < len(m.defs); i++ {
		w := m.weight(weights, i)
		m.applied[i] = w
		if w == 0 {
			continue
		}
		active = true
		d := &m.defs[i]
		for j, v := range d.VertexIndices {
			m.deltas[v] = m.deltas[v].Add(d.VertexDeltas[j].Mul(w))
		}
	}
	if active && len(m.defs) > 0 {
		d := &m.defs[0]
		for j, v := range d.VertexIndices {
			m.deltas[v] = m.deltas[v].Add(d.VertexDeltas[j])
		}
	}

	for i := range m.output {
		m.output[i] = m.base[i].Add(m.deltas[i])
	}
	return m.output, true
}

// Deltas returns the accumulated per-vertex offsets from the last recomputation.
func (m *MorphBlender) Deltas() []mgl32.Vec3 {
	return m.deltas
}

// Positions returns the morphed positions from the last recomputation.
func (m *MorphBlender) Positions() []mgl32.Vec3 {
	return m.output
}

func (m *MorphBlender) weight(weights []float32, i int) float32 {
	if i >= len(weights) {
		return 0
	}
	if m.clamp {
		return common.Clamp(weights[i], 0, 1)
	}
	return weights[i]
}

func (m *MorphBlender) dirty(weights []float32) bool {
	for i := 1; i < len(m.defs); i++ {
		if mgl32.Abs(m.weight(weights, i)-m.applied[i]) >= m.deadZone {
			return true
		}
	}
	return false
}
