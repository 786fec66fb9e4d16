package animator

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-mmd/common"
	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Hierarchy is the immutable bone tree of a model.
// It is built once per model and shared read-only by every instance playing it.
type Hierarchy struct {
	names         []string
	parents       []int
	children      [][]int
	order         []int
	restOffsets   []mgl32.Vec3
	toRootInverse []common.Transform
	axisLimits    []model.AxisLimit
	index         map[string]int

	nameHeuristics bool
}

// HierarchyBuilderOption is a functional option for configuring BuildHierarchy.
type HierarchyBuilderOption func(*Hierarchy)

// WithNameHeuristics is an option builder that controls whether knee constraints are inferred from bone names.
// Heuristics only apply to bones whose descriptor leaves AxisLimit at AxisLimitNone.
//
// Parameters:
//   - enabled: true to infer axis limits from names (the default)
//
// Returns:
//   - HierarchyBuilderOption: a function that applies the option to a hierarchy
func WithNameHeuristics(enabled bool) HierarchyBuilderOption {
	return func(h *Hierarchy) {
		h.nameHeuristics = enabled
	}
}

// BuildHierarchy validates a bone list and derives the parent/child structure, evaluation order,
// rest offsets and rest inverse transforms.
// Parents may be listed after their children; indices are validated in a first pass and
// child lists are derived in a second pass.
//
// Parameters:
//   - bones: the bone descriptors in model order
//   - options: optional HierarchyBuilderOption values
//
// Returns:
//   - *Hierarchy: the built hierarchy
//   - error: ErrEmptySkeleton, ErrParentOutOfRange or ErrHierarchyCycle wrapped with the offending bone
func BuildHierarchy(bones []model.BoneDescriptor, options ...HierarchyBuilderOption) (*Hierarchy, error) {
	n := len(bones)
	if n == 0 {
		return nil, ErrEmptySkeleton
	}

	h := &Hierarchy{
		names:          make([]string, n),
		parents:        make([]int, n),
		children:       make([][]int, n),
		order:          make([]int, 0, n),
		restOffsets:    make([]mgl32.Vec3, n),
		toRootInverse:  make([]common.Transform, n),
		axisLimits:     make([]model.AxisLimit, n),
		index:          make(map[string]int, n),
		nameHeuristics: true,
	}
	for _, opt := range options {
		opt(h)
	}

	for b, desc := range bones {
		p := desc.Parent
		if p < -1 || p >= n || p == b {
			return nil, fmt.Errorf("bone %d %q has parent %d: %w", b, desc.Name, p, ErrParentOutOfRange)
		}
		h.names[b] = desc.Name
		h.parents[b] = p
		if _, exists := h.index[desc.Name]; !exists {
			h.index[desc.Name] = b
		}
		h.axisLimits[b] = desc.AxisLimit
		if desc.AxisLimit == model.AxisLimitNone && h.nameHeuristics {
			h.axisLimits[b] = model.AxisLimitFromName(desc.Name)
		}
	}

	var roots []int
	for b, p := range h.parents {
		if p < 0 {
			roots = append(roots, b)
			continue
		}
		h.children[p] = append(h.children[p], b)
	}

	// Depth-first from the roots; anything left unvisited sits on a parent cycle.
	visited := make([]bool, n)
	stack := make([]int, 0, n)
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited[b] = true
		h.order = append(h.order, b)
		kids := h.children[b]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	if len(h.order) != n {
		for b := range visited {
			if !visited[b] {
				return nil, fmt.Errorf("bone %d %q: %w", b, bones[b].Name, ErrHierarchyCycle)
			}
		}
	}

	rest := make([]common.Transform, n)
	for _, b := range h.order {
		p := h.parents[b]
		if p < 0 {
			h.restOffsets[b] = bones[b].Position
			rest[b] = common.TranslationTransform(h.restOffsets[b])
		} else {
			h.restOffsets[b] = bones[b].Position.Sub(bones[p].Position)
			rest[b] = rest[p].Mul(common.TranslationTransform(h.restOffsets[b]))
		}
		h.toRootInverse[b] = rest[b].Inverse()
	}
	return h, nil
}

// Len returns the number of bones.
func (h *Hierarchy) Len() int {
	return len(h.parents)
}

// Name returns the name of bone b.
func (h *Hierarchy) Name(b int) string {
	return h.names[b]
}

// Parent returns the parent of bone b and whether it has one.
//
// Parameters:
//   - b: the bone index
//
// Returns:
//   - int: the parent index (-1 for roots)
//   - bool: false for root bones
func (h *Hierarchy) Parent(b int) (int, bool) {
	p := h.parents[b]
	return p, p >= 0
}

// Children returns the direct children of bone b in bone index order. The slice must not be modified.
func (h *Hierarchy) Children(b int) []int {
	return h.children[b]
}

// RestOffset returns the rest translation of bone b relative to its parent.
func (h *Hierarchy) RestOffset(b int) mgl32.Vec3 {
	return h.restOffsets[b]
}

// AxisLimit returns the IK rotation constraint of bone b.
func (h *Hierarchy) AxisLimit(b int) model.AxisLimit {
	return h.axisLimits[b]
}

// ToRootInverse returns the inverse of bone b's rest cumulative transform.
func (h *Hierarchy) ToRootInverse(b int) common.Transform {
	return h.toRootInverse[b]
}

// Order returns an evaluation order in which every parent precedes its children.
// The slice must not be modified.
func (h *Hierarchy) Order() []int {
	return h.order
}

// Index returns the index of the first bone with the given name.
//
// Parameters:
//   - name: the bone name
//
// Returns:
//   - int: the bone index
//   - bool: false if no bone has that name
func (h *Hierarchy) Index(name string) (int, bool) {
	b, ok := h.index[name]
	return b, ok
}

// IsAncestor reports whether a is a proper ancestor of b.
//
// Parameters:
//   - a: the candidate ancestor
//   - b: the descendant bone
//
// Returns:
//   - bool: true if a lies on the parent path of b
func (h *Hierarchy) IsAncestor(a, b int) bool {
	for p := h.parents[b]; p >= 0; p = h.parents[p] {
		if p == a {
			return true
		}
	}
	return false
}
