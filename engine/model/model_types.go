package model

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tiendc/go-deepcopy"
)

// --- Skeleton Types ---

// AxisLimit is the rotation constraint applied to a bone while it is an IK link.
type AxisLimit int

const (
	// AxisLimitNone leaves the link free to rotate about any axis.
	AxisLimitNone AxisLimit = iota

	// AxisLimitSingleAxisX restricts the link to a rotation about its local X axis (human knee).
	AxisLimitSingleAxisX
)

// String returns a readable name for the axis limit.
func (a AxisLimit) String() string {
	switch a {
	case AxisLimitSingleAxisX:
		return "SingleAxisX"
	default:
		return "None"
	}
}

// kneeNames are the bone name fragments that identify one-DOF knee joints in MMD models.
var kneeNames = []string{"knee", "ひざ", "膝"}

// AxisLimitFromName derives the IK axis limit from MMD bone naming conventions.
// It is evaluated once when a skeleton is built, never during IK iterations.
//
// Parameters:
//   - name: the bone name
//
// Returns:
//   - AxisLimit: AxisLimitSingleAxisX for knee bones, AxisLimitNone otherwise
func AxisLimitFromName(name string) AxisLimit {
	lower := strings.ToLower(name)
	for _, k := range kneeNames {
		if strings.Contains(lower, k) {
			return AxisLimitSingleAxisX
		}
	}
	return AxisLimitNone
}

// BoneDescriptor is a bone as produced by a model reader.
type BoneDescriptor struct {
	// Name is the bone's identifier, matched against motion track names.
	Name string

	// Position is the bone's absolute rest position in model space.
	Position mgl32.Vec3

	// Parent is the index of the parent bone, or -1 for root bones.
	// Parents may appear after their children in the bone list.
	Parent int

	// AxisLimit overrides the name heuristic when set to anything other than AxisLimitNone.
	AxisLimit AxisLimit
}

// IKChain describes one CCD inverse-kinematics problem.
type IKChain struct {
	// Effector is the bone whose world position is the fixed goal (the "IK bone" in MMD terms).
	Effector int

	// Target is the end bone driven toward the effector.
	Target int

	// Links are the bones rotated by the solver, nearest to the target first.
	Links []int

	// MaxIterations is the number of CCD sweeps over the links.
	MaxIterations uint32

	// AngleLimit is the per-link rotation limit in radians before chain-position scaling.
	AngleLimit float32
}

// Skeleton is the static description of a model's bones and IK chains.
type Skeleton struct {
	// Bones is the ordered bone list.
	Bones []BoneDescriptor

	// IKChains are solved in order every frame.
	IKChains []IKChain
}

// BoneIndex returns the index of the first bone with the given name.
//
// Parameters:
//   - name: the bone name to search for
//
// Returns:
//   - int: the bone index, or -1 if not found
func (s *Skeleton) BoneIndex(name string) int {
	for i, b := range s.Bones {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// --- Animation Types ---

// Bezier channel indices into BoneKeyFrame.Bezier.
const (
	BezierX = iota
	BezierY
	BezierZ
	BezierRotation
)

// BoneKeyFrame is a single bone pose sample.
type BoneKeyFrame struct {
	// Frame is the sample time in ticks (30 per second in MMD content).
	Frame int32

	// Translation is the offset from the bone's rest offset.
	Translation mgl32.Vec3

	// Rotation is the bone's local rotation.
	Rotation mgl32.Quat

	// Bezier holds (x1, y1, x2, y2) control points per channel (X, Y, Z, rotation)
	// for the segment that ends at this key.
	Bezier [4]mgl32.Vec4
}

// MorphKeyFrame is a single morph weight sample.
type MorphKeyFrame struct {
	// Frame is the sample time in ticks.
	Frame int32

	// Weight is the morph weight. Values outside [0, 1] are kept as authored.
	Weight float32
}

// BoneTrackData is the keyframe list for one named bone, in file order.
type BoneTrackData struct {
	Name string
	Keys []BoneKeyFrame
}

// MorphTrackData is the keyframe list for one named morph, in file order.
type MorphTrackData struct {
	Name string
	Keys []MorphKeyFrame
}

// Motion is a set of named bone and morph tracks.
type Motion struct {
	// Name is the motion identifier (the target model name in VMD files).
	Name string

	// BoneTracks are matched to skeleton bones by exact name.
	BoneTracks []BoneTrackData

	// MorphTracks are matched to morph definitions by exact name.
	MorphTracks []MorphTrackData
}

// MaxFrame returns the largest keyframe time across all tracks.
//
// Returns:
//   - int32: the last frame of the motion, or 0 for an empty motion
func (m *Motion) MaxFrame() int32 {
	var last int32
	for _, tr := range m.BoneTracks {
		for _, k := range tr.Keys {
			last = max(last, k.Frame)
		}
	}
	for _, tr := range m.MorphTracks {
		for _, k := range tr.Keys {
			last = max(last, k.Frame)
		}
	}
	return last
}

// Clone returns a deep copy of the motion that shares no slices with m.
//
// Returns:
//   - *Motion: the independent copy
//   - error: error if the copy fails
func (m *Motion) Clone() (*Motion, error) {
	var out Motion
	if err := deepcopy.Copy(&out, m); err != nil {
		return nil, fmt.Errorf("clone motion %q: %w", m.Name, err)
	}
	return &out, nil
}

// Shift moves every keyframe by offset frames. Keys that would land before frame 0 are clamped to 0.
func (m *Motion) Shift(offset int32) {
	for i := range m.BoneTracks {
		for k := range m.BoneTracks[i].Keys {
			m.BoneTracks[i].Keys[k].Frame = max(m.BoneTracks[i].Keys[k].Frame+offset, 0)
		}
	}
	for i := range m.MorphTracks {
		for k := range m.MorphTracks[i].Keys {
			m.MorphTracks[i].Keys[k].Frame = max(m.MorphTracks[i].Keys[k].Frame+offset, 0)
		}
	}
}

// DefaultBezier returns the linear interpolation curve MMD writes for untouched keys.
//
// Returns:
//   - [4]mgl32.Vec4: the same linear curve for all four channels
func DefaultBezier() [4]mgl32.Vec4 {
	lin := mgl32.Vec4{20.0 / 127, 20.0 / 127, 107.0 / 127, 107.0 / 127}
	return [4]mgl32.Vec4{lin, lin, lin, lin}
}

// DecodeBezier converts the 64 raw VMD interpolation bytes into per-channel control points.
// Channel c reads bytes c, 4+c, 8+c and 12+c as signed values scaled by 1/127.
//
// Parameters:
//   - interp: the raw interpolation block of a VMD bone key
//
// Returns:
//   - [4]mgl32.Vec4: (x1, y1, x2, y2) for X, Y, Z and rotation
func DecodeBezier(interp [64]byte) [4]mgl32.Vec4 {
	var out [4]mgl32.Vec4
	for c := range 4 {
		out[c] = mgl32.Vec4{
			float32(int8(interp[c])) / 127,
			float32(int8(interp[4+c])) / 127,
			float32(int8(interp[8+c])) / 127,
			float32(int8(interp[12+c])) / 127,
		}
	}
	return out
}

// --- Morph Types ---

// MorphDefinition is a named set of per-vertex position deltas.
// Index 0 of a model's morph list is the base morph.
type MorphDefinition struct {
	Name string

	// VertexIndices index into the model's vertex buffer.
	VertexIndices []uint32

	// VertexDeltas are parallel to VertexIndices.
	VertexDeltas []mgl32.Vec3
}

// --- Import Types ---

// Vertex is a mesh vertex as produced by a model reader.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Skinning VertexSkinning
}

// ImportedModel is what model readers produce before it becomes a Model.
type ImportedModel struct {
	// Name is the model identifier.
	Name string

	// Comment is the free-form description stored in the file.
	Comment string

	// Skeleton is the bone hierarchy and IK chains.
	Skeleton *Skeleton

	// Morphs are the vertex morphs, base morph first.
	Morphs []MorphDefinition

	// Vertices are the mesh vertices.
	Vertices []Vertex

	// Indices are the triangle indices.
	Indices []uint32
}
