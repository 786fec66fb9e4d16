package model

import (
	"github.com/Carmen-Shannon/oxy-mmd/common"
	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	name          string
	comment       string
	skeleton      *Skeleton
	morphs        []MorphDefinition
	vertices      []Vertex
	indices       []uint32
	basePositions []mgl32.Vec3
	vertexData    []byte

	boundingRadius float32
}

// Model defines the interface for a loaded MMD model.
// A Model is an immutable container holding the skeleton, IK chains, vertex morphs and mesh data.
// It is produced by the Loader and shared read-only by every Animator that plays it.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Comment retrieves the free-form description stored in the model file.
	//
	// Returns:
	//   - string: the model comment
	Comment() string

	// Skeleton retrieves the bone list and IK chains for this model.
	//
	// Returns:
	//   - *Skeleton: the skeleton, never nil
	Skeleton() *Skeleton

	// Morphs retrieves the vertex morph definitions. Index 0 is the base morph.
	//
	// Returns:
	//   - []MorphDefinition: the morph definitions
	Morphs() []MorphDefinition

	// Vertices retrieves the mesh vertices.
	//
	// Returns:
	//   - []Vertex: the mesh vertices
	Vertices() []Vertex

	// BasePositions retrieves the undeformed vertex positions morphs are applied on top of.
	//
	// Returns:
	//   - []mgl32.Vec3: one position per vertex
	BasePositions() []mgl32.Vec3

	// Indices retrieves the triangle indices.
	//
	// Returns:
	//   - []uint32: the index list
	Indices() []uint32

	// IndexCount returns the number of indices in the model's mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// IndexData returns a byte view of the triangle indices for an index buffer.
	//
	// Returns:
	//   - []byte: a view of the index list, or nil when the mesh has no indices
	IndexData() []byte

	// VertexData returns the packed GPUSkinnedVertex bytes for this model's mesh.
	// Skinning variants are resolved to four bones and four weights when the model is built.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// BoundingRadius returns the radius of a sphere around the origin enclosing the rest mesh.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// MorphIndex returns the index of a morph by name, or -1 if not found.
	//
	// Parameters:
	//   - name: the morph name to search for
	//
	// Returns:
	//   - int: the morph index, or -1 if not found
	MorphIndex(name string) int
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	if m.skeleton == nil {
		m.skeleton = &Skeleton{}
	}
	m.basePositions = make([]mgl32.Vec3, len(m.vertices))
	for i, v := range m.vertices {
		m.basePositions[i] = v.Position
	}
	if len(m.vertices) > 0 {
		m.vertexData = PackVertices(m.vertices)
	}
	if m.boundingRadius == 0 {
		m.boundingRadius = ComputeBoundingRadius(m.vertices)
	}
	return m
}

// FromImported builds a Model from a reader's output.
//
// Parameters:
//   - im: the imported model data
//
// Returns:
//   - Model: the model container
func FromImported(im *ImportedModel) Model {
	return NewModel(
		WithName(im.Name),
		WithComment(im.Comment),
		WithSkeleton(im.Skeleton),
		WithMorphs(im.Morphs),
		WithVertices(im.Vertices),
		WithIndices(im.Indices),
	)
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Comment() string {
	return m.comment
}

func (m *model) Skeleton() *Skeleton {
	return m.skeleton
}

func (m *model) Morphs() []MorphDefinition {
	return m.morphs
}

func (m *model) Vertices() []Vertex {
	return m.vertices
}

func (m *model) BasePositions() []mgl32.Vec3 {
	return m.basePositions
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) IndexData() []byte {
	return common.SliceToBytes(m.indices)
}

func (m *model) VertexData() []byte {
	return m.vertexData
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *model) MorphIndex(name string) int {
	for i, def := range m.morphs {
		if def.Name == name {
			return i
		}
	}
	return -1
}
