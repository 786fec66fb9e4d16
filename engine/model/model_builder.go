package model

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithComment is an option builder that sets the free-form model description.
//
// Parameters:
//   - comment: the description text
//
// Returns:
//   - ModelBuilderOption: a function that applies the comment option to a model
func WithComment(comment string) ModelBuilderOption {
	return func(m *model) {
		m.comment = comment
	}
}

// WithSkeleton is an option builder that sets the bones and IK chains of the Model.
//
// Parameters:
//   - skeleton: the skeleton to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the skeleton option to a model
func WithSkeleton(skeleton *Skeleton) ModelBuilderOption {
	return func(m *model) {
		m.skeleton = skeleton
	}
}

// WithMorphs is an option builder that sets the vertex morph definitions, base morph first.
//
// Parameters:
//   - morphs: the morph definitions to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the morphs option to a model
func WithMorphs(morphs []MorphDefinition) ModelBuilderOption {
	return func(m *model) {
		m.morphs = morphs
	}
}

// WithVertices is an option builder that sets the mesh vertices.
// Base positions for morphing are taken from the vertex positions.
//
// Parameters:
//   - vertices: the vertices to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the vertices option to a model
func WithVertices(vertices []Vertex) ModelBuilderOption {
	return func(m *model) {
		m.vertices = vertices
	}
}

// WithIndices is an option builder that sets the triangle indices.
//
// Parameters:
//   - indices: the index list to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the indices option to a model
func WithIndices(indices []uint32) ModelBuilderOption {
	return func(m *model) {
		m.indices = indices
	}
}

// WithBoundingRadius is an option builder that manually sets the bounding sphere radius.
// Use this to override the value NewModel computes from the rest vertices.
//
// Parameters:
//   - radius: the bounding radius to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the bounding radius option to a model
func WithBoundingRadius(radius float32) ModelBuilderOption {
	return func(m *model) {
		m.boundingRadius = radius
	}
}
