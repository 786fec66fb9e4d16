package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/encoding"
)

const (
	pmdMagic          = "Pmd"
	pmdNameSize       = 20
	pmdCommentSize    = 256
	pmdVertexSize     = 38
	pmdMaterialSize   = 70
	pmdBoneSize       = 39
	pmdIKHeaderSize   = 11
	pmdSkinHeaderSize = 25
	pmdSkinEntrySize  = 16
	pmdNoParent       = 0xFFFF
	pmdFullWeight     = 100
)

// pmdParser decodes the sections of a PMD model needed for animation: mesh, bones,
// IK chains and skins. Materials are skipped by size and everything after the skin
// list (display frames, English names, toon textures, rigid bodies) is ignored.
type pmdParser interface {
	// Parse decodes a complete PMD file.
	//
	// Parameters:
	//   - data: the raw file contents
	//
	// Returns:
	//   - *model.ImportedModel: the decoded model
	//   - error: ErrInvalidHeader, ErrTruncated or ErrInvalidReference, wrapped with context
	Parse(data []byte) (*model.ImportedModel, error)
}

type pmdParserImpl struct {
	names encoding.Encoding
}

var _ pmdParser = &pmdParserImpl{}

func newPMDParser(names encoding.Encoding) pmdParser {
	return &pmdParserImpl{names: names}
}

func (p *pmdParserImpl) Parse(data []byte) (*model.ImportedModel, error) {
	r := newBinaryReader(data, p.names)

	r.enter("header")
	if magic := r.take(len(pmdMagic)); string(magic) != pmdMagic {
		if r.err != nil {
			return nil, r.err
		}
		return nil, fmt.Errorf("%w: got %q, want %q", ErrInvalidHeader, magic, pmdMagic)
	}
	r.f32() // version
	im := &model.ImportedModel{
		Name:    r.str(pmdNameSize),
		Comment: r.str(pmdCommentSize),
	}
	if r.err != nil {
		return nil, r.err
	}

	r.enter("vertices")
	im.Vertices = make([]model.Vertex, r.count(pmdVertexSize))
	for i := range im.Vertices {
		im.Vertices[i] = p.readVertex(r)
	}

	r.enter("indices")
	im.Indices = make([]uint32, r.count(2))
	for i := range im.Indices {
		im.Indices[i] = uint32(r.u16())
	}

	r.enter("materials")
	r.skip(r.count(pmdMaterialSize) * pmdMaterialSize)
	if r.err != nil {
		return nil, r.err
	}

	skeleton := &model.Skeleton{}
	r.enter("bones")
	skeleton.Bones = make([]model.BoneDescriptor, r.count16(pmdBoneSize))
	for i := range skeleton.Bones {
		skeleton.Bones[i] = p.readBone(r)
	}

	r.enter("ik")
	skeleton.IKChains = make([]model.IKChain, r.count16(pmdIKHeaderSize))
	for i := range skeleton.IKChains {
		skeleton.IKChains[i] = p.readIKChain(r)
	}
	if r.err != nil {
		return nil, r.err
	}
	im.Skeleton = skeleton

	if err := p.validateReferences(im); err != nil {
		return nil, err
	}

	r.enter("skins")
	morphs, err := p.readSkins(r, im.Vertices)
	if err != nil {
		return nil, err
	}
	im.Morphs = morphs
	return im, nil
}

func (p *pmdParserImpl) readVertex(r *binaryReader) model.Vertex {
	v := model.Vertex{
		Position: r.vec3(),
		Normal:   r.vec3(),
		UV:       r.vec2(),
	}
	b0, b1 := int32(r.u16()), int32(r.u16())
	w := r.u8()
	r.u8() // edge flag
	if w >= pmdFullWeight {
		v.Skinning = model.Rigid(b0)
	} else {
		v.Skinning = model.Linear2(b0, b1, float32(w)/pmdFullWeight)
	}
	return v
}

func (p *pmdParserImpl) readBone(r *binaryReader) model.BoneDescriptor {
	b := model.BoneDescriptor{Name: r.str(pmdNameSize)}
	parent := r.u16()
	r.u16() // tail bone
	r.u8()  // bone type
	r.u16() // ik parent
	b.Position = r.vec3()
	b.Parent = int(parent)
	if parent == pmdNoParent {
		b.Parent = -1
	}
	return b
}

// readIKChain maps the PMD IK record onto a chain. The record's IK bone is the fixed
// goal (Effector) and its target bone is the end of the chain driven toward it.
func (p *pmdParserImpl) readIKChain(r *binaryReader) model.IKChain {
	c := model.IKChain{
		Effector: int(r.u16()),
		Target:   int(r.u16()),
	}
	links := int(r.u8())
	c.MaxIterations = uint32(r.u16())
	c.AngleLimit = r.f32()
	c.Links = make([]int, r.bounded(links, 2))
	for i := range c.Links {
		c.Links[i] = int(r.u16())
	}
	return c
}

func (p *pmdParserImpl) validateReferences(im *model.ImportedModel) error {
	boneCount := int32(len(im.Skeleton.Bones))
	for i, v := range im.Vertices {
		for slot, b := range v.Skinning.Bones {
			if v.Skinning.Weights[slot] > 0 && b >= boneCount {
				return fmt.Errorf("%w: vertex %d binds bone %d of %d", ErrInvalidReference, i, b, boneCount)
			}
		}
	}
	for i, idx := range im.Indices {
		if int(idx) >= len(im.Vertices) {
			return fmt.Errorf("%w: index %d refers to vertex %d of %d", ErrInvalidReference, i, idx, len(im.Vertices))
		}
	}
	return nil
}

// readSkins converts PMD skins into morph definitions. The first skin is the base: it
// lists absolute positions for every vertex any other skin touches, and is stored as
// deltas against the mesh. Other skins index into the base list.
func (p *pmdParserImpl) readSkins(r *binaryReader, vertices []model.Vertex) ([]model.MorphDefinition, error) {
	n := r.count16(pmdSkinHeaderSize)
	if r.err != nil {
		return nil, r.err
	}
	if n == 0 {
		return nil, nil
	}

	morphs := make([]model.MorphDefinition, n)
	var base []uint32
	for s := range morphs {
		name := r.str(pmdNameSize)
		count := r.count(pmdSkinEntrySize)
		r.u8() // panel
		def := model.MorphDefinition{
			Name:          name,
			VertexIndices: make([]uint32, count),
			VertexDeltas:  make([]mgl32.Vec3, count),
		}
		for i := range count {
			idx := r.u32()
			pos := r.vec3()
			if r.err != nil {
				return nil, r.err
			}
			if s == 0 {
				if int(idx) >= len(vertices) {
					return nil, fmt.Errorf("%w: base skin entry %d refers to vertex %d of %d", ErrInvalidReference, i, idx, len(vertices))
				}
				def.VertexIndices[i] = idx
				def.VertexDeltas[i] = pos.Sub(vertices[idx].Position)
				continue
			}
			if int(idx) >= len(base) {
				return nil, fmt.Errorf("%w: skin %q entry %d refers to base entry %d of %d", ErrInvalidReference, name, i, idx, len(base))
			}
			def.VertexIndices[i] = base[idx]
			def.VertexDeltas[i] = pos
		}
		if s == 0 {
			base = def.VertexIndices
		}
		morphs[s] = def
	}
	return morphs, r.err
}
