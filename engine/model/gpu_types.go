package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-mmd/common"
)

// GPUSkinnedVertexSource is the canonical WGSL definition of the VertexInput struct for skinned mesh pipelines.
// Matches GPUSkinnedVertex layout exactly (64 bytes, std430 aligned).
//
//go:embed assets/skinned_vertex.wgsl
var GPUSkinnedVertexSource string

// GPUSkinnedVertex is the GPU-aligned representation of a single MMD mesh vertex.
// Every skinning variant is resolved to four bone indices and four weights before upload.
// Matches the WGSL VertexInput struct layout (see GPUSkinnedVertexSource).
// Size: 64 bytes (std430 aligned, no padding required).
type GPUSkinnedVertex struct {
	Position    [3]float32 // offset  0: rest position in model space (12 bytes)
	Normal      [3]float32 // offset 12: vertex normal (12 bytes)
	TexCoord    [2]float32 // offset 24: UV texture coordinate (8 bytes)
	BoneIndices [4]uint32  // offset 32: indices of up to 4 influencing bones (16 bytes)
	BoneWeights [4]float32 // offset 48: blend weights for each bone, summing to 1.0 (16 bytes)
}

// Size returns the size of the GPUSkinnedVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUSkinnedVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSkinnedVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUSkinnedVertex) Marshal() []byte {
	buf := make([]byte, 64)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Normal[2]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.TexCoord[1]))
	binary.LittleEndian.PutUint32(buf[32:36], g.BoneIndices[0])
	binary.LittleEndian.PutUint32(buf[36:40], g.BoneIndices[1])
	binary.LittleEndian.PutUint32(buf[40:44], g.BoneIndices[2])
	binary.LittleEndian.PutUint32(buf[44:48], g.BoneIndices[3])
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.BoneWeights[0]))
	binary.LittleEndian.PutUint32(buf[52:56], math.Float32bits(g.BoneWeights[1]))
	binary.LittleEndian.PutUint32(buf[56:60], math.Float32bits(g.BoneWeights[2]))
	binary.LittleEndian.PutUint32(buf[60:64], math.Float32bits(g.BoneWeights[3]))
	return buf
}

// ToGPUVertex resolves a Vertex into its GPU form.
//
// Parameters:
//   - v: the vertex to convert
//
// Returns:
//   - GPUSkinnedVertex: the upload-ready vertex
func ToGPUVertex(v Vertex) GPUSkinnedVertex {
	bones, weights := v.Skinning.Normalize()
	return GPUSkinnedVertex{
		Position:    common.Vec3Array(v.Position),
		Normal:      common.Vec3Array(v.Normal),
		TexCoord:    [2]float32{v.UV.X(), v.UV.Y()},
		BoneIndices: bones,
		BoneWeights: weights,
	}
}

// PackVertices converts and serializes a vertex list into one contiguous GPU buffer.
//
// Parameters:
//   - vertices: the vertices to pack
//
// Returns:
//   - []byte: len(vertices) * 64 bytes
func PackVertices(vertices []Vertex) []byte {
	var probe GPUSkinnedVertex
	stride := probe.Size()
	buf := make([]byte, 0, len(vertices)*stride)
	for _, v := range vertices {
		g := ToGPUVertex(v)
		buf = append(buf, g.Marshal()...)
	}
	return buf
}

// ComputeBoundingRadius calculates the bounding sphere radius of a vertex list,
// measured as the maximum distance from the origin.
//
// Parameters:
//   - vertices: the vertices to measure
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeBoundingRadius(vertices []Vertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p.Dot(p)
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}
