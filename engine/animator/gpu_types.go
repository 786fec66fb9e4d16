package animator

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/num/dualquat"
)

// GPUDualQuatSource is the canonical WGSL definition of the DualQuat struct and the
// dual quaternion skinning helpers that consume it.
// Matches GPUDualQuat layout exactly (32 bytes, std430 aligned).
//
//go:embed assets/dual_quat.wgsl
var GPUDualQuatSource string

// GPUDualQuat is the GPU-aligned representation of one bone's skinning transform.
// Matches the WGSL DualQuat struct layout exactly (see GPUDualQuatSource).
// Size: 32 bytes (2 × vec4<f32>, std430 aligned).
type GPUDualQuat struct {
	Real [4]float32 // offset  0: rotation quaternion (x, y, z, w)
	Dual [4]float32 // offset 16: translation part (x, y, z, w)
}

// NewGPUDualQuat converts a dual quaternion to its GPU form.
//
// Parameters:
//   - dq: the dual quaternion
//
// Returns:
//   - GPUDualQuat: the upload-ready value in (x, y, z, w) component order
func NewGPUDualQuat(dq dualquat.Number) GPUDualQuat {
	return GPUDualQuat{
		Real: [4]float32{float32(dq.Real.Imag), float32(dq.Real.Jmag), float32(dq.Real.Kmag), float32(dq.Real.Real)},
		Dual: [4]float32{float32(dq.Dual.Imag), float32(dq.Dual.Jmag), float32(dq.Dual.Kmag), float32(dq.Dual.Real)},
	}
}

// Size returns the size of the GPUDualQuat struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUDualQuat) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUDualQuat struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUDualQuat) Marshal() []byte {
	buf := make([]byte, 32)
	g.marshalInto(buf)
	return buf
}

func (g *GPUDualQuat) marshalInto(buf []byte) {
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(g.Real[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:16+(i+1)*4], math.Float32bits(g.Dual[i]))
	}
}

// MarshalDualQuats serializes a bone palette into dst, growing it when needed.
//
// Parameters:
//   - dqs: the skinning transforms
//   - dst: an optional reusable buffer
//
// Returns:
//   - []byte: len(dqs) * 32 bytes
func MarshalDualQuats(dqs []dualquat.Number, dst []byte) []byte {
	size := len(dqs) * 32
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]
	for i, dq := range dqs {
		g := NewGPUDualQuat(dq)
		g.marshalInto(dst[i*32 : (i+1)*32])
	}
	return dst
}

// GPUMorphPosition is the GPU-aligned representation of one morphed vertex position.
// Size: 16 bytes (vec3<f32> padded to vec4 stride, std430 aligned).
type GPUMorphPosition struct {
	Position [3]float32 // offset  0: morphed position (12 bytes)
	_pad0    float32    // offset 12: implicit vec3 pad
}

// Size returns the size of the GPUMorphPosition struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMorphPosition) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalMorphPositions serializes morphed positions into dst using the GPUMorphPosition stride.
//
// Parameters:
//   - positions: the morphed positions
//   - dst: an optional reusable buffer
//
// Returns:
//   - []byte: len(positions) * 16 bytes
func MarshalMorphPositions(positions []mgl32.Vec3, dst []byte) []byte {
	size := len(positions) * 16
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]
	for i, p := range positions {
		off := i * 16
		binary.LittleEndian.PutUint32(dst[off:off+4], math.Float32bits(p[0]))
		binary.LittleEndian.PutUint32(dst[off+4:off+8], math.Float32bits(p[1]))
		binary.LittleEndian.PutUint32(dst[off+8:off+12], math.Float32bits(p[2]))
		binary.LittleEndian.PutUint32(dst[off+12:off+16], 0) // _pad0
	}
	return dst
}

// Binding indices of the skinning bind group declared in GPUDualQuatSource.
const (
	SkinningBinding = 0
	MorphBinding    = 1
)

// SkinningBufferDescriptor describes the storage buffer holding one GPUDualQuat per bone.
//
// Parameters:
//   - label: the buffer label prefix
//   - boneCount: the number of bones
//
// Returns:
//   - *wgpu.BufferDescriptor: the descriptor for device.CreateBuffer
func SkinningBufferDescriptor(label string, boneCount int) *wgpu.BufferDescriptor {
	var g GPUDualQuat
	return &wgpu.BufferDescriptor{
		Label:            label + " Skinning Buffer",
		Size:             uint64(boneCount * g.Size()),
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	}
}

// MorphBufferDescriptor describes the buffer holding one GPUMorphPosition per vertex.
// It is bound as storage for the skinning pass and as a vertex buffer for direct draws.
//
// Parameters:
//   - label: the buffer label prefix
//   - vertexCount: the number of vertices
//
// Returns:
//   - *wgpu.BufferDescriptor: the descriptor for device.CreateBuffer
func MorphBufferDescriptor(label string, vertexCount int) *wgpu.BufferDescriptor {
	var g GPUMorphPosition
	return &wgpu.BufferDescriptor{
		Label:            label + " Morph Buffer",
		Size:             uint64(vertexCount * g.Size()),
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	}
}

// SkinningBindGroupLayoutEntries returns the read-only storage layout entries for the
// skinning palette and morphed positions, visible to vertex and compute stages.
//
// Parameters:
//   - boneCount: the number of bones, used for the minimum binding size
//   - vertexCount: the number of vertices, used for the minimum binding size
//
// Returns:
//   - []wgpu.BindGroupLayoutEntry: entries for SkinningBinding and MorphBinding
func SkinningBindGroupLayoutEntries(boneCount, vertexCount int) []wgpu.BindGroupLayoutEntry {
	visibility := wgpu.ShaderStageVertex | wgpu.ShaderStageCompute
	skin := wgpu.BindGroupLayoutEntry{Binding: SkinningBinding, Visibility: visibility}
	skin.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	skin.Buffer.MinBindingSize = SkinningBufferDescriptor("", boneCount).Size

	morph := wgpu.BindGroupLayoutEntry{Binding: MorphBinding, Visibility: visibility}
	morph.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	morph.Buffer.MinBindingSize = MorphBufferDescriptor("", vertexCount).Size

	return []wgpu.BindGroupLayoutEntry{skin, morph}
}
