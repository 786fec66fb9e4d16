package common

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Lerp linearly interpolates between a and b.
//
// Parameters:
//   - a, b: the endpoints
//   - t: the interpolation parameter (0 returns a, 1 returns b)
//
// Returns:
//   - float32: the interpolated value
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// SlerpShortest spherically interpolates between two rotations along the shorter arc.
// mgl32.QuatSlerp does not flip hemispheres, so b is negated first when the rotations
// lie more than 180 degrees apart.
//
// Parameters:
//   - a, b: the endpoint rotations
//   - t: the interpolation parameter
//
// Returns:
//   - mgl32.Quat: the interpolated unit rotation
func SlerpShortest(a, b mgl32.Quat, t float32) mgl32.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, t).Normalize()
}
