package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vec3Array converts a vector into the plain array layout used by GPU structs.
func Vec3Array(v mgl32.Vec3) [3]float32 {
	return [3]float32{v[0], v[1], v[2]}
}
