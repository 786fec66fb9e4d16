package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// binaryReader walks a little-endian byte slice. The first out-of-bounds read records
// ErrTruncated with the offending section and every later read returns zero values,
// so parsers check err once per section instead of after every field.
type binaryReader struct {
	data    []byte
	off     int
	err     error
	section string
	names   encoding.Encoding
}

func newBinaryReader(data []byte, names encoding.Encoding) *binaryReader {
	return &binaryReader{data: data, names: names}
}

// enter labels subsequent reads for error reporting.
func (r *binaryReader) enter(section string) {
	r.section = section
}

func (r *binaryReader) remaining() int {
	return len(r.data) - r.off
}

func (r *binaryReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = fmt.Errorf("%w: %s needs %d bytes at offset %d, have %d", ErrTruncated, r.section, n, r.off, r.remaining())
		r.off = len(r.data)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *binaryReader) skip(n int) {
	r.take(n)
}

func (r *binaryReader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *binaryReader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *binaryReader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *binaryReader) f32() float32 {
	return math.Float32frombits(r.u32())
}

func (r *binaryReader) vec2() mgl32.Vec2 {
	return mgl32.Vec2{r.f32(), r.f32()}
}

func (r *binaryReader) vec3() mgl32.Vec3 {
	return mgl32.Vec3{r.f32(), r.f32(), r.f32()}
}

// quat reads a rotation stored as x, y, z, w.
func (r *binaryReader) quat() mgl32.Quat {
	v := r.vec3()
	return mgl32.Quat{W: r.f32(), V: v}
}

// count reads a u32 element count and rejects counts that cannot fit in the remaining
// bytes, so a corrupt header never triggers a huge allocation.
func (r *binaryReader) count(elemSize int) int {
	n := int(r.u32())
	return r.bounded(n, elemSize)
}

func (r *binaryReader) count16(elemSize int) int {
	n := int(r.u16())
	return r.bounded(n, elemSize)
}

func (r *binaryReader) bounded(n, elemSize int) int {
	if r.err != nil {
		return 0
	}
	if elemSize > 0 && n > r.remaining()/elemSize {
		r.err = fmt.Errorf("%w: %s declares %d entries of %d bytes at offset %d, have %d", ErrTruncated, r.section, n, elemSize, r.off, r.remaining())
		r.off = len(r.data)
		return 0
	}
	return n
}

// str reads a fixed-width, null-terminated name and decodes it with the reader's encoding.
// Bytes that fail to decode are kept verbatim.
func (r *binaryReader) str(n int) string {
	b := r.take(n)
	if b == nil {
		return ""
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if r.names == nil {
		return string(b)
	}
	decoded, _, err := transform.Bytes(r.names.NewDecoder(), b)
	if err != nil {
		return string(b)
	}
	return string(decoded)
}
