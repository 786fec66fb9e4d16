package loader

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// streamWriter assembles little-endian test files in memory.
type streamWriter struct {
	t   *testing.T
	buf bytes.Buffer
}

func newStreamWriter(t *testing.T) *streamWriter {
	return &streamWriter{t: t}
}

func (w *streamWriter) put(values ...any) *streamWriter {
	w.t.Helper()
	for _, v := range values {
		if err := binary.Write(&w.buf, binary.LittleEndian, v); err != nil {
			w.t.Fatalf("binary.Write(%T) error = %v", v, err)
		}
	}
	return w
}

// name writes s as Shift-JIS, null-padded to n bytes.
func (w *streamWriter) name(s string, n int) *streamWriter {
	w.t.Helper()
	enc, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(s))
	if err != nil {
		w.t.Fatalf("encode %q error = %v", s, err)
	}
	if len(enc) > n {
		w.t.Fatalf("name %q needs %d bytes, field holds %d", s, len(enc), n)
	}
	field := make([]byte, n)
	copy(field, enc)
	w.buf.Write(field)
	return w
}

func (w *streamWriter) bytes() []byte {
	return w.buf.Bytes()
}

type pmdTestVertex struct {
	pos    mgl32.Vec3
	bones  [2]uint16
	weight uint8
}

type pmdTestBone struct {
	name   string
	parent uint16
	pos    mgl32.Vec3
}

type pmdTestSkin struct {
	name    string
	indices []uint32
	values  []mgl32.Vec3
}

// pmdFile is a small leg rig: a center bone, a knee, an ankle and a free IK goal,
// with a base skin and one expression skin.
type pmdFile struct {
	vertices []pmdTestVertex
	indices  []uint16
	bones    []pmdTestBone
	skins    []pmdTestSkin
}

func testPMDFile() pmdFile {
	return pmdFile{
		vertices: []pmdTestVertex{
			{pos: mgl32.Vec3{0, 0, 0}, bones: [2]uint16{0, 1}, weight: 100},
			{pos: mgl32.Vec3{1, 0, 0}, bones: [2]uint16{0, 1}, weight: 40},
			{pos: mgl32.Vec3{2, 0, 0}, bones: [2]uint16{1, 2}, weight: 0},
		},
		indices: []uint16{0, 1, 2},
		bones: []pmdTestBone{
			{name: "センター", parent: pmdNoParent, pos: mgl32.Vec3{0, 1, 0}},
			{name: "左ひざ", parent: 0, pos: mgl32.Vec3{0, 0.5, 0}},
			{name: "左足首", parent: 1, pos: mgl32.Vec3{0, 0, 0}},
			{name: "左足ＩＫ", parent: pmdNoParent, pos: mgl32.Vec3{0, 0, 0.3}},
		},
		skins: []pmdTestSkin{
			{name: "base", indices: []uint32{0, 2}, values: []mgl32.Vec3{{0, 0, 0}, {2, 0.5, 0}}},
			{name: "笑い", indices: []uint32{1}, values: []mgl32.Vec3{{0, 0, 1}}},
		},
	}
}

func (f pmdFile) encode(t *testing.T) []byte {
	t.Helper()
	w := newStreamWriter(t)
	w.buf.WriteString(pmdMagic)
	w.put(float32(1)).name("テスト", pmdNameSize).name("コメント", pmdCommentSize)

	w.put(uint32(len(f.vertices)))
	for _, v := range f.vertices {
		w.put(v.pos, mgl32.Vec3{0, 1, 0}, mgl32.Vec2{0.5, 0.5}, v.bones, v.weight, uint8(0))
	}

	w.put(uint32(len(f.indices)), f.indices)

	w.put(uint32(1), make([]byte, pmdMaterialSize))

	w.put(uint16(len(f.bones)))
	for _, b := range f.bones {
		w.name(b.name, pmdNameSize).put(b.parent, uint16(0), uint8(0), uint16(0), b.pos)
	}

	// One chain: goal 3 drives ankle 2 through the knee.
	w.put(uint16(1), uint16(3), uint16(2), uint8(1), uint16(40), float32(0.5), uint16(1))

	w.put(uint16(len(f.skins)))
	for s, skin := range f.skins {
		w.name(skin.name, pmdNameSize).put(uint32(len(skin.indices)), uint8(min(s, 1)))
		for i, idx := range skin.indices {
			w.put(idx, skin.values[i])
		}
	}

	// Trailing sections the reader ignores.
	w.put(uint8(0), uint8(0))
	return w.bytes()
}

type vmdTestBoneKey struct {
	name  string
	frame uint32
	pos   mgl32.Vec3
	rot   [4]float32
}

type vmdTestMorphKey struct {
	name   string
	frame  uint32
	weight float32
}

func encodeVMD(t *testing.T, legacy bool, bones []vmdTestBoneKey, morphs []vmdTestMorphKey) []byte {
	t.Helper()
	w := newStreamWriter(t)
	if legacy {
		w.name(vmdLegacyMagic, vmdHeaderSize).name("model", vmdLegacyNameSize)
	} else {
		w.name(vmdMagic, vmdHeaderSize).name("初音ミク", vmdNameSize)
	}

	var interp [vmdInterpSize]byte
	// X channel: (10, 20) and (100, 110).
	interp[0], interp[4], interp[8], interp[12] = 10, 20, 100, 110

	w.put(uint32(len(bones)))
	for _, k := range bones {
		w.name(k.name, vmdTrackNameSize).put(k.frame, k.pos, k.rot, interp)
	}
	w.put(uint32(len(morphs)))
	for _, k := range morphs {
		w.name(k.name, vmdTrackNameSize).put(k.frame, k.weight)
	}
	// Empty camera, light and shadow sections.
	w.put(uint32(0), uint32(0), uint32(0))
	return w.bytes()
}
