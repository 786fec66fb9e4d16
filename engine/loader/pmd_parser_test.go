package loader

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/encoding/japanese"
)

func TestPMDParserParse(t *testing.T) {
	im, err := newPMDParser(japanese.ShiftJIS).Parse(testPMDFile().encode(t))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if im.Name != "テスト" || im.Comment != "コメント" {
		t.Fatalf("Name, Comment = %q, %q", im.Name, im.Comment)
	}

	if len(im.Vertices) != 3 {
		t.Fatalf("len(Vertices) = %d, want 3", len(im.Vertices))
	}
	if got := im.Vertices[0].Skinning; got != model.Rigid(0) {
		t.Errorf("vertex 0 skinning = %+v, want rigid bone 0", got)
	}
	if got := im.Vertices[1].Skinning; got.Kind != model.SkinningLinear2 || got.Weights[0] != 0.4 || got.Bones[1] != 1 {
		t.Errorf("vertex 1 skinning = %+v, want linear 0.4/0.6 on bones 0,1", got)
	}
	if got := im.Vertices[2].UV; got != (mgl32.Vec2{0.5, 0.5}) {
		t.Errorf("vertex 2 uv = %v", got)
	}
	if len(im.Indices) != 3 || im.Indices[2] != 2 {
		t.Errorf("Indices = %v, want [0 1 2]", im.Indices)
	}

	bones := im.Skeleton.Bones
	if len(bones) != 4 {
		t.Fatalf("len(Bones) = %d, want 4", len(bones))
	}
	wantParents := []int{-1, 0, 1, -1}
	for i, b := range bones {
		if b.Parent != wantParents[i] {
			t.Errorf("bone %q parent = %d, want %d", b.Name, b.Parent, wantParents[i])
		}
	}
	if bones[1].Name != "左ひざ" || bones[1].Position != (mgl32.Vec3{0, 0.5, 0}) {
		t.Errorf("knee = %+v", bones[1])
	}
	if got := model.AxisLimitFromName(bones[1].Name); got != model.AxisLimitSingleAxisX {
		t.Errorf("decoded knee name %q does not trigger the knee heuristic", bones[1].Name)
	}

	if len(im.Skeleton.IKChains) != 1 {
		t.Fatalf("len(IKChains) = %d, want 1", len(im.Skeleton.IKChains))
	}
	c := im.Skeleton.IKChains[0]
	if c.Effector != 3 || c.Target != 2 || c.MaxIterations != 40 || c.AngleLimit != 0.5 || len(c.Links) != 1 || c.Links[0] != 1 {
		t.Errorf("IK chain = %+v", c)
	}
}

func TestPMDParserSkinsBecomeMorphs(t *testing.T) {
	im, err := newPMDParser(japanese.ShiftJIS).Parse(testPMDFile().encode(t))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(im.Morphs) != 2 {
		t.Fatalf("len(Morphs) = %d, want 2", len(im.Morphs))
	}
	base := im.Morphs[0]
	// Base skin positions are absolute; vertex 2 sits at (2,0,0) in the mesh.
	if base.VertexIndices[1] != 2 || base.VertexDeltas[1] != (mgl32.Vec3{0, 0.5, 0}) {
		t.Errorf("base morph = %+v, want vertex 2 delta (0,0.5,0)", base)
	}
	if base.VertexDeltas[0] != (mgl32.Vec3{}) {
		t.Errorf("base morph vertex 0 delta = %v, want zero", base.VertexDeltas[0])
	}
	smile := im.Morphs[1]
	if smile.Name != "笑い" || smile.VertexIndices[0] != 2 || smile.VertexDeltas[0] != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("smile morph = %+v, want vertex 2 re-indexed through the base skin", smile)
	}
}

func TestPMDParserErrors(t *testing.T) {
	valid := testPMDFile().encode(t)

	badRef := testPMDFile()
	badRef.vertices[1].bones = [2]uint16{9, 0}

	badSkin := testPMDFile()
	badSkin.skins[1].indices = []uint32{5}

	badIndex := testPMDFile()
	badIndex.indices = []uint16{0, 1, 7}

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"bad magic", append([]byte("Pmx"), valid[3:]...), ErrInvalidHeader},
		{"cut in header", valid[:100], ErrTruncated},
		{"cut in bones", valid[:len(valid)-120], ErrTruncated},
		{"vertex binds missing bone", badRef.encode(t), ErrInvalidReference},
		{"skin outside base", badSkin.encode(t), ErrInvalidReference},
		{"index outside mesh", badIndex.encode(t), ErrInvalidReference},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := newPMDParser(japanese.ShiftJIS).Parse(c.data); !errors.Is(err, c.want) {
				t.Fatalf("Parse() error = %v, want %v", err, c.want)
			}
		})
	}
}

func TestPMDParserHugeCountIsTruncated(t *testing.T) {
	w := newStreamWriter(t)
	w.buf.WriteString(pmdMagic)
	w.put(float32(1)).name("x", pmdNameSize).name("", pmdCommentSize)
	w.put(uint32(1 << 30))
	if _, err := newPMDParser(nil).Parse(w.bytes()); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Parse() error = %v, want ErrTruncated", err)
	}
}
