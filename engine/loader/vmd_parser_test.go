package loader

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-mmd/common"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/encoding/japanese"
)

func testVMDKeys() ([]vmdTestBoneKey, []vmdTestMorphKey) {
	bones := []vmdTestBoneKey{
		{name: "左ひざ", frame: 30, rot: [4]float32{0.5, 0, 0, 0.8660254}},
		{name: "センター", frame: 0, pos: mgl32.Vec3{0, 1, 2}, rot: [4]float32{0, 0, 0, 1}},
		{name: "左ひざ", frame: 0, rot: [4]float32{0, 0, 0, 1}},
	}
	morphs := []vmdTestMorphKey{
		{name: "あ", frame: 10, weight: 1},
		{name: "あ", frame: 0, weight: 0},
	}
	return bones, morphs
}

func TestVMDParserParse(t *testing.T) {
	bones, morphs := testVMDKeys()
	motion, err := newVMDParser(japanese.ShiftJIS).Parse(encodeVMD(t, false, bones, morphs))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if motion.Name != "初音ミク" {
		t.Fatalf("Name = %q", motion.Name)
	}

	if len(motion.BoneTracks) != 2 {
		t.Fatalf("len(BoneTracks) = %d, want 2", len(motion.BoneTracks))
	}
	knee := motion.BoneTracks[0]
	if knee.Name != "左ひざ" || len(knee.Keys) != 2 {
		t.Fatalf("first track = %q with %d keys, want 左ひざ with 2", knee.Name, len(knee.Keys))
	}
	// Keys keep file order; the track constructor sorts them.
	if knee.Keys[0].Frame != 30 || knee.Keys[1].Frame != 0 {
		t.Errorf("knee frames = %d, %d, want 30, 0", knee.Keys[0].Frame, knee.Keys[1].Frame)
	}
	if got := knee.Keys[0].Rotation; got.W != 0.8660254 || got.V != (mgl32.Vec3{0.5, 0, 0}) {
		t.Errorf("knee rotation = %v, want x=0.5 w=0.866", got)
	}
	wantX := mgl32.Vec4{10.0 / 127, 20.0 / 127, 100.0 / 127, 110.0 / 127}
	if got := knee.Keys[0].Bezier[0]; !common.Vec4ApproxEqual(got, wantX, 1e-6) {
		t.Errorf("X channel curve = %v, want %v", got, wantX)
	}
	if got := motion.BoneTracks[1].Keys[0].Translation; got != (mgl32.Vec3{0, 1, 2}) {
		t.Errorf("center translation = %v", got)
	}

	if len(motion.MorphTracks) != 1 || len(motion.MorphTracks[0].Keys) != 2 {
		t.Fatalf("MorphTracks = %+v, want one track with two keys", motion.MorphTracks)
	}
	if k := motion.MorphTracks[0].Keys[0]; k.Frame != 10 || k.Weight != 1 {
		t.Errorf("first morph key = %+v", k)
	}
	if motion.MaxFrame() != 30 {
		t.Errorf("MaxFrame() = %d, want 30", motion.MaxFrame())
	}
}

func TestVMDParserLegacyHeaderAndMissingMorphs(t *testing.T) {
	bones, _ := testVMDKeys()
	data := encodeVMD(t, true, bones, nil)
	motion, err := newVMDParser(japanese.ShiftJIS).Parse(data)
	if err != nil {
		t.Fatalf("Parse(legacy) error = %v", err)
	}
	if motion.Name != "model" || len(motion.BoneTracks) != 2 {
		t.Fatalf("legacy motion = %q with %d tracks", motion.Name, len(motion.BoneTracks))
	}

	// Drop the morph count and everything after it.
	bonesOnly := data[:len(data)-16]
	motion, err = newVMDParser(japanese.ShiftJIS).Parse(bonesOnly)
	if err != nil {
		t.Fatalf("Parse(bones only) error = %v", err)
	}
	if len(motion.MorphTracks) != 0 {
		t.Fatalf("bones-only motion has %d morph tracks", len(motion.MorphTracks))
	}
}

func TestVMDParserErrors(t *testing.T) {
	bones, morphs := testVMDKeys()
	valid := encodeVMD(t, false, bones, morphs)
	bad := append([]byte("Vocaloid Motion Data 0003"), valid[25:]...)

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"bad magic", bad, ErrInvalidHeader},
		{"cut in bone frames", valid[:100], ErrTruncated},
		{"cut in morph frames", valid[:len(valid)-20], ErrTruncated},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := newVMDParser(japanese.ShiftJIS).Parse(c.data); !errors.Is(err, c.want) {
				t.Fatalf("Parse() error = %v, want %v", err, c.want)
			}
		})
	}
}
