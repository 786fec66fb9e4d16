package loader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"golang.org/x/text/encoding"
)

const (
	vmdHeaderSize     = 30
	vmdMagic          = "Vocaloid Motion Data 0002"
	vmdLegacyMagic    = "Vocaloid Motion Data file"
	vmdNameSize       = 20
	vmdLegacyNameSize = 10
	vmdTrackNameSize  = 15
	vmdBoneFrameSize  = 111
	vmdMorphFrameSize = 23
	vmdInterpSize     = 64
)

// vmdParser decodes the bone and morph keyframes of a VMD motion. Camera, light and
// shadow sections that follow are ignored.
type vmdParser interface {
	// Parse decodes a complete VMD file.
	//
	// Parameters:
	//   - data: the raw file contents
	//
	// Returns:
	//   - *model.Motion: the decoded motion, tracks grouped by name in first-seen order
	//   - error: ErrInvalidHeader or ErrTruncated, wrapped with context
	Parse(data []byte) (*model.Motion, error)
}

type vmdParserImpl struct {
	names encoding.Encoding
}

var _ vmdParser = &vmdParserImpl{}

func newVMDParser(names encoding.Encoding) vmdParser {
	return &vmdParserImpl{names: names}
}

func (p *vmdParserImpl) Parse(data []byte) (*model.Motion, error) {
	r := newBinaryReader(data, p.names)

	r.enter("header")
	header := r.str(vmdHeaderSize)
	if r.err != nil {
		return nil, r.err
	}
	motion := &model.Motion{}
	switch strings.TrimRight(header, " ") {
	case vmdMagic:
		motion.Name = r.str(vmdNameSize)
	case vmdLegacyMagic:
		motion.Name = r.str(vmdLegacyNameSize)
	default:
		return nil, fmt.Errorf("%w: got %q", ErrInvalidHeader, header)
	}

	r.enter("bone frames")
	boneIndex := make(map[string]int)
	for range r.count(vmdBoneFrameSize) {
		name := r.str(vmdTrackNameSize)
		key := model.BoneKeyFrame{
			Frame:       int32(r.u32()),
			Translation: r.vec3(),
			Rotation:    r.quat(),
		}
		var interp [vmdInterpSize]byte
		copy(interp[:], r.take(vmdInterpSize))
		key.Bezier = model.DecodeBezier(interp)

		i, ok := boneIndex[name]
		if !ok {
			i = len(motion.BoneTracks)
			boneIndex[name] = i
			motion.BoneTracks = append(motion.BoneTracks, model.BoneTrackData{Name: name})
		}
		motion.BoneTracks[i].Keys = append(motion.BoneTracks[i].Keys, key)
	}
	if r.err != nil {
		return nil, r.err
	}

	// Some exporters stop after the bone section.
	if r.remaining() == 0 {
		return motion, nil
	}

	r.enter("morph frames")
	morphIndex := make(map[string]int)
	for range r.count(vmdMorphFrameSize) {
		name := r.str(vmdTrackNameSize)
		key := model.MorphKeyFrame{
			Frame:  int32(r.u32()),
			Weight: r.f32(),
		}
		i, ok := morphIndex[name]
		if !ok {
			i = len(motion.MorphTracks)
			morphIndex[name] = i
			motion.MorphTracks = append(motion.MorphTracks, model.MorphTrackData{Name: name})
		}
		motion.MorphTracks[i].Keys = append(motion.MorphTracks[i].Keys, key)
	}
	if r.err != nil {
		return nil, r.err
	}
	return motion, nil
}
