package translator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corestream/streamcore/codec"
	"github.com/corestream/streamcore/codec/translator"
	"github.com/corestream/streamcore/pipeline"
)

func annexB(nalus ...[]byte) []byte {
	var out []byte
	for _, n := range nalus {
		out = append(out, 0, 0, 0, 1)
		out = append(out, n...)
	}
	return out
}

// property 1 & 2: boundary detection, AVCC layout, and codec tag derivation.
func TestTranslator_FirstKeyframeSynthesizesDescription(t *testing.T) {
	sps := []byte{0x67, 0x42, 0xE0, 0x1E, 0x11, 0x22}
	pps := []byte{0x68, 0xCE, 0x3C, 0x80}
	idr := []byte{0x65, 0x88, 0x00, 0x10, 0xFF, 0xFE}

	tr := translator.New(codec.FamilyH264, pipeline.DecoderConfig{})
	res, err := tr.SubmitDecodeUnit(pipeline.EncodedUnit{
		Key:  true,
		Data: annexB(sps, pps, idr),
	})
	require.NoError(t, err)

	require.NotNil(t, res.Configure)
	assert.True(t, tr.HasDescription())
	assert.Equal(t, "avc1.42E01E", res.Configure.Codec)

	wantChunk := append([]byte{0, 0, 0, byte(len(idr))}, idr...)
	assert.Equal(t, wantChunk, res.Chunk)

	desc := res.Configure.Description
	require.GreaterOrEqual(t, len(desc), 11+len(sps)+len(pps))
	assert.Equal(t, byte(0x01), desc[0])
	assert.Equal(t, sps[1], desc[1]) // profile_idc
	assert.Equal(t, sps[2], desc[2]) // constraint flags
	assert.Equal(t, sps[3], desc[3]) // level_idc
	assert.Equal(t, byte(0xFF), desc[4])
	assert.Equal(t, byte(0xE1), desc[5])
	assert.Equal(t, byte(0x00), desc[6])
	assert.Equal(t, byte(len(sps)), desc[7])
	assert.Equal(t, sps, desc[8:8+len(sps)])
	rest := desc[8+len(sps):]
	assert.Equal(t, byte(0x01), rest[0])
	assert.Equal(t, byte(0x00), rest[1])
	assert.Equal(t, byte(len(pps)), rest[2])
	assert.Equal(t, pps, rest[3:3+len(pps)])
}

// property 3: latch persists across a keyframe that omits SPS/PPS; a
// delta unit before any reconfigure produces no chunk.
func TestTranslator_LatchPersistsAndDeltaBeforeDescriptionIsDropped(t *testing.T) {
	sps := []byte{0x67, 0x42, 0xE0, 0x1E, 0x00, 0x00}
	pps := []byte{0x68, 0xCE, 0x3C, 0x80}
	idr := []byte{0x65, 0x01}
	delta := []byte{0x41, 0x02}

	tr := translator.New(codec.FamilyH264, pipeline.DecoderConfig{})

	res, err := tr.SubmitDecodeUnit(pipeline.EncodedUnit{Key: false, Data: annexB(delta)})
	require.NoError(t, err)
	assert.Empty(t, res.Chunk)
	assert.Nil(t, res.Configure)

	res, err = tr.SubmitDecodeUnit(pipeline.EncodedUnit{Key: true, Data: annexB(sps, pps, idr)})
	require.NoError(t, err)
	require.NotNil(t, res.Configure)

	res, err = tr.SubmitDecodeUnit(pipeline.EncodedUnit{Key: true, Data: annexB(idr)})
	require.NoError(t, err)
	assert.Nil(t, res.Configure, "reconfigure fires once, not on every subsequent keyframe")
	assert.NotEmpty(t, res.Chunk)
}

// property 5: HVCC parameter-set array ordering is VPS, SPS, PPS, each
// with a single-element count header.
func TestTranslator_H265ArrayOrdering(t *testing.T) {
	vps := []byte{0x40, 0x01, 0x00, 0x00}
	sps := []byte{0x42, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	pps := []byte{0x44, 0x01, 0x00}

	tr := translator.New(codec.FamilyH265, pipeline.DecoderConfig{})
	res, err := tr.SubmitDecodeUnit(pipeline.EncodedUnit{
		Key:  true,
		Data: annexB(vps, sps, pps, []byte{0x26, 0x01}),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Configure)

	desc := res.Configure.Description
	require.Len(t, desc, 23+3*5+len(vps)+len(sps)+len(pps))

	// Each array header is [type byte][count=0x0001][len][data]; scan
	// forward from the fixed 23-byte HVCC prefix.
	off := 23
	wantTypes := []byte{32, 33, 34}
	wantPayloads := [][]byte{vps, sps, pps}
	for i, wantType := range wantTypes {
		assert.Equal(t, wantType, desc[off]&0x3F, "array %d nal type", i)
		count := int(desc[off+1])<<8 | int(desc[off+2])
		assert.Equal(t, 1, count, "array %d count", i)
		length := int(desc[off+3])<<8 | int(desc[off+4])
		assert.Equal(t, len(wantPayloads[i]), length)
		assert.Equal(t, wantPayloads[i], desc[off+5:off+5+length])
		off += 5 + length
	}
}

// scenario (b): an H.265 keyframe missing its VPS must not crash the
// translator or synthesize a bogus description (its IDR NAL is still
// forwarded in the chunk); the next keyframe that carries a complete
// VPS/SPS/PPS triple recovers normally.
func TestTranslator_H265KeyframeMissingVPSForwardsThenRecovers(t *testing.T) {
	vps := []byte{0x40, 0x01, 0x00, 0x00}
	sps := []byte{0x42, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	pps := []byte{0x44, 0x01, 0x00}
	idr := []byte{0x26, 0x01}

	tr := translator.New(codec.FamilyH265, pipeline.DecoderConfig{})

	res, err := tr.SubmitDecodeUnit(pipeline.EncodedUnit{
		Key:  true,
		Data: annexB(sps, pps, idr),
	})
	require.NoError(t, err)
	assert.Nil(t, res.Configure, "no VPS yet, so no description can be synthesized")
	assert.False(t, tr.HasDescription())
	assert.NotEmpty(t, res.Chunk, "the keyframe NALU is still forwarded without a description")

	res, err = tr.SubmitDecodeUnit(pipeline.EncodedUnit{
		Key:  true,
		Data: annexB(vps, sps, pps, idr),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Configure, "a complete triple on the next keyframe recovers")
	assert.True(t, tr.HasDescription())
	assert.NotEmpty(t, res.Chunk)
}

func TestTranslator_VectorsFromFixture(t *testing.T) {
	vectors, err := translator.LoadCodecVectors("testdata/codec_vectors.json")
	require.NoError(t, err)
	require.NotEmpty(t, vectors)

	for _, v := range vectors {
		v := v
		t.Run(v.Name, func(t *testing.T) {
			tr := translator.New(codec.FamilyH264, pipeline.DecoderConfig{})
			res, err := tr.SubmitDecodeUnit(pipeline.EncodedUnit{
				Key:  true,
				Data: annexB(v.SPS(), v.PPS(), v.Keyframe()),
			})
			require.NoError(t, err)
			require.NotNil(t, res.Configure)
			assert.Equal(t, v.ExpectCodec, res.Configure.Codec)
		})
	}
}
