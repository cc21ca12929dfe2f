package fmp4_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corestream/streamcore/bitio"
	"github.com/corestream/streamcore/mux/fmp4"
	"github.com/corestream/streamcore/pipeline"
)

func annexBUnit(nalus ...[]byte) []byte {
	var out []byte
	for _, n := range nalus {
		out = append(out, 0, 0, 0, 1)
		out = append(out, n...)
	}
	return out
}

// scenario (c): a 60-frame stream through the fMP4 fallback sink
// produces one init segment followed by 60 fragments with monotonically
// increasing mfhd sequence numbers and a tfdt that starts at zero.
func TestSink_SixtyFrameFallbackProducesMonotonicFragments(t *testing.T) {
	var buf bytes.Buffer
	s := fmp4.NewSink(&buf, 60, 640, 480)
	require.NoError(t, s.Setup(context.Background(), pipeline.DecoderConfig{}))
	defer s.Cleanup()

	spsN := sps()
	ppsN := pps()

	for i := 0; i < 60; i++ {
		idr := []byte{0x41, byte(i)}
		var data []byte
		if i == 0 {
			data = annexBUnit(spsN, ppsN, idr)
		} else {
			data = annexBUnit(idr)
		}
		err := s.Submit(context.Background(), pipeline.Payload{
			Kind: pipeline.KindEncodedVideo,
			Encoded: &pipeline.EncodedUnit{
				Key:                   i == 0,
				Data:                  data,
				TimestampMicroseconds: int64(i) * 16667,
			},
		})
		require.NoError(t, err, "frame %d", i)
	}

	out := buf.Bytes()
	assertBoxLengthsConsistent(t, out)
	assert.Equal(t, 1, bytes.Count(out, []byte("ftyp")), "exactly one init segment")

	// mfhd: size(4) | "mfhd"(4) | version+flags(4) | sequence_number(4).
	var seqs []uint32
	for off := 0; ; {
		i := bytes.Index(out[off:], []byte("mfhd"))
		if i < 0 {
			break
		}
		p := off + i
		seqs = append(seqs, bitio.U32BE(out[p+8:p+12]))
		off = p + 4
	}
	require.Len(t, seqs, 60, "one fragment per frame")
	for i, seq := range seqs {
		assert.Equal(t, uint32(i+1), seq, "fragment %d sequence number", i)
	}

	// tfdt: base decode time is 64-bit for version 1, 32-bit otherwise.
	p := bytes.Index(out, []byte("tfdt"))
	require.GreaterOrEqual(t, p, 0)
	n := 4
	if out[p+4] == 1 {
		n = 8
	}
	assert.Equal(t, make([]byte, n), out[p+8:p+8+n], "first fragment's tfdt is zero")

	assert.False(t, s.PollRequestIdr(), "no drops occurred, so no IDR should be requested")
}

// a keyframe carrying a different SPS/PPS than the one latched must
// start a new source buffer (a fresh init segment), not reuse the old
// track description.
func TestSink_ReconfiguresOnNewSPSPPS(t *testing.T) {
	var buf bytes.Buffer
	s := fmp4.NewSink(&buf, 30, 640, 480)
	require.NoError(t, s.Setup(context.Background(), pipeline.DecoderConfig{}))
	defer s.Cleanup()

	spsA, ppsA := sps(), pps()
	spsB := append(append([]byte(nil), spsA...), 0xAA)
	ppsB := append(append([]byte(nil), ppsA...), 0xBB)

	submit := func(spsN, ppsN []byte, key bool, ts int64) {
		var data []byte
		if spsN != nil {
			data = annexBUnit(spsN, ppsN, []byte{0x65, 0x01})
		} else {
			data = annexBUnit([]byte{0x41, 0x01})
		}
		err := s.Submit(context.Background(), pipeline.Payload{
			Kind: pipeline.KindEncodedVideo,
			Encoded: &pipeline.EncodedUnit{Key: key, Data: data, TimestampMicroseconds: ts},
		})
		require.NoError(t, err)
	}

	submit(spsA, ppsA, true, 0)
	submit(nil, nil, false, 16667)
	submit(spsB, ppsB, true, 33334)
	submit(nil, nil, false, 50000)

	assertBoxLengthsConsistent(t, buf.Bytes())
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("ftyp")), "exactly two init segments: one per distinct SPS/PPS pair")
}
