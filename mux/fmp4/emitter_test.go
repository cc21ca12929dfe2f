package fmp4_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corestream/streamcore/bitio"
	"github.com/corestream/streamcore/mux/fmp4"
)

func sps() []byte { return []byte{0x67, 0x42, 0xE0, 0x1E, 0x00, 0x00} }
func pps() []byte { return []byte{0x68, 0xCE, 0x3C, 0x80} }

// property 6: every box's 32-bit length field equals its own total size.
func assertBoxLengthsConsistent(t *testing.T, buf []byte) {
	t.Helper()
	off := 0
	for off < len(buf) {
		require.LessOrEqual(t, off+8, len(buf), "truncated box header at %d", off)
		size := int(bitio.U32BE(buf[off : off+4]))
		require.Greater(t, size, 0, "box at %d has non-positive size", off)
		require.LessOrEqual(t, off+size, len(buf), "box at %d claims past end of buffer", off)
		off += size
	}
	assert.Equal(t, len(buf), off, "boxes must exactly tile the buffer")
}

func TestEmitter_InitSegmentBoxLengths(t *testing.T) {
	e := fmp4.NewEmitter(30)
	init, err := e.WriteInitSegment(sps(), pps(), 1280, 720)
	require.NoError(t, err)
	assertBoxLengthsConsistent(t, init)
	assert.True(t, e.Initialized())
}

// property 7: mfhd sequence numbers are 1..N and box lengths stay valid
// across N fragments; scenario (c)'s 60-fragment case is exercised here
// at a smaller N for speed.
func TestEmitter_FragmentSequenceNumbering(t *testing.T) {
	e := fmp4.NewEmitter(30)
	_, err := e.WriteInitSegment(sps(), pps(), 1280, 720)
	require.NoError(t, err)

	const n = 10
	for i := 1; i <= n; i++ {
		frag, err := e.WriteFragment([][]byte{{0x65, byte(i)}}, i == 1, int64(i)*33333)
		require.NoError(t, err)
		assertBoxLengthsConsistent(t, frag)
		assert.Equal(t, uint32(i), e.SequenceNumber())
	}
}

// property 11: monotonic timestamp repair.
func TestEmitter_MonotonicTimestampRepair(t *testing.T) {
	e := fmp4.NewEmitter(60)
	_, err := e.WriteInitSegment(sps(), pps(), 640, 480)
	require.NoError(t, err)

	// 16666 is a backward-stepping source timestamp; once it is bumped to
	// restore monotonicity, the flat one-frame-duration correction is
	// latched and applied to every later sample too (here, the jump to
	// 40000 picks up the same +16666 offset).
	inputs := []int64{0, 16667, 16666, 40000}
	wantDTS := []int64{0, 16667, 33333, 56666}

	for i, ts := range inputs {
		_, err := e.WriteFragment([][]byte{{0x65}}, i == 0, ts)
		require.NoError(t, err)
		assert.Equal(t, wantDTS[i], e.LastEmittedDTS(), "fragment %d", i)
	}
}
