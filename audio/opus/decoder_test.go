package opus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corestream/streamcore/audio/opus"
)

// property 10 (partial): a decoder constructed for the negotiated
// 48kHz/2ch/1-stream/1-coupled-stream layout reports that channel count
// and, on packet loss concealment (a nil payload, no prior packet to
// recover via FEC), fills exactly one 20ms frame per channel.
func TestDecoder_ConcealmentFillsOneFrame(t *testing.T) {
	d, err := opus.New(48000, 2, 1, 1, opus.Mapping{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Channels())

	pcm, err := d.Decode(nil, 960, false)
	require.NoError(t, err)
	assert.Len(t, pcm, 960*2, "negotiated samplesPerFrame=960 per channel per 20ms frame")
}

func TestDecoder_DecodeSizesOutputFromNegotiatedFrameSize(t *testing.T) {
	d, err := opus.New(48000, 2, 1, 1, opus.Mapping{0, 1})
	require.NoError(t, err)

	pcm, err := d.Decode(nil, 480, false)
	require.NoError(t, err)
	assert.Len(t, pcm, 480*2, "a non-default samplesPerFrame (10ms here) must size the output, not a hardcoded guess")
}

func TestDecoder_MonoSingleStream(t *testing.T) {
	d, err := opus.New(48000, 1, 1, 0, opus.Mapping{0})
	require.NoError(t, err)
	assert.Equal(t, 1, d.Channels())
}
