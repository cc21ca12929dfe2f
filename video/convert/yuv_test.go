package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corestream/streamcore/pipeline"
	"github.com/corestream/streamcore/video/convert"
)

// scenario (d): a flat mid-gray 2x2 input yields four mid-gray pixels.
func TestYUV420ToRGBA_MidGrayFlatFrame(t *testing.T) {
	frame := pipeline.Yuv420Frame{
		Y:        []byte{128, 128, 128, 128},
		U:        []byte{128},
		V:        []byte{128},
		YStride:  2,
		UVStride: 1,
		Width:    2,
		Height:   2,
	}

	got := convert.YUV420ToRGBA(frame)
	assert.Equal(t, 2, got.Width)
	assert.Equal(t, 2, got.Height)
	require := assert.New(t)
	for px := 0; px < 4; px++ {
		i := px * 4
		require.InDelta(128, int(got.Buffer[i]), 1, "pixel %d red", px)
		require.InDelta(128, int(got.Buffer[i+1]), 1, "pixel %d green", px)
		require.InDelta(128, int(got.Buffer[i+2]), 1, "pixel %d blue", px)
		require.Equal(byte(255), got.Buffer[i+3], "pixel %d alpha", px)
	}
}

func TestYUV420ToRGBA_PreservesTimestamp(t *testing.T) {
	frame := pipeline.Yuv420Frame{
		Y: []byte{0, 0, 0, 0}, U: []byte{128}, V: []byte{128},
		YStride: 2, UVStride: 1, Width: 2, Height: 2,
		TimestampMicroseconds: 12345,
	}
	got := convert.YUV420ToRGBA(frame)
	assert.EqualValues(t, 12345, got.TimestampMicroseconds)
}
