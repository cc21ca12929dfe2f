package decoder

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corestream/streamcore/pipeline"
)

type recordingPipe struct {
	pipeline.BasePipe
	received []pipeline.Payload
}

func (r *recordingPipe) Info() pipeline.Info           { return pipeline.Info{EnvironmentSupported: true} }
func (r *recordingPipe) Setup(context.Context, pipeline.DecoderConfig) error { return nil }
func (r *recordingPipe) Cleanup()                      {}
func (r *recordingPipe) PollRequestIdr() bool          { return false }
func (r *recordingPipe) Submit(_ context.Context, p pipeline.Payload) error {
	r.received = append(r.received, p)
	return nil
}

func TestSoftwarePipe_BuffersUntilReady(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ready := make(chan struct{})
	module := NewMockSoftwareModule(ctrl)
	module.EXPECT().Ready().Return((<-chan struct{})(ready)).AnyTimes()
	module.EXPECT().Decode(gomock.Any()).Return(pipeline.Yuv420Frame{Width: 4, Height: 4}, nil).Times(2)

	base := &recordingPipe{}
	p := NewSoftwarePipe(base, module)

	require.NoError(t, p.Submit(context.Background(), pipeline.Payload{
		Kind:    pipeline.KindEncodedVideo,
		Encoded: &pipeline.EncodedUnit{Key: true, Data: []byte{1}},
	}))
	require.NoError(t, p.Submit(context.Background(), pipeline.Payload{
		Kind:    pipeline.KindEncodedVideo,
		Encoded: &pipeline.EncodedUnit{Data: []byte{2}},
	}))
	assert.Empty(t, base.received, "submissions before ready must be buffered, not forwarded")

	close(ready)
	require.Eventually(t, func() bool { return len(base.received) == 2 }, time.Second, time.Millisecond)
	for _, p := range base.received {
		assert.Equal(t, pipeline.KindYUV420, p.Kind)
	}
}
