package render

import (
	"context"
	"image"
	"sync"

	"github.com/corestream/streamcore/pipeline"
	"github.com/corestream/streamcore/video/convert"
)

// YUVSink is the Go reimplementation of the spec's WebGL YUV420 shader
// sink: since there is no browser/WebGL surface in this binary, the
// three-texture allocation and BT.601 shader program of SPEC_FULL §4.5
// are replaced with the equivalent scalar conversion in video/convert,
// run once per submitted frame the way the shader would run per draw
// call. The sink keeps no plane or image buffers between frames: every
// submission converts into a newly allocated RGBA image, whether or not
// the frame dimensions changed.
type YUVSink struct {
	pipeline.BasePipe

	mu      sync.Mutex
	width   int
	height  int
	onFrame func(*image.RGBA)
}

func NewYUVSink(onFrame func(*image.RGBA)) *YUVSink {
	return &YUVSink{onFrame: onFrame}
}

func (s *YUVSink) Info() pipeline.Info {
	return pipeline.Info{EnvironmentSupported: true}
}

func (s *YUVSink) Setup(ctx context.Context, cfg pipeline.DecoderConfig) error {
	s.SetState(pipeline.StateConfigured)
	return nil
}

func (s *YUVSink) Cleanup() { s.SetState(pipeline.StateCleaned) }

func (s *YUVSink) PollRequestIdr() bool { return false }

func (s *YUVSink) Submit(ctx context.Context, payload pipeline.Payload) error {
	if payload.Kind != pipeline.KindYUV420 || payload.YUV == nil {
		return nil
	}
	rgba := convert.YUV420ToRGBA(*payload.YUV)

	s.mu.Lock()
	s.width, s.height = rgba.Width, rgba.Height
	s.mu.Unlock()

	if s.onFrame == nil {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, rgba.Width, rgba.Height))
	copy(img.Pix, rgba.Buffer)
	s.onFrame(img)
	return nil
}
