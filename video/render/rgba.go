// Package render implements the frame sinks of SPEC_FULL §4.5: the
// RGBA sink, the YUV420 shader-equivalent sink, and the pion/webrtc
// videotrack sink.
package render

import (
	"context"
	"image"
	"sync"

	"github.com/corestream/streamcore/pipeline"
)

// RGBASink is the terminal pipe of a chain ending in a displayed RGBA
// buffer. It owns the current image and replaces it wholesale on each
// submission, matching the "paint via an image-data put operation"
// description; there is no explicit frame-close call to make here since
// Go's RGBA buffer has no external resource to release, unlike a
// platform frame handle.
type RGBASink struct {
	pipeline.BasePipe

	mu      sync.Mutex
	current *image.RGBA
	onFrame func(*image.RGBA)
}

func NewRGBASink(onFrame func(*image.RGBA)) *RGBASink {
	return &RGBASink{onFrame: onFrame}
}

func (s *RGBASink) Info() pipeline.Info {
	return pipeline.Info{EnvironmentSupported: true}
}

func (s *RGBASink) Setup(ctx context.Context, cfg pipeline.DecoderConfig) error {
	s.SetState(pipeline.StateConfigured)
	return nil
}

func (s *RGBASink) Cleanup() { s.SetState(pipeline.StateCleaned) }

func (s *RGBASink) PollRequestIdr() bool { return false }

func (s *RGBASink) Submit(ctx context.Context, payload pipeline.Payload) error {
	if payload.Kind != pipeline.KindRGBA || payload.RGBA == nil {
		return nil
	}
	f := payload.RGBA
	s.mu.Lock()
	if s.current == nil || s.current.Bounds().Dx() != f.Width || s.current.Bounds().Dy() != f.Height {
		s.current = image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	}
	copy(s.current.Pix, f.Buffer)
	img := s.current
	s.mu.Unlock()
	if s.onFrame != nil {
		s.onFrame(img)
	}
	return nil
}
