package render

import (
	"context"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"

	"github.com/corestream/streamcore/pipeline"
)

// TrackSink realizes SPEC_FULL §4.7's "videotrack" output kind: decoded
// RGBA frames are pushed as samples onto a pion TrackLocalStaticSample.
// A production embedder negotiates the track's codec separately; this
// sink only owns the sample cadence and forwarding.
type TrackSink struct {
	pipeline.BasePipe

	track        *webrtc.TrackLocalStaticSample
	lastPTS      int64
	encodeSample func(pipeline.RGBAFrame) ([]byte, error)
}

func NewTrackSink(track *webrtc.TrackLocalStaticSample, encodeSample func(pipeline.RGBAFrame) ([]byte, error)) *TrackSink {
	return &TrackSink{track: track, encodeSample: encodeSample}
}

func (s *TrackSink) Info() pipeline.Info {
	return pipeline.Info{EnvironmentSupported: s.track != nil}
}

func (s *TrackSink) Setup(ctx context.Context, cfg pipeline.DecoderConfig) error {
	s.SetState(pipeline.StateConfigured)
	return nil
}

func (s *TrackSink) Cleanup() { s.SetState(pipeline.StateCleaned) }

func (s *TrackSink) PollRequestIdr() bool { return false }

func (s *TrackSink) Submit(ctx context.Context, payload pipeline.Payload) error {
	if payload.Kind != pipeline.KindRGBA || payload.RGBA == nil || s.track == nil {
		return nil
	}
	f := *payload.RGBA
	sampleBytes, err := s.encodeSample(f)
	if err != nil {
		return err
	}

	dur := time.Duration(0)
	if s.lastPTS != 0 {
		dur = time.Duration(f.TimestampMicroseconds-s.lastPTS) * time.Microsecond
	}
	s.lastPTS = f.TimestampMicroseconds

	return s.track.WriteSample(media.Sample{Data: sampleBytes, Duration: dur})
}
