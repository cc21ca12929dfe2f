package fmp4

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/corestream/streamcore/codec/h264"
	"github.com/corestream/streamcore/common/errs"
	"github.com/corestream/streamcore/pipeline"
	"github.com/corestream/streamcore/stats"
)

// Sink is the fMP4 pipe of SPEC_FULL §4.4: it owns the Emitter, a
// backpressure queue standing in for the media-source "updateend"
// handshake, and the drop-accounting IDR policy for streams with no
// direct decoder available.
type Sink struct {
	pipeline.BasePipe

	w                io.Writer
	emitter          *Emitter
	width, height    int
	idr              stats.IdrPolicy
	mu               sync.Mutex
	queue            [][]byte
	appendBusy       bool
	consecutiveDrops int
	lastSPS, lastPPS []byte
}

// NewSink builds a backpressure-queued fMP4 sink. width/height come
// from the negotiated video geometry, since the bare H.264 SPS parser
// here does not decode cropping/scaling fields.
func NewSink(w io.Writer, assumedFPS float64, width, height int) *Sink {
	return &Sink{w: w, emitter: NewEmitter(assumedFPS), width: width, height: height}
}

func (s *Sink) Info() pipeline.Info {
	return pipeline.Info{EnvironmentSupported: true}
}

func (s *Sink) Setup(ctx context.Context, cfg pipeline.DecoderConfig) error {
	s.SetState(pipeline.StateConfigured)
	return nil
}

func (s *Sink) Cleanup() {
	s.SetState(pipeline.StateCleaned)
}

// PollRequestIdr surfaces §4.4's drop-accounting rule: after 60
// consecutive dropped delta units, request a fresh IDR.
func (s *Sink) PollRequestIdr() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idr.ShouldRequestDropCount(s.consecutiveDrops)
}

func (s *Sink) Submit(ctx context.Context, payload pipeline.Payload) error {
	if payload.Kind != pipeline.KindEncodedVideo || payload.Encoded == nil {
		return nil
	}
	unit := *payload.Encoded

	s.mu.Lock()
	defer s.mu.Unlock()

	if unit.Key {
		s.idr.ClearOnKeyframe()
		s.consecutiveDrops = 0
	} else if !s.emitter.Initialized() {
		s.consecutiveDrops++
		return nil
	}

	nalus := h264.SplitAnnexB(unit.Data)
	var sps, pps []byte
	var frameNALUs [][]byte
	for _, nal := range nalus {
		switch {
		case h264.IsSPS(nal):
			sps = nal
		case h264.IsPPS(nal):
			pps = nal
		default:
			frameNALUs = append(frameNALUs, nal)
		}
	}

	switch {
	case !s.emitter.Initialized():
		if sps == nil || pps == nil {
			s.consecutiveDrops++
			log.Warn().Msg("keyframe missing SPS/PPS, dropping while awaiting a fresh IDR")
			return nil
		}
		if err := s.reinitialize(sps, pps); err != nil {
			return err
		}
	case unit.Key && sps != nil && pps != nil && (!bytes.Equal(sps, s.lastSPS) || !bytes.Equal(pps, s.lastPPS)):
		// A new source buffer is created on every reconfiguration; the
		// previous one is discarded by simply never being referenced
		// again once the new init segment has been written.
		log.Info().Msg("keyframe carries a new SPS/PPS, starting a new source buffer")
		if err := s.reinitialize(sps, pps); err != nil {
			return err
		}
	}

	frag, err := s.emitter.WriteFragment(frameNALUs, unit.Key, unit.TimestampMicroseconds)
	if err != nil {
		return err
	}
	s.enqueue(frag)
	s.drainQueue()
	return nil
}

// reinitialize writes a fresh init segment for a new SPS/PPS pair and
// latches it as the current one, so later keyframes are only
// re-initialized again on a genuine change.
func (s *Sink) reinitialize(sps, pps []byte) error {
	init, err := s.emitter.WriteInitSegment(sps, pps, s.width, s.height)
	if err != nil {
		return err
	}
	s.lastSPS = append([]byte(nil), sps...)
	s.lastPPS = append([]byte(nil), pps...)
	s.enqueue(init)
	return nil
}

// enqueue appends a segment to the backpressure queue; drainQueue only
// writes while appendBusy is clear, mirroring the media-source
// updateend-gated append cycle.
func (s *Sink) enqueue(segment []byte) {
	s.queue = append(s.queue, segment)
}

func (s *Sink) drainQueue() {
	if s.appendBusy {
		return
	}
	s.appendBusy = true
	defer func() { s.appendBusy = false }()
	for len(s.queue) > 0 {
		seg := s.queue[0]
		s.queue = s.queue[1:]
		if _, err := s.w.Write(seg); err != nil {
			log.Error().Err(errs.Wrap(errs.CodeResourceFailure, err, "fmp4 sink write failed")).Send()
			return
		}
	}
}
