// Package decoder implements the hardware and software video decoder
// pipes of SPEC_FULL §4.2/§4.3.
package decoder

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/corestream/streamcore/codec"
	"github.com/corestream/streamcore/codec/translator"
	"github.com/corestream/streamcore/common/errs"
	"github.com/corestream/streamcore/decoder/gst"
	"github.com/corestream/streamcore/pipeline"
	"github.com/corestream/streamcore/stats"
)

// elementsFor returns the (parse, hardware-decode, software-decode)
// GStreamer element names for a codec family, the Go-side analog of the
// spec's "prefer-hardware then software" probe sequence: Setup's three
// probes collapse to building the pipeline with the hardware element
// and, if that fails, building it again with the software element.
func elementsFor(family codec.Family) (parse, hw, sw string, ok bool) {
	switch family {
	case codec.FamilyH264:
		return "h264parse", "nvh264dec", "avdec_h264", true
	case codec.FamilyH265:
		return "h265parse", "nvh265dec", "avdec_h265", true
	default:
		return "", "", "", false
	}
}

// HardwarePipe wraps a platform decoder (here, a GStreamer-backed
// decode pipeline) bound to the current description. It coalesces
// reconfiguration with IDR arrival and surfaces queue pressure through
// PollRequestIdr.
type HardwarePipe struct {
	pipeline.BasePipe

	mu         sync.Mutex
	backend    *gst.Backend
	translator *translator.Translator
	cfg        pipeline.DecoderConfig
	family     codec.Family

	errored     bool
	awaitingKey bool
	queueSize   int
	fps         *stats.FPS
	delay       *stats.Delay
	idr         stats.IdrPolicy
	pending     []pipeline.EncodedUnit
	configured  bool
	drainDone   chan struct{}
}

func NewHardwarePipe(base pipeline.Pipe) *HardwarePipe {
	return &HardwarePipe{
		BasePipe:    pipeline.BasePipe{Base: base},
		awaitingKey: true,
		fps:         stats.NewFPS(),
		delay:       stats.NewDelay(),
	}
}

func (p *HardwarePipe) Info() pipeline.Info {
	return pipeline.Info{
		EnvironmentSupported: gstAvailable(),
		SupportedVideoCodecs: map[string]pipeline.Support{
			"avc1.42E01E":     pipeline.SupportMaybe,
			"avc1.640032":     pipeline.SupportMaybe,
			"avc3.42E01E":     pipeline.SupportMaybe,
			"hvc1.1.6.L93.B0": pipeline.SupportMaybe,
			"hev1.1.6.L93.B0": pipeline.SupportMaybe,
		},
	}
}

// gstAvailable is overridable in tests; in production it always reports
// true once gst.Init has run, since go-gst's own Find() probe requires
// a live GStreamer registry this binary may not have at test time.
var gstAvailable = func() bool { return true }

func (p *HardwarePipe) Setup(ctx context.Context, cfg pipeline.DecoderConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.family = codec.FamilyOf(cfg.Codec)
	parse, hw, sw, ok := elementsFor(p.family)
	if !ok {
		p.errored = true
		return pipeline.ErrUnsupportedFamily
	}

	element := sw
	if cfg.HardwareAcceleration != "prefer-software" {
		element = hw
	}

	backend, err := gst.New(parse, element, true)
	if err != nil {
		// out-of-band retry per §4.2: attempt the out-of-band codec
		// variant with a translator attached.
		p.translator = translator.New(p.family, cfg)
		backend, err = gst.New(parse, sw, false)
		if err != nil {
			p.errored = true
			return errs.Wrap(errs.CodeResourceFailure, err, "decoder: no usable decode element for this family")
		}
	}
	if err := backend.Start(ctx); err != nil {
		p.errored = true
		return errs.Wrap(errs.CodeResourceFailure, err, "decoder: failed to start decode pipeline")
	}

	p.backend = backend
	p.cfg = cfg
	p.configured = true
	p.SetState(pipeline.StateConfigured)
	p.startDraining()

	for _, u := range p.pending {
		_ = p.submitLocked(ctx, u)
	}
	p.pending = nil
	return nil
}

// startDraining forwards decoded frames from the GStreamer backend to
// the downstream base pipe, decrementing queueSize as each one drains.
func (p *HardwarePipe) startDraining() {
	done := make(chan struct{})
	p.drainDone = done
	backend := p.backend
	go func() {
		defer close(done)
		for frame := range backend.Frames() {
			p.mu.Lock()
			if p.queueSize > 0 {
				p.queueSize--
			}
			base := p.Base
			p.mu.Unlock()
			if base == nil {
				continue
			}
			_ = base.Submit(context.Background(), pipeline.Payload{
				Kind: pipeline.KindYUV420,
				YUV: &pipeline.Yuv420Frame{
					Y: frame.Y, U: frame.U, V: frame.V,
					YStride: frame.YStride, UVStride: frame.UVStride,
					Width: frame.Width, Height: frame.Height,
					TimestampMicroseconds: frame.PTSMicroseconds,
				},
			})
		}
	}()
}

func (p *HardwarePipe) Cleanup() {
	p.mu.Lock()
	backend := p.backend
	p.SetState(pipeline.StateCleaned)
	p.mu.Unlock()
	if backend != nil {
		backend.Stop()
	}
	p.CleanupBase()
}

// PollRequestIdr implements the queue-pressure formula of §4.2:
// decodeQueueSize/fps*1000ms > 200ms AND queueSize > 2. On a fresh
// request it also resets the decoder, since a backlog this deep means
// the pipeline can no longer be trusted to drain on its own.
func (p *HardwarePipe) PollRequestIdr() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	requested := p.idr.ShouldRequestQueuePressure(p.queueSize, p.fps.GetFPS())
	if requested {
		log.Warn().Int("queue_size", p.queueSize).Int64("delay_ms", p.delay.GetDelay()).
			Msg("requesting IDR under decode queue pressure, resetting decoder")
		if err := p.resetBackendLocked(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to reset decoder under queue pressure")
		}
		p.awaitingKey = true
	}
	return requested || p.PollBase()
}

// resetBackendLocked stops the current decode pipeline, if any, and
// starts a fresh one with the same element Setup settled on: the
// software element when software is preferred or when Setup fell back
// to it (a translator is then attached), the hardware element
// otherwise. Callers hold p.mu.
func (p *HardwarePipe) resetBackendLocked(ctx context.Context) error {
	if p.backend != nil {
		p.backend.Stop()
	}
	parse, hw, sw, _ := elementsFor(p.family)
	element := hw
	if p.cfg.HardwareAcceleration == "prefer-software" || p.translator != nil {
		element = sw
	}
	backend, err := gst.New(parse, element, true)
	if err != nil {
		return err
	}
	if err := backend.Start(ctx); err != nil {
		return err
	}
	p.backend = backend
	p.queueSize = 0
	p.startDraining()
	return nil
}

func (p *HardwarePipe) Submit(ctx context.Context, payload pipeline.Payload) error {
	if payload.Kind != pipeline.KindEncodedVideo || payload.Encoded == nil {
		return nil
	}
	unit := *payload.Encoded

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.errored {
		return nil
	}
	if !p.configured {
		p.pending = append(p.pending, unit)
		return nil
	}
	return p.submitLocked(ctx, unit)
}

func (p *HardwarePipe) submitLocked(ctx context.Context, unit pipeline.EncodedUnit) error {
	if unit.Key {
		p.awaitingKey = false
		p.idr.ClearOnKeyframe()
	}
	p.fps.Add()
	p.delay.Add(unit.TimestampMicroseconds * 1000)

	if p.translator != nil {
		res, err := p.translator.SubmitDecodeUnit(unit)
		if err != nil {
			return err
		}
		if res.Configure != nil {
			if err := p.resetBackendLocked(ctx); err != nil {
				return err
			}
			p.awaitingKey = false
		}
		if len(res.Chunk) == 0 {
			return nil
		}
		p.queueSize++
		return p.backend.Submit(res.Chunk, unit.TimestampMicroseconds)
	}

	if !unit.Key && p.awaitingKey {
		return nil
	}
	p.queueSize++
	return p.backend.Submit(unit.Data, unit.TimestampMicroseconds)
}
