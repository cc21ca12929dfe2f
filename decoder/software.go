package decoder

import (
	"context"
	"sync"

	"github.com/corestream/streamcore/pipeline"
)

// SoftwareModule is the minimal contract a software H.264 decoder
// module exposes: asynchronous Ready() and a synchronous per-unit
// Decode call once ready, matching SPEC_FULL §4.3's "owns an
// asynchronously-loaded decoder module" description. A production
// binary would back this with a cgo or external-process decoder; tests
// supply a fake.
type SoftwareModule interface {
	Ready() <-chan struct{}
	Decode(unit pipeline.EncodedUnit) (pipeline.Yuv420Frame, error)
}

// SoftwarePipe is the fallback decoder pipe for environments without a
// hardware decoder (SPEC_FULL §4.3). Submissions before the module
// signals ready are buffered and drained in order once it does.
type SoftwarePipe struct {
	pipeline.BasePipe

	module SoftwareModule

	mu      sync.Mutex
	ready   bool
	pending []pipeline.EncodedUnit
}

func NewSoftwarePipe(base pipeline.Pipe, module SoftwareModule) *SoftwarePipe {
	p := &SoftwarePipe{
		BasePipe: pipeline.BasePipe{Base: base},
		module:   module,
	}
	go func() {
		<-module.Ready()
		p.mu.Lock()
		p.ready = true
		pending := p.pending
		p.pending = nil
		p.mu.Unlock()
		for _, u := range pending {
			_ = p.decodeAndForward(u)
		}
	}()
	return p
}

func (p *SoftwarePipe) Info() pipeline.Info {
	return pipeline.Info{EnvironmentSupported: true}
}

func (p *SoftwarePipe) Setup(ctx context.Context, cfg pipeline.DecoderConfig) error {
	p.SetState(pipeline.StateConfigured)
	return nil
}

func (p *SoftwarePipe) Cleanup() {
	p.SetState(pipeline.StateCleaned)
	p.CleanupBase()
}

func (p *SoftwarePipe) PollRequestIdr() bool {
	return p.PollBase()
}

func (p *SoftwarePipe) Submit(ctx context.Context, payload pipeline.Payload) error {
	if payload.Kind != pipeline.KindEncodedVideo || payload.Encoded == nil {
		return nil
	}
	unit := *payload.Encoded

	p.mu.Lock()
	if !p.ready {
		p.pending = append(p.pending, unit)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()
	return p.decodeAndForward(unit)
}

func (p *SoftwarePipe) decodeAndForward(unit pipeline.EncodedUnit) error {
	frame, err := p.module.Decode(unit)
	if err != nil {
		return err
	}
	if p.Base == nil {
		return nil
	}
	return p.Base.Submit(context.Background(), pipeline.Payload{
		Kind: pipeline.KindYUV420,
		YUV:  &frame,
	})
}
