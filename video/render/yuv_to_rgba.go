package render

import (
	"context"

	"github.com/corestream/streamcore/pipeline"
	"github.com/corestream/streamcore/video/convert"
)

// YUVToRGBAPipe is the intermediate link used by chains whose terminal
// renderer wants RGBA but whose decoder only produces YUV420 (the
// "hardware-rgba" and "hardware-videotrack" chains in wiring): it
// converts and forwards to its base, unlike YUVSink which is a terminal
// draw target.
type YUVToRGBAPipe struct {
	pipeline.BasePipe
}

func NewYUVToRGBAPipe(base pipeline.Pipe) *YUVToRGBAPipe {
	return &YUVToRGBAPipe{BasePipe: pipeline.BasePipe{Base: base}}
}

func (p *YUVToRGBAPipe) Info() pipeline.Info {
	return pipeline.Info{EnvironmentSupported: true}
}

func (p *YUVToRGBAPipe) Setup(ctx context.Context, cfg pipeline.DecoderConfig) error {
	p.SetState(pipeline.StateConfigured)
	return nil
}

func (p *YUVToRGBAPipe) Cleanup() {
	p.CleanupBase()
	p.SetState(pipeline.StateCleaned)
}

func (p *YUVToRGBAPipe) PollRequestIdr() bool { return p.PollBase() }

func (p *YUVToRGBAPipe) Submit(ctx context.Context, payload pipeline.Payload) error {
	if payload.Kind != pipeline.KindYUV420 || payload.YUV == nil {
		return nil
	}
	if p.Base == nil {
		return nil
	}
	rgba := convert.YUV420ToRGBA(*payload.YUV)
	return p.Base.Submit(ctx, pipeline.Payload{Kind: pipeline.KindRGBA, RGBA: &rgba})
}
