// Package pipe adapts the Opus decoder binding to the pipe graph's
// fixed capability set, per SPEC_FULL §6.
package pipe

import (
	"context"

	"github.com/corestream/streamcore/audio/opus"
	"github.com/corestream/streamcore/pipeline"
)

// OpusDecodePipe consumes encoded-audio payloads and emits PCM
// payloads downstream through its embedded base.
type OpusDecodePipe struct {
	pipeline.BasePipe

	dec             *opus.Decoder
	sampleRate      int
	channels        int
	streams         int
	coupled         int
	mapping         opus.Mapping
	samplesPerFrame int
	lastWasLost     bool
}

func NewOpusDecodePipe(sampleRate, channels, streams, coupledStreams, samplesPerFrame int, mapping opus.Mapping) *OpusDecodePipe {
	return &OpusDecodePipe{
		sampleRate:      sampleRate,
		channels:        channels,
		streams:         streams,
		coupled:         coupledStreams,
		mapping:         mapping,
		samplesPerFrame: samplesPerFrame,
	}
}

func (p *OpusDecodePipe) Info() pipeline.Info {
	return pipeline.Info{EnvironmentSupported: true}
}

func (p *OpusDecodePipe) Setup(ctx context.Context, cfg pipeline.DecoderConfig) error {
	dec, err := opus.New(p.sampleRate, p.channels, p.streams, p.coupled, p.mapping)
	if err != nil {
		return err
	}
	p.dec = dec
	p.SetState(pipeline.StateConfigured)
	return nil
}

func (p *OpusDecodePipe) Cleanup() {
	p.dec = nil
	p.CleanupBase()
	p.SetState(pipeline.StateCleaned)
}

func (p *OpusDecodePipe) PollRequestIdr() bool { return p.PollBase() }

// Submit decodes one Opus packet and forwards PCM to the base pipe. A
// nil Data slice on an otherwise-present encoded-audio payload is
// treated as a lost packet and decoded with concealment; the decoder
// is asked for FEC recovery on the packet immediately following a
// loss, since that is the one carrying the lost packet's FEC data.
func (p *OpusDecodePipe) Submit(ctx context.Context, payload pipeline.Payload) error {
	if payload.Kind != pipeline.KindEncodedAudio || payload.Encoded == nil {
		return nil
	}
	if p.dec == nil {
		return pipeline.ErrNotConfigured
	}

	unit := payload.Encoded
	decodeFec := p.lastWasLost && len(unit.Data) > 0
	samples, err := p.dec.Decode(unit.Data, p.samplesPerFrame, decodeFec)
	if err != nil {
		return err
	}
	p.lastWasLost = len(unit.Data) == 0

	if p.Base == nil {
		return nil
	}
	return p.Base.Submit(ctx, pipeline.Payload{
		Kind: pipeline.KindPCM,
		PCM: &pipeline.PCMChunk{
			Samples:    samples,
			Channels:   p.dec.Channels(),
			SampleRate: p.sampleRate,
		},
	})
}
