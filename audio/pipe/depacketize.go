package pipe

import (
	"context"

	"github.com/pion/rtp"
	"github.com/pkg/errors"

	"github.com/corestream/streamcore/pipeline"
)

// DepacketizePipe unwraps RTP-framed Opus packets into bare encoded-
// audio units before handing them to OpusDecodePipe, mirroring the
// video translator's split between transport framing and codec
// payload.
type DepacketizePipe struct {
	pipeline.BasePipe

	lastSeq     uint16
	haveLastSeq bool
}

func NewDepacketizePipe() *DepacketizePipe {
	return &DepacketizePipe{}
}

func (p *DepacketizePipe) Info() pipeline.Info {
	return pipeline.Info{EnvironmentSupported: true}
}

func (p *DepacketizePipe) Setup(ctx context.Context, cfg pipeline.DecoderConfig) error {
	p.SetState(pipeline.StateConfigured)
	return nil
}

func (p *DepacketizePipe) Cleanup() {
	p.CleanupBase()
	p.SetState(pipeline.StateCleaned)
}

func (p *DepacketizePipe) PollRequestIdr() bool { return p.PollBase() }

// Submit parses an RTP packet from payload.Encoded.Data and forwards
// its Opus payload downstream. A sequence-number gap produces a
// synthetic empty payload for each missing packet so the decoder's
// concealment path runs once per actual loss, not once per gap.
func (p *DepacketizePipe) Submit(ctx context.Context, payload pipeline.Payload) error {
	if payload.Kind != pipeline.KindEncodedAudio || payload.Encoded == nil {
		return nil
	}
	var pkt rtp.Packet
	if err := pkt.Unmarshal(payload.Encoded.Data); err != nil {
		return errors.Wrap(err, "depacketize: unmarshal rtp packet")
	}

	if p.Base == nil {
		return nil
	}

	if p.haveLastSeq {
		for seq := p.lastSeq + 1; seq != pkt.SequenceNumber; seq++ {
			if err := p.Base.Submit(ctx, pipeline.Payload{
				Kind: pipeline.KindEncodedAudio,
				Encoded: &pipeline.EncodedUnit{
					TimestampMicroseconds: payload.Encoded.TimestampMicroseconds,
				},
			}); err != nil {
				return err
			}
		}
	}
	p.lastSeq = pkt.SequenceNumber
	p.haveLastSeq = true

	return p.Base.Submit(ctx, pipeline.Payload{
		Kind: pipeline.KindEncodedAudio,
		Encoded: &pipeline.EncodedUnit{
			Data:                  pkt.Payload,
			TimestampMicroseconds: payload.Encoded.TimestampMicroseconds,
		},
	})
}
