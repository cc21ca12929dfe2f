// Package opus wraps a multistream Opus decoder for the audio leg of
// SPEC_FULL §6: RTP-depacketized Opus payloads in, interleaved float32
// PCM out.
package opus

import (
	"github.com/pkg/errors"
	opus "gopkg.in/hraban/opus.v2"
)

// Decoder owns one multistream Opus decoder instance. It is not safe
// for concurrent use; callers serialize submissions the same way a
// single audio pipe does.
type Decoder struct {
	ms       *opus.MultistreamDecoder
	channels int
}

// Mapping describes the Opus multistream channel mapping table: which
// input stream and channel pair feeds each output channel.
type Mapping []byte

// New constructs a multistream Opus decoder. sampleRate is fixed by
// the negotiated audio codec (48000 in SPEC_FULL §8 property 10); streams and
// coupledStreams come from the encoder's channel mapping header.
func New(sampleRate, channels, streams, coupledStreams int, mapping Mapping) (*Decoder, error) {
	ms, err := opus.NewMultistreamDecoder(sampleRate, channels, streams, coupledStreams, []byte(mapping))
	if err != nil {
		return nil, errors.Wrap(err, "opus: new multistream decoder")
	}
	return &Decoder{ms: ms, channels: channels}, nil
}

// Decode decodes one Opus packet into interleaved float32 PCM. payload
// may be nil to request packet-loss concealment for a dropped packet;
// frameSize is the negotiated samplesPerFrame for this audio unit, per
// channel; decodeFec asks the decoder to recover the previous packet's
// content from this one's embedded forward-error-correction data
// instead of concealing it, when the caller already has the next
// packet in hand.
func (d *Decoder) Decode(payload []byte, frameSize int, decodeFec bool) ([]float32, error) {
	out := make([]float32, frameSize*d.channels)
	var n int
	var err error
	if decodeFec {
		n, err = d.ms.DecodeFloat32FEC(payload, out)
	} else {
		n, err = d.ms.DecodeFloat32(payload, out)
	}
	if err != nil {
		return nil, errors.Wrap(err, "opus: decode")
	}
	return out[:n*d.channels], nil
}

func (d *Decoder) Channels() int { return d.channels }
