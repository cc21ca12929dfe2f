// Package translator implements the Annex-B to length-prefixed
// (AVCC/HVCC) stream translator: the keyframe-synchronous state machine
// that buffers in-band parameter sets and rewrites an elementary
// bitstream into the chunked form a hardware decoder configured for
// out-of-band parameter sets expects.
package translator

import (
	"github.com/rs/zerolog/log"

	"github.com/corestream/streamcore/bitio"
	"github.com/corestream/streamcore/codec"
	"github.com/corestream/streamcore/codec/h264"
	"github.com/corestream/streamcore/codec/h265"
	"github.com/corestream/streamcore/pipeline"
)

// Result is the outcome of one SubmitDecodeUnit call.
type Result struct {
	Configure *pipeline.DecoderConfig
	Chunk     []byte
}

// Translator holds the latched parameter-set state described in
// SPEC_FULL §3: hasDescription never reverts once set, and pending
// parameter sets are cleared every time they are consumed.
type Translator struct {
	family codec.Family
	config pipeline.DecoderConfig

	hasDescription bool
	sps, pps, vps  []byte

	// ZeroLatencyRewrite is the supplemented SPS VUI rewrite knob from
	// SPEC_FULL §12; nil means off (the default, spec-preserving
	// behavior).
	ZeroLatencyRewrite func(sps []byte) []byte
}

func New(family codec.Family, initial pipeline.DecoderConfig) *Translator {
	return &Translator{family: family, config: initial}
}

func (t *Translator) HasDescription() bool { return t.hasDescription }

// SubmitDecodeUnit is the translator's single operation (SPEC_FULL §4.1).
func (t *Translator) SubmitDecodeUnit(unit pipeline.EncodedUnit) (Result, error) {
	if !unit.Key && !t.hasDescription {
		return Result{}, nil
	}

	var nalus [][]byte
	switch t.family {
	case codec.FamilyH265:
		nalus = h265.SplitAnnexB(unit.Data)
	default:
		nalus = h264.SplitAnnexB(unit.Data)
	}

	out := bitio.NewByteBuffer()
	for _, nal := range nalus {
		switch t.family {
		case codec.FamilyH265:
			switch {
			case h265.IsVPS(nal):
				t.vps = append([]byte(nil), nal...)
				continue
			case h265.IsSPS(nal):
				t.sps = append([]byte(nil), t.rewriteSPS(nal)...)
				continue
			case h265.IsPPS(nal):
				t.pps = append([]byte(nil), nal...)
				continue
			}
		default:
			switch {
			case h264.IsSPS(nal):
				t.sps = append([]byte(nil), t.rewriteSPS(nal)...)
				continue
			case h264.IsPPS(nal):
				t.pps = append([]byte(nil), nal...)
				continue
			}
		}
		out.WriteU32BE(uint32(len(nal)))
		out.WriteBytes(nal)
	}

	res := Result{Chunk: out.Bytes()}

	if t.readyToReconfigure() {
		desc, cfg := t.synthesize()
		t.sps, t.pps, t.vps = nil, nil, nil
		t.hasDescription = true
		t.config = cfg
		t.config.Description = desc
		cfgCopy := t.config
		res.Configure = &cfgCopy
	}

	if unit.Key && !t.hasDescription {
		log.Warn().Str("family", string(t.family)).Msg("keyframe arrived without a usable description")
	}

	return res, nil
}

func (t *Translator) readyToReconfigure() bool {
	if t.family == codec.FamilyH265 {
		return len(t.vps) > 0 && len(t.sps) > 0 && len(t.pps) > 0
	}
	return len(t.sps) > 0 && len(t.pps) > 0
}

func (t *Translator) rewriteSPS(sps []byte) []byte {
	if t.ZeroLatencyRewrite == nil {
		return sps
	}
	return t.ZeroLatencyRewrite(sps)
}

func (t *Translator) synthesize() (description []byte, cfg pipeline.DecoderConfig) {
	cfg = t.config
	if t.family == codec.FamilyH265 {
		description = h265.BuildHVCDecoderConfigRecord(t.vps, t.sps, t.pps)
		return description, cfg
	}
	description = h264.BuildAVCDecoderConfigRecord(t.sps, t.pps)
	if fields, ok := h264.ParseSPSFields(t.sps); ok {
		cfg.Codec = codec.DeriveAVCTag(fields.ProfileIdc, fields.ConstraintFlags, fields.LevelIdc)
	}
	return description, cfg
}
