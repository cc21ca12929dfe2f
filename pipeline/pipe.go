// Package pipeline implements the composable pipe graph: typed nodes
// that decode, translate, color-convert, and render a media stream, and
// the builder that assembles a chain of them from static capability
// answers.
package pipeline

import "context"

// Kind tags the payload a pipe consumes or produces. The builder
// compares only a candidate's declared Output kind with the requested
// one; it does not check that neighboring pipes' kinds match.
type Kind string

const (
	KindEncodedVideo Kind = "encoded-video"
	KindEncodedAudio Kind = "encoded-audio"
	KindPlatformFrame Kind = "platform-frame"
	KindYUV420       Kind = "yuv420"
	KindRGBA         Kind = "rgba"
	KindPCM          Kind = "pcm"
	KindVideoTrack   Kind = "videotrack"
	KindData         Kind = "data"
)

// Support answers whether a pipe can handle a given codec tag statically.
type Support string

const (
	SupportYes   Support = "yes"
	SupportNo    Support = "no"
	SupportMaybe Support = "maybe"
)

// Info is the static capability answer a pipe gives before it is ever
// instantiated, used by the builder to prune candidate chains.
type Info struct {
	EnvironmentSupported bool
	SupportedVideoCodecs map[string]Support
}

// EncodedUnit is one elementary video access unit.
type EncodedUnit struct {
	Key                   bool
	Data                  []byte
	TimestampMicroseconds int64
	DurationMicroseconds  int64
}

// Yuv420Frame is a planar 4:2:0 decoded frame; planes may be padded by
// stride, matching the data model's Yuv420VideoFrame.
type Yuv420Frame struct {
	Y, U, V               []byte
	YStride, UVStride     int
	Width, Height         int
	TimestampMicroseconds int64
}

// RGBAFrame is a tightly packed 8-bit RGBA decoded frame, matching the
// data model's RgbaVideoFrame.
type RGBAFrame struct {
	Buffer                []byte
	Width, Height         int
	TimestampMicroseconds int64
}

// PCMChunk is one block of decoded interleaved float32 PCM samples.
type PCMChunk struct {
	Samples    []float32
	Channels   int
	SampleRate int
}

// Payload is the tagged-variant submission value every pipe's Submit
// receives; only the field matching Kind is populated. This is the
// design-notes resolution of the source's duck-typed optional-method
// composition: the payload carries its own kind tag rather than relying
// on a type switch across unrelated Go types, and each pipe's Submit
// ignores payloads whose Kind it does not handle. No constructor-time
// kind check exists.
type Payload struct {
	Kind    Kind
	Encoded *EncodedUnit
	YUV     *Yuv420Frame
	RGBA    *RGBAFrame
	PCM     *PCMChunk
}

// DecoderConfig is the configuration handed to a decoder pipe's Setup.
type DecoderConfig struct {
	Codec                string
	Description          []byte
	HardwareAcceleration string // "prefer-hardware", "prefer-software", ""
	OptimizeForLatency   bool
	Width, Height        int
}

// Pipe is the fixed capability set every node in the graph implements.
// Setup is the only method allowed to block; Submit, Cleanup, and
// PollRequestIdr must return promptly.
type Pipe interface {
	Info() Info
	Setup(ctx context.Context, cfg DecoderConfig) error
	Cleanup()
	PollRequestIdr() bool
	Submit(ctx context.Context, payload Payload) error
}

// State tracks a pipe's lifecycle per the data model's unconfigured /
// configured / cleaned states.
type State int

const (
	StateUnconfigured State = iota
	StateConfigured
	StateCleaned
	StateErrored
)

// BasePipe is embedded by concrete pipes to provide the downstream
// "upstream base" forwarding link and lifecycle bookkeeping common to
// all of them.
type BasePipe struct {
	Base  Pipe
	state State
}

func (b *BasePipe) State() State { return b.state }

// SetState transitions the pipe's lifecycle state. Exported so
// concrete pipes in other packages can drive it directly; BasePipe
// itself never changes state without being told to.
func (b *BasePipe) SetState(s State) { b.state = s }

// CleanupBase cascades Cleanup to the downstream base, post-order.
func (b *BasePipe) CleanupBase() {
	if b.Base != nil {
		b.Base.Cleanup()
	}
}

// PollBase cascades PollRequestIdr to the downstream base.
func (b *BasePipe) PollBase() bool {
	if b.Base != nil {
		return b.Base.PollRequestIdr()
	}
	return false
}
