// Package worker implements the offloaded-pipe-segment boundary of
// SPEC_FULL §4.6: a contiguous pipe sub-chain runs on a background
// goroutine, reached by a single ordered channel so message order is
// preserved across the boundary. The channel is bounded, so a sender
// blocks once it is full (see NewOffload): backpressure does reach the
// sender. Only setup, submit and cleanup messages exist.
package worker

import (
	"context"

	"github.com/corestream/streamcore/pipeline"
)

// MessageType tags what an offloaded message carries.
type MessageType int

const (
	MsgSetup MessageType = iota
	MsgSubmit
	MsgCleanup
)

// Message is one typed item crossing the worker boundary. Transferable
// resources (here, byte buffers) are moved by reference, not copied,
// matching the spec's transfer semantics as closely as a single-process
// Go program can.
type Message struct {
	Type    MessageType
	Config  pipeline.DecoderConfig
	Payload pipeline.Payload
}

// Offload runs chain on a dedicated goroutine, accepting messages over
// In and reporting Setup/Submit errors over Errors. The channel is the
// single ordering boundary described in §5: messages are processed in
// arrival order and nothing else touches chain concurrently.
type Offload struct {
	chain  pipeline.Pipe
	In     chan Message
	Errors chan error
	done   chan struct{}
}

// NewOffload starts the background goroutine. bufferSize bounds the
// in-flight message queue; a full channel blocks the sender, which is
// the Go-idiomatic stand-in for "the receiver must cope" since this
// process has no equivalent of a detached worker thread that can simply
// drop messages without risking silent loss of control messages like
// Cleanup.
func NewOffload(chain pipeline.Pipe, bufferSize int) *Offload {
	o := &Offload{
		chain:  chain,
		In:     make(chan Message, bufferSize),
		Errors: make(chan error, bufferSize),
		done:   make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *Offload) run() {
	defer close(o.done)
	ctx := context.Background()
	for msg := range o.In {
		switch msg.Type {
		case MsgSetup:
			if err := o.chain.Setup(ctx, msg.Config); err != nil {
				o.trySend(err)
			}
		case MsgSubmit:
			if err := o.chain.Submit(ctx, msg.Payload); err != nil {
				o.trySend(err)
			}
		case MsgCleanup:
			o.chain.Cleanup()
			return
		}
	}
}

func (o *Offload) trySend(err error) {
	select {
	case o.Errors <- err:
	default:
	}
}

// Submit enqueues one payload without blocking the caller beyond
// channel capacity; callers on the main context must not assume this
// returns only after the offloaded pipe has processed it.
func (o *Offload) Submit(payload pipeline.Payload) {
	o.In <- Message{Type: MsgSubmit, Payload: payload}
}

func (o *Offload) Setup(cfg pipeline.DecoderConfig) {
	o.In <- Message{Type: MsgSetup, Config: cfg}
}

// Cleanup enqueues the terminal message and waits for the worker
// goroutine to exit, since cleanup must have fully cascaded before the
// caller tears down shared resources.
func (o *Offload) Cleanup() {
	o.In <- Message{Type: MsgCleanup}
	<-o.done
}
