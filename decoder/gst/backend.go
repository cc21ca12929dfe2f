// Package gst wraps a GStreamer decode pipeline (appsrc feeding a
// hardware- or software-accelerated decoder element, terminating in an
// appsink emitting raw I420 buffers) behind a small push/pull Go API,
// the same shape the pack's remote-desktop encode pipeline uses in
// reverse.
package gst

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-gst/go-gst/gst"
	"github.com/go-gst/go-gst/gst/app"
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		gst.Init(nil)
	})
}

// Frame is one decoded I420 (4:2:0 planar) buffer pulled from appsink.
type Frame struct {
	Y, U, V               []byte
	YStride, UVStride     int
	Width, Height         int
	PTSMicroseconds       int64
}

// Backend owns one decode pipeline: push compressed access units in
// via Submit, receive decoded frames via Frames().
type Backend struct {
	pipeline *gst.Pipeline
	src      *app.Source
	sink     *app.Sink
	frameCh  chan Frame
	running  atomic.Bool
	stopOnce sync.Once
}

// New builds the pipeline "appsrc ! parseElement ! decodeElement !
// videoconvert ! I420 appsink" around a single decoder element (a
// hardware one such as "nvh264dec" or a software one such as
// "avdec_h264"). It does not fall back to another element itself: the
// hardware-then-software order of SPEC_FULL §4.2 is carried out by the
// caller calling New again. preferHardware is not read.
func New(parseElement, decodeElement string, preferHardware bool) (*Backend, error) {
	Init()

	pipelineStr := fmt.Sprintf(
		"appsrc name=src format=time is-live=true do-timestamp=false ! %s ! %s ! videoconvert ! video/x-raw,format=I420 ! appsink name=sink emit-signals=true sync=false",
		parseElement, decodeElement,
	)

	pipeline, err := gst.NewPipelineFromString(pipelineStr)
	if err != nil {
		return nil, fmt.Errorf("gst: parse pipeline: %w", err)
	}

	srcElem, err := pipeline.GetElementByName("src")
	if err != nil {
		pipeline.SetState(gst.StateNull)
		return nil, fmt.Errorf("gst: missing appsrc: %w", err)
	}
	sinkElem, err := pipeline.GetElementByName("sink")
	if err != nil {
		pipeline.SetState(gst.StateNull)
		return nil, fmt.Errorf("gst: missing appsink: %w", err)
	}

	b := &Backend{
		pipeline: pipeline,
		src:      app.SrcFromElement(srcElem),
		sink:     app.SinkFromElement(sinkElem),
		frameCh:  make(chan Frame, 4),
	}
	return b, nil
}

func (b *Backend) Start(ctx context.Context) error {
	b.sink.SetProperty("max-buffers", uint(4))
	b.sink.SetProperty("drop", true)
	b.sink.SetCallbacks(&app.SinkCallbacks{NewSampleFunc: b.onNewSample})

	if err := b.pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("gst: set playing: %w", err)
	}
	b.running.Store(true)
	go b.watchBus(ctx)
	return nil
}

// Submit pushes one Annex-B/AVCC access unit into the pipeline.
func (b *Backend) Submit(data []byte, ptsMicroseconds int64) error {
	buf := gst.NewBufferFromBytes(data)
	buf.SetPresentationTimestamp(gst.ClockTime(ptsMicroseconds * 1000))
	return b.src.PushBuffer(buf)
}

func (b *Backend) onNewSample(sink *app.Sink) gst.FlowReturn {
	if !b.running.Load() {
		return gst.FlowEOS
	}
	sample := sink.PullSample()
	if sample == nil {
		return gst.FlowOK
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		return gst.FlowOK
	}
	mapInfo := buffer.Map(gst.MapRead)
	if mapInfo == nil {
		return gst.FlowOK
	}
	defer buffer.Unmap()

	caps := sample.GetCaps()
	width, height := capsDimensions(caps)
	ySize := width * height
	uvSize := (width / 2) * (height / 2)
	data := mapInfo.Bytes()
	if len(data) < ySize+2*uvSize {
		return gst.FlowOK
	}

	frame := Frame{
		Y:        append([]byte(nil), data[:ySize]...),
		U:        append([]byte(nil), data[ySize:ySize+uvSize]...),
		V:        append([]byte(nil), data[ySize+uvSize:ySize+2*uvSize]...),
		YStride:  width,
		UVStride: width / 2,
		Width:    width,
		Height:   height,
	}
	if ptsDur := buffer.PresentationTimestamp().AsDuration(); ptsDur != nil {
		frame.PTSMicroseconds = ptsDur.Microseconds()
	}

	select {
	case b.frameCh <- frame:
	default:
		// drop under backpressure, matching the low-latency preference
		// of the pack's own appsink wiring.
	}
	return gst.FlowOK
}

func capsDimensions(caps *gst.Caps) (w, h int) {
	if caps == nil || caps.GetSize() == 0 {
		return 0, 0
	}
	s := caps.GetStructureAt(0)
	if s == nil {
		return 0, 0
	}
	wv, _ := s.GetValue("width")
	hv, _ := s.GetValue("height")
	wi, _ := wv.(int)
	hi, _ := hv.(int)
	return wi, hi
}

func (b *Backend) watchBus(ctx context.Context) {
	bus := b.pipeline.GetPipelineBus()
	if bus == nil {
		return
	}
	for b.running.Load() {
		select {
		case <-ctx.Done():
			b.Stop()
			return
		default:
		}
		msg := bus.TimedPop(gst.ClockTime(100_000_000))
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS, gst.MessageError:
			b.Stop()
			return
		}
	}
}

func (b *Backend) Frames() <-chan Frame { return b.frameCh }

func (b *Backend) Stop() {
	b.stopOnce.Do(func() {
		b.running.Store(false)
		if b.pipeline != nil {
			b.pipeline.SetState(gst.StateNull)
		}
		close(b.frameCh)
	})
}
