// Package stats carries the windowed rate counters and IDR-request
// hysteresis decision shared by the hardware decoder pipe and the
// fragmented-MP4 sink.
package stats

import (
	"fmt"
	"time"
)

// FPS is a windowed frame-rate counter.
type FPS struct {
	fps      uint32
	interval time.Duration

	frameCount int64
	beginTS    int64
}

func NewFPS() *FPS {
	return &FPS{interval: time.Second}
}

func (f *FPS) Add() {
	nowTS := time.Now().UnixNano()

	f.frameCount++
	d := nowTS - f.beginTS
	if d >= int64(f.interval) {
		f.fps = uint32(f.frameCount * int64(time.Second) / d)
		f.frameCount = 0
		f.beginTS = nowTS
	}
}

func (f *FPS) GetFPS() uint32 {
	return f.fps
}

func (f *FPS) String() string {
	return fmt.Sprintf("%d", f.fps)
}
