// Package fmp4 implements the fragmented-MP4 / media-source fallback
// emitter of SPEC_FULL §4.4: an init segment on the first keyframe,
// followed by one moof+mdat fragment per unit, built on
// github.com/Eyevinn/mp4ff the way the pack's remote-desktop streaming
// subsystem builds its own fMP4 output — but with this spec's literal
// 1,000,000 Hz (microsecond) timescale rather than that subsystem's
// 90kHz, since SPEC_FULL §4.4 fixes the timebase explicitly.
package fmp4

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"
)

const Timescale = 1_000_000

// Emitter owns the per-stream state needed to produce an init segment
// once and a fragment per subsequent unit: the latched SPS/PPS pair,
// sequence numbering, and the timebase zero point.
type Emitter struct {
	sps, pps      []byte
	width, height int

	initialized    bool
	seqNum         uint32
	baseTimeZero   int64
	lastEmittedDTS int64
	haveLast       bool
	assumedFPS     float64
	driftOffset    int64
}

func NewEmitter(assumedFPS float64) *Emitter {
	if assumedFPS <= 0 {
		assumedFPS = 30
	}
	return &Emitter{assumedFPS: assumedFPS}
}

// WriteInitSegment encodes the ftyp/moov/mvex init segment for an AVC
// track once SPS/PPS are known, per §4.4's box tree.
func (e *Emitter) WriteInitSegment(sps, pps []byte, width, height int) ([]byte, error) {
	e.sps, e.pps, e.width, e.height = sps, pps, width, height

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(Timescale, "video", "und")

	trak := init.Moov.Trak
	stsd := trak.Mdia.Minf.Stbl.Stsd

	avcC, err := mp4.CreateAvcC([][]byte{sps}, [][]byte{pps}, true)
	if err != nil {
		return nil, fmt.Errorf("fmp4: create avcC: %w", err)
	}
	entry := mp4.CreateVisualSampleEntryBox("avc1", uint16(width), uint16(height), avcC)
	stsd.AddChild(entry)

	var buf bytes.Buffer
	if err := init.Encode(&buf); err != nil {
		return nil, fmt.Errorf("fmp4: encode init segment: %w", err)
	}
	e.initialized = true
	e.seqNum = 0
	e.haveLast = false
	e.driftOffset = 0
	return buf.Bytes(), nil
}

func (e *Emitter) Initialized() bool { return e.initialized }

// WriteFragment encodes one moof+mdat pair for a single access unit.
// timestampMicroseconds is repaired for monotonicity per §4.4/§7's
// Protocol-drift rule before being used as the base decode time: once a
// source timestamp regresses or repeats, a flat one-frame-duration bump
// is latched onto a standing drift offset and applied to every later
// sample too, rather than only to the one that violated the rule — a
// single rollback in the source clock should not cause a second
// collision later once the clock catches back up.
func (e *Emitter) WriteFragment(nalus [][]byte, keyframe bool, timestampMicroseconds int64) ([]byte, error) {
	if !e.initialized {
		return nil, fmt.Errorf("fmp4: fragment requested before init segment")
	}
	if e.seqNum == 0 {
		e.baseTimeZero = timestampMicroseconds
	}
	e.seqNum++

	raw := timestampMicroseconds - e.baseTimeZero
	dts := raw + e.driftOffset
	if e.haveLast && dts <= e.lastEmittedDTS {
		step := int64(Timescale / e.assumedFPS)
		dts = e.lastEmittedDTS + step
		e.driftOffset += step
	}
	e.lastEmittedDTS = dts
	e.haveLast = true

	var sampleData []byte
	for _, nal := range nalus {
		sampleData = append(sampleData, byte(len(nal)>>24), byte(len(nal)>>16), byte(len(nal)>>8), byte(len(nal)))
		sampleData = append(sampleData, nal...)
	}

	frag, err := mp4.CreateFragment(e.seqNum, 1)
	if err != nil {
		return nil, fmt.Errorf("fmp4: create fragment: %w", err)
	}

	flags := mp4.NonSyncSampleFlags
	if keyframe {
		flags = mp4.SyncSampleFlags
	}

	sampleDur := uint32(Timescale / e.assumedFPS)
	sample := mp4.FullSample{
		Sample: mp4.Sample{
			Flags: flags,
			Dur:   sampleDur,
			Size:  uint32(len(sampleData)),
		},
		DecodeTime: uint64(dts),
		Data:       sampleData,
	}
	frag.AddFullSample(sample)

	var buf bytes.Buffer
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("fmp4: encode fragment: %w", err)
	}
	return buf.Bytes(), nil
}

// SequenceNumber reports the most recently emitted mfhd sequence
// number, for tests asserting property 7's 1,2,...,N progression.
func (e *Emitter) SequenceNumber() uint32 { return e.seqNum }

// LastEmittedDTS reports the base decode time written into the most
// recent fragment's tfdt, after monotonicity repair.
func (e *Emitter) LastEmittedDTS() int64 { return e.lastEmittedDTS }
