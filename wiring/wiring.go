// Package wiring assembles the concrete candidate chain table the
// builder selects from (SPEC_FULL §4.7). It is kept separate from
// pipeline itself so that package stays free of the concrete decoder,
// render, and mux imports every candidate pulls in; pipeline only
// knows about Pipe, Candidate, and Build.
package wiring

import (
	"image"
	"io"

	"github.com/pion/webrtc/v4"

	"github.com/corestream/streamcore/decoder"
	"github.com/corestream/streamcore/mux/fmp4"
	"github.com/corestream/streamcore/pipeline"
	"github.com/corestream/streamcore/video/render"
)

// VideoCandidates returns the preference-ordered chain table for the
// video leg: hardware decode through YUV420->RGBA conversion to an RGBA
// sink first, the same decode and conversion to a videotrack sink
// second, and the fMP4 fallback last, so a decoded frame path is
// preferred over a remux-and-hand-to-media-source path. The three
// candidates declare different output kinds (rgba, videotrack, data).
func VideoCandidates(onFrame func(*image.RGBA), track *webrtc.TrackLocalStaticSample, fmp4Out io.Writer, assumedFPS float64, width, height int) []pipeline.Candidate {
	return []pipeline.Candidate{
		{
			Name:   "hardware-rgba",
			Input:  pipeline.KindEncodedVideo,
			Output: pipeline.KindRGBA,
			Pipes: []pipeline.NamedFactory{
				{
					Name: "hardware-decode",
					Info: func() pipeline.Info { return (&decoder.HardwarePipe{}).Info() },
					Factory: func(base pipeline.Pipe) (pipeline.Pipe, error) {
						return decoder.NewHardwarePipe(base), nil
					},
				},
				{
					Name: "yuv-to-rgba",
					Info: func() pipeline.Info { return pipeline.Info{EnvironmentSupported: true} },
					Factory: func(base pipeline.Pipe) (pipeline.Pipe, error) {
						return render.NewYUVToRGBAPipe(base), nil
					},
				},
			},
			Renderer: pipeline.NamedFactory{
				Name: "rgba-sink",
				Info: func() pipeline.Info { return pipeline.Info{EnvironmentSupported: true} },
				Factory: func(base pipeline.Pipe) (pipeline.Pipe, error) {
					return render.NewRGBASink(onFrame), nil
				},
			},
		},
		{
			Name:   "hardware-videotrack",
			Input:  pipeline.KindEncodedVideo,
			Output: pipeline.KindVideoTrack,
			Pipes: []pipeline.NamedFactory{
				{
					Name: "hardware-decode",
					Info: func() pipeline.Info { return (&decoder.HardwarePipe{}).Info() },
					Factory: func(base pipeline.Pipe) (pipeline.Pipe, error) {
						return decoder.NewHardwarePipe(base), nil
					},
				},
				{
					Name: "yuv-to-rgba",
					Info: func() pipeline.Info { return pipeline.Info{EnvironmentSupported: true} },
					Factory: func(base pipeline.Pipe) (pipeline.Pipe, error) {
						return render.NewYUVToRGBAPipe(base), nil
					},
				},
			},
			Renderer: pipeline.NamedFactory{
				Name: "videotrack-sink",
				Info: func() pipeline.Info { return pipeline.Info{EnvironmentSupported: track != nil} },
				Factory: func(base pipeline.Pipe) (pipeline.Pipe, error) {
					return render.NewTrackSink(track, encodeRawRGBA), nil
				},
			},
		},
		{
			Name:   "fmp4-fallback",
			Input:  pipeline.KindEncodedVideo,
			Output: pipeline.KindData,
			Pipes:  nil,
			Renderer: pipeline.NamedFactory{
				Name: "fmp4-sink",
				Info: func() pipeline.Info {
					return pipeline.Info{
						EnvironmentSupported: true,
						SupportedVideoCodecs: map[string]pipeline.Support{
							"avc1.42E01E": pipeline.SupportYes,
							"avc3.42E01E": pipeline.SupportYes,
						},
					}
				},
				Factory: func(base pipeline.Pipe) (pipeline.Pipe, error) {
					return fmp4.NewSink(fmp4Out, assumedFPS, width, height), nil
				},
			},
		},
	}
}

// encodeRawRGBA is the placeholder sample encoder handed to the
// videotrack sink: it passes the raw RGBA buffer through untouched,
// since the actual network codec for the outgoing track is negotiated
// by the embedder, not by this pipe graph.
func encodeRawRGBA(frame pipeline.RGBAFrame) ([]byte, error) {
	return frame.Buffer, nil
}
