package cmd

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/corestream/streamcore/codec/h264"
	"github.com/corestream/streamcore/config"
	"github.com/corestream/streamcore/pipeline"
	"github.com/corestream/streamcore/wiring"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode an Annex-B elementary stream to a fragmented-MP4 file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		in, err := os.Open(decodeArgsV.inFile)
		if err != nil {
			return err
		}
		defer in.Close()

		out, err := os.OpenFile(decodeArgsV.outFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer out.Close()

		return runDecode(cmd.Context(), in, out, cfg)
	},
}

type decodeArgs struct {
	inFile  string
	outFile string
}

var decodeArgsV decodeArgs

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().StringVarP(&decodeArgsV.inFile, "in", "i", "", "Annex-B elementary stream file")
	decodeCmd.MarkFlagRequired("in")
	decodeCmd.Flags().StringVarP(&decodeArgsV.outFile, "out", "o", "out.mp4", "fragmented-MP4 output file")
}

// runDecode reads the whole Annex-B stream as access units separated by
// Annex-B start codes, builds the fmp4-fallback chain, and submits each
// unit. A production embedder would use the hardware or software chain
// instead and drive Submit from a live network source; the CLI only
// exercises the chain the environment supports without a display.
func runDecode(ctx context.Context, in io.Reader, out io.Writer, cfg config.Config) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	nalus := h264.SplitAnnexB(data)

	table := wiring.VideoCandidates(nil, nil, out, 30, 1920, 1080)
	result, err := pipeline.Build(ctx, table, pipeline.Options{
		Output:  pipeline.KindData,
		Codecs:  []string{"avc1.42E01E", "avc3.42E01E"},
		Backend: cfg.HardwareAcceleration,
	})
	if err != nil {
		return err
	}
	log.Info().Str("chain", result.ChainName).Msg("built decode chain")

	if err := result.Chain.Setup(ctx, pipeline.DecoderConfig{
		Codec:                "avc3.42E01E",
		HardwareAcceleration: cfg.HardwareAcceleration,
		Width:                1920,
		Height:               1080,
	}); err != nil {
		return err
	}
	defer result.Chain.Cleanup()

	var unit []byte
	for _, nal := range nalus {
		unit = append(unit, []byte{0, 0, 0, 1}...)
		unit = append(unit, nal...)
		if h264.IsIDR(nal) || h264.NALType(nal) == h264.NALTypeSlice {
			if err := result.Chain.Submit(ctx, pipeline.Payload{
				Kind: pipeline.KindEncodedVideo,
				Encoded: &pipeline.EncodedUnit{
					Key:  h264.IsIDR(nal),
					Data: unit,
				},
			}); err != nil {
				return err
			}
			unit = nil
		}
	}
	return nil
}
