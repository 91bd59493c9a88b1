package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cascii/internal/pipeline"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		fontSize  int
		fps       int
		audio     string
		crf       int
		encPreset string
		noColor   bool
		batchSize int
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "render <framesdir> <out.mp4>",
		Short: "Render ASCII frames into a video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("font-size") {
				fontSize = cfg.Render.FontSizePx
			}
			if !cmd.Flags().Changed("crf") {
				crf = cfg.Render.CRF
			}
			if !cmd.Flags().Changed("preset") {
				encPreset = cfg.Render.Preset
			}
			if !cmd.Flags().Changed("batch-size") {
				batchSize = cfg.Render.BatchSize
			}
			if !cmd.Flags().Changed("fps") {
				preset, presetErr := cfg.ActivePreset(cfg.DefaultPreset)
				if presetErr != nil {
					return presetErr
				}
				fps = preset.FPS
			}

			// A video source for --audio gets its track pulled out first.
			if audio != "" && isVideoFile(audio) {
				client, clientErr := ctx.ffmpegClient()
				if clientErr != nil {
					return clientErr
				}
				extracted := filepath.Join(os.TempDir(), fmt.Sprintf("cascii-audio-%d.m4a", os.Getpid()))
				fmt.Fprintf(cmd.OutOrStdout(), "Extracting audio from %s...\n", audio)
				if err := client.ExtractAudio(cmd.Context(), audio, extracted); err != nil {
					return err
				}
				defer os.Remove(extracted)
				audio = extracted
			}

			display := newProgressDisplay("Rendering")
			defer display.Done()

			runner, cleanup, err := ctx.runner(display.Observe)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := runner.Render(cmd.Context(), pipeline.RenderJob{
				FramesDir:    args[0],
				Output:       args[1],
				AudioPath:    audio,
				FPS:          fps,
				FontSizePx:   fontSize,
				CRF:          crf,
				EncodePreset: encPreset,
				UseColors:    !noColor,
				BatchSize:    batchSize,
				Workers:      workers,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d frames to %s (%dx%d)\n",
				result.Frames, args[1], result.WidthPx, result.HeightPx)
			return nil
		},
	}

	cmd.Flags().IntVar(&fontSize, "font-size", 0, "Glyph size in pixels")
	cmd.Flags().IntVar(&fps, "fps", 0, "Output frame rate")
	cmd.Flags().StringVar(&audio, "audio", "", "Audio file, or a video whose track is extracted, muxed into the output")
	cmd.Flags().IntVar(&crf, "crf", 0, "x264 quality (lower is better)")
	cmd.Flags().StringVar(&encPreset, "preset", "", "x264 speed preset")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Render white-on-black even when frames carry colors")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Frames rendered per batch")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel render workers (default: CPU count)")

	return cmd
}
