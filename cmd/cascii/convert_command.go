package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cascii/internal/ascii"
	"cascii/internal/config"
	"cascii/internal/pipeline"
	"cascii/internal/services"
	"cascii/internal/services/ffmpeg"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
	".m4v":  true,
}

func isVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

type convertFlags struct {
	columns          int
	fps              int
	fontRatio        float64
	luminance        int
	preset           string
	small            bool
	large            bool
	start            string
	end              string
	colors           bool
	keepImages       bool
	preprocess       string
	preprocessPreset string
	workers          int
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert <input> [outdir]",
		Short: "Convert a video, image, or directory of images to ASCII frames",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, args, flags)
		},
	}

	cmd.Flags().IntVar(&flags.columns, "columns", 0, "Output width in characters")
	cmd.Flags().IntVar(&flags.fps, "fps", 0, "Frames per second to extract")
	cmd.Flags().Float64Var(&flags.fontRatio, "font-ratio", 0, "Character cell width/height ratio")
	cmd.Flags().IntVar(&flags.luminance, "luminance", -1, "Luminance threshold below which cells are blank")
	cmd.Flags().StringVar(&flags.preset, "preset", "", "Quality preset name")
	cmd.Flags().BoolVar(&flags.small, "small", false, "Shorthand for --preset small")
	cmd.Flags().BoolVar(&flags.large, "large", false, "Shorthand for --preset large")
	cmd.Flags().StringVar(&flags.start, "start", "", "Start timestamp ([hh:]mm:ss)")
	cmd.Flags().StringVar(&flags.end, "end", "", "End timestamp ([hh:]mm:ss)")
	cmd.Flags().BoolVar(&flags.colors, "colors", false, "Capture per-cell colors alongside characters")
	cmd.Flags().BoolVar(&flags.keepImages, "keep-images", false, "Keep extracted images after conversion")
	cmd.Flags().StringVar(&flags.preprocess, "preprocess", "", "Raw ffmpeg filter chain applied before extraction")
	cmd.Flags().StringVar(&flags.preprocessPreset, "preprocess-preset", "", "Named preprocessing preset")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Parallel conversion workers (default: CPU count)")

	return cmd
}

// resolveConvertSettings layers flag overrides on top of the selected preset.
func resolveConvertSettings(cmd *cobra.Command, cfg *config.Config, flags convertFlags) (config.Preset, ascii.Options, error) {
	presetName := cfg.DefaultPreset
	switch {
	case flags.preset != "":
		presetName = flags.preset
	case flags.small:
		presetName = "small"
	case flags.large:
		presetName = "large"
	}
	preset, err := cfg.ActivePreset(presetName)
	if err != nil {
		return config.Preset{}, ascii.Options{}, err
	}

	if cmd.Flags().Changed("columns") {
		preset.Columns = flags.columns
	}
	if cmd.Flags().Changed("fps") {
		preset.FPS = flags.fps
	}
	if cmd.Flags().Changed("font-ratio") {
		preset.FontRatio = flags.fontRatio
	}
	if cmd.Flags().Changed("luminance") {
		if flags.luminance < 0 || flags.luminance > 255 {
			return config.Preset{}, ascii.Options{}, services.Wrap(services.ErrConfiguration, "convert", "flags",
				fmt.Sprintf("luminance %d must be between 0 and 255", flags.luminance), nil)
		}
		preset.Luminance = flags.luminance
	}

	opts := ascii.Options{
		Ramp:      cfg.Convert.Ramp,
		Columns:   preset.Columns,
		FontRatio: preset.FontRatio,
		Threshold: uint8(preset.Luminance),
		Colors:    flags.colors || cfg.Convert.Colors,
	}
	return preset, opts, nil
}

func runConvert(cmd *cobra.Command, ctx *commandContext, args []string, flags convertFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	input := args[0]
	info, err := os.Stat(input)
	if err != nil {
		return err
	}

	preset, opts, err := resolveConvertSettings(cmd, cfg, flags)
	if err != nil {
		return err
	}

	outDir := ""
	if len(args) == 2 {
		outDir = args[1]
	}

	switch {
	case info.IsDir():
		if outDir == "" {
			outDir = strings.TrimSuffix(filepath.Clean(input), string(filepath.Separator)) + "_ascii"
		}
		return convertImageDir(cmd, ctx, input, outDir, opts, flags, preset)
	case isVideoFile(input):
		if outDir == "" {
			outDir = strings.TrimSuffix(input, filepath.Ext(input)) + "_ascii"
		}
		return convertVideo(cmd, ctx, cfg, input, outDir, opts, flags, preset)
	default:
		return convertSingleImage(cmd, input, outDir, opts)
	}
}

func convertVideo(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, input, outDir string, opts ascii.Options, flags convertFlags, preset config.Preset) error {
	client, err := ctx.ffmpegClient()
	if err != nil {
		return err
	}
	filter, err := ffmpeg.ResolvePreprocessFilter(flags.preprocess, flags.preprocessPreset)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	start := flags.start
	if start == "" {
		start = cfg.Convert.DefaultStart
	}
	end := flags.end
	if end == "" {
		end = cfg.Convert.DefaultEnd
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Extracting frames from %s at %d fps...\n", input, preset.FPS)
	err = client.ExtractFrames(cmd.Context(), ffmpeg.ExtractRequest{
		Input:      input,
		OutputDir:  outDir,
		Columns:    preset.Columns,
		FPS:        preset.FPS,
		Start:      start,
		End:        end,
		Preprocess: filter,
	})
	if err != nil {
		return err
	}

	result, err := convertDir(cmd, ctx, outDir, outDir, opts, flags)
	if err != nil {
		return err
	}
	return writeDetails(outDir, input, preset, result, opts)
}

func convertImageDir(cmd *cobra.Command, ctx *commandContext, srcDir, outDir string, opts ascii.Options, flags convertFlags, preset config.Preset) error {
	result, err := convertDir(cmd, ctx, srcDir, outDir, opts, flags)
	if err != nil {
		return err
	}
	return writeDetails(outDir, srcDir, preset, result, opts)
}

func convertDir(cmd *cobra.Command, ctx *commandContext, srcDir, outDir string, opts ascii.Options, flags convertFlags) (*pipeline.ConvertResult, error) {
	display := newProgressDisplay("Converting")
	defer display.Done()

	runner, cleanup, err := ctx.runner(display.Observe)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result, err := runner.Convert(cmd.Context(), pipeline.ConvertJob{
		SrcDir:     srcDir,
		DstDir:     outDir,
		Options:    opts,
		KeepImages: flags.keepImages,
		Workers:    flags.workers,
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Converted %d frames (%dx%d) into %s\n",
		result.Frames, result.Columns, result.Rows, outDir)
	return result, nil
}

func convertSingleImage(cmd *cobra.Command, input, outDir string, opts ascii.Options) error {
	grid, err := ascii.ConvertFile(input, opts)
	if err != nil {
		return err
	}
	if outDir == "" {
		fmt.Fprint(cmd.OutOrStdout(), grid.Text)
		return nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	outPath := filepath.Join(outDir, stem+".txt")
	if err := os.WriteFile(outPath, []byte(grid.Text), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", outPath, grid.Width, grid.Height)
	return nil
}

// writeDetails records a human-readable conversion summary next to the
// frames.
func writeDetails(outDir, input string, preset config.Preset, result *pipeline.ConvertResult, opts ascii.Options) error {
	var b strings.Builder
	b.WriteString("# Conversion details\n\n")
	fmt.Fprintf(&b, "- Input: %s\n", input)
	fmt.Fprintf(&b, "- Converted: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Frames: %d\n", result.Frames)
	fmt.Fprintf(&b, "- Grid: %dx%d characters\n", result.Columns, result.Rows)
	fmt.Fprintf(&b, "- FPS: %d\n", preset.FPS)
	fmt.Fprintf(&b, "- Font ratio: %g\n", preset.FontRatio)
	fmt.Fprintf(&b, "- Luminance threshold: %d\n", preset.Luminance)
	fmt.Fprintf(&b, "- Colors: %t\n", opts.Colors)
	return os.WriteFile(filepath.Join(outDir, "details.md"), []byte(b.String()), 0o644)
}
