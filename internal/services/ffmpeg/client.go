package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"cascii/internal/services"
)

var commandContext = exec.CommandContext

// FramePattern is the extraction output name; downstream stages glob on the
// same shape.
const FramePattern = "frame_%04d.png"

// ExtractRequest describes a frame extraction run.
type ExtractRequest struct {
	Input      string
	OutputDir  string
	Columns    int
	FPS        int
	Start      string // timestamp, empty or "0" means from the beginning
	End        string // timestamp, empty means to the end
	Preprocess string // ffmpeg filter chain prepended to the scale/fps stage
}

// EncodeRequest describes a streaming encode session. Frames arrive as raw
// RGB24 over stdin, all with the declared dimensions.
type EncodeRequest struct {
	Output    string
	Width     int
	Height    int
	FPS       int
	AudioPath string // optional second input muxed with -shortest
	CRF       int
	Preset    string
}

// Client defines the ffmpeg collaborator behaviour.
type Client interface {
	ExtractFrames(ctx context.Context, req ExtractRequest) error
	ExtractAudio(ctx context.Context, input, output string) error
	StartEncode(ctx context.Context, req EncodeRequest) (Session, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithLogLevel overrides the -loglevel passed to every invocation.
func WithLogLevel(level string) Option {
	return func(c *CLI) {
		if level != "" {
			c.logLevel = level
		}
	}
}

// CLI wraps the ffmpeg command-line binary.
type CLI struct {
	binary   string
	logLevel string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg", logLevel: "error"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// ExtractFrames decodes the input video into numbered PNG frames, scaled to
// the column width and resampled to the requested rate. Start and End bound
// the extraction window; when both are set the window length is passed as a
// duration so -ss and -t compose.
func (c *CLI) ExtractFrames(ctx context.Context, req ExtractRequest) error {
	if req.Input == "" {
		return services.Wrap(services.ErrConfiguration, "ffmpeg", "extract frames", "input path required", nil)
	}
	if req.OutputDir == "" {
		return services.Wrap(services.ErrConfiguration, "ffmpeg", "extract frames", "output directory required", nil)
	}
	if req.Columns < 1 || req.FPS < 1 {
		return services.Wrap(services.ErrConfiguration, "ffmpeg", "extract frames",
			fmt.Sprintf("columns %d and fps %d must be positive", req.Columns, req.FPS), nil)
	}

	args := []string{"-loglevel", c.logLevel}
	hasStart := req.Start != "" && req.Start != "0"
	if hasStart {
		args = append(args, "-ss", req.Start)
	}
	args = append(args, "-i", req.Input)
	if req.End != "" {
		if hasStart {
			duration := ParseTimestamp(req.End) - ParseTimestamp(req.Start)
			if duration > 0 {
				args = append(args, "-t", strconv.FormatFloat(duration, 'f', -1, 64))
			}
		} else {
			args = append(args, "-t", req.End)
		}
	}
	args = append(args, "-vf", extractionFilter(req.Columns, req.FPS, req.Preprocess))
	args = append(args, filepath.Join(req.OutputDir, FramePattern))

	return c.run(ctx, "extract frames", args)
}

// ExtractAudio pulls the audio track into a standalone file for muxing back
// after the render.
func (c *CLI) ExtractAudio(ctx context.Context, input, output string) error {
	if input == "" || output == "" {
		return services.Wrap(services.ErrConfiguration, "ffmpeg", "extract audio", "input and output paths required", nil)
	}
	args := []string{"-loglevel", c.logLevel, "-y", "-i", input, "-vn", "-c:a", "aac", output}
	return c.run(ctx, "extract audio", args)
}

func (c *CLI) run(ctx context.Context, operation string, args []string) error {
	cmd := commandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = err.Error()
		}
		return services.Wrap(services.ErrExternalTool, "ffmpeg", operation, detail, err)
	}
	return nil
}

// extractionFilter builds the -vf chain: an optional preprocess stage ahead
// of the fixed scale and rate stages.
func extractionFilter(columns, fps int, preprocess string) string {
	base := fmt.Sprintf("scale=%d:-2,fps=%d", columns, fps)
	preprocess = strings.TrimSuffix(strings.TrimSpace(preprocess), ",")
	if preprocess == "" {
		return base
	}
	return preprocess + "," + base
}

// ParseTimestamp converts "ss", "mm:ss" or "hh:mm:ss" (fractions allowed)
// into seconds. Unparseable segments count as zero.
func ParseTimestamp(s string) float64 {
	parts := strings.Split(s, ":")
	var total, scale float64 = 0, 1
	for i := len(parts) - 1; i >= 0; i-- {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err == nil {
			total += v * scale
		}
		scale *= 60
	}
	return total
}

var _ Client = (*CLI)(nil)
