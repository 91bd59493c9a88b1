package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"cascii/internal/services"
)

func captureArgs(t *testing.T, mode string) *[][]string {
	t.Helper()
	var calls [][]string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		calls = append(calls, append([]string(nil), args...))
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("FFMPEG_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return &calls
}

func findArg(args []string, target string) int {
	for i, arg := range args {
		if arg == target {
			return i
		}
	}
	return -1
}

func argValue(t *testing.T, args []string, flag string) string {
	t.Helper()
	idx := findArg(args, flag)
	if idx == -1 {
		t.Fatalf("expected %s in args %v", flag, args)
	}
	if idx+1 >= len(args) {
		t.Fatalf("%s present without value in args %v", flag, args)
	}
	return args[idx+1]
}

func TestNewCLIOptions(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/ffmpeg"), WithLogLevel("warning"))
	if cli.binary != "/opt/ffmpeg" {
		t.Fatalf("binary override not applied, got %q", cli.binary)
	}
	if cli.logLevel != "warning" {
		t.Fatalf("log level override not applied, got %q", cli.logLevel)
	}
}

func TestExtractFramesArgs(t *testing.T) {
	calls := captureArgs(t, "success")

	cli := NewCLI()
	req := ExtractRequest{
		Input:     "/media/clip.mp4",
		OutputDir: "/tmp/frames",
		Columns:   400,
		FPS:       30,
	}
	if err := cli.ExtractFrames(context.Background(), req); err != nil {
		t.Fatalf("ExtractFrames: %v", err)
	}

	args := (*calls)[0]
	if got := argValue(t, args, "-vf"); got != "scale=400:-2,fps=30" {
		t.Fatalf("unexpected filter %q", got)
	}
	if findArg(args, "-ss") != -1 || findArg(args, "-t") != -1 {
		t.Fatalf("unwindowed extraction should not seek, args %v", args)
	}
	want := filepath.Join("/tmp/frames", "frame_%04d.png")
	if args[len(args)-1] != want {
		t.Fatalf("output pattern %q, want %q", args[len(args)-1], want)
	}
}

func TestExtractFramesWindow(t *testing.T) {
	calls := captureArgs(t, "success")

	cli := NewCLI()
	req := ExtractRequest{
		Input:     "/media/clip.mp4",
		OutputDir: "/tmp/frames",
		Columns:   80,
		FPS:       24,
		Start:     "1:30",
		End:       "2:00",
	}
	if err := cli.ExtractFrames(context.Background(), req); err != nil {
		t.Fatalf("ExtractFrames: %v", err)
	}

	args := (*calls)[0]
	if got := argValue(t, args, "-ss"); got != "1:30" {
		t.Fatalf("unexpected seek %q", got)
	}
	// Window duration, not the absolute end timestamp.
	if got := argValue(t, args, "-t"); got != "30" {
		t.Fatalf("unexpected duration %q", got)
	}
	// -ss precedes -i for fast seeking.
	if findArg(args, "-ss") > findArg(args, "-i") {
		t.Fatalf("-ss must precede -i, args %v", args)
	}
}

func TestExtractFramesEndOnly(t *testing.T) {
	calls := captureArgs(t, "success")

	cli := NewCLI()
	req := ExtractRequest{
		Input:     "/media/clip.mp4",
		OutputDir: "/tmp/frames",
		Columns:   80,
		FPS:       24,
		Start:     "0",
		End:       "45",
	}
	if err := cli.ExtractFrames(context.Background(), req); err != nil {
		t.Fatalf("ExtractFrames: %v", err)
	}

	args := (*calls)[0]
	if findArg(args, "-ss") != -1 {
		t.Fatalf("start \"0\" should not seek, args %v", args)
	}
	if got := argValue(t, args, "-t"); got != "45" {
		t.Fatalf("unexpected duration %q", got)
	}
}

func TestExtractFramesPreprocessPrepends(t *testing.T) {
	calls := captureArgs(t, "success")

	cli := NewCLI()
	req := ExtractRequest{
		Input:      "/media/clip.mp4",
		OutputDir:  "/tmp/frames",
		Columns:    400,
		FPS:        30,
		Preprocess: "format=gray,eq=contrast=2.2:brightness=-0.08,",
	}
	if err := cli.ExtractFrames(context.Background(), req); err != nil {
		t.Fatalf("ExtractFrames: %v", err)
	}

	got := argValue(t, (*calls)[0], "-vf")
	want := "format=gray,eq=contrast=2.2:brightness=-0.08,scale=400:-2,fps=30"
	if got != want {
		t.Fatalf("filter %q, want %q", got, want)
	}
}

func TestExtractFramesValidation(t *testing.T) {
	cli := NewCLI()
	bad := []ExtractRequest{
		{OutputDir: "/tmp", Columns: 80, FPS: 24},
		{Input: "in.mp4", Columns: 80, FPS: 24},
		{Input: "in.mp4", OutputDir: "/tmp", Columns: 0, FPS: 24},
		{Input: "in.mp4", OutputDir: "/tmp", Columns: 80, FPS: 0},
	}
	for i, req := range bad {
		if err := cli.ExtractFrames(context.Background(), req); !errors.Is(err, services.ErrConfiguration) {
			t.Errorf("case %d: expected configuration error, got %v", i, err)
		}
	}
}

func TestExtractFramesFailureCarriesStderr(t *testing.T) {
	captureArgs(t, "failure")

	cli := NewCLI()
	req := ExtractRequest{Input: "in.mp4", OutputDir: t.TempDir(), Columns: 80, FPS: 24}
	err := cli.ExtractFrames(context.Background(), req)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "no such input") {
		t.Fatalf("expected stderr detail in error, got %v", err)
	}
}

func TestExtractAudioArgs(t *testing.T) {
	calls := captureArgs(t, "success")

	cli := NewCLI()
	if err := cli.ExtractAudio(context.Background(), "/media/clip.mp4", "/tmp/audio.m4a"); err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}

	args := (*calls)[0]
	if findArg(args, "-vn") == -1 {
		t.Fatalf("expected -vn in args %v", args)
	}
	if args[len(args)-1] != "/tmp/audio.m4a" {
		t.Fatalf("unexpected output %q", args[len(args)-1])
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"0", 0},
		{"45", 45},
		{"1:30", 90},
		{"01:02:03", 3723},
		{"1:30.5", 90.5},
		{"garbage", 0},
	}
	for _, tc := range cases {
		if got := ParseTimestamp(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ParseTimestamp(%q) = %g, want %g", tc.in, got, tc.want)
		}
	}
}

func TestStartEncodeArgs(t *testing.T) {
	calls := captureArgs(t, "sink")

	cli := NewCLI()
	req := EncodeRequest{
		Output: "/tmp/out.mp4",
		Width:  800, Height: 800,
		FPS: 30, CRF: 23, Preset: "ultrafast",
	}
	sess, err := cli.StartEncode(context.Background(), req)
	if err != nil {
		t.Fatalf("StartEncode: %v", err)
	}
	if err := sess.CloseInput(); err != nil {
		t.Fatalf("CloseInput: %v", err)
	}
	if err := sess.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	args := (*calls)[0]
	if got := argValue(t, args, "-video_size"); got != "800x800" {
		t.Fatalf("video size %q", got)
	}
	if got := argValue(t, args, "-pixel_format"); got != "rgb24" {
		t.Fatalf("pixel format %q", got)
	}
	if got := argValue(t, args, "-i"); got != "pipe:0" {
		t.Fatalf("input %q", got)
	}
	if got := argValue(t, args, "-c:v"); got != "libx264" {
		t.Fatalf("codec %q", got)
	}
	if got := argValue(t, args, "-pix_fmt"); got != "yuv420p" {
		t.Fatalf("output pixel format %q", got)
	}
	if got := argValue(t, args, "-crf"); got != "23" {
		t.Fatalf("crf %q", got)
	}
	if findArg(args, "-shortest") != -1 {
		t.Fatalf("audio-less encode should not pass -shortest, args %v", args)
	}
}

func TestStartEncodeWithAudio(t *testing.T) {
	calls := captureArgs(t, "sink")

	cli := NewCLI()
	req := EncodeRequest{
		Output: "/tmp/out.mp4",
		Width:  640, Height: 360,
		FPS: 24, CRF: 23, Preset: "ultrafast",
		AudioPath: "/tmp/audio.m4a",
	}
	sess, err := cli.StartEncode(context.Background(), req)
	if err != nil {
		t.Fatalf("StartEncode: %v", err)
	}
	_ = sess.CloseInput()
	_ = sess.Wait()

	args := (*calls)[0]
	if findArg(args, "-shortest") == -1 {
		t.Fatalf("expected -shortest with audio, args %v", args)
	}
	if findArg(args, "/tmp/audio.m4a") == -1 {
		t.Fatalf("expected audio input in args %v", args)
	}
}

func TestStartEncodeRejectsOddDimensions(t *testing.T) {
	cli := NewCLI()
	for _, dims := range [][2]int{{801, 800}, {800, 799}, {0, 0}} {
		req := EncodeRequest{Output: "o.mp4", Width: dims[0], Height: dims[1], FPS: 30, Preset: "ultrafast"}
		if _, err := cli.StartEncode(context.Background(), req); !errors.Is(err, services.ErrConfiguration) {
			t.Errorf("%dx%d: expected configuration error, got %v", dims[0], dims[1], err)
		}
	}
}

func TestSessionWritesFrames(t *testing.T) {
	captureArgs(t, "sink")

	cli := NewCLI()
	sess, err := cli.StartEncode(context.Background(), EncodeRequest{
		Output: "/tmp/out.mp4", Width: 4, Height: 2, FPS: 30, CRF: 23, Preset: "ultrafast",
	})
	if err != nil {
		t.Fatalf("StartEncode: %v", err)
	}
	frame := bytes.Repeat([]byte{0x10}, 4*2*3)
	for i := 0; i < 3; i++ {
		if err := sess.Write(frame); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}
	if err := sess.CloseInput(); err != nil {
		t.Fatalf("CloseInput: %v", err)
	}
	if err := sess.CloseInput(); err != nil {
		t.Fatalf("second CloseInput must be a no-op, got %v", err)
	}
	if err := sess.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestSessionWaitReportsExitAndStderr(t *testing.T) {
	captureArgs(t, "exitfail")

	cli := NewCLI()
	sess, err := cli.StartEncode(context.Background(), EncodeRequest{
		Output: "/tmp/out.mp4", Width: 4, Height: 2, FPS: 30, CRF: 23, Preset: "ultrafast",
	})
	if err != nil {
		t.Fatalf("StartEncode: %v", err)
	}
	_ = sess.CloseInput()
	err = sess.Wait()
	if !errors.Is(err, services.ErrEncoderExit) {
		t.Fatalf("expected encoder exit error, got %v", err)
	}
	if !strings.Contains(err.Error(), "muxer choked") {
		t.Fatalf("expected stderr diagnostics in error, got %v", err)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "success":
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "no such input")
		os.Exit(1)
	case "sink":
		_, _ = io.Copy(io.Discard, os.Stdin)
		os.Exit(0)
	case "exitfail":
		_, _ = io.Copy(io.Discard, os.Stdin)
		fmt.Fprintln(os.Stderr, "muxer choked")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
