package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/flock"

	"cascii/internal/config"
	"cascii/internal/history"
	"cascii/internal/services"
	"cascii/internal/services/ffmpeg"
)

type fakeSession struct {
	mu         sync.Mutex
	writes     int
	closes     int
	failAfter  int // fail writes after this many succeed, 0 disables
	waitErr    error
	frameBytes int
}

func (s *fakeSession) Write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAfter > 0 && s.writes >= s.failAfter {
		return services.Wrap(services.ErrEncoderWrite, "ffmpeg", "write frame", "broken pipe", nil)
	}
	s.writes++
	s.frameBytes = len(frame)
	return nil
}

func (s *fakeSession) CloseInput() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *fakeSession) Wait() error {
	return s.waitErr
}

type fakeClient struct {
	session  *fakeSession
	request  ffmpeg.EncodeRequest
	startErr error
}

func (c *fakeClient) ExtractFrames(ctx context.Context, req ffmpeg.ExtractRequest) error { return nil }

func (c *fakeClient) ExtractAudio(ctx context.Context, input, output string) error { return nil }

func (c *fakeClient) StartEncode(ctx context.Context, req ffmpeg.EncodeRequest) (ffmpeg.Session, error) {
	c.request = req
	if c.startErr != nil {
		return nil, c.startErr
	}
	return c.session, nil
}

type fakeRecorder struct {
	jobs []history.Job
}

func (r *fakeRecorder) Record(ctx context.Context, job history.Job) error {
	r.jobs = append(r.jobs, job)
	return nil
}

func writeFrames(t *testing.T, dir string, count, width, height int) {
	t.Helper()
	row := strings.Repeat("X", width) + "\n"
	text := strings.Repeat(row, height)
	for i := 1; i <= count; i++ {
		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.txt", i))
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func renderJob(dir, out string) RenderJob {
	return RenderJob{
		FramesDir:    dir,
		Output:       out,
		FPS:          30,
		FontSizePx:   16,
		CRF:          23,
		EncodePreset: "ultrafast",
	}
}

func TestRenderStreamsEveryFrameInOrder(t *testing.T) {
	framesDir := t.TempDir()
	outDir := t.TempDir()
	writeFrames(t, framesDir, 3, 10, 4)

	session := &fakeSession{}
	client := &fakeClient{session: session}
	recorder := &fakeRecorder{}
	var updates []Progress
	runner := New(client,
		WithRecorder(recorder),
		WithProgress(func(p Progress) { updates = append(updates, p) }))

	result, err := runner.Render(context.Background(), renderJob(framesDir, filepath.Join(outDir, "out.mp4")))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if result.Frames != 3 || session.writes != 3 {
		t.Fatalf("expected 3 frames written, result %d session %d", result.Frames, session.writes)
	}
	if session.closes != 1 {
		t.Fatalf("expected exactly one close, got %d", session.closes)
	}
	if result.WidthPx%2 != 0 || result.HeightPx%2 != 0 {
		t.Fatalf("odd output dimensions %dx%d", result.WidthPx, result.HeightPx)
	}
	if client.request.Width != result.WidthPx || client.request.Height != result.HeightPx {
		t.Fatalf("encode request %dx%d disagrees with result %dx%d",
			client.request.Width, client.request.Height, result.WidthPx, result.HeightPx)
	}
	if session.frameBytes != result.WidthPx*result.HeightPx*3 {
		t.Fatalf("frame payload %d bytes, want %d", session.frameBytes, result.WidthPx*result.HeightPx*3)
	}

	if len(updates) < 2 {
		t.Fatalf("expected enumeration plus progress, got %d updates", len(updates))
	}
	if updates[0].Stage != StateCollecting || updates[0].Total != 3 || updates[0].Completed != 0 {
		t.Fatalf("unexpected enumeration update %+v", updates[0])
	}
	final := updates[len(updates)-1]
	if final.Completed != 3 || final.Percent != 100 {
		t.Fatalf("final update %+v, want completed=3 percent=100", final)
	}

	if len(recorder.jobs) != 1 {
		t.Fatalf("expected one history record, got %d", len(recorder.jobs))
	}
	if recorder.jobs[0].Kind != "render" || recorder.jobs[0].Frames != 3 {
		t.Fatalf("unexpected history record %+v", recorder.jobs[0])
	}
	if recorder.jobs[0].JobID == "" {
		t.Fatal("history record missing job id")
	}
}

func TestRenderEncoderDiesMidStream(t *testing.T) {
	framesDir := t.TempDir()
	outDir := t.TempDir()
	writeFrames(t, framesDir, 3, 6, 3)

	session := &fakeSession{
		failAfter: 2,
		waitErr:   services.Wrap(services.ErrEncoderExit, "ffmpeg", "wait", "x264 rejected frame", nil),
	}
	client := &fakeClient{session: session}
	runner := New(client)

	_, err := runner.Render(context.Background(), renderJob(framesDir, filepath.Join(outDir, "out.mp4")))
	if !errors.Is(err, services.ErrEncoderWrite) {
		t.Fatalf("expected encoder write error, got %v", err)
	}
	if !errors.Is(err, services.ErrEncoderExit) {
		t.Fatalf("expected encoder exit diagnostics joined in, got %v", err)
	}
	if !strings.Contains(err.Error(), "x264 rejected frame") {
		t.Fatalf("expected encoder diagnostics, got %v", err)
	}
	if session.closes != 1 {
		t.Fatalf("failure path must close exactly once, got %d", session.closes)
	}
	if session.writes != 2 {
		t.Fatalf("expected submission to stop after failure, wrote %d", session.writes)
	}
}

func TestRenderRejectsMixedDimensions(t *testing.T) {
	framesDir := t.TempDir()
	outDir := t.TempDir()
	writeFrames(t, framesDir, 2, 10, 4)
	if err := os.WriteFile(filepath.Join(framesDir, "frame_0003.txt"),
		[]byte("XXXX\nXXXX\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	session := &fakeSession{}
	runner := New(&fakeClient{session: session})
	_, err := runner.Render(context.Background(), renderJob(framesDir, filepath.Join(outDir, "out.mp4")))
	if !errors.Is(err, services.ErrMalformedGrid) {
		t.Fatalf("expected malformed grid error, got %v", err)
	}
	if session.closes != 1 {
		t.Fatalf("failure path must close exactly once, got %d", session.closes)
	}
}

func TestRenderFailsWhenOutputDirLocked(t *testing.T) {
	framesDir := t.TempDir()
	outDir := t.TempDir()
	writeFrames(t, framesDir, 1, 4, 2)

	lock := flock.New(filepath.Join(outDir, ".cascii.lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("pre-lock failed: locked=%v err=%v", locked, err)
	}
	defer lock.Unlock()

	runner := New(&fakeClient{session: &fakeSession{}})
	_, err = runner.Render(context.Background(), renderJob(framesDir, filepath.Join(outDir, "out.mp4")))
	if err == nil {
		t.Fatal("expected lock contention error")
	}
	if !strings.Contains(err.Error(), "locked") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDiscoverGridsOrderAndPreference(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame_0002.txt", "frame_0001.txt", "frame_0001.cframe", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := DiscoverGrids(dir)
	if err != nil {
		t.Fatalf("DiscoverGrids: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 frames, got %v", paths)
	}
	if filepath.Base(paths[0]) != "frame_0001.cframe" {
		t.Fatalf("binary form should win for frame_0001, got %q", paths[0])
	}
	if filepath.Base(paths[1]) != "frame_0002.txt" {
		t.Fatalf("unexpected order: %v", paths)
	}
}

func TestDiscoverGridsEmpty(t *testing.T) {
	if _, err := DiscoverGrids(t.TempDir()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func writeImages(t *testing.T, dir string, count int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	for i := 1; i <= count; i++ {
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("frame_%04d.png", i)))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestConvertRenumbersAndRemovesSources(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := filepath.Join(t.TempDir(), "ascii")
	writeImages(t, srcDir, 3)

	recorder := &fakeRecorder{}
	var updates []Progress
	runner := New(&fakeClient{session: &fakeSession{}},
		WithRecorder(recorder),
		WithProgress(func(p Progress) { updates = append(updates, p) }))

	job := ConvertJob{SrcDir: srcDir, DstDir: dstDir}
	job.Options.Ramp = config.DefaultRamp
	job.Options.Columns = 8
	job.Options.FontRatio = 0.7
	job.Options.Threshold = 20
	job.Options.Colors = true

	result, err := runner.Convert(context.Background(), job)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.Frames != 3 || result.Columns != 8 {
		t.Fatalf("unexpected result %+v", result)
	}

	for i := 1; i <= 3; i++ {
		txt := filepath.Join(dstDir, fmt.Sprintf("frame_%04d.txt", i))
		if _, err := os.Stat(txt); err != nil {
			t.Fatalf("missing %s: %v", txt, err)
		}
		bin := filepath.Join(dstDir, fmt.Sprintf("frame_%04d.cframe", i))
		if _, err := os.Stat(bin); err != nil {
			t.Fatalf("missing %s: %v", bin, err)
		}
	}

	remaining, err := os.ReadDir(srcDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Fatalf("source images should be removed, %d remain", len(remaining))
	}

	final := updates[len(updates)-1]
	if final.Percent != 100 || final.Completed != 3 {
		t.Fatalf("final update %+v", final)
	}
	if len(recorder.jobs) != 1 || recorder.jobs[0].Kind != "convert" {
		t.Fatalf("unexpected history records %+v", recorder.jobs)
	}
}

func TestConvertKeepImages(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := filepath.Join(t.TempDir(), "ascii")
	writeImages(t, srcDir, 2)

	runner := New(&fakeClient{session: &fakeSession{}})
	job := ConvertJob{SrcDir: srcDir, DstDir: dstDir, KeepImages: true}
	job.Options.Ramp = config.DefaultRamp
	job.Options.Columns = 8
	job.Options.FontRatio = 0.7

	if _, err := runner.Convert(context.Background(), job); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	remaining, err := os.ReadDir(srcDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected sources kept, %d remain", len(remaining))
	}
}
