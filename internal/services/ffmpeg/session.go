package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"cascii/internal/services"
)

// Session is a live encode process. Exactly one goroutine writes frames; any
// goroutine may call CloseInput, which is idempotent, and Wait reaps the
// process and reports captured stderr on failure.
type Session interface {
	Write(frame []byte) error
	CloseInput() error
	Wait() error
}

type session struct {
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	wait   func() error

	closeOnce sync.Once
	closeErr  error
}

// StartEncode launches ffmpeg reading raw RGB24 frames from stdin. The
// session must see every frame at the declared dimensions, then CloseInput
// and Wait.
func (c *CLI) StartEncode(ctx context.Context, req EncodeRequest) (Session, error) {
	if req.Output == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ffmpeg", "start encode", "output path required", nil)
	}
	if req.Width < 2 || req.Height < 2 || req.Width%2 != 0 || req.Height%2 != 0 {
		return nil, services.Wrap(services.ErrConfiguration, "ffmpeg", "start encode",
			fmt.Sprintf("frame size %dx%d must be even and at least 2x2", req.Width, req.Height), nil)
	}
	if req.FPS < 1 {
		return nil, services.Wrap(services.ErrConfiguration, "ffmpeg", "start encode",
			fmt.Sprintf("fps %d must be positive", req.FPS), nil)
	}

	args := []string{
		"-loglevel", c.logLevel,
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgb24",
		"-video_size", fmt.Sprintf("%dx%d", req.Width, req.Height),
		"-framerate", strconv.Itoa(req.FPS),
		"-i", "pipe:0",
	}
	if req.AudioPath != "" {
		args = append(args, "-i", req.AudioPath)
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", req.Preset,
		"-crf", strconv.Itoa(req.CRF),
		"-pix_fmt", "yuv420p",
	)
	if req.AudioPath != "" {
		args = append(args, "-c:a", "aac", "-shortest")
	}
	args = append(args, req.Output)

	cmd := commandContext(ctx, c.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrEncoderSpawn, "ffmpeg", "start encode", "stdin pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrEncoderSpawn, "ffmpeg", "start encode", c.binary, err)
	}

	return &session{stdin: stdin, stderr: &stderr, wait: cmd.Wait}, nil
}

func (s *session) Write(frame []byte) error {
	if _, err := s.stdin.Write(frame); err != nil {
		return services.Wrap(services.ErrEncoderWrite, "ffmpeg", "write frame", s.diagnostics(), err)
	}
	return nil
}

func (s *session) CloseInput() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.stdin.Close()
	})
	return s.closeErr
}

func (s *session) Wait() error {
	if err := s.wait(); err != nil {
		return services.Wrap(services.ErrEncoderExit, "ffmpeg", "wait", s.diagnostics(), err)
	}
	return nil
}

func (s *session) diagnostics() string {
	detail := strings.TrimSpace(s.stderr.String())
	if detail == "" {
		return "encoder produced no diagnostics"
	}
	return detail
}
