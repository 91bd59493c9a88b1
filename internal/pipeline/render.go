package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"cascii/internal/cframe"
	"cascii/internal/glyph"
	"cascii/internal/history"
	"cascii/internal/logging"
	"cascii/internal/render"
	"cascii/internal/services"
	"cascii/internal/services/ffmpeg"
)

const defaultBatchSize = 100

// RenderJob streams a directory of grid frames into an encoded video.
type RenderJob struct {
	FramesDir    string
	Output       string
	AudioPath    string
	FPS          int
	FontSizePx   int
	CRF          int
	EncodePreset string
	UseColors    bool
	BatchSize    int
	Workers      int
}

// RenderResult summarizes a completed render.
type RenderResult struct {
	JobID    string
	Frames   int
	WidthPx  int
	HeightPx int
}

// Render discovers frames, rasterizes them batch by batch on a worker pool
// and writes them to the encoder in discovery order. The encoder's stdin is
// closed exactly once on every path.
func (r *Runner) Render(ctx context.Context, job RenderJob) (*RenderResult, error) {
	jobID := uuid.NewString()
	logger := r.logger.With(
		logging.String(logging.FieldJobID, jobID),
		logging.String(logging.FieldInput, job.FramesDir),
		logging.String(logging.FieldOutput, job.Output))
	logger.Info("render job accepted")

	batchSize := job.BatchSize
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	if job.FPS < 1 {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "render",
			fmt.Sprintf("fps %d must be positive", job.FPS), nil)
	}

	r.setState(jobID, StateCollecting)
	files, err := DiscoverGrids(job.FramesDir)
	if err != nil {
		r.setState(jobID, StateFailed)
		return nil, err
	}
	total := len(files)
	r.emit(Progress{Stage: StateCollecting, Total: total})
	logger.Info("frames discovered", logging.Int(logging.FieldFrames, total))

	atlas, err := glyph.Build(job.FontSizePx)
	if err != nil {
		r.setState(jobID, StateFailed)
		return nil, err
	}
	first, err := cframe.LoadFile(files[0])
	if err != nil {
		r.setState(jobID, StateFailed)
		return nil, err
	}
	width, height := render.Size(first.Width, first.Height, atlas)

	outDir := filepath.Dir(job.Output)
	lock := flock.New(filepath.Join(outDir, ".cascii.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		r.setState(jobID, StateFailed)
		return nil, fmt.Errorf("lock output directory: %w", err)
	}
	if !locked {
		r.setState(jobID, StateFailed)
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "render",
			"output directory is locked by another job", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	session, err := r.client.StartEncode(ctx, ffmpeg.EncodeRequest{
		Output:    job.Output,
		Width:     width,
		Height:    height,
		FPS:       job.FPS,
		AudioPath: job.AudioPath,
		CRF:       job.CRF,
		Preset:    job.EncodePreset,
	})
	if err != nil {
		r.setState(jobID, StateFailed)
		return nil, err
	}

	r.setState(jobID, StateRendering)
	written, err := r.streamFrames(ctx, logger, session, files, atlas, job, width, height, total, batchSize)
	if err != nil {
		// The session still gets a single close and a reap so encoder
		// diagnostics reach the composite error.
		_ = session.CloseInput()
		if waitErr := session.Wait(); waitErr != nil {
			err = errors.Join(err, waitErr)
		}
		r.setState(jobID, StateFailed)
		return nil, err
	}

	r.setState(jobID, StateDraining)
	if err := session.CloseInput(); err != nil {
		r.setState(jobID, StateFailed)
		return nil, services.Wrap(services.ErrEncoderWrite, "pipeline", "close encoder input", job.Output, err)
	}
	if err := session.Wait(); err != nil {
		r.setState(jobID, StateFailed)
		return nil, err
	}

	r.setState(jobID, StateDone)
	logger.Info("render complete",
		logging.Int(logging.FieldFrames, written),
		logging.String("size", fmt.Sprintf("%dx%d", width, height)))
	r.record(ctx, jobID, history.Job{
		Kind:     "render",
		Input:    job.FramesDir,
		Output:   job.Output,
		Frames:   written,
		WidthPx:  width,
		HeightPx: height,
	})
	return &RenderResult{JobID: jobID, Frames: written, WidthPx: width, HeightPx: height}, nil
}

// streamFrames renders each batch in parallel, then emits the batch to the
// session from this goroutine only.
func (r *Runner) streamFrames(
	ctx context.Context,
	logger *slog.Logger,
	session ffmpeg.Session,
	files []string,
	atlas *glyph.Atlas,
	job RenderJob,
	width, height, total, batchSize int,
) (int, error) {
	sampler := logging.NewProgressSampler(1)
	written := 0

	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		frames := make([]*render.PixelFrame, end-start)

		err := runWorkers(ctx, job.Workers, end-start, func(i int) error {
			grid, err := cframe.LoadFile(files[start+i])
			if err != nil {
				return err
			}
			frame, err := render.Frame(grid, atlas, job.UseColors)
			if err != nil {
				return fmt.Errorf("%s: %w", files[start+i], err)
			}
			if frame.Width != width || frame.Height != height {
				return services.Wrap(services.ErrMalformedGrid, "pipeline", "render frame",
					fmt.Sprintf("%s renders to %dx%d, expected %dx%d",
						files[start+i], frame.Width, frame.Height, width, height), nil)
			}
			frames[i] = frame
			return nil
		})
		if err != nil {
			return written, err
		}

		for i, frame := range frames {
			if err := session.Write(frame.RGB); err != nil {
				return written, fmt.Errorf("frame %d: %w", start+i+1, err)
			}
			written++
			if sampler.ShouldEmit(written, total) {
				percent := float64(written) / float64(total) * 100
				r.emit(Progress{Stage: StateRendering, Completed: written, Total: total, Percent: percent})
				logger.Info("rendering",
					logging.Int(logging.FieldFrame, written),
					logging.Int(logging.FieldFrames, total),
					logging.Float64(logging.FieldPercent, percent))
			}
		}
	}
	return written, nil
}
