package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"cascii/internal/ascii"
	"cascii/internal/cframe"
	"cascii/internal/history"
	"cascii/internal/logging"
)

// ConvertJob turns a directory of extracted images into grid frames.
type ConvertJob struct {
	SrcDir     string
	DstDir     string
	Options    ascii.Options
	KeepImages bool
	Workers    int
}

// ConvertResult summarizes a completed conversion.
type ConvertResult struct {
	JobID   string
	Frames  int
	Columns int
	Rows    int
}

// Convert discovers images in lexicographic order and converts them on a
// worker pool. Output frames are renumbered from frame_0001 regardless of
// source names; grids with colors also get a binary sibling.
func (r *Runner) Convert(ctx context.Context, job ConvertJob) (*ConvertResult, error) {
	jobID := uuid.NewString()
	logger := r.logger.With(
		logging.String(logging.FieldJobID, jobID),
		logging.String(logging.FieldInput, job.SrcDir),
		logging.String(logging.FieldOutput, job.DstDir))
	logger.Info("convert job accepted")

	r.setState(jobID, StateCollecting)
	images, err := DiscoverImages(job.SrcDir)
	if err != nil {
		r.setState(jobID, StateFailed)
		return nil, err
	}
	total := len(images)
	r.emit(Progress{Stage: StateCollecting, Total: total})
	logger.Info("images discovered", logging.Int(logging.FieldFrames, total))

	if err := os.MkdirAll(job.DstDir, 0o755); err != nil {
		r.setState(jobID, StateFailed)
		return nil, err
	}

	r.setState(jobID, StateConverting)
	var (
		completed atomic.Int64
		rows      atomic.Int64
		mu        sync.Mutex
	)
	sampler := logging.NewProgressSampler(1)

	err = runWorkers(ctx, job.Workers, total, func(i int) error {
		grid, err := ascii.ConvertFile(images[i], job.Options)
		if err != nil {
			return err
		}
		rows.Store(int64(grid.Height))

		base := filepath.Join(job.DstDir, fmt.Sprintf("frame_%04d", i+1))
		if err := cframe.WriteTextFile(grid, base+".txt"); err != nil {
			return err
		}
		if grid.HasColors() {
			if err := cframe.WriteBinaryFile(grid, base+".cframe"); err != nil {
				return err
			}
		}

		done := int(completed.Add(1))
		mu.Lock()
		if sampler.ShouldEmit(done, total) {
			percent := float64(done) / float64(total) * 100
			r.emit(Progress{Stage: StateConverting, Completed: done, Total: total, Percent: percent})
			logger.Info("converting",
				logging.Int(logging.FieldFrame, done),
				logging.Int(logging.FieldFrames, total),
				logging.Float64(logging.FieldPercent, percent))
		}
		mu.Unlock()
		return nil
	})
	if err != nil {
		r.setState(jobID, StateFailed)
		return nil, err
	}

	if !job.KeepImages {
		for _, image := range images {
			if err := os.Remove(image); err != nil {
				logger.Warn("source image not removed",
					logging.String(logging.FieldInput, image),
					logging.Error(err))
			}
		}
	}

	r.setState(jobID, StateDone)
	logger.Info("convert complete", logging.Int(logging.FieldFrames, total))
	r.record(ctx, jobID, history.Job{
		Kind:    "convert",
		Input:   job.SrcDir,
		Output:  job.DstDir,
		Frames:  total,
		Columns: job.Options.Columns,
	})
	return &ConvertResult{
		JobID:   jobID,
		Frames:  total,
		Columns: job.Options.Columns,
		Rows:    int(rows.Load()),
	}, nil
}
