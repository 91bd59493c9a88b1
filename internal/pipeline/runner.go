package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"cascii/internal/history"
	"cascii/internal/logging"
	"cascii/internal/services/ffmpeg"
)

// Recorder receives completed job records. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, job history.Job) error
}

// Progress reports pipeline advancement. The first callback for a job carries
// the frame total with zero completed; later callbacks are throttled to
// integer percent buckets, and the final frame always reports.
type Progress struct {
	Stage     State
	Completed int
	Total     int
	Percent   float64
}

// ProgressFunc observes job progress. Callbacks arrive from a single
// goroutine per job.
type ProgressFunc func(Progress)

// Runner executes convert and render jobs.
type Runner struct {
	client   ffmpeg.Client
	store    Recorder
	logger   *slog.Logger
	progress ProgressFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder persists completed jobs.
func WithRecorder(store Recorder) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// WithProgress registers a progress observer.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// New constructs a Runner around an ffmpeg client.
func New(client ffmpeg.Client, opts ...Option) *Runner {
	r := &Runner{
		client: client,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "pipeline")
	return r
}

func (r *Runner) setState(jobID string, state State) {
	r.logger.Info("stage transition",
		logging.String(logging.FieldJobID, jobID),
		logging.String("stage", string(state)))
}

func (r *Runner) emit(p Progress) {
	if r.progress != nil {
		r.progress(p)
	}
}

func (r *Runner) record(ctx context.Context, jobID string, job history.Job) {
	if r.store == nil {
		return
	}
	job.JobID = jobID
	if err := r.store.Record(ctx, job); err != nil {
		r.logger.Warn("history record failed",
			logging.String(logging.FieldJobID, jobID),
			logging.Error(err))
	}
}

// runWorkers fans n index-addressed tasks out over a bounded pool and waits.
// The first error wins; later work is skipped, not interrupted.
func runWorkers(ctx context.Context, workers, n int, fn func(i int) error) error {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	indexes := make(chan int)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if failed() {
					continue
				}
				if err := ctx.Err(); err != nil {
					fail(err)
					continue
				}
				if err := fn(i); err != nil {
					fail(err)
				}
			}
		}()
	}
	for i := 0; i < n; i++ {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return firstErr
}
