package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"

	"cascii/internal/pipeline"
)

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressDisplay renders pipeline progress: a live bar on terminals, plain
// percent lines otherwise.
type progressDisplay struct {
	writer  progress.Writer
	tracker *progress.Tracker
	plain   bool
}

func newProgressDisplay(message string) *progressDisplay {
	if !stdoutIsTerminal() {
		return &progressDisplay{plain: true}
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stdout)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.Style().Visibility.ETA = true
	go pw.Render()

	tracker := &progress.Tracker{Message: message}
	pw.AppendTracker(tracker)
	return &progressDisplay{writer: pw, tracker: tracker}
}

// Observe is a pipeline.ProgressFunc.
func (d *progressDisplay) Observe(p pipeline.Progress) {
	if d.plain {
		if p.Total > 0 && p.Completed > 0 {
			fmt.Printf("%s: %d/%d (%.0f%%)\n", p.Stage, p.Completed, p.Total, p.Percent)
		}
		return
	}
	if p.Completed == 0 && p.Total > 0 {
		d.tracker.UpdateTotal(int64(p.Total))
		return
	}
	d.tracker.SetValue(int64(p.Completed))
}

func (d *progressDisplay) Done() {
	if d.plain {
		return
	}
	d.tracker.MarkAsDone()
	for d.writer.IsRenderInProgress() && d.writer.LengthActive() > 0 {
		time.Sleep(10 * time.Millisecond)
	}
	d.writer.Stop()
}
