package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cascii/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently completed jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			jobs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				size := ""
				switch {
				case job.WidthPx > 0:
					size = fmt.Sprintf("%dx%d px", job.WidthPx, job.HeightPx)
				case job.Columns > 0:
					size = fmt.Sprintf("%d cols", job.Columns)
				}
				rows = append(rows, []string{
					job.CreatedAt.Local().Format("2006-01-02 15:04"),
					job.Kind,
					job.Input,
					job.Output,
					strconv.Itoa(job.Frames),
					size,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Kind", "Input", "Output", "Frames", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum jobs to list")
	return cmd
}
