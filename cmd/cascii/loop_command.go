package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cascii/internal/frames"
)

func newLoopCommand(ctx *commandContext) *cobra.Command {
	var exportIndex, repeatIndex int

	cmd := &cobra.Command{
		Use:   "loop <dir>",
		Short: "Find repeated frame segments that can play as seamless loops",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loops, err := frames.FindLoops(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(loops) == 0 {
				fmt.Fprintln(out, "No loopable segments detected.")
				return nil
			}

			rows := make([][]string, len(loops))
			for i, lp := range loops {
				rows[i] = []string{
					strconv.Itoa(i + 1),
					strconv.Itoa(lp.StartFrame),
					strconv.Itoa(lp.EndFrame),
					strconv.Itoa(lp.EndFrame - lp.StartFrame),
				}
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Start frame", "End frame", "Length"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight}))

			pick := func(index int) (frames.Loop, error) {
				if index < 1 || index > len(loops) {
					return frames.Loop{}, fmt.Errorf("loop index %d out of range 1..%d", index, len(loops))
				}
				return loops[index-1], nil
			}

			if cmd.Flags().Changed("export") {
				lp, err := pick(exportIndex)
				if err != nil {
					return err
				}
				outDir, err := frames.ExportLoop(args[0], lp)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Exported loop %d..%d to %s\n", lp.StartFrame, lp.EndFrame, outDir)
			}
			if cmd.Flags().Changed("repeat") {
				lp, err := pick(repeatIndex)
				if err != nil {
					return err
				}
				if err := frames.RepeatLoop(args[0], lp); err != nil {
					return err
				}
				fmt.Fprintf(out, "Repeated loop %d..%d in place\n", lp.StartFrame, lp.EndFrame)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&exportIndex, "export", 0, "Export the Nth listed loop to a sibling directory")
	cmd.Flags().IntVar(&repeatIndex, "repeat", 0, "Splice the Nth listed loop in again after its end")

	return cmd
}
