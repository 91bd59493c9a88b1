package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cascii/internal/frames"
)

func newTrimCommand(ctx *commandContext) *cobra.Command {
	var uniform, left, right, top, bottom int

	cmd := &cobra.Command{
		Use:   "trim <path>",
		Short: "Trim margins off a frame file or every frame in a directory, in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Directional flags override the uniform margin.
			l, r, t, b := uniform, uniform, uniform, uniform
			if cmd.Flags().Changed("left") {
				l = left
			}
			if cmd.Flags().Changed("right") {
				r = right
			}
			if cmd.Flags().Changed("top") {
				t = top
			}
			if cmd.Flags().Changed("bottom") {
				b = bottom
			}
			if l == 0 && r == 0 && t == 0 && b == 0 {
				return fmt.Errorf("nothing to trim: pass --trim or a directional flag")
			}

			if err := frames.Trim(args[0], l, r, t, b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Trimmed %s (left=%d right=%d top=%d bottom=%d)\n",
				args[0], l, r, t, b)
			return nil
		},
	}

	cmd.Flags().IntVar(&uniform, "trim", 0, "Margin removed from all sides")
	cmd.Flags().IntVar(&left, "left", 0, "Columns removed from the left")
	cmd.Flags().IntVar(&right, "right", 0, "Columns removed from the right")
	cmd.Flags().IntVar(&top, "top", 0, "Rows removed from the top")
	cmd.Flags().IntVar(&bottom, "bottom", 0, "Rows removed from the bottom")

	return cmd
}
