package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cascii/internal/frames"
)

func newCropCommand(ctx *commandContext) *cobra.Command {
	var top, bottom, left, right int

	cmd := &cobra.Command{
		Use:   "crop <dir> <outdir>",
		Short: "Crop every frame in a directory into a new directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := frames.Crop(args[0], top, bottom, left, right, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cropped %d frames to %dx%d (%d bytes) in %s\n",
				result.FrameCount, result.NewWidth, result.NewHeight, result.TotalSize, args[1])
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "Rows removed from the top")
	cmd.Flags().IntVar(&bottom, "bottom", 0, "Rows removed from the bottom")
	cmd.Flags().IntVar(&left, "left", 0, "Columns removed from the left")
	cmd.Flags().IntVar(&right, "right", 0, "Columns removed from the right")

	return cmd
}
