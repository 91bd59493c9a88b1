package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

func newPresetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List configured quality presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			names := make([]string, 0, len(cfg.Presets))
			for name := range cfg.Presets {
				names = append(names, name)
			}
			sort.Strings(names)

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				preset := cfg.Presets[name]
				label := name
				if name == cfg.DefaultPreset {
					label += " *"
				}
				rows = append(rows, []string{
					label,
					strconv.Itoa(preset.Columns),
					strconv.Itoa(preset.FPS),
					strconv.FormatFloat(preset.FontRatio, 'g', -1, 64),
					strconv.Itoa(preset.Luminance),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Preset", "Columns", "FPS", "Font ratio", "Luminance"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight}))
			fmt.Fprintln(out, "* default preset")
			return nil
		},
	}
}
