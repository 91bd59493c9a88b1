package frames

import (
	"fmt"
	"os"

	"cascii/internal/cframe"
	"cascii/internal/services"
)

// Trim cuts margins off a single text grid in place, or off every
// frame_*.txt under a directory.
func Trim(path string, left, right, top, bottom int) error {
	if left < 0 || right < 0 || top < 0 || bottom < 0 {
		return services.Wrap(services.ErrConfiguration, "frames", "trim",
			"trim margins must not be negative", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return trimFile(path, left, right, top, bottom)
	}

	paths, err := listTextFrames(path)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := trimFile(p, left, right, top, bottom); err != nil {
			return err
		}
	}
	return nil
}

func trimFile(path string, left, right, top, bottom int) error {
	grid, err := cframe.LoadFile(path)
	if err != nil {
		return err
	}
	if top+bottom >= grid.Height {
		return services.Wrap(services.ErrConfiguration, "frames", "trim",
			fmt.Sprintf("%s: trim rows (%d top + %d bottom) exceed height %d", path, top, bottom, grid.Height), nil)
	}
	if left+right >= grid.Width {
		return services.Wrap(services.ErrConfiguration, "frames", "trim",
			fmt.Sprintf("%s: trim columns (%d left + %d right) exceed width %d", path, left, right, grid.Width), nil)
	}

	trimmed, err := cropGrid(grid, top, bottom, left, right)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return cframe.WriteTextFile(trimmed, path)
}
