package frames

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cascii/internal/cframe"
	"cascii/internal/services"
)

// CropResult summarizes a crop run.
type CropResult struct {
	FrameCount int
	NewWidth   int
	NewHeight  int
	TotalSize  int64
}

// Crop removes rows and columns from the edges of every frame_*.txt under
// srcDir, writing results to dstDir re-indexed from frame_0001. A binary
// sibling is cropped alongside its text frame when present. Margins are
// validated against the first frame; a crop that would consume a whole axis
// fails before anything is written.
func Crop(srcDir string, top, bottom, left, right int, dstDir string) (*CropResult, error) {
	if top < 0 || bottom < 0 || left < 0 || right < 0 {
		return nil, services.Wrap(services.ErrConfiguration, "frames", "crop",
			"crop margins must not be negative", nil)
	}
	paths, err := listTextFrames(srcDir)
	if err != nil {
		return nil, err
	}

	first, err := cframe.LoadFile(paths[0])
	if err != nil {
		return nil, err
	}
	if top+bottom >= first.Height {
		return nil, services.Wrap(services.ErrConfiguration, "frames", "crop",
			fmt.Sprintf("crop rows (%d top + %d bottom) exceed frame height %d", top, bottom, first.Height), nil)
	}
	if left+right >= first.Width {
		return nil, services.Wrap(services.ErrConfiguration, "frames", "crop",
			fmt.Sprintf("crop columns (%d left + %d right) exceed frame width %d", left, right, first.Width), nil)
	}

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return nil, err
	}

	result := &CropResult{
		FrameCount: len(paths),
		NewWidth:   first.Width - left - right,
		NewHeight:  first.Height - top - bottom,
	}
	for i, path := range paths {
		grid, err := cframe.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cropped, err := cropGrid(grid, top, bottom, left, right)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		outTxt := filepath.Join(dstDir, fmt.Sprintf("frame_%04d.txt", i+1))
		if err := cframe.WriteTextFile(cropped, outTxt); err != nil {
			return nil, err
		}
		result.TotalSize += fileSize(outTxt)

		binPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".cframe"
		if _, statErr := os.Stat(binPath); statErr == nil {
			binGrid, err := cframe.LoadFile(binPath)
			if err != nil {
				return nil, err
			}
			croppedBin, err := cropGrid(binGrid, top, bottom, left, right)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", binPath, err)
			}
			outBin := filepath.Join(dstDir, fmt.Sprintf("frame_%04d.cframe", i+1))
			if err := cframe.WriteBinaryFile(croppedBin, outBin); err != nil {
				return nil, err
			}
			result.TotalSize += fileSize(outBin)
		}
	}
	return result, nil
}

// cropGrid cuts the margins out of one grid, carrying colors when present.
func cropGrid(g *cframe.Grid, top, bottom, left, right int) (*cframe.Grid, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	newWidth := g.Width - left - right
	newHeight := g.Height - top - bottom
	if newWidth < 1 || newHeight < 1 {
		return nil, services.Wrap(services.ErrConfiguration, "frames", "crop",
			fmt.Sprintf("crop leaves %dx%d of %dx%d", newWidth, newHeight, g.Width, g.Height), nil)
	}

	cells := make([]byte, 0, newWidth*newHeight)
	var colors []byte
	if g.HasColors() {
		colors = make([]byte, 0, newWidth*newHeight*3)
	}
	for y := top; y < g.Height-bottom; y++ {
		for x := left; x < g.Width-right; x++ {
			cells = append(cells, g.At(x, y))
			if colors != nil {
				r, gr, b := g.ColorAt(x, y)
				colors = append(colors, r, gr, b)
			}
		}
	}
	return cframe.New(newWidth, newHeight, cells, colors)
}

// listTextFrames returns frame_*.txt paths under dir in lexicographic order.
func listTextFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "frame_") && strings.HasSuffix(name, ".txt") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	if len(paths) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "frames", "list",
			"no frame_*.txt files in "+dir, nil)
	}
	sort.Strings(paths)
	return paths, nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
