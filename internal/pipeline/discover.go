package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cascii/internal/services"
)

// DiscoverGrids lists grid frames under dir in lexicographic order. When a
// frame exists in both text and binary form, the binary form wins because it
// carries colors. The returned order is final; every later stage preserves it.
func DiscoverGrids(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	chosen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".txt" && ext != ".cframe" {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if prev, ok := chosen[stem]; ok {
			if strings.EqualFold(filepath.Ext(prev), ".cframe") {
				continue
			}
		}
		chosen[stem] = filepath.Join(dir, name)
	}
	if len(chosen) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "discover grids",
			"no .txt or .cframe frames in "+dir, nil)
	}

	stems := make([]string, 0, len(chosen))
	for stem := range chosen {
		stems = append(stems, stem)
	}
	sort.Strings(stems)
	paths := make([]string, len(stems))
	for i, stem := range stems {
		paths[i] = chosen[stem]
	}
	return paths, nil
}

// DiscoverImages lists raster frames under dir in lexicographic order.
func DiscoverImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg", ".bmp":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "discover images",
			"no image frames in "+dir, nil)
	}
	sort.Strings(paths)
	return paths, nil
}
