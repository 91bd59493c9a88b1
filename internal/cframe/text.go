package cframe

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cascii/internal/services"
)

// ReadTextGrid parses a rectangular line-based grid with no color payload.
// The row width is taken from the first line; any later line of a different
// length fails rather than silently truncating.
func ReadTextGrid(r io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var rows []string
	width := -1
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if width == -1 {
			width = len(line)
		} else if len(line) != width {
			return nil, services.Wrap(services.ErrMalformedGrid, "cframe", "read text",
				fmt.Sprintf("line %d has %d cells, expected %d", len(rows)+1, len(line), width), nil)
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 || width == 0 {
		return nil, services.Wrap(services.ErrMalformedGrid, "cframe", "read text", "grid is empty", nil)
	}

	g := &Grid{
		Width:  width,
		Height: len(rows),
		Text:   strings.Join(rows, "\n") + "\n",
	}
	return g, nil
}

// LoadFile reads a frame from disk, dispatching on extension: .cframe files
// decode through the binary codec, anything else is treated as a text grid.
func LoadFile(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".cframe") {
		g, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return g, nil
	}
	g, err := ReadTextGrid(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// WriteTextFile writes the grid's text form.
func WriteTextFile(g *Grid, path string) error {
	return os.WriteFile(path, []byte(g.Text), 0o644)
}

// WriteBinaryFile encodes and writes the grid's cframe form.
func WriteBinaryFile(g *Grid, path string) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
