package cframe

import (
	"fmt"
	"strings"

	"cascii/internal/services"
)

// Grid is the in-memory character-grid artifact produced by conversion and
// consumed by rendering. Text holds Height rows of exactly Width printable
// ASCII bytes, each row terminated by a newline. Colors is either empty
// (render white) or exactly 3*Width*Height bytes of row-major RGB triples.
type Grid struct {
	Width  int
	Height int
	Text   string
	Colors []byte
}

// New builds a grid from raw row bytes without newlines.
func New(width, height int, cells []byte, colors []byte) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, services.Wrap(services.ErrMalformedGrid, "cframe", "new",
			fmt.Sprintf("dimensions %dx%d must be at least 1x1", width, height), nil)
	}
	if len(cells) != width*height {
		return nil, services.Wrap(services.ErrMalformedGrid, "cframe", "new",
			fmt.Sprintf("expected %d cells, got %d", width*height, len(cells)), nil)
	}
	var b strings.Builder
	b.Grow((width + 1) * height)
	for y := 0; y < height; y++ {
		b.Write(cells[y*width : (y+1)*width])
		b.WriteByte('\n')
	}
	g := &Grid{Width: width, Height: height, Text: b.String(), Colors: colors}
	if err := g.validateColors(); err != nil {
		return nil, err
	}
	return g, nil
}

// HasColors reports whether per-cell colors are present.
func (g *Grid) HasColors() bool {
	return len(g.Colors) > 0
}

// At returns the character byte at cell (x, y). The stored text carries one
// newline per row, so the stride is Width+1.
func (g *Grid) At(x, y int) byte {
	return g.Text[y*(g.Width+1)+x]
}

// ColorAt returns the RGB triple for cell (x, y). Callers must check
// HasColors first.
func (g *Grid) ColorAt(x, y int) (r, g8, b uint8) {
	base := (y*g.Width + x) * 3
	return g.Colors[base], g.Colors[base+1], g.Colors[base+2]
}

// Validate checks the structural invariants: row count and widths match the
// declared dimensions and the color payload, when present, covers every cell.
func (g *Grid) Validate() error {
	if g.Width < 1 || g.Height < 1 {
		return services.Wrap(services.ErrMalformedGrid, "cframe", "validate",
			fmt.Sprintf("dimensions %dx%d must be at least 1x1", g.Width, g.Height), nil)
	}
	rows := strings.Split(strings.TrimSuffix(g.Text, "\n"), "\n")
	if len(rows) != g.Height {
		return services.Wrap(services.ErrMalformedGrid, "cframe", "validate",
			fmt.Sprintf("expected %d rows, got %d", g.Height, len(rows)), nil)
	}
	for i, row := range rows {
		if len(row) != g.Width {
			return services.Wrap(services.ErrMalformedGrid, "cframe", "validate",
				fmt.Sprintf("row %d has %d cells, expected %d", i+1, len(row), g.Width), nil)
		}
	}
	return g.validateColors()
}

func (g *Grid) validateColors() error {
	if len(g.Colors) == 0 {
		return nil
	}
	if want := 3 * g.Width * g.Height; len(g.Colors) != want {
		return services.Wrap(services.ErrCorruptFrame, "cframe", "validate",
			fmt.Sprintf("color payload is %d bytes, expected %d for %dx%d", len(g.Colors), want, g.Width, g.Height), nil)
	}
	return nil
}
