package render

import (
	"cascii/internal/cframe"
	"cascii/internal/glyph"
)

// PixelFrame is one rendered video frame: tightly packed RGB24, row-major,
// stride 3*Width.
type PixelFrame struct {
	Width  int
	Height int
	RGB    []byte
}

// Size returns the even-padded pixel dimensions a grid renders to with the
// given atlas. Frames of the same grid size always agree, so callers size the
// encoder from the first grid.
func Size(gridWidth, gridHeight int, atlas *glyph.Atlas) (width, height int) {
	width = gridWidth * atlas.CellWidth
	height = gridHeight * atlas.CellHeight
	if width%2 == 1 {
		width++
	}
	if height%2 == 1 {
		height++
	}
	return width, height
}

// Frame rasterizes a grid onto a black canvas. Each cell's glyph coverage
// scales the cell color; cells render white unless the grid carries colors
// and useColors is set. Spaces and bytes absent from the atlas leave their
// cell black.
func Frame(g *cframe.Grid, atlas *glyph.Atlas, useColors bool) (*PixelFrame, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	width, height := Size(g.Width, g.Height, atlas)
	frame := &PixelFrame{
		Width:  width,
		Height: height,
		RGB:    make([]byte, width*height*3),
	}
	colored := useColors && g.HasColors()

	for cy := 0; cy < g.Height; cy++ {
		for cx := 0; cx < g.Width; cx++ {
			ch := g.At(cx, cy)
			if ch == ' ' {
				continue
			}
			cov, ok := atlas.Coverage(ch)
			if !ok {
				continue
			}

			var r, gr, b uint8 = 0xff, 0xff, 0xff
			if colored {
				r, gr, b = g.ColorAt(cx, cy)
			}
			baseX := cx * atlas.CellWidth
			baseY := cy * atlas.CellHeight
			for py := 0; py < atlas.CellHeight; py++ {
				rowOffset := ((baseY+py)*width + baseX) * 3
				covRow := cov[py*atlas.CellWidth : (py+1)*atlas.CellWidth]
				for px, v := range covRow {
					if v == 0 {
						continue
					}
					o := rowOffset + px*3
					frame.RGB[o] = uint8(v * float32(r))
					frame.RGB[o+1] = uint8(v * float32(gr))
					frame.RGB[o+2] = uint8(v * float32(b))
				}
			}
		}
	}
	return frame, nil
}
