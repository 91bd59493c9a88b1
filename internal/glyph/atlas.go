package glyph

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"cascii/internal/services"
)

const (
	firstPrintable = 0x20
	lastPrintable  = 0x7e
)

// Atlas holds per-glyph coverage masks for one font size. Every mask is
// CellWidth*CellHeight float32 values in [0, 1], row-major. Space is all
// zeros like any other unmarked cell.
type Atlas struct {
	SizePx     int
	CellWidth  int
	CellHeight int

	coverage [lastPrintable - firstPrintable + 1][]float32
}

// Build rasterizes the printable ASCII range of the embedded monospace face
// at the given pixel size. The cell is sized from the face metrics: width is
// the ceiling of the 'M' advance, height the ceiling of ascent plus descent,
// with the baseline placed at the ascent.
func Build(sizePx int) (*Atlas, error) {
	if sizePx < 1 {
		return nil, services.Wrap(services.ErrConfiguration, "glyph", "build atlas",
			fmt.Sprintf("font size %dpx must be at least 1", sizePx), nil)
	}

	parsed, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "glyph", "parse font", "embedded face", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "glyph", "build face",
			fmt.Sprintf("size %dpx", sizePx), err)
	}
	defer face.Close()

	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	cellHeight := ascent + metrics.Descent.Ceil()
	advance, ok := face.GlyphAdvance('M')
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "glyph", "build atlas",
			"face has no 'M' glyph", nil)
	}
	cellWidth := advance.Ceil()
	if cellWidth < 1 || cellHeight < 1 {
		return nil, services.Wrap(services.ErrConfiguration, "glyph", "build atlas",
			fmt.Sprintf("degenerate cell %dx%d at %dpx", cellWidth, cellHeight, sizePx), nil)
	}

	a := &Atlas{SizePx: sizePx, CellWidth: cellWidth, CellHeight: cellHeight}
	cell := image.NewAlpha(image.Rect(0, 0, cellWidth, cellHeight))
	dot := fixed.P(0, ascent)
	for ch := firstPrintable; ch <= lastPrintable; ch++ {
		cov := make([]float32, cellWidth*cellHeight)
		a.coverage[ch-firstPrintable] = cov
		if ch == ' ' {
			continue
		}

		dr, mask, maskp, _, ok := face.Glyph(dot, rune(ch))
		if !ok {
			continue
		}
		for i := range cell.Pix {
			cell.Pix[i] = 0
		}
		// Clip to the cell so oversized glyphs cannot bleed into neighbors.
		clipped := dr.Intersect(cell.Bounds())
		if clipped.Empty() {
			continue
		}
		mp := maskp.Add(clipped.Min.Sub(dr.Min))
		draw.DrawMask(cell, clipped, image.Opaque, image.Point{}, mask, mp, draw.Over)
		for i, alpha := range cell.Pix {
			cov[i] = float32(alpha) / 255
		}
	}
	return a, nil
}

// Coverage returns the mask for ch and whether the atlas holds it. Bytes
// outside the printable range report false.
func (a *Atlas) Coverage(ch byte) ([]float32, bool) {
	if ch < firstPrintable || ch > lastPrintable {
		return nil, false
	}
	return a.coverage[ch-firstPrintable], true
}
