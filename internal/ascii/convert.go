package ascii

import (
	"fmt"
	"image"
	"math"
	"os"

	"github.com/disintegration/imaging"

	// Frame extraction writes PNG, but users hand arbitrary stills to the
	// convert command, so register the common decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"

	"cascii/internal/cframe"
	"cascii/internal/services"
)

// Options controls a conversion. Ramp runs darkest to lightest; Threshold is
// the luminance below which a cell becomes space; FontRatio compensates for
// glyph cells being taller than wide. Columns of zero keeps the source width.
type Options struct {
	Ramp      string
	Columns   int
	FontRatio float64
	Threshold uint8
	Colors    bool
}

func (o Options) validate() error {
	if len(o.Ramp) == 0 {
		return services.Wrap(services.ErrConfiguration, "ascii", "validate", "ramp is empty", nil)
	}
	for i := 0; i < len(o.Ramp); i++ {
		if o.Ramp[i] < 0x20 || o.Ramp[i] > 0x7e {
			return services.Wrap(services.ErrConfiguration, "ascii", "validate",
				fmt.Sprintf("ramp byte %d (0x%02x) is not printable ASCII", i, o.Ramp[i]), nil)
		}
	}
	if o.Columns < 0 {
		return services.Wrap(services.ErrConfiguration, "ascii", "validate",
			fmt.Sprintf("columns %d must not be negative", o.Columns), nil)
	}
	if o.FontRatio <= 0 {
		return services.Wrap(services.ErrConfiguration, "ascii", "validate",
			fmt.Sprintf("font ratio %g must be positive", o.FontRatio), nil)
	}
	return nil
}

// Luminance computes the Rec. 709 luma of an RGB triple, truncated to an
// integer.
func Luminance(r, g, b uint8) uint8 {
	return uint8(0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b))
}

// glyphFor maps a luminance value onto the ramp. Below the threshold the cell
// is blank; above it the remaining range is spread linearly across the ramp.
func (o Options) glyphFor(l uint8) byte {
	if l < o.Threshold {
		return ' '
	}
	span := 255 - int(o.Threshold)
	if span < 1 {
		span = 1
	}
	idx := int(l-o.Threshold) * (len(o.Ramp) - 1) / span
	if idx > len(o.Ramp)-1 {
		idx = len(o.Ramp) - 1
	}
	return o.Ramp[idx]
}

func (o Options) columnsFor(srcWidth int) int {
	if o.Columns > 0 {
		return o.Columns
	}
	return srcWidth
}

// Rows returns the output row count for a source of the given dimensions:
// the column count scaled by the source aspect ratio and the font ratio,
// rounded, never below one row.
func (o Options) Rows(srcWidth, srcHeight int) int {
	cols := o.columnsFor(srcWidth)
	rows := int(math.Round(float64(srcHeight) / float64(srcWidth) * float64(cols) * o.FontRatio))
	if rows < 1 {
		rows = 1
	}
	return rows
}

// Convert resamples the image to the target grid size with a Lanczos filter
// and maps every pixel to a ramp glyph. With Colors set, the resampled pixel
// colors are captured alongside the characters.
func Convert(img image.Image, opts Options) (*cframe.Grid, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if bounds.Dx() < 1 || bounds.Dy() < 1 {
		return nil, services.Wrap(services.ErrDecode, "ascii", "convert", "image is empty", nil)
	}

	cols := opts.columnsFor(bounds.Dx())
	rows := opts.Rows(bounds.Dx(), bounds.Dy())
	var resized *image.NRGBA
	if cols == bounds.Dx() && rows == bounds.Dy() {
		resized = imaging.Clone(img)
	} else {
		resized = imaging.Resize(img, cols, rows, imaging.Lanczos)
	}

	cells := make([]byte, cols*rows)
	var colors []byte
	if opts.Colors {
		colors = make([]byte, cols*rows*3)
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			i := resized.PixOffset(x, y)
			r, g, b := resized.Pix[i], resized.Pix[i+1], resized.Pix[i+2]
			cells[y*cols+x] = opts.glyphFor(Luminance(r, g, b))
			if colors != nil {
				base := (y*cols + x) * 3
				colors[base] = r
				colors[base+1] = g
				colors[base+2] = b
			}
		}
	}
	return cframe.New(cols, rows, cells, colors)
}

// ConvertFile decodes an image from disk and converts it.
func ConvertFile(path string, opts Options) (*cframe.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "ascii", "decode image", path, err)
	}
	return Convert(img, opts)
}
