package cframe

import (
	"encoding/binary"
	"fmt"

	"cascii/internal/services"
)

// Binary layout: an 8-byte header of width and height as little-endian u32,
// then width*height records of [character, r, g, b], row-major. Newlines in
// the text form are not stored; the row length is implicit from the header.

const headerSize = 8

// Encode serializes a grid into the cframe binary form. Grids without colors
// encode every cell as opaque white.
func Encode(g *Grid) ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	out := make([]byte, headerSize+g.Width*g.Height*4)
	binary.LittleEndian.PutUint32(out[0:4], uint32(g.Width))
	binary.LittleEndian.PutUint32(out[4:8], uint32(g.Height))

	offset := headerSize
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			out[offset] = g.At(x, y)
			if g.HasColors() {
				r, gr, b := g.ColorAt(x, y)
				out[offset+1] = r
				out[offset+2] = gr
				out[offset+3] = b
			} else {
				out[offset+1] = 0xff
				out[offset+2] = 0xff
				out[offset+3] = 0xff
			}
			offset += 4
		}
	}
	return out, nil
}

// Decode reconstructs a grid from cframe bytes. It fails with a corrupt-frame
// error on a short header or truncated body, never returning partial data.
// Trailing surplus bytes are tolerated for forward compatibility.
func Decode(data []byte) (*Grid, error) {
	if len(data) < headerSize {
		return nil, services.Wrap(services.ErrCorruptFrame, "cframe", "decode",
			fmt.Sprintf("header requires %d bytes, got %d", headerSize, len(data)), nil)
	}
	width := int(binary.LittleEndian.Uint32(data[0:4]))
	height := int(binary.LittleEndian.Uint32(data[4:8]))
	if width < 1 || height < 1 {
		return nil, services.Wrap(services.ErrCorruptFrame, "cframe", "decode",
			fmt.Sprintf("header declares %dx%d grid", width, height), nil)
	}

	body := data[headerSize:]
	// Compare by division: width*height*4 overflows int for hostile headers,
	// and an overflowed size would slip past a straight length check.
	if width > len(body)/4/height {
		return nil, services.Wrap(services.ErrCorruptFrame, "cframe", "decode",
			fmt.Sprintf("body truncated: %d bytes for declared %dx%d grid", len(body), width, height), nil)
	}

	cells := make([]byte, width*height)
	colors := make([]byte, width*height*3)
	for i := 0; i < width*height; i++ {
		record := body[i*4 : i*4+4]
		cells[i] = record[0]
		copy(colors[i*3:], record[1:4])
	}
	return New(width, height, cells, colors)
}
