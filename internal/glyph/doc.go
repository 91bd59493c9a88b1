// Package glyph rasterizes the embedded Go Mono face into a fixed-cell
// coverage atlas. Rendering looks glyphs up here instead of shaping text per
// frame; every printable ASCII character gets one cell of per-pixel coverage.
package glyph
