// Package ascii converts raster images into character grids. A source image
// is resampled to the target column count, each pixel's luminance is computed,
// and luminance picks a glyph from a darkest-to-lightest ramp. Values below
// the threshold render as space.
package ascii
