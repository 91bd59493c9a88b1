// Package render turns character grids into raw RGB24 pixel frames using a
// glyph atlas. Output dimensions are padded to even so the frames feed
// straight into a yuv420p encode.
package render
