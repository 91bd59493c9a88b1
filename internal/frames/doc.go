// Package frames holds utilities that operate on directories of converted
// frames: cropping into a new directory, trimming in place, and detecting
// repeated segments that can loop.
package frames
