// Package pipeline drives the batched jobs: converting extracted images into
// character grids and streaming rendered grids into an encoder session. Frame
// order is fixed at discovery and preserved through every parallel stage.
package pipeline
