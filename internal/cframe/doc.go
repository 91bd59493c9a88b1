// Package cframe holds the character-grid frame type and its two on-disk
// forms: plain rectangular text and the binary cframe layout (8-byte
// little-endian width/height header followed by one [char, r, g, b] record
// per cell).
package cframe
