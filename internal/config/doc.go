// Package config loads, normalizes, and validates cascii configuration data.
//
// It supplies repository defaults (quality presets, the glyph ramp, encoder
// settings), expands user paths including tilde shortcuts, and reads TOML
// files from an explicit path, $XDG_CONFIG_HOME/cascii/config.toml, or a
// project-local cascii.toml. Ramp validation runs once here so the conversion
// hot path never revalidates per frame.
package config
