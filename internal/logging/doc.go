// Package logging centralizes slog construction for cascii.
//
// It provides a console handler that renders "TIME LEVEL component: msg k=v"
// lines, a JSON handler for machine consumption, typed attribute helpers with
// the shared field names, a no-op logger for tests, and a progress sampler
// that throttles per-frame progress to integer-percent changes.
package logging
