// Package services defines the shared error taxonomy used by the conversion
// pipeline and the external tool clients.
//
// Failures are tagged with sentinel markers (decode, configuration, corrupt
// frame, encoder spawn/write/exit) through the Wrap helper so callers can
// classify them with errors.Is while the message carries the offending path
// and size details needed to diagnose without rerunning.
package services
