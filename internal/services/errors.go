package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDecode marks source images that cannot be decoded.
	ErrDecode = errors.New("decode error")
	// ErrConfiguration marks invalid ramps, thresholds, or config files.
	ErrConfiguration = errors.New("configuration error")
	// ErrCorruptFrame marks cframe files that violate the binary layout.
	ErrCorruptFrame = errors.New("corrupt frame")
	// ErrMalformedGrid marks text grids with ragged or empty rows.
	ErrMalformedGrid = errors.New("malformed grid")
	// ErrEncoderSpawn marks encoder processes that could not start.
	ErrEncoderSpawn = errors.New("encoder spawn error")
	// ErrEncoderWrite marks a broken encoder input pipe mid-stream.
	ErrEncoderWrite = errors.New("encoder write error")
	// ErrEncoderExit marks a non-zero encoder exit after a clean write sequence.
	ErrEncoderExit = errors.New("encoder exit error")
	// ErrExternalTool marks other failures of external commands.
	ErrExternalTool = errors.New("external tool error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification via errors.Is. The
// marker should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsEncoderFailure reports whether the error originated on the encoder side
// of the pipe, as opposed to frame decode or conversion.
func IsEncoderFailure(err error) bool {
	return errors.Is(err, ErrEncoderSpawn) ||
		errors.Is(err, ErrEncoderWrite) ||
		errors.Is(err, ErrEncoderExit)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
