// Package fileutil holds small file helpers shared across commands.
package fileutil

import (
	"io"
	"os"
)

// CopyFile streams src to dst, truncating any existing destination. Frame
// files are plain data, so dst always gets default permissions (0o644).
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
