// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
)

var (
	ErrNotWavFile          = errors.New("not a WAV file")
	ErrInvalidFormat       = errors.New("invalid WAV format")
	ErrUnsupportedEncoding = errors.New("unsupported WAV encoding")
	ErrUnsupportedBitDepth = errors.New("unsupported WAV bit depth")
	ErrFileTooLarge        = errors.New("WAV data exceeds the 32-bit RIFF size")
)

// WriteError describes a failed WriteFile. Frames is how many frames were
// encoded into the temporary file before the failure; the temporary file is
// removed and Path is left untouched either way.
type WriteError struct {
	Path   string
	Op     string
	Frames int64
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("wav %s %s after %d frames: %v", e.Op, e.Path, e.Frames, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
