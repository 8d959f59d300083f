// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrInvalidRate    = errors.New("sample rate must be positive")
	ErrUnknownFormat  = errors.New("no decoder registered for format")
	ErrClipTooLong    = errors.New("clip exceeds maximum length")
)

// UnknownFormatError reports the format key that had no decoder.
// It matches ErrUnknownFormat with errors.Is.
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("%s: missing file extension", ErrUnknownFormat)
	}

	return fmt.Sprintf("%s: %q", ErrUnknownFormat, e.Format)
}

func (e *UnknownFormatError) Is(target error) bool {
	return target == ErrUnknownFormat
}
