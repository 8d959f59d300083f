// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrConfiguration reports a bad format, scene or duration. The engine
	// is left as it was.
	ErrConfiguration = errors.New("invalid engine configuration")
	// ErrInvalidArgument reports a bad per call argument. Nothing is rendered.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIO reports a failed file write. It is joined with the *wav.WriteError
	// describing the failure.
	ErrIO = errors.New("audio file write failed")
)
