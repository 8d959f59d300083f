// SPDX-License-Identifier: EPL-2.0

package synth

import "errors"

var (
	ErrInvalidParameter = errors.New("invalid generator parameter")
	ErrUnknownLayer     = errors.New("unknown layer handle")
	ErrUnknownScene     = errors.New("unknown scene")
)
