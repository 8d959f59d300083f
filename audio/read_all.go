// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// MaxClipSamples caps how many samples ReadAll will collect (64 MiB of float32).
const MaxClipSamples = 1 << 24

// ReadAll drains src and returns every interleaved sample it produced.
// It stops with ErrClipTooLong once more than limit samples were read;
// limit <= 0 means MaxClipSamples.
//
// Example:
//
//	res, _ := audio.NewResampler(src, 48000)
//	mono, err := audio.ReadAll(audio.NewMonoMixer(res), 0)
func ReadAll(src Source, limit int) ([]float32, error) {
	if limit <= 0 {
		limit = MaxClipSamples
	}

	bufSize := max(src.BufSize(), src.Channels(), 1)
	buf := make([]float32, bufSize-bufSize%max(src.Channels(), 1))
	out := make([]float32, 0, min(limit, 4*len(buf)))

	for empty := 0; ; {
		n, err := src.ReadSamples(buf)
		if n == 0 && err == nil {
			if empty++; empty >= maxEmptyReads {
				return nil, io.ErrNoProgress
			}
			continue
		}
		empty = 0

		if n > 0 {
			if len(out)+n > limit {
				return nil, fmt.Errorf("%w: more than %d samples", ErrClipTooLong, limit)
			}
			out = append(out, buf[:n]...)
		}

		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
	}
}
