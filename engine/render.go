// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ik5/ambientor/formats/wav"
)

// MaxDurationSamples caps RenderDuration, which holds the whole result in
// memory (1 GiB of float32). Longer renders belong in RenderToFile.
const MaxDurationSamples = 1 << 28

// FrameCount is round(seconds * sample rate).
func (e *Engine) FrameCount(seconds float64) (int64, error) {
	if !finite(seconds) || seconds < 0 {
		return 0, fmt.Errorf("%w: duration must be finite and non-negative, got %v", ErrConfiguration, seconds)
	}

	frames := math.Round(seconds * e.format.SampleRate)
	if frames >= float64(math.MaxInt64/int64(e.format.Channels)) {
		return 0, fmt.Errorf("%w: duration of %v seconds is too long", ErrConfiguration, seconds)
	}

	return int64(frames), nil
}

// RenderDuration renders round(seconds * sample rate) frames in chunks and
// returns them concatenated.
func (e *Engine) RenderDuration(seconds float64) ([]float32, error) {
	frames, err := e.FrameCount(seconds)
	if err != nil {
		return nil, err
	}

	ch := int64(e.format.Channels)
	if frames*ch > MaxDurationSamples {
		return nil, fmt.Errorf("%w: %d frames exceed %d samples in memory", ErrConfiguration, frames, MaxDurationSamples)
	}

	out := make([]float32, frames*ch)
	chunk := int64(e.chunkFrames) * ch
	for off := int64(0); off < int64(len(out)); off += chunk {
		end := min(off+chunk, int64(len(out)))
		if _, err := e.RenderInto(out[off:end]); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// RenderToFile renders round(seconds * sample rate) frames into a WAVE
// file at path. The file only appears once it is complete. ctx is checked
// between chunks; a cancelled render returns the context error without
// ErrIO. Other failures wrap ErrIO and a *wav.WriteError. The clock keeps
// every frame rendered before a failure.
func (e *Engine) RenderToFile(ctx context.Context, path string, seconds float64, opts ...FileOption) error {
	frames, err := e.FrameCount(seconds)
	if err != nil {
		return err
	}

	o := fileOptions{encoding: wav.PCM16}
	for _, opt := range opts {
		opt(&o)
	}
	if o.encoding != wav.PCM16 && o.encoding != wav.Float32 {
		return fmt.Errorf("%w: %w: %s", ErrConfiguration, wav.ErrUnsupportedEncoding, o.encoding)
	}
	if limit := wav.MaxFrames(e.format.Channels, o.encoding); frames > limit {
		return fmt.Errorf("%w: %w: %d frames, a %s file holds at most %d",
			ErrConfiguration, wav.ErrFileTooLarge, frames, o.encoding, limit)
	}

	st, err := e.Stream(frames)
	if err != nil {
		return err
	}
	st.progress = o.progress

	start := time.Now()
	written, err := wav.WriteFile(ctx, path, st, o.encoding)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("render to %s: %w", path, err)
		}
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	e.logger.Info("rendered file",
		"path", path,
		"frames", written,
		"encoding", o.encoding,
		"elapsed", time.Since(start))

	return nil
}
