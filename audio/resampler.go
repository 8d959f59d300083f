// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/ambientor/utils"
)

// maxEmptyReads bounds how many (0, nil) reads in a row a source may return
// before the resampler gives up on it.
const maxEmptyReads = 64

// Resampler streams from src to target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// When downsampling, decoded frames go through a one-pole lowpass set just
// under the destination Nyquist frequency.
type Resampler struct {
	src      Source
	srcRate  int
	dstRate  int
	step     float64 // source frames consumed per output frame
	channels int

	// History window for cubic interpolation:
	// hist[0] = t-1, hist[1] = t0, hist[2] = t+1, hist[3] = t+2.
	// decoded[i] is false for slots padded by repeating the last frame after EOF.
	hist    [4][]float32
	decoded [4]bool
	primed  bool

	// Fractional read position between hist[1] and hist[2].
	pos float64

	readBuf []float32
	pending []float32
	eof     bool

	lowpass  bool
	lpCoeff  float32
	lpState  []float32
	lpWarmed bool
}

func NewResampler(src Source, dstRate int) (*Resampler, error) {
	if dstRate <= 0 || src.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidRate, src.SampleRate(), dstRate)
	}

	channels := src.Channels()
	bufSize := max(src.BufSize(), channels)
	bufSize -= bufSize % channels

	r := &Resampler{
		src:      src,
		srcRate:  src.SampleRate(),
		dstRate:  dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		channels: channels,
		readBuf:  make([]float32, bufSize),
		lpState:  make([]float32, channels),
	}

	if r.step > 1 {
		r.lowpass = true
		r.lpCoeff = float32(1 - utils.OnePoleCoeff(0.45*float64(dstRate), float64(r.srcRate)))
	}

	for i := range r.hist {
		r.hist[i] = make([]float32, channels)
	}

	return r, nil
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// nextFrame decodes one frame into dst. It reports false once the source is
// exhausted.
func (r *Resampler) nextFrame(dst []float32) (bool, error) {
	for empty := 0; len(r.pending) < r.channels; {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.readBuf)
		n -= n % r.channels
		r.pending = r.readBuf[:n]

		switch {
		case err == io.EOF:
			r.eof = true
		case err != nil:
			return false, fmt.Errorf("%w", err)
		case n == 0:
			empty++
			if empty >= maxEmptyReads {
				return false, io.ErrNoProgress
			}
		}
	}

	copy(dst, r.pending[:r.channels])
	r.pending = r.pending[r.channels:]

	if r.lowpass {
		if !r.lpWarmed {
			// Start the filter on the first frame to avoid a fade-in transient.
			copy(r.lpState, dst)
			r.lpWarmed = true
		}
		for c := range r.channels {
			r.lpState[c] += r.lpCoeff * (dst[c] - r.lpState[c])
			dst[c] = r.lpState[c]
		}
	}

	return true, nil
}

func (r *Resampler) fill(slot int) error {
	ok, err := r.nextFrame(r.hist[slot])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.hist[slot], r.hist[slot-1])
	}
	r.decoded[slot] = ok

	return nil
}

func (r *Resampler) prime() error {
	ok, err := r.nextFrame(r.hist[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}

	copy(r.hist[0], r.hist[1])
	r.decoded[0], r.decoded[1] = true, true

	for slot := 2; slot < len(r.hist); slot++ {
		if err := r.fill(slot); err != nil {
			return err
		}
	}

	r.primed = true
	return nil
}

// shift slides the history window one source frame forward.
func (r *Resampler) shift() error {
	oldest := r.hist[0]
	copy(r.hist[:], r.hist[1:])
	r.hist[3] = oldest
	copy(r.decoded[:], r.decoded[1:])

	return r.fill(3)
}

// ReadSamples produces dst samples at the destination rate.
// dst length must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	framesNeeded := len(dst) / r.channels
	written := 0

	for written < framesNeeded {
		for r.pos >= 1 {
			r.pos--
			if err := r.shift(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.decoded[1] {
			return written * r.channels, io.EOF
		}

		x := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(r.hist[0][c], r.hist[1][c], r.hist[2][c], r.hist[3][c], x)
		}

		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}
