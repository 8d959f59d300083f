// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/ambientor/audio"
)

// Stream exposes an engine as an audio.Source. Each read renders at most
// one chunk, so a consumer never holds more than that in memory.
type Stream struct {
	e         *Engine
	rate      int
	remaining int64 // frames left; <0 means endless
	done      int64
	total     int64
	progress  func(done, total int64)
}

var _ audio.Source = (*Stream)(nil)

// Stream returns a source producing frames frames, or an endless one when
// frames is negative. Its integer SampleRate is the engine rate rounded.
func (e *Engine) Stream(frames int64) (*Stream, error) {
	rate, err := e.intRate()
	if err != nil {
		return nil, err
	}

	return &Stream{e: e, rate: rate, remaining: frames, total: frames}, nil
}

// intRate is the sample rate as written to file headers.
func (e *Engine) intRate() (int, error) {
	r := math.Round(e.format.SampleRate)
	if r < 1 || r > math.MaxInt32 {
		return 0, fmt.Errorf("%w: sample rate %v cannot be stored in a file header", ErrConfiguration, e.format.SampleRate)
	}

	return int(r), nil
}

func (s *Stream) SampleRate() int { return s.rate }
func (s *Stream) Channels() int   { return s.e.format.Channels }
func (s *Stream) BufSize() int    { return s.e.chunkFrames * s.e.format.Channels }

// Close ends the stream; later reads return io.EOF.
func (s *Stream) Close() error {
	s.remaining = 0
	return nil
}

// Rendered returns how many frames the stream produced.
func (s *Stream) Rendered() int64 { return s.done }

// ReadSamples renders at most one chunk into dst and returns io.EOF with
// the last frames of a bounded stream.
func (s *Stream) ReadSamples(dst []float32) (int, error) {
	ch := s.e.format.Channels
	if s.remaining == 0 {
		return 0, io.EOF
	}
	if len(dst)%ch != 0 {
		return 0, fmt.Errorf("%w: %d samples for %d channels", audio.ErrInvalidDstSize, len(dst), ch)
	}

	frames := int64(min(len(dst)/ch, s.e.chunkFrames))
	if s.remaining > 0 {
		frames = min(frames, s.remaining)
	}

	n, err := s.e.RenderInto(dst[:frames*int64(ch)])
	if err != nil {
		return 0, err
	}

	s.done += int64(n)
	if s.remaining > 0 {
		s.remaining -= int64(n)
	}
	if s.progress != nil {
		s.progress(s.done, s.total)
	}

	if s.remaining == 0 {
		return n * ch, io.EOF
	}

	return n * ch, nil
}
