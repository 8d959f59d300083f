// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds test doubles shared by the audio, formats and
// engine packages.
package audiotest

import (
	"errors"
	"io"
	"math"
)

// ErrInjected is returned by the failing doubles in this package.
var ErrInjected = errors.New("audiotest: injected failure")

// MockSource generates interleaved audio from a waveform callback.
// It implements the audio.Source interface (without importing it to avoid cycles).
type MockSource struct {
	sampleRate  int
	channels    int
	totalFrames int
	generated   int
	bufSize     int
	failAfter   int // frames before ReadSamples fails; <0 never fails
	closed      int
	waveform    func(frame int, channel int) float32
}

// NewMockSource creates a source producing totalFrames frames.
func NewMockSource(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		bufSize:     4096,
		failAfter:   -1,
		waveform:    waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalFrames, 0)
}

// NewSineSource creates a mock source that generates a sine wave on every channel.
func NewSineSource(sampleRate, channels, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalFrames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) float32 {
		return value
	})
}

// NewRampSource produces frame/totalFrames on every channel, handy for
// checking ordering across chunk boundaries.
func NewRampSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, _ int) float32 {
		return float32(frame) / float32(totalFrames)
	})
}

// WithBufSize changes the preferred read size reported by BufSize.
func (m *MockSource) WithBufSize(n int) *MockSource {
	m.bufSize = n
	return m
}

// FailAfter makes ReadSamples return ErrInjected once frames frames were produced.
func (m *MockSource) FailAfter(frames int) *MockSource {
	m.failAfter = frames
	return m
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return m.bufSize }

func (m *MockSource) Close() error {
	m.closed++
	return nil
}

// Closed reports how many times Close was called.
func (m *MockSource) Closed() int { return m.closed }

// Reset rewinds the source so it can be read again.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.failAfter >= 0 && m.generated >= m.failAfter {
		return 0, ErrInjected
	}
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, m.totalFrames-m.generated)
	if m.failAfter >= 0 {
		frames = min(frames, m.failAfter-m.generated)
	}

	for f := range frames {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.generated+f, ch)
		}
	}

	m.generated += frames
	if m.generated >= m.totalFrames {
		return frames * m.channels, io.EOF
	}

	return frames * m.channels, nil
}

// FailingWriteSeeker accepts Limit bytes and then fails every write.
type FailingWriteSeeker struct {
	Limit int64
	buf   []byte
	pos   int64
}

func (w *FailingWriteSeeker) Write(p []byte) (int, error) {
	room := w.Limit - w.pos
	if room <= 0 {
		return 0, ErrInjected
	}

	n := len(p)
	var err error
	if int64(n) > room {
		n = int(room)
		err = ErrInjected
	}

	end := w.pos + int64(n)
	if end > int64(len(w.buf)) {
		w.buf = append(w.buf, make([]byte, end-int64(len(w.buf)))...)
	}
	copy(w.buf[w.pos:end], p[:n])
	w.pos = end

	return n, err
}

func (w *FailingWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = w.pos + offset
	case io.SeekEnd:
		next = int64(len(w.buf)) + offset
	default:
		return 0, errors.New("audiotest: invalid whence")
	}
	if next < 0 {
		return 0, errors.New("audiotest: negative position")
	}

	w.pos = next
	return next, nil
}

// Bytes returns everything written so far.
func (w *FailingWriteSeeker) Bytes() []byte { return w.buf }
