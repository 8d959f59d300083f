// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/ambientor/audio"
)

// go-mp3 always produces interleaved stereo, 16-bit little-endian.
const (
	channels       = 2
	bytesPerSample = 2
	bufSamples     = 4096
)

// pcmReader is the part of gomp3.Decoder the source needs.
type pcmReader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec    pcmReader
	closer io.Closer
	buf    []byte
	carry  int // bytes of a split sample kept at the front of buf
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return channels }
func (s *source) BufSize() int    { return bufSamples }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * bytesPerSample
	if cap(s.buf) < need {
		buf := make([]byte, need)
		copy(buf, s.buf[:s.carry])
		s.buf = buf
	}
	s.buf = s.buf[:need]

	n, err := s.dec.Read(s.buf[s.carry:])
	n += s.carry

	samples := n / bytesPerSample
	for i := range samples {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))) / 32768
	}

	// go-mp3 may stop in the middle of a sample; keep the odd byte.
	s.carry = copy(s.buf, s.buf[samples*bytesPerSample:n])

	if err != nil && err != io.EOF {
		return samples, fmt.Errorf("%w", err)
	}

	return samples, err
}

// Decoder turns an MP3 stream into a stereo audio.Source. Closing the
// source closes r when r is an io.Closer.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}

	src := &source{dec: dec, buf: make([]byte, bufSamples*bytesPerSample)}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}

	return src, nil
}
