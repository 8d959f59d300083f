// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/ambientor/audio"
)

// pcmReader is the part of aiff.Decoder the source needs.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	closer     io.Closer
	sampleRate int
	channels   int
	scale      float32 // full scale for the bit depth
	intBuf     *goaudio.IntBuffer
}

func newSource(dec pcmReader, format *goaudio.Format, bitDepth int) *source {
	return &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		scale:      float32(int64(1) << (bitDepth - 1)),
		intBuf:     &goaudio.IntBuffer{Format: format, SourceBitDepth: bitDepth},
	}
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 - 4096%s.channels }

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

	if cap(s.intBuf.Data) < len(dst) {
		s.intBuf.Data = make([]int, len(dst))
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v) / s.scale
	}

	if n < len(dst) && err == nil {
		return n, io.EOF
	}

	return n, err
}

// Decoder turns AIFF data into an audio.Source. It reads 8, 16, 24 and
// 32-bit PCM. Closing the source closes r when r is an io.Closer.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// go-audio needs to seek while walking the chunks.
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels < 1 || format.SampleRate < 1 {
		return nil, ErrInvalidFormat
	}

	src := newSource(dec, format, int(dec.BitDepth))
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}

	return src, nil
}
