// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/ambientor/audio"
)

// pcmReader is the part of go-audio's wav.Decoder the source needs.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	closer     io.Closer
	sampleRate int
	channels   int
	bitDepth   int
	float      bool
	intBuf     *goaudio.IntBuffer
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
		if err != nil {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	data := s.intBuf.Data[:n]
	switch {
	case s.float:
		for i, v := range data {
			dst[i] = math.Float32frombits(uint32(int32(v)))
		}
	case s.bitDepth == 8:
		// 8-bit WAVE data is unsigned.
		for i, v := range data {
			dst[i] = float32(v-128) / 128
		}
	default:
		scale := float32(int64(1) << (s.bitDepth - 1))
		for i, v := range data {
			dst[i] = float32(v) / scale
		}
	}

	if n < len(dst) && err == nil {
		return n, io.EOF
	}

	return n, err
}

// Decoder turns WAVE data into an audio.Source. It reads integer PCM at
// 8, 16, 24 and 32 bits and 32-bit float. Closing the source closes r when
// r is an io.Closer.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// go-audio needs to seek while walking the chunks.
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec, info, err := readHeader(rs)
	if err != nil {
		return nil, err
	}

	src := &source{
		dec:        dec,
		sampleRate: info.SampleRate,
		channels:   info.Channels,
		bitDepth:   info.BitDepth,
		intBuf: &goaudio.IntBuffer{
			Format:         dec.Format(),
			SourceBitDepth: info.BitDepth,
		},
	}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}

	switch info.FormatTag {
	case formatPCM, formatExtensible:
		switch info.BitDepth {
		case 8, 16, 24, 32:
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, info.BitDepth)
		}
	case formatIEEEFloat:
		if info.BitDepth != 32 {
			return nil, fmt.Errorf("%w: %d-bit float", ErrUnsupportedBitDepth, info.BitDepth)
		}
		src.float = true
	default:
		return nil, fmt.Errorf("%w: format tag %#x", ErrUnsupportedEncoding, info.FormatTag)
	}

	return src, nil
}
