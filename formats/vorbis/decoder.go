// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/ambientor/audio"
)

// valueReader is the part of oggvorbis.Reader the source needs.
// Read returns the number of interleaved values decoded.
type valueReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec    valueReader
	closer io.Closer
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.dec.Channels() }
func (s *source) BufSize() int    { return 4096 - 4096%s.dec.Channels() }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// ReadSamples decodes straight into dst, trimmed to whole frames.
func (s *source) ReadSamples(dst []float32) (int, error) {
	dst = dst[:len(dst)-len(dst)%s.dec.Channels()]
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}

	return n, err
}

// Decoder turns an Ogg Vorbis stream into an audio.Source. Closing the
// source closes r when r is an io.Closer.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotVorbisFile, err)
	}
	if dec.Channels() < 1 {
		return nil, fmt.Errorf("%w: no channels", ErrNotVorbisFile)
	}

	src := &source{dec: dec}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}

	return src, nil
}
