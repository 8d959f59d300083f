// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"

	"github.com/ik5/ambientor/audio"
	"github.com/ik5/ambientor/utils"
)

type sampleFormat int

const (
	float32LE sampleFormat = iota
	int16LE
)

func (f sampleFormat) bytes() int {
	if f == int16LE {
		return 2
	}
	return 4
}

// pcmReader encodes a Source into little-endian bytes for io consumers
// such as an oto player or stdout. It tracks the peak level for the meter.
type pcmReader struct {
	ctx     context.Context
	src     audio.Source
	format  sampleFormat
	buf     []float32
	pending []byte
	enc     []byte
	done    bool

	mtx  *sync.Mutex
	peak float32
}

func newPCMReader(ctx context.Context, src audio.Source, format sampleFormat) *pcmReader {
	size := max(src.BufSize(), src.Channels())
	size -= size % src.Channels()

	return &pcmReader{
		ctx:    ctx,
		src:    src,
		format: format,
		buf:    make([]float32, size),
		enc:    make([]byte, 0, size*format.bytes()),
		mtx:    &sync.Mutex{},
	}
}

func (r *pcmReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		if r.done {
			return 0, io.EOF
		}
		if err := r.fill(); err != nil {
			return 0, err
		}
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]

	return n, nil
}

// fill renders and encodes the next chunk.
func (r *pcmReader) fill() error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	n, err := r.src.ReadSamples(r.buf)
	if errors.Is(err, io.EOF) {
		r.done = true
	} else if err != nil {
		return err
	}

	enc := r.enc[:0]
	var peak float32
	for _, s := range r.buf[:n] {
		peak = max(peak, float32(math.Abs(float64(s))))
		if r.format == int16LE {
			enc = binary.LittleEndian.AppendUint16(enc, uint16(utils.Float32ToInt16(s)))
		} else {
			enc = binary.LittleEndian.AppendUint32(enc, math.Float32bits(s))
		}
	}
	r.enc = enc
	r.pending = enc

	r.mtx.Lock()
	r.peak = max(r.peak, peak)
	r.mtx.Unlock()

	return nil
}

// Peak returns the highest absolute sample since the last call and resets it.
func (r *pcmReader) Peak() float32 {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	p := r.peak
	r.peak = 0

	return p
}

// dBFS converts a linear peak to decibels relative to full scale.
func dBFS(peak float32) float64 {
	if peak <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(float64(peak))
}
