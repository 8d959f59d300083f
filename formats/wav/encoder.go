// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/ambientor/utils"
)

// WAVE format tags.
const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	formatExtensible = 0xFFFE
)

// HeaderSize is the size of the canonical RIFF/WAVE header.
const HeaderSize = 44

// MaxDataBytes is the largest data chunk whose RIFF size still fits the
// 32-bit header field.
const MaxDataBytes = math.MaxUint32 - (HeaderSize - 8)

// Encoding selects the sample format written to the data chunk.
type Encoding uint8

const (
	// PCM16 is 16-bit signed little-endian PCM.
	PCM16 Encoding = iota
	// Float32 is 32-bit IEEE float.
	Float32
)

func (e Encoding) String() string {
	switch e {
	case PCM16:
		return "pcm16"
	case Float32:
		return "float32"
	default:
		return fmt.Sprintf("Encoding(%d)", uint8(e))
	}
}

// BitDepth is the bits per sample of the encoding.
func (e Encoding) BitDepth() int {
	if e == Float32 {
		return 32
	}

	return 16
}

// FormatTag is the WAVE fmt chunk format tag.
func (e Encoding) FormatTag() int {
	if e == Float32 {
		return formatIEEEFloat
	}

	return formatPCM
}

// BytesPerSample is the encoded size of one sample.
func (e Encoding) BytesPerSample() int { return e.BitDepth() / 8 }

func (e Encoding) valid() bool { return e <= Float32 }

// MaxFrames is the most frames a single WAVE file can hold for the layout.
func MaxFrames(channels int, encoding Encoding) int64 {
	if channels < 1 {
		return 0
	}

	return MaxDataBytes / int64(channels*encoding.BytesPerSample())
}

// Encoder streams interleaved float32 samples into a WAVE container.
// The header is written on construction; Close patches the RIFF and data
// sizes, so a closed Encoder always leaves a complete file even when no
// frames were written.
type Encoder struct {
	enc      *gowav.Encoder
	encoding Encoding
	channels int
	buf      *goaudio.IntBuffer
	frames   int64
	bytes    int64 // data chunk bytes written
	limit    int64 // data chunk cap
}

// NewEncoder writes the header to w and returns an Encoder for it.
func NewEncoder(w io.WriteSeeker, sampleRate, channels int, encoding Encoding) (*Encoder, error) {
	if !encoding.valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, encoding)
	}
	if sampleRate < 1 || sampleRate > math.MaxInt32 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, sampleRate)
	}
	if channels < 1 || channels > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFormat, channels)
	}

	e := &Encoder{
		enc:      gowav.NewEncoder(w, sampleRate, encoding.BitDepth(), channels, encoding.FormatTag()),
		encoding: encoding,
		channels: channels,
		limit:    MaxDataBytes,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: encoding.BitDepth(),
			Data:           make([]int, 0, 4096),
		},
	}

	// An empty write emits the RIFF, fmt and data chunk headers.
	if err := e.enc.Write(e.buf); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	return e, nil
}

func (e *Encoder) Encoding() Encoding { return e.encoding }

// Frames returns how many frames were written so far.
func (e *Encoder) Frames() int64 { return e.frames }

// Write encodes interleaved samples. len(samples) must be a multiple of the
// channel count. PCM16 samples are clamped to [-1, 1] before quantizing.
// A write that would grow the data chunk past MaxDataBytes fails with
// ErrFileTooLarge and writes nothing.
func (e *Encoder) Write(samples []float32) error {
	if len(samples)%e.channels != 0 {
		return fmt.Errorf("%w: %d samples for %d channels", ErrInvalidFormat, len(samples), e.channels)
	}
	if len(samples) == 0 {
		return nil
	}

	n := int64(len(samples)) * int64(e.encoding.BytesPerSample())
	if n > e.limit-e.bytes {
		return fmt.Errorf("%w: %d data bytes after %d frames", ErrFileTooLarge, e.bytes+n, e.frames)
	}

	data := e.buf.Data[:0]
	switch e.encoding {
	case Float32:
		for _, s := range samples {
			data = append(data, utils.Float32ToBits(s))
		}
	default:
		for _, s := range samples {
			data = append(data, int(utils.Float32ToInt16(s)))
		}
	}
	e.buf.Data = data

	if err := e.enc.Write(e.buf); err != nil {
		return fmt.Errorf("%w", err)
	}

	e.frames += int64(len(samples) / e.channels)
	e.bytes += n

	return nil
}

// Close patches the header sizes. It does not close the underlying writer.
func (e *Encoder) Close() error {
	if err := e.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
