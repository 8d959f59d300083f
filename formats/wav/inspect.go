// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"
	"time"

	gowav "github.com/go-audio/wav"
)

// Info is what a WAVE header says about the file.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	FormatTag  int
	DataBytes  int64
	Frames     int64
	Duration   time.Duration
}

// Encoding maps the header onto an Encoding, if it is one this package
// writes.
func (i Info) Encoding() (Encoding, bool) {
	switch {
	case i.FormatTag == formatPCM && i.BitDepth == 16:
		return PCM16, true
	case i.FormatTag == formatIEEEFloat && i.BitDepth == 32:
		return Float32, true
	default:
		return 0, false
	}
}

// Inspect reads the header chunks from r and leaves r positioned at the
// first sample.
func Inspect(r io.ReadSeeker) (Info, error) {
	_, info, err := readHeader(r)
	return info, err
}

// InspectFile reads the header of the file at path.
func InspectFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("%w", err)
	}
	defer f.Close()

	return Inspect(f)
}

func readHeader(r io.ReadSeeker) (*gowav.Decoder, Info, error) {
	dec := gowav.NewDecoder(r)

	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, Info{}, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if dec.NumChans == 0 || dec.SampleRate == 0 || dec.BitDepth == 0 {
		return nil, Info{}, fmt.Errorf("%w: missing fmt chunk", ErrInvalidFormat)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, Info{}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if dec.PCMChunk == nil {
		return nil, Info{}, fmt.Errorf("%w: missing data chunk", ErrInvalidFormat)
	}

	info := Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		FormatTag:  int(dec.WavAudioFormat),
		DataBytes:  dec.PCMLen(),
	}

	if frameBytes := int64(info.Channels * ((info.BitDepth + 7) / 8)); frameBytes > 0 {
		info.Frames = info.DataBytes / frameBytes
	}
	info.Duration = time.Duration(float64(info.Frames) / float64(info.SampleRate) * float64(time.Second))

	return dec, info, nil
}
