// SPDX-License-Identifier: EPL-2.0

package ambientor

import (
	"fmt"
	"os"

	"github.com/ik5/ambientor/audio"
	"github.com/ik5/ambientor/formats/aiff"
	"github.com/ik5/ambientor/formats/mp3"
	"github.com/ik5/ambientor/formats/vorbis"
	"github.com/ik5/ambientor/formats/wav"
)

// NewRegistry returns a registry with every decoder this module ships,
// keyed by file extension.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})

	return reg
}

// LoadClip decodes the sound file at path, picking the decoder from its
// extension, and returns it as mono samples at sampleRate.
func LoadClip(path string, sampleRate int) ([]float32, error) {
	dec, err := NewRegistry().ForPath(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer src.Close()

	samples, err := DecodeClip(src, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return samples, nil
}

// DecodeClip drains src into mono samples at sampleRate. It builds the
// pipeline resample -> mono -> collect, skipping the resampler when the
// rates already match, and fails with audio.ErrClipTooLong past
// audio.MaxClipSamples. It does not close src.
//
// Example:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	samples, err := ambientor.DecodeClip(src, 48000)
func DecodeClip(src audio.Source, sampleRate int) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", audio.ErrInvalidRate, sampleRate)
	}

	stage := src
	if src.SampleRate() != sampleRate {
		res, err := audio.NewResampler(src, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		stage = res
	}

	samples, err := audio.ReadAll(audio.NewMonoMixer(stage), audio.MaxClipSamples)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return samples, nil
}
