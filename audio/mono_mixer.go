// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MonoMixer folds a multi-channel Source down to one channel by averaging
// each frame. Mono sources pass straight through.
type MonoMixer struct {
	src Source
	tmp []float32
}

func NewMonoMixer(src Source) *MonoMixer {
	return &MonoMixer{
		src: src,
		tmp: make([]float32, 0, 8192),
	}
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }
func (m *MonoMixer) BufSize() int    { return m.src.BufSize() }

func (m *MonoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// ReadSamples fills dst with up to len(dst) mono frames.
func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	channels := m.src.Channels()
	if channels == 1 {
		return m.src.ReadSamples(dst)
	}

	samplesNeeded := len(dst) * channels
	if cap(m.tmp) < samplesNeeded {
		m.tmp = make([]float32, samplesNeeded)
	}
	m.tmp = m.tmp[:samplesNeeded]

	n, err := m.src.ReadSamples(m.tmp)
	frames := n / channels
	if frames == 0 {
		return 0, err
	}

	if channels == 2 {
		for f := range frames {
			dst[f] = (m.tmp[2*f] + m.tmp[2*f+1]) * 0.5
		}

		return frames, err
	}

	inv := 1 / float32(channels)
	for f := range frames {
		frame := m.tmp[f*channels : (f+1)*channels]

		var sum float32
		for _, s := range frame {
			sum += s
		}
		dst[f] = sum * inv
	}

	return frames, err
}
