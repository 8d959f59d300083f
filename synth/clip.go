// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"fmt"
	"math"

	"github.com/ik5/ambientor/utils"
)

// ClipParams configures playback of a recorded texture.
type ClipParams struct {
	// Samples is mono audio already at the generator sample rate.
	// The slice is retained, not copied.
	Samples []float32
	Loop    bool
	Offset  int // start position in samples
}

type clip struct {
	samples []float32
	loop    bool
	pos     float64
}

// NewClip builds a generator that plays back mono samples, once or looped.
// After a one-shot clip ends it produces silence.
func NewClip(sampleRate float64, p ClipParams) (*Generator, error) {
	if err := checkSampleRate(sampleRate); err != nil {
		return nil, err
	}
	if len(p.Samples) == 0 {
		return nil, fmt.Errorf("%w: clip has no samples", ErrInvalidParameter)
	}
	if p.Offset < 0 || p.Offset >= len(p.Samples) {
		return nil, fmt.Errorf("%w: clip offset %d outside [0, %d)", ErrInvalidParameter, p.Offset, len(p.Samples))
	}

	c := clip{samples: p.Samples, loop: p.Loop, pos: float64(p.Offset)}

	return &Generator{kind: KindClip, sampleRate: sampleRate, clip: c}, nil
}

// tick reads at the current position, interpolating linearly between
// neighbours when pitch moves the read head off whole samples.
func (c *clip) tick(pitch float64) float64 {
	n := len(c.samples)
	if c.pos >= float64(n) {
		return 0
	}

	i := int(c.pos)
	frac := c.pos - float64(i)
	s := float64(c.samples[i])

	if frac > 0 {
		j := i + 1
		if j >= n {
			j = 0
			if !c.loop {
				j = i
			}
		}
		s += frac * (float64(c.samples[j]) - s)
	}

	c.pos += max(pitch, 0)
	if c.loop && c.pos >= float64(n) {
		c.pos = math.Mod(c.pos, float64(n))
	}

	return utils.Clamp(s, -1, 1)
}
