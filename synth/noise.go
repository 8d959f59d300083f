// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"fmt"

	"github.com/ik5/ambientor/utils"
)

// NoiseColor is the spectral tilt of the raw noise before filtering.
type NoiseColor uint8

const (
	White NoiseColor = iota
	Pink
	Brown
)

func (c NoiseColor) String() string {
	switch c {
	case White:
		return "white"
	case Pink:
		return "pink"
	case Brown:
		return "brown"
	default:
		return "unknown"
	}
}

// DefaultQ is used when NoiseParams.Q is zero.
const DefaultQ = 0.707

// NoiseParams configures a filtered noise bed.
type NoiseParams struct {
	Color  NoiseColor
	Filter FilterMode
	Cutoff float64 // Hz, below Nyquist
	Q      float64
	Seed   uint64
}

type noise struct {
	color  NoiseColor
	rng    rng
	cutoff float64
	swept  bool
	sweep  float64 // tone sweep offset in Hz
	tuned  float64 // cutoff the filter is tuned to
	filter svf

	// pink filter memories and brown integrator
	b0, b1, b2 float64
	brown      float64
}

// NewNoise builds a seeded noise texture through a state-variable filter.
func NewNoise(sampleRate float64, p NoiseParams) (*Generator, error) {
	if err := checkSampleRate(sampleRate); err != nil {
		return nil, err
	}
	if p.Color > Brown {
		return nil, fmt.Errorf("%w: noise color %d", ErrInvalidParameter, p.Color)
	}
	if p.Filter > Highpass {
		return nil, fmt.Errorf("%w: filter mode %d", ErrInvalidParameter, p.Filter)
	}
	if err := checkBelow("cutoff", p.Cutoff, 0, sampleRate/2); err != nil {
		return nil, err
	}
	if p.Cutoff == 0 {
		return nil, fmt.Errorf("%w: cutoff must be positive", ErrInvalidParameter)
	}

	q := p.Q
	if q == 0 {
		q = DefaultQ
	}
	if err := checkRange("q", q, 0.05, 50); err != nil {
		return nil, err
	}

	n := noise{
		color:  p.Color,
		rng:    newRNG(p.Seed),
		cutoff: p.Cutoff,
		tuned:  p.Cutoff,
		filter: newSVF(p.Filter, p.Cutoff, q, sampleRate),
	}

	return &Generator{kind: KindNoise, sampleRate: sampleRate, noise: n}, nil
}

func (n *noise) raw() float64 {
	w := n.rng.bipolar()

	switch n.color {
	case Pink:
		// Paul Kellet's economy pink filter.
		n.b0 = 0.99765*n.b0 + w*0.0990460
		n.b1 = 0.96300*n.b1 + w*0.2965164
		n.b2 = 0.57000*n.b2 + w*1.0526913
		return (n.b0 + n.b1 + n.b2 + w*0.1848) * 0.22
	case Brown:
		n.brown = (n.brown + 0.02*w) / 1.02
		return n.brown * 3.5
	default:
		return w
	}
}

func (n *noise) tick(pitch float64) float64 {
	cut := n.cutoff * pitch
	if n.swept {
		cut = max(n.cutoff+n.sweep, MinToneHz) * pitch
	}
	if cut != n.tuned {
		n.tuned = cut
		n.filter.setCutoff(cut)
	}

	return utils.Clamp(n.filter.process(n.raw()), -1, 1)
}
