// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"fmt"

	"github.com/ik5/ambientor/utils"
)

// ModShape is the curve a modulator follows.
type ModShape uint8

const (
	ModSine ModShape = iota
	ModTriangle
	// ModDrift glides between random targets, one per cycle.
	ModDrift
)

func (s ModShape) String() string {
	switch s {
	case ModSine:
		return "sine"
	case ModTriangle:
		return "triangle"
	case ModDrift:
		return "drift"
	default:
		return "unknown"
	}
}

// ModulatorParams configures a slow LFO.
type ModulatorParams struct {
	Shape ModShape
	Rate  float64 // Hz
	Depth float64 // [0, 1]
	Phase float64 // start phase in [0, 1)
	Seed  uint64
}

type modulator struct {
	shape      ModShape
	rate       float64
	depth      float64
	sampleRate float64
	phase      float64

	rng    rng
	target float64
	slew   onePole
}

// NewModulator builds a low frequency modulator. Its output lies in
// [-Depth, Depth]. Layers use modulators as amplitude and pitch envelopes.
func NewModulator(sampleRate float64, p ModulatorParams) (*Generator, error) {
	if err := checkSampleRate(sampleRate); err != nil {
		return nil, err
	}
	if p.Shape > ModDrift {
		return nil, fmt.Errorf("%w: modulator shape %d", ErrInvalidParameter, p.Shape)
	}
	if err := checkBelow("rate", p.Rate, 0, sampleRate/2); err != nil {
		return nil, err
	}
	if err := checkRange("depth", p.Depth, 0, 1); err != nil {
		return nil, err
	}
	if err := checkBelow("phase", p.Phase, 0, 1); err != nil {
		return nil, err
	}

	m := modulator{
		shape:      p.Shape,
		rate:       p.Rate,
		depth:      p.Depth,
		sampleRate: sampleRate,
		phase:      p.Phase,
	}

	if p.Shape == ModDrift {
		m.rng = newRNG(p.Seed)
		m.target = m.rng.bipolar()
		m.slew = newOnePole(p.Rate, sampleRate)
		m.slew.y = m.target
	}

	return &Generator{kind: KindModulator, sampleRate: sampleRate, mod: m}, nil
}

func (m *modulator) tick(_ uint64, pitch float64) float64 {
	var s float64

	switch m.shape {
	case ModTriangle:
		s = shape(Triangle, m.phase)
	case ModDrift:
		s = m.slew.process(m.target)
	default:
		s = shape(Sine, m.phase)
	}

	m.phase += min(m.rate*pitch/m.sampleRate, 0.5)
	if m.phase >= 1 {
		m.phase -= float64(int(m.phase))
		if m.shape == ModDrift {
			m.target = m.rng.bipolar()
		}
	}

	return m.depth * utils.Clamp(s, -1, 1)
}
