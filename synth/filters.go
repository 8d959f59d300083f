// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"math"

	"github.com/ik5/ambientor/utils"
)

// rng is a xorshift64* generator. It is cheap, allocation free and fully
// determined by its seed.
type rng struct {
	state uint64
}

func newRNG(seed uint64) rng {
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}

	return rng{state: seed}
}

func (r *rng) next() uint64 {
	r.state ^= r.state >> 12
	r.state ^= r.state << 25
	r.state ^= r.state >> 27

	return r.state * 2685821657736338717
}

// float returns a value in [0, 1).
func (r *rng) float() float64 {
	return float64(r.next()>>11) / (1 << 53)
}

// bipolar returns a value in [-1, 1).
func (r *rng) bipolar() float64 {
	return 2*r.float() - 1
}

// onePole is a one-pole lowpass: y += a*(x-y).
type onePole struct {
	a float64
	y float64
}

func newOnePole(cutoffHz, sampleRate float64) onePole {
	return onePole{a: 1 - utils.OnePoleCoeff(cutoffHz, sampleRate)}
}

func (f *onePole) process(x float64) float64 {
	f.y = utils.KillDenormals(f.y + f.a*(x-f.y))
	return f.y
}

// FilterMode selects the state-variable filter output.
type FilterMode uint8

const (
	Lowpass FilterMode = iota
	Bandpass
	Highpass
)

func (m FilterMode) String() string {
	switch m {
	case Lowpass:
		return "lowpass"
	case Bandpass:
		return "bandpass"
	case Highpass:
		return "highpass"
	default:
		return "unknown"
	}
}

// svf is a topology-preserving (trapezoidal) state-variable filter.
// It stays stable while the cutoff is modulated every sample.
type svf struct {
	mode       FilterMode
	sampleRate float64
	k          float64 // 1/Q
	a1, a2, a3 float64
	ic1, ic2   float64
}

func newSVF(mode FilterMode, cutoffHz, q, sampleRate float64) svf {
	f := svf{mode: mode, sampleRate: sampleRate, k: 1 / q}
	f.setCutoff(cutoffHz)

	return f
}

func (f *svf) setCutoff(cutoffHz float64) {
	g := utils.TPTGain(cutoffHz, f.sampleRate)
	f.a1 = 1 / (1 + g*(g+f.k))
	f.a2 = g * f.a1
	f.a3 = g * f.a2
}

func (f *svf) process(x float64) float64 {
	v3 := x - f.ic2
	v1 := f.a1*f.ic1 + f.a2*v3
	v2 := f.ic2 + f.a2*f.ic1 + f.a3*v3

	f.ic1 = utils.KillDenormals(2*v1 - f.ic1)
	f.ic2 = utils.KillDenormals(2*v2 - f.ic2)

	switch f.mode {
	case Bandpass:
		return v1
	case Highpass:
		return x - f.k*v1 - v2
	default:
		return v2
	}
}

// driftSlewHz is the cutoff of the smoother that glides between drift targets.
const driftSlewHz = 0.25

// drift is a slow random walk: every period it picks a new target in
// [-span, span] and glides towards it.
type drift struct {
	span   float64
	period uint64 // ticks between picks, aligned to the clock
	rng    rng
	target float64
	slew   onePole
}

func newDrift(span, periodSeconds, sampleRate float64, seed uint64) drift {
	d := drift{
		span:   span,
		period: max(uint64(math.Round(periodSeconds*sampleRate)), 1),
		rng:    newRNG(seed),
		slew:   newOnePole(driftSlewHz, sampleRate),
	}
	d.target = d.span * d.rng.bipolar()

	return d
}

func (d *drift) next(clock uint64) float64 {
	if clock%d.period == 0 {
		d.target = d.span * d.rng.bipolar()
	}

	return d.slew.process(d.target)
}
