// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"fmt"
	"math"
)

// Kind tags the variant a Generator holds.
type Kind uint8

const (
	KindOscillator Kind = iota + 1
	KindNoise
	KindModulator
	KindClip
)

func (k Kind) String() string {
	switch k {
	case KindOscillator:
		return "oscillator"
	case KindNoise:
		return "noise"
	case KindModulator:
		return "modulator"
	case KindClip:
		return "clip"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Generator is one procedural texture source. It produces a single sample
// in [-1, 1] per tick and owns all of its state.
//
// Generators are built with NewOscillator, NewNoise, NewModulator or NewClip.
// Only the state for the generator's Kind is used.
type Generator struct {
	kind       Kind
	sampleRate float64
	owned      bool

	osc   oscillator
	noise noise
	mod   modulator
	clip  clip
}

func (g *Generator) Kind() Kind { return g.kind }

// SampleRate is the rate the generator was built for.
func (g *Generator) SampleRate() float64 { return g.sampleRate }

// Tick returns the sample for clock and advances the generator by one tick.
// pitch scales the generator's frequency (oscillators), filter cutoff
// (noise), rate (modulators) or playback speed (clips); 1 leaves it alone.
func (g *Generator) Tick(clock uint64, pitch float64) float64 {
	switch g.kind {
	case KindOscillator:
		return g.osc.tick(clock, pitch)
	case KindNoise:
		return g.noise.tick(pitch)
	case KindModulator:
		return g.mod.tick(clock, pitch)
	case KindClip:
		return g.clip.tick(pitch)
	default:
		return 0
	}
}

// sweepsTone reports whether the generator has a cutoff a tone envelope
// can move.
func (g *Generator) sweepsTone() bool {
	return g.kind == KindNoise || (g.kind == KindOscillator && g.osc.toned)
}

// sweepTone offsets the tone cutoff by offset Hz for the next tick.
func (g *Generator) sweepTone(offset float64) {
	switch g.kind {
	case KindOscillator:
		g.osc.sweepTone(offset)
	case KindNoise:
		g.noise.swept = true
		g.noise.sweep = offset
	}
}

// depth is the modulation depth for modulators and 0 otherwise.
func (g *Generator) depth() float64 {
	if g.kind != KindModulator {
		return 0
	}

	return g.mod.depth
}

func checkSampleRate(sampleRate float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidParameter, sampleRate)
	}

	return nil
}

// checkRange reports an error unless lo <= v <= hi and v is finite.
func checkRange(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
		return fmt.Errorf("%w: %s %v outside [%v, %v]", ErrInvalidParameter, name, v, lo, hi)
	}

	return nil
}

// checkBelow reports an error unless lo <= v < hi and v is finite.
func checkBelow(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v >= hi {
		return fmt.Errorf("%w: %s %v outside [%v, %v)", ErrInvalidParameter, name, v, lo, hi)
	}

	return nil
}
