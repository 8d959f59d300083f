// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"fmt"
	"math"

	"github.com/ik5/ambientor/utils"
)

// Waveform is the shape of an oscillator or modulator cycle.
type Waveform uint8

const (
	Sine Waveform = iota
	Triangle
	Saw
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	case Saw:
		return "saw"
	default:
		return "unknown"
	}
}

// MinToneHz is the lowest cutoff a tone sweep reaches.
const MinToneHz = 80

// DefaultDriftPeriod is how often, in seconds, the detune drift picks a new
// target when OscillatorParams.DriftPeriod is zero.
const DefaultDriftPeriod = 7.5

// OscillatorParams configures a drone oscillator.
type OscillatorParams struct {
	Waveform  Waveform
	Frequency float64 // Hz, below Nyquist
	Phase     float64 // start phase in [0, 1)

	// DriftCents is the depth of the slow random detune; 0 disables it.
	DriftCents  float64
	DriftPeriod float64 // seconds
	Seed        uint64

	ToneHz float64 // one-pole lowpass cutoff; 0 disables it
	Drive  float64 // tanh saturation drive; 0 disables it
}

type oscillator struct {
	wave       Waveform
	freq       float64
	sampleRate float64
	phase      float64

	drifting bool
	drift    drift

	toned   bool
	tone    onePole
	toneHz  float64 // resting cutoff
	toneCut float64 // cutoff the filter is tuned to
	drive   float64
}

// NewOscillator builds a sine, triangle or saw drone.
func NewOscillator(sampleRate float64, p OscillatorParams) (*Generator, error) {
	if err := checkSampleRate(sampleRate); err != nil {
		return nil, err
	}

	nyquist := sampleRate / 2
	if p.Waveform > Saw {
		return nil, fmt.Errorf("%w: waveform %d", ErrInvalidParameter, p.Waveform)
	}
	if err := checkBelow("frequency", p.Frequency, 0, nyquist); err != nil {
		return nil, err
	}
	if err := checkBelow("phase", p.Phase, 0, 1); err != nil {
		return nil, err
	}
	if err := checkRange("drift cents", p.DriftCents, 0, 1200); err != nil {
		return nil, err
	}
	if err := checkRange("drift period", p.DriftPeriod, 0, math.MaxFloat64); err != nil {
		return nil, err
	}
	if err := checkBelow("tone", p.ToneHz, 0, nyquist); err != nil {
		return nil, err
	}
	if err := checkRange("drive", p.Drive, 0, 100); err != nil {
		return nil, err
	}

	o := oscillator{
		wave:       p.Waveform,
		freq:       p.Frequency,
		sampleRate: sampleRate,
		phase:      p.Phase,
		drive:      p.Drive,
	}

	if p.DriftCents > 0 {
		period := p.DriftPeriod
		if period == 0 {
			period = DefaultDriftPeriod
		}
		o.drifting = true
		o.drift = newDrift(p.DriftCents, period, sampleRate, p.Seed)
	}

	if p.ToneHz > 0 {
		o.toned = true
		o.tone = newOnePole(p.ToneHz, sampleRate)
		o.toneHz = p.ToneHz
		o.toneCut = p.ToneHz
	}

	return &Generator{kind: KindOscillator, sampleRate: sampleRate, osc: o}, nil
}

// shape evaluates one cycle of w at phase in [0, 1).
func shape(w Waveform, phase float64) float64 {
	switch w {
	case Triangle:
		return 4*math.Abs(phase-0.5) - 1
	case Saw:
		return 2*phase - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// sweepTone retunes the tone filter to the resting cutoff plus offset Hz,
// never below MinToneHz.
func (o *oscillator) sweepTone(offset float64) {
	cut := max(o.toneHz+offset, MinToneHz)
	if cut == o.toneCut {
		return
	}

	o.toneCut = cut
	o.tone.a = 1 - utils.OnePoleCoeff(cut, o.sampleRate)
}

func (o *oscillator) tick(clock uint64, pitch float64) float64 {
	s := shape(o.wave, o.phase)

	if o.toned {
		s = o.tone.process(s)
	}
	if o.drive > 0 {
		s = math.Tanh(s * o.drive)
	}

	ratio := pitch
	if o.drifting {
		ratio *= utils.CentsToRatio(o.drift.next(clock))
	}

	// Keep the increment under Nyquist whatever the modulation does.
	inc := min(o.freq*ratio/o.sampleRate, 0.5)
	o.phase += inc
	o.phase -= math.Floor(o.phase)

	return s
}
