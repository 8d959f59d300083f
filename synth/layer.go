// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"fmt"
	"math"

	"github.com/ik5/ambientor/utils"
)

// Layer is one voice of the mix: a source generator with its gain, pan and
// optional envelopes.
type Layer struct {
	Source *Generator

	// AmpEnv scales the source by 1 - Depth*(1-s)/2, where s in [-1, 1] is
	// the modulator curve. A full depth envelope swings between silence and
	// unity. Must be a modulator.
	AmpEnv *Generator

	// PitchEnv bends the source by up to PitchCents (times the modulator
	// depth). Must be a modulator.
	PitchEnv   *Generator
	PitchCents float64

	// ToneEnv sweeps the source's tone cutoff by up to ToneSpan Hz (times
	// the modulator depth), never below MinToneHz. The source must be a
	// noise or an oscillator with a tone filter. Must be a modulator.
	ToneEnv  *Generator
	ToneSpan float64

	Gain   float64
	Pan    float64 // -1 hard left, 0 center, 1 hard right
	Reverb float64 // reverb send mix in [0, 1]; 0 disables it
}

func (l Layer) validate() error {
	if l.Source == nil {
		return fmt.Errorf("%w: layer has no source", ErrInvalidParameter)
	}
	if err := checkRange("gain", l.Gain, -math.MaxFloat64, math.MaxFloat64); err != nil {
		return err
	}
	if err := checkRange("pan", l.Pan, -1, 1); err != nil {
		return err
	}
	if err := checkRange("reverb", l.Reverb, 0, 1); err != nil {
		return err
	}
	if err := checkRange("pitch cents", l.PitchCents, -4800, 4800); err != nil {
		return err
	}
	if err := checkRange("tone span", l.ToneSpan, 0, l.Source.sampleRate/2); err != nil {
		return err
	}
	if l.ToneEnv != nil && !l.Source.sweepsTone() {
		return fmt.Errorf("%w: %s source has no tone to sweep", ErrInvalidParameter, l.Source.kind)
	}

	gens := l.generators()
	for i, g := range gens {
		if g == nil {
			continue
		}
		if g.owned {
			return fmt.Errorf("%w: %s generator already belongs to a layer", ErrInvalidParameter, g.kind)
		}
		if i > 0 && g.kind != KindModulator {
			return fmt.Errorf("%w: envelope must be a modulator, got %s", ErrInvalidParameter, g.kind)
		}
		if g.sampleRate != l.Source.sampleRate {
			return fmt.Errorf("%w: envelope sample rate %v differs from source %v",
				ErrInvalidParameter, g.sampleRate, l.Source.sampleRate)
		}
		for _, other := range gens[:i] {
			if other == g {
				return fmt.Errorf("%w: generator used twice in one layer", ErrInvalidParameter)
			}
		}
	}

	return nil
}

func (l Layer) generators() []*Generator {
	return []*Generator{l.Source, l.AmpEnv, l.PitchEnv, l.ToneEnv}
}

func (l Layer) setOwned(owned bool) {
	for _, g := range l.generators() {
		if g != nil {
			g.owned = owned
		}
	}
}

// Handle addresses a layer in a LayerStack. Handles are never reused.
type Handle uint64

type slot struct {
	handle Handle
	layer  Layer
	pan    []float64 // per channel gain from the pan law
	reverb *reverb
}

// LayerStack is an ordered arena of layers summed into per channel
// accumulators once per tick.
//
// LayerStack is not safe for concurrent use; the engine serializes access.
type LayerStack struct {
	channels int
	slots    []slot
	next     Handle
}

func NewLayerStack(channels int) *LayerStack {
	return &LayerStack{channels: max(channels, 1)}
}

func (s *LayerStack) Channels() int { return s.channels }

// Len returns the number of layers.
func (s *LayerStack) Len() int { return len(s.slots) }

// Handles returns the layer handles in render order.
func (s *LayerStack) Handles() []Handle {
	out := make([]Handle, len(s.slots))
	for i := range s.slots {
		out[i] = s.slots[i].handle
	}

	return out
}

// Layer returns a copy of the layer behind h.
func (s *LayerStack) Layer(h Handle) (Layer, error) {
	i, err := s.index(h)
	if err != nil {
		return Layer{}, err
	}

	return s.slots[i].layer, nil
}

// Add appends l and takes ownership of its generators.
func (s *LayerStack) Add(l Layer) (Handle, error) {
	if err := l.validate(); err != nil {
		return 0, err
	}

	s.next++
	sl := slot{
		handle: s.next,
		layer:  l,
		pan:    make([]float64, s.channels),
	}
	s.fillPan(sl.pan, l.Pan)

	if l.Reverb > 0 {
		sl.reverb = newReverb(l.Source.sampleRate, l.Reverb)
	}

	l.setOwned(true)
	s.slots = append(s.slots, sl)

	return sl.handle, nil
}

// Remove drops the layer behind h and releases its generators.
func (s *LayerStack) Remove(h Handle) error {
	i, err := s.index(h)
	if err != nil {
		return err
	}

	s.slots[i].layer.setOwned(false)
	copy(s.slots[i:], s.slots[i+1:])
	s.slots[len(s.slots)-1] = slot{}
	s.slots = s.slots[:len(s.slots)-1]

	return nil
}

func (s *LayerStack) SetGain(h Handle, gain float64) error {
	if err := checkRange("gain", gain, -math.MaxFloat64, math.MaxFloat64); err != nil {
		return err
	}

	i, err := s.index(h)
	if err != nil {
		return err
	}

	s.slots[i].layer.Gain = gain

	return nil
}

func (s *LayerStack) SetPan(h Handle, pan float64) error {
	if err := checkRange("pan", pan, -1, 1); err != nil {
		return err
	}

	i, err := s.index(h)
	if err != nil {
		return err
	}

	s.slots[i].layer.Pan = pan
	s.fillPan(s.slots[i].pan, pan)

	return nil
}

func (s *LayerStack) index(h Handle) (int, error) {
	for i := range s.slots {
		if s.slots[i].handle == h {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%w: %d", ErrUnknownLayer, h)
}

// fillPan spreads the equal-power gains over the channels. Mono ignores pan;
// with more than two channels even indexes get the left gain and odd
// indexes the right one.
func (s *LayerStack) fillPan(dst []float64, pan float64) {
	if s.channels == 1 {
		dst[0] = 1
		return
	}

	left, right := utils.PanGains(pan)
	for c := range dst {
		if c%2 == 0 {
			dst[c] = left
		} else {
			dst[c] = right
		}
	}
}

// Tick evaluates every layer once for clock and writes the channel sums
// into acc, which must hold at least Channels() values.
func (s *LayerStack) Tick(clock uint64, acc []float64) {
	acc = acc[:s.channels]
	clear(acc)

	for i := range s.slots {
		sl := &s.slots[i]
		l := &sl.layer

		pitch := 1.0
		if l.PitchEnv != nil {
			pitch = utils.CentsToRatio(l.PitchEnv.Tick(clock, 1) * l.PitchCents)
		}

		if l.ToneEnv != nil {
			l.Source.sweepTone(l.ToneEnv.Tick(clock, 1) * l.ToneSpan)
		}

		x := l.Source.Tick(clock, pitch)

		if l.AmpEnv != nil {
			v := l.AmpEnv.Tick(clock, 1)
			x *= 1 - 0.5*(l.AmpEnv.depth()-v)
		}

		if sl.reverb != nil {
			x = sl.reverb.process(x)
		}

		x *= l.Gain
		for c, g := range sl.pan {
			acc[c] += x * g
		}
	}
}
