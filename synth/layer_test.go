// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"errors"
	"math"
	"testing"
)

// constant returns a looping clip that always yields v.
func constant(t *testing.T, v float32) *Generator {
	t.Helper()

	g, err := NewClip(48000, ClipParams{Samples: []float32{v}, Loop: true})
	if err != nil {
		t.Fatalf("NewClip() error = %v", err)
	}

	return g
}

func TestLayerStack_AddRemove(t *testing.T) {
	t.Parallel()

	s := NewLayerStack(2)

	h1, err := s.Add(Layer{Source: constant(t, 0.5), Gain: 1})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	h2, err := s.Add(Layer{Source: constant(t, 0.5), Gain: 1})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if got := s.Handles(); len(got) != 2 || got[0] != h1 || got[1] != h2 {
		t.Fatalf("Handles() = %v, want [%d %d]", got, h1, h2)
	}

	if err := s.Remove(h1); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.Remove(h1); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("second Remove() error = %v, want ErrUnknownLayer", err)
	}

	h3, err := s.Add(Layer{Source: constant(t, 0.5), Gain: 1})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if h3 == h1 || h3 == h2 {
		t.Errorf("handle %d was reused", h3)
	}
	if got := s.Handles(); len(got) != 2 || got[0] != h2 || got[1] != h3 {
		t.Errorf("Handles() = %v, want [%d %d]", got, h2, h3)
	}
}

func TestLayerStack_UnknownHandle(t *testing.T) {
	t.Parallel()

	s := NewLayerStack(2)

	if err := s.SetGain(7, 1); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("SetGain() error = %v, want ErrUnknownLayer", err)
	}
	if err := s.SetPan(7, 0); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("SetPan() error = %v, want ErrUnknownLayer", err)
	}
	if _, err := s.Layer(7); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("Layer() error = %v, want ErrUnknownLayer", err)
	}
}

func TestLayerStack_InvalidLayers(t *testing.T) {
	t.Parallel()

	owned := constant(t, 0.1)
	s := NewLayerStack(2)
	if _, err := s.Add(Layer{Source: owned, Gain: 1}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	lfo8k, _ := NewModulator(8000, ModulatorParams{Rate: 1, Depth: 1})
	shared, _ := NewModulator(48000, ModulatorParams{Rate: 1, Depth: 1})
	plain, _ := NewOscillator(48000, OscillatorParams{Frequency: 110})

	tests := []struct {
		name  string
		layer Layer
	}{
		{name: "no source", layer: Layer{Gain: 1}},
		{name: "nan gain", layer: Layer{Source: constant(t, 0), Gain: math.NaN()}},
		{name: "pan out of range", layer: Layer{Source: constant(t, 0), Pan: 1.5}},
		{name: "reverb out of range", layer: Layer{Source: constant(t, 0), Reverb: 2}},
		{name: "owned source", layer: Layer{Source: owned}},
		{name: "envelope not modulator", layer: Layer{Source: constant(t, 0), AmpEnv: constant(t, 0)}},
		{name: "envelope rate mismatch", layer: Layer{Source: constant(t, 0), AmpEnv: lfo8k}},
		{name: "envelope used twice", layer: Layer{Source: constant(t, 0), AmpEnv: shared, PitchEnv: shared}},
		{name: "tone sweep on a clip", layer: Layer{Source: constant(t, 0), ToneEnv: lfo(t)}},
		{name: "tone sweep without tone", layer: Layer{Source: plain, ToneEnv: lfo(t)}},
		{name: "negative tone span", layer: Layer{Source: toned(t), ToneEnv: lfo(t), ToneSpan: -10}},
		{name: "tone envelope not modulator", layer: Layer{Source: toned(t), ToneEnv: constant(t, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Add(tt.layer); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("Add() error = %v, want ErrInvalidParameter", err)
			}
		})
	}

	if s.Len() != 1 {
		t.Errorf("Len() = %d after rejected adds, want 1", s.Len())
	}
}

func TestLayerStack_RemoveReleasesGenerators(t *testing.T) {
	t.Parallel()

	src := constant(t, 0.2)
	s := NewLayerStack(1)

	h, _ := s.Add(Layer{Source: src, Gain: 1})
	if err := s.Remove(h); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := s.Add(Layer{Source: src, Gain: 1}); err != nil {
		t.Errorf("re-adding a released generator failed: %v", err)
	}
}

func TestLayerStack_Pan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		pan      float64
		want     []float64
	}{
		{name: "mono ignores pan", channels: 1, pan: -1, want: []float64{0.5}},
		{name: "hard left", channels: 2, pan: -1, want: []float64{0.5, 0}},
		{name: "hard right", channels: 2, pan: 1, want: []float64{0, 0.5}},
		{name: "center", channels: 2, pan: 0, want: []float64{0.5 * math.Sqrt2 / 2, 0.5 * math.Sqrt2 / 2}},
		{name: "quad alternates", channels: 4, pan: -1, want: []float64{0.5, 0, 0.5, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewLayerStack(tt.channels)
			if _, err := s.Add(Layer{Source: constant(t, 0.5), Gain: 1, Pan: tt.pan}); err != nil {
				t.Fatalf("Add() error = %v", err)
			}

			acc := make([]float64, tt.channels)
			s.Tick(0, acc)

			for c := range tt.want {
				if math.Abs(acc[c]-tt.want[c]) > 1e-6 {
					t.Errorf("channel %d = %v, want %v", c, acc[c], tt.want[c])
				}
			}
		})
	}
}

func TestLayerStack_SetPanAndGain(t *testing.T) {
	t.Parallel()

	s := NewLayerStack(2)
	h, _ := s.Add(Layer{Source: constant(t, 0.5), Gain: 1, Pan: -1})

	if err := s.SetPan(h, 1); err != nil {
		t.Fatalf("SetPan() error = %v", err)
	}
	if err := s.SetGain(h, 0.5); err != nil {
		t.Fatalf("SetGain() error = %v", err)
	}
	if err := s.SetPan(h, -2); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("SetPan(-2) error = %v, want ErrInvalidParameter", err)
	}

	acc := make([]float64, 2)
	s.Tick(0, acc)

	if math.Abs(acc[0]) > 1e-9 || math.Abs(acc[1]-0.25) > 1e-6 {
		t.Errorf("frame = %v, want [0 0.25]", acc)
	}

	l, err := s.Layer(h)
	if err != nil {
		t.Fatalf("Layer() error = %v", err)
	}
	if l.Gain != 0.5 || l.Pan != 1 {
		t.Errorf("Layer() = gain %v pan %v, want 0.5 and 1", l.Gain, l.Pan)
	}
}

func TestLayerStack_SumsLayers(t *testing.T) {
	t.Parallel()

	s := NewLayerStack(1)
	s.Add(Layer{Source: constant(t, 0.25), Gain: 1})
	s.Add(Layer{Source: constant(t, 0.5), Gain: 0.5})

	acc := []float64{99}
	s.Tick(0, acc)

	if math.Abs(acc[0]-0.5) > 1e-6 {
		t.Errorf("sum = %v, want 0.5", acc[0])
	}
}

func TestLayerStack_AmpEnvelope(t *testing.T) {
	t.Parallel()

	// A full depth triangle starts at its top (unity) and reaches silence
	// half a cycle later.
	env, err := NewModulator(48000, ModulatorParams{Shape: ModTriangle, Rate: 1, Depth: 1})
	if err != nil {
		t.Fatalf("NewModulator() error = %v", err)
	}

	s := NewLayerStack(1)
	s.Add(Layer{Source: constant(t, 0.5), AmpEnv: env, Gain: 1})

	acc := make([]float64, 1)
	lo, hi := math.Inf(1), math.Inf(-1)
	for clock := range uint64(48000) {
		s.Tick(clock, acc)
		lo, hi = min(lo, acc[0]), max(hi, acc[0])
	}

	if math.Abs(hi-0.5) > 1e-6 || math.Abs(lo) > 1e-3 {
		t.Errorf("envelope range = [%v, %v], want [0, 0.5]", lo, hi)
	}
}

func TestLayerStack_PitchEnvelope(t *testing.T) {
	t.Parallel()

	// A constant modulator value of 1 (sine at its peak, rate 0) bends the
	// oscillator up an octave.
	cycles := func(withEnv bool) int {
		src, _ := NewOscillator(8000, OscillatorParams{Waveform: Saw, Frequency: 40})
		l := Layer{Source: src, Gain: 1}
		if withEnv {
			l.PitchEnv, _ = NewModulator(8000, ModulatorParams{Shape: ModSine, Depth: 1, Phase: 0.25})
			l.PitchCents = 1200
		}

		s := NewLayerStack(1)
		if _, err := s.Add(l); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		acc := make([]float64, 1)
		prev, wraps := 0.0, 0
		for clock := range uint64(8000) {
			s.Tick(clock, acc)
			if acc[0] < prev {
				wraps++
			}
			prev = acc[0]
		}
		return wraps
	}

	base, bent := cycles(false), cycles(true)
	if bent < 2*base-1 || bent > 2*base+1 {
		t.Errorf("cycles with octave bend = %d, want about %d", bent, 2*base)
	}
}

// lfo returns a full depth one hertz sine modulator.
func lfo(t *testing.T) *Generator {
	t.Helper()

	g, err := NewModulator(48000, ModulatorParams{Rate: 1, Depth: 1})
	if err != nil {
		t.Fatalf("NewModulator() error = %v", err)
	}

	return g
}

// toned returns a saw with a 900 Hz tone filter.
func toned(t *testing.T) *Generator {
	t.Helper()

	g, err := NewOscillator(48000, OscillatorParams{Waveform: Saw, Frequency: 110, ToneHz: 900})
	if err != nil {
		t.Fatalf("NewOscillator() error = %v", err)
	}

	return g
}

// toneCutoff is the cutoff the generator's tone filter is tuned to.
func toneCutoff(g *Generator) float64 {
	if g.kind == KindNoise {
		return g.noise.tuned
	}

	return g.osc.toneCut
}

func TestLayerStack_ToneEnvelope(t *testing.T) {
	t.Parallel()

	noiseBed := func(t *testing.T) *Generator {
		g, err := NewNoise(48000, NoiseParams{Filter: Lowpass, Cutoff: 900, Seed: 3})
		if err != nil {
			t.Fatalf("NewNoise() error = %v", err)
		}
		return g
	}

	tests := []struct {
		name   string
		source func(*testing.T) *Generator
		span   float64
		lo, hi float64
	}{
		{name: "oscillator", source: toned, span: 600, lo: 300, hi: 1500},
		{name: "oscillator floored", source: toned, span: 900, lo: MinToneHz, hi: 1800},
		{name: "noise", source: noiseBed, span: 600, lo: 300, hi: 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := tt.source(t)
			s := NewLayerStack(1)
			if _, err := s.Add(Layer{Source: src, ToneEnv: lfo(t), ToneSpan: tt.span, Gain: 1}); err != nil {
				t.Fatalf("Add() error = %v", err)
			}

			acc := make([]float64, 1)
			lo, hi := math.Inf(1), math.Inf(-1)
			for clock := range uint64(48000) {
				s.Tick(clock, acc)
				cut := toneCutoff(src)
				lo, hi = min(lo, cut), max(hi, cut)
			}

			if math.Abs(lo-tt.lo) > 0.01 || math.Abs(hi-tt.hi) > 0.01 {
				t.Errorf("cutoff swept over [%v, %v], want [%v, %v]", lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func TestLayerStack_ToneEnvelopeChangesSound(t *testing.T) {
	t.Parallel()

	render := func(withEnv bool) []float64 {
		l := Layer{Source: toned(t), Gain: 1}
		if withEnv {
			l.ToneEnv, l.ToneSpan = lfo(t), 600
		}

		s := NewLayerStack(1)
		if _, err := s.Add(l); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		out := make([]float64, 4800)
		acc := make([]float64, 1)
		for clock := range uint64(len(out)) {
			s.Tick(clock, acc)
			out[clock] = acc[0]
		}
		return out
	}

	fixed, swept := render(false), render(true)

	var diff float64
	for i := range fixed {
		diff = max(diff, math.Abs(fixed[i]-swept[i]))
	}
	if diff < 1e-3 {
		t.Errorf("tone sweep left the output unchanged (max diff %v)", diff)
	}
}

// impulseResponse feeds a single unit sample through a layer with the given
// reverb send and returns n output samples.
func impulseResponse(t *testing.T, mix float64, n int) []float64 {
	t.Helper()

	src, err := NewClip(48000, ClipParams{Samples: []float32{1}})
	if err != nil {
		t.Fatalf("NewClip() error = %v", err)
	}

	s := NewLayerStack(1)
	if _, err := s.Add(Layer{Source: src, Gain: 1, Reverb: mix}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	out := make([]float64, n)
	acc := make([]float64, 1)
	for clock := range uint64(n) {
		s.Tick(clock, acc)
		out[clock] = acc[0]
	}

	return out
}

func energy(x []float64) float64 {
	var e float64
	for _, v := range x {
		e += v * v
	}

	return e
}

func TestReverb_ImpulseTail(t *testing.T) {
	t.Parallel()

	out := impulseResponse(t, 1, 96000)

	for i, v := range out {
		if math.IsNaN(v) || math.Abs(v) > 1 {
			t.Fatalf("sample %d = %v, want a bounded tail", i, v)
		}
	}

	// Past both diffusers the impulse has only the combs to come from.
	preDelay := int(reverbPreDelays[0] + reverbPreDelays[1])
	if e := energy(out[preDelay+1 : 24000]); e < 1e-4 {
		t.Errorf("tail energy after the pre-delay = %v, want a ringing tail", e)
	}

	early, late := energy(out[:24000]), energy(out[72000:])
	if late == 0 || late > early/4 {
		t.Errorf("tail energy early = %v, late = %v, want a decaying tail", early, late)
	}
}

func TestReverb_SendChangesOutput(t *testing.T) {
	t.Parallel()

	dry := impulseResponse(t, 0, 24000)
	wet := impulseResponse(t, 0.25, 24000)

	// A dry impulse is silent after its first sample.
	if e := energy(dry[1:]); e != 0 {
		t.Errorf("dry energy after the impulse = %v, want 0", e)
	}

	first := int(reverbCombDelays[0])
	var diff float64
	for i := first; i < len(wet); i++ {
		diff = max(diff, math.Abs(wet[i]-dry[i]))
	}
	if diff < 1e-4 {
		t.Errorf("max difference after the first comb delay = %v, want an audible tail", diff)
	}
}

func TestLayerStack_TickZeroAllocs(t *testing.T) {
	layers, err := Scene("slow-drone", 48000)
	if err != nil {
		t.Fatalf("Scene() error = %v", err)
	}

	s := NewLayerStack(2)
	for _, l := range layers {
		if _, err := s.Add(l); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	acc := make([]float64, 2)
	clock := uint64(0)

	allocs := testing.AllocsPerRun(1000, func() {
		s.Tick(clock, acc)
		clock++
	})
	if allocs > 0 {
		t.Errorf("Tick allocated %v times, want 0", allocs)
	}
}

func BenchmarkLayerStack_Tick(b *testing.B) {
	layers, _ := Scene("deep-space", 48000)
	s := NewLayerStack(2)
	for _, l := range layers {
		s.Add(l)
	}
	acc := make([]float64, 2)

	b.ReportAllocs()

	for i := range b.N {
		s.Tick(uint64(i), acc)
	}
}
