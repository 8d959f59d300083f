// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"fmt"
	"slices"
)

// DefaultScene is the scene engines start with.
const DefaultScene = "slow-drone"

type sceneFunc func(sampleRate float64) ([]Layer, error)

var scenes = map[string]sceneFunc{
	"slow-drone": slowDrone,
	"wind":       wind,
	"deep-space": deepSpace,
	"silence":    func(float64) ([]Layer, error) { return nil, nil },
}

// SceneNames lists the built-in scenes, sorted.
func SceneNames() []string {
	names := make([]string, 0, len(scenes))
	for name := range scenes {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Scene builds fresh layers for a built-in scene. Every call returns new
// generators with the same seeds, so two engines built from the same scene
// render the same signal.
func Scene(name string, sampleRate float64) ([]Layer, error) {
	build, ok := scenes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}

	layers, err := build(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", name, err)
	}

	return layers, nil
}

// sceneBuilder collects the first construction error so scene tables stay
// readable.
type sceneBuilder struct {
	rate float64
	err  error
}

func (b *sceneBuilder) keep(g *Generator, err error) *Generator {
	if b.err == nil {
		b.err = err
	}

	return g
}

// hz keeps a scene frequency under Nyquist so scenes build at any rate.
func (b *sceneBuilder) hz(f float64) float64 {
	return min(f, 0.45*b.rate)
}

func (b *sceneBuilder) osc(p OscillatorParams) *Generator {
	return b.keep(NewOscillator(b.rate, p))
}

func (b *sceneBuilder) noise(p NoiseParams) *Generator {
	return b.keep(NewNoise(b.rate, p))
}

func (b *sceneBuilder) mod(p ModulatorParams) *Generator {
	return b.keep(NewModulator(b.rate, p))
}

// slowDrone is a triangle and a saw a little under an octave apart, both
// drifting a few cents, darkened by a one-pole tone swept between 300 and
// 1500 Hz, lightly driven and breathing on a twenty second cycle inside a
// small reverb.
func slowDrone(rate float64) ([]Layer, error) {
	b := &sceneBuilder{rate: rate}

	layers := []Layer{
		{
			Source: b.osc(OscillatorParams{
				Waveform: Triangle, Frequency: b.hz(110),
				DriftCents: 6, DriftPeriod: 7.5, Seed: 1,
				ToneHz: b.hz(900), Drive: 0.9,
			}),
			AmpEnv:     b.mod(ModulatorParams{Shape: ModSine, Rate: b.hz(0.05), Depth: 0.4}),
			PitchEnv:   b.mod(ModulatorParams{Shape: ModSine, Rate: b.hz(0.05), Depth: 1, Phase: 0.25}),
			PitchCents: 1.5,
			ToneEnv:    b.mod(ModulatorParams{Shape: ModSine, Rate: b.hz(0.05), Depth: 1}),
			ToneSpan:   b.hz(600),
			Gain:       0.5,
			Pan:        -0.3,
			Reverb:     0.25,
		},
		{
			Source: b.osc(OscillatorParams{
				Waveform: Saw, Frequency: b.hz(110 * 0.498),
				DriftCents: 6, DriftPeriod: 7.5, Seed: 2,
				ToneHz: b.hz(900), Drive: 0.9,
			}),
			AmpEnv:     b.mod(ModulatorParams{Shape: ModSine, Rate: b.hz(0.05), Depth: 0.4, Phase: 0.5}),
			PitchEnv:   b.mod(ModulatorParams{Shape: ModSine, Rate: b.hz(0.05), Depth: 1, Phase: 0.25}),
			PitchCents: 3,
			ToneEnv:    b.mod(ModulatorParams{Shape: ModSine, Rate: b.hz(0.05), Depth: 1}),
			ToneSpan:   b.hz(600),
			Gain:       0.5,
			Pan:        0.3,
			Reverb:     0.25,
		},
	}

	return layers, b.err
}

// wind is pink noise through a bandpass whose centre is swept by a random
// drift, with a thin high hiss on top.
func wind(rate float64) ([]Layer, error) {
	b := &sceneBuilder{rate: rate}

	layers := []Layer{
		{
			Source:     b.noise(NoiseParams{Color: Pink, Filter: Bandpass, Cutoff: b.hz(700), Q: 0.8, Seed: 11}),
			AmpEnv:     b.mod(ModulatorParams{Shape: ModDrift, Rate: b.hz(0.08), Depth: 0.6, Seed: 12}),
			PitchEnv:   b.mod(ModulatorParams{Shape: ModDrift, Rate: b.hz(0.15), Depth: 1, Seed: 13}),
			PitchCents: 1200,
			Gain:       0.8,
			Pan:        -0.4,
			Reverb:     0.2,
		},
		{
			Source: b.noise(NoiseParams{Color: White, Filter: Highpass, Cutoff: b.hz(4000), Q: 0.5, Seed: 21}),
			AmpEnv: b.mod(ModulatorParams{Shape: ModSine, Rate: b.hz(0.11), Depth: 0.5}),
			Gain:   0.12,
			Pan:    0.5,
		},
	}

	return layers, b.err
}

// deepSpace stacks three slow sines over a brown noise floor.
func deepSpace(rate float64) ([]Layer, error) {
	b := &sceneBuilder{rate: rate}

	layers := []Layer{
		{
			Source: b.osc(OscillatorParams{Waveform: Sine, Frequency: b.hz(55), DriftCents: 4, DriftPeriod: 11, Seed: 31}),
			AmpEnv: b.mod(ModulatorParams{Shape: ModTriangle, Rate: b.hz(0.02), Depth: 0.5}),
			Gain:   0.45,
			Reverb: 0.35,
		},
		{
			Source: b.osc(OscillatorParams{Waveform: Sine, Frequency: b.hz(82.5), Phase: 0.3, DriftCents: 5, DriftPeriod: 13, Seed: 32}),
			AmpEnv: b.mod(ModulatorParams{Shape: ModSine, Rate: b.hz(0.03), Depth: 0.7, Phase: 0.5}),
			Gain:   0.3,
			Pan:    -0.5,
			Reverb: 0.35,
		},
		{
			Source: b.osc(OscillatorParams{Waveform: Triangle, Frequency: b.hz(110.3), DriftCents: 7, DriftPeriod: 9, Seed: 33, ToneHz: b.hz(400)}),
			AmpEnv: b.mod(ModulatorParams{Shape: ModDrift, Rate: b.hz(0.05), Depth: 0.8, Seed: 34}),
			Gain:   0.2,
			Pan:    0.5,
			Reverb: 0.35,
		},
		{
			Source: b.noise(NoiseParams{Color: Brown, Filter: Lowpass, Cutoff: b.hz(200), Seed: 35}),
			Gain:   0.3,
		},
	}

	return layers, b.err
}
