// SPDX-License-Identifier: EPL-2.0

// Package scenescript builds layer stacks from Lua scene descriptions.
//
// A script sees the global sample_rate and these constructors, each taking
// one table of named fields:
//
//	oscillator{waveform, frequency, phase, drift_cents, drift_period, seed, tone, drive}
//	noise{color, filter, cutoff, q, seed}
//	modulator{shape, rate, depth, phase, seed}
//	clip{path, loop, offset}
//	layer{source, amp, pitch, pitch_cents, tone, tone_span, gain, pan, reverb}
//	scene(name)
//
// layer and scene add to the result in call order; the generator
// constructors return values to pass to layer. Clip paths are relative to
// the script. Only the base, table, string and math libraries are loaded,
// and the base functions that reach the filesystem or other chunks are
// removed.
//
//	local breath = modulator{shape = "sine", rate = 0.05, depth = 0.4}
//	layer{source = oscillator{waveform = "saw", frequency = 55, tone = 800}, amp = breath, gain = 0.5}
package scenescript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/ik5/ambientor"
	"github.com/ik5/ambientor/synth"
)

// ErrScript reports a script that failed to load or run.
var ErrScript = errors.New("scene script failed")

// Load runs the script at path and returns its layers. ctx aborts a
// script that runs too long.
func Load(ctx context.Context, path string, sampleRate float64) ([]synth.Layer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScript, err)
	}
	defer f.Close()

	return Read(ctx, f, path, filepath.Dir(path), sampleRate)
}

// Read runs a script read from r. name is used in error messages and dir
// resolves relative clip paths.
func Read(ctx context.Context, r io.Reader, name, dir string, sampleRate float64) ([]synth.Layer, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}

	L.SetContext(ctx)

	s := &script{sampleRate: sampleRate, dir: dir}
	s.register(L)

	fn, err := L.Load(r, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScript, err)
	}

	L.Push(fn)
	if err := L.PCall(0, 0, nil); err != nil {
		if s.err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrScript, name, s.err)
		}
		if cerr := ctx.Err(); cerr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrScript, name, cerr)
		}
		return nil, fmt.Errorf("%w: %w", ErrScript, err)
	}

	return s.layers, nil
}

type script struct {
	sampleRate float64
	dir        string
	layers     []synth.Layer

	// err keeps the first Go error raised into Lua so callers can match it.
	err error
}

func (s *script) register(L *lua.LState) {
	L.SetGlobal("sample_rate", lua.LNumber(s.sampleRate))

	for name, fn := range map[string]lua.LGFunction{
		"oscillator": s.oscillator,
		"noise":      s.noise,
		"modulator":  s.modulator,
		"clip":       s.clip,
		"layer":      s.layer,
		"scene":      s.scene,
	} {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

// raise aborts the running script with err.
func (s *script) raise(L *lua.LState, err error) {
	if s.err == nil {
		s.err = err
	}
	L.RaiseError("%s", err.Error())
}

func (s *script) generator(L *lua.LState, g *synth.Generator, err error) int {
	if err != nil {
		s.raise(L, err)
		return 0
	}

	ud := L.NewUserData()
	ud.Value = g
	L.Push(ud)

	return 1
}

func (s *script) oscillator(L *lua.LState) int {
	t := fields(L, "waveform", "frequency", "phase", "drift_cents", "drift_period", "seed", "tone", "drive")

	p := synth.OscillatorParams{
		Waveform:    enum(L, t, "waveform", []synth.Waveform{synth.Sine, synth.Triangle, synth.Saw}),
		Frequency:   number(L, t, "frequency", 0),
		Phase:       number(L, t, "phase", 0),
		DriftCents:  number(L, t, "drift_cents", 0),
		DriftPeriod: number(L, t, "drift_period", 0),
		Seed:        seed(L, t),
		ToneHz:      number(L, t, "tone", 0),
		Drive:       number(L, t, "drive", 0),
	}
	g, err := synth.NewOscillator(s.sampleRate, p)

	return s.generator(L, g, err)
}

func (s *script) noise(L *lua.LState) int {
	t := fields(L, "color", "filter", "cutoff", "q", "seed")

	p := synth.NoiseParams{
		Color:  enum(L, t, "color", []synth.NoiseColor{synth.White, synth.Pink, synth.Brown}),
		Filter: enum(L, t, "filter", []synth.FilterMode{synth.Lowpass, synth.Bandpass, synth.Highpass}),
		Cutoff: number(L, t, "cutoff", math.Min(1000, s.sampleRate*0.45)),
		Q:      number(L, t, "q", 0),
		Seed:   seed(L, t),
	}
	g, err := synth.NewNoise(s.sampleRate, p)

	return s.generator(L, g, err)
}

func (s *script) modulator(L *lua.LState) int {
	t := fields(L, "shape", "rate", "depth", "phase", "seed")

	p := synth.ModulatorParams{
		Shape: enum(L, t, "shape", []synth.ModShape{synth.ModSine, synth.ModTriangle, synth.ModDrift}),
		Rate:  number(L, t, "rate", 0.1),
		Depth: number(L, t, "depth", 1),
		Phase: number(L, t, "phase", 0),
		Seed:  seed(L, t),
	}
	g, err := synth.NewModulator(s.sampleRate, p)

	return s.generator(L, g, err)
}

func (s *script) clip(L *lua.LState) int {
	t := fields(L, "path", "loop", "offset")

	path := str(L, t, "path", "")
	if path == "" {
		L.ArgError(1, "clip needs a path")
		return 0
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}

	samples, err := ambientor.LoadClip(path, int(math.Round(s.sampleRate)))
	if err != nil {
		s.raise(L, err)
		return 0
	}

	p := synth.ClipParams{
		Samples: samples,
		Loop:    boolean(L, t, "loop", true),
		Offset:  int(number(L, t, "offset", 0)),
	}
	g, err := synth.NewClip(s.sampleRate, p)

	return s.generator(L, g, err)
}

func (s *script) layer(L *lua.LState) int {
	t := fields(L, "source", "amp", "pitch", "pitch_cents", "tone", "tone_span", "gain", "pan", "reverb")

	s.layers = append(s.layers, synth.Layer{
		Source:     gen(L, t, "source"),
		AmpEnv:     gen(L, t, "amp"),
		PitchEnv:   gen(L, t, "pitch"),
		PitchCents: number(L, t, "pitch_cents", 0),
		ToneEnv:    gen(L, t, "tone"),
		ToneSpan:   number(L, t, "tone_span", 0),
		Gain:       number(L, t, "gain", 1),
		Pan:        number(L, t, "pan", 0),
		Reverb:     number(L, t, "reverb", 0),
	})

	return 0
}

func (s *script) scene(L *lua.LState) int {
	layers, err := synth.Scene(L.CheckString(1), s.sampleRate)
	if err != nil {
		s.raise(L, err)
		return 0
	}
	s.layers = append(s.layers, layers...)

	return 0
}

// fields checks that argument 1 is a table holding only the given keys.
func fields(L *lua.LState, keys ...string) *lua.LTable {
	t := L.CheckTable(1)

	t.ForEach(func(k, _ lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok || !slices.Contains(keys, string(name)) {
			L.ArgError(1, fmt.Sprintf("unknown field %s (want one of %s)", k.String(), strings.Join(keys, ", ")))
		}
	})

	return t
}

func number(L *lua.LState, t *lua.LTable, key string, def float64) float64 {
	switch v := t.RawGetString(key).(type) {
	case lua.LNumber:
		return float64(v)
	case *lua.LNilType:
		return def
	default:
		L.ArgError(1, fmt.Sprintf("%s must be a number, got %s", key, v.Type()))
		return def
	}
}

func seed(L *lua.LState, t *lua.LTable) uint64 {
	v := number(L, t, "seed", 0)
	if v < 0 || v != math.Trunc(v) || v > math.MaxUint32 {
		L.ArgError(1, fmt.Sprintf("seed must be a whole number in [0, %d]", uint32(math.MaxUint32)))
	}

	return uint64(v)
}

func str(L *lua.LState, t *lua.LTable, key, def string) string {
	switch v := t.RawGetString(key).(type) {
	case lua.LString:
		return string(v)
	case *lua.LNilType:
		return def
	default:
		L.ArgError(1, fmt.Sprintf("%s must be a string, got %s", key, v.Type()))
		return def
	}
}

func boolean(L *lua.LState, t *lua.LTable, key string, def bool) bool {
	switch v := t.RawGetString(key).(type) {
	case lua.LBool:
		return bool(v)
	case *lua.LNilType:
		return def
	default:
		L.ArgError(1, fmt.Sprintf("%s must be a boolean, got %s", key, v.Type()))
		return def
	}
}

// enum matches a string field against the String forms of values. An
// absent field selects values[0].
func enum[E fmt.Stringer](L *lua.LState, t *lua.LTable, key string, values []E) E {
	name := str(L, t, key, values[0].String())

	names := make([]string, len(values))
	for i, v := range values {
		if v.String() == name {
			return v
		}
		names[i] = v.String()
	}

	L.ArgError(1, fmt.Sprintf("%s %q is not one of %s", key, name, strings.Join(names, ", ")))
	return values[0]
}

func gen(L *lua.LState, t *lua.LTable, key string) *synth.Generator {
	switch v := t.RawGetString(key).(type) {
	case *lua.LNilType:
		return nil
	case *lua.LUserData:
		if g, ok := v.Value.(*synth.Generator); ok {
			return g
		}
	}

	L.ArgError(1, fmt.Sprintf("%s must be a generator", key))
	return nil
}
