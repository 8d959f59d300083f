// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/ik5/ambientor/audio"
	"github.com/ik5/ambientor/synth"
)

// Limits on a single render call.
const (
	MaxChannels     = 256
	MaxBlockFrames  = 1 << 20
	MaxBlockSamples = 1 << 22
)

// Format is the audio format of an engine. SampleRate and Channels are
// fixed for the engine's lifetime.
type Format struct {
	SampleRate float64
	Channels   int
	// Gain is the master multiplier applied before the limiter. The useful
	// range is [0, 1]; it is not clamped.
	Gain float64
}

// DefaultFormat is 48 kHz stereo at gain 0.35.
func DefaultFormat() Format {
	return Format{SampleRate: 48000, Channels: 2, Gain: 0.35}
}

func (f Format) validate() error {
	if !(f.SampleRate > 0) || math.IsInf(f.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be positive and finite, got %v", ErrConfiguration, f.SampleRate)
	}
	if f.Channels < 1 || f.Channels > MaxChannels {
		return fmt.Errorf("%w: channels must be between 1 and %d, got %d", ErrConfiguration, MaxChannels, f.Channels)
	}
	if !finite(f.Gain) {
		return fmt.Errorf("%w: gain must be finite, got %v", ErrConfiguration, f.Gain)
	}

	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Engine renders the layer stack one frame per clock tick.
//
// Every render call and every mutation holds the engine mutex, so calls
// from several goroutines are serialized. The output is still one stream:
// two goroutines pulling blocks from one engine get interleaved pieces of
// it. Use one engine per independent stream.
type Engine struct {
	mtx *sync.Mutex

	format      Format
	mixer       audio.Mixer
	layers      *synth.LayerStack
	clock       uint64
	acc         []float64
	chunkFrames int
	logger      *slog.Logger
}

// New validates format and builds an engine with its clock at zero.
// Without options the layer stack holds synth.DefaultScene.
func New(format Format, opts ...Option) (*Engine, error) {
	if err := format.validate(); err != nil {
		return nil, err
	}

	o := options{
		scene:       synth.DefaultScene,
		logger:      slog.New(slog.DiscardHandler),
		chunkFrames: DefaultChunkFrames,
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	layers := o.layers
	if !o.explicit {
		var err error
		layers, err = synth.Scene(o.scene, format.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
	}

	e := &Engine{
		mtx:         &sync.Mutex{},
		format:      format,
		mixer:       audio.NewMixer(format.Gain),
		layers:      synth.NewLayerStack(format.Channels),
		acc:         make([]float64, format.Channels),
		chunkFrames: o.chunkFrames,
		logger:      o.logger,
	}

	for i, l := range layers {
		if _, err := e.addLayer(l); err != nil {
			e.releaseLayers()
			return nil, fmt.Errorf("%w: layer %d: %w", ErrConfiguration, i, err)
		}
	}

	e.logger.Debug("engine ready",
		"sample_rate", format.SampleRate,
		"channels", format.Channels,
		"gain", format.Gain,
		"layers", e.layers.Len())

	return e, nil
}

// releaseLayers hands the generators of a half built engine back.
func (e *Engine) releaseLayers() {
	for _, h := range e.layers.Handles() {
		_ = e.layers.Remove(h)
	}
}

// Format returns the engine format with the current master gain.
func (e *Engine) Format() Format {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	f := e.format
	f.Gain = e.mixer.Gain()

	return f
}

// Clock returns the index of the next frame to be rendered.
func (e *Engine) Clock() uint64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.clock
}

// Gain returns the current master gain.
func (e *Engine) Gain() float64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.mixer.Gain()
}

// SetGain changes the master gain from the next frame on.
func (e *Engine) SetGain(gain float64) error {
	if !finite(gain) {
		return fmt.Errorf("%w: gain must be finite, got %v", ErrInvalidArgument, gain)
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.mixer = audio.NewMixer(gain)

	return nil
}

// RenderBlock renders frames frames and returns them interleaved.
// frames == 0 returns an empty slice and leaves the clock alone.
func (e *Engine) RenderBlock(frames int) ([]float32, error) {
	if frames < 0 || frames > MaxBlockFrames || frames*e.format.Channels > MaxBlockSamples {
		return nil, fmt.Errorf("%w: block of %d frames (limit %d frames, %d samples)",
			ErrInvalidArgument, frames, MaxBlockFrames, MaxBlockSamples)
	}

	out := make([]float32, frames*e.format.Channels)
	if frames == 0 {
		return out, nil
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.render(out)

	return out, nil
}

// RenderInto fills dst with whole frames and returns how many it rendered.
// len(dst) must be a multiple of the channel count. It does not allocate.
func (e *Engine) RenderInto(dst []float32) (int, error) {
	if len(dst)%e.format.Channels != 0 {
		return 0, fmt.Errorf("%w: %d samples is not a multiple of %d channels: %w",
			ErrInvalidArgument, len(dst), e.format.Channels, audio.ErrInvalidDstSize)
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.render(dst)

	return len(dst) / e.format.Channels, nil
}

// render ticks once per frame of dst. The caller holds mtx.
func (e *Engine) render(dst []float32) {
	ch := e.format.Channels
	for off := 0; off+ch <= len(dst); off += ch {
		e.layers.Tick(e.clock, e.acc)
		e.mixer.Process(e.acc, dst[off:off+ch])
		e.clock++
	}
}
