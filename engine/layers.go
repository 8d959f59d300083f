// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"

	"github.com/ik5/ambientor/synth"
)

// LayerInfo is a snapshot of one layer.
type LayerInfo struct {
	Handle synth.Handle
	Kind   synth.Kind
	Gain   float64
	Pan    float64
	Reverb float64
}

// AddLayer appends l to the stack; it sounds from the next rendered frame.
// The engine takes ownership of the layer's generators.
func (e *Engine) AddLayer(l synth.Layer) (synth.Handle, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	h, err := e.addLayer(l)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return h, nil
}

func (e *Engine) addLayer(l synth.Layer) (synth.Handle, error) {
	if l.Source != nil && l.Source.SampleRate() != e.format.SampleRate {
		return 0, fmt.Errorf("%w: layer sample rate %v differs from engine %v",
			synth.ErrInvalidParameter, l.Source.SampleRate(), e.format.SampleRate)
	}

	h, err := e.layers.Add(l)
	if err != nil {
		return 0, err
	}

	e.logger.Debug("layer added", "handle", h, "kind", l.Source.Kind(), "gain", l.Gain, "pan", l.Pan)

	return h, nil
}

// RemoveLayer drops a layer and releases its generators.
func (e *Engine) RemoveLayer(h synth.Handle) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.layers.Remove(h); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	e.logger.Debug("layer removed", "handle", h)

	return nil
}

// SetLayerGain changes a layer's gain from the next frame on.
func (e *Engine) SetLayerGain(h synth.Handle, gain float64) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.layers.SetGain(h, gain); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return nil
}

// SetLayerPan moves a layer in the stereo field, -1 left to 1 right.
func (e *Engine) SetLayerPan(h synth.Handle, pan float64) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.layers.SetPan(h, pan); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return nil
}

// Layers lists the layers in render order.
func (e *Engine) Layers() []LayerInfo {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	handles := e.layers.Handles()
	out := make([]LayerInfo, 0, len(handles))
	for _, h := range handles {
		l, err := e.layers.Layer(h)
		if err != nil {
			continue
		}
		out = append(out, LayerInfo{
			Handle: h,
			Kind:   l.Source.Kind(),
			Gain:   l.Gain,
			Pan:    l.Pan,
			Reverb: l.Reverb,
		})
	}

	return out
}
