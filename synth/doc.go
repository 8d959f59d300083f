// SPDX-License-Identifier: EPL-2.0

// Package synth holds the procedural sound sources and the layer stack that
// sums them.
//
// A Generator is a closed set of texture kinds (oscillator, filtered noise,
// slow modulator, recorded clip) behind one struct, ticked one sample at a
// time. A Layer pairs a source generator with gain, pan, optional amplitude
// and pitch envelopes and an optional reverb send. LayerStack keeps layers
// in an arena addressed by Handles and mixes them into per channel
// accumulators:
//
//	stack := synth.NewLayerStack(2)
//	layers, _ := synth.Scene("slow-drone", 48000)
//	for _, l := range layers {
//	    stack.Add(l)
//	}
//	acc := make([]float64, 2)
//	for clock := uint64(0); clock < 48000; clock++ {
//	    stack.Tick(clock, acc)
//	}
//
// Everything here is deterministic: noise and drift are seeded, so equal
// layer configurations produce equal output.
package synth
