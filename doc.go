// SPDX-License-Identifier: EPL-2.0

// Package ambientor is a real-time ambient sound synthesis engine.
//
// The engine (package engine) ticks a stack of procedural layers (package
// synth) one frame at a time, mixes them through a soft limited master bus
// and hands out interleaved float32 blocks, or streams a whole duration into
// a WAVE file (package formats/wav).
//
// This package holds the glue for recorded textures: it decodes a sound
// file, converts it to the engine rate and folds it to mono so it can be
// played back by a clip generator.
//
// # Supported Formats
//
// NewRegistry knows the following formats:
//   - WAV (PCM 8/16/24/32-bit, 32-bit float) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF (PCM 8/16/24/32-bit) via formats/aiff
//
// # Quick Start
//
//	samples, err := ambientor.LoadClip("rain.ogg", 48000)
//	if err != nil {
//	    return err
//	}
//	rain, err := synth.NewClip(48000, synth.ClipParams{Samples: samples, Loop: true})
//
//	eng, err := engine.New(engine.Format{SampleRate: 48000, Channels: 2, Gain: 0.35},
//	    engine.WithScene("wind"))
//	eng.AddLayer(synth.Layer{Source: rain, Gain: 0.4})
//
//	block, err := eng.RenderBlock(1024)
package ambientor
