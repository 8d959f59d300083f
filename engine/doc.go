// SPDX-License-Identifier: EPL-2.0

// Package engine is the clock driven renderer of ambientor.
//
// An Engine owns a synth.LayerStack and an audio.Mixer. Each rendered frame
// ticks every layer once at the current clock, sums them per channel,
// applies the master gain and soft limiter, and advances the clock by one.
// Since the clock and all generator state live in the engine, splitting a
// render into blocks never changes the signal:
//
//	e, _ := engine.New(engine.DefaultFormat())
//	a, _ := e.RenderBlock(256)
//	b, _ := e.RenderBlock(768) // a followed by b equals one RenderBlock(1024)
//
// Offline rendering goes through a Stream, an audio.Source that renders one
// chunk per read, into formats/wav:
//
//	err := e.RenderToFile(ctx, "drone.wav", 30, engine.WithEncoding(wav.Float32))
//
// # Errors
//
// Bad formats, scenes and durations return ErrConfiguration, bad frame
// counts and layer edits return ErrInvalidArgument, and file failures
// return ErrIO joined with a *wav.WriteError whose Frames field tells how
// much was written before the failure. A rejected call renders nothing.
package engine
