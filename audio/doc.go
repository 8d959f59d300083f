// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming building blocks shared by the
// decoders, the clip loader and the render engine.
//
// This package contains:
//   - Source interface for interleaved float32 streams
//   - Resampler for sample rate conversion
//   - MonoMixer for channel folding
//   - Mixer, the master gain and soft limiter stage
//   - ReadAll for collecting a bounded stream into memory
//   - Format registry for decoder lookup by name or file extension
//
// # Source Interface
//
// The Source interface is the foundation of audio processing:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Decoders, processors and the engine's stream adapter all implement it,
// so they can be chained into pipelines.
//
// # Resampling
//
// The Resampler changes the sample rate using cubic interpolation:
//
//	resampler, err := audio.NewResampler(source, 48000)
//	if err != nil {
//	    return err
//	}
//	buf := make([]float32, 4096)
//	n, err := resampler.ReadSamples(buf)
//
// A rate below 1 Hz is rejected with ErrInvalidRate.
//
// # Channel Mixing
//
// The MonoMixer folds multi-channel audio into mono by averaging:
//
//	mono := audio.NewMonoMixer(source)
//
// The Mixer works on a single frame of float64 channel sums instead:
//
//	m := audio.NewMixer(0.35)
//	m.Process(frame, out) // out[c] = SoftLimit(frame[c] * 0.35)
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, err := registry.ForPath("rain.WAV")
//
// Keys are case-insensitive and a leading dot is ignored. A path without a
// registered extension yields an *UnknownFormatError that matches
// ErrUnknownFormat.
//
// # Sample Format
//
// Audio samples are float32 in the range [-1.0, 1.0], interleaved by
// channel. Integer quantization only happens in encoders.
//
// # Error Handling
//
// Sources return io.EOF when no more data is available. The final read may
// carry data together with io.EOF:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    process(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
