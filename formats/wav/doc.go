// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes WAVE files on top of github.com/go-audio/wav.
//
// # Writing
//
// Encoder streams interleaved float32 samples as 16-bit PCM or 32-bit
// float. The 44-byte header is written up front and its sizes are patched
// on Close, so an encoder closed without any samples still leaves a valid,
// empty file:
//
//	enc, err := wav.NewEncoder(f, 48000, 2, wav.PCM16)
//	enc.Write(block)
//	enc.Close()
//
// WriteFile drains an audio.Source into a file. It writes next to the
// target, syncs, and renames into place, so a failed write never leaves a
// truncated file behind. Failures are reported as *WriteError, which
// carries the operation and how many frames had been encoded:
//
//	frames, err := wav.WriteFile(ctx, "out.wav", src, wav.Float32)
//	var werr *wav.WriteError
//	if errors.As(err, &werr) {
//	    log.Printf("%s failed after %d frames", werr.Op, werr.Frames)
//	}
//
// # Reading
//
// Inspect and InspectFile read only the header and report the format,
// frame count and duration. Decoder returns an audio.Source with samples
// in [-1.0, 1.0] for 8, 16, 24 and 32-bit integer PCM and 32-bit float.
package wav
