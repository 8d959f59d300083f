// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
//
// The decoder keeps the stream's sample rate and channel layout; samples
// are float32 in [-1.0, 1.0] as produced by the Vorbis synthesis:
//
//	f, _ := os.Open("forest.ogg")
//	src, err := vorbis.Decoder{}.Decode(f)
//	if err != nil {
//	    return err
//	}
//	defer src.Close() // closes f
package vorbis
