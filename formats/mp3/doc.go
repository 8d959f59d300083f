// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 streams with github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit stereo, so the returned audio.Source has
// two channels regardless of the stream layout. Samples are float32 in
// [-1.0, 1.0]:
//
//	f, _ := os.Open("rain.mp3")
//	src, err := mp3.Decoder{}.Decode(f)
//	if errors.Is(err, mp3.ErrNotMP3File) {
//	    // not an MP3 stream
//	}
//	defer src.Close() // closes f
package mp3
