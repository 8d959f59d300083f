// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// Decoder accepts 8, 16, 24 and 32-bit PCM in any channel layout and
// returns an audio.Source with samples in [-1.0, 1.0]. go-audio needs to
// seek, so readers that are not an io.ReadSeeker are buffered in memory
// first.
package aiff
