// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"log/slog"

	"github.com/ik5/ambientor/formats/wav"
	"github.com/ik5/ambientor/synth"
)

// DefaultChunkFrames is how many frames offline rendering pulls at a time.
const DefaultChunkFrames = 1024

type options struct {
	scene       string
	layers      []synth.Layer
	explicit    bool
	logger      *slog.Logger
	chunkFrames int
}

// Option configures New.
type Option func(*options) error

// WithScene seeds the engine with a built-in scene. The default is
// synth.DefaultScene; "silence" starts with no layers.
func WithScene(name string) Option {
	return func(o *options) error {
		o.scene = name
		return nil
	}
}

// WithLayers seeds the engine with the given layers instead of a scene.
// The engine takes ownership of their generators.
func WithLayers(layers ...synth.Layer) Option {
	return func(o *options) error {
		o.layers = layers
		o.explicit = true
		return nil
	}
}

// WithLogger sets the logger for construction, layer changes and file
// renders. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", ErrConfiguration)
		}
		o.logger = logger
		return nil
	}
}

// WithChunkFrames sets the pull size of RenderDuration and RenderToFile.
func WithChunkFrames(frames int) Option {
	return func(o *options) error {
		if frames < 1 || frames > MaxBlockFrames {
			return fmt.Errorf("%w: chunk of %d frames", ErrConfiguration, frames)
		}
		o.chunkFrames = frames
		return nil
	}
}

type fileOptions struct {
	encoding wav.Encoding
	progress func(done, total int64)
}

// FileOption configures RenderToFile.
type FileOption func(*fileOptions)

// WithEncoding selects the sample format of the file. The default is
// wav.PCM16.
func WithEncoding(encoding wav.Encoding) FileOption {
	return func(o *fileOptions) {
		o.encoding = encoding
	}
}

// WithProgress calls fn after every rendered chunk with the frames done so
// far and the total. fn runs on the rendering goroutine.
func WithProgress(fn func(done, total int64)) FileOption {
	return func(o *fileOptions) {
		o.progress = fn
	}
}
