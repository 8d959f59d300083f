// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ik5/ambientor/engine"
	"github.com/ik5/ambientor/formats/wav"
)

func runRender(ctx context.Context, a *app) error {
	e, err := a.newEngine(ctx)
	if err != nil {
		return err
	}

	encoding := wav.PCM16
	if a.cfg.Float {
		encoding = wav.Float32
	}
	opts := []engine.FileOption{engine.WithEncoding(encoding)}

	if isTerminal(a.stderr) {
		opts = append(opts, engine.WithProgress(progressPrinter(a.stderr)))
	}

	if err := e.RenderToFile(ctx, a.cfg.Output, a.cfg.Duration.Seconds(), opts...); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "wrote %s: %s of %s at %v Hz, %d channels (%s)\n",
		a.cfg.Output, a.cfg.Duration, sceneName(a), a.cfg.SampleRate, a.cfg.Channels, encoding)

	return nil
}

// progressPrinter redraws a percentage line whenever it moves.
func progressPrinter(w io.Writer) func(done, total int64) {
	last := int64(-1)

	return func(done, total int64) {
		pct := int64(100)
		if total > 0 {
			pct = done * 100 / total
		}
		if pct == last {
			return
		}
		last = pct

		fmt.Fprintf(w, "\rrendering %3d%%", pct)
		if done >= total {
			fmt.Fprintln(w)
		}
	}
}

func sceneName(a *app) string {
	if a.cfg.Script != "" {
		return a.cfg.Script
	}
	return a.cfg.Scene
}
