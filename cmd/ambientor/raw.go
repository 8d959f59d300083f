// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

func runRaw(ctx context.Context, a *app) error {
	if isTerminal(a.stdout) {
		return errors.New("refusing to write raw PCM to a terminal, redirect stdout")
	}

	e, err := a.newEngine(ctx)
	if err != nil {
		return err
	}

	frames, err := a.frames(e)
	if err != nil {
		return err
	}
	st, err := e.Stream(frames)
	if err != nil {
		return err
	}

	a.logger.Info("streaming raw PCM",
		"format", "s16le",
		"sample_rate", st.SampleRate(),
		"channels", st.Channels(),
		"duration", a.cfg.Duration)

	w := bufio.NewWriter(a.stdout)
	_, err = io.Copy(w, newPCMReader(ctx, st, int16LE))
	if ferr := w.Flush(); err == nil {
		err = ferr
	}

	switch {
	case errors.Is(err, context.Canceled):
		a.logger.Debug("raw stream interrupted", "frames", st.Rendered())
		return nil
	case err != nil:
		return fmt.Errorf("writing PCM: %w", err)
	}

	return nil
}
