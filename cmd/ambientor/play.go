// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// playPoll is how often play checks whether a bounded stream has drained.
const playPoll = 100 * time.Millisecond

func runPlay(ctx context.Context, a *app) error {
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

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   st.SampleRate(),
		ChannelCount: st.Channels(),
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	reader := newPCMReader(ctx, st, float32LE)
	player := otoCtx.NewPlayer(reader)
	defer player.Close()

	player.Play()
	a.logger.Info("playing",
		"scene", sceneName(a),
		"sample_rate", st.SampleRate(),
		"channels", st.Channels(),
		"duration", a.cfg.Duration)

	meter := time.NewTicker(time.Second)
	defer meter.Stop()
	poll := time.NewTicker(playPoll)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("stopped", "frames", st.Rendered())
			return nil
		case <-meter.C:
			a.logger.Debug("level", "peak_dbfs", fmt.Sprintf("%.1f", dBFS(reader.Peak())), "clock", e.Clock())
		case <-poll.C:
			if !player.IsPlaying() {
				if err := player.Err(); err != nil {
					return fmt.Errorf("playback: %w", err)
				}
				a.logger.Info("finished", "frames", st.Rendered())
				return nil
			}
		}
	}
}
