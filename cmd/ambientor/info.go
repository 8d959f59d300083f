// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"

	"github.com/ik5/ambientor/formats/wav"
	"github.com/ik5/ambientor/synth"
)

func runInfo(_ context.Context, a *app) error {
	path := a.cfg.Args[0]

	info, err := wav.InspectFile(path)
	if err != nil {
		return err
	}

	encoding := fmt.Sprintf("format tag %#x", info.FormatTag)
	if enc, ok := info.Encoding(); ok {
		encoding = enc.String()
	}

	fmt.Fprintf(a.stdout, "%s\n", path)
	fmt.Fprintf(a.stdout, "  sample rate: %d Hz\n", info.SampleRate)
	fmt.Fprintf(a.stdout, "  channels:    %d\n", info.Channels)
	fmt.Fprintf(a.stdout, "  encoding:    %s, %d bit\n", encoding, info.BitDepth)
	fmt.Fprintf(a.stdout, "  frames:      %d\n", info.Frames)
	fmt.Fprintf(a.stdout, "  duration:    %s\n", info.Duration)

	return nil
}

func runScenes(_ context.Context, a *app) error {
	for _, name := range synth.SceneNames() {
		marker := ""
		if name == synth.DefaultScene {
			marker = " (default)"
		}
		fmt.Fprintf(a.stdout, "%s%s\n", name, marker)
	}

	return nil
}
