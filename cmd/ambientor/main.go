// SPDX-License-Identifier: EPL-2.0

// Command ambientor renders, plays or streams procedural ambient scenes.
//
// Usage:
//
//	ambientor render -o drone.wav -duration 30s
//	ambientor play -scene wind
//	ambientor raw -rate 44100 | aplay -f S16_LE -r 44100 -c 2
//	ambientor info drone.wav
//	ambientor scenes
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ik5/ambientor/engine"
	"github.com/ik5/ambientor/internal/config"
	"github.com/ik5/ambientor/internal/logging"
	"github.com/ik5/ambientor/internal/scenescript"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type command func(ctx context.Context, app *app) error

var commands = map[string]command{
	"render": runRender,
	"play":   runPlay,
	"raw":    runRaw,
	"info":   runInfo,
	"scenes": runScenes,
}

// app is what a command gets to work with.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(stderr)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", name)
		usage(stderr)
		return exitUsage
	}

	cfg, err := config.Load(name, args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			_ = config.PrintUsage(stdout, name)
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		_ = config.PrintUsage(stderr, name)
		return exitUsage
	}

	a := &app{
		cfg:    cfg,
		logger: logging.NewWriter(stderr, cfg.LogLevel, cfg.LogFormat),
		stdout: stdout,
		stderr: stderr,
	}

	if err := cmd(ctx, a); err != nil {
		a.logger.Error("command failed", "command", name, "error", err)
		return exitError
	}

	return exitOK
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ambientor <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render   render a scene into a WAV file")
	fmt.Fprintln(w, "  play     play a scene on the default audio device")
	fmt.Fprintln(w, "  raw      stream 16-bit little-endian PCM to stdout")
	fmt.Fprintln(w, "  info     print the header of a WAV file")
	fmt.Fprintln(w, "  scenes   list the built-in scenes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'ambientor <command> -h' for the flags of a command.")
}

// newEngine builds the engine described by the common flags. A script
// replaces the scene.
func (a *app) newEngine(ctx context.Context) (*engine.Engine, error) {
	format := engine.Format{
		SampleRate: a.cfg.SampleRate,
		Channels:   a.cfg.Channels,
		Gain:       a.cfg.Gain,
	}
	opts := []engine.Option{engine.WithLogger(a.logger)}

	if a.cfg.Script != "" {
		layers, err := scenescript.Load(ctx, a.cfg.Script, format.SampleRate)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithLayers(layers...))
		a.logger.Debug("scene script loaded", "path", a.cfg.Script, "layers", len(layers))
	} else {
		opts = append(opts, engine.WithScene(a.cfg.Scene))
	}

	return engine.New(format, opts...)
}

// frames converts the -duration flag; zero means endless.
func (a *app) frames(e *engine.Engine) (int64, error) {
	if a.cfg.Duration == 0 {
		return -1, nil
	}

	return e.FrameCount(a.cfg.Duration.Seconds())
}
