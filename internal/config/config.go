// SPDX-License-Identifier: EPL-2.0

// Package config parses the ambientor command line. Every flag default can
// be overridden by an AMBIENTOR_* environment variable; explicit flags win.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ik5/ambientor/engine"
	"github.com/ik5/ambientor/synth"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Commands lists the subcommands in help order.
var Commands = []string{"render", "play", "raw", "info", "scenes"}

const envPrefix = "AMBIENTOR_"

// Config holds the settings of one command invocation.
type Config struct {
	Command string

	// Engine settings
	SampleRate float64
	Channels   int
	Gain       float64
	Scene      string
	Script     string

	// Output settings
	Output   string
	Duration time.Duration
	Float    bool

	// Logging settings
	LogLevel  string
	LogFormat string

	// Args holds the positional arguments left after the flags.
	Args []string
}

// Load parses args for command with defaults from the process environment.
func Load(command string, args []string) (*Config, error) {
	return LoadEnv(command, args, os.Getenv)
}

// LoadEnv is Load with an explicit environment lookup. A flag.ErrHelp from
// -h is returned unwrapped.
func LoadEnv(command string, args []string, getenv func(string) string) (*Config, error) {
	cfg, fs, err := newFlagSet(command, getenv)
	if err != nil {
		return nil, err
	}
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.Args = fs.Args()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// PrintUsage writes the flag help of command to w.
func PrintUsage(w io.Writer, command string) error {
	_, fs, err := newFlagSet(command, func(string) string { return "" })
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Usage: ambientor %s [flags]%s\n", command, positional(command))
	fs.SetOutput(w)
	fs.PrintDefaults()

	return nil
}

func positional(command string) string {
	if command == "info" {
		return " file.wav"
	}
	return ""
}

func newFlagSet(command string, getenv func(string) string) (*Config, *flag.FlagSet, error) {
	e := env{getenv: getenv}
	cfg := &Config{Command: command}
	fs := flag.NewFlagSet(command, flag.ContinueOnError)

	fs.StringVar(&cfg.LogLevel, "log-level", e.String("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", e.String("LOG_FORMAT", "text"), "log format: text, json")

	switch command {
	case "info", "scenes":
		return cfg, fs, nil
	case "render", "play", "raw":
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}

	fs.Float64Var(&cfg.SampleRate, "rate", e.Float("SAMPLE_RATE", 48000), "sample rate in Hz")
	fs.IntVar(&cfg.Channels, "channels", e.Int("CHANNELS", 2), "output channels")
	fs.Float64Var(&cfg.Gain, "gain", e.Float("GAIN", 0.35), "master gain")
	fs.StringVar(&cfg.Scene, "scene", e.String("SCENE", synth.DefaultScene), "scene name (see the scenes command)")
	fs.StringVar(&cfg.Script, "script", e.String("SCRIPT", ""), "Lua scene script, replaces -scene")

	switch command {
	case "render":
		fs.StringVar(&cfg.Output, "o", e.String("OUTPUT", "ambient.wav"), "output WAV file")
		fs.DurationVar(&cfg.Duration, "duration", e.Duration("DURATION", 10*time.Second), "length to render")
		fs.BoolVar(&cfg.Float, "float", e.Bool("FLOAT", false), "write 32-bit float samples instead of 16-bit PCM")
	case "play":
		fs.DurationVar(&cfg.Duration, "duration", e.Duration("DURATION", 0), "stop after this long, 0 plays until interrupted")
	case "raw":
		fs.DurationVar(&cfg.Duration, "duration", e.Duration("DURATION", 0), "stop after this long, 0 streams until interrupted")
	}

	return cfg, fs, nil
}

// Validate checks the values for the command.
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("%w: log level must be one of: debug, info, warn, error", ErrInvalidConfig)
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[strings.ToLower(c.LogFormat)] {
		return fmt.Errorf("%w: log format must be one of: text, json", ErrInvalidConfig)
	}

	switch c.Command {
	case "info":
		if len(c.Args) != 1 {
			return fmt.Errorf("%w: info takes exactly one file", ErrInvalidConfig)
		}
		return nil
	case "scenes":
		return nil
	}

	if c.SampleRate <= 0 || math.IsNaN(c.SampleRate) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidConfig, c.SampleRate)
	}

	if c.Channels < 1 || c.Channels > engine.MaxChannels {
		return fmt.Errorf("%w: channels must be between 1 and %d, got %d", ErrInvalidConfig, engine.MaxChannels, c.Channels)
	}

	if math.IsNaN(c.Gain) || math.IsInf(c.Gain, 0) {
		return fmt.Errorf("%w: gain must be finite", ErrInvalidConfig)
	}

	if c.Duration < 0 {
		return fmt.Errorf("%w: duration must be non-negative", ErrInvalidConfig)
	}

	if c.Command == "render" && c.Output == "" {
		return fmt.Errorf("%w: render needs an output file", ErrInvalidConfig)
	}

	if len(c.Args) != 0 {
		return fmt.Errorf("%w: unexpected arguments %q", ErrInvalidConfig, c.Args)
	}

	return nil
}

// env reads AMBIENTOR_* defaults. Values that fail to parse are ignored.
type env struct {
	getenv func(string) string
}

func (e env) String(key, defaultValue string) string {
	if value := e.getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func (e env) Int(key string, defaultValue int) int {
	if value := e.getenv(envPrefix + key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func (e env) Float(key string, defaultValue float64) float64 {
	if value := e.getenv(envPrefix + key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func (e env) Bool(key string, defaultValue bool) bool {
	if value := e.getenv(envPrefix + key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func (e env) Duration(key string, defaultValue time.Duration) time.Duration {
	if value := e.getenv(envPrefix + key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
