package main

import (
	"errors"
	"flag"
	"fmt"
	"time"
)

type Config struct {
	SampleRate int
	BlockSize  int
	Backend    string
	Latency    time.Duration

	MidiDevice   int
	NoMidi       bool
	PollInterval time.Duration
	Console      string

	Output   string
	Format   string
	Note     int
	Velocity int
	Duration time.Duration
	Hold     time.Duration

	Debug bool
}

func DefaultConfig() *Config {
	return &Config{
		SampleRate:   DefaultSampleRate,
		BlockSize:    DefaultBlockSize,
		Backend:      "speaker",
		Latency:      defaultLatency,
		MidiDevice:   -1,
		PollInterval: 2 * time.Millisecond,
		Console:      "auto",
		Output:       "eris.wav",
		Format:       "wav",
		Note:         48,
		Velocity:     100,
		Duration:     2 * time.Second,
		Hold:         time.Second,
	}
}

// flagSet returns the flags that apply to cmd, bound to c.
func (c *Config) flagSet(cmd string) *flag.FlagSet {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)

	fs.IntVar(&c.SampleRate, "rate", c.SampleRate, "sample rate in Hz")
	fs.IntVar(&c.BlockSize, "block", c.BlockSize, "frames per block")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "debug logging")

	switch cmd {
	case "play", "scope", "script":
		fs.StringVar(&c.Backend, "backend", c.Backend, "audio output: speaker or portaudio")
		fs.DurationVar(&c.Latency, "latency", c.Latency, "speaker buffer length")
		fs.IntVar(&c.MidiDevice, "midi", c.MidiDevice, "portmidi input device id, -1 for the default")
		fs.BoolVar(&c.NoMidi, "no-midi", c.NoMidi, "do not open a midi input")
		fs.DurationVar(&c.PollInterval, "poll", c.PollInterval, "midi polling interval")
		fs.StringVar(&c.Console, "console", c.Console, "interactive console: on, off or auto")
	case "render":
		fs.StringVar(&c.Output, "o", c.Output, "output file")
		fs.StringVar(&c.Format, "format", c.Format, "output format: wav or raw16")
		fs.IntVar(&c.Note, "note", c.Note, "midi note to play")
		fs.IntVar(&c.Velocity, "velocity", c.Velocity, "note velocity")
		fs.DurationVar(&c.Duration, "duration", c.Duration, "length of the render")
		fs.DurationVar(&c.Hold, "hold", c.Hold, "time before the note is released")
	}

	return fs
}

func (c *Config) Validate() error {
	var errs []error
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample rate %d out of range", c.SampleRate))
	}
	if c.BlockSize < 1 {
		errs = append(errs, fmt.Errorf("block size must be positive, got %d", c.BlockSize))
	}
	switch c.Backend {
	case "speaker", "portaudio":
	default:
		errs = append(errs, fmt.Errorf("unknown audio backend %q", c.Backend))
	}
	switch c.Console {
	case "on", "off", "auto":
	default:
		errs = append(errs, fmt.Errorf("console must be on, off or auto, got %q", c.Console))
	}
	switch c.Format {
	case "wav", "raw16":
	default:
		errs = append(errs, fmt.Errorf("unknown render format %q", c.Format))
	}
	if c.Note < 0 || c.Note >= numNotes {
		errs = append(errs, fmt.Errorf("note %d out of range", c.Note))
	}
	if c.Duration <= 0 {
		errs = append(errs, errors.New("duration must be positive"))
	}
	return errors.Join(errs...)
}
