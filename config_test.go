package main

import (
	"testing"
	"time"
)

func TestConfigFlags(t *testing.T) {
	cfg := DefaultConfig()
	fs := cfg.flagSet("render")
	err := fs.Parse([]string{"-rate", "48000", "-note", "60", "-duration", "3s", "-format", "raw16", "-o", "x.raw"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SampleRate != 48000 || cfg.Note != 60 || cfg.Duration != 3*time.Second || cfg.Format != "raw16" || cfg.Output != "x.raw" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	// play flags are not render flags
	if err := DefaultConfig().flagSet("render").Parse([]string{"-backend", "portaudio"}); err == nil {
		t.Fatal("expected render to reject -backend")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}

	bad := []func(*Config){
		func(c *Config) { c.SampleRate = 100 },
		func(c *Config) { c.BlockSize = 0 },
		func(c *Config) { c.Backend = "jack" },
		func(c *Config) { c.Console = "maybe" },
		func(c *Config) { c.Format = "flac" },
		func(c *Config) { c.Note = 200 },
		func(c *Config) { c.Duration = 0 },
	}
	for i, mod := range bad {
		cfg := DefaultConfig()
		mod(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected a validation error", i)
		}
	}
}
