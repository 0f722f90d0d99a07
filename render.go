package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

func parseSampleFormat(s string) (SampleFormat, error) {
	switch s {
	case "wav", "float":
		return FormatFloat, nil
	case "raw16", "q15":
		return FormatQ15, nil
	default:
		return 0, fmt.Errorf("unknown sample format %q", s)
	}
}

// noteSchedule plays one note on keys and lets go of it after hold frames.
type noteSchedule struct {
	synth *Eris
	keys  *KeyStack

	note, velocity int
	hold           int
	pos            int
	started        bool
}

// advance fires whatever is due before the next n frames and returns how many
// of them can be rendered before the next event.
func (ns *noteSchedule) advance(n int) int {
	if !ns.started {
		ns.keys.Press(ns.note, ns.velocity)
		ns.started = true
	}
	if ns.pos == ns.hold {
		ns.keys.Lift(ns.note)
	}
	if ns.pos < ns.hold && ns.pos+n > ns.hold {
		n = ns.hold - ns.pos
	}
	ns.pos += n
	return n
}

func (ns *noteSchedule) Stream(samples [][2]float64) (int, bool) {
	for done := 0; done < len(samples); {
		n := ns.advance(len(samples) - done)
		ns.synth.RenderBlock(samples[done : done+n])
		done += n
	}
	return len(samples), true
}

func (ns *noteSchedule) Err() error {
	return nil
}

func (ns *noteSchedule) renderQ15(out [][2]int16) {
	for done := 0; done < len(out); {
		n := ns.advance(len(out) - done)
		ns.synth.RenderBlockQ15(out[done : done+n])
		done += n
	}
}

func newRenderVoice(cfg *Config) *noteSchedule {
	synth := NewEris(float64(cfg.SampleRate), cfg.BlockSize)
	applyInitPatch(synth)

	sr := beep.SampleRate(cfg.SampleRate)
	return &noteSchedule{
		synth:    synth,
		keys:     NewKeyStack(synth),
		note:     cfg.Note,
		velocity: cfg.Velocity,
		hold:     sr.N(cfg.Hold),
	}
}

// renderWav writes the note as 16 bit stereo wav.
func renderWav(cfg *Config, w io.WriteSeeker) error {
	sr := beep.SampleRate(cfg.SampleRate)
	src := beep.Take(sr.N(cfg.Duration), newRenderVoice(cfg))

	format := beep.Format{
		SampleRate:  sr,
		NumChannels: 2,
		Precision:   2,
	}
	if err := wav.Encode(w, src, format); err != nil {
		return fmt.Errorf("encoding wav: %w", err)
	}
	return nil
}

// renderRaw16 writes interleaved little endian Q15 frames straight from the
// fixed point output stage.
func renderRaw16(cfg *Config, w io.Writer) error {
	ns := newRenderVoice(cfg)
	total := beep.SampleRate(cfg.SampleRate).N(cfg.Duration)

	buf := make([][2]int16, cfg.BlockSize)
	for total > 0 {
		n := min(total, len(buf))
		ns.renderQ15(buf[:n])
		if err := binary.Write(w, binary.LittleEndian, buf[:n]); err != nil {
			return fmt.Errorf("writing samples: %w", err)
		}
		total -= n
	}
	return nil
}

func runRender(cfg *Config) error {
	format, err := parseSampleFormat(cfg.Format)
	if err != nil {
		return err
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return err
	}
	defer f.Close()

	logger.Info("rendering",
		"note", noteToString(cfg.Note),
		"duration", cfg.Duration,
		"hold", cfg.Hold,
		"format", format,
		"output", cfg.Output,
	)

	switch format {
	case FormatQ15:
		err = renderRaw16(cfg, f)
	default:
		err = renderWav(cfg, f)
	}
	if err != nil {
		return err
	}
	return f.Close()
}
