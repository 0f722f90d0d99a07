package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rakyll/portmidi"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

const usage = `usage: eris <command> [flags]

commands:
  play      play the voice from midi and the console
  scope     play with the scope window
  script    play a starlark (.star) or lua (.lua) file
  render    render one note to a file
  devices   list midi and audio devices
`

// how often the activity LEDs are logged at debug level
const ledInterval = time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error("eris failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("no command given")
	}

	cmd := args[0]
	cfg := DefaultConfig()
	fs := cfg.flagSet(cmd)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	initLogger(cfg.Debug)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("bad configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "play":
		return runPlay(ctx, cfg, false, "")
	case "scope":
		return runPlay(ctx, cfg, true, "")
	case "script":
		if fs.NArg() != 1 {
			return fmt.Errorf("script takes one file, got %d", fs.NArg())
		}
		return runPlay(ctx, cfg, false, fs.Arg(0))
	case "render":
		return runRender(cfg)
	case "devices":
		return runDevices()
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runDevices() error {
	if err := portmidi.Initialize(); err != nil {
		return fmt.Errorf("initializing portmidi: %w", err)
	}
	defer portmidi.Terminate()

	listDevices()
	return listAudioDevices()
}

func consoleEnabled(cfg *Config) bool {
	switch cfg.Console {
	case "on":
		return true
	case "off":
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// runPlay starts the voice on the audio transport and every control surface
// the configuration asks for, and blocks until one of them finishes or ctx
// is cancelled.
func runPlay(ctx context.Context, cfg *Config, withScope bool, script string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	synth := NewEris(float64(cfg.SampleRate), cfg.BlockSize)
	applyInitPatch(synth)
	panel := NewPanel(synth)
	keys := NewKeyStack(synth)
	rec := NewRecorder(synth, scopeSamples)

	stopAudio, err := startAudio(cfg, rec)
	if err != nil {
		return err
	}
	defer stopAudio()

	g, ctx := errgroup.WithContext(ctx)

	if !cfg.NoMidi {
		mc, err := openMidi(cfg, panel, keys)
		if err != nil {
			// the console and scripts still work without a keyboard
			logger.Warn("midi disabled", "err", err)
		} else {
			defer func() {
				mc.Shutdown()
				portmidi.Terminate()
			}()
			g.Go(func() error {
				return mc.Run(ctx, cfg.PollInterval)
			})
		}
	}

	if consoleEnabled(cfg) {
		con := NewConsole(panel, keys, synth, os.Stdout)
		// prompt.Input can't be interrupted, so this one is left out of the group
		go func() {
			if err := con.Run(); err != nil && !errors.Is(err, errQuit) {
				logger.Error("console", "err", err)
			}
			cancel()
		}()
	}

	g.Go(func() error {
		return logActivity(ctx, synth)
	})

	if script != "" {
		g.Go(func() error {
			if err := runScriptFile(ctx, script, panel, keys); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			keys.Reset()
			waitSilent(ctx, synth)
			cancel()
			return nil
		})
	}

	if withScope {
		if err := runScope(ctx, rec, synth, keys); err != nil {
			cancel()
			g.Wait()
			return err
		}
		cancel()
	}

	<-ctx.Done()
	keys.Reset()
	return g.Wait()
}

func openMidi(cfg *Config, panel *Panel, keys *KeyStack) (*MidiController, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portmidi: %w", err)
	}

	id := portmidi.DeviceID(cfg.MidiDevice)
	if cfg.MidiDevice < 0 {
		id = portmidi.DefaultInputDeviceID()
	}
	mc, err := OpenController(id, panel, keys)
	if err != nil {
		portmidi.Terminate()
		return nil, err
	}
	logger.Info("midi input open", "device", id)
	return mc, nil
}

// runScriptFile picks the interpreter by extension.
func runScriptFile(ctx context.Context, path string, panel *Panel, keys *KeyStack) error {
	switch filepath.Ext(path) {
	case ".lua":
		return NewLuaScript(panel, keys).ExecFile(ctx, path)
	default:
		return NewScript(panel, keys).Exec(ctx, path, nil)
	}
}

// waitSilent returns once the envelope has finished its release.
func waitSilent(ctx context.Context, synth *Eris) {
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for synth.EnvState() != EnvOff {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
}

func logActivity(ctx context.Context, synth *Eris) error {
	tick := time.NewTicker(ledInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
		car, mod := synth.Activity()
		logger.Debug("leds",
			"carrier", ledLevel(car),
			"modulator", ledLevel(mod),
			"env", synth.EnvState(),
			"note", synth.ActiveNote(),
		)
	}
}
