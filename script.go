package main

import (
	"context"
	"fmt"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// scripts are sequences, so loops and ifs are allowed at the top level
var scriptOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Script drives the panel from a Starlark file. The script sees
//
//	set(name, value)    knob, switch, attack or release
//	note(n, velocity=100)
//	off(n)
//	release()
//	sleep(ms)
type Script struct {
	panel *Panel
	keys  *KeyStack

	// sleep is swapped out by tests
	sleep func(ctx context.Context, d time.Duration) error
}

func NewScript(panel *Panel, keys *KeyStack) *Script {
	return &Script{
		panel: panel,
		keys:  keys,
		sleep: sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Exec runs src. Cancelling ctx stops the script at its next builtin call.
func (s *Script) Exec(ctx context.Context, filename string, src any) error {
	thread := &starlark.Thread{
		Name:  filename,
		Print: func(_ *starlark.Thread, msg string) { logger.Info("script", "msg", msg) },
	}

	check := func() error {
		if err := ctx.Err(); err != nil {
			thread.Cancel(err.Error())
			return err
		}
		return nil
	}

	builtins := starlark.StringDict{
		"set": starlark.NewBuiltin("set", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var name string
			var val starlark.Value
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "value", &val); err != nil {
				return nil, err
			}
			v, err := number(b, val)
			if err != nil {
				return nil, err
			}
			if err := check(); err != nil {
				return nil, err
			}
			return starlark.None, s.panel.Set(name, v)
		}),
		"note": starlark.NewBuiltin("note", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var n int
			vel := 100
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "n", &n, "velocity?", &vel); err != nil {
				return nil, err
			}
			if err := check(); err != nil {
				return nil, err
			}
			s.keys.Press(n, vel)
			return starlark.None, nil
		}),
		"off": starlark.NewBuiltin("off", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var n int
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "n", &n); err != nil {
				return nil, err
			}
			s.keys.Lift(n)
			return starlark.None, nil
		}),
		"release": starlark.NewBuiltin("release", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
				return nil, err
			}
			s.keys.Reset()
			return starlark.None, nil
		}),
		"sleep": starlark.NewBuiltin("sleep", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var val starlark.Value
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "ms", &val); err != nil {
				return nil, err
			}
			ms, err := number(b, val)
			if err != nil {
				return nil, err
			}
			if err := s.sleep(ctx, time.Duration(ms*float64(time.Millisecond))); err != nil {
				return nil, err
			}
			return starlark.None, nil
		}),
	}

	if _, err := starlark.ExecFileOptions(scriptOptions, thread, filename, src, builtins); err != nil {
		return fmt.Errorf("running %s: %w", filename, err)
	}
	return nil
}

// number accepts an int or a float.
func number(b *starlark.Builtin, v starlark.Value) (float64, error) {
	f, ok := starlark.AsFloat(v)
	if !ok {
		return 0, fmt.Errorf("%s: got %s, want number", b.Name(), v.Type())
	}
	return f, nil
}
