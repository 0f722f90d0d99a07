package main

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// LuaScript is Script for lua files. It exposes the same functions as
// globals: set, note, off, release and sleep.
type LuaScript struct {
	panel *Panel
	keys  *KeyStack

	sleep func(ctx context.Context, d time.Duration) error
}

func NewLuaScript(panel *Panel, keys *KeyStack) *LuaScript {
	return &LuaScript{
		panel: panel,
		keys:  keys,
		sleep: sleepCtx,
	}
}

func (s *LuaScript) newState(ctx context.Context) *lua.LState {
	L := lua.NewState()
	L.SetContext(ctx)

	L.SetGlobal("set", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		v := float64(L.CheckNumber(2))
		if err := s.panel.Set(name, v); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	}))
	L.SetGlobal("note", L.NewFunction(func(L *lua.LState) int {
		s.keys.Press(L.CheckInt(1), L.OptInt(2, 100))
		return 0
	}))
	L.SetGlobal("off", L.NewFunction(func(L *lua.LState) int {
		s.keys.Lift(L.CheckInt(1))
		return 0
	}))
	L.SetGlobal("release", L.NewFunction(func(L *lua.LState) int {
		s.keys.Reset()
		return 0
	}))
	L.SetGlobal("sleep", L.NewFunction(func(L *lua.LState) int {
		ms := float64(L.CheckNumber(1))
		if err := s.sleep(ctx, time.Duration(ms*float64(time.Millisecond))); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	}))
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		logger.Info("script", "msg", L.ToStringMeta(L.Get(1)).String())
		return 0
	}))
	return L
}

func (s *LuaScript) ExecFile(ctx context.Context, path string) error {
	L := s.newState(ctx)
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return fmt.Errorf("running %s: %w", path, err)
	}
	return nil
}

func (s *LuaScript) ExecString(ctx context.Context, src string) error {
	L := s.newState(ctx)
	defer L.Close()

	if err := L.DoString(src); err != nil {
		return fmt.Errorf("running script: %w", err)
	}
	return nil
}
