package main

import (
	"context"
	"testing"
	"time"

	"github.com/rakyll/portmidi"
)

func newTestController() (*MidiController, *Panel, *recVoice, *Eris) {
	e := NewEris(44100, 128)
	p := NewPanel(e)
	v := &recVoice{}
	return NewMockController(p, NewKeyStack(v)), p, v, e
}

func TestMidiNotes(t *testing.T) {
	mc, _, v, _ := newTestController()

	mc.HandleEvent(portmidi.Event{Status: 0x90, Data1: 60, Data2: 100})
	mc.HandleEvent(portmidi.Event{Status: 0x93, Data1: 64, Data2: 80})
	v.expect(t, "on 60 100", "on 64 80")

	mc.HandleEvent(portmidi.Event{Status: 0x80, Data1: 64})
	v.expect(t, "on 60 80")

	// note on with zero velocity is a note off
	mc.HandleEvent(portmidi.Event{Status: 0x90, Data1: 60, Data2: 0})
	v.expect(t, "release")
}

func TestMidiKeyswitch(t *testing.T) {
	mc, p, v, e := newTestController()

	mc.HandleEvent(portmidi.Event{Status: 0x90, Data1: keyswitchBias, Data2: 100})
	v.expect(t)

	mc.HandleEvent(portmidi.Event{Status: 0x80, Data1: keyswitchBias})
	v.expect(t)

	p.SetKnob(KnobMaster, 1)
	if e.biasGain.Load() != 0 {
		t.Fatal("keyswitch should have detached the master knob")
	}
}

func TestMidiCC(t *testing.T) {
	mc, p, _, e := newTestController()

	mc.HandleEvent(portmidi.Event{Status: 0xb0, Data1: ccKnobBase + int64(KnobCutoff), Data2: 127})
	if p.Knob(KnobCutoff) != 1 {
		t.Fatalf("expected cutoff knob at 1, got %f", p.Knob(KnobCutoff))
	}

	mc.HandleEvent(portmidi.Event{Status: 0xb0, Data1: ccKnobBase + int64(KnobMaster), Data2: 0})
	if p.Knob(KnobMaster) != 0 {
		t.Fatal("master knob not bound")
	}

	mc.HandleEvent(portmidi.Event{Status: 0xb0, Data1: ccSwitchBase + int64(SwitchSync), Data2: 64})
	if !p.Switch(SwitchSync) {
		t.Fatal("sync switch should be on at 64")
	}
	mc.HandleEvent(portmidi.Event{Status: 0xb0, Data1: ccSwitchBase + int64(SwitchSync), Data2: 63})
	if p.Switch(SwitchSync) {
		t.Fatal("sync switch should be off at 63")
	}

	mc.HandleEvent(portmidi.Event{Status: 0xb0, Data1: ccAttack, Data2: 127})
	if got := e.settings.Requested().attackMs; got != envKnobMaxMs {
		t.Fatalf("expected %fms attack, got %f", envKnobMaxMs, got)
	}
	mc.HandleEvent(portmidi.Event{Status: 0xb0, Data1: ccRelease, Data2: 0})
	if got := e.settings.Requested().releaseMs; got != 0 {
		t.Fatalf("expected 0ms release, got %f", got)
	}
}

func TestMidiIgnoresUnknown(t *testing.T) {
	mc, _, v, _ := newTestController()

	mc.HandleEvent(portmidi.Event{Status: 0xb0, Data1: 1, Data2: 12})
	mc.HandleEvent(portmidi.Event{Status: 0xe0, Data1: 0, Data2: 64})
	v.expect(t)
}

func TestMidiBindKnob(t *testing.T) {
	mc, _, _, _ := newTestController()

	var got float64
	mc.BindKnob(1, func(v float64) { got = v }, ccToUnit)
	mc.HandleEvent(portmidi.Event{Status: 0xb0, Data1: 1, Data2: 127})
	if got != 1 {
		t.Fatalf("expected 1, got %f", got)
	}

	// a nil setter leaves the old bind alone
	mc.BindKnob(1, nil, ccToUnit)
	mc.HandleEvent(portmidi.Event{Status: 0xb0, Data1: 1, Data2: 0})
	if got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
}

func TestMidiRunWithoutStream(t *testing.T) {
	mc, _, _, _ := newTestController()
	if err := mc.Run(context.Background(), time.Millisecond); err == nil {
		t.Fatal("expected an error without an input stream")
	}
}
