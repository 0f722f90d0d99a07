package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rakyll/portmidi"
)

const (
	midiNoteOff = 0x80
	midiNoteOn  = 0x90
	midiCC      = 0xb0

	ccAttack  = 74
	ccRelease = 71

	// first CC of the knob block and the switch block
	ccKnobBase   = 20
	ccSwitchBase = 102

	// releasing this key hands the master knob's bias gain over to MIDI
	keyswitchBias = 25

	midiBufferSize = 1024
)

// Setter receives a control value already mapped by a knob bind.
type Setter func(float64)

type knobBind struct {
	mapf func(int64) float64
	sf   Setter
}

func (kb *knobBind) Update(val int64) {
	kb.sf(kb.mapf(val))
}

func ccToUnit(v int64) float64 {
	return clamp(float64(v)/127, 0, 1)
}

func ccToSwitch(v int64) float64 {
	if v >= 64 {
		return 1
	}
	return 0
}

// MidiController is the control side of the instrument when played from a
// MIDI keyboard or control surface.
type MidiController struct {
	stream *portmidi.Stream

	panel *Panel
	keys  *KeyStack

	knobBinds map[int64]*knobBind
}

func OpenController(id portmidi.DeviceID, panel *Panel, keys *KeyStack) (*MidiController, error) {
	in, err := portmidi.NewInputStream(id, midiBufferSize)
	if err != nil {
		return nil, fmt.Errorf("opening midi input %d: %w", id, err)
	}

	mc := NewMockController(panel, keys)
	mc.stream = in
	return mc, nil
}

// NewMockController is a controller without a device, fed through
// HandleEvent.
func NewMockController(panel *Panel, keys *KeyStack) *MidiController {
	mc := &MidiController{
		panel:     panel,
		keys:      keys,
		knobBinds: make(map[int64]*knobBind),
	}
	mc.bindDefaults()
	return mc
}

func (mc *MidiController) bindDefaults() {
	for k := Knob(0); k < numKnobs; k++ {
		k := k
		mc.BindKnob(ccKnobBase+int64(k), func(v float64) { mc.panel.SetKnob(k, v) }, ccToUnit)
	}
	for sw := Switch(0); sw < numSwitches; sw++ {
		sw := sw
		mc.BindKnob(ccSwitchBase+int64(sw), func(v float64) { mc.panel.SetSwitch(sw, v > 0) }, ccToSwitch)
	}
	mc.BindKnob(ccAttack, mc.panel.SetAttack, ccToUnit)
	mc.BindKnob(ccRelease, mc.panel.SetRelease, ccToUnit)
}

func (mc *MidiController) BindKnob(knobid int64, s Setter, rangeMapFunc func(int64) float64) {
	if s == nil {
		logger.Warn("nil setter passed to bind knob", "cc", knobid)
		return
	}
	mc.knobBinds[knobid] = &knobBind{
		mapf: rangeMapFunc,
		sf:   s,
	}
}

func (mc *MidiController) Shutdown() {
	if mc.stream != nil {
		mc.stream.Close()
	}
}

// Run polls the device at the control rate until ctx is done.
func (mc *MidiController) Run(ctx context.Context, interval time.Duration) error {
	if mc.stream == nil {
		return fmt.Errorf("midi controller has no input stream")
	}

	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}

		events, err := mc.stream.Read(midiBufferSize)
		if err != nil {
			return fmt.Errorf("reading midi input: %w", err)
		}
		for _, ev := range events {
			mc.HandleEvent(ev)
		}
	}
}

func (mc *MidiController) HandleEvent(event portmidi.Event) {
	// channel is ignored, the voice listens on all of them
	switch event.Status & 0xf0 {
	case midiNoteOn:
		if event.Data2 == 0 {
			mc.noteOff(int(event.Data1))
			return
		}
		if event.Data1 == keyswitchBias {
			return
		}
		mc.keys.Press(int(event.Data1), int(event.Data2))
	case midiNoteOff:
		mc.noteOff(int(event.Data1))
	case midiCC:
		kb, ok := mc.knobBinds[event.Data1]
		if !ok {
			logger.Debug("unbound cc", "cc", event.Data1, "value", event.Data2)
			return
		}
		kb.Update(event.Data2)
	default:
		b, err := json.Marshal(event)
		if err != nil {
			logger.Debug("unhandled midi event", "status", event.Status)
			return
		}
		logger.Debug("unhandled midi event", "event", string(b))
	}
}

func (mc *MidiController) noteOff(note int) {
	if note == keyswitchBias {
		mc.panel.DetachMaster()
		return
	}
	mc.keys.Lift(note)
}

// listDevices logs every portmidi device. portmidi must be initialized.
func listDevices() {
	for i := 0; i < portmidi.CountDevices(); i++ {
		id := portmidi.DeviceID(i)
		info := portmidi.Info(id)
		if info == nil {
			continue
		}
		logger.Info("midi device",
			"id", i,
			"name", info.Name,
			"interface", info.Interface,
			"input", info.IsInputAvailable,
			"output", info.IsOutputAvailable,
			"default", id == portmidi.DefaultInputDeviceID(),
		)
	}
}
