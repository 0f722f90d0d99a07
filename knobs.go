package main

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// Knob is one of the front panel pots. Positions are normalized to [0,1];
// the panel applies each knob's response curve.
type Knob int

const (
	KnobCutoff Knob = iota
	KnobCarrierGain
	KnobCarrierRate
	KnobResonance
	KnobCarrierDist
	KnobModRate
	KnobCarrierSpread
	KnobCarrierShape
	KnobModGain
	KnobModShape
	KnobModSpread
	KnobModDist
	KnobMaster

	numKnobs
)

var knobNames = [numKnobs]string{
	KnobCutoff:        "cutoff",
	KnobCarrierGain:   "gain1",
	KnobCarrierRate:   "rate1",
	KnobResonance:     "res",
	KnobCarrierDist:   "dist1",
	KnobModRate:       "rate2",
	KnobCarrierSpread: "spread1",
	KnobCarrierShape:  "shape1",
	KnobModGain:       "gain2",
	KnobModShape:      "shape2",
	KnobModSpread:     "spread2",
	KnobModDist:       "dist2",
	KnobMaster:        "master",
}

func (k Knob) String() string {
	if k < 0 || k >= numKnobs {
		return fmt.Sprintf("knob(%d)", int(k))
	}
	return knobNames[k]
}

// Switch is one of the panel toggles.
type Switch int

const (
	SwitchSync Switch = iota
	SwitchRange
	SwitchRateMod
	SwitchModOut
	SwitchCutMod

	numSwitches
)

var switchNames = [numSwitches]string{
	SwitchSync:    "sync",
	SwitchRange:   "range",
	SwitchRateMod: "ratemod",
	SwitchModOut:  "modout",
	SwitchCutMod:  "cutmod",
}

func (s Switch) String() string {
	if s < 0 || s >= numSwitches {
		return fmt.Sprintf("switch(%d)", int(s))
	}
	return switchNames[s]
}

func knobByName(name string) (Knob, bool) {
	for i, n := range knobNames {
		if n == name {
			return Knob(i), true
		}
	}
	return 0, false
}

func switchByName(name string) (Switch, bool) {
	for i, n := range switchNames {
		if n == name {
			return Switch(i), true
		}
	}
	return 0, false
}

// controlNames lists everything the panel answers to, sorted.
func controlNames() []string {
	var out []string
	out = append(out, knobNames[:]...)
	out = append(out, switchNames[:]...)
	out = append(out, "attack", "release")
	sort.Strings(out)
	return out
}

const (
	cutoffKnobMin = 100.0
	cutoffKnobMax = 10000.0
	resKnobMin    = 0.7
	resKnobMax    = 5.0

	// attack and release CCs span this many ms
	envKnobMaxMs = 3000.0
)

// Panel turns knob and switch positions into engine settings. It is used
// from the control side only.
type Panel struct {
	synth *Eris

	// the master knob drives the bias gain until a keyswitch takes it away
	masterSetsBias atomic.Bool

	knobs    [numKnobs]Scalar
	switches [numSwitches]atomic.Bool
}

func NewPanel(synth *Eris) *Panel {
	p := &Panel{synth: synth}
	p.masterSetsBias.Store(true)
	return p
}

func mapRange(v, lo, hi float64) float64 {
	return lo + v*(hi-lo)
}

func (p *Panel) SetKnob(k Knob, v float64) {
	if k < 0 || k >= numKnobs {
		return
	}
	v = clamp(v, 0, 1)
	p.knobs[k].Store(v)

	s := p.synth
	switch k {
	case KnobCutoff:
		s.SetCutoff(mapRange(v*v, cutoffKnobMin, cutoffKnobMax))
	case KnobResonance:
		s.SetResonance(mapRange(v, resKnobMin, resKnobMax))
	case KnobCarrierGain:
		s.SetCarrierGain(v * v * maxOscGain)
	case KnobModGain:
		s.SetModulatorGain(v * v * maxOscGain)
	case KnobMaster:
		if p.masterSetsBias.Load() {
			s.SetBiasGain(v * v)
		}
	case KnobCarrierRate:
		s.SetCarrierRate(v * v)
	case KnobModRate:
		s.SetModulatorRate(v * v)
	case KnobCarrierDist:
		s.SetCarrierDist(v)
	case KnobModDist:
		s.SetModulatorDist(v)
	case KnobCarrierSpread:
		s.SetCarrierSpread(v)
	case KnobModSpread:
		s.SetModulatorSpread(v)
	case KnobCarrierShape:
		s.SetCarrierShape(v)
	case KnobModShape:
		s.SetModulatorShape(v)
	}
}

func (p *Panel) Knob(k Knob) float64 {
	if k < 0 || k >= numKnobs {
		return 0
	}
	return p.knobs[k].Load()
}

func (p *Panel) SetSwitch(sw Switch, on bool) {
	if sw < 0 || sw >= numSwitches {
		return
	}
	p.switches[sw].Store(on)

	s := p.synth
	switch sw {
	case SwitchSync:
		s.SetSync(on)
	case SwitchRange:
		s.SetModulatorLFORange(on)
	case SwitchRateMod:
		s.SetRateMod(on)
	case SwitchModOut:
		s.SetModToOut(on)
	case SwitchCutMod:
		s.SetCutoffMod(on)
	}
}

func (p *Panel) Switch(sw Switch) bool {
	if sw < 0 || sw >= numSwitches {
		return false
	}
	return p.switches[sw].Load()
}

// SetAttack and SetRelease take a position in [0,1] over 0..3s.
func (p *Panel) SetAttack(v float64) {
	p.synth.SetAttackMs(clamp(v, 0, 1) * envKnobMaxMs)
}

func (p *Panel) SetRelease(v float64) {
	p.synth.SetReleaseMs(clamp(v, 0, 1) * envKnobMaxMs)
}

// DetachMaster stops the master knob from setting the bias gain.
func (p *Panel) DetachMaster() {
	p.masterSetsBias.Store(false)
}

// Set applies a control by name: a knob, a switch (v >= 0.5 is on) or the
// envelope times.
func (p *Panel) Set(name string, v float64) error {
	if k, ok := knobByName(name); ok {
		p.SetKnob(k, v)
		return nil
	}
	if sw, ok := switchByName(name); ok {
		p.SetSwitch(sw, v >= 0.5)
		return nil
	}
	switch name {
	case "attack":
		p.SetAttack(v)
	case "release":
		p.SetRelease(v)
	default:
		return fmt.Errorf("unknown control %q", name)
	}
	return nil
}

// applyInitPatch puts the engine in the power-on state of the instrument.
func applyInitPatch(e *Eris) {
	e.SetCarrierRate(0.15)
	e.SetCarrierDist(1)
	e.SetCarrierGain(0.5)
	e.SetCarrierSpread(0.3)
	e.SetCarrierShape(0.4)
	e.SetModulatorRate(0.1)
	e.SetModulatorDist(1)
	e.SetModulatorGain(0.5)
	e.SetModulatorSpread(0.6)
	e.SetModulatorShape(0.4)
	e.SetCutoff(8000)
	e.SetResonance(1)
	e.SetBiasGain(0)
	e.SetRateMod(false)
	e.SetCutoffMod(false)
	e.SetModToOut(true)
	e.SetModulatorLFORange(false)
	e.SetSync(false)
}

// ledLevel maps an activity value onto an LED brightness.
func ledLevel(activity float64) uint8 {
	return uint8(clamp(activity/maxOscGain, 0, 1) * 255)
}
