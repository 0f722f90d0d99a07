package main

import "math"

// EnvState is the stage of the attack/release envelope.
type EnvState int

const (
	EnvOff EnvState = iota
	EnvAttack
	EnvHold
	EnvRelease
)

func (s EnvState) String() string {
	switch s {
	case EnvOff:
		return "off"
	case EnvAttack:
		return "attack"
	case EnvHold:
		return "hold"
	case EnvRelease:
		return "release"
	default:
		return "unknown"
	}
}

// bias moves this much per sample, in every state
const biasStepPerSample = 0.001

// AREnv is an attack/hold/release gain envelope sitting on top of a bias
// (floor) gain. Triggers ramp from wherever the peak currently is, so a
// retrigger never jumps back to zero.
type AREnv struct {
	sampleRate float64

	attackSamples  int
	releaseSamples int

	peakTarget float64
	biasTarget float64

	state EnvState
	peak  float64
	bias  float64
	step  float64

	// samples left before the current ramp is forced to its end
	remaining int
}

func NewAREnv(sampleRate float64) *AREnv {
	return &AREnv{
		sampleRate:     sampleRate,
		attackSamples:  1,
		releaseSamples: 1,
		peakTarget:     1,
	}
}

func (e *AREnv) SetSampleRate(sr float64) {
	if sr > 0 {
		e.sampleRate = sr
	}
}

func (e *AREnv) msToSamples(ms float64) int {
	n := math.Round(ms * 0.001 * e.sampleRate)
	if n != n || n < 1 {
		return 1
	}
	return int(n)
}

func (e *AREnv) SetAttackMs(ms float64) {
	e.attackSamples = e.msToSamples(ms)
}

func (e *AREnv) SetReleaseMs(ms float64) {
	e.releaseSamples = e.msToSamples(ms)
}

// SetPeakGain sets the level the attack ramps to. It is picked up by the
// next TriggerAttack.
func (e *AREnv) SetPeakGain(g float64) {
	e.peakTarget = clamp(g, 0, 1)
}

// SetBiasGain sets the floor gain, which is approached every sample no
// matter what the envelope is doing.
func (e *AREnv) SetBiasGain(g float64) {
	e.biasTarget = clamp(g, 0, 1)
}

func (e *AREnv) TriggerAttack() {
	e.step = (e.peakTarget - e.peak) / float64(e.attackSamples)
	e.remaining = e.attackSamples
	e.state = EnvAttack
}

func (e *AREnv) TriggerRelease() {
	e.step = -e.peak / float64(e.releaseSamples)
	e.remaining = e.releaseSamples
	e.state = EnvRelease
}

func (e *AREnv) State() EnvState     { return e.state }
func (e *AREnv) Done() bool          { return e.state == EnvOff }
func (e *AREnv) Peak() float64       { return e.peak }
func (e *AREnv) Bias() float64       { return e.bias }
func (e *AREnv) PeakTarget() float64 { return e.peakTarget }
func (e *AREnv) AttackSamples() int  { return e.attackSamples }
func (e *AREnv) ReleaseSamples() int { return e.releaseSamples }

// Gain is the gain the next sample gets.
func (e *AREnv) Gain() float64 {
	return clamp(e.bias+e.peak, 0, 1)
}

// next returns the gain for one sample and advances the envelope.
func (e *AREnv) next() float64 {
	if e.bias < e.biasTarget {
		e.bias = min(e.bias+biasStepPerSample, e.biasTarget)
	} else if e.bias > e.biasTarget {
		e.bias = max(e.bias-biasStepPerSample, e.biasTarget)
	}

	gain := e.Gain()

	switch e.state {
	case EnvAttack:
		// the ramp may run downward when retriggered above a lower target
		if e.step >= 0 {
			e.peak = min(e.peak+e.step, e.peakTarget)
		} else {
			e.peak = max(e.peak+e.step, e.peakTarget)
		}
		e.remaining--
		crossed := (e.step > 0 && e.peak >= e.peakTarget) || (e.step < 0 && e.peak <= e.peakTarget)
		if crossed || e.remaining <= 0 {
			e.peak = e.peakTarget
			e.state = EnvHold
		}
	case EnvRelease:
		e.peak = max(e.peak+e.step, 0)
		e.remaining--
		if e.peak <= 0 || e.remaining <= 0 {
			e.peak = 0
			e.state = EnvOff
		}
	}

	return gain
}

// Step advances the envelope by one sample without audio.
func (e *AREnv) Step() {
	e.next()
}

// Process applies the envelope to a float block in place.
func (e *AREnv) Process(buf []float64) {
	for i := range buf {
		buf[i] *= e.next()
	}
}

// ProcessQ15 applies the envelope to a Q15 block in place, using the
// envelope gain as a Q16 multiplier.
func (e *AREnv) ProcessQ15(buf []int16) {
	for i := range buf {
		buf[i] = mulQ16(buf[i], gainQ16(e.next()))
	}
}
