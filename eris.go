package main

import (
	"sync/atomic"
)

const (
	DefaultSampleRate = 44100
	DefaultBlockSize  = 128

	// per sample gain ramp for the two oscillators
	gainRampStep = 0.0001

	// the unipolar control signal is v^2 * ctlScale, v in [0,1]
	ctlScale = 2.0

	// largest oscillator gain the knobs ask for
	maxOscGain = 0.6
)

type oscSettings struct {
	rate   float64 // normalized frequency
	dist   float64
	spread float64
	shape  float64
}

// voiceSettings are the parameters that get applied together at the top of a
// block. attack and release are one-shot and are cleared when the audio side
// picks them up. When both are set the attack is applied first.
type voiceSettings struct {
	carrier   oscSettings
	modulator oscSettings

	// raw modulator rate knob; picks the partial ratio when locked
	modRate  float64
	lfoRange bool

	cutoff    float64
	resonance float64
	cutoffMod bool

	attackMs  float64
	releaseMs float64
	peak      float64

	attack  bool
	release bool
}

// Eris is the voice: a GENDYN carrier, a GENDYN modulator shaped into a
// control signal, a resonant lowpass and an attack/release envelope.
//
// Setters are meant for the control side and are safe to call while another
// goroutine renders. The Render*/Stream methods belong to the audio side and
// must only be called from one goroutine.
type Eris struct {
	sampleRate float64
	blockSize  int

	carrier   *GenDyn
	modulator *GenDyn
	vcf       *VCF
	env       *AREnv

	// written by the control side
	settings      Port[voiceSettings]
	carrierGain   Scalar
	modulatorGain Scalar
	biasGain      Scalar
	rateMod       atomic.Bool
	modToOut      atomic.Bool
	syncGens      atomic.Bool
	notePending   atomic.Bool

	// active note frequency, cleared by the audio side once the envelope
	// has finished
	noteHz Scalar

	// written by the audio side
	carrierActivity   Scalar
	modulatorActivity Scalar
	envState          atomic.Int32

	cur           voiceSettings
	carrierRamp   Ramp
	modulatorRamp Ramp
	carrierBuf    []float64
	modulatorBuf  []float64
	ctlBuf        []float64
	q15Buf        []int16
}

func NewEris(sampleRate float64, blockSize int) *Eris {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	e := &Eris{
		sampleRate:    sampleRate,
		blockSize:     blockSize,
		carrier:       NewGenDyn(sampleRate),
		modulator:     NewGenDyn(sampleRate),
		vcf:           NewVCF(sampleRate),
		env:           NewAREnv(sampleRate),
		carrierRamp:   NewRamp(gainRampStep),
		modulatorRamp: NewRamp(gainRampStep),
		carrierBuf:    make([]float64, blockSize),
		modulatorBuf:  make([]float64, blockSize),
		ctlBuf:        make([]float64, blockSize),
		q15Buf:        make([]int16, blockSize),
	}

	e.settings.Update(func(s *voiceSettings) {
		s.carrier = oscSettings{rate: 0.25, spread: 0.5, shape: 0.5}
		s.modulator = oscSettings{rate: 0.5, spread: 1, shape: 1}
		s.modRate = 0.5
		s.cutoff = 5000
		s.resonance = 1
		s.attackMs = 100
		s.releaseMs = 200
		s.peak = 1
	})
	e.applySettings()

	return e
}

func (e *Eris) SampleRate() float64 { return e.sampleRate }
func (e *Eris) BlockSize() int      { return e.blockSize }

// locked reports whether the modulator follows the carrier by a partial ratio.
func (e *Eris) locked() bool {
	return e.syncGens.Load() || e.noteHz.Load() > 0
}

func lockModulator(s *voiceSettings) {
	s.modulator.rate = clamp(partialRatio(s.modRate)*s.carrier.rate, 0, 1)
}

// SetCarrierRate sets the carrier frequency from a knob in [0,1]. It is
// ignored while a note is sounding.
func (e *Eris) SetCarrierRate(v float64) {
	if e.noteHz.Load() > 0 {
		return
	}
	locked := e.syncGens.Load()
	e.settings.Update(func(s *voiceSettings) {
		s.carrier.rate = clamp(v, 0, 1)
		if locked {
			lockModulator(s)
		}
	})
}

// SetModulatorRate sets the modulator frequency from a knob in [0,1], or,
// while locked to the carrier, the partial ratio between the two.
func (e *Eris) SetModulatorRate(v float64) {
	locked := e.locked()
	e.settings.Update(func(s *voiceSettings) {
		s.modRate = clamp(v, 0, 1)
		if locked {
			lockModulator(s)
		} else {
			s.modulator.rate = s.modRate
		}
	})
}

func (e *Eris) SetCarrierDist(v float64) {
	e.settings.Update(func(s *voiceSettings) { s.carrier.dist = clamp(v, 0, 1) })
}

func (e *Eris) SetCarrierSpread(v float64) {
	e.settings.Update(func(s *voiceSettings) { s.carrier.spread = clamp(v, spreadMin, spreadMax) })
}

func (e *Eris) SetCarrierShape(v float64) {
	e.settings.Update(func(s *voiceSettings) { s.carrier.shape = clamp(v, shapeMin, shapeMax) })
}

func (e *Eris) SetModulatorDist(v float64) {
	e.settings.Update(func(s *voiceSettings) { s.modulator.dist = clamp(v, 0, 1) })
}

func (e *Eris) SetModulatorSpread(v float64) {
	e.settings.Update(func(s *voiceSettings) { s.modulator.spread = clamp(v, spreadMin, spreadMax) })
}

func (e *Eris) SetModulatorShape(v float64) {
	e.settings.Update(func(s *voiceSettings) { s.modulator.shape = clamp(v, shapeMin, shapeMax) })
}

func (e *Eris) SetModulatorLFORange(lfo bool) {
	e.settings.Update(func(s *voiceSettings) { s.lfoRange = lfo })
}

func (e *Eris) SetCarrierGain(g float64)   { e.carrierGain.Store(clamp(g, 0, 1)) }
func (e *Eris) SetModulatorGain(g float64) { e.modulatorGain.Store(clamp(g, 0, 1)) }
func (e *Eris) SetBiasGain(g float64)      { e.biasGain.Store(clamp(g, 0, 1)) }

func (e *Eris) SetSync(on bool)     { e.syncGens.Store(on) }
func (e *Eris) SetRateMod(on bool)  { e.rateMod.Store(on) }
func (e *Eris) SetModToOut(on bool) { e.modToOut.Store(on) }

func (e *Eris) SetCutoffMod(on bool) {
	e.settings.Update(func(s *voiceSettings) { s.cutoffMod = on })
}

func (e *Eris) SetCutoff(hz float64) {
	e.settings.Update(func(s *voiceSettings) { s.cutoff = clamp(hz, 0, e.sampleRate/2) })
}

func (e *Eris) SetResonance(q float64) {
	e.settings.Update(func(s *voiceSettings) { s.resonance = clamp(q, resonanceMin, resonanceMax) })
}

func (e *Eris) SetAttackMs(ms float64) {
	e.settings.Update(func(s *voiceSettings) { s.attackMs = max(ms, 0) })
}

func (e *Eris) SetReleaseMs(ms float64) {
	e.settings.Update(func(s *voiceSettings) { s.releaseMs = max(ms, 0) })
}

// TriggerNote tunes the carrier to note, locks the modulator to it and
// starts the attack with a peak of velocity/127.
func (e *Eris) TriggerNote(note, velocity int) {
	note = min(max(note, 0), numNotes-1)
	velocity = min(max(velocity, 0), 127)

	hz := noteFreq(note)
	e.notePending.Store(true)
	e.noteHz.Store(hz)

	e.settings.Update(func(s *voiceSettings) {
		s.carrier.rate = (clamp(hz, freqMin, freqMax) - freqMin) / (freqMax - freqMin)
		lockModulator(s)
		s.peak = float64(velocity) / 127
		s.attack = true
		s.release = false
	})
}

func (e *Eris) TriggerRelease() {
	e.settings.Update(func(s *voiceSettings) { s.release = true })
}

// Activity returns the squared first sample of each oscillator in the last
// rendered block.
func (e *Eris) Activity() (carrier, modulator float64) {
	return e.carrierActivity.Load(), e.modulatorActivity.Load()
}

// ActiveNote is the frequency of the sounding note, 0 when none.
func (e *Eris) ActiveNote() float64 {
	return e.noteHz.Load()
}

// EnvState is the envelope state as of the last rendered block.
func (e *Eris) EnvState() EnvState {
	return EnvState(e.envState.Load())
}

// applySettings pulls the requested settings if they changed and the control
// side isn't in the middle of writing them. Audio side only.
func (e *Eris) applySettings() {
	applied := e.settings.Apply(func(req *voiceSettings) {
		e.cur = *req
		req.attack = false
		req.release = false
		if e.cur.attack {
			e.notePending.Store(false)
		}
	})
	e.env.SetBiasGain(e.biasGain.Load())
	if !applied {
		return
	}

	s := &e.cur
	e.carrier.SetFrequencyNormalized(s.carrier.rate)
	e.carrier.SetDistortion(s.carrier.dist)
	e.carrier.SetSpread(s.carrier.spread)
	e.carrier.SetShapeParam(s.carrier.shape)

	if s.lfoRange != e.modulator.LFORange() {
		e.modulator.SetLFORange(s.lfoRange)
	}
	e.modulator.SetFrequencyNormalized(s.modulator.rate)
	e.modulator.SetDistortion(s.modulator.dist)
	e.modulator.SetSpread(s.modulator.spread)
	e.modulator.SetShapeParam(s.modulator.shape)

	e.vcf.SetCutoff(s.cutoff)
	e.vcf.SetResonance(s.resonance)
	if s.cutoffMod {
		e.vcf.SetOctaveModDepth(maxOctaveMod)
	} else {
		e.vcf.SetOctaveModDepth(0)
	}

	e.env.SetAttackMs(s.attackMs)
	e.env.SetReleaseMs(s.releaseMs)
	e.env.SetPeakGain(s.peak)
	if s.attack {
		e.env.TriggerAttack()
	}
	if s.release {
		e.env.TriggerRelease()
	}
	s.attack = false
	s.release = false
}

// renderVoice runs everything up to the envelope for n <= blockSize frames
// and leaves the saturated mono signal in carrierBuf.
func (e *Eris) renderVoice(n int) []float64 {
	e.applySettings()

	mod := e.modulatorBuf[:n]
	car := e.carrierBuf[:n]
	ctl := e.ctlBuf[:n]

	e.modulator.Process(mod, nil, 0)
	e.modulatorActivity.Store(mod[0] * mod[0])

	g := e.modulatorGain.Load()
	for i, v := range mod {
		mod[i] = v * e.modulatorRamp.Next(g)
	}

	// unipolar, squared so it lingers near the ends
	for i, v := range mod {
		u := 0.5*v + 0.5
		ctl[i] = u * u * ctlScale
	}

	var depth float64
	if e.rateMod.Load() {
		depth = 1
	}
	e.carrier.Process(car, ctl, depth)
	e.carrierActivity.Store(car[0] * car[0])

	g = e.carrierGain.Load()
	for i, v := range car {
		car[i] = v * e.carrierRamp.Next(g)
	}

	if e.modToOut.Load() {
		for i := range car {
			car[i] = saturate(car[i] + mod[i])
		}
	}

	// filter depth is already 0 unless cutoff modulation is on
	e.vcf.Process(car, car, ctl)

	for i, v := range car {
		car[i] = saturate(v)
	}
	return car
}

func (e *Eris) endBlock() {
	e.envState.Store(int32(e.env.State()))
	if e.env.Done() && !e.notePending.Load() && e.noteHz.Load() != 0 {
		e.noteHz.Store(0)
	}
}

// RenderBlock renders len(out) stereo frames. The two channels carry the
// same signal. An empty block is skipped.
func (e *Eris) RenderBlock(out [][2]float64) {
	for len(out) > 0 {
		n := min(len(out), e.blockSize)
		mono := e.renderVoice(n)
		e.env.Process(mono)
		e.endBlock()

		for i, v := range mono {
			out[i][0] = v
			out[i][1] = v
		}
		out = out[n:]
	}
}

// RenderBlockQ15 is RenderBlock for fixed point consumers; the envelope is
// applied after quantizing.
func (e *Eris) RenderBlockQ15(out [][2]int16) {
	for len(out) > 0 {
		n := min(len(out), e.blockSize)
		mono := e.renderVoice(n)

		q := e.q15Buf[:n]
		for i, v := range mono {
			q[i] = toQ15(v)
		}
		e.env.ProcessQ15(q)
		e.endBlock()

		for i, v := range q {
			out[i][0] = v
			out[i][1] = v
		}
		out = out[n:]
	}
}

// Stream implements beep.Streamer. The voice never runs out.
func (e *Eris) Stream(samples [][2]float64) (int, bool) {
	e.RenderBlock(samples)
	return len(samples), true
}

func (e *Eris) Err() error {
	return nil
}
