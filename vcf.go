package main

import "math"

// VCF is a Chamberlin state variable lowpass run at twice the sample rate,
// which keeps it stable up to the top of its cutoff range at high resonance.
// The corner frequency is cutoff * 2^(control*depth).
type VCF struct {
	sampleRate float64

	cutoff     float64 // radians
	damp       float64
	octaveMult float64

	radiansMin float64
	radiansMax float64

	inputPrev float64
	lowpass   float64
	bandpass  float64
}

const (
	cutoffMin = 40.0
	cutoffMax = 8000.0

	resonanceMin = 0.5
	resonanceMax = 5.0

	maxOctaveMod = 7.0
)

func NewVCF(sampleRate float64) *VCF {
	f := &VCF{}
	f.SetSampleRate(sampleRate)
	f.SetCutoff(1000)
	f.SetResonance(0.707)
	f.SetOctaveModDepth(0)
	return f
}

// SetSampleRate keeps the configured cutoff in Hz.
func (f *VCF) SetSampleRate(sr float64) {
	if sr <= 0 {
		return
	}
	hz := f.Cutoff()
	f.sampleRate = sr
	f.radiansMin = cutoffMin * math.Pi / sr
	f.radiansMax = cutoffMax * math.Pi / sr
	if hz > 0 {
		f.SetCutoff(hz)
	}
}

func (f *VCF) SetCutoff(hz float64) {
	if hz != hz || hz < 0 {
		hz = 0
	}
	f.cutoff = hz * math.Pi / f.sampleRate
}

// Cutoff returns the configured cutoff in Hz.
func (f *VCF) Cutoff() float64 {
	if f.sampleRate == 0 {
		return 0
	}
	return f.cutoff * f.sampleRate / math.Pi
}

// SetResonance takes Q, clamped to [0.5, 5].
func (f *VCF) SetResonance(q float64) {
	q = clamp(q, resonanceMin, resonanceMax)
	f.damp = 1 / q
}

func (f *VCF) Resonance() float64 {
	return 1 / f.damp
}

// SetOctaveModDepth sets how many octaves a full scale control sample moves
// the corner frequency.
func (f *VCF) SetOctaveModDepth(n float64) {
	f.octaveMult = clamp(n, 0, maxOctaveMod)
}

// EffectiveRadians is the corner frequency used for a given control sample.
func (f *VCF) EffectiveRadians(control float64) float64 {
	r := f.cutoff
	if f.octaveMult != 0 {
		r *= math.Pow(2, control*f.octaveMult)
	}
	return clamp(r, f.radiansMin, f.radiansMax)
}

func (f *VCF) Reset() {
	f.inputPrev = 0
	f.lowpass = 0
	f.bandpass = 0
}

// Process filters in into out; the two may be the same slice. control may be
// nil or shorter than in, missing samples count as zero.
func (f *VCF) Process(in, out, control []float64) {
	lowpass, bandpass, inputPrev := f.lowpass, f.bandpass, f.inputPrev
	damp := f.damp

	for i, input := range in[:min(len(in), len(out))] {
		var ctl float64
		if i < len(control) {
			ctl = control[i]
		}
		fmult := 0.5 * math.Sin(f.EffectiveRadians(ctl))

		// first half step on the midpoint between this input and the last
		lowpass += fmult * bandpass
		highpass := (input+inputPrev)*0.5 - lowpass - damp*bandpass
		inputPrev = input
		bandpass += fmult * highpass
		half := lowpass

		lowpass += fmult * bandpass
		highpass = input - lowpass - damp*bandpass
		bandpass += fmult * highpass

		out[i] = (lowpass + half) * 0.5
	}

	f.lowpass, f.bandpass, f.inputPrev = lowpass, bandpass, inputPrev
}
