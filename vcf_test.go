package main

import (
	"math"
	"testing"
)

func TestVCFEffectiveRadians(t *testing.T) {
	f := NewVCF(44100)
	f.SetCutoff(1000)

	exp := 1000 * math.Pi / 44100
	if got := f.EffectiveRadians(0); math.Abs(got-exp) > 1e-12 {
		t.Fatalf("expected %f radians, got %f", exp, got)
	}
	// no depth, control does nothing
	if got := f.EffectiveRadians(1); math.Abs(got-exp) > 1e-12 {
		t.Fatalf("control moved cutoff with zero depth: %f", got)
	}

	f.SetCutoff(10)
	if got := f.EffectiveRadians(0); math.Abs(got-cutoffMin*math.Pi/44100) > 1e-12 {
		t.Fatalf("low cutoff not clamped: %f", got)
	}
	f.SetCutoff(20000)
	if got := f.EffectiveRadians(0); math.Abs(got-cutoffMax*math.Pi/44100) > 1e-12 {
		t.Fatalf("high cutoff not clamped: %f", got)
	}
}

func TestVCFOctaveMod(t *testing.T) {
	f := NewVCF(44100)
	f.SetCutoff(100)
	f.SetOctaveModDepth(7)

	exp := 100 * math.Pow(2, 3.5) * math.Pi / 44100
	if got := f.EffectiveRadians(0.5); math.Abs(got-exp) > 1e-12 {
		t.Fatalf("expected %f radians, got %f", exp, got)
	}
	if got := f.EffectiveRadians(1); math.Abs(got-cutoffMax*math.Pi/44100) > 1e-12 {
		t.Fatalf("modulated cutoff not clamped: %f", got)
	}

	f.SetOctaveModDepth(20)
	if got := f.EffectiveRadians(0.5); math.Abs(got-exp) > 1e-12 {
		t.Fatal("depth not clamped to 7 octaves")
	}
}

func TestVCFResonanceClamp(t *testing.T) {
	f := NewVCF(44100)

	f.SetResonance(10)
	if f.Resonance() != resonanceMax {
		t.Fatalf("expected %f, got %f", resonanceMax, f.Resonance())
	}
	f.SetResonance(0.1)
	if f.Resonance() != resonanceMin {
		t.Fatalf("expected %f, got %f", resonanceMin, f.Resonance())
	}
}

func TestVCFSampleRateKeepsCutoff(t *testing.T) {
	f := NewVCF(44100)
	f.SetCutoff(2000)
	f.SetSampleRate(48000)
	if math.Abs(f.Cutoff()-2000) > 1e-9 {
		t.Fatalf("cutoff moved to %f", f.Cutoff())
	}
}

func sine(n int, hz, sr, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*hz*float64(i)/sr)
	}
	return out
}

func TestVCFLowpass(t *testing.T) {
	const sr = 44100.0
	const n = 8192

	f := NewVCF(sr)
	f.SetCutoff(500)
	f.SetResonance(0.707)

	low := sine(n, 200, sr, 0.5)
	high := sine(n, 10000, sr, 0.5)
	in := make([]float64, n)
	for i := range in {
		in[i] = low[i] + high[i]
	}

	out := make([]float64, n)
	f.Process(in, out, nil)

	// look at the settled half only
	mags := magnitudeSpectrum(out[n/2:])
	lowE := bandEnergy(mags, n/2, sr, 150, 250)
	highE := bandEnergy(mags, n/2, sr, 9900, 10100)

	if lowE <= 0 {
		t.Fatal("passband is silent")
	}
	if highE*100 > lowE {
		t.Fatalf("10kHz not attenuated: low %g high %g", lowE, highE)
	}

	for i, v := range out {
		if math.IsNaN(v) || math.Abs(v) > 2 {
			t.Fatalf("sample %d blew up: %f", i, v)
		}
	}
}

func TestVCFInPlace(t *testing.T) {
	a := NewVCF(44100)
	b := NewVCF(44100)

	in := sine(256, 440, 44100, 0.8)
	buf := append([]float64(nil), in...)
	out := make([]float64, len(in))

	a.Process(in, out, nil)
	b.Process(buf, buf, nil)
	for i := range out {
		if out[i] != buf[i] {
			t.Fatalf("in place filtering differs at %d", i)
		}
	}
}
