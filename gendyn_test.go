package main

import (
	"math"
	"testing"
)

func TestGenDynFrequencyRoundTrip(t *testing.T) {
	g := NewGenDyn(44100)

	g.SetFrequencyNormalized(0.25)
	if math.Abs(g.Frequency()-1140) > 1e-9 {
		t.Fatalf("expected 1140Hz, got %f", g.Frequency())
	}

	g.SetFrequency(1140)
	if math.Abs(g.FreqNorm()-0.25) > 1e-12 {
		t.Fatalf("expected norm 0.25, got %f", g.FreqNorm())
	}

	g.SetFrequency(1e6)
	if g.Frequency() != freqMax || g.FreqNorm() != 1 {
		t.Fatalf("frequency not clamped: %f %f", g.Frequency(), g.FreqNorm())
	}
}

func TestGenDynLFORangeKeepsNorm(t *testing.T) {
	g := NewGenDyn(44100)
	g.SetFrequencyNormalized(0.5)

	g.SetLFORange(true)
	if math.Abs(g.Frequency()-5.05) > 1e-9 {
		t.Fatalf("expected 5.05Hz in lfo range, got %f", g.Frequency())
	}
	if !g.LFORange() {
		t.Fatal("lfo range not reported")
	}

	g.SetLFORange(false)
	if math.Abs(g.Frequency()-2260) > 1e-9 {
		t.Fatalf("expected 2260Hz back in audio range, got %f", g.Frequency())
	}
}

func TestGenDynBreakpointInvariants(t *testing.T) {
	g := NewGenDyn(44100)
	g.SetSpread(1)
	g.SetShapeParam(1)

	out := make([]float64, 1)
	ctl := make([]float64, 1)
	for _, norm := range []float64{0, 0.01, 0.3, 0.99, 1} {
		g.SetFrequencyNormalized(norm)
		for _, d := range []float64{0, 0.4, 0.8, 1} {
			g.SetDistortion(d)
			for i := 0; i < 2000; i++ {
				// full scale sweeps of the control input, FM on
				ctl[0] = 2 * float64(i%100) / 100
				g.Process(out, ctl, 1)

				if n := g.Breakpoints(); n < minBreakpoints || n > maxBreakpoints {
					t.Fatalf("breakpoint count %d out of range", n)
				}
				if g.Index() < 0 || g.Index() >= g.Breakpoints() {
					t.Fatalf("index %d outside [0,%d)", g.Index(), g.Breakpoints())
				}
				if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
					t.Fatalf("non finite output at norm %f dist %f", norm, d)
				}
			}
		}
	}
}

func TestGenDynBreakpointCount(t *testing.T) {
	g := NewGenDyn(44100)
	out := make([]float64, 4)

	g.SetFrequency(100)
	g.Process(out, nil, 0)
	if g.Breakpoints() != maxBreakpoints {
		t.Fatalf("expected %d breakpoints at 100Hz, got %d", maxBreakpoints, g.Breakpoints())
	}

	g.SetFrequency(4000)
	g.Process(out, nil, 0)
	if g.Breakpoints() != 5 {
		t.Fatalf("expected 5 breakpoints at 4kHz, got %d", g.Breakpoints())
	}
}

func TestGenDynOutput(t *testing.T) {
	g := NewGenDyn(44100)
	g.SetFrequencyNormalized(0.25)
	g.SetSpread(0.5)
	g.SetShapeParam(0.5)
	g.SetDistortion(0)

	out := make([]float64, 1000)
	g.Process(out, nil, 0)

	var sum, sumsq float64
	for i, v := range out {
		if v < -1 || v > 1 {
			t.Fatalf("sample %d out of range: %f", i, v)
		}
		sum += v
		sumsq += v * v
	}
	mean := sum / float64(len(out))
	if variance := sumsq/float64(len(out)) - mean*mean; variance <= 0 {
		t.Fatal("oscillator output is flat")
	}
}

func TestGenDynDeterministic(t *testing.T) {
	a := NewGenDyn(44100)
	b := NewGenDyn(44100)

	oa := make([]float64, 512)
	ob := make([]float64, 512)
	a.Process(oa, nil, 0)
	b.Process(ob, nil, 0)
	for i := range oa {
		if oa[i] != ob[i] {
			t.Fatalf("sample %d differs: %f != %f", i, oa[i], ob[i])
		}
	}
}

func TestGenDynZeroDepthIgnoresControl(t *testing.T) {
	a := NewGenDyn(44100)
	b := NewGenDyn(44100)

	ctl := make([]float64, 512)
	for i := range ctl {
		ctl[i] = 2
	}

	oa := make([]float64, 512)
	ob := make([]float64, 512)
	a.Process(oa, ctl, 0)
	b.Process(ob, nil, 0)
	for i := range oa {
		if oa[i] != ob[i] {
			t.Fatalf("control leaked into sample %d with fm off", i)
		}
	}
}
