package main

import (
	"math"
	"testing"
)

func TestAREnvSampleCounts(t *testing.T) {
	e := NewAREnv(44100)
	e.SetAttackMs(10)
	e.SetReleaseMs(20)

	if e.AttackSamples() != 441 {
		t.Fatalf("expected 441 attack samples, got %d", e.AttackSamples())
	}
	if e.ReleaseSamples() != 882 {
		t.Fatalf("expected 882 release samples, got %d", e.ReleaseSamples())
	}

	e.SetAttackMs(0)
	if e.AttackSamples() != 1 {
		t.Fatalf("expected a one sample attack, got %d", e.AttackSamples())
	}
	e.SetReleaseMs(math.NaN())
	if e.ReleaseSamples() != 1 {
		t.Fatalf("expected a one sample release, got %d", e.ReleaseSamples())
	}
}

func TestAREnvStates(t *testing.T) {
	e := NewAREnv(44100)
	e.SetAttackMs(10)
	e.SetReleaseMs(20)

	if e.State() != EnvOff || !e.Done() {
		t.Fatal("new envelope should be off")
	}

	e.TriggerAttack()
	for i := 0; i < 440; i++ {
		e.Step()
	}
	if e.State() != EnvAttack {
		t.Fatalf("expected attack after 440 samples, got %s", e.State())
	}
	e.Step()
	if e.State() != EnvHold {
		t.Fatalf("expected hold after 441 samples, got %s", e.State())
	}
	if e.Peak() != 1 {
		t.Fatalf("expected peak 1, got %f", e.Peak())
	}

	// hold lasts
	for i := 0; i < 10000; i++ {
		e.Step()
	}
	if e.State() != EnvHold || e.Gain() != 1 {
		t.Fatal("hold should keep the peak")
	}

	e.TriggerRelease()
	for i := 0; i < 881; i++ {
		e.Step()
	}
	if e.State() != EnvRelease {
		t.Fatalf("expected release after 881 samples, got %s", e.State())
	}
	e.Step()
	if e.State() != EnvOff || e.Peak() != 0 {
		t.Fatalf("expected off after 882 samples, got %s at %f", e.State(), e.Peak())
	}
}

func TestAREnvRetrigger(t *testing.T) {
	e := NewAREnv(44100)
	e.SetAttackMs(10)
	e.SetReleaseMs(20)

	e.TriggerAttack()
	for i := 0; i < 220; i++ {
		e.Step()
	}
	e.TriggerRelease()
	for i := 0; i < 100; i++ {
		e.Step()
	}

	// ramps start from where the peak is, never from zero
	prev := e.Peak()
	if prev <= 0 {
		t.Fatal("peak fell to zero too early")
	}
	e.TriggerAttack()
	maxStep := (1 - prev) / 441
	for i := 0; i < 441; i++ {
		e.Step()
		if e.Peak() < prev || e.Peak()-prev > maxStep+1e-12 {
			t.Fatalf("peak jumped from %f to %f", prev, e.Peak())
		}
		prev = e.Peak()
	}
	if e.State() != EnvHold {
		t.Fatalf("expected hold, got %s", e.State())
	}
}

func TestAREnvRetriggerLower(t *testing.T) {
	e := NewAREnv(44100)
	e.SetAttackMs(1)

	e.TriggerAttack()
	for i := 0; i < 100; i++ {
		e.Step()
	}

	e.SetPeakGain(0.5)
	e.TriggerAttack()
	e.Step()
	if e.Peak() >= 1 || e.Peak() < 0.5 {
		t.Fatalf("expected the peak to start down toward 0.5, got %f", e.Peak())
	}
	for i := 0; i < 100; i++ {
		e.Step()
	}
	if e.State() != EnvHold || e.Peak() != 0.5 {
		t.Fatalf("expected hold at 0.5, got %s at %f", e.State(), e.Peak())
	}
}

func TestAREnvBias(t *testing.T) {
	e := NewAREnv(44100)
	e.SetBiasGain(0.5)

	e.Step()
	if math.Abs(e.Bias()-biasStepPerSample) > 1e-12 {
		t.Fatalf("expected one bias step, got %f", e.Bias())
	}
	for i := 0; i < 600; i++ {
		e.Step()
	}
	if e.Bias() != 0.5 || e.Gain() != 0.5 {
		t.Fatalf("expected the floor at 0.5, got bias %f gain %f", e.Bias(), e.Gain())
	}

	// bias and peak together never go over unity
	e.SetAttackMs(1)
	e.TriggerAttack()
	for i := 0; i < 100; i++ {
		e.Step()
	}
	if e.Gain() != 1 {
		t.Fatalf("expected gain clamped to 1, got %f", e.Gain())
	}

	e.SetBiasGain(0)
	for i := 0; i < 600; i++ {
		e.Step()
	}
	if e.Bias() != 0 {
		t.Fatalf("bias did not come back down: %f", e.Bias())
	}
}

func TestAREnvQ15MatchesFloat(t *testing.T) {
	ef := NewAREnv(44100)
	eq := NewAREnv(44100)
	for _, e := range []*AREnv{ef, eq} {
		e.SetAttackMs(5)
		e.SetReleaseMs(5)
		e.SetPeakGain(0.8)
		e.SetBiasGain(0.1)
		e.TriggerAttack()
	}

	const n = 1024
	fbuf := make([]float64, n)
	qbuf := make([]int16, n)
	for i := range fbuf {
		v := 0.9 * math.Sin(float64(i)/10)
		fbuf[i] = v
		qbuf[i] = toQ15(v)
	}

	ef.Process(fbuf[:n/2])
	eq.ProcessQ15(qbuf[:n/2])
	ef.TriggerRelease()
	eq.TriggerRelease()
	ef.Process(fbuf[n/2:])
	eq.ProcessQ15(qbuf[n/2:])

	for i := range fbuf {
		if d := math.Abs(fbuf[i]*q15Scale - float64(qbuf[i])); d > 2 {
			t.Fatalf("sample %d: float %f q15 %d differ by %f LSB", i, fbuf[i]*q15Scale, qbuf[i], d)
		}
	}
}
