package main

import (
	"context"
	"testing"
	"time"
)

func TestClockInterval(t *testing.T) {
	c := NewClock(120, 8)
	if c.Interval() != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", c.Interval())
	}
}

func TestPosToNote(t *testing.T) {
	exp := map[int]int{0: 1, 1: 32, 2: 16, 4: 8, 8: 4, 16: 2, 24: 4, 32: 1}
	for pos, n := range exp {
		if got := posToNote(pos); got != n {
			t.Errorf("posToNote(%d) = %d, expected %d", pos, got, n)
		}
	}
}

type countSeq struct {
	ticks int
	sizes []int
}

func (s *countSeq) Tick(noteSize, pos int) {
	s.ticks++
	s.sizes = append(s.sizes, noteSize)
}

func TestClockRun(t *testing.T) {
	c := NewClock(6000, 4)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	seq := &countSeq{}
	if err := c.Run(ctx, seq); err != nil {
		t.Fatal(err)
	}
	if seq.ticks < 2 {
		t.Fatalf("expected a few ticks, got %d", seq.ticks)
	}
	// quarters: whole, quarter, half, quarter
	for i, n := range []int{1, 4, 2, 4} {
		if i < len(seq.sizes) && seq.sizes[i] != n {
			t.Fatalf("tick %d should be a 1/%d, got 1/%d", i, n, seq.sizes[i])
		}
	}

	if err := NewClock(0, 4).Run(ctx); err == nil {
		t.Fatal("expected an error for a zero tempo")
	}
}

func TestArp(t *testing.T) {
	v := &recVoice{}
	ks := NewKeyStack(v)
	a := NewArp(ks, 8)
	a.SetNotes([]int{60, 64})

	a.Tick(8, 0)
	v.expect(t, "on 60 100")

	// finer than the arp's division
	a.Tick(16, 1)
	v.expect(t)

	a.Tick(4, 2)
	v.expect(t, "release", "on 64 100")

	a.Tick(1, 3)
	v.expect(t, "release", "on 60 100")

	a.Stop()
	v.expect(t, "release")
	if len(ks.Held()) != 0 {
		t.Fatal("arp left a key held")
	}
}
