package main

import (
	"context"
	"fmt"
	"time"
)

// Clock ticks its sequences MinDiv times per bar of four beats.
type Clock struct {
	BPM    int
	MinDiv int
}

func NewClock(bpm int, mindiv int) *Clock {
	return &Clock{
		BPM:    bpm,
		MinDiv: mindiv,
	}
}

type Seq interface {
	Tick(noteSize, pos int)
}

// posToNote returns the coarsest note division that lands on pos, counting
// in 32nds: 1 for a whole note, 32 for an odd 32nd.
func posToNote(pos int) int {
	if pos%2 == 1 {
		return 32
	}
	if pos%4 == 2 {
		return 16
	}
	if pos%32 == 0 {
		return 1
	}
	if pos%8 == 4 {
		return 8
	}
	if pos%16 == 8 {
		return 4
	}
	if pos%32 == 16 {
		return 2
	}

	return -1
}

func (c *Clock) Interval() time.Duration {
	return (4 * time.Minute) / (time.Duration(c.BPM) * time.Duration(c.MinDiv))
}

// Run ticks seqs until ctx is done.
func (c *Clock) Run(ctx context.Context, seqs ...Seq) error {
	if c.BPM <= 0 || c.MinDiv <= 0 {
		return fmt.Errorf("clock needs a positive tempo and division, got %d/%d", c.BPM, c.MinDiv)
	}

	tick := time.NewTicker(c.Interval())
	defer tick.Stop()

	var pos int
	for {
		noteSize := posToNote((pos % c.MinDiv) * 32 / c.MinDiv)
		for _, s := range seqs {
			s.Tick(noteSize, pos)
		}
		pos++

		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
	}
}
