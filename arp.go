package main

import (
	"sync"
)

// Arp cycles through a list of notes on the key stack, one step on every
// clock tick that falls on a NoteSize division or coarser.
type Arp struct {
	lk sync.Mutex

	keys     *KeyStack
	notes    []int
	NoteSize int
	Velocity int

	cur      int
	sounding int
}

func NewArp(keys *KeyStack, noteSize int) *Arp {
	return &Arp{
		keys:     keys,
		NoteSize: noteSize,
		Velocity: 100,
		sounding: -1,
	}
}

func (a *Arp) SetNotes(notes []int) {
	a.lk.Lock()
	defer a.lk.Unlock()

	a.notes = append(a.notes[:0], notes...)
	a.cur = 0
}

func (a *Arp) Notes() []int {
	a.lk.Lock()
	defer a.lk.Unlock()

	return append([]int(nil), a.notes...)
}

func (a *Arp) Tick(notesize, pos int) {
	a.lk.Lock()
	defer a.lk.Unlock()

	if notesize <= 0 || notesize > a.NoteSize || len(a.notes) == 0 {
		return
	}

	if a.sounding >= 0 {
		a.keys.Lift(a.sounding)
	}
	a.sounding = a.notes[a.cur%len(a.notes)]
	a.keys.Press(a.sounding, a.Velocity)
	a.cur++
}

// Stop lets go of the note the arp is holding.
func (a *Arp) Stop() {
	a.lk.Lock()
	defer a.lk.Unlock()

	if a.sounding >= 0 {
		a.keys.Lift(a.sounding)
		a.sounding = -1
	}
}
