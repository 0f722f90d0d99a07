package main

import "sync"

const keyStackSize = 32

// Voice is what the key stack plays.
type Voice interface {
	TriggerNote(note, velocity int)
	TriggerRelease()
}

// KeyStack keeps the held keys for the single voice. The newest key sounds;
// letting it go falls back to the key held before it.
type KeyStack struct {
	lk sync.Mutex

	voice    Voice
	keys     []int
	velocity int
}

func NewKeyStack(v Voice) *KeyStack {
	return &KeyStack{
		voice: v,
		keys:  make([]int, 0, keyStackSize),
	}
}

func (ks *KeyStack) Press(note, velocity int) {
	ks.lk.Lock()
	defer ks.lk.Unlock()

	ks.velocity = velocity
	for i, k := range ks.keys {
		if k == note {
			ks.keys = append(ks.keys[:i], ks.keys[i+1:]...)
			break
		}
	}
	if len(ks.keys) >= keyStackSize {
		return
	}
	ks.voice.TriggerNote(note, velocity)
	ks.keys = append(ks.keys, note)
}

func (ks *KeyStack) Lift(note int) {
	ks.lk.Lock()
	defer ks.lk.Unlock()

	if len(ks.keys) == 0 {
		ks.voice.TriggerRelease()
		return
	}

	for i, k := range ks.keys {
		if k != note {
			continue
		}
		sounding := i == len(ks.keys)-1
		ks.keys = append(ks.keys[:i], ks.keys[i+1:]...)
		if !sounding {
			return
		}
		if len(ks.keys) > 0 {
			ks.voice.TriggerNote(ks.keys[len(ks.keys)-1], ks.velocity)
		} else {
			ks.voice.TriggerRelease()
		}
		return
	}
}

// Held returns the held keys, oldest first.
func (ks *KeyStack) Held() []int {
	ks.lk.Lock()
	defer ks.lk.Unlock()

	return append([]int(nil), ks.keys...)
}

// Reset lets go of everything.
func (ks *KeyStack) Reset() {
	ks.lk.Lock()
	defer ks.lk.Unlock()

	ks.keys = ks.keys[:0]
	ks.voice.TriggerRelease()
}
