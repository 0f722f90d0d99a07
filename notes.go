package main

import (
	"fmt"
	"math"
)

const numNotes = 128

// noteFreqs holds the equal tempered frequency of every MIDI note.
var noteFreqs = func() [numNotes]float64 {
	var t [numNotes]float64
	for n := range t {
		t[n] = 440 * math.Pow(2, (float64(n)-69)/12)
	}
	return t
}()

// partialRatios are the modulator/carrier ratios the modulator rate knob
// picks from while the oscillators are locked together.
var partialRatios = [...]float64{0.5, 1, 2, 2.9986, 4.033, 5.9997, 8.01, 10.093, 11.33}

// partialRatio selects a ratio from a knob position in [0,1].
func partialRatio(knob float64) float64 {
	i := int(math.Round(clamp(knob, 0, 1) * float64(len(partialRatios)-1)))
	return partialRatios[i]
}

func noteFreq(note int) float64 {
	if note < 0 {
		note = 0
	}
	if note >= numNotes {
		note = numNotes - 1
	}
	return noteFreqs[note]
}

var vals = []string{
	"C",
	"C#",
	"D",
	"Eb",
	"E",
	"F",
	"F#",
	"G",
	"G#",
	"A",
	"Bb",
	"B",
}

func noteToString(note int) string {
	if note < 0 {
		return fmt.Sprintf("?%d", note)
	}
	return fmt.Sprintf("%s%d", vals[note%len(vals)], note/12-1)
}
