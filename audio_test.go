package main

import (
	"testing"

	"github.com/gopxl/beep"
)

func TestRecorderSnapshot(t *testing.T) {
	var pos int
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i][0] = float64(pos)
			samples[i][1] = float64(pos)
			pos++
		}
		return len(samples), true
	})

	r := NewRecorder(src, 8)
	buf := make([][2]float64, 20)
	r.Stream(buf[:5])
	r.Stream(buf[:7])

	snap := make([][2]float64, 4)
	if n := r.GetSnapshot(snap); n != 4 {
		t.Fatalf("expected 4 frames, got %d", n)
	}
	// the newest four, oldest first
	for i, f := range snap {
		if f[0] != float64(8+i) {
			t.Fatalf("snapshot frame %d is %f, expected %d", i, f[0], 8+i)
		}
	}

	big := make([][2]float64, 16)
	if n := r.GetSnapshot(big); n != 8 {
		t.Fatalf("snapshot should be capped at the buffer size, got %d", n)
	}
	if big[7][0] != 11 {
		t.Fatalf("expected the last frame to be 11, got %f", big[7][0])
	}
	if r.Err() != nil {
		t.Fatal(r.Err())
	}
}

func TestStartAudioUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "jack"
	if _, err := startAudio(cfg, NewEris(44100, 128)); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}
