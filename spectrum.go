package main

import (
	"math/cmplx"

	"github.com/maddyblue/go-dsp/fft"
)

// magnitudeSpectrum returns |X[k]|/N for k in [0, N/2].
func magnitudeSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	fftResult := fft.FFTReal(data)

	out := make([]float64, len(fftResult)/2+1)
	for i, c := range fftResult[:len(out)] {
		out[i] = cmplx.Abs(c) / float64(len(data))
	}
	return out
}

// binFreq is the center frequency of bin k of an n point transform.
func binFreq(k, n int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(n)
}

// peakBin returns the loudest bin, skipping DC.
func peakBin(mags []float64) int {
	best := 1
	for i := 2; i < len(mags); i++ {
		if mags[i] > mags[best] {
			best = i
		}
	}
	return best
}

// bandEnergy sums squared magnitudes of bins whose frequency is in [lo, hi).
func bandEnergy(mags []float64, n int, sampleRate, lo, hi float64) float64 {
	var sum float64
	for k, m := range mags {
		f := binFreq(k, n, sampleRate)
		if f >= lo && f < hi {
			sum += m * m
		}
	}
	return sum
}
