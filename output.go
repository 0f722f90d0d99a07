package main

import "math"

// Fixed point output stage. The signal path itself is float64; these only
// run when a consumer wants Q15 samples.

const (
	q15Scale = 32767.0
	q16One   = 65536
)

// SampleFormat selects what RenderBlock hands to the transport.
type SampleFormat int

const (
	FormatFloat SampleFormat = iota
	FormatQ15
)

func (f SampleFormat) String() string {
	if f == FormatQ15 {
		return "q15"
	}
	return "float"
}

func saturate(v float64) float64 {
	return clamp(v, -1, 1)
}

// toQ15 converts a normalized sample, saturating at the int16 limits.
func toQ15(v float64) int16 {
	s := math.Round(v * q15Scale)
	if s != s {
		return 0
	}
	if s > math.MaxInt16 {
		return math.MaxInt16
	}
	if s < math.MinInt16 {
		return math.MinInt16
	}
	return int16(s)
}

func fromQ15(v int16) float64 {
	return float64(v) / q15Scale
}

// gainQ16 turns a gain in [0,1] into a multiplier where 65536 is unity.
func gainQ16(g float64) int32 {
	return int32(math.Round(clamp(g, 0, 1) * q16One))
}

// mulQ16 multiplies a Q15 sample by a Q16 gain and shifts back, saturating.
func mulQ16(s int16, g int32) int16 {
	v := (int64(s) * int64(g)) >> 16
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
