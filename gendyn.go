package main

// GENDYN oscillator after Xenakis, amplitudes only: the breakpoint durations
// are fixed by the frequency and only their values take the random walk.

const (
	freqMin    = 20.0
	freqMax    = 4500.0
	lfoFreqMin = 0.1
	lfoFreqMax = 10.0

	shapeMin  = 0.00001
	shapeMax  = 1.0
	spreadMin = 0.025
	spreadMax = 1.0

	maxBreakpoints = 20
	minBreakpoints = 3

	// breakpoint rate ceiling, keeps count*freq under nyquist
	breakpointRate = 20000.0
	maxPhaseStep   = 0.99

	deltaLimit = 1.0
	valueLimit = 0.6

	dcBlockPole = 0.9999
)

type breakpoint struct {
	value float64
	delta float64
}

type GenDyn struct {
	sampleRate float64

	freq     float64
	freqNorm float64
	minFreq  float64
	maxFreq  float64
	lfoRange bool

	dist1     DistID
	dist2     DistID
	distBlend float64
	spread    float64
	shape     float64

	points [maxBreakpoints]breakpoint
	count  int
	index  int
	x      float64

	y0, y1, y2 float64

	prevVal float64
	prevOut float64
}

func NewGenDyn(sampleRate float64) *GenDyn {
	g := &GenDyn{
		sampleRate: sampleRate,
		minFreq:    freqMin,
		maxFreq:    freqMax,
		dist1:      Linear,
		dist2:      Exponential,
		spread:     0.5,
		shape:      1,
		count:      10,
		x:          1,
	}
	g.SetFrequency(440)
	return g
}

func (g *GenDyn) SetSampleRate(sr float64) {
	if sr > 0 {
		g.sampleRate = sr
	}
}

// SetFrequency sets the base frequency in Hz, clamped into the active range.
func (g *GenDyn) SetFrequency(hz float64) {
	g.freq = clamp(hz, g.minFreq, g.maxFreq)
	g.freqNorm = (g.freq - g.minFreq) / (g.maxFreq - g.minFreq)
}

// SetFrequencyNormalized maps n in [0,1] onto the active range.
func (g *GenDyn) SetFrequencyNormalized(n float64) {
	g.freqNorm = clamp(n, 0, 1)
	g.freq = g.minFreq + g.freqNorm*(g.maxFreq-g.minFreq)
}

// SetLFORange switches between the audio and the LFO range, keeping the
// normalized frequency.
func (g *GenDyn) SetLFORange(lfo bool) {
	g.lfoRange = lfo
	if lfo {
		g.minFreq, g.maxFreq = lfoFreqMin, lfoFreqMax
	} else {
		g.minFreq, g.maxFreq = freqMin, freqMax
	}
	g.SetFrequencyNormalized(g.freqNorm)
}

func (g *GenDyn) SetDistortion(d float64) {
	g.dist1, g.dist2, g.distBlend = distBlend(d)
}

func (g *GenDyn) SetSpread(s float64) {
	g.spread = clamp(s, spreadMin, spreadMax)
}

func (g *GenDyn) SetShapeParam(p float64) {
	g.shape = clamp(p, shapeMin, shapeMax)
}

func (g *GenDyn) Frequency() float64 { return g.freq }
func (g *GenDyn) FreqNorm() float64  { return g.freqNorm }
func (g *GenDyn) LFORange() bool     { return g.lfoRange }
func (g *GenDyn) Breakpoints() int   { return g.count }
func (g *GenDyn) Index() int         { return g.index }

// Process renders len(out) samples. control supplies one modulation sample
// per output sample (nil is silence) and fmDepth scales how far it pushes the
// instantaneous frequency.
func (g *GenDyn) Process(out, control []float64, fmDepth float64) {
	for i := range out {
		var ctl float64
		if i < len(control) {
			ctl = control[i]
		}

		if g.x >= 1 {
			g.x -= 1
			g.step(ctl)
		}

		val := lagrange3(g.x, g.y0, g.y1, g.y2)

		f := g.instantFreq(ctl, fmDepth)

		g.count = int(breakpointRate / f)
		if g.count > maxBreakpoints {
			g.count = maxBreakpoints
		}
		if g.count < minBreakpoints {
			g.count = minBreakpoints
		}
		if g.index >= g.count {
			g.index %= g.count
		}

		dx := f / g.sampleRate * float64(g.count)
		if dx > maxPhaseStep {
			dx = maxPhaseStep
		}
		g.x += dx

		v := val - g.prevVal + dcBlockPole*g.prevOut
		g.prevOut = v
		g.prevVal = val
		out[i] = v
	}
}

// step moves to the next breakpoint and takes one random-walk step on it.
func (g *GenDyn) step(ctl float64) {
	g.index = (g.index + 1) % g.count

	r := lehmer(g.y0)

	g.y0 = g.y1
	g.y1 = g.y2

	p := &g.points[g.index]
	p.delta = mirror(p.delta+g.blendedDist(r, ctl), deltaLimit)
	p.value = mirror(p.value+g.spread*p.delta, valueLimit)
	g.y2 = p.value
}

func (g *GenDyn) blendedDist(r, ctl float64) float64 {
	d1 := distValue(g.dist1, g.shape, r, ctl)
	if g.distBlend == 0 {
		return d1
	}
	d2 := distValue(g.dist2, g.shape, r, ctl)
	return d1 + (d2-d1)*g.distBlend
}

// instantFreq applies FM with symmetric headroom around the base frequency.
func (g *GenDyn) instantFreq(ctl, fmDepth float64) float64 {
	if fmDepth == 0 {
		return g.freq
	}
	headroom := min(g.maxFreq-g.freq, g.freq-g.minFreq)
	return clamp(g.freq+fmDepth*headroom*ctl, g.minFreq, g.maxFreq)
}
