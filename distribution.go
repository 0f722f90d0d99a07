package main

import "math"

// DistID names one of the shaping functions that drive the breakpoint walk.
type DistID int

const (
	Linear DistID = iota
	Exponential
	Cauchy
	HyperbolicCosine
	ControlFollow

	numDists
)

func (d DistID) String() string {
	switch d {
	case Linear:
		return "linear"
	case Exponential:
		return "exponential"
	case Cauchy:
		return "cauchy"
	case HyperbolicCosine:
		return "hypcos"
	case ControlFollow:
		return "control"
	default:
		return "unknown"
	}
}

// the distortion knob is split in 4 sectors, each blending two neighbours
const distSector = 0.25

// distBlend maps the distortion knob to a pair of distributions and the
// weight of the second one.
func distBlend(d float64) (DistID, DistID, float64) {
	d = clamp(d, 0, 1)
	sector := int(d / distSector)
	if sector >= int(numDists)-1 {
		// d == 1 lands here; it is the top of the last sector
		sector = int(numDists) - 2
	}
	if d > 0 && d == float64(sector)*distSector {
		// sector edges belong to the lower sector
		sector--
	}
	w := (d - float64(sector)*distSector) / distSector
	return DistID(sector), DistID(sector + 1), w
}

// distValue evaluates one distribution. p1 is the shape parameter, p2 the
// chaotic draw and ctl the modulation sample.
func distValue(d DistID, p1, p2, ctl float64) float64 {
	switch d {
	case Linear:
		return 2*(p1*p2) - 1

	case Exponential:
		c := math.Log(1 - 0.999*p1)
		v := math.Log(1-p2*0.999*p1) / c
		return 2*v - 1

	case Cauchy:
		const argMin, argMax = 0.7, 1.5
		scale := p1*(argMax-argMin) + argMin
		return math.Tan((2*p2-1)*scale) / math.Tan(scale)

	case HyperbolicCosine:
		// stretch p1 towards 1: log maps [0,1] onto about [-3,3]
		s := (math.Log(p1*20.0357+0.0498) + 3) * 0.1667
		argMax := 1.4 * s
		const logArgMin = 0.0005
		v := math.Log(math.Tan(p2*argMax)/math.Tan(argMax)*(1-logArgMin) + logArgMin)
		return v / math.Log(logArgMin)

	case ControlFollow:
		return 2*(p1*ctl) - 1

	default:
		return 0
	}
}

// mirror folds v back into [-limit, limit].
func mirror(v, limit float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || limit <= 0 {
		return 0
	}
	if math.Abs(v) > 4*limit {
		// folding is periodic in 4*limit; reduce first so huge inputs
		// don't take forever
		t := math.Mod(v+limit, 4*limit)
		if t < 0 {
			t += 4 * limit
		}
		v = t - limit
	}
	for {
		excess := math.Abs(v) - limit
		if excess <= 0 {
			return v
		}
		if v > 0 {
			v -= 2 * excess
		} else {
			v += 2 * excess
		}
	}
}

// lagrange3 interpolates through (0,y0), (1,y1), (2,y2) at x.
func lagrange3(x, y0, y1, y2 float64) float64 {
	l0 := (x - 1) * (x - 2) * 0.5
	l1 := x * (2 - x)
	l2 := x * (x - 1) * 0.5
	return y0*l0 + y1*l1 + y2*l2
}

// lehmer is the self-feeding draw used on every breakpoint update.
func lehmer(prev float64) float64 {
	return math.Abs(math.Mod(prev*1.17+0.31, 1))
}
