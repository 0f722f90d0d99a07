package main

import (
	"math"
	"sync"
	"sync/atomic"
)

// Scalar is a float64 that one goroutine writes and another reads without
// locking. Readers may see a value that is one update behind.
type Scalar struct {
	bits atomic.Uint64
}

func (s *Scalar) Load() float64 {
	return math.Float64frombits(s.bits.Load())
}

func (s *Scalar) Store(v float64) {
	s.bits.Store(math.Float64bits(v))
}

// Port carries a group of correlated parameters from the control side to
// the audio side. The control side writes inside a short critical section;
// the audio side only ever tries the lock, so a render never waits on a
// knob update.
type Port[T any] struct {
	mu    sync.Mutex
	req   T
	dirty bool
}

// Update runs fn on the requested values under the lock.
func (p *Port[T]) Update(fn func(req *T)) {
	p.mu.Lock()
	fn(&p.req)
	p.dirty = true
	p.mu.Unlock()
}

// Requested returns a copy of the requested values.
func (p *Port[T]) Requested() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.req
}

// Apply hands the requested values to fn if anything changed since the last
// apply and the lock is free. fn may clear one-shot fields in req.
func (p *Port[T]) Apply(fn func(req *T)) bool {
	if !p.mu.TryLock() {
		return false
	}
	defer p.mu.Unlock()

	if !p.dirty {
		return false
	}
	fn(&p.req)
	p.dirty = false
	return true
}

// Ramp moves a value toward a target by a fixed amount per sample.
type Ramp struct {
	cur  float64
	step float64
}

func NewRamp(step float64) Ramp {
	return Ramp{step: math.Abs(step)}
}

func (r *Ramp) Value() float64 {
	return r.cur
}

func (r *Ramp) Reset(v float64) {
	r.cur = v
}

// Next advances one sample toward target and returns the new value.
func (r *Ramp) Next(target float64) float64 {
	if r.cur < target {
		r.cur += r.step
		if r.cur > target {
			r.cur = target
		}
	} else if r.cur > target {
		r.cur -= r.step
		if r.cur < target {
			r.cur = target
		}
	}
	return r.cur
}

// clamp also maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if v < lo || v != v {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
