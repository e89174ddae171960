// Package metrics summarizes an ISF time series into scalar observables.
package metrics

import (
	"math"
	"math/cmplx"
)

// Metric observes an ISF one time step at a time, in time order.
type Metric interface {
	Name() string
	Observe(t float64, f complex128)
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded with every run.
func Defaults() []Metric {
	return []Metric{NewInitialMagnitude(), NewDecayFraction(), NewDecayTime()}
}

// Compute feeds the series through every metric and collects the values by
// name. The metrics are reset first.
func Compute(times []float64, isf []complex128, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for i, t := range times {
			m.Observe(t, isf[i])
		}
		out[m.Name()] = m.Value()
	}
	return out
}

type InitialMagnitude struct {
	value float64
	seen  bool
}

func NewInitialMagnitude() *InitialMagnitude { return &InitialMagnitude{} }

func (m *InitialMagnitude) Name() string { return "isf0" }

func (m *InitialMagnitude) Observe(t float64, f complex128) {
	if !m.seen {
		m.value = cmplx.Abs(f)
		m.seen = true
	}
}

func (m *InitialMagnitude) Value() float64 { return m.value }

func (m *InitialMagnitude) Reset() { *m = InitialMagnitude{} }

// DecayFraction is 1 - min|F|/|F(t0)|.
type DecayFraction struct {
	initial float64
	lowest  float64
	samples int
}

func NewDecayFraction() *DecayFraction { return &DecayFraction{} }

func (d *DecayFraction) Name() string { return "decay_fraction" }

func (d *DecayFraction) Observe(t float64, f complex128) {
	a := cmplx.Abs(f)
	if d.samples == 0 {
		d.initial, d.lowest = a, a
	}
	d.lowest = math.Min(d.lowest, a)
	d.samples++
}

func (d *DecayFraction) Value() float64 {
	if d.samples == 0 || d.initial == 0 {
		return 0
	}
	return 1 - d.lowest/d.initial
}

func (d *DecayFraction) Reset() { *d = DecayFraction{} }

// DecayTime is the time after the first sample at which |F| first falls to
// 1/e of its first value, interpolated linearly between samples. It is zero
// when the series never decays that far.
type DecayTime struct {
	t0, threshold float64
	prevT, prevA  float64
	value         float64
	samples       int
	done          bool
}

func NewDecayTime() *DecayTime { return &DecayTime{} }

func (d *DecayTime) Name() string { return "decay_time" }

func (d *DecayTime) Observe(t float64, f complex128) {
	a := cmplx.Abs(f)
	switch {
	case d.samples == 0:
		d.t0, d.threshold = t, a/math.E
	case !d.done && a <= d.threshold:
		frac := 1.0
		if d.prevA != a {
			frac = (d.prevA - d.threshold) / (d.prevA - a)
		}
		d.value = d.prevT + frac*(t-d.prevT) - d.t0
		d.done = true
	}
	d.prevT, d.prevA = t, a
	d.samples++
}

func (d *DecayTime) Value() float64 { return d.value }

func (d *DecayTime) Reset() { *d = DecayTime{} }
