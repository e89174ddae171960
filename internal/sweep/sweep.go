// Package sweep evaluates ISF metrics over a grid of temperatures and
// scattering directions.
package sweep

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/isfsim/internal/basis"
	"github.com/san-kum/isfsim/internal/hamiltonian"
	"github.com/san-kum/isfsim/internal/metrics"
	"github.com/san-kum/isfsim/internal/thermal"
)

const (
	ParamTemperature = "temperature"
	ParamDirection   = "direction"
)

// Evaluate returns the metrics of one grid point.
type Evaluate func(ctx context.Context, params map[string]float64) (map[string]float64, error)

type Point struct {
	Params  map[string]float64 `json:"params"`
	Metrics map[string]float64 `json:"metrics"`
}

type Grid struct {
	paramNames []string
	ranges     [][]float64
}

func NewGrid(params []string, ranges [][]float64) (*Grid, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("sweep: %d parameters but %d ranges", len(params), len(ranges))
	}
	return &Grid{paramNames: params, ranges: ranges}, nil
}

// Run evaluates every combination, with the last parameter varying fastest.
// The first error aborts the sweep.
func (g *Grid) Run(ctx context.Context, eval Evaluate) ([]Point, error) {
	var points []Point
	err := g.runRecursive(ctx, 0, make(map[string]float64), eval, &points)
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (g *Grid) runRecursive(ctx context.Context, depth int, current map[string]float64, eval Evaluate, points *[]Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		m, err := eval(ctx, current)
		if err != nil {
			return fmt.Errorf("sweep %v: %w", current, err)
		}
		*points = append(*points, Point{Params: current, Metrics: m})
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val
		if err := g.runRecursive(ctx, depth+1, next, eval, points); err != nil {
			return err
		}
	}
	return nil
}

// Best returns the point with the smallest (or, with maximize, largest)
// value of metric. Points lacking the metric are skipped.
func Best(points []Point, metric string, maximize bool) (Point, bool) {
	best := math.Inf(1)
	if maximize {
		best = math.Inf(-1)
	}
	var out Point
	found := false
	for _, p := range points {
		v, ok := p.Metrics[metric]
		if !ok {
			continue
		}
		if (!maximize && v < best) || (maximize && v > best) {
			best, out, found = v, p, true
		}
	}
	return out, found
}

// ExactISF evaluates the phase-averaged thermal ISF of h at every point.
// Points without a direction use defaultDirection.
func ExactISF(h *hamiltonian.Diagonal, times []float64, defaultDirection int) Evaluate {
	var mu sync.Mutex
	ops := make(map[int]basis.Operator)

	operator := func(direction int) basis.Operator {
		mu.Lock()
		defer mu.Unlock()
		op, ok := ops[direction]
		if !ok {
			op = basis.PeriodicXOperator(h.Basis, direction)
			ops[direction] = op
		}
		return op
	}

	return func(ctx context.Context, params map[string]float64) (map[string]float64, error) {
		temperature, ok := params[ParamTemperature]
		if !ok {
			return nil, fmt.Errorf("sweep: missing %s", ParamTemperature)
		}
		direction := defaultDirection
		if d, ok := params[ParamDirection]; ok {
			direction = int(math.Round(d))
		}
		isf, err := thermal.ExactBoltzmannISF(h, operator(direction), times, temperature)
		if err != nil {
			return nil, err
		}
		return metrics.Compute(times, isf, metrics.Defaults()...), nil
	}
}
