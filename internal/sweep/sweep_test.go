package sweep

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/isfsim/internal/dynamics"
	"github.com/san-kum/isfsim/internal/hamiltonian"
	"github.com/san-kum/isfsim/internal/lattice"
)

func TestGridOrder(t *testing.T) {
	g, err := NewGrid([]string{"a", "b"}, [][]float64{{1, 2}, {10, 20, 30}})
	require.NoError(t, err)

	points, err := g.Run(context.Background(), func(_ context.Context, p map[string]float64) (map[string]float64, error) {
		return map[string]float64{"sum": p["a"] + p["b"]}, nil
	})
	require.NoError(t, err)
	require.Len(t, points, 6)

	var sums []float64
	for _, p := range points {
		sums = append(sums, p.Metrics["sum"])
	}
	assert.Equal(t, []float64{11, 21, 31, 12, 22, 32}, sums)

	best, ok := Best(points, "sum", false)
	require.True(t, ok)
	assert.Equal(t, map[string]float64{"a": 1, "b": 10}, best.Params)

	best, ok = Best(points, "sum", true)
	require.True(t, ok)
	assert.Equal(t, 32.0, best.Metrics["sum"])

	_, ok = Best(points, "missing", false)
	assert.False(t, ok)
}

func TestGridErrors(t *testing.T) {
	_, err := NewGrid([]string{"a"}, nil)
	assert.Error(t, err)

	g, err := NewGrid([]string{"a"}, [][]float64{{1, 2, 3}})
	require.NoError(t, err)

	boom := errors.New("boom")
	calls := 0
	_, err = g.Run(context.Background(), func(context.Context, map[string]float64) (map[string]float64, error) {
		calls++
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Run(ctx, func(context.Context, map[string]float64) (map[string]float64, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExactISFSweep(t *testing.T) {
	cfg, err := lattice.NewConfig(3, 3, 2)
	require.NoError(t, err)
	h, err := hamiltonian.Compile(lattice.HydrogenNickel, cfg)
	require.NoError(t, err)

	g, err := NewGrid([]string{ParamTemperature, ParamDirection}, [][]float64{{100, 300}, {0, 1}})
	require.NoError(t, err)
	points, err := g.Run(context.Background(), ExactISF(h, dynamics.EvenlySpacedTimes(10, 0, 1e-12), 1))
	require.NoError(t, err)
	require.Len(t, points, 4)

	for _, p := range points {
		assert.LessOrEqual(t, p.Metrics["isf0"], 1+1e-12)
		if p.Params[ParamDirection] == 0 {
			// Without momentum transfer the ISF stays at one.
			assert.InDelta(t, 1, p.Metrics["isf0"], 1e-9)
			assert.InDelta(t, 0, p.Metrics["decay_fraction"], 1e-9)
		}
	}

	_, err = ExactISF(h, []float64{0}, 1)(context.Background(), map[string]float64{})
	assert.Error(t, err)
}
