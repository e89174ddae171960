package thermal

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/isfsim/internal/basis"
	"github.com/san-kum/isfsim/internal/dynamics"
	"github.com/san-kum/isfsim/internal/hamiltonian"
	"github.com/san-kum/isfsim/internal/lattice"
	"github.com/san-kum/isfsim/internal/linalg"
)

// Compiler returns the diagonal Hamiltonian of a system. hamiltonian.Compile
// satisfies it, as does a cache in front of it.
type Compiler func(system lattice.PeriodicSystem, cfg lattice.Config) (*hamiltonian.Diagonal, error)

// Averager estimates the thermal ISF by Monte-Carlo sampling of random
// Boltzmann states.
type Averager struct {
	log     zerolog.Logger
	rnd     *rand.Rand
	workers int
	compile Compiler
}

// Option configures an Averager.
type Option func(*Averager)

// WithWorkers bounds the number of samples evaluated concurrently. Values
// below one select runtime.NumCPU.
func WithWorkers(n int) Option {
	return func(a *Averager) { a.workers = n }
}

// WithCompiler replaces hamiltonian.Compile, typically with a cache.
func WithCompiler(c Compiler) Option {
	return func(a *Averager) { a.compile = c }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Averager) { a.log = log.With().Str("component", "averager").Logger() }
}

// NewAverager returns an Averager drawing every random phase from rnd.
// rnd is used from one goroutine only, so results are reproducible for a
// given seed regardless of the worker count.
func NewAverager(rnd *rand.Rand, opts ...Option) *Averager {
	a := &Averager{
		log:     zerolog.Nop(),
		rnd:     rnd,
		compile: hamiltonian.Compile,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers < 1 {
		a.workers = runtime.NumCPU()
	}
	return a
}

// AverageBoltzmannISF compiles the Hamiltonian of system once and returns the
// mean ISF over n random Boltzmann states at temperature.
func (a *Averager) AverageBoltzmannISF(ctx context.Context, system lattice.PeriodicSystem, cfg lattice.Config,
	times []float64, direction int, temperature float64, n int) ([]complex128, error) {
	h, err := a.compile(system, cfg)
	if err != nil {
		return nil, err
	}
	op := basis.PeriodicXOperator(h.Basis, direction)
	return a.AverageISF(ctx, h, op, times, temperature, n)
}

// AverageISF returns the mean ISF over n random Boltzmann states of h under
// the scattering operator op.
func (a *Averager) AverageISF(ctx context.Context, h *hamiltonian.Diagonal, op basis.Operator,
	times []float64, temperature float64, n int) ([]complex128, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: sample count must be at least 1, got %d", lattice.ErrInvalidConfig, n)
	}
	p, err := BoltzmannWeights(h, temperature)
	if err != nil {
		return nil, err
	}

	phases := make([][]float64, n)
	for i := range phases {
		phases[i] = randomPhases(a.rnd, len(p))
	}

	start := time.Now()
	results := make([][]complex128, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			isf, err := dynamics.ISFFromHamiltonian(h, op, stateWithPhases(h, p, phases[i]), times)
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			results[i] = isf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mean := make([]complex128, len(times))
	for _, isf := range results {
		for t, v := range isf {
			mean[t] += v
		}
	}
	for t := range mean {
		mean[t] /= complex(float64(n), 0)
	}

	a.log.Debug().
		Int("samples", n).
		Int("states", len(p)).
		Int("times", len(times)).
		Int("workers", a.workers).
		Dur("elapsed", time.Since(start)).
		Msg("averaged boltzmann isf")
	return mean, nil
}

// SampleISF returns the ISF of a single random Boltzmann state of h.
func SampleISF(h *hamiltonian.Diagonal, op basis.Operator, times []float64, temperature float64, rnd *rand.Rand) ([]complex128, error) {
	state, err := RandomBoltzmannState(h, temperature, rnd)
	if err != nil {
		return nil, err
	}
	return dynamics.ISFFromHamiltonian(h, op, state, times)
}

// ExactBoltzmannISF returns the phase-averaged thermal ISF
//
//	F(t) = Σ_ij p_i |S_ji|² exp(i(E_j - E_i)t/ħ)
//
// which the Monte-Carlo mean converges to as the sample count grows.
func ExactBoltzmannISF(h *hamiltonian.Diagonal, op basis.Operator, times []float64, temperature float64) ([]complex128, error) {
	if !op.Basis.Equal(h.Basis) {
		return nil, &basis.MismatchError{Op: "exact isf", Want: h.Basis.N, Got: op.Basis.N}
	}
	for k, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("%w: non-finite time %v at index %d", linalg.ErrNumericalFailure, t, k)
		}
	}
	p, err := BoltzmannWeights(h, temperature)
	if err != nil {
		return nil, err
	}

	n := len(p)
	out := make([]complex128, len(times))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			s := cmplx.Abs(op.Data.At(j, i))
			w := p[i] * s * s
			if w == 0 {
				continue
			}
			dE := (h.Energies[j] - h.Energies[i]) / lattice.Hbar
			for k, t := range times {
				out[k] += complex(w, 0) * cmplx.Exp(complex(0, dE*t))
			}
		}
	}
	for k := range out {
		if cmplx.IsNaN(out[k]) || cmplx.IsInf(out[k]) {
			return nil, fmt.Errorf("%w: exact isf is non-finite at time %v", linalg.ErrNumericalFailure, times[k])
		}
	}
	return out, nil
}
