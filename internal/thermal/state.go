package thermal

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/isfsim/internal/basis"
	"github.com/san-kum/isfsim/internal/hamiltonian"
	"github.com/san-kum/isfsim/internal/lattice"
)

// BoltzmannWeights returns the normalized populations exp(-E_i/kT) of the
// eigenstates of h. Energies are shifted by their minimum first, so low
// temperatures underflow towards the ground state rather than to zero.
func BoltzmannWeights(h *hamiltonian.Diagonal, temperature float64) ([]float64, error) {
	if !(temperature > 0) || math.IsInf(temperature, 0) {
		return nil, fmt.Errorf("%w: temperature must be positive and finite, got %v", lattice.ErrInvalidConfig, temperature)
	}
	if len(h.Energies) == 0 {
		return nil, fmt.Errorf("%w: hamiltonian has no states", lattice.ErrInvalidConfig)
	}

	kT := lattice.Boltzmann * temperature
	e0 := floats.Min(h.Energies)
	p := make([]float64, len(h.Energies))
	for i, e := range h.Energies {
		p[i] = math.Exp(-(e - e0) / kT)
	}
	floats.Scale(1/floats.Sum(p), p)
	return p, nil
}

// BoltzmannState returns the thermal state of h in which every component
// carries the same phase.
func BoltzmannState(h *hamiltonian.Diagonal, temperature, phase float64) (basis.Vector, error) {
	p, err := BoltzmannWeights(h, temperature)
	if err != nil {
		return basis.Vector{}, err
	}
	v := basis.NewVector(h.Basis)
	for i, w := range p {
		v.Data[i] = cmplx.Rect(math.Sqrt(w), phase)
	}
	return v, nil
}

// RandomBoltzmannState returns a thermal state of h with an independent
// uniform phase per component drawn from rnd.
func RandomBoltzmannState(h *hamiltonian.Diagonal, temperature float64, rnd *rand.Rand) (basis.Vector, error) {
	p, err := BoltzmannWeights(h, temperature)
	if err != nil {
		return basis.Vector{}, err
	}
	return stateWithPhases(h, p, randomPhases(rnd, len(p))), nil
}

func randomPhases(rnd *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 2 * math.Pi * rnd.Float64()
	}
	return out
}

func stateWithPhases(h *hamiltonian.Diagonal, p, phases []float64) basis.Vector {
	v := basis.NewVector(h.Basis)
	for i, w := range p {
		v.Data[i] = cmplx.Rect(math.Sqrt(w), phases[i])
	}
	return v
}
