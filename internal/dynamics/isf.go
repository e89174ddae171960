package dynamics

import (
	"github.com/san-kum/isfsim/internal/basis"
	"github.com/san-kum/isfsim/internal/hamiltonian"
	"github.com/san-kum/isfsim/internal/lattice"
)

// ISF compiles the Hamiltonian of system under cfg and returns the
// intermediate scattering function of initial at every time, for a
// scattering vector of direction reciprocal super-cell lengths.
//
// The scattering operator is built in the basis of initial.
func ISF(system lattice.PeriodicSystem, cfg lattice.Config, initial basis.Vector, times []float64, direction int) ([]complex128, error) {
	h, err := hamiltonian.Compile(system, cfg)
	if err != nil {
		return nil, err
	}
	op := basis.PeriodicXOperator(initial.Basis, direction)
	return ISFFromHamiltonian(h, op, initial, times)
}

// ISFFromHamiltonian computes <U(t) S ψ | S U(t) ψ> for every time, where S
// is op and U(t) the evolution under h. h and op are only read, so one pair
// can serve many states concurrently.
func ISFFromHamiltonian(h *hamiltonian.Diagonal, op basis.Operator, initial basis.Vector, times []float64) ([]complex128, error) {
	evolved, err := Solve(h, initial, times)
	if err != nil {
		return nil, err
	}
	evolvedScattered, err := basis.ApplyList(op, evolved)
	if err != nil {
		return nil, err
	}

	scattered, err := basis.Apply(op, initial)
	if err != nil {
		return nil, err
	}
	scatteredEvolved, err := Solve(h, scattered, times)
	if err != nil {
		return nil, err
	}

	return basis.InnerProducts(scatteredEvolved, evolvedScattered)
}
