// Package dynamics evolves states under a diagonal Hamiltonian and computes
// the intermediate scattering function.
package dynamics

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/isfsim/internal/basis"
	"github.com/san-kum/isfsim/internal/hamiltonian"
	"github.com/san-kum/isfsim/internal/lattice"
	"github.com/san-kum/isfsim/internal/linalg"
)

// Solve evolves initial to every time in times, in the order given. The
// returned states are expressed in the eigenbasis of h. times need not be
// sorted or uniform, and may be empty.
func Solve(h *hamiltonian.Diagonal, initial basis.Vector, times []float64) (basis.VectorList, error) {
	if len(h.Energies) != h.Basis.N {
		return basis.VectorList{}, &basis.MismatchError{Op: "solve", Want: h.Basis.N, Got: len(h.Energies)}
	}
	c, err := basis.Convert(initial, h.Basis)
	if err != nil {
		return basis.VectorList{}, err
	}

	out := basis.VectorList{Basis: h.Basis, Data: make([][]complex128, len(times))}
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return basis.VectorList{}, fmt.Errorf("%w: non-finite time %v at index %d", linalg.ErrNumericalFailure, t, i)
		}
		row := make([]complex128, len(c.Data))
		for j, amp := range c.Data {
			row[j] = amp * cmplx.Exp(complex(0, -h.Energies[j]*t/lattice.Hbar))
		}
		out.Data[i] = row
	}
	return out, nil
}

// EvenlySpacedTimes returns n times from start to stop inclusive. A single
// time is start.
func EvenlySpacedTimes(n int, start, stop float64) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}
