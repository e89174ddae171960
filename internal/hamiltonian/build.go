package hamiltonian

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/isfsim/internal/basis"
	"github.com/san-kum/isfsim/internal/lattice"
	"github.com/san-kum/isfsim/internal/linalg"
	"github.com/san-kum/isfsim/internal/potential"
)

// KineticEnergies returns ħ²k²/2m for every component of a momentum grid of
// n points over length, shifted by blochFraction reciprocal lattice vectors.
func KineticEnergies(mass float64, n int, length, blochFraction float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		k := 2 * math.Pi * (float64(basis.SignedFrequency(i, n)) + blochFraction) / length
		out[i] = lattice.Hbar * lattice.Hbar * k * k / (2 * mass)
	}
	return out
}

// Fraction returns the Bloch fraction of sample j out of n. Samples follow
// the signed frequency order so that fraction and super-cell momentum agree.
func Fraction(j, n int) float64 {
	return float64(basis.SignedFrequency(j, n)) / float64(n)
}

// BuildFull returns the Hamiltonian of shape tiled unit cells, sampled at
// resolution points per cell, in the real-space basis of the super-cell.
// The kinetic term is diagonal in momentum, the potential in position.
func BuildFull(system lattice.PeriodicSystem, shape, resolution int, blochFraction float64) (basis.Operator, error) {
	if err := system.Validate(); err != nil {
		return basis.Operator{}, err
	}
	if math.IsNaN(blochFraction) || math.IsInf(blochFraction, 0) {
		return basis.Operator{}, fmt.Errorf("%w: bloch fraction must be finite, got %v", lattice.ErrInvalidConfig, blochFraction)
	}
	pot, err := potential.ExtendedInterpolated(system, shape, resolution)
	if err != nil {
		return basis.Operator{}, err
	}
	energies, err := potential.RealSpace(pot)
	if err != nil {
		return basis.Operator{}, err
	}

	n := pot.Basis.FundamentalN
	pos := pot.Basis.FundamentalPosition()
	kinetic := KineticEnergies(system.Mass, n, pos.Length, blochFraction)

	// F† diag(T) F depends only on j-l, so one inverse transform gives
	// every row.
	coeff := make([]complex128, n)
	for i, t := range kinetic {
		coeff[i] = complex(t/float64(n), 0)
	}
	kernel := fourier.NewCmplxFFT(n).Sequence(nil, coeff)

	data := mat.NewCDense(n, n, nil)
	for j := 0; j < n; j++ {
		for l := 0; l < n; l++ {
			v := kernel[(j-l+n)%n]
			if j == l {
				v = complex(real(v)+energies[j], 0)
			}
			data.Set(j, l, v)
		}
	}
	return basis.Operator{Basis: pos, Data: data}, nil
}

// WavefunctionSet holds the retained Bloch eigenstates of a unit cell,
// indexed [band][sample].
type WavefunctionSet struct {
	NBands   int
	NSamples int
	// Fractions are the Bloch fractions sampled, in the signed frequency
	// order of the super-cell: 0, 1/n, ..., -1/n.
	Fractions []float64
	// CellBasis is the real-space basis of one unit cell.
	CellBasis *basis.Basis
	Vectors   [][][]complex128
	Energies  [][]float64
}

// BlochWavefunctions diagonalizes the unit-cell Hamiltonian at every sampled
// Bloch fraction and keeps the lowest cfg.NBands eigenpairs of each.
func BlochWavefunctions(system lattice.PeriodicSystem, cfg lattice.Config) (*WavefunctionSet, error) {
	if err := system.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	nq := cfg.NSamples()
	ws := &WavefunctionSet{
		NBands:    cfg.NBands,
		NSamples:  nq,
		Fractions: make([]float64, nq),
		Vectors:   make([][][]complex128, cfg.NBands),
		Energies:  make([][]float64, cfg.NBands),
	}
	for b := range ws.Vectors {
		ws.Vectors[b] = make([][]complex128, nq)
		ws.Energies[b] = make([]float64, nq)
	}

	for j := 0; j < nq; j++ {
		f := Fraction(j, nq)
		ws.Fractions[j] = f

		h, err := BuildFull(system, 1, cfg.Resolution[0], f)
		if err != nil {
			return nil, err
		}
		ws.CellBasis = h.Basis

		eig, err := linalg.EigenHermitian(h.Data)
		if err != nil {
			return nil, fmt.Errorf("bloch fraction %g: %w", f, err)
		}
		for b := 0; b < cfg.NBands; b++ {
			ws.Vectors[b][j] = eig.Vector(b)
			ws.Energies[b][j] = eig.Values[b]
		}
	}
	return ws, nil
}
