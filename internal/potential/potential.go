// Package potential builds the Fourier representation of the substrate
// potential and resamples it onto arbitrary super-cells.
//
// Every resampling rescales the amplitudes by sqrt(new_n/old_n) so that the
// unitary transform to real space yields the same energies regardless of
// the grid size.
package potential

import (
	"fmt"
	"math"

	"github.com/san-kum/isfsim/internal/basis"
	"github.com/san-kum/isfsim/internal/lattice"
)

// NHarmonics is the number of Fourier components of the unit-cell potential.
const NHarmonics = 3

// Get returns the three-harmonic potential of one unit cell in momentum
// space. The amplitudes are proportional to {2, -1, -1} and sum to zero, so
// the potential vanishes at the cell origin and peaks at BarrierEnergy.
func Get(system lattice.PeriodicSystem) basis.Vector {
	b := basis.Momentum(NHarmonics, system.CellWidth())
	scale := 0.25 * system.BarrierEnergy * math.Sqrt(3)
	return basis.Vector{
		Basis: b,
		Data:  []complex128{complex(2*scale, 0), complex(-scale, 0), complex(-scale, 0)},
	}
}

// Interpolated returns the unit-cell potential resampled onto resolution
// Fourier components in the fundamental momentum basis of that grid.
func Interpolated(system lattice.PeriodicSystem, resolution int) (basis.Vector, error) {
	if resolution <= 0 {
		return basis.Vector{}, fmt.Errorf("%w: resolution must be positive, got %d", lattice.ErrInvalidConfig, resolution)
	}
	pot := Get(system)
	old := pot.Basis

	truncated, err := basis.TruncatedMomentum(old.N, resolution, old.Length)
	if err != nil {
		return basis.Vector{}, err
	}
	scaled := basis.Vector{Basis: truncated, Data: scale(pot.Data, math.Sqrt(float64(resolution)/float64(old.N)))}
	return basis.Convert(scaled, truncated.FundamentalMomentum())
}

// ExtendedInterpolated tiles the interpolated unit-cell potential across
// shape cells. The result lives on every shape-th component of the
// super-cell momentum grid.
func ExtendedInterpolated(system lattice.PeriodicSystem, shape, resolution int) (basis.Vector, error) {
	if shape <= 0 {
		return basis.Vector{}, fmt.Errorf("%w: shape must be positive, got %d", lattice.ErrInvalidConfig, shape)
	}
	interp, err := Interpolated(system, resolution)
	if err != nil {
		return basis.Vector{}, err
	}
	old := interp.Basis
	b := basis.EvenlySpaced(old.N, shape, 0, old.Length*float64(shape))
	return basis.Vector{
		Basis: b,
		Data:  scale(interp.Data, math.Sqrt(float64(b.FundamentalN)/float64(old.N))),
	}, nil
}

// RealSpace returns the potential energy at each sample of the super-cell.
func RealSpace(pot basis.Vector) ([]float64, error) {
	pos, err := basis.Convert(pot, pot.Basis.FundamentalPosition())
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(pos.Data))
	for i, v := range pos.Data {
		out[i] = real(v)
	}
	return out, nil
}

func scale(data []complex128, f float64) []complex128 {
	out := make([]complex128, len(data))
	for i, v := range data {
		out[i] = v * complex(f, 0)
	}
	return out
}
