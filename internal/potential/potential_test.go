package potential

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/isfsim/internal/basis"
	"github.com/san-kum/isfsim/internal/lattice"
)

func expectedEnergy(system lattice.PeriodicSystem, j, n int) float64 {
	return 0.5 * system.BarrierEnergy * (1 - math.Cos(2*math.Pi*float64(j)/float64(n)))
}

func TestGetHasNoOffset(t *testing.T) {
	for _, name := range lattice.ListPresets() {
		system, _ := lattice.GetPreset(name)
		pot := Get(system)

		require.Len(t, pot.Data, NHarmonics)
		var sum complex128
		for _, v := range pot.Data {
			sum += v
		}
		assert.InDelta(t, 0, cmplx.Abs(sum), 1e-35, name)
		assert.InDelta(t, system.CellWidth(), pot.Basis.Length, 0, name)
	}
}

func TestInterpolatedAtNativeResolution(t *testing.T) {
	system := lattice.HydrogenNickel
	pot := Get(system)
	interp, err := Interpolated(system, NHarmonics)
	require.NoError(t, err)

	require.Len(t, interp.Data, NHarmonics)
	for i := range pot.Data {
		assert.Equal(t, pot.Data[i], interp.Data[i], "component %d", i)
	}
}

func TestInterpolatedRescalesAmplitudes(t *testing.T) {
	system := lattice.SodiumCopper
	pot := Get(system)
	interp, err := Interpolated(system, 5)
	require.NoError(t, err)

	f := complex(math.Sqrt(5.0/3.0), 0)
	want := []complex128{pot.Data[0] * f, pot.Data[1] * f, 0, 0, pot.Data[2] * f}
	for i := range want {
		assert.InDelta(t, 0, cmplx.Abs(want[i]-interp.Data[i]), 1e-35, "component %d", i)
	}
	assert.Equal(t, basis.KindMomentum, interp.Basis.Kind)
	assert.True(t, interp.Basis.IsFundamental())
}

func TestRealSpaceEnergiesAreResolutionInvariant(t *testing.T) {
	system := lattice.LithiumCopper
	for _, res := range []int{3, 6, 12} {
		interp, err := Interpolated(system, res)
		require.NoError(t, err)

		energies, err := RealSpace(interp)
		require.NoError(t, err)
		require.Len(t, energies, res)
		for j, e := range energies {
			assert.InDelta(t, expectedEnergy(system, j, res), e, 1e-9*system.BarrierEnergy, "res=%d j=%d", res, j)
		}
	}
}

func TestExtendedInterpolatedTilesTheCell(t *testing.T) {
	system := lattice.HydrogenNickel
	const shape, res = 3, 6

	ext, err := ExtendedInterpolated(system, shape, res)
	require.NoError(t, err)
	assert.Equal(t, basis.KindEvenlySpaced, ext.Basis.Kind)
	assert.Equal(t, shape*res, ext.Basis.FundamentalN)
	assert.InDelta(t, system.CellWidth()*shape, ext.Basis.Length, 1e-25)

	energies, err := RealSpace(ext)
	require.NoError(t, err)
	require.Len(t, energies, shape*res)
	for j, e := range energies {
		assert.InDelta(t, expectedEnergy(system, j%res, res), e, 1e-9*system.BarrierEnergy, "j=%d", j)
	}

	assert.InDelta(t, system.BarrierEnergy, energies[res/2], 1e-9*system.BarrierEnergy)
	assert.InDelta(t, 0, energies[0], 1e-9*system.BarrierEnergy)
}

func TestInterpolatedRejectsCoarseGrid(t *testing.T) {
	_, err := Interpolated(lattice.HydrogenNickel, 2)
	assert.ErrorIs(t, err, basis.ErrBasisMismatch)
}

func TestExtendedInterpolatedRejectsEmptyGrid(t *testing.T) {
	tests := []struct {
		name              string
		shape, resolution int
	}{
		{"zero shape", 0, 3},
		{"negative shape", -2, 3},
		{"zero resolution", 2, 0},
		{"negative resolution", 2, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtendedInterpolated(lattice.HydrogenNickel, tt.shape, tt.resolution)
			assert.ErrorIs(t, err, lattice.ErrInvalidConfig)
		})
	}
}
