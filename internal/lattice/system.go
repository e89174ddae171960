package lattice

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Physical constants in SI units.
const (
	Hbar         = 1.054571817e-34 // J s
	Boltzmann    = 1.380649e-23    // J/K
	ElectronVolt = 1.602176634e-19 // J
)

// PeriodicSystem describes a single particle in a 1D periodic potential.
// ID is used as the cache key for derived Hamiltonians.
type PeriodicSystem struct {
	ID              string  `yaml:"id" json:"id" msgpack:"id"`
	BarrierEnergy   float64 `yaml:"barrier_energy" json:"barrier_energy" msgpack:"barrier_energy"`
	LatticeConstant float64 `yaml:"lattice_constant" json:"lattice_constant" msgpack:"lattice_constant"`
	Mass            float64 `yaml:"mass" json:"mass" msgpack:"mass"`
}

// CellWidth returns the width of one unit cell of the potential,
// sqrt(3)/2 times the lattice constant.
func (s PeriodicSystem) CellWidth() float64 {
	return math.Sqrt(3) * s.LatticeConstant / 2
}

// Validate checks that the physical parameters are finite, the lattice
// constant and mass positive and the barrier non-negative.
func (s PeriodicSystem) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: system id is empty", ErrInvalidConfig)
	}
	if !positive(s.LatticeConstant) {
		return fmt.Errorf("%w: lattice_constant must be positive, got %g", ErrInvalidConfig, s.LatticeConstant)
	}
	if !positive(s.Mass) {
		return fmt.Errorf("%w: mass must be positive, got %g", ErrInvalidConfig, s.Mass)
	}
	if math.IsNaN(s.BarrierEnergy) || math.IsInf(s.BarrierEnergy, 0) || s.BarrierEnergy < 0 {
		return fmt.Errorf("%w: barrier_energy must be non-negative, got %g", ErrInvalidConfig, s.BarrierEnergy)
	}
	return nil
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// MinResolution is the smallest per-cell resolution that holds every harmonic
// of the substrate potential.
const MinResolution = 3

// Config holds the discretization of a PeriodicSystem.
type Config struct {
	// Shape is the number of unit cells in the super-cell, which is also the
	// number of Bloch momenta sampled.
	Shape []int `yaml:"shape" json:"shape" msgpack:"shape"`
	// Resolution is the number of real-space samples per unit cell.
	Resolution []int `yaml:"resolution" json:"resolution" msgpack:"resolution"`
	NBands     int   `yaml:"n_bands" json:"n_bands" msgpack:"n_bands"`
}

// NewConfig returns a validated one-dimensional config.
func NewConfig(shape, resolution, nBands int) (Config, error) {
	cfg := Config{Shape: []int{shape}, Resolution: []int{resolution}, NBands: nBands}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configs that cannot be discretized.
func (c Config) Validate() error {
	if len(c.Shape) != 1 || len(c.Resolution) != 1 {
		return fmt.Errorf("%w: only one-dimensional lattices are supported (shape %v, resolution %v)",
			ErrInvalidConfig, c.Shape, c.Resolution)
	}
	if c.Shape[0] <= 0 {
		return fmt.Errorf("%w: shape must be positive, got %d", ErrInvalidConfig, c.Shape[0])
	}
	if c.Resolution[0] <= 0 {
		return fmt.Errorf("%w: resolution must be positive, got %d", ErrInvalidConfig, c.Resolution[0])
	}
	if c.Resolution[0] < MinResolution {
		return fmt.Errorf("%w: resolution must be at least %d, got %d", ErrInvalidConfig, MinResolution, c.Resolution[0])
	}
	if c.NBands <= 0 || c.NBands > c.Resolution[0] {
		return fmt.Errorf("%w: n_bands must be in [1, %d], got %d", ErrInvalidConfig, c.Resolution[0], c.NBands)
	}
	return nil
}

// NSamples is the number of Bloch momenta, the product of Shape.
func (c Config) NSamples() int {
	n := 1
	for _, s := range c.Shape {
		n *= s
	}
	return n
}

// NStates is the dimension of the compiled eigenbasis.
func (c Config) NStates() int {
	return c.NBands * c.NSamples()
}

// FundamentalN is the number of real-space points in the super-cell.
func (c Config) FundamentalN() int {
	return c.NSamples() * c.Resolution[0]
}

// Key returns a stable identifier for the config, suitable as part of a cache key.
func (c Config) Key() string {
	return fmt.Sprintf("shape=%s_res=%s_bands=%d", joinInts(c.Shape), joinInts(c.Resolution), c.NBands)
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, "x")
}
