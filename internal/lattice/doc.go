// Package lattice defines the physical description of a particle in a
// one-dimensional periodic substrate and the simulation settings used to
// discretize it.
//
//   - [PeriodicSystem]: barrier height, lattice constant and adsorbate mass
//   - [Config]: super-cell shape, per-cell resolution and retained bands
//   - [Presets]: the hydrogen-nickel, sodium-copper and lithium-copper systems
//
// Both types are plain values; they are built once and passed by value.
package lattice
