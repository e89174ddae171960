// Package hamiltonian assembles and diagonalizes the single-particle
// Hamiltonian of a periodic system.
//
//   - [BuildFull]: real-space Hamiltonian of a super-cell at one Bloch fraction
//   - [BlochWavefunctions]: per-momentum diagonalization of the unit cell
//   - [Compile]: flattens the Bloch states into one explicit eigenbasis
//
// The compiled [Diagonal] orders its states band-major and momentum-minor,
// so state (band, sample) sits at index band*NSamples + sample.
//
// Diagonalization dominates the cost of the whole pipeline. Nothing here is
// cached; callers that reuse a (system, config) pair should cache the
// [Diagonal] themselves.
package hamiltonian
