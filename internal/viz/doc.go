// Package viz renders ISF results in the terminal.
//
//   - [PlotISF]: asciigraph plot of |F| and Re F against time
//   - [BandTable]: band energies of a compiled Hamiltonian
//   - [LiveModel]: Bubble Tea program that draws Monte-Carlo samples one at a
//     time and redraws the running mean against the exact thermal ISF
//
// # Key Bindings
//
//	Space - Pause/Resume sampling
//	R     - Discard samples and start over
//	Q     - Quit
package viz
