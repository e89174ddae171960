// Package thermal prepares Boltzmann-weighted states and averages the
// intermediate scattering function over them.
//
// A random Boltzmann state has amplitude sqrt(exp(-E_i/kT)) on eigenstate i
// with an independent uniform phase. Averaging the ISF over many such states
// estimates the thermal ISF; [ExactBoltzmannISF] evaluates the limit of that
// average directly.
package thermal
