// Package basis provides tagged basis descriptors and the vector and operator
// types that live in them.
//
// A [Basis] is one of four kinds, dispatched on [Kind]:
//
//   - [KindPosition]: samples of a function on an evenly spaced real-space grid
//   - [KindMomentum]: Fourier components, optionally truncated inside a larger grid
//   - [KindEvenlySpaced]: every Step-th Fourier component of a larger grid
//   - [KindExplicit]: an orthonormal set of vectors, e.g. an eigenbasis
//
// Every basis is tied to a fundamental grid of FundamentalN points over
// Length. Conversions pass through the fundamental momentum grid using a
// unitary discrete Fourier transform:
//
//	position_j = 1/sqrt(N) Σ_m c_m exp(+2πi m j / N)
//
// so norms are preserved by every lossless conversion, and resampling a
// vector onto a grid of a different size must be accompanied by a
// sqrt(new/old) rescale to keep real-space values unchanged.
//
// Conversions between bases with different fundamental grids fail with
// [ErrBasisMismatch]. Conversion into a smaller basis (an explicit eigenbasis
// or a truncated momentum basis) is an orthogonal projection.
package basis
