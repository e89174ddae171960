package hamiltonian

import (
	"github.com/san-kum/isfsim/internal/basis"
	"github.com/san-kum/isfsim/internal/lattice"
	"gonum.org/v1/gonum/mat"
)

// Diagonal is a Hamiltonian expressed in its own eigenbasis.
type Diagonal struct {
	Basis    *basis.Basis
	Energies []float64
	NBands   int
	NSamples int
}

// Index returns the position of state (band, sample) in the eigenbasis.
func (d *Diagonal) Index(band, sample int) int {
	return band*d.NSamples + sample
}

// Energy returns the eigenvalue of state (band, sample).
func (d *Diagonal) Energy(band, sample int) float64 {
	return d.Energies[d.Index(band, sample)]
}

// BandEnergies returns the energies of one band across all sampled momenta.
func (d *Diagonal) BandEnergies(band int) []float64 {
	out := make([]float64, d.NSamples)
	copy(out, d.Energies[d.Index(band, 0):d.Index(band+1, 0)])
	return out
}

// Compile diagonalizes system under cfg and returns the Hamiltonian in the
// eigenbasis of all retained bands and momenta.
func Compile(system lattice.PeriodicSystem, cfg lattice.Config) (*Diagonal, error) {
	ws, err := BlochWavefunctions(system, cfg)
	if err != nil {
		return nil, err
	}
	return CompileSet(ws)
}

// CompileSet flattens a WavefunctionSet into one explicit eigenbasis over the
// super-cell of NSamples unit cells.
//
// A Bloch state at fraction s/NSamples with cell momentum component m lives
// on super-cell momentum m*NSamples + s, where s is the signed frequency of
// the sample. Each state is placed through an evenly spaced basis with step
// NSamples and offset s. States of different samples therefore occupy
// disjoint components and the columns stay orthonormal.
func CompileSet(ws *WavefunctionSet) (*Diagonal, error) {
	res := ws.CellBasis.N
	nq := ws.NSamples
	length := ws.CellBasis.Length * float64(nq)
	full := basis.Momentum(res*nq, length)
	cellMomentum := ws.CellBasis.FundamentalMomentum()

	vectors := mat.NewCDense(full.N, ws.NBands*nq, nil)
	energies := make([]float64, 0, ws.NBands*nq)

	for b := 0; b < ws.NBands; b++ {
		for j := 0; j < nq; j++ {
			cell, err := basis.Convert(basis.Vector{Basis: ws.CellBasis, Data: ws.Vectors[b][j]}, cellMomentum)
			if err != nil {
				return nil, err
			}
			placed, err := basis.Convert(basis.Vector{Basis: basis.EvenlySpaced(res, nq, basis.SignedFrequency(j, nq), length), Data: cell.Data}, full)
			if err != nil {
				return nil, err
			}
			col := len(energies)
			for i, v := range placed.Data {
				vectors.Set(i, col, v)
			}
			energies = append(energies, ws.Energies[b][j])
		}
	}

	eigenbasis, err := basis.Explicit(vectors, length)
	if err != nil {
		return nil, err
	}
	return &Diagonal{Basis: eigenbasis, Energies: energies, NBands: ws.NBands, NSamples: nq}, nil
}
