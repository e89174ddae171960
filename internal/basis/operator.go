package basis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"
)

// Operator is a dense linear map acting on vectors of a single basis.
type Operator struct {
	Basis *Basis
	Data  *mat.CDense
}

// NewOperator returns a zero operator on b.
func NewOperator(b *Basis) Operator {
	return Operator{Basis: b, Data: mat.NewCDense(b.N, b.N, nil)}
}

// IsHermitian reports whether op equals its conjugate transpose within tol,
// relative to the largest element.
func (op Operator) IsHermitian(tol float64) bool {
	n, _ := op.Data.Dims()
	scale := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			scale = math.Max(scale, cmplx.Abs(op.Data.At(i, j)))
		}
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if cmplx.Abs(op.Data.At(i, j)-cmplx.Conj(op.Data.At(j, i))) > tol*scale {
				return false
			}
		}
	}
	return true
}

// Apply returns op|v>, converting v into op's basis first.
func Apply(op Operator, v Vector) (Vector, error) {
	r, c := op.Data.Dims()
	if r != op.Basis.N || c != op.Basis.N {
		return Vector{}, mismatch("apply operator", op.Basis.N, r)
	}
	cv, err := Convert(v, op.Basis)
	if err != nil {
		return Vector{}, err
	}
	out := make([]complex128, r)
	cblas128.Gemv(blas.NoTrans, 1, op.Data.RawCMatrix(),
		cblas128.Vector{N: len(cv.Data), Inc: 1, Data: cv.Data},
		0, cblas128.Vector{N: len(out), Inc: 1, Data: out})
	return Vector{Basis: op.Basis, Data: out}, nil
}

// ApplyList applies op to every entry of l.
func ApplyList(op Operator, l VectorList) (VectorList, error) {
	out := VectorList{Basis: op.Basis, Data: make([][]complex128, l.Len())}
	for i := range l.Data {
		v, err := Apply(op, l.At(i))
		if err != nil {
			return VectorList{}, err
		}
		out.Data[i] = v.Data
	}
	return out, nil
}

// Embedding returns the FundamentalN×N matrix whose columns are the vectors
// of b expressed in the fundamental momentum basis of its grid.
func Embedding(b *Basis) *mat.CDense {
	if b.Kind == KindExplicit {
		return b.vectors
	}
	e := mat.NewCDense(b.FundamentalN, b.N, nil)
	unit := make([]complex128, b.N)
	for j := 0; j < b.N; j++ {
		unit[j] = 1
		col := toFundamentalMomentum(b, unit)
		for i, c := range col {
			e.Set(i, j, c)
		}
		unit[j] = 0
	}
	return e
}

// PeriodicXOperator returns exp(2πi·direction·x/Length) in basis b. It is
// diagonal in position, a shift by direction in momentum and the projected
// matrix V†SV in an explicit basis.
func PeriodicXOperator(b *Basis, direction int) Operator {
	e := Embedding(b)
	nf, n := e.Dims()

	shifted := mat.NewCDense(nf, n, nil)
	for i := 0; i < nf; i++ {
		src := mod(i-direction, nf)
		for j := 0; j < n; j++ {
			shifted.Set(i, j, e.At(src, j))
		}
	}

	op := NewOperator(b)
	cblas128.Gemm(blas.ConjTrans, blas.NoTrans, 1,
		e.RawCMatrix(), shifted.RawCMatrix(), 0, op.Data.RawCMatrix())
	return op
}
