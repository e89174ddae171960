package basis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Vector is a state or potential expressed in a basis. It is not required
// to be normalized.
type Vector struct {
	Basis *Basis
	Data  []complex128
}

// NewVector returns a zero vector in b.
func NewVector(b *Basis) Vector {
	return Vector{Basis: b, Data: make([]complex128, b.N)}
}

func (v Vector) Clone() Vector {
	data := make([]complex128, len(v.Data))
	copy(data, v.Data)
	return Vector{Basis: v.Basis, Data: data}
}

// Norm returns the Euclidean norm of the amplitudes.
func (v Vector) Norm() float64 {
	return cmplxs.Norm(v.Data, 2)
}

// IsValid reports whether every amplitude is finite.
func (v Vector) IsValid() bool {
	for _, c := range v.Data {
		if cmplx.IsNaN(c) || cmplx.IsInf(c) {
			return false
		}
	}
	return true
}

// Normalized returns a copy of v scaled to unit norm. A zero vector is
// returned unchanged.
func (v Vector) Normalized() Vector {
	out := v.Clone()
	n := v.Norm()
	if n == 0 {
		return out
	}
	cmplxs.ScaleReal(1/n, out.Data)
	return out
}

// VectorList is an ordered sequence of vectors sharing one basis, indexed by
// time or by any other list axis.
type VectorList struct {
	Basis *Basis
	Data  [][]complex128
}

func (l VectorList) Len() int { return len(l.Data) }

// At returns the i-th entry as a Vector sharing the list's storage.
func (l VectorList) At(i int) Vector {
	return Vector{Basis: l.Basis, Data: l.Data[i]}
}

// Convert expresses v in target. Lossless between bases covering the whole
// grid, an orthogonal projection otherwise.
func Convert(v Vector, target *Basis) (Vector, error) {
	if len(v.Data) != v.Basis.N {
		return Vector{}, mismatch("convert", v.Basis.N, len(v.Data))
	}
	if !v.Basis.Compatible(target) {
		return Vector{}, mismatch("convert", target.FundamentalN, v.Basis.FundamentalN)
	}
	if v.Basis.Equal(target) {
		return v.Clone(), nil
	}
	fm := toFundamentalMomentum(v.Basis, v.Data)
	return Vector{Basis: target, Data: fromFundamentalMomentum(target, fm)}, nil
}

// ConvertList expresses every entry of l in target.
func ConvertList(l VectorList, target *Basis) (VectorList, error) {
	out := VectorList{Basis: target, Data: make([][]complex128, len(l.Data))}
	for i := range l.Data {
		c, err := Convert(l.At(i), target)
		if err != nil {
			return VectorList{}, err
		}
		out.Data[i] = c.Data
	}
	return out, nil
}

// InnerProduct returns <a|b>, conjugate-linear in a. b is converted into
// a's basis first.
func InnerProduct(a, b Vector) (complex128, error) {
	cb, err := Convert(b, a.Basis)
	if err != nil {
		return 0, err
	}
	if len(a.Data) != len(cb.Data) {
		return 0, mismatch("inner product", len(a.Data), len(cb.Data))
	}
	return cmplxs.Dot(a.Data, cb.Data), nil
}

// InnerProducts returns <a_i|b_i> for every index of two equally long lists.
func InnerProducts(a, b VectorList) ([]complex128, error) {
	if a.Len() != b.Len() {
		return nil, mismatch("inner products", a.Len(), b.Len())
	}
	out := make([]complex128, a.Len())
	for i := range a.Data {
		v, err := InnerProduct(a.At(i), b.At(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func toFundamentalMomentum(b *Basis, data []complex128) []complex128 {
	switch b.Kind {
	case KindPosition:
		return unitaryForward(data)
	case KindExplicit:
		out := make([]complex128, b.FundamentalN)
		cblas128.Gemv(blas.NoTrans, 1, b.vectors.RawCMatrix(),
			cblas128.Vector{N: len(data), Inc: 1, Data: data},
			0, cblas128.Vector{N: len(out), Inc: 1, Data: out})
		return out
	default:
		out := make([]complex128, b.FundamentalN)
		for i, c := range data {
			out[b.momentumIndex(i)] += c
		}
		return out
	}
}

func fromFundamentalMomentum(b *Basis, fm []complex128) []complex128 {
	switch b.Kind {
	case KindPosition:
		return unitaryInverse(fm)
	case KindExplicit:
		out := make([]complex128, b.N)
		cblas128.Gemv(blas.ConjTrans, 1, b.vectors.RawCMatrix(),
			cblas128.Vector{N: len(fm), Inc: 1, Data: fm},
			0, cblas128.Vector{N: len(out), Inc: 1, Data: out})
		return out
	default:
		out := make([]complex128, b.N)
		for i := range out {
			out[i] = fm[b.momentumIndex(i)]
		}
		return out
	}
}

// unitaryForward maps real-space samples to momentum components.
func unitaryForward(x []complex128) []complex128 {
	fft := fourier.NewCmplxFFT(len(x))
	out := fft.Coefficients(nil, x)
	cmplxs.ScaleReal(1/math.Sqrt(float64(len(x))), out)
	return out
}

// unitaryInverse maps momentum components to real-space samples.
func unitaryInverse(c []complex128) []complex128 {
	fft := fourier.NewCmplxFFT(len(c))
	out := fft.Sequence(nil, c)
	cmplxs.ScaleReal(1/math.Sqrt(float64(len(c))), out)
	return out
}
