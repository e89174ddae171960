// Package linalg diagonalizes Hermitian matrices using gonum's real
// symmetric eigensolver.
package linalg

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// hermitianTol bounds |H_ij - conj(H_ji)| relative to the largest element.
	hermitianTol = 1e-10
	// clusterTol groups eigenvalues of the real embedding, relative to the
	// spectral radius.
	clusterTol = 1e-9
)

// EigenResult holds the eigen-decomposition of an n×n Hermitian matrix.
// Values are ascending and column i of Vectors belongs to Values[i].
type EigenResult struct {
	Values  []float64
	Vectors *mat.CDense
}

// Vector returns a copy of the i-th eigenvector.
func (e *EigenResult) Vector(i int) []complex128 {
	n, _ := e.Vectors.Dims()
	out := make([]complex128, n)
	for r := 0; r < n; r++ {
		out[r] = e.Vectors.At(r, i)
	}
	return out
}

// EigenHermitian returns all eigenpairs of h sorted ascending by eigenvalue.
//
// h = A + iB is embedded as the real symmetric matrix [[A, -B], [B, A]],
// whose spectrum is that of h with every eigenvalue doubled. Each eigenvector
// [x; y] maps to the complex eigenvector x + iy, and one orthonormal complex
// vector per eigenvalue is recovered inside every degenerate cluster.
func EigenHermitian(h *mat.CDense) (*EigenResult, error) {
	n, c := h.Dims()
	if n == 0 || n != c {
		return nil, fmt.Errorf("%w: matrix is %dx%d, not square", ErrNumericalFailure, n, c)
	}

	scale := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := h.At(i, j)
			if cmplx.IsNaN(v) || cmplx.IsInf(v) {
				return nil, fmt.Errorf("%w: non-finite element at (%d,%d)", ErrNumericalFailure, i, j)
			}
			scale = math.Max(scale, cmplx.Abs(v))
		}
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if cmplx.Abs(h.At(i, j)-cmplx.Conj(h.At(j, i))) > hermitianTol*scale {
				return nil, fmt.Errorf("%w: matrix is not Hermitian at (%d,%d)", ErrNumericalFailure, i, j)
			}
		}
	}

	emb := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			// Average with the mirrored element so the embedding is exactly symmetric.
			v := (h.At(i, j) + cmplx.Conj(h.At(j, i))) / 2
			a, b := real(v), imag(v)
			emb.SetSym(i, j, a)
			emb.SetSym(n+i, n+j, a)
			emb.SetSym(n+i, j, b)
			emb.SetSym(i, n+j, -b)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(emb, true); !ok {
		return nil, fmt.Errorf("%w: eigen-decomposition did not converge", ErrNumericalFailure)
	}
	values := eig.Values(nil)
	var q mat.Dense
	eig.VectorsTo(&q)

	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite eigenvalue", ErrNumericalFailure)
		}
	}

	radius := math.Max(math.Abs(floats.Min(values)), math.Abs(floats.Max(values)))
	tol := clusterTol * radius

	res := &EigenResult{
		Values:  make([]float64, 0, n),
		Vectors: mat.NewCDense(n, n, nil),
	}

	for start := 0; start < len(values); {
		end := start + 1
		for end < len(values) && values[end]-values[end-1] <= tol {
			end++
		}
		size := end - start
		if size%2 != 0 {
			return nil, fmt.Errorf("%w: unpaired eigenvalue cluster of size %d at %g", ErrNumericalFailure, size, values[start])
		}

		candidates := make([][]complex128, size)
		for k := range candidates {
			z := make([]complex128, n)
			for r := 0; r < n; r++ {
				z[r] = complex(q.At(r, start+k), q.At(n+r, start+k))
			}
			candidates[k] = z
		}

		mean := floats.Sum(values[start:end]) / float64(size)
		for _, z := range pivotedGramSchmidt(candidates, size/2) {
			col := len(res.Values)
			for r, v := range z {
				res.Vectors.Set(r, col, v)
			}
			res.Values = append(res.Values, mean)
		}
		start = end
	}

	if len(res.Values) != n {
		return nil, fmt.Errorf("%w: recovered %d of %d eigenvectors", ErrNumericalFailure, len(res.Values), n)
	}
	return res, nil
}

// pivotedGramSchmidt returns k orthonormal vectors spanning the candidates,
// always taking the candidate with the largest remaining component next.
func pivotedGramSchmidt(candidates [][]complex128, k int) [][]complex128 {
	out := make([][]complex128, 0, k)
	for len(out) < k {
		best, bestNorm := -1, 0.0
		for i, z := range candidates {
			if z == nil {
				continue
			}
			if nrm := cmplxs.Norm(z, 2); nrm > bestNorm {
				best, bestNorm = i, nrm
			}
		}
		if best < 0 || bestNorm == 0 {
			break
		}
		pivot := candidates[best]
		candidates[best] = nil
		cmplxs.ScaleReal(1/bestNorm, pivot)
		out = append(out, pivot)

		for _, z := range candidates {
			if z == nil {
				continue
			}
			cmplxs.AddScaled(z, -cmplxs.Dot(pivot, z), pivot)
		}
	}
	return out
}
