package basis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Kind tags the representation a Basis describes.
type Kind int

const (
	KindPosition Kind = iota
	KindMomentum
	KindEvenlySpaced
	KindExplicit
)

func (k Kind) String() string {
	switch k {
	case KindPosition:
		return "position"
	case KindMomentum:
		return "momentum"
	case KindEvenlySpaced:
		return "evenly_spaced"
	case KindExplicit:
		return "explicit"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Basis describes how the N entries of a data vector map onto a fundamental
// grid of FundamentalN points spanning Length metres.
type Basis struct {
	Kind         Kind
	N            int
	FundamentalN int
	Length       float64

	// Step and Offset place stored component m at fundamental momentum index
	// Step*m + Offset. Only used by KindEvenlySpaced.
	Step   int
	Offset int

	// vectors holds the FundamentalN×N orthonormal columns of an explicit
	// basis, expressed in the fundamental momentum basis.
	vectors *mat.CDense
}

// Position returns the fundamental real-space basis with n samples over length.
func Position(n int, length float64) *Basis {
	return &Basis{Kind: KindPosition, N: n, FundamentalN: n, Length: length}
}

// Momentum returns the fundamental momentum basis with n components.
func Momentum(n int, length float64) *Basis {
	return &Basis{Kind: KindMomentum, N: n, FundamentalN: n, Length: length}
}

// TruncatedMomentum returns a momentum basis storing the n lowest-frequency
// components of a grid with fundamentalN points.
func TruncatedMomentum(n, fundamentalN int, length float64) (*Basis, error) {
	if n <= 0 || n > fundamentalN {
		return nil, fmt.Errorf("%w: truncated momentum basis needs 0 < n <= fundamental n (n=%d, fundamental=%d)",
			ErrBasisMismatch, n, fundamentalN)
	}
	return &Basis{Kind: KindMomentum, N: n, FundamentalN: fundamentalN, Length: length}, nil
}

// EvenlySpaced returns a basis of n momentum components sitting on every
// step-th component of a grid of n*step points, shifted by offset.
func EvenlySpaced(n, step, offset int, length float64) *Basis {
	return &Basis{
		Kind:         KindEvenlySpaced,
		N:            n,
		FundamentalN: n * step,
		Length:       length,
		Step:         step,
		Offset:       offset,
	}
}

// Explicit returns a basis spanned by the columns of vectors, which must be
// expressed in the fundamental momentum basis of their grid. The columns are
// assumed orthonormal.
func Explicit(vectors *mat.CDense, length float64) (*Basis, error) {
	r, c := vectors.Dims()
	if c > r {
		return nil, fmt.Errorf("%w: explicit basis has more vectors (%d) than grid points (%d)",
			ErrBasisMismatch, c, r)
	}
	return &Basis{Kind: KindExplicit, N: c, FundamentalN: r, Length: length, vectors: vectors}, nil
}

// IsFundamental reports whether the basis covers every point of its grid
// without an explicit change of basis.
func (b *Basis) IsFundamental() bool {
	return (b.Kind == KindPosition || b.Kind == KindMomentum) && b.N == b.FundamentalN
}

// FundamentalPosition returns the real-space basis of b's grid.
func (b *Basis) FundamentalPosition() *Basis {
	return Position(b.FundamentalN, b.Length)
}

// FundamentalMomentum returns the momentum basis of b's grid.
func (b *Basis) FundamentalMomentum() *Basis {
	return Momentum(b.FundamentalN, b.Length)
}

// Vectors returns the columns of an explicit basis in the fundamental
// momentum basis, or nil for any other kind.
func (b *Basis) Vectors() *mat.CDense {
	return b.vectors
}

// Equal reports whether a and b describe the same representation.
func (b *Basis) Equal(o *Basis) bool {
	if b == o {
		return true
	}
	if b == nil || o == nil {
		return false
	}
	if b.Kind != o.Kind || b.N != o.N || b.FundamentalN != o.FundamentalN || !sameLength(b.Length, o.Length) {
		return false
	}
	switch b.Kind {
	case KindEvenlySpaced:
		return b.Step == o.Step && b.Offset == o.Offset
	case KindExplicit:
		return b.vectors == o.vectors
	}
	return true
}

// Compatible reports whether vectors in a and b can be converted into each other.
func (b *Basis) Compatible(o *Basis) bool {
	return b.FundamentalN == o.FundamentalN && sameLength(b.Length, o.Length)
}

func (b *Basis) String() string {
	switch b.Kind {
	case KindEvenlySpaced:
		return fmt.Sprintf("%s(n=%d, step=%d, offset=%d, L=%.4g)", b.Kind, b.N, b.Step, b.Offset, b.Length)
	default:
		return fmt.Sprintf("%s(n=%d, fundamental=%d, L=%.4g)", b.Kind, b.N, b.FundamentalN, b.Length)
	}
}

// momentumIndex maps stored component i onto the fundamental momentum grid.
func (b *Basis) momentumIndex(i int) int {
	m := SignedFrequency(i, b.N)
	if b.Kind == KindEvenlySpaced {
		m = b.Step*m + b.Offset
	}
	return mod(m, b.FundamentalN)
}

// SignedFrequency returns the signed frequency of index i in a grid of n
// points, following the fftfreq ordering [0, 1, ..., -2, -1].
func SignedFrequency(i, n int) int {
	if i < (n+1)/2 {
		return i
	}
	return i - n
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

func sameLength(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-12*math.Max(math.Abs(a), math.Abs(b))
}
