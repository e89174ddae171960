package basis

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const tol = 1e-12

func planeWave(n, m int) []complex128 {
	data := make([]complex128, n)
	for j := range data {
		data[j] = cmplx.Exp(complex(0, 2*math.Pi*float64(m*j)/float64(n))) / complex(math.Sqrt(float64(n)), 0)
	}
	return data
}

func assertClose(t *testing.T, want, got []complex128) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, 0, cmplx.Abs(want[i]-got[i]), 1e-10, "index %d: want %v, got %v", i, want[i], got[i])
	}
}

func TestSignedFrequency(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{1, []int{0}},
		{3, []int{0, 1, -1}},
		{4, []int{0, 1, -2, -1}},
		{5, []int{0, 1, 2, -2, -1}},
	}
	for _, tt := range tests {
		for i, w := range tt.want {
			assert.Equal(t, w, SignedFrequency(i, tt.n), "n=%d i=%d", tt.n, i)
		}
	}
}

func TestPlaneWaveIsMomentumEigenvector(t *testing.T) {
	const n = 8
	for _, m := range []int{0, 1, 3, -2} {
		v := Vector{Basis: Position(n, 1), Data: planeWave(n, m)}
		got, err := Convert(v, Momentum(n, 1))
		require.NoError(t, err)

		want := make([]complex128, n)
		want[mod(m, n)] = 1
		assertClose(t, want, got.Data)
	}
}

func TestPositionMomentumRoundTrip(t *testing.T) {
	v := Vector{Basis: Position(6, 2.5), Data: []complex128{1, 2i, -3, 0.5 + 0.5i, 0, 4}}

	m, err := Convert(v, v.Basis.FundamentalMomentum())
	require.NoError(t, err)
	assert.InDelta(t, v.Norm(), m.Norm(), tol)

	back, err := Convert(m, v.Basis)
	require.NoError(t, err)
	assertClose(t, v.Data, back.Data)
}

func TestTruncatedMomentumPadding(t *testing.T) {
	b, err := TruncatedMomentum(3, 5, 1)
	require.NoError(t, err)

	v := Vector{Basis: b, Data: []complex128{10, 11, 12}}
	got, err := Convert(v, Momentum(5, 1))
	require.NoError(t, err)
	assertClose(t, []complex128{10, 11, 0, 0, 12}, got.Data)

	back, err := Convert(got, b)
	require.NoError(t, err)
	assertClose(t, v.Data, back.Data)

	_, err = TruncatedMomentum(6, 5, 1)
	assert.ErrorIs(t, err, ErrBasisMismatch)
}

func TestEvenlySpacedPlacement(t *testing.T) {
	b := EvenlySpaced(3, 2, 1, 1)
	assert.Equal(t, 6, b.FundamentalN)

	v := Vector{Basis: b, Data: []complex128{1, 2, 3}}
	got, err := Convert(v, b.FundamentalMomentum())
	require.NoError(t, err)
	assertClose(t, []complex128{0, 1, 0, 2, 0, 3}, got.Data)
}

func TestConvertMismatch(t *testing.T) {
	v := NewVector(Position(4, 1))

	_, err := Convert(v, Position(5, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBasisMismatch))

	var me *MismatchError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 5, me.Want)
	assert.Equal(t, 4, me.Got)

	_, err = Convert(v, Position(4, 2))
	assert.ErrorIs(t, err, ErrBasisMismatch)

	bad := Vector{Basis: Position(4, 1), Data: make([]complex128, 3)}
	_, err = Convert(bad, Momentum(4, 1))
	assert.ErrorIs(t, err, ErrBasisMismatch)
}

func TestExplicitBasisProjection(t *testing.T) {
	// Two plane waves of a 4-point grid.
	vectors := mat.NewCDense(4, 2, nil)
	vectors.Set(0, 0, 1)
	vectors.Set(1, 1, 1)
	b, err := Explicit(vectors, 1)
	require.NoError(t, err)

	v := Vector{Basis: Position(4, 1), Data: planeWave(4, 1)}
	got, err := Convert(v, b)
	require.NoError(t, err)
	assertClose(t, []complex128{0, 1}, got.Data)

	back, err := Convert(got, Position(4, 1))
	require.NoError(t, err)
	assertClose(t, v.Data, back.Data)

	outside := Vector{Basis: Position(4, 1), Data: planeWave(4, 2)}
	proj, err := Convert(outside, b)
	require.NoError(t, err)
	assert.InDelta(t, 0, proj.Norm(), tol)

	_, err = Explicit(mat.NewCDense(2, 3, nil), 1)
	assert.ErrorIs(t, err, ErrBasisMismatch)
}

func TestPeriodicXOperator(t *testing.T) {
	const n = 5
	pos := Position(n, 1)
	op := PeriodicXOperator(pos, 1)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := complex128(0)
			if i == j {
				want = cmplx.Exp(complex(0, 2*math.Pi*float64(j)/n))
			}
			assert.InDelta(t, 0, cmplx.Abs(op.Data.At(i, j)-want), 1e-10, "(%d,%d)", i, j)
		}
	}

	mom := PeriodicXOperator(Momentum(n, 1), 2)
	v := NewVector(Momentum(n, 1))
	v.Data[4] = 1
	got, err := Apply(mom, v)
	require.NoError(t, err)
	want := make([]complex128, n)
	want[1] = 1
	assertClose(t, want, got.Data)
}

func TestApplyConvertsIntoOperatorBasis(t *testing.T) {
	const n = 6
	op := PeriodicXOperator(Position(n, 1), 1)

	v := Vector{Basis: Position(n, 1), Data: planeWave(n, 0)}
	m, err := Convert(v, Momentum(n, 1))
	require.NoError(t, err)

	fromPos, err := Apply(op, v)
	require.NoError(t, err)
	fromMom, err := Apply(op, m)
	require.NoError(t, err)
	assertClose(t, fromPos.Data, fromMom.Data)
	assertClose(t, planeWave(n, 1), fromPos.Data)
}

func TestInnerProducts(t *testing.T) {
	pos := Position(4, 1)
	a := VectorList{Basis: pos, Data: [][]complex128{planeWave(4, 1), planeWave(4, 2)}}
	b, err := ConvertList(a, Momentum(4, 1))
	require.NoError(t, err)

	got, err := InnerProducts(a, b)
	require.NoError(t, err)
	assertClose(t, []complex128{1, 1}, got)

	_, err = InnerProducts(a, VectorList{Basis: pos, Data: a.Data[:1]})
	assert.ErrorIs(t, err, ErrBasisMismatch)

	ip, err := InnerProduct(Vector{Basis: pos, Data: []complex128{1i, 0, 0, 0}}, Vector{Basis: pos, Data: []complex128{1, 0, 0, 0}})
	require.NoError(t, err)
	assert.Equal(t, complex(0, -1), ip)
}

func TestOperatorIsHermitian(t *testing.T) {
	op := NewOperator(Position(2, 1))
	op.Data.Set(0, 1, 1+1i)
	op.Data.Set(1, 0, 1-1i)
	op.Data.Set(0, 0, 2)
	assert.True(t, op.IsHermitian(1e-12))

	op.Data.Set(1, 0, 1+1i)
	assert.False(t, op.IsHermitian(1e-12))
}

func TestVectorHelpers(t *testing.T) {
	v := Vector{Basis: Position(2, 1), Data: []complex128{3, 4i}}
	assert.InDelta(t, 5, v.Norm(), tol)
	assert.InDelta(t, 1, v.Normalized().Norm(), tol)
	assert.InDelta(t, 5, v.Norm(), tol, "Normalized must not modify the receiver")
	assert.True(t, v.IsValid())

	v.Data[0] = cmplx.NaN()
	assert.False(t, v.IsValid())
}
