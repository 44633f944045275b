package field

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// S1 — inverse of 2 mod p is (p+1)/2.
func TestInverseOfTwo(t *testing.T) {
	two := NewFromBig(big.NewInt(2))
	got := two.Inv()
	want := new(big.Int).Rsh(new(big.Int).Add(P, big.NewInt(1)), 1)
	require.Equal(t, 0, got.Big().Cmp(want))
}

func TestBatchInverse(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	xs := make([]Element, 17)
	orig := make([]Element, len(xs))
	for i := range xs {
		v := new(big.Int).Rand(rnd, P)
		v.Add(v, big.NewInt(1)) // avoid zero
		xs[i] = NewFromBig(v)
		orig[i] = xs[i]
	}
	require.NoError(t, BatchInverse(xs))
	for i := range xs {
		prod := xs[i].Mul(orig[i])
		require.True(t, prod.Equal(One), "index %d", i)
	}
}

func TestBatchInverseRejectsZero(t *testing.T) {
	xs := []Element{NewFromBig(big.NewInt(5)), Zero, NewFromBig(big.NewInt(7))}
	require.Error(t, BatchInverse(xs))
}

func TestAddSubNegRoundtrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		a := NewFromBig(new(big.Int).Rand(rnd, P))
		b := NewFromBig(new(big.Int).Rand(rnd, P))
		require.True(t, a.Add(b).Sub(b).Equal(a))
		require.True(t, a.Add(a.Neg()).IsZero())
	}
}

func TestScalarArithmeticMatchesBigInt(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		a := NewScalarFromBig(new(big.Int).Rand(rnd, N))
		b := NewScalarFromBig(new(big.Int).Rand(rnd, N))
		want := new(big.Int).Mod(new(big.Int).Mul(a.Big(), b.Big()), N)
		require.Equal(t, 0, a.Mul(b).Big().Cmp(want))
	}
}
