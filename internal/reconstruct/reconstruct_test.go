package reconstruct

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"btc_bruteforce/internal/curve"
	"btc_bruteforce/internal/field"
	"btc_bruteforce/internal/hashadapt"
	"btc_bruteforce/internal/predicate"
)

// Invariant 2 — reconstructing a PrefixLookup match from (k0, incr,
// endo, sign) and recomputing reconstructed*G must reproduce the
// match record's hash160 exactly.
func TestReconstructPrefixLookupMatch(t *testing.T) {
	k0 := field.NewScalarFromBig(big.NewInt(7))
	center := k0.AddUint64(uint64(curve.Half))
	incr := int64(3)
	k := center.AddUint64(uint64(incr))

	p := curve.ScalarMultWindowed(k, curve.Generator)
	h := hashadapt.Hash160Compressed(p)

	record := predicate.MatchRecord{
		ThreadID: 0,
		Incr:     incr,
		Endo:     0,
		Sign:     1,
		Mode:     predicate.ModeCompressed,
		RawBytes: h[:],
		K0:       k0,
		Kind:     predicate.KindPrefixLookup,
	}

	rc := New(nil, nil)
	result, err := rc.Reconstruct(record)
	require.NoError(t, err)
	require.True(t, result.PrivateKey.Equal(k))

	gotHash := hashadapt.Hash160Compressed(result.PublicKey)
	require.Equal(t, h, gotHash)
}

func TestReconstructWithEndomorphism(t *testing.T) {
	k0 := field.NewScalarFromBig(big.NewInt(42))
	center := k0.AddUint64(uint64(curve.Half))
	incr := int64(-5)
	kBase := center.Sub(field.NewScalarFromUint64(5))
	k := kBase.Mul(curve.Lambda)

	p := curve.ScalarMultWindowed(k, curve.Generator)
	h := hashadapt.Hash160Compressed(p)

	record := predicate.MatchRecord{
		Incr:     incr,
		Endo:     1,
		Sign:     1,
		Mode:     predicate.ModeCompressed,
		RawBytes: h[:],
		K0:       k0,
		Kind:     predicate.KindPrefixLookup,
	}

	rc := New(nil, nil)
	result, err := rc.Reconstruct(record)
	require.NoError(t, err)
	require.True(t, result.PrivateKey.Equal(k))
}

func TestReconstructMismatchReturnsError(t *testing.T) {
	k0 := field.NewScalarFromBig(big.NewInt(1))
	record := predicate.MatchRecord{
		Incr:     0,
		Endo:     0,
		Sign:     1,
		Mode:     predicate.ModeCompressed,
		RawBytes: make([]byte, 20), // will not match any real hash160
		K0:       k0,
		Kind:     predicate.KindPrefixLookup,
	}
	rc := New(nil, nil)
	_, err := rc.Reconstruct(record)
	require.Error(t, err)
}
