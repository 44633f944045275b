// Package reconstruct implements spec.md §4.5's MatchReconstructor:
// given a MatchRecord and the worker's k0 snapshot at match time, it
// recovers the exact private scalar and re-verifies the predicate
// end-to-end.
package reconstruct

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"btc_bruteforce/internal/curve"
	"btc_bruteforce/internal/field"
	"btc_bruteforce/internal/hashadapt"
	"btc_bruteforce/internal/predicate"
)

// Result is the reconstructed private scalar plus the derived public
// key, ready for WIF/hex formatting by the output sink.
type Result struct {
	PrivateKey field.Scalar
	PublicKey  curve.Point
}

// Reconstructor re-derives private scalars from match records. StartPubKey
// is the global offset-search public key, if any (spec.md §4.5).
// TxidTemplate mirrors the active predicate.TxidPredicate's template so a
// KindTxid match can be independently re-verified rather than trusted
// from the hot loop.
type Reconstructor struct {
	StartPubKey  *curve.Point
	TxidTemplate *predicate.TxidTemplate
	Log          *logrus.Logger
}

// New builds a Reconstructor; log may be nil, in which case
// logrus.StandardLogger() is used.
func New(startPubKey *curve.Point, log *logrus.Logger) *Reconstructor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconstructor{StartPubKey: startPubKey, Log: log}
}

// scalarFor computes the absolute private scalar for a record, applying
// endomorphism scaling and sign negation in that order (both are
// linear maps over the scalar field, so the order does not affect the
// result): k = (k0 + Half + incr) * lambda^endo, then negated if
// Sign < 0.
func scalarFor(r predicate.MatchRecord) field.Scalar {
	center := r.K0.AddUint64(uint64(curve.Half))
	var k field.Scalar
	if r.Incr >= 0 {
		k = center.AddUint64(uint64(r.Incr))
	} else {
		k = center.Sub(field.NewScalarFromUint64(uint64(-r.Incr)))
	}

	switch r.Endo {
	case 1:
		k = k.Mul(curve.Lambda)
	case 2:
		k = k.Mul(curve.LambdaSquared)
	}

	if r.Sign < 0 {
		k = k.Neg()
	}
	return k
}

// Reconstruct recovers the private scalar for a hit and re-verifies the
// predicate end-to-end (spec.md §4.5, §7's "match-verification
// mismatch" error kind). A mismatch logs a warning and returns an
// error; per spec.md §7 the caller must not write the record to the
// result file on that path. If k does not verify, a second attempt with
// k negated is made, since spec.md §4.5 allows it to cover the symmetric
// case transparently. KindPattern records are accepted without
// re-deriving and re-matching the address text.
func (rc *Reconstructor) Reconstruct(r predicate.MatchRecord) (Result, error) {
	k := scalarFor(r)

	res, ok := rc.tryVerify(r, k)
	if ok {
		return res, nil
	}

	res, ok = rc.tryVerify(r, k.Neg())
	if ok {
		return res, nil
	}

	rc.Log.WithFields(logrus.Fields{
		"thread": r.ThreadID,
		"incr":   r.Incr,
		"endo":   r.Endo,
		"sign":   r.Sign,
		"kind":   r.Kind,
	}).Warn("match-reconstruction mismatch: predicate did not re-verify")
	return Result{}, errors.New("reconstruct: predicate re-evaluation mismatch")
}

func (rc *Reconstructor) tryVerify(r predicate.MatchRecord, k field.Scalar) (Result, bool) {
	p := curve.ScalarMultWindowed(k, curve.Generator)
	if rc.StartPubKey != nil && r.Offset {
		p = curve.Add(p, *rc.StartPubKey)
	}

	switch r.Kind {
	case predicate.KindPrefixLookup, predicate.KindPattern:
		var h [20]byte
		if r.Mode == predicate.ModeUncompressed {
			h = hashadapt.Hash160Uncompressed(p)
		} else {
			h = hashadapt.Hash160Compressed(p)
		}
		if r.Mode == predicate.ModeBoth && !bytesPrefixEqual(h[:], r.RawBytes) {
			h = hashadapt.Hash160Uncompressed(p)
		}
		if r.Kind == predicate.KindPrefixLookup && !bytesPrefixEqual(h[:], r.RawBytes) {
			return Result{}, false
		}
		return Result{PrivateKey: k, PublicKey: p}, true
	case predicate.KindTxid:
		var h [20]byte
		if r.Mode == predicate.ModeUncompressed {
			h = hashadapt.Hash160Uncompressed(p)
		} else {
			h = hashadapt.Hash160Compressed(p)
		}
		if rc.TxidTemplate == nil {
			return Result{}, false
		}
		txid := predicate.Sha256d(rc.TxidTemplate.Fill(h))
		if !bytesPrefixEqual(txid[:], r.RawBytes) {
			return Result{}, false
		}
		return Result{PrivateKey: k, PublicKey: p}, true
	case predicate.KindMask, predicate.KindSigR:
		xb := p.X.Bytes32()
		if !bytesPrefixEqual(xb[:], r.RawBytes) {
			return Result{}, false
		}
		return Result{PrivateKey: k, PublicKey: p}, true
	case predicate.KindTaproot:
		xb := p.X.Bytes32()
		tb := predicate.Tweak(xb)
		t := field.NewScalarFromBytes32(tb[:])
		q := curve.Add(p, curve.ScalarMultWindowed(t, curve.Generator))
		qb := q.X.Bytes32()
		if !bytesPrefixEqual(qb[:], r.RawBytes) {
			return Result{}, false
		}
		return Result{PrivateKey: k, PublicKey: p}, true
	default:
		return Result{}, false
	}
}

func bytesPrefixEqual(full, expect []byte) bool {
	if len(expect) > len(full) {
		return false
	}
	for i := range expect {
		if full[i] != expect[i] {
			return false
		}
	}
	return true
}
