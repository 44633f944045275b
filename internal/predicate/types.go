// Package predicate implements the five predicate variants of spec.md
// §4.3: PrefixLookup, Pattern, Mask, SigR, and Taproot, plus the Txid
// variant from the domain stack's txid search mode. Every variant
// implements the same Evaluator shape so BatchEngine can dispatch
// through one interface per spec.md §9 ("a tagged enum with a single
// evaluate dispatch").
package predicate

import (
	"btc_bruteforce/internal/curve"
	"btc_bruteforce/internal/field"
)

// Mode selects which serialization(s) of a candidate public key are
// hashed before matching, per spec.md §4.4's predicate dispatch.
type Mode int

const (
	ModeCompressed Mode = iota
	ModeUncompressed
	ModeBoth
)

// Kind tags which of the six predicate variants is active.
type Kind int

const (
	KindPrefixLookup Kind = iota
	KindPattern
	KindMask
	KindSigR
	KindTaproot
	KindTxid
)

// MatchRecord is spec.md §3's MatchRecord, extended with the exact k0
// snapshot per SPEC_FULL.md §C.3 (resolving spec.md §9 Open Question 1):
// every hit carries the worker's base scalar at the moment of the hit,
// rather than relying on the orchestrator's "current" state later.
type MatchRecord struct {
	ThreadID uint32
	Incr     int64 // signed offset of the visited point from the pass center, c = k0 + curve.Half.
	Endo     int   // 0, 1, or 2: which of {identity, lambda, lambda^2} produced this candidate.
	Sign     int8  // +1 for the point as computed, -1 for its y-negation (see internal/reconstruct).
	Mode     Mode
	RawBytes []byte // hash160, x-prefix, R.x, Q.x, or txid bytes depending on Kind.
	K0       field.Scalar
	Offset   bool // true when the search used a startPubKey offset (see internal/reconstruct).
	Kind     Kind
}

// Sink receives hits. Report is called synchronously from the
// predicate, inside the worker's hot loop; orchestrator.OutputSink
// reconstructs the record and writes the formatted result under its
// mutex before Report returns.
type Sink interface {
	Report(MatchRecord)
}

// Evaluator is the dispatch surface BatchEngine calls once per visited
// candidate point.
type Evaluator interface {
	// Evaluate is called with the affine point's raw coordinate bytes
	// already serialized by the caller according to Mode (BatchEngine
	// owns serialization so Evaluator implementations stay hash-only).
	// threadID/incr/endo/k0 are passed through verbatim into any
	// resulting MatchRecord. Evaluate never aborts on a miss; it simply
	// returns false (spec.md §4.3's failure semantics).
	Evaluate(candidate Candidate) bool
	Kind() Kind
}

// Candidate bundles everything a predicate might need to test and, on a
// hit, to build a MatchRecord.
type Candidate struct {
	ThreadID     uint32
	Incr         int64
	Endo         int
	Sign         int8
	Mode         Mode
	K0           field.Scalar
	Offset       bool
	Compressed   []byte // 33-byte SEC1, present when Mode != ModeUncompressed-only misses
	Uncompressed []byte
	X            field.Element // raw affine X, used by Mask/SigR/Taproot
	P            curve.Point   // full affine point, used by Taproot to compute P + t*G
}
