package predicate

import (
	"btc_bruteforce/internal/curve"
	"btc_bruteforce/internal/field"
	"btc_bruteforce/internal/hashadapt"
)

// TaprootPredicate implements spec.md §4.3's Taproot variant: for each
// candidate internal key P = k*G, compute t = tagged_hash("TapTweak",
// P.X) mod n, Q = P + t*G, and mask-test Q.X. Per spec.md §4.4 this
// bypasses the batched group enumeration entirely — BatchEngine's
// caller advances the start point by one G per candidate and calls
// EvaluatePoint directly instead of going through the dx-batching path.
// SPEC_FULL.md §C.2 resolves spec.md §9 Open Question 2 by making this
// predicate available identically on both CPU and GPU worker kinds.
type TaprootPredicate struct {
	Targets []MaskTarget
	Sink    Sink
}

func (p *TaprootPredicate) Kind() Kind { return KindTaproot }

// Tweak returns the raw digest tagged_hash("TapTweak", x); callers
// reduce it mod n (field.NewScalarFromBytes32) to obtain t.
func Tweak(x [32]byte) (t [32]byte) {
	return hashadapt.TaggedHash("TapTweak", x[:])
}

// Evaluate satisfies the Evaluator interface for uniform dispatch from
// configuration code; the hot taproot loop calls EvaluatePoint
// directly since it needs the full point P, not just its serialized
// bytes.
func (p *TaprootPredicate) Evaluate(c Candidate) bool {
	return p.EvaluatePoint(c.P, c)
}

// EvaluatePoint computes Q = P + t*G and reports a hit if Q.X matches
// any registered mask target.
func (p *TaprootPredicate) EvaluatePoint(P curve.Point, c Candidate) bool {
	xb := P.X.Bytes32()
	tb := Tweak(xb)
	t := field.NewScalarFromBytes32(tb[:])
	tG := curve.ScalarMultWindowed(t, curve.Generator)
	Q := curve.Add(P, tG)

	hit := false
	for _, target := range p.Targets {
		if target.Matches(Q.X) {
			qb := Q.X.Bytes32()
			p.Sink.Report(MatchRecord{
				ThreadID: c.ThreadID,
				Incr:     c.Incr,
				Endo:     c.Endo,
				Sign:     c.Sign,
				Mode:     c.Mode,
				RawBytes: append([]byte(nil), qb[:]...),
				K0:       c.K0,
				Offset:   c.Offset,
				Kind:     KindTaproot,
			})
			hit = true
		}
	}
	return hit
}
