package predicate

// SigRPredicate applies the identical bitmask test as MaskPredicate but
// against an ephemeral signature nonce's R.x rather than a public key's
// X (spec.md §4.3): every candidate scalar k produced by BatchEngine
// doubles as the ECDSA/BIP-340 nonce R = k*G, so the search for an
// R-value prefix reuses exactly the same point stream as a public-key
// search. On a hit, MatchReconstructor recovers the nonce scalar k and
// re-checks R.x; no (r, s) signature is computed, and no message or
// signing key is taken as input anywhere in the search.
type SigRPredicate struct {
	Targets []MaskTarget
	Sink    Sink
}

func (p *SigRPredicate) Kind() Kind { return KindSigR }

func (p *SigRPredicate) Evaluate(c Candidate) bool {
	hit := false
	for _, t := range p.Targets {
		if t.Matches(c.X) {
			xb := c.X.Bytes32()
			p.Sink.Report(MatchRecord{
				ThreadID: c.ThreadID,
				Incr:     c.Incr,
				Endo:     c.Endo,
				Sign:     c.Sign,
				Mode:     c.Mode,
				RawBytes: append([]byte(nil), xb[:]...),
				K0:       c.K0,
				Offset:   c.Offset,
				Kind:     KindSigR,
			})
			hit = true
		}
	}
	return hit
}
