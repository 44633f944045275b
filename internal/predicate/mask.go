package predicate

import "btc_bruteforce/internal/field"

// MaskTarget is spec.md §3's {value, mask}: a candidate x matches iff
// (x & mask) == (value & mask), compared limb by limb.
type MaskTarget struct {
	Value [4]uint64
	Mask  [4]uint64
}

// Matches reports whether x satisfies t.
func (t MaskTarget) Matches(x field.Element) bool {
	xl := x.Limbs()
	for i := 0; i < 4; i++ {
		if xl[i]&t.Mask[i] != t.Value[i]&t.Mask[i] {
			return false
		}
	}
	return true
}

// MaskPredicate matches a bitmask against the raw affine X of each
// candidate. Per spec.md §4.4, mask predicates test x directly and do
// not need a compressed/uncompressed serialization, but the engine
// still enumerates both signed incrs so reconstruction can map back to
// distinct scalars (endomorphism does not change y, so a y-negated
// candidate has the same x and would otherwise look like a duplicate).
type MaskPredicate struct {
	Targets []MaskTarget
	Sink    Sink
}

func (p *MaskPredicate) Kind() Kind { return KindMask }

func (p *MaskPredicate) Evaluate(c Candidate) bool {
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
				Kind:     KindMask,
			})
			hit = true
		}
	}
	return hit
}
