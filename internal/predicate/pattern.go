package predicate

import (
	"strings"

	"btc_bruteforce/internal/hashadapt"
)

// AddressEncoder turns a hash160 into the textual address spec.md §4.3's
// Pattern predicate matches against. It is supplied by the CLI
// collaborator (spec.md §6: address codecs live outside the core); this
// package only owns the glob matching itself.
type AddressEncoder func(h160 [20]byte) (string, error)

// globMatch implements '*' and '?' wildcard matching by hand: no
// suitable third-party glob matcher for address-shaped strings appears
// anywhere in the retrieved example corpus, and path.Match rejects the
// leading '/'-free patterns base58 addresses need, so this is a
// deliberate stdlib-adjacent leaf (recorded in DESIGN.md).
func globMatch(pattern, s string) bool {
	return globMatchAt(pattern, s, 0, 0)
}

func globMatchAt(pattern, s string, pi, si int) bool {
	for pi < len(pattern) {
		switch pattern[pi] {
		case '*':
			// Collapse consecutive '*' and try every possible match length.
			for pi < len(pattern) && pattern[pi] == '*' {
				pi++
			}
			if pi == len(pattern) {
				return true
			}
			for k := si; k <= len(s); k++ {
				if globMatchAt(pattern[pi:], s, 0, k) {
					return true
				}
			}
			return false
		case '?':
			if si >= len(s) {
				return false
			}
			pi++
			si++
		default:
			if si >= len(s) || pattern[pi] != s[si] {
				return false
			}
			pi++
			si++
		}
	}
	return si == len(s)
}

// PatternPredicate matches a glob over the address derived from each
// candidate's hash160, optionally case-insensitively.
type PatternPredicate struct {
	Patterns      []string
	CaseInsensitive bool
	Encode        AddressEncoder
	Sink          Sink
}

func (p *PatternPredicate) Kind() Kind { return KindPattern }

func (p *PatternPredicate) Evaluate(c Candidate) bool {
	hit := false
	if c.Mode == ModeCompressed || c.Mode == ModeBoth {
		hit = p.tryMode(c, hashadapt.Hash160(c.Compressed)) || hit
	}
	if c.Mode == ModeUncompressed || c.Mode == ModeBoth {
		hit = p.tryMode(c, hashadapt.Hash160(c.Uncompressed)) || hit
	}
	return hit
}

func (p *PatternPredicate) tryMode(c Candidate, h160 [20]byte) bool {
	addr, err := p.Encode(h160)
	if err != nil {
		return false
	}
	cmp := addr
	if p.CaseInsensitive {
		cmp = strings.ToLower(addr)
	}
	for _, pat := range p.Patterns {
		target := pat
		if p.CaseInsensitive {
			target = strings.ToLower(pat)
		}
		if globMatch(target, cmp) {
			p.Sink.Report(MatchRecord{
				ThreadID: c.ThreadID,
				Incr:     c.Incr,
				Endo:     c.Endo,
				Sign:     c.Sign,
				Mode:     c.Mode,
				RawBytes: []byte(addr),
				K0:       c.K0,
				Offset:   c.Offset,
				Kind:     KindPattern,
			})
			return true
		}
	}
	return false
}
