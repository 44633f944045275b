package predicate

import (
	"encoding/binary"
	"sort"

	"github.com/willf/bloom"

	"btc_bruteforce/internal/hashadapt"
)

// prefixEntry tracks how many registered targets share a 16-bit prefix
// and where their extensions start in the secondary table.
type prefixEntry struct {
	count  uint32
	offset uint32
}

// PrefixLookupTable is a two-level lookup: a 16-bit primary table of
// {count, offset} plus a single ascending-sorted secondary table of
// 32-bit extensions, sliced per primary bucket.
type PrefixLookupTable struct {
	primary   [1 << 16]prefixEntry
	secondary []uint32
	found     []bool // parallel to registered targets; write-once false->true.
	targets   [][20]byte

	// prefilter short-circuits misses before touching the primary
	// table when the target count is large; a pure performance
	// short-circuit that does not change Lookup's result.
	prefilter *bloom.BloomFilter
}

const bloomPrefilterThreshold = 64

// BuildPrefixLookup constructs the two-level table from a set of
// registered hash160 targets. Binary-search correctness depends on the
// secondary slice for each 16-bit bucket being ascending, which this
// builder guarantees by sorting per bucket (targets sharing a 32-bit
// extension leave equal neighbours).
func BuildPrefixLookup(targets [][20]byte) *PrefixLookupTable {
	t := &PrefixLookupTable{
		targets: targets,
		found:   make([]bool, len(targets)),
	}

	buckets := make(map[uint16][]uint32)
	for _, h := range targets {
		q := binary.BigEndian.Uint16(h[:2])
		ext := binary.BigEndian.Uint32(h[:4])
		buckets[q] = append(buckets[q], ext)
	}

	t.secondary = make([]uint32, 0, len(targets))
	for q := 0; q < 1<<16; q++ {
		exts, ok := buckets[uint16(q)]
		if !ok {
			continue
		}
		sort.Slice(exts, func(i, j int) bool { return exts[i] < exts[j] })
		t.primary[q] = prefixEntry{count: uint32(len(exts)), offset: uint32(len(t.secondary))}
		t.secondary = append(t.secondary, exts...)
	}

	if len(targets) >= bloomPrefilterThreshold {
		t.prefilter = bloom.NewWithEstimates(uint(len(targets)), 1e-6)
		for _, h := range targets {
			t.prefilter.Add(h[:4])
		}
	}

	return t
}

// Lookup reports whether h160 matches a registered target. A bucket
// holding exactly one extension is still handled uniformly by the
// binary search below, since a slice of length 1 is trivially "found"
// by equality.
func (t *PrefixLookupTable) Lookup(h160 [20]byte) bool {
	if t.prefilter != nil && !t.prefilter.Test(h160[:4]) {
		return false
	}
	q := binary.BigEndian.Uint16(h160[:2])
	entry := t.primary[q]
	if entry.count == 0 {
		return false
	}
	ext := binary.BigEndian.Uint32(h160[:4])
	slice := t.secondary[entry.offset : entry.offset+entry.count]
	idx := sort.Search(len(slice), func(i int) bool { return slice[i] >= ext })
	return idx < len(slice) && slice[idx] == ext
}

// PrefixLookupPredicate wires PrefixLookupTable into the Evaluator
// interface for hash160-based address prefix search (P2PKH/P2SH/P2WPKH
// targets; address codecs are applied upstream to produce the hash160
// fingerprints this table holds).
type PrefixLookupPredicate struct {
	Table *PrefixLookupTable
	Sink  Sink
}

func (p *PrefixLookupPredicate) Kind() Kind { return KindPrefixLookup }

func (p *PrefixLookupPredicate) Evaluate(c Candidate) bool {
	hit := false
	if c.Mode == ModeCompressed || c.Mode == ModeBoth {
		h := hashadapt.Hash160(c.Compressed)
		if p.Table.Lookup(h) {
			p.report(c, h[:])
			hit = true
		}
	}
	if c.Mode == ModeUncompressed || c.Mode == ModeBoth {
		h := hashadapt.Hash160(c.Uncompressed)
		if p.Table.Lookup(h) {
			p.report(c, h[:])
			hit = true
		}
	}
	return hit
}

func (p *PrefixLookupPredicate) report(c Candidate, raw []byte) {
	p.Sink.Report(MatchRecord{
		ThreadID: c.ThreadID,
		Incr:     c.Incr,
		Endo:     c.Endo,
		Sign:     c.Sign,
		Mode:     c.Mode,
		RawBytes: append([]byte(nil), raw...),
		K0:       c.K0,
		Offset:   c.Offset,
		Kind:     KindPrefixLookup,
	})
}
