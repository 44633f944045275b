package predicate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"btc_bruteforce/internal/field"
	"btc_bruteforce/internal/hashadapt"
)

type recordingSink struct {
	records []MatchRecord
}

func (s *recordingSink) Report(r MatchRecord) { s.records = append(s.records, r) }

func TestPrefixLookupHitsAndMisses(t *testing.T) {
	var h1, h2, h3 [20]byte
	h1[0], h1[1], h1[2], h1[3] = 0xAB, 0xCD, 0x01, 0x02
	h2[0], h2[1], h2[2], h2[3] = 0xAB, 0xCD, 0x03, 0x04 // same 16-bit bucket, different 32-bit ext
	h3[0], h3[1] = 0x11, 0x22

	table := BuildPrefixLookup([][20]byte{h1, h2, h3})

	require.True(t, table.Lookup(h1))
	require.True(t, table.Lookup(h2))
	require.True(t, table.Lookup(h3))

	var miss [20]byte
	miss[0], miss[1], miss[2], miss[3] = 0xAB, 0xCD, 0xFF, 0xFF
	require.False(t, table.Lookup(miss))

	var bucketMiss [20]byte
	bucketMiss[0], bucketMiss[1] = 0x99, 0x99
	require.False(t, table.Lookup(bucketMiss))
}

// Edge case: count == 1 in a bucket is still handled correctly by the
// single binary search path (no special-casing required).
func TestPrefixLookupSingleEntryBucket(t *testing.T) {
	var only [20]byte
	only[0], only[1], only[2], only[3] = 0x00, 0x01, 0x02, 0x03
	table := BuildPrefixLookup([][20]byte{only})
	require.True(t, table.Lookup(only))

	var notQuite [20]byte
	notQuite[0], notQuite[1], notQuite[2], notQuite[3] = 0x00, 0x01, 0x02, 0x04
	require.False(t, table.Lookup(notQuite))
}

// Invariant 6: TaggedHash("TapTweak", x) equals
// sha256(sha256("TapTweak") || sha256("TapTweak") || x).
func TestTaggedHashDefinition(t *testing.T) {
	data := []byte("arbitrary payload")
	got := hashadapt.TaggedHash("TapTweak", data)

	tagHash := hashadapt.SHA256([]byte("TapTweak"))
	buf := append(append(append([]byte{}, tagHash[:]...), tagHash[:]...), data...)
	want := hashadapt.SHA256(buf)

	require.Equal(t, want, got)
}

func TestMaskPredicateReportsHit(t *testing.T) {
	sink := &recordingSink{}
	target := MaskTarget{
		Value: [4]uint64{0, 0, 0, 0},
		Mask:  [4]uint64{0, 0, 0, 0xFF00000000000000},
	}
	p := &MaskPredicate{Targets: []MaskTarget{target}, Sink: sink}

	var xb [32]byte // all-zero high byte -> matches
	x, err := field.NewFromBytes32(xb[:])
	require.NoError(t, err)

	hit := p.Evaluate(Candidate{X: x})
	require.True(t, hit)
	require.Len(t, sink.records, 1)
	require.Equal(t, KindMask, sink.records[0].Kind)
}
