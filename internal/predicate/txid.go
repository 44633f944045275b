package predicate

import "btc_bruteforce/internal/hashadapt"

// TxidTemplate is a transaction skeleton with a single hole where the
// candidate's hash160 (inside a P2PKH/P2WPKH scriptPubKey) is spliced
// in before hashing, used by the Txid predicate. The caller is
// responsible for constructing a template whose length does not change
// when the hole is filled (fixed-size hash160 substitution).
type TxidTemplate struct {
	Bytes     []byte // raw serialized transaction
	HoleStart int    // byte offset where the 20-byte hash160 goes
}

// Fill splices h160 into the template's hole and returns the resulting
// serialized transaction bytes.
func (t TxidTemplate) Fill(h160 [20]byte) []byte {
	out := append([]byte(nil), t.Bytes...)
	copy(out[t.HoleStart:t.HoleStart+20], h160[:])
	return out
}

// TxidPredicate matches a prefix of SHA256d(tx) (Bitcoin's txid, which
// is the double-SHA256 of the serialized transaction, displayed
// byte-reversed) against registered prefix targets.
type TxidPredicate struct {
	Template TxidTemplate
	Prefixes [][]byte // each a prefix of the little-endian txid bytes
	Sink     Sink
}

func (p *TxidPredicate) Kind() Kind { return KindTxid }

// Sha256d computes SHA256(SHA256(data)).
func Sha256d(data []byte) [32]byte {
	first := hashadapt.SHA256(data)
	return hashadapt.SHA256(first[:])
}

func (p *TxidPredicate) Evaluate(c Candidate) bool {
	hit := false
	if c.Mode == ModeCompressed || c.Mode == ModeBoth {
		hit = p.tryMode(c, hashadapt.Hash160(c.Compressed)) || hit
	}
	if c.Mode == ModeUncompressed || c.Mode == ModeBoth {
		hit = p.tryMode(c, hashadapt.Hash160(c.Uncompressed)) || hit
	}
	return hit
}

func (p *TxidPredicate) tryMode(c Candidate, h160 [20]byte) bool {
	txid := Sha256d(p.Template.Fill(h160))
	for _, prefix := range p.Prefixes {
		if matchesPrefix(txid[:], prefix) {
			p.Sink.Report(MatchRecord{
				ThreadID: c.ThreadID,
				Incr:     c.Incr,
				Endo:     c.Endo,
				Sign:     c.Sign,
				Mode:     c.Mode,
				RawBytes: append([]byte(nil), txid[:]...),
				K0:       c.K0,
				Offset:   c.Offset,
				Kind:     KindTxid,
			})
			return true
		}
	}
	return false
}

func matchesPrefix(full, prefix []byte) bool {
	if len(prefix) > len(full) {
		return false
	}
	for i, b := range prefix {
		if full[i] != b {
			return false
		}
	}
	return true
}
