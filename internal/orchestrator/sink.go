package orchestrator

import (
	"fmt"
	"io"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"btc_bruteforce/internal/hashadapt"
	"btc_bruteforce/internal/predicate"
	"btc_bruteforce/internal/reconstruct"
)

// OutputSink is spec.md §5's "match output sink... protected by a
// single mutex". It reconstructs every reported hit and formats it per
// spec.md §6's output line contract. Any worker may call Report; the
// critical section is bounded to one formatted write.
type OutputSink struct {
	mu   sync.Mutex
	w    io.Writer
	rc   *reconstruct.Reconstructor
	net  *chaincfg.Params
	Hits int
}

// NewOutputSink builds a sink writing to w (typically os.Stdout or an
// append-mode result file, per spec.md §6).
func NewOutputSink(w io.Writer, rc *reconstruct.Reconstructor, net *chaincfg.Params) *OutputSink {
	if net == nil {
		net = &chaincfg.MainNetParams
	}
	return &OutputSink{w: w, rc: rc, net: net}
}

// Report implements predicate.Sink. Reconstruction happens outside the
// mutex so the critical section stays bounded to formatting and the
// write itself (spec.md §9's "scoped resources" guidance).
func (s *OutputSink) Report(r predicate.MatchRecord) {
	result, err := s.rc.Reconstruct(r)
	if err != nil {
		// spec.md §7: a verification mismatch is logged by the
		// reconstructor itself and never written to the result file.
		return
	}

	line := s.format(r, result)

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.w, line)
	s.Hits++
}

func (s *OutputSink) format(r predicate.MatchRecord, result reconstruct.Result) string {
	privBytes := result.PrivateKey.Bytes32()
	priv, _ := btcec.PrivKeyFromBytes(privBytes[:])

	switch r.Kind {
	case predicate.KindPrefixLookup:
		var addr string
		if len(r.RawBytes) == 20 {
			var h20 [20]byte
			copy(h20[:], r.RawBytes)
			if a, err := btcutil.NewAddressPubKeyHash(h20[:], s.net); err == nil {
				addr = a.EncodeAddress()
			}
		}
		compressed := r.Mode != predicate.ModeUncompressed
		if r.Mode == predicate.ModeBoth {
			hc := hashadapt.Hash160Compressed(result.PublicKey)
			compressed = string(hc[:]) == string(r.RawBytes)
		}
		wif, _ := btcutil.NewWIF(priv, s.net, compressed)
		return fmt.Sprintf("PubAddress: %s\nPriv (WIF): %s\nPriv (HEX): 0x%x\n", addr, wif.String(), privBytes[:])
	case predicate.KindPattern:
		wif, _ := btcutil.NewWIF(priv, s.net, r.Mode != predicate.ModeUncompressed)
		return fmt.Sprintf("PubAddress: %s\nPriv (WIF): %s\nPriv (HEX): 0x%x\n", string(r.RawBytes), wif.String(), privBytes[:])
	case predicate.KindTxid:
		wif, _ := btcutil.NewWIF(priv, s.net, r.Mode != predicate.ModeUncompressed)
		return fmt.Sprintf("Txid: %x\nPriv (WIF): %s\nPriv (HEX): 0x%x\n", r.RawBytes, wif.String(), privBytes[:])
	case predicate.KindMask:
		return fmt.Sprintf("Mask match X: 0x%x\nPriv (HEX): 0x%x\n", r.RawBytes, privBytes[:])
	case predicate.KindSigR:
		return fmt.Sprintf("SigR match R.x: 0x%x\nPriv (HEX): 0x%x\n", r.RawBytes, privBytes[:])
	case predicate.KindTaproot:
		return fmt.Sprintf("Taproot match Q.x: 0x%x\nPriv (HEX): 0x%x\n", r.RawBytes, privBytes[:])
	default:
		return fmt.Sprintf("Match: 0x%x\nPriv (HEX): 0x%x\n", r.RawBytes, privBytes[:])
	}
}
