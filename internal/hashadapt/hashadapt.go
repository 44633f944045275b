// Package hashadapt wraps the hash primitives the search engine's
// predicates are built on: SHA-256, RIPEMD-160, and the BIP-340 tagged
// hash, composed into hash160 in both compressed and uncompressed
// flavors. These are pure, deterministic functions (spec.md §7: "no
// retry logic needed, none expected to fail").
package hashadapt

import (
	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/ripemd160"

	"btc_bruteforce/internal/curve"
)

// SHA256 hashes data with a SIMD-accelerated implementation, since the
// hot loop calls it up to 6 times per candidate point (spec.md §4.4).
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// RIPEMD160 hashes data with the stdlib-adjacent golang.org/x/crypto
// implementation; there is no SIMD variant in the ecosystem worth
// wiring in since RIPEMD-160 is only ever applied once per candidate,
// to a 32-byte SHA-256 digest.
func RIPEMD160(data []byte) [20]byte {
	h := ripemd160.New()
	h.Write(data)
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Hash160 computes RIPEMD160(SHA256(data)).
func Hash160(data []byte) [20]byte {
	s := SHA256(data)
	return RIPEMD160(s[:])
}

// SerializeCompressed produces the 33-byte SEC1 compressed encoding
// 0x02/0x03 || X.
func SerializeCompressed(p curve.Point) []byte {
	out := make([]byte, 33)
	xb := p.X.Bytes32()
	if p.Y.Big().Bit(0) == 0 {
		out[0] = 0x02
	} else {
		out[0] = 0x03
	}
	copy(out[1:], xb[:])
	return out
}

// SerializeUncompressed produces the 65-byte SEC1 uncompressed encoding
// 0x04 || X || Y.
func SerializeUncompressed(p curve.Point) []byte {
	out := make([]byte, 65)
	out[0] = 0x04
	xb := p.X.Bytes32()
	yb := p.Y.Bytes32()
	copy(out[1:33], xb[:])
	copy(out[33:65], yb[:])
	return out
}

// Hash160Compressed is hash160(compress(P)), spec.md §6's contract.
func Hash160Compressed(p curve.Point) [20]byte {
	return Hash160(SerializeCompressed(p))
}

// Hash160Uncompressed is hash160(0x04 || P.X || P.Y).
func Hash160Uncompressed(p curve.Point) [20]byte {
	return Hash160(SerializeUncompressed(p))
}

// TaggedHash implements the BIP-340 construction:
// SHA256(SHA256(tag) || SHA256(tag) || data).
func TaggedHash(tag string, data []byte) [32]byte {
	tagHash := SHA256([]byte(tag))
	buf := make([]byte, 0, 32+32+len(data))
	buf = append(buf, tagHash[:]...)
	buf = append(buf, tagHash[:]...)
	buf = append(buf, data...)
	return SHA256(buf)
}
