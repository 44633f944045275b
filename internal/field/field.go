// Package field implements 256-bit modular arithmetic over the secp256k1
// field prime p and, in scalar.go, over the curve order n. Values are
// stored as four 64-bit little-endian limbs as required by the search
// engine's data model; the arithmetic itself is performed through
// math/big so that every exposed operation is provably correct without
// hand-verifying carry propagation across limbs.
package field

import (
	"math/big"

	"github.com/cockroachdb/errors"
)

// P is the secp256k1 field prime: 2^256 - 2^32 - 977.
var P = mustHex("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f")

func mustHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("field: bad constant " + s)
	}
	return v
}

// Element is a value in [0, P) represented as four 64-bit little-endian
// limbs: n[0] is the least significant 64 bits.
type Element struct {
	n [4]uint64
}

// Zero and One are canonical constants.
var (
	Zero = Element{}
	One  = Element{n: [4]uint64{1, 0, 0, 0}}
)

// NewFromBig reduces v mod P and stores it in limb form.
func NewFromBig(v *big.Int) Element {
	r := new(big.Int).Mod(v, P)
	return fromBig(r)
}

// NewFromBytes32 interprets b (32 bytes, big-endian) as an element mod P.
func NewFromBytes32(b []byte) (Element, error) {
	if len(b) != 32 {
		return Element{}, errors.Newf("field: expected 32 bytes, got %d", len(b))
	}
	return NewFromBig(new(big.Int).SetBytes(b)), nil
}

func fromBig(v *big.Int) Element {
	var e Element
	b := make([]byte, 32)
	vb := v.Bytes()
	copy(b[32-len(vb):], vb)
	for i := 0; i < 4; i++ {
		off := 32 - 8*(i+1)
		e.n[i] = beUint64(b[off : off+8])
	}
	return e
}

func beUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// Big returns the element's value as a *big.Int in [0, P).
func (e Element) Big() *big.Int {
	b := make([]byte, 32)
	for i := 0; i < 4; i++ {
		off := 32 - 8*(i+1)
		v := e.n[i]
		for j := 7; j >= 0; j-- {
			b[off+j] = byte(v)
			v >>= 8
		}
	}
	return new(big.Int).SetBytes(b)
}

// Bytes32 returns the 32-byte big-endian encoding of e.
func (e Element) Bytes32() [32]byte {
	var out [32]byte
	b := e.Big().Bytes()
	copy(out[32-len(b):], b)
	return out
}

// Limbs exposes the little-endian 64-bit limb storage directly, matching
// the data model's invariant that an exposed value lies in [0, P).
func (e Element) Limbs() [4]uint64 { return e.n }

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool { return e.n == [4]uint64{} }

// Equal reports whether e and o represent the same canonical value.
func (e Element) Equal(o Element) bool { return e.n == o.n }

// Add returns e + o mod P.
func (e Element) Add(o Element) Element {
	return fromBig(new(big.Int).Mod(new(big.Int).Add(e.Big(), o.Big()), P))
}

// Sub returns e - o mod P.
func (e Element) Sub(o Element) Element {
	return fromBig(new(big.Int).Mod(new(big.Int).Sub(e.Big(), o.Big()), P))
}

// Neg returns -e mod P.
func (e Element) Neg() Element {
	if e.IsZero() {
		return Zero
	}
	return fromBig(new(big.Int).Sub(P, e.Big()))
}

// Mul returns e * o mod P.
func (e Element) Mul(o Element) Element {
	return fromBig(new(big.Int).Mod(new(big.Int).Mul(e.Big(), o.Big()), P))
}

// Square returns e * e mod P.
func (e Element) Square() Element { return e.Mul(e) }

// Inv returns the modular inverse of e mod P. Inverting zero is
// undefined behavior for the caller; callers on the hot path are
// required to detect a zero product before calling Inv (see BatchInverse).
func (e Element) Inv() Element {
	if e.IsZero() {
		panic("field: inverse of zero")
	}
	return fromBig(new(big.Int).ModInverse(e.Big(), P))
}

// BatchInverse inverts every element of xs in place using Montgomery's
// trick: one real inversion plus 3M multiplications (M for the prefix
// products, 2M for the unwinding pass) instead of M inversions. It returns an error (forcing the caller to rekey and
// discard the pass) if any running prefix product is zero.
func BatchInverse(xs []Element) error {
	m := len(xs)
	if m == 0 {
		return nil
	}
	prefix := make([]Element, m)
	acc := One
	for i := 0; i < m; i++ {
		if xs[i].IsZero() {
			return errors.Newf("field: batch_inverse encountered zero at index %d", i)
		}
		prefix[i] = acc
		acc = acc.Mul(xs[i])
	}
	if acc.IsZero() {
		return errors.New("field: batch_inverse total product is zero")
	}
	inv := acc.Inv()
	for i := m - 1; i >= 0; i-- {
		full := inv.Mul(prefix[i])
		inv = inv.Mul(xs[i])
		xs[i] = full
	}
	return nil
}
