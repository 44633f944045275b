package field

import "math/big"

// N is the secp256k1 curve order.
var N = mustHex("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")

// Scalar is a value in [0, N). It shares Element's limb layout and
// big.Int-backed arithmetic but reduces mod N instead of P.
type Scalar struct {
	n [4]uint64
}

var (
	ScalarZero = Scalar{}
	ScalarOne  = Scalar{n: [4]uint64{1, 0, 0, 0}}
)

// NewScalarFromBig reduces v mod N.
func NewScalarFromBig(v *big.Int) Scalar {
	r := new(big.Int).Mod(v, N)
	return scalarFromBig(r)
}

// NewScalarFromBytes32 interprets b (32 bytes, big-endian) mod N.
func NewScalarFromBytes32(b []byte) Scalar {
	return NewScalarFromBig(new(big.Int).SetBytes(b))
}

// NewScalarFromUint64 is a convenience constructor for small scalars
// (thread offsets, loop counters) used when seeding WorkerState.
func NewScalarFromUint64(v uint64) Scalar {
	return Scalar{n: [4]uint64{v, 0, 0, 0}}
}

func scalarFromBig(v *big.Int) Scalar {
	e := fromBig(v)
	return Scalar{n: e.n}
}

func (s Scalar) Big() *big.Int { return Element{n: s.n}.Big() }

func (s Scalar) Bytes32() [32]byte { return Element{n: s.n}.Bytes32() }

func (s Scalar) Limbs() [4]uint64 { return s.n }

func (s Scalar) IsZero() bool { return s.n == [4]uint64{} }

func (s Scalar) Equal(o Scalar) bool { return s.n == o.n }

func (s Scalar) Add(o Scalar) Scalar {
	return scalarFromBig(new(big.Int).Mod(new(big.Int).Add(s.Big(), o.Big()), N))
}

func (s Scalar) Sub(o Scalar) Scalar {
	return scalarFromBig(new(big.Int).Mod(new(big.Int).Sub(s.Big(), o.Big()), N))
}

func (s Scalar) Neg() Scalar {
	if s.IsZero() {
		return ScalarZero
	}
	return scalarFromBig(new(big.Int).Sub(N, s.Big()))
}

func (s Scalar) Mul(o Scalar) Scalar {
	return scalarFromBig(new(big.Int).Mod(new(big.Int).Mul(s.Big(), o.Big()), N))
}

// AddUint64 returns s + v mod N for a small unsigned iteration offset v.
// Negative offsets are handled by the caller (reconstruct's scalarFor
// subtracts their absolute value with Sub).
func (s Scalar) AddUint64(v uint64) Scalar {
	return s.Add(NewScalarFromUint64(v))
}

// ModN reduces an arbitrary big.Int mod N, exposed for callers outside
// this package that accumulate wide intermediate values (e.g. t = tagged
// hash digest interpreted as an integer before taproot tweaking).
func ModN(v *big.Int) Scalar { return NewScalarFromBig(v) }
