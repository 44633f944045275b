// Package curve implements affine secp256k1 point arithmetic: add,
// double, scalar multiplication, and the GLV endomorphism, plus the
// generator table the batched enumeration engine walks. Hot-path
// addition/doubling formulas are the standard affine ones from spec.md
// §4.2; this package does not use Jacobian coordinates because the
// engine already amortizes its one inversion per batch, so there is no
// hot-path division to avoid.
package curve

import (
	"math/big"

	"btc_bruteforce/internal/field"
)

// B is the curve parameter: y^2 = x^3 + 7.
var B = field.NewFromBig(big.NewInt(7))

// Point is an affine secp256k1 point, or the distinguished point at
// infinity when Infinity is true. Points are immutable values: every
// method here returns a new Point rather than mutating the receiver.
type Point struct {
	X, Y     field.Element
	Infinity bool
}

// Generator is secp256k1's base point G.
var Generator = Point{
	X: field.NewFromBig(mustHex("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")),
	Y: field.NewFromBig(mustHex("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8")),
}

func mustHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("curve: bad constant " + s)
	}
	return v
}

// InfinityPoint is the identity element for affine point addition.
var InfinityPoint = Point{Infinity: true}

// Neg returns -P (the reflection of P about the x-axis).
func (p Point) Neg() Point {
	if p.Infinity {
		return p
	}
	return Point{X: p.X, Y: p.Y.Neg()}
}

// Equal reports whether p and o are the same point, including infinity.
func (p Point) Equal(o Point) bool {
	if p.Infinity || o.Infinity {
		return p.Infinity == o.Infinity
	}
	return p.X.Equal(o.X) && p.Y.Equal(o.Y)
}

// Add returns p + o using the standard affine addition/doubling
// formulas. It tolerates aliasing: p, o and the result may share
// underlying storage since Point is an immutable value type.
func Add(p, o Point) Point {
	if p.Infinity {
		return o
	}
	if o.Infinity {
		return p
	}
	if p.X.Equal(o.X) {
		if p.Y.Equal(o.Y) {
			return Double(p)
		}
		// p.X == o.X, p.Y == -o.Y: p + (-p) = infinity.
		return InfinityPoint
	}
	dx := o.X.Sub(p.X)
	dy := o.Y.Sub(p.Y)
	s := dy.Mul(dx.Inv())
	return addWithSlope(p, o, s)
}

// addWithSlope finishes the affine addition once the slope s is known,
// shared by Add (dy/dx) and the batch engine (which supplies a slope
// computed from a batch-inverted dx).
func addWithSlope(p, o Point, s field.Element) Point {
	x3 := s.Square().Sub(p.X).Sub(o.X)
	y3 := s.Mul(p.X.Sub(x3)).Sub(p.Y)
	return Point{X: x3, Y: y3}
}

// AddWithInverseDX adds p and o given the precomputed inverse of
// (o.X - p.X), as supplied by BatchEngine after Montgomery batch
// inversion. p.X must differ from o.X.
func AddWithInverseDX(p, o Point, invDX field.Element) Point {
	dy := o.Y.Sub(p.Y)
	s := dy.Mul(invDX)
	return addWithSlope(p, o, s)
}

// Double returns p + p.
func Double(p Point) Point {
	if p.Infinity || p.Y.IsZero() {
		return InfinityPoint
	}
	three := field.NewFromBig(big.NewInt(3))
	two := field.NewFromBig(big.NewInt(2))
	num := three.Mul(p.X.Square())
	den := two.Mul(p.Y)
	s := num.Mul(den.Inv())
	return addWithSlope(p, p, s)
}

// ScalarMult computes k*P via double-and-add. It is not used on the
// search or verification paths (those call ScalarMultWindowed); it is
// the reference implementation ScalarMultWindowed is tested against.
func ScalarMult(k field.Scalar, p Point) Point {
	result := InfinityPoint
	addend := p
	bits := k.Big()
	for i := 0; i < bits.BitLen(); i++ {
		if bits.Bit(i) == 1 {
			result = Add(result, addend)
		}
		addend = Double(addend)
	}
	return result
}

const windowBits = 4

// ScalarMultWindowed computes k*P using a fixed window of windowBits,
// per spec.md §9's recommendation that taproot's t*G use a windowed
// ladder rather than naive double-and-add. At w=4 it performs at most
// one point addition per 4-bit window (64 for a 256-bit scalar, plus 14
// to build the table) instead of one per set bit; the 256 doublings are
// the same as in ScalarMult.
func ScalarMultWindowed(k field.Scalar, p Point) Point {
	tableSize := 1 << windowBits
	table := make([]Point, tableSize)
	table[0] = InfinityPoint
	table[1] = p
	for i := 2; i < tableSize; i++ {
		table[i] = Add(table[i-1], p)
	}

	bits := k.Big()
	total := bits.BitLen()
	if total == 0 {
		return InfinityPoint
	}
	nibbles := (total + windowBits - 1) / windowBits

	result := InfinityPoint
	for w := nibbles - 1; w >= 0; w-- {
		for s := 0; s < windowBits; s++ {
			result = Double(result)
		}
		idx := 0
		for b := windowBits - 1; b >= 0; b-- {
			bitPos := w*windowBits + b
			idx <<= 1
			if bitPos < total && bits.Bit(bitPos) == 1 {
				idx |= 1
			}
		}
		if idx != 0 {
			result = Add(result, table[idx])
		}
	}
	return result
}
