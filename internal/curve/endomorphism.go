package curve

import "btc_bruteforce/internal/field"

// Beta and Lambda are the GLV endomorphism constants for secp256k1:
// applying (x, y) -> (Beta*x, y) is equivalent to scalar multiplication
// by Lambda. BetaSquared/LambdaSquared are their squares, used for the
// second endomorphic candidate (endo index 2).
var (
	Beta        = field.NewFromBig(mustHex("7ae96a2b657c07106e64479eac3434e99cf0497512f58995c1396c28719501ee"))
	BetaSquared = Beta.Mul(Beta)

	Lambda        = field.NewScalarFromBig(mustHex("5363ad4cc05c30e0a5261c028812645a122e22ea20816678df02967c1b23bd72"))
	LambdaSquared = Lambda.Mul(Lambda)
)

// Endomorphism returns (Beta^i * P.X, P.Y) for i in {1, 2}. It is
// zero-cost relative to a field multiplication: no curve addition or
// inversion is involved, matching spec.md §4.2.
func Endomorphism(p Point, i int) Point {
	if p.Infinity {
		return p
	}
	switch i {
	case 1:
		return Point{X: Beta.Mul(p.X), Y: p.Y}
	case 2:
		return Point{X: BetaSquared.Mul(p.X), Y: p.Y}
	default:
		panic("curve: endomorphism index must be 1 or 2")
	}
}

// EndoScalar returns k*Lambda^i mod n, the scalar-space counterpart of
// Endomorphism(k*G, i): Endomorphism(ScalarMult(k, G), i).X equals
// ScalarMult(EndoScalar(k, i), G).X.
func EndoScalar(k field.Scalar, i int) field.Scalar {
	switch i {
	case 1:
		return k.Mul(Lambda)
	case 2:
		return k.Mul(LambdaSquared)
	default:
		panic("curve: endomorphism index must be 1 or 2")
	}
}
