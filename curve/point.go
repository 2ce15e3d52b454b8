package curve

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

const PointCompressedLength = 33

// Point is an affine point on the secp256k1 curve. The zero value is the
// point at infinity.
type Point struct {
	X, Y big.Int
}

// Generator returns the secp256k1 base point G.
func Generator() Point {
	return Point{X: *curveS256Params.Gx, Y: *curveS256Params.Gy}
}

// IsInfinity returns true for the identity element.
func (p Point) IsInfinity() bool {
	return p.X.Sign() == 0 && p.Y.Sign() == 0
}

// Add returns p + o.
func (p Point) Add(o Point) Point {
	if p.IsInfinity() {
		return o
	}
	if o.IsInfinity() {
		return p
	}
	x, y := curveS256.Add(&p.X, &p.Y, &o.X, &o.Y)
	return Point{X: *x, Y: *y}
}

// Mul returns p * s (scalar multiplication).
func (p Point) Mul(s Scalar) Point {
	x, y := curveS256.ScalarMult(&p.X, &p.Y, s.value.Bytes())
	return Point{X: *x, Y: *y}
}

// Neg returns the additive inverse of p.
func (p Point) Neg() Point {
	if p.IsInfinity() {
		return p
	}
	var y big.Int
	y.Sub(curveS256Params.P, &p.Y)
	return Point{X: *new(big.Int).Set(&p.X), Y: y}
}

// Equal compares two points by affine coordinates.
func (p Point) Equal(o Point) bool {
	return p.X.Cmp(&o.X) == 0 && p.Y.Cmp(&o.Y) == 0
}

// XScalar returns the x coordinate reduced modulo the group order, as used
// when deriving the `r` component of a signature from a nonce point.
func (p Point) XScalar() Scalar {
	return NewScalar(&p.X)
}

// Bytes returns the SEC-1 compressed encoding.
func (p Point) Bytes() []byte {
	result := make([]byte, PointCompressedLength)
	if p.IsInfinity() {
		return result
	}
	result[0] = byte(0x02) + byte(p.Y.Bit(0))
	b := p.X.Bytes()
	copy(result[PointCompressedLength-len(b):], b)
	return result
}

func (p Point) String() string {
	return hex.EncodeToString(p.Bytes())
}

// PointFromBytes decodes a SEC-1 compressed point.
func PointFromBytes(b []byte) (Point, error) {
	if len(b) != PointCompressedLength {
		return Point{}, errors.Errorf("invalid point length: got %d, want %d", len(b),
			PointCompressedLength)
	}

	var x, y big.Int
	x.SetBytes(b[1:])

	ySq := new(big.Int).Exp(&x, big.NewInt(3), nil)
	ySq.Add(ySq, curveS256Params.B)
	ySq.Mod(ySq, curveS256Params.P)

	y.ModSqrt(ySq, curveS256Params.P)
	if y.Sign() == 0 {
		return Point{}, errors.New("point not on curve")
	}

	wantOdd := b[0] == 0x03
	isOdd := y.Bit(0) == 1
	if wantOdd != isOdd {
		y.Sub(curveS256Params.P, &y)
	}

	return Point{X: x, Y: y}, nil
}

func (p Point) GoString() string {
	return fmt.Sprintf("Point{%s}", p.String())
}
