// Package curve implements secp256k1 scalar, point, and signature
// primitives for the two-party signing engine.
package curve

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"
)

var (
	curveS256       = btcec.S256()
	curveS256Params = curveS256.Params()
	curveHalfOrder  = new(big.Int).Rsh(curveS256.N, 1)

	ErrOutOfRangeScalar = errors.New("scalar out of range")

	zeroBigInt big.Int
)

// Order returns the secp256k1 group order q.
func Order() *big.Int {
	return curveS256Params.N
}

// Scalar is an integer modulo the secp256k1 group order.
type Scalar struct {
	value big.Int
}

// NewScalar reduces an arbitrary big.Int into the scalar field.
func NewScalar(v *big.Int) Scalar {
	var s Scalar
	s.value.Mod(v, curveS256Params.N)
	return s
}

// ScalarFromBytes decodes a 32 byte big endian scalar, reducing it mod q.
func ScalarFromBytes(b []byte) Scalar {
	var v big.Int
	v.SetBytes(b)
	return NewScalar(&v)
}

// RandomScalar draws a uniformly random non-zero scalar.
func RandomScalar() (Scalar, error) {
	for {
		v, err := rand.Int(rand.Reader, curveS256Params.N)
		if err != nil {
			return Scalar{}, errors.Wrap(err, "random")
		}
		if v.Sign() != 0 {
			return Scalar{value: *v}, nil
		}
	}
}

// IsZero returns true if the scalar is zero.
func (s Scalar) IsZero() bool {
	return s.value.Sign() == 0
}

// Int returns a copy of the underlying big.Int.
func (s Scalar) Int() *big.Int {
	return new(big.Int).Set(&s.value)
}

// Bytes returns the canonical 32 byte big endian encoding.
func (s Scalar) Bytes() []byte {
	b := s.value.Bytes()
	if len(b) == 32 {
		return b
	}
	result := make([]byte, 32)
	copy(result[32-len(b):], b)
	return result
}

func (s Scalar) String() string {
	return hex.EncodeToString(s.Bytes())
}

func (s Scalar) Equal(o Scalar) bool {
	return s.value.Cmp(&o.value) == 0
}

// Add returns s + o mod q.
func (s Scalar) Add(o Scalar) Scalar {
	var r big.Int
	r.Add(&s.value, &o.value)
	return NewScalar(&r)
}

// Sub returns s - o mod q.
func (s Scalar) Sub(o Scalar) Scalar {
	var r big.Int
	r.Sub(&s.value, &o.value)
	return NewScalar(&r)
}

// Mul returns s * o mod q.
func (s Scalar) Mul(o Scalar) Scalar {
	var r big.Int
	r.Mul(&s.value, &o.value)
	return NewScalar(&r)
}

// Neg returns -s mod q.
func (s Scalar) Neg() Scalar {
	var r big.Int
	r.Neg(&s.value)
	return NewScalar(&r)
}

// Inverse returns the modular inverse of s, or an error if s is zero.
func (s Scalar) Inverse() (Scalar, error) {
	if s.IsZero() {
		return Scalar{}, errors.New("inverse of zero scalar")
	}
	var r big.Int
	r.ModInverse(&s.value, curveS256Params.N)
	return Scalar{value: r}, nil
}

// Mod reduces an arbitrary big.Int by the curve order and returns the scalar.
func Mod(v *big.Int) Scalar {
	return NewScalar(v)
}

// MulBase returns the point G*s.
func (s Scalar) MulBase() Point {
	x, y := curveS256.ScalarBaseMult(s.value.Bytes())
	return Point{X: *x, Y: *y}
}

func privateKeyIsValid(b []byte) error {
	if bigIntIsZero(b) {
		return ErrOutOfRangeScalar
	}
	if new(big.Int).SetBytes(b).Cmp(curveS256Params.N) >= 0 {
		return ErrOutOfRangeScalar
	}
	return nil
}

func bigIntIsZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
