// Package bigint exposes the arbitrary-precision integer contract the
// class-group and homomorphic-cipher layers are built on: floor and
// truncated division, extended gcd, modular inverse/exponentiation, bit
// inspection, roots, and primality, all as thin wrappers around
// math/big with explicit error kinds instead of undefined results.
package bigint

import (
	"math/big"

	"github.com/pkg/errors"
)

// Error kinds raised by domain failures in this package. These are never
// retried internally; callers decide whether to retry with fresh input.
var (
	ErrDivideByZero    = errors.New("bigint: division by zero")
	ErrNegativeSqrt    = errors.New("bigint: sqrt of negative value")
	ErrNotInvertible   = errors.New("bigint: value has no modular inverse")
	ErrBufferTooSmall  = errors.New("bigint: destination buffer too small")
)

// Int wraps math/big.Int to carry the package's contract. The zero value
// is the integer zero, same as math/big.Int.
type Int struct {
	v big.Int
}

// New wraps a copy of v.
func New(v *big.Int) Int {
	var i Int
	i.v.Set(v)
	return i
}

// FromInt64 builds an Int from a native integer.
func FromInt64(v int64) Int {
	var i Int
	i.v.SetInt64(v)
	return i
}

// FromString parses a base-radix string, matching math/big.Int.SetString.
func FromString(s string, base int) (Int, bool) {
	var i Int
	_, ok := i.v.SetString(s, base)
	return i, ok
}

// Big returns a copy of the underlying math/big.Int.
func (i Int) Big() *big.Int {
	return new(big.Int).Set(&i.v)
}

func (i Int) String() string {
	return i.v.String()
}

func (i Int) Sign() int {
	return i.v.Sign()
}

func (i Int) IsZero() bool {
	return i.v.Sign() == 0
}

func (i Int) Cmp(o Int) int {
	return i.v.Cmp(&o.v)
}

func (i Int) Add(o Int) Int {
	var r Int
	r.v.Add(&i.v, &o.v)
	return r
}

func (i Int) Sub(o Int) Int {
	var r Int
	r.v.Sub(&i.v, &o.v)
	return r
}

func (i Int) Mul(o Int) Int {
	var r Int
	r.v.Mul(&i.v, &o.v)
	return r
}

func (i Int) Neg() Int {
	var r Int
	r.v.Neg(&i.v)
	return r
}

func (i Int) Abs() Int {
	var r Int
	r.v.Abs(&i.v)
	return r
}

// DivFloor and ModFloor implement floor division: the remainder always
// carries the sign of the divisor. Division by zero is ErrDivideByZero,
// never a panic or an undefined value.
func (i Int) DivFloor(o Int) (Int, error) {
	if o.IsZero() {
		return Int{}, ErrDivideByZero
	}
	var q, m big.Int
	q.DivMod(&i.v, &o.v, &m)
	// math/big's DivMod is Euclidean (0 <= remainder < |divisor|); adjust
	// to floor semantics (remainder takes the divisor's sign) when the
	// divisor is negative.
	if o.v.Sign() < 0 && m.Sign() != 0 {
		q.Sub(&q, big.NewInt(1))
	}
	return Int{v: q}, nil
}

func (i Int) ModFloor(o Int) (Int, error) {
	if o.IsZero() {
		return Int{}, ErrDivideByZero
	}
	var m big.Int
	m.Mod(&i.v, &o.v) // math/big.Mod is Euclidean: 0 <= m < |divisor|
	if o.v.Sign() < 0 && m.Sign() != 0 {
		m.Add(&m, &o.v)
	}
	return Int{v: m}, nil
}

// DivTrunc and ModTrunc implement truncated (toward zero) division,
// matching math/big.Int.QuoRem directly.
func (i Int) DivTrunc(o Int) (Int, error) {
	if o.IsZero() {
		return Int{}, ErrDivideByZero
	}
	var q, r big.Int
	q.QuoRem(&i.v, &o.v, &r)
	return Int{v: q}, nil
}

func (i Int) ModTrunc(o Int) (Int, error) {
	if o.IsZero() {
		return Int{}, ErrDivideByZero
	}
	var q, r big.Int
	q.QuoRem(&i.v, &o.v, &r)
	return Int{v: r}, nil
}

// GCD returns the non-negative greatest common divisor of i and o.
func (i Int) GCD(o Int) Int {
	var r Int
	r.v.GCD(nil, nil, new(big.Int).Abs(&i.v), new(big.Int).Abs(&o.v))
	return r
}

// GCDExt returns (g, s, t) such that g = s*i + t*o and g >= 0.
func (i Int) GCDExt(o Int) (g, s, t Int) {
	g.v.GCD(&s.v, &t.v, &i.v, &o.v)
	return g, s, t
}

// ModInverse returns the inverse of i modulo m, or ErrNotInvertible if
// gcd(i, m) != 1.
func (i Int) ModInverse(m Int) (Int, error) {
	var r Int
	res := r.v.ModInverse(&i.v, &m.v)
	if res == nil {
		return Int{}, ErrNotInvertible
	}
	return r, nil
}

// ModPow returns i^e mod m.
func (i Int) ModPow(e, m Int) Int {
	var r Int
	r.v.Exp(&i.v, &e.v, &m.v)
	return r
}

// BitLen, TstBit, SetBit, ClrBit, CombBit, PopCount mirror the bit
// inspection/modification operations spec.md 4.1 requires.
func (i Int) BitLen() int {
	return i.v.BitLen()
}

func (i Int) TstBit(n uint) uint {
	return i.v.Bit(int(n))
}

func (i Int) SetBit(n uint) Int {
	var r Int
	r.v.SetBit(&i.v, int(n), 1)
	return r
}

func (i Int) ClrBit(n uint) Int {
	var r Int
	r.v.SetBit(&i.v, int(n), 0)
	return r
}

func (i Int) CombBit(n uint) Int {
	if i.TstBit(n) == 1 {
		return i.ClrBit(n)
	}
	return i.SetBit(n)
}

func (i Int) PopCount() int {
	count := 0
	for _, w := range i.v.Bits() {
		for w != 0 {
			count += int(w & 1)
			w >>= 1
		}
	}
	return count
}

// HamDist returns the hamming distance between i and o's absolute values,
// defined only when both are non-negative.
func (i Int) HamDist(o Int) int {
	return i.Abs().Xor(o.Abs()).PopCount()
}

func (i Int) Xor(o Int) Int {
	var r Int
	r.v.Xor(&i.v, &o.v)
	return r
}

// Sqrt returns the integer square root of a non-negative value.
func (i Int) Sqrt() (Int, error) {
	if i.v.Sign() < 0 {
		return Int{}, ErrNegativeSqrt
	}
	var r Int
	r.v.Sqrt(&i.v)
	return r, nil
}

// NthRoot returns the integer n-th root of a non-negative value via
// Newton's method over math/big.
func (i Int) NthRoot(n uint) (Int, error) {
	if i.v.Sign() < 0 {
		return Int{}, ErrNegativeSqrt
	}
	if i.v.Sign() == 0 || n == 0 {
		return Int{}, nil
	}
	if n == 1 {
		return New(&i.v), nil
	}

	x := new(big.Int).Set(&i.v)
	nBig := new(big.Int).SetUint64(uint64(n))
	nMinus1 := new(big.Int).SetUint64(uint64(n - 1))

	for {
		// x_{k+1} = ((n-1)*x_k + v / x_k^(n-1)) / n
		xPow := new(big.Int).Exp(x, nMinus1, nil)
		if xPow.Sign() == 0 {
			break
		}
		term := new(big.Int).Quo(&i.v, xPow)
		next := new(big.Int).Mul(nMinus1, x)
		next.Add(next, term)
		next.Quo(next, nBig)
		if next.Cmp(x) >= 0 {
			break
		}
		x = next
	}
	return Int{v: *x}, nil
}

// Zeroize overwrites the stored value so a dropped secret does not linger
// in memory as a reachable big.Int internal buffer.
func (i *Int) Zeroize() {
	i.v.SetInt64(0)
}
