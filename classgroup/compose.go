package classgroup

import (
	"math/big"

	"github.com/tokenized/cl-ecdsa/bigint"
)

// Compose returns the Dirichlet composition of f and o, reduced. The
// two extended-gcd solves below are the same CRT-style congruence
// solving original_source/classgroup/src/gmp_classgroup/congruence.rs
// factors into CongruenceContext.solve_linear_congruence (a*x = b mod m
// via extended gcd); NUCOMP/NUDUPL fuse this with a partial-Euclidean
// speedup that this implementation does not reproduce, matching the
// trait's own square() default of a plain mul_assign with no fast path.
func (f Form) Compose(o Form) Form {
	f1, f2 := f, o
	if f1.A.Cmp(f2.A) > 0 {
		f1, f2 = f2, f1
	}
	a1, b1 := f1.A, f1.B
	a2, b2, c2 := f2.A, f2.B, f2.C

	s := new(big.Int).Add(b1, b2)
	s.Rsh(s, 1)
	n := new(big.Int).Sub(b2, s)

	var y1 *big.Int
	var d *big.Int
	if new(big.Int).Mod(a2, a1).Sign() == 0 {
		y1 = big.NewInt(0)
		d = new(big.Int).Set(a1)
	} else {
		g, u, _ := bigint.New(a2).GCDExt(bigint.New(a1))
		d = g.Big()
		y1 = u.Big()
	}

	var x2, y2, d1 *big.Int
	if new(big.Int).Mod(s, d).Sign() == 0 {
		y2 = big.NewInt(-1)
		x2 = big.NewInt(0)
		d1 = new(big.Int).Set(d)
	} else {
		g, u, v := bigint.New(s).GCDExt(bigint.New(d))
		d1 = g.Big()
		x2 = u.Big()
		y2 = new(big.Int).Neg(v.Big())
	}

	v1 := new(big.Int).Div(a1, d1)
	v2 := new(big.Int).Div(a2, d1)

	r := new(big.Int).Mul(y1, y2)
	r.Mul(r, n)
	t := new(big.Int).Mul(x2, c2)
	r.Sub(r, t)
	r.Mod(r, v1)

	b3 := new(big.Int).Mul(big.NewInt(2), v2)
	b3.Mul(b3, r)
	b3.Add(b3, b2)

	a3 := new(big.Int).Mul(v1, v2)

	result := Form{A: a3, B: b3, group: f1.group}
	result.recomputeC()
	return result.Reduce()
}

// Square returns f composed with itself, mirroring the ClassGroup
// trait's default square() implementation (self.mul_assign(&self.clone())).
func (f Form) Square() Form {
	return f.Compose(f)
}

// Pow returns f raised to the (non-negative) exponent e via left-to-right
// binary exponentiation, matching spec.md 4.2.
func (f Form) Pow(e bigint.Int) Form {
	exp := e.Big()
	if exp.Sign() == 0 {
		return f.group.Identity()
	}
	if exp.Sign() < 0 {
		return f.Inverse().Pow(bigint.New(new(big.Int).Neg(exp)))
	}

	result := f.group.Identity()
	for i := exp.BitLen() - 1; i >= 0; i-- {
		result = result.Square()
		if exp.Bit(i) == 1 {
			result = result.Compose(f)
		}
	}
	return result
}
