package homomorphic

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
	"github.com/tokenized/cl-ecdsa/bigint"
)

var (
	ErrPaillierModulusTooSmall = errors.New("homomorphic: paillier modulus too small for plaintext space")
	ErrPaillierWrongKeyType    = errors.New("homomorphic: wrong key type for paillier cipher")
)

// PaillierBits is the bit length of the Paillier modulus n = p*q. 2048
// bits matches common deployments of the scheme, at roughly the 112-bit
// security level (below the 128-bit level QTildeBits targets for the CL
// cipher).
const PaillierBits = 2048

// PaillierPublicKey is (N, N^2); the classic g = N+1 generator is used
// throughout, so it is never stored separately.
type PaillierPublicKey struct {
	N, N2 *big.Int
}

func (PaillierPublicKey) isPublicKey() {}

// PaillierPrivateKey carries Carmichael's lambda and the precomputed mu,
// mirroring original_source/multi_party_ecdsa/src/utilities/paillier.rs's
// Sk{lam, mu, n, n2}.
type PaillierPrivateKey struct {
	Lambda, Mu, N, N2 *big.Int
}

func (PaillierPrivateKey) isPrivateKey() {}

type PaillierCiphertext struct {
	C *big.Int
}

func (PaillierCiphertext) isCiphertext() {}

// Paillier implements Cipher using the classic g=n+1 Paillier
// cryptosystem, grounded directly on paillier.rs's keygen/encrypt/
// decrypt/eval_sum/eval_scal, generalized from k256::Scalar to an
// arbitrary plaintext modulus q.
type Paillier struct {
	q *big.Int
}

func NewPaillier(q *big.Int) *Paillier {
	return &Paillier{q: new(big.Int).Set(q)}
}

func (p *Paillier) PlaintextBound() *big.Int {
	return new(big.Int).Set(p.q)
}

func (p *Paillier) KeyGen() (PrivateKey, PublicKey, error) {
	half := PaillierBits / 2

	var n, pPrime, qPrime *big.Int
	for {
		pc := randomPrime(half)
		qc := randomPrime(half)
		n = new(big.Int).Mul(pc, qc)
		if n.Cmp(p.q) > 0 {
			pPrime, qPrime = pc, qc
			break
		}
	}

	n2 := new(big.Int).Mul(n, n)
	p1 := new(big.Int).Sub(pPrime, big.NewInt(1))
	q1 := new(big.Int).Sub(qPrime, big.NewInt(1))
	lambda := lcm(p1, q1)

	g := new(big.Int).Add(n, big.NewInt(1))
	u := new(big.Int).Exp(g, lambda, n2)
	lVal := paillierL(u, n)
	mu, err := bigint.New(lVal).ModInverse(bigint.New(n))
	if err != nil {
		return nil, nil, errors.Wrap(err, "mu has no inverse")
	}

	pk := PaillierPublicKey{N: n, N2: n2}
	sk := PaillierPrivateKey{Lambda: lambda, Mu: mu.Big(), N: n, N2: n2}
	return sk, pk, nil
}

func (p *Paillier) Encrypt(pkAny PublicKey, m *big.Int) (Ciphertext, *big.Int, error) {
	pk, ok := pkAny.(PaillierPublicKey)
	if !ok {
		return nil, nil, ErrPaillierWrongKeyType
	}

	mMod := new(big.Int).Mod(m, p.q)
	r, err := sampleZnStar(pk.N)
	if err != nil {
		return nil, nil, err
	}

	gm := new(big.Int).Mul(mMod, pk.N)
	gm.Add(gm, big.NewInt(1))
	gm.Mod(gm, pk.N2)

	rn := new(big.Int).Exp(r, pk.N, pk.N2)

	c := new(big.Int).Mul(gm, rn)
	c.Mod(c, pk.N2)

	return PaillierCiphertext{C: c}, r, nil
}

func (p *Paillier) Decrypt(skAny PrivateKey, ctAny Ciphertext) (*big.Int, error) {
	sk, ok := skAny.(PaillierPrivateKey)
	if !ok {
		return nil, ErrPaillierWrongKeyType
	}
	ct, ok := ctAny.(PaillierCiphertext)
	if !ok {
		return nil, ErrPaillierWrongKeyType
	}

	u := new(big.Int).Exp(ct.C, sk.Lambda, sk.N2)
	lVal := paillierL(u, sk.N)
	m := new(big.Int).Mul(lVal, sk.Mu)
	m.Mod(m, sk.N)
	m.Mod(m, p.q)
	return m, nil
}

func (p *Paillier) Sum(pkAny PublicKey, aAny, bAny Ciphertext) (Ciphertext, error) {
	pk, ok := pkAny.(PaillierPublicKey)
	if !ok {
		return nil, ErrPaillierWrongKeyType
	}
	a, ok := aAny.(PaillierCiphertext)
	if !ok {
		return nil, ErrPaillierWrongKeyType
	}
	b, ok := bAny.(PaillierCiphertext)
	if !ok {
		return nil, ErrPaillierWrongKeyType
	}

	c := new(big.Int).Mul(a.C, b.C)
	c.Mod(c, pk.N2)
	return PaillierCiphertext{C: c}, nil
}

func (p *Paillier) Scal(pkAny PublicKey, ctAny Ciphertext, k *big.Int) (Ciphertext, error) {
	pk, ok := pkAny.(PaillierPublicKey)
	if !ok {
		return nil, ErrPaillierWrongKeyType
	}
	ct, ok := ctAny.(PaillierCiphertext)
	if !ok {
		return nil, ErrPaillierWrongKeyType
	}

	c := new(big.Int).Exp(ct.C, k, pk.N2)
	return PaillierCiphertext{C: c}, nil
}

// paillierL computes L(u) = (u-1)/n.
func paillierL(u, n *big.Int) *big.Int {
	l := new(big.Int).Sub(u, big.NewInt(1))
	l.Div(l, n)
	return l
}

func lcm(a, b *big.Int) *big.Int {
	g := new(big.Int).GCD(nil, nil, a, b)
	l := new(big.Int).Mul(a, b)
	return l.Div(l, g)
}

func sampleZnStar(n *big.Int) (*big.Int, error) {
	for {
		r, err := rand.Int(rand.Reader, n)
		if err != nil {
			return nil, err
		}
		if r.Sign() == 0 {
			continue
		}
		if new(big.Int).GCD(nil, nil, r, n).Cmp(big.NewInt(1)) == 0 {
			return r, nil
		}
	}
}

func randomPrime(bits int) *big.Int {
	for {
		c, err := rand.Prime(rand.Reader, bits)
		if err != nil {
			continue
		}
		if bigint.New(c).ProbablyPrime(bigint.DefaultMillerRabinRounds) {
			return c
		}
	}
}
