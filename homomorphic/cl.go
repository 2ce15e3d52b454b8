package homomorphic

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
	"github.com/tokenized/cl-ecdsa/bigint"
	"github.com/tokenized/cl-ecdsa/classgroup"
)

var (
	ErrCLWrongKeyType  = errors.New("homomorphic: wrong key type for cl cipher")
	ErrCLDecodeFailed  = errors.New("homomorphic: could not decode class-group plaintext embedding")
)

// QTildeBits is the bit length of the auxiliary prime qtilde used to
// build the class-group discriminant Delta = -q*qtilde. 1828 bits
// targets roughly 128-bit security for the class-group discrete-log
// problem, per spec.md 4.3's glossary note.
const QTildeBits = 1828

// CLPublicKey is the group's generator form raised to the secret
// exponent, g_q^sk, matching original_source/multi_party_ecdsa/src/mta.rs's
// PK(GmpClassGroup) usage.
type CLPublicKey struct {
	Form classgroup.Form
}

func (CLPublicKey) isPublicKey() {}

type CLPrivateKey struct {
	SK *big.Int
}

func (CLPrivateKey) isPrivateKey() {}

type CLCiphertext struct {
	C1, C2 classgroup.Form
}

func (CLCiphertext) isCiphertext() {}

// CL implements Cipher over the class group of the conductor-q order of
// a fundamental discriminant deltaK = -qtilde, i.e. Delta = deltaK*q^2
// (spec.md 4.3's "Delta = -q . qtilde" glossary note names the
// fundamental-discriminant shape; q^2 is the standard conductor so that
// forms of norm q^2 carry a distinguished order-q subgroup the
// plaintext embeds into). Grounded on the CLGroup/PK/SK/Ciphertext
// shape threaded through original_source/multi_party_ecdsa/src/mta.rs
// and utilities/cl_proof.rs (encrypt/decrypt/eval_sum/eval_scal, the
// generator group.gq, and the plaintext-embedding map group calls
// expo_f). Those names are referenced throughout the pack's proof code
// but their defining file, utilities/class_group.rs, is not itself
// present in the retrieval pack (it lives in an external crate) -- this
// type reimplements the same contract from spec.md 4.3/4.4's
// description directly, not from a transcribed reference.
type CL struct {
	group  *classgroup.Group
	q      *big.Int
	base   classgroup.Form
	deltaK *big.Int
}

// DeltaK returns the auxiliary discriminant this cipher was built from, so
// the party that sampled it (via NewCL) can hand it to a peer that will
// reconstruct the identical cipher with NewCLFromDeltaK.
func (c *CL) DeltaK() *big.Int {
	return new(big.Int).Set(c.deltaK)
}

// NewCL builds a CL cipher for plaintext modulus q, sampling a fresh
// qtilde and deriving the working discriminant and base embedding form.
func NewCL(q *big.Int) (*CL, error) {
	deltaK, err := sampleAuxDiscriminant(q, QTildeBits)
	if err != nil {
		return nil, err
	}
	return newCLFromDeltaK(q, deltaK), nil
}

// NewCLFromDeltaK builds a CL cipher from an already-sampled deltaK
// (deltaK must be negative and congruent to 1 mod 4), for a caller that
// received deltaK from its peer instead of sampling it itself, so both
// parties end up parameterized over the identical class group without
// transmitting the much larger group description implied by q alone.
// The CLI front end (cmd/party1, cmd/party2) runs over Paillier and does
// not call it.
func NewCLFromDeltaK(q, deltaK *big.Int) *CL {
	return newCLFromDeltaK(q, deltaK)
}

// newCLFromDeltaK builds a CL cipher from an already-sampled deltaK
// (deltaK must be negative and congruent to 1 mod 4). Split out from
// NewCL so tests can exercise the cipher with a small discriminant
// instead of the production 1828-bit one.
func newCLFromDeltaK(q, deltaK *big.Int) *CL {
	// delta = deltaK * q^2, the conductor-q order's discriminant.
	delta := new(big.Int).Mul(deltaK, q)
	delta.Mul(delta, q)

	group := classgroup.NewGroup(delta)

	// Base embedding form (q^2, q, (1-deltaK)/4): the simplest integral
	// form of norm q^2 for this discriminant (see derivation in
	// DESIGN.md). deltaK ≡ 1 (mod 4) is required of the caller, which is
	// exactly what keeps c integral here. FromAB both recomputes c from
	// (a, b, group.D) and attaches the group pointer every other Form
	// method needs, so the base form must be built through it rather
	// than a bare struct literal.
	qSq := new(big.Int).Mul(q, q)
	base := group.FromAB(qSq, q)

	return &CL{
		group:  group,
		q:      new(big.Int).Set(q),
		base:   base,
		deltaK: new(big.Int).Set(deltaK),
	}
}

func (c *CL) PlaintextBound() *big.Int {
	return new(big.Int).Set(c.q)
}

// Group returns the class group this cipher is parameterized over, for
// callers (the zkp package's CL proofs) that need to sample below its
// Stilde bound or raise its generator directly.
func (c *CL) Group() *classgroup.Group {
	return c.group
}

// Embed exposes the plaintext-embedding map f(m) = base^m so the zkp
// package's CL proof of plaintext knowledge can recompute f(r2)/f(u2)
// without duplicating the base form.
func (c *CL) Embed(m *big.Int) classgroup.Form {
	return c.embed(m)
}

func (c *CL) KeyGen() (PrivateKey, PublicKey, error) {
	sk, err := rand.Int(rand.Reader, c.group.Stilde())
	if err != nil {
		return nil, nil, err
	}
	pkForm := c.group.Generator().Pow(bigint.New(sk))
	return CLPrivateKey{SK: sk}, CLPublicKey{Form: pkForm}, nil
}

// Encrypt returns (g_q^r, pk^r . f(m)) along with r, the randomness a
// CL-proof of plaintext knowledge takes as its witness.
func (c *CL) Encrypt(pkAny PublicKey, m *big.Int) (Ciphertext, *big.Int, error) {
	pk, ok := pkAny.(CLPublicKey)
	if !ok {
		return nil, nil, ErrCLWrongKeyType
	}

	r, err := rand.Int(rand.Reader, c.group.Stilde())
	if err != nil {
		return nil, nil, err
	}

	c1 := c.group.Generator().Pow(bigint.New(r))
	c2 := pk.Form.Pow(bigint.New(r)).Compose(c.embed(m))

	return CLCiphertext{C1: c1, C2: c2}, r, nil
}

func (c *CL) Decrypt(skAny PrivateKey, ctAny Ciphertext) (*big.Int, error) {
	sk, ok := skAny.(CLPrivateKey)
	if !ok {
		return nil, ErrCLWrongKeyType
	}
	ct, ok := ctAny.(CLCiphertext)
	if !ok {
		return nil, ErrCLWrongKeyType
	}

	negSK := new(big.Int).Neg(sk.SK)
	blinded := ct.C1.Pow(bigint.New(negSK))
	embedded := ct.C2.Compose(blinded)

	m, err := c.decode(embedded)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (c *CL) Sum(pkAny PublicKey, aAny, bAny Ciphertext) (Ciphertext, error) {
	a, ok := aAny.(CLCiphertext)
	if !ok {
		return nil, ErrCLWrongKeyType
	}
	b, ok := bAny.(CLCiphertext)
	if !ok {
		return nil, ErrCLWrongKeyType
	}
	return CLCiphertext{C1: a.C1.Compose(b.C1), C2: a.C2.Compose(b.C2)}, nil
}

func (c *CL) Scal(pkAny PublicKey, ctAny Ciphertext, k *big.Int) (Ciphertext, error) {
	ct, ok := ctAny.(CLCiphertext)
	if !ok {
		return nil, ErrCLWrongKeyType
	}
	kInt := bigint.New(k)
	return CLCiphertext{C1: ct.C1.Pow(kInt), C2: ct.C2.Pow(kInt)}, nil
}

// embed computes f(m) = base^m. base is a fixed form of norm q^2 for
// the conductor-q discriminant this cipher builds (see NewCL); f is a
// group homomorphism Z_q -> <base> with f(0) the identity, matching
// spec.md 4.3's requirement that the plaintext space embed into the
// kernel of an exponential surjection.
func (c *CL) embed(m *big.Int) classgroup.Form {
	mMod := new(big.Int).Mod(m, c.q)
	return c.base.Pow(bigint.New(mMod))
}

// decode inverts embed by trial exponentiation. This is adequate for
// the small class-group/plaintext-modulus parameters this module's
// tests exercise; a production deployment would replace it with the
// O(1) algebraic decode the conductor-q class-group construction
// supports (recovering m directly from a form's b-coefficient without
// search), which depends on class-group internals not present in the
// retrieval pack (see DESIGN.md).
func (c *CL) decode(target classgroup.Form) (*big.Int, error) {
	if target.Equal(c.group.Identity()) {
		return big.NewInt(0), nil
	}
	cur := c.base
	for m := int64(1); new(big.Int).SetInt64(m).Cmp(c.q) < 0; m++ {
		if cur.Equal(target) {
			return big.NewInt(m), nil
		}
		cur = cur.Compose(c.base)
	}
	return nil, ErrCLDecodeFailed
}

// sampleAuxDiscriminant samples a prime qtilde such that deltaK = -qtilde
// is a valid fundamental-style discriminant (negative, congruent to 1
// mod 4) distinct from q, matching spec.md 4.3's "Delta = -q . qtilde
// for a suitable qtilde".
func sampleAuxDiscriminant(q *big.Int, bits int) (*big.Int, error) {
	for {
		qTilde, err := rand.Prime(rand.Reader, bits)
		if err != nil {
			return nil, err
		}
		if qTilde.Cmp(q) == 0 {
			continue
		}
		deltaK := new(big.Int).Neg(qTilde)
		mod4 := new(big.Int).Mod(deltaK, big.NewInt(4))
		if mod4.Sign() < 0 {
			mod4.Add(mod4, big.NewInt(4))
		}
		if mod4.Cmp(big.NewInt(1)) == 0 {
			return deltaK, nil
		}
	}
}
