package zkp

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/pkg/errors"
	"github.com/tokenized/cl-ecdsa/bigint"
	"github.com/tokenized/cl-ecdsa/homomorphic"
)

var ErrPaillierProofInvalid = errors.New("zkp: paillier proof verification failed")

// PaillierStatement is the public instance a Paillier proof is checked
// against: a ciphertext and the public key it was encrypted under,
// mirroring CLStatement's shape for the Paillier backend.
type PaillierStatement struct {
	Ciphertext homomorphic.PaillierCiphertext
	PublicKey  homomorphic.PaillierPublicKey
}

// PaillierWitness is the prover's secret: the encrypted plaintext and the
// randomness used to encrypt it.
type PaillierWitness struct {
	M *big.Int
	R *big.Int
}

// PaillierProof proves knowledge of (m, r) such that statement.Ciphertext
// encrypts m under statement.PublicKey with randomness r, without
// revealing either. Same Sigma-protocol shape as CLProof (commit, Fiat-
// Shamir challenge, response), specialized to the Paillier group: the
// commitment A = (1+N)^m' . r'^N mod N^2 takes the place of CLProof's
// (T1, T2) pair, and a single response pair (Zm, Zr) takes the place of
// (U1, U2).
type PaillierProof struct {
	A  *big.Int
	Zm *big.Int
	Zr *big.Int
}

// ProvePaillier proves statement against witness under cipher's modulus.
// m' is drawn oversized (q * 2^securityParameter) so that Zm = m' + e*m
// statistically hides m the same way CLProof's r1 hides the CL
// randomness.
func ProvePaillier(cipher *homomorphic.Paillier, witness PaillierWitness, statement PaillierStatement) (PaillierProof, error) {
	upper := paillierSampleUpper(cipher.PlaintextBound())
	mTag, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return PaillierProof{}, errors.Wrap(err, "sample m'")
	}

	rTag, err := sampleZnStarPublic(statement.PublicKey.N)
	if err != nil {
		return PaillierProof{}, errors.Wrap(err, "sample r'")
	}

	a := paillierCommit(statement.PublicKey, mTag, rTag)

	e := paillierChallenge(statement, a)

	zm := new(big.Int).Mul(e, witness.M)
	zm.Add(zm, mTag)

	zr := new(big.Int).Exp(witness.R, e, statement.PublicKey.N)
	zr.Mul(zr, rTag)
	zr.Mod(zr, statement.PublicKey.N)

	return PaillierProof{A: a, Zm: zm, Zr: zr}, nil
}

// VerifyPaillier checks proof against statement under statement.PublicKey.
func VerifyPaillier(proof PaillierProof, statement PaillierStatement) error {
	e := paillierChallenge(statement, proof.A)

	lhs := paillierCommit(statement.PublicKey, proof.Zm, proof.Zr)

	ctE := new(big.Int).Exp(statement.Ciphertext.C, e, statement.PublicKey.N2)
	rhs := new(big.Int).Mul(proof.A, ctE)
	rhs.Mod(rhs, statement.PublicKey.N2)

	if lhs.Cmp(rhs) != 0 {
		return errors.Wrap(ErrPaillierProofInvalid, "(1+N)^zm*zr^N != A*C^e")
	}
	return nil
}

// paillierCommit computes (1+N)^m . r^N mod N^2, the commitment shape
// shared by ProvePaillier (with m', r') and VerifyPaillier (with Zm, Zr).
func paillierCommit(pk homomorphic.PaillierPublicKey, m, r *big.Int) *big.Int {
	gm := new(big.Int).Mul(m, pk.N)
	gm.Add(gm, big.NewInt(1))
	gm.Mod(gm, pk.N2)

	rn := new(big.Int).Exp(r, pk.N, pk.N2)

	c := new(big.Int).Mul(gm, rn)
	c.Mod(c, pk.N2)
	return c
}

// paillierSampleUpper is q * 2^securityParameter, the bound m' is sampled
// below.
func paillierSampleUpper(q *big.Int) *big.Int {
	upper := new(big.Int).Set(q)
	upper.Lsh(upper, securityParameter)
	return upper
}

// paillierChallenge is the Fiat-Shamir challenge binding the ciphertext,
// public key, and commitment, truncated to securityParameter bits, the
// same shape as clChallenge.
func paillierChallenge(statement PaillierStatement, a *big.Int) *big.Int {
	var buf bytes.Buffer
	bigint.WriteUnsigned(bigint.New(statement.Ciphertext.C), &buf)
	bigint.WriteUnsigned(bigint.New(statement.PublicKey.N), &buf)
	bigint.WriteUnsigned(bigint.New(a), &buf)

	digest := sha256.Sum256(buf.Bytes())
	return new(big.Int).SetBytes(digest[:securityParameter/8])
}

// sampleZnStarPublic draws a unit of Z_n, the same rejection-sampling
// shape homomorphic.Paillier.Encrypt uses for its own randomness.
func sampleZnStarPublic(n *big.Int) (*big.Int, error) {
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
