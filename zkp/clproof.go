package zkp

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/pkg/errors"
	"github.com/tokenized/cl-ecdsa/bigint"
	"github.com/tokenized/cl-ecdsa/classgroup"
	"github.com/tokenized/cl-ecdsa/curve"
	"github.com/tokenized/cl-ecdsa/homomorphic"
)

var ErrCLProofInvalid = errors.New("zkp: cl proof verification failed")

// securityParameter is the statistical/computational slack added to the
// CL proof's sampling intervals, matching utilities/mod.rs's
// SECURITY_PARAMETER = 128.
const securityParameter = 128

// CLStatement is the public instance a CL proof is checked against: a
// ciphertext and the public key it was encrypted under, matching
// cl_proof.rs's CLState{cipher, cl_pub_key}.
type CLStatement struct {
	Ciphertext homomorphic.CLCiphertext
	PublicKey  homomorphic.CLPublicKey
}

// CLWitness is the prover's secret: the encrypted plaintext and the
// randomness used to encrypt it, matching cl_proof.rs's CLWit{x, r}.
type CLWitness struct {
	X curve.Scalar
	R *big.Int
}

// CLProof proves knowledge of (x, r) such that statement.Ciphertext
// encrypts x under statement.PublicKey with randomness r, without
// revealing either, matching cl_proof.rs's CLProof{t1, t2, u1, u2}.
type CLProof struct {
	T1, T2 classgroup.Form
	U1, U2 *big.Int
}

// ProveCL proves statement against witness using cipher's class group.
func ProveCL(cipher *homomorphic.CL, witness CLWitness, statement CLStatement) (CLProof, error) {
	upper := clSampleUpper(cipher.Group().Stilde())
	r1, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return CLProof{}, errors.Wrap(err, "sample r1")
	}

	r2Scalar, err := curve.RandomScalar()
	if err != nil {
		return CLProof{}, errors.Wrap(err, "sample r2")
	}
	r2 := r2Scalar.Int()

	fr2 := cipher.Embed(r2)
	t1 := cipher.Group().Generator().Pow(bigint.New(r1))
	pkr1 := statement.PublicKey.Form.Pow(bigint.New(r1))
	t2 := fr2.Compose(pkr1)

	k := clChallenge(statement, t1, t2)

	u1 := new(big.Int).Mul(k, witness.R)
	u1.Add(u1, r1)

	u2 := new(big.Int).Mul(k, witness.X.Int())
	u2.Add(u2, r2)
	u2.Mod(u2, curve.Order())

	return CLProof{T1: t1, T2: t2, U1: u1, U2: u2}, nil
}

// VerifyCL checks proof against statement using cipher's class group.
func VerifyCL(cipher *homomorphic.CL, proof CLProof, statement CLStatement) error {
	sampleSize := clSampleUpperPlusOne(cipher.Group().Stilde())
	if proof.U1.Sign() < 0 || proof.U1.Cmp(sampleSize) > 0 {
		return errors.Wrap(ErrCLProofInvalid, "u1 out of range")
	}
	if proof.U2.Sign() < 0 || proof.U2.Cmp(curve.Order()) >= 0 {
		return errors.Wrap(ErrCLProofInvalid, "u2 out of range")
	}

	k := clChallenge(statement, proof.T1, proof.T2)

	c1k := statement.Ciphertext.C1.Pow(bigint.New(k))
	lhs1 := proof.T1.Compose(c1k)
	rhs1 := cipher.Group().Generator().Pow(bigint.New(proof.U1))
	if !lhs1.Equal(rhs1) {
		return errors.Wrap(ErrCLProofInvalid, "t1*c1^k != gq^u1")
	}

	pku1 := statement.PublicKey.Form.Pow(bigint.New(proof.U1))
	fu2 := cipher.Embed(proof.U2)
	rhs2 := pku1.Compose(fu2)

	c2k := statement.Ciphertext.C2.Pow(bigint.New(k))
	lhs2 := proof.T2.Compose(c2k)
	if !lhs2.Equal(rhs2) {
		return errors.Wrap(ErrCLProofInvalid, "t2*c2^k != pk^u1*f(u2)")
	}

	return nil
}

// clSampleUpper is stilde * 2^40 * 2^securityParameter * 2^40, the bound
// r1 is sampled below (cl_proof.rs's `upper`).
func clSampleUpper(stilde *big.Int) *big.Int {
	upper := new(big.Int).Set(stilde)
	upper.Lsh(upper, 40+securityParameter+40)
	return upper
}

// clSampleUpperPlusOne is the verifier's slightly looser length bound on
// u1, stilde * 2^40 * 2^securityParameter * (2^40 + 1).
func clSampleUpperPlusOne(stilde *big.Int) *big.Int {
	factor := new(big.Int).Lsh(big.NewInt(1), 40)
	factor.Add(factor, big.NewInt(1))

	bound := new(big.Int).Set(stilde)
	bound.Lsh(bound, 40+securityParameter)
	bound.Mul(bound, factor)
	return bound
}

// clChallenge is the Fiat-Shamir challenge binding the ciphertext, public
// key, and both proof commitments, truncated to securityParameter bits,
// matching cl_proof.rs's CLProof::challenge.
func clChallenge(statement CLStatement, t1, t2 classgroup.Form) *big.Int {
	var buf bytes.Buffer
	statement.Ciphertext.C1.Write(&buf)
	statement.Ciphertext.C2.Write(&buf)
	statement.PublicKey.Form.Write(&buf)
	t1.Write(&buf)
	t2.Write(&buf)

	digest := sha256.Sum256(buf.Bytes())
	return new(big.Int).SetBytes(digest[:securityParameter/8])
}
