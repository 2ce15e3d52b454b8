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

var ErrCLDLProofInvalid = errors.New("zkp: cl-dl proof verification failed")

// CLDLStatement extends CLStatement with the EC public key the same
// exponent must also open, matching cl_dl_proof.rs's CLDLState{cipher,
// cl_pub_key, dl_pub}.
type CLDLStatement struct {
	Ciphertext homomorphic.CLCiphertext
	PublicKey  homomorphic.CLPublicKey
	DLPublic   curve.Point
}

// CLDLWitness matches cl_dl_proof.rs's CLDLWit{dl_priv, r}.
type CLDLWitness struct {
	DLPrivate curve.Scalar
	R         *big.Int
}

// CLDLProof additionally carries t3 = G^r2 and proves that the same
// value x encrypted under the CL ciphertext also satisfies
// DLPublic = x*G, matching cl_dl_proof.rs's CLDLProof{t1, t2, t3, u1, u2}.
type CLDLProof struct {
	T1, T2 classgroup.Form
	T3     curve.Point
	U1, U2 *big.Int
}

// ProveCLDL proves statement against witness using cipher's class group.
func ProveCLDL(cipher *homomorphic.CL, witness CLDLWitness, statement CLDLStatement) (CLDLProof, error) {
	upper := clSampleUpper(cipher.Group().Stilde())
	r1, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return CLDLProof{}, errors.Wrap(err, "sample r1")
	}

	r2Scalar, err := curve.RandomScalar()
	if err != nil {
		return CLDLProof{}, errors.Wrap(err, "sample r2")
	}
	r2 := r2Scalar.Int()

	fr2 := cipher.Embed(r2)
	t1 := cipher.Group().Generator().Pow(bigint.New(r1))
	pkr1 := statement.PublicKey.Form.Pow(bigint.New(r1))
	t2 := fr2.Compose(pkr1)
	t3 := r2Scalar.MulBase()

	k := cldlChallenge(statement, t1, t2, t3)

	u1 := new(big.Int).Mul(k, witness.R)
	u1.Add(u1, r1)

	u2 := new(big.Int).Mul(k, witness.DLPrivate.Int())
	u2.Add(u2, r2)
	u2.Mod(u2, curve.Order())

	return CLDLProof{T1: t1, T2: t2, T3: t3, U1: u1, U2: u2}, nil
}

// VerifyCLDL checks proof against statement using cipher's class group.
func VerifyCLDL(cipher *homomorphic.CL, proof CLDLProof, statement CLDLStatement) error {
	sampleSize := clSampleUpperPlusOne(cipher.Group().Stilde())
	if proof.U1.Sign() < 0 || proof.U1.Cmp(sampleSize) > 0 {
		return errors.Wrap(ErrCLDLProofInvalid, "u1 out of range")
	}
	if proof.U2.Sign() < 0 || proof.U2.Cmp(curve.Order()) >= 0 {
		return errors.Wrap(ErrCLDLProofInvalid, "u2 out of range")
	}

	k := cldlChallenge(statement, proof.T1, proof.T2, proof.T3)

	c1k := statement.Ciphertext.C1.Pow(bigint.New(k))
	lhs1 := proof.T1.Compose(c1k)
	rhs1 := cipher.Group().Generator().Pow(bigint.New(proof.U1))
	if !lhs1.Equal(rhs1) {
		return errors.Wrap(ErrCLDLProofInvalid, "t1*c1^k != gq^u1")
	}

	u2Scalar := curve.Mod(proof.U2)
	lhsEC := u2Scalar.MulBase()
	kScalar := curve.Mod(k)
	rhsEC := proof.T3.Add(statement.DLPublic.Mul(kScalar))
	if !lhsEC.Equal(rhsEC) {
		return errors.Wrap(ErrCLDLProofInvalid, "g^u2 != t3*pub^k")
	}

	pku1 := statement.PublicKey.Form.Pow(bigint.New(proof.U1))
	fu2 := cipher.Embed(proof.U2)
	rhs2 := pku1.Compose(fu2)

	c2k := statement.Ciphertext.C2.Pow(bigint.New(k))
	lhs2 := proof.T2.Compose(c2k)
	if !lhs2.Equal(rhs2) {
		return errors.Wrap(ErrCLDLProofInvalid, "t2*c2^k != pk^u1*f(u2)")
	}

	return nil
}

// cldlChallenge additionally binds DLPublic and t3 into the transcript,
// matching cl_dl_proof.rs's CLDLProof::challenge.
func cldlChallenge(statement CLDLStatement, t1, t2 classgroup.Form, t3 curve.Point) *big.Int {
	var buf bytes.Buffer
	buf.Write(statement.DLPublic.Bytes())
	statement.Ciphertext.C1.Write(&buf)
	statement.Ciphertext.C2.Write(&buf)
	statement.PublicKey.Form.Write(&buf)
	t1.Write(&buf)
	t2.Write(&buf)
	buf.Write(t3.Bytes())

	digest := sha256.Sum256(buf.Bytes())
	return new(big.Int).SetBytes(digest[:securityParameter/8])
}
