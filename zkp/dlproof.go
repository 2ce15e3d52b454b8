// Package zkp implements the non-interactive zero-knowledge proofs the
// key-generation and signing state machines verify at every message
// boundary: a plain Schnorr discrete-log proof, a hash-commitment
// wrapper around it, the CL and Paillier proofs of plaintext knowledge the
// MtA layer uses to gate its encrypted messages, and a CL-DL proof that
// additionally ties the plaintext to an EC public key (spec.md 4.4).
package zkp

import (
	"github.com/pkg/errors"
	"github.com/tokenized/cl-ecdsa/curve"
)

var ErrDLProofInvalid = errors.New("zkp: dlog proof verification failed")

// DLProof is a Schnorr proof of knowledge of the discrete log of a
// public key, grounded on original_source/multi_party_ecdsa/src/
// utilities/k256_helpers.rs's DLogProof<P>{pk_t_rand_commitment,
// challenge_response}.
type DLProof struct {
	Commitment        curve.Point
	ChallengeResponse curve.Scalar
}

// ProveDL proves knowledge of secret such that publicKey = secret*G.
func ProveDL(secret curve.Scalar) (DLProof, error) {
	k, err := curve.RandomScalar()
	if err != nil {
		return DLProof{}, errors.Wrap(err, "random nonce")
	}

	commitment := k.MulBase()
	publicKey := secret.MulBase()

	challenge := challengeDL(commitment, publicKey)

	// response = k + challenge*secret
	response := k.Add(challenge.Mul(secret))

	return DLProof{Commitment: commitment, ChallengeResponse: response}, nil
}

// VerifyDL checks that proof is a valid Schnorr proof for publicKey.
func VerifyDL(proof DLProof, publicKey curve.Point) error {
	challenge := challengeDL(proof.Commitment, publicKey)

	// response*G == commitment + challenge*publicKey
	lhs := proof.ChallengeResponse.MulBase()
	rhs := proof.Commitment.Add(publicKey.Mul(challenge))

	if !lhs.Equal(rhs) {
		return ErrDLProofInvalid
	}
	return nil
}

// challengeDL computes the Fiat-Shamir challenge binding the commitment
// to the public key being proved, matching k256_helpers.rs's
// compute_challenge (a scalar derived from hashing both points' byte
// encodings).
func challengeDL(commitment, publicKey curve.Point) curve.Scalar {
	return hashToScalar(commitment.Bytes(), publicKey.Bytes())
}
