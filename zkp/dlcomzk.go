package zkp

import (
	"crypto/rand"

	"github.com/pkg/errors"
	"github.com/tokenized/cl-ecdsa/curve"
)

var (
	ErrCommitmentMismatch = errors.New("zkp: opened value does not match commitment")
)

// DLCommitment is a hiding commitment to a public key, opened in a later
// message with the key and the blind factor, grounded on utilities/
// dl_com_zk.rs's DlogCommitment{commitment, open}.
type DLCommitment struct {
	Commitment []byte
}

// DLCommitmentOpen reveals what a DLCommitment hid.
type DLCommitmentOpen struct {
	BlindFactor []byte
	PublicKey   curve.Point
}

// CommitDL commits to publicKey under a freshly sampled blind factor.
func CommitDL(publicKey curve.Point) (DLCommitment, DLCommitmentOpen, error) {
	blind := make([]byte, 32)
	if _, err := rand.Read(blind); err != nil {
		return DLCommitment{}, DLCommitmentOpen{}, errors.Wrap(err, "random blind factor")
	}

	commitment := hashCommit(publicKey.Bytes(), blind)
	return DLCommitment{Commitment: commitment},
		DLCommitmentOpen{BlindFactor: blind, PublicKey: publicKey}, nil
}

// VerifyDLCommitment checks that open matches commitment.
func VerifyDLCommitment(commitment DLCommitment, open DLCommitmentOpen) error {
	want := hashCommit(open.PublicKey.Bytes(), open.BlindFactor)
	if !bytesEqual(commitment.Commitment, want) {
		return ErrCommitmentMismatch
	}
	return nil
}

// DLComZKCommitments is the first message of the commit-then-prove
// exchange: a commitment to the public key and a separate commitment to
// the Schnorr proof's own first-round randomness, matching dl_com_zk.rs's
// DLCommitments{pk_commitment, zk_pok_commitment}.
type DLComZKCommitments struct {
	PublicKeyCommitment []byte
	ProofCommitment     []byte
}

// DLComZKWitness is the second message: both commitments' openings plus
// the completed Schnorr proof, matching dl_com_zk.rs's
// CommWitness{pk_commitment_blind_factor, zk_pok_blind_factor,
// public_share, d_log_proof}.
type DLComZKWitness struct {
	PublicKeyBlindFactor []byte
	ProofBlindFactor     []byte
	PublicKey            curve.Point
	Proof                DLProof
}

// CommitDLZK runs the first round: commit to publicKey and, separately,
// to the Schnorr proof's commitment point, so neither can be adapted
// after seeing the counterparty's message.
func CommitDLZK(secret curve.Scalar) (DLComZKCommitments, DLComZKWitness, error) {
	publicKey := secret.MulBase()

	pkBlind := make([]byte, 32)
	if _, err := rand.Read(pkBlind); err != nil {
		return DLComZKCommitments{}, DLComZKWitness{}, errors.Wrap(err, "random pk blind factor")
	}
	pkCommitment := hashCommit(publicKey.Bytes(), pkBlind)

	proof, err := ProveDL(secret)
	if err != nil {
		return DLComZKCommitments{}, DLComZKWitness{}, errors.Wrap(err, "prove dlog")
	}

	proofBlind := make([]byte, 32)
	if _, err := rand.Read(proofBlind); err != nil {
		return DLComZKCommitments{}, DLComZKWitness{}, errors.Wrap(err, "random proof blind factor")
	}
	proofCommitment := hashCommit(proof.Commitment.Bytes(), proofBlind)

	commitments := DLComZKCommitments{
		PublicKeyCommitment: pkCommitment,
		ProofCommitment:     proofCommitment,
	}
	witness := DLComZKWitness{
		PublicKeyBlindFactor: pkBlind,
		ProofBlindFactor:     proofBlind,
		PublicKey:            publicKey,
		Proof:                proof,
	}
	return commitments, witness, nil
}

// VerifyDLComZK checks that witness opens commitments correctly and that
// its enclosed Schnorr proof verifies against the revealed public key,
// matching dl_com_zk.rs's DLComZK::verify_commitments_and_dlog_proof.
func VerifyDLComZK(commitments DLComZKCommitments, witness DLComZKWitness) error {
	wantPK := hashCommit(witness.PublicKey.Bytes(), witness.PublicKeyBlindFactor)
	if !bytesEqual(commitments.PublicKeyCommitment, wantPK) {
		return errors.Wrap(ErrCommitmentMismatch, "public key commitment")
	}

	wantProof := hashCommit(witness.Proof.Commitment.Bytes(), witness.ProofBlindFactor)
	if !bytesEqual(commitments.ProofCommitment, wantProof) {
		return errors.Wrap(ErrCommitmentMismatch, "proof commitment")
	}

	if err := VerifyDL(witness.Proof, witness.PublicKey); err != nil {
		return errors.Wrap(err, "dlog proof")
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
