// Package mta implements the Multiplicative-to-Additive share conversion
// two parties run inside signing to turn their private multiplicands a
// and b into additive shares t_a, t_b with t_a + t_b = a*b mod q, neither
// side ever learning the other's multiplicand (spec.md 4.5), directly
// grounded on original_source/multi_party_ecdsa/src/mta.rs's
// PartyOne/PartyTwo. PartyOne and PartyTwo are generic over
// homomorphic.Cipher rather than bound to a single backend, so the same
// state machines run over either the CL or the Paillier cipher (spec.md
// 4.3/9's cipher-substitutability goal).
package mta

import (
	"github.com/pkg/errors"
	"github.com/tokenized/cl-ecdsa/curve"
	"github.com/tokenized/cl-ecdsa/homomorphic"
	"github.com/tokenized/cl-ecdsa/zkp"
)

var ErrProofVerificationFailed = errors.New("mta: plaintext-knowledge proof verification failed")

// FirstRoundMessage is PartyOne's only message: a ciphertext encrypting
// b, along with the proof of plaintext knowledge that lets PartyTwo trust
// it without decrypting, matching mta.rs's MTAFirstRoundMsg{proof,
// state}. Proof and State carry whichever backend's concrete types
// Cipher produced.
type FirstRoundMessage struct {
	Proof zkp.PlaintextProof
	State zkp.PlaintextStatement
}

// PartyOne holds the multiplicand b and generates a fresh keypair it will
// use for exactly one MtA session, matching mta.rs's PartyOne{b, t_b,
// cl_pub_key, cl_priv_key}.
type PartyOne struct {
	Cipher homomorphic.Cipher

	B  curve.Scalar
	TB curve.Scalar

	PublicKey  homomorphic.PublicKey
	PrivateKey homomorphic.PrivateKey
}

// NewPartyOne generates a fresh keypair under cipher for a single MtA
// session over b. cipher carries the parameters both parties must
// already agree on (the system setup mta.rs's repeated CLGroup::new()
// calls implicitly assume).
func NewPartyOne(cipher homomorphic.Cipher, b curve.Scalar) (*PartyOne, error) {
	sk, pk, err := cipher.KeyGen()
	if err != nil {
		return nil, errors.Wrap(err, "keygen")
	}

	tb, err := curve.RandomScalar()
	if err != nil {
		return nil, errors.Wrap(err, "random t_b placeholder")
	}

	return &PartyOne{
		Cipher:     cipher,
		B:          b,
		TB:         tb,
		PublicKey:  pk,
		PrivateKey: sk,
	}, nil
}

// GenerateSendMessage encrypts b under publicKey (ordinarily p.PublicKey
// itself) and proves plaintext knowledge of it, matching mta.rs's
// generate_send_msg.
func (p *PartyOne) GenerateSendMessage(publicKey homomorphic.PublicKey) (FirstRoundMessage, error) {
	ct, r, err := p.Cipher.Encrypt(publicKey, p.B.Int())
	if err != nil {
		return FirstRoundMessage{}, errors.Wrap(err, "encrypt b")
	}

	statement, err := zkp.NewPlaintextStatement(p.Cipher, ct, publicKey)
	if err != nil {
		return FirstRoundMessage{}, errors.Wrap(err, "build statement")
	}

	proof, err := zkp.ProvePlaintextKnowledge(p.Cipher, p.B, r, statement)
	if err != nil {
		return FirstRoundMessage{}, errors.Wrap(err, "prove plaintext knowledge")
	}

	return FirstRoundMessage{Proof: proof, State: statement}, nil
}

// HandleReceiveMessage decrypts PartyTwo's returned ciphertext to recover
// this party's additive share t_b, matching mta.rs's handle_receive_msg.
func (p *PartyOne) HandleReceiveMessage(cA homomorphic.Ciphertext) error {
	m, err := p.Cipher.Decrypt(p.PrivateKey, cA)
	if err != nil {
		return errors.Wrap(err, "decrypt t_b")
	}
	p.TB = curve.Mod(m)
	return nil
}

// PartyTwo holds the multiplicand a, matching mta.rs's PartyTwo{a, t_a}.
type PartyTwo struct {
	Cipher homomorphic.Cipher

	A  curve.Scalar
	TA curve.Scalar
}

// NewPartyTwo seeds t_a with a placeholder random value, overwritten once
// ReceiveAndSendMessage runs, matching mta.rs's PartyTwo::new.
func NewPartyTwo(cipher homomorphic.Cipher, a curve.Scalar) (*PartyTwo, error) {
	ta, err := curve.RandomScalar()
	if err != nil {
		return nil, errors.Wrap(err, "random t_a placeholder")
	}
	return &PartyTwo{Cipher: cipher, A: a, TA: ta}, nil
}

// ReceiveAndSendMessage verifies msg's proof, then blinds the encrypted
// product a*b by an additive mask alpha_tag: it sets t_a = -alpha_tag and
// returns an encryption of a*b + alpha_tag, which PartyOne decrypts to
// recover t_b = a*b - t_a = a*b + alpha_tag, matching mta.rs's
// receive_and_send_msg.
func (p *PartyTwo) ReceiveAndSendMessage(msg FirstRoundMessage) (homomorphic.Ciphertext, error) {
	if err := zkp.VerifyPlaintextKnowledge(p.Cipher, msg.Proof, msg.State); err != nil {
		return nil, errors.Wrap(ErrProofVerificationFailed, err.Error())
	}

	publicKey := msg.State.PlaintextPublicKey()

	alphaTag, err := curve.RandomScalar()
	if err != nil {
		return nil, errors.Wrap(err, "random alpha_tag")
	}
	p.TA = alphaTag.Neg()

	encryptedAlphaTag, _, err := p.Cipher.Encrypt(publicKey, alphaTag.Int())
	if err != nil {
		return nil, errors.Wrap(err, "encrypt alpha_tag")
	}

	aScalCB, err := p.Cipher.Scal(publicKey, msg.State.PlaintextCiphertext(), p.A.Int())
	if err != nil {
		return nil, errors.Wrap(err, "scal a*c_b")
	}

	cA, err := p.Cipher.Sum(publicKey, aScalCB, encryptedAlphaTag)
	if err != nil {
		return nil, errors.Wrap(err, "sum a*c_b + enc(alpha_tag)")
	}

	return cA, nil
}
