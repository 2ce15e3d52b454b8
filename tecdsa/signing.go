package tecdsa

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tokenized/cl-ecdsa/curve"
	"github.com/tokenized/cl-ecdsa/homomorphic"
	"github.com/tokenized/cl-ecdsa/logger"
	"github.com/tokenized/cl-ecdsa/mta"
	"github.com/tokenized/cl-ecdsa/zkp"
)

// signState names the points a party's signing side can be in, matching
// spec.md 4.7's two transition diagrams
// (P1: WAIT_NONCE_COM -> WAIT_MTA_REPLY -> WAIT_OPEN -> DONE,
//  P2: WAIT_MTA_PROVE -> WAIT_CONS+OPEN -> DONE).
type signState byte

const (
	signStateP1WaitNonceCom signState = iota + 1
	signStateP1WaitMtaReply
	signStateP1WaitOpen
	signStateP1Done

	signStateP2WaitMtaProve
	signStateP2WaitConsAndOpen
	signStateP2Done
)

// SignParty1 drives P1's half of signing: draws a reshared key share k1
// and a nonce rho1, runs the MtA sender role, ties the result to its key
// share with an MtA-consistency message, and finally assembles the
// signature once P2's partial signature arrives. Grounded field-for-field
// on original_source/multi_party_ecdsa/src/party_one.rs's Sign state.
type SignParty1 struct {
	state signState
	keys  KeyStore
	m     curve.Scalar

	cipher homomorphic.Cipher
	mtaP1  *mta.PartyOne

	k1       curve.Scalar
	x1Tilde  curve.Point
	rho1     curve.Scalar
	r1       curve.Scalar
	nonceCom zkp.DLComZKCommitments
}

// NewSignParty1 seeds a fresh signing session for message digest m
// (already reduced mod q by the caller) against keys. cipher is the
// homomorphic cipher (CL or Paillier) both parties agreed on for this
// session's MtA round.
func NewSignParty1(ctx context.Context, cipher homomorphic.Cipher, keys KeyStore, m curve.Scalar) (*SignParty1, error) {
	k1, err := curve.RandomScalar()
	if err != nil {
		logger.Error(ctx, "sign p1: draw k1: %s", err)
		return nil, errors.Wrap(ErrInternalInvariantFailure, err.Error())
	}
	rho1, err := curve.RandomScalar()
	if err != nil {
		logger.Error(ctx, "sign p1: draw rho1: %s", err)
		return nil, errors.Wrap(ErrInternalInvariantFailure, err.Error())
	}

	mtaP1, err := mta.NewPartyOne(cipher, k1)
	if err != nil {
		logger.Error(ctx, "sign p1: new mta party one: %s", err)
		return nil, errors.Wrap(ErrHomoEncryptionFailure, err.Error())
	}

	return &SignParty1{
		state:   signStateP1WaitNonceCom,
		keys:    keys,
		m:       m,
		cipher:  cipher,
		mtaP1:   mtaP1,
		k1:      k1,
		x1Tilde: k1.MulBase(),
		rho1:    rho1,
	}, nil
}

// HandleNonceCommit records P2's nonce commitment (spec.md 4.7 step 1)
// and starts the MtA round by returning P1's first-round message.
func (p *SignParty1) HandleNonceCommit(ctx context.Context, msg NonceCommitMessage) (MtaRound1Message, error) {
	if p.state != signStateP1WaitNonceCom {
		logger.Error(ctx, "sign p1: handle nonce commit: %s", ErrOutOfSequenceMessage)
		return MtaRound1Message{}, ErrOutOfSequenceMessage
	}
	p.nonceCom = msg.Commitments

	first, err := p.mtaP1.GenerateSendMessage(p.mtaP1.PublicKey)
	if err != nil {
		logger.Error(ctx, "sign p1: generate mta send message: %s", err)
		return MtaRound1Message{}, errors.Wrap(ErrHomoEncryptionFailure, err.Error())
	}

	p.state = signStateP1WaitMtaReply
	return MtaRound1Message{first}, nil
}

// HandleMtaReply decrypts P2's MtA reply to learn t_b (spec.md 4.5/4.7
// step 3), draws the nonce tweak r1, builds the MtA-consistency message,
// and opens the nonce commitment, matching spec.md 4.7 step 4's combined
// SignRound1(MtaConsistency, NonceKE) message.
func (p *SignParty1) HandleMtaReply(ctx context.Context, msg MtaRound1MessageP2) (SignRound1Message, error) {
	if p.state != signStateP1WaitMtaReply {
		logger.Error(ctx, "sign p1: handle mta reply: %s", ErrOutOfSequenceMessage)
		return SignRound1Message{}, ErrOutOfSequenceMessage
	}

	if err := p.mtaP1.HandleReceiveMessage(msg.Ciphertext); err != nil {
		logger.Error(ctx, "sign p1: handle mta receive message: %s", err)
		return SignRound1Message{}, errors.Wrap(ErrHomoEncryptionFailure, err.Error())
	}

	r1, err := curve.RandomScalar()
	if err != nil {
		logger.Error(ctx, "sign p1: draw r1: %s", err)
		return SignRound1Message{}, errors.Wrap(ErrInternalInvariantFailure, err.Error())
	}
	p.r1 = r1

	// cc = t_b + k1*r1 - x1 mod q
	cc := p.mtaP1.TB.Add(p.k1.Mul(r1)).Sub(p.keys.MyShare)

	consistency := MtaConsistencyMessage{
		ReshardedPublicShare: p.x1Tilde,
		R1:                   r1,
		CC:                   cc,
	}

	nonceProof, err := zkp.ProveDL(p.rho1)
	if err != nil {
		logger.Error(ctx, "sign p1: prove nonce dl: %s", err)
		return SignRound1Message{}, errors.Wrap(ErrDLProofFailure, err.Error())
	}
	nonce := NonceKEMessage{NoncePublicShare: p.rho1.MulBase(), Proof: nonceProof}

	p.state = signStateP1WaitOpen
	return SignRound1Message{Consistency: consistency, Nonce: nonce}, nil
}

// Finish consumes P2's nonce opening and partial signature s2, recomputes
// the joint nonce, assembles and low-s normalizes the final signature,
// and verifies it against the joint public key before returning it,
// matching spec.md 4.7 step 6. A failing self-check returns
// ErrSignatureVerificationFailure rather than an unverified signature.
func (p *SignParty1) Finish(ctx context.Context, msg SignFinishMessage) (curve.Signature, error) {
	if p.state != signStateP1WaitOpen {
		logger.Error(ctx, "sign p1: finish: %s", ErrOutOfSequenceMessage)
		return curve.Signature{}, ErrOutOfSequenceMessage
	}

	if err := zkp.VerifyDLComZK(p.nonceCom, msg.Open); err != nil {
		logger.Error(ctx, "sign p1: verify nonce open: %s", err)
		return curve.Signature{}, errors.Wrap(ErrCommitmentOpenFailure, err.Error())
	}

	r2 := msg.Open.PublicKey

	// R = R2*rho1 + G*rho1*r1
	joint := r2.Mul(p.rho1).Add(p.r1.MulBase().Mul(p.rho1))
	if joint.IsInfinity() {
		logger.Error(ctx, "sign p1: joint nonce is infinity")
		return curve.Signature{}, ErrInternalInvariantFailure
	}
	rx := joint.XScalar()
	if rx.IsZero() {
		logger.Error(ctx, "sign p1: r_x is zero")
		return curve.Signature{}, ErrInternalInvariantFailure
	}

	rho1Inv, err := p.rho1.Inverse()
	if err != nil {
		logger.Error(ctx, "sign p1: invert rho1: %s", err)
		return curve.Signature{}, errors.Wrap(ErrBigIntDomainError, err.Error())
	}

	// s' = rho1^-1 * (s2 + rx*k1) mod q
	sPrime := rho1Inv.Mul(msg.S2.Add(rx.Mul(p.k1)))
	if sPrime.IsZero() {
		logger.Error(ctx, "sign p1: s' is zero")
		return curve.Signature{}, ErrInternalInvariantFailure
	}

	sig := curve.Signature{R: *rx.Int(), S: *sPrime.Int()}.Normalize()

	var digest [32]byte
	copy(digest[:], p.m.Bytes())
	if !sig.Verify(digest, p.keys.Joint) {
		logger.Error(ctx, "sign p1: self-check signature verification failed")
		return curve.Signature{}, ErrSignatureVerificationFailure
	}

	p.state = signStateP1Done
	return sig, nil
}

// SignParty2 drives P2's half of signing: commits to a nonce rho2, runs
// the MtA receiver role with factor a = rho2, checks P1's
// MtA-consistency message against its own key share, and produces the
// partial signature s2. Grounded field-for-field on
// original_source/multi_party_ecdsa/src/party_two.rs's Sign state.
type SignParty2 struct {
	state signState
	keys  KeyStore
	m     curve.Scalar

	cipher homomorphic.Cipher
	mtaP2  *mta.PartyTwo

	rho2   curve.Scalar
	nonceW zkp.DLComZKWitness

	k2 curve.Scalar
	r1 curve.Scalar
}

// NewSignParty2 seeds a fresh signing session and returns P2's nonce
// commitment, matching spec.md 4.7 step 1.
func NewSignParty2(ctx context.Context, cipher homomorphic.Cipher, keys KeyStore, m curve.Scalar) (*SignParty2, NonceCommitMessage, error) {
	rho2, err := curve.RandomScalar()
	if err != nil {
		logger.Error(ctx, "sign p2: draw rho2: %s", err)
		return nil, NonceCommitMessage{}, errors.Wrap(ErrInternalInvariantFailure, err.Error())
	}

	mtaP2, err := mta.NewPartyTwo(cipher, rho2)
	if err != nil {
		logger.Error(ctx, "sign p2: new mta party two: %s", err)
		return nil, NonceCommitMessage{}, errors.Wrap(ErrHomoEncryptionFailure, err.Error())
	}

	commitments, witness, err := zkp.CommitDLZK(rho2)
	if err != nil {
		logger.Error(ctx, "sign p2: commit dl zk: %s", err)
		return nil, NonceCommitMessage{}, errors.Wrap(ErrDLProofFailure, err.Error())
	}

	p := &SignParty2{
		state:  signStateP2WaitMtaProve,
		keys:   keys,
		m:      m,
		cipher: cipher,
		mtaP2:  mtaP2,
		rho2:   rho2,
		nonceW: witness,
	}
	return p, NonceCommitMessage{Commitments: commitments}, nil
}

// HandleMtaRound1 verifies P1's MtA proof and returns the encrypted
// product reply, matching spec.md 4.5's MtA receiver role with factor
// a = rho2.
func (p *SignParty2) HandleMtaRound1(ctx context.Context, msg MtaRound1Message) (MtaRound1MessageP2, error) {
	if p.state != signStateP2WaitMtaProve {
		logger.Error(ctx, "sign p2: handle mta round 1: %s", ErrOutOfSequenceMessage)
		return MtaRound1MessageP2{}, ErrOutOfSequenceMessage
	}

	ct, err := p.mtaP2.ReceiveAndSendMessage(msg.FirstRoundMessage)
	if err != nil {
		logger.Error(ctx, "sign p2: receive and send mta message: %s", err)
		return MtaRound1MessageP2{}, errors.Wrap(ErrCLProofFailure, err.Error())
	}

	p.state = signStateP2WaitConsAndOpen
	return MtaRound1MessageP2{Ciphertext: ct}, nil
}

// HandleSignRound1 verifies P1's MtA-consistency equation, derives the
// reshared secret k2, verifies P1's nonce proof, computes the joint
// nonce and the partial signature s2, and opens P2's own nonce
// commitment, matching spec.md 4.7 steps 4-5.
func (p *SignParty2) HandleSignRound1(ctx context.Context, msg SignRound1Message) (SignFinishMessage, error) {
	if p.state != signStateP2WaitConsAndOpen {
		logger.Error(ctx, "sign p2: handle sign round 1: %s", ErrOutOfSequenceMessage)
		return SignFinishMessage{}, ErrOutOfSequenceMessage
	}

	x1Tilde := msg.Consistency.ReshardedPublicShare
	r1 := msg.Consistency.R1
	cc := msg.Consistency.CC

	// G*(t_a+cc) =? X1~ * (r1+rho2) - X1_peer, where X1_peer = Joint -
	// MyPublic (the joint key minus P2's own share leaves P1's share).
	lhs := p.mtaP2.TA.Add(cc).MulBase()
	x1Peer := p.keys.Joint.Add(p.keys.MyPublic.Neg())
	rhs := x1Tilde.Mul(r1.Add(p.rho2)).Add(x1Peer.Neg())
	if !lhs.Equal(rhs) {
		logger.Error(ctx, "sign p2: mta consistency check failed")
		return SignFinishMessage{}, ErrMtAConsistencyFailure
	}

	p.k2 = p.keys.MyShare.Sub(p.mtaP2.TA).Sub(cc)
	p.r1 = r1

	if err := zkp.VerifyDL(msg.Nonce.Proof, msg.Nonce.NoncePublicShare); err != nil {
		logger.Error(ctx, "sign p2: verify peer nonce proof: %s", err)
		return SignFinishMessage{}, errors.Wrap(ErrDLProofFailure, err.Error())
	}

	rho2Plus := r1.Add(p.rho2)
	if rho2Plus.IsZero() {
		logger.Error(ctx, "sign p2: r1+rho2 is zero")
		return SignFinishMessage{}, ErrInternalInvariantFailure
	}

	// R = R1*(r1+rho2) = G*rho1*rho2 + G*rho1*r1
	joint := msg.Nonce.NoncePublicShare.Mul(rho2Plus)
	if joint.IsInfinity() {
		logger.Error(ctx, "sign p2: joint nonce is infinity")
		return SignFinishMessage{}, ErrInternalInvariantFailure
	}
	rx := joint.XScalar()
	if rx.IsZero() {
		logger.Error(ctx, "sign p2: r_x is zero")
		return SignFinishMessage{}, ErrInternalInvariantFailure
	}

	rho2PlusInv, err := rho2Plus.Inverse()
	if err != nil {
		logger.Error(ctx, "sign p2: invert r1+rho2: %s", err)
		return SignFinishMessage{}, errors.Wrap(ErrBigIntDomainError, err.Error())
	}

	// s2 = (r1+rho2)^-1 * (m + rx*k2) mod q
	s2 := rho2PlusInv.Mul(p.m.Add(rx.Mul(p.k2)))
	if s2.IsZero() {
		logger.Error(ctx, "sign p2: s2 is zero")
		return SignFinishMessage{}, ErrInternalInvariantFailure
	}

	p.state = signStateP2Done
	return SignFinishMessage{Open: p.nonceW, S2: s2}, nil
}
