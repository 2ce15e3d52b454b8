package tecdsa

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tokenized/cl-ecdsa/curve"
	"github.com/tokenized/cl-ecdsa/logger"
	"github.com/tokenized/cl-ecdsa/zkp"
)

// keyGenState names the points a party's key-generation side can be in,
// rejecting any message that arrives out of spec.md 4.6's fixed order.
type keyGenState byte

const (
	keyGenStateAwaitPeerShare keyGenState = iota + 1
	keyGenStateAwaitCommit
	keyGenStateAwaitOpen
	keyGenStateDone
)

// KeyGenParty1 drives the commit-then-open half of key-generation: it
// commits to its share before learning P2's, then only opens once P2's
// proof has already verified, matching spec.md 4.6's P1 column.
type KeyGenParty1 struct {
	state     keyGenState
	sessionID uuid.UUID

	x1          curve.Scalar
	x1Public    curve.Point
	commitments zkp.DLComZKCommitments
	witness     zkp.DLComZKWitness

	peerPublic curve.Point
	joint      curve.Point
}

// NewKeyGenParty1 draws x1, builds its DLComZK commitment, and returns the
// KeyGenRound1(DLCommitment) message to send P2, matching spec.md 4.6's
// "draw x1, X1=G.x1 / DL-prove x1 -> pi1 / build DLComZK(X1,pi1) -> (C1,
// open1)" steps.
func NewKeyGenParty1(ctx context.Context) (*KeyGenParty1, KeyGenRound1Message, error) {
	sessionID := uuid.New()
	ctx = logger.ContextWithLogTrace(ctx, sessionID.String())

	x1, err := curve.RandomScalar()
	if err != nil {
		logger.Error(ctx, "key-gen p1: draw x1: %s", err)
		return nil, KeyGenRound1Message{}, errors.Wrap(ErrInternalInvariantFailure, err.Error())
	}

	commitments, witness, err := zkp.CommitDLZK(x1)
	if err != nil {
		logger.Error(ctx, "key-gen p1: commit dl zk: %s", err)
		return nil, KeyGenRound1Message{}, errors.Wrap(ErrDLProofFailure, err.Error())
	}

	p := &KeyGenParty1{
		state:       keyGenStateAwaitPeerShare,
		sessionID:   sessionID,
		x1:          x1,
		x1Public:    witness.PublicKey,
		commitments: commitments,
		witness:     witness,
	}
	return p, KeyGenRound1Message{Commitments: commitments}, nil
}

// HandlePeerShare verifies P2's (X2, pi2) message and, on success, returns
// the KeyGenRound2(DLComZK-open) message that reveals X1, matching
// spec.md 4.6's "<- (X2, pi2) / verify pi2 is well-formed / -- open1 -->"
// exchange. The joint public key is already fixed at this point, since
// both X1 and X2 are now known.
func (p *KeyGenParty1) HandlePeerShare(ctx context.Context, msg KeyGenRound1MessageP2) (KeyGenRound2Message, error) {
	if p.state != keyGenStateAwaitPeerShare {
		logger.Error(ctx, "key-gen p1: handle peer share: %s", ErrOutOfSequenceMessage)
		return KeyGenRound2Message{}, ErrOutOfSequenceMessage
	}

	if err := zkp.VerifyDL(msg.Proof, msg.PublicShare); err != nil {
		logger.Error(ctx, "key-gen p1: verify peer dl proof: %s", err)
		return KeyGenRound2Message{}, errors.Wrap(ErrDLProofFailure, err.Error())
	}

	p.peerPublic = msg.PublicShare
	p.joint = p.x1Public.Add(p.peerPublic)
	p.state = keyGenStateDone

	return KeyGenRound2Message{Open: p.witness}, nil
}

// KeyStore returns this party's finished key store. Valid only once
// HandlePeerShare has succeeded.
func (p *KeyGenParty1) KeyStore() (KeyStore, error) {
	if p.state != keyGenStateDone {
		return KeyStore{}, ErrOutOfSequenceMessage
	}
	return KeyStore{MyShare: p.x1, MyPublic: p.x1Public, Joint: p.joint}, nil
}

// KeyGenParty2 draws its share directly (no commitment of its own) and
// only accepts P1's opening after P1's earlier commitment has been
// recorded, matching spec.md 4.6's P2 column.
type KeyGenParty2 struct {
	state keyGenState

	x2       curve.Scalar
	x2Public curve.Point

	peerCommitments zkp.DLComZKCommitments
	peerPublic      curve.Point
	joint           curve.Point
}

// NewKeyGenParty2 draws x2, DL-proves it, and returns the
// KeyGenRound1(PublicShare, DLProof) message, matching spec.md 4.6's
// "draw x2, X2=G.x2 / DL-prove x2 -> pi2" steps.
func NewKeyGenParty2(ctx context.Context) (*KeyGenParty2, KeyGenRound1MessageP2, error) {
	x2, err := curve.RandomScalar()
	if err != nil {
		logger.Error(ctx, "key-gen p2: draw x2: %s", err)
		return nil, KeyGenRound1MessageP2{}, errors.Wrap(ErrInternalInvariantFailure, err.Error())
	}

	proof, err := zkp.ProveDL(x2)
	if err != nil {
		logger.Error(ctx, "key-gen p2: prove dl: %s", err)
		return nil, KeyGenRound1MessageP2{}, errors.Wrap(ErrDLProofFailure, err.Error())
	}

	x2Public := x2.MulBase()
	p := &KeyGenParty2{
		state:    keyGenStateAwaitCommit,
		x2:       x2,
		x2Public: x2Public,
	}
	return p, KeyGenRound1MessageP2{PublicShare: x2Public, Proof: proof}, nil
}

// HandleCommitment records P1's commitment C1, to be checked once P1's
// opening arrives.
func (p *KeyGenParty2) HandleCommitment(ctx context.Context, msg KeyGenRound1Message) error {
	if p.state != keyGenStateAwaitCommit {
		logger.Error(ctx, "key-gen p2: handle commitment: %s", ErrOutOfSequenceMessage)
		return ErrOutOfSequenceMessage
	}
	p.peerCommitments = msg.Commitments
	p.state = keyGenStateAwaitOpen
	return nil
}

// HandleOpen verifies P1's opening against the recorded commitment and
// its enclosed proof against the revealed X1, matching spec.md 4.6's
// "verify C1 opens to (X1, pi1) / verify pi1 wrt X1" steps, then computes
// the joint public key and returns the KeyGenFinish acknowledgement.
func (p *KeyGenParty2) HandleOpen(ctx context.Context, msg KeyGenRound2Message) (KeyGenFinishMessage, error) {
	if p.state != keyGenStateAwaitOpen {
		logger.Error(ctx, "key-gen p2: handle open: %s", ErrOutOfSequenceMessage)
		return KeyGenFinishMessage{}, ErrOutOfSequenceMessage
	}

	if err := zkp.VerifyDLComZK(p.peerCommitments, msg.Open); err != nil {
		logger.Error(ctx, "key-gen p2: verify dl com zk: %s", err)
		return KeyGenFinishMessage{}, errors.Wrap(ErrCommitmentOpenFailure, err.Error())
	}

	p.peerPublic = msg.Open.PublicKey
	p.joint = p.x2Public.Add(p.peerPublic)
	p.state = keyGenStateDone

	return KeyGenFinishMessage{}, nil
}

// KeyStore returns this party's finished key store. Valid only once
// HandleOpen has succeeded.
func (p *KeyGenParty2) KeyStore() (KeyStore, error) {
	if p.state != keyGenStateDone {
		return KeyStore{}, ErrOutOfSequenceMessage
	}
	return KeyStore{MyShare: p.x2, MyPublic: p.x2Public, Joint: p.joint}, nil
}
