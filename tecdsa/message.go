package tecdsa

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"
	"github.com/tokenized/cl-ecdsa/bigint"
	"github.com/tokenized/cl-ecdsa/classgroup"
	"github.com/tokenized/cl-ecdsa/curve"
	"github.com/tokenized/cl-ecdsa/homomorphic"
	"github.com/tokenized/cl-ecdsa/mta"
	"github.com/tokenized/cl-ecdsa/zkp"
)

// DefaultEndian matches the teacher's threshold.DefaultEndian choice for
// every length prefix this package writes.
var DefaultEndian = binary.LittleEndian

// MessageType tags every wire message with which of the protocol's fixed
// steps it belongs to, matching spec.md 6's tagged-union message list.
type MessageType byte

const (
	MsgKeyGenRound1P1 MessageType = iota + 1
	MsgKeyGenRound2P1
	MsgMtaRound1P1
	MsgSignRound1P1
	MsgKeyGenRound1P2
	MsgKeyGenFinishP2
	MsgNonceCommitP2
	MsgMtaRound1P2
	MsgSignFinishOfflineP2
	MsgSignFinishP2
)

// writeScalar/readScalar/writePoint/readPoint write the fixed-size
// canonical encodings without a length prefix, since their size never
// varies, matching spec.md 6's "scalars - 32 byte big-endian" /
// "curve points - 33-byte SEC-1 compressed" field encodings.
func writeScalar(s curve.Scalar, buf *bytes.Buffer) error {
	_, err := buf.Write(s.Bytes())
	return err
}

func readScalar(r *bytes.Reader) (curve.Scalar, error) {
	b := make([]byte, 32)
	if _, err := r.Read(b); err != nil {
		return curve.Scalar{}, err
	}
	return curve.ScalarFromBytes(b), nil
}

func writePoint(p curve.Point, buf *bytes.Buffer) error {
	_, err := buf.Write(p.Bytes())
	return err
}

func readPoint(r *bytes.Reader) (curve.Point, error) {
	b := make([]byte, curve.PointCompressedLength)
	if _, err := r.Read(b); err != nil {
		return curve.Point{}, err
	}
	return curve.PointFromBytes(b)
}

func writeBlindFactor(b []byte, buf *bytes.Buffer) error {
	return bigint.WriteUnsigned(bigint.New(new(big.Int).SetBytes(b)), buf)
}

func readBlindFactor(r *bytes.Reader) ([]byte, error) {
	i, err := bigint.ReadUnsigned(r)
	if err != nil {
		return nil, err
	}
	return i.Big().Bytes(), nil
}

func writeDLProof(p zkp.DLProof, buf *bytes.Buffer) error {
	if err := writePoint(p.Commitment, buf); err != nil {
		return err
	}
	return writeScalar(p.ChallengeResponse, buf)
}

func readDLProof(r *bytes.Reader) (zkp.DLProof, error) {
	commitment, err := readPoint(r)
	if err != nil {
		return zkp.DLProof{}, err
	}
	response, err := readScalar(r)
	if err != nil {
		return zkp.DLProof{}, err
	}
	return zkp.DLProof{Commitment: commitment, ChallengeResponse: response}, nil
}

func writeDLComZKCommitments(c zkp.DLComZKCommitments, buf *bytes.Buffer) error {
	if err := writeBlindFactor(c.PublicKeyCommitment, buf); err != nil {
		return err
	}
	return writeBlindFactor(c.ProofCommitment, buf)
}

func readDLComZKCommitments(r *bytes.Reader) (zkp.DLComZKCommitments, error) {
	pk, err := readBlindFactor(r)
	if err != nil {
		return zkp.DLComZKCommitments{}, err
	}
	proof, err := readBlindFactor(r)
	if err != nil {
		return zkp.DLComZKCommitments{}, err
	}
	return zkp.DLComZKCommitments{PublicKeyCommitment: pk, ProofCommitment: proof}, nil
}

func writeDLComZKWitness(w zkp.DLComZKWitness, buf *bytes.Buffer) error {
	if err := writeBlindFactor(w.PublicKeyBlindFactor, buf); err != nil {
		return err
	}
	if err := writeBlindFactor(w.ProofBlindFactor, buf); err != nil {
		return err
	}
	if err := writePoint(w.PublicKey, buf); err != nil {
		return err
	}
	return writeDLProof(w.Proof, buf)
}

func readDLComZKWitness(r *bytes.Reader) (zkp.DLComZKWitness, error) {
	pkBlind, err := readBlindFactor(r)
	if err != nil {
		return zkp.DLComZKWitness{}, err
	}
	proofBlind, err := readBlindFactor(r)
	if err != nil {
		return zkp.DLComZKWitness{}, err
	}
	publicKey, err := readPoint(r)
	if err != nil {
		return zkp.DLComZKWitness{}, err
	}
	proof, err := readDLProof(r)
	if err != nil {
		return zkp.DLComZKWitness{}, err
	}
	return zkp.DLComZKWitness{
		PublicKeyBlindFactor: pkBlind,
		ProofBlindFactor:     proofBlind,
		PublicKey:            publicKey,
		Proof:                proof,
	}, nil
}

// cipherTag identifies which homomorphic.Cipher backend a wire-encoded
// proof/statement/ciphertext belongs to, since MtaRound1Message and
// MtaRound1MessageP2 carry the zkp package's PlaintextProof/
// PlaintextStatement and homomorphic.Ciphertext interfaces rather than a
// single concrete type (spec.md 4.3/9's cipher-substitutability goal).
type cipherTag byte

const (
	cipherTagCL cipherTag = iota + 1
	cipherTagPaillier
)

func writeCLCiphertext(c homomorphic.CLCiphertext, buf *bytes.Buffer) error {
	if err := c.C1.Write(buf); err != nil {
		return err
	}
	return c.C2.Write(buf)
}

func writeCLPublicKey(pk homomorphic.CLPublicKey, buf *bytes.Buffer) error {
	return pk.Form.Write(buf)
}

func writeCLStatement(s zkp.CLStatement, buf *bytes.Buffer) error {
	if err := writeCLCiphertext(s.Ciphertext, buf); err != nil {
		return err
	}
	return writeCLPublicKey(s.PublicKey, buf)
}

func writeCLProof(p zkp.CLProof, buf *bytes.Buffer) error {
	if err := p.T1.Write(buf); err != nil {
		return err
	}
	if err := p.T2.Write(buf); err != nil {
		return err
	}
	if err := bigint.WriteUnsigned(bigint.New(p.U1), buf); err != nil {
		return err
	}
	return bigint.WriteUnsigned(bigint.New(p.U2), buf)
}

func readCLCiphertext(group *classgroup.Group, r *bytes.Reader) (homomorphic.CLCiphertext, error) {
	c1, err := classgroup.Read(group, r)
	if err != nil {
		return homomorphic.CLCiphertext{}, err
	}
	c2, err := classgroup.Read(group, r)
	if err != nil {
		return homomorphic.CLCiphertext{}, err
	}
	return homomorphic.CLCiphertext{C1: c1, C2: c2}, nil
}

func readCLPublicKey(group *classgroup.Group, r *bytes.Reader) (homomorphic.CLPublicKey, error) {
	form, err := classgroup.Read(group, r)
	if err != nil {
		return homomorphic.CLPublicKey{}, err
	}
	return homomorphic.CLPublicKey{Form: form}, nil
}

func readCLStatement(group *classgroup.Group, r *bytes.Reader) (zkp.CLStatement, error) {
	ct, err := readCLCiphertext(group, r)
	if err != nil {
		return zkp.CLStatement{}, err
	}
	pk, err := readCLPublicKey(group, r)
	if err != nil {
		return zkp.CLStatement{}, err
	}
	return zkp.CLStatement{Ciphertext: ct, PublicKey: pk}, nil
}

func readCLProof(group *classgroup.Group, r *bytes.Reader) (zkp.CLProof, error) {
	t1, err := classgroup.Read(group, r)
	if err != nil {
		return zkp.CLProof{}, err
	}
	t2, err := classgroup.Read(group, r)
	if err != nil {
		return zkp.CLProof{}, err
	}
	u1, err := bigint.ReadUnsigned(r)
	if err != nil {
		return zkp.CLProof{}, err
	}
	u2, err := bigint.ReadUnsigned(r)
	if err != nil {
		return zkp.CLProof{}, err
	}
	return zkp.CLProof{T1: t1, T2: t2, U1: u1.Big(), U2: u2.Big()}, nil
}

func writeBigUnsigned(v *big.Int, buf *bytes.Buffer) error {
	return bigint.WriteUnsigned(bigint.New(v), buf)
}

func readBigUnsigned(r *bytes.Reader) (*big.Int, error) {
	i, err := bigint.ReadUnsigned(r)
	if err != nil {
		return nil, err
	}
	return i.Big(), nil
}

func writePaillierCiphertext(c homomorphic.PaillierCiphertext, buf *bytes.Buffer) error {
	return writeBigUnsigned(c.C, buf)
}

func readPaillierCiphertext(r *bytes.Reader) (homomorphic.PaillierCiphertext, error) {
	c, err := readBigUnsigned(r)
	if err != nil {
		return homomorphic.PaillierCiphertext{}, err
	}
	return homomorphic.PaillierCiphertext{C: c}, nil
}

func writePaillierPublicKey(pk homomorphic.PaillierPublicKey, buf *bytes.Buffer) error {
	if err := writeBigUnsigned(pk.N, buf); err != nil {
		return err
	}
	return writeBigUnsigned(pk.N2, buf)
}

func readPaillierPublicKey(r *bytes.Reader) (homomorphic.PaillierPublicKey, error) {
	n, err := readBigUnsigned(r)
	if err != nil {
		return homomorphic.PaillierPublicKey{}, err
	}
	n2, err := readBigUnsigned(r)
	if err != nil {
		return homomorphic.PaillierPublicKey{}, err
	}
	return homomorphic.PaillierPublicKey{N: n, N2: n2}, nil
}

func writePaillierStatement(s zkp.PaillierStatement, buf *bytes.Buffer) error {
	if err := writePaillierCiphertext(s.Ciphertext, buf); err != nil {
		return err
	}
	return writePaillierPublicKey(s.PublicKey, buf)
}

func readPaillierStatement(r *bytes.Reader) (zkp.PaillierStatement, error) {
	ct, err := readPaillierCiphertext(r)
	if err != nil {
		return zkp.PaillierStatement{}, err
	}
	pk, err := readPaillierPublicKey(r)
	if err != nil {
		return zkp.PaillierStatement{}, err
	}
	return zkp.PaillierStatement{Ciphertext: ct, PublicKey: pk}, nil
}

func writePaillierProof(p zkp.PaillierProof, buf *bytes.Buffer) error {
	if err := writeBigUnsigned(p.A, buf); err != nil {
		return err
	}
	if err := writeBigUnsigned(p.Zm, buf); err != nil {
		return err
	}
	return writeBigUnsigned(p.Zr, buf)
}

func readPaillierProof(r *bytes.Reader) (zkp.PaillierProof, error) {
	a, err := readBigUnsigned(r)
	if err != nil {
		return zkp.PaillierProof{}, err
	}
	zm, err := readBigUnsigned(r)
	if err != nil {
		return zkp.PaillierProof{}, err
	}
	zr, err := readBigUnsigned(r)
	if err != nil {
		return zkp.PaillierProof{}, err
	}
	return zkp.PaillierProof{A: a, Zm: zm, Zr: zr}, nil
}

// writePlaintextProof/writePlaintextStatement/writeCiphertext tag the
// wire encoding with which cipher backend produced the value, then
// dispatch to that backend's concrete writer.
func writePlaintextProof(p zkp.PlaintextProof, buf *bytes.Buffer) error {
	switch proof := p.(type) {
	case zkp.CLProof:
		if err := buf.WriteByte(byte(cipherTagCL)); err != nil {
			return err
		}
		return writeCLProof(proof, buf)
	case zkp.PaillierProof:
		if err := buf.WriteByte(byte(cipherTagPaillier)); err != nil {
			return err
		}
		return writePaillierProof(proof, buf)
	default:
		return ErrUnsupportedCipherBackend
	}
}

// readPlaintextProof dispatches on the wire tag, recovering the CL class
// group from cipher when the tag says CL (cipher must then be a
// *homomorphic.CL; Paillier needs no such shared context).
func readPlaintextProof(cipher homomorphic.Cipher, r *bytes.Reader) (zkp.PlaintextProof, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch cipherTag(tagByte) {
	case cipherTagCL:
		cl, ok := cipher.(*homomorphic.CL)
		if !ok {
			return nil, ErrUnsupportedCipherBackend
		}
		return readCLProof(cl.Group(), r)
	case cipherTagPaillier:
		return readPaillierProof(r)
	default:
		return nil, ErrUnsupportedCipherBackend
	}
}

func writePlaintextStatement(s zkp.PlaintextStatement, buf *bytes.Buffer) error {
	switch statement := s.(type) {
	case zkp.CLStatement:
		if err := buf.WriteByte(byte(cipherTagCL)); err != nil {
			return err
		}
		return writeCLStatement(statement, buf)
	case zkp.PaillierStatement:
		if err := buf.WriteByte(byte(cipherTagPaillier)); err != nil {
			return err
		}
		return writePaillierStatement(statement, buf)
	default:
		return ErrUnsupportedCipherBackend
	}
}

func readPlaintextStatement(cipher homomorphic.Cipher, r *bytes.Reader) (zkp.PlaintextStatement, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch cipherTag(tagByte) {
	case cipherTagCL:
		cl, ok := cipher.(*homomorphic.CL)
		if !ok {
			return nil, ErrUnsupportedCipherBackend
		}
		return readCLStatement(cl.Group(), r)
	case cipherTagPaillier:
		return readPaillierStatement(r)
	default:
		return nil, ErrUnsupportedCipherBackend
	}
}

func writeCiphertext(ct homomorphic.Ciphertext, buf *bytes.Buffer) error {
	switch c := ct.(type) {
	case homomorphic.CLCiphertext:
		if err := buf.WriteByte(byte(cipherTagCL)); err != nil {
			return err
		}
		return writeCLCiphertext(c, buf)
	case homomorphic.PaillierCiphertext:
		if err := buf.WriteByte(byte(cipherTagPaillier)); err != nil {
			return err
		}
		return writePaillierCiphertext(c, buf)
	default:
		return ErrUnsupportedCipherBackend
	}
}

func readCiphertext(cipher homomorphic.Cipher, r *bytes.Reader) (homomorphic.Ciphertext, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch cipherTag(tagByte) {
	case cipherTagCL:
		cl, ok := cipher.(*homomorphic.CL)
		if !ok {
			return nil, ErrUnsupportedCipherBackend
		}
		return readCLCiphertext(cl.Group(), r)
	case cipherTagPaillier:
		return readPaillierCiphertext(r)
	default:
		return nil, ErrUnsupportedCipherBackend
	}
}

// MtaConsistencyMessage is P1's step-4 MtA-consistency payload, matching
// party_one.rs's MtaConsistencyMsg{reshared_public_share, r1, cc}.
type MtaConsistencyMessage struct {
	ReshardedPublicShare curve.Point
	R1                   curve.Scalar
	CC                   curve.Scalar
}

func (m MtaConsistencyMessage) Write(buf *bytes.Buffer) error {
	if err := writePoint(m.ReshardedPublicShare, buf); err != nil {
		return err
	}
	if err := writeScalar(m.R1, buf); err != nil {
		return err
	}
	return writeScalar(m.CC, buf)
}

func readMtaConsistencyMessage(r *bytes.Reader) (MtaConsistencyMessage, error) {
	reshared, err := readPoint(r)
	if err != nil {
		return MtaConsistencyMessage{}, err
	}
	r1, err := readScalar(r)
	if err != nil {
		return MtaConsistencyMessage{}, err
	}
	cc, err := readScalar(r)
	if err != nil {
		return MtaConsistencyMessage{}, err
	}
	return MtaConsistencyMessage{ReshardedPublicShare: reshared, R1: r1, CC: cc}, nil
}

// NonceKEMessage is P1's nonce-opening message, carrying its nonce public
// share and a Schnorr proof of knowledge of the matching secret,
// matching party_one.rs's NonceKEMsg{nonce_public_key, dl_proof}.
type NonceKEMessage struct {
	NoncePublicShare curve.Point
	Proof            zkp.DLProof
}

func (m NonceKEMessage) Write(buf *bytes.Buffer) error {
	if err := writePoint(m.NoncePublicShare, buf); err != nil {
		return err
	}
	return writeDLProof(m.Proof, buf)
}

func readNonceKEMessage(r *bytes.Reader) (NonceKEMessage, error) {
	share, err := readPoint(r)
	if err != nil {
		return NonceKEMessage{}, err
	}
	proof, err := readDLProof(r)
	if err != nil {
		return NonceKEMessage{}, err
	}
	return NonceKEMessage{NoncePublicShare: share, Proof: proof}, nil
}

// SignRound1Message is P1's step-4 combined message: the MtA-consistency
// payload and the nonce opening, sent together, matching spec.md 6's
// Party-One SignRound1(MtaConsistency, NonceKE) tag.
type SignRound1Message struct {
	Consistency MtaConsistencyMessage
	Nonce       NonceKEMessage
}

// Encode serializes msg with its MessageType tag followed by its fields,
// which are all curve.Point/curve.Scalar values and so are written in
// their fixed-size encodings with no length prefix (see writeScalar).
func (m SignRound1Message) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := buf.WriteByte(byte(MsgSignRound1P1)); err != nil {
		return nil, err
	}
	if err := m.Consistency.Write(&buf); err != nil {
		return nil, err
	}
	if err := m.Nonce.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeSignRound1Message decodes a SignRound1Message previously produced
// by Encode, rejecting any other message type as out of sequence.
func DecodeSignRound1Message(data []byte) (SignRound1Message, error) {
	r := bytes.NewReader(data)
	tag, err := r.ReadByte()
	if err != nil {
		return SignRound1Message{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	if MessageType(tag) != MsgSignRound1P1 {
		return SignRound1Message{}, ErrOutOfSequenceMessage
	}

	consistency, err := readMtaConsistencyMessage(r)
	if err != nil {
		return SignRound1Message{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	nonce, err := readNonceKEMessage(r)
	if err != nil {
		return SignRound1Message{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	return SignRound1Message{Consistency: consistency, Nonce: nonce}, nil
}

// MtaRound1Message is P1's MtA first-round message (spec.md 6's
// MtaRound1(CLProof, CLState) tag), a thin wire wrapper around
// mta.FirstRoundMessage.
type MtaRound1Message struct {
	mta.FirstRoundMessage
}

func (m MtaRound1Message) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := buf.WriteByte(byte(MsgMtaRound1P1)); err != nil {
		return nil, err
	}
	if err := writePlaintextProof(m.Proof, &buf); err != nil {
		return nil, err
	}
	if err := writePlaintextStatement(m.State, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeMtaRound1Message decodes a MtaRound1Message. cipher is the
// homomorphic cipher both parties already agreed on at session setup
// (never itself transmitted): its concrete type only matters for
// recovering the CL class group context the CL wire tag needs, since CL
// forms don't carry their group over the wire (spec.md 6's class-group
// wire-format note that only a and b travel on the wire).
func DecodeMtaRound1Message(cipher homomorphic.Cipher, data []byte) (MtaRound1Message, error) {
	r := bytes.NewReader(data)
	tag, err := r.ReadByte()
	if err != nil {
		return MtaRound1Message{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	if MessageType(tag) != MsgMtaRound1P1 {
		return MtaRound1Message{}, ErrOutOfSequenceMessage
	}

	proof, err := readPlaintextProof(cipher, r)
	if err != nil {
		return MtaRound1Message{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	state, err := readPlaintextStatement(cipher, r)
	if err != nil {
		return MtaRound1Message{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	return MtaRound1Message{mta.FirstRoundMessage{Proof: proof, State: state}}, nil
}

// MtaRound1MessageP2 is P2's MtA reply, a single ciphertext under
// whichever cipher backend the session negotiated (spec.md 6's Party-Two
// MtaRound1(Ciphertext) tag).
type MtaRound1MessageP2 struct {
	Ciphertext homomorphic.Ciphertext
}

func (m MtaRound1MessageP2) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := buf.WriteByte(byte(MsgMtaRound1P2)); err != nil {
		return nil, err
	}
	if err := writeCiphertext(m.Ciphertext, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeMtaRound1MessageP2(cipher homomorphic.Cipher, data []byte) (MtaRound1MessageP2, error) {
	r := bytes.NewReader(data)
	tag, err := r.ReadByte()
	if err != nil {
		return MtaRound1MessageP2{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	if MessageType(tag) != MsgMtaRound1P2 {
		return MtaRound1MessageP2{}, ErrOutOfSequenceMessage
	}
	ct, err := readCiphertext(cipher, r)
	if err != nil {
		return MtaRound1MessageP2{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	return MtaRound1MessageP2{Ciphertext: ct}, nil
}

// KeyGenRound1Message is P1's committed (X1, pi1), matching spec.md 6's
// Party-One KeyGenRound1(DLCommitment) tag.
type KeyGenRound1Message struct {
	Commitments zkp.DLComZKCommitments
}

func (m KeyGenRound1Message) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := buf.WriteByte(byte(MsgKeyGenRound1P1)); err != nil {
		return nil, err
	}
	if err := writeDLComZKCommitments(m.Commitments, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeKeyGenRound1Message(data []byte) (KeyGenRound1Message, error) {
	r := bytes.NewReader(data)
	tag, err := r.ReadByte()
	if err != nil {
		return KeyGenRound1Message{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	if MessageType(tag) != MsgKeyGenRound1P1 {
		return KeyGenRound1Message{}, ErrOutOfSequenceMessage
	}
	commitments, err := readDLComZKCommitments(r)
	if err != nil {
		return KeyGenRound1Message{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	return KeyGenRound1Message{Commitments: commitments}, nil
}

// KeyGenRound2Message is P1's opening of KeyGenRound1Message, matching
// spec.md 6's Party-One KeyGenRound2(DLComZK-open) tag.
type KeyGenRound2Message struct {
	Open zkp.DLComZKWitness
}

func (m KeyGenRound2Message) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := buf.WriteByte(byte(MsgKeyGenRound2P1)); err != nil {
		return nil, err
	}
	if err := writeDLComZKWitness(m.Open, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeKeyGenRound2Message(data []byte) (KeyGenRound2Message, error) {
	r := bytes.NewReader(data)
	tag, err := r.ReadByte()
	if err != nil {
		return KeyGenRound2Message{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	if MessageType(tag) != MsgKeyGenRound2P1 {
		return KeyGenRound2Message{}, ErrOutOfSequenceMessage
	}
	open, err := readDLComZKWitness(r)
	if err != nil {
		return KeyGenRound2Message{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	return KeyGenRound2Message{Open: open}, nil
}

// KeyGenRound1MessageP2 is P2's (X2, pi2), sent without a commitment
// stage, matching spec.md 6's Party-Two KeyGenRound1(PublicShare, DLProof)
// tag.
type KeyGenRound1MessageP2 struct {
	PublicShare curve.Point
	Proof       zkp.DLProof
}

func (m KeyGenRound1MessageP2) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := buf.WriteByte(byte(MsgKeyGenRound1P2)); err != nil {
		return nil, err
	}
	if err := writePoint(m.PublicShare, &buf); err != nil {
		return nil, err
	}
	if err := writeDLProof(m.Proof, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeKeyGenRound1MessageP2(data []byte) (KeyGenRound1MessageP2, error) {
	r := bytes.NewReader(data)
	tag, err := r.ReadByte()
	if err != nil {
		return KeyGenRound1MessageP2{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	if MessageType(tag) != MsgKeyGenRound1P2 {
		return KeyGenRound1MessageP2{}, ErrOutOfSequenceMessage
	}
	share, err := readPoint(r)
	if err != nil {
		return KeyGenRound1MessageP2{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	proof, err := readDLProof(r)
	if err != nil {
		return KeyGenRound1MessageP2{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	return KeyGenRound1MessageP2{PublicShare: share, Proof: proof}, nil
}

// NonceCommitMessage is P2's step-1 commitment to its nonce point,
// matching spec.md 6's Party-Two NonceCommit(DLCommitment) tag.
type NonceCommitMessage struct {
	Commitments zkp.DLComZKCommitments
}

func (m NonceCommitMessage) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := buf.WriteByte(byte(MsgNonceCommitP2)); err != nil {
		return nil, err
	}
	if err := writeDLComZKCommitments(m.Commitments, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeNonceCommitMessage(data []byte) (NonceCommitMessage, error) {
	r := bytes.NewReader(data)
	tag, err := r.ReadByte()
	if err != nil {
		return NonceCommitMessage{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	if MessageType(tag) != MsgNonceCommitP2 {
		return NonceCommitMessage{}, ErrOutOfSequenceMessage
	}
	commitments, err := readDLComZKCommitments(r)
	if err != nil {
		return NonceCommitMessage{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	return NonceCommitMessage{Commitments: commitments}, nil
}

// SignFinishOfflineMessage is P2's opening of its nonce commitment,
// matching spec.md 6's Party-Two SignFinishOffline(DLComZK-open) tag.
type SignFinishOfflineMessage struct {
	Open zkp.DLComZKWitness
}

func (m SignFinishOfflineMessage) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := buf.WriteByte(byte(MsgSignFinishOfflineP2)); err != nil {
		return nil, err
	}
	if err := writeDLComZKWitness(m.Open, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeSignFinishOfflineMessage(data []byte) (SignFinishOfflineMessage, error) {
	r := bytes.NewReader(data)
	tag, err := r.ReadByte()
	if err != nil {
		return SignFinishOfflineMessage{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	if MessageType(tag) != MsgSignFinishOfflineP2 {
		return SignFinishOfflineMessage{}, ErrOutOfSequenceMessage
	}
	open, err := readDLComZKWitness(r)
	if err != nil {
		return SignFinishOfflineMessage{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	return SignFinishOfflineMessage{Open: open}, nil
}

// SignFinishMessage carries P2's nonce opening together with its partial
// signature s2, matching spec.md 6's Party-Two
// SignFinish(DLComZK-open, Scalar s2) tag.
type SignFinishMessage struct {
	Open zkp.DLComZKWitness
	S2   curve.Scalar
}

func (m SignFinishMessage) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := buf.WriteByte(byte(MsgSignFinishP2)); err != nil {
		return nil, err
	}
	if err := writeDLComZKWitness(m.Open, &buf); err != nil {
		return nil, err
	}
	if err := writeScalar(m.S2, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeSignFinishMessage(data []byte) (SignFinishMessage, error) {
	r := bytes.NewReader(data)
	tag, err := r.ReadByte()
	if err != nil {
		return SignFinishMessage{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	if MessageType(tag) != MsgSignFinishP2 {
		return SignFinishMessage{}, ErrOutOfSequenceMessage
	}
	open, err := readDLComZKWitness(r)
	if err != nil {
		return SignFinishMessage{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	s2, err := readScalar(r)
	if err != nil {
		return SignFinishMessage{}, errors.Wrap(ErrDeserializationFailure, err.Error())
	}
	return SignFinishMessage{Open: open, S2: s2}, nil
}

// KeyGenFinishMessage is P2's empty acknowledgement that it has computed
// the joint public key, matching spec.md 6's Party-Two KeyGenFinish tag.
type KeyGenFinishMessage struct{}

func (m KeyGenFinishMessage) Encode() ([]byte, error) {
	return []byte{byte(MsgKeyGenFinishP2)}, nil
}

func DecodeKeyGenFinishMessage(data []byte) (KeyGenFinishMessage, error) {
	if len(data) != 1 || MessageType(data[0]) != MsgKeyGenFinishP2 {
		return KeyGenFinishMessage{}, ErrOutOfSequenceMessage
	}
	return KeyGenFinishMessage{}, nil
}
