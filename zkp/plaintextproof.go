package zkp

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/tokenized/cl-ecdsa/curve"
	"github.com/tokenized/cl-ecdsa/homomorphic"
)

var ErrUnsupportedCipherBackend = errors.New("zkp: unsupported homomorphic cipher backend")

// PlaintextProof is a proof of knowledge of a ciphertext's plaintext and
// encryption randomness, backed by either the CL or the Paillier cipher.
// mta and tecdsa carry this rather than a concrete proof type so they
// stay agnostic to which homomorphic.Cipher backs a given session.
type PlaintextProof interface {
	isPlaintextProof()
}

func (CLProof) isPlaintextProof()       {}
func (PaillierProof) isPlaintextProof() {}

// PlaintextStatement is the public instance a PlaintextProof is checked
// against, likewise backed by either cipher.
type PlaintextStatement interface {
	isPlaintextStatement()

	// PlaintextCiphertext and PlaintextPublicKey expose the statement's
	// fields generically, so mta can drive Cipher.Sum/Scal/Encrypt
	// without type-switching on the backend itself.
	PlaintextCiphertext() homomorphic.Ciphertext
	PlaintextPublicKey() homomorphic.PublicKey
}

func (CLStatement) isPlaintextStatement()       {}
func (PaillierStatement) isPlaintextStatement() {}

func (s CLStatement) PlaintextCiphertext() homomorphic.Ciphertext { return s.Ciphertext }
func (s CLStatement) PlaintextPublicKey() homomorphic.PublicKey   { return s.PublicKey }

func (s PaillierStatement) PlaintextCiphertext() homomorphic.Ciphertext { return s.Ciphertext }
func (s PaillierStatement) PlaintextPublicKey() homomorphic.PublicKey   { return s.PublicKey }

// NewPlaintextStatement builds the PlaintextStatement variant matching
// cipher's concrete backend from a ciphertext and the public key it was
// encrypted under.
func NewPlaintextStatement(cipher homomorphic.Cipher, ct homomorphic.Ciphertext, pk homomorphic.PublicKey) (PlaintextStatement, error) {
	switch cipher.(type) {
	case *homomorphic.CL:
		clCt, ok := ct.(homomorphic.CLCiphertext)
		if !ok {
			return nil, ErrUnsupportedCipherBackend
		}
		clPK, ok := pk.(homomorphic.CLPublicKey)
		if !ok {
			return nil, ErrUnsupportedCipherBackend
		}
		return CLStatement{Ciphertext: clCt, PublicKey: clPK}, nil
	case *homomorphic.Paillier:
		pCt, ok := ct.(homomorphic.PaillierCiphertext)
		if !ok {
			return nil, ErrUnsupportedCipherBackend
		}
		pPK, ok := pk.(homomorphic.PaillierPublicKey)
		if !ok {
			return nil, ErrUnsupportedCipherBackend
		}
		return PaillierStatement{Ciphertext: pCt, PublicKey: pPK}, nil
	default:
		return nil, ErrUnsupportedCipherBackend
	}
}

// ProvePlaintextKnowledge proves statement against (x, r) under cipher,
// dispatching to ProveCL or ProvePaillier by cipher's concrete type.
func ProvePlaintextKnowledge(cipher homomorphic.Cipher, x curve.Scalar, r *big.Int, statement PlaintextStatement) (PlaintextProof, error) {
	switch c := cipher.(type) {
	case *homomorphic.CL:
		s, ok := statement.(CLStatement)
		if !ok {
			return nil, ErrUnsupportedCipherBackend
		}
		return ProveCL(c, CLWitness{X: x, R: r}, s)
	case *homomorphic.Paillier:
		s, ok := statement.(PaillierStatement)
		if !ok {
			return nil, ErrUnsupportedCipherBackend
		}
		return ProvePaillier(c, PaillierWitness{M: x.Int(), R: r}, s)
	default:
		return nil, ErrUnsupportedCipherBackend
	}
}

// VerifyPlaintextKnowledge checks proof against statement under cipher,
// dispatching to VerifyCL or VerifyPaillier by cipher's concrete type.
func VerifyPlaintextKnowledge(cipher homomorphic.Cipher, proof PlaintextProof, statement PlaintextStatement) error {
	switch c := cipher.(type) {
	case *homomorphic.CL:
		p, ok := proof.(CLProof)
		if !ok {
			return ErrUnsupportedCipherBackend
		}
		s, ok := statement.(CLStatement)
		if !ok {
			return ErrUnsupportedCipherBackend
		}
		return VerifyCL(c, p, s)
	case *homomorphic.Paillier:
		p, ok := proof.(PaillierProof)
		if !ok {
			return ErrUnsupportedCipherBackend
		}
		s, ok := statement.(PaillierStatement)
		if !ok {
			return ErrUnsupportedCipherBackend
		}
		return VerifyPaillier(p, s)
	default:
		return ErrUnsupportedCipherBackend
	}
}
