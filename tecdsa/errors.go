// Package tecdsa implements the two-party ECDSA key-generation and
// signing state machines: the outer protocol that drives the mta, zkp,
// and homomorphic packages through the exact message sequence spec.md
// 4.6/4.7 fix.
package tecdsa

import "github.com/pkg/errors"

// Error kinds, one sentinel per spec.md 7 error kind. Every failure
// inside a state-machine method returns one of these, wrapped with
// errors.Wrap where an underlying error adds context; nothing here is
// retried internally.
var (
	ErrCommitmentOpenFailure        = errors.New("tecdsa: commitment open failure")
	ErrDLProofFailure               = errors.New("tecdsa: dlog proof failure")
	ErrCLProofFailure               = errors.New("tecdsa: cl proof failure")
	ErrCLDLProofFailure             = errors.New("tecdsa: cl-dl proof failure")
	ErrMtAConsistencyFailure        = errors.New("tecdsa: mta consistency failure")
	ErrSignatureVerificationFailure = errors.New("tecdsa: signature verification failure")
	ErrOutOfSequenceMessage         = errors.New("tecdsa: message received out of sequence")
	ErrDeserializationFailure       = errors.New("tecdsa: message deserialization failure")
	ErrHomoEncryptionFailure        = errors.New("tecdsa: homomorphic encryption failure")
	ErrBigIntDomainError            = errors.New("tecdsa: bigint domain error")
	ErrInternalInvariantFailure     = errors.New("tecdsa: internal invariant failure")
	ErrUnsupportedCipherBackend     = errors.New("tecdsa: unsupported homomorphic cipher backend")
)
