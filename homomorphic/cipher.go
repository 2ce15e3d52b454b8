// Package homomorphic provides the additively homomorphic encryption
// backends the MtA layer runs over: a CL (class-group) cipher and a
// Paillier cipher behind a single Cipher interface, so mta and tecdsa
// never branch on which backend is in play.
package homomorphic

import (
	"math/big"

	"github.com/pkg/errors"
)

var ErrDecryptOutOfRange = errors.New("homomorphic: decrypted value outside plaintext space")

// Ciphertext is an opaque encrypted value. Concrete backends type-assert
// it back to their own representation; callers only ever pass it along.
type Ciphertext interface {
	isCiphertext()
}

// PublicKey and PrivateKey are opaque per-backend key material.
type PublicKey interface {
	isPublicKey()
}

type PrivateKey interface {
	isPrivateKey()
}

// Cipher is the additively homomorphic encryption contract spec.md 4.3
// and 4.4 are written against: plaintexts are scalars mod q (the
// secp256k1 order), ciphertexts support a blind homomorphic sum and a
// scalar multiply without ever decrypting.
type Cipher interface {
	// KeyGen produces a fresh keypair for the plaintext modulus the
	// cipher was constructed with.
	KeyGen() (PrivateKey, PublicKey, error)

	// Encrypt returns an encryption of m under pk, along with the
	// randomness used (needed by the CL/Paillier proofs of plaintext
	// knowledge, which take it as a witness without revealing it).
	Encrypt(pk PublicKey, m *big.Int) (Ciphertext, *big.Int, error)

	// Decrypt recovers the plaintext under sk.
	Decrypt(sk PrivateKey, ct Ciphertext) (*big.Int, error)

	// Sum homomorphically adds two ciphertexts' plaintexts.
	Sum(pk PublicKey, a, b Ciphertext) (Ciphertext, error)

	// Scal homomorphically multiplies a ciphertext's plaintext by k.
	Scal(pk PublicKey, ct Ciphertext, k *big.Int) (Ciphertext, error)

	// PlaintextBound returns the modulus the plaintext space is taken
	// mod (q for both backends here).
	PlaintextBound() *big.Int
}
