package zkp

import (
	"math/big"
	"testing"

	"github.com/tokenized/cl-ecdsa/curve"
	"github.com/tokenized/cl-ecdsa/homomorphic"
)

func TestCLProofRoundTrip(t *testing.T) {
	cipher, err := homomorphic.NewCL(curve.Order())
	if err != nil {
		t.Fatalf("new cl cipher: %s", err)
	}

	skAny, pkAny, err := cipher.KeyGen()
	if err != nil {
		t.Fatalf("keygen: %s", err)
	}
	_ = skAny
	pk := pkAny.(homomorphic.CLPublicKey)

	x, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random x: %s", err)
	}

	ctAny, r, err := cipher.Encrypt(pk, x.Int())
	if err != nil {
		t.Fatalf("encrypt: %s", err)
	}
	ct := ctAny.(homomorphic.CLCiphertext)

	statement := CLStatement{Ciphertext: ct, PublicKey: pk}
	witness := CLWitness{X: x, R: r}

	proof, err := ProveCL(cipher, witness, statement)
	if err != nil {
		t.Fatalf("prove: %s", err)
	}

	if err := VerifyCL(cipher, proof, statement); err != nil {
		t.Fatalf("verify: %s", err)
	}
}

func TestCLProofRejectsWrongStatement(t *testing.T) {
	cipher, err := homomorphic.NewCL(curve.Order())
	if err != nil {
		t.Fatalf("new cl cipher: %s", err)
	}

	_, pkAny, err := cipher.KeyGen()
	if err != nil {
		t.Fatalf("keygen: %s", err)
	}
	pk := pkAny.(homomorphic.CLPublicKey)

	x, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random x: %s", err)
	}
	ctAny, r, err := cipher.Encrypt(pk, x.Int())
	if err != nil {
		t.Fatalf("encrypt: %s", err)
	}
	ct := ctAny.(homomorphic.CLCiphertext)

	statement := CLStatement{Ciphertext: ct, PublicKey: pk}
	witness := CLWitness{X: x, R: r}

	proof, err := ProveCL(cipher, witness, statement)
	if err != nil {
		t.Fatalf("prove: %s", err)
	}

	otherCtAny, _, err := cipher.Encrypt(pk, big.NewInt(1))
	if err != nil {
		t.Fatalf("encrypt other: %s", err)
	}
	tampered := CLStatement{Ciphertext: otherCtAny.(homomorphic.CLCiphertext), PublicKey: pk}

	if err := VerifyCL(cipher, proof, tampered); err == nil {
		t.Fatalf("expected verification failure against tampered statement")
	}
}
