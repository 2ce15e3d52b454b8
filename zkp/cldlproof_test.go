package zkp

import (
	"testing"

	"github.com/tokenized/cl-ecdsa/curve"
	"github.com/tokenized/cl-ecdsa/homomorphic"
)

func TestCLDLProofRoundTrip(t *testing.T) {
	cipher, err := homomorphic.NewCL(curve.Order())
	if err != nil {
		t.Fatalf("new cl cipher: %s", err)
	}

	_, pkAny, err := cipher.KeyGen()
	if err != nil {
		t.Fatalf("keygen: %s", err)
	}
	pk := pkAny.(homomorphic.CLPublicKey)

	dlPriv, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random dl priv: %s", err)
	}
	dlPub := dlPriv.MulBase()

	ctAny, r, err := cipher.Encrypt(pk, dlPriv.Int())
	if err != nil {
		t.Fatalf("encrypt: %s", err)
	}
	ct := ctAny.(homomorphic.CLCiphertext)

	statement := CLDLStatement{Ciphertext: ct, PublicKey: pk, DLPublic: dlPub}
	witness := CLDLWitness{DLPrivate: dlPriv, R: r}

	proof, err := ProveCLDL(cipher, witness, statement)
	if err != nil {
		t.Fatalf("prove: %s", err)
	}

	if err := VerifyCLDL(cipher, proof, statement); err != nil {
		t.Fatalf("verify: %s", err)
	}
}

func TestCLDLProofRejectsWrongDLPublic(t *testing.T) {
	cipher, err := homomorphic.NewCL(curve.Order())
	if err != nil {
		t.Fatalf("new cl cipher: %s", err)
	}

	_, pkAny, err := cipher.KeyGen()
	if err != nil {
		t.Fatalf("keygen: %s", err)
	}
	pk := pkAny.(homomorphic.CLPublicKey)

	dlPriv, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random dl priv: %s", err)
	}
	dlPub := dlPriv.MulBase()

	ctAny, r, err := cipher.Encrypt(pk, dlPriv.Int())
	if err != nil {
		t.Fatalf("encrypt: %s", err)
	}
	ct := ctAny.(homomorphic.CLCiphertext)

	statement := CLDLStatement{Ciphertext: ct, PublicKey: pk, DLPublic: dlPub}
	witness := CLDLWitness{DLPrivate: dlPriv, R: r}

	proof, err := ProveCLDL(cipher, witness, statement)
	if err != nil {
		t.Fatalf("prove: %s", err)
	}

	other, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random other: %s", err)
	}
	tampered := statement
	tampered.DLPublic = other.MulBase()

	if err := VerifyCLDL(cipher, proof, tampered); err == nil {
		t.Fatalf("expected verification failure against wrong dl public key")
	}
}
