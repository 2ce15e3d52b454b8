package zkp

import "testing"

import "github.com/tokenized/cl-ecdsa/curve"

func TestDLProofRoundTrip(t *testing.T) {
	secret, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random secret: %s", err)
	}
	publicKey := secret.MulBase()

	proof, err := ProveDL(secret)
	if err != nil {
		t.Fatalf("prove: %s", err)
	}

	if err := VerifyDL(proof, publicKey); err != nil {
		t.Fatalf("verify: %s", err)
	}
}

func TestDLProofRejectsWrongPublicKey(t *testing.T) {
	secret, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random secret: %s", err)
	}
	other, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random other: %s", err)
	}

	proof, err := ProveDL(secret)
	if err != nil {
		t.Fatalf("prove: %s", err)
	}

	if err := VerifyDL(proof, other.MulBase()); err == nil {
		t.Fatalf("expected verification failure against wrong public key")
	}
}

func TestDLComZKRoundTrip(t *testing.T) {
	secret, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random secret: %s", err)
	}

	commitments, witness, err := CommitDLZK(secret)
	if err != nil {
		t.Fatalf("commit: %s", err)
	}

	if err := VerifyDLComZK(commitments, witness); err != nil {
		t.Fatalf("verify: %s", err)
	}
}

func TestDLComZKRejectsTamperedOpening(t *testing.T) {
	secret, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random secret: %s", err)
	}

	commitments, witness, err := CommitDLZK(secret)
	if err != nil {
		t.Fatalf("commit: %s", err)
	}

	other, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random other: %s", err)
	}
	witness.PublicKey = other.MulBase()

	if err := VerifyDLComZK(commitments, witness); err == nil {
		t.Fatalf("expected verification failure against tampered opening")
	}
}
