package mta

import (
	"testing"

	"github.com/tokenized/cl-ecdsa/curve"
	"github.com/tokenized/cl-ecdsa/homomorphic"
	"github.com/tokenized/cl-ecdsa/zkp"
)

// newTestCipher builds the cipher the MtA tests run over. Paillier's
// decrypt is O(1) at any modulus, unlike the CL cipher's decode (an
// honestly-disclosed trial search, see homomorphic/cl.go), so it is the
// backend that can actually exercise a*b + noise at the real secp256k1
// order these tests operate at.
func newTestCipher(t *testing.T) homomorphic.Cipher {
	t.Helper()
	return homomorphic.NewPaillier(curve.Order())
}

func TestMtAProducesAdditiveSharesOfProduct(t *testing.T) {
	cipher := newTestCipher(t)

	a, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random a: %s", err)
	}
	b, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random b: %s", err)
	}

	partyOne, err := NewPartyOne(cipher, b)
	if err != nil {
		t.Fatalf("new party one: %s", err)
	}
	partyTwo, err := NewPartyTwo(cipher, a)
	if err != nil {
		t.Fatalf("new party two: %s", err)
	}

	msg, err := partyOne.GenerateSendMessage(partyOne.PublicKey)
	if err != nil {
		t.Fatalf("generate send message: %s", err)
	}

	cA, err := partyTwo.ReceiveAndSendMessage(msg)
	if err != nil {
		t.Fatalf("receive and send message: %s", err)
	}

	if err := partyOne.HandleReceiveMessage(cA); err != nil {
		t.Fatalf("handle receive message: %s", err)
	}

	sum := partyOne.TB.Add(partyTwo.TA)
	want := a.Mul(b)
	if !sum.Equal(want) {
		t.Fatalf("t_a + t_b != a*b: got %s want %s", sum, want)
	}
}

func TestMtARejectsTamperedProof(t *testing.T) {
	cipher := newTestCipher(t)

	a, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random a: %s", err)
	}
	b, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random b: %s", err)
	}

	partyOne, err := NewPartyOne(cipher, b)
	if err != nil {
		t.Fatalf("new party one: %s", err)
	}
	partyTwo, err := NewPartyTwo(cipher, a)
	if err != nil {
		t.Fatalf("new party two: %s", err)
	}

	msg, err := partyOne.GenerateSendMessage(partyOne.PublicKey)
	if err != nil {
		t.Fatalf("generate send message: %s", err)
	}

	otherB, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random other b: %s", err)
	}
	otherCt, _, err := cipher.Encrypt(partyOne.PublicKey, otherB.Int())
	if err != nil {
		t.Fatalf("encrypt other b: %s", err)
	}

	tamperedStatement := msg.State.(zkp.PaillierStatement)
	tamperedStatement.Ciphertext = otherCt.(homomorphic.PaillierCiphertext)
	msg.State = tamperedStatement

	if _, err := partyTwo.ReceiveAndSendMessage(msg); err == nil {
		t.Fatalf("expected proof verification failure against tampered ciphertext")
	}
}
