package curve

import (
	"crypto/sha256"
	"testing"
)

func TestScalarAddSubMul(t *testing.T) {
	a, err := RandomScalar()
	if err != nil {
		t.Fatalf("random a: %s", err)
	}
	b, err := RandomScalar()
	if err != nil {
		t.Fatalf("random b: %s", err)
	}

	sum := a.Add(b)
	back := sum.Sub(b)
	if !back.Equal(a) {
		t.Fatalf("add/sub round trip failed : %s != %s", back, a)
	}

	inv, err := a.Inverse()
	if err != nil {
		t.Fatalf("inverse: %s", err)
	}
	one := a.Mul(inv)
	if one.Bytes()[31] != 1 {
		t.Fatalf("a * a^-1 != 1 : %s", one)
	}
}

func TestScalarBytesRoundTrip(t *testing.T) {
	s, err := RandomScalar()
	if err != nil {
		t.Fatalf("random: %s", err)
	}
	b := s.Bytes()
	if len(b) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(b))
	}
	recovered := ScalarFromBytes(b)
	if !recovered.Equal(s) {
		t.Fatalf("round trip failed")
	}
}

func TestPointCompressedRoundTrip(t *testing.T) {
	s, err := RandomScalar()
	if err != nil {
		t.Fatalf("random: %s", err)
	}
	p := s.MulBase()

	b := p.Bytes()
	if len(b) != PointCompressedLength {
		t.Fatalf("expected %d bytes, got %d", PointCompressedLength, len(b))
	}

	recovered, err := PointFromBytes(b)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if !recovered.Equal(p) {
		t.Fatalf("round trip failed")
	}
}

func TestPointAddMatchesScalarAdd(t *testing.T) {
	a, err := RandomScalar()
	if err != nil {
		t.Fatalf("random a: %s", err)
	}
	b, err := RandomScalar()
	if err != nil {
		t.Fatalf("random b: %s", err)
	}

	left := a.MulBase().Add(b.MulBase())
	right := a.Add(b).MulBase()
	if !left.Equal(right) {
		t.Fatalf("G*a + G*b != G*(a+b)")
	}
}

func TestSignVerify(t *testing.T) {
	key, err := RandomScalar()
	if err != nil {
		t.Fatalf("random key: %s", err)
	}
	pub := key.MulBase()

	digest := sha256.Sum256([]byte("hello world"))
	sig, err := SignRFC6979(key, digest)
	if err != nil {
		t.Fatalf("sign: %s", err)
	}

	if !sig.IsLowS() {
		t.Fatalf("signature is not low-s")
	}
	if !sig.Verify(digest, pub) {
		t.Fatalf("signature did not verify")
	}
}

func TestSignDeterministic(t *testing.T) {
	key, err := RandomScalar()
	if err != nil {
		t.Fatalf("random key: %s", err)
	}
	digest := sha256.Sum256([]byte("deterministic nonce check"))

	sig1, err := SignRFC6979(key, digest)
	if err != nil {
		t.Fatalf("sign 1: %s", err)
	}
	sig2, err := SignRFC6979(key, digest)
	if err != nil {
		t.Fatalf("sign 2: %s", err)
	}

	if sig1.R.Cmp(&sig2.R) != 0 || sig1.S.Cmp(&sig2.S) != 0 {
		t.Fatalf("signing the same message twice produced different signatures")
	}
}
