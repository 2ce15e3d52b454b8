package homomorphic

import (
	"math/big"
	"testing"
)

// smallCL builds a CL cipher over a toy plaintext modulus so decode's
// trial search (and KeyGen's Stilde-bounded sampling) stay fast enough
// for a test run; production callers use NewCL directly with the real
// secp256k1 order.
func smallCL(t *testing.T) *CL {
	t.Helper()
	q := big.NewInt(101) // prime plaintext modulus
	deltaK, err := sampleAuxDiscriminant(q, 64)
	if err != nil {
		t.Fatalf("sampleAuxDiscriminant: %s", err)
	}
	return newCLFromDeltaK(q, deltaK)
}

func TestCLEncryptDecryptRoundTrip(t *testing.T) {
	c := smallCL(t)
	sk, pk, err := c.KeyGen()
	if err != nil {
		t.Fatalf("keygen: %s", err)
	}

	m := big.NewInt(42)
	ct, _, err := c.Encrypt(pk, m)
	if err != nil {
		t.Fatalf("encrypt: %s", err)
	}

	got, err := c.Decrypt(sk, ct)
	if err != nil {
		t.Fatalf("decrypt: %s", err)
	}
	if got.Cmp(m) != 0 {
		t.Fatalf("decrypt round trip: got %s want %s", got, m)
	}
}

func TestCLHomomorphicSum(t *testing.T) {
	c := smallCL(t)
	sk, pk, err := c.KeyGen()
	if err != nil {
		t.Fatalf("keygen: %s", err)
	}

	m1, m2 := big.NewInt(7), big.NewInt(13)
	ct1, _, err := c.Encrypt(pk, m1)
	if err != nil {
		t.Fatalf("encrypt m1: %s", err)
	}
	ct2, _, err := c.Encrypt(pk, m2)
	if err != nil {
		t.Fatalf("encrypt m2: %s", err)
	}

	sum, err := c.Sum(pk, ct1, ct2)
	if err != nil {
		t.Fatalf("sum: %s", err)
	}

	got, err := c.Decrypt(sk, sum)
	if err != nil {
		t.Fatalf("decrypt sum: %s", err)
	}
	want := new(big.Int).Add(m1, m2)
	want.Mod(want, c.q)
	if got.Cmp(want) != 0 {
		t.Fatalf("homomorphic sum: got %s want %s", got, want)
	}
}

func TestCLHomomorphicScal(t *testing.T) {
	c := smallCL(t)
	sk, pk, err := c.KeyGen()
	if err != nil {
		t.Fatalf("keygen: %s", err)
	}

	m := big.NewInt(5)
	k := big.NewInt(9)
	ct, _, err := c.Encrypt(pk, m)
	if err != nil {
		t.Fatalf("encrypt: %s", err)
	}

	scaled, err := c.Scal(pk, ct, k)
	if err != nil {
		t.Fatalf("scal: %s", err)
	}

	got, err := c.Decrypt(sk, scaled)
	if err != nil {
		t.Fatalf("decrypt scaled: %s", err)
	}
	want := new(big.Int).Mul(m, k)
	want.Mod(want, c.q)
	if got.Cmp(want) != 0 {
		t.Fatalf("homomorphic scal: got %s want %s", got, want)
	}
}

func TestPaillierEncryptDecryptRoundTrip(t *testing.T) {
	q := big.NewInt(0).SetUint64(1 << 40) // plaintext modulus well below n
	p := NewPaillier(q)

	sk, pk, err := p.KeyGen()
	if err != nil {
		t.Fatalf("keygen: %s", err)
	}

	m := big.NewInt(123456789)
	ct, _, err := p.Encrypt(pk, m)
	if err != nil {
		t.Fatalf("encrypt: %s", err)
	}

	got, err := p.Decrypt(sk, ct)
	if err != nil {
		t.Fatalf("decrypt: %s", err)
	}
	if got.Cmp(m) != 0 {
		t.Fatalf("decrypt round trip: got %s want %s", got, m)
	}
}

func TestPaillierHomomorphicSumAndScal(t *testing.T) {
	q := big.NewInt(0).SetUint64(1 << 40)
	p := NewPaillier(q)

	sk, pk, err := p.KeyGen()
	if err != nil {
		t.Fatalf("keygen: %s", err)
	}

	m1, m2, k := big.NewInt(11), big.NewInt(31), big.NewInt(6)
	ct1, _, err := p.Encrypt(pk, m1)
	if err != nil {
		t.Fatalf("encrypt m1: %s", err)
	}
	ct2, _, err := p.Encrypt(pk, m2)
	if err != nil {
		t.Fatalf("encrypt m2: %s", err)
	}

	sum, err := p.Sum(pk, ct1, ct2)
	if err != nil {
		t.Fatalf("sum: %s", err)
	}
	gotSum, err := p.Decrypt(sk, sum)
	if err != nil {
		t.Fatalf("decrypt sum: %s", err)
	}
	wantSum := new(big.Int).Add(m1, m2)
	if gotSum.Cmp(wantSum) != 0 {
		t.Fatalf("homomorphic sum: got %s want %s", gotSum, wantSum)
	}

	scaled, err := p.Scal(pk, ct1, k)
	if err != nil {
		t.Fatalf("scal: %s", err)
	}
	gotScal, err := p.Decrypt(sk, scaled)
	if err != nil {
		t.Fatalf("decrypt scaled: %s", err)
	}
	wantScal := new(big.Int).Mul(m1, k)
	if gotScal.Cmp(wantScal) != 0 {
		t.Fatalf("homomorphic scal: got %s want %s", gotScal, wantScal)
	}
}
