package classgroup

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/tokenized/cl-ecdsa/bigint"
)

func testGroup() *Group {
	// Discriminant -23: a textbook class number 3 example (class group
	// {(1,1,6), (2,1,3), (2,-1,3)}), small enough to hand-check.
	return NewGroup(big.NewInt(-23))
}

func TestIdentityIsNeutral(t *testing.T) {
	g := testGroup()
	id := g.Identity()
	f := g.FromAB(big.NewInt(2), big.NewInt(1))

	got := id.Compose(f)
	if !got.Equal(f.Reduce()) {
		t.Fatalf("identity.Compose(f) = %v, want %v", got, f)
	}
}

func TestReduceIdempotent(t *testing.T) {
	g := testGroup()
	f := g.FromAB(big.NewInt(2), big.NewInt(1))

	once := f.Reduce()
	twice := once.Reduce()
	if !once.Equal(twice) {
		t.Fatalf("reduce not idempotent: %v vs %v", once, twice)
	}
	if !once.IsReduced() {
		t.Fatalf("reduced form fails IsReduced: %v", once)
	}
}

func TestOrderThreeElement(t *testing.T) {
	g := testGroup()
	id := g.Identity()
	f := g.FromAB(big.NewInt(2), big.NewInt(1))

	cubed := f.Pow(bigint.FromInt64(3))
	if !cubed.Equal(id) {
		t.Fatalf("f^3 = %v, want identity %v", cubed, id)
	}

	inv := f.Inverse()
	if !f.Compose(inv).Equal(id) {
		t.Fatalf("f.Compose(f.Inverse()) != identity")
	}
}

func TestPowMatchesRepeatedCompose(t *testing.T) {
	g := testGroup()
	f := g.FromAB(big.NewInt(2), big.NewInt(1))

	bySquaring := f.Pow(bigint.FromInt64(5))

	manual := g.Identity()
	for i := 0; i < 5; i++ {
		manual = manual.Compose(f)
	}

	if !bySquaring.Equal(manual) {
		t.Fatalf("f^5 via binary exponentiation = %v, want %v", bySquaring, manual)
	}
}

func TestComposeCommutative(t *testing.T) {
	g := testGroup()
	f := g.FromAB(big.NewInt(2), big.NewInt(1))
	h := f.Square()

	if !f.Compose(h).Equal(h.Compose(f)) {
		t.Fatalf("composition not commutative for this abelian group")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	g := testGroup()
	f := g.FromAB(big.NewInt(2), big.NewInt(1)).Square()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write: %s", err)
	}

	got, err := Read(g, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("read: %s", err)
	}
	if !got.Equal(f) {
		t.Fatalf("round trip mismatch: got %v want %v", got, f)
	}
}
