package domain

import (
	"math/big"
	"testing"
)

func id(hi byte) ID {
	b := make(ID, ByteLen)
	b[ByteLen-1] = hi
	return b
}

func TestHashIDLength(t *testing.T) {
	got := HashID("127.0.0.1:5000")
	if len(got) != ByteLen {
		t.Fatalf("HashID: got length %d, want %d", len(got), ByteLen)
	}
}

func TestBetweenLinear(t *testing.T) {
	a, x, b := id(1), id(5), id(10)
	if !x.Between(a, b) {
		t.Fatalf("expected %v to be between (%v, %v]", x, a, b)
	}
	if a.Between(a, b) {
		t.Fatalf("left endpoint must be excluded")
	}
	if !b.Between(a, b) {
		t.Fatalf("right endpoint must be included")
	}
}

func TestBetweenWrap(t *testing.T) {
	a, x, b := id(250), id(5), id(10)
	if !x.Between(a, b) {
		t.Fatalf("expected wrap-around arc to contain %v", x)
	}
	far := id(100)
	if far.Between(a, b) {
		t.Fatalf("did not expect %v to be on the wrapped arc", far)
	}
}

func TestBetweenFullRing(t *testing.T) {
	a := id(42)
	if !id(0).Between(a, a) {
		t.Fatalf("(a, a] must cover the whole ring")
	}
}

func TestBetweenOpenExcludesEndpoints(t *testing.T) {
	a, b := id(1), id(10)
	if a.BetweenOpen(a, b) || b.BetweenOpen(a, b) {
		t.Fatalf("open arc must exclude both endpoints")
	}
	if !id(5).BetweenOpen(a, b) {
		t.Fatalf("expected midpoint to be on the open arc")
	}
}

func TestFingerTarget(t *testing.T) {
	self := FromBigInt(big.NewInt(10))
	got := FingerTarget(self, 1) // + 2^0 = +1
	want := FromBigInt(big.NewInt(11))
	if !got.Equal(want) {
		t.Fatalf("FingerTarget(10,1) = %v, want %v", got, want)
	}
}

func TestFingerTargetWraps(t *testing.T) {
	mod := PowerOfTwo(Bits)
	self := FromBigInt(new(big.Int).Sub(mod, big.NewInt(1))) // 2^Bits - 1
	got := FingerTarget(self, 1)
	if !got.Equal(FromBigInt(big.NewInt(0))) {
		t.Fatalf("FingerTarget should wrap through zero, got %v", got)
	}
}

func TestFromBigIntRoundTrip(t *testing.T) {
	v := big.NewInt(123456789)
	got := FromBigInt(v).ToBigInt()
	if got.Cmp(v) != 0 {
		t.Fatalf("round trip mismatch: got %v, want %v", got, v)
	}
}
