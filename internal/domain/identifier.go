// Package domain holds the value types shared by every layer of the
// Chord overlay: ring identifiers, node descriptors and the resources
// stored on behalf of the ring.
package domain

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"math/big"
)

// Bits is the width of the Chord identifier ring. The specification fixes
// m = 160 so that identifiers are exactly the output of SHA-1.
const Bits = 160

// ByteLen is the number of bytes needed to hold a Bits-wide identifier.
const ByteLen = Bits / 8

// ErrInvalidID is returned when a byte slice cannot be interpreted as a
// ring identifier of the configured width.
var ErrInvalidID = errors.New("chord: invalid identifier")

// ID is a point on the Chord ring, stored as a big-endian, fixed-length
// byte slice so that it travels over the wire and through gob encoding
// without any conversion step.
type ID []byte

// HashID returns the identifier SHA1(s) mod 2^Bits, interpreted as a
// big-endian unsigned integer. It is the sole source of identifiers in
// the system: node identifiers are hash(ip||port) and key identifiers
// are hash(key).
func HashID(s string) ID {
	sum := sha1.Sum([]byte(s))
	return ID(sum[:])
}

// IDFromHex parses the lowercase hex rendering produced by ID.String.
func IDFromHex(s string) (ID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return ID(b), nil
}

// IsValid reports whether id has the expected byte length for the ring.
func IsValid(id []byte) error {
	if len(id) != ByteLen {
		return ErrInvalidID
	}
	return nil
}

// ToBigInt interprets the identifier as a non-negative big-endian integer.
func (x ID) ToBigInt() *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).SetBytes(x)
}

// FromBigInt renders v (reduced mod 2^Bits) as a ByteLen-byte identifier.
func FromBigInt(v *big.Int) ID {
	mod := new(big.Int).Lsh(big.NewInt(1), Bits)
	r := new(big.Int).Mod(v, mod)
	buf := make([]byte, ByteLen)
	r.FillBytes(buf)
	return ID(buf)
}

// Clone returns an independent copy of the identifier.
func (x ID) Clone() ID {
	c := make(ID, len(x))
	copy(c, x)
	return c
}

// String renders the identifier as a lowercase hex string, the form used
// throughout logs and the CLI.
func (x ID) String() string {
	if x == nil {
		return "<nil>"
	}
	return hex.EncodeToString(x)
}

// Cmp compares two identifiers as unsigned big-endian integers: -1, 0, +1
// for x<b, x==b, x>b respectively.
func (x ID) Cmp(b ID) int {
	return bytes.Compare(x, b)
}

// Equal reports whether x and b denote the same ring position.
func (x ID) Equal(b ID) bool {
	return bytes.Equal(x, b)
}

// Between reports whether x lies on the arc (a, b], moving clockwise from a.
// The right endpoint is included, the left endpoint excluded; when a == b
// the arc covers the entire ring.
//
// This is the "on_arc" predicate of the specification: if a < b the arc is
// linear (a < x <= b); if a > b the arc wraps through zero (x > a or x <= b).
func (x ID) Between(a, b ID) bool {
	if a.Equal(b) {
		return true
	}
	if a.Cmp(b) < 0 {
		return a.Cmp(x) < 0 && x.Cmp(b) <= 0
	}
	return a.Cmp(x) < 0 || x.Cmp(b) <= 0
}

// BetweenOpen reports whether x lies on the open arc (a, b), excluding both
// endpoints. Used by closest_preceding_finger and closest_between lookups.
func (x ID) BetweenOpen(a, b ID) bool {
	if a.Equal(b) {
		return !x.Equal(a)
	}
	if a.Cmp(b) < 0 {
		return a.Cmp(x) < 0 && x.Cmp(b) < 0
	}
	return a.Cmp(x) < 0 || x.Cmp(b) < 0
}

// PowerOfTwo returns 2^i as a big.Int, i >= 0.
func PowerOfTwo(i int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(i))
}

// FingerTarget returns (id + 2^(i-1)) mod 2^Bits, the identifier that
// finger_table entry i (1-based) is responsible for routing towards.
func FingerTarget(id ID, i int) ID {
	offset := PowerOfTwo(i - 1)
	sum := new(big.Int).Add(id.ToBigInt(), offset)
	return FromBigInt(sum)
}
