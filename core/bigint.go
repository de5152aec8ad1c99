package core

import (
	"fmt"
	"math/big"
)

// BigInt wraps math/big.Int so it marshals to and from JSON as a bare
// decimal number. big.Int alone only implements encoding.TextMarshaler,
// which encoding/json wraps in quotes; the gossip and HTTP wire formats
// need unquoted integers to stay byte-compatible with a canonical change
// encoding that never quotes numeric fields.
type BigInt struct {
	*big.Int
}

// NewBigInt wraps an existing big.Int.
func NewBigInt(v *big.Int) *BigInt { return &BigInt{v} }

// BigIntFromInt64 builds a BigInt from a native int64.
func BigIntFromInt64(v int64) *BigInt { return &BigInt{big.NewInt(v)} }

// BigIntFromString parses a base-10 integer literal.
func BigIntFromString(s string) (*BigInt, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, false
	}
	return &BigInt{v}, true
}

func (b *BigInt) MarshalJSON() ([]byte, error) {
	if b == nil || b.Int == nil {
		return []byte("null"), nil
	}
	return []byte(b.Int.String()), nil
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		b.Int = nil
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid big integer literal %q", s)
	}
	b.Int = v
	return nil
}

// Equal reports whether two BigInt values hold the same number.
func (b *BigInt) Equal(o *BigInt) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.Int.Cmp(o.Int) == 0
}

func (b *BigInt) String() string {
	if b == nil || b.Int == nil {
		return "<nil>"
	}
	return b.Int.String()
}
