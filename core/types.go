package core

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Hash is the decimal string form of a change-hash, used as the key
// type for every map the engine keeps. Comparisons for fork-choice
// purposes must go back through math/big (see hashLess) since decimal
// strings of different lengths do not sort the same as the integers
// they represent.
type Hash string

// Root is the synthetic genesis hash, parent of every first real block.
// It has chain length 0 and is never itself a stored block.
const Root Hash = "30791614295234051711832508548800469788824342480481074093233550318061354680202"

func (h Hash) big() *big.Int {
	v, ok := new(big.Int).SetString(string(h), 10)
	if !ok {
		// Hash values only ever originate from SHA-256 digests or the
		// Root constant, both always valid base-10 literals.
		panic("core: malformed hash " + string(h))
	}
	return v
}

// hashLess reports whether a is numerically smaller than b.
func hashLess(a, b Hash) bool {
	return a.big().Cmp(b.big()) < 0
}

// Change is the payload of a block: a parent link plus a ticket
// transfer from src to dst. Field order here mirrors the data
// model (old, src, dst, n, memo); the canonical lexicographic byte
// encoding used for hashing lives in hash.go and does not depend on
// this struct's declaration order.
type Change struct {
	Old  Hash   `json:"old"`
	Src  string `json:"src"`
	Dst  string `json:"dst"`
	N    int64  `json:"n"`
	Memo string `json:"memo"`
}

// changeWire is the JSON projection of Change with fields declared in
// the lexicographic order this protocol's wire encoding requires:
// dst, memo, n, old, src. Old is a bare (unquoted) decimal integer so
// Go peers and any non-Go peer implementation agree byte-for-byte.
type changeWire struct {
	Dst  string  `json:"dst"`
	Memo string  `json:"memo"`
	N    int64   `json:"n"`
	Old  *BigInt `json:"old"`
	Src  string  `json:"src"`
}

func (c Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(changeWire{
		Dst:  c.Dst,
		Memo: c.Memo,
		N:    c.N,
		Old:  NewBigInt(c.Old.big()),
		Src:  c.Src,
	})
}

func (c *Change) UnmarshalJSON(data []byte) error {
	var w changeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Old == nil || w.Old.Int == nil {
		return fmt.Errorf("change: missing old")
	}
	c.Old = Hash(w.Old.Int.String())
	c.Src = w.Src
	c.Dst = w.Dst
	c.N = w.N
	c.Memo = w.Memo
	return nil
}

// Block ties a Change to the RSA signature authorizing it.
type Block struct {
	Change    Change  `json:"change"`
	Signature *BigInt `json:"signature"`
}

// User is a registry entry: a public modulus and, for remote
// identities, the peer host they gossip on.
type User struct {
	Key  *BigInt `json:"key"`
	Host string  `json:"host,omitempty"`
}

// IsBooth reports whether a username denotes a booth account.
func IsBooth(user string) bool {
	return strings.HasSuffix(user, "_b")
}
