package core

import (
	"crypto/sha256"
	"math/big"
	"strconv"
	"strings"
)

// canonicalChangeJSON produces the exact byte sequence
// hashes: JSON with keys sorted lexicographically (dst, memo, n, old,
// src), no whitespace, UTF-8 bytes, and non-ASCII runes emitted
// literally rather than escaped to \uXXXX. encoding/json is not used
// here because Go's default encoder HTML-escapes '<', '>' and '&' and
// has no built-in ordering guarantee for struct fields across
// refactors; hand-rolling the five fixed fields keeps the encoding
// independent of both and lets this function double as the single
// source of truth for the protocol's hash-content determinism
// invariant.
func canonicalChangeJSON(c Change) []byte {
	var b strings.Builder
	b.WriteByte('{')
	b.WriteString(`"dst":`)
	writeJSONString(&b, c.Dst)
	b.WriteString(`,"memo":`)
	writeJSONString(&b, c.Memo)
	b.WriteString(`,"n":`)
	b.WriteString(strconv.FormatInt(c.N, 10))
	b.WriteString(`,"old":`)
	b.WriteString(string(c.Old))
	b.WriteString(`,"src":`)
	writeJSONString(&b, c.Src)
	b.WriteByte('}')
	return []byte(b.String())
}

// writeJSONString appends a JSON string literal for s, escaping only
// what the JSON grammar requires (quote, backslash, and control
// characters) and leaving every other rune — including non-ASCII —
// untouched.
func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 {
				b.WriteString(`\u`)
				hex := strconv.FormatInt(int64(r), 16)
				for i := len(hex); i < 4; i++ {
					b.WriteByte('0')
				}
				b.WriteString(hex)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

// HashChange computes the change-hash of c: SHA-256 of its canonical
// JSON encoding, interpreted as a big-endian unsigned integer. This
// value also serves as the block's identity.
func HashChange(c Change) Hash {
	digest := sha256.Sum256(canonicalChangeJSON(c))
	return Hash(new(big.Int).SetBytes(digest[:]).String())
}
