package core

import (
	"errors"
	"math/big"
)

// PublicExponent is the fixed RSA public exponent e=65537 every user's
// key pair uses.
var PublicExponent = big.NewInt(0x10001)

// ErrWrongKey is returned by Sign when the supplied private exponent
// does not round-trip against the user's registered public modulus.
var ErrWrongKey = errors.New("Wrong key")

// Verify reports whether block's signature authorizes its change under
// the registry's record for change.src. It fails closed: an unknown
// src, or one with no key on file, never verifies.
func Verify(reg *Registry, block Block) bool {
	user, ok := reg.Lookup(block.Change.Src)
	if !ok || user.Key == nil || user.Key.Int == nil {
		return false
	}
	if block.Signature == nil || block.Signature.Int == nil {
		return false
	}
	want := HashChange(block.Change).big()
	got := new(big.Int).Exp(block.Signature.Int, PublicExponent, user.Key.Int)
	return want.Cmp(got) == 0
}

// Sign produces the signature for change under the given private
// exponent and public modulus, re-verifying with the public exponent
// before returning so a mismatched key pair is caught immediately
// rather than surfacing as a silently-dropped gossip message later.
func Sign(change Change, privateExponent, modulus *big.Int) (*BigInt, error) {
	h := HashChange(change).big()
	sig := new(big.Int).Exp(h, privateExponent, modulus)
	roundTrip := new(big.Int).Exp(sig, PublicExponent, modulus)
	if roundTrip.Cmp(h) != 0 {
		return nil, ErrWrongKey
	}
	return NewBigInt(sig), nil
}
