package core

import (
	cryptorand "crypto/rand"
	"math/big"
	"testing"
)

// genKeyPair produces a small-but-real RSA key pair with the fixed
// public exponent this protocol uses everywhere, for use in tests that
// need to actually sign and verify blocks.
func genKeyPair(t *testing.T, bits int) (modulus, privExp *big.Int) {
	t.Helper()
	for {
		p, err := cryptorand.Prime(cryptorand.Reader, bits/2)
		if err != nil {
			t.Fatalf("prime: %v", err)
		}
		q, err := cryptorand.Prime(cryptorand.Reader, bits/2)
		if err != nil {
			t.Fatalf("prime: %v", err)
		}
		if p.Cmp(q) == 0 {
			continue
		}
		n := new(big.Int).Mul(p, q)
		pMinus1 := new(big.Int).Sub(p, big.NewInt(1))
		qMinus1 := new(big.Int).Sub(q, big.NewInt(1))
		phi := new(big.Int).Mul(pMinus1, qMinus1)
		d := new(big.Int).ModInverse(PublicExponent, phi)
		if d == nil {
			continue // e not invertible mod phi for this p,q; retry
		}
		return n, d
	}
}
