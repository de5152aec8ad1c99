package core

import (
	"context"
	"math/big"
	"math/rand"
	"time"
)

// Broadcaster pushes a locally-admitted block out to every open peer
// channel. Implemented by the gossip layer; core only depends on the
// interface so it carries no knowledge of transport.
type Broadcaster interface {
	Broadcast(Block)
}

// SubmitResult reports what a local submission achieved: the hash of
// the (possibly re-signed) block and how many branches were attempted.
type SubmitResult struct {
	Hash     Hash
	Attempts int
}

// InternalError marks an implementation-bug invariant violation rather
// than a submission-time rejection — these must surface
// as a 500-class response to the caller, never as a retryable user
// error.
type InternalError struct{ msg string }

func (e *InternalError) Error() string { return e.msg }

// Submit implements the local submission path: construct, sign,
// admit, broadcast, then probe for persistence against re-orgs six
// times, resubmitting against a fresh head whenever the previously
// submitted block has fallen off the live path. A final non-live
// result is still reported as success with the number of branches
// attempted — the probe is best-effort.
//
// privateExponent/modulus identify src's key pair and are the single
// source of signing material used on every attempt, including retries
// — see DESIGN.md's resolution of the §9 Open Question about the
// reference implementation's inconsistent private-key lookup on retry.
func (e *Engine) Submit(
	ctx context.Context,
	src, dst string, n int64, memo string,
	privateExponent, modulus *big.Int,
	bc Broadcaster,
	rng *rand.Rand,
) (SubmitResult, error) {
	h, err := e.signAndAdmitOnce(src, dst, n, memo, privateExponent, modulus, bc)
	if err != nil {
		return SubmitResult{}, err
	}
	attempts := 1

	for i := 0; i < 6; i++ {
		wait := time.Duration(300+rng.Intn(401)) * time.Millisecond
		select {
		case <-ctx.Done():
			return SubmitResult{Hash: h, Attempts: attempts}, nil
		case <-time.After(wait):
		}
		if e.IsLive(h) {
			continue
		}
		h, err = e.signAndAdmitOnce(src, dst, n, memo, privateExponent, modulus, bc)
		if err != nil {
			return SubmitResult{}, err
		}
		attempts++
	}
	return SubmitResult{Hash: h, Attempts: attempts}, nil
}

func (e *Engine) signAndAdmitOnce(
	src, dst string, n int64, memo string,
	privateExponent, modulus *big.Int,
	bc Broadcaster,
) (Hash, error) {
	head := e.Head()
	change := Change{Old: head, Src: src, Dst: dst, N: n, Memo: memo}

	if err := ValidateChange(e.reg, change, e.PaidAt(head)); err != nil {
		return "", err
	}

	sig, err := Sign(change, privateExponent, modulus)
	if err != nil {
		return "", err
	}
	block := Block{Change: change, Signature: sig}
	h := HashChange(change)

	var sawMissing bool
	e.Admit(block, func(Hash) { sawMissing = true })
	if sawMissing {
		return "", &InternalError{msg: "admit reported a missing parent for a block built on the current head"}
	}

	if bc != nil {
		bc.Broadcast(block)
	}
	return h, nil
}
