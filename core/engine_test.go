package core

import (
	"context"
	"math/big"
	"testing"
)

type keyedUser struct {
	name string
	n, d *big.Int
}

func setupTwoUserEngine(t *testing.T) (*Engine, keyedUser, keyedUser) {
	t.Helper()
	an, ad := genKeyPair(t, 256)
	bn, bd := genKeyPair(t, 256)
	reg := NewRegistry(map[string]User{
		"alice": {Key: NewBigInt(an)},
		"bob_b": {Key: NewBigInt(bn)},
	})
	e := NewEngine(reg, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go e.Run(ctx)
	t.Cleanup(cancel)
	return e, keyedUser{"alice", an, ad}, keyedUser{"bob_b", bn, bd}
}

func sign(t *testing.T, u keyedUser, c Change) Block {
	t.Helper()
	sig, err := Sign(c, u.d, u.n)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return Block{Change: c, Signature: sig}
}

// TestScenarioS2 checks a player->booth transfer followed
// by a booth->player payout, checking balances and head.
func TestScenarioS2(t *testing.T) {
	e, alice, booth := setupTwoUserEngine(t)

	c1 := Change{Old: Root, Src: alice.name, Dst: booth.name, N: 2, Memo: "m"}
	b1 := sign(t, alice, c1)
	h1 := HashChange(c1)
	e.Admit(b1, nil)
	if e.Head() != h1 {
		t.Fatalf("expected head %s, got %s", h1, e.Head())
	}

	c2 := Change{Old: h1, Src: booth.name, Dst: alice.name, N: 4, Memo: "m2"}
	b2 := sign(t, booth, c2)
	h2 := HashChange(c2)
	e.Admit(b2, nil)
	if e.Head() != h2 {
		t.Fatalf("expected head %s, got %s", h2, e.Head())
	}

	bal := e.Balances()
	if bal[alice.name] != 22 {
		t.Fatalf("alice balance = %d, want 22", bal[alice.name])
	}
	if bal[booth.name] != 18 {
		t.Fatalf("booth balance = %d, want 18", bal[booth.name])
	}
}

// TestScenarioS5 checks that out-of-order arrival triggers
// exactly one missing request and still converges.
func TestScenarioS5(t *testing.T) {
	e, alice, booth := setupTwoUserEngine(t)

	c1 := Change{Old: Root, Src: alice.name, Dst: booth.name, N: 2, Memo: "m"}
	b1 := sign(t, alice, c1)
	h1 := HashChange(c1)

	c2 := Change{Old: h1, Src: booth.name, Dst: alice.name, N: 3, Memo: "m2"}
	b2 := sign(t, booth, c2)
	h2 := HashChange(c2)

	var missingRequests []Hash
	e.Admit(b2, func(h Hash) { missingRequests = append(missingRequests, h) })
	if len(missingRequests) != 1 || missingRequests[0] != h1 {
		t.Fatalf("expected exactly one missing request for %s, got %v", h1, missingRequests)
	}
	if e.Head() != Root {
		t.Fatalf("head should still be Root before the parent arrives, got %s", e.Head())
	}

	e.Admit(b1, nil)
	if e.Head() != h2 {
		t.Fatalf("expected head %s after parent resolves pending child, got %s", h2, e.Head())
	}
}

// TestScenarioS6 checks that a tie-break on equal-length forks
// picks the numerically smaller hash.
func TestScenarioS6(t *testing.T) {
	e, alice, booth := setupTwoUserEngine(t)

	var best, worst Block
	var bestHash, worstHash Hash
	for memo := 0; ; memo++ {
		c := Change{Old: Root, Src: alice.name, Dst: booth.name, N: 2, Memo: string(rune('a' + memo%26))}
		h := HashChange(c)
		if bestHash == "" {
			bestHash, best = h, sign(t, alice, c)
			continue
		}
		if hashLess(h, bestHash) {
			worstHash, worst = bestHash, best
			bestHash, best = h, sign(t, alice, c)
		} else {
			worstHash, worst = h, sign(t, alice, c)
		}
		break
	}

	e.Admit(worst, nil)
	e.Admit(best, nil)
	if e.Head() != bestHash {
		t.Fatalf("expected head = smaller hash %s, got %s", bestHash, e.Head())
	}
}

// TestPendingDrainCompleteness checks that blocks
// arriving in reverse order all end up stored with the correct head.
func TestPendingDrainCompleteness(t *testing.T) {
	e, alice, booth := setupTwoUserEngine(t)

	c1 := Change{Old: Root, Src: alice.name, Dst: booth.name, N: 2, Memo: "a"}
	h1 := HashChange(c1)
	b1 := sign(t, alice, c1)

	c2 := Change{Old: h1, Src: booth.name, Dst: alice.name, N: 3, Memo: "b"}
	h2 := HashChange(c2)
	b2 := sign(t, booth, c2)

	c3 := Change{Old: h2, Src: alice.name, Dst: booth.name, N: 1, Memo: "c"}
	h3 := HashChange(c3)
	b3 := sign(t, alice, c3)

	e.Admit(b3, nil)
	e.Admit(b2, nil)
	e.Admit(b1, nil)

	for _, h := range []Hash{h1, h2, h3} {
		if !e.store.Contains(h) {
			t.Fatalf("expected %s to be stored after full reverse-order drain", h)
		}
	}
	if e.Head() != h3 {
		t.Fatalf("expected head %s, got %s", h3, e.Head())
	}
}

// TestBalanceConservation checks that balances sum
// to 20*|users| at every stored block.
func TestBalanceConservation(t *testing.T) {
	e, alice, booth := setupTwoUserEngine(t)
	c1 := Change{Old: Root, Src: alice.name, Dst: booth.name, N: 2, Memo: "a"}
	h1 := HashChange(c1)
	e.Admit(sign(t, alice, c1), nil)

	for _, h := range []Hash{Root, h1} {
		bal := e.BalancesAt(h)
		var sum int64
		for _, v := range bal {
			sum += v
		}
		if sum != 40 {
			t.Fatalf("balances at %s sum to %d, want 40", h, sum)
		}
	}
}

// TestCacheConsistency checks that the cache returns
// defensive copies that callers can mutate freely.
func TestCacheConsistency(t *testing.T) {
	e, alice, booth := setupTwoUserEngine(t)
	c1 := Change{Old: Root, Src: alice.name, Dst: booth.name, N: 2, Memo: "a"}
	e.Admit(sign(t, alice, c1), nil)

	bal1 := e.Balances()
	bal1[alice.name] = 999
	bal2 := e.Balances()
	if bal2[alice.name] == 999 {
		t.Fatalf("mutating a returned balances map corrupted the cache")
	}

	paid1 := e.PaidAt(e.Head())
	if paid1[alice.name] == nil {
		t.Fatalf("expected alice to have paid the booth")
	}
	paid1[alice.name][booth.name] = struct{}{}
	delete(paid1[alice.name], booth.name)
	paid2 := e.PaidAt(e.Head())
	if _, ok := paid2[alice.name][booth.name]; !ok {
		t.Fatalf("mutating a returned paid map corrupted the cache")
	}
}

// TestLivenessMonotonicity checks that liveness does not flicker without cause.
func TestLivenessMonotonicity(t *testing.T) {
	e, alice, booth := setupTwoUserEngine(t)
	c1 := Change{Old: Root, Src: alice.name, Dst: booth.name, N: 2, Memo: "a"}
	h1 := HashChange(c1)
	e.Admit(sign(t, alice, c1), nil)

	if !e.IsLive(h1) {
		t.Fatalf("expected h1 to be live right after admission")
	}
	// With no admission in between, a repeated query must give the same answer.
	_ = e.IsLive(h1)
	if !e.IsLive(h1) {
		t.Fatalf("liveness of h1 regressed with no competing longer chain")
	}
}

// TestInvalidSubmissionDoesNotAdvanceHead ensures a self-transfer block
// handed to Admit is rejected and leaves the head at Root.
func TestInvalidSubmissionDoesNotAdvanceHead(t *testing.T) {
	e, alice, booth := setupTwoUserEngine(t)
	c := Change{Old: Root, Src: alice.name, Dst: alice.name, N: 1, Memo: "self"}
	b := sign(t, alice, c)
	e.Admit(b, nil)
	if e.Head() != Root {
		t.Fatalf("self-transfer should never be admitted, head moved to %s", e.Head())
	}
	_ = booth
}
