package core

import (
	"context"

	"go.uber.org/zap"
)

// MissingFunc is called with the hash of a block's as-yet-unknown
// parent. The gossip layer supplies one bound to the channel a block
// arrived on so the {missing: h} request goes back to whoever can
// actually supply it.
type MissingFunc func(h Hash)

// Engine owns every piece of per-agent chain state: the registry, block
// store, pending buffer, head tracker, and balance/paid caches,
// reached only through its single-goroutine request loop so no part of
// it needs a lock. Grounded on core/ledger.go's Ledger
// struct — one owning value holding every map the chain needs — minus
// its WAL/disk machinery, which this protocol has no use for.
type Engine struct {
	reg     *Registry
	store   *Store
	pending *Pending
	head    *HeadTracker
	cache   *Cache
	log     *zap.SugaredLogger

	requests chan func()
}

// NewEngine constructs an Engine over reg. The engine does not start
// processing until Run is called.
func NewEngine(reg *Registry, log *zap.SugaredLogger) *Engine {
	store := NewStore()
	return &Engine{
		reg:      reg,
		store:    store,
		pending:  NewPending(),
		head:     NewHeadTracker(),
		cache:    NewCache(store, reg),
		log:      log,
		requests: make(chan func()),
	}
}

// Run is the engine's single logical task queue: every state-mutating
// or state-reading operation below funnels through here, one at a
// time, so admissions are never interleaved. It returns
// when ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-e.requests:
			req()
		}
	}
}

// do submits fn to the engine loop and blocks until it has run. A panic
// inside fn is recovered and returned, so it does not take the whole
// loop down; the exported methods of Engine discard that returned value.
func (e *Engine) do(fn func()) (recovered any) {
	done := make(chan struct{})
	e.requests <- func() {
		defer func() {
			recovered = recover()
			close(done)
		}()
		fn()
	}
	<-done
	return recovered
}

// Admit is the block ingestor. It is iterative, not recursive, so
// a long chain of already-buffered descendants drains in a single pass
// without growing the Go call stack — long chains rule out a recursive
// walk here just as much as for the balance/length caches.
func (e *Engine) Admit(first Block, missing MissingFunc) {
	e.do(func() { e.admitLocked(first, missing) })
}

func (e *Engine) admitLocked(first Block, missing MissingFunc) {
	queue := []Block{first}
	for len(queue) > 0 {
		block := queue[0]
		queue = queue[1:]

		h := HashChange(block.Change)
		if e.store.Contains(h) {
			continue
		}
		if !Verify(e.reg, block) {
			if e.log != nil {
				e.log.Debugw("dropping block with invalid signature", "hash", h)
			}
			continue
		}

		old := block.Change.Old
		if old != Root && !e.store.Contains(old) {
			e.pending.Add(old, block)
			if missing != nil {
				missing(old)
			}
			continue
		}

		parentPaid := e.cache.Paid(old)
		if err := ValidateChange(e.reg, block.Change, parentPaid); err != nil {
			if e.log != nil {
				e.log.Debugw("dropping semantically invalid block", "hash", h, "reason", err)
			}
			continue
		}

		e.store.Insert(h, block)
		e.head.Consider(e.store, h)
		queue = append(queue, e.pending.Drain(h)...)
	}
}

// Head returns the current head hash.
func (e *Engine) Head() Hash {
	var h Hash
	e.do(func() { h = e.head.Head() })
	return h
}

// GetBlock returns the stored block for h, if any.
func (e *Engine) GetBlock(h Hash) (Block, bool) {
	var b Block
	var ok bool
	e.do(func() { b, ok = e.store.Get(h) })
	return b, ok
}

// Chain returns a snapshot of every block the engine has admitted.
func (e *Engine) Chain() map[Hash]Block {
	out := make(map[Hash]Block)
	e.do(func() {
		e.store.All(func(h Hash, b Block) { out[h] = b })
	})
	return out
}

// Balances returns the ticket balances at the current head.
func (e *Engine) Balances() map[string]int64 {
	return e.BalancesAt(e.Head())
}

// BalancesAt returns the ticket balances at block h.
func (e *Engine) BalancesAt(h Hash) map[string]int64 {
	var out map[string]int64
	e.do(func() { out = e.cache.Balances(h) })
	return out
}

// PaidAt returns the paid-state at block h.
func (e *Engine) PaidAt(h Hash) map[string]map[string]struct{} {
	var out map[string]map[string]struct{}
	e.do(func() { out = e.cache.Paid(h) })
	return out
}

// IsLive reports whether h is on the path from Root to the current
// head. Unknown hashes, and Root itself, are not live — mirroring
// blockchain.py's is_live, which looks h up in the block map before
// walking and never special-cases ROOT_HASH.
func (e *Engine) IsLive(h Hash) bool {
	var live bool
	e.do(func() { live = e.isLiveLocked(h) })
	return live
}

func (e *Engine) isLiveLocked(h Hash) bool {
	if !e.store.Contains(h) {
		return false
	}
	targetLen := e.store.Length(h)
	ptr := e.head.Head()
	for ptr != Root {
		if ptr == h {
			return true
		}
		if e.store.Length(ptr) < targetLen {
			return false
		}
		block, ok := e.store.Get(ptr)
		if !ok {
			return false
		}
		ptr = block.Change.Old
	}
	return false
}

// Registry exposes the engine's user registry to callers (HTTP auth,
// gossip bootstrap) that need read-only access to it.
func (e *Engine) Registry() *Registry { return e.reg }
