package core

// Cache holds the memoized per-block balance and paid-state views.
// Grounded on blockchain.py's _compute_balances/_compute_paid_status,
// converted from their recursive walk to an iterative one, since chains
// may reach hundreds of thousands of blocks. Entries are never invalidated — a block's
// change and parent are immutable once stored — so each hash is
// resolved at most once over the life of the cache.
type Cache struct {
	store    *Store
	balances map[Hash]map[string]int64
	paid     map[Hash]map[string]map[string]struct{}
}

// NewCache seeds the cache with Root's balances (20 tickets for every
// registered user) and empty paid-state.
func NewCache(store *Store, reg *Registry) *Cache {
	rootBalances := make(map[string]int64, reg.Len())
	for _, u := range reg.Users() {
		rootBalances[u] = 20
	}
	return &Cache{
		store:    store,
		balances: map[Hash]map[string]int64{Root: rootBalances},
		paid:     map[Hash]map[string]map[string]struct{}{Root: {}},
	}
}

// pathTo walks old-links from h back to the nearest hash already
// present in cached, returning the visited hashes ordered from that
// ancestor's child down to h — i.e. the order in which they must be
// resolved.
func (c *Cache) pathTo(h Hash, isCached func(Hash) bool) []Hash {
	var stack []Hash
	cur := h
	for !isCached(cur) {
		stack = append(stack, cur)
		block, ok := c.store.Get(cur)
		if !ok {
			// Only Root and stored blocks should ever reach this walk;
			// the ingestor never lets an unstored hash become reachable
			// as a Change.Old for anything but a pending (unresolved)
			// block, which never calls into the cache.
			panic("core: cache walk hit unknown hash " + string(cur))
		}
		cur = block.Change.Old
	}
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	return stack
}

// Balances returns a defensive copy of the per-user ticket balances at
// block h.
func (c *Cache) Balances(h Hash) map[string]int64 {
	path := c.pathTo(h, func(x Hash) bool { _, ok := c.balances[x]; return ok })
	for _, node := range path {
		block, _ := c.store.Get(node)
		parent := c.balances[block.Change.Old]
		next := make(map[string]int64, len(parent))
		for k, v := range parent {
			next[k] = v
		}
		next[block.Change.Src] -= block.Change.N
		next[block.Change.Dst] += block.Change.N
		c.balances[node] = next
	}
	out := make(map[string]int64, len(c.balances[h]))
	for k, v := range c.balances[h] {
		out[k] = v
	}
	return out
}

// Paid returns a defensive copy of the per-player set of currently-paid
// booths at block h.
func (c *Cache) Paid(h Hash) map[string]map[string]struct{} {
	path := c.pathTo(h, func(x Hash) bool { _, ok := c.paid[x]; return ok })
	for _, node := range path {
		block, _ := c.store.Get(node)
		parent := c.paid[block.Change.Old]
		next := make(map[string]map[string]struct{}, len(parent))
		for player, booths := range parent {
			cp := make(map[string]struct{}, len(booths))
			for b := range booths {
				cp[b] = struct{}{}
			}
			next[player] = cp
		}
		switch ClassifyPair(block.Change.Src, block.Change.Dst) {
		case PairPlayerToBooth:
			player, booth := block.Change.Src, block.Change.Dst
			if next[player] == nil {
				next[player] = make(map[string]struct{})
			}
			next[player][booth] = struct{}{}
		case PairBoothToPlayer:
			player, booth := block.Change.Dst, block.Change.Src
			if next[player] != nil {
				delete(next[player], booth)
			}
		}
		c.paid[node] = next
	}
	out := make(map[string]map[string]struct{}, len(c.paid[h]))
	for player, booths := range c.paid[h] {
		cp := make(map[string]struct{}, len(booths))
		for b := range booths {
			cp[b] = struct{}{}
		}
		out[player] = cp
	}
	return out
}
