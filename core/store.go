package core

// Store is the in-memory block DAG: blocks keyed by change-hash,
// parent/child links, and per-node chain length. Grounded on
// core/ledger.go's blockIndex map plus core/chain_fork_manager.go's
// parent-keyed side-branch bookkeeping, stripped of the WAL-backed disk
// persistence neither this protocol nor its in-memory store needs.
type Store struct {
	blocks   map[Hash]Block
	lengths  map[Hash]int
	children map[Hash][]Hash
}

// NewStore returns an empty store. Root is implicitly present with
// length 0; it is never itself stored as a Block.
func NewStore() *Store {
	return &Store{
		blocks:   make(map[Hash]Block),
		lengths:  map[Hash]int{Root: 0},
		children: make(map[Hash][]Hash),
	}
}

// Contains reports whether h names a stored block. Root is not
// considered "contained" — it has no Block value, only a length.
func (s *Store) Contains(h Hash) bool {
	_, ok := s.blocks[h]
	return ok
}

// Get returns the stored block for h, or ok=false for Root or any
// unknown hash.
func (s *Store) Get(h Hash) (Block, bool) {
	b, ok := s.blocks[h]
	return b, ok
}

// Length returns the chain length of h. Root's length is always 0.
func (s *Store) Length(h Hash) int {
	return s.lengths[h]
}

// Children returns the hashes of blocks directly built on h.
func (s *Store) Children(h Hash) []Hash {
	return s.children[h]
}

// Insert records a newly-admitted block under hash h, computing its
// chain length from its already-stored parent. Insertion is idempotent:
// calling it again with the same h is a no-op and the first stored
// block for a given hash wins: content
// equality implies identity, and the store keeps the first).
func (s *Store) Insert(h Hash, b Block) {
	if s.Contains(h) {
		return
	}
	s.blocks[h] = b
	s.lengths[h] = s.lengths[b.Change.Old] + 1
	s.children[b.Change.Old] = append(s.children[b.Change.Old], h)
}

// All iterates every stored block, in no particular order.
func (s *Store) All(fn func(Hash, Block)) {
	for h, b := range s.blocks {
		fn(h, b)
	}
}

// Len returns the number of stored blocks (Root excluded).
func (s *Store) Len() int { return len(s.blocks) }
