package core

// Registry is the immutable-after-load mapping of username to public
// key and optional peer address. Grounded on blockchain.py's
// add_users bulk-load: a single map populated once at startup, never
// mutated afterward.
type Registry struct {
	users map[string]User
}

// NewRegistry builds a Registry from the public user table loaded at
// startup (typically straight off the public JSON config file).
func NewRegistry(users map[string]User) *Registry {
	cp := make(map[string]User, len(users))
	for k, v := range users {
		cp[k] = v
	}
	return &Registry{users: cp}
}

// IsKnown reports whether user is present in the registry.
func (r *Registry) IsKnown(user string) bool {
	_, ok := r.users[user]
	return ok
}

// Lookup returns the full registry entry for user.
func (r *Registry) Lookup(user string) (User, bool) {
	u, ok := r.users[user]
	return u, ok
}

// PubKey returns user's public modulus, if known.
func (r *Registry) PubKey(user string) (*BigInt, bool) {
	u, ok := r.users[user]
	if !ok || u.Key == nil {
		return nil, false
	}
	return u.Key, true
}

// PeerHost returns the gossip address for user, if they have one. Local
// identities (accounts this agent holds the private key for) have no
// host entry.
func (r *Registry) PeerHost(user string) (string, bool) {
	u, ok := r.users[user]
	if !ok || u.Host == "" {
		return "", false
	}
	return u.Host, true
}

// Users returns every known username.
func (r *Registry) Users() []string {
	names := make([]string, 0, len(r.users))
	for name := range r.users {
		names = append(names, name)
	}
	return names
}

// Len returns the number of registered users.
func (r *Registry) Len() int { return len(r.users) }
