package assoc

// HashFunc maps a key to the 64-bit value that orders it in a Store.
type HashFunc[K comparable] func(K) uint64

// node is a single entry in the search tree.
//
// Nodes with equal hashes are chained down the lte side; the exact key
// comparison is what separates a genuine duplicate from a collision.
type node[K comparable, V any] struct {
	key   K
	hash  uint64
	value V
	lte   *node[K, V]
	gt    *node[K, V]
}

// Store is an associative container ordered by key hash.
//
// It backs event dispatch tables, the type registry and the scratch tables
// used by query joins. The zero value is not usable; construct with New,
// NewString or NewUint64.
//
// Thread-safety: none. A Store is owned by the goroutine driving the tree.
type Store[K comparable, V any] struct {
	root *node[K, V]
	hash HashFunc[K]
	size int
}

// New creates an empty store using the given hash function.
func New[K comparable, V any](hash HashFunc[K]) *Store[K, V] {
	return &Store[K, V]{hash: hash}
}

// NewString creates an empty store keyed by NFC-normalized strings.
func NewString[V any]() *Store[string, V] {
	return New[string, V](StringHash)
}

// NewUint64 creates an empty store keyed by 64-bit identities.
func NewUint64[K ~uint64, V any]() *Store[K, V] {
	return New[K, V](func(k K) uint64 { return Uint64Hash(uint64(k)) })
}

// Add inserts value under key and returns a pointer to the stored value.
//
// Add is insert-or-fetch: if key is already present the existing value is
// left untouched and a pointer to it is returned.
func (s *Store[K, V]) Add(key K, value V) *V {
	h := s.hash(key)
	link := &s.root
	for *link != nil {
		n := *link
		if n.hash == h && n.key == key {
			return &n.value
		}
		if h <= n.hash {
			link = &n.lte
		} else {
			link = &n.gt
		}
	}
	*link = &node[K, V]{key: key, hash: h, value: value}
	s.size++
	return &(*link).value
}

// Get returns the value stored under key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	if p := s.Lookup(key); p != nil {
		return *p, true
	}
	var zero V
	return zero, false
}

// Lookup returns a pointer to the value stored under key, or nil.
func (s *Store[K, V]) Lookup(key K) *V {
	if n := *s.find(key); n != nil {
		return &n.value
	}
	return nil
}

// Has reports whether key is present.
func (s *Store[K, V]) Has(key K) bool {
	return *s.find(key) != nil
}

// Remove deletes key from the store. Removing an absent key is a no-op.
func (s *Store[K, V]) Remove(key K) {
	link := s.find(key)
	n := *link
	if n == nil {
		return
	}
	switch {
	case n.lte == nil && n.gt == nil:
		*link = nil
	case n.lte == nil:
		*link = n.gt
	case n.gt == nil:
		*link = n.lte
	default:
		*link = relocate(n)
	}
	n.lte, n.gt = nil, nil
	s.size--
}

// Each visits every entry in hash order until fn returns false.
func (s *Store[K, V]) Each(fn func(key K, value V) bool) {
	walk(s.root, fn)
}

// Len returns the number of stored entries.
func (s *Store[K, V]) Len() int {
	return s.size
}

// Clear removes every entry.
func (s *Store[K, V]) Clear() {
	s.root = nil
	s.size = 0
}

// find returns the link that holds key, or the nil link where it would be
// inserted.
func (s *Store[K, V]) find(key K) **node[K, V] {
	h := s.hash(key)
	link := &s.root
	for *link != nil {
		n := *link
		if n.hash == h && n.key == key {
			return link
		}
		if h <= n.hash {
			link = &n.lte
		} else {
			link = &n.gt
		}
	}
	return link
}

// relocate detaches the node that replaces n (which has two children) and
// re-links n's subtrees under it.
//
// The replacement is the in-order successor, the leftmost node of the right
// subtree. Equal hashes chain down lte, so when an ancestor of the successor
// inside the right subtree shares its hash, lifting the successor above it
// would hide that ancestor from lookups. In that case the in-order
// predecessor is used instead; it can never have an equal-hash ancestor on
// its gt path.
func relocate[K comparable, V any](n *node[K, V]) *node[K, V] {
	succLink := &n.gt
	shadowed := false
	for (*succLink).lte != nil {
		parent := *succLink
		succLink = &parent.lte
		if parent.hash == (*succLink).hash {
			shadowed = true
		}
	}
	if !shadowed {
		succ := *succLink
		*succLink = succ.gt
		succ.lte = n.lte
		succ.gt = n.gt
		return succ
	}

	predLink := &n.lte
	for (*predLink).gt != nil {
		predLink = &(*predLink).gt
	}
	pred := *predLink
	*predLink = pred.lte
	pred.lte = n.lte
	pred.gt = n.gt
	return pred
}

func walk[K comparable, V any](n *node[K, V], fn func(K, V) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.lte, fn) {
		return false
	}
	if !fn(n.key, n.value) {
		return false
	}
	return walk(n.gt, fn)
}
