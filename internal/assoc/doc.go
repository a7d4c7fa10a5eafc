// Package assoc implements the associative store used throughout the job
// tree: a binary search tree ordered by key hash.
//
// Lookups walk the tree by hash. Equal hashes route to the lte side, and an
// exact key comparison separates a stored key from a colliding one, so a
// hash value shared by several keys forms a chain of nodes rather than a
// bucket. Add never overwrites; it returns the stored value when the key is
// already present.
//
// The store backs three owners:
//   - per-job event handler tables (keyed by event name)
//   - the type registry (keyed by type name)
//   - scratch occurrence counters for query joins (keyed by job ID)
//
// Absence is never an error: Get reports false, Lookup returns nil and
// Remove of a missing key does nothing.
package assoc
