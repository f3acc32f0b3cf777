// Package store persists the chunk index as a single versioned JSON document.
//
// The whole index lives in an in-memory map keyed by chunk id; Flush rewrites
// the backing file wholesale, and only when the store is dirty. Loading is
// lazy with an explicit tri-state (not loaded / absent / loaded): a missing,
// unreadable, corrupt, or version-mismatched document silently initializes an
// empty store, because a broken index must degrade retrieval, not crash the
// host.
//
// The document trades durability and concurrent-writer safety for zero
// external dependencies. Its schema must never change without bumping
// SchemaVersion - the version tag is the only incompatibility signal a
// reader has.
package store
