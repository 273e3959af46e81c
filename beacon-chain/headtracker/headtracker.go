// Package headtracker implements component D from spec.md §4.D: the set
// of known leaf block roots (tips), used for persistence and re-loading
// after restart. No standalone teacher file was retrieved for this
// component (see DESIGN.md); the locking idiom follows the same
// sync.RWMutex pattern as beacon-chain/cache.
package headtracker

import "sync"

// HeadTracker tracks every known leaf (block_root, slot) pair.
type HeadTracker struct {
	mu    sync.RWMutex
	roots map[[32]byte]uint64
}

// New returns an empty HeadTracker.
func New() *HeadTracker {
	return &HeadTracker{roots: make(map[[32]byte]uint64)}
}

// RegisterBlock adds blockRoot as a new leaf and removes parentRoot if it
// was previously tracked, matching spec.md §4.D's
// "add the child and remove the parent if present".
func (h *HeadTracker) RegisterBlock(blockRoot [32]byte, slot uint64, parentRoot [32]byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roots[blockRoot] = slot
	delete(h.roots, parentRoot)
}

// Heads returns every currently tracked (root, slot) pair, the contract
// spec.md's BeaconChain.heads() operation exposes.
func (h *HeadTracker) Heads() []Head {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Head, 0, len(h.roots))
	for root, slot := range h.roots {
		out = append(out, Head{Root: root, Slot: slot})
	}
	return out
}

// Head is a single known leaf.
type Head struct {
	Root [32]byte
	Slot uint64
}

// Snapshot returns a serializable copy of the tracked set, used by the
// persistence glue when writing the top-level beacon-chain snapshot.
func (h *HeadTracker) Snapshot() map[[32]byte]uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cp := make(map[[32]byte]uint64, len(h.roots))
	for k, v := range h.roots {
		cp[k] = v
	}
	return cp
}

// Restore replaces the tracked set with snapshot, used when reloading
// after restart.
func (h *HeadTracker) Restore(snapshot map[[32]byte]uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roots = make(map[[32]byte]uint64, len(snapshot))
	for k, v := range snapshot {
		h.roots[k] = v
	}
}
