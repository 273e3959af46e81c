// Package types defines the semantic data model spec.md §3 describes:
// Slot/Epoch counters, Hash256 identifiers, blocks, state, checkpoints and
// attestations. The teacher's equivalents are protobuf-generated
// (ethpb.*/pb.*) from .proto files that are not part of the retrieval
// pack, so these are plain Go structs shaped the way the teacher's typed
// wrapper layer (beacon-chain/state's ReadOnlyValidator-style getters)
// exposes them.
package types

import "github.com/prysmaticlabs/beaconcore/config"

// Slot is a monotonic slot counter. Slot 0 is genesis.
type Slot uint64

// Epoch is a monotonic epoch counter.
type Epoch uint64

// ToEpoch converts a slot to the epoch containing it.
func (s Slot) ToEpoch() Epoch {
	return Epoch(uint64(s) / config.BeaconConfig().SlotsPerEpoch)
}

// StartSlot returns the first slot of epoch e.
func (e Epoch) StartSlot() Slot {
	return Slot(uint64(e) * config.BeaconConfig().SlotsPerEpoch)
}

// Hash256 is an opaque 32-byte identifier used for block roots, state
// roots and target roots.
type Hash256 [32]byte

// IsZero reports whether h is the all-zero hash, used as both the
// genesis parent-root sentinel and the default FFG checkpoint root.
func (h Hash256) IsZero() bool {
	return h == Hash256{}
}

// ZeroHash is the canonical all-zero Hash256.
var ZeroHash = Hash256{}
