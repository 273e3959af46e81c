// Package store defines the persistent blob database spec.md §1 names as
// an external collaborator ("The persistent store Store... and its
// background migrator StoreMigrator... [are] deliberately out of scope").
// This module still needs something real to drive end-to-end, so it
// defines the narrow interface spec.md §6 describes and, in the boltstore
// subpackage, a reference implementation grounded on
// beacon-chain/db/schema.go's bucket-by-suffix convention.
package store

import (
	"context"

	"github.com/prysmaticlabs/beaconcore/types"
)

// Four distinct, non-zero 32-byte keys for the top-level snapshots,
// resolving the Open Question noted in spec.md §9 (the original shares one
// all-zero literal between the beacon-chain and op-pool snapshots).
var (
	KeyBeaconChain = [32]byte{'b', 'e', 'a', 'c', 'o', 'n', '-', 'c', 'h', 'a', 'i', 'n'}
	KeyForkChoice  = [32]byte{'f', 'o', 'r', 'k', '-', 'c', 'h', 'o', 'i', 'c', 'e'}
	KeyOpPool      = [32]byte{'o', 'p', '-', 'p', 'o', 'o', 'l'}
	KeyEth1Cache   = [32]byte{'e', 't', 'h', '1', '-', 'c', 'a', 'c', 'h', 'e'}
)

// Store is the keyed blob database interface spec.md §6 describes.
type Store interface {
	Get(ctx context.Context, key [32]byte) ([]byte, error)
	Put(ctx context.Context, key [32]byte, value []byte) error
	Exists(ctx context.Context, key [32]byte) (bool, error)

	GetBlock(ctx context.Context, root types.Hash256) (*types.SignedBeaconBlock, error)
	PutBlock(ctx context.Context, root types.Hash256, block *types.SignedBeaconBlock) error

	GetState(ctx context.Context, root types.Hash256, slotHint types.Slot) (*types.BeaconState, error)
	PutState(ctx context.Context, root types.Hash256, state *types.BeaconState) error

	// BlockRootForSlot performs the iterator-based slot-to-root search
	// spec.md §4.A names for block_at_slot: it returns the root stored for
	// the highest slot at or below slot, and false if there is none.
	BlockRootForSlot(ctx context.Context, slot types.Slot) (types.Hash256, bool, error)
}

// ErrNotFound is returned by Get/GetBlock/GetState when key is absent.
var ErrNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "store: key not found" }
