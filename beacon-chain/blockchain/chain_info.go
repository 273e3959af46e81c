package blockchain

import (
	"context"

	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/beacon-chain/headtracker"
	"github.com/prysmaticlabs/beaconcore/types"
)

// Slot reads the slot clock, failing if called before genesis, matching
// spec.md §4.A's slot() → Slot | Err.
func (s *Service) Slot() (types.Slot, error) {
	return s.clock.CurrentSlot()
}

// Epoch returns slot()/SLOTS_PER_EPOCH.
func (s *Service) Epoch() (types.Epoch, error) {
	slot, err := s.Slot()
	if err != nil {
		return 0, err
	}
	return slot.ToEpoch(), nil
}

// GetBlock delegates to the store.
func (s *Service) GetBlock(ctx context.Context, root types.Hash256) (*types.SignedBeaconBlock, error) {
	return s.db.GetBlock(ctx, root)
}

// GetState delegates to the store.
func (s *Service) GetState(ctx context.Context, root types.Hash256, slotHint types.Slot) (*types.BeaconState, error) {
	return s.db.GetState(ctx, root, slotHint)
}

// BlockAtSlot performs the iterator-based slot-to-root search spec.md
// §4.A names, then loads the resolved block.
func (s *Service) BlockAtSlot(ctx context.Context, slot types.Slot) (*types.SignedBeaconBlock, error) {
	root, found, err := s.db.BlockRootForSlot(ctx, slot)
	if err != nil {
		return nil, errors.Wrap(err, "could not search block root for slot")
	}
	if !found {
		return nil, errors.Errorf("chain_info: no block found at or before slot %d", slot)
	}
	return s.db.GetBlock(ctx, root)
}

// Heads exposes head-tracker state, spec.md §4.A's heads() → [(root, slot)].
func (s *Service) Heads() []headtracker.Head {
	return s.heads.Heads()
}

// ChainDump walks ancestors of head via parent_root until the zero hash,
// for test and debug only, matching spec.md §4.A's chain_dump() operation.
func (s *Service) ChainDump(ctx context.Context) ([]*types.CheckPoint, error) {
	head, err := s.Head()
	if err != nil {
		return nil, err
	}
	var dump []*types.CheckPoint
	current := head
	for {
		dump = append(dump, current)
		parentRoot := current.Block.Block.ParentRoot
		if parentRoot.IsZero() {
			break
		}
		block, err := s.db.GetBlock(ctx, parentRoot)
		if err != nil {
			return nil, errors.Wrapf(err, "could not load ancestor block %x", parentRoot)
		}
		state, err := s.db.GetState(ctx, block.Block.StateRoot, block.Block.Slot)
		if err != nil {
			return nil, errors.Wrapf(err, "could not load ancestor state %x", block.Block.StateRoot)
		}
		current = &types.CheckPoint{
			Block:     block,
			BlockRoot: parentRoot,
			State:     state,
			StateRoot: block.Block.StateRoot,
		}
	}
	return dump, nil
}
