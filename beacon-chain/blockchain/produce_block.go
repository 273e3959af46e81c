// Block production, spec.md §4.A.3.
package blockchain

import (
	"context"

	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/shared/bytesutil"
	"github.com/prysmaticlabs/beaconcore/statetransition"
	"github.com/prysmaticlabs/beaconcore/types"
)

// ProduceBlock advances a cloned head state to produceAtSlot, assembles a
// block from the operation pool's contents plus the current eth1 vote,
// applies per_block_processing in NoVerification mode, and writes the
// resulting state root back into the block — matching spec.md §4.A.3. The
// returned block is unsigned; signing is delegated to the validator
// client.
func (s *Service) ProduceBlock(ctx context.Context, randaoReveal [96]byte, produceAtSlot types.Slot, proposerIndex uint64) (*types.BeaconBlock, *types.BeaconState, error) {
	ctx, span := withSpan(ctx, "ProduceBlock")
	defer span.End()

	head, err := s.Head()
	if err != nil {
		return nil, nil, err
	}
	state := head.State.Copy()
	for state.Slot < produceAtSlot {
		state, err = statetransition.PerSlotProcessing(ctx, state, false)
		if err != nil {
			return nil, nil, statetransition.WrapBeaconStateErr(err)
		}
	}

	eth1Data := &types.Eth1Data{}
	if s.eth1 != nil {
		eth1Data, err = s.eth1.Eth1Data(ctx)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not read eth1 data")
		}
	}

	body := &types.BeaconBlockBody{
		RandaoReveal: randaoReveal,
		Eth1Data:     eth1Data,
		Graffiti:     bytesutil.DefaultGraffiti,
	}
	if s.opPool != nil {
		body.ProposerSlashings = s.opPool.ProposerSlashings()
		body.AttesterSlashings = s.opPool.AttesterSlashings()
		body.Attestations = s.opPool.Attestations()
		body.VoluntaryExits = s.opPool.VoluntaryExits()
	}

	parentRoot, err := head.Block.Block.HashTreeRoot()
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not compute parent root")
	}

	block := &types.BeaconBlock{
		Slot:          produceAtSlot,
		ProposerIndex: proposerIndex,
		ParentRoot:    parentRoot,
		StateRoot:     types.Hash256{},
		Body:          body,
	}

	postState, err := statetransition.PerBlockProcessing(ctx, state, block, statetransition.NoVerification)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not apply per block processing")
	}

	stateRoot, err := postState.HashTreeRoot()
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not compute post-state root")
	}
	block.StateRoot = stateRoot

	blockRoot, err := block.HashTreeRoot()
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not compute block root")
	}
	postState.PendingBlockRoot = blockRoot
	postState.PendingBlockSlot = block.Slot

	return block, postState, nil
}
