// Attestation production, spec.md §4.A.2.
package blockchain

import (
	"context"

	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/beacon-chain/core/helpers"
	"github.com/prysmaticlabs/beaconcore/types"
)

// ProduceAttestation builds an unsigned Attestation for slot and
// committeeIndex, matching spec.md §4.A.2.
func (s *Service) ProduceAttestation(ctx context.Context, slot types.Slot, committeeIndex uint64) (*types.Attestation, error) {
	ctx, span := withSpan(ctx, "ProduceAttestation")
	defer span.End()

	head, err := s.Head()
	if err != nil {
		return nil, err
	}

	var state *types.BeaconState
	var beaconBlockRoot types.Hash256

	if slot >= head.State.Slot {
		state = head.State
		beaconBlockRoot = head.BlockRoot
	} else {
		beaconBlockRoot, err = head.State.BlockRootAtSlot(slot)
		if err != nil {
			return nil, errors.Wrap(err, "could not find beacon block root for slot")
		}
		stateRoot, err := head.State.StateRootAtSlot(slot)
		if err != nil {
			return nil, errors.Wrap(err, "could not find state root for slot")
		}
		state, err = s.db.GetState(ctx, stateRoot, slot)
		if err != nil {
			return nil, errors.Wrap(err, "could not load state for slot")
		}
	}

	committee, err := helpers.BeaconCommittee(state, slot, committeeIndex)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute committee")
	}

	epoch := slot.ToEpoch()
	targetRoot := beaconBlockRoot
	epochStartSlot := epoch.StartSlot()
	if state.Slot > epochStartSlot {
		if r, err := state.BlockRootAtSlot(epochStartSlot); err == nil {
			targetRoot = r
		}
	}

	return &types.Attestation{
		AggregationBits: types.NewEmptyAggregationBits(uint64(len(committee))),
		Data: &types.AttestationData{
			Slot:            slot,
			CommitteeIndex:  committeeIndex,
			BeaconBlockRoot: beaconBlockRoot,
			Source:          state.CurrentJustifiedCheckpoint,
			Target:          &types.Checkpoint{Epoch: epoch, Root: targetRoot},
		},
	}, nil
}
