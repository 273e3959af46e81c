// Slot-state skipping, spec.md §4.A.1: given a target slot, either return
// the head state unchanged, advance it forward via per_slot_processing
// under a wall-clock budget, or walk the head state's historical-root ring
// backwards and fetch from the store.
package blockchain

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/config"
	"github.com/prysmaticlabs/beaconcore/statetransition"
	"github.com/prysmaticlabs/beaconcore/types"
)

// ErrStateSkipTooLarge is returned when advancing to the target slot
// exceeds the per-task wall-clock budget (milliseconds_per_slot).
var ErrStateSkipTooLarge = errors.New("StateSkipTooLarge")

// ErrNoStateForSlot is returned when a request for a slot behind the head
// cannot be resolved via the state-root ring or the store.
var ErrNoStateForSlot = errors.New("NoStateForSlot")

// StateAtSlot returns the state at targetSlot, per spec.md §4.A.1.
// fastMode substitutes zero state roots while skipping forward, producing
// a state usable only for shuffling, never for block application.
func (s *Service) StateAtSlot(ctx context.Context, targetSlot types.Slot, fastMode bool) (*types.BeaconState, error) {
	ctx, span := withSpan(ctx, "StateAtSlot")
	defer span.End()

	head, err := s.Head()
	if err != nil {
		return nil, err
	}
	headState := head.State

	switch {
	case targetSlot == headState.Slot:
		return headState, nil
	case targetSlot > headState.Slot:
		return s.skipStateForward(ctx, headState, targetSlot, fastMode)
	default:
		return s.skipStateBackward(ctx, headState, targetSlot)
	}
}

// skipStateForward applies per_slot_processing repeatedly under a hard
// deadline of milliseconds_per_slot, failing with StateSkipTooLarge on
// overrun.
func (s *Service) skipStateForward(ctx context.Context, state *types.BeaconState, targetSlot types.Slot, fastMode bool) (*types.BeaconState, error) {
	budget := time.Duration(config.BeaconConfig().SecondsPerSlot) * time.Second
	deadline := time.Now().Add(budget)

	next := state
	for next.Slot < targetSlot {
		if time.Now().After(deadline) {
			return nil, ErrStateSkipTooLarge
		}
		var err error
		next, err = statetransition.PerSlotProcessing(ctx, next, fastMode)
		if err != nil {
			return nil, statetransition.WrapBeaconStateErr(err)
		}
	}
	return next, nil
}

// skipStateBackward walks the head state's state-root ring backwards to
// find the state root for targetSlot, then fetches it from the store.
func (s *Service) skipStateBackward(ctx context.Context, headState *types.BeaconState, targetSlot types.Slot) (*types.BeaconState, error) {
	root, err := headState.StateRootAtSlot(targetSlot)
	if err != nil {
		return nil, ErrNoStateForSlot
	}
	state, err := s.db.GetState(ctx, root, targetSlot)
	if err != nil {
		return nil, ErrNoStateForSlot
	}
	return state, nil
}
