package blockchain

import (
	"context"

	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/config"
	"github.com/prysmaticlabs/beaconcore/types"
)

// ErrCanonicalHeadLockTimeout is returned when a head-snapshot access could
// not acquire its lock within the configured timeout (spec.md §4.C).
var ErrCanonicalHeadLockTimeout = errors.New("CanonicalHeadLockTimeout")

// ErrRevertedFinalizedEpoch is the internal error raised when a would-be
// head election would decrease the finalized epoch (spec.md §4.A.6 step 4
// and invariant 3).
var ErrRevertedFinalizedEpoch = errors.New("RevertedFinalizedEpoch")

// Head returns a clone of the canonical head snapshot, sharing the
// underlying block/state pointers (spec.md §4.A: "a clone... carrying
// only committee caches, cheap clone").
func (s *Service) Head() (*types.CheckPoint, error) {
	if !s.headLock.RTryLock(config.BeaconConfig().HeadLockTimeout) {
		return nil, ErrCanonicalHeadLockTimeout
	}
	defer s.headLock.RUnlock()
	return s.head.Clone(), nil
}

// HeadInfo is the summary spec.md §4.A's head_info() operation returns.
type HeadInfo struct {
	Slot      types.Slot
	BlockRoot types.Hash256
	StateRoot types.Hash256
	Justified *types.Checkpoint
	Finalized *types.Checkpoint
	Fork      *types.Fork
}

// HeadInfo returns a summary of the current head snapshot.
func (s *Service) HeadInfo() (*HeadInfo, error) {
	if !s.headLock.RTryLock(config.BeaconConfig().HeadLockTimeout) {
		return nil, ErrCanonicalHeadLockTimeout
	}
	defer s.headLock.RUnlock()
	return &HeadInfo{
		Slot:      s.head.Block.Block.Slot,
		BlockRoot: s.head.BlockRoot,
		StateRoot: s.head.StateRoot,
		Justified: s.head.State.CurrentJustifiedCheckpoint,
		Finalized: s.head.State.FinalizedCheckpoint,
		Fork:      s.head.State.Fork,
	}, nil
}

// FindHead implements spec.md §4.A.6's head-election routine: ask fork
// choice for the current head root, and if it differs from the current
// snapshot, load the new head's block/state, check for finalization
// reversion, swap the snapshot, and run the finalization hook.
//
// A failure here increments an error counter but never aborts the
// process (spec.md §7: "a head-election failure increments an error
// counter... subsequent elections may succeed").
func (s *Service) FindHead(ctx context.Context) error {
	ctx, span := withSpan(ctx, "FindHead")
	defer span.End()

	if err := s.findHead(ctx); err != nil {
		headElectionErrorCount.Inc()
		return err
	}
	return nil
}

func (s *Service) findHead(ctx context.Context) error {
	newRoot, err := s.forkChoice.FindHead(ctx)
	if err != nil {
		return errors.Wrap(err, "could not find head via fork choice")
	}

	previous, err := s.Head()
	if err != nil {
		return err
	}
	if newRoot == previous.BlockRoot {
		return nil
	}

	newBlock, err := s.db.GetBlock(ctx, newRoot)
	if err != nil {
		return errors.Wrap(err, "could not load new head block")
	}
	newState, err := s.db.GetState(ctx, newBlock.Block.StateRoot, newBlock.Block.Slot)
	if err != nil {
		return errors.Wrap(err, "could not load new head state")
	}

	// Genesis is an ancestor of every block by construction, and its own
	// root is never recorded in any state's block-root ring (nothing ever
	// processes a block "at" genesis), so the ring lookup below can't
	// confirm it either way; treat it as always present rather than as a
	// reorg.
	reorg := true
	if previous.Block.Block.Slot == 0 {
		reorg = false
	} else if prevBlockRootAtSlot, err := newState.BlockRootAtSlot(previous.Block.Block.Slot); err == nil {
		reorg = prevBlockRootAtSlot != previous.BlockRoot
	}

	oldFinalized := previous.State.FinalizedCheckpoint
	newFinalized := newState.FinalizedCheckpoint
	if newFinalized != nil && oldFinalized != nil && newFinalized.Epoch < oldFinalized.Epoch {
		return ErrRevertedFinalizedEpoch
	}

	if err := s.swapHead(newBlock, newRoot, newState, newBlock.Block.StateRoot); err != nil {
		return err
	}

	if newBlock.Block.Slot.ToEpoch() != previous.Block.Block.Slot.ToEpoch() || reorg {
		s.persistHeadAndForkChoice(ctx)
	}

	logHeadChanged(reorg, previous.BlockRoot, newRoot)
	if reorg {
		reorgCount.Inc()
	}
	s.Events.Send(BeaconHeadChanged{Reorg: reorg, Previous: previous.BlockRoot, Current: newRoot})

	if newFinalized != nil && (oldFinalized == nil || newFinalized.Epoch > oldFinalized.Epoch) {
		s.onFinalization(ctx, newFinalized, newState)
	}
	return nil
}

// swapHead atomically replaces the canonical head snapshot. The write
// lock is held only long enough to install the new pointers (spec.md §9:
// "release-before-load... this must be preserved"); everything above it
// has already completed its I/O.
func (s *Service) swapHead(block *types.SignedBeaconBlock, blockRoot types.Hash256, state *types.BeaconState, stateRoot types.Hash256) error {
	if !s.headLock.WTryLock(config.BeaconConfig().HeadLockTimeout) {
		return ErrCanonicalHeadLockTimeout
	}
	defer s.headLock.Unlock()
	s.head = &types.CheckPoint{
		Block:     block,
		BlockRoot: blockRoot,
		State:     state,
		StateRoot: stateRoot,
	}
	return nil
}

// onFinalization runs the finalization hook from spec.md §4.A.6 step 8:
// prune fork choice, prune the op pool, emit BeaconFinalization. It does
// not freeze states to cold storage: this module has no store migrator
// and makes no migrator call.
func (s *Service) onFinalization(ctx context.Context, finalized *types.Checkpoint, state *types.BeaconState) {
	if err := s.forkChoice.Prune(ctx, finalized.Root); err != nil {
		log.WithError(err).Warn("Could not prune fork choice on finalization")
	}
	if s.opPool != nil {
		s.opPool.PruneFinalized(finalized.Epoch)
	}
	log.WithField("epoch", finalized.Epoch).Info("New finalized checkpoint")
	s.Events.Send(BeaconFinalization{Epoch: finalized.Epoch, Root: finalized.Root})
}
