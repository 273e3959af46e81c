// Block ingress, spec.md §4.A.5. Grounded on
// beacon-chain/blockchain/process_block.go's onBlock: the checkpoint
// propagation and persistence-ordering control flow is reproduced, the
// SSZ/assert-based rejection checks the pseudocode comment there quotes
// are replaced with spec.md's classified Outcome channel.
package blockchain

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/prysmaticlabs/beaconcore/beacon-chain/core/helpers"
	"github.com/prysmaticlabs/beaconcore/config"
	"github.com/prysmaticlabs/beaconcore/statetransition"
	"github.com/prysmaticlabs/beaconcore/types"
)

// ErrDBInconsistent is the fatal internal error raised when a block's
// parent is known to fork choice but its state is missing from the store
// (spec.md §4.A.5's "Parent state missing -> internal error DBInconsistent").
var ErrDBInconsistent = errors.New("DBInconsistent")

// intermediateState is one (state_root, state) pair produced while
// skipping a parent state forward to a block's slot, batched for a single
// later commit per spec.md §4.A.5's post-validation step 5.
type intermediateState struct {
	root  types.Hash256
	state *types.BeaconState
}

// ProcessBlock validates and, on acceptance, applies signed, matching
// spec.md §4.A's process_block(block) → Outcome | Err. Rejections are
// returned as a classified Outcome, never a Go error; only invariant
// violations (store failures, beacon-state errors) are returned as err.
func (s *Service) ProcessBlock(ctx context.Context, signed *types.SignedBeaconBlock) (Outcome, error) {
	ctx, span := withSpan(ctx, "ProcessBlock")
	defer span.End()

	if signed == nil || signed.Block == nil {
		return Outcome{}, errors.New("nil block")
	}
	block := signed.Block
	start := time.Now()

	blockRoot, err := block.HashTreeRoot()
	if err != nil {
		return Outcome{}, errors.Wrap(err, "could not compute block root")
	}

	outcome, err := s.checkBlockRejections(ctx, block, blockRoot)
	if err != nil {
		return Outcome{}, err
	}
	if outcome.IsRejection() {
		logBlockRejected(block.Slot, blockRoot, outcome.Kind)
		blockRejectedCount.WithLabelValues(outcome.Kind.String()).Inc()
		s.Events.Send(BeaconBlockRejected{Reason: outcome.Kind, Outcome: outcome})
		return outcome, nil
	}

	preState, postState, batch, outcome, err := s.applyBlock(ctx, block, blockRoot)
	if err != nil {
		return Outcome{}, err
	}
	if outcome.IsRejection() {
		logBlockRejected(block.Slot, blockRoot, outcome.Kind)
		blockRejectedCount.WithLabelValues(outcome.Kind.String()).Inc()
		s.Events.Send(BeaconBlockRejected{Reason: outcome.Kind, Outcome: outcome})
		return outcome, nil
	}

	if err := s.finishBlockIngress(ctx, signed, block, blockRoot, postState, batch); err != nil {
		return Outcome{}, err
	}

	dumpStateTransition(blockRoot, block, preState, postState)
	blockProcessingLatency.Observe(float64(time.Since(start).Milliseconds()))
	logBlockAccepted(block.Slot, blockRoot)
	s.Events.Send(BeaconBlockImported{BlockRoot: blockRoot, Slot: block.Slot})
	return Outcome{Kind: Processed, BlockRoot: blockRoot}, nil
}

// checkBlockRejections runs every classified rejection check from
// spec.md §4.A.5, in the specified order.
func (s *Service) checkBlockRejections(ctx context.Context, block *types.BeaconBlock, blockRoot types.Hash256) (Outcome, error) {
	if block.Slot == 0 {
		return Outcome{Kind: GenesisBlock, BlockRoot: blockRoot}, nil
	}
	if uint64(block.Slot) >= config.BeaconConfig().MaximumBlockSlotNumber {
		return Outcome{Kind: BlockSlotLimitReached, BlockRoot: blockRoot, ItemSlot: block.Slot}, nil
	}

	head, err := s.Head()
	if err != nil {
		return Outcome{}, err
	}
	finalizedSlot := types.Slot(0)
	if head.State.FinalizedCheckpoint != nil {
		finalizedSlot = head.State.FinalizedCheckpoint.Epoch.StartSlot()
	}
	if block.Slot <= finalizedSlot {
		return Outcome{Kind: WouldRevertFinalizedSlot, BlockRoot: blockRoot, ItemSlot: block.Slot, FinalizedSlot: finalizedSlot}, nil
	}

	if !s.forkChoice.ContainsBlock(block.ParentRoot) {
		return Outcome{Kind: ParentUnknown, BlockRoot: blockRoot, ReferenceLocation: ReferenceLocationForkChoice}, nil
	}

	if blockRoot == s.genesisBlockRoot {
		return Outcome{Kind: GenesisBlock, BlockRoot: blockRoot}, nil
	}

	presentSlot, err := s.Slot()
	if err != nil {
		return Outcome{}, err
	}
	if block.Slot > presentSlot {
		return Outcome{Kind: FutureSlot, BlockRoot: blockRoot, PresentSlot: presentSlot, ItemSlot: block.Slot}, nil
	}

	if s.forkChoice.ContainsBlock(blockRoot) {
		return Outcome{Kind: BlockIsAlreadyKnown, BlockRoot: blockRoot}, nil
	}

	if _, err := s.db.GetBlock(ctx, block.ParentRoot); err != nil {
		return Outcome{Kind: ParentUnknown, BlockRoot: blockRoot, ReferenceLocation: ReferenceLocationDatabase}, nil
	}

	return Outcome{Kind: Processed}, nil
}

// applyBlock loads the parent state, advances it to block.slot, applies
// per_block_processing, and checks the resulting state root, matching the
// "on acceptance" paragraph of spec.md §4.A.5.
func (s *Service) applyBlock(ctx context.Context, block *types.BeaconBlock, blockRoot types.Hash256) (*types.BeaconState, *types.BeaconState, []intermediateState, Outcome, error) {
	parentBlock, err := s.db.GetBlock(ctx, block.ParentRoot)
	if err != nil {
		return nil, nil, nil, Outcome{}, errors.Wrap(ErrDBInconsistent, "parent block vanished after fork-choice check")
	}
	parentState, err := s.db.GetState(ctx, parentBlock.Block.StateRoot, parentBlock.Block.Slot)
	if err != nil {
		return nil, nil, nil, Outcome{}, errors.Wrap(ErrDBInconsistent, "parent state missing from store")
	}

	state := parentState
	var batch []intermediateState
	for state.Slot < block.Slot {
		next, err := statetransition.PerSlotProcessing(ctx, state, false)
		if err != nil {
			return nil, nil, nil, Outcome{}, statetransition.WrapBeaconStateErr(err)
		}
		root, err := next.HashTreeRoot()
		if err != nil {
			return nil, nil, nil, Outcome{}, errors.Wrap(err, "could not compute intermediate state root")
		}
		batch = append(batch, intermediateState{root: root, state: next})
		state = next
	}

	if err := s.buildEpochCommitteeCaches(state); err != nil {
		return nil, nil, nil, Outcome{}, errors.Wrap(err, "could not build committee caches")
	}

	postState, err := statetransition.PerBlockProcessing(ctx, state, block, statetransition.VerifyBulk)
	if err != nil {
		if statetransition.IsBeaconStateErr(err) {
			return nil, nil, nil, Outcome{}, err
		}
		return nil, nil, nil, Outcome{Kind: PerBlockProcessingError, BlockRoot: blockRoot, Cause: err}, nil
	}

	stateRoot, err := postState.HashTreeRoot()
	if err != nil {
		return nil, nil, nil, Outcome{}, errors.Wrap(err, "could not compute post-state root")
	}
	if stateRoot != block.StateRoot {
		return nil, nil, nil, Outcome{Kind: StateRootMismatch, BlockRoot: blockRoot}, nil
	}
	postState.PendingBlockRoot = blockRoot
	postState.PendingBlockSlot = block.Slot

	return parentState, postState, batch, Outcome{Kind: Processed}, nil
}

// buildEpochCommitteeCaches builds the previous- and current-epoch
// committee caches, as spec.md §4.A.5's acceptance path requires before
// per_block_processing runs. The two builds read disjoint shuffling
// inputs off the same immutable state, so they run as an errgroup fan-out
// rather than sequentially.
func (s *Service) buildEpochCommitteeCaches(state *types.BeaconState) error {
	epoch := state.Slot.ToEpoch()

	g := new(errgroup.Group)
	g.Go(func() error {
		_, err := helpers.BuildCommitteeCache(state, epoch)
		return err
	})
	if epoch > 0 {
		g.Go(func() error {
			_, err := helpers.BuildCommitteeCache(state, epoch-1)
			return err
		})
	}
	return g.Wait()
}

// finishBlockIngress performs the ordered post-validation housekeeping
// from spec.md §4.A.5: pubkey cache, shuffling cache, fork choice, head
// tracker, then the state-before-block persistence write.
func (s *Service) finishBlockIngress(ctx context.Context, signed *types.SignedBeaconBlock, block *types.BeaconBlock, blockRoot types.Hash256, postState *types.BeaconState, batch []intermediateState) error {
	if err := s.pubkeys.ImportNewPubkeys(postState); err != nil {
		return errors.Wrap(err, "could not import new validator pubkeys")
	}

	if err := s.maybeCacheEpochCommittee(postState, blockRoot); err != nil {
		log.WithError(err).Warn("Could not update shuffling cache")
	}

	if err := s.forkChoice.ProcessBlock(ctx, postState, block, blockRoot); err != nil {
		log.WithError(err).Warn("Could not register block with fork choice")
	}

	s.heads.RegisterBlock(blockRoot, uint64(block.Slot), block.ParentRoot)

	for _, is := range batch {
		if err := s.db.PutState(ctx, is.root, is.state); err != nil {
			return errors.Wrap(err, "could not commit intermediate state batch")
		}
	}

	stateRoot, err := postState.HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not compute post-state root")
	}
	if err := s.db.PutState(ctx, stateRoot, postState); err != nil {
		return errors.Wrap(err, "could not save post-state")
	}
	if err := s.db.PutBlock(ctx, blockRoot, signed); err != nil {
		return errors.Wrap(err, "could not save block")
	}

	if s.opPool != nil {
		s.opPool.DeleteAttestations(block.Body.Attestations)
	}

	return nil
}

// maybeCacheEpochCommittee inserts the current-epoch committee cache
// keyed on (epoch, target_root) if this is the first block of a
// wall-clock current/previous epoch new to the cache, per spec.md §4.A.5
// step 2.
func (s *Service) maybeCacheEpochCommittee(state *types.BeaconState, blockRoot types.Hash256) error {
	epoch := state.Slot.ToEpoch()
	epochStartSlot := epoch.StartSlot()

	currentEpoch, err := s.Epoch()
	if err != nil {
		return err
	}
	if epoch > currentEpoch || epoch+1 < currentEpoch {
		return nil
	}

	targetRoot := blockRoot
	if state.Slot != epochStartSlot {
		r, err := state.BlockRootAtSlot(epochStartSlot)
		if err != nil {
			return nil
		}
		targetRoot = r
	}

	if _, ok, _ := s.shuffling.Get(epoch, targetRoot); ok {
		return nil
	}
	cc, err := helpers.BuildCommitteeCache(state, epoch)
	if err != nil {
		return err
	}
	return s.shuffling.Put(epoch, targetRoot, cc)
}
