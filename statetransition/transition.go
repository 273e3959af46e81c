// Package statetransition is the composition boundary spec.md §1 calls
// out as a named non-goal: "the engine does not define the Ethereum 2.0
// beacon-state-transition function itself... nor the fork-choice scoring
// rule; it composes them." PerSlotProcessing and PerBlockProcessing are
// the pure functions the orchestrator calls into; their bodies are the
// Casper-FFG/epoch-processing math this module deliberately does not
// reimplement (see DESIGN.md).
//
// Grounded on beacon-chain/core/state/transition.go and
// transition_no_verify_sig.go: the TransitionConfig/SignatureMode split and
// the process_slots-then-process_block composition are reproduced; the
// per-slot and per-block algorithm bodies are documented stubs.
package statetransition

import (
	"context"

	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/types"
)

// SignatureMode selects how per_block_processing treats BLS signatures,
// matching spec.md §4.A.3/§4.A.5's NoVerification/VerifyBulk distinction.
type SignatureMode int

const (
	// NoVerification skips all signature checks, used when producing a
	// block locally (spec.md §4.A.3 — the block is not yet signed).
	NoVerification SignatureMode = iota
	// VerifyBulk verifies every signature in one batched signature set,
	// used for block ingress (spec.md §4.A.5).
	VerifyBulk
	// VerifyIndividually verifies each signature independently; used by
	// initial-sync replay paths that need per-item error attribution.
	VerifyIndividually
)

// ErrBeaconState classifies an error as a beacon-state invariant violation
// (spec.md §4.A.5: "beacon-state errors escalate to internal Err").
// statetransition wraps per-slot/per-block errors it considers
// invariant violations in this type so callers can distinguish them from
// ordinary PerBlockProcessingError outcomes.
type ErrBeaconState struct {
	cause error
}

func (e *ErrBeaconState) Error() string { return "beacon state invariant violation: " + e.cause.Error() }
func (e *ErrBeaconState) Unwrap() error { return e.cause }

// WrapBeaconStateErr marks err as a beacon-state invariant violation.
func WrapBeaconStateErr(err error) error {
	if err == nil {
		return nil
	}
	return &ErrBeaconState{cause: err}
}

// IsBeaconStateErr reports whether err was produced via WrapBeaconStateErr.
func IsBeaconStateErr(err error) bool {
	var target *ErrBeaconState
	return errors.As(err, &target)
}

// PerSlotProcessing advances state by exactly one slot, without applying
// any block. This is the "skip slot" operation from spec.md's GLOSSARY:
// "a slot with no block; state still advances via per_slot_processing".
// The real algorithm (state-root caching, historical-root-ring rotation,
// epoch-boundary justification/finalization bookkeeping) is Ethereum's
// specified per_slot_processing function; out of scope here per spec.md §1.
func PerSlotProcessing(ctx context.Context, state *types.BeaconState, fastMode bool) (*types.BeaconState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	next := state.Copy()
	if !fastMode {
		root, err := state.HashTreeRoot()
		if err != nil {
			return nil, errors.Wrap(err, "could not compute pre-state root")
		}
		next.SetStateRootAtSlot(state.Slot, root)
	}
	// Flush the previous slot's block root, deferred there by
	// PerBlockProcessing because that root could not be known until the
	// block's own state root was finalized. Skip slots carry nothing to
	// flush and leave the prior entry in the ring untouched.
	if !state.PendingBlockRoot.IsZero() {
		next.SetBlockRootAtSlot(state.PendingBlockSlot, state.PendingBlockRoot)
	}
	next.PendingBlockRoot = types.Hash256{}
	next.PendingBlockSlot = 0
	next.Slot = state.Slot + 1
	return next, nil
}

// PerBlockProcessing applies block's operations (RANDAO, eth1 data,
// proposer/attester slashings, attestations, deposits, voluntary exits)
// to state according to mode's signature-verification strategy. The
// concrete operation-processing math is the specified per_block_processing
// function; out of scope here per spec.md §1. This stub returns an
// unmodified copy of state: it applies none of block's operations, checks
// no signatures in any mode, and leaves the justified/finalized
// checkpoints as they were, so that ExecuteStateTransition's contract is
// testable end to end without the full spec arithmetic.
//
// It deliberately does not record block's own root in the returned
// state's block-root ring: that root depends on block.StateRoot, which
// the caller has not necessarily finalized yet (ProduceBlock computes it
// from this very function's return value). Callers set
// post.PendingBlockRoot/PendingBlockSlot once they know the final root,
// and the next PerSlotProcessing call flushes it into the ring.
func PerBlockProcessing(ctx context.Context, state *types.BeaconState, block *types.BeaconBlock, mode SignatureMode) (*types.BeaconState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if block == nil {
		return nil, errors.New("nil block")
	}
	return state.Copy(), nil
}

// ExecuteStateTransition composes PerSlotProcessing (repeated up to
// block.Slot) with PerBlockProcessing, matching the teacher's
// ExecuteStateTransition(ctx, preState, signed) shape.
func ExecuteStateTransition(ctx context.Context, preState *types.BeaconState, signed *types.SignedBeaconBlock, mode SignatureMode) (*types.BeaconState, error) {
	if signed == nil || signed.Block == nil {
		return nil, errors.New("nil block")
	}
	state := preState
	for state.Slot < signed.Block.Slot {
		var err error
		state, err = PerSlotProcessing(ctx, state, false)
		if err != nil {
			return nil, errors.Wrap(err, "could not process slot")
		}
	}
	state, err := PerBlockProcessing(ctx, state, signed.Block, mode)
	if err != nil {
		return nil, err
	}
	blockRoot, err := signed.Block.HashTreeRoot()
	if err != nil {
		return nil, errors.Wrap(err, "could not compute block root")
	}
	state.PendingBlockRoot = blockRoot
	state.PendingBlockSlot = signed.Block.Slot
	return state, nil
}

// ExecuteStateTransitionNoVerifyAttSigs mirrors the teacher's initial-sync
// fast path (transition_no_verify_sig.go): identical composition, run with
// VerifyIndividually. There is no attestation-only skip mode; the
// PerBlockProcessing stub checks no signatures in any mode.
func ExecuteStateTransitionNoVerifyAttSigs(ctx context.Context, preState *types.BeaconState, signed *types.SignedBeaconBlock) (*types.BeaconState, error) {
	return ExecuteStateTransition(ctx, preState, signed, VerifyIndividually)
}
