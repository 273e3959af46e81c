// Package forkchoice implements component B from spec.md §4.B: the block
// DAG, per-validator latest messages, and canonical-head selection.
// spec.md §1 names the scoring rule itself (LMD-GHOST on top of FFG) as a
// named external collaborator the engine composes rather than defines; no
// standalone implementation file was retrieved for this package in the
// teacher (only beacon-chain/blockchain/forkchoice/*_test.go — tests,
// confirming the framing), so this package supplies a reference DAG +
// LMD-GHOST walk shaped after those tests' API (GenesisStore,
// checkpointState, justified/finalized fields) so the orchestrator's
// contract is testable end-to-end.
package forkchoice

import (
	"context"

	"github.com/prysmaticlabs/beaconcore/types"
)

// ForkChoice is the interface spec.md §4.B names.
type ForkChoice interface {
	ContainsBlock(root types.Hash256) bool
	BlockSlotAndStateRoot(root types.Hash256) (types.Slot, types.Hash256, bool)
	ProcessBlock(ctx context.Context, state *types.BeaconState, block *types.BeaconBlock, blockRoot types.Hash256) error
	ProcessIndexedAttestation(ctx context.Context, att *types.IndexedAttestation) error
	FindHead(ctx context.Context) (types.Hash256, error)
	Prune(ctx context.Context, finalizedRoot types.Hash256) error
	AsSSZContainer() ([]byte, error)
}
