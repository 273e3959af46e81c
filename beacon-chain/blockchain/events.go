package blockchain

import "github.com/prysmaticlabs/beaconcore/types"

// Event types sent to Service.Events, the fire-and-forget sink spec.md §6
// names: BeaconBlockImported, BeaconBlockRejected, BeaconAttestationImported,
// BeaconAttestationRejected, BeaconHeadChanged, BeaconFinalization.

// BeaconBlockImported is sent when process_block accepts a block.
type BeaconBlockImported struct {
	BlockRoot types.Hash256
	Slot      types.Slot
}

// BeaconBlockRejected is sent when process_block declines a block.
type BeaconBlockRejected struct {
	Reason OutcomeKind
	Outcome
}

// BeaconAttestationImported is sent when process_attestation accepts an
// attestation.
type BeaconAttestationImported struct {
	TargetRoot types.Hash256
	Slot       types.Slot
}

// BeaconAttestationRejected is sent when process_attestation declines an
// attestation.
type BeaconAttestationRejected struct {
	Reason OutcomeKind
	Outcome
}

// BeaconHeadChanged is sent whenever fork_choice() swaps the canonical
// head snapshot.
type BeaconHeadChanged struct {
	Reorg    bool
	Previous types.Hash256
	Current  types.Hash256
}

// BeaconFinalization is sent when the finalized checkpoint advances during
// head election.
type BeaconFinalization struct {
	Epoch types.Epoch
	Root  types.Hash256
}
