package blockchain

import "github.com/prysmaticlabs/beaconcore/types"

// OutcomeKind classifies why process_block/process_attestation declined
// to accept an item, the data channel spec.md §7 calls "classified
// outcomes" as distinct from Go errors: these never abort the caller.
type OutcomeKind int

const (
	// Processed means the item was accepted.
	Processed OutcomeKind = iota

	// block ingress rejections, spec.md §4.A.5, in check order.
	GenesisBlock
	BlockSlotLimitReached
	WouldRevertFinalizedSlot
	ParentUnknown
	FutureSlot
	BlockIsAlreadyKnown
	StateRootMismatch
	PerBlockProcessingError

	// attestation ingress rejections, spec.md §4.A.4, in check order.
	EmptyAggregationBitfield
	FutureEpoch
	PastEpoch
	BadTargetEpoch
	UnknownTargetRoot
	UnknownHeadBlock
	AttestsToFutureBlock
	InvalidSignature
)

// ReferenceLocation distinguishes the two places ParentUnknown can be
// raised from, per spec.md §4.A.5.
type ReferenceLocation int

const (
	// ReferenceLocationUnspecified is the zero value, used by outcomes
	// that do not carry a reference location.
	ReferenceLocationUnspecified ReferenceLocation = iota
	ReferenceLocationForkChoice
	ReferenceLocationDatabase
)

func (r ReferenceLocation) String() string {
	switch r {
	case ReferenceLocationForkChoice:
		return "fork_choice"
	case ReferenceLocationDatabase:
		return "database"
	default:
		return "unspecified"
	}
}

// Outcome is the classified result of a process_block/process_attestation
// call: either Processed, carrying the accepted item's root, or a
// rejection carrying whatever detail spec.md §8's scenario descriptions
// name (present_slot/block_slot for FutureSlot, the offending root for
// UnknownTargetRoot, and so on).
type Outcome struct {
	Kind OutcomeKind

	BlockRoot types.Hash256

	ReferenceLocation ReferenceLocation

	PresentSlot types.Slot
	ItemSlot    types.Slot

	FinalizedSlot types.Slot

	TargetRoot types.Hash256

	Cause error
}

// IsRejection reports whether o represents a declined item rather than an
// acceptance.
func (o Outcome) IsRejection() bool {
	return o.Kind != Processed
}

func (k OutcomeKind) String() string {
	switch k {
	case Processed:
		return "Processed"
	case GenesisBlock:
		return "GenesisBlock"
	case BlockSlotLimitReached:
		return "BlockSlotLimitReached"
	case WouldRevertFinalizedSlot:
		return "WouldRevertFinalizedSlot"
	case ParentUnknown:
		return "ParentUnknown"
	case FutureSlot:
		return "FutureSlot"
	case BlockIsAlreadyKnown:
		return "BlockIsAlreadyKnown"
	case StateRootMismatch:
		return "StateRootMismatch"
	case PerBlockProcessingError:
		return "PerBlockProcessingError"
	case EmptyAggregationBitfield:
		return "EmptyAggregationBitfield"
	case FutureEpoch:
		return "FutureEpoch"
	case PastEpoch:
		return "PastEpoch"
	case BadTargetEpoch:
		return "BadTargetEpoch"
	case UnknownTargetRoot:
		return "UnknownTargetRoot"
	case UnknownHeadBlock:
		return "UnknownHeadBlock"
	case AttestsToFutureBlock:
		return "AttestsToFutureBlock"
	case InvalidSignature:
		return "InvalidSignature"
	default:
		return "Unknown"
	}
}
