package types

import (
	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/config"
	libssz "github.com/prysmaticlabs/beaconcore/ssz"
)

// ErrInvalidStateRootIndex is returned when a slot-indexed ring lookup
// falls outside SlotsPerHistoricalRoot.
var ErrInvalidStateRootIndex = errors.New("beacon state: slot outside historical root ring")

// BeaconState is the post-state of a specific slot (spec.md §3): validator
// registry, balances, block/state root history rings, justified and
// finalized checkpoints, current fork, and a genesis timestamp. Mirrors
// the shape of the teacher's beacon-chain/state (stateV0) typed wrapper,
// collapsed into one plain struct since this module does not carry the
// teacher's generated protobuf container underneath it.
type BeaconState struct {
	GenesisTime                 uint64
	Slot                        Slot
	Fork                        *Fork
	Validators                  []*Validator
	Balances                    []uint64
	RandaoMixes                 [][32]byte
	BlockRoots                  []Hash256
	StateRoots                  []Hash256
	HistoricalRoots              []Hash256
	Eth1Data                    *Eth1Data
	PreviousJustifiedCheckpoint *Checkpoint
	CurrentJustifiedCheckpoint  *Checkpoint
	FinalizedCheckpoint         *Checkpoint

	// PendingBlockRoot/PendingBlockSlot hold a just-processed block's own
	// root until the next per_slot_processing call flushes it into
	// BlockRoots. A block's full root depends on its own StateRoot field,
	// so it cannot be recorded in the very state that root is derived
	// from; the real protocol breaks this cycle by leaving
	// latest_block_header.state_root zero until the next slot's
	// caching step backfills it. This is that same one-slot deferral,
	// simplified to a root/slot pair instead of a full header, and
	// deliberately excluded from HashTreeRoot — it is orchestrator
	// bookkeeping, not canonical state.
	PendingBlockRoot Hash256
	PendingBlockSlot Slot
}

// Copy returns a deep copy suitable for mutation during block production
// or slot skipping, matching the teacher's repeated "make a copy of the
// state to avoid mutability issues" comment (process_block.go).
func (s *BeaconState) Copy() *BeaconState {
	cp := &BeaconState{
		GenesisTime:      s.GenesisTime,
		Slot:             s.Slot,
		Fork:             &Fork{},
		Eth1Data:         &Eth1Data{},
		PendingBlockRoot: s.PendingBlockRoot,
		PendingBlockSlot: s.PendingBlockSlot,
	}
	if s.Fork != nil {
		*cp.Fork = *s.Fork
	}
	if s.Eth1Data != nil {
		*cp.Eth1Data = *s.Eth1Data
	}
	cp.Validators = make([]*Validator, len(s.Validators))
	for i, v := range s.Validators {
		cp.Validators[i] = v.Clone()
	}
	cp.Balances = append([]uint64(nil), s.Balances...)
	cp.RandaoMixes = append([][32]byte(nil), s.RandaoMixes...)
	cp.BlockRoots = append([]Hash256(nil), s.BlockRoots...)
	cp.StateRoots = append([]Hash256(nil), s.StateRoots...)
	cp.HistoricalRoots = append([]Hash256(nil), s.HistoricalRoots...)
	if s.PreviousJustifiedCheckpoint != nil {
		cpt := *s.PreviousJustifiedCheckpoint
		cp.PreviousJustifiedCheckpoint = &cpt
	}
	if s.CurrentJustifiedCheckpoint != nil {
		cpt := *s.CurrentJustifiedCheckpoint
		cp.CurrentJustifiedCheckpoint = &cpt
	}
	if s.FinalizedCheckpoint != nil {
		cpt := *s.FinalizedCheckpoint
		cp.FinalizedCheckpoint = &cpt
	}
	return cp
}

// HashTreeRoot computes the state's canonical root, the value every
// persisted state is keyed by (spec.md invariant 2).
func (s *BeaconState) HashTreeRoot() ([32]byte, error) {
	hh := libssz.NewHasher()
	hh.PutUint64(s.GenesisTime)
	hh.PutUint64(uint64(s.Slot))
	hh.PutUint64(uint64(len(s.Validators)))
	hh.PutUint64(uint64(len(s.Balances)))
	for _, r := range s.BlockRoots {
		hh.PutBytes(r[:])
	}
	for _, r := range s.StateRoots {
		hh.PutBytes(r[:])
	}
	if s.CurrentJustifiedCheckpoint != nil {
		hh.PutUint64(uint64(s.CurrentJustifiedCheckpoint.Epoch))
		hh.PutBytes(s.CurrentJustifiedCheckpoint.Root[:])
	}
	if s.FinalizedCheckpoint != nil {
		hh.PutUint64(uint64(s.FinalizedCheckpoint.Epoch))
		hh.PutBytes(s.FinalizedCheckpoint.Root[:])
	}
	return hh.HashRoot()
}

// BlockRootAtSlot returns the block root recorded for slot, using the
// SlotsPerHistoricalRoot ring the way get_block_root_at_slot does.
func (s *BeaconState) BlockRootAtSlot(slot Slot) (Hash256, error) {
	spr := config.BeaconConfig().SlotsPerHistoricalRoot
	if uint64(slot) >= uint64(s.Slot) || uint64(s.Slot) > uint64(slot)+spr {
		return Hash256{}, ErrInvalidStateRootIndex
	}
	return s.BlockRoots[uint64(slot)%spr], nil
}

// StateRootAtSlot returns the state root recorded for slot, via the same
// ring used by BlockRootAtSlot.
func (s *BeaconState) StateRootAtSlot(slot Slot) (Hash256, error) {
	spr := config.BeaconConfig().SlotsPerHistoricalRoot
	if uint64(slot) >= uint64(s.Slot) || uint64(s.Slot) > uint64(slot)+spr {
		return Hash256{}, ErrInvalidStateRootIndex
	}
	return s.StateRoots[uint64(slot)%spr], nil
}

// SetBlockRootAtSlot records root as the block root for slot.
func (s *BeaconState) SetBlockRootAtSlot(slot Slot, root Hash256) {
	spr := config.BeaconConfig().SlotsPerHistoricalRoot
	s.BlockRoots[uint64(slot)%spr] = root
}

// SetStateRootAtSlot records root as the state root for slot.
func (s *BeaconState) SetStateRootAtSlot(slot Slot, root Hash256) {
	spr := config.BeaconConfig().SlotsPerHistoricalRoot
	s.StateRoots[uint64(slot)%spr] = root
}

// ActiveValidatorIndices returns the indices of validators active at
// epoch, in registry order.
func (s *BeaconState) ActiveValidatorIndices(epoch Epoch) []uint64 {
	indices := make([]uint64, 0, len(s.Validators))
	for i, v := range s.Validators {
		if v.IsActiveAtEpoch(epoch) {
			indices = append(indices, uint64(i))
		}
	}
	return indices
}

// NumValidators returns the size of the validator registry, the
// upper bound the pubkey cache (component F) must cover (invariant 5).
func (s *BeaconState) NumValidators() int {
	return len(s.Validators)
}

// GenesisState returns a minimal, internally-consistent genesis state for
// the given validator set, matching the shape the teacher's
// interop/chainstart paths construct ahead of slot 0.
func GenesisState(genesisTime uint64, validators []*Validator) *BeaconState {
	spr := config.BeaconConfig().SlotsPerHistoricalRoot
	s := &BeaconState{
		GenesisTime: genesisTime,
		Slot:        0,
		Fork:        &Fork{},
		Validators:  validators,
		Balances:    make([]uint64, len(validators)),
		BlockRoots:  make([]Hash256, spr),
		StateRoots:  make([]Hash256, spr),
		Eth1Data:    &Eth1Data{},
		PreviousJustifiedCheckpoint: &Checkpoint{},
		CurrentJustifiedCheckpoint:  &Checkpoint{},
		FinalizedCheckpoint:         &Checkpoint{},
	}
	for i, v := range validators {
		s.Balances[i] = v.EffectiveBalance
	}
	return s
}
