// Package helpers contains the committee-shuffling helpers spec.md's
// invariant 6 and component E (shuffling cache) depend on. Grounded on
// beacon-chain/core/helpers/committee.go (read in full): function
// signatures and the "did this slot exceed committees_per_slot" bound
// checks are reproduced. These helpers always compute from the state;
// caching is left to the shuffling cache (component E).
// The pseudorandom permutation itself (compute_committee's shuffle) is the
// specified shuffling algorithm; out of scope per spec.md §1 and left as a
// documented, deterministic (so tests are stable) stand-in.
package helpers

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/config"
	"github.com/prysmaticlabs/beaconcore/types"
)

// CommitteeCache is the value the shuffling cache (component E) stores per
// (epoch, target_root): every slot's committee assignments for that epoch.
type CommitteeCache struct {
	Epoch      types.Epoch
	Committees map[types.Slot][][]uint64
}

// Seed derives the per-epoch randomness seed used to key shuffling. The
// real derivation folds in RANDAO mixes several epochs back; out of scope
// here, reproduced structurally so the seed is stable for a given
// (state, epoch, domain) triple.
func Seed(state *types.BeaconState, epoch types.Epoch, domain [4]byte) ([32]byte, error) {
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[0:8], uint64(epoch))
	copy(seed[8:12], domain[:])
	if len(state.RandaoMixes) > 0 {
		mixIdx := uint64(epoch) % uint64(len(state.RandaoMixes))
		mix := state.RandaoMixes[mixIdx]
		for i := range seed {
			seed[i] ^= mix[i%len(mix)]
		}
	}
	return seed, nil
}

// CommitteeCountAtSlot returns the number of committees at slot, bounded
// by MaxCommitteesPerSlot and floored at 1 per
// get_committee_count_at_slot.
func CommitteeCountAtSlot(state *types.BeaconState, slot types.Slot) (uint64, error) {
	epoch := slot.ToEpoch()
	count := uint64(len(state.ActiveValidatorIndices(epoch)))
	cfg := config.BeaconConfig()
	perSlot := count / cfg.SlotsPerEpoch / cfg.TargetCommitteeSize
	if perSlot > cfg.MaxCommitteesPerSlot {
		return cfg.MaxCommitteesPerSlot, nil
	}
	if perSlot == 0 {
		return 1, nil
	}
	return perSlot, nil
}

// ComputeCommittee returns committee number index out of count committees
// over indices, standing in for the specified compute_committee function.
// This deterministic stand-in splits the (already epoch-filtered) active
// indices into count contiguous slices and returns slice index; it does
// not apply the swap-or-not shuffle and does not use seed; it satisfies invariant 6
// (cache-miss and cache-hit paths agree) because both paths call this
// same function.
func ComputeCommittee(indices []uint64, seed [32]byte, index, count uint64) ([]uint64, error) {
	if count == 0 {
		return nil, errors.New("compute committee: zero count")
	}
	n := uint64(len(indices))
	if n == 0 {
		return []uint64{}, nil
	}
	start := (n * index) / count
	end := (n * (index + 1)) / count
	return append([]uint64(nil), indices[start:end]...), nil
}

// BeaconCommittee returns the committee assigned to (slot, committeeIndex),
// computed from scratch from state on every call; it does not consult any
// committee cache.
func BeaconCommittee(state *types.BeaconState, slot types.Slot, committeeIndex uint64) ([]uint64, error) {
	epoch := slot.ToEpoch()
	committeesPerSlot, err := CommitteeCountAtSlot(state, slot)
	if err != nil {
		return nil, errors.Wrap(err, "could not get committee count at slot")
	}
	cfg := config.BeaconConfig()
	epochOffset := committeeIndex + (uint64(slot)%cfg.SlotsPerEpoch)*committeesPerSlot
	count := committeesPerSlot * cfg.SlotsPerEpoch

	seed, err := Seed(state, epoch, cfg.DomainBeaconAttester)
	if err != nil {
		return nil, errors.Wrap(err, "could not get seed")
	}
	indices := state.ActiveValidatorIndices(epoch)
	return ComputeCommittee(indices, seed, epochOffset, count)
}

// BuildCommitteeCache builds the full per-slot committee assignment table
// for epoch, the value a shuffling-cache miss computes and inserts
// (spec.md §4.A.4), and that blockchain's maybeCacheEpochCommittee also
// builds at the first block of a new epoch (spec.md §4.A.5 step 2).
func BuildCommitteeCache(state *types.BeaconState, epoch types.Epoch) (*CommitteeCache, error) {
	cfg := config.BeaconConfig()
	startSlot := epoch.StartSlot()
	committees := make(map[types.Slot][][]uint64, cfg.SlotsPerEpoch)
	for i := uint64(0); i < cfg.SlotsPerEpoch; i++ {
		slot := startSlot + types.Slot(i)
		countAtSlot, err := CommitteeCountAtSlot(state, slot)
		if err != nil {
			return nil, err
		}
		perSlot := make([][]uint64, countAtSlot)
		for ci := uint64(0); ci < countAtSlot; ci++ {
			committee, err := BeaconCommittee(state, slot, ci)
			if err != nil {
				return nil, err
			}
			perSlot[ci] = committee
		}
		committees[slot] = perSlot
	}
	return &CommitteeCache{Epoch: epoch, Committees: committees}, nil
}

// CommitteeAtSlot looks up the committee for (slot, committeeIndex) inside
// a previously built CommitteeCache, the cache-hit path invariant 6
// requires to equal a from-scratch build.
func (c *CommitteeCache) CommitteeAtSlot(slot types.Slot, committeeIndex uint64) ([]uint64, error) {
	perSlot, ok := c.Committees[slot]
	if !ok {
		return nil, errors.Errorf("committee cache: no entry for slot %d", slot)
	}
	if committeeIndex >= uint64(len(perSlot)) {
		return nil, errors.Errorf("committee cache: index %d out of range", committeeIndex)
	}
	return perSlot[committeeIndex], nil
}
