package cache

import (
	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/bls"
	"github.com/prysmaticlabs/beaconcore/config"
	"github.com/prysmaticlabs/beaconcore/shared/lock"
	"github.com/prysmaticlabs/beaconcore/types"
)

// ErrPubkeyCacheLockTimeout is returned when a pubkey-cache access could
// not acquire its lock within the configured timeout (spec.md §4.F).
var ErrPubkeyCacheLockTimeout = errors.New("ValidatorPubkeyCacheLockTimeout")

// ErrPubkeyCacheIncomplete is returned when a requested validator index
// has not yet been imported, matching spec.md's
// ValidatorPubkeyCacheIncomplete.
var ErrPubkeyCacheIncomplete = errors.New("ValidatorPubkeyCacheIncomplete")

// PubkeyCache is the dense validator_index -> public_key vector spec.md
// §4.F describes. Entries only ever extend (import_new_pubkeys); shrinking
// is not permitted because reorgs do not remove validators from the
// registry.
type PubkeyCache struct {
	lockTimed lock.TimedRWMutex
	pubkeys   []*bls.PublicKey
}

// NewPubkeyCache returns an empty PubkeyCache.
func NewPubkeyCache() *PubkeyCache {
	return &PubkeyCache{}
}

// ImportNewPubkeys extends the cache to cover every validator in state,
// decompressing and appending any public key beyond the current length.
// Matches the teacher's import_new_pubkeys(state) contract: monotonic,
// idempotent for indices already present.
func (c *PubkeyCache) ImportNewPubkeys(state *types.BeaconState) error {
	if !c.lockTimed.WTryLock(config.BeaconConfig().ValidatorPubkeyLockTimeout) {
		return ErrPubkeyCacheLockTimeout
	}
	defer c.lockTimed.Unlock()

	for i := len(c.pubkeys); i < state.NumValidators(); i++ {
		pk, err := bls.PublicKeyFromBytes(state.Validators[i].PublicKey[:])
		if err != nil {
			return errors.Wrapf(err, "could not decompress public key for validator %d", i)
		}
		c.pubkeys = append(c.pubkeys, pk)
	}
	return nil
}

// PublicKey returns the cached public key for validatorIndex.
func (c *PubkeyCache) PublicKey(validatorIndex uint64) (*bls.PublicKey, error) {
	if !c.lockTimed.RTryLock(config.BeaconConfig().ValidatorPubkeyLockTimeout) {
		return nil, ErrPubkeyCacheLockTimeout
	}
	defer c.lockTimed.RUnlock()

	if validatorIndex >= uint64(len(c.pubkeys)) {
		return nil, ErrPubkeyCacheIncomplete
	}
	return c.pubkeys[validatorIndex], nil
}

// PublicKeys returns the cached public keys for a set of validator
// indices, the batch form attestation-signature verification needs
// (spec.md §4.A.4: "Verify the aggregate BLS signature against the
// pubkeys fetched from the pubkey cache").
func (c *PubkeyCache) PublicKeys(indices []uint64) ([]*bls.PublicKey, error) {
	if !c.lockTimed.RTryLock(config.BeaconConfig().ValidatorPubkeyLockTimeout) {
		return nil, ErrPubkeyCacheLockTimeout
	}
	defer c.lockTimed.RUnlock()

	out := make([]*bls.PublicKey, len(indices))
	for i, idx := range indices {
		if idx >= uint64(len(c.pubkeys)) {
			return nil, ErrPubkeyCacheIncomplete
		}
		out[i] = c.pubkeys[idx]
	}
	return out, nil
}

// Len reports how many validator indices are currently covered.
func (c *PubkeyCache) Len() int {
	if !c.lockTimed.RTryLock(config.BeaconConfig().ValidatorPubkeyLockTimeout) {
		return 0
	}
	defer c.lockTimed.RUnlock()
	return len(c.pubkeys)
}
