// Package cache implements the shuffling cache (component E) and the
// validator pubkey cache (component F) from spec.md §4.E/§4.F. Locking
// idiom grounded on beacon-chain/cache/sync_committee.go and
// beacon-chain/cache/attestation_data.go (both read in full): a
// sync.RWMutex guarding a map, plus promauto hit/miss counters. LRU
// eviction uses hashicorp/golang-lru rather than the teacher's retrieved
// k8s.io/client-go/tools/cache.FIFO, because spec.md explicitly names
// "least-recently-used replacement" as the eviction policy (FIFO does not
// implement LRU semantics) — see DESIGN.md.
package cache

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/prysmaticlabs/beaconcore/beacon-chain/core/helpers"
	"github.com/prysmaticlabs/beaconcore/config"
	"github.com/prysmaticlabs/beaconcore/shared/lock"
	"github.com/prysmaticlabs/beaconcore/types"
)

// ErrShufflingCacheLockTimeout is returned when a shuffling-cache access
// could not acquire its lock within the configured timeout (spec.md §4.E).
var ErrShufflingCacheLockTimeout = errors.New("AttestationCacheLockTimeout")

var (
	shufflingCacheHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shuffling_cache_hit",
		Help: "The number of (epoch, target_root) committee cache lookups that hit.",
	})
	shufflingCacheMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shuffling_cache_miss",
		Help: "The number of (epoch, target_root) committee cache lookups that missed.",
	})
)

// shufflingKey is the (epoch, target_root) pair the cache is keyed on.
type shufflingKey struct {
	epoch      types.Epoch
	targetRoot types.Hash256
}

// ShufflingCache is the bounded (epoch, target_root) -> CommitteeCache
// mapping spec.md §4.E describes: a lock.TimedRWMutex with a 1s
// acquisition timeout (not reader-preferring; see package lock), LRU
// eviction, and the invariant that every successful
// attestation-path insertion updates the LRU order (invariant 6 depends
// on insert-then-lookup agreement, which the LRU container guarantees by
// construction).
type ShufflingCache struct {
	lockTimed lock.TimedRWMutex
	cache     *lru.Cache
}

// NewShufflingCache constructs a ShufflingCache bounded at
// config.BeaconConfig().ShufflingCacheSize entries.
func NewShufflingCache() *ShufflingCache {
	c, err := lru.New(config.BeaconConfig().ShufflingCacheSize)
	if err != nil {
		// lru.New only errors on a non-positive size; ShufflingCacheSize
		// is a fixed, positive configuration constant.
		panic(err)
	}
	return &ShufflingCache{cache: c}
}

// Get returns the committee cache for (epoch, targetRoot) if present.
func (c *ShufflingCache) Get(epoch types.Epoch, targetRoot types.Hash256) (*helpers.CommitteeCache, bool, error) {
	if !c.lockTimed.RTryLock(config.BeaconConfig().AttestationCacheLockTimeout) {
		return nil, false, ErrShufflingCacheLockTimeout
	}
	defer c.lockTimed.RUnlock()

	v, ok := c.cache.Get(shufflingKey{epoch: epoch, targetRoot: targetRoot})
	if !ok {
		shufflingCacheMiss.Inc()
		return nil, false, nil
	}
	shufflingCacheHit.Inc()
	return v.(*helpers.CommitteeCache), true, nil
}

// Put inserts cc for (epoch, targetRoot), evicting the least-recently-used
// entry if the cache is at capacity.
func (c *ShufflingCache) Put(epoch types.Epoch, targetRoot types.Hash256, cc *helpers.CommitteeCache) error {
	if !c.lockTimed.WTryLock(config.BeaconConfig().AttestationCacheLockTimeout) {
		return ErrShufflingCacheLockTimeout
	}
	defer c.lockTimed.Unlock()

	c.cache.Add(shufflingKey{epoch: epoch, targetRoot: targetRoot}, cc)
	return nil
}
