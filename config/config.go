// Package config defines the chain-wide parameters used across beaconcore,
// mirroring the teacher's shared/params.BeaconConfig() global accessor.
package config

import (
	"sync"
	"time"
)

// ChainConfig holds the chain parameters referenced throughout block and
// attestation processing. Values below match mainnet phase0 defaults.
type ChainConfig struct {
	SlotsPerEpoch          uint64
	SecondsPerSlot         uint64
	SlotsPerHistoricalRoot uint64
	TargetCommitteeSize    uint64
	MaxCommitteesPerSlot   uint64
	MaxSeedLookahead       uint64
	MinSeedLookahead       uint64
	MaxEffectiveBalance    uint64
	ShuffleRoundCount      uint64

	DomainBeaconAttester [4]byte
	DomainBeaconProposer [4]byte
	DomainRandao         [4]byte

	// MaximumBlockSlotNumber is an absolute slot limit: a block whose slot
	// is at or above it is rejected outright (spec.md §6).
	MaximumBlockSlotNumber uint64

	// MaximumGossipClockDisparity is how far ahead of wall-clock a slot's
	// start time may be before it is treated as a future slot.
	MaximumGossipClockDisparity time.Duration

	// Lock acquisition timeouts (spec.md §5/§6) — uniform across the head
	// snapshot, shuffling cache and pubkey cache.
	HeadLockTimeout              time.Duration
	AttestationCacheLockTimeout  time.Duration
	ValidatorPubkeyLockTimeout   time.Duration

	// ShufflingCacheSize bounds the LRU committee cache (component E).
	ShufflingCacheSize int

	ZeroHash [32]byte
}

func mainnetConfig() *ChainConfig {
	return &ChainConfig{
		SlotsPerEpoch:               32,
		SecondsPerSlot:              12,
		SlotsPerHistoricalRoot:      8192,
		TargetCommitteeSize:         128,
		MaxCommitteesPerSlot:        64,
		MaxSeedLookahead:            4,
		MinSeedLookahead:            1,
		MaxEffectiveBalance:         32_000_000_000,
		ShuffleRoundCount:           90,
		DomainBeaconAttester:        [4]byte{0x01, 0x00, 0x00, 0x00},
		DomainBeaconProposer:        [4]byte{0x00, 0x00, 0x00, 0x00},
		DomainRandao:                [4]byte{0x02, 0x00, 0x00, 0x00},
		MaximumBlockSlotNumber:      1 << 32,
		MaximumGossipClockDisparity: 500 * time.Millisecond,
		HeadLockTimeout:             time.Second,
		AttestationCacheLockTimeout: time.Second,
		ValidatorPubkeyLockTimeout:  time.Second,
		ShufflingCacheSize:          128,
	}
}

var (
	configLock sync.RWMutex
	beaconCfg  = mainnetConfig()
)

// BeaconConfig returns the globally active chain configuration.
func BeaconConfig() *ChainConfig {
	configLock.RLock()
	defer configLock.RUnlock()
	return beaconCfg
}

// OverrideBeaconConfig replaces the global configuration. Intended for
// tests that need a smaller SlotsPerEpoch or a shorter lock timeout.
func OverrideBeaconConfig(cfg *ChainConfig) {
	configLock.Lock()
	defer configLock.Unlock()
	beaconCfg = cfg
}
