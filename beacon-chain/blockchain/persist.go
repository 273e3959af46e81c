// Persistence glue: writes the A (beacon chain)/B (fork choice)/D (head
// tracker) snapshots to the external store under the four distinct keys
// resolved in DESIGN.md's Open Questions section, and the op pool and
// eth1 cache snapshots on shutdown. Ordering follows spec.md §5's
// "fork choice -> head snapshot -> op pool -> eth1 cache" guarantee, so a
// crash never leaves the head snapshot referring to blocks fork choice
// does not know about.
package blockchain

import (
	"context"
	"encoding/gob"

	"bytes"

	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/store"
)

// persistHeadAndForkChoice writes fork choice then the head-and-head-
// tracker snapshot, logging but not propagating failures: persistence
// running off the head-election path must never abort a successful head
// swap that has already happened in memory.
func (s *Service) persistHeadAndForkChoice(ctx context.Context) {
	if err := s.persistForkChoice(ctx); err != nil {
		log.WithError(err).Error("Could not persist fork choice")
	}
	if err := s.persistHead(ctx); err != nil {
		log.WithError(err).Error("Could not persist head snapshot")
	}
}

func (s *Service) persistForkChoice(ctx context.Context) error {
	b, err := s.forkChoice.AsSSZContainer()
	if err != nil {
		return errors.Wrap(err, "could not serialize fork choice")
	}
	return s.db.Put(ctx, store.KeyForkChoice, b)
}

// beaconChainSnapshot is the {canonical_head_block_root, genesis_block_root,
// head_tracker} tuple spec.md §8 invariant 4 names for the round-trip
// property; gob-encoded for the same reason boltstore's block/state
// values are (see store/boltstore's doc comment: no SSZ marshal codegen
// for hand-written structs).
type beaconChainSnapshot struct {
	CanonicalHeadBlockRoot [32]byte
	GenesisBlockRoot       [32]byte
	HeadTracker            map[[32]byte]uint64
}

func (s *Service) persistHead(ctx context.Context) error {
	head, err := s.Head()
	if err != nil {
		return err
	}
	snap := beaconChainSnapshot{
		CanonicalHeadBlockRoot: head.BlockRoot,
		GenesisBlockRoot:       s.genesisBlockRoot,
		HeadTracker:            s.heads.Snapshot(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return errors.Wrap(err, "could not encode beacon chain snapshot")
	}
	return s.db.Put(ctx, store.KeyBeaconChain, buf.Bytes())
}

// restoreBeaconChainSnapshot reloads the {head, genesis, head_tracker}
// tuple persisted by persistHead, used when reloading after restart.
func (s *Service) restoreBeaconChainSnapshot(ctx context.Context) (*beaconChainSnapshot, error) {
	return loadBeaconChainSnapshot(ctx, s.db)
}

// loadBeaconChainSnapshot is the free-function form restoreBeaconChainSnapshot
// delegates to, usable by NewFromSnapshot before a Service exists.
func loadBeaconChainSnapshot(ctx context.Context, db store.Store) (*beaconChainSnapshot, error) {
	raw, err := db.Get(ctx, store.KeyBeaconChain)
	if err != nil {
		return nil, err
	}
	var snap beaconChainSnapshot
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&snap); err != nil {
		return nil, errors.Wrap(err, "could not decode beacon chain snapshot")
	}
	return &snap, nil
}

// Shutdown persists A+B+D, then the operation pool, then the eth1 cache,
// matching spec.md §4.A's "on drop/shutdown" ordering.
func (s *Service) Shutdown(ctx context.Context) error {
	if err := s.persistForkChoice(ctx); err != nil {
		return errors.Wrap(err, "could not persist fork choice on shutdown")
	}
	if err := s.persistHead(ctx); err != nil {
		return errors.Wrap(err, "could not persist head snapshot on shutdown")
	}
	if err := s.persistOpPool(ctx); err != nil {
		return errors.Wrap(err, "could not persist op pool on shutdown")
	}
	if err := s.persistEth1Cache(ctx); err != nil {
		return errors.Wrap(err, "could not persist eth1 cache on shutdown")
	}
	return nil
}

func (s *Service) persistOpPool(ctx context.Context) error {
	if s.opPool == nil {
		return nil
	}
	var buf bytes.Buffer
	atts := s.opPool.Attestations()
	if err := gob.NewEncoder(&buf).Encode(atts); err != nil {
		return errors.Wrap(err, "could not encode op pool snapshot")
	}
	return s.db.Put(ctx, store.KeyOpPool, buf.Bytes())
}

func (s *Service) persistEth1Cache(ctx context.Context) error {
	if s.eth1 == nil {
		return nil
	}
	data, err := s.eth1.Eth1Data(ctx)
	if err != nil {
		return errors.Wrap(err, "could not read eth1 data for persistence")
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return errors.Wrap(err, "could not encode eth1 cache snapshot")
	}
	return s.db.Put(ctx, store.KeyEth1Cache, buf.Bytes())
}
