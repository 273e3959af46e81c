// Package blockchain implements the BeaconChain orchestrator (component A),
// the canonical head snapshot (component C), and the persistence glue
// spec.md §2 describes as the ~40%+5%+15% bulk of the core. Grounded on
// beacon-chain/blockchain/service.go, process_block.go, receive_block.go,
// chain_info.go and fork_choice.go (all read in full): the Service struct
// holding references to every other component, the trace.StartSpan +
// logrus.WithFields + errors.Wrap idiom, and the onBlock control flow are
// reproduced and generalized to spec.md's classified-outcome contract.
package blockchain

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/prysmaticlabs/beaconcore/beacon-chain/cache"
	"github.com/prysmaticlabs/beaconcore/beacon-chain/eth1"
	"github.com/prysmaticlabs/beaconcore/beacon-chain/forkchoice"
	"github.com/prysmaticlabs/beaconcore/beacon-chain/headtracker"
	"github.com/prysmaticlabs/beaconcore/beacon-chain/operations"
	"github.com/prysmaticlabs/beaconcore/beacon-chain/slotclock"
	"github.com/prysmaticlabs/beaconcore/config"
	"github.com/prysmaticlabs/beaconcore/eventfeed"
	"github.com/prysmaticlabs/beaconcore/shared/lock"
	"github.com/prysmaticlabs/beaconcore/store"
	"github.com/prysmaticlabs/beaconcore/types"
)

// Service is the top-level BeaconChain orchestrator: it holds references
// to every other component and exposes block/attestation/slashing/exit
// ingress, block/attestation production, and head election, matching
// spec.md §4.A's operation list.
type Service struct {
	db         store.Store
	forkChoice forkchoice.ForkChoice
	heads      *headtracker.HeadTracker
	shuffling  *cache.ShufflingCache
	pubkeys    *cache.PubkeyCache
	opPool     operations.Pool
	eth1       eth1.DataProvider
	clock      slotclock.SlotClock

	Events *eventfeed.Feed

	headLock         lock.TimedRWMutex
	head             *types.CheckPoint
	genesisBlockRoot types.Hash256
}

// Config bundles Service's external collaborators, every one of them a
// named external collaborator per spec.md §1: the persistent store, the
// slot clock, and the eth1 data provider.
type Config struct {
	Store    store.Store
	Clock    slotclock.SlotClock
	Eth1     eth1.DataProvider
	OpPool   operations.Pool
}

// New constructs a Service anchored at genesis, seeding fork choice, the
// head snapshot and the pubkey cache from the genesis state, matching the
// teacher's NewService(ctx, cfg) + s.initializeChainInfo() startup path.
func New(ctx context.Context, cfg *Config, genesisState *types.BeaconState) (*Service, error) {
	if genesisState == nil {
		return nil, errors.New("nil genesis state")
	}
	genesisRoot, err := genesisState.HashTreeRoot()
	if err != nil {
		return nil, errors.Wrap(err, "could not compute genesis state root")
	}
	genesisBlock := types.NewGenesisBlock(genesisRoot)
	genesisBlockRoot, err := genesisBlock.Block.HashTreeRoot()
	if err != nil {
		return nil, errors.Wrap(err, "could not compute genesis block root")
	}

	fc := forkchoice.NewStore()
	fc.GenesisStore(genesisBlockRoot, genesisRoot, genesisState.CurrentJustifiedCheckpoint, genesisState.FinalizedCheckpoint)

	pubkeys := cache.NewPubkeyCache()
	if err := pubkeys.ImportNewPubkeys(genesisState); err != nil {
		return nil, errors.Wrap(err, "could not seed pubkey cache from genesis state")
	}

	heads := headtracker.New()
	heads.RegisterBlock(genesisBlockRoot, 0, types.ZeroHash)

	s := &Service{
		db:                    cfg.Store,
		forkChoice:            fc,
		heads:                 heads,
		shuffling:             cache.NewShufflingCache(),
		pubkeys:               pubkeys,
		opPool:                cfg.OpPool,
		eth1:                  cfg.Eth1,
		clock:                 cfg.Clock,
		Events:           &eventfeed.Feed{},
		genesisBlockRoot: genesisBlockRoot,
		head: &types.CheckPoint{
			Block:     genesisBlock,
			BlockRoot: genesisBlockRoot,
			State:     genesisState,
			StateRoot: genesisRoot,
		},
	}

	if err := cfg.Store.PutBlock(ctx, genesisBlockRoot, genesisBlock); err != nil {
		return nil, errors.Wrap(err, "could not save genesis block")
	}
	if err := cfg.Store.PutState(ctx, genesisRoot, genesisState); err != nil {
		return nil, errors.Wrap(err, "could not save genesis state")
	}

	return s, nil
}

// NewFromSnapshot resumes a Service from a previously persisted
// beacon-chain snapshot instead of an explicit genesis state, matching
// the teacher's ChainService.Start fallback-to-genesis startup path. It
// runs a weak-subjectivity style sanity check before trusting the
// persisted head: the canonical head block root the beacon-chain
// snapshot names must still be the head root the persisted fork-choice
// snapshot itself recorded. If either snapshot cannot be loaded it logs a
// warning and falls back to genesis via New, the same way the teacher
// falls back to a fresh ChainStart when no resumable state is found; if
// the two head roots differ it logs at Error and falls back the same way.
// A malformed fork-choice snapshot, or a persisted head block or state
// missing from the store, is returned as an error instead.
func NewFromSnapshot(ctx context.Context, cfg *Config, genesisState *types.BeaconState) (*Service, error) {
	snap, err := loadBeaconChainSnapshot(ctx, cfg.Store)
	if err != nil {
		log.WithError(err).Warn("No persisted beacon chain snapshot found, bootstrapping from genesis")
		return New(ctx, cfg, genesisState)
	}

	fcBytes, err := cfg.Store.Get(ctx, store.KeyForkChoice)
	if err != nil {
		log.WithError(err).Warn("No persisted fork choice snapshot found, bootstrapping from genesis")
		return New(ctx, cfg, genesisState)
	}
	persistedHead, err := forkchoice.HeadRootFromSSZContainer(fcBytes)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode persisted fork choice snapshot")
	}
	if persistedHead != types.Hash256(snap.CanonicalHeadBlockRoot) {
		log.WithField("snapshotHead", types.Hash256(snap.CanonicalHeadBlockRoot)).
			WithField("forkChoiceHead", persistedHead).
			Error("Weak-subjectivity check failed: persisted head block root missing from persisted fork choice snapshot, falling back to genesis")
		return New(ctx, cfg, genesisState)
	}

	headBlock, err := cfg.Store.GetBlock(ctx, types.Hash256(snap.CanonicalHeadBlockRoot))
	if err != nil {
		return nil, errors.Wrap(err, "could not load persisted head block")
	}
	headState, err := cfg.Store.GetState(ctx, headBlock.Block.StateRoot, headBlock.Block.Slot)
	if err != nil {
		return nil, errors.Wrap(err, "could not load persisted head state")
	}

	fc := forkchoice.NewStore()
	fc.GenesisStore(types.Hash256(snap.CanonicalHeadBlockRoot), headBlock.Block.StateRoot, headState.CurrentJustifiedCheckpoint, headState.FinalizedCheckpoint)

	pubkeys := cache.NewPubkeyCache()
	if err := pubkeys.ImportNewPubkeys(headState); err != nil {
		return nil, errors.Wrap(err, "could not seed pubkey cache from persisted head state")
	}

	heads := headtracker.New()
	heads.Restore(snap.HeadTracker)

	s := &Service{
		db:               cfg.Store,
		forkChoice:       fc,
		heads:            heads,
		shuffling:        cache.NewShufflingCache(),
		pubkeys:          pubkeys,
		opPool:           cfg.OpPool,
		eth1:             cfg.Eth1,
		clock:            cfg.Clock,
		Events:           &eventfeed.Feed{},
		genesisBlockRoot: types.Hash256(snap.GenesisBlockRoot),
		head: &types.CheckPoint{
			Block:     headBlock,
			BlockRoot: types.Hash256(snap.CanonicalHeadBlockRoot),
			State:     headState,
			StateRoot: headBlock.Block.StateRoot,
		},
	}
	log.WithField("head_root", types.Hash256(snap.CanonicalHeadBlockRoot)).Info("Resumed beacon chain from persisted snapshot")
	return s, nil
}

// withSpan is a small helper wrapping the teacher's pervasive
// ctx, span := trace.StartSpan(ctx, "blockchain.X"); defer span.End()
// pattern, reproduced once here since every orchestrator method opens a
// span under the same "blockchain." prefix.
func withSpan(ctx context.Context, name string) (context.Context, *trace.Span) {
	return trace.StartSpan(ctx, "blockchain."+name)
}
