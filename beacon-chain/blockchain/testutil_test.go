package blockchain

import (
	"context"
	"sync"

	"github.com/prysmaticlabs/beaconcore/beacon-chain/eth1"
	"github.com/prysmaticlabs/beaconcore/beacon-chain/operations"
	"github.com/prysmaticlabs/beaconcore/store"
	"github.com/prysmaticlabs/beaconcore/types"
)

// fakeStore is a minimal in-memory store.Store, standing in for boltstore
// so these tests never touch disk.
type fakeStore struct {
	mu     sync.Mutex
	blobs  map[[32]byte][]byte
	blocks map[types.Hash256]*types.SignedBeaconBlock
	states map[types.Hash256]*types.BeaconState
	bySlot map[types.Slot]types.Hash256
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		blobs:  make(map[[32]byte][]byte),
		blocks: make(map[types.Hash256]*types.SignedBeaconBlock),
		states: make(map[types.Hash256]*types.BeaconState),
		bySlot: make(map[types.Slot]types.Hash256),
	}
}

func (f *fakeStore) Get(ctx context.Context, key [32]byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.blobs[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) Put(ctx context.Context, key [32]byte, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = value
	return nil
}

func (f *fakeStore) Exists(ctx context.Context, key [32]byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[key]
	return ok, nil
}

func (f *fakeStore) GetBlock(ctx context.Context, root types.Hash256) (*types.SignedBeaconBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blocks[root]
	if !ok {
		return nil, store.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) PutBlock(ctx context.Context, root types.Hash256, block *types.SignedBeaconBlock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks[root] = block
	f.bySlot[block.Block.Slot] = root
	return nil
}

func (f *fakeStore) GetState(ctx context.Context, root types.Hash256, slotHint types.Slot) (*types.BeaconState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.states[root]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) PutState(ctx context.Context, root types.Hash256, state *types.BeaconState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[root] = state
	return nil
}

func (f *fakeStore) BlockRootForSlot(ctx context.Context, slot types.Slot) (types.Hash256, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := slot; ; s-- {
		if r, ok := f.bySlot[s]; ok {
			return r, true, nil
		}
		if s == 0 {
			break
		}
	}
	return types.Hash256{}, false, nil
}

var _ store.Store = (*fakeStore)(nil)

// fakeClock is a SlotClock pinned to a fixed slot, so tests never race a
// real wall clock.
type fakeClock struct {
	slot types.Slot
}

func (f *fakeClock) CurrentSlot() (types.Slot, error) { return f.slot, nil }
func (f *fakeClock) IsCurrentSlotValid(slot types.Slot) bool {
	return slot <= f.slot
}
func (f *fakeClock) WaitForSlot(ctx context.Context, slot types.Slot) error { return nil }

// newTestService builds a Service anchored at an empty-validator genesis
// state, wired to a fakeStore, a fakeClock pinned at slot, and an
// in-memory operation pool.
func newTestService(genesisSlotClock types.Slot) (*Service, *fakeStore, error) {
	genesisState := types.GenesisState(0, nil)
	db := newFakeStore()
	cfg := &Config{
		Store:  db,
		Clock:  &fakeClock{slot: genesisSlotClock},
		Eth1:   eth1.NewCachedProvider(&types.Eth1Data{}),
		OpPool: operations.NewInMemoryPool(),
	}
	s, err := New(context.Background(), cfg, genesisState)
	return s, db, err
}
