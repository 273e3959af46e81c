package forkchoice

import (
	"context"
	"testing"

	"github.com/prysmaticlabs/beaconcore/types"
)

func TestStore_GenesisStoreFindHead(t *testing.T) {
	s := NewStore()
	genesisRoot := types.Hash256{0x01}
	s.GenesisStore(genesisRoot, types.Hash256{0x02}, &types.Checkpoint{}, &types.Checkpoint{})

	head, err := s.FindHead(context.Background())
	if err != nil {
		t.Fatalf("FindHead: %v", err)
	}
	if head != genesisRoot {
		t.Fatalf("head = %x, want genesis root %x", head, genesisRoot)
	}
}

func TestStore_ProcessBlockRejectsOrphan(t *testing.T) {
	s := NewStore()
	genesisRoot := types.Hash256{0x01}
	s.GenesisStore(genesisRoot, types.Hash256{0x02}, &types.Checkpoint{}, &types.Checkpoint{})

	orphan := &types.BeaconBlock{Slot: 1, ParentRoot: types.Hash256{0xff}}
	state := &types.BeaconState{}
	if err := s.ProcessBlock(context.Background(), state, orphan, types.Hash256{0x03}); err == nil {
		t.Fatal("expected error inserting block with unknown parent, got nil")
	}
}

func TestStore_FindHeadDescendsToChild(t *testing.T) {
	s := NewStore()
	genesisRoot := types.Hash256{0x01}
	s.GenesisStore(genesisRoot, types.Hash256{0x02}, &types.Checkpoint{}, &types.Checkpoint{})

	child := &types.BeaconBlock{Slot: 1, ParentRoot: genesisRoot, StateRoot: types.Hash256{0x04}}
	childRoot := types.Hash256{0x05}
	if err := s.ProcessBlock(context.Background(), &types.BeaconState{}, child, childRoot); err != nil {
		t.Fatalf("ProcessBlock: %v", err)
	}

	head, err := s.FindHead(context.Background())
	if err != nil {
		t.Fatalf("FindHead: %v", err)
	}
	if head != childRoot {
		t.Fatalf("head = %x, want child root %x", head, childRoot)
	}
}

func TestStore_PruneRemovesNonDescendants(t *testing.T) {
	s := NewStore()
	genesisRoot := types.Hash256{0x01}
	s.GenesisStore(genesisRoot, types.Hash256{0x02}, &types.Checkpoint{}, &types.Checkpoint{})

	keep := types.Hash256{0x05}
	if err := s.ProcessBlock(context.Background(), &types.BeaconState{}, &types.BeaconBlock{Slot: 1, ParentRoot: genesisRoot}, keep); err != nil {
		t.Fatalf("ProcessBlock(keep): %v", err)
	}

	if err := s.Prune(context.Background(), keep); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if s.ContainsBlock(genesisRoot) {
		t.Fatal("expected genesis root to be pruned since it is not a descendant of the finalized root")
	}
	if !s.ContainsBlock(keep) {
		t.Fatal("expected finalized root itself to survive Prune")
	}
}
