package blockchain

import (
	"context"
	"testing"

	"github.com/prysmaticlabs/beaconcore/types"
)

func TestHead_ReturnsGenesisBeforeAnyBlock(t *testing.T) {
	s, _, err := newTestService(5)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	head, err := s.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head.BlockRoot != s.genesisBlockRoot {
		t.Fatalf("head root = %x, want genesis root %x", head.BlockRoot, s.genesisBlockRoot)
	}
}

func TestFindHead_NoOpWhenForkChoiceHeadUnchanged(t *testing.T) {
	s, _, err := newTestService(5)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	before, err := s.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if err := s.FindHead(context.Background()); err != nil {
		t.Fatalf("FindHead: %v", err)
	}
	after, err := s.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if before.BlockRoot != after.BlockRoot {
		t.Fatalf("head changed with no new blocks: before %x after %x", before.BlockRoot, after.BlockRoot)
	}
}

func TestPersistHead_RoundTrips(t *testing.T) {
	s, db, err := newTestService(5)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	if err := s.persistHead(context.Background()); err != nil {
		t.Fatalf("persistHead: %v", err)
	}
	snap, err := s.restoreBeaconChainSnapshot(context.Background())
	if err != nil {
		t.Fatalf("restoreBeaconChainSnapshot: %v", err)
	}
	if types.Hash256(snap.CanonicalHeadBlockRoot) != s.genesisBlockRoot {
		t.Fatalf("restored head root = %x, want %x", snap.CanonicalHeadBlockRoot, s.genesisBlockRoot)
	}
	if types.Hash256(snap.GenesisBlockRoot) != s.genesisBlockRoot {
		t.Fatalf("restored genesis root = %x, want %x", snap.GenesisBlockRoot, s.genesisBlockRoot)
	}
	_ = db
}
