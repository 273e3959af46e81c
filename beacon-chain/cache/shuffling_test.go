package cache

import (
	"testing"

	"github.com/prysmaticlabs/beaconcore/beacon-chain/core/helpers"
	"github.com/prysmaticlabs/beaconcore/types"
)

func TestShufflingCache_PutGet(t *testing.T) {
	c := NewShufflingCache()
	epoch := types.Epoch(3)
	root := types.Hash256{0x01}
	cc := &helpers.CommitteeCache{Epoch: epoch}

	if _, ok, err := c.Get(epoch, root); err != nil || ok {
		t.Fatalf("expected miss before Put, got ok=%v err=%v", ok, err)
	}

	if err := c.Put(epoch, root, cc); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(epoch, root)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if got.Epoch != epoch {
		t.Fatalf("got epoch %d, want %d", got.Epoch, epoch)
	}
}

func TestShufflingCache_DistinctTargetRootsDoNotCollide(t *testing.T) {
	c := NewShufflingCache()
	epoch := types.Epoch(1)
	ccA := &helpers.CommitteeCache{Epoch: epoch}
	ccB := &helpers.CommitteeCache{Epoch: epoch}

	if err := c.Put(epoch, types.Hash256{0x01}, ccA); err != nil {
		t.Fatalf("Put A: %v", err)
	}
	if err := c.Put(epoch, types.Hash256{0x02}, ccB); err != nil {
		t.Fatalf("Put B: %v", err)
	}

	gotA, ok, err := c.Get(epoch, types.Hash256{0x01})
	if err != nil || !ok || gotA != ccA {
		t.Fatalf("Get A: ok=%v err=%v got=%v want=%v", ok, err, gotA, ccA)
	}
	gotB, ok, err := c.Get(epoch, types.Hash256{0x02})
	if err != nil || !ok || gotB != ccB {
		t.Fatalf("Get B: ok=%v err=%v got=%v want=%v", ok, err, gotB, ccB)
	}
}
