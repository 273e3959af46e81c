package headtracker

import "testing"

func TestHeadTracker_RegisterBlockReplacesParent(t *testing.T) {
	h := New()
	genesis := [32]byte{0x01}
	h.Restore(map[[32]byte]uint64{genesis: 0})

	child := [32]byte{0x02}
	h.RegisterBlock(child, 1, genesis)

	heads := h.Heads()
	if len(heads) != 1 {
		t.Fatalf("Heads() len = %d, want 1", len(heads))
	}
	if heads[0].Root != child {
		t.Fatalf("surviving head = %x, want %x", heads[0].Root, child)
	}
}

func TestHeadTracker_SnapshotRestoreRoundTrips(t *testing.T) {
	h := New()
	a := [32]byte{0x01}
	b := [32]byte{0x02}
	h.RegisterBlock(a, 0, [32]byte{})
	h.RegisterBlock(b, 1, [32]byte{})

	snap := h.Snapshot()

	h2 := New()
	h2.Restore(snap)
	heads := h2.Heads()
	if len(heads) != 2 {
		t.Fatalf("restored Heads() len = %d, want 2", len(heads))
	}
}
