package cache

import "testing"

func TestPubkeyCache_EmptyCacheIsIncomplete(t *testing.T) {
	c := NewPubkeyCache()
	if got := c.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}
	if _, err := c.PublicKey(0); err != ErrPubkeyCacheIncomplete {
		t.Fatalf("PublicKey(0) error = %v, want ErrPubkeyCacheIncomplete", err)
	}
	if _, err := c.PublicKeys([]uint64{0}); err != ErrPubkeyCacheIncomplete {
		t.Fatalf("PublicKeys([0]) error = %v, want ErrPubkeyCacheIncomplete", err)
	}
}
