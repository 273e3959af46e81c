package types

// CheckPoint is the snapshot entity spec.md §3 names distinctly from the
// FFG Checkpoint: {block, block_root, state, state_root}, the unit stored
// by the canonical head cell (component C).
type CheckPoint struct {
	Block     *SignedBeaconBlock
	BlockRoot Hash256
	State     *BeaconState
	StateRoot Hash256
}

// Clone returns a cheap clone for spec.md §4.A's head() operation: the
// block and state pointers are shared (both are treated as immutable once
// published), avoiding a deep state copy on every read. BeaconState here
// holds no derived caches, so there are none to keep or drop.
func (c *CheckPoint) Clone() *CheckPoint {
	if c == nil {
		return nil
	}
	return &CheckPoint{
		Block:     c.Block,
		BlockRoot: c.BlockRoot,
		State:     c.State,
		StateRoot: c.StateRoot,
	}
}
