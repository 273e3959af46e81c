package types

import (
	"github.com/prysmaticlabs/go-bitfield"

	libssz "github.com/prysmaticlabs/beaconcore/ssz"
)

// Checkpoint is the FFG {epoch, root} pair (spec.md §3).
type Checkpoint struct {
	Epoch Epoch
	Root  Hash256
}

// AttestationData is the {slot, index, beacon_block_root, source, target}
// payload a validator signs.
type AttestationData struct {
	Slot            Slot
	CommitteeIndex  uint64
	BeaconBlockRoot Hash256
	Source          *Checkpoint
	Target          *Checkpoint
}

// Attestation is {aggregation_bits, data, signature} (spec.md §3).
type Attestation struct {
	AggregationBits bitfield.Bitlist
	Data            *AttestationData
	Signature       [96]byte
}

// IndexedAttestation is an Attestation expanded to the concrete ordered
// list of attesting validator indices (spec.md §3).
type IndexedAttestation struct {
	AttestingIndices []uint64
	Data             *AttestationData
	Signature        [96]byte
}

// NewEmptyAggregationBits returns a zero-valued bitlist sized for a
// committee of count members, used when producing an unsigned
// attestation (spec.md §4.A.2).
func NewEmptyAggregationBits(count uint64) bitfield.Bitlist {
	return bitfield.NewBitlist(count)
}

// HashTreeRoot computes the AttestationData's canonical root, used both
// as the IndexedAttestation signing root and by the operation pool to
// match included attestations for deletion.
func (d *AttestationData) HashTreeRoot() ([32]byte, error) {
	hh := libssz.NewHasher()
	hh.PutUint64(uint64(d.Slot))
	hh.PutUint64(d.CommitteeIndex)
	hh.PutBytes(d.BeaconBlockRoot[:])
	if d.Source != nil {
		hh.PutUint64(uint64(d.Source.Epoch))
		hh.PutBytes(d.Source.Root[:])
	}
	if d.Target != nil {
		hh.PutUint64(uint64(d.Target.Epoch))
		hh.PutBytes(d.Target.Root[:])
	}
	return hh.HashRoot()
}

// SigningRoot returns the root an attester signs: the AttestationData's
// tree-hash root. Reproduced as its own method (rather than inlined at
// call sites) to match the teacher's ssz.SigningRoot(att.Data) idiom.
func (d *AttestationData) SigningRoot() ([32]byte, error) {
	return d.HashTreeRoot()
}
