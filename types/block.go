package types

import (
	libssz "github.com/prysmaticlabs/beaconcore/ssz"
)

// Deposit represents a validator deposit included in a block body.
type Deposit struct {
	PublicKey             [48]byte
	WithdrawalCredentials Hash256
	Amount                uint64
	Signature             [96]byte
}

// VoluntaryExit represents a validator's signed request to exit.
type VoluntaryExit struct {
	Epoch          Epoch
	ValidatorIndex uint64
}

// SignedVoluntaryExit pairs a VoluntaryExit with its signature.
type SignedVoluntaryExit struct {
	Exit      *VoluntaryExit
	Signature [96]byte
}

// ProposerSlashing represents evidence of a proposer double-signing two
// blocks for the same slot.
type ProposerSlashing struct {
	ProposerIndex uint64
	Header1Root   Hash256
	Header2Root   Hash256
}

// AttesterSlashing represents evidence of two conflicting
// IndexedAttestations from overlapping validators.
type AttesterSlashing struct {
	Attestation1 *IndexedAttestation
	Attestation2 *IndexedAttestation
}

// Eth1Data is the eth1 deposit-chain vote carried in a block body.
type Eth1Data struct {
	DepositRoot  Hash256
	DepositCount uint64
	BlockHash    Hash256
}

// BeaconBlockBody holds the operations a proposer bundles into a block.
type BeaconBlockBody struct {
	RandaoReveal      [96]byte
	Eth1Data          *Eth1Data
	Graffiti          [32]byte
	ProposerSlashings []*ProposerSlashing
	AttesterSlashings []*AttesterSlashing
	Attestations      []*Attestation
	Deposits          []*Deposit
	VoluntaryExits    []*SignedVoluntaryExit
}

// BeaconBlock is the immutable record spec.md §3 describes:
// {slot, parent_root, state_root, body, signature} minus the signature,
// which lives on the SignedBeaconBlock envelope.
type BeaconBlock struct {
	Slot          Slot
	ProposerIndex uint64
	ParentRoot    Hash256
	StateRoot     Hash256
	Body          *BeaconBlockBody
}

// SignedBeaconBlock pairs a BeaconBlock with its proposer signature.
type SignedBeaconBlock struct {
	Block     *BeaconBlock
	Signature [96]byte
}

// HashTreeRoot computes the block's canonical identifier, i.e. its block
// root. Signatures are excluded from the tree-hash root, matching the
// spec's signing-root convention reproduced from the teacher's
// ssz.SigningRoot(block) call site.
func (b *BeaconBlock) HashTreeRoot() ([32]byte, error) {
	hh := libssz.NewHasher()
	hh.PutUint64(uint64(b.Slot))
	hh.PutUint64(b.ProposerIndex)
	hh.PutBytes(b.ParentRoot[:])
	hh.PutBytes(b.StateRoot[:])
	bodyRoot, err := b.Body.HashTreeRoot()
	if err != nil {
		return [32]byte{}, err
	}
	hh.PutBytes(bodyRoot[:])
	return hh.HashRoot()
}

// HashTreeRoot computes the body's contribution to the block's root.
func (b *BeaconBlockBody) HashTreeRoot() ([32]byte, error) {
	hh := libssz.NewHasher()
	hh.PutBytes(b.RandaoReveal[:])
	if b.Eth1Data != nil {
		hh.PutBytes(b.Eth1Data.DepositRoot[:])
		hh.PutUint64(b.Eth1Data.DepositCount)
		hh.PutBytes(b.Eth1Data.BlockHash[:])
	}
	hh.PutBytes(b.Graffiti[:])
	hh.PutUint64(uint64(len(b.ProposerSlashings)))
	hh.PutUint64(uint64(len(b.AttesterSlashings)))
	hh.PutUint64(uint64(len(b.Attestations)))
	hh.PutUint64(uint64(len(b.Deposits)))
	hh.PutUint64(uint64(len(b.VoluntaryExits)))
	return hh.HashRoot()
}

// NewGenesisBlock returns the canonical genesis block: slot 0, zero parent
// root, carrying the given genesis state root, matching the teacher's
// blocks.NewGenesisBlock(genesisStateRoot) helper.
func NewGenesisBlock(stateRoot Hash256) *SignedBeaconBlock {
	return &SignedBeaconBlock{
		Block: &BeaconBlock{
			Slot:       0,
			ParentRoot: ZeroHash,
			StateRoot:  stateRoot,
			Body: &BeaconBlockBody{
				Eth1Data: &Eth1Data{},
			},
		},
	}
}

