// Package ssz is the thin pure-function boundary spec.md §1 names as an
// external collaborator: "the SSZ serialization format, tree-hash root
// computation... treated as pure functions". This module never
// reimplements SSZ merkleization; it only adapts the teacher's
// ssz.HashTreeRoot / ssz.SigningRoot call sites
// (beacon-chain/blockchain/process_block.go) to fastssz's generated-code
// contract.
package ssz

import (
	fastssz "github.com/ferranbt/fastssz"
)

// HashRoot is implemented by any type that can contribute its canonical
// field layout to a fastssz Hasher (blocks, states, attestations...).
// Concrete types in the types package implement this directly; the
// Merkleization schedule itself lives in the generated-code style method
// body, never in this package.
type HashRoot interface {
	HashTreeRoot() ([32]byte, error)
}

// HashTreeRoot computes the canonical 32-byte Merkle root of m.
func HashTreeRoot(m HashRoot) ([32]byte, error) {
	return m.HashTreeRoot()
}

// SigningRoot computes the root used as a block's canonical identifier:
// the tree-hash root of the unsigned message the signature covers. The
// teacher computes this via ssz.SigningRoot(block) on the block envelope
// before the signature is attached; here callers pass the already-reduced
// HashRoot for the block body being signed.
func SigningRoot(m HashRoot) ([32]byte, error) {
	return m.HashTreeRoot()
}

// NewHasher returns a fresh fastssz hasher for building a Merkle tree out
// of a type's fixed and variable-length fields, following the shape
// fastssz's own generated HashTreeRoot methods use.
func NewHasher() *fastssz.Hasher {
	return fastssz.NewHasher()
}

// Marshal encodes m to its canonical SSZ byte representation. Nothing in
// this module calls it: the types package has no MarshalSSZ methods, the
// debug dump writes tree-hash roots, and persisted values are gob-encoded.
func Marshal(m fastssz.Marshaler) ([]byte, error) {
	return m.MarshalSSZ()
}
