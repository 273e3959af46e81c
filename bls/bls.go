// Package bls is the pure-function BLS signature boundary spec.md §1 names
// as an external collaborator. It wraps supranational/blst, the teacher's
// actual BLS backend (shared/bls in the teacher imports blst behind a
// thin SecretKey/PublicKey/Signature interface); no cryptographic
// algorithm is reimplemented here.
package bls

import (
	blst "github.com/supranational/blst"

	"github.com/prysmaticlabs/beaconcore/config"
)

// PublicKey wraps a validator's BLS public key.
type PublicKey struct {
	p *blst.P1Affine
}

// Signature wraps an aggregate or single BLS signature.
type Signature struct {
	s *blst.P2Affine
}

// PublicKeyFromBytes decompresses a 48-byte public key.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	p := new(blst.P1Affine).Uncompress(b)
	if p == nil {
		return nil, errInvalidPublicKey
	}
	return &PublicKey{p: p}, nil
}

// SignatureFromBytes decompresses a 96-byte signature.
func SignatureFromBytes(b []byte) (*Signature, error) {
	s := new(blst.P2Affine).Uncompress(b)
	if s == nil {
		return nil, errInvalidSignature
	}
	return &Signature{s: s}, nil
}

// VerifyAggregate checks an aggregate signature against one message per
// public key (the IndexedAttestation signing-root repeated once per
// attesting key in the domain-separated phase0 scheme used here). It is
// called by attestation ingress (spec.md §4.A.4); block ingress (§4.A.5)
// does not call it, since the PerBlockProcessing stub verifies no
// signatures.
func VerifyAggregate(pubkeys []*PublicKey, msg [32]byte, sig *Signature) bool {
	if config.Features().SkipBLSVerify {
		return true
	}
	if sig == nil || len(pubkeys) == 0 {
		return false
	}
	raw := make([]*blst.P1Affine, len(pubkeys))
	for i, pk := range pubkeys {
		raw[i] = pk.p
	}
	aggPub := new(blst.P1Aggregate)
	aggPub.Aggregate(raw, false)
	aggAffine := aggPub.ToAffine()
	return sig.s.Verify(false, aggAffine, false, msg[:], dst)
}

// dst is the domain separation tag used for hash-to-curve, matching the
// phase0 BLS signature scheme (ciphersuite BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_).
var dst = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

type blsError string

func (e blsError) Error() string { return string(e) }

const (
	errInvalidPublicKey = blsError("bls: invalid public key bytes")
	errInvalidSignature = blsError("bls: invalid signature bytes")
)
