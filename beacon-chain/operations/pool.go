// Package operations defines the operation pool's insertion/retrieval
// contract — the only part of it spec.md §1 calls in scope ("The
// operation pool (aggregation and inclusion heuristics); only its
// insertion/retrieval contract is relevant"). Grounded on
// beacon-chain/operations/service.go and
// beacon-chain/operations/attestations/pool.go (read for their
// method-naming conventions: AggregateUnaggregatedAttestations,
// SaveAttesterSlashing, etc.) — the aggregation heuristic itself is out of
// scope and this in-memory reference keeps every item it is given.
package operations

import (
	"sync"

	"github.com/prysmaticlabs/beaconcore/types"
)

// Pool is the operation pool interface the orchestrator depends on.
type Pool interface {
	InsertAttestation(att *types.Attestation)
	Attestations() []*types.Attestation
	DeleteAttestations(included []*types.Attestation)

	InsertVoluntaryExit(exit *types.SignedVoluntaryExit)
	VoluntaryExits() []*types.SignedVoluntaryExit

	InsertProposerSlashing(ps *types.ProposerSlashing)
	ProposerSlashings() []*types.ProposerSlashing

	InsertAttesterSlashing(as *types.AttesterSlashing)
	AttesterSlashings() []*types.AttesterSlashing

	// PruneFinalized discards any pooled item that is no longer eligible
	// given finalizedEpoch, matching spec.md §4.A.6 step 8's finalization
	// hook ("prune the op pool against the finalized state").
	PruneFinalized(finalizedEpoch types.Epoch)
}

// InMemoryPool is a minimal, unordered reference Pool implementation.
type InMemoryPool struct {
	mu sync.Mutex

	attestations   []*types.Attestation
	exits          []*types.SignedVoluntaryExit
	proposerSlash  []*types.ProposerSlashing
	attesterSlash  []*types.AttesterSlashing
}

// NewInMemoryPool returns an empty InMemoryPool.
func NewInMemoryPool() *InMemoryPool {
	return &InMemoryPool{}
}

// InsertAttestation adds att to the pool.
func (p *InMemoryPool) InsertAttestation(att *types.Attestation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attestations = append(p.attestations, att)
}

// Attestations returns every currently pooled attestation.
func (p *InMemoryPool) Attestations() []*types.Attestation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*types.Attestation(nil), p.attestations...)
}

// DeleteAttestations removes every attestation in included from the pool,
// matching spec.md §4.A.4's "delete the processed block attestations from
// attestation pool" step.
func (p *InMemoryPool) DeleteAttestations(included []*types.Attestation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(included) == 0 {
		return
	}
	includedRoots := make(map[[32]byte]bool, len(included))
	for _, a := range included {
		root, err := a.Data.HashTreeRoot()
		if err != nil {
			continue
		}
		includedRoots[root] = true
	}
	kept := p.attestations[:0]
	for _, a := range p.attestations {
		root, err := a.Data.HashTreeRoot()
		if err == nil && includedRoots[root] {
			continue
		}
		kept = append(kept, a)
	}
	p.attestations = kept
}

// InsertVoluntaryExit adds exit to the pool.
func (p *InMemoryPool) InsertVoluntaryExit(exit *types.SignedVoluntaryExit) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exits = append(p.exits, exit)
}

// VoluntaryExits returns every pooled voluntary exit.
func (p *InMemoryPool) VoluntaryExits() []*types.SignedVoluntaryExit {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*types.SignedVoluntaryExit(nil), p.exits...)
}

// InsertProposerSlashing adds ps to the pool.
func (p *InMemoryPool) InsertProposerSlashing(ps *types.ProposerSlashing) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.proposerSlash = append(p.proposerSlash, ps)
}

// ProposerSlashings returns every pooled proposer slashing.
func (p *InMemoryPool) ProposerSlashings() []*types.ProposerSlashing {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*types.ProposerSlashing(nil), p.proposerSlash...)
}

// InsertAttesterSlashing adds as to the pool.
func (p *InMemoryPool) InsertAttesterSlashing(as *types.AttesterSlashing) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attesterSlash = append(p.attesterSlash, as)
}

// AttesterSlashings returns every pooled attester slashing.
func (p *InMemoryPool) AttesterSlashings() []*types.AttesterSlashing {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*types.AttesterSlashing(nil), p.attesterSlash...)
}

// PruneFinalized discards pooled attestations whose target epoch is at or
// before finalizedEpoch, since they can no longer be included.
func (p *InMemoryPool) PruneFinalized(finalizedEpoch types.Epoch) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.attestations[:0]
	for _, a := range p.attestations {
		if a.Data.Target.Epoch > finalizedEpoch {
			kept = append(kept, a)
		}
	}
	p.attestations = kept
}

var _ Pool = (*InMemoryPool)(nil)
