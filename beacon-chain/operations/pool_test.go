package operations

import (
	"testing"

	"github.com/prysmaticlabs/beaconcore/types"
)

func TestInMemoryPool_InsertAndDeleteAttestations(t *testing.T) {
	p := NewInMemoryPool()
	a := &types.Attestation{Data: &types.AttestationData{
		Slot:   1,
		Source: &types.Checkpoint{},
		Target: &types.Checkpoint{Epoch: 0, Root: types.Hash256{0x01}},
	}}
	p.InsertAttestation(a)

	if got := p.Attestations(); len(got) != 1 {
		t.Fatalf("Attestations() len = %d, want 1", len(got))
	}

	p.DeleteAttestations([]*types.Attestation{a})
	if got := p.Attestations(); len(got) != 0 {
		t.Fatalf("Attestations() after delete len = %d, want 0", len(got))
	}
}

func TestInMemoryPool_PruneFinalizedDiscardsOldEpochs(t *testing.T) {
	p := NewInMemoryPool()
	old := &types.Attestation{Data: &types.AttestationData{
		Target: &types.Checkpoint{Epoch: 1},
	}}
	recent := &types.Attestation{Data: &types.AttestationData{
		Target: &types.Checkpoint{Epoch: 5},
	}}
	p.InsertAttestation(old)
	p.InsertAttestation(recent)

	p.PruneFinalized(3)

	got := p.Attestations()
	if len(got) != 1 {
		t.Fatalf("Attestations() len = %d, want 1", len(got))
	}
	if got[0].Data.Target.Epoch != 5 {
		t.Fatalf("surviving attestation target epoch = %d, want 5", got[0].Data.Target.Epoch)
	}
}

func TestInMemoryPool_VoluntaryExitsAndSlashings(t *testing.T) {
	p := NewInMemoryPool()
	p.InsertVoluntaryExit(&types.SignedVoluntaryExit{Exit: &types.VoluntaryExit{ValidatorIndex: 3}})
	p.InsertProposerSlashing(&types.ProposerSlashing{ProposerIndex: 4})
	p.InsertAttesterSlashing(&types.AttesterSlashing{
		Attestation1: &types.IndexedAttestation{Data: &types.AttestationData{}},
		Attestation2: &types.IndexedAttestation{Data: &types.AttestationData{}},
	})

	if got := p.VoluntaryExits(); len(got) != 1 {
		t.Fatalf("VoluntaryExits() len = %d, want 1", len(got))
	}
	if got := p.ProposerSlashings(); len(got) != 1 {
		t.Fatalf("ProposerSlashings() len = %d, want 1", len(got))
	}
	if got := p.AttesterSlashings(); len(got) != 1 {
		t.Fatalf("AttesterSlashings() len = %d, want 1", len(got))
	}
}
