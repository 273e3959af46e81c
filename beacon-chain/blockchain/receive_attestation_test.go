package blockchain

import (
	"context"
	"testing"

	"github.com/prysmaticlabs/beaconcore/types"
)

func TestProcessAttestation_RejectsEmptyAggregationBits(t *testing.T) {
	s, _, err := newTestService(5)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	att := &types.Attestation{
		AggregationBits: types.NewEmptyAggregationBits(4),
		Data: &types.AttestationData{
			Slot:   1,
			Source: &types.Checkpoint{},
			Target: &types.Checkpoint{Epoch: 0},
		},
	}

	outcome, err := s.ProcessAttestation(context.Background(), att)
	if err != nil {
		t.Fatalf("ProcessAttestation: %v", err)
	}
	if outcome.Kind != EmptyAggregationBitfield {
		t.Fatalf("got outcome %s, want EmptyAggregationBitfield", outcome.Kind)
	}
}

func TestProcessAttestation_RejectsBadTargetEpoch(t *testing.T) {
	s, _, err := newTestService(5)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	att := &types.Attestation{
		AggregationBits: types.NewEmptyAggregationBits(4),
		Data: &types.AttestationData{
			Slot:   1,
			Source: &types.Checkpoint{},
			Target: &types.Checkpoint{Epoch: 7},
		},
	}
	att.AggregationBits.SetBitAt(0, true)

	outcome, err := s.ProcessAttestation(context.Background(), att)
	if err != nil {
		t.Fatalf("ProcessAttestation: %v", err)
	}
	if outcome.Kind != BadTargetEpoch {
		t.Fatalf("got outcome %s, want BadTargetEpoch", outcome.Kind)
	}
}

func TestProcessAttestation_RejectsUnknownTargetRoot(t *testing.T) {
	s, _, err := newTestService(5)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	att := &types.Attestation{
		AggregationBits: types.NewEmptyAggregationBits(4),
		Data: &types.AttestationData{
			Slot:   1,
			Source: &types.Checkpoint{},
			Target: &types.Checkpoint{Epoch: 0, Root: types.Hash256{0xaa}},
		},
	}
	att.AggregationBits.SetBitAt(0, true)

	outcome, err := s.ProcessAttestation(context.Background(), att)
	if err != nil {
		t.Fatalf("ProcessAttestation: %v", err)
	}
	if outcome.Kind != UnknownTargetRoot {
		t.Fatalf("got outcome %s, want UnknownTargetRoot", outcome.Kind)
	}
	if outcome.TargetRoot != att.Data.Target.Root {
		t.Fatalf("outcome target root = %x, want %x", outcome.TargetRoot, att.Data.Target.Root)
	}
}

func TestProcessAttestation_RejectsFutureEpoch(t *testing.T) {
	s, _, err := newTestService(0)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	att := &types.Attestation{
		AggregationBits: types.NewEmptyAggregationBits(4),
		Data: &types.AttestationData{
			Slot:   types.Epoch(5).StartSlot(),
			Source: &types.Checkpoint{},
			Target: &types.Checkpoint{Epoch: 5},
		},
	}
	att.AggregationBits.SetBitAt(0, true)

	outcome, err := s.ProcessAttestation(context.Background(), att)
	if err != nil {
		t.Fatalf("ProcessAttestation: %v", err)
	}
	if outcome.Kind != FutureEpoch {
		t.Fatalf("got outcome %s, want FutureEpoch", outcome.Kind)
	}
}
