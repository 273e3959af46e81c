package blockchain

import (
	"context"
	"testing"

	"github.com/prysmaticlabs/beaconcore/statetransition"
	"github.com/prysmaticlabs/beaconcore/types"
)

// buildSiblingBlock constructs a slot-1 child of genesis with a distinct
// body (varied by depositCount) and a correctly computed StateRoot, so it
// passes applyBlock's StateRootMismatch check instead of being rejected.
func buildSiblingBlock(t *testing.T, s *Service, depositCount uint64) *types.SignedBeaconBlock {
	t.Helper()
	head, err := s.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	state := head.State.Copy()
	for state.Slot < 1 {
		state, err = statetransition.PerSlotProcessing(context.Background(), state, false)
		if err != nil {
			t.Fatalf("PerSlotProcessing: %v", err)
		}
	}

	block := &types.BeaconBlock{
		Slot:       1,
		ParentRoot: s.genesisBlockRoot,
		Body:       &types.BeaconBlockBody{Eth1Data: &types.Eth1Data{DepositCount: depositCount}},
	}
	postState, err := statetransition.PerBlockProcessing(context.Background(), state, block, statetransition.NoVerification)
	if err != nil {
		t.Fatalf("PerBlockProcessing: %v", err)
	}
	stateRoot, err := postState.HashTreeRoot()
	if err != nil {
		t.Fatalf("HashTreeRoot(state): %v", err)
	}
	block.StateRoot = stateRoot

	return &types.SignedBeaconBlock{Block: block}
}

func produceAndSign(t *testing.T, s *Service, slot types.Slot) *types.SignedBeaconBlock {
	t.Helper()
	block, _, err := s.ProduceBlock(context.Background(), [96]byte{}, slot, 0)
	if err != nil {
		t.Fatalf("ProduceBlock: %v", err)
	}
	return &types.SignedBeaconBlock{Block: block}
}

func TestProcessBlock_AcceptsValidBlock(t *testing.T) {
	s, _, err := newTestService(5)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	signed := produceAndSign(t, s, 1)

	outcome, err := s.ProcessBlock(context.Background(), signed)
	if err != nil {
		t.Fatalf("ProcessBlock: %v", err)
	}
	if outcome.IsRejection() {
		t.Fatalf("expected acceptance, got rejection %s", outcome.Kind)
	}
	if !s.forkChoice.ContainsBlock(outcome.BlockRoot) {
		t.Fatalf("accepted block %x not registered with fork choice", outcome.BlockRoot)
	}
}

func TestProcessBlock_RejectsFutureSlot(t *testing.T) {
	s, _, err := newTestService(0)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	block := &types.BeaconBlock{
		Slot:       10,
		ParentRoot: s.genesisBlockRoot,
		Body:       &types.BeaconBlockBody{Eth1Data: &types.Eth1Data{}},
	}
	signed := &types.SignedBeaconBlock{Block: block}

	outcome, err := s.ProcessBlock(context.Background(), signed)
	if err != nil {
		t.Fatalf("ProcessBlock: %v", err)
	}
	if outcome.Kind != FutureSlot {
		t.Fatalf("got outcome %s, want FutureSlot", outcome.Kind)
	}
}

func TestProcessBlock_RejectsUnknownParent(t *testing.T) {
	s, _, err := newTestService(5)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	block := &types.BeaconBlock{
		Slot:       1,
		ParentRoot: types.Hash256{0xff},
		Body:       &types.BeaconBlockBody{Eth1Data: &types.Eth1Data{}},
	}
	signed := &types.SignedBeaconBlock{Block: block}

	outcome, err := s.ProcessBlock(context.Background(), signed)
	if err != nil {
		t.Fatalf("ProcessBlock: %v", err)
	}
	if outcome.Kind != ParentUnknown {
		t.Fatalf("got outcome %s, want ParentUnknown", outcome.Kind)
	}
	if outcome.ReferenceLocation != ReferenceLocationForkChoice {
		t.Fatalf("got reference location %s, want fork_choice", outcome.ReferenceLocation)
	}
}

func TestProcessBlock_RejectsGenesisSlot(t *testing.T) {
	s, _, err := newTestService(5)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	block := &types.BeaconBlock{
		Slot:       0,
		ParentRoot: types.ZeroHash,
		Body:       &types.BeaconBlockBody{Eth1Data: &types.Eth1Data{}},
	}
	signed := &types.SignedBeaconBlock{Block: block}

	outcome, err := s.ProcessBlock(context.Background(), signed)
	if err != nil {
		t.Fatalf("ProcessBlock: %v", err)
	}
	if outcome.Kind != GenesisBlock {
		t.Fatalf("got outcome %s, want GenesisBlock", outcome.Kind)
	}
}

func TestProcessBlock_RejectsAlreadyKnown(t *testing.T) {
	s, _, err := newTestService(5)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	signed := produceAndSign(t, s, 1)

	if _, err := s.ProcessBlock(context.Background(), signed); err != nil {
		t.Fatalf("first ProcessBlock: %v", err)
	}
	outcome, err := s.ProcessBlock(context.Background(), signed)
	if err != nil {
		t.Fatalf("second ProcessBlock: %v", err)
	}
	if outcome.Kind != BlockIsAlreadyKnown {
		t.Fatalf("got outcome %s, want BlockIsAlreadyKnown", outcome.Kind)
	}
}

func TestFindHead_AdvancesAfterBlockImport(t *testing.T) {
	s, _, err := newTestService(5)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	ch := make(chan interface{}, 4)
	defer s.Events.Subscribe(ch)()

	signed := produceAndSign(t, s, 1)
	blockRoot, err := signed.Block.HashTreeRoot()
	if err != nil {
		t.Fatalf("HashTreeRoot: %v", err)
	}

	if _, err := s.ProcessBlock(context.Background(), signed); err != nil {
		t.Fatalf("ProcessBlock: %v", err)
	}

	if err := s.FindHead(context.Background()); err != nil {
		t.Fatalf("FindHead: %v", err)
	}
	head, err := s.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head.BlockRoot != blockRoot {
		t.Fatalf("head root = %x, want %x", head.BlockRoot, blockRoot)
	}

	changed := headChangedEvent(t, ch)
	if changed.Reorg {
		t.Fatal("first block after genesis must not be reported as a reorg")
	}
}

// TestFindHead_DetectsReorgOnCompetingSibling builds two competing
// children of genesis at the same slot, elects the first as head (not a
// reorg, since its parent is genesis), then casts an attesting vote for
// the sibling and re-elects — the new head shares no ancestry with the
// old one at its own slot, so this election must report Reorg=true.
func TestFindHead_DetectsReorgOnCompetingSibling(t *testing.T) {
	s, _, err := newTestService(5)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	ch := make(chan interface{}, 8)
	defer s.Events.Subscribe(ch)()

	a := buildSiblingBlock(t, s, 1)
	b := buildSiblingBlock(t, s, 2)

	aOutcome, err := s.ProcessBlock(context.Background(), a)
	if err != nil || aOutcome.IsRejection() {
		t.Fatalf("ProcessBlock(a): outcome=%v err=%v", aOutcome, err)
	}
	bOutcome, err := s.ProcessBlock(context.Background(), b)
	if err != nil || bOutcome.IsRejection() {
		t.Fatalf("ProcessBlock(b): outcome=%v err=%v", bOutcome, err)
	}
	if aOutcome.BlockRoot == bOutcome.BlockRoot {
		t.Fatal("test fixture produced identical roots for distinct sibling blocks")
	}

	if err := s.FindHead(context.Background()); err != nil {
		t.Fatalf("first FindHead: %v", err)
	}
	first, err := s.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	drainHeadChangedEvents(ch)

	var sibling types.Hash256
	if first.BlockRoot == aOutcome.BlockRoot {
		sibling = bOutcome.BlockRoot
	} else {
		sibling = aOutcome.BlockRoot
	}

	if err := s.forkChoice.ProcessIndexedAttestation(context.Background(), &types.IndexedAttestation{
		AttestingIndices: []uint64{0},
		Data: &types.AttestationData{
			Target: &types.Checkpoint{Epoch: 1, Root: sibling},
		},
	}); err != nil {
		t.Fatalf("ProcessIndexedAttestation: %v", err)
	}

	if err := s.FindHead(context.Background()); err != nil {
		t.Fatalf("second FindHead: %v", err)
	}
	second, err := s.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if second.BlockRoot != sibling {
		t.Fatalf("head root = %x, want sibling %x", second.BlockRoot, sibling)
	}

	changed := headChangedEvent(t, ch)
	if !changed.Reorg {
		t.Fatal("switching to a sibling block must be reported as a reorg")
	}
	if changed.Previous != first.BlockRoot || changed.Current != sibling {
		t.Fatalf("BeaconHeadChanged = {previous:%x current:%x}, want {previous:%x current:%x}",
			changed.Previous, changed.Current, first.BlockRoot, sibling)
	}
}

func headChangedEvent(t *testing.T, ch chan interface{}) BeaconHeadChanged {
	t.Helper()
	for {
		select {
		case ev := <-ch:
			if changed, ok := ev.(BeaconHeadChanged); ok {
				return changed
			}
		default:
			t.Fatal("no BeaconHeadChanged event observed")
		}
	}
}

func drainHeadChangedEvents(ch chan interface{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
