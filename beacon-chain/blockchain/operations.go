// Slashing and voluntary-exit ingress, spec.md §4.A: validate against the
// wall-clock head state and insert into the operation pool; a no-op if no
// eth1 chain is attached, matching the teacher's
// "this node is not tracking an eth1 chain" guard.
package blockchain

import (
	"context"

	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/types"
)

// ProcessVoluntaryExit validates exit against the head state and inserts
// it into the operation pool.
func (s *Service) ProcessVoluntaryExit(ctx context.Context, exit *types.SignedVoluntaryExit) error {
	if s.eth1 == nil || s.opPool == nil {
		return nil
	}
	head, err := s.Head()
	if err != nil {
		return err
	}
	if exit.Exit.ValidatorIndex >= uint64(head.State.NumValidators()) {
		return errors.New("process voluntary exit: unknown validator index")
	}
	s.opPool.InsertVoluntaryExit(exit)
	return nil
}

// ProcessProposerSlashing validates ps against the head state and inserts
// it into the operation pool.
func (s *Service) ProcessProposerSlashing(ctx context.Context, ps *types.ProposerSlashing) error {
	if s.eth1 == nil || s.opPool == nil {
		return nil
	}
	head, err := s.Head()
	if err != nil {
		return err
	}
	if ps.ProposerIndex >= uint64(head.State.NumValidators()) {
		return errors.New("process proposer slashing: unknown proposer index")
	}
	s.opPool.InsertProposerSlashing(ps)
	return nil
}

// ProcessAttesterSlashing validates as against the head state and inserts
// it into the operation pool.
func (s *Service) ProcessAttesterSlashing(ctx context.Context, as *types.AttesterSlashing) error {
	if s.eth1 == nil || s.opPool == nil {
		return nil
	}
	if as.Attestation1 == nil || as.Attestation2 == nil {
		return errors.New("process attester slashing: incomplete evidence")
	}
	s.opPool.InsertAttesterSlashing(as)
	return nil
}
