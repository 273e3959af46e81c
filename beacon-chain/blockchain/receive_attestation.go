// Attestation ingress, spec.md §4.A.4.
package blockchain

import (
	"context"

	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/beacon-chain/core/helpers"
	"github.com/prysmaticlabs/beaconcore/bls"
	"github.com/prysmaticlabs/beaconcore/types"
)

// ProcessAttestation validates att and, on acceptance, forwards its
// indexed form to fork choice and inserts the aggregate into the
// operation pool, matching spec.md §4.A's
// process_attestation(att) → Outcome | Err.
func (s *Service) ProcessAttestation(ctx context.Context, att *types.Attestation) (Outcome, error) {
	ctx, span := withSpan(ctx, "ProcessAttestation")
	defer span.End()

	outcome, err := s.checkAttestationRejections(att)
	if err != nil {
		return Outcome{}, err
	}
	if outcome.IsRejection() {
		s.rejectAttestation(att, outcome)
		return outcome, nil
	}

	indexed, outcome, err := s.deriveIndexedAttestation(ctx, att)
	if err != nil {
		return Outcome{}, err
	}
	if outcome.IsRejection() {
		s.rejectAttestation(att, outcome)
		return outcome, nil
	}

	valid, err := s.verifyAttestationSignature(indexed)
	if err != nil {
		return Outcome{}, err
	}
	if !valid {
		outcome = Outcome{Kind: InvalidSignature, TargetRoot: att.Data.Target.Root}
		s.rejectAttestation(att, outcome)
		return outcome, nil
	}

	if err := s.forkChoice.ProcessIndexedAttestation(ctx, indexed); err != nil {
		return Outcome{}, errors.Wrap(err, "could not process indexed attestation in fork choice")
	}
	if s.eth1 != nil && s.opPool != nil {
		s.opPool.InsertAttestation(att)
	}

	s.Events.Send(BeaconAttestationImported{TargetRoot: att.Data.Target.Root, Slot: att.Data.Slot})
	return Outcome{Kind: Processed}, nil
}

func (s *Service) rejectAttestation(att *types.Attestation, outcome Outcome) {
	logAttestationRejected(att.Data.Slot, outcome.Kind)
	attestationRejectedCount.WithLabelValues(outcome.Kind.String()).Inc()
	s.Events.Send(BeaconAttestationRejected{Reason: outcome.Kind, Outcome: outcome})
}

// checkAttestationRejections runs the classified rejection checks from
// spec.md §4.A.4, in the specified order, stopping before the shuffling
// cache lookup (deriveIndexedAttestation performs the remaining checks
// that depend on it).
func (s *Service) checkAttestationRejections(att *types.Attestation) (Outcome, error) {
	if att.AggregationBits.Count() == 0 {
		return Outcome{Kind: EmptyAggregationBitfield}, nil
	}

	currentEpoch, err := s.Epoch()
	if err != nil {
		return Outcome{}, err
	}
	attestationEpoch := att.Data.Slot.ToEpoch()

	if attestationEpoch > currentEpoch {
		return Outcome{Kind: FutureEpoch}, nil
	}
	if attestationEpoch+1 < currentEpoch {
		return Outcome{Kind: PastEpoch}, nil
	}
	if att.Data.Target.Epoch != att.Data.Slot.ToEpoch() {
		return Outcome{Kind: BadTargetEpoch}, nil
	}
	if !s.forkChoice.ContainsBlock(att.Data.Target.Root) {
		return Outcome{Kind: UnknownTargetRoot, TargetRoot: att.Data.Target.Root}, nil
	}
	if !s.forkChoice.ContainsBlock(att.Data.BeaconBlockRoot) {
		return Outcome{Kind: UnknownHeadBlock}, nil
	}
	blockSlot, _, ok := s.forkChoice.BlockSlotAndStateRoot(att.Data.BeaconBlockRoot)
	if ok && blockSlot > att.Data.Slot {
		return Outcome{Kind: AttestsToFutureBlock}, nil
	}
	return Outcome{Kind: Processed}, nil
}

// deriveIndexedAttestation looks up (attestation_epoch, target.root) in
// the shuffling cache. On miss: loads the target block's post-state,
// skip-processes with zero state roots up to the attestation's epoch,
// builds the relative-epoch committee cache, and inserts into the
// shuffling cache, matching spec.md §4.A.4's cache-miss path.
func (s *Service) deriveIndexedAttestation(ctx context.Context, att *types.Attestation) (*types.IndexedAttestation, Outcome, error) {
	attestationEpoch := att.Data.Slot.ToEpoch()

	cc, ok, err := s.shuffling.Get(attestationEpoch, att.Data.Target.Root)
	if err != nil {
		return nil, Outcome{}, errors.Wrap(err, "could not read shuffling cache")
	}
	if !ok {
		targetSlot, targetStateRoot, found := s.forkChoice.BlockSlotAndStateRoot(att.Data.Target.Root)
		if !found {
			return nil, Outcome{Kind: UnknownTargetRoot, TargetRoot: att.Data.Target.Root}, nil
		}
		state, err := s.db.GetState(ctx, targetStateRoot, targetSlot)
		if err != nil {
			return nil, Outcome{}, errors.Wrap(err, "could not load target state")
		}
		state, err = s.skipStateForward(ctx, state, attestationEpoch.StartSlot(), true)
		if err != nil {
			return nil, Outcome{}, err
		}
		cc, err = helpers.BuildCommitteeCache(state, attestationEpoch)
		if err != nil {
			return nil, Outcome{}, errors.Wrap(err, "could not build committee cache")
		}
		if err := s.shuffling.Put(attestationEpoch, att.Data.Target.Root, cc); err != nil {
			log.WithError(err).Warn("Could not insert shuffling cache entry")
		}
	}

	committee, err := cc.CommitteeAtSlot(att.Data.Slot, att.Data.CommitteeIndex)
	if err != nil {
		return nil, Outcome{}, errors.Wrap(err, "could not resolve committee for attestation")
	}

	var indices []uint64
	for i, validatorIndex := range committee {
		if att.AggregationBits.BitAt(uint64(i)) {
			indices = append(indices, validatorIndex)
		}
	}

	return &types.IndexedAttestation{
		AttestingIndices: indices,
		Data:             att.Data,
		Signature:        att.Signature,
	}, Outcome{Kind: Processed}, nil
}

// verifyAttestationSignature verifies att's aggregate BLS signature
// against the pubkeys fetched from the pubkey cache.
func (s *Service) verifyAttestationSignature(att *types.IndexedAttestation) (bool, error) {
	pubkeys, err := s.pubkeys.PublicKeys(att.AttestingIndices)
	if err != nil {
		return false, errors.Wrap(err, "could not fetch pubkeys for attestation")
	}
	msg, err := att.Data.SigningRoot()
	if err != nil {
		return false, errors.Wrap(err, "could not compute attestation signing root")
	}
	sig, err := bls.SignatureFromBytes(att.Signature[:])
	if err != nil {
		return false, nil
	}
	return bls.VerifyAggregate(pubkeys, msg, sig), nil
}
