package blockchain

import (
	"encoding/hex"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/prysmaticlabs/beaconcore/types"
)

var log = logrus.WithField("prefix", "blockchain")

func logBlockAccepted(slot types.Slot, root types.Hash256) {
	log.WithFields(logrus.Fields{
		"slot": slot,
		"root": shortRoot(root),
	}).Info("Imported new block")
}

func logBlockRejected(slot types.Slot, root types.Hash256, reason OutcomeKind) {
	log.WithFields(logrus.Fields{
		"slot":   slot,
		"root":   shortRoot(root),
		"reason": reason.String(),
	}).Trace("Rejected incoming block")
}

func logAttestationRejected(slot types.Slot, reason OutcomeKind) {
	log.WithFields(logrus.Fields{
		"slot":   slot,
		"reason": reason.String(),
	}).Trace("Rejected incoming attestation")
}

func logHeadChanged(reorg bool, previous, current types.Hash256) {
	log.WithFields(logrus.Fields{
		"reorg":    reorg,
		"previous": shortRoot(previous),
		"current":  shortRoot(current),
	}).Info("Head block updated")
}

func shortRoot(r types.Hash256) string {
	return fmt.Sprintf("0x%s...", hex.EncodeToString(r[:])[:8])
}
