// Package slotclock defines the slot clock spec.md §1 names as an
// external collaborator ("wall-clock-to-slot conversion... this module
// only consumes current_slot() and is_current_slot_valid(), it never
// derives wall time itself"). Grounded on shared/slotutil's
// SlotsSinceGenesis / EpochStartTime naming convention.
package slotclock

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/prysmaticlabs/beaconcore/config"
	"github.com/prysmaticlabs/beaconcore/types"
)

// ErrPreGenesis is returned by CurrentSlot when wall-clock time is still
// before the clock's genesis time, matching spec.md §4.A's "slot() fails
// if pre-genesis" contract (the original's
// self.slot_clock.now().ok_or_else(|| Error::UnableToReadSlot)).
var ErrPreGenesis = errors.New("slotclock: current time is before genesis")

// SlotClock is the external wall-clock-to-slot interface the orchestrator
// depends on.
type SlotClock interface {
	// CurrentSlot returns the slot wall-clock time currently maps to, or
	// ErrPreGenesis if called before the clock's genesis time.
	CurrentSlot() (types.Slot, error)
	// IsCurrentSlotValid reports whether slot is not further in the future
	// than the clock's configured maximum clock disparity allows, matching
	// spec.md §4.A.5's future-slot rejection check.
	IsCurrentSlotValid(slot types.Slot) bool
	// WaitForSlot blocks until slot's start time, or ctx is canceled.
	WaitForSlot(ctx context.Context, slot types.Slot) error
}

// SystemClock is a real-time SlotClock anchored to a genesis time.
type SystemClock struct {
	genesisTime time.Time
	secPerSlot  time.Duration
	disparity   time.Duration

	now func() time.Time
}

// NewSystemClock returns a SystemClock anchored to genesisTime, using the
// active BeaconConfig's SecondsPerSlot and MaximumGossipClockDisparity.
func NewSystemClock(genesisTime time.Time) *SystemClock {
	cfg := config.BeaconConfig()
	return &SystemClock{
		genesisTime: genesisTime,
		secPerSlot:  time.Duration(cfg.SecondsPerSlot) * time.Second,
		disparity:   cfg.MaximumGossipClockDisparity,
		now:         time.Now,
	}
}

// CurrentSlot returns floor((now - genesisTime) / secPerSlot), failing
// with ErrPreGenesis if now is still before genesisTime.
func (c *SystemClock) CurrentSlot() (types.Slot, error) {
	elapsed := c.now().Sub(c.genesisTime)
	if elapsed < 0 {
		return 0, ErrPreGenesis
	}
	return types.Slot(elapsed / c.secPerSlot), nil
}

// IsCurrentSlotValid reports whether slot's start time is not more than
// the configured disparity ahead of now.
func (c *SystemClock) IsCurrentSlotValid(slot types.Slot) bool {
	slotStart := c.genesisTime.Add(time.Duration(slot) * c.secPerSlot)
	return !slotStart.After(c.now().Add(c.disparity))
}

// WaitForSlot blocks until slot's start time or ctx cancellation, whichever
// comes first.
func (c *SystemClock) WaitForSlot(ctx context.Context, slot types.Slot) error {
	slotStart := c.genesisTime.Add(time.Duration(slot) * c.secPerSlot)
	d := slotStart.Sub(c.now())
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ SlotClock = (*SystemClock)(nil)
