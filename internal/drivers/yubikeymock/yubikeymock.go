// Package yubikeymock implements drivers.YubikeyProvisioner by simulating
// PIV slot occupancy in memory, for development and test use in place of
// a physical YubiKey and PC/SC reader.
package yubikeymock

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"sync"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/projection"
)

type slotState struct {
	keyHandle   string
	der         []byte
	fingerprint [32]byte
}

// Driver is an in-memory YubikeyProvisioner keyed by device serial and
// slot.
type Driver struct {
	logger *slog.Logger

	mu    sync.Mutex
	slots map[string]map[string]slotState // serial -> slot -> state
}

// New constructs a Driver that logs each provisioning action through
// logger.
func New(logger *slog.Logger) *Driver {
	return &Driver{logger: logger, slots: make(map[string]map[string]slotState)}
}

// Provision writes der and keyHandle into serial's slot named by
// plan.Slot.
func (d *Driver) Provision(ctx context.Context, serial string, plan projection.PIVPlan, keyHandle string, der []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.slots[serial] == nil {
		d.slots[serial] = make(map[string]slotState)
	}
	d.slots[serial][string(plan.Slot)] = slotState{
		keyHandle:   keyHandle,
		der:         der,
		fingerprint: sha256.Sum256(der),
	}
	d.logger.Info("provisioned yubikey slot", "serial", serial, "slot", plan.Slot, "touch_policy", plan.Touch, "pin_policy", plan.PinPolicy)
	return nil
}

// VerifySlot re-reads serial's slot and compares its stored
// certificate's fingerprint against expectedFingerprint.
func (d *Driver) VerifySlot(ctx context.Context, serial string, slot string, expectedFingerprint []byte) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	bySlot, ok := d.slots[serial]
	if !ok {
		return false, nil
	}
	state, ok := bySlot[slot]
	if !ok {
		return false, nil
	}
	if len(expectedFingerprint) != len(state.fingerprint) {
		return false, nil
	}
	for i := range state.fingerprint {
		if expectedFingerprint[i] != state.fingerprint[i] {
			return false, nil
		}
	}
	return true, nil
}

// ClearSlot erases serial's slot, used by compensation.
func (d *Driver) ClearSlot(ctx context.Context, serial string, slot string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	bySlot, ok := d.slots[serial]
	if !ok {
		return cimerrors.NotFound{Kind: "yubikey", ID: serial}
	}
	if _, ok := bySlot[slot]; !ok {
		return cimerrors.NotFound{Kind: "yubikey_slot", ID: serial + "/" + slot}
	}
	delete(bySlot, slot)
	d.logger.Info("cleared yubikey slot", "serial", serial, "slot", slot)
	return nil
}
