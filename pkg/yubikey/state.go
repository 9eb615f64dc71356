package yubikey

import (
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
)

// Kind discriminates concrete State implementations for transition-table
// lookups and serialization.
type Kind string

const (
	KindDetected    Kind = "detected"
	KindProvisioned Kind = "provisioned"
	KindActive      Kind = "active"
	KindLocked      Kind = "locked"
	KindLost        Kind = "lost"
	KindRetired     Kind = "retired"
)

// State is the sealed lifecycle state of a YubiKey device aggregate.
type State interface {
	Kind() Kind
	IsTerminal() bool
	Description() string
}

var transitions = map[Kind]map[Kind]bool{
	KindDetected:    {KindProvisioned: true},
	KindProvisioned: {KindActive: true},
	KindActive:      {KindLocked: true, KindLost: true, KindRetired: true},
	KindLocked:      {KindActive: true, KindRetired: true}, // Active only if can_unlock
	KindLost:        {KindRetired: true},
	KindRetired:     {},
}

// CanTransitionTo reports whether target is a legal successor of from,
// matching the table above. It does not encode Locked's can_unlock guard —
// callers use Activate, which enforces that guard directly.
func CanTransitionTo(from, target Kind) bool {
	return transitions[from][target]
}

// DetectedState: device plugged in and recognized but not yet provisioned.
type DetectedState struct {
	Serial     string
	Firmware   string
	DetectedAt time.Time
	DetectedBy string
}

func (DetectedState) Kind() Kind          { return KindDetected }
func (DetectedState) IsTerminal() bool    { return false }
func (DetectedState) Description() string { return "Detected (awaiting provisioning)" }

// ProvisionedState: PIV slots configured, PIN/PUK changed from factory
// defaults, ready for assignment.
type ProvisionedState struct {
	ProvisionedAt time.Time
	ProvisionedBy string
	Slots         []SlotAssignment
	PinChanged    bool
	PukChanged    bool
}

func (ProvisionedState) Kind() Kind          { return KindProvisioned }
func (ProvisionedState) IsTerminal() bool    { return false }
func (ProvisionedState) Description() string { return "Provisioned (ready for assignment)" }

// ActiveState: assigned to a person and in use for crypto operations.
type ActiveState struct {
	AssignedTo  string
	ActivatedAt time.Time
	LastUsed    *time.Time
	UsageCount  uint64
}

func (ActiveState) Kind() Kind          { return KindActive }
func (ActiveState) IsTerminal() bool    { return false }
func (ActiveState) Description() string { return "Active (in use for crypto operations)" }

// LockedState: PIN retry limit exceeded. CanUnlock is true while the PUK
// has not also been exhausted.
type LockedState struct {
	LockedAt   time.Time
	PinRetries uint8
	CanUnlock  bool
}

func (LockedState) Kind() Kind          { return KindLocked }
func (LockedState) IsTerminal() bool    { return false }
func (LockedState) Description() string { return "Locked (PIN retry limit exceeded)" }

// LostState: reported lost or stolen.
type LostState struct {
	ReportedAt        time.Time
	ReportedBy        string
	LastKnownLocation string
}

func (LostState) Kind() Kind          { return KindLost }
func (LostState) IsTerminal() bool    { return false }
func (LostState) Description() string { return "Lost (reported lost/stolen)" }

// RetiredState: permanently removed from service. Terminal.
type RetiredState struct {
	RetiredAt            time.Time
	RetiredBy            string
	Reason               RetirementReason
	ReplacementYubiKeyID string
}

func (RetiredState) Kind() Kind          { return KindRetired }
func (RetiredState) IsTerminal() bool    { return true }
func (RetiredState) Description() string { return "Retired (TERMINAL - removed from service)" }

func CanUseForCrypto(s State) bool { return s.Kind() == KindActive }
func IsProvisioned(s State) bool  { return s.Kind() == KindProvisioned || s.Kind() == KindActive }
func IsLocked(s State) bool       { return s.Kind() == KindLocked }
func IsLost(s State) bool         { return s.Kind() == KindLost }
func CanBeModified(s State) bool  { return !s.IsTerminal() }

// CanUnlock reports whether a Locked device's PUK has not been exhausted.
func CanUnlock(s State) bool {
	locked, ok := s.(LockedState)
	return ok && locked.CanUnlock
}

// Provision configures PIV slots on a Detected device, requiring at least
// one slot assignment and both PIN and PUK changed from factory defaults.
func Provision(s State, provisionedAt time.Time, provisionedBy string, slots []SlotAssignment, pinChanged, pukChanged bool) (State, error) {
	if s.Kind() != KindDetected {
		return nil, cimerrors.InvalidTransition{
			EntityType: "yubikey", Current: s.Description(), Event: "provision",
			Reason: "can only provision Detected YubiKeys",
		}
	}
	if len(slots) == 0 {
		return nil, cimerrors.ValidationFailed{EntityType: "yubikey", Reason: "cannot provision YubiKey without slot assignments"}
	}
	if !pinChanged || !pukChanged {
		return nil, cimerrors.ValidationFailed{EntityType: "yubikey", Reason: "PIN and PUK must be changed from factory defaults"}
	}
	return ProvisionedState{
		ProvisionedAt: provisionedAt, ProvisionedBy: provisionedBy,
		Slots: slots, PinChanged: pinChanged, PukChanged: pukChanged,
	}, nil
}

// Activate assigns a Provisioned device to a person, or reactivates a
// Locked device that was unlocked with the PUK.
func Activate(s State, assignedTo string, activatedAt time.Time) (State, error) {
	switch st := s.(type) {
	case ProvisionedState:
		return ActiveState{AssignedTo: assignedTo, ActivatedAt: activatedAt}, nil
	case LockedState:
		if !st.CanUnlock {
			return nil, cimerrors.GuardFailed{
				EntityType: "yubikey",
				Reason:     "cannot unlock - PUK has been exhausted",
			}
		}
		return ActiveState{AssignedTo: assignedTo, ActivatedAt: activatedAt}, nil
	default:
		return nil, cimerrors.InvalidTransition{
			EntityType: "yubikey", Current: s.Description(), Event: "activate",
			Reason: "can only activate from Provisioned or unlockable Locked state",
		}
	}
}

// Lock transitions an Active device into Locked after PIN retry exhaustion.
func Lock(s State, lockedAt time.Time, pinRetries uint8, canUnlock bool) (State, error) {
	if s.Kind() != KindActive {
		return nil, cimerrors.InvalidTransition{
			EntityType: "yubikey", Current: s.Description(), Event: "lock",
			Reason: "can only lock Active YubiKeys",
		}
	}
	return LockedState{LockedAt: lockedAt, PinRetries: pinRetries, CanUnlock: canUnlock}, nil
}

// ReportLost transitions an Active device into Lost.
func ReportLost(s State, reportedAt time.Time, reportedBy, lastKnownLocation string) (State, error) {
	if s.Kind() != KindActive {
		return nil, cimerrors.InvalidTransition{
			EntityType: "yubikey", Current: s.Description(), Event: "report_lost",
			Reason: "can only report Active YubiKeys as lost",
		}
	}
	return LostState{ReportedAt: reportedAt, ReportedBy: reportedBy, LastKnownLocation: lastKnownLocation}, nil
}

// Retire transitions an Active, Locked, or Lost device into Retired.
func Retire(s State, reason RetirementReason, retiredAt time.Time, retiredBy, replacementYubiKeyID string) (State, error) {
	switch s.Kind() {
	case KindActive, KindLocked, KindLost:
		return RetiredState{
			RetiredAt: retiredAt, RetiredBy: retiredBy,
			Reason: reason, ReplacementYubiKeyID: replacementYubiKeyID,
		}, nil
	case KindRetired:
		return nil, cimerrors.TerminalState{EntityType: "yubikey", Current: s.Description(), Reason: "YubiKey already retired"}
	default:
		return nil, cimerrors.InvalidTransition{
			EntityType: "yubikey", Current: s.Description(), Event: "retire",
			Reason: "can only retire Active, Locked, or Lost YubiKeys",
		}
	}
}

// RecordUsage increments the usage counter and last-used timestamp on an
// Active device.
func RecordUsage(s State, usedAt time.Time) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "yubikey", Current: s.Description(), Event: "record_usage",
			Reason: "can only record usage for Active YubiKeys",
		}
	}
	usedAtCopy := usedAt
	active.LastUsed = &usedAtCopy
	active.UsageCount++
	return active, nil
}
