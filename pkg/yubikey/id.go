// Package yubikey implements the lifecycle state machine for YubiKey
// hardware security devices: Detected -> Provisioned -> Active, with
// Active <-> Locked (PIN retry exhaustion / PUK unlock), Active -> Lost,
// and Active/Locked/Lost -> Retired (terminal).
package yubikey

import (
	"github.com/google/uuid"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
)

// ID identifies a YubiKey device aggregate instance.
type ID uuid.UUID

// NewID returns a fresh time-ordered device id.
func NewID() ID { return ID(idkit.New()) }

// ParseID parses a textual id into an ID.
func ParseID(s string) (ID, error) {
	u, err := idkit.Parse(s)
	return ID(u), err
}

func (id ID) String() string { return uuid.UUID(id).String() }

// PivSlot identifies a PIV certificate/key slot on the device.
type PivSlot string

const (
	PivSlotAuthentication PivSlot = "9a" // PIV Authentication
	PivSlotSignature      PivSlot = "9c" // Digital Signature
	PivSlotKeyManagement  PivSlot = "9d" // Key Management
	PivSlotCardAuth       PivSlot = "9e" // Card Authentication
)

// RetirementReason records why a device left service.
type RetirementReason string

const (
	RetirementEndOfLife  RetirementReason = "end_of_life"
	RetirementLost       RetirementReason = "lost"
	RetirementStolen     RetirementReason = "stolen"
	RetirementCompromised RetirementReason = "compromised"
	RetirementReplaced   RetirementReason = "replaced"
)

// SlotAssignment maps a PIV slot to the key id provisioned into it.
type SlotAssignment struct {
	Slot  PivSlot
	KeyID string
}
