package key

import "time"

// EventType discriminates the key event taxonomy on the wire.
type EventType string

const (
	EventTypeGenerated         EventType = "KeyGenerated"
	EventTypeImported          EventType = "KeyImported"
	EventTypeActivated         EventType = "KeyActivated"
	EventTypeRotationInitiated EventType = "KeyRotationInitiated"
	EventTypeRotationCompleted EventType = "KeyRotationCompleted"
	EventTypeRevoked           EventType = "KeyRevoked"
	EventTypeExpired           EventType = "KeyExpired"
	EventTypeArchived          EventType = "KeyArchived"
)

// Event is the sealed taxonomy of events a key aggregate emits.
type Event interface {
	AggregateID() string
	EventType() string
	isKeyEvent()
}

type baseEvent struct {
	KeyID ID
}

func (b baseEvent) AggregateID() string { return b.KeyID.String() }
func (baseEvent) isKeyEvent()           {}

// Generated is emitted when a key is generated in place (not imported).
type Generated struct {
	baseEvent
	Algorithm   Algorithm
	GeneratedAt time.Time
	GeneratedBy string // person.ID, rendered as string to avoid an import cycle
}

func (Generated) EventType() string { return string(EventTypeGenerated) }

// Imported is emitted when a key's material is brought in from an external source.
type Imported struct {
	baseEvent
	Source     ImportSource
	ImportedAt time.Time
	ImportedBy string
}

func (Imported) EventType() string { return string(EventTypeImported) }

// Activated is emitted when a Generated or Imported key becomes usable.
type Activated struct {
	baseEvent
	ActivatedAt time.Time
}

func (Activated) EventType() string { return string(EventTypeActivated) }

// RotationInitiated is emitted when an Active key begins rotation.
type RotationInitiated struct {
	baseEvent
	NewKeyID    ID
	InitiatedAt time.Time
	InitiatedBy string
}

func (RotationInitiated) EventType() string { return string(EventTypeRotationInitiated) }

// RotationCompleted is emitted when rotation finishes and the new key takes over.
type RotationCompleted struct {
	baseEvent
	NewKeyID  ID
	RotatedAt time.Time
	RotatedBy string
}

func (RotationCompleted) EventType() string { return string(EventTypeRotationCompleted) }

// Revoked is emitted when a key is revoked from any non-terminal state.
type Revoked struct {
	baseEvent
	Reason    RevocationReason
	RevokedAt time.Time
	RevokedBy string
}

func (Revoked) EventType() string { return string(EventTypeRevoked) }

// Expired is emitted when an Active key's validity period elapses.
type Expired struct {
	baseEvent
	ExpiredAt time.Time
	Reason    ExpiryReason
}

func (Expired) EventType() string { return string(EventTypeExpired) }

// Archived is emitted when a Rotated, Revoked, or Expired key is archived.
type Archived struct {
	baseEvent
	ArchivedAt     time.Time
	ArchivedBy     string
	RetentionPolicyID *string
	PreviousState  ArchivedFromState
}

func (Archived) EventType() string { return string(EventTypeArchived) }
