package natsoperator

import "time"

// EventType discriminates the NATS operator event taxonomy on the wire.
type EventType string

const (
	EventTypeCreated       EventType = "NatsOperatorCreated"
	EventTypeKeysGenerated EventType = "NatsOperatorKeysGenerated"
	EventTypeActivated     EventType = "NatsOperatorActivated"
	EventTypeSuspended     EventType = "NatsOperatorSuspended"
	EventTypeReactivated   EventType = "NatsOperatorReactivated"
	EventTypeRevoked       EventType = "NatsOperatorRevoked"
	EventTypeAccountAdded  EventType = "NatsOperatorAccountAdded"
)

// Event is the sealed taxonomy of events a NATS operator aggregate emits.
type Event interface {
	AggregateID() string
	EventType() string
	isNatsOperatorEvent()
}

type baseEvent struct {
	OperatorID ID
}

func (b baseEvent) AggregateID() string { return b.OperatorID.String() }
func (baseEvent) isNatsOperatorEvent()  {}

// Created is emitted when a NATS operator identity is first established.
type Created struct {
	baseEvent
	CreatedAt     time.Time
	CreatedBy     string
	OperatorName  string
}

func (Created) EventType() string { return string(EventTypeCreated) }

// KeysGenerated is emitted when the operator's signing keypair is generated.
type KeysGenerated struct {
	baseEvent
	SigningKeyID string
	PublicKey    string
	GeneratedAt  time.Time
}

func (KeysGenerated) EventType() string { return string(EventTypeKeysGenerated) }

// Activated is emitted when the operator JWT is signed and the operator can
// begin creating accounts.
type Activated struct {
	baseEvent
	ActivatedAt time.Time
	JWTIssuedAt time.Time
}

func (Activated) EventType() string { return string(EventTypeActivated) }

// Suspended is emitted when an Active operator is administratively suspended.
type Suspended struct {
	baseEvent
	Reason      string
	SuspendedAt time.Time
	SuspendedBy string
}

func (Suspended) EventType() string { return string(EventTypeSuspended) }

// Reactivated is emitted when a Suspended operator returns to Active.
type Reactivated struct {
	baseEvent
	ReactivatedAt time.Time
}

func (Reactivated) EventType() string { return string(EventTypeReactivated) }

// Revoked is emitted when an operator is permanently revoked.
type Revoked struct {
	baseEvent
	RevokedAt            time.Time
	RevokedBy            string
	Reason               string
	SuccessorOperatorID  *string
}

func (Revoked) EventType() string { return string(EventTypeRevoked) }

// AccountAdded is emitted when an account is created under an Active operator.
type AccountAdded struct {
	baseEvent
	AccountID string
}

func (AccountAdded) EventType() string { return string(EventTypeAccountAdded) }
