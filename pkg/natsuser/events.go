package natsuser

import "time"

// EventType discriminates the NATS user event taxonomy on the wire.
type EventType string

const (
	EventTypeCreated           EventType = "NatsUserCreated"
	EventTypeActivated         EventType = "NatsUserActivated"
	EventTypeSuspended         EventType = "NatsUserSuspended"
	EventTypeReactivated       EventType = "NatsUserReactivated"
	EventTypeDeleted           EventType = "NatsUserDeleted"
	EventTypeConnectionRecorded EventType = "NatsUserConnectionRecorded"
)

// Event is the sealed taxonomy of events a NATS user aggregate emits.
type Event interface {
	AggregateID() string
	EventType() string
	isNatsUserEvent()
}

type baseEvent struct {
	UserID ID
}

func (b baseEvent) AggregateID() string { return b.UserID.String() }
func (baseEvent) isNatsUserEvent()      {}

// Created is emitted when a user is first established for a person under
// an account.
type Created struct {
	baseEvent
	CreatedBy string
	AccountID string
	PersonID  string
}

func (Created) EventType() string { return string(EventTypeCreated) }

// Activated is emitted when permissions are set and the user can connect.
type Activated struct {
	baseEvent
	Permissions Permissions
	ActivatedAt time.Time
}

func (Activated) EventType() string { return string(EventTypeActivated) }

// Suspended is emitted when an Active user is administratively suspended.
type Suspended struct {
	baseEvent
	Reason      string
	SuspendedAt time.Time
	SuspendedBy string
}

func (Suspended) EventType() string { return string(EventTypeSuspended) }

// Reactivated is emitted when a Suspended user is given a fresh permission set.
type Reactivated struct {
	baseEvent
	Permissions   Permissions
	ReactivatedAt time.Time
	ReactivatedBy string
}

func (Reactivated) EventType() string { return string(EventTypeReactivated) }

// Deleted is emitted when a user is permanently removed.
type Deleted struct {
	baseEvent
	DeletedAt time.Time
	DeletedBy string
	Reason    string
}

func (Deleted) EventType() string { return string(EventTypeDeleted) }

// ConnectionRecorded is emitted when an Active user connects to NATS.
type ConnectionRecorded struct {
	baseEvent
	ConnectedAt time.Time
}

func (ConnectionRecorded) EventType() string { return string(EventTypeConnectionRecorded) }
