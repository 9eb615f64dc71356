package natsaccount

import "time"

// EventType discriminates the NATS account event taxonomy on the wire.
type EventType string

const (
	EventTypeCreated     EventType = "NatsAccountCreated"
	EventTypeActivated   EventType = "NatsAccountActivated"
	EventTypeSuspended   EventType = "NatsAccountSuspended"
	EventTypeReactivated EventType = "NatsAccountReactivated"
	EventTypeDeleted     EventType = "NatsAccountDeleted"
	EventTypeUserAdded   EventType = "NatsAccountUserAdded"
)

// Event is the sealed taxonomy of events a NATS account aggregate emits.
type Event interface {
	AggregateID() string
	EventType() string
	isNatsAccountEvent()
}

type baseEvent struct {
	AccountID ID
}

func (b baseEvent) AggregateID() string { return b.AccountID.String() }
func (baseEvent) isNatsAccountEvent()   {}

// Created is emitted when an account is first established under an operator.
type Created struct {
	baseEvent
	CreatedAt  time.Time
	CreatedBy  string
	OperatorID string
}

func (Created) EventType() string { return string(EventTypeCreated) }

// Activated is emitted when permissions are set and the account becomes usable.
type Activated struct {
	baseEvent
	Permissions Permissions
	ActivatedAt time.Time
}

func (Activated) EventType() string { return string(EventTypeActivated) }

// Suspended is emitted when an Active account is administratively suspended.
type Suspended struct {
	baseEvent
	Reason      string
	SuspendedAt time.Time
	SuspendedBy string
}

func (Suspended) EventType() string { return string(EventTypeSuspended) }

// Reactivated is emitted when a Suspended account is given a fresh
// permission set, distinct from Activated's initial set.
type Reactivated struct {
	baseEvent
	Permissions   Permissions
	ReactivatedAt time.Time
	ReactivatedBy string
}

func (Reactivated) EventType() string { return string(EventTypeReactivated) }

// Deleted is emitted when an account is permanently removed.
type Deleted struct {
	baseEvent
	DeletedAt time.Time
	DeletedBy string
	Reason    string
}

func (Deleted) EventType() string { return string(EventTypeDeleted) }

// UserAdded is emitted when a user is created under an Active or Reactivated account.
type UserAdded struct {
	baseEvent
	UserID string
}

func (UserAdded) EventType() string { return string(EventTypeUserAdded) }
