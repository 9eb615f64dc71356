package relationship

import "time"

// EventType discriminates the relationship event taxonomy on the wire.
type EventType string

const (
	EventTypeProposed    EventType = "RelationshipProposed"
	EventTypeAccepted    EventType = "RelationshipAccepted"
	EventTypeModified    EventType = "RelationshipModified"
	EventTypeSuspended   EventType = "RelationshipSuspended"
	EventTypeReactivated EventType = "RelationshipReactivated"
	EventTypeTerminated  EventType = "RelationshipTerminated"
	EventTypeArchived    EventType = "RelationshipArchived"
)

// Event is the sealed taxonomy of events a relationship aggregate emits.
type Event interface {
	AggregateID() string
	EventType() string
	isRelationshipEvent()
}

type baseEvent struct {
	RelationshipID ID
}

func (b baseEvent) AggregateID() string { return b.RelationshipID.String() }
func (baseEvent) isRelationshipEvent()  {}

// Proposed is emitted when a relationship between two entities is proposed.
type Proposed struct {
	baseEvent
	ProposedAt           time.Time
	ProposedBy           string
	PendingApprovalFrom  *string
}

func (Proposed) EventType() string { return string(EventTypeProposed) }

// Accepted is emitted when a Proposed relationship is accepted and becomes Active.
type Accepted struct {
	baseEvent
	ValidFrom        time.Time
	ValidUntil       *time.Time
	RelationshipType string
	Metadata         Metadata
}

func (Accepted) EventType() string { return string(EventTypeAccepted) }

// Modified is emitted when an Active relationship's parameters change.
type Modified struct {
	baseEvent
	ModifiedAt time.Time
	ModifiedBy string
	Changes    []Change
}

func (Modified) EventType() string { return string(EventTypeModified) }

// Suspended is emitted when an Active relationship is temporarily suspended.
type Suspended struct {
	baseEvent
	Reason      string
	SuspendedAt time.Time
	SuspendedBy string
}

func (Suspended) EventType() string { return string(EventTypeSuspended) }

// Reactivated is emitted when a Suspended relationship returns to Active.
type Reactivated struct {
	baseEvent
	ReactivatedAt time.Time
}

func (Reactivated) EventType() string { return string(EventTypeReactivated) }

// Terminated is emitted when a relationship is permanently ended.
type Terminated struct {
	baseEvent
	Reason       string
	TerminatedAt time.Time
	TerminatedBy string
}

func (Terminated) EventType() string { return string(EventTypeTerminated) }

// Archived is emitted when a Terminated relationship is archived after retention.
type Archived struct {
	baseEvent
	ArchivedAt        time.Time
	ArchivedBy        string
	RetentionPolicyID *string
}

func (Archived) EventType() string { return string(EventTypeArchived) }
