package person

import "time"

// EventType discriminates the person event taxonomy on the wire.
type EventType string

const (
	EventTypeCreated       EventType = "PersonCreated"
	EventTypeActivated     EventType = "PersonActivated"
	EventTypeSuspended     EventType = "PersonSuspended"
	EventTypeDeactivated   EventType = "PersonDeactivated"
	EventTypeArchived      EventType = "PersonArchived"
	EventTypeRolesUpdated  EventType = "PersonRolesUpdated"
	EventTypeActivityRecorded EventType = "PersonActivityRecorded"
)

// Event is the sealed taxonomy of events a person aggregate emits.
type Event interface {
	AggregateID() string
	EventType() string
	isPersonEvent()
}

type baseEvent struct {
	PersonID ID
}

func (b baseEvent) AggregateID() string { return b.PersonID.String() }
func (baseEvent) isPersonEvent()        {}

// Created is emitted when a person identity is first established.
//
// CreatedBy is the legacy string-actor field, kept for readers of older
// records; CreatedByActor is the typed replacement. New writers should
// use NewCreated, which populates both.
type Created struct {
	baseEvent
	CreatedAt      time.Time
	CreatedBy      string
	CreatedByActor *Actor
}

func (Created) EventType() string { return string(EventTypeCreated) }

// NewCreated constructs a Created event, populating both the legacy
// string-actor field and its typed replacement from actor.
func NewCreated(personID ID, createdAt time.Time, actor Actor) Created {
	return Created{
		baseEvent:      baseEvent{PersonID: personID},
		CreatedAt:      createdAt,
		CreatedBy:      actor.Subject,
		CreatedByActor: &actor,
	}
}

// Actor returns the typed actor who created the person: the typed field
// when present, otherwise the legacy string field parsed into an Actor.
func (c Created) Actor() Actor {
	if c.CreatedByActor != nil {
		return *c.CreatedByActor
	}
	return actorFromLegacy(c.CreatedBy)
}

// Activated is emitted when roles are assigned and the person becomes Active.
type Activated struct {
	baseEvent
	Roles       []string
	ActivatedAt time.Time
}

func (Activated) EventType() string { return string(EventTypeActivated) }

// Suspended is emitted when an Active person's access is temporarily
// revoked. SuspendedBy is the legacy string-actor field; SuspendedByActor
// is its typed replacement (see NewSuspended and Actor).
type Suspended struct {
	baseEvent
	Reason           string
	SuspendedAt      time.Time
	SuspendedBy      string
	SuspendedByActor *Actor
	PreviousRoles    []string
}

func (Suspended) EventType() string { return string(EventTypeSuspended) }

// NewSuspended constructs a Suspended event, populating both the legacy
// string-actor field and its typed replacement from actor.
func NewSuspended(personID ID, reason string, suspendedAt time.Time, actor Actor, previousRoles []string) Suspended {
	return Suspended{
		baseEvent:        baseEvent{PersonID: personID},
		Reason:           reason,
		SuspendedAt:      suspendedAt,
		SuspendedBy:      actor.Subject,
		SuspendedByActor: &actor,
		PreviousRoles:    previousRoles,
	}
}

// Actor returns the typed actor who suspended the person: the typed
// field when present, otherwise the legacy string field parsed into an
// Actor.
func (s Suspended) Actor() Actor {
	if s.SuspendedByActor != nil {
		return *s.SuspendedByActor
	}
	return actorFromLegacy(s.SuspendedBy)
}

// Deactivated is emitted when access is permanently revoked.
// DeactivatedBy is the legacy string-actor field; DeactivatedByActor is
// its typed replacement (see NewDeactivated and Actor).
type Deactivated struct {
	baseEvent
	Reason             string
	DeactivatedAt      time.Time
	DeactivatedBy      string
	DeactivatedByActor *Actor
}

func (Deactivated) EventType() string { return string(EventTypeDeactivated) }

// NewDeactivated constructs a Deactivated event, populating both the
// legacy string-actor field and its typed replacement from actor.
func NewDeactivated(personID ID, reason string, deactivatedAt time.Time, actor Actor) Deactivated {
	return Deactivated{
		baseEvent:          baseEvent{PersonID: personID},
		Reason:             reason,
		DeactivatedAt:      deactivatedAt,
		DeactivatedBy:      actor.Subject,
		DeactivatedByActor: &actor,
	}
}

// Actor returns the typed actor who deactivated the person: the typed
// field when present, otherwise the legacy string field parsed into an
// Actor.
func (d Deactivated) Actor() Actor {
	if d.DeactivatedByActor != nil {
		return *d.DeactivatedByActor
	}
	return actorFromLegacy(d.DeactivatedBy)
}

// Archived is emitted when a Deactivated person is archived for
// retention. ArchivedBy is the legacy string-actor field; ArchivedByActor
// is its typed replacement (see NewArchived and Actor).
type Archived struct {
	baseEvent
	ArchivedAt        time.Time
	ArchivedBy        string
	ArchivedByActor   *Actor
	RetentionPolicyID *string
}

func (Archived) EventType() string { return string(EventTypeArchived) }

// NewArchived constructs an Archived event, populating both the legacy
// string-actor field and its typed replacement from actor.
func NewArchived(personID ID, archivedAt time.Time, actor Actor, retentionPolicyID *string) Archived {
	return Archived{
		baseEvent:         baseEvent{PersonID: personID},
		ArchivedAt:        archivedAt,
		ArchivedBy:        actor.Subject,
		ArchivedByActor:   &actor,
		RetentionPolicyID: retentionPolicyID,
	}
}

// Actor returns the typed actor who archived the person: the typed field
// when present, otherwise the legacy string field parsed into an Actor.
func (a Archived) Actor() Actor {
	if a.ArchivedByActor != nil {
		return *a.ArchivedByActor
	}
	return actorFromLegacy(a.ArchivedBy)
}

// RolesUpdated is emitted when an Active person's role set changes.
type RolesUpdated struct {
	baseEvent
	NewRoles []string
}

func (RolesUpdated) EventType() string { return string(EventTypeRolesUpdated) }

// ActivityRecorded is emitted when an Active person's last-activity timestamp advances.
type ActivityRecorded struct {
	baseEvent
	ActivityAt time.Time
}

func (ActivityRecorded) EventType() string { return string(EventTypeActivityRecorded) }
