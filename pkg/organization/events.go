package organization

import "time"

// EventType discriminates the organization event taxonomy on the wire.
type EventType string

const (
	EventTypeDrafted    EventType = "OrganizationDrafted"
	EventTypeActivated  EventType = "OrganizationActivated"
	EventTypeSuspended  EventType = "OrganizationSuspended"
	EventTypeReactivated EventType = "OrganizationReactivated"
	EventTypeDissolved  EventType = "OrganizationDissolved"
	EventTypeUnitAdded  EventType = "OrganizationUnitAdded"
	EventTypeMemberAdded EventType = "OrganizationMemberAdded"
)

// Event is the sealed taxonomy of events an organization aggregate emits.
type Event interface {
	AggregateID() string
	EventType() string
	isOrganizationEvent()
}

type baseEvent struct {
	OrganizationID ID
}

func (b baseEvent) AggregateID() string { return b.OrganizationID.String() }
func (baseEvent) isOrganizationEvent()  {}

// Drafted is emitted when an organization is first created.
type Drafted struct {
	baseEvent
	CreatedAt time.Time
	CreatedBy string
}

func (Drafted) EventType() string { return string(EventTypeDrafted) }

// Activated is emitted when a Draft organization receives its first unit or member.
type Activated struct {
	baseEvent
	ActivatedAt time.Time
	Units       []string
	Members     []string
}

func (Activated) EventType() string { return string(EventTypeActivated) }

// Suspended is emitted when an Active organization is administratively suspended.
type Suspended struct {
	baseEvent
	Reason      string
	SuspendedAt time.Time
	SuspendedBy string
}

func (Suspended) EventType() string { return string(EventTypeSuspended) }

// Reactivated is emitted when a Suspended organization returns to Active.
type Reactivated struct {
	baseEvent
	ReactivatedAt time.Time
}

func (Reactivated) EventType() string { return string(EventTypeReactivated) }

// Dissolved is emitted when an organization is permanently dissolved.
type Dissolved struct {
	baseEvent
	DissolvedAt     time.Time
	DissolvedBy     string
	Reason          string
	SuccessorOrgID  *string
}

func (Dissolved) EventType() string { return string(EventTypeDissolved) }

// UnitAdded is emitted when an organizational unit is attached to an Active organization.
type UnitAdded struct {
	baseEvent
	UnitID string
}

func (UnitAdded) EventType() string { return string(EventTypeUnitAdded) }

// MemberAdded is emitted when a person is added to an Active organization.
type MemberAdded struct {
	baseEvent
	PersonID string
}

func (MemberAdded) EventType() string { return string(EventTypeMemberAdded) }
