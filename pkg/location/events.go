package location

import "time"

// EventType discriminates the location event taxonomy on the wire.
type EventType string

const (
	EventTypePlanned         EventType = "LocationPlanned"
	EventTypeActivated       EventType = "LocationActivated"
	EventTypeDecommissioned  EventType = "LocationDecommissioned"
	EventTypeArchived        EventType = "LocationArchived"
	EventTypeAccessGranted   EventType = "LocationAccessGranted"
	EventTypeAccessRevoked   EventType = "LocationAccessRevoked"
)

// Event is the sealed taxonomy of events a location aggregate emits.
type Event interface {
	AggregateID() string
	EventType() string
	isLocationEvent()
}

type baseEvent struct {
	LocationID ID
}

func (b baseEvent) AggregateID() string { return b.LocationID.String() }
func (baseEvent) isLocationEvent()      {}

// Planned is emitted when a storage location is first planned.
type Planned struct {
	baseEvent
	PlannedAt    time.Time
	PlannedBy    string
	LocationType Type
}

func (Planned) EventType() string { return string(EventTypePlanned) }

// Activated is emitted when a Planned location receives its initial access grants.
type Activated struct {
	baseEvent
	ActivatedAt         time.Time
	InitialAccessGrants []AccessGrant
}

func (Activated) EventType() string { return string(EventTypeActivated) }

// Decommissioned is emitted when an Active location stops accepting new assets.
type Decommissioned struct {
	baseEvent
	Reason            string
	DecommissionedAt  time.Time
	DecommissionedBy  string
	RemainingAssets   uint64
}

func (Decommissioned) EventType() string { return string(EventTypeDecommissioned) }

// Archived is emitted when a Decommissioned location has had all assets removed.
type Archived struct {
	baseEvent
	ArchivedAt   time.Time
	ArchivedBy   string
	FinalAuditID *string
}

func (Archived) EventType() string { return string(EventTypeArchived) }

// AccessGranted is emitted when a person is granted access to an Active location.
type AccessGranted struct {
	baseEvent
	Grant AccessGrant
}

func (AccessGranted) EventType() string { return string(EventTypeAccessGranted) }

// AccessRevoked is emitted when a person's access to an Active location is revoked.
type AccessRevoked struct {
	baseEvent
	PersonID string
}

func (AccessRevoked) EventType() string { return string(EventTypeAccessRevoked) }
