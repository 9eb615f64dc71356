package policy

import "time"

// EventType discriminates the policy event taxonomy on the wire.
type EventType string

const (
	EventTypeDrafted     EventType = "PolicyDrafted"
	EventTypeActivated   EventType = "PolicyActivated"
	EventTypeModified    EventType = "PolicyModified"
	EventTypeReactivated EventType = "PolicyReactivated"
	EventTypeSuspended   EventType = "PolicySuspended"
	EventTypeRevoked     EventType = "PolicyRevoked"
)

// Event is the sealed taxonomy of events a policy aggregate emits.
type Event interface {
	AggregateID() string
	EventType() string
	isPolicyEvent()
}

type baseEvent struct {
	PolicyID ID
}

func (b baseEvent) AggregateID() string { return b.PolicyID.String() }
func (baseEvent) isPolicyEvent()        {}

// Drafted is emitted when a policy is first authored for review.
type Drafted struct {
	baseEvent
	AuthorID     string
	ReviewStatus ReviewStatus
}

func (Drafted) EventType() string { return string(EventTypeDrafted) }

// Activated is emitted when an approved Draft or a finalized Modified
// policy becomes enforced.
type Activated struct {
	baseEvent
	ActivatedAt time.Time
	Claims      []Claim
	Conditions  []Condition
}

func (Activated) EventType() string { return string(EventTypeActivated) }

// Modified is emitted when an Active policy's claims or conditions change.
type Modified struct {
	baseEvent
	ModifiedAt      time.Time
	ModifiedBy      string
	PreviousVersion string
	Changes         []Change
}

func (Modified) EventType() string { return string(EventTypeModified) }

// Reactivated is emitted when a Suspended policy returns to Active.
type Reactivated struct {
	baseEvent
	ReactivatedAt time.Time
}

func (Reactivated) EventType() string { return string(EventTypeReactivated) }

// Suspended is emitted when an Active policy is temporarily suspended.
type Suspended struct {
	baseEvent
	Reason      string
	SuspendedAt time.Time
	SuspendedBy string
}

func (Suspended) EventType() string { return string(EventTypeSuspended) }

// Revoked is emitted when a policy is permanently revoked from any non-terminal state.
type Revoked struct {
	baseEvent
	Reason             string
	RevokedAt          time.Time
	RevokedBy          string
	ReplacementPolicyID *string
}

func (Revoked) EventType() string { return string(EventTypeRevoked) }
