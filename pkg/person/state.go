package person

import (
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
)

// Kind discriminates concrete State implementations for transition-table
// lookups and serialization.
type Kind string

const (
	KindCreated     Kind = "created"
	KindActive      Kind = "active"
	KindSuspended   Kind = "suspended"
	KindDeactivated Kind = "deactivated"
	KindArchived    Kind = "archived"
)

// State is the sealed lifecycle state of a person aggregate.
type State interface {
	Kind() Kind
	IsTerminal() bool
	Description() string
}

var transitions = map[Kind]map[Kind]bool{
	KindCreated:     {KindActive: true},
	KindActive:      {KindSuspended: true, KindDeactivated: true},
	KindSuspended:   {KindActive: true, KindDeactivated: true},
	KindDeactivated: {KindArchived: true},
	KindArchived:    {},
}

// CanTransitionTo reports whether target is a legal successor of from.
func CanTransitionTo(from, target Kind) bool {
	return transitions[from][target]
}

// CreatedState: person established but not yet assigned any roles.
type CreatedState struct {
	CreatedAt time.Time
	CreatedBy string
}

func (CreatedState) Kind() Kind          { return KindCreated }
func (CreatedState) IsTerminal() bool    { return false }
func (CreatedState) Description() string { return "Created (awaiting role assignment)" }

// ActiveState: has assigned roles and can perform actions.
type ActiveState struct {
	Roles        []string
	ActivatedAt  time.Time
	LastActivity *time.Time
}

func (ActiveState) Kind() Kind          { return KindActive }
func (ActiveState) IsTerminal() bool    { return false }
func (ActiveState) Description() string { return "Active (has roles and permissions)" }

// SuspendedState: temporarily revoked; restorable to Active.
type SuspendedState struct {
	Reason        string
	SuspendedAt   time.Time
	SuspendedBy   string
	PreviousRoles []string
}

func (SuspendedState) Kind() Kind          { return KindSuspended }
func (SuspendedState) IsTerminal() bool    { return false }
func (SuspendedState) Description() string { return "Suspended (temporarily revoked access)" }

// DeactivatedState: permanently revoked (employment ended, etc).
type DeactivatedState struct {
	Reason        string
	DeactivatedAt time.Time
	DeactivatedBy string
}

func (DeactivatedState) Kind() Kind          { return KindDeactivated }
func (DeactivatedState) IsTerminal() bool    { return false }
func (DeactivatedState) Description() string { return "Deactivated (permanently revoked access)" }

// ArchivedState: long-term retention. Terminal.
type ArchivedState struct {
	ArchivedAt        time.Time
	ArchivedBy        string
	RetentionPolicyID *string
}

func (ArchivedState) Kind() Kind          { return KindArchived }
func (ArchivedState) IsTerminal() bool    { return true }
func (ArchivedState) Description() string { return "Archived (long-term retention)" }

func IsActive(s State) bool             { return s.Kind() == KindActive }
func CanPerformActions(s State) bool    { return s.Kind() == KindActive }
func CanAssignRoles(s State) bool       { return s.Kind() == KindCreated || s.Kind() == KindActive }
func CanGenerateKeys(s State) bool      { return s.Kind() == KindActive }
func CanEstablishRelationships(s State) bool {
	return s.Kind() != KindDeactivated && s.Kind() != KindArchived
}
func CanBeModified(s State) bool { return !s.IsTerminal() }
func IsSuspended(s State) bool   { return s.Kind() == KindSuspended }
func IsDeactivated(s State) bool { return s.Kind() == KindDeactivated }

// Activate assigns roles, transitioning Created -> Active or reactivating
// from Suspended. Reactivation from Suspended restores PreviousRoles unless
// the caller supplies an explicit non-empty roles set.
func Activate(s State, roles []string, at time.Time) (State, error) {
	switch st := s.(type) {
	case CreatedState:
		if len(roles) == 0 {
			return nil, cimerrors.ValidationFailed{EntityType: "person", Reason: "cannot activate person without roles"}
		}
		return ActiveState{Roles: roles, ActivatedAt: at}, nil
	case SuspendedState:
		effective := roles
		if len(effective) == 0 {
			effective = st.PreviousRoles
		}
		return ActiveState{Roles: effective, ActivatedAt: at}, nil
	default:
		return nil, cimerrors.InvalidTransition{
			EntityType: "person", Current: s.Description(), Event: "activate",
			Reason: "can only activate from Created or Suspended state",
		}
	}
}

// Suspend transitions an Active person into Suspended, retaining their
// current roles so Activate can restore them later.
func Suspend(s State, reason string, at time.Time, suspendedBy string) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "person", Current: s.Description(), Event: "suspend",
			Reason: "can only suspend Active persons",
		}
	}
	return SuspendedState{Reason: reason, SuspendedAt: at, SuspendedBy: suspendedBy, PreviousRoles: active.Roles}, nil
}

// Deactivate transitions an Active or Suspended person into Deactivated.
func Deactivate(s State, reason string, at time.Time, deactivatedBy string) (State, error) {
	if s.Kind() != KindActive && s.Kind() != KindSuspended {
		return nil, cimerrors.InvalidTransition{
			EntityType: "person", Current: s.Description(), Event: "deactivate",
			Reason: "can only deactivate Active or Suspended persons",
		}
	}
	return DeactivatedState{Reason: reason, DeactivatedAt: at, DeactivatedBy: deactivatedBy}, nil
}

// Archive transitions a Deactivated person into Archived.
func Archive(s State, at time.Time, archivedBy string, retentionPolicyID *string) (State, error) {
	if s.Kind() != KindDeactivated {
		return nil, cimerrors.InvalidTransition{
			EntityType: "person", Current: s.Description(), Event: "archive",
			Reason: "can only archive Deactivated persons",
		}
	}
	return ArchivedState{ArchivedAt: at, ArchivedBy: archivedBy, RetentionPolicyID: retentionPolicyID}, nil
}

// RecordActivity stamps the last-activity time for an Active person.
func RecordActivity(s State, at time.Time) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "person", Current: s.Description(), Event: "record_activity",
			Reason: "can only record activity for Active persons",
		}
	}
	active.LastActivity = &at
	return active, nil
}

// UpdateRoles replaces an Active person's role set. The set must stay
// non-empty; use Suspend or Deactivate to remove all access.
func UpdateRoles(s State, newRoles []string) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "person", Current: s.Description(), Event: "update_roles",
			Reason: "can only update roles for Active persons",
		}
	}
	if len(newRoles) == 0 {
		return nil, cimerrors.ValidationFailed{EntityType: "person", Reason: "cannot remove all roles - use suspend or deactivate instead"}
	}
	active.Roles = newRoles
	return active, nil
}
