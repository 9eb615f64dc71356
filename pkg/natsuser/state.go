package natsuser

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
	KindReactivated Kind = "reactivated"
	KindDeleted     Kind = "deleted"
)

// State is the sealed lifecycle state of a NATS user aggregate.
type State interface {
	Kind() Kind
	IsTerminal() bool
	Description() string
}

var transitions = map[Kind]map[Kind]bool{
	KindCreated:     {KindActive: true},
	KindActive:      {KindSuspended: true, KindDeleted: true},
	KindSuspended:   {KindReactivated: true, KindDeleted: true},
	KindReactivated: {KindActive: true, KindDeleted: true},
	KindDeleted:     {},
}

// CanTransitionTo reports whether target is a legal successor of from.
func CanTransitionTo(from, target Kind) bool {
	return transitions[from][target]
}

// CreatedState: established for a person under an account, permissions not
// yet set.
type CreatedState struct {
	CreatedBy string
	AccountID string
	PersonID  string
}

func (CreatedState) Kind() Kind          { return KindCreated }
func (CreatedState) IsTerminal() bool    { return false }
func (CreatedState) Description() string { return "Created (awaiting permissions)" }

// ActiveState: has permissions and can connect/pub/sub.
type ActiveState struct {
	Permissions    Permissions
	ActivatedAt    time.Time
	LastConnection *time.Time
}

func (ActiveState) Kind() Kind          { return KindActive }
func (ActiveState) IsTerminal() bool    { return false }
func (ActiveState) Description() string { return "Active (can connect and pub/sub)" }

// SuspendedState: temporarily disabled.
type SuspendedState struct {
	Reason      string
	SuspendedAt time.Time
	SuspendedBy string
}

func (SuspendedState) Kind() Kind          { return KindSuspended }
func (SuspendedState) IsTerminal() bool    { return false }
func (SuspendedState) Description() string { return "Suspended (temporarily disabled)" }

// ReactivatedState: permissions restored after suspension, distinct from
// Active until the user reconnects under normal operation.
type ReactivatedState struct {
	Permissions   Permissions
	ReactivatedAt time.Time
	ReactivatedBy string
}

func (ReactivatedState) Kind() Kind          { return KindReactivated }
func (ReactivatedState) IsTerminal() bool    { return false }
func (ReactivatedState) Description() string { return "Reactivated (permissions restored)" }

// DeletedState: permanently removed. Terminal.
type DeletedState struct {
	DeletedAt time.Time
	DeletedBy string
	Reason    string
}

func (DeletedState) Kind() Kind          { return KindDeleted }
func (DeletedState) IsTerminal() bool    { return true }
func (DeletedState) Description() string { return "Deleted (TERMINAL - permanently removed)" }

// IsActive reports whether the user can connect, true for both Active and
// Reactivated.
func IsActive(s State) bool {
	return s.Kind() == KindActive || s.Kind() == KindReactivated
}

func CanConnect(s State) bool   { return IsActive(s) }
func CanPubSub(s State) bool    { return IsActive(s) }
func CanBeModified(s State) bool { return !s.IsTerminal() }
func IsSuspended(s State) bool  { return s.Kind() == KindSuspended }
func IsDeleted(s State) bool    { return s.Kind() == KindDeleted }

// Activate sets permissions, transitioning Created -> Active or
// Reactivated -> Active.
func Activate(s State, permissions Permissions, activatedAt time.Time) (State, error) {
	switch s.Kind() {
	case KindCreated, KindReactivated:
		return ActiveState{Permissions: permissions, ActivatedAt: activatedAt}, nil
	default:
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_user", Current: s.Description(), Event: "activate",
			Reason: "can only activate from Created or Reactivated state",
		}
	}
}

// Suspend transitions an Active user into Suspended.
func Suspend(s State, reason string, suspendedAt time.Time, suspendedBy string) (State, error) {
	if s.Kind() != KindActive {
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_user", Current: s.Description(), Event: "suspend",
			Reason: "can only suspend Active users",
		}
	}
	return SuspendedState{Reason: reason, SuspendedAt: suspendedAt, SuspendedBy: suspendedBy}, nil
}

// Reactivate transitions a Suspended user into Reactivated with a restored
// permission set.
func Reactivate(s State, permissions Permissions, reactivatedAt time.Time, reactivatedBy string) (State, error) {
	if s.Kind() != KindSuspended {
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_user", Current: s.Description(), Event: "reactivate",
			Reason: "can only reactivate Suspended users",
		}
	}
	return ReactivatedState{Permissions: permissions, ReactivatedAt: reactivatedAt, ReactivatedBy: reactivatedBy}, nil
}

// Delete transitions an Active, Suspended, or Reactivated user into Deleted.
func Delete(s State, reason string, deletedAt time.Time, deletedBy string) (State, error) {
	if s.IsTerminal() {
		return nil, cimerrors.TerminalState{EntityType: "nats_user", Current: s.Description(), Reason: "user already deleted"}
	}
	switch s.Kind() {
	case KindActive, KindSuspended, KindReactivated:
		return DeletedState{DeletedAt: deletedAt, DeletedBy: deletedBy, Reason: reason}, nil
	default:
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_user", Current: s.Description(), Event: "delete",
			Reason: "can only delete Active, Suspended, or Reactivated users",
		}
	}
}

// RecordConnection updates the last-connection timestamp for an Active user.
func RecordConnection(s State, connectedAt time.Time) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_user", Current: s.Description(), Event: "record_connection",
			Reason: "can only record connections for Active users",
		}
	}
	connectedAtCopy := connectedAt
	active.LastConnection = &connectedAtCopy
	return active, nil
}
