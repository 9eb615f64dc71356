package natsaccount

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

// State is the sealed lifecycle state of a NATS account aggregate.
type State interface {
	Kind() Kind
	IsTerminal() bool
	Description() string
}

var transitions = map[Kind]map[Kind]bool{
	KindCreated:     {KindActive: true}, // Created has no direct path to Deleted
	KindActive:      {KindSuspended: true, KindDeleted: true},
	KindSuspended:   {KindReactivated: true, KindDeleted: true},
	KindReactivated: {KindActive: true, KindDeleted: true},
	KindDeleted:     {},
}

// CanTransitionTo reports whether target is a legal successor of from.
func CanTransitionTo(from, target Kind) bool {
	return transitions[from][target]
}

// CreatedState: established under an operator but permissions not yet set.
type CreatedState struct {
	CreatedAt  time.Time
	CreatedBy  string
	OperatorID string
}

func (CreatedState) Kind() Kind          { return KindCreated }
func (CreatedState) IsTerminal() bool    { return false }
func (CreatedState) Description() string { return "Created (awaiting permissions)" }

// ActiveState: has permissions and can create users / publish / subscribe.
type ActiveState struct {
	Permissions Permissions
	ActivatedAt time.Time
	Users       []string
}

func (ActiveState) Kind() Kind          { return KindActive }
func (ActiveState) IsTerminal() bool    { return false }
func (ActiveState) Description() string { return "Active" }

// SuspendedState: temporarily suspended. Carries no permissions snapshot;
// reactivation always starts from a caller-supplied permission set.
type SuspendedState struct {
	Reason      string
	SuspendedAt time.Time
	SuspendedBy string
}

func (SuspendedState) Kind() Kind          { return KindSuspended }
func (SuspendedState) IsTerminal() bool    { return false }
func (SuspendedState) Description() string { return "Suspended" }

// ReactivatedState: permissions freshly assigned after suspension, distinct
// from Active until the operator confirms normal operation via Activate.
type ReactivatedState struct {
	Permissions   Permissions
	ReactivatedAt time.Time
	ReactivatedBy string
}

func (ReactivatedState) Kind() Kind          { return KindReactivated }
func (ReactivatedState) IsTerminal() bool    { return false }
func (ReactivatedState) Description() string { return "Reactivated" }

// DeletedState: permanently removed. Terminal.
type DeletedState struct {
	DeletedAt time.Time
	DeletedBy string
	Reason    string
}

func (DeletedState) Kind() Kind          { return KindDeleted }
func (DeletedState) IsTerminal() bool    { return true }
func (DeletedState) Description() string { return "Deleted (TERMINAL)" }

// IsUsable reports whether the account can create users / publish / subscribe,
// true for both Active and Reactivated, matching the upstream is_active() check.
func IsUsable(s State) bool {
	return s.Kind() == KindActive || s.Kind() == KindReactivated
}

func CanCreateUsers(s State) bool { return IsUsable(s) }
func CanPubSub(s State) bool      { return IsUsable(s) }
func CanBeModified(s State) bool  { return !s.IsTerminal() }
func IsSuspended(s State) bool    { return s.Kind() == KindSuspended }
func IsDeleted(s State) bool      { return s.Kind() == KindDeleted }

// Activate sets permissions, transitioning Created -> Active or
// Reactivated -> Active.
func Activate(s State, permissions Permissions, at time.Time) (State, error) {
	switch s.Kind() {
	case KindCreated, KindReactivated:
		return ActiveState{Permissions: permissions, ActivatedAt: at}, nil
	default:
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_account", Current: s.Description(), Event: "activate",
			Reason: "can only activate from Created or Reactivated state",
		}
	}
}

// AddUser attaches a newly created user to an Active account.
func AddUser(s State, userID string) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_account", Current: s.Description(), Event: "add_user",
			Reason: "can only add users to an Active account",
		}
	}
	active.Users = append(append([]string{}, active.Users...), userID)
	return active, nil
}

// Suspend transitions an Active account into Suspended.
func Suspend(s State, reason string, at time.Time, suspendedBy string) (State, error) {
	if s.Kind() != KindActive {
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_account", Current: s.Description(), Event: "suspend",
			Reason: "can only suspend an Active account",
		}
	}
	return SuspendedState{Reason: reason, SuspendedAt: at, SuspendedBy: suspendedBy}, nil
}

// Reactivate transitions a Suspended account into Reactivated with a
// fresh permission set — previous permissions, imports, and exports are
// NOT restored.
func Reactivate(s State, permissions Permissions, at time.Time, reactivatedBy string) (State, error) {
	if s.Kind() != KindSuspended {
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_account", Current: s.Description(), Event: "reactivate",
			Reason: "can only reactivate a Suspended account",
		}
	}
	return ReactivatedState{Permissions: permissions, ReactivatedAt: at, ReactivatedBy: reactivatedBy}, nil
}

// Delete transitions an Active, Suspended, or Reactivated account into Deleted.
func Delete(s State, reason string, at time.Time, deletedBy string) (State, error) {
	if s.IsTerminal() {
		return nil, cimerrors.TerminalState{EntityType: "nats_account", Current: s.Description(), Reason: "account already deleted"}
	}
	if s.Kind() == KindCreated {
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_account", Current: s.Description(), Event: "delete",
			Reason: "can only delete Active, Suspended, or Reactivated accounts",
		}
	}
	return DeletedState{DeletedAt: at, DeletedBy: deletedBy, Reason: reason}, nil
}
