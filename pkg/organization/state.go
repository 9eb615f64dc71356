package organization

import (
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
)

// Kind discriminates concrete State implementations for transition-table
// lookups and serialization.
type Kind string

const (
	KindDraft     Kind = "draft"
	KindActive    Kind = "active"
	KindSuspended Kind = "suspended"
	KindDissolved Kind = "dissolved"
)

// State is the sealed lifecycle state of an organization aggregate.
type State interface {
	Kind() Kind
	IsTerminal() bool
	Description() string
}

var transitions = map[Kind]map[Kind]bool{
	KindDraft:     {KindActive: true},
	KindActive:    {KindSuspended: true, KindDissolved: true},
	KindSuspended: {KindActive: true, KindDissolved: true},
	KindDissolved: {},
}

// CanTransitionTo reports whether target is a legal successor of from.
func CanTransitionTo(from, target Kind) bool {
	return transitions[from][target]
}

// DraftState: created but not yet operational.
type DraftState struct {
	CreatedAt time.Time
	CreatedBy string
}

func (DraftState) Kind() Kind          { return KindDraft }
func (DraftState) IsTerminal() bool    { return false }
func (DraftState) Description() string { return "Draft (not yet operational)" }

// ActiveState: operational, with at least one unit or member.
type ActiveState struct {
	ActivatedAt time.Time
	Units       []string
	Members     []string
}

func (ActiveState) Kind() Kind          { return KindActive }
func (ActiveState) IsTerminal() bool    { return false }
func (ActiveState) Description() string { return "Active (operational)" }

// SuspendedState: temporarily suspended, restorable to Active.
type SuspendedState struct {
	Reason      string
	SuspendedAt time.Time
	SuspendedBy string
	Units       []string
	Members     []string
}

func (SuspendedState) Kind() Kind          { return KindSuspended }
func (SuspendedState) IsTerminal() bool    { return false }
func (SuspendedState) Description() string { return "Suspended (administrative hold)" }

// DissolvedState: permanently dissolved. Terminal.
type DissolvedState struct {
	DissolvedAt    time.Time
	DissolvedBy    string
	Reason         string
	SuccessorOrgID *string
}

func (DissolvedState) Kind() Kind          { return KindDissolved }
func (DissolvedState) IsTerminal() bool    { return true }
func (DissolvedState) Description() string { return "Dissolved (TERMINAL)" }

func IsActive(s State) bool        { return s.Kind() == KindActive }
func CanAddUnits(s State) bool     { return s.Kind() == KindActive }
func CanAddMembers(s State) bool   { return s.Kind() == KindActive }
func CanGenerateKeys(s State) bool { return s.Kind() == KindActive }
func CanBeModified(s State) bool   { return !s.IsTerminal() }
func IsSuspended(s State) bool     { return s.Kind() == KindSuspended }
func IsDissolved(s State) bool     { return s.Kind() == KindDissolved }

// ActivateWithUnit transitions a Draft organization into Active by attaching
// its first organizational unit.
func ActivateWithUnit(s State, unitID string, at time.Time) (State, error) {
	if s.Kind() != KindDraft {
		return nil, cimerrors.InvalidTransition{
			EntityType: "organization", Current: s.Description(), Event: "activate_with_unit",
			Reason: "can only activate a Draft organization",
		}
	}
	if unitID == "" {
		return nil, cimerrors.ValidationFailed{EntityType: "organization", Reason: "must have at least one unit or person to become Active"}
	}
	return ActiveState{ActivatedAt: at, Units: []string{unitID}}, nil
}

// ActivateWithMember transitions a Draft organization into Active by adding
// its first member.
func ActivateWithMember(s State, personID string, at time.Time) (State, error) {
	if s.Kind() != KindDraft {
		return nil, cimerrors.InvalidTransition{
			EntityType: "organization", Current: s.Description(), Event: "activate_with_member",
			Reason: "can only activate a Draft organization",
		}
	}
	if personID == "" {
		return nil, cimerrors.ValidationFailed{EntityType: "organization", Reason: "must have at least one unit or person to become Active"}
	}
	return ActiveState{ActivatedAt: at, Members: []string{personID}}, nil
}

// AddUnit attaches an additional unit to an Active organization.
func AddUnit(s State, unitID string) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "organization", Current: s.Description(), Event: "add_unit",
			Reason: "can only add units to an Active organization",
		}
	}
	active.Units = append(append([]string{}, active.Units...), unitID)
	return active, nil
}

// AddMember attaches an additional member to an Active organization.
func AddMember(s State, personID string) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "organization", Current: s.Description(), Event: "add_member",
			Reason: "can only add members to an Active organization",
		}
	}
	active.Members = append(append([]string{}, active.Members...), personID)
	return active, nil
}

// Suspend transitions an Active organization into Suspended.
func Suspend(s State, reason string, at time.Time, suspendedBy string) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "organization", Current: s.Description(), Event: "suspend",
			Reason: "can only suspend an Active organization",
		}
	}
	return SuspendedState{Reason: reason, SuspendedAt: at, SuspendedBy: suspendedBy, Units: active.Units, Members: active.Members}, nil
}

// Reactivate transitions a Suspended organization back to Active.
func Reactivate(s State, at time.Time) (State, error) {
	suspended, ok := s.(SuspendedState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "organization", Current: s.Description(), Event: "reactivate",
			Reason: "can only reactivate a Suspended organization",
		}
	}
	return ActiveState{ActivatedAt: at, Units: suspended.Units, Members: suspended.Members}, nil
}

// Dissolve transitions an Active or Suspended organization into Dissolved.
func Dissolve(s State, reason string, at time.Time, dissolvedBy string, successorOrgID *string) (State, error) {
	if s.Kind() != KindActive && s.Kind() != KindSuspended {
		return nil, cimerrors.InvalidTransition{
			EntityType: "organization", Current: s.Description(), Event: "dissolve",
			Reason: "can only dissolve an Active or Suspended organization",
		}
	}
	return DissolvedState{DissolvedAt: at, DissolvedBy: dissolvedBy, Reason: reason, SuccessorOrgID: successorOrgID}, nil
}
