package relationship

import (
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
)

// Kind discriminates concrete State implementations for transition-table
// lookups and serialization.
type Kind string

const (
	KindProposed   Kind = "proposed"
	KindActive     Kind = "active"
	KindModified   Kind = "modified"
	KindSuspended  Kind = "suspended"
	KindTerminated Kind = "terminated"
	KindArchived   Kind = "archived"
)

// State is the sealed lifecycle state of a relationship aggregate.
type State interface {
	Kind() Kind
	IsTerminal() bool
	Description() string
}

var transitions = map[Kind]map[Kind]bool{
	KindProposed:   {KindActive: true},
	KindActive:     {KindModified: true, KindSuspended: true, KindTerminated: true},
	KindModified:   {KindActive: true, KindTerminated: true},
	KindSuspended:  {KindActive: true, KindTerminated: true},
	KindTerminated: {KindArchived: true},
	KindArchived:   {},
}

// CanTransitionTo reports whether target is a legal successor of from.
func CanTransitionTo(from, target Kind) bool {
	return transitions[from][target]
}

// ProposedState: proposed but not yet accepted.
type ProposedState struct {
	ProposedAt          time.Time
	ProposedBy          string
	PendingApprovalFrom *string
}

func (ProposedState) Kind() Kind          { return KindProposed }
func (ProposedState) IsTerminal() bool    { return false }
func (ProposedState) Description() string { return "Proposed (pending acceptance)" }

// ActiveState: accepted and valid, subject to its temporal window.
type ActiveState struct {
	ValidFrom        time.Time
	ValidUntil       *time.Time
	RelationshipType string
	Metadata         Metadata
}

func (ActiveState) Kind() Kind          { return KindActive }
func (ActiveState) IsTerminal() bool    { return false }
func (ActiveState) Description() string { return "Active (valid)" }

// IsValidAt reports whether check falls within [ValidFrom, ValidUntil]; a
// nil ValidUntil means indefinite validity.
func (s ActiveState) IsValidAt(check time.Time) bool {
	afterStart := !check.Before(s.ValidFrom)
	beforeEnd := s.ValidUntil == nil || !check.After(*s.ValidUntil)
	return afterStart && beforeEnd
}

// CanUseForAuthorization reports whether the relationship is still
// temporally valid right now.
func (s ActiveState) CanUseForAuthorization(now time.Time) bool {
	return s.IsValidAt(now)
}

// ModifiedState: a change set has been proposed against an Active relationship.
type ModifiedState struct {
	ModifiedAt time.Time
	ModifiedBy string
	Previous   ActiveState
	Changes    []Change
}

func (ModifiedState) Kind() Kind          { return KindModified }
func (ModifiedState) IsTerminal() bool    { return false }
func (ModifiedState) Description() string { return "Modified (pending finalization)" }

// SuspendedState: temporarily suspended, restorable to its prior Active snapshot.
type SuspendedState struct {
	Reason      string
	SuspendedAt time.Time
	SuspendedBy string
	Previous    ActiveState
}

func (SuspendedState) Kind() Kind          { return KindSuspended }
func (SuspendedState) IsTerminal() bool    { return false }
func (SuspendedState) Description() string { return "Suspended (temporarily inactive)" }

// TerminatedState: permanently ended.
type TerminatedState struct {
	Reason       string
	TerminatedAt time.Time
	TerminatedBy string
}

func (TerminatedState) Kind() Kind          { return KindTerminated }
func (TerminatedState) IsTerminal() bool    { return false }
func (TerminatedState) Description() string { return "Terminated (permanently ended)" }

// ArchivedState: retained for audit after termination. Terminal.
type ArchivedState struct {
	ArchivedAt        time.Time
	ArchivedBy        string
	RetentionPolicyID *string
}

func (ArchivedState) Kind() Kind          { return KindArchived }
func (ArchivedState) IsTerminal() bool    { return true }
func (ArchivedState) Description() string { return "Archived (TERMINAL)" }

func IsActive(s State) bool        { return s.Kind() == KindActive }
func CanBeModified(s State) bool   { return !s.IsTerminal() }
func IsSuspended(s State) bool     { return s.Kind() == KindSuspended }
func IsTerminated(s State) bool    { return s.Kind() == KindTerminated }
func IsProposed(s State) bool      { return s.Kind() == KindProposed }

// Accept transitions a Proposed relationship into Active.
func Accept(s State, validFrom time.Time, validUntil *time.Time, relationshipType string, metadata Metadata) (State, error) {
	if s.Kind() != KindProposed {
		return nil, cimerrors.InvalidTransition{
			EntityType: "relationship", Current: s.Description(), Event: "accept",
			Reason: "can only accept Proposed relationships",
		}
	}
	if validUntil != nil && !validUntil.After(validFrom) {
		return nil, cimerrors.ValidationFailed{EntityType: "relationship", Reason: "valid_until must be after valid_from"}
	}
	return ActiveState{ValidFrom: validFrom, ValidUntil: validUntil, RelationshipType: relationshipType, Metadata: metadata}, nil
}

// Modify records a non-empty change set against an Active relationship.
func Modify(s State, at time.Time, modifiedBy string, changes []Change) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "relationship", Current: s.Description(), Event: "modify",
			Reason: "can only modify Active relationships",
		}
	}
	if len(changes) == 0 {
		return nil, cimerrors.ValidationFailed{EntityType: "relationship", Reason: "cannot modify relationship without changes"}
	}
	return ModifiedState{ModifiedAt: at, ModifiedBy: modifiedBy, Previous: active, Changes: changes}, nil
}

// FinalizeModification transitions a Modified relationship back into
// Active with its updated parameters.
func FinalizeModification(s State, validUntil *time.Time, relationshipType string, metadata Metadata) (State, error) {
	modified, ok := s.(ModifiedState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "relationship", Current: s.Description(), Event: "finalize_modification",
			Reason: "can only finalize from Modified state",
		}
	}
	return ActiveState{ValidFrom: modified.Previous.ValidFrom, ValidUntil: validUntil, RelationshipType: relationshipType, Metadata: metadata}, nil
}

// Suspend transitions an Active relationship into Suspended, retaining its
// snapshot so Reactivate can restore it.
func Suspend(s State, reason string, at time.Time, suspendedBy string) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "relationship", Current: s.Description(), Event: "suspend",
			Reason: "can only suspend Active relationships",
		}
	}
	return SuspendedState{Reason: reason, SuspendedAt: at, SuspendedBy: suspendedBy, Previous: active}, nil
}

// Reactivate restores a Suspended relationship's prior Active snapshot.
func Reactivate(s State) (State, error) {
	suspended, ok := s.(SuspendedState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "relationship", Current: s.Description(), Event: "reactivate",
			Reason: "can only reactivate Suspended relationships",
		}
	}
	return suspended.Previous, nil
}

// Terminate permanently ends a relationship from Active, Modified, or Suspended.
func Terminate(s State, reason string, at time.Time, terminatedBy string) (State, error) {
	switch s.Kind() {
	case KindActive, KindModified, KindSuspended:
		return TerminatedState{Reason: reason, TerminatedAt: at, TerminatedBy: terminatedBy}, nil
	default:
		return nil, cimerrors.InvalidTransition{
			EntityType: "relationship", Current: s.Description(), Event: "terminate",
			Reason: "can only terminate Active, Modified, or Suspended relationships",
		}
	}
}

// Archive transitions a Terminated relationship into Archived after its retention period.
func Archive(s State, at time.Time, archivedBy string, retentionPolicyID *string) (State, error) {
	if s.Kind() != KindTerminated {
		return nil, cimerrors.InvalidTransition{
			EntityType: "relationship", Current: s.Description(), Event: "archive",
			Reason: "can only archive Terminated relationships",
		}
	}
	return ArchivedState{ArchivedAt: at, ArchivedBy: archivedBy, RetentionPolicyID: retentionPolicyID}, nil
}
