package policy

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
	KindModified  Kind = "modified"
	KindSuspended Kind = "suspended"
	KindRevoked   Kind = "revoked"
)

// State is the sealed lifecycle state of a policy aggregate.
type State interface {
	Kind() Kind
	IsTerminal() bool
	Description() string
}

var transitions = map[Kind]map[Kind]bool{
	KindDraft:     {KindActive: true},
	KindActive:    {KindModified: true, KindSuspended: true},
	KindModified:  {KindActive: true},
	KindSuspended: {KindActive: true},
	KindRevoked:   {},
}

// CanTransitionTo reports whether target is a legal successor of from. Any
// non-terminal Kind may additionally transition to Revoked, applied on top
// of this table, mirroring the upstream match guard.
func CanTransitionTo(from, target Kind) bool {
	if target == KindRevoked {
		return from != KindRevoked
	}
	return transitions[from][target]
}

// DraftState: authored but not yet activated, under review.
type DraftState struct {
	AuthorID     string
	ReviewStatus ReviewStatus
}

func (DraftState) Kind() Kind          { return KindDraft }
func (DraftState) IsTerminal() bool    { return false }
func (DraftState) Description() string { return "Draft (under review)" }

// ActiveState: enforced with the given claims and conditions.
type ActiveState struct {
	ActivatedAt       time.Time
	Claims            []Claim
	Conditions        []Condition
	EnforcementCount  uint64
	LastEnforced      *time.Time
}

func (ActiveState) Kind() Kind          { return KindActive }
func (ActiveState) IsTerminal() bool    { return false }
func (ActiveState) Description() string { return "Active (enforced)" }

// ModifiedState: changed and awaiting re-activation.
type ModifiedState struct {
	ModifiedAt      time.Time
	ModifiedBy      string
	PreviousVersion string
	Changes         []Change
}

func (ModifiedState) Kind() Kind          { return KindModified }
func (ModifiedState) IsTerminal() bool    { return false }
func (ModifiedState) Description() string { return "Modified (awaiting activation)" }

// SuspendedState: not enforced, restorable to Active.
type SuspendedState struct {
	Reason      string
	SuspendedAt time.Time
	SuspendedBy string
}

func (SuspendedState) Kind() Kind          { return KindSuspended }
func (SuspendedState) IsTerminal() bool    { return false }
func (SuspendedState) Description() string { return "Suspended (not enforced)" }

// RevokedState: permanently revoked. Terminal.
type RevokedState struct {
	Reason              string
	RevokedAt           time.Time
	RevokedBy           string
	ReplacementPolicyID *string
}

func (RevokedState) Kind() Kind          { return KindRevoked }
func (RevokedState) IsTerminal() bool    { return true }
func (RevokedState) Description() string { return "Revoked (TERMINAL)" }

func IsActive(s State) bool    { return s.Kind() == KindActive }
func CanEnforce(s State) bool  { return s.Kind() == KindActive }
func CanBeModified(s State) bool { return !s.IsTerminal() }
func IsSuspended(s State) bool { return s.Kind() == KindSuspended }
func IsDraft(s State) bool     { return s.Kind() == KindDraft }
func IsModified(s State) bool  { return s.Kind() == KindModified }

// ValidateModification reports whether a change to this policy is allowed
// right now, distinct from CanTransitionTo: a Suspended policy rejects
// modification with a specific "reactivate first" message rather than the
// generic invalid-transition error.
func ValidateModification(s State) error {
	if s.IsTerminal() {
		return cimerrors.TerminalState{EntityType: "policy", Current: s.Description(), Reason: "cannot modify a revoked policy"}
	}
	if s.Kind() == KindSuspended {
		return cimerrors.ValidationFailed{EntityType: "policy", Reason: "cannot modify a suspended policy - reactivate first"}
	}
	return nil
}

// ValidateClaims reports whether claims is non-empty and every claim is well-formed.
func ValidateClaims(claims []Claim) error {
	if len(claims) == 0 {
		return cimerrors.ValidationFailed{EntityType: "policy", Reason: "policy must have at least one claim"}
	}
	for _, c := range claims {
		if err := c.Validate(); err != nil {
			return cimerrors.ValidationFailed{EntityType: "policy", Reason: err.Error(), Err: err}
		}
	}
	return nil
}

// ValidateConditions reports whether every condition is well-formed.
func ValidateConditions(conditions []Condition) error {
	for _, c := range conditions {
		if err := c.Validate(); err != nil {
			return cimerrors.ValidationFailed{EntityType: "policy", Reason: err.Error(), Err: err}
		}
	}
	return nil
}

// Activate transitions a Draft or Modified policy into Active, validating
// claims and conditions first.
func Activate(s State, at time.Time, claims []Claim, conditions []Condition) (State, error) {
	if s.Kind() != KindDraft && s.Kind() != KindModified {
		return nil, cimerrors.InvalidTransition{
			EntityType: "policy", Current: s.Description(), Event: "activate",
			Reason: "can only activate from Draft or Modified state",
		}
	}
	if err := ValidateClaims(claims); err != nil {
		return nil, err
	}
	if err := ValidateConditions(conditions); err != nil {
		return nil, err
	}
	return ActiveState{ActivatedAt: at, Claims: claims, Conditions: conditions}, nil
}

// RecordEnforcement bumps an Active policy's enforcement counter.
func RecordEnforcement(s State, at time.Time) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "policy", Current: s.Description(), Event: "record_enforcement",
			Reason: "can only record enforcement for Active policies",
		}
	}
	active.EnforcementCount++
	active.LastEnforced = &at
	return active, nil
}

// Modify records a change set against an Active policy, producing Modified.
func Modify(s State, at time.Time, modifiedBy, previousVersion string, changes []Change) (State, error) {
	if err := ValidateModification(s); err != nil {
		return nil, err
	}
	if s.Kind() != KindActive {
		return nil, cimerrors.InvalidTransition{
			EntityType: "policy", Current: s.Description(), Event: "modify",
			Reason: "can only modify an Active policy",
		}
	}
	return ModifiedState{ModifiedAt: at, ModifiedBy: modifiedBy, PreviousVersion: previousVersion, Changes: changes}, nil
}

// Suspend transitions an Active policy into Suspended.
func Suspend(s State, reason string, at time.Time, suspendedBy string) (State, error) {
	if s.Kind() != KindActive {
		return nil, cimerrors.InvalidTransition{
			EntityType: "policy", Current: s.Description(), Event: "suspend",
			Reason: "can only suspend an Active policy",
		}
	}
	return SuspendedState{Reason: reason, SuspendedAt: at, SuspendedBy: suspendedBy}, nil
}

// Reactivate transitions a Suspended policy back into Active with the
// given claims and conditions (Suspended does not retain its prior claims,
// mirroring the upstream state shape).
func Reactivate(s State, at time.Time, claims []Claim, conditions []Condition) (State, error) {
	if s.Kind() != KindSuspended {
		return nil, cimerrors.InvalidTransition{
			EntityType: "policy", Current: s.Description(), Event: "reactivate",
			Reason: "can only reactivate a Suspended policy",
		}
	}
	if err := ValidateClaims(claims); err != nil {
		return nil, err
	}
	return ActiveState{ActivatedAt: at, Claims: claims, Conditions: conditions}, nil
}

// Revoke transitions any non-terminal policy into Revoked.
func Revoke(s State, reason string, at time.Time, revokedBy string, replacementPolicyID *string) (State, error) {
	if s.IsTerminal() {
		return nil, cimerrors.TerminalState{EntityType: "policy", Current: s.Description(), Reason: "revoked policies cannot be reactivated"}
	}
	return RevokedState{Reason: reason, RevokedAt: at, RevokedBy: revokedBy, ReplacementPolicyID: replacementPolicyID}, nil
}
