package key

import (
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
)

// Kind discriminates concrete State implementations for transition-table
// lookups and serialization without a type switch at every call site.
type Kind string

const (
	KindGenerated        Kind = "generated"
	KindImported         Kind = "imported"
	KindActive           Kind = "active"
	KindRotationPending  Kind = "rotation_pending"
	KindRotated          Kind = "rotated"
	KindRevoked          Kind = "revoked"
	KindExpired          Kind = "expired"
	KindArchived         Kind = "archived"
)

// State is the sealed lifecycle state of a key aggregate. Concrete
// implementations are GeneratedState, ImportedState, ActiveState,
// RotationPendingState, RotatedState, RevokedState, ExpiredState, and
// ArchivedState.
type State interface {
	Kind() Kind
	// IsTerminal reports whether the key can no longer be revoked. A
	// terminal Revoked key may still move to Archived; Archived allows no
	// further transitions.
	IsTerminal() bool
	// Description is a human-readable summary, mirroring the upstream
	// state machine's description() accessor.
	Description() string
}

// transitions enumerates every legal (from, to) pair, independent of the
// guard logic each transition constructor additionally enforces.
var transitions = map[Kind]map[Kind]bool{
	KindGenerated:       {KindActive: true, KindRevoked: true},
	KindImported:        {KindActive: true, KindRevoked: true},
	KindActive:          {KindRotationPending: true, KindExpired: true, KindRevoked: true},
	KindRotationPending: {KindRotated: true, KindRevoked: true},
	KindRotated:         {KindArchived: true, KindRevoked: true},
	KindRevoked:         {KindArchived: true},
	KindExpired:         {KindArchived: true, KindRevoked: true},
	KindArchived:        {},
}

// CanTransitionTo reports whether target is a legal successor of from,
// independent of any additional guard a transition constructor enforces.
func CanTransitionTo(from, target Kind) bool {
	return transitions[from][target]
}

// GeneratedState: key generated but not yet activated.
type GeneratedState struct {
	Algorithm   Algorithm
	GeneratedAt time.Time
	GeneratedBy string
}

func (GeneratedState) Kind() Kind          { return KindGenerated }
func (GeneratedState) IsTerminal() bool    { return false }
func (GeneratedState) Description() string { return "Generated (awaiting activation)" }

// ImportedState: key material imported from an external source.
type ImportedState struct {
	Source     ImportSource
	ImportedAt time.Time
	ImportedBy string
}

func (ImportedState) Kind() Kind          { return KindImported }
func (ImportedState) IsTerminal() bool    { return false }
func (ImportedState) Description() string { return "Imported (awaiting activation)" }

// ActiveState: key is usable for cryptographic operations.
type ActiveState struct {
	ActivatedAt time.Time
	UsageCount  uint64
	LastUsed    *time.Time
}

func (ActiveState) Kind() Kind          { return KindActive }
func (ActiveState) IsTerminal() bool    { return false }
func (ActiveState) Description() string { return "Active (usable for cryptographic operations)" }

// RotationPendingState: rotation initiated, a successor key is being generated.
type RotationPendingState struct {
	NewKeyID    ID
	InitiatedAt time.Time
	InitiatedBy string
}

func (RotationPendingState) Kind() Kind          { return KindRotationPending }
func (RotationPendingState) IsTerminal() bool    { return false }
func (RotationPendingState) Description() string { return "Rotation Pending (new key being generated)" }

// RotatedState: key has been superseded by its rotation successor.
type RotatedState struct {
	NewKeyID  ID
	RotatedAt time.Time
	RotatedBy string
}

func (RotatedState) Kind() Kind          { return KindRotated }
func (RotatedState) IsTerminal() bool    { return false }
func (RotatedState) Description() string { return "Rotated (superseded by new key)" }

// RevokedState: key revoked. Terminal.
type RevokedState struct {
	Reason    RevocationReason
	RevokedAt time.Time
	RevokedBy string
}

func (RevokedState) Kind() Kind          { return KindRevoked }
func (RevokedState) IsTerminal() bool    { return true }
func (RevokedState) Description() string { return "Revoked (TERMINAL - cannot be reactivated)" }

// ExpiredState: key expired under a time-based policy.
type ExpiredState struct {
	ExpiredAt time.Time
	Reason    ExpiryReason
}

func (ExpiredState) Kind() Kind          { return KindExpired }
func (ExpiredState) IsTerminal() bool    { return false }
func (ExpiredState) Description() string { return "Expired (time-based expiration)" }

// ArchivedState: long-term retention. Terminal.
type ArchivedState struct {
	ArchivedAt        time.Time
	ArchivedBy        string
	RetentionPolicyID *string
	PreviousState     ArchivedFromState
}

func (ArchivedState) Kind() Kind          { return KindArchived }
func (ArchivedState) IsTerminal() bool    { return true }
func (ArchivedState) Description() string { return "Archived (TERMINAL - long-term storage)" }

// Query helpers mirroring the upstream state machine's boolean accessors.

func IsActive(s State) bool           { return s.Kind() == KindActive }
func CanUseForCrypto(s State) bool    { return s.Kind() == KindActive }
func CanBeModified(s State) bool      { return !s.IsTerminal() }
func IsRotationPending(s State) bool  { return s.Kind() == KindRotationPending }
func IsRotated(s State) bool          { return s.Kind() == KindRotated }
func IsExpired(s State) bool          { return s.Kind() == KindExpired }
func IsRevoked(s State) bool          { return s.Kind() == KindRevoked }

// Activate transitions a Generated or Imported key into Active.
func Activate(s State, at time.Time) (State, error) {
	switch s.Kind() {
	case KindGenerated, KindImported:
		return ActiveState{ActivatedAt: at}, nil
	default:
		return nil, cimerrors.InvalidTransition{
			EntityType: "key", Current: s.Description(), Event: "activate",
			Reason: "can only activate from Generated or Imported",
		}
	}
}

// RecordUsage bumps the usage counter and last-used timestamp of an Active key.
func RecordUsage(s State, at time.Time) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "key", Current: s.Description(), Event: "record_usage",
			Reason: "can only record usage for Active keys",
		}
	}
	active.UsageCount++
	active.LastUsed = &at
	return active, nil
}

// InitiateRotation transitions an Active key into RotationPending.
func InitiateRotation(s State, newKeyID ID, at time.Time, initiatedBy string) (State, error) {
	if s.Kind() != KindActive {
		return nil, cimerrors.InvalidTransition{
			EntityType: "key", Current: s.Description(), Event: "initiate_rotation",
			Reason: "can only initiate rotation for Active keys",
		}
	}
	return RotationPendingState{NewKeyID: newKeyID, InitiatedAt: at, InitiatedBy: initiatedBy}, nil
}

// CompleteRotation transitions a RotationPending key into Rotated.
func CompleteRotation(s State, at time.Time, rotatedBy string) (State, error) {
	pending, ok := s.(RotationPendingState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "key", Current: s.Description(), Event: "complete_rotation",
			Reason: "can only complete rotation from RotationPending",
		}
	}
	return RotatedState{NewKeyID: pending.NewKeyID, RotatedAt: at, RotatedBy: rotatedBy}, nil
}

// Revoke transitions any non-terminal key into Revoked.
func Revoke(s State, reason RevocationReason, at time.Time, revokedBy string) (State, error) {
	if s.IsTerminal() {
		return nil, cimerrors.TerminalState{
			EntityType: "key", Current: s.Description(), Reason: "revoked keys cannot be reactivated",
		}
	}
	return RevokedState{Reason: reason, RevokedAt: at, RevokedBy: revokedBy}, nil
}

// Expire transitions an Active key into Expired.
func Expire(s State, reason ExpiryReason, at time.Time) (State, error) {
	if s.Kind() != KindActive {
		return nil, cimerrors.InvalidTransition{
			EntityType: "key", Current: s.Description(), Event: "expire",
			Reason: "can only expire Active keys",
		}
	}
	return ExpiredState{ExpiredAt: at, Reason: reason}, nil
}

// Archive transitions a Rotated, Revoked, or Expired key into Archived.
func Archive(s State, at time.Time, archivedBy string, retentionPolicyID *string) (State, error) {
	var from ArchivedFromState
	switch s.Kind() {
	case KindRotated:
		from = ArchivedFromRotated
	case KindRevoked:
		from = ArchivedFromRevoked
	case KindExpired:
		from = ArchivedFromExpired
	default:
		return nil, cimerrors.InvalidTransition{
			EntityType: "key", Current: s.Description(), Event: "archive",
			Reason: "can only archive from Rotated, Revoked, or Expired",
		}
	}
	return ArchivedState{ArchivedAt: at, ArchivedBy: archivedBy, RetentionPolicyID: retentionPolicyID, PreviousState: from}, nil
}
