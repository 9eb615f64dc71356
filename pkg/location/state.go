package location

import (
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
)

// Kind discriminates concrete State implementations for transition-table
// lookups and serialization.
type Kind string

const (
	KindPlanned        Kind = "planned"
	KindActive         Kind = "active"
	KindDecommissioned Kind = "decommissioned"
	KindArchived       Kind = "archived"
)

// State is the sealed lifecycle state of a location aggregate.
type State interface {
	Kind() Kind
	IsTerminal() bool
	Description() string
	// AssetCount reports how many assets are stored (Active) or still need
	// to be moved before archival (Decommissioned). Zero elsewhere.
	AssetCount() uint64
}

var transitions = map[Kind]map[Kind]bool{
	KindPlanned:        {KindActive: true},
	KindActive:         {KindDecommissioned: true},
	KindDecommissioned: {KindArchived: true},
	KindArchived:       {},
}

// CanTransitionTo reports whether target is a legal successor of from.
// It does not enforce the remaining-assets-must-be-zero guard on
// Decommissioned -> Archived; use Archive for that.
func CanTransitionTo(from, target Kind) bool {
	return transitions[from][target]
}

// PlannedState: planned but not yet operational.
type PlannedState struct {
	PlannedAt    time.Time
	PlannedBy    string
	LocationType Type
}

func (PlannedState) Kind() Kind          { return KindPlanned }
func (PlannedState) IsTerminal() bool    { return false }
func (PlannedState) Description() string { return "Planned (not yet operational)" }
func (PlannedState) AssetCount() uint64  { return 0 }

// ActiveState: operational and able to store assets.
type ActiveState struct {
	ActivatedAt   time.Time
	AccessGrants  []AccessGrant
	AssetsStored  uint64
	LastAccessed  *time.Time
}

func (ActiveState) Kind() Kind          { return KindActive }
func (ActiveState) IsTerminal() bool    { return false }
func (ActiveState) Description() string { return "Active (can store assets)" }
func (s ActiveState) AssetCount() uint64 { return s.AssetsStored }

// DecommissionedState: no new assets accepted; existing assets still being migrated.
type DecommissionedState struct {
	Reason           string
	DecommissionedAt time.Time
	DecommissionedBy string
	RemainingAssets  uint64
}

func (DecommissionedState) Kind() Kind          { return KindDecommissioned }
func (DecommissionedState) IsTerminal() bool    { return false }
func (DecommissionedState) Description() string { return "Decommissioned (no new assets)" }
func (s DecommissionedState) AssetCount() uint64 { return s.RemainingAssets }

// ArchivedState: all assets removed. Terminal.
type ArchivedState struct {
	ArchivedAt   time.Time
	ArchivedBy   string
	FinalAuditID *string
}

func (ArchivedState) Kind() Kind          { return KindArchived }
func (ArchivedState) IsTerminal() bool    { return true }
func (ArchivedState) Description() string { return "Archived (TERMINAL - all assets removed)" }
func (ArchivedState) AssetCount() uint64  { return 0 }

func IsActive(s State) bool          { return s.Kind() == KindActive }
func CanStoreAssets(s State) bool    { return s.Kind() == KindActive }
func CanGrantAccess(s State) bool    { return s.Kind() == KindActive }
func CanBeModified(s State) bool     { return !s.IsTerminal() }
func IsDecommissioned(s State) bool  { return s.Kind() == KindDecommissioned }

// Activate transitions a Planned location into Active, requiring at least
// one initial access grant.
func Activate(s State, at time.Time, initialGrants []AccessGrant) (State, error) {
	if s.Kind() != KindPlanned {
		return nil, cimerrors.InvalidTransition{
			EntityType: "location", Current: s.Description(), Event: "activate",
			Reason: "can only activate from Planned state",
		}
	}
	if len(initialGrants) == 0 {
		return nil, cimerrors.ValidationFailed{EntityType: "location", Reason: "cannot activate location without access grants"}
	}
	return ActiveState{ActivatedAt: at, AccessGrants: initialGrants}, nil
}

// GrantAccess adds a person's access grant to an Active location. A person
// already holding access cannot be granted it again.
func GrantAccess(s State, grant AccessGrant) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "location", Current: s.Description(), Event: "grant_access",
			Reason: "can only grant access to Active locations",
		}
	}
	for _, g := range active.AccessGrants {
		if g.PersonID == grant.PersonID {
			return nil, cimerrors.ValidationFailed{EntityType: "location", Reason: "person already has access to this location"}
		}
	}
	active.AccessGrants = append(append([]AccessGrant{}, active.AccessGrants...), grant)
	return active, nil
}

// RevokeAccess removes a person's access grant from an Active location.
func RevokeAccess(s State, personID string) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "location", Current: s.Description(), Event: "revoke_access",
			Reason: "can only revoke access from Active locations",
		}
	}
	remaining := make([]AccessGrant, 0, len(active.AccessGrants))
	for _, g := range active.AccessGrants {
		if g.PersonID != personID {
			remaining = append(remaining, g)
		}
	}
	active.AccessGrants = remaining
	return active, nil
}

// Decommission transitions an Active location into Decommissioned,
// carrying its current asset count forward as RemainingAssets.
func Decommission(s State, reason string, at time.Time, decommissionedBy string) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "location", Current: s.Description(), Event: "decommission",
			Reason: "can only decommission Active locations",
		}
	}
	return DecommissionedState{
		Reason: reason, DecommissionedAt: at, DecommissionedBy: decommissionedBy,
		RemainingAssets: active.AssetsStored,
	}, nil
}

// Archive transitions a Decommissioned location into Archived. It fails if
// any assets still need to be removed.
func Archive(s State, at time.Time, archivedBy string, finalAuditID *string) (State, error) {
	decommissioned, ok := s.(DecommissionedState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "location", Current: s.Description(), Event: "archive",
			Reason: "can only archive Decommissioned locations",
		}
	}
	if decommissioned.RemainingAssets > 0 {
		return nil, cimerrors.ValidationFailed{
			EntityType: "location",
			Reason:     "cannot archive location with remaining assets - must be removed first",
		}
	}
	return ArchivedState{ArchivedAt: at, ArchivedBy: archivedBy, FinalAuditID: finalAuditID}, nil
}
