package location

import (
	"testing"
	"time"
)

func TestActivate_RequiresInitialAccessGrant(t *testing.T) {
	now := time.Now().UTC()
	planned := PlannedState{PlannedAt: now, LocationType: TypeDataCenter}
	if _, err := Activate(planned, now, nil); err == nil {
		t.Fatal("Activate with no grants should fail")
	}
	got, err := Activate(planned, now, []AccessGrant{{PersonID: "p1", GrantedAt: now}})
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if got.Kind() != KindActive {
		t.Fatalf("Kind() = %s, want active", got.Kind())
	}
}

func TestGrantAccess_RejectsDuplicatePerson(t *testing.T) {
	now := time.Now().UTC()
	active := ActiveState{ActivatedAt: now, AccessGrants: []AccessGrant{{PersonID: "p1", GrantedAt: now}}}
	if _, err := GrantAccess(active, AccessGrant{PersonID: "p1", GrantedAt: now}); err == nil {
		t.Fatal("granting access to a person who already has it should fail")
	}
	got, err := GrantAccess(active, AccessGrant{PersonID: "p2", GrantedAt: now})
	if err != nil {
		t.Fatalf("GrantAccess: %v", err)
	}
	if len(got.(ActiveState).AccessGrants) != 2 {
		t.Fatalf("expected 2 grants, got %d", len(got.(ActiveState).AccessGrants))
	}
}

func TestArchive_RequiresZeroRemainingAssets(t *testing.T) {
	now := time.Now().UTC()
	decommissioned := DecommissionedState{DecommissionedAt: now, RemainingAssets: 3}
	if _, err := Archive(decommissioned, now, "admin", nil); err == nil {
		t.Fatal("Archive with remaining assets should fail")
	}

	empty := DecommissionedState{DecommissionedAt: now, RemainingAssets: 0}
	got, err := Archive(empty, now, "admin", nil)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if !got.IsTerminal() {
		t.Fatal("Archived must be terminal")
	}
}

func TestDecommission_CarriesAssetCountForward(t *testing.T) {
	now := time.Now().UTC()
	active := ActiveState{ActivatedAt: now, AssetsStored: 7}
	got, err := Decommission(active, "shutdown", now, "admin")
	if err != nil {
		t.Fatalf("Decommission: %v", err)
	}
	if got.AssetCount() != 7 {
		t.Fatalf("AssetCount() = %d, want 7", got.AssetCount())
	}
}
