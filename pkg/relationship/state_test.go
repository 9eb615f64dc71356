package relationship

import (
	"testing"
	"time"
)

func TestAccept_RejectsValidUntilBeforeValidFrom(t *testing.T) {
	now := time.Now().UTC()
	before := now.Add(-time.Hour)
	proposed := ProposedState{ProposedAt: now}
	if _, err := Accept(proposed, now, &before, "delegation", nil); err == nil {
		t.Fatal("Accept with valid_until before valid_from should fail")
	}
}

func TestIsValidAt_IndefiniteWhenValidUntilNil(t *testing.T) {
	now := time.Now().UTC()
	active := ActiveState{ValidFrom: now.Add(-time.Hour)}
	if !active.IsValidAt(now.Add(1000 * time.Hour)) {
		t.Fatal("nil ValidUntil should mean indefinite validity")
	}
}

func TestModifyThenFinalize_RoundTripsThroughModified(t *testing.T) {
	now := time.Now().UTC()
	active := ActiveState{ValidFrom: now, RelationshipType: "delegation"}

	if _, err := Modify(active, now, "admin", nil); err == nil {
		t.Fatal("Modify with no changes should fail")
	}

	modified, err := Modify(active, now, "admin", []Change{{Field: "type", OldValue: "delegation", NewValue: "trust"}})
	if err != nil {
		t.Fatalf("Modify: %v", err)
	}

	finalized, err := FinalizeModification(modified, nil, "trust", nil)
	if err != nil {
		t.Fatalf("FinalizeModification: %v", err)
	}
	got := finalized.(ActiveState)
	if got.RelationshipType != "trust" {
		t.Fatalf("RelationshipType = %s, want trust", got.RelationshipType)
	}
	if !got.ValidFrom.Equal(now) {
		t.Fatal("ValidFrom should be preserved from the original Active snapshot")
	}
}

func TestSuspendThenReactivate_RestoresSnapshot(t *testing.T) {
	now := time.Now().UTC()
	active := ActiveState{ValidFrom: now, RelationshipType: "trust"}
	suspended, err := Suspend(active, "review", now, "admin")
	if err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	reactivated, err := Reactivate(suspended)
	if err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if reactivated.(ActiveState).RelationshipType != "trust" {
		t.Fatal("Reactivate should restore the pre-suspension snapshot")
	}
}

func TestTerminate_FromEveryNonTerminalNonProposedState(t *testing.T) {
	now := time.Now().UTC()
	active := ActiveState{ValidFrom: now}
	if _, err := Terminate(active, "end", now, "admin"); err != nil {
		t.Errorf("Terminate(Active): %v", err)
	}
	suspended := SuspendedState{SuspendedAt: now, Previous: active}
	if _, err := Terminate(suspended, "end", now, "admin"); err != nil {
		t.Errorf("Terminate(Suspended): %v", err)
	}
	proposed := ProposedState{ProposedAt: now}
	if _, err := Terminate(proposed, "end", now, "admin"); err == nil {
		t.Fatal("Terminate(Proposed) should fail")
	}
}

func TestArchived_IsTerminal(t *testing.T) {
	archived := ArchivedState{ArchivedAt: time.Now()}
	if !archived.IsTerminal() {
		t.Fatal("Archived must be terminal")
	}
	if CanTransitionTo(KindArchived, KindActive) {
		t.Fatal("Archived must have no legal successors")
	}
}
