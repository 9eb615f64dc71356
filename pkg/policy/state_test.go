package policy

import (
	"testing"
	"time"
)

func TestActivate_RequiresAtLeastOneClaim(t *testing.T) {
	now := time.Now().UTC()
	draft := DraftState{AuthorID: "person-1", ReviewStatus: ReviewStatusApproved}
	if _, err := Activate(draft, now, nil, nil); err == nil {
		t.Fatal("Activate with no claims should fail")
	}
	got, err := Activate(draft, now, []Claim{{Action: "sign", Resource: "certificate"}}, nil)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if got.Kind() != KindActive {
		t.Fatalf("Kind() = %s, want active", got.Kind())
	}
}

func TestValidateModification_SuspendedRejectsWithSpecificReason(t *testing.T) {
	now := time.Now().UTC()
	suspended := SuspendedState{SuspendedAt: now}
	err := ValidateModification(suspended)
	if err == nil {
		t.Fatal("expected an error for modifying a suspended policy")
	}
}

func TestModify_RejectsSuspendedAndRevoked(t *testing.T) {
	now := time.Now().UTC()
	suspended := SuspendedState{SuspendedAt: now}
	if _, err := Modify(suspended, now, "admin", "v1", []Change{{Field: "x"}}); err == nil {
		t.Fatal("Modify(Suspended) should fail")
	}
	revoked := RevokedState{RevokedAt: now}
	if _, err := Modify(revoked, now, "admin", "v1", []Change{{Field: "x"}}); err == nil {
		t.Fatal("Modify(Revoked) should fail")
	}
}

func TestRevoke_ReachableFromEveryNonTerminalState(t *testing.T) {
	now := time.Now().UTC()
	states := []State{
		DraftState{AuthorID: "p1"},
		ActiveState{ActivatedAt: now},
		ModifiedState{ModifiedAt: now},
		SuspendedState{SuspendedAt: now},
	}
	for _, s := range states {
		if _, err := Revoke(s, "policy violation", now, "admin", nil); err != nil {
			t.Errorf("Revoke(%s): %v", s.Kind(), err)
		}
	}
	revoked := RevokedState{RevokedAt: now}
	if _, err := Revoke(revoked, "again", now, "admin", nil); err == nil {
		t.Fatal("Revoke(Revoked) should fail")
	}
}

func TestRevoked_IsTerminal(t *testing.T) {
	revoked := RevokedState{RevokedAt: time.Now()}
	if !revoked.IsTerminal() {
		t.Fatal("Revoked must be terminal")
	}
	if CanTransitionTo(KindRevoked, KindActive) {
		t.Fatal("Revoked must have no legal successors")
	}
}
