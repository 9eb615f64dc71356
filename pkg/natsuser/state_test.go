package natsuser

import (
	"testing"
	"time"
)

func TestActivate_FromCreatedOrReactivated(t *testing.T) {
	now := time.Now().UTC()
	created := CreatedState{AccountID: "acct-1", PersonID: "person-1"}
	got, err := Activate(created, Permissions{PublishAllow: []string{"org.inbox.>"}}, now)
	if err != nil {
		t.Fatalf("Activate(Created): %v", err)
	}
	if got.Kind() != KindActive {
		t.Fatalf("Kind() = %s, want active", got.Kind())
	}

	reactivated := ReactivatedState{ReactivatedAt: now}
	if _, err := Activate(reactivated, Permissions{}, now); err != nil {
		t.Fatalf("Activate(Reactivated): %v", err)
	}
}

func TestActivate_RejectsFromSuspended(t *testing.T) {
	now := time.Now().UTC()
	suspended := SuspendedState{SuspendedAt: now}
	if _, err := Activate(suspended, Permissions{}, now); err == nil {
		t.Fatal("Activate(Suspended) should fail - must go through Reactivate first")
	}
}

func TestSuspend_OnlyFromActive(t *testing.T) {
	now := time.Now().UTC()
	if _, err := Suspend(ActiveState{ActivatedAt: now}, "policy", now, "admin"); err != nil {
		t.Errorf("Suspend(Active): %v", err)
	}
	if _, err := Suspend(CreatedState{}, "policy", now, "admin"); err == nil {
		t.Fatal("Suspend(Created) should fail")
	}
}

func TestReactivate_RestoresSuppliedPermissions(t *testing.T) {
	now := time.Now().UTC()
	suspended := SuspendedState{SuspendedAt: now}
	perms := Permissions{PublishAllow: []string{"org.inbox.>"}, SubscribeAllow: []string{"org.events.>"}}
	got, err := Reactivate(suspended, perms, now, "admin")
	if err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	reactivated := got.(ReactivatedState)
	if len(reactivated.Permissions.PublishAllow) != 1 || len(reactivated.Permissions.SubscribeAllow) != 1 {
		t.Fatalf("expected supplied permissions on reactivation, got %+v", reactivated.Permissions)
	}
}

func TestDelete_AllowedFromActiveSuspendedReactivated(t *testing.T) {
	now := time.Now().UTC()
	states := []State{
		ActiveState{ActivatedAt: now},
		SuspendedState{SuspendedAt: now},
		ReactivatedState{ReactivatedAt: now},
	}
	for _, s := range states {
		if _, err := Delete(s, "cleanup", now, "admin"); err != nil {
			t.Errorf("Delete(%s): %v", s.Kind(), err)
		}
	}
}

func TestDelete_RejectsFromCreatedAndTerminal(t *testing.T) {
	now := time.Now().UTC()
	if _, err := Delete(CreatedState{}, "cleanup", now, "admin"); err == nil {
		t.Fatal("Delete(Created) should fail - no direct path to Deleted")
	}
	deleted := DeletedState{DeletedAt: now}
	if _, err := Delete(deleted, "cleanup", now, "admin"); err == nil {
		t.Fatal("Delete(Deleted) should fail - already terminal")
	}
}

func TestRecordConnection_OnlyFromActive(t *testing.T) {
	now := time.Now().UTC()
	active := ActiveState{Permissions: Permissions{PublishAllow: []string{"x"}}, ActivatedAt: now}
	got, err := RecordConnection(active, now)
	if err != nil {
		t.Fatalf("RecordConnection: %v", err)
	}
	updated := got.(ActiveState)
	if updated.LastConnection == nil || !updated.LastConnection.Equal(now) {
		t.Fatal("expected last connection to be recorded")
	}
	if len(updated.Permissions.PublishAllow) != 1 {
		t.Fatal("expected permissions preserved across connection record")
	}

	if _, err := RecordConnection(SuspendedState{SuspendedAt: now}, now); err == nil {
		t.Fatal("RecordConnection(Suspended) should fail")
	}
}

func TestDeleted_IsTerminal(t *testing.T) {
	deleted := DeletedState{DeletedAt: time.Now()}
	if !deleted.IsTerminal() {
		t.Fatal("Deleted must be terminal")
	}
	if CanTransitionTo(KindDeleted, KindActive) {
		t.Fatal("Deleted must have no legal successors")
	}
}

func TestIsActive_TrueForActiveAndReactivated(t *testing.T) {
	now := time.Now().UTC()
	if !IsActive(ActiveState{ActivatedAt: now}) {
		t.Error("Active should be active")
	}
	if !IsActive(ReactivatedState{ReactivatedAt: now}) {
		t.Error("Reactivated should be active")
	}
	if IsActive(SuspendedState{SuspendedAt: now}) {
		t.Error("Suspended should not be active")
	}
}
