package person

import (
	"testing"
	"time"
)

func TestSuspended_Actor_PrefersTypedOverLegacy(t *testing.T) {
	now := time.Now().UTC()
	personID := NewID()

	legacyOnly := Suspended{
		baseEvent:   baseEvent{PersonID: personID},
		Reason:      "policy review",
		SuspendedAt: now,
		SuspendedBy: "admin-1",
	}
	got := legacyOnly.Actor()
	if got.Subject != "admin-1" {
		t.Fatalf("Actor() from legacy field = %+v, want Subject admin-1", got)
	}

	typed := Actor{Subject: "admin-2", Kind: "operator"}
	withTyped := Suspended{
		baseEvent:        baseEvent{PersonID: personID},
		Reason:           "policy review",
		SuspendedAt:      now,
		SuspendedBy:      "admin-1",
		SuspendedByActor: &typed,
	}
	got = withTyped.Actor()
	if got != typed {
		t.Fatalf("Actor() = %+v, want typed field %+v to take precedence", got, typed)
	}
}

func TestNewSuspended_RoundTripsTypedActor(t *testing.T) {
	now := time.Now().UTC()
	personID := NewID()
	actor := Actor{Subject: "admin-3", Kind: "operator"}

	ev := NewSuspended(personID, "reason", now, actor, []string{"operator"})

	if ev.SuspendedBy != actor.Subject {
		t.Fatalf("SuspendedBy = %q, want %q", ev.SuspendedBy, actor.Subject)
	}
	if ev.Actor() != actor {
		t.Fatalf("Actor() = %+v, want round-tripped %+v", ev.Actor(), actor)
	}
}

func TestNewCreated_NewDeactivated_NewArchived_RoundTripTypedActor(t *testing.T) {
	now := time.Now().UTC()
	personID := NewID()
	actor := Actor{Subject: "system", Kind: "automation"}

	created := NewCreated(personID, now, actor)
	if created.Actor() != actor {
		t.Fatalf("Created.Actor() = %+v, want %+v", created.Actor(), actor)
	}

	deactivated := NewDeactivated(personID, "offboarding", now, actor)
	if deactivated.Actor() != actor {
		t.Fatalf("Deactivated.Actor() = %+v, want %+v", deactivated.Actor(), actor)
	}

	archived := NewArchived(personID, now, actor, nil)
	if archived.Actor() != actor {
		t.Fatalf("Archived.Actor() = %+v, want %+v", archived.Actor(), actor)
	}
}
