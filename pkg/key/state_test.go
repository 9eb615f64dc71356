package key

import (
	"testing"
	"time"
)

func TestActivate_FromGeneratedAndImported(t *testing.T) {
	now := time.Now().UTC()

	gen := GeneratedState{Algorithm: AlgorithmEd25519, GeneratedAt: now}
	got, err := Activate(gen, now)
	if err != nil {
		t.Fatalf("Activate(Generated): %v", err)
	}
	if got.Kind() != KindActive {
		t.Fatalf("Kind() = %s, want active", got.Kind())
	}

	imp := ImportedState{Source: ImportSourceYubikey, ImportedAt: now}
	if _, err := Activate(imp, now); err != nil {
		t.Fatalf("Activate(Imported): %v", err)
	}
}

func TestActivate_RejectsNonGeneratedOrImported(t *testing.T) {
	active := ActiveState{ActivatedAt: time.Now()}
	if _, err := Activate(active, time.Now()); err == nil {
		t.Fatal("Activate(Active) should fail")
	}
}

func TestRevoke_TerminalKeysCannotBeRevokedAgain(t *testing.T) {
	revoked := RevokedState{Reason: RevocationReasonCompromised, RevokedAt: time.Now()}
	if _, err := Revoke(revoked, RevocationReasonSuperseded, time.Now(), "admin"); err == nil {
		t.Fatal("revoking an already-revoked key should fail")
	}

	archived := ArchivedState{ArchivedAt: time.Now()}
	if _, err := Revoke(archived, RevocationReasonSuperseded, time.Now(), "admin"); err == nil {
		t.Fatal("revoking an archived key should fail")
	}
}

func TestRevoke_AllowedFromEveryNonTerminalState(t *testing.T) {
	now := time.Now()
	states := []State{
		GeneratedState{GeneratedAt: now},
		ImportedState{ImportedAt: now},
		ActiveState{ActivatedAt: now},
		RotationPendingState{InitiatedAt: now},
		RotatedState{RotatedAt: now},
		ExpiredState{ExpiredAt: now},
	}
	for _, s := range states {
		if _, err := Revoke(s, RevocationReasonCompromised, now, "admin"); err != nil {
			t.Errorf("Revoke(%s) should succeed, got %v", s.Kind(), err)
		}
	}
}

func TestRotationLifecycle(t *testing.T) {
	now := time.Now().UTC()
	active := ActiveState{ActivatedAt: now}
	newID := NewID()

	pending, err := InitiateRotation(active, newID, now, "person-1")
	if err != nil {
		t.Fatalf("InitiateRotation: %v", err)
	}
	if pending.Kind() != KindRotationPending {
		t.Fatalf("Kind() = %s, want rotation_pending", pending.Kind())
	}

	rotated, err := CompleteRotation(pending, now, "person-1")
	if err != nil {
		t.Fatalf("CompleteRotation: %v", err)
	}
	if rotated.Kind() != KindRotated {
		t.Fatalf("Kind() = %s, want rotated", rotated.Kind())
	}

	if _, err := CompleteRotation(active, now, "person-1"); err == nil {
		t.Fatal("CompleteRotation from Active (not RotationPending) should fail")
	}
}

func TestArchive_OnlyFromRotatedRevokedOrExpired(t *testing.T) {
	now := time.Now().UTC()

	cases := []struct {
		state State
		want  ArchivedFromState
	}{
		{RotatedState{RotatedAt: now}, ArchivedFromRotated},
		{RevokedState{RevokedAt: now}, ArchivedFromRevoked},
		{ExpiredState{ExpiredAt: now}, ArchivedFromExpired},
	}
	for _, c := range cases {
		got, err := Archive(c.state, now, "admin", nil)
		if err != nil {
			t.Fatalf("Archive(%s): %v", c.state.Kind(), err)
		}
		archived, ok := got.(ArchivedState)
		if !ok {
			t.Fatalf("Archive did not return ArchivedState")
		}
		if archived.PreviousState != c.want {
			t.Errorf("PreviousState = %s, want %s", archived.PreviousState, c.want)
		}
	}

	if _, err := Archive(ActiveState{ActivatedAt: now}, now, "admin", nil); err == nil {
		t.Fatal("Archive(Active) should fail")
	}
}

func TestArchivedIsTerminalAndIrreversible(t *testing.T) {
	archived := ArchivedState{ArchivedAt: time.Now()}
	if !archived.IsTerminal() {
		t.Fatal("Archived must be terminal")
	}
	if CanTransitionTo(KindArchived, KindActive) {
		t.Fatal("Archived must have no legal successors")
	}
}

func TestCanTransitionTo_MatchesTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Kind
		want     bool
	}{
		{KindGenerated, KindActive, true},
		{KindImported, KindActive, true},
		{KindActive, KindRotationPending, true},
		{KindRotationPending, KindRotated, true},
		{KindRotated, KindArchived, true},
		{KindRevoked, KindArchived, true},
		{KindExpired, KindArchived, true},
		{KindActive, KindExpired, true},
		{KindGenerated, KindRotated, false},
		{KindActive, KindArchived, false},
	}
	for _, c := range cases {
		if got := CanTransitionTo(c.from, c.to); got != c.want {
			t.Errorf("CanTransitionTo(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
