package certificate

import (
	"testing"
	"time"
)

func TestFullLifecycle_PendingToArchived(t *testing.T) {
	now := time.Now().UTC()

	s, err := Sign(PendingState{PendingSince: now}, now, "ca-1", "person-1")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	s, err = Activate(s, now, now.Add(365*24*time.Hour))
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}

	newID := NewID()
	s, err = InitiateRenewal(s, newID, now, "person-1")
	if err != nil {
		t.Fatalf("InitiateRenewal: %v", err)
	}

	s, err = CompleteRenewal(s, now, "person-1")
	if err != nil {
		t.Fatalf("CompleteRenewal: %v", err)
	}
	if s.Kind() != KindRenewed {
		t.Fatalf("Kind() = %s, want renewed", s.Kind())
	}

	s, err = Archive(s, now, "admin")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	archived := s.(ArchivedState)
	if archived.PreviousState != ArchivedFromRenewed {
		t.Errorf("PreviousState = %s, want renewed", archived.PreviousState)
	}
	if !archived.IsTerminal() {
		t.Fatal("Archived must be terminal")
	}
}

func TestActivate_RejectsNonNotAfterAfterNotBefore(t *testing.T) {
	now := time.Now().UTC()
	issued := IssuedState{IssuedAt: now}
	if _, err := Activate(issued, now, now); err == nil {
		t.Fatal("Activate should reject not_after == not_before")
	}
}

func TestRevoke_TerminalStatesRejectRevocation(t *testing.T) {
	now := time.Now().UTC()
	revoked := RevokedState{RevokedAt: now}
	if _, err := Revoke(revoked, RevocationReasonSuperseded, now, "admin"); err == nil {
		t.Fatal("revoking an already-revoked certificate should fail")
	}
}

func TestCRLAndOCSPMarkers_OnlyOnRevoked(t *testing.T) {
	now := time.Now().UTC()
	active := ActiveState{NotBefore: now, NotAfter: now.Add(time.Hour)}
	if _, err := PublishToCRL(active); err == nil {
		t.Fatal("PublishToCRL should fail for a non-Revoked certificate")
	}

	revoked, err := Revoke(active, RevocationReasonKeyCompromise, now, "admin")
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	revoked, err = PublishToCRL(revoked)
	if err != nil {
		t.Fatalf("PublishToCRL: %v", err)
	}
	revoked, err = UpdateOCSP(revoked)
	if err != nil {
		t.Fatalf("UpdateOCSP: %v", err)
	}
	r := revoked.(RevokedState)
	if !r.CRLPublished || !r.OCSPUpdated {
		t.Fatal("expected both CRLPublished and OCSPUpdated to be true")
	}
}

func TestIsTimeValid(t *testing.T) {
	now := time.Now().UTC()
	active := ActiveState{NotBefore: now.Add(-time.Hour), NotAfter: now.Add(time.Hour)}
	if !active.IsTimeValid(now) {
		t.Fatal("expected now to fall within validity window")
	}
	if active.IsTimeValid(now.Add(2 * time.Hour)) {
		t.Fatal("expected time outside validity window to be invalid")
	}
}

func TestCanTransitionTo_AnyNonTerminalToRevoked(t *testing.T) {
	nonTerminal := []Kind{KindPending, KindIssued, KindActive, KindRenewalPending, KindRenewed, KindExpired}
	for _, k := range nonTerminal {
		if !CanTransitionTo(k, KindRevoked) {
			t.Errorf("expected %s -> revoked to be legal", k)
		}
	}
	if CanTransitionTo(KindRevoked, KindRevoked) {
		t.Fatal("revoked -> revoked should not be legal")
	}
	if CanTransitionTo(KindArchived, KindRevoked) {
		t.Fatal("archived is terminal, nothing should follow it")
	}
}
