package onboarding

import (
	"testing"
	"time"
)

// TestS3_NoNatsNoYubiKey implements Scenario S3: a person with no
// nats_account_id and no yubikey requirement advances
// CreatingPerson -> GeneratingKey -> GeneratingCertificate -> Completed,
// skipping both optional phases.
func TestS3_NoNatsNoYubiKey(t *testing.T) {
	s := New("saga-1", "corr-1", Request{Name: "Alice", Email: "alice@thecowboyai.com"})
	now := time.Unix(0, 0)

	if err := s.Start(now); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.RecordPerson("person-1")

	wantOrder := []Phase{PhaseGeneratingKey, PhaseGeneratingCert, PhaseCompleted}
	for i, want := range wantOrder {
		if err := s.Advance(now); err != nil {
			t.Fatalf("Advance[%d]: %v", i, err)
		}
		if s.Phase != want {
			t.Fatalf("Advance[%d]: got %s, want %s", i, s.Phase, want)
		}
	}
	if !s.IsCompleted() {
		t.Fatalf("expected Completed, got %s", s.Phase)
	}
}

func TestAdvance_IncludesNatsUserWhenAccountSupplied(t *testing.T) {
	s := New("saga-2", "corr-2", Request{Name: "Bob", Email: "bob@thecowboyai.com", NATSAccountID: "account-1"})
	now := time.Unix(0, 0)
	_ = s.Start(now)
	_ = s.Advance(now) // GeneratingKey
	_ = s.Advance(now) // GeneratingCertificate
	if err := s.Advance(now); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if s.Phase != PhaseCreatingNatsUser {
		t.Fatalf("expected CreatingNatsUser, got %s", s.Phase)
	}
}

func TestAdvance_IncludesYubiKeyWhenRequested(t *testing.T) {
	s := New("saga-3", "corr-3", Request{Name: "Carol", Email: "carol@thecowboyai.com", NeedsYubiKey: true})
	now := time.Unix(0, 0)
	_ = s.Start(now)
	_ = s.Advance(now) // GeneratingKey
	_ = s.Advance(now) // GeneratingCertificate
	if err := s.Advance(now); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if s.Phase != PhaseProvisioningYubiKey {
		t.Fatalf("expected ProvisioningYubiKey, got %s", s.Phase)
	}
}

func TestCompensation_ReversesOnlyRecordedArtifacts(t *testing.T) {
	s := New("saga-4", "corr-4", Request{Name: "Dave", Email: "dave@thecowboyai.com"})
	now := time.Unix(0, 0)
	_ = s.Start(now)
	s.RecordPerson("person-4")
	_ = s.Advance(now) // GeneratingKey
	s.RecordKey("key-4")
	s.Fail("key generation driver unavailable", "generating_key", now)

	first, err := s.StartCompensation()
	if err != nil {
		t.Fatalf("StartCompensation: %v", err)
	}
	if first != StepRevokeKey {
		t.Fatalf("expected first step RevokeKey, got %s", first)
	}
	second, ok := s.AdvanceCompensation()
	if !ok || second != StepDeactivatePerson {
		t.Fatalf("expected second step DeactivatePerson, got %s (ok=%v)", second, ok)
	}
	if _, ok := s.AdvanceCompensation(); ok {
		t.Fatal("expected compensation exhausted")
	}
}

func TestStart_RejectsEmptyNameOrEmail(t *testing.T) {
	if err := New("s", "c", Request{Email: "a@b.com"}).Start(time.Unix(0, 0)); err == nil {
		t.Fatal("expected validation error for empty name")
	}
	if err := New("s", "c", Request{Name: "A"}).Start(time.Unix(0, 0)); err == nil {
		t.Fatal("expected validation error for empty email")
	}
}
