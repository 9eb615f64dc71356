package bootstrap

import (
	"testing"
	"time"
)

func thecowboyaiRequest() Request {
	return Request{
		OrganizationName: "thecowboyai",
		Units:            []string{"engineering", "security", "operations"},
		People: []PersonInput{
			{Name: "Alice", Email: "alice@thecowboyai.com", UnitName: "engineering"},
			{Name: "Bob", Email: "bob@thecowboyai.com", UnitName: "engineering"},
			{Name: "Carol", Email: "carol@thecowboyai.com", UnitName: "security", NeedsYubiKey: true},
			{Name: "Dave", Email: "dave@thecowboyai.com", UnitName: "security"},
			{Name: "Erin", Email: "erin@thecowboyai.com", UnitName: "security"},
			{Name: "Frank", Email: "frank@thecowboyai.com", UnitName: "operations"},
			{Name: "Grace", Email: "grace@thecowboyai.com", UnitName: "operations"},
			{Name: "Heidi", Email: "heidi@thecowboyai.com", UnitName: "operations"},
			{Name: "Ivan", Email: "ivan@thecowboyai.com", UnitName: "operations"},
			{Name: "Judy", Email: "judy@thecowboyai.com", UnitName: "operations"},
			{Name: "Mallory", Email: "mallory@thecowboyai.com", UnitName: "operations"},
		},
	}
}

// TestS1_MinimalBootstrapReachesCompleted implements Scenario S1: a minimal
// bootstrap for org "thecowboyai" with 3 units and 11 people must reach
// Completed.
func TestS1_MinimalBootstrapReachesCompleted(t *testing.T) {
	req := thecowboyaiRequest()
	if len(req.Units) != 3 || len(req.People) != 11 {
		t.Fatalf("fixture drifted: want 3 units/11 people, got %d/%d", len(req.Units), len(req.People))
	}

	s := New("saga-1", "corr-1", req)
	now := time.Unix(0, 0)

	if err := s.Start(now); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.RecordOrganization("org-1")
	for _, u := range req.Units {
		s.RecordUnit(u)
	}

	wantOrder := []Phase{
		PhaseAddingPeople,
		PhaseGeneratingPKIRootCA,
		PhaseGeneratingPKIIntermediateCAs,
		PhaseGeneratingPKILeafCerts,
		PhaseSettingUpNATSOperator,
		PhaseSettingUpNATSSystemAccount,
		PhaseSettingUpNATSAccounts,
		PhaseSettingUpNATSUsers,
		PhaseProvisioningYubiKeys,
		PhaseCompleted,
	}
	for i, want := range wantOrder {
		if err := s.Advance(now); err != nil {
			t.Fatalf("Advance[%d]: %v", i, err)
		}
		if s.Phase != want {
			t.Fatalf("Advance[%d]: got phase %s, want %s", i, s.Phase, want)
		}
		switch s.Phase {
		case PhaseAddingPeople:
			for _, p := range req.People {
				s.RecordPerson(p.Name)
			}
		case PhaseGeneratingPKIRootCA:
			s.RecordRootCA("root-ca-1")
		case PhaseGeneratingPKIIntermediateCAs:
			s.RecordIntermediateCA("int-ca-1")
			s.RecordIntermediateCA("int-ca-2")
		case PhaseGeneratingPKILeafCerts:
			for range req.People {
				s.RecordLeafCert("leaf-cert")
			}
		case PhaseSettingUpNATSOperator:
			s.RecordOperator("operator-1")
		case PhaseSettingUpNATSSystemAccount:
			s.RecordSystemAccount("sys-account-1")
		case PhaseSettingUpNATSAccounts:
			for _, u := range req.Units {
				s.RecordAccount(u)
			}
		case PhaseSettingUpNATSUsers:
			for _, p := range req.People {
				s.RecordUser(p.Name)
			}
		case PhaseProvisioningYubiKeys:
			s.RecordYubiKey("yk-carol", []string{"9a"})
		}
	}

	if !s.IsCompleted() {
		t.Fatalf("expected Completed, got %s", s.Phase)
	}
	if len(s.Artifacts.PersonIDs) != 11 {
		t.Fatalf("expected 11 recorded people, got %d", len(s.Artifacts.PersonIDs))
	}
}

// TestS2_PKIFailureDuringIntermediateCA implements Scenario S2: failure
// during the second intermediate CA leaves failed_at_phase pinned to
// GeneratingIntermediateCAs, and compensation runs RollbackPKI then
// RollbackOrganization only (no NATS/YubiKey artifacts exist yet).
func TestS2_PKIFailureDuringIntermediateCA(t *testing.T) {
	req := thecowboyaiRequest()
	s := New("saga-2", "corr-2", req)
	now := time.Unix(0, 0)

	if err := s.Start(now); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.RecordOrganization("org-2")

	if err := s.Advance(now); err != nil { // -> AddingPeople
		t.Fatalf("Advance: %v", err)
	}
	if err := s.Advance(now); err != nil { // -> GeneratingPKIRootCA
		t.Fatalf("Advance: %v", err)
	}
	s.RecordRootCA("root-ca-2")
	if err := s.Advance(now); err != nil { // -> GeneratingPKIIntermediateCAs
		t.Fatalf("Advance: %v", err)
	}
	s.RecordIntermediateCA("int-ca-1")

	s.Fail("second intermediate CA signing failed", "generating_intermediate_ca_2", now)

	if s.FailedAtPhase == nil || *s.FailedAtPhase != PhaseGeneratingPKIIntermediateCAs {
		t.Fatalf("expected failed_at_phase=GeneratingPKIIntermediateCAs, got %v", s.FailedAtPhase)
	}
	if !s.IsFailed() {
		t.Fatal("expected saga to be Failed")
	}

	first, err := s.StartCompensation()
	if err != nil {
		t.Fatalf("StartCompensation: %v", err)
	}
	if first != StepRollbackPKI {
		t.Fatalf("expected first compensation step RollbackPKI, got %s", first)
	}

	second, ok := s.AdvanceCompensation()
	if !ok || second != StepRollbackOrganization {
		t.Fatalf("expected second compensation step RollbackOrganization, got %s (ok=%v)", second, ok)
	}

	if _, ok := s.AdvanceCompensation(); ok {
		t.Fatal("expected compensation to be exhausted after RollbackOrganization")
	}
}

func TestAdvance_RejectsAfterTerminal(t *testing.T) {
	s := New("saga-3", "corr-3", Request{OrganizationName: "x"})
	now := time.Unix(0, 0)
	_ = s.Start(now)
	s.Fail("boom", "creating_organization", now)
	if err := s.Advance(now); err == nil {
		t.Fatal("expected error advancing a terminal saga")
	}
}

func TestStart_RejectsEmptyOrganizationName(t *testing.T) {
	s := New("saga-4", "corr-4", Request{})
	if err := s.Start(time.Unix(0, 0)); err == nil {
		t.Fatal("expected validation error for empty organization name")
	}
}

func TestStartCompensation_RejectsNonFailedSaga(t *testing.T) {
	s := New("saga-5", "corr-5", Request{OrganizationName: "x"})
	if _, err := s.StartCompensation(); err == nil {
		t.Fatal("expected guard error compensating a saga that never failed")
	}
}
