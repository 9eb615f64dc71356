package orchestrator_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/internal/drivers/natsjwt"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/drivers/pkicrypto"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/drivers/yubikeymock"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/orchestrator"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/saga/certprovisioning"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/saga/onboarding"
)

// fixedClock is a drivers.Clock that ticks forward by a second on every
// call, giving each phase transition a distinct, deterministic timestamp.
type fixedClock struct{ at time.Time }

func (c *fixedClock) Now() time.Time {
	c.at = c.at.Add(time.Second)
	return c.at
}

func testEngine() (*orchestrator.Engine, *natsjwt.Driver) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pki := pkicrypto.New(logger)
	jwts := natsjwt.New(logger)
	e := orchestrator.New(orchestrator.Drivers{
		Keys:     pki,
		Certs:    pki,
		YubiKeys: yubikeymock.New(logger),
		JWTs:     jwts,
		Clock:    &fixedClock{at: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	return e, jwts
}

func TestStartOnboarding_CompletesThroughAllOptionalPhases(t *testing.T) {
	e, jwts := testEngine()
	// Onboarding assumes NATSAccountID already names a registered signing
	// key handle, the way it would after bootstrap provisions an account.
	if err := jwts.RegisterSigningKey("account-handle-1", []byte("test-secret")); err != nil {
		t.Fatalf("RegisterSigningKey() error = %v", err)
	}

	run, err := e.StartOnboarding(context.Background(), onboarding.Request{
		Name:          "Ada Lovelace",
		Email:         "ada@example.com",
		NATSAccountID: "account-handle-1",
		NeedsYubiKey:  true,
	})
	if err != nil {
		t.Fatalf("StartOnboarding() error = %v", err)
	}
	if !run.Saga.IsCompleted() {
		t.Fatalf("onboarding saga phase = %s, want completed", run.Saga.Phase)
	}
	if run.Saga.Artifacts.PersonID == "" || run.Saga.Artifacts.KeyID == "" || run.Saga.Artifacts.CertificateID == "" {
		t.Fatalf("expected person/key/certificate artifacts to be recorded, got %+v", run.Saga.Artifacts)
	}
	if run.Saga.Artifacts.NatsUserID == "" {
		t.Fatalf("expected a NATS user to be recorded when NATSAccountID is set")
	}
	if run.Saga.Artifacts.YubiKeyDeviceID == "" {
		t.Fatalf("expected a yubikey device to be recorded when NeedsYubiKey is true")
	}

	if _, ok := e.LookupOnboarding(run.Saga.ID); !ok {
		t.Fatalf("LookupOnboarding(%q) = not found", run.Saga.ID)
	}
}

func TestStartOnboarding_SkipsOptionalPhasesWhenNotRequested(t *testing.T) {
	e, _ := testEngine()

	run, err := e.StartOnboarding(context.Background(), onboarding.Request{
		Name:  "Grace Hopper",
		Email: "grace@example.com",
	})
	if err != nil {
		t.Fatalf("StartOnboarding() error = %v", err)
	}
	if !run.Saga.IsCompleted() {
		t.Fatalf("onboarding saga phase = %s, want completed", run.Saga.Phase)
	}
	if run.Saga.Artifacts.NatsUserID != "" {
		t.Fatalf("expected no NATS user when NATSAccountID is empty, got %q", run.Saga.Artifacts.NatsUserID)
	}
	if run.Saga.Artifacts.YubiKeyDeviceID != "" {
		t.Fatalf("expected no yubikey when NeedsYubiKey is false, got %q", run.Saga.Artifacts.YubiKeyDeviceID)
	}
}

func TestStartOnboarding_ValidationFailureNeverStartsARun(t *testing.T) {
	e, _ := testEngine()

	run, err := e.StartOnboarding(context.Background(), onboarding.Request{Email: "missing-name@example.com"})
	if err == nil {
		t.Fatalf("expected a validation error for a missing name")
	}
	if run != nil {
		t.Fatalf("expected no run to be created on validation failure, got %+v", run)
	}
}

func TestStartCertProvisioning_VerifiesAndCompletes(t *testing.T) {
	e, _ := testEngine()

	run, err := e.StartCertProvisioning(context.Background(), certprovisioning.Request{
		PersonName:    "Alan Turing",
		YubiKeySerial: "yk-001",
		Slot:          "9a",
		ValidDays:     365,
	})
	if err != nil {
		t.Fatalf("StartCertProvisioning() error = %v", err)
	}
	if !run.Saga.IsCompleted() {
		t.Fatalf("certprovisioning saga phase = %s, want completed", run.Saga.Phase)
	}
	if run.Saga.Artifacts.Verification == nil || run.Saga.Artifacts.Verification.Kind != certprovisioning.VerificationVerified {
		t.Fatalf("expected a verified verification result, got %+v", run.Saga.Artifacts.Verification)
	}

	if _, ok := e.LookupCertProvisioning(run.Saga.ID); !ok {
		t.Fatalf("LookupCertProvisioning(%q) = not found", run.Saga.ID)
	}
}

func TestStartCertProvisioning_ValidationFailureNeverStartsARun(t *testing.T) {
	e, _ := testEngine()

	run, err := e.StartCertProvisioning(context.Background(), certprovisioning.Request{PersonName: "No Serial"})
	if err == nil {
		t.Fatalf("expected a validation error for a missing yubikey serial")
	}
	if run != nil {
		t.Fatalf("expected no run to be created on validation failure, got %+v", run)
	}
}
