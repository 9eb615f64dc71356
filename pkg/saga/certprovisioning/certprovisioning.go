// Package certprovisioning implements the certificate-provisioning saga:
// generating a key and certificate for a person and writing it onto a
// specific YubiKey slot, verifying the write, and compensating in reverse
// on failure (spec.md §4.3).
package certprovisioning

import (
	"fmt"
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/saga"
)

// Phase is one step of the certificate-provisioning saga's progression.
type Phase string

const (
	PhaseInitial               Phase = "initial"
	PhaseGeneratingKey         Phase = "generating_key"
	PhaseGeneratingCertificate Phase = "generating_certificate"
	PhaseProvisioningToYubiKey Phase = "provisioning_to_yubikey"
	PhaseVerifyingProvisioning Phase = "verifying_provisioning"
	PhaseCompleted             Phase = "completed"
	PhaseFailed                Phase = "failed"
)

// VerificationStatus is the outcome of re-reading the YubiKey slot after
// provisioning to confirm the write took.
type VerificationStatus struct {
	Kind    VerificationKind
	Message string // only set when Kind is VerificationError
}

// VerificationKind enumerates the possible verification outcomes.
type VerificationKind string

const (
	VerificationVerified            VerificationKind = "verified"
	VerificationNotFound            VerificationKind = "not_found"
	VerificationFingerprintMismatch VerificationKind = "fingerprint_mismatch"
	VerificationError               VerificationKind = "error"
)

func (v VerificationStatus) ok() bool { return v.Kind == VerificationVerified }

// Request is the certificate-provisioning saga's immutable input.
type Request struct {
	PersonName   string
	YubiKeySerial string
	Slot         string
	ValidDays    int
}

// Artifacts accumulates the ids the saga has recorded so far.
type Artifacts struct {
	KeyID         string
	CertificateID string
	Provisioned   bool
	Verification  *VerificationStatus
}

// CompensationStep names one reverse rollback action.
type CompensationStep string

const (
	StepClearYubiKeySlot CompensationStep = "clear_yubikey_slot"
	StepRevokeCertificate CompensationStep = "revoke_certificate"
	StepRevokeKey         CompensationStep = "revoke_key"
)

// Saga is one running instance of the certificate-provisioning workflow.
type Saga struct {
	ID            string
	CorrelationID string
	Phase         Phase
	FailedAtPhase *Phase
	StartedAt     time.Time
	UpdatedAt     time.Time
	Request       Request
	Artifacts     Artifacts
	Err           *saga.FailureInfo

	compensationSteps  []CompensationStep
	compensationCursor int
}

// New constructs a saga in its Initial phase.
func New(id, correlationID string, req Request) *Saga {
	return &Saga{ID: id, CorrelationID: correlationID, Phase: PhaseInitial, Request: req}
}

// Start validates preconditions: person name non-empty, YubiKey serial
// non-empty, and validity of at least one day.
func (s *Saga) Start(at time.Time) error {
	if s.Phase != PhaseInitial {
		return cimerrors.InvalidTransition{EntityType: "certprovisioning_saga", Current: string(s.Phase), Event: "start", Reason: "can only start from Initial"}
	}
	if s.Request.PersonName == "" {
		return cimerrors.ValidationFailed{EntityType: "certprovisioning_saga", Reason: "person name is required"}
	}
	if s.Request.YubiKeySerial == "" {
		return cimerrors.ValidationFailed{EntityType: "certprovisioning_saga", Reason: "yubikey serial is required"}
	}
	if s.Request.ValidDays < 1 {
		return cimerrors.ValidationFailed{EntityType: "certprovisioning_saga", Reason: "valid_days must be at least 1"}
	}
	s.Phase = PhaseGeneratingKey
	s.StartedAt = at
	s.UpdatedAt = at
	return nil
}

// Advance moves linearly through the remaining phases.
func (s *Saga) Advance(at time.Time) error {
	if s.IsTerminal() {
		return cimerrors.TerminalState{EntityType: "certprovisioning_saga", Current: string(s.Phase), Reason: "saga already terminal"}
	}
	next, ok := s.nextPhase()
	if !ok {
		return cimerrors.InvalidTransition{EntityType: "certprovisioning_saga", Current: string(s.Phase), Event: "advance", Reason: "no successor phase"}
	}
	s.Phase = next
	s.UpdatedAt = at
	return nil
}

func (s *Saga) nextPhase() (Phase, bool) {
	switch s.Phase {
	case PhaseGeneratingKey:
		return PhaseGeneratingCertificate, true
	case PhaseGeneratingCertificate:
		return PhaseProvisioningToYubiKey, true
	case PhaseProvisioningToYubiKey:
		return PhaseVerifyingProvisioning, true
	default:
		return "", false
	}
}

// CompleteVerification records the verification outcome and moves to
// Completed if verified, or fails the saga otherwise (Scenario S4).
func (s *Saga) CompleteVerification(v VerificationStatus, at time.Time) error {
	if s.Phase != PhaseVerifyingProvisioning {
		return cimerrors.InvalidTransition{EntityType: "certprovisioning_saga", Current: string(s.Phase), Event: "complete_verification", Reason: "must be verifying provisioning"}
	}
	s.Artifacts.Verification = &v
	s.UpdatedAt = at
	if v.ok() {
		s.Phase = PhaseCompleted
		return nil
	}
	s.Fail(verificationFailureMessage(v), "verifying_provisioning", at)
	return nil
}

func verificationFailureMessage(v VerificationStatus) string {
	switch v.Kind {
	case VerificationNotFound:
		return "yubikey slot verification found no certificate"
	case VerificationFingerprintMismatch:
		return "yubikey slot verification fingerprint mismatch"
	case VerificationError:
		return v.Message
	default:
		return "yubikey slot verification failed"
	}
}

// Fail snapshots the current phase and records a structured error.
func (s *Saga) Fail(message, step string, at time.Time) {
	failedAt := s.Phase
	s.FailedAtPhase = &failedAt
	s.Err = &saga.FailureInfo{Message: message, FailedStep: step, OccurredAt: at}
	s.Phase = PhaseFailed
	s.UpdatedAt = at
}

func (s *Saga) IsTerminal() bool  { return s.Phase == PhaseCompleted || s.Phase == PhaseFailed }
func (s *Saga) IsCompleted() bool { return s.Phase == PhaseCompleted }
func (s *Saga) IsFailed() bool    { return s.Phase == PhaseFailed }

// StartCompensation computes the ordered reverse steps: clear the
// YubiKey slot only if provisioning actually wrote to it, then revoke
// the certificate and key if they were generated.
func (s *Saga) StartCompensation() (CompensationStep, error) {
	if s.FailedAtPhase == nil {
		return "", cimerrors.GuardFailed{EntityType: "certprovisioning_saga", Reason: "cannot compensate a saga that never failed"}
	}
	s.compensationSteps = s.computeCompensationSequence()
	s.compensationCursor = 0
	if len(s.compensationSteps) == 0 {
		return "", cimerrors.GuardFailed{EntityType: "certprovisioning_saga", Reason: "no artifacts to compensate"}
	}
	step := s.compensationSteps[0]
	s.compensationCursor = 1
	return step, nil
}

// AdvanceCompensation yields the next reverse step, or ok=false when done.
func (s *Saga) AdvanceCompensation() (step CompensationStep, ok bool) {
	if s.compensationCursor >= len(s.compensationSteps) {
		return "", false
	}
	step = s.compensationSteps[s.compensationCursor]
	s.compensationCursor++
	return step, true
}

func (s *Saga) computeCompensationSequence() []CompensationStep {
	var steps []CompensationStep
	if s.Artifacts.Provisioned {
		steps = append(steps, StepClearYubiKeySlot)
	}
	if s.Artifacts.CertificateID != "" {
		steps = append(steps, StepRevokeCertificate)
	}
	if s.Artifacts.KeyID != "" {
		steps = append(steps, StepRevokeKey)
	}
	return steps
}

// Status reports the saga's human-readable summary.
func (s *Saga) Status() saga.Status {
	return saga.Status{
		StepName:    string(s.Phase),
		Description: fmt.Sprintf("certificate provisioning saga %s at phase %s", s.ID, s.Phase),
		IsTerminal:  s.IsTerminal(),
		IsCompleted: s.IsCompleted(),
		IsFailed:    s.IsFailed(),
	}
}

func (s *Saga) RecordKey(id string)         { s.Artifacts.KeyID = id }
func (s *Saga) RecordCertificate(id string) { s.Artifacts.CertificateID = id }
func (s *Saga) RecordProvisioned()          { s.Artifacts.Provisioned = true }
