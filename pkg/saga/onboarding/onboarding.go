// Package onboarding implements the person-onboarding saga: creating one
// person, their key, and their certificate, then optionally a NATS user
// and a YubiKey, with reverse compensation on failure (spec.md §4.3).
package onboarding

import (
	"fmt"
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/saga"
)

// Phase is one step of the onboarding saga's progression.
type Phase string

const (
	PhaseInitial           Phase = "initial"
	PhaseCreatingPerson    Phase = "creating_person"
	PhaseGeneratingKey     Phase = "generating_key"
	PhaseGeneratingCert    Phase = "generating_certificate"
	PhaseCreatingNatsUser  Phase = "creating_nats_user"
	PhaseProvisioningYubiKey Phase = "provisioning_yubikey"
	PhaseCompleted         Phase = "completed"
	PhaseFailed            Phase = "failed"
)

// Request is the onboarding saga's immutable input.
type Request struct {
	Name          string
	Email         string
	NATSAccountID string // empty means no NATS user is created
	NeedsYubiKey  bool
}

func (r Request) needsNatsUser() bool { return r.NATSAccountID != "" }

// Artifacts accumulates the ids the saga has recorded so far.
type Artifacts struct {
	PersonID      string
	KeyID         string
	CertificateID string
	NatsUserID    string
	YubiKeyDeviceID string
}

// CompensationStep names one reverse rollback action.
type CompensationStep string

const (
	StepRevokeYubiKeySlots CompensationStep = "revoke_yubikey_slots"
	StepDeleteNatsUser     CompensationStep = "delete_nats_user"
	StepRevokeCertificate  CompensationStep = "revoke_certificate"
	StepRevokeKey          CompensationStep = "revoke_key"
	StepDeactivatePerson   CompensationStep = "deactivate_person"
)

// Saga is one running instance of the person-onboarding workflow.
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

// Start validates preconditions (name and email non-empty) and moves to
// CreatingPerson.
func (s *Saga) Start(at time.Time) error {
	if s.Phase != PhaseInitial {
		return cimerrors.InvalidTransition{EntityType: "onboarding_saga", Current: string(s.Phase), Event: "start", Reason: "can only start from Initial"}
	}
	if s.Request.Name == "" || s.Request.Email == "" {
		return cimerrors.ValidationFailed{EntityType: "onboarding_saga", Reason: "name and email are required"}
	}
	s.Phase = PhaseCreatingPerson
	s.StartedAt = at
	s.UpdatedAt = at
	return nil
}

// Advance moves to the next phase, skipping CreatingNatsUser when no NATS
// account was supplied and ProvisioningYubiKey when none was requested.
func (s *Saga) Advance(at time.Time) error {
	if s.IsTerminal() {
		return cimerrors.TerminalState{EntityType: "onboarding_saga", Current: string(s.Phase), Reason: "saga already terminal"}
	}
	next, ok := s.nextPhase()
	if !ok {
		return cimerrors.InvalidTransition{EntityType: "onboarding_saga", Current: string(s.Phase), Event: "advance", Reason: "no successor phase"}
	}
	s.Phase = next
	s.UpdatedAt = at
	return nil
}

func (s *Saga) nextPhase() (Phase, bool) {
	switch s.Phase {
	case PhaseCreatingPerson:
		return PhaseGeneratingKey, true
	case PhaseGeneratingKey:
		return PhaseGeneratingCert, true
	case PhaseGeneratingCert:
		if s.Request.needsNatsUser() {
			return PhaseCreatingNatsUser, true
		}
		if s.Request.NeedsYubiKey {
			return PhaseProvisioningYubiKey, true
		}
		return PhaseCompleted, true
	case PhaseCreatingNatsUser:
		if s.Request.NeedsYubiKey {
			return PhaseProvisioningYubiKey, true
		}
		return PhaseCompleted, true
	case PhaseProvisioningYubiKey:
		return PhaseCompleted, true
	default:
		return "", false
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

// StartCompensation computes the ordered reverse steps from which
// artifacts were recorded before failure.
func (s *Saga) StartCompensation() (CompensationStep, error) {
	if s.FailedAtPhase == nil {
		return "", cimerrors.GuardFailed{EntityType: "onboarding_saga", Reason: "cannot compensate a saga that never failed"}
	}
	s.compensationSteps = s.computeCompensationSequence()
	s.compensationCursor = 0
	if len(s.compensationSteps) == 0 {
		return "", cimerrors.GuardFailed{EntityType: "onboarding_saga", Reason: "no artifacts to compensate"}
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
	if s.Artifacts.YubiKeyDeviceID != "" {
		steps = append(steps, StepRevokeYubiKeySlots)
	}
	if s.Artifacts.NatsUserID != "" {
		steps = append(steps, StepDeleteNatsUser)
	}
	if s.Artifacts.CertificateID != "" {
		steps = append(steps, StepRevokeCertificate)
	}
	if s.Artifacts.KeyID != "" {
		steps = append(steps, StepRevokeKey)
	}
	if s.Artifacts.PersonID != "" {
		steps = append(steps, StepDeactivatePerson)
	}
	return steps
}

// Status reports the saga's human-readable summary.
func (s *Saga) Status() saga.Status {
	return saga.Status{
		StepName:    string(s.Phase),
		Description: fmt.Sprintf("onboarding saga %s at phase %s", s.ID, s.Phase),
		IsTerminal:  s.IsTerminal(),
		IsCompleted: s.IsCompleted(),
		IsFailed:    s.IsFailed(),
	}
}

func (s *Saga) RecordPerson(id string)      { s.Artifacts.PersonID = id }
func (s *Saga) RecordKey(id string)         { s.Artifacts.KeyID = id }
func (s *Saga) RecordCertificate(id string) { s.Artifacts.CertificateID = id }
func (s *Saga) RecordNatsUser(id string)    { s.Artifacts.NatsUserID = id }
func (s *Saga) RecordYubiKey(id string)     { s.Artifacts.YubiKeyDeviceID = id }
