// Package bootstrap implements the complete-bootstrap saga: the widest of
// the three workflows, standing up an organization, its people, its PKI
// chain, its NATS security hierarchy, and (optionally) YubiKey
// provisioning, in one correlated sequence with reverse compensation on
// failure (spec.md §4.3).
package bootstrap

import (
	"fmt"
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/saga"
)

// Phase is one step of the bootstrap saga's linear progression, with the
// PKI and NATS stages broken into their own sub-phases per spec.md §4.3.
type Phase string

const (
	PhaseInitial                     Phase = "initial"
	PhaseCreatingOrganization        Phase = "creating_organization"
	PhaseAddingPeople                Phase = "adding_people"
	PhaseGeneratingPKIRootCA         Phase = "generating_pki_root_ca"
	PhaseGeneratingPKIIntermediateCAs Phase = "generating_pki_intermediate_cas"
	PhaseGeneratingPKILeafCerts      Phase = "generating_pki_leaf_certs"
	PhaseSettingUpNATSOperator       Phase = "setting_up_nats_operator"
	PhaseSettingUpNATSSystemAccount  Phase = "setting_up_nats_system_account"
	PhaseSettingUpNATSAccounts       Phase = "setting_up_nats_accounts"
	PhaseSettingUpNATSUsers          Phase = "setting_up_nats_users"
	PhaseProvisioningYubiKeys        Phase = "provisioning_yubikeys"
	PhaseCompleted                   Phase = "completed"
	PhaseFailed                      Phase = "failed"
)

// PersonInput is one person to be created during AddingPeople.
type PersonInput struct {
	Name         string
	Email        string
	UnitName     string
	NeedsYubiKey bool
}

// Request is the bootstrap saga's immutable input.
type Request struct {
	OrganizationName string
	Units            []string
	People           []PersonInput
}

func (r Request) needsPeoplePhase() bool { return len(r.People) > 0 }
func (r Request) needsYubiKeyPhase() bool {
	for _, p := range r.People {
		if p.NeedsYubiKey {
			return true
		}
	}
	return false
}

// Artifacts accumulates the ids the saga has recorded so far. Compensation
// steps are derived from which of these are populated.
type Artifacts struct {
	OrganizationID     string
	UnitIDs            []string
	PersonIDs          []string
	RootCAID           string
	IntermediateCAIDs  []string
	LeafCertIDs        []string
	OperatorID         string
	SystemAccountID    string
	AccountIDs         []string
	UserIDs            []string
	YubiKeyDeviceIDs   []string
}

// CompensationStep names one reverse rollback action.
type CompensationStep string

const (
	StepRollbackYubiKeys     CompensationStep = "rollback_yubikeys"
	StepRollbackNATS         CompensationStep = "rollback_nats"
	StepRollbackPKI          CompensationStep = "rollback_pki"
	StepRollbackOrganization CompensationStep = "rollback_organization"
)

// Saga is one running instance of the complete-bootstrap workflow.
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

	compensationSteps []CompensationStep
	compensationCursor int
}

// New constructs a saga in its Initial phase.
func New(id, correlationID string, req Request) *Saga {
	return &Saga{ID: id, CorrelationID: correlationID, Phase: PhaseInitial, Request: req}
}

// Start validates preconditions and moves from Initial to the first
// working phase.
func (s *Saga) Start(at time.Time) error {
	if s.Phase != PhaseInitial {
		return cimerrors.InvalidTransition{EntityType: "bootstrap_saga", Current: string(s.Phase), Event: "start", Reason: "can only start from Initial"}
	}
	if s.Request.OrganizationName == "" {
		return cimerrors.ValidationFailed{EntityType: "bootstrap_saga", Reason: "organization name is required"}
	}
	s.Phase = PhaseCreatingOrganization
	s.StartedAt = at
	s.UpdatedAt = at
	return nil
}

// Advance returns the next phase deterministically, skipping AddingPeople
// when no people were supplied and ProvisioningYubiKeys when none need one.
func (s *Saga) Advance(at time.Time) error {
	if s.IsTerminal() {
		return cimerrors.TerminalState{EntityType: "bootstrap_saga", Current: string(s.Phase), Reason: "saga already terminal"}
	}

	next, ok := s.nextPhase()
	if !ok {
		return cimerrors.InvalidTransition{EntityType: "bootstrap_saga", Current: string(s.Phase), Event: "advance", Reason: "no successor phase"}
	}
	s.Phase = next
	s.UpdatedAt = at
	return nil
}

func (s *Saga) nextPhase() (Phase, bool) {
	switch s.Phase {
	case PhaseCreatingOrganization:
		if s.Request.needsPeoplePhase() {
			return PhaseAddingPeople, true
		}
		return PhaseGeneratingPKIRootCA, true
	case PhaseAddingPeople:
		return PhaseGeneratingPKIRootCA, true
	case PhaseGeneratingPKIRootCA:
		return PhaseGeneratingPKIIntermediateCAs, true
	case PhaseGeneratingPKIIntermediateCAs:
		return PhaseGeneratingPKILeafCerts, true
	case PhaseGeneratingPKILeafCerts:
		return PhaseSettingUpNATSOperator, true
	case PhaseSettingUpNATSOperator:
		return PhaseSettingUpNATSSystemAccount, true
	case PhaseSettingUpNATSSystemAccount:
		return PhaseSettingUpNATSAccounts, true
	case PhaseSettingUpNATSAccounts:
		return PhaseSettingUpNATSUsers, true
	case PhaseSettingUpNATSUsers:
		if s.Request.needsYubiKeyPhase() {
			return PhaseProvisioningYubiKeys, true
		}
		return PhaseCompleted, true
	case PhaseProvisioningYubiKeys:
		return PhaseCompleted, true
	default:
		return "", false
	}
}

// Fail snapshots the current phase into FailedAtPhase, records a
// structured error, and moves to Failed.
func (s *Saga) Fail(message, step string, at time.Time) {
	failedAt := s.Phase
	s.FailedAtPhase = &failedAt
	s.Err = &saga.FailureInfo{Message: message, FailedStep: step, OccurredAt: at}
	s.Phase = PhaseFailed
	s.UpdatedAt = at
}

// IsTerminal reports whether the saga has reached Completed or Failed.
func (s *Saga) IsTerminal() bool { return s.Phase == PhaseCompleted || s.Phase == PhaseFailed }

// IsCompleted reports whether the saga succeeded.
func (s *Saga) IsCompleted() bool { return s.Phase == PhaseCompleted }

// IsFailed reports whether the saga failed.
func (s *Saga) IsFailed() bool { return s.Phase == PhaseFailed }

// StartCompensation computes the first reverse step based on the
// failed-at phase (not the current Failed phase), and determines the
// full ordered compensation sequence from which artifacts are present.
func (s *Saga) StartCompensation() (CompensationStep, error) {
	if s.FailedAtPhase == nil {
		return "", cimerrors.GuardFailed{EntityType: "bootstrap_saga", Reason: "cannot compensate a saga that never failed"}
	}
	s.compensationSteps = s.computeCompensationSequence()
	s.compensationCursor = 0
	if len(s.compensationSteps) == 0 {
		return "", cimerrors.GuardFailed{EntityType: "bootstrap_saga", Reason: "no artifacts to compensate"}
	}
	step := s.compensationSteps[0]
	s.compensationCursor = 1
	return step, nil
}

// AdvanceCompensation yields the next reverse step, or ok=false when
// compensation is complete.
func (s *Saga) AdvanceCompensation() (step CompensationStep, ok bool) {
	if s.compensationCursor >= len(s.compensationSteps) {
		return "", false
	}
	step = s.compensationSteps[s.compensationCursor]
	s.compensationCursor++
	return step, true
}

// computeCompensationSequence derives the ordered rollback steps from
// which artifacts were actually recorded before failure — Testable
// Property #3 (compensation symmetry).
func (s *Saga) computeCompensationSequence() []CompensationStep {
	var steps []CompensationStep
	if len(s.Artifacts.YubiKeyDeviceIDs) > 0 {
		steps = append(steps, StepRollbackYubiKeys)
	}
	if s.Artifacts.OperatorID != "" || s.Artifacts.SystemAccountID != "" || len(s.Artifacts.AccountIDs) > 0 || len(s.Artifacts.UserIDs) > 0 {
		steps = append(steps, StepRollbackNATS)
	}
	if s.Artifacts.RootCAID != "" || len(s.Artifacts.IntermediateCAIDs) > 0 || len(s.Artifacts.LeafCertIDs) > 0 {
		steps = append(steps, StepRollbackPKI)
	}
	if s.Artifacts.OrganizationID != "" {
		steps = append(steps, StepRollbackOrganization)
	}
	return steps
}

// Status reports the saga's human-readable summary.
func (s *Saga) Status() saga.Status {
	return saga.Status{
		StepName:    string(s.Phase),
		Description: fmt.Sprintf("bootstrap saga %s at phase %s", s.ID, s.Phase),
		IsTerminal:  s.IsTerminal(),
		IsCompleted: s.IsCompleted(),
		IsFailed:    s.IsFailed(),
	}
}

// Record* methods append to the artifacts table.

func (s *Saga) RecordOrganization(id string)   { s.Artifacts.OrganizationID = id }
func (s *Saga) RecordUnit(id string)           { s.Artifacts.UnitIDs = append(s.Artifacts.UnitIDs, id) }
func (s *Saga) RecordPerson(id string)         { s.Artifacts.PersonIDs = append(s.Artifacts.PersonIDs, id) }
func (s *Saga) RecordRootCA(id string)         { s.Artifacts.RootCAID = id }
func (s *Saga) RecordIntermediateCA(id string) {
	s.Artifacts.IntermediateCAIDs = append(s.Artifacts.IntermediateCAIDs, id)
}
func (s *Saga) RecordLeafCert(id string) { s.Artifacts.LeafCertIDs = append(s.Artifacts.LeafCertIDs, id) }
func (s *Saga) RecordOperator(id string) { s.Artifacts.OperatorID = id }
func (s *Saga) RecordSystemAccount(id string) { s.Artifacts.SystemAccountID = id }
func (s *Saga) RecordAccount(id string)  { s.Artifacts.AccountIDs = append(s.Artifacts.AccountIDs, id) }
func (s *Saga) RecordUser(id string)     { s.Artifacts.UserIDs = append(s.Artifacts.UserIDs, id) }
func (s *Saga) RecordYubiKey(deviceID string, slots []string) {
	s.Artifacts.YubiKeyDeviceIDs = append(s.Artifacts.YubiKeyDeviceIDs, deviceID)
}
