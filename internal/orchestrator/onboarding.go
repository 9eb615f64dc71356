package orchestrator

import (
	"context"
	"fmt"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/envelope"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/graph"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/liftednode"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/projection"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/saga/onboarding"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/yubikey"
)

// OnboardingRun is a single running (or finished) person-onboarding saga.
type OnboardingRun struct {
	Saga    *onboarding.Saga
	builder *envelope.Builder

	keyHandle     string
	certHandle    string
	userKeyHandle string
	yubiKeySerial string

	// CompensationRan/CompensationFailed mirror BootstrapRun's fields,
	// letting a command-API caller distinguish a clean rollback from an
	// incomplete one.
	CompensationRan    bool
	CompensationFailed bool
}

// StartOnboarding creates a person-onboarding saga for req and drives it
// to completion or failure, mirroring StartBootstrap's synchronous shape.
func (e *Engine) StartOnboarding(ctx context.Context, req onboarding.Request) (*OnboardingRun, error) {
	now := e.drv.Clock.Now()
	sagaID := idkit.New().String()
	correlationID := idkit.New()

	s := onboarding.New(sagaID, correlationID.String(), req)
	if err := s.Start(now); err != nil {
		return nil, err
	}

	run := &OnboardingRun{
		Saga:    s,
		builder: envelope.ContinueChain(correlationID).ScopedToOrganization(req.Name),
	}

	e.mu.Lock()
	e.onboardingRuns[sagaID] = run
	e.mu.Unlock()

	if err := e.driveOnboarding(ctx, run); err != nil {
		return run, err
	}
	return run, nil
}

func (e *Engine) driveOnboarding(ctx context.Context, run *OnboardingRun) error {
	s := run.Saga

	if err := e.performOnboardingPhase(ctx, run, s.Phase); err != nil {
		e.failAndCompensateOnboarding(ctx, run, err, string(s.Phase))
		return err
	}

	for !s.IsTerminal() {
		now := e.drv.Clock.Now()
		if err := s.Advance(now); err != nil {
			return err
		}
		if s.IsTerminal() {
			break
		}
		if err := e.performOnboardingPhase(ctx, run, s.Phase); err != nil {
			e.failAndCompensateOnboarding(ctx, run, err, string(s.Phase))
			return err
		}
	}
	return nil
}

func (e *Engine) performOnboardingPhase(ctx context.Context, run *OnboardingRun, phase onboarding.Phase) error {
	now := e.drv.Clock.Now()
	s := run.Saga

	switch phase {
	case onboarding.PhaseCreatingPerson:
		personID := idkit.New().String()
		s.RecordPerson(personID)
		e.addEntity(personID, liftednode.TagPerson, s.Request.Name, now)
		e.publish(ctx, run.builder, "person", personID, "PersonOnboarded")

	case onboarding.PhaseGeneratingKey:
		handle, _, err := e.drv.Keys.GenerateKey(ctx, projection.PurposeDocumentSign)
		if err != nil {
			return cimerrors.DriverError{Driver: "keygen", Message: fmt.Sprintf("generating person key: %v", err), Err: err}
		}
		run.keyHandle = handle
		s.RecordKey(handle)
		e.addEntity(handle, liftednode.TagKey, s.Request.Name+"'s key", now)

	case onboarding.PhaseGeneratingCert:
		_, pub, err := e.drv.Keys.GenerateKey(ctx, projection.PurposeTLSClient)
		if err != nil {
			return cimerrors.DriverError{Driver: "keygen", Message: fmt.Sprintf("generating cert key: %v", err), Err: err}
		}
		params := projection.ProjectCSR(projection.CertificateRequestInput{
			PersonCommonName: s.Request.Name,
			Purpose:          projection.PurposeTLSClient,
			ValidFrom:        now,
			ValidDays:        365,
		})
		certHandle, _, err := e.drv.Certs.Sign(ctx, "", params, pub)
		if err != nil {
			return cimerrors.DriverError{Driver: "certsign", Message: fmt.Sprintf("signing certificate: %v", err), Err: err}
		}
		run.certHandle = certHandle
		s.RecordCertificate(certHandle)
		e.addEntity(certHandle, liftednode.TagLeafCertificate, s.Request.Name+"'s certificate", now)
		e.publish(ctx, run.builder, "certificate", certHandle, "PersonCertificateIssued")

	case onboarding.PhaseCreatingNatsUser:
		// Request.NATSAccountID identifies the existing account this
		// person joins; onboarding assumes bootstrap already registered
		// that account's signing secret, so it is reused directly as the
		// signing-key handle here rather than minted again.
		handle, _, err := e.drv.Keys.GenerateKey(ctx, projection.PurposeDocumentSign)
		if err != nil {
			return cimerrors.DriverError{Driver: "keygen", Message: fmt.Sprintf("generating user key: %v", err), Err: err}
		}
		run.userKeyHandle = handle
		claims := projection.ProjectNATSUser(projection.PersonToUser{
			Subject:   s.Request.Email,
			NotBefore: now,
			ValidDays: 365,
		})
		if _, err := e.drv.JWTs.IssueUserJWT(ctx, claims, s.Request.NATSAccountID); err != nil {
			return cimerrors.DriverError{Driver: "natsjwt", Message: fmt.Sprintf("issuing user JWT: %v", err), Err: err}
		}
		userID := idkit.New().String()
		s.RecordNatsUser(userID)
		e.addEntity(userID, liftednode.TagNatsUser, s.Request.Name, now)
		e.addRelation(s.Request.NATSAccountID, userID, "authenticates", now)
		e.publish(ctx, run.builder, "nats_user", userID, "NatsUserProvisioned")

	case onboarding.PhaseProvisioningYubiKey:
		serial := "yk-" + s.ID
		plan := projection.ProjectPIVPlan(projection.YubiKeyProvisioningInput{
			Role: projection.RoleDeveloper,
			Slot: yubikey.PivSlotAuthentication,
		})
		run.yubiKeySerial = serial
		if err := e.drv.YubiKeys.Provision(ctx, serial, plan, run.keyHandle, nil); err != nil {
			return cimerrors.DriverError{Driver: "yubikey", Message: fmt.Sprintf("provisioning yubikey: %v", err), Err: err}
		}
		s.RecordYubiKey(serial)
		e.addEntity(serial, liftednode.TagYubiKey, s.Request.Name+"'s YubiKey", now)
		e.publish(ctx, run.builder, "yubikey", serial, "PersonYubiKeyProvisioned")
	}
	return nil
}

func (e *Engine) failAndCompensateOnboarding(ctx context.Context, run *OnboardingRun, cause error, step string) {
	now := e.drv.Clock.Now()
	run.Saga.Fail(cause.Error(), step, now)

	compStep, err := run.Saga.StartCompensation()
	if err != nil {
		return
	}
	run.CompensationRan = true
	for {
		if err := e.runOnboardingCompensationStep(ctx, run, compStep); err != nil {
			run.CompensationFailed = true
		}
		next, ok := run.Saga.AdvanceCompensation()
		if !ok {
			return
		}
		compStep = next
	}
}

func (e *Engine) runOnboardingCompensationStep(ctx context.Context, run *OnboardingRun, step onboarding.CompensationStep) error {
	a := run.Saga.Artifacts
	switch step {
	case onboarding.StepRevokeYubiKeySlots:
		if run.yubiKeySerial != "" {
			if err := e.drv.YubiKeys.ClearSlot(ctx, run.yubiKeySerial, string(yubikey.PivSlotAuthentication)); err != nil {
				return err
			}
		}
	case onboarding.StepDeleteNatsUser:
		if run.userKeyHandle != "" {
			if err := e.drv.Keys.RevokeKey(ctx, run.userKeyHandle); err != nil {
				return err
			}
		}
	case onboarding.StepRevokeCertificate:
		if run.certHandle != "" {
			if err := e.drv.Certs.Revoke(ctx, run.certHandle); err != nil {
				return err
			}
		}
	case onboarding.StepRevokeKey:
		if run.keyHandle != "" {
			if err := e.drv.Keys.RevokeKey(ctx, run.keyHandle); err != nil {
				return err
			}
		}
	case onboarding.StepDeactivatePerson:
		if a.PersonID != "" {
			e.graph.Apply(graph.EntityRemoved{ID: a.PersonID}, e.drv.Clock.Now())
		}
	}
	return nil
}

// LookupOnboarding returns the onboarding run with the given saga id, if any.
func (e *Engine) LookupOnboarding(sagaID string) (*OnboardingRun, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	run, ok := e.onboardingRuns[sagaID]
	return run, ok
}
