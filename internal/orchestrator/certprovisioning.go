package orchestrator

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/envelope"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/liftednode"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/projection"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/saga/certprovisioning"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/yubikey"
)

// CertProvisioningRun is a single running (or finished)
// certificate-provisioning saga.
type CertProvisioningRun struct {
	Saga    *certprovisioning.Saga
	builder *envelope.Builder

	keyHandle  string
	certHandle string
	certDER    []byte

	CompensationRan    bool
	CompensationFailed bool
}

// StartCertProvisioning creates a certificate-provisioning saga for req
// and drives it to completion or failure, mirroring StartBootstrap's
// synchronous shape. Unlike bootstrap and onboarding, this saga pauses at
// PhaseVerifyingProvisioning for CompleteVerification to be called with
// the YubiKey slot's re-read result (spec.md Scenario S4), so
// driveCertProvisioning stops advancing once that phase is reached rather
// than resolving it itself.
func (e *Engine) StartCertProvisioning(ctx context.Context, req certprovisioning.Request) (*CertProvisioningRun, error) {
	now := e.drv.Clock.Now()
	sagaID := idkit.New().String()
	correlationID := idkit.New()

	s := certprovisioning.New(sagaID, correlationID.String(), req)
	if err := s.Start(now); err != nil {
		return nil, err
	}

	run := &CertProvisioningRun{
		Saga:    s,
		builder: envelope.ContinueChain(correlationID).ScopedToOrganization(req.PersonName),
	}

	e.mu.Lock()
	e.certRuns[sagaID] = run
	e.mu.Unlock()

	if err := e.driveCertProvisioning(ctx, run); err != nil {
		return run, err
	}
	return run, nil
}

func (e *Engine) driveCertProvisioning(ctx context.Context, run *CertProvisioningRun) error {
	s := run.Saga

	if err := e.performCertProvisioningPhase(ctx, run, s.Phase); err != nil {
		e.failAndCompensateCertProvisioning(ctx, run, err, string(s.Phase))
		return err
	}

	for !s.IsTerminal() && s.Phase != certprovisioning.PhaseVerifyingProvisioning {
		now := e.drv.Clock.Now()
		if err := s.Advance(now); err != nil {
			return err
		}
		if s.IsTerminal() || s.Phase == certprovisioning.PhaseVerifyingProvisioning {
			break
		}
		if err := e.performCertProvisioningPhase(ctx, run, s.Phase); err != nil {
			e.failAndCompensateCertProvisioning(ctx, run, err, string(s.Phase))
			return err
		}
	}

	if s.Phase == certprovisioning.PhaseVerifyingProvisioning {
		return e.verifyCertProvisioning(ctx, run)
	}
	return nil
}

func (e *Engine) performCertProvisioningPhase(ctx context.Context, run *CertProvisioningRun, phase certprovisioning.Phase) error {
	now := e.drv.Clock.Now()
	s := run.Saga

	switch phase {
	case certprovisioning.PhaseGeneratingKey:
		handle, _, err := e.drv.Keys.GenerateKey(ctx, projection.PurposeDocumentSign)
		if err != nil {
			return cimerrors.DriverError{Driver: "keygen", Message: fmt.Sprintf("generating key: %v", err), Err: err}
		}
		run.keyHandle = handle
		s.RecordKey(handle)
		e.addEntity(handle, liftednode.TagKey, s.Request.PersonName+"'s key", now)

	case certprovisioning.PhaseGeneratingCertificate:
		_, pub, err := e.drv.Keys.GenerateKey(ctx, projection.PurposeDocumentSign)
		if err != nil {
			return cimerrors.DriverError{Driver: "keygen", Message: fmt.Sprintf("generating certificate key: %v", err), Err: err}
		}
		params := projection.ProjectCSR(projection.CertificateRequestInput{
			PersonCommonName: s.Request.PersonName,
			Purpose:          projection.PurposeDocumentSign,
			ValidFrom:        now,
			ValidDays:        s.Request.ValidDays,
		})
		certHandle, der, err := e.drv.Certs.Sign(ctx, "", params, pub)
		if err != nil {
			return cimerrors.DriverError{Driver: "certsign", Message: fmt.Sprintf("signing certificate: %v", err), Err: err}
		}
		run.certHandle = certHandle
		run.certDER = der
		s.RecordCertificate(certHandle)
		e.addEntity(certHandle, liftednode.TagLeafCertificate, s.Request.PersonName+"'s certificate", now)
		e.publish(ctx, run.builder, "certificate", certHandle, "CertificateGenerated")

	case certprovisioning.PhaseProvisioningToYubiKey:
		plan := projection.ProjectPIVPlan(projection.YubiKeyProvisioningInput{
			Role: projection.RoleDeveloper,
			Slot: yubikey.PivSlot(s.Request.Slot),
		})
		if err := e.drv.YubiKeys.Provision(ctx, s.Request.YubiKeySerial, plan, run.keyHandle, run.certDER); err != nil {
			return cimerrors.DriverError{Driver: "yubikey", Message: fmt.Sprintf("provisioning yubikey: %v", err), Err: err}
		}
		s.RecordProvisioned()
		e.addEntity(s.Request.YubiKeySerial, liftednode.TagYubiKey, s.Request.PersonName+"'s YubiKey", now)
		e.publish(ctx, run.builder, "yubikey", s.Request.YubiKeySerial, "CertificateProvisionedToYubiKey")
	}
	return nil
}

// verifyCertProvisioning re-reads the YubiKey slot and feeds the result
// into CompleteVerification. A verified saga is Completed and gets a
// CertificateProvisioningVerified event; a failed verification leaves the
// saga Failed, runs compensation, and returns a DriverError.
func (e *Engine) verifyCertProvisioning(ctx context.Context, run *CertProvisioningRun) error {
	s := run.Saga
	now := e.drv.Clock.Now()

	expectedFingerprint := sha256.Sum256(run.certDER)
	verified, err := e.drv.YubiKeys.VerifySlot(ctx, s.Request.YubiKeySerial, s.Request.Slot, expectedFingerprint[:])
	var status certprovisioning.VerificationStatus
	switch {
	case err != nil:
		status = certprovisioning.VerificationStatus{Kind: certprovisioning.VerificationError, Message: err.Error()}
	case !verified:
		status = certprovisioning.VerificationStatus{Kind: certprovisioning.VerificationFingerprintMismatch}
	default:
		status = certprovisioning.VerificationStatus{Kind: certprovisioning.VerificationVerified}
	}

	if cerr := s.CompleteVerification(status, now); cerr != nil {
		return cerr
	}

	if s.IsFailed() {
		e.failAndCompensateCertProvisioning(ctx, run, fmt.Errorf("%s", s.Err.Message), s.Err.FailedStep)
		return cimerrors.DriverError{Driver: "yubikey", Message: "yubikey slot verification failed", Err: fmt.Errorf("%s", s.Err.Message)}
	}
	e.publish(ctx, run.builder, "certificate", run.certHandle, "CertificateProvisioningVerified")
	return nil
}

func (e *Engine) failAndCompensateCertProvisioning(ctx context.Context, run *CertProvisioningRun, cause error, step string) {
	now := e.drv.Clock.Now()
	if !run.Saga.IsFailed() {
		run.Saga.Fail(cause.Error(), step, now)
	}

	compStep, err := run.Saga.StartCompensation()
	if err != nil {
		return
	}
	run.CompensationRan = true
	for {
		if err := e.runCertProvisioningCompensationStep(ctx, run, compStep); err != nil {
			run.CompensationFailed = true
		}
		next, ok := run.Saga.AdvanceCompensation()
		if !ok {
			return
		}
		compStep = next
	}
}

func (e *Engine) runCertProvisioningCompensationStep(ctx context.Context, run *CertProvisioningRun, step certprovisioning.CompensationStep) error {
	s := run.Saga
	switch step {
	case certprovisioning.StepClearYubiKeySlot:
		if err := e.drv.YubiKeys.ClearSlot(ctx, s.Request.YubiKeySerial, s.Request.Slot); err != nil {
			return err
		}
	case certprovisioning.StepRevokeCertificate:
		if run.certHandle != "" {
			if err := e.drv.Certs.Revoke(ctx, run.certHandle); err != nil {
				return err
			}
		}
	case certprovisioning.StepRevokeKey:
		if run.keyHandle != "" {
			if err := e.drv.Keys.RevokeKey(ctx, run.keyHandle); err != nil {
				return err
			}
		}
	}
	return nil
}

// LookupCertProvisioning returns the certificate-provisioning run with
// the given saga id, if any.
func (e *Engine) LookupCertProvisioning(sagaID string) (*CertProvisioningRun, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	run, ok := e.certRuns[sagaID]
	return run, ok
}
