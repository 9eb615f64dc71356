// Package orchestrator drives the saga state machines defined in
// pkg/saga against the outbound driver interfaces in pkg/drivers,
// keeping the in-memory graph projection and the event log in sync with
// each phase transition. It is the "engine" half of the inbound command
// API described in spec.md §6 — internal/httpserver's handlers are a thin
// HTTP shell over the methods here, matching the teacher's separation
// between a handler package and the service it calls.
package orchestrator

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/internal/drivers/nscexport"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/drivers"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/envelope"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/graph"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/liftednode"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/projection"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/saga/bootstrap"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/yubikey"
)

// provisioningEvent is the coarse-grained event the orchestrator stamps
// into the envelope chain for each artifact it records. It is deliberately
// separate from the fine-grained per-aggregate event taxonomies (Drafted,
// Activated, ...): those model a single aggregate's own lifecycle and are
// exercised directly by that aggregate's own tests, while the engine only
// needs to record "this artifact, of this kind, was created" for replay
// and audit purposes.
type provisioningEvent struct {
	aggregateID string
	kind        string
}

func (e provisioningEvent) AggregateID() string { return e.aggregateID }
func (e provisioningEvent) EventType() string   { return e.kind }

// Drivers bundles every outbound collaborator the engine calls through.
type Drivers struct {
	Keys      drivers.KeyGenerator
	Certs     drivers.CertificateSigner
	YubiKeys  drivers.YubikeyProvisioner
	JWTs      drivers.JWTIssuer
	Publisher drivers.EnvelopePublisher
	Store     drivers.EventStore
	Clock     drivers.Clock

	// NSCExport, when non-nil, receives a copy of each issued JWT in the
	// conventional NSC filesystem layout. It is a concrete writer rather
	// than a drivers interface: it has no side effect sagas need to
	// compensate, only an on-disk export convenient for nsc/nats CLI use.
	NSCExport *nscexport.Exporter
}

// BootstrapRun is a single running (or finished) bootstrap saga together
// with the bookkeeping the engine needs to drive it and answer queries.
type BootstrapRun struct {
	Saga    *bootstrap.Saga
	builder *envelope.Builder

	operatorKeyHandle    string
	operatorPublicKey    string
	rootCAKeyHandle      string
	rootCACertHandle     string
	unitAccountKeyHandle map[string]string // unit name -> account signing key handle
	unitAccountPublicKey map[string]string
	personUserKeyHandle  map[string]string // person email -> user signing key handle

	// intermediateCAKeyHandles holds the intermediate CAs' signing key
	// handles in the order their certificates were issued.
	intermediateCAKeyHandles []string

	// CompensationRan is true once the saga has failed and compensation
	// has been attempted. CompensationFailed is true if any individual
	// rollback step reported an error, distinguishing a clean rollback
	// from an incomplete one for the CLI driver's exit code.
	CompensationRan    bool
	CompensationFailed bool
}

// Engine owns every in-flight saga and the graph projection they populate.
type Engine struct {
	mu              sync.Mutex
	runs            map[string]*BootstrapRun
	onboardingRuns  map[string]*OnboardingRun
	certRuns        map[string]*CertProvisioningRun
	graph           *graph.Projection
	drv             Drivers
}

// New returns an Engine backed by the given drivers and a fresh graph
// projection.
func New(drv Drivers) *Engine {
	return &Engine{
		runs:           make(map[string]*BootstrapRun),
		onboardingRuns: make(map[string]*OnboardingRun),
		certRuns:       make(map[string]*CertProvisioningRun),
		graph:          graph.New(),
		drv:            drv,
	}
}

// Graph returns the shared graph projection for read-only queries.
func (e *Engine) Graph() *graph.Projection { return e.graph }

// StartBootstrap creates a bootstrap saga for req and drives it to
// completion or failure, calling the configured drivers at each phase.
// The whole run is synchronous: a real deployment would let advance_saga
// be called once per external driver_result report (spec.md §6), but this
// reference engine's drivers are themselves synchronous mocks, so there is
// no asynchronous boundary to preserve.
func (e *Engine) StartBootstrap(ctx context.Context, req bootstrap.Request) (*BootstrapRun, error) {
	now := e.drv.Clock.Now()
	sagaID := idkit.New().String()
	correlationID := idkit.New()

	s := bootstrap.New(sagaID, correlationID.String(), req)
	if err := s.Start(now); err != nil {
		return nil, err
	}

	run := &BootstrapRun{
		Saga:                 s,
		builder:              envelope.ContinueChain(correlationID).ScopedToOrganization(req.OrganizationName),
		unitAccountKeyHandle: make(map[string]string),
		unitAccountPublicKey: make(map[string]string),
		personUserKeyHandle:  make(map[string]string),
	}

	e.mu.Lock()
	e.runs[sagaID] = run
	e.mu.Unlock()

	if err := e.driveBootstrap(ctx, run); err != nil {
		return run, err
	}
	return run, nil
}

// driveBootstrap repeatedly advances run.Saga, performing the driver call
// and bookkeeping appropriate to the phase just entered, until the saga
// reaches a terminal phase. A driver failure fails the saga and runs
// compensation immediately, mirroring spec.md §7's propagation policy
// ("aggregate-level errors propagate to the saga that issued the call").
func (e *Engine) driveBootstrap(ctx context.Context, run *BootstrapRun) error {
	s := run.Saga

	if err := e.performPhase(ctx, run, s.Phase); err != nil {
		e.failAndCompensate(ctx, run, err, string(s.Phase))
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
		if err := e.performPhase(ctx, run, s.Phase); err != nil {
			e.failAndCompensate(ctx, run, err, string(s.Phase))
			return err
		}
	}
	return nil
}

func (e *Engine) failAndCompensate(ctx context.Context, run *BootstrapRun, cause error, step string) {
	now := e.drv.Clock.Now()
	run.Saga.Fail(cause.Error(), step, now)

	compStep, err := run.Saga.StartCompensation()
	if err != nil {
		return
	}
	run.CompensationRan = true
	for {
		if err := e.runCompensationStep(ctx, run, compStep); err != nil {
			run.CompensationFailed = true
		}
		next, ok := run.Saga.AdvanceCompensation()
		if !ok {
			return
		}
		compStep = next
	}
}

func (e *Engine) runCompensationStep(ctx context.Context, run *BootstrapRun, step bootstrap.CompensationStep) error {
	a := run.Saga.Artifacts
	switch step {
	case bootstrap.StepRollbackYubiKeys:
		// No driver call is made: the bootstrap artifacts table records
		// only the provisioned devices' serials, not the slots written to
		// them, so the PIV slots this saga provisioned are left as they are.
	case bootstrap.StepRollbackNATS:
		// A NATS JWT is revoked by removing its signing key from the
		// issuer's account/operator resolver, which JWTIssuer does not
		// expose; the signing keys themselves are still revocable.
		for _, handle := range run.unitAccountKeyHandle {
			if err := e.drv.Keys.RevokeKey(ctx, handle); err != nil {
				return err
			}
		}
	case bootstrap.StepRollbackPKI:
		if a.RootCAID != "" {
			if err := e.drv.Certs.Revoke(ctx, run.rootCACertHandle); err != nil {
				return err
			}
			if err := e.drv.Keys.RevokeKey(ctx, run.rootCAKeyHandle); err != nil {
				return err
			}
		}
	case bootstrap.StepRollbackOrganization:
		// Organization rollback has no driver-side artifact beyond its
		// graph entry; remove it so a retried bootstrap starts clean.
		e.graph.Apply(graph.EntityRemoved{ID: a.OrganizationID}, e.drv.Clock.Now())
	}
	return nil
}

// performPhase runs the side-effecting work for the phase the saga has
// just entered. Phases with no driver call (AddingPeople's person records
// are created here too, since person-aggregate provisioning has no
// separate driver) fall through to their bookkeeping directly.
func (e *Engine) performPhase(ctx context.Context, run *BootstrapRun, phase bootstrap.Phase) error {
	now := e.drv.Clock.Now()
	s := run.Saga

	switch phase {
	case bootstrap.PhaseCreatingOrganization:
		orgID := idkit.New().String()
		s.RecordOrganization(orgID)
		e.addEntity(orgID, liftednode.TagOrganization, s.Request.OrganizationName, now)
		e.publish(ctx, run.builder, "organization", orgID, "OrganizationProvisioned")

	case bootstrap.PhaseAddingPeople:
		unitIDByName := make(map[string]string, len(s.Request.Units))
		for _, unitName := range s.Request.Units {
			unitID := idkit.New().String()
			s.RecordUnit(unitID)
			unitIDByName[unitName] = unitID
			e.addEntity(unitID, liftednode.TagOrganizationUnit, unitName, now)
			e.addRelation(s.Artifacts.OrganizationID, unitID, "owns", now)
		}
		for _, p := range s.Request.People {
			personID := idkit.New().String()
			s.RecordPerson(personID)
			e.addEntity(personID, liftednode.TagPerson, p.Name, now)
			if unitID, ok := unitIDByName[p.UnitName]; ok {
				e.addRelation(unitID, personID, "member", now)
			}
		}
		e.publish(ctx, run.builder, "organization", s.Artifacts.OrganizationID, "PeopleProvisioned")

	case bootstrap.PhaseGeneratingPKIRootCA:
		handle, pub, err := e.drv.Keys.GenerateKey(ctx, projection.PurposeCertAuthority)
		if err != nil {
			return cimerrors.DriverError{Driver: "keygen", Message: fmt.Sprintf("generating root CA key: %v", err), Err: err}
		}
		run.rootCAKeyHandle = handle

		params := projection.ProjectCSR(projection.CertificateRequestInput{
			OrganizationName: s.Request.OrganizationName,
			PersonCommonName: s.Request.OrganizationName + " Root CA",
			Purpose:          projection.PurposeCertAuthority,
			ValidFrom:        now,
			ValidDays:        3650,
		})
		certHandle, _, err := e.drv.Certs.Sign(ctx, "", params, pub)
		if err != nil {
			return cimerrors.DriverError{Driver: "certsign", Message: fmt.Sprintf("signing root CA certificate: %v", err), Err: err}
		}
		run.rootCACertHandle = certHandle
		s.RecordRootCA(certHandle)
		e.addEntity(certHandle, liftednode.TagRootCertificate, s.Request.OrganizationName+" Root CA", now)
		e.publish(ctx, run.builder, "certificate", certHandle, "RootCAIssued")

	case bootstrap.PhaseGeneratingPKIIntermediateCAs:
		for _, unitName := range s.Request.Units {
			keyHandle, pub, err := e.drv.Keys.GenerateKey(ctx, projection.PurposeCertAuthority)
			if err != nil {
				return cimerrors.DriverError{Driver: "keygen", Message: fmt.Sprintf("generating intermediate CA key for %s: %v", unitName, err), Err: err}
			}
			params := projection.ProjectCSR(projection.CertificateRequestInput{
				OrganizationName: s.Request.OrganizationName,
				UnitName:         unitName,
				PersonCommonName: unitName + " Intermediate CA",
				Purpose:          projection.PurposeCertAuthority,
				ValidFrom:        now,
				ValidDays:        1825,
			})
			certHandle, _, err := e.drv.Certs.Sign(ctx, run.rootCAKeyHandle, params, pub)
			if err != nil {
				return cimerrors.DriverError{Driver: "certsign", Message: fmt.Sprintf("signing intermediate CA for %s: %v", unitName, err), Err: err}
			}
			run.intermediateCAKeyHandles = append(run.intermediateCAKeyHandles, keyHandle)
			s.RecordIntermediateCA(certHandle)
			e.addEntity(certHandle, liftednode.TagIntermediateCert, unitName+" Intermediate CA", now)
			e.addRelation(run.rootCACertHandle, certHandle, "issues", now)
		}
		e.publish(ctx, run.builder, "certificate", run.rootCACertHandle, "IntermediateCAsIssued")

	case bootstrap.PhaseGeneratingPKILeafCerts:
		for i, p := range s.Request.People {
			issuer := run.rootCAKeyHandle
			if i < len(run.intermediateCAKeyHandles) {
				issuer = run.intermediateCAKeyHandles[i%len(run.intermediateCAKeyHandles)]
			}
			_, pub, err := e.drv.Keys.GenerateKey(ctx, projection.PurposeTLSClient)
			if err != nil {
				return cimerrors.DriverError{Driver: "keygen", Message: fmt.Sprintf("generating leaf key for %s: %v", p.Name, err), Err: err}
			}
			params := projection.ProjectCSR(projection.CertificateRequestInput{
				OrganizationName: s.Request.OrganizationName,
				UnitName:         p.UnitName,
				PersonCommonName: p.Name,
				Purpose:          projection.PurposeTLSClient,
				ValidFrom:        now,
				ValidDays:        365,
			})
			certHandle, _, err := e.drv.Certs.Sign(ctx, issuer, params, pub)
			if err != nil {
				return cimerrors.DriverError{Driver: "certsign", Message: fmt.Sprintf("signing leaf certificate for %s: %v", p.Name, err), Err: err}
			}
			s.RecordLeafCert(certHandle)
			e.addEntity(certHandle, liftednode.TagLeafCertificate, p.Name+" Certificate", now)
		}
		e.publish(ctx, run.builder, "certificate", run.rootCACertHandle, "LeafCertificatesIssued")

	case bootstrap.PhaseSettingUpNATSOperator:
		handle, pub, err := e.drv.Keys.GenerateKey(ctx, projection.PurposeDocumentSign)
		if err != nil {
			return cimerrors.DriverError{Driver: "keygen", Message: fmt.Sprintf("generating operator key: %v", err), Err: err}
		}
		run.operatorKeyHandle = handle
		run.operatorPublicKey = string(pub)
		if err := e.registerSigningSecret(handle); err != nil {
			return err
		}
		params := projection.ProjectNATSOperator(projection.OrganizationToOperator{
			OrganizationName: s.Request.OrganizationName,
			PublicKey:        string(pub),
			At:               now,
		})
		operatorJWT, err := e.drv.JWTs.IssueOperatorJWT(ctx, params, handle)
		if err != nil {
			return cimerrors.DriverError{Driver: "natsjwt", Message: fmt.Sprintf("issuing operator JWT: %v", err), Err: err}
		}
		if e.drv.NSCExport != nil {
			if err := e.drv.NSCExport.WriteOperatorJWT(s.Request.OrganizationName, operatorJWT); err != nil {
				return cimerrors.DriverError{Driver: "nscexport", Message: fmt.Sprintf("writing operator JWT: %v", err), Err: err}
			}
		}
		operatorID := idkit.New().String()
		s.RecordOperator(operatorID)
		e.addEntity(operatorID, liftednode.TagNatsOperator, s.Request.OrganizationName+" Operator", now)
		e.publish(ctx, run.builder, "nats_operator", operatorID, "OperatorProvisioned")

	case bootstrap.PhaseSettingUpNATSSystemAccount:
		accountID := idkit.New().String()
		s.RecordSystemAccount(accountID)
		e.addEntity(accountID, liftednode.TagNatsAccount, "SYS", now)
		e.addRelation(s.Artifacts.OperatorID, accountID, "governs", now)
		e.publish(ctx, run.builder, "nats_account", accountID, "SystemAccountProvisioned")

	case bootstrap.PhaseSettingUpNATSAccounts:
		for _, unitName := range s.Request.Units {
			handle, pub, err := e.drv.Keys.GenerateKey(ctx, projection.PurposeDocumentSign)
			if err != nil {
				return cimerrors.DriverError{Driver: "keygen", Message: fmt.Sprintf("generating account key for %s: %v", unitName, err), Err: err}
			}
			run.unitAccountKeyHandle[unitName] = handle
			run.unitAccountPublicKey[unitName] = string(pub)
			if err := e.registerSigningSecret(handle); err != nil {
				return err
			}
			claims := projection.ProjectNATSAccount(projection.UnitToAccount{
				UnitName:          unitName,
				PublicKey:         string(pub),
				OperatorPublicKey: run.operatorPublicKey,
				MaxConnections:    100,
				MaxData:           1 << 30,
				At:                now,
			})
			accountJWT, err := e.drv.JWTs.IssueAccountJWT(ctx, claims, run.operatorKeyHandle)
			if err != nil {
				return cimerrors.DriverError{Driver: "natsjwt", Message: fmt.Sprintf("issuing account JWT for %s: %v", unitName, err), Err: err}
			}
			if e.drv.NSCExport != nil {
				if err := e.drv.NSCExport.WriteAccountJWT(s.Request.OrganizationName, unitName, accountJWT); err != nil {
					return cimerrors.DriverError{Driver: "nscexport", Message: fmt.Sprintf("writing account JWT for %s: %v", unitName, err), Err: err}
				}
			}
			accountID := idkit.New().String()
			s.RecordAccount(accountID)
			e.addEntity(accountID, liftednode.TagNatsAccount, unitName, now)
			e.addRelation(s.Artifacts.OperatorID, accountID, "governs", now)
		}
		e.publish(ctx, run.builder, "nats_account", s.Artifacts.OperatorID, "AccountsProvisioned")

	case bootstrap.PhaseSettingUpNATSUsers:
		accountOf := make(map[string]string, len(s.Request.Units))
		for i, unitName := range s.Request.Units {
			if i < len(s.Artifacts.AccountIDs) {
				accountOf[unitName] = s.Artifacts.AccountIDs[i]
			}
		}
		for _, p := range s.Request.People {
			handle, _, err := e.drv.Keys.GenerateKey(ctx, projection.PurposeDocumentSign)
			if err != nil {
				return cimerrors.DriverError{Driver: "keygen", Message: fmt.Sprintf("generating user key for %s: %v", p.Name, err), Err: err}
			}
			run.personUserKeyHandle[p.Email] = handle
			claims := projection.ProjectNATSUser(projection.PersonToUser{
				Subject:          p.Email,
				AccountPublicKey: run.unitAccountPublicKey[p.UnitName],
				NotBefore:        now,
				ValidDays:        365,
			})
			accountKeyHandle := run.unitAccountKeyHandle[p.UnitName]
			userJWT, err := e.drv.JWTs.IssueUserJWT(ctx, claims, accountKeyHandle)
			if err != nil {
				return cimerrors.DriverError{Driver: "natsjwt", Message: fmt.Sprintf("issuing user JWT for %s: %v", p.Name, err), Err: err}
			}
			if e.drv.NSCExport != nil {
				if err := e.drv.NSCExport.WriteUserCreds(s.Request.OrganizationName, p.UnitName, p.Email, userJWT); err != nil {
					return cimerrors.DriverError{Driver: "nscexport", Message: fmt.Sprintf("writing user creds for %s: %v", p.Name, err), Err: err}
				}
			}
			userID := idkit.New().String()
			s.RecordUser(userID)
			e.addEntity(userID, liftednode.TagNatsUser, p.Name, now)
			if acctID, ok := accountOf[p.UnitName]; ok {
				e.addRelation(acctID, userID, "authenticates", now)
			}
		}
		e.publish(ctx, run.builder, "nats_user", s.Artifacts.OperatorID, "UsersProvisioned")

	case bootstrap.PhaseProvisioningYubiKeys:
		for i, p := range s.Request.People {
			if !p.NeedsYubiKey {
				continue
			}
			serial := fmt.Sprintf("yk-%s-%03d", s.ID, i)
			plan := projection.ProjectPIVPlan(projection.YubiKeyProvisioningInput{
				Role: projection.RoleDeveloper,
				Slot: yubikey.PivSlotAuthentication,
			})
			keyHandle := run.personUserKeyHandle[p.Email]
			if err := e.drv.YubiKeys.Provision(ctx, serial, plan, keyHandle, nil); err != nil {
				return cimerrors.DriverError{Driver: "yubikey", Message: fmt.Sprintf("provisioning yubikey for %s: %v", p.Name, err), Err: err}
			}
			s.RecordYubiKey(serial, []string{string(plan.Slot)})
			e.addEntity(serial, liftednode.TagYubiKey, p.Name+"'s YubiKey", now)
		}
		e.publish(ctx, run.builder, "yubikey", s.Artifacts.OrganizationID, "YubiKeysProvisioned")
	}
	return nil
}

// registerSigningSecret mints a fresh HMAC secret and registers it with
// the JWT issuer under handle, so a later Issue*JWT call using handle has
// something to sign with. keygen handles (ed25519) and issuer signing
// secrets live in separate drivers, so the two must be linked explicitly.
func (e *Engine) registerSigningSecret(handle string) error {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return cimerrors.DriverError{Driver: "natsjwt", Message: "generating signing secret", Err: err}
	}
	if err := e.drv.JWTs.RegisterSigningKey(handle, secret); err != nil {
		return cimerrors.DriverError{Driver: "natsjwt", Message: "registering signing key", Err: err}
	}
	return nil
}

func (e *Engine) addEntity(id string, tag liftednode.InjectionTag, label string, at time.Time) {
	e.graph.Apply(graph.EntityAdded{ID: id, Node: liftednode.New(tag, label, "", nil)}, at)
}

func (e *Engine) addRelation(from, to, category string, at time.Time) {
	e.graph.Apply(graph.RelationEstablished{Relation: graph.Relation{
		ID: from + "->" + to, From: from, To: to, Category: category,
	}}, at)
}

func (e *Engine) publish(ctx context.Context, builder *envelope.Builder, aggregate, aggregateID, kind string) {
	env := builder.Envelope(aggregate, provisioningEvent{aggregateID: aggregateID, kind: kind})
	if e.drv.Publisher != nil {
		_ = e.drv.Publisher.Publish(ctx, env)
	}
	if e.drv.Store != nil {
		_ = e.drv.Store.Append(ctx, env)
	}
}

// QueryEvents returns every envelope recorded under correlationID, in
// append order, by draining Store.Replay into a slice. Returns an empty
// slice (not an error) when no event store is configured.
func (e *Engine) QueryEvents(ctx context.Context, correlationID string) ([]envelope.Envelope, error) {
	if e.drv.Store == nil {
		return nil, nil
	}
	var envs []envelope.Envelope
	err := e.drv.Store.Replay(ctx, correlationID, func(env envelope.Envelope) error {
		envs = append(envs, env)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return envs, nil
}

// Lookup returns the bootstrap run with the given saga id, if any.
func (e *Engine) Lookup(sagaID string) (*BootstrapRun, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	run, ok := e.runs[sagaID]
	return run, ok
}
