package certificate

import (
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
)

// Kind discriminates concrete State implementations for transition-table
// lookups and serialization.
type Kind string

const (
	KindPending         Kind = "pending"
	KindIssued          Kind = "issued"
	KindActive          Kind = "active"
	KindRenewalPending  Kind = "renewal_pending"
	KindRenewed         Kind = "renewed"
	KindRevoked         Kind = "revoked"
	KindExpired         Kind = "expired"
	KindArchived        Kind = "archived"
)

// State is the sealed lifecycle state of a certificate aggregate.
type State interface {
	Kind() Kind
	IsTerminal() bool
	Description() string
}

var transitions = map[Kind]map[Kind]bool{
	KindPending:        {KindIssued: true, KindRevoked: true},
	KindIssued:         {KindActive: true, KindRevoked: true},
	KindActive:         {KindRenewalPending: true, KindExpired: true, KindRevoked: true},
	KindRenewalPending: {KindRenewed: true, KindRevoked: true},
	KindRenewed:        {KindArchived: true, KindRevoked: true},
	KindRevoked:        {KindArchived: true},
	KindExpired:        {KindArchived: true, KindRevoked: true},
	KindArchived:       {},
}

// CanTransitionTo reports whether target is a legal successor of from.
func CanTransitionTo(from, target Kind) bool {
	return transitions[from][target]
}

// PendingState: CSR created, awaiting CA signature.
type PendingState struct {
	CSRID        *string
	PendingSince time.Time
	RequestedBy  string
}

func (PendingState) Kind() Kind          { return KindPending }
func (PendingState) IsTerminal() bool    { return false }
func (PendingState) Description() string { return "Pending (awaiting CA signature)" }

// IssuedState: signed by the CA but not_before has not yet been reached.
type IssuedState struct {
	IssuedAt time.Time
	IssuerID string
	IssuedBy string
}

func (IssuedState) Kind() Kind          { return KindIssued }
func (IssuedState) IsTerminal() bool    { return false }
func (IssuedState) Description() string { return "Issued (not yet valid)" }

// ActiveState: valid for TLS/signing use.
type ActiveState struct {
	NotBefore  time.Time
	NotAfter   time.Time
	UsageCount uint64
	LastUsed   *time.Time
}

func (ActiveState) Kind() Kind          { return KindActive }
func (ActiveState) IsTerminal() bool    { return false }
func (ActiveState) Description() string { return "Active (valid for use)" }

// IsTimeValid reports whether now falls within [NotBefore, NotAfter].
func (s ActiveState) IsTimeValid(now time.Time) bool {
	return !now.Before(s.NotBefore) && !now.After(s.NotAfter)
}

// RenewalPendingState: renewal initiated, successor cert being issued.
type RenewalPendingState struct {
	NewCertificateID ID
	InitiatedAt      time.Time
	InitiatedBy      string
}

func (RenewalPendingState) Kind() Kind          { return KindRenewalPending }
func (RenewalPendingState) IsTerminal() bool    { return false }
func (RenewalPendingState) Description() string { return "Renewal Pending (new cert being issued)" }

// RenewedState: superseded by a renewed successor certificate.
type RenewedState struct {
	NewCertificateID ID
	RenewedAt        time.Time
	RenewedBy        string
}

func (RenewedState) Kind() Kind          { return KindRenewed }
func (RenewedState) IsTerminal() bool    { return false }
func (RenewedState) Description() string { return "Renewed (superseded by new certificate)" }

// RevokedState: revoked. Terminal; must publish to CRL/OCSP.
type RevokedState struct {
	Reason       RevocationReason
	RevokedAt    time.Time
	RevokedBy    string
	CRLPublished bool
	OCSPUpdated  bool
}

func (RevokedState) Kind() Kind          { return KindRevoked }
func (RevokedState) IsTerminal() bool    { return true }
func (RevokedState) Description() string { return "Revoked (TERMINAL - check CRL/OCSP)" }

// ExpiredState: not_after has elapsed.
type ExpiredState struct {
	ExpiredAt time.Time
	NotAfter  time.Time
}

func (ExpiredState) Kind() Kind          { return KindExpired }
func (ExpiredState) IsTerminal() bool    { return false }
func (ExpiredState) Description() string { return "Expired (validity period ended)" }

// ArchivedState: long-term retention. Terminal.
type ArchivedState struct {
	ArchivedAt    time.Time
	ArchivedBy    string
	PreviousState ArchivedFromState
}

func (ArchivedState) Kind() Kind          { return KindArchived }
func (ArchivedState) IsTerminal() bool    { return true }
func (ArchivedState) Description() string { return "Archived (TERMINAL - long-term storage)" }

func IsActive(s State) bool          { return s.Kind() == KindActive }
func CanUseForCrypto(s State) bool   { return s.Kind() == KindActive }
func CanBeModified(s State) bool     { return !s.IsTerminal() }
func IsRenewalPending(s State) bool  { return s.Kind() == KindRenewalPending }
func IsRenewed(s State) bool         { return s.Kind() == KindRenewed }
func IsExpired(s State) bool         { return s.Kind() == KindExpired }
func IsRevoked(s State) bool         { return s.Kind() == KindRevoked }
func IsPending(s State) bool         { return s.Kind() == KindPending }

// Sign transitions a Pending certificate into Issued.
func Sign(s State, at time.Time, issuerID, issuedBy string) (State, error) {
	if s.Kind() != KindPending {
		return nil, cimerrors.InvalidTransition{
			EntityType: "certificate", Current: s.Description(), Event: "sign",
			Reason: "can only sign a Pending certificate",
		}
	}
	return IssuedState{IssuedAt: at, IssuerID: issuerID, IssuedBy: issuedBy}, nil
}

// Activate transitions an Issued certificate into Active once not_before is reached.
func Activate(s State, notBefore, notAfter time.Time) (State, error) {
	if s.Kind() != KindIssued {
		return nil, cimerrors.InvalidTransition{
			EntityType: "certificate", Current: s.Description(), Event: "activate",
			Reason: "can only activate an Issued certificate",
		}
	}
	if !notAfter.After(notBefore) {
		return nil, cimerrors.ValidationFailed{EntityType: "certificate", Reason: "not_after must be after not_before"}
	}
	return ActiveState{NotBefore: notBefore, NotAfter: notAfter}, nil
}

// RecordUsage bumps the usage counter and last-used timestamp of an Active certificate.
func RecordUsage(s State, at time.Time) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "certificate", Current: s.Description(), Event: "record_usage",
			Reason: "can only record usage for Active certificates",
		}
	}
	active.UsageCount++
	active.LastUsed = &at
	return active, nil
}

// InitiateRenewal transitions an Active certificate into RenewalPending.
func InitiateRenewal(s State, newCertID ID, at time.Time, initiatedBy string) (State, error) {
	if s.Kind() != KindActive {
		return nil, cimerrors.InvalidTransition{
			EntityType: "certificate", Current: s.Description(), Event: "initiate_renewal",
			Reason: "can only initiate renewal for Active certificates",
		}
	}
	return RenewalPendingState{NewCertificateID: newCertID, InitiatedAt: at, InitiatedBy: initiatedBy}, nil
}

// CompleteRenewal transitions a RenewalPending certificate into Renewed.
func CompleteRenewal(s State, at time.Time, renewedBy string) (State, error) {
	pending, ok := s.(RenewalPendingState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "certificate", Current: s.Description(), Event: "complete_renewal",
			Reason: "can only complete renewal from RenewalPending",
		}
	}
	return RenewedState{NewCertificateID: pending.NewCertificateID, RenewedAt: at, RenewedBy: renewedBy}, nil
}

// Revoke transitions any non-terminal certificate into Revoked.
func Revoke(s State, reason RevocationReason, at time.Time, revokedBy string) (State, error) {
	if s.IsTerminal() {
		return nil, cimerrors.TerminalState{
			EntityType: "certificate", Current: s.Description(), Reason: "revoked certificates cannot be reactivated",
		}
	}
	return RevokedState{Reason: reason, RevokedAt: at, RevokedBy: revokedBy}, nil
}

// PublishToCRL marks CRL publication done for a revoked certificate.
func PublishToCRL(s State) (State, error) {
	revoked, ok := s.(RevokedState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "certificate", Current: s.Description(), Event: "publish_to_crl",
			Reason: "can only publish CRL for a Revoked certificate",
		}
	}
	revoked.CRLPublished = true
	return revoked, nil
}

// UpdateOCSP marks the OCSP responder notified for a revoked certificate.
func UpdateOCSP(s State) (State, error) {
	revoked, ok := s.(RevokedState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "certificate", Current: s.Description(), Event: "update_ocsp",
			Reason: "can only update OCSP for a Revoked certificate",
		}
	}
	revoked.OCSPUpdated = true
	return revoked, nil
}

// Expire transitions an Active certificate into Expired.
func Expire(s State, at time.Time, notAfter time.Time) (State, error) {
	if s.Kind() != KindActive {
		return nil, cimerrors.InvalidTransition{
			EntityType: "certificate", Current: s.Description(), Event: "expire",
			Reason: "can only expire Active certificates",
		}
	}
	return ExpiredState{ExpiredAt: at, NotAfter: notAfter}, nil
}

// Archive transitions a Renewed, Revoked, or Expired certificate into Archived.
func Archive(s State, at time.Time, archivedBy string) (State, error) {
	var from ArchivedFromState
	switch s.Kind() {
	case KindRenewed:
		from = ArchivedFromRenewed
	case KindRevoked:
		from = ArchivedFromRevoked
	case KindExpired:
		from = ArchivedFromExpired
	default:
		return nil, cimerrors.InvalidTransition{
			EntityType: "certificate", Current: s.Description(), Event: "archive",
			Reason: "can only archive from Renewed, Revoked, or Expired",
		}
	}
	return ArchivedState{ArchivedAt: at, ArchivedBy: archivedBy, PreviousState: from}, nil
}
